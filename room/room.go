// room/room.go
package room

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/wfunc/onepiecedle/catalog"
	"github.com/wfunc/onepiecedle/guess"
	"github.com/wfunc/onepiecedle/logger"
	"github.com/wfunc/onepiecedle/models"
	"github.com/wfunc/onepiecedle/network"
	"github.com/wfunc/onepiecedle/timer"
)

// Mode 房间的胜负规则
type Mode string

const (
	// ModeTimed accumulates points until the round clock expires.
	ModeTimed Mode = "timed"
	// ModeFirstToGuess ends the round on the first correct name guess.
	ModeFirstToGuess Mode = "first_to_guess"
	// ModeFirstToComplete ends the round when one player has guessed
	// every attribute.
	ModeFirstToComplete Mode = "first_to_complete"
)

// ParseMode validates a client-supplied mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeTimed, ModeFirstToGuess, ModeFirstToComplete:
		return Mode(s), nil
	}
	return "", ErrInvalidConfig
}

// Phase 回合生命周期: Lobby <-> Active, Active→Lobby exactly once per round.
type Phase int

const (
	PhaseLobby Phase = iota
	PhaseActive
)

// Scoring rules.
const (
	NameGuessPoints = 1
	AttributePoints = 5
	CompletionBonus = 20
)

// PlayerState is mutated only while holding the owning Room's lock.
type PlayerState struct {
	Score      int
	Guessed    map[guess.Attribute]struct{}
	BonusGiven bool
}

func newPlayerState() *PlayerState {
	return &PlayerState{Guessed: make(map[guess.Attribute]struct{})}
}

func (p *PlayerState) reset(keepScore bool) {
	p.Guessed = make(map[guess.Attribute]struct{})
	p.BonusGiven = false
	if !keepScore {
		p.Score = 0
	}
}

// Room 是一局多人游戏的核心结构。 One mutex serializes every event on the
// room end to end, so a read-modify-broadcast sequence is atomic with
// respect to every other event and to the round clock.
type Room struct {
	ID        string
	Owner     string
	CreatedAt time.Time

	mu           sync.Mutex
	mode         Mode
	timerSeconds int
	phase        Phase
	target       *catalog.Character
	players      map[string]*PlayerState
	generation   uint64
	countdownID  int64
	lastActive   time.Time

	catalog     *catalog.Catalog
	clock       *timer.Manager
	broadcaster Broadcaster
}

func newRoom(id, owner string, mode Mode, timerSeconds int, cat *catalog.Catalog, clock *timer.Manager, broadcaster Broadcaster) *Room {
	now := time.Now()
	r := &Room{
		ID:           id,
		Owner:        owner,
		CreatedAt:    now,
		mode:         mode,
		timerSeconds: timerSeconds,
		phase:        PhaseLobby,
		target:       cat.Random(),
		players:      map[string]*PlayerState{owner: newPlayerState()},
		lastActive:   now,
		catalog:      cat,
		clock:        clock,
		broadcaster:  broadcaster,
	}
	return r
}

// --- event operations ---

// Join adds a player to the roster. A duplicate name fails without mutating
// any state.
func (r *Room) Join(player string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touch()

	if _, exists := r.players[player]; exists {
		return ErrNameTaken
	}
	r.players[player] = newPlayerState()

	r.broadcast(network.MsgTypePlayerJoined, models.PlayerJoined{
		Player:  player,
		Players: r.playerNames(),
	})
	return nil
}

// SetMode updates the win rules and round length; takes effect at the next
// round start.
func (r *Room) SetMode(mode Mode, timerSeconds int) error {
	if timerSeconds <= 0 {
		return ErrInvalidConfig
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.touch()

	r.mode = mode
	r.timerSeconds = timerSeconds

	r.broadcast(network.MsgTypeModeSet, models.ModeSet{Mode: string(mode), Timer: timerSeconds})
	return nil
}

// Start begins a new round: every player's score, guessed set and bonus
// flag reset, a fresh target is rolled, and in timed mode a round clock is
// spawned stamped with the new generation. Any clock from a previous round
// is superseded.
func (r *Room) Start(requester string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touch()

	if requester != r.Owner {
		return ErrNotOwner
	}

	for _, p := range r.players {
		p.reset(false)
	}
	r.target = r.catalog.Random()
	r.phase = PhaseActive
	r.generation++
	r.stopClockLocked()

	// Never reveal the target in the round-start notice.
	r.broadcast(network.MsgTypeNewCharacter, models.NewCharacter{Message: "Game started"})

	if r.mode == ModeTimed {
		gen := r.generation
		r.countdownID = r.clock.Start(r.timerSeconds,
			func(remaining int) { r.handleTick(gen, remaining) },
			func() { r.handleExpire(gen) },
		)
	}
	return nil
}

// MakeGuess handles a whole-character name guess during an active round.
func (r *Room) MakeGuess(player, guessName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touch()

	state, ok := r.players[player]
	if !ok {
		return ErrPlayerNotInRoom
	}
	if r.phase != PhaseActive {
		return ErrRoundNotStarted
	}

	if !strings.EqualFold(strings.TrimSpace(guessName), r.target.Name) {
		// Miss: echo without revealing anything.
		r.broadcast(network.MsgTypeIncorrectGuess, models.IncorrectGuess{Player: player, Guess: guessName})
		return nil
	}

	state.Score += NameGuessPoints

	if r.mode == ModeFirstToGuess {
		r.endRoundLocked(player, r.target)
		return nil
	}

	// Timed mode: score, roll a fresh target, round keeps running until
	// the clock expires.
	r.broadcast(network.MsgTypeCorrectGuess, models.CorrectGuess{Player: player, NewScore: state.Score})
	r.broadcast(network.MsgTypeScoreUpdate, models.ScoreUpdate{Leaderboard: r.leaderboard()})
	r.target = r.catalog.Random()
	r.broadcast(network.MsgTypeNewCharacter, models.NewCharacter{Message: "New character selected after correct guess"})
	return nil
}

// GuessAttribute handles a single-attribute guess. Unknown or repeated
// attributes answer ok:false instead of erroring, matching the gateway
// contract.
func (r *Room) GuessAttribute(player, attribute, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touch()

	state, ok := r.players[player]
	if !ok {
		return ErrPlayerNotInRoom
	}

	attr, err := guess.ParseAttribute(attribute)
	if err != nil {
		r.broadcast(network.MsgTypeGuessResult, models.GuessResult{
			OK: false, Attribute: attribute, Msg: "Unknown attribute",
		})
		return nil
	}
	if _, done := state.Guessed[attr]; done {
		r.broadcast(network.MsgTypeGuessResult, models.GuessResult{
			OK: false, Attribute: string(attr), Msg: "Already guessed",
		})
		return nil
	}

	correct := guess.CheckAttribute(r.target, attr, value)
	points := 0
	if correct {
		state.Guessed[attr] = struct{}{}
		state.Score += AttributePoints
		points += AttributePoints

		// The completion bonus is awarded at most once per round.
		if !state.BonusGiven && len(state.Guessed) == len(guess.Attributes) {
			state.Score += CompletionBonus
			state.BonusGiven = true
			points += CompletionBonus
		}
	}

	r.broadcast(network.MsgTypeGuessResult, models.GuessResult{
		OK:            true,
		Player:        player,
		Attribute:     string(attr),
		Correct:       correct,
		PointsAwarded: points,
		CurrentScore:  state.Score,
	})
	r.broadcast(network.MsgTypeScoreUpdate, models.ScoreUpdate{Leaderboard: r.leaderboard()})

	if r.mode == ModeFirstToComplete && state.BonusGiven {
		r.endRoundLocked(player, nil)
	}
	return nil
}

// Skip rolls a new target and clears attribute progress; scores survive.
// Valid in any phase.
func (r *Room) Skip() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touch()

	r.target = r.catalog.Random()
	for _, p := range r.players {
		p.reset(true)
	}
	r.broadcast(network.MsgTypeNewCharacter, models.NewCharacter{Message: "Character skipped"})
}

// Reset rolls a new target and zeroes every player, bypassing the owner
// check. It is the single-shot "fresh round" convenience path.
func (r *Room) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touch()

	r.target = r.catalog.Random()
	for _, p := range r.players {
		p.reset(false)
	}
}

// --- round clock callbacks ---

// handleTick broadcasts remaining time, unless this clock's round has been
// superseded. A stale generation is silently absorbed.
func (r *Room) handleTick(gen uint64, remaining int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.generation || r.phase != PhaseActive {
		return
	}
	r.broadcast(network.MsgTypeTimerTick, models.TimerTick{Time: remaining})
}

// handleExpire ends a timed round. Like handleTick it must never act on a
// round it does not own.
func (r *Room) handleExpire(gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.generation || r.phase != PhaseActive {
		return
	}
	r.countdownID = 0
	r.broadcast(network.MsgTypeGameOver, models.GameOver{Leaderboard: r.leaderboard()})
	r.phase = PhaseLobby
	r.target = r.catalog.Random()
}

// endRoundLocked finishes the round with a winner. reveal may be nil when
// the target identity was never hidden from the winner's perspective
// (attribute completion).
func (r *Room) endRoundLocked(winner string, reveal *catalog.Character) {
	r.stopClockLocked()

	msg := models.GameOver{
		Winner:      winner,
		Leaderboard: r.leaderboard(),
	}
	if reveal != nil {
		msg.Character = models.NewCharacterReveal(reveal)
	}
	r.broadcast(network.MsgTypeGameOver, msg)

	r.phase = PhaseLobby
	r.target = r.catalog.Random()
}

// --- accessors ---

// Target returns the current hidden character, for single-shot HTTP guesses.
func (r *Room) Target() *catalog.Character {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.target
}

// Started reports whether a round is active.
func (r *Room) Started() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase == PhaseActive
}

// Mode returns the current win rules.
func (r *Room) Mode() Mode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mode
}

// Snapshot copies the room state for admin queries.
func (r *Room) Snapshot() models.RoomSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	return models.RoomSnapshot{
		RoomID:     r.ID,
		Owner:      r.Owner,
		Mode:       string(r.mode),
		Timer:      r.timerSeconds,
		Started:    r.phase == PhaseActive,
		Players:    r.leaderboard(),
		CreatedAt:  r.CreatedAt,
		LastActive: r.lastActive,
	}
}

// LastActive is read by the registry's reaper.
func (r *Room) LastActive() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastActive
}

// Close cancels the room's clock; called when the registry removes it.
func (r *Room) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopClockLocked()
	r.phase = PhaseLobby
}

// --- internals (call with r.mu held) ---

func (r *Room) stopClockLocked() {
	if r.countdownID != 0 {
		r.clock.Cancel(r.countdownID)
		r.countdownID = 0
	}
}

func (r *Room) touch() {
	r.lastActive = time.Now()
}

func (r *Room) playerNames() []string {
	names := make([]string, 0, len(r.players))
	for name := range r.players {
		names = append(names, name)
	}
	return names
}

func (r *Room) leaderboard() models.Leaderboard {
	lb := make(models.Leaderboard, len(r.players))
	for name, p := range r.players {
		lb[name] = p.Score
	}
	return lb
}

func (r *Room) broadcast(msgID uint16, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Log.Errorf("Room %s: marshal broadcast %d: %v", r.ID, msgID, err)
		return
	}
	if err := r.broadcaster.BroadcastToRoom(r.ID, msgID, data); err != nil {
		logger.Log.Warnf("Room %s: broadcast %d: %v", r.ID, msgID, err)
	}
}

// Joined returns the roster for the room_joined payload.
func (r *Room) Joined() models.RoomJoined {
	r.mu.Lock()
	defer r.mu.Unlock()
	return models.RoomJoined{
		RoomID:  r.ID,
		Owner:   r.Owner,
		Mode:    string(r.mode),
		Timer:   r.timerSeconds,
		Players: r.playerNames(),
	}
}
