// models/models.go
package models

import (
	"strconv"
	"time"

	"github.com/wfunc/onepiecedle/catalog"
)

// Leaderboard maps player name to score.
type Leaderboard map[string]int

// CharacterReveal 角色完整信息（回合结束时公开）
type CharacterReveal struct {
	Name           string `json:"name"`
	Gender         string `json:"gender"`
	FirstArc       string `json:"first_arc"`
	Affiliation    string `json:"affiliation"`
	Bounty         string `json:"bounty"`
	Height         string `json:"height"`
	DevilFruitType string `json:"devil_fruit_type"`
	Haki           string `json:"haki"`
}

// NewCharacterReveal flattens a character into its wire form. Numerics are
// strings on the wire, matching what clients render.
func NewCharacterReveal(ch *catalog.Character) *CharacterReveal {
	return &CharacterReveal{
		Name:           ch.Name,
		Gender:         ch.Gender,
		FirstArc:       ch.FirstArc,
		Affiliation:    ch.Affiliation,
		Bounty:         strconv.FormatInt(ch.Bounty, 10),
		Height:         strconv.FormatFloat(ch.Height, 'f', -1, 64),
		DevilFruitType: ch.DevilFruitType,
		Haki:           ch.HakiString(),
	}
}

// RoomJoined confirms room creation/entry to every member.
type RoomJoined struct {
	RoomID  string   `json:"room_id"`
	Owner   string   `json:"owner"`
	Mode    string   `json:"mode"`
	Timer   int      `json:"timer"`
	Players []string `json:"players"`
}

// PlayerJoined announces a roster change.
type PlayerJoined struct {
	Player  string   `json:"player"`
	Players []string `json:"players"`
}

// ModeSet announces a mode/timer change.
type ModeSet struct {
	Mode  string `json:"mode"`
	Timer int    `json:"timer"`
}

// NewCharacter is the non-revealing "new round / new target" notice.
type NewCharacter struct {
	Message string `json:"message"`
}

// TimerTick carries the remaining seconds of a timed round.
type TimerTick struct {
	Time int `json:"time"`
}

// CorrectGuess announces a scoring whole-name guess in timed mode.
type CorrectGuess struct {
	Player   string `json:"player"`
	NewScore int    `json:"new_score"`
}

// IncorrectGuess echoes a miss without revealing the target.
type IncorrectGuess struct {
	Player string `json:"player"`
	Guess  string `json:"guess"`
}

// ScoreUpdate carries the current leaderboard.
type ScoreUpdate struct {
	Leaderboard Leaderboard `json:"leaderboard"`
}

// GuessResult reports one attribute guess back to the room.
type GuessResult struct {
	OK            bool   `json:"ok"`
	Player        string `json:"player,omitempty"`
	Attribute     string `json:"attribute"`
	Correct       bool   `json:"correct"`
	PointsAwarded int    `json:"points_awarded"`
	CurrentScore  int    `json:"current_score"`
	Msg           string `json:"msg,omitempty"`
}

// GameOver ends a round: winner and character are set when there is a
// winning guess, and omitted on a plain timer expiry.
type GameOver struct {
	Winner      string           `json:"winner,omitempty"`
	Character   *CharacterReveal `json:"character,omitempty"`
	Leaderboard Leaderboard      `json:"leaderboard"`
}

// ErrorMessage is sent only to the client that caused the rejection.
type ErrorMessage struct {
	Msg string `json:"msg"`
}

// RoomSnapshot 房间状态快照（管理 RPC 与调试接口用）
type RoomSnapshot struct {
	RoomID     string      `json:"room_id"`
	Owner      string      `json:"owner"`
	Mode       string      `json:"mode"`
	Timer      int         `json:"timer"`
	Started    bool        `json:"started"`
	Players    Leaderboard `json:"players"`
	CreatedAt  time.Time   `json:"created_at"`
	LastActive time.Time   `json:"last_active"`
}
