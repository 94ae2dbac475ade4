package server

import (
	"encoding/json"
	"net/http"
	netrpc "net/rpc"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wfunc/onepiecedle/broadcast"
	"github.com/wfunc/onepiecedle/catalog"
	"github.com/wfunc/onepiecedle/config"
	"github.com/wfunc/onepiecedle/logger"
	"github.com/wfunc/onepiecedle/models"
	"github.com/wfunc/onepiecedle/monitor"
	"github.com/wfunc/onepiecedle/network"
	"github.com/wfunc/onepiecedle/room"
	gamerpc "github.com/wfunc/onepiecedle/rpc"
	"github.com/wfunc/onepiecedle/search"
	"github.com/wfunc/onepiecedle/session"
	"github.com/wfunc/onepiecedle/timer"
)

// clientEvent is the inbound payload envelope; each message type reads the
// fields it needs, mirroring the loosely-typed client events.
type clientEvent struct {
	RoomID    string `json:"room_id"`
	Player    string `json:"player"`
	Mode      string `json:"mode"`
	Timer     int    `json:"timer"`
	Guess     string `json:"guess"`
	Attribute string `json:"attribute"`
	Value     string `json:"value"`
}

type GameServer struct {
	addr           string
	upgrader       websocket.Upgrader
	registry       *room.Manager
	sessionManager *session.Manager
	broadcaster    broadcast.Broadcaster
	clock          *timer.Manager
	catalog        *catalog.Catalog
	searcher       search.Searcher
	monitor        *monitor.Monitor
	rpcServer      *gamerpc.Server
	game           config.GameConfig
	shutdownChan   chan struct{}

	// Fallback target for single-player HTTP guesses outside any room.
	soloMutex  sync.Mutex
	soloTarget *catalog.Character
}

func NewGameServer(cfg *config.Config, cat *catalog.Catalog, mon *monitor.Monitor) *GameServer {
	sessionManager := session.NewManager()
	broadcaster := broadcast.NewRoomBroadcaster(sessionManager)
	clock := timer.NewManager()

	s := &GameServer{
		addr:           cfg.Server.HTTPAddress,
		registry:       room.NewManager(cat, clock, broadcaster, cfg.Game.RoomIdleTimeout),
		sessionManager: sessionManager,
		broadcaster:    broadcaster,
		clock:          clock,
		catalog:        cat,
		searcher:       search.NewIndex(cat.Names()),
		monitor:        mon,
		game:           cfg.Game,
		shutdownChan:   make(chan struct{}),
		soloTarget:     cat.Random(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	rpcServer, err := gamerpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer

	if err := netrpc.Register(gamerpc.NewRoomAdmin(s.registry)); err != nil {
		logger.Log.Fatalf("Failed to register RPC service: %v", err)
	}

	return s
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()

	http.HandleFunc("/ws", s.handleWebSocket)
	http.HandleFunc("/guess", s.handleGuess)
	http.HandleFunc("/reset", s.handleReset)
	http.HandleFunc("/reveal", s.handleReveal)
	http.HandleFunc("/search", s.handleSearch)
	http.HandleFunc("/healthz", s.handleHealthz)

	logger.Log.Infof("Game server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, nil)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.registry.Stop()
	s.clock.Stop()
	s.rpcServer.Stop()
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	s.monitor.IncOnlinePlayers()

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.sessionManager.Remove(sess.GetID())
		s.monitor.DecOnlinePlayers()
		// The room itself stays alive for the remaining members; idle
		// rooms are reclaimed by the registry's reaper.
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				return
			}
			s.handlePacket(sess, packet)
		}
	}
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	var event clientEvent
	if len(packet.Data) > 0 {
		if err := json.Unmarshal(packet.Data, &event); err != nil {
			s.sendError(sess, "Malformed event payload")
			return
		}
	}

	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		sess.Touch()
	case network.MsgTypeCreateRoom:
		s.handleCreateRoom(sess, event)
	case network.MsgTypeJoinRoom:
		s.handleJoinRoom(sess, event)
	case network.MsgTypeSetMode:
		s.handleSetMode(sess, event)
	case network.MsgTypeStartGame:
		s.handleStartGame(sess, event)
	case network.MsgTypeMakeGuess:
		s.handleMakeGuess(sess, event)
	case network.MsgTypeGuessAttribute:
		s.handleGuessAttribute(sess, event)
	case network.MsgTypeSkipCharacter:
		s.handleSkipCharacter(sess, event)
	default:
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
	}
}

func (s *GameServer) handleCreateRoom(sess *session.Session, event clientEvent) {
	if event.Player == "" {
		s.sendError(sess, "Player name required")
		return
	}

	mode := event.Mode
	if mode == "" {
		mode = s.game.DefaultMode
	}
	timerSeconds := event.Timer
	if timerSeconds == 0 {
		timerSeconds = s.game.DefaultTimerSeconds
	}

	r, err := s.registry.CreateRoom(event.Player, room.Mode(mode), timerSeconds)
	if err != nil {
		s.sendError(sess, err.Error())
		return
	}
	sess.Bind(r.ID, event.Player)
	s.monitor.SetActiveRooms(s.registry.Len())

	logger.Log.Infof("Session %s created room %s (mode %s, timer %ds)", sess.GetID(), r.ID, mode, timerSeconds)

	data, _ := json.Marshal(r.Joined())
	s.broadcaster.BroadcastToRoom(r.ID, network.MsgTypeRoomJoined, data)
}

func (s *GameServer) handleJoinRoom(sess *session.Session, event clientEvent) {
	if event.Player == "" || event.RoomID == "" {
		s.sendError(sess, "player and room_id required")
		return
	}

	r, exists := s.registry.GetRoom(event.RoomID)
	if !exists {
		s.sendError(sess, "Room not found")
		return
	}

	// Bind before joining so the new member sees the roster broadcast.
	sess.Bind(r.ID, event.Player)
	if err := r.Join(event.Player); err != nil {
		sess.Bind("", "")
		s.sendError(sess, err.Error())
		return
	}

	logger.Log.Infof("Session %s joined room %s as %s", sess.GetID(), r.ID, event.Player)
}

func (s *GameServer) handleSetMode(sess *session.Session, event clientEvent) {
	r, exists := s.registry.GetRoom(event.RoomID)
	if !exists {
		s.sendError(sess, "Room not found")
		return
	}

	mode, err := room.ParseMode(event.Mode)
	if err != nil {
		s.sendError(sess, err.Error())
		return
	}
	timerSeconds := event.Timer
	if timerSeconds == 0 {
		timerSeconds = s.game.DefaultTimerSeconds
	}

	if err := r.SetMode(mode, timerSeconds); err != nil {
		s.sendError(sess, err.Error())
	}
}

func (s *GameServer) handleStartGame(sess *session.Session, event clientEvent) {
	r, exists := s.registry.GetRoom(event.RoomID)
	if !exists {
		s.sendError(sess, "Room not found")
		return
	}

	if err := r.Start(event.Player); err != nil {
		s.sendError(sess, err.Error())
		return
	}
	s.monitor.IncRoundsStarted()
}

func (s *GameServer) handleMakeGuess(sess *session.Session, event clientEvent) {
	if event.RoomID == "" || event.Player == "" || event.Guess == "" {
		s.sendError(sess, "room_id, player and guess required")
		return
	}

	r, exists := s.registry.GetRoom(event.RoomID)
	if !exists {
		s.sendError(sess, "Room not found")
		return
	}

	start := time.Now()
	s.monitor.IncGuesses()
	err := r.MakeGuess(event.Player, event.Guess)
	s.monitor.ObserveGuessLatency(time.Since(start))

	if err != nil {
		s.sendError(sess, err.Error())
	}
}

func (s *GameServer) handleGuessAttribute(sess *session.Session, event clientEvent) {
	r, exists := s.registry.GetRoom(event.RoomID)
	if !exists {
		s.sendError(sess, "Invalid room or player")
		return
	}

	start := time.Now()
	s.monitor.IncGuesses()
	err := r.GuessAttribute(event.Player, event.Attribute, event.Value)
	s.monitor.ObserveGuessLatency(time.Since(start))

	if err != nil {
		s.sendError(sess, "Invalid room or player")
	}
}

func (s *GameServer) handleSkipCharacter(sess *session.Session, event clientEvent) {
	r, exists := s.registry.GetRoom(event.RoomID)
	if !exists {
		s.sendError(sess, "Room not found")
		return
	}
	r.Skip()
}

// sendError reports a rejection to the offending client only.
func (s *GameServer) sendError(sess *session.Session, msg string) {
	if err := sess.SendJSON(network.MsgTypeError, models.ErrorMessage{Msg: msg}); err != nil {
		logger.Log.Warnf("Session %s: error reply failed: %v", sess.GetID(), err)
	}
}
