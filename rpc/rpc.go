package rpc

import (
	"net"
	"net/rpc"

	"github.com/wfunc/onepiecedle/logger"
	"github.com/wfunc/onepiecedle/models"
	"github.com/wfunc/onepiecedle/room"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server. Services are registered separately
// with net/rpc before Start is called.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// RoomAdmin exposes read-only room inspection over net/rpc: exported
// methods, exported arguments, pointer reply, error return.
type RoomAdmin struct {
	registry *room.Manager
}

func NewRoomAdmin(registry *room.Manager) *RoomAdmin {
	return &RoomAdmin{registry: registry}
}

type GetRoomArgs struct {
	RoomID string
}

type GetRoomReply struct {
	Room models.RoomSnapshot
}

func (a *RoomAdmin) GetRoom(args *GetRoomArgs, reply *GetRoomReply) error {
	r, exists := a.registry.GetRoom(args.RoomID)
	if !exists {
		return room.ErrRoomNotFound
	}
	reply.Room = r.Snapshot()
	return nil
}

type ListRoomsArgs struct{}

type ListRoomsReply struct {
	RoomIDs []string
}

func (a *RoomAdmin) ListRooms(args *ListRoomsArgs, reply *ListRoomsReply) error {
	reply.RoomIDs = a.registry.RoomIDs()
	return nil
}

type RemoveRoomArgs struct {
	RoomID string
}

type RemoveRoomReply struct{}

// RemoveRoom force-closes a room, stopping its round clock.
func (a *RoomAdmin) RemoveRoom(args *RemoveRoomArgs, reply *RemoveRoomReply) error {
	a.registry.RemoveRoom(args.RoomID)
	return nil
}
