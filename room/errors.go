package room

import "errors"

// Recoverable rejections reported back to the originating client. None of
// these ever crash the coordinator or touch other rooms.
var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrPlayerNotInRoom = errors.New("player not in room")
	ErrNameTaken       = errors.New("name already taken in room, choose another")
	ErrNotOwner        = errors.New("only the owner can start the game")
	ErrRoundNotStarted = errors.New("round not started")
	ErrInvalidConfig   = errors.New("invalid room mode or timer")
)
