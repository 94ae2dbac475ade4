package room

// Broadcaster delivers a framed payload to every session in a room. Rooms
// only ever fan out; the concrete fan-out lives in the broadcast package,
// and defining the interface here breaks the import cycle between the two.
// Implementations must tolerate rooms with no connected sessions.
type Broadcaster interface {
	BroadcastToRoom(roomID string, msgID uint16, data []byte) error
}
