package network

// Client -> server events.
const (
	MsgTypeHeartbeat      = 1
	MsgTypeCreateRoom     = 101
	MsgTypeJoinRoom       = 102
	MsgTypeSetMode        = 103
	MsgTypeStartGame      = 104
	MsgTypeMakeGuess      = 201
	MsgTypeGuessAttribute = 202
	MsgTypeSkipCharacter  = 203
)

// Server -> client broadcasts.
const (
	MsgTypeError          = 2
	MsgTypeRoomJoined     = 301
	MsgTypePlayerJoined   = 302
	MsgTypeModeSet        = 303
	MsgTypeNewCharacter   = 304
	MsgTypeTimerTick      = 305
	MsgTypeCorrectGuess   = 306
	MsgTypeIncorrectGuess = 307
	MsgTypeScoreUpdate    = 308
	MsgTypeGuessResult    = 309
	MsgTypeGameOver       = 310
)
