package ws

const (
	// client - server
	MsgRollDice      = "roll_dice"
	MsgResolveAction = "resolve_pending_action"
	MsgEndTurn       = "end_turn"
	MsgPing          = "ping"

	// server - client
	MsgEvent    = "event"
	MsgSnapshot = "snapshot"
	MsgError    = "error"
	MsgPong     = "pong"
)
