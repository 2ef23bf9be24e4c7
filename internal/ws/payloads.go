package ws

import "encoding/json"

// Inbound is a turn intent from a connected client. The choice fields are
// only read for resolve_pending_action.
type Inbound struct {
	Type       string `json:"type"`
	Buy        bool   `json:"buy,omitempty"`
	PayFine    bool   `json:"pay_fine,omitempty"`
	TaxPercent bool   `json:"tax_percent,omitempty"`
	Auto       bool   `json:"auto,omitempty"`
}

// Outbound is the envelope for every server message.
type Outbound struct {
	Type   string `json:"type"`
	GameID int64  `json:"game_id,omitempty"`
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

func marshalOutbound(o Outbound) []byte {
	b, err := json.Marshal(o)
	if err != nil {
		return []byte(`{"type":"error","error":"encode failed"}`)
	}
	return b
}
