package ws

import (
	"encoding/json"
	"testing"
)

func TestInboundParsing(t *testing.T) {
	cases := []struct {
		raw  string
		want Inbound
	}{
		{`{"type":"roll_dice"}`, Inbound{Type: MsgRollDice}},
		{`{"type":"resolve_pending_action","buy":true}`, Inbound{Type: MsgResolveAction, Buy: true}},
		{`{"type":"resolve_pending_action","pay_fine":true,"auto":true}`, Inbound{Type: MsgResolveAction, PayFine: true, Auto: true}},
		{`{"type":"end_turn","buy":false}`, Inbound{Type: MsgEndTurn}},
	}

	for _, tc := range cases {
		var got Inbound
		if err := json.Unmarshal([]byte(tc.raw), &got); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("parsed %s = %+v, want %+v", tc.raw, got, tc.want)
		}
	}
}

func TestMarshalOutboundEnvelope(t *testing.T) {
	b := marshalOutbound(Outbound{Type: MsgError, GameID: 7, Error: "not your turn"})

	var round map[string]any
	if err := json.Unmarshal(b, &round); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if round["type"] != MsgError || round["error"] != "not your turn" {
		t.Fatalf("envelope: %v", round)
	}
	if _, ok := round["data"]; ok {
		t.Fatalf("empty data field serialized: %v", round)
	}
}
