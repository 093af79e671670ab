package proto

import (
	"encoding/json"
	"testing"

	"pocket-arena/server/internal/battle"
	"pocket-arena/server/internal/session"
)

func TestClientAction(t *testing.T) {
	t.Run("move", func(t *testing.T) {
		action, ok := ClientAction(ClientMessage{
			Type:           TypeMove,
			Actor:          "blue-1",
			Move:           "water_gun",
			TargetBank:     0,
			TargetPosition: 0,
		})
		if !ok {
			t.Fatalf("expected move action to be recognized")
		}
		if action.Kind != ActionMove || action.Move != "water_gun" || action.Actor != "blue-1" {
			t.Fatalf("unexpected action %+v", action)
		}
	})

	t.Run("switch", func(t *testing.T) {
		action, ok := ClientAction(ClientMessage{Type: TypeSwitch, Actor: "blue-1", With: "blue-2"})
		if !ok || action.Kind != ActionSwitch || action.With != "blue-2" {
			t.Fatalf("unexpected switch action %+v (ok=%v)", action, ok)
		}
	})

	t.Run("incomplete", func(t *testing.T) {
		cases := []ClientMessage{
			{Type: TypeMove, Actor: "blue-1"},
			{Type: TypeSwitch, Actor: "blue-1"},
			{Type: TypeMove, Move: "tackle"},
			{Type: TypeHeartbeat, Actor: "blue-1"},
		}
		for _, msg := range cases {
			if _, ok := ClientAction(msg); ok {
				t.Fatalf("expected %+v to be rejected", msg)
			}
		}
	})
}

func TestDecodeClientMessage(t *testing.T) {
	msg, err := DecodeClientMessage([]byte(`{"type":"move","actor":"a","move":"tackle","targetBank":1,"seq":7}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if msg.Ver != Version {
		t.Fatalf("expected default version %d, got %d", Version, msg.Ver)
	}
	if msg.CommandSeq == nil || *msg.CommandSeq != 7 || msg.TargetBank != 1 {
		t.Fatalf("unexpected message %+v", msg)
	}

	if _, err := DecodeClientMessage([]byte(`{"ver":2,"type":"move"}`)); err == nil {
		t.Fatalf("expected unsupported version error")
	}
	if _, err := DecodeClientMessage([]byte(`{`)); err == nil {
		t.Fatalf("expected json error")
	}
}

func TestEncodeCommandReject(t *testing.T) {
	data, err := EncodeCommandReject(CommandReject{Seq: 3, Reason: "move_disabled", Turn: 4})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	var frame map[string]any
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if frame["type"] != typeCommandReject || frame["reason"] != "move_disabled" {
		t.Fatalf("unexpected frame %v", frame)
	}
	if _, present := frame["retry"]; present {
		t.Fatalf("expected retry to be omitted, got %v", frame)
	}
}

func TestEncodeStateAndMessage(t *testing.T) {
	data, err := EncodeState(session.State{ID: "battle", Turn: 3, Phase: session.PhaseChoosing})
	if err != nil {
		t.Fatalf("encode state failed: %v", err)
	}
	var state StateV1
	if err := json.Unmarshal(data, &state); err != nil {
		t.Fatalf("unmarshal state failed: %v", err)
	}
	if state.Type != TypeState || state.Ver != Version || state.State.Turn != 3 {
		t.Fatalf("unexpected state frame %+v", state)
	}

	data, err = EncodeMessage(battle.Message{Kind: battle.MessageText, Turn: 3, Text: "hello"})
	if err != nil {
		t.Fatalf("encode message failed: %v", err)
	}
	var msg MessageV1
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal message failed: %v", err)
	}
	if msg.Type != TypeMessage || msg.Message.Text != "hello" {
		t.Fatalf("unexpected message frame %+v", msg)
	}
}
