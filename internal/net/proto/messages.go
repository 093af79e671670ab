package proto

import (
	"encoding/json"
	"fmt"

	"pocket-arena/server/internal/battle"
	"pocket-arena/server/internal/session"
)

const (
	// Version tracks the wire-protocol revision expected by clients.
	Version = 1

	// Type identifiers for websocket payloads.
	typeCommandAck    = "commandAck"
	typeCommandReject = "commandReject"
	typeHeartbeat     = "heartbeat"
	typeState         = "state"
	typeMessage       = "message"
	typeJoin          = "join"
)

// Client message type identifiers.
const (
	TypeMove      = "move"
	TypeSwitch    = "switch"
	TypeHeartbeat = "heartbeat"
)

// Exported aliases for outbound message type identifiers.
const (
	TypeState   = typeState
	TypeMessage = typeMessage
	TypeJoin    = typeJoin
)

// ClientMessage captures an inbound websocket message from the client.
type ClientMessage struct {
	Ver            int     `json:"ver,omitempty"`
	Type           string  `json:"type"`
	Actor          string  `json:"actor"`
	Move           string  `json:"move"`
	TargetBank     int     `json:"targetBank"`
	TargetPosition int     `json:"targetPosition"`
	With           string  `json:"with"`
	SentAt         int64   `json:"sentAt"`
	CommandSeq     *uint64 `json:"seq,omitempty"`
}

// DecodeClientMessage converts raw websocket payloads into a structured message.
func DecodeClientMessage(payload []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return msg, err
	}
	if msg.Ver == 0 {
		msg.Ver = Version
	}
	if msg.Ver != Version {
		return msg, fmt.Errorf("unsupported client protocol version %d", msg.Ver)
	}
	return msg, nil
}

// ActionKind distinguishes the choices a client can submit.
type ActionKind string

const (
	ActionMove   ActionKind = "move"
	ActionSwitch ActionKind = "switch"
)

// Action is the battle choice carried by a client message.
type Action struct {
	Kind           ActionKind
	Actor          string
	Move           string
	TargetBank     int
	TargetPosition int
	With           string
}

// ClientAction extracts the battle choice carried by a websocket message.
func ClientAction(msg ClientMessage) (Action, bool) {
	if msg.Actor == "" {
		return Action{}, false
	}
	switch msg.Type {
	case TypeMove:
		if msg.Move == "" {
			return Action{}, false
		}
		return Action{
			Kind:           ActionMove,
			Actor:          msg.Actor,
			Move:           msg.Move,
			TargetBank:     msg.TargetBank,
			TargetPosition: msg.TargetPosition,
		}, true
	case TypeSwitch:
		if msg.With == "" {
			return Action{}, false
		}
		return Action{Kind: ActionSwitch, Actor: msg.Actor, With: msg.With}, true
	default:
		return Action{}, false
	}
}

// CommandAck describes an acknowledgement of an accepted action.
type CommandAck struct {
	Seq  uint64
	Turn int
}

// EncodeCommandAck renders a command acknowledgement response.
func EncodeCommandAck(msg CommandAck) ([]byte, error) {
	frame := struct {
		Ver  int    `json:"ver"`
		Type string `json:"type"`
		Seq  uint64 `json:"seq"`
		Turn int    `json:"turn,omitempty"`
	}{
		Ver:  Version,
		Type: typeCommandAck,
		Seq:  msg.Seq,
		Turn: msg.Turn,
	}
	return json.Marshal(frame)
}

// CommandReject notifies the client that an action was refused.
type CommandReject struct {
	Seq    uint64
	Reason string
	Retry  bool
	Turn   int
}

// EncodeCommandReject renders a command rejection response.
func EncodeCommandReject(msg CommandReject) ([]byte, error) {
	frame := struct {
		Ver    int    `json:"ver"`
		Type   string `json:"type"`
		Seq    uint64 `json:"seq"`
		Reason string `json:"reason"`
		Retry  bool   `json:"retry,omitempty"`
		Turn   int    `json:"turn,omitempty"`
	}{
		Ver:    Version,
		Type:   typeCommandReject,
		Seq:    msg.Seq,
		Reason: msg.Reason,
		Retry:  msg.Retry,
		Turn:   msg.Turn,
	}
	return json.Marshal(frame)
}

// Heartbeat echoes timing metadata back to the client.
type Heartbeat struct {
	ServerTime int64
	ClientTime int64
	RTTMillis  int64
}

// EncodeHeartbeat renders a heartbeat acknowledgement payload.
func EncodeHeartbeat(msg Heartbeat) ([]byte, error) {
	frame := struct {
		Ver        int    `json:"ver"`
		Type       string `json:"type"`
		ServerTime int64  `json:"serverTime"`
		ClientTime int64  `json:"clientTime"`
		RTTMillis  int64  `json:"rtt"`
	}{
		Ver:        Version,
		Type:       typeHeartbeat,
		ServerTime: msg.ServerTime,
		ClientTime: msg.ClientTime,
		RTTMillis:  msg.RTTMillis,
	}
	return json.Marshal(frame)
}

// StateV1 captures the version 1 battle state payload.
type StateV1 struct {
	Ver   int           `json:"ver"`
	Type  string        `json:"type"`
	State session.State `json:"state"`
}

// EncodeState renders a versioned battle state payload.
func EncodeState(state session.State) ([]byte, error) {
	return json.Marshal(StateV1{Ver: Version, Type: TypeState, State: state})
}

// MessageV1 wraps one presentation cue.
type MessageV1 struct {
	Ver     int            `json:"ver"`
	Type    string         `json:"type"`
	Message battle.Message `json:"message"`
}

// EncodeMessage renders a presentation cue.
func EncodeMessage(msg battle.Message) ([]byte, error) {
	return json.Marshal(MessageV1{Ver: Version, Type: TypeMessage, Message: msg})
}

// JoinResponseV1 greets a freshly connected client.
type JoinResponseV1 struct {
	Ver     int           `json:"ver"`
	Type    string        `json:"type"`
	ID      string        `json:"id"`
	State   session.State `json:"state"`
	History int           `json:"history"`
}

// EncodeJoinResponse renders a join response payload.
func EncodeJoinResponse(msg JoinResponseV1) ([]byte, error) {
	msg.Ver = Version
	msg.Type = TypeJoin
	return json.Marshal(msg)
}
