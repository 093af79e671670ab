package effects

import (
	"context"

	"pocket-arena/server/logging"
)

const (
	// EventAdded is emitted when an effect joins a registry.
	EventAdded logging.EventType = "effects.added"
	// EventEnded is emitted when an effect is killed or expires.
	EventEnded logging.EventType = "effects.ended"
)

// AddedPayload describes a newly attached effect.
type AddedPayload struct {
	Effect   string `json:"effect"`
	EffectID string `json:"effectId"`
	Scope    string `json:"scope"`
	Turns    int    `json:"turns,omitempty"`
}

// EndedPayload describes why an effect left play.
type EndedPayload struct {
	Effect   string `json:"effect"`
	EffectID string `json:"effectId"`
	Reason   string `json:"reason"`
}

// Added publishes an effect attachment. The holder is the actor.
func Added(ctx context.Context, pub logging.Publisher, turn int, holder logging.EntityRef, payload AddedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventAdded,
		Turn:     turn,
		Actor:    holder,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryEffects,
		Payload:  payload,
	})
}

// Ended publishes the end of an effect.
func Ended(ctx context.Context, pub logging.Publisher, turn int, holder logging.EntityRef, payload EndedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventEnded,
		Turn:     turn,
		Actor:    holder,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryEffects,
		Payload:  payload,
	})
}
