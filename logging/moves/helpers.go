// Package moves publishes the structured events of move resolution.
package moves

import (
	"context"

	"pocket-arena/server/logging"
)

const (
	// EventUsed is emitted once a move passed the usability stage.
	EventUsed logging.EventType = "moves.used"
	// EventFailed is emitted when a move stops with a failure reason.
	EventFailed logging.EventType = "moves.failed"
	// EventMissed is emitted per target dropped by the accuracy roll.
	EventMissed logging.EventType = "moves.missed"
	// EventDamage is emitted for every hit that dealt damage.
	EventDamage logging.EventType = "moves.damage"
	// EventPPDecreased is emitted when a slot loses PP.
	EventPPDecreased logging.EventType = "moves.pp_decreased"
	// EventResolved closes a move invocation and mirrors its history entry.
	EventResolved logging.EventType = "moves.resolved"
)

type UsedPayload struct {
	Move string `json:"move"`
}

type FailedPayload struct {
	Move   string `json:"move"`
	Reason string `json:"reason"`
}

type MissedPayload struct {
	Move   string `json:"move"`
	Immune bool   `json:"immune,omitempty"`
}

type DamagePayload struct {
	Move          string  `json:"move"`
	Damage        int     `json:"damage"`
	Critical      bool    `json:"critical,omitempty"`
	Effectiveness float64 `json:"effectiveness"`
	Substitute    bool    `json:"substitute,omitempty"`
}

type PPPayload struct {
	Move      string `json:"move"`
	Amount    int    `json:"amount"`
	Remaining int    `json:"remaining"`
}

type ResolvedPayload struct {
	Move        string `json:"move"`
	Success     bool   `json:"success"`
	DamageDealt int    `json:"damageDealt"`
}

func publish(ctx context.Context, pub logging.Publisher, eventType logging.EventType, severity logging.Severity, turn int, actor logging.EntityRef, targets []logging.EntityRef, payload any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     eventType,
		Turn:     turn,
		Actor:    actor,
		Targets:  targets,
		Severity: severity,
		Category: logging.CategoryMoves,
		Payload:  payload,
	})
}

// Used publishes the usage of a move.
func Used(ctx context.Context, pub logging.Publisher, turn int, actor logging.EntityRef, targets []logging.EntityRef, payload UsedPayload) {
	publish(ctx, pub, EventUsed, logging.SeverityInfo, turn, actor, targets, payload)
}

// Failed publishes a failed move.
func Failed(ctx context.Context, pub logging.Publisher, turn int, actor logging.EntityRef, payload FailedPayload) {
	publish(ctx, pub, EventFailed, logging.SeverityInfo, turn, actor, nil, payload)
}

// Missed publishes a target the move did not reach.
func Missed(ctx context.Context, pub logging.Publisher, turn int, actor logging.EntityRef, target logging.EntityRef, payload MissedPayload) {
	publish(ctx, pub, EventMissed, logging.SeverityInfo, turn, actor, []logging.EntityRef{target}, payload)
}

// Damage publishes one damaging hit.
func Damage(ctx context.Context, pub logging.Publisher, turn int, actor logging.EntityRef, target logging.EntityRef, payload DamagePayload) {
	publish(ctx, pub, EventDamage, logging.SeverityInfo, turn, actor, []logging.EntityRef{target}, payload)
}

// PPDecreased publishes a PP deduction.
func PPDecreased(ctx context.Context, pub logging.Publisher, turn int, actor logging.EntityRef, payload PPPayload) {
	publish(ctx, pub, EventPPDecreased, logging.SeverityDebug, turn, actor, nil, payload)
}

// Resolved publishes the end of a move invocation.
func Resolved(ctx context.Context, pub logging.Publisher, turn int, actor logging.EntityRef, targets []logging.EntityRef, payload ResolvedPayload) {
	publish(ctx, pub, EventResolved, logging.SeverityInfo, turn, actor, targets, payload)
}
