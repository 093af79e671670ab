package combatants

import (
	"context"

	"pocket-arena/server/logging"
)

const (
	EventDamaged       logging.EventType = "combatants.damaged"
	EventHealed        logging.EventType = "combatants.healed"
	EventStatChanged   logging.EventType = "combatants.stat_changed"
	EventStatusChanged logging.EventType = "combatants.status_changed"
	EventFainted       logging.EventType = "combatants.fainted"
	EventSwitched      logging.EventType = "combatants.switched"
)

type HPPayload struct {
	Amount int    `json:"amount"`
	HP     int    `json:"hp"`
	MaxHP  int    `json:"maxHp"`
	Source string `json:"source,omitempty"`
}

type StatPayload struct {
	Stat  string `json:"stat"`
	Delta int    `json:"delta"`
	Stage int    `json:"stage"`
}

type StatusPayload struct {
	Status string `json:"status"`
}

type SwitchPayload struct {
	Replacement string `json:"replacement"`
	Forced      bool   `json:"forced,omitempty"`
}

func event(eventType logging.EventType, turn int, actor logging.EntityRef, payload any) logging.Event {
	return logging.Event{
		Type:     eventType,
		Turn:     turn,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombatants,
		Payload:  payload,
	}
}

// Damaged publishes HP loss.
func Damaged(ctx context.Context, pub logging.Publisher, turn int, actor logging.EntityRef, payload HPPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, event(EventDamaged, turn, actor, payload))
}

// Healed publishes HP recovery.
func Healed(ctx context.Context, pub logging.Publisher, turn int, actor logging.EntityRef, payload HPPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, event(EventHealed, turn, actor, payload))
}

func StatChanged(ctx context.Context, pub logging.Publisher, turn int, actor logging.EntityRef, payload StatPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, event(EventStatChanged, turn, actor, payload))
}

func StatusChanged(ctx context.Context, pub logging.Publisher, turn int, actor logging.EntityRef, payload StatusPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, event(EventStatusChanged, turn, actor, payload))
}

// Fainted publishes a knockout.
func Fainted(ctx context.Context, pub logging.Publisher, turn int, actor logging.EntityRef) {
	if pub == nil {
		return
	}
	ev := event(EventFainted, turn, actor, nil)
	ev.Severity = logging.SeverityWarn
	pub.Publish(ctx, ev)
}

// Switched publishes a replacement; the actor is the combatant leaving.
func Switched(ctx context.Context, pub logging.Publisher, turn int, actor logging.EntityRef, payload SwitchPayload) {
	if pub == nil {
		return
	}
	ev := event(EventSwitched, turn, actor, payload)
	ev.Targets = []logging.EntityRef{logging.Combatant(payload.Replacement)}
	pub.Publish(ctx, ev)
}
