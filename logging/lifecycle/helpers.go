package lifecycle

import (
	"context"

	"pocket-arena/server/logging"
)

const (
	// EventBattleStarted is emitted when a battle session is created.
	EventBattleStarted logging.EventType = "lifecycle.battle_started"
	// EventTurnStarted is emitted when every action of a turn was chosen.
	EventTurnStarted logging.EventType = "lifecycle.turn_started"
	// EventTurnEnded is emitted after end-of-turn bookkeeping.
	EventTurnEnded logging.EventType = "lifecycle.turn_ended"
	// EventBattleEnded is emitted once the outcome is decided.
	EventBattleEnded logging.EventType = "lifecycle.battle_ended"
)

// BattleStartedPayload captures the battle setup.
type BattleStartedPayload struct {
	VsType int    `json:"vsType"`
	Seed   string `json:"seed"`
	Wild   bool   `json:"wild,omitempty"`
}

// TurnPayload carries the number of queued actions.
type TurnPayload struct {
	Actions int `json:"actions"`
}

// BattleEndedPayload captures the outcome.
type BattleEndedPayload struct {
	Winner int    `json:"winner"`
	Reason string `json:"reason"`
}

// BattleStarted publishes a new battle.
func BattleStarted(ctx context.Context, pub logging.Publisher, payload BattleStartedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventBattleStarted,
		Turn:     1,
		Actor:    logging.Field(),
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
	})
}

// TurnStarted publishes the start of turn resolution.
func TurnStarted(ctx context.Context, pub logging.Publisher, turn int, payload TurnPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTurnStarted,
		Turn:     turn,
		Actor:    logging.Field(),
		Severity: logging.SeverityDebug,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
	})
}

// TurnEnded publishes the end of a turn.
func TurnEnded(ctx context.Context, pub logging.Publisher, turn int) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTurnEnded,
		Turn:     turn,
		Actor:    logging.Field(),
		Severity: logging.SeverityDebug,
		Category: logging.CategoryLifecycle,
	})
}

// BattleEnded publishes the battle outcome.
func BattleEnded(ctx context.Context, pub logging.Publisher, turn int, payload BattleEndedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventBattleEnded,
		Turn:     turn,
		Actor:    logging.Field(),
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
	})
}
