// Package moves resolves move uses. Every use runs one pipeline whose stages
// a move's Behavior may override; state changes go through the handlers of
// the BattleContext.
package moves

import (
	"context"
	"fmt"

	"pocket-arena/server/internal/battle"
	"pocket-arena/server/internal/handlers"
	"pocket-arena/server/internal/telemetry"
	"pocket-arena/server/logging"
	effectlog "pocket-arena/server/logging/effects"
)

// PreventionHook vetoes a move before it runs. A non-empty result is the
// message shown to the player.
type PreventionHook func(ctx context.Context, bc *BattleContext, user *battle.Combatant, targets []*battle.Combatant, move *battle.Definition) string

// BattleContext is everything a hook may read or report to. It replaces any
// ambient battle state.
type BattleContext struct {
	Field      *battle.Field
	Handlers   *handlers.Set
	Presenter  battle.Presenter
	Publisher  logging.Publisher
	Queue      *battle.ActionQueue
	Metrics    telemetry.Metrics
	Prevention []PreventionHook
}

// NewBattleContext wires the default handlers around field.
func NewBattleContext(field *battle.Field, presenter battle.Presenter, publisher logging.Publisher) *BattleContext {
	if presenter == nil {
		presenter = battle.NopPresenter()
	}
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	return &BattleContext{
		Field:     field,
		Handlers:  handlers.NewDefault(handlers.Env{Field: field, Presenter: presenter, Publisher: publisher}),
		Presenter: presenter,
		Publisher: publisher,
		Queue:     battle.NewActionQueue(field.Streams.Order),
		Metrics:   telemetry.NopMetrics(),
	}
}

func (bc *BattleContext) turn() int {
	if bc == nil || bc.Field == nil {
		return 0
	}
	return bc.Field.Turn
}

func (bc *BattleContext) count(key string) {
	if bc.Metrics != nil {
		bc.Metrics.Add(key, 1)
	}
}

func (bc *BattleContext) present(msg battle.Message) {
	msg.Turn = bc.turn()
	bc.Presenter.Present(msg)
}

func (bc *BattleContext) say(kind battle.MessageKind, actor *battle.Combatant, format string, args ...any) {
	msg := battle.Message{Kind: kind, Text: fmt.Sprintf(format, args...)}
	if actor != nil {
		msg.Actor = actor.ID
	}
	bc.present(msg)
}

// pace blocks until the presenter caught up. Playback errors only stop pacing.
func (bc *BattleContext) pace(ctx context.Context) {
	_ = bc.Presenter.Wait(ctx)
}

// multiplier multiplies the results of an effect hook over every effect that
// applies to the combatants.
func (bc *BattleContext) multiplier(pick func(e *battle.Effect) float64, combatants ...*battle.Combatant) float64 {
	result := 1.0
	bc.Field.EachEffect(func(e *battle.Effect) bool {
		result *= pick(e)
		return true
	}, combatants...)
	return result
}

// anyEffect reports whether the predicate holds for an effect applying to the
// combatants.
func (bc *BattleContext) anyEffect(match func(e *battle.Effect) bool, combatants ...*battle.Combatant) bool {
	found := false
	bc.Field.EachEffect(func(e *battle.Effect) bool {
		if match(e) {
			found = true
			return false
		}
		return true
	}, combatants...)
	return found
}

func (bc *BattleContext) announceEffect(e *battle.Effect, holder *battle.Combatant) {
	if e == nil || e.Hooks.OnCreate == nil {
		return
	}
	if text := e.Hooks.OnCreate(e); text != "" {
		bc.say(battle.MessageEffect, holder, "%s", text)
	}
}

// addEffect attaches e to reg, shows its creation text and logs it. holder is
// nil for bank and field effects.
func (bc *BattleContext) addEffect(ctx context.Context, reg *battle.Registry, e *battle.Effect, holder *battle.Combatant) {
	reg.Add(e)
	bc.announceEffect(e, holder)
	ref := logging.Field()
	if holder != nil {
		ref = logging.Combatant(holder.ID)
	}
	effectlog.Added(ctx, bc.Publisher, bc.turn(), ref, effectlog.AddedPayload{
		Effect:   e.Name,
		EffectID: e.ID,
		Scope:    string(e.Scope.Kind),
		Turns:    e.Turns,
	})
}
