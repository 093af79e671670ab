package moves

import (
	"context"

	"pocket-arena/server/internal/battle"
	"pocket-arena/server/internal/effects"
)

// Execute runs a queued attack. A combatant locked into its move keeps the
// targets it chose when the lock began.
func Execute(ctx context.Context, bc *BattleContext, action *battle.Action) bool {
	if action == nil || action.Kind != battle.ActionAttack || action.Slot == nil {
		return false
	}
	user := action.User
	if user.Dead() || !user.Active() {
		return false
	}
	inv := NewInvocation(bc.Field, user, action.Slot, action.TargetBank, action.TargetPosition)
	inv.ActionID = action.ID
	if data, _ := effects.Forced(user); data != nil && data.Move != nil && data.Move.ID == action.Slot.ID() && len(data.Targets) > 0 {
		inv.Requested = append([]*battle.Combatant(nil), data.Targets...)
	}
	return Use(ctx, bc, inv)
}

// BeforeTurn runs the start-of-turn hooks of the queued attacks.
func BeforeTurn(ctx context.Context, bc *BattleContext) {
	for _, action := range bc.Queue.Actions() {
		if action.Kind != battle.ActionAttack || action.Slot == nil || action.User.Dead() {
			continue
		}
		b, err := Lookup(action.Slot.Def)
		if err != nil || b.BeforeTurn == nil {
			continue
		}
		b.BeforeTurn(ctx, bc, action)
	}
}

// Intercept runs, ahead of time, every queued attack whose behavior strikes
// a combatant about to switch out.
func Intercept(ctx context.Context, bc *BattleContext, leaving *battle.Combatant) {
	for _, action := range bc.Queue.Actions() {
		if action.Kind != battle.ActionAttack || action.Slot == nil || action.User.Bank == leaving.Bank {
			continue
		}
		if action.User.Dead() || !action.User.Active() {
			continue
		}
		if action.TargetBank != leaving.Bank || action.TargetPosition != leaving.Position {
			continue
		}
		b, err := Lookup(action.Slot.Def)
		if err != nil || !b.Intercepts {
			continue
		}
		if _, err := bc.Queue.Remove(action.ID); err != nil {
			continue
		}
		inv := NewInvocation(bc.Field, action.User, action.Slot, action.TargetBank, action.TargetPosition)
		inv.ActionID = action.ID
		inv.Intercepting = true
		Use(ctx, bc, inv)
	}
}
