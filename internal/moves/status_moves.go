package moves

import (
	"context"
	"fmt"

	"pocket-arena/server/internal/battle"
	"pocket-arena/server/internal/effects"
)

func init() {
	mustRegisterMethod("s_torment", Behavior{Validate: zeroPower, DealEffect: tormentEffect})
	mustRegisterMethod("s_heal_block", Behavior{Validate: zeroPower, DealEffect: healBlockEffect})
	mustRegisterMethod("s_substitute", Behavior{Validate: zeroPower, Usable: substituteUsable, DealEffect: substituteEffect})
	mustRegisterMethod("s_lock_on", Behavior{Validate: zeroPower, DealEffect: lockOnEffect})
	mustRegisterMethod("s_after_you", Behavior{Validate: zeroPower, DealEffect: reorderEffect(true)})
	mustRegisterMethod("s_quash", Behavior{Validate: zeroPower, DealEffect: reorderEffect(false)})

	reload := basic
	reload.DealEffect = reloadEffect
	mustRegisterMethod("s_reload", reload)

	beakBlast := basic
	beakBlast.BeforeTurn = beakBlastCharge
	beakBlast.PreAttack = func(ctx context.Context, bc *BattleContext, inv *Invocation) {
		inv.User.Effects.Kill(effects.BeakBlast, battle.EndReasonExpired)
	}
	mustRegisterMethod("s_beak_blast", beakBlast)
}

func tormentEffect(ctx context.Context, bc *BattleContext, inv *Invocation) bool {
	applied := false
	for _, target := range inv.Targets {
		if target.Dead() || target.Effects.Has(effects.Torment) {
			continue
		}
		bc.addEffect(ctx, target.Effects, effects.NewTorment(), target)
		applied = true
	}
	if !applied {
		stageFailed(bc, inv)
	}
	return applied
}

func healBlockEffect(ctx context.Context, bc *BattleContext, inv *Invocation) bool {
	applied := false
	for _, target := range inv.Targets {
		if target.Dead() || target.Effects.Has(effects.HealBlock) {
			continue
		}
		bc.addEffect(ctx, target.Effects, effects.NewHealBlock(), target)
		applied = true
	}
	if !applied {
		stageFailed(bc, inv)
	}
	return applied
}

func substituteUsable(bc *BattleContext, inv *Invocation) bool {
	user := inv.User
	if user.Effects.Has(effects.Substitute) {
		inv.notify(bc, fmt.Sprintf("%s already has a substitute!", user.Name()))
		return false
	}
	if user.HP <= user.MaxHP()/4 {
		inv.notify(bc, "But it does not have enough HP left to make a substitute!")
		return false
	}
	return true
}

func substituteEffect(ctx context.Context, bc *BattleContext, inv *Invocation) bool {
	user := inv.User
	cost := max(1, user.MaxHP()/4)
	bc.Handlers.Damage.ApplyDamage(ctx, cost, user, user, nil)
	bc.addEffect(ctx, user.Effects, effects.NewSubstitute(cost), user)
	bc.say(battle.MessageEffect, user, "%s put in a substitute!", user.Name())
	return true
}

func lockOnEffect(ctx context.Context, bc *BattleContext, inv *Invocation) bool {
	target := inv.FirstTarget()
	if target == nil {
		return false
	}
	inv.User.Effects.Kill(effects.LockOn, battle.EndReasonReplaced)
	bc.addEffect(ctx, inv.User.Effects, effects.NewLockOn(target), inv.User)
	bc.say(battle.MessageEffect, inv.User, "%s took aim at %s!", inv.User.Name(), target.Name())
	return true
}

// reorderEffect moves the queued attack of the target to the front or the
// back of the queue.
func reorderEffect(front bool) func(ctx context.Context, bc *BattleContext, inv *Invocation) bool {
	return func(ctx context.Context, bc *BattleContext, inv *Invocation) bool {
		target := inv.FirstTarget()
		if target == nil || bc.Queue == nil {
			stageFailed(bc, inv)
			return false
		}
		action, ok := bc.Queue.AttackOf(target)
		if !ok {
			stageFailed(bc, inv)
			return false
		}
		if front {
			if err := bc.Queue.MoveToFront(action.ID); err != nil {
				stageFailed(bc, inv)
				return false
			}
			bc.say(battle.MessageText, target, "%s took the kind offer!", target.Name())
			return true
		}
		if err := bc.Queue.MoveToBack(action.ID); err != nil {
			stageFailed(bc, inv)
			return false
		}
		bc.say(battle.MessageText, target, "%s's move was postponed!", target.Name())
		return true
	}
}

func reloadEffect(ctx context.Context, bc *BattleContext, inv *Invocation) bool {
	if inv.User.Alive() && !inv.User.Effects.Has(effects.Recharge) {
		bc.addEffect(ctx, inv.User.Effects, effects.NewRecharge(inv.Move), inv.User)
	}
	return true
}

// beakBlastCharge heats the beak before anyone acts so that direct attackers
// get burned.
func beakBlastCharge(ctx context.Context, bc *BattleContext, action *battle.Action) {
	user := action.User
	if user.Status == battle.StatusFreeze || user.Status == battle.StatusSleep {
		return
	}
	if user.Effects.Has(effects.BeakBlast) {
		return
	}
	bc.addEffect(ctx, user.Effects, effects.NewBeakBlast(), user)
	bc.say(battle.MessageEffect, user, "%s started heating up its beak!", user.Name())
	bc.pace(ctx)
}
