package moves

import (
	"context"

	"pocket-arena/server/internal/battle"
	"pocket-arena/server/logging"
	movelog "pocket-arena/server/logging/moves"
)

// defaultDealDamage hits every living target once. Status moves deal nothing
// and succeed.
func defaultDealDamage(ctx context.Context, bc *BattleContext, b Behavior, inv *Invocation) bool {
	if inv.Move.IsStatus() {
		return true
	}
	inv.Spread = len(inv.Targets) > 1
	for _, target := range inv.Targets {
		if target.Dead() || inv.User.Dead() {
			continue
		}
		hit(ctx, bc, b, inv, target)
	}
	applyRecoil(ctx, bc, inv)
	return true
}

// hit deals one blow of the move to target and returns the damage applied.
func hit(ctx context.Context, bc *BattleContext, b Behavior, inv *Invocation, target *battle.Combatant) int {
	critical := rollCritical(bc, inv, target)
	damage := CalcDamage(bc, b, inv, target, critical, rollDamage(bc))
	return strike(ctx, bc, b, inv, target, damage, critical)
}

// strike applies a computed damage value and its follow-ups.
func strike(ctx context.Context, bc *BattleContext, b Behavior, inv *Invocation, target *battle.Combatant, damage int, critical bool) int {
	if damage <= 0 {
		return 0
	}
	user, move := inv.User, inv.Move
	effectiveness := Effectiveness(b.moveType(bc, inv), target)
	applied := bc.Handlers.Damage.ApplyDamage(ctx, damage, target, user, move)
	inv.recordDamage(target, applied)
	inv.Hits++
	if critical {
		inv.Critical[target] = true
		bc.say(battle.MessageCritical, target, "A critical hit!")
	}
	switch {
	case effectiveness > 1:
		bc.say(battle.MessageEffective, target, "It's super effective!")
	case effectiveness < 1:
		bc.say(battle.MessageEffective, target, "It's not very effective...")
	}
	movelog.Damage(ctx, logging.WithAction(bc.Publisher, inv.ActionID), bc.turn(), logging.Combatant(user.ID), logging.Combatant(target.ID), movelog.DamagePayload{
		Move:          move.ID,
		Damage:        applied,
		Critical:      critical,
		Effectiveness: effectiveness,
	})
	bc.pace(ctx)
	contactReaction(ctx, bc, inv, target)
	return applied
}

// contactReaction inflicts the statuses effects on target return for a
// direct attacker.
func contactReaction(ctx context.Context, bc *BattleContext, inv *Invocation, target *battle.Combatant) {
	if inv.User.Dead() || !inv.Move.Flags.Direct {
		return
	}
	var status battle.Status
	bc.Field.EachEffect(func(e *battle.Effect) bool {
		if e.Hooks.ContactStatus != nil {
			status = e.Hooks.ContactStatus(e, inv.User, target, inv.Move)
		}
		return status == battle.StatusNone
	}, target)
	if status != battle.StatusNone {
		bc.Handlers.Status.ChangeStatus(ctx, status, inv.User, target, nil)
	}
}

func applyRecoil(ctx context.Context, bc *BattleContext, inv *Invocation) {
	if !inv.Move.Flags.Recoil || inv.DamageDealt <= 0 || inv.User.Dead() || inv.User.HasAbility("rock_head") {
		return
	}
	factor := max(inv.Move.RecoilFactor, 1)
	recoil := max(1, inv.DamageDealt/factor)
	bc.say(battle.MessageDamage, inv.User, "%s is damaged by recoil!", inv.User.Name())
	bc.Handlers.Damage.ApplyDamage(ctx, recoil, inv.User, inv.User, nil)
}

// pickStatus chooses one status by weighted chance on the outcome stream.
func pickStatus(bc *BattleContext, options []battle.StatusChance) battle.Status {
	if len(options) == 0 {
		return battle.StatusNone
	}
	total := 0
	for _, option := range options {
		total += max(option.Chance, 0)
	}
	if total <= 0 {
		return options[0].Status
	}
	roll := bc.Field.Streams.Outcome.Intn(total)
	for _, option := range options {
		weight := max(option.Chance, 0)
		if roll < weight {
			return option.Status
		}
		roll -= weight
	}
	return options[len(options)-1].Status
}

// defaultDealStatus applies the declared status to living targets. Damaging
// moves succeed regardless; status moves need one target affected.
func defaultDealStatus(ctx context.Context, bc *BattleContext, inv *Invocation) bool {
	if len(inv.Move.Statuses) == 0 {
		return true
	}
	status := pickStatus(bc, inv.Move.Statuses)
	applied := false
	for _, target := range inv.Targets {
		if target.Dead() {
			continue
		}
		if bc.Handlers.Status.ChangeStatus(ctx, status, target, inv.User, inv.Move) {
			applied = true
		}
	}
	if !applied && inv.Move.IsStatus() {
		stageFailed(bc, inv)
		return false
	}
	return true
}

// defaultDealStats applies the declared stage deltas to the targets, or to
// the user when the move lists self_stages.
func defaultDealStats(ctx context.Context, bc *BattleContext, inv *Invocation) bool {
	if len(inv.Move.Stages) == 0 {
		return true
	}
	recipients := inv.Targets
	if inv.Move.Param("self_stages", 0) == 1 {
		recipients = aliveOnly(inv.User)
	}
	return changeStages(ctx, bc, inv, recipients)
}

// changeStages applies the declared deltas to recipients. A status move that
// changed nothing fails; the stat handler already told why when it refused.
func changeStages(ctx context.Context, bc *BattleContext, inv *Invocation, recipients []*battle.Combatant) bool {
	changed, refused := false, false
	for _, target := range recipients {
		if target.Dead() {
			continue
		}
		for _, mod := range inv.Move.Stages {
			stat, ok := mod.StatID()
			if !ok || mod.Delta == 0 {
				continue
			}
			if bc.Handlers.Stat.ChangeStat(ctx, stat, mod.Delta, target, inv.User, inv.Move) != 0 {
				changed = true
			} else {
				refused = true
			}
		}
	}
	if changed || !inv.Move.IsStatus() {
		return true
	}
	if refused {
		inv.notified = true
	} else {
		stageFailed(bc, inv)
	}
	return false
}

// secondaryEffectWorking rolls the secondary effect chance of a damaging
// move. Moves without a secondary effect and status moves always work.
func secondaryEffectWorking(bc *BattleContext, inv *Invocation) bool {
	move := inv.Move
	if move.IsStatus() || (len(move.Statuses) == 0 && len(move.Stages) == 0) {
		return true
	}
	if move.Param("self_stages", 0) == 0 {
		shielded := true
		for _, target := range inv.Targets {
			if !target.HasAbility("shield_dust") {
				shielded = false
				break
			}
		}
		if shielded {
			return false
		}
	}
	chance := move.EffectChance
	if chance <= 0 {
		chance = 100
	}
	multiplier := bc.multiplier(func(e *battle.Effect) float64 {
		if e.Hooks.EffectChance == nil {
			return 1
		}
		return e.Hooks.EffectChance(e, inv.User, move)
	}, inv.User)
	return battle.Chance(bc.Field.Streams.Outcome, float64(chance)*multiplier/100)
}
