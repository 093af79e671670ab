package handlers

import (
	"context"

	"pocket-arena/server/internal/battle"
	"pocket-arena/server/internal/effects"
	"pocket-arena/server/logging"
	combatantlog "pocket-arena/server/logging/combatants"
)

// Damage is the default DamageHandler.
type Damage struct {
	env Env
}

// ApplyDamage removes HP from target, or from its substitute when a foe's
// move hits the decoy. It returns the amount actually removed.
func (h *Damage) ApplyDamage(ctx context.Context, amount int, target, source *battle.Combatant, move *battle.Definition) int {
	if target == nil || target.Dead() || amount <= 0 {
		return 0
	}
	if source != nil && move != nil && effects.BehindSubstitute(source, target, move) {
		return h.hitSubstitute(ctx, amount, target)
	}
	applied := min(amount, target.HP)
	target.HP -= applied
	label := ""
	if move != nil {
		label = move.ID
	}
	combatantlog.Damaged(ctx, h.env.Publisher, h.env.turn(), logging.Combatant(target.ID), combatantlog.HPPayload{
		Amount: applied,
		HP:     target.HP,
		MaxHP:  target.MaxHP(),
		Source: label,
	})
	h.env.say(battle.MessageDamage, target, applied, "%s lost %d HP.", target.Name(), applied)
	if target.HP == 0 {
		h.faint(ctx, target)
	}
	return applied
}

func (h *Damage) hitSubstitute(ctx context.Context, amount int, target *battle.Combatant) int {
	effect := target.Effects.Get(effects.Substitute)
	state, _ := effect.Data.(*effects.SubstituteState)
	if state == nil {
		return 0
	}
	applied := min(amount, state.HP)
	state.HP -= applied
	h.env.say(battle.MessageDamage, target, applied, "The substitute took damage for %s!", target.Name())
	if state.HP <= 0 {
		effect.Kill(battle.EndReasonKilled)
		h.env.say(battle.MessageEffect, target, 0, "%s's substitute faded!", target.Name())
	}
	return applied
}

func (h *Damage) faint(ctx context.Context, target *battle.Combatant) {
	target.Status = battle.StatusNone
	target.Effects.KillMatching(func(*battle.Effect) bool { return true }, battle.EndReasonOwnerFaint)
	combatantlog.Fainted(ctx, h.env.Publisher, h.env.turn(), logging.Combatant(target.ID))
	h.env.say(battle.MessageFaint, target, 0, "%s fainted!", target.Name())
}

// Heal restores HP up to the maximum. It fails on a dead or full combatant
// and under heal block.
func (h *Damage) Heal(ctx context.Context, target *battle.Combatant, amount int, source *battle.Combatant) bool {
	if target == nil || target.Dead() || amount <= 0 {
		return false
	}
	if target.Effects.Has(effects.HealBlock) {
		h.env.say(battle.MessageFailure, target, 0, "%s can't recover HP because of heal block!", target.Name())
		return false
	}
	if target.HP >= target.MaxHP() {
		h.env.say(battle.MessageFailure, target, 0, "%s's HP is full!", target.Name())
		return false
	}
	healed := min(amount, target.MaxHP()-target.HP)
	target.HP += healed
	sourceID := ""
	if source != nil {
		sourceID = source.ID
	}
	combatantlog.Healed(ctx, h.env.Publisher, h.env.turn(), logging.Combatant(target.ID), combatantlog.HPPayload{
		Amount: healed,
		HP:     target.HP,
		MaxHP:  target.MaxHP(),
		Source: sourceID,
	})
	h.env.say(battle.MessageHeal, target, healed, "%s regained health!", target.Name())
	return true
}
