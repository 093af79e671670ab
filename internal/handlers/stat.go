package handlers

import (
	"context"

	"pocket-arena/server/internal/battle"
	"pocket-arena/server/internal/effects"
	"pocket-arena/server/logging"
	combatantlog "pocket-arena/server/logging/combatants"
	"pocket-arena/server/stats"
)

var stageLowerGuards = map[string]bool{
	"clear_body":      true,
	"white_smoke":     true,
	"full_metal_body": true,
}

var stageWords = map[int]string{
	1:  "rose",
	2:  "rose sharply",
	3:  "rose drastically",
	-1: "fell",
	-2: "harshly fell",
	-3: "severely fell",
}

var statLabels = map[stats.StatID]string{
	stats.StatAtk: "Attack",
	stats.StatDfe: "Defense",
	stats.StatSpd: "Speed",
	stats.StatAts: "Sp. Atk",
	stats.StatDfs: "Sp. Def",
	stats.StatAcc: "accuracy",
	stats.StatEva: "evasiveness",
}

// Stat is the default StatHandler.
type Stat struct {
	env Env
}

func (h *Stat) CanIncrease(stat stats.StatID, target *battle.Combatant) bool {
	if target == nil || target.Dead() {
		return false
	}
	if target.HasAbility("contrary") {
		return target.Stages.CanDecrease(stat)
	}
	return target.Stages.CanIncrease(stat)
}

// CanDecrease honors abilities and mist when a foe lowers the stat.
func (h *Stat) CanDecrease(stat stats.StatID, target, source *battle.Combatant, move *battle.Definition) bool {
	if target == nil || target.Dead() {
		return false
	}
	if source != nil && source != target {
		if stageLowerGuards[target.Ability] {
			return false
		}
		if h.env.Field.BankEffects(target.Bank).Has(effects.Mist) {
			return false
		}
		if effects.BehindSubstitute(source, target, move) {
			return false
		}
	}
	if target.HasAbility("contrary") {
		return target.Stages.CanIncrease(stat)
	}
	return target.Stages.CanDecrease(stat)
}

// ChangeStat applies delta and returns the stage change that happened. The
// result never leaves the stage range.
func (h *Stat) ChangeStat(ctx context.Context, stat stats.StatID, delta int, target, source *battle.Combatant, move *battle.Definition) int {
	if target == nil || delta == 0 {
		return 0
	}
	if delta < 0 && !h.CanDecrease(stat, target, source, move) {
		h.env.say(battle.MessageFailure, target, 0, "%s's %s won't go any lower!", target.Name(), statLabels[stat])
		return 0
	}
	if delta > 0 && !h.CanIncrease(stat, target) {
		h.env.say(battle.MessageFailure, target, 0, "%s's %s won't go any higher!", target.Name(), statLabels[stat])
		return 0
	}
	if target.HasAbility("simple") {
		delta *= 2
	}
	if target.HasAbility("contrary") {
		delta = -delta
	}
	applied := target.Stages.Change(stat, delta)
	if applied == 0 {
		return 0
	}
	combatantlog.StatChanged(ctx, h.env.Publisher, h.env.turn(), logging.Combatant(target.ID), combatantlog.StatPayload{
		Stat:  stat.String(),
		Delta: applied,
		Stage: target.Stages.Get(stat),
	})
	word := stageWords[max(-3, min(3, applied))]
	h.env.say(battle.MessageStat, target, applied, "%s's %s %s!", target.Name(), statLabels[stat], word)
	return applied
}

func (h *Stat) SetBasis(ctx context.Context, stat stats.StatID, value int, target *battle.Combatant) {
	if target == nil {
		return
	}
	target.Basis = target.Basis.With(stat, value)
}
