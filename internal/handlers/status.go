package handlers

import (
	"context"

	"pocket-arena/server/internal/battle"
	"pocket-arena/server/internal/effects"
	"pocket-arena/server/logging"
	combatantlog "pocket-arena/server/logging/combatants"
)

var statusTypeImmunity = map[battle.Status][]battle.Type{
	battle.StatusBurn:      {battle.TypeFire},
	battle.StatusFreeze:    {battle.TypeIce},
	battle.StatusParalysis: {battle.TypeElectric},
	battle.StatusPoison:    {battle.TypePoison, battle.TypeSteel},
	battle.StatusToxic:     {battle.TypePoison, battle.TypeSteel},
}

var statusAbilityImmunity = map[battle.Status][]string{
	battle.StatusBurn:      {"water_veil", "water_bubble"},
	battle.StatusFreeze:    {"magma_armor"},
	battle.StatusParalysis: {"limber"},
	battle.StatusPoison:    {"immunity"},
	battle.StatusToxic:     {"immunity"},
	battle.StatusSleep:     {"insomnia", "vital_spirit", "sweet_veil"},
}

var statusVerbs = map[battle.Status]string{
	battle.StatusBurn:      "was burned",
	battle.StatusFreeze:    "was frozen solid",
	battle.StatusParalysis: "is paralyzed",
	battle.StatusPoison:    "was poisoned",
	battle.StatusToxic:     "was badly poisoned",
	battle.StatusSleep:     "fell asleep",
}

// Status is the default StatusHandler.
type Status struct {
	env Env
}

// CanApply reports whether status can land on target. Curing (StatusNone)
// only needs a living target with a status.
func (h *Status) CanApply(status battle.Status, target, source *battle.Combatant, move *battle.Definition) bool {
	if target == nil || target.Dead() {
		return false
	}
	if status == battle.StatusNone {
		return target.Status != battle.StatusNone
	}
	if target.Status != battle.StatusNone || target.HasAbility("comatose") {
		return false
	}
	for _, t := range statusTypeImmunity[status] {
		if target.HasType(t) {
			return false
		}
	}
	for _, ability := range statusAbilityImmunity[status] {
		if target.HasAbility(ability) {
			return false
		}
	}
	if source != nil && source != target {
		if h.env.Field.BankEffects(target.Bank).Has(effects.Safeguard) {
			return false
		}
		if move != nil && move.IsStatus() && effects.BehindSubstitute(source, target, move) {
			return false
		}
	}
	if h.env.Field.Terrain.Kind == battle.TerrainMisty && effects.Grounded(target) {
		return false
	}
	if status == battle.StatusSleep && h.env.Field.Terrain.Kind == battle.TerrainElectric && effects.Grounded(target) {
		return false
	}
	return true
}

// ChangeStatus applies or cures a status. It reports whether the status changed.
func (h *Status) ChangeStatus(ctx context.Context, status battle.Status, target, source *battle.Combatant, move *battle.Definition) bool {
	if !h.CanApply(status, target, source, move) {
		return false
	}
	previous := target.Status
	target.Status = status
	target.SleepTurns = 0
	target.ToxicCounter = 0
	if status == battle.StatusSleep {
		target.SleepTurns = move.Param("sleep_turns", 0)
		if target.SleepTurns <= 0 {
			target.SleepTurns = battle.RandomInt(h.env.Field.Streams.Outcome, 1, 3)
		}
	}
	combatantlog.StatusChanged(ctx, h.env.Publisher, h.env.turn(), logging.Combatant(target.ID), combatantlog.StatusPayload{Status: string(status)})
	if status == battle.StatusNone {
		h.env.say(battle.MessageStatus, target, 0, "%s was cured of its %s.", target.Name(), previous)
		return true
	}
	h.env.say(battle.MessageStatus, target, 0, "%s %s!", target.Name(), statusVerbs[status])
	return true
}
