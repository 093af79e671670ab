package handlers

import (
	"context"

	"pocket-arena/server/internal/battle"
)

var lockedAbilities = map[string]bool{
	"multitype":       true,
	"stance_change":   true,
	"schooling":       true,
	"comatose":        true,
	"shields_down":    true,
	"disguise":        true,
	"rks_system":      true,
	"battle_bond":     true,
	"power_construct": true,
}

// Ability is the default AbilityHandler.
type Ability struct {
	env Env
}

func (h *Ability) CanChangeAbility(target *battle.Combatant, ability string, source *battle.Combatant, move *battle.Definition) bool {
	if target == nil || target.Dead() || target.Ability == ability {
		return false
	}
	return !lockedAbilities[target.Ability] && !lockedAbilities[ability]
}

func (h *Ability) ChangeAbility(ctx context.Context, target *battle.Combatant, ability string, source *battle.Combatant, move *battle.Definition) {
	if !h.CanChangeAbility(target, ability, source, move) {
		return
	}
	target.Ability = ability
	h.env.say(battle.MessageText, target, 0, "%s acquired %s!", target.Name(), battle.DisplayName(ability))
}
