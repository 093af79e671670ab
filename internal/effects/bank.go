package effects

import (
	"fmt"

	"pocket-arena/server/internal/battle"
)

// NewScreen halves damage of the category against the bank it is added to.
func NewScreen(name string, category battle.Category, turns int) *battle.Effect {
	effect := battle.NewEffect(name, turns)
	effect.PersistOnSwitch = true
	effect.Cleansable = true
	effect.Hooks.OnCreate = func(e *battle.Effect) string {
		return fmt.Sprintf("%s raised the team's defenses!", battle.DisplayName(name))
	}
	effect.Hooks.OnExpire = func(e *battle.Effect) string {
		return fmt.Sprintf("The team's %s wore off!", battle.DisplayName(name))
	}
	effect.Hooks.Mod1 = func(e *battle.Effect, user, target *battle.Combatant, move *battle.Definition) float64 {
		if move == nil || move.Category != category {
			return 1
		}
		if target == nil || target.Bank != e.Scope.Bank || user.Bank == target.Bank {
			return 1
		}
		return 0.5
	}
	return effect
}

// ScreenFor returns the screen name guarding against category.
func ScreenFor(category battle.Category) string {
	switch category {
	case battle.CategoryPhysical:
		return Reflect
	case battle.CategorySpecial:
		return LightScreen
	default:
		return ""
	}
}

// NewMist stops foes from lowering the bank's stats.
func NewMist() *battle.Effect {
	effect := battle.NewEffect(Mist, BankGuardTurns)
	effect.PersistOnSwitch = true
	effect.Cleansable = true
	effect.Hooks.OnCreate = func(*battle.Effect) string { return "The team became shrouded in mist!" }
	return effect
}

// NewSafeguard stops foes from inflicting status on the bank.
func NewSafeguard() *battle.Effect {
	effect := battle.NewEffect(Safeguard, BankGuardTurns)
	effect.PersistOnSwitch = true
	effect.Cleansable = true
	effect.Hooks.OnCreate = func(*battle.Effect) string { return "The team became cloaked in a mystical veil!" }
	return effect
}

// NewRainbow doubles the secondary effect chance of the bank's moves.
func NewRainbow() *battle.Effect {
	effect := battle.NewEffect(Rainbow, PledgeTurns)
	effect.PersistOnSwitch = true
	effect.Hooks.OnCreate = func(*battle.Effect) string { return "A rainbow appeared in the sky!" }
	effect.Hooks.EffectChance = func(e *battle.Effect, user *battle.Combatant, _ *battle.Definition) float64 {
		if user == nil || user.Bank != e.Scope.Bank {
			return 1
		}
		return 2
	}
	return effect
}

// NewSeaOfFire burns every non-fire combatant of the bank at end of turn.
func NewSeaOfFire() *battle.Effect {
	effect := battle.NewEffect(SeaOfFire, PledgeTurns)
	effect.PersistOnSwitch = true
	effect.Hooks.OnCreate = func(*battle.Effect) string { return "A sea of fire enveloped the team!" }
	effect.Hooks.Residual = func(e *battle.Effect, c *battle.Combatant) int {
		if c == nil || c.Bank != e.Scope.Bank || c.HasType(battle.TypeFire) {
			return 0
		}
		return max(1, c.MaxHP()/SeaOfFireDivisor)
	}
	return effect
}

// NewSwamp quarters the speed of the bank.
func NewSwamp() *battle.Effect {
	effect := battle.NewEffect(Swamp, PledgeTurns)
	effect.PersistOnSwitch = true
	effect.Hooks.OnCreate = func(*battle.Effect) string { return "A swamp enveloped the team!" }
	effect.Hooks.SpeedMultiplier = func(e *battle.Effect, c *battle.Combatant) float64 {
		if c == nil || c.Bank != e.Scope.Bank {
			return 1
		}
		return 0.25
	}
	return effect
}

// HazardState is the Data of entry hazards.
type HazardState struct {
	Layers int
}

// NewSpikes lays one layer of spikes.
func NewSpikes() *battle.Effect {
	effect := battle.NewPermanentEffect(Spikes)
	effect.PersistOnSwitch = true
	effect.Cleansable = true
	effect.Data = &HazardState{Layers: 1}
	return effect
}

// NewStealthRock scatters pointed stones around the bank.
func NewStealthRock() *battle.Effect {
	effect := battle.NewPermanentEffect(StealthRock)
	effect.PersistOnSwitch = true
	effect.Cleansable = true
	effect.Data = &HazardState{Layers: 1}
	return effect
}

// Grounded reports whether c touches the ground.
func Grounded(c *battle.Combatant) bool {
	return c != nil && !c.HasType(battle.TypeFlying) && !c.HasAbility("levitate")
}

// EntryDamage is the hazard damage c takes when it enters its bank.
func EntryDamage(field *battle.Field, c *battle.Combatant) int {
	reg := field.BankEffects(c.Bank)
	if reg == nil || c.HasAbility("magic_guard") {
		return 0
	}
	total := 0
	if spikes := reg.Get(Spikes); spikes != nil && Grounded(c) {
		state, _ := spikes.Data.(*HazardState)
		divisor := 8
		switch {
		case state != nil && state.Layers >= 3:
			divisor = 4
		case state != nil && state.Layers == 2:
			divisor = 6
		}
		total += max(1, c.MaxHP()/divisor)
	}
	if reg.Has(StealthRock) {
		factor := 1.0
		for _, t := range c.Types {
			factor *= battle.Effectiveness(battle.TypeRock, t)
		}
		total += max(1, int(float64(c.MaxHP())*factor/8))
	}
	return total
}
