package moves

import (
	"pocket-arena/server/internal/battle"
)

// ResolveTargets materializes the target policy of def for user. For single
// target policies the requested position wins, then an adjacent candidate,
// then any candidate of the requested bank. The result holds living
// combatants only and may be empty.
func ResolveTargets(field *battle.Field, user *battle.Combatant, def *battle.Definition, bank, position int) []*battle.Combatant {
	if field == nil || user == nil || def == nil {
		return nil
	}
	switch def.Target {
	case battle.TargetUser:
		return aliveOnly(user)
	case battle.TargetAdjacentAllFoe:
		return field.AdjacentFoesOf(user)
	case battle.TargetAllFoe:
		return field.FoesOf(user)
	case battle.TargetAdjacentAllPokemon:
		return append(field.AdjacentFoesOf(user), field.AdjacentAlliesOf(user)...)
	case battle.TargetAllPokemon:
		return field.AllAlive()
	case battle.TargetAllAlly:
		return append(aliveOnly(user), field.AlliesOf(user)...)
	case battle.TargetAllAllyButUser:
		return field.AlliesOf(user)
	case battle.TargetRandomFoe:
		foes := field.FoesOf(user)
		if len(foes) == 0 {
			return nil
		}
		return []*battle.Combatant{foes[battle.RandomInt(field.Streams.Outcome, 0, len(foes)-1)]}
	}

	candidates := singleCandidates(field, user, def.Target)
	if len(candidates) == 0 {
		return nil
	}
	if chosen := field.At(bank, position); chosen != nil && chosen.Alive() && contains(candidates, chosen) {
		return []*battle.Combatant{chosen}
	}
	for _, c := range candidates {
		if c.Bank == bank && abs(c.Position-user.Position) <= 1 {
			return []*battle.Combatant{c}
		}
	}
	for _, c := range candidates {
		if c.Bank == bank {
			return []*battle.Combatant{c}
		}
	}
	return []*battle.Combatant{candidates[0]}
}

func singleCandidates(field *battle.Field, user *battle.Combatant, policy battle.TargetPolicy) []*battle.Combatant {
	switch policy {
	case battle.TargetAdjacentFoe:
		return field.AdjacentFoesOf(user)
	case battle.TargetAdjacentAlly:
		return field.AdjacentAlliesOf(user)
	case battle.TargetUserOrAdjacentAlly:
		return append(aliveOnly(user), field.AdjacentAlliesOf(user)...)
	case battle.TargetAnyOtherPokemon:
		return append(field.FoesOf(user), field.AlliesOf(user)...)
	default:
		return append(field.AdjacentFoesOf(user), field.AdjacentAlliesOf(user)...)
	}
}

func defaultTargets(bc *BattleContext, inv *Invocation) []*battle.Combatant {
	if len(inv.Requested) > 0 && inv.Move.OneTarget() {
		requested := inv.Requested[0]
		return ResolveTargets(bc.Field, inv.User, inv.Move, requested.Bank, requested.Position)
	}
	return ResolveTargets(bc.Field, inv.User, inv.Move, inv.TargetBank, inv.TargetPosition)
}

func aliveOnly(c *battle.Combatant) []*battle.Combatant {
	if c.Dead() {
		return nil
	}
	return []*battle.Combatant{c}
}

func contains(list []*battle.Combatant, c *battle.Combatant) bool {
	for _, item := range list {
		if item == c {
			return true
		}
	}
	return false
}

func allDead(list []*battle.Combatant) bool {
	for _, c := range list {
		if c.Alive() {
			return false
		}
	}
	return true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
