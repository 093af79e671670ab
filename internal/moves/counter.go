package moves

import (
	"context"
	"sort"

	"pocket-arena/server/internal/battle"
)

// retaliation returns damage taken from the last attacker multiplied back.
type retaliation struct {
	category   battle.Category
	multiplier float64
}

func init() {
	for method, r := range map[string]retaliation{
		"s_counter":     {category: battle.CategoryPhysical, multiplier: 2},
		"s_mirror_coat": {category: battle.CategorySpecial, multiplier: 2},
		"s_metal_burst": {multiplier: 1.5},
	} {
		mustRegisterMethod(method, r.behavior())
	}
}

func (r retaliation) behavior() Behavior {
	b := Behavior{Validate: nonNegativePower}
	b.Usable = func(bc *BattleContext, inv *Invocation) bool {
		attacker, entry := lastAttacker(bc, inv.User)
		if !r.answers(bc, inv.User, attacker, entry) {
			return false
		}
		inv.Counterpart = attacker
		return true
	}
	b.Targets = func(bc *BattleContext, inv *Invocation) []*battle.Combatant {
		if inv.Counterpart.Dead() {
			return nil
		}
		return []*battle.Combatant{inv.Counterpart}
	}
	b.DealDamage = func(ctx context.Context, bc *BattleContext, inv *Invocation) bool {
		_, entry := lastAttacker(bc, inv.User)
		target := inv.FirstTarget()
		if entry == nil || target == nil {
			return false
		}
		damage := max(1, int(float64(entry.DamageDealt)*r.multiplier))
		strike(ctx, bc, b, inv, target, damage, false)
		return true
	}
	return b
}

// answers reports whether the move can hit back at attacker for entry.
func (r retaliation) answers(bc *BattleContext, user, attacker *battle.Combatant, entry *battle.HistoryEntry) bool {
	if attacker == nil || entry == nil || attacker.IsAlly(user) {
		return false
	}
	if entry.Turn != bc.turn() || entry.DamageDealt <= 0 || entry.Move.IsStatus() {
		return false
	}
	return r.category == "" || entry.Move.Category == r.category
}

// lastAttacker finds the combatant that most recently aimed its last move at
// user during this turn.
func lastAttacker(bc *BattleContext, user *battle.Combatant) (*battle.Combatant, *battle.HistoryEntry) {
	var candidates []*battle.Combatant
	for _, c := range bc.Field.AllAlive() {
		if c == user {
			continue
		}
		if entry := c.LastMove(); entry != nil && entry.Turn == bc.turn() && entry.Targeted(user) {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].AttackOrder > candidates[j].AttackOrder
	})
	return candidates[0], candidates[0].LastMove()
}
