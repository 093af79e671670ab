package ai

import (
	"pocket-arena/server/internal/battle"
	"pocket-arena/server/internal/moves"
)

// Choice is one scored (move, target) pair.
type Choice struct {
	Slot           *battle.MoveSlot
	TargetBank     int
	TargetPosition int
	Score          float64
}

// Chooser picks moves for combatants no player controls. It reads the battle
// and draws from the generic stream only.
type Chooser struct {
	Profile Profile
}

// NewChooser returns a chooser acting with profile.
func NewChooser(profile Profile) *Chooser {
	return &Chooser{Profile: profile}
}

// Choose returns the move user should use this turn. It reports false when
// no move can be picked.
func (c *Chooser) Choose(bc *moves.BattleContext, user *battle.Combatant) (Choice, bool) {
	candidates := c.Candidates(bc, user)
	if len(candidates) == 0 {
		return Choice{}, false
	}

	best := candidates[0]
	for _, candidate := range candidates[1:] {
		if candidate.Score > best.Score {
			best = candidate
		}
	}

	rng := bc.Field.Streams.Generic
	if battle.Chance(rng, c.Profile.MistakeRate) {
		viable := make([]Choice, 0, len(candidates))
		for _, candidate := range candidates {
			if candidate.Score > 0 {
				viable = append(viable, candidate)
			}
		}
		if len(viable) > 1 {
			return viable[battle.RandomInt(rng, 0, len(viable)-1)], true
		}
	}
	return best, true
}

// Candidates scores every usable move against every target it may be aimed
// at, in move slot order.
func (c *Chooser) Candidates(bc *moves.BattleContext, user *battle.Combatant) []Choice {
	if bc == nil || user == nil || user.Dead() {
		return nil
	}
	field := bc.Field
	var out []Choice
	for _, slot := range user.Moves {
		if slot == nil || slot.Def == nil || moves.Disabled(field, user, slot) != "" {
			continue
		}
		def := slot.Def
		h := For(def.Method, c.Profile.Level)

		if def.OneTarget() && !def.NoChoice() {
			for _, target := range field.AllAlive() {
				resolved := moves.ResolveTargets(field, user, def, target.Bank, target.Position)
				if len(resolved) != 1 || resolved[0] != target {
					continue
				}
				out = append(out, Choice{
					Slot:           slot,
					TargetBank:     target.Bank,
					TargetPosition: target.Position,
					Score:          c.score(bc, h, def, user, resolved),
				})
			}
			continue
		}

		var targets []*battle.Combatant
		if def.Target == battle.TargetRandomFoe {
			targets = field.FoesOf(user)
		} else {
			targets = moves.ResolveTargets(field, user, def, user.Bank, user.Position)
		}
		if len(targets) == 0 && def.IsStatus() {
			targets = []*battle.Combatant{user}
		}
		score := c.score(bc, h, def, user, targets)
		if def.Target == battle.TargetRandomFoe && len(targets) > 0 {
			score /= float64(len(targets))
		}
		out = append(out, Choice{
			Slot:           slot,
			TargetBank:     user.Bank,
			TargetPosition: user.Position,
			Score:          score,
		})
	}
	return out
}

// score sums the per-target scores. Damage dealt to the user's own side
// counts against the move.
func (c *Chooser) score(bc *moves.BattleContext, h Heuristic, def *battle.Definition, user *battle.Combatant, targets []*battle.Combatant) float64 {
	total := 0.0
	for _, target := range targets {
		s := h.Score(bc, def, user, target)
		if !def.IsStatus() {
			if !h.IgnoreEffectiveness && c.Profile.SeeEffectiveness {
				s *= moves.Effectiveness(def.Type, target)
			}
			if !h.IgnorePower && c.Profile.SeePower {
				s *= 1 + finishing(bc, def, user, target)
			}
			if target.Bank == user.Bank {
				s = -s
			}
		}
		total += s
	}
	return total
}

// finishing is the share of target's HP the move is expected to take, capped
// at 1.
func finishing(bc *moves.BattleContext, def *battle.Definition, user, target *battle.Combatant) float64 {
	if target.HP <= 0 {
		return 0
	}
	estimate := moves.Estimate(bc, user, def, target)
	return min(1, float64(estimate)/float64(target.HP))
}
