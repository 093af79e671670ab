package moves

import (
	"context"

	"pocket-arena/server/internal/battle"
	"pocket-arena/server/internal/effects"
)

func init() {
	mustRegisterMethod("s_protect", Behavior{
		Validate:   zeroPower,
		DealEffect: protectEffect,
	})
}

// ProtectChance halves with every successful protection used on the
// directly preceding turns.
func ProtectChance(bc *BattleContext, user *battle.Combatant) float64 {
	streak := 0
	turn := bc.turn() - 1
	for i := len(user.History) - 1; i >= 0; i-- {
		entry := user.History[i]
		if entry.Turn == bc.turn() {
			continue
		}
		if entry.Turn != turn || !entry.Success || entry.Move == nil || entry.Move.Method != "s_protect" {
			break
		}
		streak++
		turn--
	}
	return 1 / float64(uint64(1)<<min(streak, 62))
}

func protectEffect(ctx context.Context, bc *BattleContext, inv *Invocation) bool {
	user := inv.User
	if user.Effects.Has(effects.Protect) || !battle.Chance(bc.Field.Streams.Outcome, ProtectChance(bc, user)) {
		stageFailed(bc, inv)
		return false
	}
	bc.addEffect(ctx, user.Effects, effects.NewProtect(), user)
	bc.pace(ctx)
	return true
}
