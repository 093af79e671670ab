package moves

import (
	"context"

	"pocket-arena/server/internal/battle"
	"pocket-arena/server/stats"
)

func init() {
	mustRegisterMethod("s_power_split", splitBehavior("%s shared its power with the target!", stats.StatAtk, stats.StatAts))
	mustRegisterMethod("s_guard_split", splitBehavior("%s shared its guard with the target!", stats.StatDfe, stats.StatDfs))
}

// splitBehavior averages the computed stats of the user and its target.
func splitBehavior(text string, split ...stats.StatID) Behavior {
	return Behavior{
		Validate: zeroPower,
		DealEffect: func(ctx context.Context, bc *BattleContext, inv *Invocation) bool {
			target := inv.FirstTarget()
			if target == nil {
				return false
			}
			for _, stat := range split {
				average := (inv.User.Basis.Get(stat) + target.Basis.Get(stat)) / 2
				bc.Handlers.Stat.SetBasis(ctx, stat, average, inv.User)
				bc.Handlers.Stat.SetBasis(ctx, stat, average, target)
			}
			bc.say(battle.MessageStat, inv.User, text, inv.User.Name())
			return true
		},
	}
}
