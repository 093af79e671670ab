package moves

import (
	"context"

	"pocket-arena/server/internal/battle"
	"pocket-arena/server/logging"
)

// hitCounts is the distribution of blows for two-to-five hit moves.
var hitCounts = []int{2, 2, 2, 3, 3, 5, 4, 3}

func init() {
	multiHit := basic
	multiHit.DealDamage = multiHitDamage
	mustRegisterMethod("s_multi_hit", multiHit)
}

// HitCount returns how many times a multi-hit move strikes. A "hits"
// parameter fixes the count.
func HitCount(bc *BattleContext, user *battle.Combatant, def *battle.Definition) int {
	if fixed := def.Param("hits", 0); fixed > 0 {
		return fixed
	}
	if user.HasAbility("skill_link") {
		return 5
	}
	return hitCounts[bc.Field.Streams.Outcome.Intn(len(hitCounts))]
}

// multiHitDamage strikes every target once per blow and stops as soon as
// one of them or the user faints. Escalating moves grow in power with each
// blow and roll accuracy again before every blow after the first.
func multiHitDamage(ctx context.Context, bc *BattleContext, inv *Invocation) bool {
	b, err := Lookup(inv.Move)
	if err != nil {
		panic(err)
	}
	pub := logging.WithAction(bc.Publisher, inv.ActionID)
	first := inv.FirstTarget()
	targets := inv.Targets
	count := HitCount(bc, inv.User, inv.Move)
	escalate := inv.Move.Param("escalate", 0) == 1
	inv.Spread = len(targets) > 1

	blows := 0
	for i := 0; i < count; i++ {
		if inv.User.Dead() || anyDead(targets) {
			break
		}
		if escalate && i > 0 && !inv.User.HasAbility("skill_link") {
			targets = rollAccuracy(ctx, bc, pub, b, inv, targets)
			if len(targets) == 0 {
				break
			}
		}
		if escalate {
			inv.PowerOverride = inv.Move.Power * (i + 1)
		}
		for _, target := range targets {
			if inv.User.Dead() {
				break
			}
			hit(ctx, bc, b, inv, target)
		}
		blows++
	}
	inv.PowerOverride = 0
	if blows == 1 {
		bc.say(battle.MessageHitCount, first, "Hit 1 time!")
	} else {
		bc.say(battle.MessageHitCount, first, "Hit %d times!", blows)
	}
	applyRecoil(ctx, bc, inv)
	return !inv.User.Dead()
}

func anyDead(targets []*battle.Combatant) bool {
	for _, target := range targets {
		if target.Dead() {
			return true
		}
	}
	return false
}
