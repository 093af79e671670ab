package moves

import (
	"context"
	"fmt"

	"pocket-arena/server/internal/battle"
	"pocket-arena/server/internal/effects"
	"pocket-arena/server/logging"
	movelog "pocket-arena/server/logging/moves"
)

var failureTexts = map[FailureReason]string{
	FailureUsable:   "But it failed!",
	FailureNoTarget: "But there was no target...",
	FailurePP:       "But there was no PP left for the move!",
}

// Use resolves one move use. It reports whether the move succeeded. A
// definition its behavior rejects panics: it is an authoring error.
func Use(ctx context.Context, bc *BattleContext, inv *Invocation) bool {
	b, err := Lookup(inv.Move)
	if err != nil {
		panic(err)
	}
	if b.Validate != nil {
		if err := b.Validate(inv.Move); err != nil {
			panic(err)
		}
	}
	inv.reset()
	pub := logging.WithAction(bc.Publisher, inv.ActionID)
	defer record(ctx, bc, pub, b, inv)

	if !inv.SkipUsability && !usableStage(ctx, bc, b, inv) {
		fail(ctx, bc, pub, b, inv, FailureUsable)
		return false
	}

	inv.Targets = b.targets(bc, inv)
	usageMessage(ctx, bc, pub, inv)
	if len(inv.Targets) == 0 && (len(inv.Requested) > 0 || !inv.Move.IsStatus()) {
		fail(ctx, bc, pub, b, inv, FailureNoTarget)
		return false
	}

	if !ppStage(ctx, bc, pub, inv) {
		fail(ctx, bc, pub, b, inv, FailurePP)
		return false
	}

	if b.Proceed != nil {
		inv.Success = b.Proceed(ctx, bc, inv)
	} else {
		inv.Success = proceed(ctx, bc, pub, b, inv)
	}
	return inv.Success
}

// proceed runs the default stages after PP: per-target block and immunity,
// accuracy, the pre-attack hook, then the effect stages.
func proceed(ctx context.Context, bc *BattleContext, pub logging.Publisher, b Behavior, inv *Invocation) bool {
	if !targetStage(ctx, bc, pub, b, inv) || !accuracyStage(ctx, bc, pub, b, inv) {
		return false
	}
	if b.PreAttack != nil {
		b.PreAttack(ctx, bc, inv)
		bc.pace(ctx)
	}
	return applyStages(ctx, bc, b, inv)
}

// applyStages chains the effect stages. A stage returning false stops the
// later ones; what earlier stages did stays.
func applyStages(ctx context.Context, bc *BattleContext, b Behavior, inv *Invocation) bool {
	return b.dealDamage(ctx, bc, inv) &&
		b.effectWorking(bc, inv) &&
		b.dealStatus(ctx, bc, inv) &&
		b.dealStats(ctx, bc, inv) &&
		b.dealEffect(ctx, bc, inv)
}

func usableStage(ctx context.Context, bc *BattleContext, b Behavior, inv *Invocation) bool {
	requested := inv.Requested
	for _, hook := range bc.Prevention {
		if text := hook(ctx, bc, inv.User, requested, inv.Move); text != "" {
			inv.notify(bc, text)
			return false
		}
	}
	prevented := ""
	bc.Field.EachEffect(func(e *battle.Effect) bool {
		if e.Hooks.PreventUser != nil {
			prevented = e.Hooks.PreventUser(e, inv.User, requested, inv.Move)
		}
		if prevented == "" && e.Hooks.DisabledCheck != nil {
			prevented = e.Hooks.DisabledCheck(e, inv.User, inv.Move)
		}
		return prevented == ""
	}, inv.User)
	if prevented != "" {
		inv.notify(bc, prevented)
		return false
	}
	return b.usable(bc, inv)
}

func usageMessage(ctx context.Context, bc *BattleContext, pub logging.Publisher, inv *Invocation) {
	bc.present(battle.Message{
		Kind:    battle.MessageUsage,
		Actor:   inv.User.ID,
		Targets: battle.IDs(inv.Targets),
		Move:    inv.Move.ID,
		Text:    fmt.Sprintf("%s used %s!", inv.User.Name(), inv.Move.Name()),
	})
	movelog.Used(ctx, pub, bc.turn(), logging.Combatant(inv.User.ID), logging.Combatants(battle.IDs(inv.Targets)), movelog.UsedPayload{Move: inv.Move.ID})
	bc.count("moves_used")
	bc.pace(ctx)
}

// ppStage checks and spends PP. Moves locked in without PP cost and moves
// dispatched without a slot spend nothing.
func ppStage(ctx context.Context, bc *BattleContext, pub logging.Publisher, inv *Invocation) bool {
	slot := inv.Slot
	if slot == nil || effects.ForcedWithoutPP(inv.User) {
		return true
	}
	if slot.PP <= 0 {
		return false
	}
	cost := 1
	for _, foe := range bc.Field.FoesOf(inv.User) {
		if foe.HasAbility("pressure") {
			cost++
			break
		}
	}
	spent := min(cost, slot.PP)
	slot.PP -= spent
	movelog.PPDecreased(ctx, pub, bc.turn(), logging.Combatant(inv.User.ID), movelog.PPPayload{
		Move:      inv.Move.ID,
		Amount:    spent,
		Remaining: slot.PP,
	})
	return true
}

// targetStage drops blocked then immune targets.
func targetStage(ctx context.Context, bc *BattleContext, pub logging.Publisher, b Behavior, inv *Invocation) bool {
	if len(inv.Targets) == 0 {
		return true
	}
	kept := inv.Targets[:0:0]
	for _, target := range inv.Targets {
		if b.blockedByTarget(bc, inv, target) {
			bc.say(battle.MessageMiss, target, "%s protected itself!", target.Name())
			movelog.Missed(ctx, pub, bc.turn(), logging.Combatant(inv.User.ID), logging.Combatant(target.ID), movelog.MissedPayload{Move: inv.Move.ID})
			continue
		}
		if b.targetImmune(bc, inv, target) {
			bc.say(battle.MessageImmune, target, "It doesn't affect %s...", target.Name())
			movelog.Missed(ctx, pub, bc.turn(), logging.Combatant(inv.User.ID), logging.Combatant(target.ID), movelog.MissedPayload{Move: inv.Move.ID, Immune: true})
			continue
		}
		kept = append(kept, target)
	}
	inv.Targets = kept
	if len(kept) == 0 {
		fail(ctx, bc, pub, b, inv, FailureImmunity)
		return false
	}
	return true
}

// accuracyStage rolls each remaining target on the outcome stream.
func accuracyStage(ctx context.Context, bc *BattleContext, pub logging.Publisher, b Behavior, inv *Invocation) bool {
	if len(inv.Targets) == 0 {
		return true
	}
	inv.Targets = rollAccuracy(ctx, bc, pub, b, inv, inv.Targets)
	if len(inv.Targets) == 0 {
		fail(ctx, bc, pub, b, inv, FailureAccuracy)
		return false
	}
	return true
}

// rollAccuracy returns the targets the move reaches and shows a miss for
// the others.
func rollAccuracy(ctx context.Context, bc *BattleContext, pub logging.Publisher, b Behavior, inv *Invocation, targets []*battle.Combatant) []*battle.Combatant {
	kept := targets[:0:0]
	for _, target := range targets {
		if b.bypassAccuracy(bc, inv, target) {
			kept = append(kept, target)
			continue
		}
		chance := b.chanceOfHit(bc, inv, target)
		if float64(bc.Field.Streams.Outcome.Intn(100)) >= chance {
			bc.say(battle.MessageMiss, target, "%s avoided the attack!", target.Name())
			movelog.Missed(ctx, pub, bc.turn(), logging.Combatant(inv.User.ID), logging.Combatant(target.ID), movelog.MissedPayload{Move: inv.Move.ID})
			continue
		}
		kept = append(kept, target)
	}
	return kept
}

// fail records the failure and shows its single notification. Accuracy and
// immunity failures already showed a message per target.
func fail(ctx context.Context, bc *BattleContext, pub logging.Publisher, b Behavior, inv *Invocation, reason FailureReason) {
	inv.Failure = reason
	if text, ok := failureTexts[reason]; ok && !inv.notified {
		bc.say(battle.MessageFailure, inv.User, "%s", text)
	}
	inv.notified = true
	movelog.Failed(ctx, pub, bc.turn(), logging.Combatant(inv.User.ID), movelog.FailedPayload{Move: inv.Move.ID, Reason: string(reason)})
	bc.count("moves_failed_" + string(reason))
	b.onFailure(ctx, bc, inv, reason)
	bc.pace(ctx)
}

// stageFailed shows the failure of an effect stage that had nothing to do.
func stageFailed(bc *BattleContext, inv *Invocation) {
	if inv.notified {
		return
	}
	bc.say(battle.MessageFailure, inv.User, "%s", failureTexts[FailureUsable])
	inv.notified = true
}

func record(ctx context.Context, bc *BattleContext, pub logging.Publisher, b Behavior, inv *Invocation) {
	movelog.Resolved(ctx, pub, bc.turn(), logging.Combatant(inv.User.ID), logging.Combatants(battle.IDs(inv.Targets)), movelog.ResolvedPayload{
		Move:        inv.Move.ID,
		Success:     inv.Success,
		DamageDealt: inv.DamageDealt,
	})
	if b.HistoryExempt {
		return
	}
	inv.User.AppendHistory(battle.HistoryEntry{
		Move:        inv.Move,
		Targets:     inv.Targets,
		Turn:        bc.turn(),
		Success:     inv.Success,
		DamageDealt: inv.DamageDealt,
		AttackOrder: inv.User.AttackOrder,
	})
}

// Disabled returns the message of the first effect that keeps user from
// picking move, or "" when the move may be chosen. A slot without PP is
// disabled too.
func Disabled(field *battle.Field, user *battle.Combatant, slot *battle.MoveSlot) string {
	if slot == nil || slot.Def == nil {
		return ""
	}
	if slot.PP <= 0 && !effects.ForcedWithoutPP(user) {
		return fmt.Sprintf("%s has no PP left for %s!", user.Name(), slot.Def.Name())
	}
	text := ""
	field.EachEffect(func(e *battle.Effect) bool {
		if e.Hooks.DisabledCheck != nil {
			text = e.Hooks.DisabledCheck(e, user, slot.Def)
		}
		return text == ""
	}, user)
	return text
}
