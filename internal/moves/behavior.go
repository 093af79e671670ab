package moves

import (
	"context"

	"pocket-arena/server/internal/battle"
	"pocket-arena/server/stats"
)

// Behavior is the strategy of a move family. Every field is optional; a nil
// field runs the default stage.
type Behavior struct {
	// Validate reports authoring errors of a definition using the behavior.
	Validate func(def *battle.Definition) error

	Usable          func(bc *BattleContext, inv *Invocation) bool
	Targets         func(bc *BattleContext, inv *Invocation) []*battle.Combatant
	BlockedByTarget func(bc *BattleContext, inv *Invocation, target *battle.Combatant) bool
	TargetImmune    func(bc *BattleContext, inv *Invocation, target *battle.Combatant) bool
	BypassAccuracy  func(bc *BattleContext, inv *Invocation, target *battle.Combatant) bool
	ChanceOfHit     func(bc *BattleContext, inv *Invocation, target *battle.Combatant) float64

	// Proceed replaces everything after the PP stage.
	Proceed   func(ctx context.Context, bc *BattleContext, inv *Invocation) bool
	PreAttack func(ctx context.Context, bc *BattleContext, inv *Invocation)

	DealDamage    func(ctx context.Context, bc *BattleContext, inv *Invocation) bool
	EffectWorking func(bc *BattleContext, inv *Invocation) bool
	DealStatus    func(ctx context.Context, bc *BattleContext, inv *Invocation) bool
	DealStats     func(ctx context.Context, bc *BattleContext, inv *Invocation) bool
	DealEffect    func(ctx context.Context, bc *BattleContext, inv *Invocation) bool
	OnFailure     func(ctx context.Context, bc *BattleContext, inv *Invocation, reason FailureReason)

	Power       func(bc *BattleContext, inv *Invocation, target *battle.Combatant) int
	Type        func(bc *BattleContext, inv *Invocation) battle.Type
	DefenseStat func(inv *Invocation) stats.StatID
	Priority    func(bc *BattleContext, user *battle.Combatant, def *battle.Definition) int

	// BeforeTurn runs for a queued attack before any action of the turn.
	BeforeTurn func(ctx context.Context, bc *BattleContext, action *battle.Action)
	// Intercepts runs the move before its target switches out.
	Intercepts    bool
	HistoryExempt bool
}

func (b Behavior) usable(bc *BattleContext, inv *Invocation) bool {
	if b.Usable == nil {
		return true
	}
	return b.Usable(bc, inv)
}

func (b Behavior) targets(bc *BattleContext, inv *Invocation) []*battle.Combatant {
	if b.Targets != nil {
		return b.Targets(bc, inv)
	}
	return defaultTargets(bc, inv)
}

func (b Behavior) blockedByTarget(bc *BattleContext, inv *Invocation, target *battle.Combatant) bool {
	if b.BlockedByTarget != nil {
		return b.BlockedByTarget(bc, inv, target)
	}
	return defaultBlockedByTarget(bc, inv, target)
}

func (b Behavior) targetImmune(bc *BattleContext, inv *Invocation, target *battle.Combatant) bool {
	if b.TargetImmune != nil {
		return b.TargetImmune(bc, inv, target)
	}
	return defaultTargetImmune(bc, b, inv, target)
}

func (b Behavior) bypassAccuracy(bc *BattleContext, inv *Invocation, target *battle.Combatant) bool {
	if b.BypassAccuracy != nil {
		return b.BypassAccuracy(bc, inv, target)
	}
	return defaultBypassAccuracy(bc, inv, target)
}

func (b Behavior) chanceOfHit(bc *BattleContext, inv *Invocation, target *battle.Combatant) float64 {
	if b.ChanceOfHit != nil {
		return b.ChanceOfHit(bc, inv, target)
	}
	return defaultChanceOfHit(bc, inv, target)
}

func (b Behavior) dealDamage(ctx context.Context, bc *BattleContext, inv *Invocation) bool {
	if b.DealDamage != nil {
		return b.DealDamage(ctx, bc, inv)
	}
	return defaultDealDamage(ctx, bc, b, inv)
}

func (b Behavior) effectWorking(bc *BattleContext, inv *Invocation) bool {
	if b.EffectWorking != nil {
		return b.EffectWorking(bc, inv)
	}
	return true
}

func (b Behavior) dealStatus(ctx context.Context, bc *BattleContext, inv *Invocation) bool {
	if b.DealStatus != nil {
		return b.DealStatus(ctx, bc, inv)
	}
	return defaultDealStatus(ctx, bc, inv)
}

func (b Behavior) dealStats(ctx context.Context, bc *BattleContext, inv *Invocation) bool {
	if b.DealStats != nil {
		return b.DealStats(ctx, bc, inv)
	}
	return defaultDealStats(ctx, bc, inv)
}

func (b Behavior) dealEffect(ctx context.Context, bc *BattleContext, inv *Invocation) bool {
	if b.DealEffect != nil {
		return b.DealEffect(ctx, bc, inv)
	}
	return true
}

func (b Behavior) onFailure(ctx context.Context, bc *BattleContext, inv *Invocation, reason FailureReason) {
	if b.OnFailure != nil {
		b.OnFailure(ctx, bc, inv, reason)
	}
}

func (b Behavior) power(bc *BattleContext, inv *Invocation, target *battle.Combatant) int {
	if inv.PowerOverride > 0 {
		return inv.PowerOverride
	}
	if b.Power != nil {
		return b.Power(bc, inv, target)
	}
	return inv.Move.Power
}

func (b Behavior) moveType(bc *BattleContext, inv *Invocation) battle.Type {
	if inv.TypeOverride != battle.TypeNone {
		return inv.TypeOverride
	}
	if b.Type != nil {
		return b.Type(bc, inv)
	}
	return inv.Move.Type
}

// Priority returns the priority of def used by user this turn.
func (b Behavior) priority(bc *BattleContext, user *battle.Combatant, def *battle.Definition) int {
	if b.Priority != nil {
		return b.Priority(bc, user, def)
	}
	return def.Priority
}
