package moves

import (
	"pocket-arena/server/internal/battle"
	"pocket-arena/server/internal/effects"
	"pocket-arena/server/stats"
)

const (
	spreadModifier   = 0.75
	criticalModifier = 1.5
	stabModifier     = 1.5
	adaptabilityStab = 2.0
	minDamageRoll    = 85
	maxDamageRoll    = 100
)

// criticalChances maps a critical stage to 1/n odds. Stage 0 never crits and
// stages past the table always do.
var criticalChances = []int{0, 16, 8, 2}

// abilityImmunities lists abilities that absorb a move type.
var abilityImmunities = map[string]battle.Type{
	"levitate":        battle.TypeGround,
	"volt_absorb":     battle.TypeElectric,
	"lightning_rod":   battle.TypeElectric,
	"motor_drive":     battle.TypeElectric,
	"water_absorb":    battle.TypeWater,
	"storm_drain":     battle.TypeWater,
	"dry_skin":        battle.TypeWater,
	"flash_fire":      battle.TypeFire,
	"sap_sipper":      battle.TypeGrass,
	"earth_eater":     battle.TypeGround,
	"well_baked_body": battle.TypeFire,
}

func attackStats(inv *Invocation, b Behavior) (stats.StatID, stats.StatID) {
	atk, def := stats.StatAtk, stats.StatDfe
	if inv.Move.IsSpecial() {
		atk, def = stats.StatAts, stats.StatDfs
	}
	if b.DefenseStat != nil {
		def = b.DefenseStat(inv)
	}
	return atk, def
}

// Effectiveness is the type multiplier of moveType against every type of target.
func Effectiveness(moveType battle.Type, target *battle.Combatant) float64 {
	result := 1.0
	for _, t := range target.Types {
		result *= battle.Effectiveness(moveType, t)
	}
	return result
}

// CalcDamage runs the damage formula. The critical flag and the damage roll
// are inputs so estimates draw nothing from the random streams. Every step
// floors.
func CalcDamage(bc *BattleContext, b Behavior, inv *Invocation, target *battle.Combatant, critical bool, roll int) int {
	user, move := inv.User, inv.Move
	moveType := b.moveType(bc, inv)
	effectiveness := Effectiveness(moveType, target)
	if effectiveness == 0 {
		return 0
	}

	power := b.power(bc, inv, target)
	power = int(float64(power) * bc.multiplier(func(e *battle.Effect) float64 {
		if e.Hooks.BasePower == nil {
			return 1
		}
		return e.Hooks.BasePower(e, user, target, move)
	}, user, target))

	atkStat, defStat := attackStats(inv, b)
	atkStage := user.Stages.Get(atkStat)
	if critical && atkStage < 0 {
		atkStage = 0
	}
	atk := int(float64(user.Basis.Get(atkStat)) * stats.Multiplier(atkStage) * bc.multiplier(func(e *battle.Effect) float64 {
		if e.Hooks.AtkMultiplier == nil {
			return 1
		}
		return e.Hooks.AtkMultiplier(e, user, target, move)
	}, user))
	defStage := target.Stages.Get(defStat)
	if critical && defStage > 0 {
		defStage = 0
	}
	def := int(float64(target.Basis.Get(defStat)) * stats.Multiplier(defStage) * bc.multiplier(func(e *battle.Effect) float64 {
		if e.Hooks.DefMultiplier == nil {
			return 1
		}
		return e.Hooks.DefMultiplier(e, user, target, move)
	}, target))
	def = max(def, 1)

	mod1 := bc.multiplier(func(e *battle.Effect) float64 {
		if e.Hooks.Mod1 == nil {
			return 1
		}
		return e.Hooks.Mod1(e, user, target, move)
	}, user, target)
	if user.Status == battle.StatusBurn && move.IsPhysical() && !user.HasAbility("guts") {
		mod1 *= 0.5
	}
	if inv.Spread {
		mod1 *= spreadModifier
	}
	mod2 := bc.multiplier(func(e *battle.Effect) float64 {
		if e.Hooks.Mod2 == nil {
			return 1
		}
		return e.Hooks.Mod2(e, user, target, move)
	}, user, target)
	mod3 := bc.multiplier(func(e *battle.Effect) float64 {
		if e.Hooks.Mod3 == nil {
			return 1
		}
		return e.Hooks.Mod3(e, user, target, move)
	}, user, target)

	damage := user.Level*2/5 + 2
	damage *= power
	damage = damage * atk / 50
	damage /= def
	damage = int(float64(damage) * mod1)
	damage += 2
	if critical {
		damage = int(float64(damage) * criticalModifier)
		if user.HasAbility("sniper") {
			damage = int(float64(damage) * criticalModifier)
		}
	}
	damage = int(float64(damage) * mod2)
	damage = damage * roll / 100
	if user.HasType(moveType) {
		stab := stabModifier
		if user.HasAbility("adaptability") {
			stab = adaptabilityStab
		}
		damage = int(float64(damage) * stab)
	}
	for _, t := range target.Types {
		damage = int(float64(damage) * battle.Effectiveness(moveType, t))
	}
	damage = int(float64(damage) * mod3)

	limit := target.HP
	if sub := effects.SubstituteOf(target); sub != nil && effects.BehindSubstitute(user, target, move) {
		limit = sub.HP
	}
	return max(1, min(damage, max(limit, 1)))
}

// Estimate predicts the damage of def from user against target without a
// critical hit at the highest roll.
func Estimate(bc *BattleContext, user *battle.Combatant, def *battle.Definition, target *battle.Combatant) int {
	if def == nil || def.IsStatus() || target == nil {
		return 0
	}
	b, err := Lookup(def)
	if err != nil {
		return 0
	}
	inv := &Invocation{Move: def, User: user}
	inv.reset()
	if b.power(bc, inv, target) <= 0 {
		return 0
	}
	return CalcDamage(bc, b, inv, target, false, maxDamageRoll)
}

func criticalStage(inv *Invocation) int {
	stage := inv.Move.CriticalRate
	if stage <= 0 {
		return 0
	}
	if inv.User.HasAbility("super_luck") {
		stage++
	}
	if inv.User.HasItem("scope_lens") || inv.User.HasItem("razor_claw") {
		stage++
	}
	return stage
}

func rollCritical(bc *BattleContext, inv *Invocation, target *battle.Combatant) bool {
	if target.HasAbility("battle_armor") || target.HasAbility("shell_armor") {
		return false
	}
	stage := criticalStage(inv)
	switch {
	case stage <= 0:
		return false
	case stage >= len(criticalChances):
		return true
	}
	return bc.Field.Streams.Outcome.Intn(criticalChances[stage]) == 0
}

func rollDamage(bc *BattleContext) int {
	return battle.RandomInt(bc.Field.Streams.Outcome, minDamageRoll, maxDamageRoll)
}

func defaultBlockedByTarget(bc *BattleContext, inv *Invocation, target *battle.Combatant) bool {
	return bc.anyEffect(func(e *battle.Effect) bool {
		return e.Hooks.PreventTarget != nil && e.Hooks.PreventTarget(e, inv.User, target, inv.Move)
	}, target)
}

func defaultTargetImmune(bc *BattleContext, b Behavior, inv *Invocation, target *battle.Combatant) bool {
	user, move := inv.User, inv.Move
	if target == user {
		return false
	}
	moveType := b.moveType(bc, inv)
	if !move.IsStatus() && Effectiveness(moveType, target) == 0 {
		return true
	}
	if immune, ok := abilityImmunities[target.Ability]; ok && immune == moveType && !user.HasAbility("mold_breaker") {
		return true
	}
	if move.Flags.Sound && target.HasAbility("soundproof") {
		return true
	}
	if move.Flags.Powder && (target.HasType(battle.TypeGrass) || target.HasAbility("overcoat")) {
		return true
	}
	if moveType == battle.TypeGround && !move.IsStatus() && target.HasItem("air_balloon") {
		return true
	}
	return bc.anyEffect(func(e *battle.Effect) bool {
		return e.Hooks.Immunity != nil && e.Hooks.Immunity(e, user, target, move)
	}, target)
}

func defaultBypassAccuracy(bc *BattleContext, inv *Invocation, target *battle.Combatant) bool {
	user, move := inv.User, inv.Move
	if move.Accuracy <= 0 {
		return true
	}
	if user.HasAbility("no_guard") || target.HasAbility("no_guard") {
		return true
	}
	if move.IsStatus() && target == user {
		return true
	}
	return effects.LockedOn(user, target)
}

// defaultChanceOfHit is a percentage.
func defaultChanceOfHit(bc *BattleContext, inv *Invocation, target *battle.Combatant) float64 {
	user, move := inv.User, inv.Move
	chance := float64(move.Accuracy)
	chance *= stats.AccuracyMultiplier(user.Stages.Get(stats.StatAcc))
	chance *= stats.AccuracyMultiplier(-target.Stages.Get(stats.StatEva))
	chance *= bc.multiplier(func(e *battle.Effect) float64 {
		if e.Hooks.ChanceOfHit == nil {
			return 1
		}
		return e.Hooks.ChanceOfHit(e, user, target, move)
	}, user, target)
	return chance
}
