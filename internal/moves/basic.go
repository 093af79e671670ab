package moves

import (
	"context"

	"pocket-arena/server/internal/battle"
	"pocket-arena/server/internal/effects"
	"pocket-arena/server/stats"
)

// basic is the behavior most damaging moves share.
var basic = Behavior{
	Validate:      nonNegativePower,
	EffectWorking: secondaryEffectWorking,
}

func init() {
	mustRegisterMethod("s_basic", basic)
	mustRegisterMethod("s_stat", Behavior{Validate: zeroPower})
	mustRegisterMethod("s_status", Behavior{Validate: zeroPower})
	mustRegisterMethod("s_status_stat", Behavior{Validate: zeroPower})

	selfStat := basic
	selfStat.DealStats = selfStats
	mustRegisterMethod("s_self_stat", selfStat)

	psyshock := basic
	psyshock.DefenseStat = func(*Invocation) stats.StatID { return stats.StatDfe }
	mustRegisterMethod("s_psyshock", psyshock)

	weatherBall := basic
	weatherBall.Type = weatherBallType
	weatherBall.Power = weatherBallPower
	mustRegisterMethod("s_weather_ball", weatherBall)

	judgment := basic
	judgment.Type = judgmentType
	mustRegisterMethod("s_judgment", judgment)

	fellStinger := basic
	fellStinger.DealEffect = fellStingerEffect
	mustRegisterMethod("s_fell_stinger", fellStinger)

	grassyGlide := basic
	grassyGlide.Priority = grassyGlidePriority
	mustRegisterMethod("s_grassy_glide", grassyGlide)

	pursuit := basic
	pursuit.Intercepts = true
	pursuit.Power = func(bc *BattleContext, inv *Invocation, target *battle.Combatant) int {
		if inv.Intercepting {
			return inv.Move.Power * 2
		}
		return inv.Move.Power
	}
	mustRegisterMethod("s_pursuit", pursuit)

	explosion := basic
	explosion.Usable = explosionUsable
	explosion.DealDamage = explosionDamage
	explosion.OnFailure = explosionFailure
	mustRegisterMethod("s_explosion", explosion)

	jumpKick := basic
	jumpKick.OnFailure = jumpKickCrash
	mustRegisterMethod("s_jump_kick", jumpKick)
}

func selfStats(ctx context.Context, bc *BattleContext, inv *Invocation) bool {
	if len(inv.Move.Stages) == 0 {
		return true
	}
	return changeStages(ctx, bc, inv, aliveOnly(inv.User))
}

func weatherBallType(bc *BattleContext, inv *Invocation) battle.Type {
	switch {
	case bc.Field.Sunny():
		return battle.TypeFire
	case bc.Field.Rainy():
		return battle.TypeWater
	case bc.Field.WeatherIs(battle.WeatherHail):
		return battle.TypeIce
	case bc.Field.WeatherIs(battle.WeatherSandstorm):
		return battle.TypeRock
	}
	return inv.Move.Type
}

func weatherBallPower(bc *BattleContext, inv *Invocation, _ *battle.Combatant) int {
	if bc.Field.WeatherIs(battle.WeatherNone, battle.WeatherStrongWind, battle.WeatherFog) {
		return inv.Move.Power
	}
	return inv.Move.Power * 2
}

var plateTypes = map[string]battle.Type{
	"flame_plate":  battle.TypeFire,
	"splash_plate": battle.TypeWater,
	"zap_plate":    battle.TypeElectric,
	"meadow_plate": battle.TypeGrass,
	"icicle_plate": battle.TypeIce,
	"fist_plate":   battle.TypeFighting,
	"toxic_plate":  battle.TypePoison,
	"earth_plate":  battle.TypeGround,
	"sky_plate":    battle.TypeFlying,
	"mind_plate":   battle.TypePsychic,
	"insect_plate": battle.TypeBug,
	"stone_plate":  battle.TypeRock,
	"spooky_plate": battle.TypeGhost,
	"draco_plate":  battle.TypeDragon,
	"dread_plate":  battle.TypeDark,
	"iron_plate":   battle.TypeSteel,
	"pixie_plate":  battle.TypeFairy,
}

func judgmentType(bc *BattleContext, inv *Invocation) battle.Type {
	if t, ok := plateTypes[inv.User.Item]; ok {
		return t
	}
	return inv.Move.Type
}

func fellStingerEffect(ctx context.Context, bc *BattleContext, inv *Invocation) bool {
	for _, target := range inv.Targets {
		if target.Dead() && inv.Damage[target] > 0 {
			bc.Handlers.Stat.ChangeStat(ctx, stats.StatAtk, 3, inv.User, inv.User, inv.Move)
			break
		}
	}
	return true
}

func grassyGlidePriority(bc *BattleContext, user *battle.Combatant, def *battle.Definition) int {
	if bc.Field.Terrain.Kind == battle.TerrainGrassy && effects.Grounded(user) {
		return def.Priority + 1
	}
	return def.Priority
}

func explosionUsable(bc *BattleContext, inv *Invocation) bool {
	for _, c := range bc.Field.AllAlive() {
		if c.HasAbility("damp") {
			inv.notify(bc, c.Name()+"'s Damp prevents the explosion!")
			return false
		}
	}
	return true
}

func explosionDamage(ctx context.Context, bc *BattleContext, inv *Invocation) bool {
	defaultDealDamage(ctx, bc, basic, inv)
	faintUser(ctx, bc, inv)
	return true
}

// explosionFailure makes the user faint on every failure past the PP stage.
func explosionFailure(ctx context.Context, bc *BattleContext, inv *Invocation, reason FailureReason) {
	if reason == FailureUsable || reason == FailurePP {
		return
	}
	faintUser(ctx, bc, inv)
}

func faintUser(ctx context.Context, bc *BattleContext, inv *Invocation) {
	if inv.User.Alive() {
		bc.Handlers.Damage.ApplyDamage(ctx, inv.User.HP, inv.User, inv.User, nil)
	}
}

// jumpKickCrash hurts the user when the kick misses or hits nothing.
func jumpKickCrash(ctx context.Context, bc *BattleContext, inv *Invocation, reason FailureReason) {
	if reason != FailureAccuracy && reason != FailureImmunity {
		return
	}
	if inv.User.HasAbility("magic_guard") {
		return
	}
	bc.say(battle.MessageDamage, inv.User, "%s kept going and crashed!", inv.User.Name())
	bc.Handlers.Damage.ApplyDamage(ctx, max(1, inv.User.MaxHP()/2), inv.User, inv.User, nil)
}
