package moves

import (
	"context"

	"pocket-arena/server/internal/battle"
	"pocket-arena/server/internal/effects"
	"pocket-arena/server/logging"
	"pocket-arena/server/stats"
)

var chargeTexts = map[string]string{
	"dig":         "%s burrowed its way under the ground!",
	"fly":         "%s flew up high!",
	"bounce":      "%s sprang up!",
	"dive":        "%s hid underwater!",
	"solar_beam":  "%s absorbed light!",
	"solar_blade": "%s absorbed light!",
	"skull_bash":  "%s tucked in its head!",
	"sky_attack":  "%s became cloaked in a harsh light!",
	"razor_wind":  "%s whipped up a whirlwind!",
}

// hidingMoves take their user out of reach while charging.
var hidingMoves = map[string]bool{
	"dig":    true,
	"fly":    true,
	"bounce": true,
	"dive":   true,
}

func init() {
	twoTurns := basic
	twoTurns.Proceed = twoTurnProceed
	mustRegisterMethod("s_2turns", twoTurns)
}

// twoTurnProceed charges on the first use and strikes on the forced second
// one, unless a shortcut lets the move strike at once.
func twoTurnProceed(ctx context.Context, bc *BattleContext, inv *Invocation) bool {
	user, move := inv.User, inv.Move
	if data, lock := effects.Forced(user); data != nil && data.Move != nil && data.Move.ID == move.ID && lock.Name == effects.ForceNextMove {
		lock.Kill(battle.EndReasonExpired)
		user.Effects.Kill(effects.OutOfReach, battle.EndReasonExpired)
		return continueDefault(ctx, bc, inv)
	}

	text, ok := chargeTexts[move.ID]
	if !ok {
		text = "%s is charging up!"
	}
	bc.say(battle.MessageText, user, text, user.Name())
	if move.ID == "skull_bash" {
		bc.Handlers.Stat.ChangeStat(ctx, stats.StatDfe, 1, user, user, move)
	}
	bc.pace(ctx)

	if chargeShortcut(ctx, bc, inv) {
		return continueDefault(ctx, bc, inv)
	}
	bc.addEffect(ctx, user.Effects, effects.NewForceNextMove(move, inv.Targets, effects.TwoTurnTurns, false), user)
	if hidingMoves[move.ID] {
		bc.addEffect(ctx, user.Effects, effects.NewOutOfReach(move), user)
	}
	return true
}

func chargeShortcut(ctx context.Context, bc *BattleContext, inv *Invocation) bool {
	user, move := inv.User, inv.Move
	if (move.ID == "solar_beam" || move.ID == "solar_blade") && bc.Field.Sunny() {
		return true
	}
	if user.HasItem("power_herb") {
		bc.say(battle.MessageText, user, "%s became fully charged due to its Power Herb!", user.Name())
		bc.Handlers.Item.SetItem(ctx, "", user, false, user, move)
		return true
	}
	return bc.anyEffect(func(e *battle.Effect) bool {
		return e.Hooks.TwoTurnShortcut != nil && e.Hooks.TwoTurnShortcut(e, user, move)
	}, user)
}

// continueDefault runs the default stages after PP for a behavior that only
// replaced Proceed.
func continueDefault(ctx context.Context, bc *BattleContext, inv *Invocation) bool {
	b, err := Lookup(inv.Move)
	if err != nil {
		panic(err)
	}
	return proceed(ctx, bc, logging.WithAction(bc.Publisher, inv.ActionID), b, inv)
}
