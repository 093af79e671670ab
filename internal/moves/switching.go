package moves

import (
	"context"

	"pocket-arena/server/internal/battle"
	"pocket-arena/server/internal/handlers"
)

// switchVetoItems and switchVetoAbilities on a damaged target cancel the
// self switch of the attacker.
var (
	switchVetoItems     = []string{"eject_button", "red_card"}
	switchVetoAbilities = []string{"emergency_exit", "wimp_out"}
)

func init() {
	forced := basic
	forced.DealEffect = forcedSwitchEffect
	mustRegisterMethod("s_roar", forced)

	self := basic
	self.DealEffect = selfSwitchEffect
	mustRegisterMethod("s_u_turn", self)
}

// forcedSwitchEffect drags every target out for a random bench member. A
// wild opponent with nobody to come in instead ends the encounter.
func forcedSwitchEffect(ctx context.Context, bc *BattleContext, inv *Invocation) bool {
	switched := false
	for _, target := range inv.Targets {
		if target.Dead() || inv.User.Dead() {
			continue
		}
		if bc.Field.WildEncounter() && len(bc.Field.Bench(target.Bank)) == 0 {
			bc.say(battle.MessageEnd, target, "%s fled!", target.Name())
			bc.Field.End(-1, battle.OutcomeFled)
			return true
		}
		if !bc.Handlers.Switch.CanSwitch(target, inv.Move, handlers.SwitchForced) {
			continue
		}
		if bc.Handlers.Switch.RequestSwitch(ctx, target, handlers.SwitchForced) {
			switched = true
		}
	}
	if !switched && inv.Move.IsStatus() {
		stageFailed(bc, inv)
		return false
	}
	return true
}

func selfSwitchEffect(ctx context.Context, bc *BattleContext, inv *Invocation) bool {
	user := inv.User
	if user.Dead() || SelfSwitchVetoed(inv) {
		return true
	}
	if !bc.Handlers.Switch.CanSwitch(user, inv.Move, handlers.SwitchSelf) {
		return true
	}
	Intercept(ctx, bc, user)
	bc.Handlers.Switch.RequestSwitch(ctx, user, handlers.SwitchSelf)
	return true
}

// SelfSwitchVetoed reports whether a target hit by the move keeps the user
// from switching out.
func SelfSwitchVetoed(inv *Invocation) bool {
	for target, damage := range inv.Damage {
		if damage <= 0 {
			continue
		}
		for _, item := range switchVetoItems {
			if target.HasItem(item) {
				return true
			}
		}
		for _, ability := range switchVetoAbilities {
			if target.HasAbility(ability) && target.Alive() && target.HP*2 < target.MaxHP() {
				return true
			}
		}
	}
	return false
}
