package moves

import (
	"context"
	"fmt"

	"pocket-arena/server/internal/battle"
)

const (
	defaultDrainRatio = 0.5
	bigRootModifier   = 1.3
	megaLauncherBoost = 1.5
)

func init() {
	drain := basic
	drain.DealDamage = drainDamage
	mustRegisterMethod("s_drain", drain)

	mustRegisterMethod("s_heal", Behavior{
		Validate:   zeroPower,
		DealEffect: healEffect,
	})
	mustRegisterMethod("s_rest", Behavior{
		Validate:   restValidate,
		Usable:     restUsable,
		DealEffect: restEffect,
	})
	mustRegisterMethod("s_heal_bell", Behavior{
		Validate:   zeroPower,
		DealEffect: healBellEffect,
	})
}

// DrainAmount is the HP a drain move returns for damage dealt.
func DrainAmount(user *battle.Combatant, def *battle.Definition, damage int) int {
	if damage <= 0 {
		return 0
	}
	ratio := def.DrainRatio
	if ratio <= 0 {
		ratio = defaultDrainRatio
	}
	if user.HasItem("big_root") {
		ratio *= bigRootModifier
	}
	return max(1, int(float64(damage)*ratio))
}

func drainDamage(ctx context.Context, bc *BattleContext, inv *Invocation) bool {
	b, err := Lookup(inv.Move)
	if err != nil {
		panic(err)
	}
	defaultDealDamage(ctx, bc, b, inv)
	for _, target := range inv.Targets {
		amount := DrainAmount(inv.User, inv.Move, inv.Damage[target])
		if amount == 0 || inv.User.Dead() {
			continue
		}
		if target.HasAbility("liquid_ooze") {
			bc.say(battle.MessageDamage, inv.User, "%s sucked up the liquid ooze!", inv.User.Name())
			bc.Handlers.Damage.ApplyDamage(ctx, amount, inv.User, target, nil)
			continue
		}
		bc.say(battle.MessageHeal, target, "%s had its energy drained!", target.Name())
		if inv.User.HP < inv.User.MaxHP() {
			bc.Handlers.Damage.Heal(ctx, inv.User, amount, inv.User)
		}
	}
	return true
}

// HealAmount is the HP a healing move restores on target.
func HealAmount(user, target *battle.Combatant, def *battle.Definition) int {
	amount := float64(target.MaxHP()*def.Param("ratio_pct", 50)) / 100
	if def.Flags.Pulse && user.HasAbility("mega_launcher") {
		amount *= megaLauncherBoost
	}
	return max(1, int(amount))
}

func healEffect(ctx context.Context, bc *BattleContext, inv *Invocation) bool {
	healed := false
	for _, target := range inv.Targets {
		if bc.Handlers.Damage.Heal(ctx, target, HealAmount(inv.User, target, inv.Move), inv.User) {
			healed = true
		}
	}
	if !healed {
		// the heal handler already said why
		inv.notified = true
		return false
	}
	return true
}

func restValidate(def *battle.Definition) error {
	if err := zeroPower(def); err != nil {
		return err
	}
	if def.Param("sleep_turns", 0) <= 0 {
		return fmt.Errorf("%w: %s needs a sleep_turns parameter", battle.ErrInvalidDefinition, def.ID)
	}
	return nil
}

func restUsable(bc *BattleContext, inv *Invocation) bool {
	user := inv.User
	if user.HP >= user.MaxHP() {
		inv.notify(bc, fmt.Sprintf("%s's HP is full!", user.Name()))
		return false
	}
	if user.Status == battle.StatusSleep || user.HasAbility("insomnia") || user.HasAbility("vital_spirit") {
		return false
	}
	return true
}

func restEffect(ctx context.Context, bc *BattleContext, inv *Invocation) bool {
	user := inv.User
	if user.Status != battle.StatusNone {
		bc.Handlers.Status.ChangeStatus(ctx, battle.StatusNone, user, user, inv.Move)
	}
	if !bc.Handlers.Status.ChangeStatus(ctx, battle.StatusSleep, user, user, inv.Move) {
		stageFailed(bc, inv)
		return false
	}
	return bc.Handlers.Damage.Heal(ctx, user, user.MaxHP(), user)
}

// healBellEffect cures the whole party of the user, bench included.
func healBellEffect(ctx context.Context, bc *BattleContext, inv *Invocation) bool {
	user, move := inv.User, inv.Move
	cured := false
	for _, member := range bc.Field.Bank(user.Bank).Party {
		if member.Dead() || member.Status == battle.StatusNone {
			continue
		}
		if move.Flags.Sound && member != user && member.HasAbility("soundproof") {
			continue
		}
		if bc.Handlers.Status.ChangeStatus(ctx, battle.StatusNone, member, user, move) {
			cured = true
		}
	}
	if !cured {
		stageFailed(bc, inv)
		return false
	}
	return true
}
