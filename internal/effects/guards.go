package effects

import (
	"fmt"

	"pocket-arena/server/internal/battle"
)

// NewProtect shields the holder from blockable moves until the end of turn.
func NewProtect() *battle.Effect {
	effect := battle.NewEffect(Protect, 1)
	effect.Hooks.OnCreate = func(e *battle.Effect) string {
		return fmt.Sprintf("%s protected itself!", e.Holder().Name())
	}
	effect.Hooks.PreventTarget = func(e *battle.Effect, user, target *battle.Combatant, move *battle.Definition) bool {
		return target == e.Holder() && user != target && move != nil && move.Flags.Blockable
	}
	return effect
}

// NewTorment stops the holder from using the same move twice in a row.
func NewTorment() *battle.Effect {
	effect := battle.NewPermanentEffect(Torment)
	effect.Hooks.OnCreate = func(e *battle.Effect) string {
		return fmt.Sprintf("%s was subjected to torment!", e.Holder().Name())
	}
	effect.Hooks.DisabledCheck = func(e *battle.Effect, user *battle.Combatant, move *battle.Definition) string {
		if user != e.Holder() || move == nil {
			return ""
		}
		if user.LastMove().MoveID() != move.ID {
			return ""
		}
		return fmt.Sprintf("%s can't use the same move twice in a row due to the torment!", user.Name())
	}
	return effect
}

// NewHealBlock prevents the holder from recovering HP.
func NewHealBlock() *battle.Effect {
	effect := battle.NewEffect(HealBlock, HealBlockTurns)
	effect.Hooks.OnExpire = func(e *battle.Effect) string {
		return fmt.Sprintf("%s's heal block wore off!", e.Holder().Name())
	}
	return effect
}

// SubstituteState is the Data of a substitute.
type SubstituteState struct {
	HP int
}

// NewSubstitute creates a decoy absorbing hp damage.
func NewSubstitute(hp int) *battle.Effect {
	effect := battle.NewPermanentEffect(Substitute)
	effect.Data = &SubstituteState{HP: hp}
	effect.Hooks.OnCreate = func(e *battle.Effect) string {
		return fmt.Sprintf("%s put in a substitute!", e.Holder().Name())
	}
	return effect
}

// SubstituteOf returns the live substitute of c.
func SubstituteOf(c *battle.Combatant) *SubstituteState {
	if c == nil {
		return nil
	}
	effect := c.Effects.Get(Substitute)
	if effect == nil {
		return nil
	}
	state, _ := effect.Data.(*SubstituteState)
	return state
}

// BehindSubstitute reports whether a move from user hits target's substitute
// instead of target.
func BehindSubstitute(user, target *battle.Combatant, move *battle.Definition) bool {
	if user == target || SubstituteOf(target) == nil {
		return false
	}
	return move == nil || !(move.Flags.Sound || move.Flags.Authentic)
}

// NewBeakBlast burns direct attackers of the holder during the charge turn.
func NewBeakBlast() *battle.Effect {
	effect := battle.NewEffect(BeakBlast, 1)
	effect.Hooks.ContactStatus = func(e *battle.Effect, user, target *battle.Combatant, move *battle.Definition) battle.Status {
		if target != e.Holder() || move == nil || !move.Flags.Direct {
			return battle.StatusNone
		}
		return battle.StatusBurn
	}
	return effect
}

// LockOnState is the Data of a lock on.
type LockOnState struct {
	Target *battle.Combatant
}

// NewLockOn makes the holder's next move hit target regardless of accuracy.
func NewLockOn(target *battle.Combatant) *battle.Effect {
	effect := battle.NewEffect(LockOn, LockOnTurns)
	effect.Data = &LockOnState{Target: target}
	return effect
}

// LockedOn reports whether user locked on to target.
func LockedOn(user, target *battle.Combatant) bool {
	if user == nil {
		return false
	}
	return user.Effects.HasMatching(func(e *battle.Effect) bool {
		state, ok := e.Data.(*LockOnState)
		return e.Name == LockOn && ok && state.Target == target
	})
}
