package moves

import (
	"pocket-arena/server/internal/battle"
)

// FailureReason is the stage a move failed at. Failures are outcomes, not
// errors.
type FailureReason string

const (
	FailureNone     FailureReason = ""
	FailureUsable   FailureReason = "usable_by_user"
	FailureNoTarget FailureReason = "no_target"
	FailurePP       FailureReason = "pp"
	FailureAccuracy FailureReason = "accuracy"
	FailureImmunity FailureReason = "immunity"
)

// Invocation is the scratch record of one move use. It lives for a single
// pipeline run and never outlives it.
type Invocation struct {
	Move           *battle.Definition
	Slot           *battle.MoveSlot
	User           *battle.Combatant
	ActionID       string
	TargetBank     int
	TargetPosition int
	// Requested holds the chosen targets, dead ones included.
	Requested []*battle.Combatant
	// Targets holds the actual targets left after each stage.
	Targets []*battle.Combatant
	// SkipUsability re-dispatches a move without its usability stage.
	SkipUsability bool
	// Intercepting marks a use triggered by the target switching out.
	Intercepting bool

	Failure     FailureReason
	Success     bool
	Spread      bool
	Hits        int
	DamageDealt int
	Damage      map[*battle.Combatant]int
	Critical    map[*battle.Combatant]bool

	// PowerOverride and TypeOverride are set by variants that compute them
	// from the situation.
	PowerOverride int
	TypeOverride  battle.Type
	// Counterpart is the combatant a variant keyed its behavior on.
	Counterpart *battle.Combatant

	notified bool
}

// NewInvocation prepares the use of slot by user aimed at a board position.
func NewInvocation(field *battle.Field, user *battle.Combatant, slot *battle.MoveSlot, targetBank, targetPosition int) *Invocation {
	inv := &Invocation{
		Slot:           slot,
		User:           user,
		TargetBank:     targetBank,
		TargetPosition: targetPosition,
	}
	if slot != nil {
		inv.Move = slot.Def
	}
	if inv.Move.OneTarget() {
		if requested := field.At(targetBank, targetPosition); requested != nil {
			inv.Requested = []*battle.Combatant{requested}
		}
	}
	return inv
}

func (inv *Invocation) reset() {
	inv.Targets = nil
	inv.Failure = FailureNone
	inv.Success = false
	inv.Spread = false
	inv.Hits = 0
	inv.DamageDealt = 0
	inv.Damage = make(map[*battle.Combatant]int)
	inv.Critical = make(map[*battle.Combatant]bool)
	inv.PowerOverride = 0
	inv.TypeOverride = battle.TypeNone
	inv.Counterpart = nil
	inv.notified = false
}

// notify shows the failure text of a stage that rejects the move. The
// pipeline then skips its generic failure message.
func (inv *Invocation) notify(bc *BattleContext, text string) {
	bc.say(battle.MessageFailure, inv.User, "%s", text)
	inv.notified = true
}

func (inv *Invocation) recordDamage(target *battle.Combatant, amount int) {
	if amount <= 0 {
		return
	}
	inv.Damage[target] += amount
	inv.DamageDealt += amount
}

// FirstTarget returns the first actual target.
func (inv *Invocation) FirstTarget() *battle.Combatant {
	if inv == nil || len(inv.Targets) == 0 {
		return nil
	}
	return inv.Targets[0]
}
