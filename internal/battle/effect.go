package battle

import "github.com/google/uuid"

// ScopeKind identifies what owns an effect registry.
type ScopeKind string

const (
	ScopeBattler  ScopeKind = "battler"
	ScopeBank     ScopeKind = "bank"
	ScopePosition ScopeKind = "position"
	ScopeGlobal   ScopeKind = "global"
)

// Scope is the owner of an effect: a combatant, a bank, a board position or the field.
type Scope struct {
	Kind      ScopeKind
	Combatant *Combatant
	Bank      int
	Position  int
}

// EndPolicy selects how an effect runs out.
type EndPolicy uint8

const (
	// EndDuration counts Turns down at every turn boundary.
	EndDuration EndPolicy = iota
	// EndCondition ends when Condition reports true at a turn boundary.
	EndCondition
	// EndNever lasts until killed.
	EndNever
)

// EndReason records why an effect stopped.
type EndReason string

const (
	EndReasonNone        EndReason = ""
	EndReasonExpired     EndReason = "expired"
	EndReasonKilled      EndReason = "killed"
	EndReasonOwnerFaint  EndReason = "ownerFainted"
	EndReasonSwitchedOut EndReason = "switchedOut"
	EndReasonCleansed    EndReason = "cleansed"
	EndReasonReplaced    EndReason = "replaced"
)

// Hooks are the optional callbacks of an effect. A nil hook is neutral.
type Hooks struct {
	OnCreate func(e *Effect) string
	OnExpire func(e *Effect) string
	// Countdown replaces the default end-of-turn decrement.
	Countdown func(e *Effect)

	PreventUser     func(e *Effect, user *Combatant, targets []*Combatant, move *Definition) string
	PreventTarget   func(e *Effect, user, target *Combatant, move *Definition) bool
	DisabledCheck   func(e *Effect, user *Combatant, move *Definition) string
	Immunity        func(e *Effect, user, target *Combatant, move *Definition) bool
	ChanceOfHit     func(e *Effect, user, target *Combatant, move *Definition) float64
	BasePower       func(e *Effect, user, target *Combatant, move *Definition) float64
	AtkMultiplier   func(e *Effect, user, target *Combatant, move *Definition) float64
	DefMultiplier   func(e *Effect, user, target *Combatant, move *Definition) float64
	Mod1            func(e *Effect, user, target *Combatant, move *Definition) float64
	Mod2            func(e *Effect, user, target *Combatant, move *Definition) float64
	Mod3            func(e *Effect, user, target *Combatant, move *Definition) float64
	EffectChance    func(e *Effect, user *Combatant, move *Definition) float64
	TwoTurnShortcut func(e *Effect, user *Combatant, move *Definition) bool
	ForceNextMove   func(e *Effect) bool
	OutOfReach      func(e *Effect) bool

	// ContactStatus is the status inflicted on a direct attacker of the holder.
	ContactStatus func(e *Effect, user, target *Combatant, move *Definition) Status
	// Residual is the end-of-turn damage dealt to a combatant under the effect.
	Residual        func(e *Effect, c *Combatant) int
	SpeedMultiplier func(e *Effect, c *Combatant) float64
}

// Effect is a named, scoped modifier created by move resolution. Outside its
// creating package it is looked up by Name; Data carries owner-specific state.
type Effect struct {
	ID              string
	Name            string
	Scope           Scope
	End             EndPolicy
	Turns           int
	Condition       func(e *Effect) bool
	PersistOnSwitch bool
	Cleansable      bool
	Hooks           Hooks
	Data            any

	dead   bool
	reason EndReason
}

// NewEffect creates a duration effect lasting turns boundaries.
func NewEffect(name string, turns int) *Effect {
	return &Effect{ID: uuid.NewString(), Name: name, End: EndDuration, Turns: turns}
}

// NewPermanentEffect creates an effect that lasts until killed.
func NewPermanentEffect(name string) *Effect {
	return &Effect{ID: uuid.NewString(), Name: name, End: EndNever}
}

func (e *Effect) Dead() bool { return e == nil || e.dead }

func (e *Effect) Reason() EndReason {
	if e == nil {
		return EndReasonNone
	}
	return e.reason
}

// Kill marks the effect dead. The next sweep removes it from its registry.
func (e *Effect) Kill(reason EndReason) {
	if e == nil || e.dead {
		return
	}
	e.dead = true
	if reason == EndReasonNone {
		reason = EndReasonKilled
	}
	e.reason = reason
}

// Countdown runs the end-of-turn step of the effect.
func (e *Effect) Countdown() {
	if e == nil || e.dead {
		return
	}
	if e.Hooks.Countdown != nil {
		e.Hooks.Countdown(e)
		return
	}
	switch e.End {
	case EndDuration:
		e.Turns--
		if e.Turns <= 0 {
			e.Kill(EndReasonExpired)
		}
	case EndCondition:
		if e.Condition != nil && e.Condition(e) {
			e.Kill(EndReasonExpired)
		}
	}
}

// ForcesNextMove reports whether the effect locks its holder into a move.
func (e *Effect) ForcesNextMove() bool {
	return e != nil && !e.dead && e.Hooks.ForceNextMove != nil && e.Hooks.ForceNextMove(e)
}

// IsOutOfReach reports whether the effect hides its holder.
func (e *Effect) IsOutOfReach() bool {
	return e != nil && !e.dead && e.Hooks.OutOfReach != nil && e.Hooks.OutOfReach(e)
}

// Holder returns the combatant owning a battler-scoped effect.
func (e *Effect) Holder() *Combatant {
	if e == nil || e.Scope.Kind != ScopeBattler {
		return nil
	}
	return e.Scope.Combatant
}
