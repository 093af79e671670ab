// Package handlers owns the legality rules and mutations of combatant and
// field state. Moves never write persistent combatant state themselves; they
// ask the handler of the concerned domain.
package handlers

import (
	"context"
	"fmt"

	"pocket-arena/server/internal/battle"
	"pocket-arena/server/logging"
	"pocket-arena/server/stats"
)

// DamageHandler applies HP loss and recovery.
type DamageHandler interface {
	ApplyDamage(ctx context.Context, amount int, target, source *battle.Combatant, move *battle.Definition) int
	Heal(ctx context.Context, target *battle.Combatant, amount int, source *battle.Combatant) bool
}

// StatHandler applies stat-stage changes. Every result stays in [-6, +6].
type StatHandler interface {
	CanIncrease(stat stats.StatID, target *battle.Combatant) bool
	CanDecrease(stat stats.StatID, target, source *battle.Combatant, move *battle.Definition) bool
	ChangeStat(ctx context.Context, stat stats.StatID, delta int, target, source *battle.Combatant, move *battle.Definition) int
	// SetBasis overwrites a computed stat, used by split moves.
	SetBasis(ctx context.Context, stat stats.StatID, value int, target *battle.Combatant)
}

// StatusHandler applies and cures major status conditions.
type StatusHandler interface {
	CanApply(status battle.Status, target, source *battle.Combatant, move *battle.Definition) bool
	ChangeStatus(ctx context.Context, status battle.Status, target, source *battle.Combatant, move *battle.Definition) bool
}

// ItemHandler moves held items around.
type ItemHandler interface {
	CanRemoveItem(target, source *battle.Combatant) bool
	CanGiveItem(source, target *battle.Combatant) bool
	SetItem(ctx context.Context, item string, target *battle.Combatant, announce bool, source *battle.Combatant, move *battle.Definition)
}

// AbilityHandler swaps abilities.
type AbilityHandler interface {
	CanChangeAbility(target *battle.Combatant, ability string, source *battle.Combatant, move *battle.Definition) bool
	ChangeAbility(ctx context.Context, target *battle.Combatant, ability string, source *battle.Combatant, move *battle.Definition)
}

// SwitchReason tells the switch handler who asked for the switch.
type SwitchReason string

const (
	SwitchChoice SwitchReason = "choice"
	SwitchForced SwitchReason = "forced"
	SwitchSelf   SwitchReason = "self"
	SwitchFaint  SwitchReason = "faint"
)

// SwitchHandler replaces combatants on the board.
type SwitchHandler interface {
	CanSwitch(target *battle.Combatant, move *battle.Definition, reason SwitchReason) bool
	// RequestSwitch switches target out for a bench member picked by reason.
	RequestSwitch(ctx context.Context, target *battle.Combatant, reason SwitchReason) bool
	Switch(ctx context.Context, who, with *battle.Combatant, reason SwitchReason) bool
}

// WeatherHandler changes the field weather.
type WeatherHandler interface {
	ChangeWeather(ctx context.Context, kind string, turns int) bool
}

// TerrainHandler changes the field terrain.
type TerrainHandler interface {
	ChangeTerrain(ctx context.Context, kind string, turns int) bool
}

// Set bundles the handlers a battle runs with.
type Set struct {
	Damage  DamageHandler
	Stat    StatHandler
	Status  StatusHandler
	Item    ItemHandler
	Ability AbilityHandler
	Switch  SwitchHandler
	Weather WeatherHandler
	Terrain TerrainHandler
}

// Env is what the default handlers read and report to.
type Env struct {
	Field     *battle.Field
	Presenter battle.Presenter
	Publisher logging.Publisher
}

func (e Env) normalized() Env {
	if e.Presenter == nil {
		e.Presenter = battle.NopPresenter()
	}
	if e.Publisher == nil {
		e.Publisher = logging.NopPublisher()
	}
	return e
}

func (e Env) turn() int {
	if e.Field == nil {
		return 0
	}
	return e.Field.Turn
}

func (e Env) say(kind battle.MessageKind, actor *battle.Combatant, amount int, format string, args ...any) {
	msg := battle.Message{Kind: kind, Turn: e.turn(), Text: fmt.Sprintf(format, args...), Amount: amount}
	if actor != nil {
		msg.Actor = actor.ID
	}
	e.Presenter.Present(msg)
}

// NewDefault builds the standard handler set for a field.
func NewDefault(env Env) *Set {
	env = env.normalized()
	set := &Set{}
	set.Damage = &Damage{env: env}
	set.Stat = &Stat{env: env}
	set.Status = &Status{env: env}
	set.Item = &Item{env: env}
	set.Ability = &Ability{env: env}
	set.Weather = &Weather{env: env}
	set.Terrain = &Terrain{env: env}
	switcher := &Switch{env: env}
	switcher.damage = set.Damage
	set.Switch = switcher
	return set
}
