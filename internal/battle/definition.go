package battle

import (
	"errors"
	"fmt"

	"pocket-arena/server/stats"
)

// Category classifies how a move deals damage.
type Category string

const (
	CategoryPhysical Category = "physical"
	CategorySpecial  Category = "special"
	CategoryStatus   Category = "status"
)

// TargetPolicy declares which combatants a move may affect.
type TargetPolicy string

const (
	TargetAdjacentPokemon    TargetPolicy = "adjacent_pokemon"
	TargetAdjacentAllPokemon TargetPolicy = "adjacent_all_pokemon"
	TargetAdjacentFoe        TargetPolicy = "adjacent_foe"
	TargetAdjacentAllFoe     TargetPolicy = "adjacent_all_foe"
	TargetAllFoe             TargetPolicy = "all_foe"
	TargetRandomFoe          TargetPolicy = "random_foe"
	TargetAllPokemon         TargetPolicy = "all_pokemon"
	TargetUser               TargetPolicy = "user"
	TargetUserOrAdjacentAlly TargetPolicy = "user_or_adjacent_ally"
	TargetAdjacentAlly       TargetPolicy = "adjacent_ally"
	TargetAllAlly            TargetPolicy = "all_ally"
	TargetAllAllyButUser     TargetPolicy = "all_ally_but_user"
	TargetAnyOtherPokemon    TargetPolicy = "any_other_pokemon"
)

var oneTargetPolicies = map[TargetPolicy]bool{
	TargetAnyOtherPokemon:    true,
	TargetRandomFoe:          true,
	TargetAdjacentPokemon:    true,
	TargetAdjacentFoe:        true,
	TargetUser:               true,
	TargetUserOrAdjacentAlly: true,
	TargetAdjacentAlly:       true,
}

var noChoicePolicies = map[TargetPolicy]bool{
	TargetAdjacentAllFoe:     true,
	TargetAllFoe:             true,
	TargetAdjacentAllPokemon: true,
	TargetAllPokemon:         true,
	TargetUser:               true,
	TargetAllAlly:            true,
	TargetAllAllyButUser:     true,
	TargetRandomFoe:          true,
}

// Valid reports whether the policy is known.
func (p TargetPolicy) Valid() bool {
	return oneTargetPolicies[p] || noChoicePolicies[p] || p == TargetAdjacentAllFoe
}

// Flags are the boolean traits other mechanics key off.
type Flags struct {
	Direct     bool `json:"direct,omitempty" yaml:"direct,omitempty"`
	Blockable  bool `json:"blockable,omitempty" yaml:"blockable,omitempty"`
	Sound      bool `json:"sound,omitempty" yaml:"sound,omitempty"`
	Punch      bool `json:"punch,omitempty" yaml:"punch,omitempty"`
	Pulse      bool `json:"pulse,omitempty" yaml:"pulse,omitempty"`
	Powder     bool `json:"powder,omitempty" yaml:"powder,omitempty"`
	Recoil     bool `json:"recoil,omitempty" yaml:"recoil,omitempty"`
	Heal       bool `json:"heal,omitempty" yaml:"heal,omitempty"`
	Authentic  bool `json:"authentic,omitempty" yaml:"authentic,omitempty"`
	Snatchable bool `json:"snatchable,omitempty" yaml:"snatchable,omitempty"`
	Gravity    bool `json:"gravity,omitempty" yaml:"gravity,omitempty"`
}

// StatusChance is one weighted status a move may inflict.
type StatusChance struct {
	Status Status `json:"status" yaml:"status"`
	Chance int    `json:"chance" yaml:"chance"`
}

// StageMod is a stat-stage delta a move applies.
type StageMod struct {
	Stat  string `json:"stat" yaml:"stat"`
	Delta int    `json:"delta" yaml:"delta"`
}

// StatID resolves the stat name.
func (m StageMod) StatID() (stats.StatID, bool) {
	return stats.ParseStat(m.Stat)
}

var (
	ErrInvalidDefinition = errors.New("invalid move definition")
)

// Definition is the immutable description of a move. Per-use state lives in
// the invocation record of the resolving pipeline, never here.
type Definition struct {
	ID           string         `json:"id" yaml:"id"`
	Method       string         `json:"method" yaml:"method"`
	Type         Type           `json:"type" yaml:"type"`
	Category     Category       `json:"category" yaml:"category"`
	Power        int            `json:"power" yaml:"power"`
	Accuracy     int            `json:"accuracy" yaml:"accuracy"`
	PP           int            `json:"pp" yaml:"pp"`
	Priority     int            `json:"priority,omitempty" yaml:"priority,omitempty"`
	Target       TargetPolicy   `json:"target" yaml:"target"`
	CriticalRate int            `json:"criticalRate,omitempty" yaml:"criticalRate,omitempty"`
	EffectChance int            `json:"effectChance,omitempty" yaml:"effectChance,omitempty"`
	Statuses     []StatusChance `json:"statuses,omitempty" yaml:"statuses,omitempty"`
	Stages       []StageMod     `json:"stages,omitempty" yaml:"stages,omitempty"`
	Flags        Flags          `json:"flags,omitempty" yaml:"flags,omitempty"`
	RecoilFactor int            `json:"recoilFactor,omitempty" yaml:"recoilFactor,omitempty"`
	DrainRatio   float64        `json:"drainRatio,omitempty" yaml:"drainRatio,omitempty"`
	Parameters   map[string]int `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

func (d *Definition) IsStatus() bool   { return d != nil && d.Category == CategoryStatus }
func (d *Definition) IsPhysical() bool { return d != nil && d.Category == CategoryPhysical }
func (d *Definition) IsSpecial() bool  { return d != nil && d.Category == CategorySpecial }

// OneTarget reports whether the policy aims at a single combatant.
func (d *Definition) OneTarget() bool {
	return d != nil && oneTargetPolicies[d.Target]
}

// NoChoice reports whether the policy skips target selection.
func (d *Definition) NoChoice() bool {
	return d != nil && noChoicePolicies[d.Target]
}

// Name is the display name of the move.
func (d *Definition) Name() string {
	if d == nil {
		return ""
	}
	return DisplayName(d.ID)
}

// Param returns a tunable with a fallback.
func (d *Definition) Param(key string, fallback int) int {
	if d == nil || d.Parameters == nil {
		return fallback
	}
	if value, ok := d.Parameters[key]; ok {
		return value
	}
	return fallback
}

// Normalized fills defaults for optional fields.
func (d Definition) Normalized() Definition {
	if d.CriticalRate == 0 && d.Category != CategoryStatus {
		d.CriticalRate = 1
	}
	if d.RecoilFactor <= 0 {
		d.RecoilFactor = 4
	}
	if d.Target == "" {
		d.Target = TargetAdjacentPokemon
	}
	if d.Method == "" {
		d.Method = "s_basic"
	}
	return d
}

// Validate checks the authoring constraints every move must satisfy.
func (d *Definition) Validate() error {
	if d == nil {
		return fmt.Errorf("%w: nil definition", ErrInvalidDefinition)
	}
	if d.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidDefinition)
	}
	switch d.Category {
	case CategoryPhysical, CategorySpecial, CategoryStatus:
	default:
		return fmt.Errorf("%w: %s has unknown category %q", ErrInvalidDefinition, d.ID, d.Category)
	}
	if !d.Type.Valid() {
		return fmt.Errorf("%w: %s has unknown type %q", ErrInvalidDefinition, d.ID, d.Type)
	}
	if d.Target != "" && !d.Target.Valid() {
		return fmt.Errorf("%w: %s has unknown target %q", ErrInvalidDefinition, d.ID, d.Target)
	}
	if d.Power < 0 {
		return fmt.Errorf("%w: %s has negative power %d", ErrInvalidDefinition, d.ID, d.Power)
	}
	if d.Accuracy < 0 || d.Accuracy > 100 {
		return fmt.Errorf("%w: %s has accuracy %d outside 0..100", ErrInvalidDefinition, d.ID, d.Accuracy)
	}
	if d.PP < 0 {
		return fmt.Errorf("%w: %s has negative pp", ErrInvalidDefinition, d.ID)
	}
	for _, status := range d.Statuses {
		if !status.Status.Valid() {
			return fmt.Errorf("%w: %s lists unknown status %q", ErrInvalidDefinition, d.ID, status.Status)
		}
	}
	for _, stage := range d.Stages {
		if _, ok := stage.StatID(); !ok {
			return fmt.Errorf("%w: %s lists unknown stat %q", ErrInvalidDefinition, d.ID, stage.Stat)
		}
	}
	return nil
}

// MoveSlot is a combatant's copy of a move with its remaining uses.
type MoveSlot struct {
	Def   *Definition
	PP    int
	MaxPP int
}

func NewMoveSlot(def *Definition) *MoveSlot {
	if def == nil {
		return nil
	}
	return &MoveSlot{Def: def, PP: def.PP, MaxPP: def.PP}
}

// ID returns the canonical id of the slotted move.
func (s *MoveSlot) ID() string {
	if s == nil || s.Def == nil {
		return ""
	}
	return s.Def.ID
}
