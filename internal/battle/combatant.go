package battle

import (
	"pocket-arena/server/stats"
)

// HistoryEntry records one move use of a combatant.
type HistoryEntry struct {
	Move        *Definition
	Targets     []*Combatant
	Turn        int
	Success     bool
	DamageDealt int
	AttackOrder int
}

// Targeted reports whether c was among the entry's targets.
func (h *HistoryEntry) Targeted(c *Combatant) bool {
	if h == nil {
		return false
	}
	for _, target := range h.Targets {
		if target == c {
			return true
		}
	}
	return false
}

// MoveID returns the id of the recorded move.
func (h *HistoryEntry) MoveID() string {
	if h == nil || h.Move == nil {
		return ""
	}
	return h.Move.ID
}

// Combatant is the mutable battle state of a creature. Persistent fields
// (HP, stages, status, item, ability, basis) change through handlers.
type Combatant struct {
	ID           string
	Species      string
	Nickname     string
	Level        int
	Types        [3]Type
	Ability      string
	Item         string
	ConsumedItem string
	Basis        stats.Basis
	HP           int
	Stages       stats.Stages
	Status       Status
	SleepTurns   int
	ToxicCounter int
	Moves        []*MoveSlot
	History      []HistoryEntry
	Effects      *Registry

	Bank        int
	Position    int
	PartyIndex  int
	AttackOrder int
}

// NewCombatant creates a combatant at full HP with an empty effect registry.
// Position -1 marks a benched party member.
func NewCombatant(id string, level int, basis stats.Basis) *Combatant {
	c := &Combatant{
		ID:       id,
		Level:    level,
		Basis:    basis,
		HP:       basis.MaxHP,
		Position: -1,
	}
	c.Effects = NewRegistry(Scope{Kind: ScopeBattler, Combatant: c})
	return c
}

func (c *Combatant) String() string {
	if c == nil {
		return "<nil>"
	}
	return c.ID
}

// Name is the display name used in messages.
func (c *Combatant) Name() string {
	if c == nil {
		return ""
	}
	if c.Nickname != "" {
		return c.Nickname
	}
	if c.Species != "" {
		return DisplayName(c.Species)
	}
	return c.ID
}

func (c *Combatant) Alive() bool { return c != nil && c.HP > 0 }
func (c *Combatant) Dead() bool  { return !c.Alive() }

// Active reports whether the combatant occupies a board position.
func (c *Combatant) Active() bool { return c != nil && c.Position >= 0 }

func (c *Combatant) MaxHP() int {
	if c == nil {
		return 0
	}
	return c.Basis.MaxHP
}

// HPRate is the current HP fraction in [0, 1].
func (c *Combatant) HPRate() float64 {
	if c == nil || c.Basis.MaxHP <= 0 {
		return 0
	}
	return float64(c.HP) / float64(c.Basis.MaxHP)
}

func (c *Combatant) HasAbility(ability string) bool {
	return c != nil && ability != "" && c.Ability == ability
}

func (c *Combatant) HasItem(item string) bool {
	return c != nil && item != "" && c.Item == item
}

func (c *Combatant) HasType(t Type) bool {
	if c == nil || t == TypeNone {
		return false
	}
	for _, own := range c.Types {
		if own == t {
			return true
		}
	}
	return false
}

// StatValue applies the stage multiplier to a basis stat.
func (c *Combatant) StatValue(stat stats.StatID) int {
	if c == nil {
		return 0
	}
	return int(float64(c.Basis.Get(stat)) * stats.Multiplier(c.Stages.Get(stat)))
}

// StatModifier returns the stage multiplier for a stat.
func (c *Combatant) StatModifier(stat stats.StatID) float64 {
	if c == nil {
		return 1
	}
	switch stat {
	case stats.StatAcc, stats.StatEva:
		return stats.AccuracyMultiplier(c.Stages.Get(stat))
	default:
		return stats.Multiplier(c.Stages.Get(stat))
	}
}

// Slot finds the move slot holding the provided move id.
func (c *Combatant) Slot(moveID string) *MoveSlot {
	if c == nil {
		return nil
	}
	for _, slot := range c.Moves {
		if slot.ID() == moveID {
			return slot
		}
	}
	return nil
}

// LastMove returns the latest history entry, or nil.
func (c *Combatant) LastMove() *HistoryEntry {
	if c == nil || len(c.History) == 0 {
		return nil
	}
	return &c.History[len(c.History)-1]
}

// LastSuccessfulMoveIs reports whether the latest successful use was moveID.
func (c *Combatant) LastSuccessfulMoveIs(moveID string) bool {
	if c == nil {
		return false
	}
	for i := len(c.History) - 1; i >= 0; i-- {
		if c.History[i].Success {
			return c.History[i].MoveID() == moveID
		}
	}
	return false
}

// MovesOnTurn returns the entries recorded during turn.
func (c *Combatant) MovesOnTurn(turn int) []HistoryEntry {
	if c == nil {
		return nil
	}
	var out []HistoryEntry
	for _, entry := range c.History {
		if entry.Turn == turn {
			out = append(out, entry)
		}
	}
	return out
}

// AppendHistory records a move use.
func (c *Combatant) AppendHistory(entry HistoryEntry) {
	if c == nil {
		return
	}
	entry.Targets = append([]*Combatant(nil), entry.Targets...)
	c.History = append(c.History, entry)
}

// IsAlly reports whether other stands on the same bank.
func (c *Combatant) IsAlly(other *Combatant) bool {
	return c != nil && other != nil && c != other && c.Bank == other.Bank
}
