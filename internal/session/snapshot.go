package session

import (
	"pocket-arena/server/internal/battle"
	"pocket-arena/server/internal/moves"
)

// State is the view of a session sent to clients.
type State struct {
	ID      string         `json:"id"`
	Turn    int            `json:"turn"`
	Phase   string         `json:"phase"`
	Weather string         `json:"weather"`
	Terrain string         `json:"terrain"`
	Outcome battle.Outcome `json:"outcome"`
	Pending []string       `json:"pending,omitempty"`
	Banks   []BankState    `json:"banks"`
}

type BankState struct {
	Index      int              `json:"index"`
	Name       string           `json:"name"`
	Controller Controller       `json:"controller"`
	Members    []CombatantState `json:"members"`
}

type CombatantState struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Species  string        `json:"species,omitempty"`
	HP       int           `json:"hp"`
	MaxHP    int           `json:"maxHp"`
	Status   battle.Status `json:"status,omitempty"`
	Position int           `json:"position"`
	Moves    []MoveState   `json:"moves"`
}

type MoveState struct {
	ID       string `json:"id"`
	PP       int    `json:"pp"`
	MaxPP    int    `json:"maxPp"`
	Disabled bool   `json:"disabled,omitempty"`
}

// Snapshot captures the session. It waits for a resolving turn to finish.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := State{
		ID:      s.ID,
		Turn:    s.field.Turn,
		Phase:   s.phase.Current(),
		Weather: s.field.Weather.Kind,
		Terrain: s.field.Terrain.Kind,
		Outcome: s.field.Outcome,
	}
	for _, c := range s.field.AllAlive() {
		if _, ok := s.pending[c.ID]; !ok && !s.automatic(c) {
			state.Pending = append(state.Pending, c.ID)
		}
	}
	for _, bank := range s.field.Banks {
		out := BankState{Index: bank.Index, Controller: s.controller(bank.Index)}
		if bank.Index < len(s.teams) {
			out.Name = s.teams[bank.Index].Name
		}
		for _, c := range bank.Party {
			member := CombatantState{
				ID:       c.ID,
				Name:     c.Name(),
				Species:  c.Species,
				HP:       c.HP,
				MaxHP:    c.MaxHP(),
				Status:   c.Status,
				Position: c.Position,
			}
			for _, slot := range c.Moves {
				member.Moves = append(member.Moves, MoveState{
					ID:       slot.ID(),
					PP:       slot.PP,
					MaxPP:    slot.MaxPP,
					Disabled: c.Active() && moves.Disabled(s.field, c, slot) != "",
				})
			}
			out.Members = append(out.Members, member)
		}
		state.Banks = append(state.Banks, out)
	}
	return state
}
