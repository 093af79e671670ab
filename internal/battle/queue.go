package battle

import (
	"errors"
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"pocket-arena/server/stats"
)

// ActionKind distinguishes queued intentions.
type ActionKind string

const (
	ActionAttack ActionKind = "attack"
	ActionSwitch ActionKind = "switch"
)

var ErrUnknownAction = errors.New("unknown action")

// Action is a queued intention with a stable identity.
type Action struct {
	ID             string
	Kind           ActionKind
	User           *Combatant
	Slot           *MoveSlot
	TargetBank     int
	TargetPosition int
	Replacement    *Combatant
	Forced         bool

	priority int
	speed    int
	tieBreak float64
}

// Priority returns the priority computed at the last sort.
func (a *Action) Priority() int {
	if a == nil {
		return 0
	}
	return a.priority
}

// PriorityFunc resolves the priority of an attack at sort time.
type PriorityFunc func(a *Action) int

// ActionQueue holds the turn's pending actions in execution order.
type ActionQueue struct {
	actions []*Action
	rng     *rand.Rand

	// Speed overrides the raw speed stat used for ordering.
	Speed func(c *Combatant) int
}

// NewActionQueue creates a queue drawing speed tie-breaks from rng.
func NewActionQueue(rng *rand.Rand) *ActionQueue {
	if rng == nil {
		rng = NewDeterministicRNG(DefaultSeed, streamOrder)
	}
	return &ActionQueue{rng: rng}
}

// Push appends an action, assigning its id when missing.
func (q *ActionQueue) Push(a *Action) *Action {
	if q == nil || a == nil {
		return a
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.tieBreak = q.rng.Float64()
	q.actions = append(q.actions, a)
	return a
}

// Sort orders switches first, then attacks by priority, then speed, then
// the tie-break drawn at push time.
func (q *ActionQueue) Sort(priority PriorityFunc) {
	if q == nil {
		return
	}
	for _, a := range q.actions {
		a.priority = 0
		if a.Kind == ActionAttack {
			if priority != nil {
				a.priority = priority(a)
			} else if a.Slot != nil && a.Slot.Def != nil {
				a.priority = a.Slot.Def.Priority
			}
		}
		if q.Speed != nil {
			a.speed = q.Speed(a.User)
		} else {
			a.speed = a.User.StatValue(stats.StatSpd)
		}
	}
	sort.SliceStable(q.actions, func(i, j int) bool {
		a, b := q.actions[i], q.actions[j]
		if (a.Kind == ActionSwitch) != (b.Kind == ActionSwitch) {
			return a.Kind == ActionSwitch
		}
		if a.priority != b.priority {
			return a.priority > b.priority
		}
		if a.speed != b.speed {
			return a.speed > b.speed
		}
		return a.tieBreak < b.tieBreak
	})
}

// Len returns the number of pending actions.
func (q *ActionQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.actions)
}

// Next pops the first pending action.
func (q *ActionQueue) Next() (*Action, bool) {
	if q == nil || len(q.actions) == 0 {
		return nil, false
	}
	a := q.actions[0]
	q.actions = q.actions[1:]
	return a, true
}

// Actions returns a snapshot of the pending actions.
func (q *ActionQueue) Actions() []*Action {
	if q == nil {
		return nil
	}
	return append([]*Action(nil), q.actions...)
}

func (q *ActionQueue) index(id string) int {
	for i, a := range q.actions {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// Find returns the pending action with the id.
func (q *ActionQueue) Find(id string) (*Action, bool) {
	if q == nil {
		return nil, false
	}
	if i := q.index(id); i >= 0 {
		return q.actions[i], true
	}
	return nil, false
}

// Remove drops the pending action with the id.
func (q *ActionQueue) Remove(id string) (*Action, error) {
	if q == nil {
		return nil, ErrUnknownAction
	}
	i := q.index(id)
	if i < 0 {
		return nil, ErrUnknownAction
	}
	a := q.actions[i]
	q.actions = append(q.actions[:i], q.actions[i+1:]...)
	return a, nil
}

// MoveToFront makes the action the next one to execute.
func (q *ActionQueue) MoveToFront(id string) error {
	a, err := q.Remove(id)
	if err != nil {
		return err
	}
	q.actions = append([]*Action{a}, q.actions...)
	return nil
}

// MoveToBack makes the action the last one to execute.
func (q *ActionQueue) MoveToBack(id string) error {
	a, err := q.Remove(id)
	if err != nil {
		return err
	}
	q.actions = append(q.actions, a)
	return nil
}

// InsertAt places an action at index, clamped to the queue bounds.
func (q *ActionQueue) InsertAt(index int, a *Action) {
	if q == nil || a == nil {
		return
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if index < 0 {
		index = 0
	}
	if index > len(q.actions) {
		index = len(q.actions)
	}
	q.actions = append(q.actions, nil)
	copy(q.actions[index+1:], q.actions[index:])
	q.actions[index] = a
}

// AttackOf returns the pending attack of a combatant.
func (q *ActionQueue) AttackOf(c *Combatant) (*Action, bool) {
	return q.firstOf(c, ActionAttack)
}

// SwitchOf returns the pending switch of a combatant.
func (q *ActionQueue) SwitchOf(c *Combatant) (*Action, bool) {
	return q.firstOf(c, ActionSwitch)
}

func (q *ActionQueue) firstOf(c *Combatant, kind ActionKind) (*Action, bool) {
	if q == nil {
		return nil, false
	}
	for _, a := range q.actions {
		if a.User == c && a.Kind == kind {
			return a, true
		}
	}
	return nil, false
}

// Clear drops every pending action.
func (q *ActionQueue) Clear() {
	if q == nil {
		return
	}
	q.actions = nil
}
