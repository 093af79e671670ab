package moves

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"pocket-arena/server/internal/battle"
)

var (
	// ErrUnknownMethod is returned when a definition names no registered behavior.
	ErrUnknownMethod = errors.New("unknown move method")
	// ErrDuplicateMove is returned when a behavior is registered twice.
	ErrDuplicateMove = errors.New("duplicate move behavior")
	// ErrInvalidPower is returned for a power the behavior cannot work with.
	ErrInvalidPower = errors.New("invalid move power")
)

var registry = struct {
	sync.RWMutex
	byMethod map[string]Behavior
	byID     map[string]Behavior
}{
	byMethod: make(map[string]Behavior),
	byID:     make(map[string]Behavior),
}

// RegisterMethod binds a behavior to a method name shared by many moves.
func RegisterMethod(method string, b Behavior) error {
	if method == "" {
		return fmt.Errorf("moves: empty method name")
	}
	registry.Lock()
	defer registry.Unlock()
	if _, exists := registry.byMethod[method]; exists {
		return fmt.Errorf("%w: method %s", ErrDuplicateMove, method)
	}
	registry.byMethod[method] = b
	return nil
}

// RegisterMove binds a behavior to one move id. It wins over the method.
func RegisterMove(id string, b Behavior) error {
	if id == "" {
		return fmt.Errorf("moves: empty move id")
	}
	registry.Lock()
	defer registry.Unlock()
	if _, exists := registry.byID[id]; exists {
		return fmt.Errorf("%w: move %s", ErrDuplicateMove, id)
	}
	registry.byID[id] = b
	return nil
}

func mustRegisterMethod(method string, b Behavior) {
	if err := RegisterMethod(method, b); err != nil {
		panic(err)
	}
}

func mustRegisterMove(id string, b Behavior) {
	if err := RegisterMove(id, b); err != nil {
		panic(err)
	}
}

// Lookup returns the behavior of def: by id first, then by method.
func Lookup(def *battle.Definition) (Behavior, error) {
	if def == nil {
		return Behavior{}, fmt.Errorf("%w: nil definition", ErrUnknownMethod)
	}
	registry.RLock()
	defer registry.RUnlock()
	if b, ok := registry.byID[def.ID]; ok {
		return b, nil
	}
	if b, ok := registry.byMethod[def.Method]; ok {
		return b, nil
	}
	return Behavior{}, fmt.Errorf("%w: %s uses %q", ErrUnknownMethod, def.ID, def.Method)
}

// Check validates def against its behavior.
func Check(def *battle.Definition) error {
	b, err := Lookup(def)
	if err != nil {
		return err
	}
	if b.Validate != nil {
		if err := b.Validate(def); err != nil {
			return err
		}
	}
	return def.Validate()
}

// Methods lists the registered method names.
func Methods() []string {
	registry.RLock()
	defer registry.RUnlock()
	out := make([]string, 0, len(registry.byMethod))
	for method := range registry.byMethod {
		out = append(out, method)
	}
	sort.Strings(out)
	return out
}

// Priority returns the action priority of def for user, including
// situational changes.
func Priority(bc *BattleContext, user *battle.Combatant, def *battle.Definition) int {
	b, err := Lookup(def)
	if err != nil {
		return def.Priority
	}
	return b.priority(bc, user, def)
}

func nonNegativePower(def *battle.Definition) error {
	if def.Power < 0 {
		return fmt.Errorf("%w: %s has power %d", ErrInvalidPower, def.ID, def.Power)
	}
	return nil
}

func zeroPower(def *battle.Definition) error {
	if def.Power > 0 {
		return fmt.Errorf("%w: %s is a status move with power %d", ErrInvalidPower, def.ID, def.Power)
	}
	return nil
}
