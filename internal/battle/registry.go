package battle

import "github.com/google/uuid"

// Registry is the ordered effect collection of one scope.
//
// Add never deduplicates. Moves whose effect may exist at most once per scope
// check Has before Add; the registry does not enforce it.
type Registry struct {
	scope   Scope
	effects []*Effect
}

func NewRegistry(scope Scope) *Registry {
	return &Registry{scope: scope}
}

func (r *Registry) Scope() Scope {
	if r == nil {
		return Scope{}
	}
	return r.scope
}

// Add appends the effect and binds it to the registry scope.
func (r *Registry) Add(effect *Effect) {
	if r == nil || effect == nil {
		return
	}
	if effect.ID == "" {
		effect.ID = uuid.NewString()
	}
	effect.Scope = r.scope
	r.effects = append(r.effects, effect)
}

// Has reports whether a live effect with the name exists.
func (r *Registry) Has(name string) bool {
	return r.Get(name) != nil
}

// HasMatching reports whether a live effect satisfies the predicate.
func (r *Registry) HasMatching(match func(*Effect) bool) bool {
	return r.GetMatching(match) != nil
}

// Get returns the first live effect with the name.
func (r *Registry) Get(name string) *Effect {
	return r.GetMatching(func(e *Effect) bool { return e.Name == name })
}

// GetMatching returns the first live effect satisfying the predicate.
func (r *Registry) GetMatching(match func(*Effect) bool) *Effect {
	if r == nil || match == nil {
		return nil
	}
	for _, effect := range r.effects {
		if !effect.Dead() && match(effect) {
			return effect
		}
	}
	return nil
}

// Count returns the number of live effects with the name.
func (r *Registry) Count(name string) int {
	if r == nil {
		return 0
	}
	count := 0
	for _, effect := range r.effects {
		if !effect.Dead() && effect.Name == name {
			count++
		}
	}
	return count
}

// Len returns the number of stored effects, dead ones included until swept.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.effects)
}

// Each visits live effects in insertion order until fn returns false.
func (r *Registry) Each(fn func(*Effect) bool) {
	if r == nil || fn == nil {
		return
	}
	for _, effect := range append([]*Effect(nil), r.effects...) {
		if effect.Dead() {
			continue
		}
		if !fn(effect) {
			return
		}
	}
}

// Kill marks every live effect with the name dead.
func (r *Registry) Kill(name string, reason EndReason) []*Effect {
	return r.KillMatching(func(e *Effect) bool { return e.Name == name }, reason)
}

// KillMatching marks every live effect satisfying the predicate dead and
// returns them.
func (r *Registry) KillMatching(match func(*Effect) bool, reason EndReason) []*Effect {
	if r == nil || match == nil {
		return nil
	}
	var killed []*Effect
	for _, effect := range r.effects {
		if effect.Dead() || !match(effect) {
			continue
		}
		effect.Kill(reason)
		killed = append(killed, effect)
	}
	return killed
}

// Countdown runs the end-of-turn step of every live effect.
func (r *Registry) Countdown() {
	r.Each(func(e *Effect) bool {
		e.Countdown()
		return true
	})
}

// Sweep removes dead effects, compacting in place, and returns them.
func (r *Registry) Sweep() []*Effect {
	if r == nil || len(r.effects) == 0 {
		return nil
	}
	kept := r.effects[:0]
	var removed []*Effect
	for _, effect := range r.effects {
		if effect.Dead() {
			removed = append(removed, effect)
			continue
		}
		kept = append(kept, effect)
	}
	for i := len(kept); i < len(r.effects); i++ {
		r.effects[i] = nil
	}
	r.effects = kept
	return removed
}
