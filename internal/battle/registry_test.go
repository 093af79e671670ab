package battle

import (
	"testing"

	"pocket-arena/server/stats"
)

func TestEffectExpiresAfterExactlyDurationBoundaries(t *testing.T) {
	for duration := 1; duration <= 5; duration++ {
		reg := NewRegistry(Scope{Kind: ScopeGlobal})
		reg.Add(NewEffect("trick_room", duration))
		for boundary := 1; boundary <= duration; boundary++ {
			reg.Countdown()
			reg.Sweep()
			present := reg.Has("trick_room")
			if boundary < duration && !present {
				t.Fatalf("duration %d: expected effect alive after %d boundaries", duration, boundary)
			}
			if boundary == duration && present {
				t.Fatalf("duration %d: expected effect removed after %d boundaries", duration, boundary)
			}
		}
		if reg.Len() != 0 {
			t.Fatalf("duration %d: expected empty registry, got %d", duration, reg.Len())
		}
	}
}

func TestRegistryKillMatchingAndSweep(t *testing.T) {
	reg := NewRegistry(Scope{Kind: ScopeBank, Bank: 1})
	reflect := NewEffect("reflect", 5)
	reflect.Cleansable = true
	spikes := NewPermanentEffect("spikes")
	spikes.Cleansable = true
	tailwind := NewEffect("tailwind", 4)
	reg.Add(reflect)
	reg.Add(spikes)
	reg.Add(tailwind)

	killed := reg.KillMatching(func(e *Effect) bool { return e.Cleansable }, EndReasonCleansed)
	if len(killed) != 2 {
		t.Fatalf("expected 2 cleansed effects, got %d", len(killed))
	}
	if reg.Has("reflect") || reg.Has("spikes") {
		t.Fatalf("expected cleansed effects hidden from Has")
	}
	if reg.Len() != 3 {
		t.Fatalf("expected dead effects kept until sweep, got %d", reg.Len())
	}
	removed := reg.Sweep()
	if len(removed) != 2 || reg.Len() != 1 {
		t.Fatalf("expected sweep to remove 2 leaving 1, removed %d left %d", len(removed), reg.Len())
	}
	if reflect.Reason() != EndReasonCleansed {
		t.Fatalf("expected cleansed reason, got %q", reflect.Reason())
	}
	if got := reg.Get("tailwind"); got != tailwind {
		t.Fatalf("expected tailwind to survive")
	}
	if tailwind.Scope.Kind != ScopeBank || tailwind.Scope.Bank != 1 {
		t.Fatalf("expected effect bound to bank scope, got %+v", tailwind.Scope)
	}
}

func TestRegistryAddDoesNotDeduplicate(t *testing.T) {
	reg := NewRegistry(Scope{Kind: ScopeGlobal})
	reg.Add(NewEffect("gravity", 5))
	reg.Add(NewEffect("gravity", 5))
	if got := reg.Count("gravity"); got != 2 {
		t.Fatalf("expected registry to store both instances, got %d", got)
	}
}

func TestConditionEffectEndsWhenPredicateHolds(t *testing.T) {
	holder := NewCombatant("a", 50, testBasis())
	effect := NewPermanentEffect("bound")
	effect.End = EndCondition
	effect.Condition = func(e *Effect) bool { return e.Holder().Dead() }
	holder.Effects.Add(effect)

	holder.Effects.Countdown()
	if effect.Dead() {
		t.Fatalf("expected effect alive while holder lives")
	}
	holder.HP = 0
	holder.Effects.Countdown()
	if !effect.Dead() || effect.Reason() != EndReasonExpired {
		t.Fatalf("expected condition to expire the effect, dead=%v reason=%q", effect.Dead(), effect.Reason())
	}
}

func TestEachEffectVisitsScopesOnce(t *testing.T) {
	field := NewField("test", 2, 2, NewStreams("seed"))
	a := NewCombatant("a", 50, testBasis())
	b := NewCombatant("b", 50, testBasis())
	foe := NewCombatant("foe", 50, testBasis())
	field.Join(0, a)
	field.Join(0, b)
	field.Join(1, foe)

	field.Effects.Add(NewEffect("gravity", 5))
	field.BankEffects(0).Add(NewEffect("reflect", 5))
	field.PositionEffects(0, 1).Add(NewEffect("wish", 2))
	a.Effects.Add(NewEffect("taunt", 3))

	var names []string
	field.EachEffect(func(e *Effect) bool {
		names = append(names, e.Name)
		return true
	}, a, b, a)
	expected := []string{"gravity", "reflect", "wish", "taunt"}
	if len(names) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, names)
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Fatalf("expected %v, got %v", expected, names)
		}
	}
}

func testBasis() stats.Basis {
	return stats.Basis{MaxHP: 100, Atk: 100, Dfe: 100, Spd: 100, Ats: 100, Dfs: 100}
}
