package battle

import "testing"

func newDoubleField() (*Field, []*Combatant) {
	field := NewField("double", 2, 2, NewStreams("seed"))
	var all []*Combatant
	for bank := 0; bank < 2; bank++ {
		for i := 0; i < 3; i++ {
			c := NewCombatant(string(rune('a'+bank*3+i)), 50, testBasis())
			field.Join(bank, c)
			all = append(all, c)
		}
	}
	return field, all
}

func TestJoinAssignsPositions(t *testing.T) {
	field, all := newDoubleField()
	if all[0].Position != 0 || all[1].Position != 1 || all[2].Position != -1 {
		t.Fatalf("expected positions 0,1,-1 got %d,%d,%d", all[0].Position, all[1].Position, all[2].Position)
	}
	if got := len(field.Bench(0)); got != 1 {
		t.Fatalf("expected one benched member, got %d", got)
	}
	if field.At(1, 1) != all[4] {
		t.Fatalf("expected e at bank 1 position 1")
	}
}

func TestAdjacency(t *testing.T) {
	field, all := newDoubleField()
	if got := len(field.AdjacentFoesOf(all[0])); got != 2 {
		t.Fatalf("expected 2 adjacent foes in doubles, got %d", got)
	}
	allies := field.AdjacentAlliesOf(all[0])
	if len(allies) != 1 || allies[0] != all[1] {
		t.Fatalf("expected b as adjacent ally, got %v", allies)
	}
	all[4].HP = 0
	if got := len(field.FoesOf(all[0])); got != 1 {
		t.Fatalf("expected fainted foe excluded, got %d", got)
	}
}

func TestCheckKnockout(t *testing.T) {
	field, all := newDoubleField()
	if field.CheckKnockout() {
		t.Fatalf("expected battle to continue")
	}
	for _, c := range all[3:] {
		c.HP = 0
	}
	if !field.CheckKnockout() {
		t.Fatalf("expected knockout")
	}
	if field.Outcome.Winner != 0 || field.Outcome.Reason != OutcomeKnockout {
		t.Fatalf("expected bank 0 knockout win, got %+v", field.Outcome)
	}
}

func TestAdvanceConditions(t *testing.T) {
	field := NewField("w", 2, 1, nil)
	field.Weather = Condition{Kind: WeatherRain, Turns: 2}
	if ended, _ := field.AdvanceConditions(); ended != "" {
		t.Fatalf("expected rain to continue, ended %q", ended)
	}
	if ended, _ := field.AdvanceConditions(); ended != WeatherRain {
		t.Fatalf("expected rain to end, got %q", ended)
	}
	if !field.WeatherIs(WeatherNone) {
		t.Fatalf("expected clear weather, got %q", field.Weather.Kind)
	}
}

func TestEffectiveness(t *testing.T) {
	if got := Effectiveness(TypeWater, TypeFire); got != 2 {
		t.Fatalf("expected water vs fire 2, got %.2f", got)
	}
	if got := Effectiveness(TypeNormal, TypeGhost); got != 0 {
		t.Fatalf("expected normal vs ghost 0, got %.2f", got)
	}
	if got := Effectiveness(TypeFire, TypeNone); got != 1 {
		t.Fatalf("expected empty defender neutral, got %.2f", got)
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("thunder_punch"); got != "Thunder Punch" {
		t.Fatalf("expected Thunder Punch, got %q", got)
	}
}
