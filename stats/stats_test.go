package stats

import "testing"

func TestStageChangeClamps(t *testing.T) {
	var stages Stages
	if applied := stages.Change(StatAtk, 4); applied != 4 {
		t.Fatalf("expected 4 stages applied, got %d", applied)
	}
	if applied := stages.Change(StatAtk, 4); applied != 2 {
		t.Fatalf("expected clamp to apply 2 stages, got %d", applied)
	}
	if got := stages.Get(StatAtk); got != MaxStage {
		t.Fatalf("expected atk stage %d, got %d", MaxStage, got)
	}
	stages.Change(StatEva, -20)
	if got := stages.Get(StatEva); got != MinStage {
		t.Fatalf("expected eva stage %d, got %d", MinStage, got)
	}
	if stages.CanIncrease(StatAtk) {
		t.Fatalf("expected atk at cap to refuse increases")
	}
	if stages.CanDecrease(StatEva) {
		t.Fatalf("expected eva at floor to refuse decreases")
	}
}

func TestStageChangeStaysInRange(t *testing.T) {
	var stages Stages
	deltas := []int{3, -7, 12, -1, 6, -13, 2, 5, -2}
	for _, delta := range deltas {
		for stat := StatID(0); stat < StatCount; stat++ {
			stages.Change(stat, delta)
			if got := stages.Get(stat); got < MinStage || got > MaxStage {
				t.Fatalf("stage for %s escaped range: %d", stat, got)
			}
		}
	}
}

func TestMultipliers(t *testing.T) {
	if got := Multiplier(0); got != 1 {
		t.Fatalf("expected neutral multiplier 1, got %.3f", got)
	}
	if got := Multiplier(2); got != 2 {
		t.Fatalf("expected +2 multiplier 2, got %.3f", got)
	}
	if got := Multiplier(-2); got != 0.5 {
		t.Fatalf("expected -2 multiplier 0.5, got %.3f", got)
	}
	if got := AccuracyMultiplier(3); got != 2 {
		t.Fatalf("expected +3 accuracy multiplier 2, got %.3f", got)
	}
	if got := AccuracyMultiplier(-3); got != 0.5 {
		t.Fatalf("expected -3 accuracy multiplier 0.5, got %.3f", got)
	}
}

func TestComputeLevelFifty(t *testing.T) {
	basis := Compute(Base{HP: 100, Atk: 100, Dfe: 100, Spd: 100, Ats: 100, Dfs: 100}, 50, 31, 0, "adamant")
	if basis.MaxHP != 175 {
		t.Fatalf("expected max hp 175, got %d", basis.MaxHP)
	}
	if basis.Atk != 132 {
		t.Fatalf("expected boosted atk 132, got %d", basis.Atk)
	}
	if basis.Ats != 108 {
		t.Fatalf("expected hindered ats 108, got %d", basis.Ats)
	}
	if basis.Dfe != 120 {
		t.Fatalf("expected neutral dfe 120, got %d", basis.Dfe)
	}
}

func TestParseStat(t *testing.T) {
	stat, ok := ParseStat("dfs")
	if !ok || stat != StatDfs {
		t.Fatalf("expected dfs to parse, got %v %v", stat, ok)
	}
	if _, ok := ParseStat("luck"); ok {
		t.Fatalf("expected unknown stat to be rejected")
	}
}
