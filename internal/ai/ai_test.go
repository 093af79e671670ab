package ai

import (
	"math"
	"testing"
	"testing/fstest"

	"pocket-arena/server/internal/battle"
	"pocket-arena/server/internal/effects"
	"pocket-arena/server/internal/moves"
	"pocket-arena/server/stats"
)

type scene struct {
	bc   *moves.BattleContext
	user *battle.Combatant
	ally *battle.Combatant
	foe  *battle.Combatant
}

func basis(atk, dfe int) stats.Basis {
	return stats.Basis{MaxHP: 100, Atk: atk, Dfe: dfe, Spd: 100, Ats: atk, Dfs: dfe}
}

// newScene builds a trainer double battle: user and ally against one foe.
func newScene(t *testing.T) *scene {
	t.Helper()
	field := battle.NewField("ai", 2, 2, battle.NewStreams("ai"))
	field.Trainer = true
	s := &scene{
		user: battle.NewCombatant("user", 50, basis(100, 100)),
		ally: battle.NewCombatant("ally", 50, basis(100, 100)),
		foe:  battle.NewCombatant("foe", 50, basis(100, 100)),
	}
	field.Join(0, s.user)
	field.Join(0, s.ally)
	field.Join(1, s.foe)
	s.bc = moves.NewBattleContext(field, nil, nil)
	return s
}

func attack(id string, moveType battle.Type, category battle.Category) *battle.Definition {
	return &battle.Definition{
		ID:       id,
		Method:   "s_basic",
		Type:     moveType,
		Category: category,
		Power:    40,
		Accuracy: 100,
		PP:       35,
		Target:   battle.TargetAdjacentFoe,
	}
}

func support(id, method string, target battle.TargetPolicy) *battle.Definition {
	return &battle.Definition{
		ID:       id,
		Method:   method,
		Type:     battle.TypeNormal,
		Category: battle.CategoryStatus,
		PP:       10,
		Target:   target,
	}
}

func TestForPicksHighestLevelNotAboveAI(t *testing.T) {
	low := Heuristic{IgnorePower: true}
	high := Heuristic{IgnoreEffectiveness: true}
	if err := Register("s_levels", &low, 1); err != nil {
		t.Fatalf("register low: %v", err)
	}
	if err := Register("s_levels", &high, 4); err != nil {
		t.Fatalf("register high: %v", err)
	}

	if h := For("s_levels", 0); h.IgnorePower || h.IgnoreEffectiveness {
		t.Fatalf("expected base heuristic below every level, got %+v", h)
	}
	if h := For("s_levels", 3); !h.IgnorePower {
		t.Fatalf("expected level 1 heuristic at level 3, got %+v", h)
	}
	if h := For("s_levels", 9); !h.IgnoreEffectiveness {
		t.Fatalf("expected level 4 heuristic at level 9, got %+v", h)
	}

	if err := Register("s_levels", nil, 4); err != nil {
		t.Fatalf("unregister: %v", err)
	}
	if h := For("s_levels", 9); !h.IgnorePower {
		t.Fatalf("expected removal to fall back to level 1, got %+v", h)
	}
	if err := Register("", &low, 0); err == nil {
		t.Fatalf("expected error for empty method")
	}
}

func TestRegisteredMethodsRequireLevelOne(t *testing.T) {
	for _, method := range []string{"s_rest", "s_heal", "s_heal_bell", "s_reflect"} {
		if h := For(method, 0); h.IgnorePower {
			t.Fatalf("expected base heuristic for %s at level 0", method)
		}
		if h := For(method, 1); !h.IgnorePower || !h.IgnoreEffectiveness {
			t.Fatalf("expected %s heuristic to handle power and effectiveness itself", method)
		}
	}
}

func TestBaseScore(t *testing.T) {
	s := newScene(t)
	s.user.Basis = basis(120, 100)
	s.foe.Basis = basis(100, 30)

	if got := Base.Score(s.bc, attack("tackle", battle.TypeNormal, battle.CategoryPhysical), s.user, s.foe); got != 2 {
		t.Fatalf("expected sqrt(120/30)=2, got %v", got)
	}
	if got := Base.Score(s.bc, support("growl", "s_stat", battle.TargetAdjacentAllFoe), s.user, s.foe); got != 1 {
		t.Fatalf("expected status moves to score 1, got %v", got)
	}
}

func TestRestScore(t *testing.T) {
	s := newScene(t)
	rest := For("s_rest", 1)
	def := support("rest", "s_rest", battle.TargetUser)

	s.user.HP = 25
	if got := rest.Score(s.bc, def, s.user, s.user); got != 1.5 {
		t.Fatalf("expected 1.5, got %v", got)
	}
	s.user.Status = battle.StatusBurn
	if got := rest.Score(s.bc, def, s.user, s.user); got != 2.5 {
		t.Fatalf("expected a status to add 1, got %v", got)
	}
}

func TestHealingScore(t *testing.T) {
	s := newScene(t)
	heal := For("s_heal", 1)
	def := support("heal_pulse", "s_heal", battle.TargetAnyOtherPokemon)

	s.ally.HP = 50
	if got := heal.Score(s.bc, def, s.user, s.ally); got != 1 {
		t.Fatalf("expected 1 for an ally at half HP, got %v", got)
	}
	s.foe.HP = 10
	if got := heal.Score(s.bc, def, s.user, s.foe); got != 0 {
		t.Fatalf("expected 0 for a foe, got %v", got)
	}
	s.ally.Effects.Add(effects.NewSubstitute(25))
	if got := heal.Score(s.bc, def, s.user, s.ally); got != 0 {
		t.Fatalf("expected 0 for heal pulse on a substitute, got %v", got)
	}
	s.user.HP = 20
	s.user.Effects.Add(effects.NewHealBlock())
	if got := heal.Score(s.bc, support("recover", "s_heal", battle.TargetUser), s.user, s.user); got != 0 {
		t.Fatalf("expected 0 under heal block, got %v", got)
	}
}

func TestCuringScoreUsesGenericStream(t *testing.T) {
	s := newScene(t)
	cure := For("s_heal_bell", 1)
	def := support("heal_bell", "s_heal_bell", battle.TargetAllAlly)

	if got := cure.Score(s.bc, def, s.user, s.ally); got != 0 {
		t.Fatalf("expected 0 for a healthy target, got %v", got)
	}
	s.ally.Status = battle.StatusPoison
	got := cure.Score(s.bc, def, s.user, s.ally)
	if got < 0.75 || got >= 1 {
		t.Fatalf("expected score in [0.75, 1), got %v", got)
	}
	fresh := battle.NewStreams("ai")
	if s.bc.Field.Streams.Outcome.Int63() != fresh.Outcome.Int63() {
		t.Fatalf("expected the outcome stream to stay untouched")
	}
	s.ally.Ability = "soundproof"
	if got := cure.Score(s.bc, def, s.user, s.ally); got != 0 {
		t.Fatalf("expected 0 for soundproof, got %v", got)
	}
}

func TestScreenScore(t *testing.T) {
	s := newScene(t)
	screen := For("s_reflect", 1)
	def := support(effects.Reflect, "s_reflect", battle.TargetUser)

	s.foe.Moves = []*battle.MoveSlot{battle.NewMoveSlot(attack("ember", battle.TypeFire, battle.CategorySpecial))}
	if got := screen.Score(s.bc, def, s.user, s.user); got != 0.80 {
		t.Fatalf("expected 0.80 without physical foes, got %v", got)
	}

	s.foe.Moves = append(s.foe.Moves, battle.NewMoveSlot(attack("tackle", battle.TypeNormal, battle.CategoryPhysical)))
	if got := screen.Score(s.bc, def, s.user, s.user); got < 0.90 || got >= 1 {
		t.Fatalf("expected score in [0.90, 1), got %v", got)
	}

	s.bc.Field.BankEffects(0).Add(battle.NewPermanentEffect(effects.Reflect))
	if got := screen.Score(s.bc, def, s.user, s.user); got != 0 {
		t.Fatalf("expected 0 with the screen already up, got %v", got)
	}
}

func TestChooserPrefersEffectiveMove(t *testing.T) {
	s := newScene(t)
	s.foe.Types = [3]battle.Type{battle.TypeFire}
	s.user.Moves = []*battle.MoveSlot{
		battle.NewMoveSlot(attack("tackle", battle.TypeNormal, battle.CategoryPhysical)),
		battle.NewMoveSlot(attack("water_gun", battle.TypeWater, battle.CategorySpecial)),
	}

	chooser := NewChooser(Profile{Name: "test", Level: 1, SeeEffectiveness: true})
	choice, ok := chooser.Choose(s.bc, s.user)
	if !ok {
		t.Fatalf("expected a choice")
	}
	if choice.Slot.Def.ID != "water_gun" {
		t.Fatalf("expected water_gun, got %s", choice.Slot.Def.ID)
	}
	if choice.TargetBank != 1 || choice.TargetPosition != s.foe.Position {
		t.Fatalf("expected the foe as target, got bank %d position %d", choice.TargetBank, choice.TargetPosition)
	}
	if math.Abs(choice.Score-2) > 1e-9 {
		t.Fatalf("expected score 2, got %v", choice.Score)
	}
}

func TestChooserSkipsMovesWithoutPP(t *testing.T) {
	s := newScene(t)
	empty := battle.NewMoveSlot(attack("water_gun", battle.TypeWater, battle.CategorySpecial))
	empty.PP = 0
	s.foe.Types = [3]battle.Type{battle.TypeFire}
	s.user.Moves = []*battle.MoveSlot{
		empty,
		battle.NewMoveSlot(attack("tackle", battle.TypeNormal, battle.CategoryPhysical)),
	}

	choice, ok := NewChooser(Profile{Name: "test", Level: 1, SeeEffectiveness: true}).Choose(s.bc, s.user)
	if !ok || choice.Slot.Def.ID != "tackle" {
		t.Fatalf("expected tackle, got %+v", choice)
	}

	s.user.Moves = []*battle.MoveSlot{empty}
	if _, ok := NewChooser(Profile{Name: "test"}).Choose(s.bc, s.user); ok {
		t.Fatalf("expected no choice without usable moves")
	}
}

func TestChooserPenalizesHittingAllies(t *testing.T) {
	s := newScene(t)
	quake := attack("earthquake", battle.TypeGround, battle.CategoryPhysical)
	quake.Target = battle.TargetAdjacentAllPokemon
	s.user.Moves = []*battle.MoveSlot{battle.NewMoveSlot(quake)}

	candidates := NewChooser(Profile{Name: "test"}).Candidates(s.bc, s.user)
	if len(candidates) != 1 {
		t.Fatalf("expected one candidate, got %d", len(candidates))
	}
	if candidates[0].Score != 0 {
		t.Fatalf("expected foe and ally scores to cancel, got %v", candidates[0].Score)
	}
}

func TestLibraryProfiles(t *testing.T) {
	if got := GlobalLibrary.ForLevel(0).Name; got != "novice" {
		t.Fatalf("expected novice at level 0, got %s", got)
	}
	if got := GlobalLibrary.ForLevel(2).Name; got != "trainer" {
		t.Fatalf("expected trainer at level 2, got %s", got)
	}
	if got := GlobalLibrary.ForLevel(10).Name; got != "champion" {
		t.Fatalf("expected champion at level 10, got %s", got)
	}
	if _, ok := GlobalLibrary.Profile(" Champion "); !ok {
		t.Fatalf("expected case-insensitive profile lookup")
	}
}

func TestLoadLibraryRejectsInvalidProfiles(t *testing.T) {
	fsys := fstest.MapFS{
		"configs/bad.json": {Data: []byte(`{"name": "bad", "level": 1, "mistake_rate": 2}`)},
	}
	if _, err := loadLibrary(fsys, "configs"); err == nil {
		t.Fatalf("expected error for mistake rate above 1")
	}

	fsys = fstest.MapFS{
		"configs/a.json": {Data: []byte(`{"name": "same", "level": 1}`)},
		"configs/b.json": {Data: []byte(`{"name": "same", "level": 2}`)},
	}
	if _, err := loadLibrary(fsys, "configs"); err == nil {
		t.Fatalf("expected error for duplicate names")
	}
}
