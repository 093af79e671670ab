package moves

import (
	"context"
	"testing"

	"pocket-arena/server/internal/battle"
	"pocket-arena/server/internal/effects"
	movelog "pocket-arena/server/logging/moves"
	"pocket-arena/server/stats"
)

func TestProtectChanceHalvesPerConsecutiveUse(t *testing.T) {
	tb := newTestBattle(t)
	protect := statusMove("protect", "s_protect", battle.TargetUser)
	tb.bc.Field.Turn = 5

	if got := ProtectChance(tb.bc, tb.user); got != 1 {
		t.Fatalf("expected a sure first protect, got %v", got)
	}
	want := []float64{0.5, 0.25, 0.125}
	for i, turn := range []int{4, 3, 2} {
		tb.user.History = append([]battle.HistoryEntry{{Move: protect, Turn: turn, Success: true}}, tb.user.History...)
		if got := ProtectChance(tb.bc, tb.user); got != want[i] {
			t.Fatalf("expected %v after %d protects, got %v", want[i], i+1, got)
		}
	}

	tb.user.AppendHistory(battle.HistoryEntry{Move: tackle(), Turn: 5, Success: true})
	tb.bc.Field.Turn = 6
	if got := ProtectChance(tb.bc, tb.user); got != 1 {
		t.Fatalf("expected another move to reset the chance, got %v", got)
	}
}

func TestProtectBlocksAndStaysSingle(t *testing.T) {
	tb := newTestBattle(t)
	protect := statusMove("protect", "s_protect", battle.TargetUser)
	if inv := tb.use(tb.foe, protect, tb.foe); !inv.Success {
		t.Fatalf("expected the first protect to succeed, failed with %q", inv.Failure)
	}
	if inv := tb.use(tb.foe, protect, tb.foe); inv.Success {
		t.Fatalf("expected a second protect in the same turn to fail")
	}
	if got := tb.foe.Effects.Count(effects.Protect); got != 1 {
		t.Fatalf("expected one protect effect, got %d", got)
	}

	inv := tb.use(tb.user, tackle(), tb.foe)
	if inv.Failure != FailureImmunity || tb.foe.HP != 100 {
		t.Fatalf("expected protect to block tackle, got failure %q and HP %d", inv.Failure, tb.foe.HP)
	}
}

func TestScreensAreSinglePerBank(t *testing.T) {
	tb := newTestBattle(t)
	reflect := statusMove("reflect", "s_reflect", battle.TargetUser)
	if inv := tb.use(tb.user, reflect, tb.user); !inv.Success {
		t.Fatalf("expected reflect to go up, failed with %q", inv.Failure)
	}
	if inv := tb.use(tb.user, reflect, tb.user); inv.Success {
		t.Fatalf("expected a second reflect to fail")
	}
	bank := tb.bc.Field.BankEffects(tb.user.Bank)
	if got := bank.Count(effects.Reflect); got != 1 {
		t.Fatalf("expected one reflect, got %d", got)
	}
	if screen := bank.Get(effects.Reflect); screen.Turns != effects.ScreenTurns {
		t.Fatalf("expected %d turns, got %d", effects.ScreenTurns, screen.Turns)
	}
}

func TestForcedSwitchEndsWildEncounter(t *testing.T) {
	tb := newTestBattle(t)
	tb.bc.Field.Trainer = false
	tb.bc.Field.Bank(1).Party = tb.bc.Field.Bank(1).Party[:1]
	roar := statusMove("roar", "s_roar", battle.TargetAdjacentFoe)
	roar.Flags.Sound = true

	inv := tb.use(tb.user, roar, tb.foe)
	if !inv.Success {
		t.Fatalf("expected roar to succeed, failed with %q", inv.Failure)
	}
	outcome := tb.bc.Field.Outcome
	if !outcome.Ended || outcome.Reason != battle.OutcomeFled {
		t.Fatalf("expected the encounter to end with the foe fleeing, got %+v", outcome)
	}
}

func TestForcedSwitchBringsInBenchMember(t *testing.T) {
	tb := newTestBattle(t)
	roar := statusMove("roar", "s_roar", battle.TargetAdjacentFoe)
	tb.use(tb.user, roar, tb.foe)

	if tb.foe.Active() || !tb.bench.Active() {
		t.Fatalf("expected the bench member to replace the foe")
	}
	if tb.bc.Field.Outcome.Ended {
		t.Fatalf("expected a trainer battle to go on")
	}

	tb.bench.Ability = "suction_cups"
	if inv := tb.use(tb.user, roar, tb.bench); inv.Success {
		t.Fatalf("expected suction cups to make roar fail")
	}
}

func TestMultiHitCountsLandedBlows(t *testing.T) {
	tb := newTestBattle(t)
	flurry := tackle()
	flurry.ID = "fury_attack"
	flurry.Method = "s_multi_hit"
	flurry.Parameters = map[string]int{"hits": 5}
	tb.foe.HP = 20

	inv := tb.use(tb.user, flurry, tb.foe)
	if inv.Hits != 2 {
		t.Fatalf("expected the hits to stop at the faint after 2, got %d", inv.Hits)
	}
	if !tb.said("Hit 2 times!") {
		t.Fatalf("expected the hit count message for 2 hits")
	}
}

// newDoublesBattle builds a trainer double battle with an ally beside the
// user and two foes.
func newDoublesBattle(t *testing.T) (*testBattle, *battle.Combatant, *battle.Combatant) {
	t.Helper()
	field := battle.NewField("doubles", 2, 2, battle.NewStreams("doubles"))
	field.Trainer = true
	user := battle.NewCombatant("user", 50, defaultBasis())
	ally := battle.NewCombatant("ally", 50, defaultBasis())
	left := battle.NewCombatant("left", 50, defaultBasis())
	right := battle.NewCombatant("right", 50, defaultBasis())
	field.Join(0, user)
	field.Join(0, ally)
	field.Join(1, left)
	field.Join(1, right)
	tb := &testBattle{user: user, foe: left}
	presenter := battle.PresenterFunc(func(msg battle.Message) {
		tb.messages = append(tb.messages, msg)
	})
	tb.bc = NewBattleContext(field, presenter, nil)
	return tb, ally, right
}

func TestMultiHitStrikesEveryTarget(t *testing.T) {
	tb, _, right := newDoublesBattle(t)
	sweep := tackle()
	sweep.ID = "dual_sweep"
	sweep.Method = "s_multi_hit"
	sweep.Target = battle.TargetAdjacentAllFoe
	sweep.Parameters = map[string]int{"hits": 2}

	inv := tb.use(tb.user, sweep, tb.foe)
	if tb.foe.HP >= 100 || right.HP >= 100 {
		t.Fatalf("expected both foes damaged, got HP %d and %d", tb.foe.HP, right.HP)
	}
	if inv.Hits != 4 {
		t.Fatalf("expected 2 blows on each of 2 foes, got %d hits", inv.Hits)
	}
	if !tb.said("Hit 2 times!") {
		t.Fatalf("expected the hit count message for 2 blows")
	}
}

func TestMultiHitStopsWhenAnyTargetFaints(t *testing.T) {
	tb, _, right := newDoublesBattle(t)
	sweep := tackle()
	sweep.ID = "dual_sweep"
	sweep.Method = "s_multi_hit"
	sweep.Target = battle.TargetAdjacentAllFoe
	sweep.Parameters = map[string]int{"hits": 5}
	right.HP = 1

	inv := tb.use(tb.user, sweep, tb.foe)
	if inv.Hits != 2 {
		t.Fatalf("expected a single blow on both foes, got %d hits", inv.Hits)
	}
	if !tb.said("Hit 1 time!") {
		t.Fatalf("expected the hit count message for 1 blow")
	}
}

func TestMultiHitReportsUserFainting(t *testing.T) {
	tb := newTestBattle(t)
	flurry := tackle()
	flurry.ID = "fury_attack"
	flurry.Method = "s_multi_hit"
	flurry.Parameters = map[string]int{"hits": 5}

	b, err := Lookup(flurry)
	if err != nil {
		t.Fatalf("expected the multi-hit behavior, got %v", err)
	}
	inv := NewInvocation(tb.bc.Field, tb.user, battle.NewMoveSlot(flurry), tb.foe.Bank, tb.foe.Position)
	inv.Targets = []*battle.Combatant{tb.foe}
	tb.user.HP = 0
	if b.DealDamage(context.Background(), tb.bc, inv) {
		t.Fatalf("expected a fainted user to stop the remaining stages")
	}
	if inv.Hits != 0 {
		t.Fatalf("expected no blows from a fainted user, got %d", inv.Hits)
	}
}

func tripleKick() *battle.Definition {
	return &battle.Definition{
		ID:         "triple_kick",
		Method:     "s_multi_hit",
		Type:       battle.TypeFighting,
		Category:   battle.CategoryPhysical,
		Power:      20,
		Accuracy:   100,
		PP:         10,
		Target:     battle.TargetAdjacentPokemon,
		Flags:      battle.Flags{Direct: true, Blockable: true},
		Parameters: map[string]int{"hits": 3, "escalate": 1},
	}
}

func damageDealt(tb *testBattle) []int {
	var dealt []int
	for _, event := range tb.events {
		if payload, ok := event.Payload.(movelog.DamagePayload); ok && event.Type == movelog.EventDamage {
			dealt = append(dealt, payload.Damage)
		}
	}
	return dealt
}

func TestEscalatingHitsGrowInPower(t *testing.T) {
	tb := newTestBattle(t)
	tb.foe.Ability = "battle_armor"

	inv := tb.use(tb.user, tripleKick(), tb.foe)
	if inv.Hits != 3 {
		t.Fatalf("expected 3 hits, got %d", inv.Hits)
	}
	dealt := damageDealt(tb)
	if len(dealt) != 3 {
		t.Fatalf("expected 3 damage events, got %v", dealt)
	}
	if dealt[0] >= dealt[1] || dealt[1] >= dealt[2] {
		t.Fatalf("expected each blow to hit harder, got %v", dealt)
	}
	if !tb.said("Hit 3 times!") {
		t.Fatalf("expected the hit count message for 3 blows")
	}
}

// flinching lets the first accuracy roll against holder through and makes
// every later one miss.
func flinching(holder *battle.Combatant) *int {
	rolls := 0
	effect := battle.NewPermanentEffect("flinching")
	effect.Hooks.ChanceOfHit = func(*battle.Effect, *battle.Combatant, *battle.Combatant, *battle.Definition) float64 {
		rolls++
		if rolls == 1 {
			return 1
		}
		return 0
	}
	holder.Effects.Add(effect)
	return &rolls
}

func TestEscalatingHitsStopOnAMiss(t *testing.T) {
	tb := newTestBattle(t)
	rolls := flinching(tb.foe)

	inv := tb.use(tb.user, tripleKick(), tb.foe)
	if inv.Hits != 1 {
		t.Fatalf("expected the miss to stop after 1 hit, got %d", inv.Hits)
	}
	if *rolls != 2 {
		t.Fatalf("expected accuracy rolled again before the second blow, got %d rolls", *rolls)
	}
	if !inv.Success {
		t.Fatalf("expected the landed blow to count, failed with %q", inv.Failure)
	}
	if !tb.said("foe avoided the attack!") || !tb.said("Hit 1 time!") {
		t.Fatalf("expected the miss and a single hit reported")
	}
}

func TestSkillLinkSkipsEscalatingAccuracy(t *testing.T) {
	tb := newTestBattle(t)
	rolls := flinching(tb.foe)
	tb.user.Ability = "skill_link"

	inv := tb.use(tb.user, tripleKick(), tb.foe)
	if inv.Hits != 3 {
		t.Fatalf("expected all 3 hits, got %d", inv.Hits)
	}
	if *rolls != 1 {
		t.Fatalf("expected a single accuracy roll, got %d", *rolls)
	}
}

func TestHitCountRules(t *testing.T) {
	tb := newTestBattle(t)
	def := tackle()
	for i := 0; i < 50; i++ {
		if n := HitCount(tb.bc, tb.user, def); n < 2 || n > 5 {
			t.Fatalf("expected 2..5 hits, got %d", n)
		}
	}
	tb.user.Ability = "skill_link"
	if n := HitCount(tb.bc, tb.user, def); n != 5 {
		t.Fatalf("expected skill link to hit 5 times, got %d", n)
	}
}

func counterMove() *battle.Definition {
	return &battle.Definition{
		ID:       "counter",
		Method:   "s_counter",
		Type:     battle.TypeFighting,
		Category: battle.CategoryPhysical,
		Accuracy: 100,
		PP:       20,
		Priority: -5,
		Target:   battle.TargetAdjacentFoe,
	}
}

func TestCounterReturnsDoublePhysicalDamage(t *testing.T) {
	tb := newTestBattle(t)
	tb.foe.AppendHistory(battle.HistoryEntry{Move: tackle(), Targets: []*battle.Combatant{tb.user}, Turn: tb.bc.Field.Turn, Success: true, DamageDealt: 20})

	inv := tb.use(tb.user, counterMove(), tb.foe)
	if !inv.Success {
		t.Fatalf("expected counter to succeed, failed with %q", inv.Failure)
	}
	if tb.foe.HP != 60 {
		t.Fatalf("expected 40 damage, got HP %d", tb.foe.HP)
	}
}

func TestCounterFailures(t *testing.T) {
	special := tackle()
	special.Category = battle.CategorySpecial

	cases := []struct {
		name  string
		entry *battle.HistoryEntry
	}{
		{name: "nobody attacked"},
		{name: "special hit", entry: &battle.HistoryEntry{Move: special, Turn: 1, Success: true, DamageDealt: 20}},
		{name: "previous turn", entry: &battle.HistoryEntry{Move: tackle(), Turn: 0, Success: true, DamageDealt: 20}},
		{name: "no damage", entry: &battle.HistoryEntry{Move: tackle(), Turn: 1, Success: true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tb := newTestBattle(t)
			if tc.entry != nil {
				tc.entry.Targets = []*battle.Combatant{tb.user}
				tb.foe.AppendHistory(*tc.entry)
			}
			inv := tb.use(tb.user, counterMove(), tb.foe)
			if inv.Success || inv.Failure != FailureUsable {
				t.Fatalf("expected usable_by_user, got success=%v failure=%q", inv.Success, inv.Failure)
			}
			if tb.foe.HP != 100 {
				t.Fatalf("expected no damage, got HP %d", tb.foe.HP)
			}
		})
	}
}

func TestCounterIgnoresAnAlly(t *testing.T) {
	tb, ally, _ := newDoublesBattle(t)
	turn := tb.bc.Field.Turn
	tb.foe.AttackOrder = 1
	tb.foe.AppendHistory(battle.HistoryEntry{Move: tackle(), Targets: []*battle.Combatant{tb.user}, Turn: turn, Success: true, DamageDealt: 20})
	ally.AttackOrder = 2
	ally.AppendHistory(battle.HistoryEntry{Move: tackle(), Targets: []*battle.Combatant{tb.user}, Turn: turn, Success: true, DamageDealt: 30})

	inv := tb.use(tb.user, counterMove(), tb.foe)
	if inv.Success || inv.Failure != FailureUsable {
		t.Fatalf("expected usable_by_user, got success=%v failure=%q", inv.Success, inv.Failure)
	}
	if tb.foe.HP != 100 || ally.HP != 100 {
		t.Fatalf("expected no damage, got foe HP %d and ally HP %d", tb.foe.HP, ally.HP)
	}
	if slot := tb.user.Slot("counter"); slot.PP != slot.MaxPP {
		t.Fatalf("expected no PP spent, got %d of %d", slot.PP, slot.MaxPP)
	}
}

func gigaDrain() *battle.Definition {
	return &battle.Definition{
		ID:       "giga_drain",
		Method:   "s_drain",
		Type:     battle.TypeGrass,
		Category: battle.CategorySpecial,
		Power:    120,
		Accuracy: 100,
		PP:       10,
		Target:   battle.TargetAdjacentPokemon,
	}
}

func TestDrainHealsHalfTheDamage(t *testing.T) {
	tb := newTestBattle(t)
	tb.user.HP = 50
	tb.foe.HP = 40

	tb.use(tb.user, gigaDrain(), tb.foe)
	if tb.foe.HP != 0 {
		t.Fatalf("expected the foe to faint, got HP %d", tb.foe.HP)
	}
	if tb.user.HP != 70 {
		t.Fatalf("expected 20 HP drained back, got HP %d", tb.user.HP)
	}
}

func TestDrainAtFullHPSkipsTheHeal(t *testing.T) {
	tb := newTestBattle(t)

	tb.use(tb.user, gigaDrain(), tb.foe)
	if tb.foe.HP >= 100 {
		t.Fatalf("expected the foe damaged, got HP %d", tb.foe.HP)
	}
	if tb.user.HP != 100 {
		t.Fatalf("expected the user to stay at full HP, got %d", tb.user.HP)
	}
	if tb.said("user's HP is full!") || tb.count(battle.MessageFailure) != 0 {
		t.Fatalf("expected no failure message from a full drainer")
	}
	if !tb.said("foe had its energy drained!") {
		t.Fatalf("expected the drain message")
	}
}

func TestLiquidOozeHurtsTheDrainer(t *testing.T) {
	tb := newTestBattle(t)
	tb.user.HP = 50
	tb.foe.HP = 40
	tb.foe.Ability = "liquid_ooze"

	tb.use(tb.user, gigaDrain(), tb.foe)
	if tb.user.HP != 30 {
		t.Fatalf("expected 20 HP lost to liquid ooze, got HP %d", tb.user.HP)
	}
}

func TestDrainAmount(t *testing.T) {
	user := battle.NewCombatant("user", 50, defaultBasis())
	def := gigaDrain()
	if got := DrainAmount(user, def, 40); got != 20 {
		t.Fatalf("expected 20, got %d", got)
	}
	if got := DrainAmount(user, def, 1); got != 1 {
		t.Fatalf("expected at least 1, got %d", got)
	}
	user.Item = "big_root"
	if got := DrainAmount(user, def, 40); got != 26 {
		t.Fatalf("expected 26 with big root, got %d", got)
	}
}

func TestPowerSplitAveragesAttack(t *testing.T) {
	tb := newTestBattle(t)
	tb.foe.Basis.Atk = 60
	tb.foe.Basis.Ats = 140
	split := statusMove("power_split", "s_power_split", battle.TargetAdjacentPokemon)

	if inv := tb.use(tb.user, split, tb.foe); !inv.Success {
		t.Fatalf("expected power split to succeed, failed with %q", inv.Failure)
	}
	for _, c := range []*battle.Combatant{tb.user, tb.foe} {
		if c.Basis.Atk != 80 || c.Basis.Ats != 120 {
			t.Fatalf("expected atk 80 and ats 120 on %s, got %d and %d", c.ID, c.Basis.Atk, c.Basis.Ats)
		}
	}
}

func TestTwoTurnMoveChargesThenStrikes(t *testing.T) {
	tb := newTestBattle(t)
	dig := tackle()
	dig.ID = "dig"
	dig.Method = "s_2turns"
	dig.Type = battle.TypeGround
	dig.Power = 80
	dig.PP = 10

	first := tb.use(tb.user, dig, tb.foe)
	if !first.Success || tb.foe.HP != 100 {
		t.Fatalf("expected a charge turn without damage, got success=%v HP %d", first.Success, tb.foe.HP)
	}
	if data, _ := effects.Forced(tb.user); data == nil || data.Move.ID != "dig" {
		t.Fatalf("expected the user locked into dig")
	}

	hidden := tb.use(tb.foe, tackle(), tb.user)
	if hidden.Failure != FailureImmunity || tb.user.HP != 100 {
		t.Fatalf("expected the hidden user out of reach, got failure %q and HP %d", hidden.Failure, tb.user.HP)
	}

	tb.bc.Field.Turn++
	second := tb.use(tb.user, dig, tb.foe)
	if !second.Success || tb.foe.HP == 100 {
		t.Fatalf("expected dig to strike on the second turn")
	}
	if slot := tb.user.Slot("dig"); slot.PP != 9 {
		t.Fatalf("expected one PP spent over both turns, got %d", slot.PP)
	}
	if tb.user.Effects.Has(effects.OutOfReach) {
		t.Fatalf("expected the user back in reach")
	}
}

func TestSolarBeamSkipsChargeInSun(t *testing.T) {
	tb := newTestBattle(t)
	tb.bc.Field.Weather = battle.Condition{Kind: battle.WeatherSun, Turns: 5}
	beam := gigaDrain()
	beam.ID = "solar_beam"
	beam.Method = "s_2turns"

	if inv := tb.use(tb.user, beam, tb.foe); !inv.Success || tb.foe.HP == 100 {
		t.Fatalf("expected solar beam to fire at once in sun")
	}
	if data, _ := effects.Forced(tb.user); data != nil {
		t.Fatalf("expected no move lock after a shortcut")
	}
}

func TestExplosionFaintsUserOnMiss(t *testing.T) {
	tb := newTestBattle(t)
	blast := tackle()
	blast.ID = "explosion"
	blast.Method = "s_explosion"
	blast.Power = 250
	blast.Target = battle.TargetAdjacentAllPokemon
	blind(tb.foe)

	inv := tb.use(tb.user, blast, tb.foe)
	if inv.Failure != FailureAccuracy {
		t.Fatalf("expected a miss, got %q", inv.Failure)
	}
	if tb.user.Alive() {
		t.Fatalf("expected the user to faint anyway")
	}
}

func TestDampStopsExplosion(t *testing.T) {
	tb := newTestBattle(t)
	tb.foe.Ability = "damp"
	blast := tackle()
	blast.ID = "explosion"
	blast.Method = "s_explosion"
	blast.Power = 250

	inv := tb.use(tb.user, blast, tb.foe)
	if inv.Failure != FailureUsable || tb.user.Dead() {
		t.Fatalf("expected damp to stop the explosion without fainting the user")
	}
}

func TestHighJumpKickCrashesOnMiss(t *testing.T) {
	tb := newTestBattle(t)
	kick := tackle()
	kick.ID = "high_jump_kick"
	kick.Method = "s_jump_kick"
	kick.Type = battle.TypeFighting
	blind(tb.foe)

	tb.use(tb.user, kick, tb.foe)
	if tb.user.HP != 50 {
		t.Fatalf("expected the user to lose half its HP, got %d", tb.user.HP)
	}
}

func TestShieldDustBlocksSecondaryEffect(t *testing.T) {
	tb := newTestBattle(t)
	ember := tackle()
	ember.ID = "ember"
	ember.Type = battle.TypeFire
	ember.Category = battle.CategorySpecial
	ember.Statuses = []battle.StatusChance{{Status: battle.StatusBurn, Chance: 100}}
	ember.EffectChance = 100
	tb.foe.Ability = "shield_dust"

	tb.use(tb.user, ember, tb.foe)
	if tb.foe.Status != battle.StatusNone {
		t.Fatalf("expected shield dust to stop the burn, got %q", tb.foe.Status)
	}

	tb.foe.Ability = ""
	tb.use(tb.user, ember, tb.foe)
	if tb.foe.Status != battle.StatusBurn {
		t.Fatalf("expected a sure burn, got %q", tb.foe.Status)
	}
}

func TestWeatherBallFollowsWeather(t *testing.T) {
	tb := newTestBattle(t)
	ball := tackle()
	ball.ID = "weather_ball"
	ball.Method = "s_weather_ball"
	ball.Power = 50
	inv := &Invocation{Move: ball, User: tb.user}
	inv.reset()
	b, _ := Lookup(ball)

	if got := b.moveType(tb.bc, inv); got != battle.TypeNormal {
		t.Fatalf("expected normal without weather, got %s", got)
	}
	tb.bc.Field.Weather = battle.Condition{Kind: battle.WeatherRain, Turns: 5}
	if got := b.moveType(tb.bc, inv); got != battle.TypeWater {
		t.Fatalf("expected water in rain, got %s", got)
	}
	if got := b.power(tb.bc, inv, tb.foe); got != 100 {
		t.Fatalf("expected doubled power, got %d", got)
	}
}

func TestGrassyGlidePriority(t *testing.T) {
	tb := newTestBattle(t)
	glide := tackle()
	glide.ID = "grassy_glide"
	glide.Method = "s_grassy_glide"
	if got := Priority(tb.bc, tb.user, glide); got != 0 {
		t.Fatalf("expected priority 0, got %d", got)
	}
	tb.bc.Field.Terrain = battle.Condition{Kind: battle.TerrainGrassy, Turns: 5}
	if got := Priority(tb.bc, tb.user, glide); got != 1 {
		t.Fatalf("expected priority 1 on grassy terrain, got %d", got)
	}
}

func TestRestSleepsAndHeals(t *testing.T) {
	tb := newTestBattle(t)
	rest := statusMove("rest", "s_rest", battle.TargetUser)
	rest.Parameters = map[string]int{"sleep_turns": 2}
	tb.user.HP = 30
	tb.user.Status = battle.StatusBurn

	if inv := tb.use(tb.user, rest, tb.user); !inv.Success {
		t.Fatalf("expected rest to succeed, failed with %q", inv.Failure)
	}
	if tb.user.HP != 100 || tb.user.Status != battle.StatusSleep || tb.user.SleepTurns != 2 {
		t.Fatalf("expected full HP asleep for 2 turns, got HP %d status %q turns %d", tb.user.HP, tb.user.Status, tb.user.SleepTurns)
	}
	if inv := tb.use(tb.user, rest, tb.user); inv.Success {
		t.Fatalf("expected rest at full HP to fail")
	}
}

func TestHealBellCuresBench(t *testing.T) {
	tb := newTestBattle(t)
	ally := battle.NewCombatant("ally", 50, defaultBasis())
	tb.bc.Field.Join(0, ally)
	ally.Status = battle.StatusPoison
	tb.user.Status = battle.StatusParalysis
	bell := statusMove("heal_bell", "s_heal_bell", battle.TargetAllAlly)
	bell.Flags.Sound = true

	if inv := tb.use(tb.user, bell, tb.user); !inv.Success {
		t.Fatalf("expected heal bell to succeed, failed with %q", inv.Failure)
	}
	if ally.Status != battle.StatusNone || tb.user.Status != battle.StatusNone {
		t.Fatalf("expected the whole party cured")
	}
	if inv := tb.use(tb.user, bell, tb.user); inv.Success {
		t.Fatalf("expected heal bell with nobody to cure to fail")
	}
}

func TestSelfSwitchVetoedByEjectButton(t *testing.T) {
	tb := newTestBattle(t)
	partner := battle.NewCombatant("partner", 50, defaultBasis())
	tb.bc.Field.Join(0, partner)
	uTurn := tackle()
	uTurn.ID = "u_turn"
	uTurn.Method = "s_u_turn"
	uTurn.Type = battle.TypeBug

	tb.foe.Item = "eject_button"
	tb.use(tb.user, uTurn, tb.foe)
	if !tb.user.Active() {
		t.Fatalf("expected eject button to keep the user in")
	}

	tb.foe.Item = ""
	tb.use(tb.user, uTurn, tb.foe)
	if tb.user.Active() || !partner.Active() {
		t.Fatalf("expected the user to switch out for its partner")
	}
}

func TestPledgeComboCreatesBankEffect(t *testing.T) {
	field := battle.NewField("pledge", 2, 2, battle.NewStreams("pledge"))
	field.Trainer = true
	first := battle.NewCombatant("first", 50, defaultBasis())
	second := battle.NewCombatant("second", 50, defaultBasis())
	sturdy := defaultBasis()
	sturdy.MaxHP = 300
	foe := battle.NewCombatant("foe", 50, sturdy)
	field.Join(0, first)
	field.Join(0, second)
	field.Join(1, foe)
	tb := &testBattle{bc: NewBattleContext(field, nil, nil), user: first, foe: foe}

	pledge := func(id string, typ battle.Type) *battle.Definition {
		def := gigaDrain()
		def.ID = id
		def.Method = "s_pledge"
		def.Type = typ
		def.Power = 80
		def.Target = battle.TargetAdjacentFoe
		return def
	}
	tb.use(first, pledge("fire_pledge", battle.TypeFire), foe)
	if field.BankEffects(1).Has(effects.SeaOfFire) {
		t.Fatalf("expected a lone pledge to leave no effect")
	}
	hp := foe.HP
	inv := tb.use(second, pledge("grass_pledge", battle.TypeGrass), foe)
	if !inv.Success || hp-foe.HP <= 37 {
		t.Fatalf("expected the combined pledge to hit harder, dealt %d", hp-foe.HP)
	}
	if !field.BankEffects(1).Has(effects.SeaOfFire) {
		t.Fatalf("expected a sea of fire on the foe side")
	}
}

func TestDefogClearsScreensAndHazards(t *testing.T) {
	tb := newTestBattle(t)
	tb.bc.Field.BankEffects(1).Add(effects.NewScreen(effects.Reflect, battle.CategoryPhysical, 5))
	tb.bc.Field.BankEffects(0).Add(effects.NewSpikes())
	defog := statusMove("defog", "s_defog", battle.TargetAdjacentFoe)
	defog.Stages = []battle.StageMod{{Stat: "eva", Delta: -1}}

	tb.use(tb.user, defog, tb.foe)
	if tb.bc.Field.BankEffects(1).Has(effects.Reflect) || tb.bc.Field.BankEffects(0).Has(effects.Spikes) {
		t.Fatalf("expected defog to clear the reflect and the spikes")
	}
	if got := tb.foe.Stages.Get(stats.StatEva); got != -1 {
		t.Fatalf("expected evasion -1, got %d", got)
	}
}

func TestSpikesStackToThreeLayers(t *testing.T) {
	tb := newTestBattle(t)
	spikes := statusMove("spikes", "s_spikes", battle.TargetAllFoe)
	for i := 0; i < 3; i++ {
		if inv := tb.use(tb.user, spikes, tb.foe); !inv.Success {
			t.Fatalf("expected layer %d to go down", i+1)
		}
	}
	if inv := tb.use(tb.user, spikes, tb.foe); inv.Success {
		t.Fatalf("expected a fourth layer to fail")
	}
	state, _ := tb.bc.Field.BankEffects(1).Get(effects.Spikes).Data.(*effects.HazardState)
	if state.Layers != effects.MaxSpikesLayers {
		t.Fatalf("expected %d layers, got %d", effects.MaxSpikesLayers, state.Layers)
	}
}

func TestReloadForcesRecharge(t *testing.T) {
	tb := newTestBattle(t)
	beam := gigaDrain()
	beam.ID = "hyper_beam"
	beam.Method = "s_reload"
	beam.Type = battle.TypeNormal
	beam.Power = 150

	tb.use(tb.user, beam, tb.foe)
	if data, _ := effects.Forced(tb.user); data == nil {
		t.Fatalf("expected a recharge lock")
	}
	tb.foe.HP = 100
	inv := tb.use(tb.user, beam, tb.foe)
	if inv.Failure != FailureUsable || tb.foe.HP != 100 {
		t.Fatalf("expected the recharge turn to do nothing, got failure %q", inv.Failure)
	}
}

func TestQueueReordering(t *testing.T) {
	tb := newTestBattle(t)
	quash := statusMove("quash", "s_quash", battle.TargetAdjacentFoe)
	quash.Accuracy = 100
	foeAction := tb.bc.Queue.Push(&battle.Action{Kind: battle.ActionAttack, User: tb.foe, Slot: battle.NewMoveSlot(tackle())})
	tb.bc.Queue.Push(&battle.Action{Kind: battle.ActionAttack, User: tb.bench, Slot: battle.NewMoveSlot(tackle())})

	if inv := tb.use(tb.user, quash, tb.foe); !inv.Success {
		t.Fatalf("expected quash to succeed, failed with %q", inv.Failure)
	}
	actions := tb.bc.Queue.Actions()
	if actions[len(actions)-1].ID != foeAction.ID {
		t.Fatalf("expected the foe's action last")
	}
}

func TestSubstituteCostsQuarterHP(t *testing.T) {
	tb := newTestBattle(t)
	substitute := statusMove("substitute", "s_substitute", battle.TargetUser)
	if inv := tb.use(tb.user, substitute, tb.user); !inv.Success {
		t.Fatalf("expected substitute to succeed, failed with %q", inv.Failure)
	}
	if tb.user.HP != 75 {
		t.Fatalf("expected 75 HP left, got %d", tb.user.HP)
	}
	if sub := effects.SubstituteOf(tb.user); sub == nil || sub.HP != 25 {
		t.Fatalf("expected a 25 HP substitute, got %+v", sub)
	}
}

func pursuit() *battle.Definition {
	def := tackle()
	def.ID = "pursuit"
	def.Method = "s_pursuit"
	def.Type = battle.TypeDark
	def.PP = 20
	def.Target = battle.TargetAdjacentFoe
	return def
}

func TestInterceptStrikesTheLeavingTarget(t *testing.T) {
	tb := newTestBattle(t)
	slot := battle.NewMoveSlot(pursuit())
	tb.user.Moves = append(tb.user.Moves, slot)
	tb.bc.Queue.Push(&battle.Action{Kind: battle.ActionAttack, User: tb.user, Slot: slot, TargetBank: tb.foe.Bank, TargetPosition: tb.foe.Position})

	Intercept(context.Background(), tb.bc, tb.foe)
	if tb.bc.Queue.Len() != 0 {
		t.Fatalf("expected the pursuit action taken out of the queue, got %d left", tb.bc.Queue.Len())
	}
	if tb.foe.HP >= 100 {
		t.Fatalf("expected the leaving foe struck, got HP %d", tb.foe.HP)
	}
}

func TestInterceptSkipsAFaintedPursuer(t *testing.T) {
	tb := newTestBattle(t)
	slot := battle.NewMoveSlot(pursuit())
	tb.user.Moves = append(tb.user.Moves, slot)
	action := tb.bc.Queue.Push(&battle.Action{Kind: battle.ActionAttack, User: tb.user, Slot: slot, TargetBank: tb.foe.Bank, TargetPosition: tb.foe.Position})
	tb.user.HP = 0

	Intercept(context.Background(), tb.bc, tb.foe)
	if _, ok := tb.bc.Queue.Find(action.ID); !ok {
		t.Fatalf("expected the action to stay queued")
	}
	if slot.PP != slot.MaxPP {
		t.Fatalf("expected no PP spent, got %d of %d", slot.PP, slot.MaxPP)
	}
	if len(tb.user.History) != 0 {
		t.Fatalf("expected no history recorded, got %d entries", len(tb.user.History))
	}
	if tb.foe.HP != 100 {
		t.Fatalf("expected no damage, got HP %d", tb.foe.HP)
	}
}
