package ai

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"pocket-arena/server/internal/battle"
	"pocket-arena/server/internal/effects"
	"pocket-arena/server/internal/moves"
)

// ComputeFunc scores one move against one target. Zero means never.
type ComputeFunc func(bc *moves.BattleContext, def *battle.Definition, user, target *battle.Combatant) float64

// Heuristic scores a move for the chooser. A heuristic that ignores
// effectiveness or power accounts for them itself, so the chooser does not
// scale its score again.
type Heuristic struct {
	IgnoreEffectiveness bool
	IgnorePower         bool
	Compute             ComputeFunc
}

// Score runs the heuristic, falling back to the base score.
func (h Heuristic) Score(bc *moves.BattleContext, def *battle.Definition, user, target *battle.Combatant) float64 {
	if h.Compute == nil {
		return baseScore(bc, def, user, target)
	}
	return h.Compute(bc, def, user, target)
}

// Base is used for every method without a registered heuristic.
var Base = Heuristic{Compute: baseScore}

type levelled struct {
	minLevel  int
	heuristic Heuristic
}

var heuristics = struct {
	sync.RWMutex
	byMethod map[string][]levelled
}{
	byMethod: make(map[string][]levelled),
}

// Register binds h to method for AI levels of at least minLevel. Registering
// the same method and level again replaces the entry; a nil h removes it.
func Register(method string, h *Heuristic, minLevel int) error {
	if method == "" {
		return fmt.Errorf("ai: empty method name")
	}
	heuristics.Lock()
	defer heuristics.Unlock()
	entries := heuristics.byMethod[method][:0:0]
	for _, entry := range heuristics.byMethod[method] {
		if entry.minLevel != minLevel {
			entries = append(entries, entry)
		}
	}
	if h != nil {
		entries = append(entries, levelled{minLevel: minLevel, heuristic: *h})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].minLevel > entries[j].minLevel })
	heuristics.byMethod[method] = entries
	return nil
}

func mustRegister(method string, h Heuristic, minLevel int) {
	if err := Register(method, &h, minLevel); err != nil {
		panic(err)
	}
}

// For returns the heuristic of method for an AI of the given level: the entry
// with the highest minimum level not above level, or Base.
func For(method string, level int) Heuristic {
	heuristics.RLock()
	defer heuristics.RUnlock()
	for _, entry := range heuristics.byMethod[method] {
		if entry.minLevel <= level {
			return entry.heuristic
		}
	}
	return Base
}

func init() {
	mustRegister("s_rest", Heuristic{IgnoreEffectiveness: true, IgnorePower: true, Compute: restScore}, 1)
	mustRegister("s_heal", Heuristic{IgnoreEffectiveness: true, IgnorePower: true, Compute: healingScore}, 1)
	mustRegister("s_heal_bell", Heuristic{IgnoreEffectiveness: true, IgnorePower: true, Compute: curingScore}, 1)
	mustRegister("s_reflect", Heuristic{IgnoreEffectiveness: true, IgnorePower: true, Compute: screenScore}, 1)
}

func baseScore(_ *moves.BattleContext, def *battle.Definition, user, target *battle.Combatant) float64 {
	if def.IsStatus() {
		return 1.0
	}
	if def.IsSpecial() {
		return math.Sqrt(ratio(user.Basis.Ats, target.Basis.Dfs))
	}
	return math.Sqrt(ratio(user.Basis.Atk, target.Basis.Dfe))
}

func restScore(_ *moves.BattleContext, _ *battle.Definition, user, _ *battle.Combatant) float64 {
	boost := 0.0
	if user.Status != battle.StatusNone {
		boost = 1
	}
	return (1-user.HPRate())*2 + boost
}

func healingScore(_ *moves.BattleContext, def *battle.Definition, user, target *battle.Combatant) float64 {
	if target.Effects.Has(effects.HealBlock) || target.Bank != user.Bank {
		return 0
	}
	if def.ID == "heal_pulse" && target.Effects.Has(effects.Substitute) {
		return 0
	}
	return (1 - target.HPRate()) * 2
}

func curingScore(bc *moves.BattleContext, _ *battle.Definition, _, target *battle.Combatant) float64 {
	if target.Effects.Has(effects.HealBlock) || target.HasAbility("soundproof") {
		return 0
	}
	if target.Dead() || target.Status == battle.StatusNone {
		return 0
	}
	return 0.75 + battle.RandomFloat(bc.Field.Streams.Generic, 0, 0.25)
}

var screenedCategories = map[string]battle.Category{
	effects.Reflect:     battle.CategoryPhysical,
	effects.LightScreen: battle.CategorySpecial,
}

func screenScore(bc *moves.BattleContext, def *battle.Definition, user, _ *battle.Combatant) float64 {
	if bc.Field.BankEffects(user.Bank).Has(def.ID) {
		return 0
	}
	if def.ID == "aurora_veil" && !bc.Field.WeatherIs(battle.WeatherHail) {
		return 0
	}
	if category, ok := screenedCategories[def.ID]; ok && !foesCarry(bc.Field, user, category) {
		return 0.80
	}
	return 0.90 + battle.RandomFloat(bc.Field.Streams.Generic, 0, 0.10)
}

func foesCarry(field *battle.Field, user *battle.Combatant, category battle.Category) bool {
	for _, foe := range field.FoesOf(user) {
		for _, slot := range foe.Moves {
			if slot.Def != nil && slot.Def.Category == category {
				return true
			}
		}
	}
	return false
}

func ratio(num, den int) float64 {
	if den <= 0 {
		den = 1
	}
	return float64(max(num, 0)) / float64(den)
}
