package moves

import (
	"context"

	"pocket-arena/server/internal/battle"
	"pocket-arena/server/internal/effects"
)

const (
	weatherTurns         = 5
	weatherTurnsExtended = 8
	terrainTurns         = 5
	terrainTurnsExtended = 8
	pledgeComboPower     = 160
)

var screenCategories = map[string]battle.Category{
	effects.Reflect:     battle.CategoryPhysical,
	effects.LightScreen: battle.CategorySpecial,
}

var weatherMoves = map[string]string{
	"sunny_day":  battle.WeatherSun,
	"rain_dance": battle.WeatherRain,
	"sandstorm":  battle.WeatherSandstorm,
	"hail":       battle.WeatherHail,
}

// weatherRocks extend the weather their holder starts.
var weatherRocks = map[string]string{
	battle.WeatherSun:       "heat_rock",
	battle.WeatherRain:      "damp_rock",
	battle.WeatherSandstorm: "smooth_rock",
	battle.WeatherHail:      "icy_rock",
}

var terrainMoves = map[string]string{
	"electric_terrain": battle.TerrainElectric,
	"grassy_terrain":   battle.TerrainGrassy,
	"misty_terrain":    battle.TerrainMisty,
	"psychic_terrain":  battle.TerrainPsychic,
}

// pledgeCombos maps an unordered pair of pledges to the effect they leave
// and whether it lands on the user's bank.
var pledgeCombos = map[[2]string]struct {
	build  func() *battle.Effect
	onUser bool
}{
	{"fire_pledge", "grass_pledge"}:  {build: effects.NewSeaOfFire},
	{"fire_pledge", "water_pledge"}:  {build: effects.NewRainbow, onUser: true},
	{"grass_pledge", "water_pledge"}: {build: effects.NewSwamp},
}

func init() {
	mustRegisterMethod("s_reflect", Behavior{Validate: zeroPower, DealEffect: screenEffect})
	mustRegisterMethod("s_defog", Behavior{Validate: zeroPower, DealStats: defogStats})
	mustRegisterMethod("s_weather", Behavior{Validate: zeroPower, DealEffect: weatherEffect})
	mustRegisterMethod("s_terrain", Behavior{Validate: zeroPower, DealEffect: terrainEffect})
	mustRegisterMethod("s_mist", Behavior{Validate: zeroPower, DealEffect: bankGuardEffect(effects.Mist, effects.NewMist)})
	mustRegisterMethod("s_safeguard", Behavior{Validate: zeroPower, DealEffect: bankGuardEffect(effects.Safeguard, effects.NewSafeguard)})
	mustRegisterMethod("s_spikes", Behavior{Validate: zeroPower, DealEffect: spikesEffect})
	mustRegisterMethod("s_stealth_rock", Behavior{Validate: zeroPower, DealEffect: stealthRockEffect})

	pledge := basic
	pledge.Power = pledgePower
	pledge.DealEffect = pledgeEffect
	mustRegisterMethod("s_pledge", pledge)
}

// foeBank is the bank the move aims at.
func foeBank(inv *Invocation) int {
	if target := inv.FirstTarget(); target != nil {
		return target.Bank
	}
	return inv.TargetBank
}

func screenEffect(ctx context.Context, bc *BattleContext, inv *Invocation) bool {
	name := inv.Move.ID
	category, ok := screenCategories[name]
	bank := bc.Field.BankEffects(inv.User.Bank)
	if !ok || bank.Has(name) {
		stageFailed(bc, inv)
		return false
	}
	turns := effects.ScreenTurns
	if inv.User.HasItem("light_clay") {
		turns = effects.ScreenTurnsClay
	}
	bc.addEffect(ctx, bank, effects.NewScreen(name, category, turns), nil)
	return true
}

// defogStats lowers evasion as declared, then clears screens and guards of
// the target side and hazards of both sides.
func defogStats(ctx context.Context, bc *BattleContext, inv *Invocation) bool {
	for _, target := range inv.Targets {
		for _, mod := range inv.Move.Stages {
			if stat, ok := mod.StatID(); ok {
				bc.Handlers.Stat.ChangeStat(ctx, stat, mod.Delta, target, inv.User, inv.Move)
			}
		}
	}
	cleansed := bc.Field.BankEffects(foeBank(inv)).KillMatching(func(e *battle.Effect) bool {
		return e.Cleansable
	}, battle.EndReasonCleansed)
	cleansed = append(cleansed, bc.Field.BankEffects(inv.User.Bank).KillMatching(func(e *battle.Effect) bool {
		return e.Name == effects.Spikes || e.Name == effects.StealthRock
	}, battle.EndReasonCleansed)...)
	for _, e := range cleansed {
		bc.say(battle.MessageEffect, nil, "The %s disappeared!", battle.DisplayName(e.Name))
	}
	if bc.Field.Terrain.Kind != battle.TerrainNone {
		bc.Handlers.Terrain.ChangeTerrain(ctx, battle.TerrainNone, 0)
	}
	return true
}

func weatherEffect(ctx context.Context, bc *BattleContext, inv *Invocation) bool {
	kind, ok := weatherMoves[inv.Move.ID]
	if !ok {
		stageFailed(bc, inv)
		return false
	}
	turns := weatherTurns
	if inv.User.HasItem(weatherRocks[kind]) {
		turns = weatherTurnsExtended
	}
	if !bc.Handlers.Weather.ChangeWeather(ctx, kind, turns) {
		stageFailed(bc, inv)
		return false
	}
	return true
}

func terrainEffect(ctx context.Context, bc *BattleContext, inv *Invocation) bool {
	kind, ok := terrainMoves[inv.Move.ID]
	if !ok {
		stageFailed(bc, inv)
		return false
	}
	turns := terrainTurns
	if inv.User.HasItem("terrain_extender") {
		turns = terrainTurnsExtended
	}
	if !bc.Handlers.Terrain.ChangeTerrain(ctx, kind, turns) {
		stageFailed(bc, inv)
		return false
	}
	return true
}

func bankGuardEffect(name string, build func() *battle.Effect) func(ctx context.Context, bc *BattleContext, inv *Invocation) bool {
	return func(ctx context.Context, bc *BattleContext, inv *Invocation) bool {
		bank := bc.Field.BankEffects(inv.User.Bank)
		if bank.Has(name) {
			stageFailed(bc, inv)
			return false
		}
		bc.addEffect(ctx, bank, build(), nil)
		return true
	}
}

func spikesEffect(ctx context.Context, bc *BattleContext, inv *Invocation) bool {
	bank := bc.Field.BankEffects(foeBank(inv))
	existing := bank.Get(effects.Spikes)
	if existing == nil {
		bc.addEffect(ctx, bank, effects.NewSpikes(), nil)
		bc.say(battle.MessageEffect, nil, "Spikes were scattered all around the feet of the foe's team!")
		return true
	}
	state, _ := existing.Data.(*effects.HazardState)
	if state == nil || state.Layers >= effects.MaxSpikesLayers {
		stageFailed(bc, inv)
		return false
	}
	state.Layers++
	bc.say(battle.MessageEffect, nil, "Spikes were scattered all around the feet of the foe's team!")
	return true
}

func stealthRockEffect(ctx context.Context, bc *BattleContext, inv *Invocation) bool {
	bank := bc.Field.BankEffects(foeBank(inv))
	if bank.Has(effects.StealthRock) {
		stageFailed(bc, inv)
		return false
	}
	bc.addEffect(ctx, bank, effects.NewStealthRock(), nil)
	bc.say(battle.MessageEffect, nil, "Pointed stones float in the air around the foe's team!")
	return true
}

// pledgePartner returns the different pledge an ally used earlier this turn.
func pledgePartner(bc *BattleContext, inv *Invocation) string {
	for _, ally := range bc.Field.AlliesOf(inv.User) {
		entry := ally.LastMove()
		if entry == nil || entry.Turn != bc.turn() || !entry.Success || entry.Move.Method != "s_pledge" {
			continue
		}
		if entry.Move.ID != inv.Move.ID {
			return entry.Move.ID
		}
	}
	return ""
}

func pledgeKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

func pledgePower(bc *BattleContext, inv *Invocation, _ *battle.Combatant) int {
	if pledgePartner(bc, inv) != "" {
		return pledgeComboPower
	}
	return inv.Move.Power
}

func pledgeEffect(ctx context.Context, bc *BattleContext, inv *Invocation) bool {
	partner := pledgePartner(bc, inv)
	if partner == "" {
		return true
	}
	combo, ok := pledgeCombos[pledgeKey(inv.Move.ID, partner)]
	if !ok {
		return true
	}
	bank := foeBank(inv)
	if combo.onUser {
		bank = inv.User.Bank
	}
	effect := combo.build()
	if reg := bc.Field.BankEffects(bank); !reg.Has(effect.Name) {
		bc.addEffect(ctx, reg, effect, nil)
	}
	return true
}
