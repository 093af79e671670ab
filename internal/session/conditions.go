package session

import (
	"context"
	"fmt"

	"pocket-arena/server/internal/battle"
	"pocket-arena/server/internal/moves"
)

const (
	thawChance      = 0.2
	fullParaChance  = 0.25
	paralysisSpeed  = 0.5
	residualDivisor = 16
)

var weatherEnds = map[string]string{
	battle.WeatherSun:        "The sunlight faded.",
	battle.WeatherRain:       "The rain stopped.",
	battle.WeatherSandstorm:  "The sandstorm subsided.",
	battle.WeatherHail:       "The hail stopped.",
	battle.WeatherFog:        "The fog cleared.",
	battle.WeatherHarshSun:   "The harsh sunlight faded!",
	battle.WeatherHeavyRain:  "The heavy rain has lifted!",
	battle.WeatherStrongWind: "The mysterious strong winds have dissipated!",
}

// statusPrevention keeps sleeping, frozen and fully paralyzed combatants from
// acting. Sleep counts down once per attempt.
func statusPrevention(ctx context.Context, bc *moves.BattleContext, user *battle.Combatant, _ []*battle.Combatant, _ *battle.Definition) string {
	switch user.Status {
	case battle.StatusSleep:
		if user.SleepTurns > 0 {
			user.SleepTurns--
			return fmt.Sprintf("%s is fast asleep.", user.Name())
		}
		bc.Handlers.Status.ChangeStatus(ctx, battle.StatusNone, user, user, nil)
	case battle.StatusFreeze:
		if !battle.Chance(bc.Field.Streams.Outcome, thawChance) {
			return fmt.Sprintf("%s is frozen solid!", user.Name())
		}
		bc.Handlers.Status.ChangeStatus(ctx, battle.StatusNone, user, user, nil)
	case battle.StatusParalysis:
		if battle.Chance(bc.Field.Streams.Outcome, fullParaChance) {
			return fmt.Sprintf("%s is paralyzed! It can't move!", user.Name())
		}
	}
	return ""
}

// statusResidual is the end-of-turn damage of a major status. Toxic grows
// by one sixteenth each turn.
func statusResidual(c *battle.Combatant) (int, string) {
	if c.HasAbility("magic_guard") {
		return 0, ""
	}
	maxHP := c.MaxHP()
	switch c.Status {
	case battle.StatusBurn:
		return max(1, maxHP/residualDivisor), fmt.Sprintf("%s is hurt by its burn!", c.Name())
	case battle.StatusPoison:
		return max(1, maxHP/8), fmt.Sprintf("%s is hurt by poison!", c.Name())
	case battle.StatusToxic:
		c.ToxicCounter++
		return max(1, maxHP*c.ToxicCounter/residualDivisor), fmt.Sprintf("%s is hurt by poison!", c.Name())
	}
	return 0, ""
}

// weatherResidual is the end-of-turn damage of sandstorm and hail.
func weatherResidual(field *battle.Field, c *battle.Combatant) (int, string) {
	if c.HasAbility("magic_guard") || c.HasAbility("overcoat") {
		return 0, ""
	}
	damage := max(1, c.MaxHP()/residualDivisor)
	switch field.Weather.Kind {
	case battle.WeatherSandstorm:
		if c.HasType(battle.TypeRock) || c.HasType(battle.TypeGround) || c.HasType(battle.TypeSteel) {
			return 0, ""
		}
		if c.HasAbility("sand_veil") || c.HasAbility("sand_rush") || c.HasAbility("sand_force") {
			return 0, ""
		}
		return damage, fmt.Sprintf("%s is buffeted by the sandstorm!", c.Name())
	case battle.WeatherHail:
		if c.HasType(battle.TypeIce) || c.HasAbility("ice_body") || c.HasAbility("snow_cloak") {
			return 0, ""
		}
		return damage, fmt.Sprintf("%s is pelted by hail!", c.Name())
	}
	return 0, ""
}

func terrainEndText(kind string) string {
	return fmt.Sprintf("The %s disappeared from the battlefield.", battle.DisplayName(kind))
}
