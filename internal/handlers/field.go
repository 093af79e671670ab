package handlers

import (
	"context"

	"pocket-arena/server/internal/battle"
)

var primalWeather = map[string]bool{
	battle.WeatherHarshSun:   true,
	battle.WeatherHeavyRain:  true,
	battle.WeatherStrongWind: true,
}

var weatherStarts = map[string]string{
	battle.WeatherSun:        "The sunlight turned harsh!",
	battle.WeatherRain:       "It started to rain!",
	battle.WeatherSandstorm:  "A sandstorm kicked up!",
	battle.WeatherHail:       "It started to hail!",
	battle.WeatherFog:        "The fog is deep...",
	battle.WeatherHarshSun:   "The sunlight turned extremely harsh!",
	battle.WeatherHeavyRain:  "A heavy rain began to fall!",
	battle.WeatherStrongWind: "Mysterious strong winds are protecting Flying-type Pokemon!",
	battle.WeatherNone:       "The weather returned to normal.",
}

// Weather is the default WeatherHandler.
type Weather struct {
	env Env
}

// ChangeWeather fails when the weather is already kind or a primal weather
// holds the field against a regular one.
func (h *Weather) ChangeWeather(ctx context.Context, kind string, turns int) bool {
	field := h.env.Field
	if field == nil || field.Weather.Kind == kind {
		return false
	}
	if primalWeather[field.Weather.Kind] && !primalWeather[kind] && kind != battle.WeatherNone {
		return false
	}
	field.Weather = battle.Condition{Kind: kind, Turns: turns}
	h.env.say(battle.MessageField, nil, 0, "%s", weatherStarts[kind])
	return true
}

// Terrain is the default TerrainHandler.
type Terrain struct {
	env Env
}

func (h *Terrain) ChangeTerrain(ctx context.Context, kind string, turns int) bool {
	field := h.env.Field
	if field == nil || field.Terrain.Kind == kind {
		return false
	}
	field.Terrain = battle.Condition{Kind: kind, Turns: turns}
	if kind == battle.TerrainNone {
		h.env.say(battle.MessageField, nil, 0, "The terrain returned to normal.")
		return true
	}
	h.env.say(battle.MessageField, nil, 0, "%s spread across the battlefield!", battle.DisplayName(kind))
	return true
}
