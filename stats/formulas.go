package stats

import "strings"

// Base holds the species base values used to compute battle stats.
type Base struct {
	HP  int `json:"hp" yaml:"hp"`
	Atk int `json:"atk" yaml:"atk"`
	Dfe int `json:"dfe" yaml:"dfe"`
	Spd int `json:"spd" yaml:"spd"`
	Ats int `json:"ats" yaml:"ats"`
	Dfs int `json:"dfs" yaml:"dfs"`
}

// Basis holds computed stats before stage multipliers apply.
type Basis struct {
	MaxHP int
	Atk   int
	Dfe   int
	Spd   int
	Ats   int
	Dfs   int
}

// Get returns the basis value for one of the five staged stats.
func (b Basis) Get(stat StatID) int {
	switch stat {
	case StatAtk:
		return b.Atk
	case StatDfe:
		return b.Dfe
	case StatSpd:
		return b.Spd
	case StatAts:
		return b.Ats
	case StatDfs:
		return b.Dfs
	default:
		return 0
	}
}

// With returns a copy of the basis with one stat replaced.
func (b Basis) With(stat StatID, value int) Basis {
	if value < 1 {
		value = 1
	}
	switch stat {
	case StatAtk:
		b.Atk = value
	case StatDfe:
		b.Dfe = value
	case StatSpd:
		b.Spd = value
	case StatAts:
		b.Ats = value
	case StatDfs:
		b.Dfs = value
	}
	return b
}

var natures = map[string][2]StatID{
	"lonely":  {StatAtk, StatDfe},
	"adamant": {StatAtk, StatAts},
	"naughty": {StatAtk, StatDfs},
	"brave":   {StatAtk, StatSpd},
	"bold":    {StatDfe, StatAtk},
	"impish":  {StatDfe, StatAts},
	"lax":     {StatDfe, StatDfs},
	"relaxed": {StatDfe, StatSpd},
	"modest":  {StatAts, StatAtk},
	"mild":    {StatAts, StatDfe},
	"rash":    {StatAts, StatDfs},
	"quiet":   {StatAts, StatSpd},
	"calm":    {StatDfs, StatAtk},
	"gentle":  {StatDfs, StatDfe},
	"careful": {StatDfs, StatAts},
	"sassy":   {StatDfs, StatSpd},
	"timid":   {StatSpd, StatAtk},
	"hasty":   {StatSpd, StatDfe},
	"jolly":   {StatSpd, StatAts},
	"naive":   {StatSpd, StatDfs},
}

func natureFactor(nature string, stat StatID) float64 {
	pair, ok := natures[strings.ToLower(strings.TrimSpace(nature))]
	if !ok {
		return 1
	}
	switch stat {
	case pair[0]:
		return 1.1
	case pair[1]:
		return 0.9
	default:
		return 1
	}
}

// Compute derives battle stats from base values, level, a flat IV and EV
// spread and a nature name. Unknown natures are neutral.
func Compute(base Base, level, iv, ev int, nature string) Basis {
	level = clamp(level, 1, 100)
	iv = clamp(iv, 0, 31)
	ev = clamp(ev, 0, 252)
	stat := func(value int, id StatID) int {
		raw := (2*value+iv+ev/4)*level/100 + 5
		return max(int(float64(raw)*natureFactor(nature, id)), 1)
	}
	return Basis{
		MaxHP: (2*base.HP+iv+ev/4)*level/100 + level + 10,
		Atk:   stat(base.Atk, StatAtk),
		Dfe:   stat(base.Dfe, StatDfe),
		Spd:   stat(base.Spd, StatSpd),
		Ats:   stat(base.Ats, StatAts),
		Dfs:   stat(base.Dfs, StatDfs),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
