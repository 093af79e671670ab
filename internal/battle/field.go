package battle

import "sort"

// Weather kinds.
const (
	WeatherNone       = "none"
	WeatherSun        = "sunny"
	WeatherRain       = "rain"
	WeatherSandstorm  = "sandstorm"
	WeatherHail       = "hail"
	WeatherFog        = "fog"
	WeatherHarshSun   = "hardsun"
	WeatherHeavyRain  = "hardrain"
	WeatherStrongWind = "strong_winds"
)

// Terrain kinds.
const (
	TerrainNone     = "none"
	TerrainElectric = "electric_terrain"
	TerrainGrassy   = "grassy_terrain"
	TerrainMisty    = "misty_terrain"
	TerrainPsychic  = "psychic_terrain"
)

// Condition is a timed field-wide state. Turns 0 means unbounded.
type Condition struct {
	Kind  string
	Turns int
}

// Outcome describes how the encounter ended.
type Outcome struct {
	Ended  bool
	Winner int
	Reason string
}

const (
	OutcomeKnockout = "knockout"
	OutcomeFled     = "fled"
	// OutcomeTimeout ends a battle that ran past its turn limit. Winner is -1.
	OutcomeTimeout = "timeout"
)

// Bank is one side of the field.
type Bank struct {
	Index   int
	Party   []*Combatant
	Effects *Registry
}

type positionKey struct {
	bank     int
	position int
}

// Field is the explicit battle environment every hook receives: board state,
// weather, terrain, turn counter, effect scopes and random streams.
type Field struct {
	BattleID string
	VsType   int
	Trainer  bool
	Turn     int
	Weather  Condition
	Terrain  Condition
	Banks    []*Bank
	Effects  *Registry
	Streams  *Streams
	Outcome  Outcome

	positions map[positionKey]*Registry
}

// NewField builds an empty field with banks count sides.
func NewField(battleID string, banks, vsType int, streams *Streams) *Field {
	if vsType <= 0 {
		vsType = 1
	}
	if streams == nil {
		streams = NewStreams(DefaultSeed)
	}
	f := &Field{
		BattleID:  battleID,
		VsType:    vsType,
		Turn:      1,
		Weather:   Condition{Kind: WeatherNone},
		Terrain:   Condition{Kind: TerrainNone},
		Effects:   NewRegistry(Scope{Kind: ScopeGlobal}),
		Streams:   streams,
		positions: make(map[positionKey]*Registry),
	}
	for i := 0; i < banks; i++ {
		f.Banks = append(f.Banks, &Bank{Index: i, Effects: NewRegistry(Scope{Kind: ScopeBank, Bank: i})})
	}
	return f
}

// Join adds a combatant to a bank's party. The first VsType members take the
// board positions.
func (f *Field) Join(bank int, c *Combatant) {
	b := f.Bank(bank)
	if b == nil || c == nil {
		return
	}
	c.Bank = bank
	c.PartyIndex = len(b.Party)
	c.Position = -1
	if c.PartyIndex < f.VsType {
		c.Position = c.PartyIndex
	}
	b.Party = append(b.Party, c)
}

func (f *Field) Bank(index int) *Bank {
	if f == nil || index < 0 || index >= len(f.Banks) {
		return nil
	}
	return f.Banks[index]
}

// BankEffects returns the registry of a side.
func (f *Field) BankEffects(bank int) *Registry {
	if b := f.Bank(bank); b != nil {
		return b.Effects
	}
	return nil
}

// PositionEffects returns the registry tied to a board position. Effects in
// it affect whoever occupies the position.
func (f *Field) PositionEffects(bank, position int) *Registry {
	if f == nil || position < 0 {
		return nil
	}
	key := positionKey{bank: bank, position: position}
	reg, ok := f.positions[key]
	if !ok {
		reg = NewRegistry(Scope{Kind: ScopePosition, Bank: bank, Position: position})
		f.positions[key] = reg
	}
	return reg
}

// At returns the combatant occupying a board position.
func (f *Field) At(bank, position int) *Combatant {
	b := f.Bank(bank)
	if b == nil {
		return nil
	}
	for _, c := range b.Party {
		if c.Position == position && position >= 0 {
			return c
		}
	}
	return nil
}

// ActiveOn returns the combatants on the board for a bank, alive or not.
func (f *Field) ActiveOn(bank int) []*Combatant {
	b := f.Bank(bank)
	if b == nil {
		return nil
	}
	var out []*Combatant
	for _, c := range b.Party {
		if c.Active() {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// AliveOn returns the living combatants on the board for a bank.
func (f *Field) AliveOn(bank int) []*Combatant {
	var out []*Combatant
	for _, c := range f.ActiveOn(bank) {
		if c.Alive() {
			out = append(out, c)
		}
	}
	return out
}

// AllAlive returns every living combatant on the board.
func (f *Field) AllAlive() []*Combatant {
	if f == nil {
		return nil
	}
	var out []*Combatant
	for _, b := range f.Banks {
		out = append(out, f.AliveOn(b.Index)...)
	}
	return out
}

// FoesOf returns the living board combatants of the other banks.
func (f *Field) FoesOf(c *Combatant) []*Combatant {
	if f == nil || c == nil {
		return nil
	}
	var out []*Combatant
	for _, b := range f.Banks {
		if b.Index == c.Bank {
			continue
		}
		out = append(out, f.AliveOn(b.Index)...)
	}
	return out
}

// AlliesOf returns the living board combatants of c's bank, c excluded.
func (f *Field) AlliesOf(c *Combatant) []*Combatant {
	if f == nil || c == nil {
		return nil
	}
	var out []*Combatant
	for _, other := range f.AliveOn(c.Bank) {
		if other != c {
			out = append(out, other)
		}
	}
	return out
}

// AdjacentFoesOf returns foes at most one position away.
func (f *Field) AdjacentFoesOf(c *Combatant) []*Combatant {
	var out []*Combatant
	for _, foe := range f.FoesOf(c) {
		if abs(foe.Position-c.Position) <= 1 {
			out = append(out, foe)
		}
	}
	return out
}

// AdjacentAlliesOf returns allies exactly one position away.
func (f *Field) AdjacentAlliesOf(c *Combatant) []*Combatant {
	var out []*Combatant
	for _, ally := range f.AlliesOf(c) {
		if abs(ally.Position-c.Position) == 1 {
			out = append(out, ally)
		}
	}
	return out
}

// Bench returns living party members of a bank that are not on the board.
func (f *Field) Bench(bank int) []*Combatant {
	b := f.Bank(bank)
	if b == nil {
		return nil
	}
	var out []*Combatant
	for _, c := range b.Party {
		if !c.Active() && c.Alive() {
			out = append(out, c)
		}
	}
	return out
}

// PartyAlive counts living party members of a bank, board and bench.
func (f *Field) PartyAlive(bank int) int {
	b := f.Bank(bank)
	if b == nil {
		return 0
	}
	count := 0
	for _, c := range b.Party {
		if c.Alive() {
			count++
		}
	}
	return count
}

// CanBeReplaced reports whether a benched ally could take c's position.
func (f *Field) CanBeReplaced(c *Combatant) bool {
	return c != nil && len(f.Bench(c.Bank)) > 0
}

// EachEffect visits the effects that apply to the provided combatants:
// field-wide, their banks, their positions, then their own. Each registry is
// visited once. Returning false stops the walk.
func (f *Field) EachEffect(fn func(*Effect) bool, combatants ...*Combatant) {
	if f == nil || fn == nil {
		return
	}
	stopped := false
	visit := func(reg *Registry) {
		if stopped || reg == nil {
			return
		}
		reg.Each(func(e *Effect) bool {
			if !fn(e) {
				stopped = true
				return false
			}
			return true
		})
	}
	visit(f.Effects)
	seenBanks := make(map[int]bool)
	for _, c := range combatants {
		if c == nil || seenBanks[c.Bank] {
			continue
		}
		seenBanks[c.Bank] = true
		visit(f.BankEffects(c.Bank))
	}
	seenPositions := make(map[positionKey]bool)
	for _, c := range combatants {
		if c == nil || !c.Active() {
			continue
		}
		key := positionKey{bank: c.Bank, position: c.Position}
		if seenPositions[key] {
			continue
		}
		seenPositions[key] = true
		visit(f.PositionEffects(c.Bank, c.Position))
	}
	seen := make(map[*Combatant]bool)
	for _, c := range combatants {
		if c == nil || seen[c] {
			continue
		}
		seen[c] = true
		visit(c.Effects)
	}
}

// Registries lists every registry on the field, combatants included.
func (f *Field) Registries() []*Registry {
	if f == nil {
		return nil
	}
	regs := []*Registry{f.Effects}
	for _, b := range f.Banks {
		regs = append(regs, b.Effects)
	}
	keys := make([]positionKey, 0, len(f.positions))
	for key := range f.positions {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].bank != keys[j].bank {
			return keys[i].bank < keys[j].bank
		}
		return keys[i].position < keys[j].position
	})
	for _, key := range keys {
		regs = append(regs, f.positions[key])
	}
	for _, b := range f.Banks {
		for _, c := range b.Party {
			regs = append(regs, c.Effects)
		}
	}
	return regs
}

// CountdownEffects runs the end-of-turn step on every registry.
func (f *Field) CountdownEffects() {
	for _, reg := range f.Registries() {
		reg.Countdown()
	}
}

// SweepEffects removes dead effects everywhere and returns them.
func (f *Field) SweepEffects() []*Effect {
	var removed []*Effect
	for _, reg := range f.Registries() {
		removed = append(removed, reg.Sweep()...)
	}
	return removed
}

// AdvanceConditions counts weather and terrain down. It returns the kinds that
// ended this turn.
func (f *Field) AdvanceConditions() (weatherEnded, terrainEnded string) {
	if f == nil {
		return "", ""
	}
	if f.Weather.Kind != WeatherNone && f.Weather.Turns > 0 {
		f.Weather.Turns--
		if f.Weather.Turns == 0 {
			weatherEnded = f.Weather.Kind
			f.Weather = Condition{Kind: WeatherNone}
		}
	}
	if f.Terrain.Kind != TerrainNone && f.Terrain.Turns > 0 {
		f.Terrain.Turns--
		if f.Terrain.Turns == 0 {
			terrainEnded = f.Terrain.Kind
			f.Terrain = Condition{Kind: TerrainNone}
		}
	}
	return weatherEnded, terrainEnded
}

// WeatherIs reports whether the current weather is one of kinds.
func (f *Field) WeatherIs(kinds ...string) bool {
	if f == nil {
		return false
	}
	for _, kind := range kinds {
		if f.Weather.Kind == kind {
			return true
		}
	}
	return false
}

// Sunny reports sun or harsh sun.
func (f *Field) Sunny() bool { return f.WeatherIs(WeatherSun, WeatherHarshSun) }

// Rainy reports rain or heavy rain.
func (f *Field) Rainy() bool { return f.WeatherIs(WeatherRain, WeatherHeavyRain) }

// End finishes the encounter.
func (f *Field) End(winner int, reason string) {
	if f == nil || f.Outcome.Ended {
		return
	}
	f.Outcome = Outcome{Ended: true, Winner: winner, Reason: reason}
}

// CheckKnockout ends the encounter when a bank has no living party member.
func (f *Field) CheckKnockout() bool {
	if f == nil || f.Outcome.Ended {
		return f != nil && f.Outcome.Ended
	}
	standing := -1
	for _, b := range f.Banks {
		if f.PartyAlive(b.Index) == 0 {
			continue
		}
		if standing >= 0 {
			return false
		}
		standing = b.Index
	}
	f.End(standing, OutcomeKnockout)
	return true
}

// WildEncounter reports a single battle against a wild opponent.
func (f *Field) WildEncounter() bool {
	return f != nil && !f.Trainer && f.VsType == 1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
