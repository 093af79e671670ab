package stats

// StatID enumerates the stats that carry a battle stage.
type StatID uint8

const (
	StatAtk StatID = iota
	StatDfe
	StatSpd
	StatAts
	StatDfs
	StatAcc
	StatEva

	StatCount
)

const (
	MinStage = -6
	MaxStage = 6
)

var statNames = [StatCount]string{"atk", "dfe", "spd", "ats", "dfs", "acc", "eva"}

func (s StatID) String() string {
	if s >= StatCount {
		return "unknown"
	}
	return statNames[s]
}

// ParseStat resolves a canonical stat name.
func ParseStat(name string) (StatID, bool) {
	for i, candidate := range statNames {
		if candidate == name {
			return StatID(i), true
		}
	}
	return 0, false
}

// Stages stores the seven battle stages of a combatant.
type Stages [StatCount]int

// Get returns the stage for the provided stat.
func (s *Stages) Get(stat StatID) int {
	if s == nil || stat >= StatCount {
		return 0
	}
	return s[stat]
}

// Change applies delta to the stage, clamps the result and returns the
// delta that was actually applied.
func (s *Stages) Change(stat StatID, delta int) int {
	if s == nil || stat >= StatCount {
		return 0
	}
	before := s[stat]
	s[stat] = ClampStage(before + delta)
	return s[stat] - before
}

// Set overwrites the stage after clamping.
func (s *Stages) Set(stat StatID, value int) {
	if s == nil || stat >= StatCount {
		return
	}
	s[stat] = ClampStage(value)
}

// Reset zeroes every stage.
func (s *Stages) Reset() {
	if s == nil {
		return
	}
	*s = Stages{}
}

// CanIncrease reports whether the stage is below the cap.
func (s *Stages) CanIncrease(stat StatID) bool {
	return s.Get(stat) < MaxStage
}

// CanDecrease reports whether the stage is above the floor.
func (s *Stages) CanDecrease(stat StatID) bool {
	return s.Get(stat) > MinStage
}

// ClampStage bounds a stage to [MinStage, MaxStage].
func ClampStage(stage int) int {
	if stage < MinStage {
		return MinStage
	}
	if stage > MaxStage {
		return MaxStage
	}
	return stage
}

// Multiplier returns the stat multiplier for a regular stat stage.
func Multiplier(stage int) float64 {
	stage = ClampStage(stage)
	if stage >= 0 {
		return float64(2+stage) / 2
	}
	return 2 / float64(2-stage)
}

// AccuracyMultiplier returns the multiplier for accuracy and evasion stages.
func AccuracyMultiplier(stage int) float64 {
	stage = ClampStage(stage)
	if stage >= 0 {
		return float64(3+stage) / 3
	}
	return 3 / float64(3-stage)
}
