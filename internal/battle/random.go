package battle

import (
	"hash/fnv"
	"math/rand"
)

const DefaultSeed = "arena"

const (
	streamOutcome = "outcome"
	streamGeneric = "generic"
	streamOrder   = "turn-order"
)

// DeterministicSeedValue derives a stable seed for a labelled stream.
func DeterministicSeedValue(rootSeed, label string) int64 {
	hasher := fnv.New64a()
	hasher.Write([]byte(rootSeed))
	hasher.Write([]byte{0})
	hasher.Write([]byte(label))
	sum := hasher.Sum64()
	if sum == 0 {
		sum = 1
	}
	return int64(sum)
}

func NewDeterministicRNG(rootSeed, label string) *rand.Rand {
	return rand.New(rand.NewSource(DeterministicSeedValue(rootSeed, label)))
}

// Streams keeps the battle's random sources apart. Outcome drives accuracy,
// critical hits, damage rolls, hit counts and random targets. Generic serves
// flavor choices and the AI. Order only breaks speed ties in the queue.
type Streams struct {
	Outcome *rand.Rand
	Generic *rand.Rand
	Order   *rand.Rand
}

func NewStreams(seed string) *Streams {
	if seed == "" {
		seed = DefaultSeed
	}
	return &Streams{
		Outcome: NewDeterministicRNG(seed, streamOutcome),
		Generic: NewDeterministicRNG(seed, streamGeneric),
		Order:   NewDeterministicRNG(seed, streamOrder),
	}
}

// RandomInt returns a value in [lo, hi].
func RandomInt(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	if rng == nil {
		rng = NewDeterministicRNG(DefaultSeed, streamGeneric)
	}
	return lo + rng.Intn(hi-lo+1)
}

// RandomFloat returns a value in [lo, hi).
func RandomFloat(rng *rand.Rand, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	if rng == nil {
		rng = NewDeterministicRNG(DefaultSeed, streamGeneric)
	}
	return lo + rng.Float64()*(hi-lo)
}

// Chance rolls a probability in [0, 1].
func Chance(rng *rand.Rand, p float64) bool {
	if p >= 1 {
		return true
	}
	if p <= 0 {
		return false
	}
	return RandomFloat(rng, 0, 1) < p
}
