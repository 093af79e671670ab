// Package effects builds the named battle effects moves create. Code outside
// this package looks effects up by name and reads their Data through the
// typed accessors here.
package effects

// Effect names.
const (
	ForceNextMove = "force_next_move"
	OutOfReach    = "out_of_reach"
	Protect       = "protect"
	Torment       = "torment"
	HealBlock     = "heal_block"
	Substitute    = "substitute"
	Reflect       = "reflect"
	LightScreen   = "light_screen"
	Mist          = "mist"
	Safeguard     = "safeguard"
	Rainbow       = "rainbow"
	SeaOfFire     = "sea_of_fire"
	Swamp         = "swamp"
	BeakBlast     = "beak_blast"
	LockOn        = "lock_on"
	Recharge      = "recharge"
	Spikes        = "spikes"
	StealthRock   = "stealth_rock"
)

// Default durations in turn boundaries.
const (
	ScreenTurns      = 5
	ScreenTurnsClay  = 8
	BankGuardTurns   = 5
	PledgeTurns      = 4
	HealBlockTurns   = 5
	TwoTurnTurns     = 2
	LockOnTurns      = 2
	MaxSpikesLayers  = 3
	SeaOfFireDivisor = 8
)
