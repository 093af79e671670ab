package effects

import (
	"fmt"

	"pocket-arena/server/internal/battle"
)

// ForcedMove is the Data of effects that lock their holder into a move.
type ForcedMove struct {
	Move      *battle.Definition
	Targets   []*battle.Combatant
	ConsumePP bool
}

// NewForceNextMove makes the holder re-use move against targets on its next
// action, skipping action choice.
func NewForceNextMove(move *battle.Definition, targets []*battle.Combatant, turns int, consumePP bool) *battle.Effect {
	effect := battle.NewEffect(ForceNextMove, turns)
	effect.Data = &ForcedMove{
		Move:      move,
		Targets:   append([]*battle.Combatant(nil), targets...),
		ConsumePP: consumePP,
	}
	effect.Hooks.ForceNextMove = func(*battle.Effect) bool { return true }
	return effect
}

// NewRecharge forces the holder to spend its next action recharging.
func NewRecharge(move *battle.Definition) *battle.Effect {
	effect := battle.NewEffect(Recharge, 2)
	effect.Data = &ForcedMove{Move: move}
	effect.Hooks.ForceNextMove = func(*battle.Effect) bool { return true }
	effect.Hooks.PreventUser = func(e *battle.Effect, user *battle.Combatant, _ []*battle.Combatant, _ *battle.Definition) string {
		if user != e.Holder() {
			return ""
		}
		return fmt.Sprintf("%s must recharge!", user.Name())
	}
	return effect
}

// Forced returns the move lock of c, if any.
func Forced(c *battle.Combatant) (*ForcedMove, *battle.Effect) {
	if c == nil {
		return nil, nil
	}
	effect := c.Effects.GetMatching(func(e *battle.Effect) bool { return e.ForcesNextMove() })
	if effect == nil {
		return nil, nil
	}
	data, _ := effect.Data.(*ForcedMove)
	return data, effect
}

// ForcedWithoutPP reports whether c is locked into a move that does not
// consume PP.
func ForcedWithoutPP(c *battle.Combatant) bool {
	data, _ := Forced(c)
	return data != nil && !data.ConsumePP
}

// reachableBy lists the moves that still hit a holder hidden by each move.
var reachableBy = map[string][]string{
	"dig":    {"earthquake", "magnitude", "fissure"},
	"fly":    {"gust", "twister", "thunder", "sky_uppercut", "smack_down", "hurricane"},
	"bounce": {"gust", "twister", "thunder", "sky_uppercut", "smack_down", "hurricane"},
	"dive":   {"surf", "whirlpool"},
}

// NewOutOfReach hides the holder while charging move.
func NewOutOfReach(move *battle.Definition) *battle.Effect {
	effect := battle.NewEffect(OutOfReach, TwoTurnTurns)
	var moveID string
	if move != nil {
		moveID = move.ID
	}
	effect.Data = moveID
	effect.Hooks.OutOfReach = func(*battle.Effect) bool { return true }
	effect.Hooks.PreventTarget = func(e *battle.Effect, user, target *battle.Combatant, m *battle.Definition) bool {
		if target != e.Holder() || user == target {
			return false
		}
		return !Reaches(moveID, m)
	}
	return effect
}

// Reaches reports whether m hits a combatant hidden by hiddenBy.
func Reaches(hiddenBy string, m *battle.Definition) bool {
	if m == nil {
		return false
	}
	for _, id := range reachableBy[hiddenBy] {
		if id == m.ID {
			return true
		}
	}
	return false
}
