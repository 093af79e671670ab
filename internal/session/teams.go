package session

import (
	"fmt"

	"pocket-arena/server/internal/battle"
	"pocket-arena/server/internal/config"
)

// MoveSource resolves move ids to definitions. *catalog.Resolver satisfies it.
type MoveSource interface {
	Resolve(id string) (*battle.Definition, bool)
}

// TeamsFromConfig builds the combatants of a scenario. Every move id must
// resolve.
func TeamsFromConfig(cfg config.Config, source MoveSource) ([]Team, error) {
	if source == nil {
		return nil, fmt.Errorf("%w: no move source", ErrInvalidTeams)
	}
	teams := make([]Team, 0, len(cfg.Teams))
	for _, team := range cfg.Teams {
		out := Team{Name: team.Name, Controller: Controller(team.Controller)}
		for _, member := range team.Members {
			c := battle.NewCombatant(member.ID, member.Level, member.Basis())
			c.Species = member.Species
			c.Nickname = member.Nickname
			c.Types = member.BattleTypes()
			c.Ability = member.Ability
			c.Item = member.Item
			for _, id := range member.Moves {
				def, ok := source.Resolve(id)
				if !ok {
					return nil, fmt.Errorf("%w: member %q knows unknown move %q", ErrInvalidTeams, member.ID, id)
				}
				c.Moves = append(c.Moves, battle.NewMoveSlot(def))
			}
			out.Members = append(out.Members, c)
		}
		teams = append(teams, out)
	}
	return teams, nil
}

// ConfigFromScenario carries the battle settings of a scenario over.
func ConfigFromScenario(cfg config.Config) Config {
	return Config{
		Seed:     cfg.Seed,
		VsType:   cfg.VsType,
		Trainer:  cfg.Trainer,
		MaxTurns: cfg.MaxTurns,
	}
}
