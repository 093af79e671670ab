package moves

import (
	"context"
	"testing"

	"pocket-arena/server/internal/battle"
	"pocket-arena/server/logging"
	"pocket-arena/server/stats"
)

type testBattle struct {
	bc       *BattleContext
	user     *battle.Combatant
	foe      *battle.Combatant
	bench    *battle.Combatant
	messages []battle.Message
	events   []logging.Event
}

func defaultBasis() stats.Basis {
	return stats.Basis{MaxHP: 100, Atk: 100, Dfe: 100, Spd: 100, Ats: 100, Dfs: 100}
}

// newTestBattle builds a trainer single battle with one bench member on the
// foe side.
func newTestBattle(t *testing.T) *testBattle {
	t.Helper()
	field := battle.NewField("moves", 2, 1, battle.NewStreams("moves"))
	field.Trainer = true
	tb := &testBattle{
		user:  battle.NewCombatant("user", 50, defaultBasis()),
		foe:   battle.NewCombatant("foe", 50, defaultBasis()),
		bench: battle.NewCombatant("bench", 50, defaultBasis()),
	}
	field.Join(0, tb.user)
	field.Join(1, tb.foe)
	field.Join(1, tb.bench)
	presenter := battle.PresenterFunc(func(msg battle.Message) {
		tb.messages = append(tb.messages, msg)
	})
	publisher := logging.PublisherFunc(func(_ context.Context, event logging.Event) {
		tb.events = append(tb.events, event)
	})
	tb.bc = NewBattleContext(field, presenter, publisher)
	return tb
}

func (tb *testBattle) use(user *battle.Combatant, def *battle.Definition, target *battle.Combatant) *Invocation {
	slot := user.Slot(def.ID)
	if slot == nil {
		slot = battle.NewMoveSlot(def)
		user.Moves = append(user.Moves, slot)
	}
	inv := NewInvocation(tb.bc.Field, user, slot, target.Bank, target.Position)
	Use(context.Background(), tb.bc, inv)
	return inv
}

func (tb *testBattle) count(kind battle.MessageKind) int {
	total := 0
	for _, msg := range tb.messages {
		if msg.Kind == kind {
			total++
		}
	}
	return total
}

func (tb *testBattle) said(text string) bool {
	for _, msg := range tb.messages {
		if msg.Text == text {
			return true
		}
	}
	return false
}

func tackle() *battle.Definition {
	return &battle.Definition{
		ID:       "tackle",
		Method:   "s_basic",
		Type:     battle.TypeNormal,
		Category: battle.CategoryPhysical,
		Power:    40,
		Accuracy: 100,
		PP:       35,
		Target:   battle.TargetAdjacentPokemon,
		Flags:    battle.Flags{Direct: true, Blockable: true},
	}
}

func statusMove(id, method string, target battle.TargetPolicy) *battle.Definition {
	return &battle.Definition{
		ID:       id,
		Method:   method,
		Type:     battle.TypeNormal,
		Category: battle.CategoryStatus,
		PP:       10,
		Target:   target,
	}
}

// blind makes every move aimed at or used by holder miss.
func blind(holder *battle.Combatant) {
	effect := battle.NewPermanentEffect("blind")
	effect.Hooks.ChanceOfHit = func(*battle.Effect, *battle.Combatant, *battle.Combatant, *battle.Definition) float64 {
		return 0
	}
	holder.Effects.Add(effect)
}
