package handlers

import (
	"context"

	"pocket-arena/server/internal/battle"
	"pocket-arena/server/internal/effects"
	"pocket-arena/server/logging"
	combatantlog "pocket-arena/server/logging/combatants"
)

// Switch is the default SwitchHandler. Forced switches draw the replacement
// from the outcome stream; other switches take the first bench member.
type Switch struct {
	env    Env
	damage DamageHandler
}

// CanSwitch reports whether target may leave the board for a bench member.
func (h *Switch) CanSwitch(target *battle.Combatant, move *battle.Definition, reason SwitchReason) bool {
	if target == nil || !target.Active() {
		return false
	}
	if reason != SwitchFaint && target.Dead() {
		return false
	}
	if !h.env.Field.CanBeReplaced(target) {
		return false
	}
	if reason == SwitchForced {
		if target.HasAbility("suction_cups") || target.Effects.Has("ingrain") {
			return false
		}
	}
	return true
}

func (h *Switch) RequestSwitch(ctx context.Context, target *battle.Combatant, reason SwitchReason) bool {
	if !h.CanSwitch(target, nil, reason) {
		return false
	}
	bench := h.env.Field.Bench(target.Bank)
	with := bench[0]
	if reason == SwitchForced {
		with = bench[battle.RandomInt(h.env.Field.Streams.Outcome, 0, len(bench)-1)]
	}
	return h.Switch(ctx, target, with, reason)
}

// Switch puts with on who's position. Effects of who that do not persist on
// switch end; its stages reset.
func (h *Switch) Switch(ctx context.Context, who, with *battle.Combatant, reason SwitchReason) bool {
	if who == nil || with == nil || who == with || with.Active() || with.Dead() || who.Bank != with.Bank {
		return false
	}
	with.Position = who.Position
	who.Position = -1
	who.Stages.Reset()
	who.Effects.KillMatching(func(e *battle.Effect) bool { return !e.PersistOnSwitch }, battle.EndReasonSwitchedOut)
	who.Effects.Sweep()
	if who.Status == battle.StatusToxic {
		who.ToxicCounter = 0
	}

	combatantlog.Switched(ctx, h.env.Publisher, h.env.turn(), logging.Combatant(who.ID), combatantlog.SwitchPayload{
		Replacement: with.ID,
		Forced:      reason == SwitchForced,
	})
	msg := battle.Message{
		Kind:    battle.MessageSwitch,
		Turn:    h.env.turn(),
		Actor:   who.ID,
		Targets: []string{with.ID},
		Text:    with.Name() + " was sent out!",
	}
	if reason == SwitchForced {
		msg.Text = with.Name() + " was dragged out!"
	}
	h.env.Presenter.Present(msg)

	if hazard := effects.EntryDamage(h.env.Field, with); hazard > 0 && h.damage != nil {
		h.damage.ApplyDamage(ctx, hazard, with, nil, nil)
	}
	return true
}
