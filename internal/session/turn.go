package session

import (
	"context"
	"fmt"
	"strings"

	"pocket-arena/server/internal/battle"
	"pocket-arena/server/internal/effects"
	"pocket-arena/server/internal/handlers"
	"pocket-arena/server/internal/moves"
	"pocket-arena/server/logging"
	effectlog "pocket-arena/server/logging/effects"
	lifecycle "pocket-arena/server/logging/lifecycle"
	"pocket-arena/server/stats"
)

// struggle is used by a combatant that has no move it may pick.
var struggle = (&battle.Definition{
	ID:           "struggle",
	Method:       "s_basic",
	Type:         battle.TypeNormal,
	Category:     battle.CategoryPhysical,
	Power:        50,
	PP:           1,
	Target:       battle.TargetRandomFoe,
	RecoilFactor: 4,
	Flags:        battle.Flags{Direct: true, Recoil: true},
}).Normalized()

// RunTurn waits until every combatant on the board has an action, then
// resolves the turn. It returns ctx's error when cancelled while waiting.
func (s *Session) RunTurn(ctx context.Context) error {
	if s.Over() {
		return ErrBattleOver
	}
	if err := s.collect(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.start(ctx)
	s.transition(ctx, eventResolve)
	s.resolve(ctx)
	if s.field.Outcome.Ended {
		s.conclude(ctx)
		return nil
	}
	s.transition(ctx, eventEndTurn)
	s.endOfTurn(ctx)
	if s.field.Outcome.Ended {
		s.conclude(ctx)
		return nil
	}
	s.transition(ctx, eventNextTurn)
	return nil
}

func (s *Session) collect(ctx context.Context) error {
	for {
		s.mu.Lock()
		s.autoChoose()
		missing := 0
		for _, c := range s.field.AllAlive() {
			if _, ok := s.pending[c.ID]; !ok {
				missing++
			}
		}
		s.mu.Unlock()
		if missing == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.submitted:
		}
	}
}

// autoChoose fills in the actions the session picks itself: locked moves,
// AI teams and remote combatants left with nothing to do but struggle.
func (s *Session) autoChoose() {
	for _, c := range s.field.AllAlive() {
		if data, _ := effects.Forced(c); data != nil && data.Move != nil {
			s.pending[c.ID] = s.forcedAction(c, data)
			s.cfg.Metrics.Add(metricAutoActions, 1)
			continue
		}
		if _, ok := s.pending[c.ID]; ok {
			continue
		}
		if s.controller(c.Bank) == ControllerRemote {
			if !s.hasUsableMove(c) && !s.bc.Handlers.Switch.CanSwitch(c, nil, handlers.SwitchChoice) {
				s.pending[c.ID] = s.struggleAction(c)
				s.cfg.Metrics.Add(metricAutoActions, 1)
			}
			continue
		}
		choice, ok := s.chooser.Choose(s.bc, c)
		if !ok {
			s.pending[c.ID] = s.struggleAction(c)
		} else {
			s.pending[c.ID] = &battle.Action{
				Kind:           battle.ActionAttack,
				User:           c,
				Slot:           choice.Slot,
				TargetBank:     choice.TargetBank,
				TargetPosition: choice.TargetPosition,
			}
		}
		s.cfg.Metrics.Add(metricAutoActions, 1)
	}
}

func (s *Session) hasUsableMove(c *battle.Combatant) bool {
	for _, slot := range c.Moves {
		if moves.Disabled(s.field, c, slot) == "" {
			return true
		}
	}
	return false
}

// forcedAction re-selects the locked move against the targets chosen when
// the lock began.
func (s *Session) forcedAction(c *battle.Combatant, data *effects.ForcedMove) *battle.Action {
	slot := c.Slot(data.Move.ID)
	if slot == nil {
		slot = battle.NewMoveSlot(data.Move)
	}
	action := &battle.Action{Kind: battle.ActionAttack, User: c, Slot: slot, Forced: true}
	action.TargetBank, action.TargetPosition = s.defaultTarget(c)
	if len(data.Targets) > 0 && data.Targets[0] != nil {
		action.TargetBank = data.Targets[0].Bank
		action.TargetPosition = data.Targets[0].Position
	}
	return action
}

func (s *Session) struggleAction(c *battle.Combatant) *battle.Action {
	bank, position := s.defaultTarget(c)
	return &battle.Action{
		Kind:           battle.ActionAttack,
		User:           c,
		Slot:           battle.NewMoveSlot(&struggle),
		TargetBank:     bank,
		TargetPosition: position,
		Forced:         true,
	}
}

func (s *Session) defaultTarget(c *battle.Combatant) (int, int) {
	foes := s.field.FoesOf(c)
	if len(foes) == 0 {
		return c.Bank, c.Position
	}
	return foes[0].Bank, foes[0].Position
}

// speed is the effective speed used to order the queue.
func (s *Session) speed(c *battle.Combatant) int {
	value := float64(c.StatValue(stats.StatSpd))
	s.field.EachEffect(func(e *battle.Effect) bool {
		if e.Hooks.SpeedMultiplier != nil {
			value *= e.Hooks.SpeedMultiplier(e, c)
		}
		return true
	}, c)
	if c.Status == battle.StatusParalysis && !c.HasAbility("quick_feet") {
		value *= paralysisSpeed
	}
	return int(value)
}

func (s *Session) resolve(ctx context.Context) {
	queue := s.bc.Queue
	queue.Clear()
	for _, c := range s.field.AllAlive() {
		if action, ok := s.pending[c.ID]; ok {
			queue.Push(action)
		}
	}
	s.pending = make(map[string]*battle.Action)
	queue.Sort(func(a *battle.Action) int {
		return moves.Priority(s.bc, a.User, a.Slot.Def)
	})

	lifecycle.TurnStarted(ctx, s.bc.Publisher, s.field.Turn, lifecycle.TurnPayload{Actions: queue.Len()})
	s.cfg.Metrics.Add(metricTurns, 1)
	moves.BeforeTurn(ctx, s.bc)

	s.attackOrder = 0
	for {
		action, ok := queue.Next()
		if !ok {
			break
		}
		switch action.Kind {
		case battle.ActionSwitch:
			s.switchOut(ctx, action)
		case battle.ActionAttack:
			s.attackOrder++
			action.User.AttackOrder = s.attackOrder
			moves.Execute(ctx, s.bc, action)
		}
		if s.field.CheckKnockout() {
			break
		}
	}
	queue.Clear()
}

// switchOut lets queued attacks that strike a leaving combatant act first,
// then swaps it for its replacement.
func (s *Session) switchOut(ctx context.Context, action *battle.Action) {
	user := action.User
	if user.Dead() || !user.Active() {
		return
	}
	moves.Intercept(ctx, s.bc, user)
	if user.Dead() {
		return
	}
	s.bc.Handlers.Switch.Switch(ctx, user, action.Replacement, handlers.SwitchChoice)
	_ = s.bc.Presenter.Wait(ctx)
}

type residual struct {
	target *battle.Combatant
	amount int
	text   string
}

// endOfTurn deals residual damage, counts down weather, terrain and every
// effect, sweeps what ended, refills fainted positions and advances the
// turn counter.
func (s *Session) endOfTurn(ctx context.Context) {
	field := s.field

	var hits []residual
	for _, c := range field.AllAlive() {
		if amount, text := weatherResidual(field, c); amount > 0 {
			hits = append(hits, residual{target: c, amount: amount, text: text})
		}
		field.EachEffect(func(e *battle.Effect) bool {
			if e.Dead() || e.Hooks.Residual == nil {
				return true
			}
			if amount := e.Hooks.Residual(e, c); amount > 0 {
				text := fmt.Sprintf("%s is hurt by the %s!", c.Name(), strings.ReplaceAll(e.Name, "_", " "))
				hits = append(hits, residual{target: c, amount: amount, text: text})
			}
			return true
		}, c)
		if amount, text := statusResidual(c); amount > 0 {
			hits = append(hits, residual{target: c, amount: amount, text: text})
		}
	}
	for _, hit := range hits {
		if hit.target.Dead() {
			continue
		}
		s.say(battle.MessageText, hit.target, hit.text)
		s.bc.Handlers.Damage.ApplyDamage(ctx, hit.amount, hit.target, nil, nil)
	}

	weather, terrain := field.AdvanceConditions()
	if weather != "" {
		s.say(battle.MessageField, nil, weatherEnds[weather])
	}
	if terrain != "" {
		s.say(battle.MessageField, nil, terrainEndText(terrain))
	}

	field.CountdownEffects()
	for _, e := range field.SweepEffects() {
		holder := e.Holder()
		if e.Reason() == battle.EndReasonExpired && e.Hooks.OnExpire != nil {
			if text := e.Hooks.OnExpire(e); text != "" {
				s.say(battle.MessageEffect, holder, text)
			}
		}
		ref := logging.Field()
		if holder != nil {
			ref = logging.Combatant(holder.ID)
		}
		effectlog.Ended(ctx, s.bc.Publisher, field.Turn, ref, effectlog.EndedPayload{
			Effect:   e.Name,
			EffectID: e.ID,
			Reason:   string(e.Reason()),
		})
	}

	for _, bank := range field.Banks {
		for _, c := range field.ActiveOn(bank.Index) {
			if c.Dead() {
				s.bc.Handlers.Switch.RequestSwitch(ctx, c, handlers.SwitchFaint)
			}
		}
	}
	_ = s.bc.Presenter.Wait(ctx)

	lifecycle.TurnEnded(ctx, s.bc.Publisher, field.Turn)
	if field.CheckKnockout() {
		return
	}
	if field.Turn >= s.cfg.MaxTurns {
		field.End(-1, battle.OutcomeTimeout)
		return
	}
	field.Turn++
}

func (s *Session) conclude(ctx context.Context) {
	outcome := s.field.Outcome
	text := "The battle ended in a draw."
	switch {
	case outcome.Reason == battle.OutcomeFled:
		text = "The wild opponent fled!"
	case outcome.Reason == battle.OutcomeTimeout:
		text = "The battle ran out of time."
	case outcome.Winner >= 0 && outcome.Winner < len(s.teams) && s.teams[outcome.Winner].Name != "":
		text = fmt.Sprintf("%s won the battle!", s.teams[outcome.Winner].Name)
	case outcome.Winner >= 0:
		text = fmt.Sprintf("Team %d won the battle!", outcome.Winner+1)
	}
	s.say(battle.MessageEnd, nil, text)
	lifecycle.BattleEnded(ctx, s.bc.Publisher, s.field.Turn, lifecycle.BattleEndedPayload{
		Winner: outcome.Winner,
		Reason: outcome.Reason,
	})
	_ = s.bc.Presenter.Wait(ctx)
	s.transition(ctx, eventConclude)
}

func (s *Session) say(kind battle.MessageKind, actor *battle.Combatant, text string) {
	msg := battle.Message{Kind: kind, Turn: s.field.Turn, Text: text}
	if actor != nil {
		msg.Actor = actor.ID
	}
	s.bc.Presenter.Present(msg)
}
