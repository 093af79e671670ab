// Package session runs one battle turn by turn: it collects an action for
// every combatant on the board, resolves the queue through the move pipeline
// and performs the end-of-turn bookkeeping.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/looplab/fsm"

	"pocket-arena/server/internal/ai"
	"pocket-arena/server/internal/battle"
	"pocket-arena/server/internal/effects"
	"pocket-arena/server/internal/handlers"
	"pocket-arena/server/internal/moves"
	"pocket-arena/server/internal/telemetry"
	"pocket-arena/server/logging"
	lifecycle "pocket-arena/server/logging/lifecycle"
)

// Turn phases.
const (
	PhaseChoosing  = "choosing"
	PhaseResolving = "resolving"
	PhaseEnding    = "ending"
	PhaseOver      = "over"
)

const (
	eventResolve  = "resolve"
	eventEndTurn  = "end_turn"
	eventNextTurn = "next_turn"
	eventConclude = "conclude"
)

// Controller decides who picks the actions of a team.
type Controller string

const (
	ControllerAI     Controller = "ai"
	ControllerRemote Controller = "remote"
)

const DefaultMaxTurns = 200

var (
	ErrWrongPhase    = errors.New("session: actions are only accepted while choosing")
	ErrUnknownActor  = errors.New("session: unknown combatant")
	ErrNotControlled = errors.New("session: combatant is not remotely controlled")
	ErrActionForced  = errors.New("session: combatant is locked into a move")
	ErrUnknownMove   = errors.New("session: move not in the combatant's moveset")
	ErrMoveDisabled  = errors.New("session: move is disabled")
	ErrInvalidTarget = errors.New("session: invalid target")
	ErrInvalidSwitch = errors.New("session: invalid switch")
	ErrBattleOver    = errors.New("session: battle is over")
	ErrInvalidTeams  = errors.New("session: invalid teams")
)

const (
	metricTurns       = "session_turns_total"
	metricActions     = "session_actions_total"
	metricAutoActions = "session_auto_actions_total"
)

// Team is one bank as it enters the battle.
type Team struct {
	Name       string
	Controller Controller
	Members    []*battle.Combatant
}

// Config tunes a session. Nil collaborators fall back to no-ops.
type Config struct {
	ID        string
	Seed      string
	VsType    int
	Trainer   bool
	MaxTurns  int
	Profile   ai.Profile
	Presenter battle.Presenter
	Publisher logging.Publisher
	Metrics   telemetry.Metrics
	Logger    telemetry.Logger
}

func (cfg Config) normalized() Config {
	normalized := cfg
	if strings.TrimSpace(normalized.ID) == "" {
		normalized.ID = uuid.NewString()
	}
	if strings.TrimSpace(normalized.Seed) == "" {
		normalized.Seed = battle.DefaultSeed
	}
	if normalized.VsType < 1 {
		normalized.VsType = 1
	}
	if normalized.MaxTurns <= 0 {
		normalized.MaxTurns = DefaultMaxTurns
	}
	if normalized.Presenter == nil {
		normalized.Presenter = battle.NopPresenter()
	}
	if normalized.Publisher == nil {
		normalized.Publisher = logging.NopPublisher()
	}
	if normalized.Metrics == nil {
		normalized.Metrics = telemetry.NopMetrics()
	}
	if normalized.Logger == nil {
		normalized.Logger = telemetry.LoggerFunc(func(string, ...any) {})
	}
	return normalized
}

// Session owns the field of one battle. It is safe for concurrent use:
// submissions may arrive from other goroutines while Run waits for them.
type Session struct {
	ID string

	cfg         Config
	mu          sync.Mutex
	field       *battle.Field
	bc          *moves.BattleContext
	phase       *fsm.FSM
	chooser     *ai.Chooser
	teams       []Team
	pending     map[string]*battle.Action
	submitted   chan struct{}
	attackOrder int
	started     bool
}

// New builds a session for two or more teams. The first VsType members of
// each team start on the board.
func New(cfg Config, teams []Team) (*Session, error) {
	cfg = cfg.normalized()
	if len(teams) < 2 {
		return nil, fmt.Errorf("%w: expected at least 2 teams, got %d", ErrInvalidTeams, len(teams))
	}
	seen := make(map[string]struct{})
	for i, team := range teams {
		if len(team.Members) == 0 {
			return nil, fmt.Errorf("%w: team %d has no members", ErrInvalidTeams, i)
		}
		for _, member := range team.Members {
			if member == nil {
				return nil, fmt.Errorf("%w: team %d has a nil member", ErrInvalidTeams, i)
			}
			if _, dup := seen[member.ID]; dup {
				return nil, fmt.Errorf("%w: duplicate combatant %q", ErrInvalidTeams, member.ID)
			}
			seen[member.ID] = struct{}{}
		}
	}

	teams = append([]Team(nil), teams...)
	field := battle.NewField(cfg.ID, len(teams), cfg.VsType, battle.NewStreams(cfg.Seed))
	field.Trainer = cfg.Trainer
	for i, team := range teams {
		if team.Controller == "" {
			teams[i].Controller = ControllerAI
		}
		for _, member := range team.Members {
			field.Join(i, member)
		}
	}

	bc := moves.NewBattleContext(field, cfg.Presenter, cfg.Publisher)
	bc.Metrics = cfg.Metrics
	bc.Prevention = append(bc.Prevention, statusPrevention)

	s := &Session{
		ID:        cfg.ID,
		cfg:       cfg,
		field:     field,
		bc:        bc,
		chooser:   ai.NewChooser(cfg.Profile),
		teams:     teams,
		pending:   make(map[string]*battle.Action),
		submitted: make(chan struct{}, 1),
	}
	bc.Queue.Speed = s.speed
	s.phase = fsm.NewFSM(
		PhaseChoosing,
		fsm.Events{
			{Name: eventResolve, Src: []string{PhaseChoosing}, Dst: PhaseResolving},
			{Name: eventEndTurn, Src: []string{PhaseResolving}, Dst: PhaseEnding},
			{Name: eventNextTurn, Src: []string{PhaseEnding}, Dst: PhaseChoosing},
			{Name: eventConclude, Src: []string{PhaseChoosing, PhaseResolving, PhaseEnding}, Dst: PhaseOver},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				s.cfg.Logger.Printf("[session] battle=%s turn=%d phase %s -> %s", s.ID, s.field.Turn, e.Src, e.Dst)
			},
		},
	)
	return s, nil
}

// Phase reports the current turn phase.
func (s *Session) Phase() string {
	return s.phase.Current()
}

// Field exposes the battle state. Callers must not mutate it while Run is
// active.
func (s *Session) Field() *battle.Field {
	return s.field
}

// Context returns the battle context hooks run with.
func (s *Session) Context() *moves.BattleContext {
	return s.bc
}

// Over reports whether the battle ended.
func (s *Session) Over() bool {
	return s.phase.Is(PhaseOver)
}

// Outcome returns the result once the battle is over.
func (s *Session) Outcome() battle.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.field.Outcome
}

func (s *Session) transition(ctx context.Context, event string) {
	if err := s.phase.Event(ctx, event); err != nil {
		var noTransition fsm.NoTransitionError
		if errors.As(err, &noTransition) {
			return
		}
		s.cfg.Logger.Printf("[session] battle=%s phase event %s failed: %v", s.ID, event, err)
	}
}

func (s *Session) combatant(id string) *battle.Combatant {
	for _, bank := range s.field.Banks {
		for _, c := range bank.Party {
			if c.ID == id {
				return c
			}
		}
	}
	return nil
}

func (s *Session) controller(bank int) Controller {
	if bank < 0 || bank >= len(s.teams) {
		return ControllerAI
	}
	return s.teams[bank].Controller
}

// SubmitMove records the move a remotely controlled combatant uses this turn.
// A disabled move is rejected with ErrMoveDisabled.
func (s *Session) SubmitMove(userID, moveID string, targetBank, targetPosition int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, err := s.submittable(userID)
	if err != nil {
		return err
	}
	slot := user.Slot(moveID)
	if slot == nil {
		return fmt.Errorf("%w: %s has no move %q", ErrUnknownMove, userID, moveID)
	}
	if reason := moves.Disabled(s.field, user, slot); reason != "" {
		return fmt.Errorf("%w: %s", ErrMoveDisabled, reason)
	}
	if !s.validTarget(user, slot.Def, targetBank, targetPosition) {
		return fmt.Errorf("%w: bank %d position %d", ErrInvalidTarget, targetBank, targetPosition)
	}
	s.record(&battle.Action{
		Kind:           battle.ActionAttack,
		User:           user,
		Slot:           slot,
		TargetBank:     targetBank,
		TargetPosition: targetPosition,
	})
	return nil
}

// SubmitSwitch records that a remotely controlled combatant leaves the board
// for a bench member this turn.
func (s *Session) SubmitSwitch(userID, withID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, err := s.submittable(userID)
	if err != nil {
		return err
	}
	with := s.combatant(withID)
	if with == nil || with.Bank != user.Bank || with.Active() || with.Dead() {
		return fmt.Errorf("%w: %s cannot replace %s", ErrInvalidSwitch, withID, userID)
	}
	for _, other := range s.pending {
		if other.Kind == battle.ActionSwitch && other.Replacement == with && other.User != user {
			return fmt.Errorf("%w: %s is already coming in", ErrInvalidSwitch, withID)
		}
	}
	if !s.bc.Handlers.Switch.CanSwitch(user, nil, handlers.SwitchChoice) {
		return fmt.Errorf("%w: %s cannot leave the board", ErrInvalidSwitch, userID)
	}
	s.record(&battle.Action{Kind: battle.ActionSwitch, User: user, Replacement: with})
	return nil
}

func (s *Session) submittable(userID string) (*battle.Combatant, error) {
	if s.phase.Is(PhaseOver) {
		return nil, ErrBattleOver
	}
	if !s.phase.Is(PhaseChoosing) {
		return nil, ErrWrongPhase
	}
	user := s.combatant(userID)
	if user == nil || !user.Active() || user.Dead() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownActor, userID)
	}
	if s.controller(user.Bank) != ControllerRemote {
		return nil, fmt.Errorf("%w: %q", ErrNotControlled, userID)
	}
	if data, _ := effects.Forced(user); data != nil {
		return nil, fmt.Errorf("%w: %q", ErrActionForced, userID)
	}
	return user, nil
}

func (s *Session) validTarget(user *battle.Combatant, def *battle.Definition, bank, position int) bool {
	if !def.OneTarget() || def.NoChoice() {
		return true
	}
	target := s.field.At(bank, position)
	if target == nil || target.Dead() {
		return false
	}
	resolved := moves.ResolveTargets(s.field, user, def, bank, position)
	return len(resolved) == 1 && resolved[0] == target
}

func (s *Session) record(action *battle.Action) {
	s.pending[action.User.ID] = action
	s.cfg.Metrics.Add(metricActions, 1)
	select {
	case s.submitted <- struct{}{}:
	default:
	}
}

// Pending lists the ids of board combatants still waiting for an action.
func (s *Session) Pending() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, c := range s.field.AllAlive() {
		if _, ok := s.pending[c.ID]; !ok && !s.automatic(c) {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// automatic reports whether the session picks c's action itself.
func (s *Session) automatic(c *battle.Combatant) bool {
	if data, _ := effects.Forced(c); data != nil {
		return true
	}
	return s.controller(c.Bank) != ControllerRemote
}

// Start announces the battle. Run calls it when needed.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.start(ctx)
}

func (s *Session) start(ctx context.Context) {
	if s.started {
		return
	}
	s.started = true
	lifecycle.BattleStarted(ctx, s.bc.Publisher, lifecycle.BattleStartedPayload{
		VsType: s.field.VsType,
		Seed:   s.cfg.Seed,
		Wild:   s.field.WildEncounter(),
	})
	for _, bank := range s.field.Banks {
		for _, c := range s.field.ActiveOn(bank.Index) {
			s.bc.Presenter.Present(battle.Message{
				Kind:  battle.MessageSwitch,
				Turn:  s.field.Turn,
				Actor: c.ID,
				Text:  fmt.Sprintf("%s was sent out!", c.Name()),
			})
		}
	}
}

// Run plays turns until the battle ends or ctx is cancelled.
func (s *Session) Run(ctx context.Context) (battle.Outcome, error) {
	s.Start(ctx)
	for !s.Over() {
		if err := s.RunTurn(ctx); err != nil {
			return s.Outcome(), err
		}
	}
	return s.Outcome(), nil
}
