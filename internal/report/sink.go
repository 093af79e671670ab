package report

import (
	"context"
	"sync"
	"time"

	"pocket-arena/server/logging"
	lifecycle "pocket-arena/server/logging/lifecycle"
	movelog "pocket-arena/server/logging/moves"
)

type invocation struct {
	hits     int
	critical int
	reason   string
}

// Sink turns move events into report rows. Damage and failure events are
// folded into the row written when the move resolves.
type Sink struct {
	store   *Store
	timeout time.Duration

	mu      sync.Mutex
	pending map[string]*invocation
}

func NewSink(store *Store) *Sink {
	return &Sink{store: store, timeout: 5 * time.Second, pending: make(map[string]*invocation)}
}

func (s *Sink) Write(event logging.Event) error {
	switch event.Type {
	case movelog.EventDamage:
		payload, ok := event.Payload.(movelog.DamagePayload)
		if !ok {
			return nil
		}
		inv := s.invocation(event)
		s.mu.Lock()
		inv.hits++
		if payload.Critical {
			inv.critical++
		}
		s.mu.Unlock()
	case movelog.EventFailed:
		payload, ok := event.Payload.(movelog.FailedPayload)
		if !ok {
			return nil
		}
		inv := s.invocation(event)
		s.mu.Lock()
		inv.reason = payload.Reason
		s.mu.Unlock()
	case movelog.EventResolved:
		payload, ok := event.Payload.(movelog.ResolvedPayload)
		if !ok {
			return nil
		}
		inv := s.take(event)
		record := &MoveRecord{
			BattleID:  event.BattleID,
			Turn:      event.Turn,
			User:      event.Actor.ID,
			Move:      payload.Move,
			Outcome:   OutcomeResolved,
			Success:   payload.Success,
			Damage:    payload.DamageDealt,
			Hits:      inv.hits,
			Critical:  inv.critical,
			Reason:    inv.reason,
			CreatedAt: event.Time,
		}
		if inv.reason != "" {
			record.Outcome = OutcomeFailed
		}
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		return s.store.CreateMove(ctx, record)
	case lifecycle.EventBattleEnded:
		payload, ok := event.Payload.(lifecycle.BattleEndedPayload)
		if !ok {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		return s.store.SaveBattle(ctx, &BattleRecord{
			BattleID:  event.BattleID,
			Turns:     event.Turn,
			Winner:    payload.Winner,
			Reason:    payload.Reason,
			CreatedAt: event.Time,
		})
	}
	return nil
}

func (s *Sink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = make(map[string]*invocation)
	return nil
}

func key(event logging.Event) string {
	return event.BattleID + "/" + event.Actor.ID
}

func (s *Sink) invocation(event logging.Event) *invocation {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.pending[key(event)]
	if !ok {
		inv = &invocation{}
		s.pending[key(event)] = inv
	}
	return inv
}

func (s *Sink) take(event logging.Event) invocation {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.pending[key(event)]
	if !ok {
		return invocation{}
	}
	delete(s.pending, key(event))
	return *inv
}
