package report

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"pocket-arena/server/logging"
	lifecycle "pocket-arena/server/logging/lifecycle"
	movelog "pocket-arena/server/logging/moves"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "report.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewStore(db)
}

func moveEvent(eventType logging.EventType, actor string, turn int, payload any) logging.Event {
	return logging.Event{
		Type:     eventType,
		Turn:     turn,
		Time:     time.Unix(1700000000, 0),
		Actor:    logging.Combatant(actor),
		BattleID: "battle-1",
		Payload:  payload,
	}
}

func TestSinkFoldsDamageIntoResolvedRow(t *testing.T) {
	store := newStore(t)
	sink := NewSink(store)

	events := []logging.Event{
		moveEvent(movelog.EventUsed, "red-1", 1, movelog.UsedPayload{Move: "double_kick"}),
		moveEvent(movelog.EventDamage, "red-1", 1, movelog.DamagePayload{Move: "double_kick", Damage: 12, Critical: true}),
		moveEvent(movelog.EventDamage, "red-1", 1, movelog.DamagePayload{Move: "double_kick", Damage: 10}),
		moveEvent(movelog.EventResolved, "red-1", 1, movelog.ResolvedPayload{Move: "double_kick", Success: true, DamageDealt: 22}),
		moveEvent(movelog.EventFailed, "blue-1", 1, movelog.FailedPayload{Move: "thunder_wave", Reason: "immunity"}),
		moveEvent(movelog.EventResolved, "blue-1", 1, movelog.ResolvedPayload{Move: "thunder_wave"}),
	}
	for _, event := range events {
		if err := sink.Write(event); err != nil {
			t.Fatalf("write %s: %v", event.Type, err)
		}
	}

	records, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(records))
	}
	failed, hit := records[0], records[1]
	if hit.Move != "double_kick" || hit.Damage != 22 || hit.Hits != 2 || hit.Critical != 1 || hit.Outcome != OutcomeResolved {
		t.Fatalf("unexpected resolved row: %+v", hit)
	}
	if failed.Outcome != OutcomeFailed || failed.Reason != "immunity" || failed.Success {
		t.Fatalf("unexpected failed row: %+v", failed)
	}
}

func TestSummaryIncludesBattleResult(t *testing.T) {
	store := newStore(t)
	sink := NewSink(store)
	ctx := context.Background()

	for _, event := range []logging.Event{
		moveEvent(movelog.EventResolved, "red-1", 1, movelog.ResolvedPayload{Move: "tackle", Success: true, DamageDealt: 15}),
		moveEvent(movelog.EventResolved, "blue-1", 1, movelog.ResolvedPayload{Move: "tackle", Success: true, DamageDealt: 9}),
		moveEvent(movelog.EventResolved, "red-1", 2, movelog.ResolvedPayload{Move: "tackle", Success: true, DamageDealt: 20}),
		moveEvent(lifecycle.EventBattleEnded, "field", 2, lifecycle.BattleEndedPayload{Winner: 0, Reason: "knockout"}),
	} {
		if err := sink.Write(event); err != nil {
			t.Fatalf("write %s: %v", event.Type, err)
		}
	}

	summary, err := store.Summary(ctx, "battle-1")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Moves != 3 || summary.Damage != 44 || summary.ByUser["red-1"] != 35 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.Result == nil || summary.Result.Winner != 0 || summary.Result.Turns != 2 {
		t.Fatalf("expected knockout result, got %+v", summary.Result)
	}

	if err := store.SaveBattle(ctx, &BattleRecord{BattleID: "battle-1", Turns: 3, Winner: 1, Reason: "knockout"}); err != nil {
		t.Fatalf("save battle: %v", err)
	}
	battles, err := store.Battles(ctx)
	if err != nil {
		t.Fatalf("battles: %v", err)
	}
	if len(battles) != 1 || battles[0].Winner != 1 {
		t.Fatalf("expected replaced result, got %+v", battles)
	}
}

func TestSummaryUnknownBattle(t *testing.T) {
	store := newStore(t)
	if _, err := store.Summary(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
