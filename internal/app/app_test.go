package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"pocket-arena/server/internal/config"
	"pocket-arena/server/internal/telemetry"
	"pocket-arena/server/logging"
	lifecycle "pocket-arena/server/logging/lifecycle"
	loggingSinks "pocket-arena/server/logging/sinks"
)

func demoScenario(t *testing.T, sinks ...string) *config.Config {
	t.Helper()
	scenario, err := config.Demo()
	if err != nil {
		t.Fatalf("demo scenario: %v", err)
	}
	scenario.Catalog.Paths = []string{filepath.Join("..", "..", "config", "moves", "definitions.json")}
	scenario.Logging.Sinks = sinks
	scenario.PacingMS = 0
	scenario.MaxTurns = 30
	return &scenario
}

func quietLogger() telemetry.Logger {
	return telemetry.LoggerFunc(func(string, ...any) {})
}

func closeArena(t *testing.T, arena *Arena) {
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := arena.Close(ctx); err != nil {
			t.Errorf("close: %v", err)
		}
	})
}

func TestPlayRunsDemoToTheEnd(t *testing.T) {
	arena, err := Build(context.Background(), Config{
		Logger:   quietLogger(),
		Scenario: demoScenario(t, logging.SinkMemory),
		Output:   &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	closeArena(t, arena)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	outcome, err := arena.Play(ctx)
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if !outcome.Ended {
		t.Fatalf("expected the battle to end, got %+v", outcome)
	}
	if arena.Feed.HistoryLen() == 0 {
		t.Fatalf("expected presented messages in the feed history")
	}
	if arena.Counters.Get("session_turns_total") == 0 {
		t.Fatalf("expected turns to be counted")
	}

	memory, ok := arena.Router.Sink(logging.SinkMemory).(*loggingSinks.MemorySink)
	if !ok {
		t.Fatalf("expected memory sink to be registered")
	}
	ended := memory.OfType(lifecycle.EventBattleEnded)
	if len(ended) != 1 {
		t.Fatalf("expected one battle ended event, got %d", len(ended))
	}
	if ended[0].BattleID != arena.Session.ID {
		t.Fatalf("expected events tagged with battle %s, got %q", arena.Session.ID, ended[0].BattleID)
	}
}

func TestBuildWiresReportsAndHTTP(t *testing.T) {
	scenario := demoScenario(t, logging.SinkReport)
	scenario.Report.Database = filepath.Join(t.TempDir(), "report.db")

	arena, err := Build(context.Background(), Config{Logger: quietLogger(), Scenario: scenario})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	closeArena(t, arena)

	if arena.Reports == nil {
		t.Fatalf("expected the report store to be opened")
	}
	if arena.Catalog.Len() == 0 {
		t.Fatalf("expected moves in the catalog")
	}

	for _, path := range []string{"/health", "/battle", "/reports", "/moves"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		arena.Handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 from %s, got %d: %s", path, resp.Code, resp.Body.String())
		}
	}
}

func TestBuildRejectsUnknownMoves(t *testing.T) {
	scenario := demoScenario(t)
	scenario.Teams[0].Members[0].Moves = []string{"not_a_move"}
	if _, err := Build(context.Background(), Config{Logger: quietLogger(), Scenario: scenario}); err == nil {
		t.Fatalf("expected an error for an unknown move")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("ARENA_SEED", "env-seed")
	t.Setenv("ARENA_ADDR", ":9999")
	t.Setenv("ARENA_PACING_MS", "-4")
	t.Setenv("ARENA_REPORT_DB", "env.db")

	scenario := config.DefaultConfig()
	scenario.PacingMS = 250
	var logged []string
	applyEnv(&scenario, telemetry.LoggerFunc(func(format string, args ...any) {
		logged = append(logged, format)
	}))

	if scenario.Seed != "env-seed" || scenario.HTTP.Addr != ":9999" {
		t.Fatalf("expected seed and addr overrides, got %q %q", scenario.Seed, scenario.HTTP.Addr)
	}
	if scenario.PacingMS != 250 || len(logged) != 1 {
		t.Fatalf("expected negative pacing to be rejected and logged, got %d (%v)", scenario.PacingMS, logged)
	}
	if scenario.Report.Database != "env.db" || !scenario.LoggingConfig().HasSink(logging.SinkReport) {
		t.Fatalf("expected report sink enabled for ARENA_REPORT_DB")
	}
}
