package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"pocket-arena/server/internal/ai"
	"pocket-arena/server/internal/battle"
	"pocket-arena/server/internal/catalog"
	"pocket-arena/server/internal/config"
	servernet "pocket-arena/server/internal/net"
	"pocket-arena/server/internal/net/ws"
	"pocket-arena/server/internal/observability"
	"pocket-arena/server/internal/presentation"
	"pocket-arena/server/internal/report"
	"pocket-arena/server/internal/session"
	"pocket-arena/server/internal/telemetry"
	"pocket-arena/server/logging"
	loggingSinks "pocket-arena/server/logging/sinks"
)

const shutdownTimeout = 5 * time.Second

type Config struct {
	Logger telemetry.Logger
	// Scenario overrides the scenario file. ARENA_CONFIG names one;
	// without either the bundled demo runs.
	Scenario  *config.Config
	ClientDir string
	// Output receives the console sink. Defaults to stdout.
	Output        io.Writer
	Observability observability.Config
}

// Arena is one wired battle process.
type Arena struct {
	Scenario config.Config
	Session  *session.Session
	Feed     *ws.Feed
	Router   *logging.Router
	Counters *telemetry.Counters
	Catalog  *catalog.Resolver
	Reports  *report.Store
	Handler  http.Handler

	logger  telemetry.Logger
	closers []func(context.Context) error
}

func Run(ctx context.Context, cfg Config) error {
	arena, err := Build(ctx, cfg)
	if err != nil {
		return err
	}
	logger := arena.logger
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if cerr := arena.Close(closeCtx); cerr != nil {
			logger.Printf("failed to close arena: %v", cerr)
		}
	}()

	srv := &http.Server{Addr: arena.Scenario.HTTP.Addr, Handler: arena.Handler}
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Printf("server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	group.Go(func() error {
		outcome, err := arena.Play(groupCtx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		logger.Printf("battle %s ended: winner=%d reason=%s", arena.Session.ID, outcome.Winner, outcome.Reason)
		return nil
	})
	return group.Wait()
}

// Build loads the scenario and wires the session to its surfaces.
func Build(ctx context.Context, cfg Config) (*Arena, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.WrapLogger(log.Default())
	}
	fallbackLogger := log.Default()
	if provider, ok := logger.(interface{ StandardLogger() *log.Logger }); ok {
		if candidate := provider.StandardLogger(); candidate != nil {
			fallbackLogger = candidate
		}
	}

	scenario, err := loadScenario(cfg, logger)
	if err != nil {
		return nil, err
	}
	applyEnv(&scenario, logger)
	observabilityCfg := cfg.Observability
	if raw := os.Getenv("ARENA_PPROF"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			observabilityCfg.EnablePprof = value
		} else {
			logger.Printf("invalid ARENA_PPROF=%q: %v", raw, err)
		}
	}

	arena := &Arena{Scenario: scenario, Counters: telemetry.NewCounters(), logger: logger}
	ok := false
	defer func() {
		if !ok {
			_ = arena.Close(ctx)
		}
	}()

	paths := scenario.Catalog.Paths
	if len(paths) == 0 {
		paths = catalog.DefaultPaths()
	}
	resolver, err := catalog.Load(paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load move catalog: %w", err)
	}
	if resolver.Len() == 0 {
		return nil, fmt.Errorf("no moves found in %v", paths)
	}
	arena.Catalog = resolver

	teams, err := session.TeamsFromConfig(scenario, resolver)
	if err != nil {
		return nil, err
	}

	battleID := uuid.NewString()
	logConfig := scenario.LoggingConfig()
	logConfig.BattleID = battleID
	namedSinks, err := arena.sinks(scenario, logConfig, cfg.Output)
	if err != nil {
		return nil, err
	}
	router, err := logging.NewRouter(logging.ClockFunc(time.Now), logConfig, fallbackLogger, namedSinks)
	if err != nil {
		return nil, fmt.Errorf("failed to construct logging router: %w", err)
	}
	arena.Router = router
	arena.closers = append([]func(context.Context) error{router.Close}, arena.closers...)

	arena.Feed = ws.NewFeed(ws.FeedConfig{Logger: fallbackLogger})
	sessionCfg := session.ConfigFromScenario(scenario)
	sessionCfg.ID = battleID
	sessionCfg.Profile = ai.GlobalLibrary.ForLevel(scenario.AILevel)
	sessionCfg.Presenter = presentation.NewPaced(presentation.Fanout(arena.Feed), scenario.Pacing())
	sessionCfg.Publisher = router
	sessionCfg.Metrics = arena.Counters
	sessionCfg.Logger = logger
	arena.Session, err = session.New(sessionCfg, teams)
	if err != nil {
		return nil, err
	}

	handlerCfg := servernet.HTTPHandlerConfig{
		Battle:        arena.Session,
		Feed:          arena.Feed,
		Catalog:       resolver,
		Counters:      arena.Counters,
		ClientDir:     cfg.ClientDir,
		Logger:        fallbackLogger,
		Observability: observabilityCfg,
	}
	if arena.Reports != nil {
		handlerCfg.Reports = arena.Reports
	}
	arena.Handler = servernet.NewHTTPHandler(handlerCfg)

	ok = true
	return arena, nil
}

// Play runs the battle to its end, broadcasting the state after every turn.
func (a *Arena) Play(ctx context.Context) (battle.Outcome, error) {
	a.Session.Start(ctx)
	a.Feed.BroadcastState(a.Session.Snapshot())
	for !a.Session.Over() {
		if err := a.Session.RunTurn(ctx); err != nil {
			return a.Session.Outcome(), err
		}
		a.Feed.BroadcastState(a.Session.Snapshot())
	}
	if err := a.Router.Flush(ctx); err != nil {
		a.logger.Printf("failed to flush battle events: %v", err)
	}
	return a.Session.Outcome(), nil
}

// Close releases the router, sinks and database in reverse order of
// construction.
func (a *Arena) Close(ctx context.Context) error {
	var errs []error
	for _, closer := range a.closers {
		if err := closer(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *Arena) sinks(scenario config.Config, logConfig logging.Config, output io.Writer) ([]logging.NamedSink, error) {
	if output == nil {
		output = os.Stdout
	}
	var named []logging.NamedSink
	for _, name := range logConfig.EnabledSinks {
		switch name {
		case logging.SinkConsole:
			named = append(named, logging.NamedSink{Name: name, Sink: loggingSinks.NewConsoleSink(output)})
		case logging.SinkJSON:
			var w io.Writer = output
			if path := logConfig.JSON.FilePath; path != "" {
				if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
					return nil, fmt.Errorf("create log directory: %w", err)
				}
				file, err := os.Create(path)
				if err != nil {
					return nil, fmt.Errorf("open json log: %w", err)
				}
				a.closers = append([]func(context.Context) error{func(context.Context) error { return file.Close() }}, a.closers...)
				w = file
			}
			named = append(named, logging.NamedSink{Name: name, Sink: loggingSinks.NewJSON(w, logConfig.JSON.FlushInterval)})
		case logging.SinkMemory:
			named = append(named, logging.NamedSink{Name: name, Sink: loggingSinks.NewMemorySink()})
		case logging.SinkReport:
			store, err := a.openReports(scenario.Report.Database)
			if err != nil {
				return nil, err
			}
			named = append(named, logging.NamedSink{Name: name, Sink: report.NewSink(store)})
		default:
			a.logger.Printf("unknown logging sink %q ignored", name)
		}
	}
	return named, nil
}

func (a *Arena) openReports(dsn string) (*report.Store, error) {
	if dsn == "" {
		dsn = "arena-report.db"
	}
	db, err := report.Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open report database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to open report database: %w", err)
	}
	a.closers = append([]func(context.Context) error{func(context.Context) error { return sqlDB.Close() }}, a.closers...)
	a.Reports = report.NewStore(db)
	return a.Reports, nil
}

func loadScenario(cfg Config, logger telemetry.Logger) (config.Config, error) {
	if cfg.Scenario != nil {
		return *cfg.Scenario, nil
	}
	if path := os.Getenv("ARENA_CONFIG"); path != "" {
		scenario, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		logger.Printf("loaded scenario %s", path)
		return scenario, nil
	}
	return config.Demo()
}

func applyEnv(scenario *config.Config, logger telemetry.Logger) {
	if raw := os.Getenv("ARENA_SEED"); raw != "" {
		scenario.Seed = raw
	}
	if raw := os.Getenv("ARENA_ADDR"); raw != "" {
		scenario.HTTP.Addr = raw
	}
	if raw := os.Getenv("ARENA_PACING_MS"); raw != "" {
		if value, err := nonNegative(raw); err == nil {
			scenario.PacingMS = value
		} else {
			logger.Printf("invalid ARENA_PACING_MS=%q: %v", raw, err)
		}
	}
	if raw := os.Getenv("ARENA_MAX_TURNS"); raw != "" {
		if value, err := nonNegative(raw); err == nil && value > 0 {
			scenario.MaxTurns = value
		} else if err != nil {
			logger.Printf("invalid ARENA_MAX_TURNS=%q: %v", raw, err)
		}
	}
	if raw := os.Getenv("ARENA_REPORT_DB"); raw != "" {
		scenario.Report.Database = raw
		if !scenario.LoggingConfig().HasSink(logging.SinkReport) {
			scenario.Logging.Sinks = append(scenario.Logging.Sinks, logging.SinkReport)
		}
	}
}

func nonNegative(raw string) (int, error) {
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if value < 0 {
		return 0, fmt.Errorf("must not be negative")
	}
	return value, nil
}
