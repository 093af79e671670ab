package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pocket-arena/server/internal/battle"
	"pocket-arena/server/logging"
)

const minimalScenario = `
teams:
  - name: red
    members:
      - species: charmander
        types: [Fire]
        base: {hp: 39, atk: 52, dfe: 43, spd: 65, ats: 60, dfs: 50}
        moves: [ember]
  - name: blue
    controller: Remote
    members:
      - species: squirtle
        types: [water]
        base: {hp: 44, atk: 48, dfe: 65, spd: 43, ats: 50, dfs: 64}
        moves: [water_gun]
`

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalScenario))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Seed != DefaultSeed {
		t.Fatalf("expected seed %q, got %q", DefaultSeed, cfg.Seed)
	}
	if cfg.VsType != 1 || !cfg.Trainer {
		t.Fatalf("expected trainer single battle, got vs %d trainer %v", cfg.VsType, cfg.Trainer)
	}
	if cfg.HTTP.Addr != DefaultAddr {
		t.Fatalf("expected addr %q, got %q", DefaultAddr, cfg.HTTP.Addr)
	}

	red := cfg.Teams[0]
	if red.Controller != ControllerAI {
		t.Fatalf("expected ai controller by default, got %q", red.Controller)
	}
	if cfg.Teams[1].Controller != ControllerRemote {
		t.Fatalf("expected controller to be lowercased, got %q", cfg.Teams[1].Controller)
	}
	member := red.Members[0]
	if member.ID != "red-1" {
		t.Fatalf("expected generated id red-1, got %q", member.ID)
	}
	if member.Level != DefaultLevel || member.IV != DefaultIV {
		t.Fatalf("expected level %d iv %d, got %d %d", DefaultLevel, DefaultIV, member.Level, member.IV)
	}
	if member.BattleTypes()[0] != battle.TypeFire {
		t.Fatalf("expected fire type, got %q", member.BattleTypes()[0])
	}
	if basis := member.Basis(); basis.MaxHP <= 0 || basis.Ats <= basis.Dfe {
		t.Fatalf("unexpected basis %+v", basis)
	}
}

func TestNormalizedClampsValues(t *testing.T) {
	cfg := Config{VsType: 7, AILevel: -2, MaxTurns: -1, PacingMS: -5}.Normalized()
	if cfg.VsType != 3 {
		t.Fatalf("expected vs type clamped to 3, got %d", cfg.VsType)
	}
	if cfg.AILevel != 0 || cfg.MaxTurns != DefaultMaxTurns || cfg.PacingMS != 0 {
		t.Fatalf("unexpected normalized config %+v", cfg)
	}
	if cfg.Logging.BufferSize != DefaultBufferSize {
		t.Fatalf("expected buffer size %d, got %d", DefaultBufferSize, cfg.Logging.BufferSize)
	}
}

func TestParseRejectsInvalidScenarios(t *testing.T) {
	cases := map[string]string{
		"one team": `
teams:
  - members: [{moves: [tackle]}]
`,
		"no moves":   strings.Replace(minimalScenario, "moves: [ember]", "moves: []", 1),
		"bad type":   strings.Replace(minimalScenario, "[Fire]", "[plasma]", 1),
		"controller": strings.Replace(minimalScenario, "controller: Remote", "controller: keyboard", 1),
		"too many moves": strings.Replace(minimalScenario, "moves: [ember]",
			"moves: [ember, tackle, growl, protect, dig]", 1),
		"duplicate ids": `
teams:
  - members: [{id: same, moves: [tackle]}]
  - members: [{id: same, moves: [tackle]}]
`,
		"not yaml": "teams: [",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(data)); err == nil {
				t.Fatalf("expected error")
			} else if !strings.HasPrefix(err.Error(), "config: ") {
				t.Fatalf("expected config prefix, got %v", err)
			}
		})
	}
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.yaml")
	data := minimalScenario + `
seed: fixed
pacing_ms: 250
logging:
  sinks: [json, memory]
  file_path: events.ndjson
report:
  database: reports.db
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write scenario: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Seed != "fixed" {
		t.Fatalf("expected seed fixed, got %q", cfg.Seed)
	}
	if cfg.Pacing() != 250*time.Millisecond {
		t.Fatalf("expected 250ms pacing, got %v", cfg.Pacing())
	}
	if cfg.Report.Database != "reports.db" {
		t.Fatalf("expected report database, got %q", cfg.Report.Database)
	}

	logCfg := cfg.LoggingConfig()
	if !logCfg.HasSink(logging.SinkJSON) || logCfg.HasSink(logging.SinkConsole) {
		t.Fatalf("expected configured sinks to replace the default, got %v", logCfg.EnabledSinks)
	}
	if logCfg.JSON.FilePath != "events.ndjson" {
		t.Fatalf("expected json file path, got %q", logCfg.JSON.FilePath)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestDemoScenario(t *testing.T) {
	cfg, err := Demo()
	if err != nil {
		t.Fatalf("Demo failed: %v", err)
	}
	if len(cfg.Teams) != 2 || len(cfg.Teams[0].Members) < 2 {
		t.Fatalf("expected two teams with a bench, got %+v", cfg.Teams)
	}
}
