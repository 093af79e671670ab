package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"pocket-arena/server/internal/battle"
	"pocket-arena/server/logging"
	"pocket-arena/server/stats"
)

const (
	DefaultSeed       = "arena"
	DefaultAddr       = ":8080"
	DefaultMaxTurns   = 200
	DefaultBufferSize = 512
	DefaultLevel      = 50
	DefaultIV         = 31

	// ControllerAI lets the chooser pick moves for a team.
	ControllerAI = "ai"
	// ControllerRemote waits for submitted actions.
	ControllerRemote = "remote"
)

// Config describes one arena process: the battle scenario it runs and the
// surfaces it exposes.
type Config struct {
	Seed     string        `yaml:"seed"`
	VsType   int           `yaml:"vs_type"`
	Trainer  bool          `yaml:"trainer"`
	AILevel  int           `yaml:"ai_level"`
	MaxTurns int           `yaml:"max_turns"`
	PacingMS int           `yaml:"pacing_ms"`
	Teams    []Team        `yaml:"teams"`
	Catalog  CatalogConfig `yaml:"catalog"`
	Logging  LoggingConfig `yaml:"logging"`
	HTTP     HTTPConfig    `yaml:"http"`
	Report   ReportConfig  `yaml:"report"`
}

type CatalogConfig struct {
	Paths []string `yaml:"paths"`
}

type LoggingConfig struct {
	Sinks      []string `yaml:"sinks"`
	FilePath   string   `yaml:"file_path"`
	BufferSize int      `yaml:"buffer_size"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

type ReportConfig struct {
	Database string `yaml:"database"`
}

// Team is one bank: its controller and party in order. The first VsType
// members start on the field.
type Team struct {
	Name       string   `yaml:"name"`
	Controller string   `yaml:"controller"`
	Members    []Member `yaml:"members"`
}

// Member is a combatant as authored in a scenario file.
type Member struct {
	ID       string     `yaml:"id"`
	Species  string     `yaml:"species"`
	Nickname string     `yaml:"nickname"`
	Level    int        `yaml:"level"`
	Types    []string   `yaml:"types"`
	Ability  string     `yaml:"ability"`
	Item     string     `yaml:"item"`
	Nature   string     `yaml:"nature"`
	IV       int        `yaml:"iv"`
	EV       int        `yaml:"ev"`
	Base     stats.Base `yaml:"base"`
	Moves    []string   `yaml:"moves"`
}

// Basis computes the member's battle stats.
func (m Member) Basis() stats.Basis {
	return stats.Compute(m.Base, m.Level, m.IV, m.EV, m.Nature)
}

// BattleTypes converts the authored types, at most three.
func (m Member) BattleTypes() [3]battle.Type {
	var out [3]battle.Type
	for i, name := range m.Types {
		if i >= len(out) {
			break
		}
		out[i] = battle.Type(strings.ToLower(strings.TrimSpace(name)))
	}
	return out
}

func DefaultConfig() Config {
	return Config{
		Seed:     DefaultSeed,
		VsType:   1,
		Trainer:  true,
		AILevel:  1,
		MaxTurns: DefaultMaxTurns,
		Catalog:  CatalogConfig{},
		Logging: LoggingConfig{
			Sinks:      []string{logging.SinkConsole},
			BufferSize: DefaultBufferSize,
		},
		HTTP: HTTPConfig{Addr: DefaultAddr},
	}
}

func (cfg Config) normalized() Config {
	normalized := cfg
	normalized.Seed = strings.TrimSpace(normalized.Seed)
	if normalized.Seed == "" {
		normalized.Seed = DefaultSeed
	}
	if normalized.VsType < 1 {
		normalized.VsType = 1
	}
	if normalized.VsType > 3 {
		normalized.VsType = 3
	}
	if normalized.AILevel < 0 {
		normalized.AILevel = 0
	}
	if normalized.MaxTurns <= 0 {
		normalized.MaxTurns = DefaultMaxTurns
	}
	if normalized.PacingMS < 0 {
		normalized.PacingMS = 0
	}
	if normalized.Logging.BufferSize <= 0 {
		normalized.Logging.BufferSize = DefaultBufferSize
	}
	if strings.TrimSpace(normalized.HTTP.Addr) == "" {
		normalized.HTTP.Addr = DefaultAddr
	}
	teams := make([]Team, len(normalized.Teams))
	for i, team := range normalized.Teams {
		teams[i] = team.normalized(i)
	}
	normalized.Teams = teams
	return normalized
}

func (cfg Config) Normalized() Config {
	return cfg.normalized()
}

func (t Team) normalized(index int) Team {
	normalized := t
	normalized.Controller = strings.ToLower(strings.TrimSpace(normalized.Controller))
	if normalized.Controller == "" {
		normalized.Controller = ControllerAI
	}
	if strings.TrimSpace(normalized.Name) == "" {
		normalized.Name = fmt.Sprintf("team-%d", index+1)
	}
	members := make([]Member, len(normalized.Members))
	for i, member := range normalized.Members {
		if member.Level <= 0 {
			member.Level = DefaultLevel
		}
		if member.IV == 0 {
			member.IV = DefaultIV
		}
		if strings.TrimSpace(member.ID) == "" {
			member.ID = fmt.Sprintf("%s-%d", normalized.Name, i+1)
		}
		members[i] = member
	}
	normalized.Members = members
	return normalized
}

// Pacing is the presentation delay as a duration.
func (cfg Config) Pacing() time.Duration {
	return time.Duration(cfg.PacingMS) * time.Millisecond
}

// LoggingConfig converts the logging section for the router.
func (cfg Config) LoggingConfig() logging.Config {
	out := logging.DefaultConfig()
	if len(cfg.Logging.Sinks) > 0 {
		out.EnabledSinks = append([]string(nil), cfg.Logging.Sinks...)
	}
	if cfg.Logging.BufferSize > 0 {
		out.BufferSize = cfg.Logging.BufferSize
	}
	out.JSON.FilePath = cfg.Logging.FilePath
	return out
}

// Validate checks the scenario is playable.
func (cfg Config) Validate() error {
	if len(cfg.Teams) != 2 {
		return fmt.Errorf("config: expected 2 teams, got %d", len(cfg.Teams))
	}
	seen := make(map[string]struct{})
	for _, team := range cfg.Teams {
		switch team.Controller {
		case ControllerAI, ControllerRemote:
		default:
			return fmt.Errorf("config: team %q has unknown controller %q", team.Name, team.Controller)
		}
		if len(team.Members) == 0 {
			return fmt.Errorf("config: team %q has no members", team.Name)
		}
		for _, member := range team.Members {
			if _, dup := seen[member.ID]; dup {
				return fmt.Errorf("config: duplicate member id %q", member.ID)
			}
			seen[member.ID] = struct{}{}
			if len(member.Moves) == 0 {
				return fmt.Errorf("config: member %q has no moves", member.ID)
			}
			if len(member.Moves) > 4 {
				return fmt.Errorf("config: member %q has %d moves, at most 4 allowed", member.ID, len(member.Moves))
			}
			for _, t := range member.BattleTypes() {
				if !t.Valid() {
					return fmt.Errorf("config: member %q has unknown type %q", member.ID, t)
				}
			}
		}
	}
	return nil
}

// Load reads a YAML file over the defaults, then normalizes and validates
// the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults.
func Parse(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	cfg = cfg.normalized()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

//go:embed demo.yaml
var demoScenario []byte

// Demo returns the bundled scenario used when no file is configured.
func Demo() (Config, error) {
	return Parse(demoScenario)
}
