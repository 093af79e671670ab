package ai

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed configs/*.json
var embeddedConfigs embed.FS

// GlobalLibrary provides the decision profiles bundled with the server.
var GlobalLibrary = MustLoadLibrary()

// Profile tunes how much of the battle an AI level takes into account.
type Profile struct {
	Name             string  `json:"name"`
	Level            int     `json:"level"`
	SeeEffectiveness bool    `json:"see_effectiveness"`
	SeePower         bool    `json:"see_power"`
	MistakeRate      float64 `json:"mistake_rate"`
}

func (p Profile) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("missing name")
	}
	if p.Level < 0 {
		return fmt.Errorf("negative level %d", p.Level)
	}
	if p.MistakeRate < 0 || p.MistakeRate > 1 {
		return fmt.Errorf("mistake rate %v outside [0, 1]", p.MistakeRate)
	}
	return nil
}

// Library stores profiles by name, ordered by level.
type Library struct {
	byName  map[string]Profile
	ordered []Profile
}

// MustLoadLibrary loads the embedded profiles and panics on failure.
func MustLoadLibrary() *Library {
	lib, err := LoadLibrary()
	if err != nil {
		panic(fmt.Errorf("ai: load library: %w", err))
	}
	return lib
}

// LoadLibrary loads the embedded profile configs.
func LoadLibrary() (*Library, error) {
	return loadLibrary(embeddedConfigs, "configs")
}

func loadLibrary(fsys fs.FS, dir string) (*Library, error) {
	lib := &Library{byName: make(map[string]Profile)}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("ai: read configs: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := fs.ReadFile(fsys, dir+"/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("ai: read %q: %w", entry.Name(), err)
		}
		var profile Profile
		if err := json.Unmarshal(data, &profile); err != nil {
			return nil, fmt.Errorf("ai: decode %q: %w", entry.Name(), err)
		}
		if err := profile.validate(); err != nil {
			return nil, fmt.Errorf("ai: profile %q: %w", entry.Name(), err)
		}
		name := strings.TrimSpace(strings.ToLower(profile.Name))
		if _, exists := lib.byName[name]; exists {
			return nil, fmt.Errorf("ai: duplicate profile %q", name)
		}
		profile.Name = name
		lib.byName[name] = profile
		lib.ordered = append(lib.ordered, profile)
	}

	sort.SliceStable(lib.ordered, func(i, j int) bool {
		return lib.ordered[i].Level < lib.ordered[j].Level
	})
	return lib, nil
}

// Profile returns the profile registered under name.
func (l *Library) Profile(name string) (Profile, bool) {
	if l == nil {
		return Profile{}, false
	}
	profile, ok := l.byName[strings.TrimSpace(strings.ToLower(name))]
	return profile, ok
}

// ForLevel returns the strongest profile whose level does not exceed level.
// Levels below every profile get the weakest one.
func (l *Library) ForLevel(level int) Profile {
	if l == nil || len(l.ordered) == 0 {
		return Profile{Name: "default", Level: level}
	}
	chosen := l.ordered[0]
	for _, profile := range l.ordered {
		if profile.Level > level {
			break
		}
		chosen = profile
	}
	return chosen
}
