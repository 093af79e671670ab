package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"pocket-arena/server/internal/battle"
	"pocket-arena/server/internal/moves"
)

type source interface {
	Load() ([]byte, error)
	Path() string
}

type fileSource struct {
	path string
}

func (f fileSource) Load() ([]byte, error) {
	return os.ReadFile(f.path)
}

func (f fileSource) Path() string {
	return f.path
}

// Entry is one resolved move: its normalized definition plus any extra JSON
// blocks authored next to it (descriptions, flavor text).
type Entry struct {
	ID         string
	Definition *battle.Definition
	Source     string
	Blocks     map[string]json.RawMessage
}

func (e Entry) clone() Entry {
	return Entry{
		ID:         e.ID,
		Definition: cloneDefinition(e.Definition),
		Source:     e.Source,
		Blocks:     cloneRawMap(e.Blocks),
	}
}

func cloneDefinition(def *battle.Definition) *battle.Definition {
	if def == nil {
		return nil
	}
	copied := *def
	copied.Statuses = append([]battle.StatusChance(nil), def.Statuses...)
	copied.Stages = append([]battle.StageMod(nil), def.Stages...)
	if def.Parameters != nil {
		copied.Parameters = make(map[string]int, len(def.Parameters))
		for key, value := range def.Parameters {
			copied.Parameters[key] = value
		}
	}
	return &copied
}

func cloneRawMap(src map[string]json.RawMessage) map[string]json.RawMessage {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]json.RawMessage, len(src))
	for key, value := range src {
		if len(value) == 0 {
			dst[key] = nil
			continue
		}
		copied := make(json.RawMessage, len(value))
		copy(copied, value)
		dst[key] = copied
	}
	return dst
}

// Resolver merges one or more move catalog sources into a stable lookup
// table. Call Reload to pick up on-disk changes.
type Resolver struct {
	mu      sync.RWMutex
	sources []source
	entries map[string]Entry
	reloads singleflight.Group
}

// DefaultPaths returns the canonical catalog locations relative to the server
// module root. Callers may pass these to Load.
func DefaultPaths() []string {
	candidates := []string{
		filepath.Join("config", "moves", "definitions.json"),
		filepath.Join("..", "config", "moves", "definitions.json"),
	}

	paths := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, candidate := range candidates {
		cleaned := filepath.Clean(candidate)
		if _, duplicate := seen[cleaned]; duplicate {
			continue
		}
		seen[cleaned] = struct{}{}
		paths = append(paths, cleaned)
	}
	return paths
}

// Load constructs a Resolver backed by the provided catalog file paths.
func Load(paths ...string) (*Resolver, error) {
	sources := make([]source, 0, len(paths))
	for _, path := range paths {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		sources = append(sources, fileSource{path: trimmed})
	}
	return NewResolver(sources...)
}

// NewResolver constructs a Resolver from arbitrary sources. Tests can supply
// in-memory sources while production code uses fileSource.
func NewResolver(sources ...source) (*Resolver, error) {
	r := &Resolver{
		sources: append([]source(nil), sources...),
		entries: make(map[string]Entry),
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-parses all catalog sources. Later sources override earlier ones.
// Concurrent callers share one parse. A failed reload keeps the previous
// entries.
func (r *Resolver) Reload() error {
	if r == nil {
		return nil
	}
	_, err, _ := r.reloads.Do("reload", func() (any, error) {
		return nil, r.reload()
	})
	return err
}

func (r *Resolver) reload() error {
	r.mu.RLock()
	sources := append([]source(nil), r.sources...)
	r.mu.RUnlock()

	entries := make(map[string]Entry)
	for _, src := range sources {
		data, err := src.Load()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("catalog: failed loading %s: %w", src.Path(), err)
		}
		documents, err := decodeEntries(data)
		if err != nil {
			return fmt.Errorf("catalog: failed parsing %s: %w", src.Path(), err)
		}
		seen := make(map[string]struct{}, len(documents))
		for _, doc := range documents {
			def := doc.Definition.Normalized()
			def.ID = strings.TrimSpace(def.ID)
			if def.ID == "" {
				return fmt.Errorf("catalog: entry missing id in %s", src.Path())
			}
			if _, dup := seen[def.ID]; dup {
				return fmt.Errorf("catalog: duplicate id %q in %s", def.ID, src.Path())
			}
			seen[def.ID] = struct{}{}
			if err := moves.Check(&def); err != nil {
				return fmt.Errorf("catalog: entry %q in %s: %w", def.ID, src.Path(), err)
			}
			entries[def.ID] = Entry{
				ID:         def.ID,
				Definition: &def,
				Source:     src.Path(),
				Blocks:     doc.Blocks,
			}
		}
	}

	r.mu.Lock()
	r.entries = entries
	r.mu.Unlock()
	return nil
}

// Resolve returns a copy of the definition stored under id.
func (r *Resolver) Resolve(id string) (*battle.Definition, bool) {
	entry, ok := r.Entry(id)
	if !ok {
		return nil, false
	}
	return entry.Definition, true
}

// Entry returns the catalog entry for id.
func (r *Resolver) Entry(id string) (Entry, bool) {
	if r == nil {
		return Entry{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[id]
	if !ok {
		return Entry{}, false
	}
	return entry.clone(), true
}

// Definitions returns copies of every definition ordered by id.
func (r *Resolver) Definitions() []*battle.Definition {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	defs := make([]*battle.Definition, 0, len(ids))
	for _, id := range ids {
		defs = append(defs, cloneDefinition(r.entries[id].Definition))
	}
	return defs
}

// Len reports the number of resolved moves.
func (r *Resolver) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// EntryDocument is a single catalog entry as it appears on disk: the move
// definition fields plus free-form blocks.
type EntryDocument struct {
	Definition battle.Definition
	Blocks     map[string]json.RawMessage
}

var definitionFields = []string{
	"id", "method", "type", "category", "power", "accuracy", "pp", "priority",
	"target", "criticalRate", "effectChance", "statuses", "stages", "flags",
	"recoilFactor", "drainRatio", "parameters",
}

func (e *EntryDocument) UnmarshalJSON(data []byte) error {
	var def battle.Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return err
	}
	var blocks map[string]json.RawMessage
	if err := json.Unmarshal(data, &blocks); err != nil {
		return err
	}
	for _, field := range definitionFields {
		delete(blocks, field)
	}
	if len(blocks) == 0 {
		blocks = nil
	}
	*e = EntryDocument{Definition: def, Blocks: blocks}
	return nil
}

func decodeEntries(data []byte) ([]EntryDocument, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	switch trimmed[0] {
	case '[':
		var entries []EntryDocument
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, err
		}
		return entries, nil
	case '{':
		var object map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &object); err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(object))
		for id := range object {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		entries := make([]EntryDocument, 0, len(ids))
		for _, id := range ids {
			var entry EntryDocument
			if err := json.Unmarshal(object[id], &entry); err != nil {
				return nil, fmt.Errorf("entry %q: %w", id, err)
			}
			if entry.Definition.ID == "" {
				entry.Definition.ID = id
			} else if entry.Definition.ID != id {
				return nil, fmt.Errorf("entry id %q does not match key %q", entry.Definition.ID, id)
			}
			entries = append(entries, entry)
		}
		return entries, nil
	default:
		return nil, fmt.Errorf("unexpected json token %q", string(trimmed[:1]))
	}
}
