package logging

import (
	"context"
	"time"
)

type EventType string

type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarn
	SeverityError
)

type EntityKind string

const (
	EntityKindUnknown   EntityKind = "unknown"
	EntityKindCombatant EntityKind = "combatant"
	EntityKindBank      EntityKind = "bank"
	EntityKindPosition  EntityKind = "position"
	EntityKindEffect    EntityKind = "effect"
	EntityKindField     EntityKind = "field"
)

// Event is one structured battle log record. Turn is the battle turn the
// event happened on; ActionID links it to the queued action being resolved.
type Event struct {
	Type     EventType      `json:"type"`
	Turn     int            `json:"turn"`
	Time     time.Time      `json:"time"`
	Actor    EntityRef      `json:"actor"`
	Targets  []EntityRef    `json:"targets,omitempty"`
	Severity Severity       `json:"severity"`
	Category string         `json:"category,omitempty"`
	Payload  any            `json:"payload,omitempty"`
	Extra    map[string]any `json:"extra,omitempty"`
	BattleID string         `json:"battleId,omitempty"`
	ActionID string         `json:"actionId,omitempty"`
}

type EntityRef struct {
	ID   string     `json:"id"`
	Kind EntityKind `json:"kind"`
}

const (
	CategoryMoves      = "moves"
	CategoryEffects    = "effects"
	CategoryCombatants = "combatants"
	CategoryLifecycle  = "lifecycle"
	CategorySystem     = "system"
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseSeverity maps a configured name to a severity, defaulting to info.
func ParseSeverity(name string) Severity {
	switch name {
	case "debug":
		return SeverityDebug
	case "warn":
		return SeverityWarn
	case "error":
		return SeverityError
	default:
		return SeverityInfo
	}
}

// Combatant builds a reference to a combatant id.
func Combatant(id string) EntityRef {
	return EntityRef{ID: id, Kind: EntityKindCombatant}
}

// Field is the reference used for field-wide actors.
func Field() EntityRef {
	return EntityRef{ID: "field", Kind: EntityKindField}
}

// Combatants builds references for a list of combatant ids.
func Combatants(ids []string) []EntityRef {
	if len(ids) == 0 {
		return nil
	}
	refs := make([]EntityRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, Combatant(id))
	}
	return refs
}

type Publisher interface {
	Publish(ctx context.Context, event Event)
}

type PublisherFunc func(ctx context.Context, event Event)

func (f PublisherFunc) Publish(ctx context.Context, event Event) {
	if f == nil {
		return
	}
	f(ctx, event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) {}

func NopPublisher() Publisher {
	return nopPublisher{}
}

type fieldPublisher struct {
	next   Publisher
	fields map[string]any
}

func (p *fieldPublisher) Publish(ctx context.Context, event Event) {
	if p.next == nil {
		return
	}
	if len(p.fields) > 0 {
		event = cloneForFields(event)
		if event.Extra == nil {
			event.Extra = make(map[string]any, len(p.fields))
		}
		for k, v := range p.fields {
			if _, exists := event.Extra[k]; !exists {
				event.Extra[k] = v
			}
		}
	}
	p.next.Publish(ctx, event)
}

func cloneForFields(event Event) Event {
	cloned := event
	if len(event.Targets) > 0 {
		cloned.Targets = append([]EntityRef(nil), event.Targets...)
	}
	if event.Extra != nil {
		copied := make(map[string]any, len(event.Extra))
		for k, v := range event.Extra {
			copied[k] = v
		}
		cloned.Extra = copied
	}
	return cloned
}

func WithFields(p Publisher, fields map[string]any) Publisher {
	if p == nil {
		return NopPublisher()
	}
	if len(fields) == 0 {
		return p
	}
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return &fieldPublisher{next: p, fields: copied}
}

func (e Event) WithExtra(key string, value any) Event {
	if e.Extra == nil {
		e.Extra = make(map[string]any, 1)
	}
	e.Extra[key] = value
	return e
}

type actionPublisher struct {
	next     Publisher
	actionID string
}

func (p *actionPublisher) Publish(ctx context.Context, event Event) {
	if p.next == nil {
		return
	}
	if event.ActionID == "" {
		event.ActionID = p.actionID
	}
	p.next.Publish(ctx, event)
}

// WithAction stamps actionID on every event that does not carry one.
func WithAction(p Publisher, actionID string) Publisher {
	if p == nil {
		return NopPublisher()
	}
	if actionID == "" {
		return p
	}
	return &actionPublisher{next: p, actionID: actionID}
}
