package battle

import "context"

// MessageKind tags a presentation message.
type MessageKind string

const (
	MessageUsage     MessageKind = "usage"
	MessageText      MessageKind = "text"
	MessageFailure   MessageKind = "failure"
	MessageMiss      MessageKind = "miss"
	MessageImmune    MessageKind = "immune"
	MessageDamage    MessageKind = "damage"
	MessageCritical  MessageKind = "critical"
	MessageEffective MessageKind = "effectiveness"
	MessageHeal      MessageKind = "heal"
	MessageStat      MessageKind = "stat"
	MessageStatus    MessageKind = "status"
	MessageEffect    MessageKind = "effect"
	MessageHitCount  MessageKind = "hit_count"
	MessageAnimation MessageKind = "animation"
	MessageSwitch    MessageKind = "switch"
	MessageFaint     MessageKind = "faint"
	MessageField     MessageKind = "field"
	MessageEnd       MessageKind = "end"
)

// Message is one presentation cue.
type Message struct {
	Kind    MessageKind `json:"kind"`
	Turn    int         `json:"turn"`
	Text    string      `json:"text,omitempty"`
	Actor   string      `json:"actor,omitempty"`
	Targets []string    `json:"targets,omitempty"`
	Move    string      `json:"move,omitempty"`
	Amount  int         `json:"amount,omitempty"`
}

// Presenter receives presentation cues. Present does not block; Wait blocks
// until playback of everything presented so far has finished.
type Presenter interface {
	Present(msg Message)
	Wait(ctx context.Context) error
}

type nopPresenter struct{}

func (nopPresenter) Present(Message)            {}
func (nopPresenter) Wait(context.Context) error { return nil }

func NopPresenter() Presenter {
	return nopPresenter{}
}

// PresenterFunc adapts a function into a Presenter without pacing.
type PresenterFunc func(msg Message)

func (f PresenterFunc) Present(msg Message) {
	if f == nil {
		return
	}
	f(msg)
}

func (f PresenterFunc) Wait(context.Context) error { return nil }

// IDs returns the ids of the combatants.
func IDs(combatants []*Combatant) []string {
	if len(combatants) == 0 {
		return nil
	}
	out := make([]string, 0, len(combatants))
	for _, c := range combatants {
		if c != nil {
			out = append(out, c.ID)
		}
	}
	return out
}
