// Package presentation holds the battle.Presenter implementations shared by
// the server: an in-memory recorder, a fan-out and a pacing wrapper.
package presentation

import (
	"context"
	"sync"
	"time"

	"pocket-arena/server/internal/battle"
)

// Recorder keeps every presented message. Wait never blocks.
type Recorder struct {
	mu       sync.Mutex
	messages []battle.Message
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Present(msg battle.Message) {
	r.mu.Lock()
	r.messages = append(r.messages, msg)
	r.mu.Unlock()
}

func (r *Recorder) Wait(context.Context) error { return nil }

// Messages copies the recorded messages.
func (r *Recorder) Messages() []battle.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]battle.Message(nil), r.messages...)
}

// Texts lists the non-empty texts in order.
func (r *Recorder) Texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.messages))
	for _, msg := range r.messages {
		if msg.Text != "" {
			out = append(out, msg.Text)
		}
	}
	return out
}

// Count returns how many messages of kind were presented.
func (r *Recorder) Count(kind battle.MessageKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, msg := range r.messages {
		if msg.Kind == kind {
			total++
		}
	}
	return total
}

// Said reports whether text was presented.
func (r *Recorder) Said(text string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, msg := range r.messages {
		if msg.Text == text {
			return true
		}
	}
	return false
}

// Reset drops the recorded messages.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.messages = nil
	r.mu.Unlock()
}

type fanout []battle.Presenter

// Fanout presents to every non-nil presenter in order. Wait waits for all of
// them and returns the first error.
func Fanout(presenters ...battle.Presenter) battle.Presenter {
	out := make(fanout, 0, len(presenters))
	for _, p := range presenters {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (f fanout) Present(msg battle.Message) {
	for _, p := range f {
		p.Present(msg)
	}
}

func (f fanout) Wait(ctx context.Context) error {
	var first error
	for _, p := range f {
		if err := p.Wait(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Paced delays Wait by delay for every message presented since the last
// Wait, so a viewer can follow the battle.
type Paced struct {
	next  battle.Presenter
	delay time.Duration

	mu      sync.Mutex
	pending int
}

func NewPaced(next battle.Presenter, delay time.Duration) *Paced {
	if next == nil {
		next = battle.NopPresenter()
	}
	return &Paced{next: next, delay: delay}
}

func (p *Paced) Present(msg battle.Message) {
	p.mu.Lock()
	p.pending++
	p.mu.Unlock()
	p.next.Present(msg)
}

func (p *Paced) Wait(ctx context.Context) error {
	p.mu.Lock()
	pending := p.pending
	p.pending = 0
	p.mu.Unlock()

	if err := p.next.Wait(ctx); err != nil {
		return err
	}
	if p.delay <= 0 || pending == 0 {
		return nil
	}
	timer := time.NewTimer(time.Duration(pending) * p.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
