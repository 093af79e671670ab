package ws

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"pocket-arena/server/internal/battle"
	"pocket-arena/server/internal/net/proto"
	"pocket-arena/server/internal/session"
)

const (
	writeWait = 10 * time.Second

	// DefaultHistoryLimit bounds the messages replayed to a late joiner.
	DefaultHistoryLimit = 512
)

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex

	lastCommandSeq uint64
}

func (s *subscriber) WriteMessage(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(messageType, data)
}

func (s *subscriber) LastCommandSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastCommandSeq
}

func (s *subscriber) StoreLastCommandSeq(seq uint64) {
	s.mu.Lock()
	if seq > s.lastCommandSeq {
		s.lastCommandSeq = seq
	}
	s.mu.Unlock()
}

type FeedConfig struct {
	Logger       *log.Logger
	HistoryLimit int
}

// Feed is a battle.Presenter that broadcasts every cue to the connected
// websocket clients and keeps a bounded history for late joiners.
type Feed struct {
	logger *log.Logger
	limit  int

	mu          sync.Mutex
	subscribers map[string]*subscriber
	history     [][]byte
}

func NewFeed(cfg FeedConfig) *Feed {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	limit := cfg.HistoryLimit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &Feed{
		logger:      logger,
		limit:       limit,
		subscribers: make(map[string]*subscriber),
	}
}

// Present encodes msg, records it and sends it to every subscriber.
func (f *Feed) Present(msg battle.Message) {
	data, err := proto.EncodeMessage(msg)
	if err != nil {
		f.logger.Printf("failed to marshal battle message: %v", err)
		return
	}
	f.mu.Lock()
	f.history = append(f.history, data)
	if over := len(f.history) - f.limit; over > 0 {
		f.history = append([][]byte(nil), f.history[over:]...)
	}
	f.mu.Unlock()
	f.broadcast(data)
}

// Wait returns immediately; pacing is layered on top of the feed.
func (f *Feed) Wait(context.Context) error { return nil }

// BroadcastState sends a snapshot of the battle to every subscriber.
func (f *Feed) BroadcastState(state session.State) {
	data, err := proto.EncodeState(state)
	if err != nil {
		f.logger.Printf("failed to marshal state message: %v", err)
		return
	}
	f.broadcast(data)
}

func (f *Feed) broadcast(data []byte) {
	f.mu.Lock()
	subs := make(map[string]*subscriber, len(f.subscribers))
	for id, sub := range f.subscribers {
		subs[id] = sub
	}
	f.mu.Unlock()

	for id, sub := range subs {
		if err := sub.WriteMessage(websocket.TextMessage, data); err != nil {
			f.logger.Printf("failed to send update to %s: %v", id, err)
			f.release(id, sub)
		}
	}
}

// Subscribe registers conn under id, replacing an older connection, and
// returns the history to replay.
func (f *Feed) Subscribe(id string, conn *websocket.Conn) (*subscriber, [][]byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.subscribers[id]; ok {
		existing.conn.Close()
	}
	sub := &subscriber{conn: conn}
	f.subscribers[id] = sub
	return sub, append([][]byte(nil), f.history...)
}

// Disconnect removes and closes the subscriber.
func (f *Feed) Disconnect(id string) {
	f.mu.Lock()
	sub := f.subscribers[id]
	f.mu.Unlock()
	if sub != nil {
		f.release(id, sub)
	}
}

// release drops sub unless a newer connection replaced it under id.
func (f *Feed) release(id string, sub *subscriber) {
	f.mu.Lock()
	if f.subscribers[id] == sub {
		delete(f.subscribers, id)
	}
	f.mu.Unlock()
	sub.conn.Close()
}

// Subscribers returns the number of connected clients.
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers)
}

// HistoryLen returns the number of buffered messages.
func (f *Feed) HistoryLen() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.history)
}
