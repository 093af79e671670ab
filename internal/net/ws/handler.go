package ws

import (
	"log"
	nethttp "net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"pocket-arena/server/internal/net/intake"
	"pocket-arena/server/internal/net/proto"
	"pocket-arena/server/internal/session"
)

// Battle is the session surface the websocket handler drives.
type Battle interface {
	intake.Submitter
	Snapshot() session.State
}

type HandlerConfig struct {
	Logger *log.Logger
}

type Handler struct {
	battle   Battle
	feed     *Feed
	logger   *log.Logger
	upgrader websocket.Upgrader
}

func NewHandler(battle Battle, feed *Feed, cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *nethttp.Request) bool {
			return true
		},
	}

	return &Handler{
		battle:   battle,
		feed:     feed,
		logger:   logger,
		upgrader: upgrader,
	}
}

// Handle upgrades the request, greets the client with the battle state and
// the message history, then relays its actions to the battle.
func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	if h.battle == nil || h.feed == nil {
		nethttp.Error(w, "no battle running", nethttp.StatusServiceUnavailable)
		return
	}
	clientID := r.URL.Query().Get("id")
	if clientID == "" {
		clientID = uuid.NewString()
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("upgrade failed for %s: %v", clientID, err)
		return
	}

	sub, history := h.feed.Subscribe(clientID, conn)
	data, err := proto.EncodeJoinResponse(proto.JoinResponseV1{
		ID:      clientID,
		State:   h.battle.Snapshot(),
		History: len(history),
	})
	if err != nil {
		h.logger.Printf("failed to marshal join response for %s: %v", clientID, err)
		h.feed.release(clientID, sub)
		return
	}
	if err := sub.WriteMessage(websocket.TextMessage, data); err != nil {
		h.feed.release(clientID, sub)
		return
	}
	for _, data := range history {
		if err := sub.WriteMessage(websocket.TextMessage, data); err != nil {
			h.feed.release(clientID, sub)
			return
		}
	}

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			h.feed.release(clientID, sub)
			return
		}

		msg, err := proto.DecodeClientMessage(payload)
		if err != nil {
			h.logger.Printf("discarding malformed message from %s: %v", clientID, err)
			continue
		}

		normalizedSeq := uint64(0)
		if msg.CommandSeq != nil && *msg.CommandSeq > 0 {
			normalizedSeq = *msg.CommandSeq
		}

		write := func(data []byte, err error) bool {
			if err != nil {
				h.logger.Printf("failed to marshal response for %s: %v", clientID, err)
				return true
			}
			if err := sub.WriteMessage(websocket.TextMessage, data); err != nil {
				h.feed.release(clientID, sub)
				return false
			}
			return true
		}

		switch msg.Type {
		case proto.TypeMove, proto.TypeSwitch:
			if normalizedSeq > 0 {
				if last := sub.LastCommandSeq(); last > 0 && normalizedSeq <= last {
					if !write(proto.EncodeCommandAck(proto.CommandAck{Seq: normalizedSeq})) {
						return
					}
					continue
				}
			}
			_, ok, reason, retry := intake.StageClientAction(intake.CommandContext{Battle: h.battle}, msg)
			state := h.battle.Snapshot()
			if ok {
				if normalizedSeq > 0 {
					if !write(proto.EncodeCommandAck(proto.CommandAck{Seq: normalizedSeq, Turn: state.Turn})) {
						return
					}
					sub.StoreLastCommandSeq(normalizedSeq)
				}
				h.feed.BroadcastState(state)
				continue
			}
			if normalizedSeq > 0 {
				reject := proto.CommandReject{Seq: normalizedSeq, Reason: reason, Retry: retry, Turn: state.Turn}
				if !write(proto.EncodeCommandReject(reject)) {
					return
				}
			}
			if reason == intake.RejectInvalidAction {
				h.logger.Printf("invalid %s from %s", msg.Type, clientID)
			}
		case proto.TypeHeartbeat:
			now := time.Now()
			var rtt time.Duration
			if msg.SentAt > 0 {
				rtt = now.Sub(time.UnixMilli(msg.SentAt))
				if rtt < 0 {
					rtt = 0
				}
			}
			ack := proto.Heartbeat{
				ServerTime: now.UnixMilli(),
				ClientTime: msg.SentAt,
				RTTMillis:  rtt.Milliseconds(),
			}
			if !write(proto.EncodeHeartbeat(ack)) {
				return
			}
		default:
			h.logger.Printf("unknown message type %q from %s", msg.Type, clientID)
		}
	}
}
