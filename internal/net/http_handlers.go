package net

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	nethttp "net/http"
	"strconv"
	"time"

	"pocket-arena/server/internal/battle"
	"pocket-arena/server/internal/catalog"
	"pocket-arena/server/internal/net/intake"
	"pocket-arena/server/internal/net/proto"
	"pocket-arena/server/internal/net/ws"
	"pocket-arena/server/internal/observability"
	"pocket-arena/server/internal/report"
)

// Catalog lists the loaded move definitions. *catalog.Resolver satisfies it.
type Catalog interface {
	Definitions() []*battle.Definition
}

// Reports reads the battle report store. *report.Store satisfies it.
type Reports interface {
	Recent(ctx context.Context, limit int) ([]report.MoveRecord, error)
	Battles(ctx context.Context) ([]report.BattleRecord, error)
	Summary(ctx context.Context, battleID string) (report.Summary, error)
}

// Counters exposes named counters. *telemetry.Counters satisfies it.
type Counters interface {
	Snapshot() map[string]uint64
}

type HTTPHandlerConfig struct {
	Battle        ws.Battle
	Feed          *ws.Feed
	Catalog       Catalog
	Reports       Reports
	Counters      Counters
	ClientDir     string
	Logger        *log.Logger
	Observability observability.Config
}

func NewHTTPHandler(cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		payload := struct {
			Status      string `json:"status"`
			ServerTime  int64  `json:"serverTime"`
			Battle      any    `json:"battle,omitempty"`
			Subscribers int    `json:"subscribers"`
			History     int    `json:"history"`
			Moves       int    `json:"moves"`
		}{
			Status:     "ok",
			ServerTime: time.Now().UnixMilli(),
		}
		if cfg.Battle != nil {
			state := cfg.Battle.Snapshot()
			payload.Battle = struct {
				ID    string `json:"id"`
				Turn  int    `json:"turn"`
				Phase string `json:"phase"`
			}{state.ID, state.Turn, state.Phase}
		}
		if cfg.Feed != nil {
			payload.Subscribers = cfg.Feed.Subscribers()
			payload.History = cfg.Feed.HistoryLen()
		}
		if cfg.Catalog != nil {
			payload.Moves = len(cfg.Catalog.Definitions())
		}
		writeJSON(w, payload)
	})

	mux.HandleFunc("/battle", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		if cfg.Battle == nil {
			httpError(w, "no battle running", nethttp.StatusServiceUnavailable)
			return
		}
		data, err := proto.EncodeState(cfg.Battle.Snapshot())
		if err != nil {
			httpError(w, "failed to encode", nethttp.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	mux.HandleFunc("/battle/actions", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		if cfg.Battle == nil {
			httpError(w, "no battle running", nethttp.StatusServiceUnavailable)
			return
		}
		defer r.Body.Close()
		payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
		if err != nil {
			httpError(w, "invalid payload", nethttp.StatusBadRequest)
			return
		}
		msg, err := proto.DecodeClientMessage(payload)
		if err != nil {
			httpError(w, "invalid payload", nethttp.StatusBadRequest)
			return
		}

		var seq uint64
		if msg.CommandSeq != nil {
			seq = *msg.CommandSeq
		}
		_, ok, reason, retry := intake.StageClientAction(intake.CommandContext{Battle: cfg.Battle}, msg)
		state := cfg.Battle.Snapshot()
		if !ok {
			data, err := proto.EncodeCommandReject(proto.CommandReject{Seq: seq, Reason: reason, Retry: retry, Turn: state.Turn})
			if err != nil {
				httpError(w, "failed to encode", nethttp.StatusInternalServerError)
				return
			}
			status := nethttp.StatusConflict
			if reason == intake.RejectInvalidAction {
				status = nethttp.StatusBadRequest
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			w.Write(data)
			return
		}
		if cfg.Feed != nil {
			cfg.Feed.BroadcastState(state)
		}
		data, err := proto.EncodeCommandAck(proto.CommandAck{Seq: seq, Turn: state.Turn})
		if err != nil {
			httpError(w, "failed to encode", nethttp.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	mux.HandleFunc("/moves", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		defs := []*battle.Definition{}
		if cfg.Catalog != nil {
			defs = append(defs, cfg.Catalog.Definitions()...)
		}
		writeJSON(w, struct {
			Moves []*battle.Definition `json:"moves"`
		}{Moves: defs})
	})

	mux.HandleFunc("/moves/schema", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, catalog.Schema())
	})

	mux.HandleFunc("/metrics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		counters := map[string]uint64{}
		if cfg.Counters != nil {
			counters = cfg.Counters.Snapshot()
		}
		writeJSON(w, struct {
			Counters map[string]uint64 `json:"counters"`
		}{Counters: counters})
	})

	mux.HandleFunc("/reports", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		if cfg.Reports == nil {
			httpError(w, "reports disabled", nethttp.StatusNotFound)
			return
		}
		ctx := r.Context()
		if battleID := r.URL.Query().Get("battle"); battleID != "" {
			summary, err := cfg.Reports.Summary(ctx, battleID)
			if errors.Is(err, report.ErrNotFound) {
				httpError(w, "unknown battle", nethttp.StatusNotFound)
				return
			}
			if err != nil {
				logger.Printf("report summary for %s failed: %v", battleID, err)
				httpError(w, "report unavailable", nethttp.StatusInternalServerError)
				return
			}
			writeJSON(w, summary)
			return
		}

		limit := 50
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				httpError(w, "invalid limit", nethttp.StatusBadRequest)
				return
			}
			limit = parsed
		}
		moves, err := cfg.Reports.Recent(ctx, limit)
		if err != nil {
			logger.Printf("recent reports failed: %v", err)
			httpError(w, "report unavailable", nethttp.StatusInternalServerError)
			return
		}
		battles, err := cfg.Reports.Battles(ctx)
		if err != nil {
			logger.Printf("battle reports failed: %v", err)
			httpError(w, "report unavailable", nethttp.StatusInternalServerError)
			return
		}
		writeJSON(w, struct {
			Moves   []report.MoveRecord   `json:"moves"`
			Battles []report.BattleRecord `json:"battles"`
		}{Moves: moves, Battles: battles})
	})

	wsHandler := ws.NewHandler(cfg.Battle, cfg.Feed, ws.HandlerConfig{Logger: logger})
	mux.HandleFunc("/ws", wsHandler.Handle)

	if observability.Register(mux, cfg.Observability) {
		logger.Printf("pprof endpoints enabled under /debug/pprof/")
	}

	if cfg.ClientDir != "" {
		fs := nethttp.FileServer(nethttp.Dir(cfg.ClientDir))
		mux.Handle("/", fs)
	}

	return mux
}

func writeJSON(w nethttp.ResponseWriter, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		httpError(w, "failed to encode", nethttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func httpError(w nethttp.ResponseWriter, msg string, code int) {
	nethttp.Error(w, msg, code)
}
