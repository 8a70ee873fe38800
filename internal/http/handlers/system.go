package handlers

import (
	"context"
	"net/http"
	"time"

	"jobboard/internal/common"
	"jobboard/internal/http/metrics"
	"jobboard/internal/http/response"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type SystemHandler struct {
	collector *metrics.Collector
	db        Pinger
	started   time.Time
}

func NewSystemHandler(collector *metrics.Collector, db Pinger) *SystemHandler {
	return &SystemHandler{collector: collector, db: db, started: time.Now()}
}

func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"uptime":   time.Since(h.started).Round(time.Second).String(),
		"database": "memory",
	}
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			response.Error(w, common.NewError(common.CodeInternal, "database unavailable", err))
			return
		}
		status["database"] = "ok"
	}
	response.Message(w, http.StatusOK, "ok", status)
}

func (h *SystemHandler) Metrics(w http.ResponseWriter, _ *http.Request) {
	h.collector.WriteText(w)
}
