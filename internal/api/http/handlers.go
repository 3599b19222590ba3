package http

import (
	"context"
	"net/http"
	"strconv"

	"gitlab.com/nevasik7/alerting/logger"

	"tokenlens/internal/service"
	"tokenlens/pkg/httputil"
)

// Stats is the assembler surface the handlers call. Every method degrades
// internally and returns a payload; a panic here is a programming error and
// becomes the fixed 500 envelope
type Stats interface {
	Holders(ctx context.Context, limit int) *service.HoldersPayload
	Transactions(ctx context.Context, limit int) *service.TransactionsPayload
	CampaignMetrics(ctx context.Context) *service.CampaignPayload
	HolderBehavior(ctx context.Context) *service.BehaviorPayload
	HolderMetrics(ctx context.Context) *service.HolderMetricsPayload
	MarketData(ctx context.Context) *service.MarketPayload
	WhaleActivity(ctx context.Context) *service.WhalesPayload
	CheckDependency(ctx context.Context) error
}

type API struct {
	log   logger.Logger
	stats Stats
}

func NewAPI(log logger.Logger, stats Stats) *API {
	return &API{log: log, stats: stats}
}

func (a *API) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Readiness checks the optional infra clients
func (a *API) Readiness(w http.ResponseWriter, r *http.Request) {
	if err := a.stats.CheckDependency(r.Context()); err != nil {
		a.log.Errorf("readiness check failed: %v", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (a *API) Holders(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 50, 100)
	a.respond(w, r, func() any { return a.stats.Holders(r.Context(), limit) })
}

func (a *API) Transactions(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 50, 200)
	a.respond(w, r, func() any { return a.stats.Transactions(r.Context(), limit) })
}

func (a *API) Campaign(w http.ResponseWriter, r *http.Request) {
	a.respond(w, r, func() any { return a.stats.CampaignMetrics(r.Context()) })
}

func (a *API) Behavior(w http.ResponseWriter, r *http.Request) {
	a.respond(w, r, func() any { return a.stats.HolderBehavior(r.Context()) })
}

func (a *API) HolderMetrics(w http.ResponseWriter, r *http.Request) {
	a.respond(w, r, func() any { return a.stats.HolderMetrics(r.Context()) })
}

func (a *API) Market(w http.ResponseWriter, r *http.Request) {
	a.respond(w, r, func() any { return a.stats.MarketData(r.Context()) })
}

func (a *API) Whales(w http.ResponseWriter, r *http.Request) {
	a.respond(w, r, func() any { return a.stats.WhaleActivity(r.Context()) })
}

// respond runs one assembler and writes its payload. Upstream failures never
// reach here as errors, they degrade inside the assembler; only a panic turns
// into the 500 envelope
func (a *API) respond(w http.ResponseWriter, r *http.Request, build func() any) {
	defer func() {
		if rec := recover(); rec != nil {
			a.log.Errorf("assembler panic on %s: %v", r.URL.Path, rec)
			_ = httputil.Error(w, r, http.StatusInternalServerError, "internal error")
		}
	}()

	body := build()
	if err := httputil.JSON(w, http.StatusOK, body, nil); err != nil {
		a.log.Errorf("failed to encode response for %s: %v", r.URL.Path, err)
	}
}

// queryLimit parses ?limit= with a default and a hard cap
func queryLimit(r *http.Request, def, max int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
