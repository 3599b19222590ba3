package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	loggerCfg "gitlab.com/nevasik7/alerting/config"
	"gitlab.com/nevasik7/alerting/logger"

	"tokenlens/internal/service"
)

func newTestLogger() logger.Logger {
	return logger.New(loggerCfg.LoggerCfg{Level: "error", Format: "json"})
}

type stubStats struct {
	holdersLimit      int
	transactionsLimit int
	panicOn           string
	depErr            error
}

func (s *stubStats) maybePanic(op string) {
	if s.panicOn == op {
		panic("boom: " + op)
	}
}

func (s *stubStats) Holders(ctx context.Context, limit int) *service.HoldersPayload {
	s.maybePanic("holders")
	s.holdersLimit = limit
	return &service.HoldersPayload{Success: true}
}

func (s *stubStats) Transactions(ctx context.Context, limit int) *service.TransactionsPayload {
	s.maybePanic("transactions")
	s.transactionsLimit = limit
	return &service.TransactionsPayload{Success: true}
}

func (s *stubStats) CampaignMetrics(ctx context.Context) *service.CampaignPayload {
	s.maybePanic("campaign")
	return &service.CampaignPayload{Success: true}
}

func (s *stubStats) HolderBehavior(ctx context.Context) *service.BehaviorPayload {
	s.maybePanic("behavior")
	return &service.BehaviorPayload{Success: true}
}

func (s *stubStats) HolderMetrics(ctx context.Context) *service.HolderMetricsPayload {
	s.maybePanic("holder-metrics")
	return &service.HolderMetricsPayload{Success: true}
}

func (s *stubStats) MarketData(ctx context.Context) *service.MarketPayload {
	s.maybePanic("market")
	return &service.MarketPayload{Success: true}
}

func (s *stubStats) WhaleActivity(ctx context.Context) *service.WhalesPayload {
	s.maybePanic("whales")
	return &service.WhalesPayload{Success: true}
}

func (s *stubStats) CheckDependency(ctx context.Context) error {
	return s.depErr
}

func newTestRouter(stats *stubStats) http.Handler {
	api := NewAPI(newTestLogger(), stats)
	return BuildRouter(api, nil, nil, nil, nil)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_AllEndpointsReturnSuccessEnvelope(t *testing.T) {
	t.Parallel()

	h := newTestRouter(&stubStats{})
	paths := []string{
		"/api/holders",
		"/api/transactions",
		"/api/campaign",
		"/api/behavior",
		"/api/holder-metrics",
		"/api/market",
		"/api/whales",
	}

	for _, path := range paths {
		rec := get(t, h, path)
		require.Equal(t, http.StatusOK, rec.Code, path)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), path)
		assert.Equal(t, true, body["success"], path)
	}
}

func TestRouter_AssemblerPanicBecomesErrorEnvelope(t *testing.T) {
	t.Parallel()

	h := newTestRouter(&stubStats{panicOn: "market"})
	rec := get(t, h, "/api/market")

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "internal error", body["error"])

	// a panic on one endpoint does not poison the others
	rec = get(t, h, "/api/holders")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_LimitParsing(t *testing.T) {
	t.Parallel()

	stats := &stubStats{}
	h := newTestRouter(stats)

	get(t, h, "/api/holders")
	assert.Equal(t, 50, stats.holdersLimit, "default")

	get(t, h, "/api/holders?limit=7")
	assert.Equal(t, 7, stats.holdersLimit)

	get(t, h, "/api/holders?limit=9999")
	assert.Equal(t, 100, stats.holdersLimit, "capped")

	get(t, h, "/api/transactions?limit=9999")
	assert.Equal(t, 200, stats.transactionsLimit, "capped")

	get(t, h, "/api/holders?limit=bogus")
	assert.Equal(t, 50, stats.holdersLimit, "unparseable falls back to default")

	get(t, h, "/api/holders?limit=-3")
	assert.Equal(t, 50, stats.holdersLimit, "non-positive falls back to default")
}

func TestRouter_HealthAndReadiness(t *testing.T) {
	t.Parallel()

	h := newTestRouter(&stubStats{})
	assert.Equal(t, http.StatusOK, get(t, h, "/healthz").Code)
	assert.Equal(t, http.StatusOK, get(t, h, "/readiness").Code)

	broken := newTestRouter(&stubStats{depErr: errors.New("redis down")})
	assert.Equal(t, http.StatusServiceUnavailable, get(t, broken, "/readiness").Code)
}
