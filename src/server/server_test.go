package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"token-pulse/src/analysis"
	"token-pulse/src/config"
	"token-pulse/src/logger"
	"token-pulse/src/models"
	"token-pulse/src/observability"
	"token-pulse/src/store"
	"token-pulse/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

type fakeSession struct {
	mu        sync.Mutex
	reloads   int
	frequency time.Duration
}

func (f *fakeSession) Reload() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reloads++
}

func (f *fakeSession) SetUpdateFrequency(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frequency = d
}

func (f *fakeSession) snapshot() (int, time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reloads, f.frequency
}

func newTestServer(t *testing.T) (*FastAPIServer, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.LogLevel = "DEBUG"
	log := logger.NewLoggerWithOutput("ERROR", "server-test", io.Discard)
	st := store.NewStore(utils.NewMockClock(epoch), utils.NewHistoryManager(10), log, nil)
	srv := NewFastAPIServer(cfg, "", st, analysis.NewSortedView(st), observability.NewMetrics("test"), log)
	return srv, st
}

func testToken(id string, category models.TokenCategory, marketCap float64) models.Token {
	return models.Token{
		ID:        id,
		Name:      "Token " + id,
		Ticker:    "$" + id,
		Price:     1.5,
		MarketCap: marketCap,
		CreatedAt: epoch,
		Category:  category,
	}
}

func do(t *testing.T, srv *FastAPIServer, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

// -----------------------------------------------------------------------------

func TestHealth(t *testing.T) {
	srv, st := newTestServer(t)
	st.SetTokens(models.CategoryNewPairs, []models.Token{testToken("x", models.CategoryNewPairs, 1)})
	st.SetConnectionStatus(models.StatusConnected)

	rec := do(t, srv, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var health models.MHealth
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 0, health.Connections)
	assert.Equal(t, models.StatusConnected, health.ConnectionStatus)
	assert.Equal(t, epoch.UnixMilli(), health.LatestUpdate)
}

func TestConfigAndSortOptions(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/config", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"categories":["new-pairs","final-stretch","migrated"]`)

	rec = do(t, srv, http.MethodGet, "/api/sort-options", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var options []models.MSortOptionLabel
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &options))
	assert.Len(t, options, len(models.SortOptions))
}

func TestColumnProjection(t *testing.T) {
	srv, st := newTestServer(t)
	st.SetTokens(models.CategoryMigrated, []models.Token{
		testToken("a", models.CategoryMigrated, 10),
		testToken("b", models.CategoryMigrated, 30),
		testToken("c", models.CategoryMigrated, 20),
	})

	rec := do(t, srv, http.MethodGet, "/api/columns/migrated", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view models.MColumnView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, models.CategoryMigrated, view.Category)
	assert.Equal(t, models.PresetP1, view.Preset)
	require.Len(t, view.Tokens, 3)
	assert.Equal(t, []string{"b", "c", "a"}, ids(view.Tokens))

	rec = do(t, srv, http.MethodPut, "/api/columns/migrated/sort", models.SortConfig{SortBy: models.SortByMarketCap, SortOrder: models.SortAsc})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, []string{"a", "c", "b"}, ids(view.Tokens))
	assert.Equal(t, models.SortAsc, view.SortConfig.SortOrder)
}

func TestColumnRejectsBadInput(t *testing.T) {
	srv, _ := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodGet, "/api/columns/trending", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodPut, "/api/columns/migrated/sort",
		map[string]string{"sortBy": "volume", "sortOrder": "desc"}).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodPut, "/api/columns/migrated/preset",
		map[string]string{"preset": "P9"}).Code)
}

func TestPreset(t *testing.T) {
	srv, st := newTestServer(t)

	rec := do(t, srv, http.MethodPut, "/api/columns/new-pairs/preset", map[string]string{"preset": "P3"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.PresetP3, st.ActivePreset(models.CategoryNewPairs))
	assert.Equal(t, models.PresetP1, st.ActivePreset(models.CategoryMigrated))
}

func TestSelection(t *testing.T) {
	srv, st := newTestServer(t)
	st.SetTokens(models.CategoryNewPairs, []models.Token{testToken("x", models.CategoryNewPairs, 1)})

	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodPut, "/api/selection", map[string]string{"tokenId": "nope"}).Code)

	rec := do(t, srv, http.MethodPut, "/api/selection", map[string]string{"tokenId": "x"})
	require.Equal(t, http.StatusOK, rec.Code)
	selected := st.Snapshot().SelectedToken
	require.NotNil(t, selected)
	assert.Equal(t, "x", selected.ID)

	assert.Equal(t, http.StatusNoContent, do(t, srv, http.MethodDelete, "/api/selection", nil).Code)
	assert.Nil(t, st.Snapshot().SelectedToken)
}

func TestHistory(t *testing.T) {
	srv, st := newTestServer(t)
	st.SetTokens(models.CategoryNewPairs, []models.Token{testToken("x", models.CategoryNewPairs, 1)})
	st.ApplyPriceUpdate(models.PriceUpdate{TokenID: "x", Price: 2, Timestamp: epoch.UnixMilli()})

	rec := do(t, srv, http.MethodGet, "/api/tokens/x/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		TokenID string              `json:"tokenId"`
		Points  []models.PricePoint `json:"points"`
		Stats   models.MHistoryStats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "x", body.TokenID)
	require.Len(t, body.Points, 2)
	assert.Equal(t, 2.0, body.Points[1].Price)
	assert.Equal(t, 2, body.Stats.Points)
	assert.Equal(t, 1.5, body.Stats.Open)
	assert.Equal(t, 2.0, body.Stats.Close)

	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodGet, "/api/tokens/missing/history", nil).Code)
}

func TestFeedControl(t *testing.T) {
	srv, _ := newTestServer(t)

	assert.Equal(t, http.StatusServiceUnavailable, do(t, srv, http.MethodPost, "/api/feed/reload", nil).Code)

	session := &fakeSession{}
	srv.AttachSession(session)

	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodPut, "/api/feed/frequency", map[string]int{"updateFrequencyMs": 0}).Code)

	rec := do(t, srv, http.MethodPut, "/api/feed/frequency", map[string]int{"updateFrequencyMs": 250})
	require.Equal(t, http.StatusOK, rec.Code)
	_, freq := session.snapshot()
	assert.Equal(t, 250*time.Millisecond, freq)
	assert.Equal(t, 250, srv.Config.Feed.UpdateFrequencyMs)

	assert.Equal(t, http.StatusAccepted, do(t, srv, http.MethodPost, "/api/feed/reload", nil).Code)
	assert.Eventually(t, func() bool {
		reloads, _ := session.snapshot()
		return reloads == 1
	}, time.Second, 5*time.Millisecond)
}

func TestCORS(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/state", nil)
	req.Header.Set("Origin", "http://127.0.0.1:3000")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://127.0.0.1:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/state", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_server_ws_clients")
}

func ids(tokens []models.Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.ID
	}
	return out
}
