package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ytAgent/internal/bus"
	"ytAgent/internal/config"
	"ytAgent/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBus struct {
	last  bus.Request
	reply bus.Response
	err   error
}

func (b *fakeBus) Send(ctx context.Context, to bus.Endpoint, req bus.Request) (bus.Response, error) {
	b.last = req
	return b.reply, b.err
}

func newTestServer(b *fakeBus) http.Handler {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "ytagent_test_total", Help: "test"}))
	return New(config.App{}, zap.NewNop(), b, nil, reg).Handler()
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := do(newTestServer(&fakeBus{}), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSearchChannels(t *testing.T) {
	b := &fakeBus{reply: bus.Response{Channels: []model.Channel{{ID: "UC1", Title: "Veritasium"}}}}
	h := newTestServer(b)

	w := do(h, http.MethodGet, "/api/channels?q=Veritasium&limit=3", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, bus.FetchChannels{Query: "Veritasium", Limit: 3}, b.last)

	var resp bus.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Veritasium", resp.Channels[0].Title)

	w = do(h, http.MethodGet, "/api/channels", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchChannels_UpstreamError(t *testing.T) {
	b := &fakeBus{reply: bus.Response{Error: "youtube search: HTTP 403"}}
	w := do(newTestServer(b), http.MethodGet, "/api/channels?q=x", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestStartAutomation(t *testing.T) {
	b := &fakeBus{reply: bus.Response{Status: bus.StatusSuccess}}
	h := newTestServer(b)

	w := do(h, http.MethodPost, "/api/automation/start",
		`{"selectedChannel":{"id":"UC1","handle":"veritasium"},"requestedCount":4}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, bus.StartAutomation{Channel: model.Channel{ID: "UC1", Handle: "veritasium"}, Count: 4}, b.last)

	b.reply = bus.Response{Status: bus.StatusAlreadyRunning}
	w = do(h, http.MethodPost, "/api/automation/start", `{"selectedChannel":{"id":"UC1"}}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestNoReceiver(t *testing.T) {
	b := &fakeBus{err: bus.ErrNoReceiver}
	w := do(newTestServer(b), http.MethodPost, "/api/automation/stop", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRunsDisabled(t *testing.T) {
	w := do(newTestServer(&fakeBus{}), http.MethodGet, "/api/runs", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetrics(t *testing.T) {
	w := do(newTestServer(&fakeBus{}), http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ytagent_test_total")
}
