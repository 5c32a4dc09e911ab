package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parent-care-assistant/internal/extraction/usecase"
	"parent-care-assistant/pkg/datemath"
	"parent-care-assistant/pkg/log"
)

type fakeTelegram struct{ called bool }

func (f *fakeTelegram) HandleWebhook(c *gin.Context) {
	f.called = true
	c.Status(http.StatusOK)
}

func newTestServer(t *testing.T, mutate func(*Config)) *HTTPServer {
	t.Helper()

	dates, err := datemath.NewParser("Asia/Seoul")
	require.NoError(t, err)
	reg := prometheus.NewRegistry()
	uc, err := usecase.New(log.NewNop(), usecase.Options{Dates: dates, Metrics: usecase.MustNewMetrics(reg)})
	require.NoError(t, err)

	cfg := Config{
		Logger:            log.NewNop(),
		Port:              8080,
		Mode:              gin.TestMode,
		Environment:       "test",
		MetricsGatherer:   reg,
		ExtractionUseCase: uc,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	srv, err := New(log.NewNop(), cfg)
	require.NoError(t, err)
	return srv
}

func serve(srv *HTTPServer, method, path string, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing port", func(c *Config) { c.Port = 0 }},
		{"missing mode", func(c *Config) { c.Mode = "" }},
		{"missing usecase", func(c *Config) { c.ExtractionUseCase = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Port: 8080, Mode: gin.TestMode}
			cfg.ExtractionUseCase = newTestServer(t, nil).extractionUC
			tt.mutate(&cfg)
			_, err := New(log.NewNop(), cfg)
			assert.Error(t, err)
		})
	}

	_, err := New(nil, Config{Port: 8080, Mode: gin.TestMode})
	assert.Error(t, err)
}

func TestSystemRoutes(t *testing.T) {
	srv := newTestServer(t, nil)

	for _, path := range []string{"/health", "/ready", "/live"} {
		w := serve(srv, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), ServiceName, path)
	}
}

func TestReadyCheck_DependencyDown(t *testing.T) {
	srv := newTestServer(t, func(c *Config) {
		c.Readiness = func(ctx context.Context) error { return errors.New("db down") }
	})

	w := serve(srv, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestExtractionRouteEndToEnd(t *testing.T) {
	srv := newTestServer(t, nil)

	w := serve(srv, http.MethodPost, "/api/v1/extractions",
		`{"conversation_text":"어머니: 다음 주에 병원 가기로 했어","parent_name":"어머니"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var env struct {
		Data struct {
			Summary string `json:"summary"`
			Source  string `json:"source"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "rules", env.Data.Source)
	assert.True(t, strings.HasPrefix(env.Data.Summary, "어머니"), env.Data.Summary)

	metrics := serve(srv, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), "care_extraction_total")
}

func TestExtractionRoute_EmptyBody(t *testing.T) {
	srv := newTestServer(t, nil)
	w := serve(srv, http.MethodPost, "/api/v1/extractions", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStorageRoutesWithoutDatabase(t *testing.T) {
	srv := newTestServer(t, nil)
	w := serve(srv, http.MethodGet, "/api/v1/parents/0190d7a0-0000-7000-8000-000000000001/actions", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestTelegramRoute(t *testing.T) {
	w := serve(newTestServer(t, nil), http.MethodPost, "/webhook/telegram", `{}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	tg := &fakeTelegram{}
	srv := newTestServer(t, func(c *Config) { c.TelegramHandler = tg })
	w = serve(srv, http.MethodPost, "/webhook/telegram", `{}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, tg.called)
}

func TestMetricsRouteDisabled(t *testing.T) {
	srv := newTestServer(t, func(c *Config) { c.MetricsGatherer = nil })
	w := serve(srv, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRun_StopsOnCancel(t *testing.T) {
	srv := newTestServer(t, func(c *Config) { c.Port = 18089 })
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	cancel()
	assert.NoError(t, <-done)
}
