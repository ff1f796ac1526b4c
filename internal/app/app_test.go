package app_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmtrace/assistant/internal/app"
	"farmtrace/assistant/internal/config"
	"farmtrace/assistant/internal/rag"
)

func newTestApp(t *testing.T, deps *app.Dependencies) *app.App {
	t.Helper()

	cfg := &config.Config{
		TopK:       8,
		ServerPort: 8081,
	}
	a, err := app.New(cfg, deps, slog.Default())
	require.NoError(t, err)
	return a
}

func TestApp_HealthEndpoint(t *testing.T) {
	a := newTestApp(t, &app.Dependencies{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestApp_AskWithoutGeneration(t *testing.T) {
	a := newTestApp(t, &app.Dependencies{})

	body := `{"question":"How do I store maize?","role":"farmer"}`
	req := httptest.NewRequest(http.MethodPost, "/assistant/ask", strings.NewReader(body))
	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp, "error")
	assert.Contains(t, resp, "correlationId")
}

func TestApp_AskSetsCORSHeaders(t *testing.T) {
	a := newTestApp(t, &app.Dependencies{})

	req := httptest.NewRequest(http.MethodPost, "/assistant/ask", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestApp_NoEmbedConsumerWithoutWorkerConfig(t *testing.T) {
	deps := &app.Dependencies{
		Availability: rag.Availability{Generation: true},
	}
	a := newTestApp(t, deps)
	assert.Nil(t, a.EmbedConsumer)
}
