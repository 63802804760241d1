package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/wellrelay/config"
	"github.com/lshigami/wellrelay/internal/dto"
	"github.com/lshigami/wellrelay/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.Port = "0"
	cfg.Database.Driver = "sqlite"
	cfg.LLM.Provider = "ollama"
	cfg.Log.Level = "info"
	cfg.Telemetry.MetricsEnabled = true
	return cfg
}

func TestAppOptions_GraphIsComplete(t *testing.T) {
	require.NoError(t, fx.ValidateApp(appOptions(testConfig()), fx.NopLogger))
}

func TestNewGinEngine_Routes(t *testing.T) {
	cfg := testConfig()
	router := NewGinEngine(cfg, observability.NewMetrics())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/assessments/submit")
}

func TestNewGinEngine_MetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Telemetry.MetricsEnabled = false
	router := NewGinEngine(cfg, observability.NewMetrics())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNewGinEngine_PanicReturnsJSONError(t *testing.T) {
	router := NewGinEngine(testConfig(), observability.NewMetrics())
	router.POST("/explode", func(c *gin.Context) {
		var m map[string]int
		m["x"] = 1
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/explode", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body.Error)
}
