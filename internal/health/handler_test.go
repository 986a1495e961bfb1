package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"progress-service/internal/health"
	"progress-service/internal/logger"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func up(context.Context) error   { return nil }
func down(context.Context) error { return errors.New("connection refused") }

func ready(t *testing.T, h *health.Handler) (int, health.HealthResponse) {
	t.Helper()

	router := chi.NewRouter()
	h.RegisterRoutes(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

	var resp health.HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return w.Code, resp
}

func TestHandler_Health(t *testing.T) {
	router := chi.NewRouter()
	health.NewHandler(logger.NewDiscard()).Require("postgres", down).RegisterRoutes(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandler_Ready(t *testing.T) {
	t.Run("AllUp", func(t *testing.T) {
		code, resp := ready(t, health.NewHandler(logger.NewDiscard()).Require("postgres", up).Optional("redis", up))

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ready", resp.Status)
		assert.Equal(t, map[string]string{"postgres": "up", "redis": "up"}, resp.Checks)
	})

	t.Run("OptionalDown", func(t *testing.T) {
		code, resp := ready(t, health.NewHandler(logger.NewDiscard()).Require("postgres", up).Optional("redis", down))

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "degraded", resp.Status)
		assert.Equal(t, "down", resp.Checks["redis"])
	})

	t.Run("RequiredDown", func(t *testing.T) {
		code, resp := ready(t, health.NewHandler(logger.NewDiscard()).Require("postgres", down).Optional("redis", down))

		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "unavailable", resp.Status)
	})
}
