package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"shopfront/internal/handlers"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthResponse(t *testing.T, exposeDetails bool) (int, map[string]interface{}) {
	t.Helper()
	checks := map[string]handlers.HealthCheck{
		"sql":     func(context.Context) error { return nil },
		"mongodb": func(context.Context) error { return errors.New("dial tcp 10.0.0.5:27017: connection refused") },
	}
	app := fiber.New()
	app.Get("/health", handlers.NewHealthHandler(checks, exposeDetails).HandleHealth)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body["dependencies"].(map[string]interface{})
}

func TestHealthHidesFailureDetailsByDefault(t *testing.T) {
	status, deps := healthResponse(t, false)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "ok", deps["sql"])
	assert.Equal(t, "down", deps["mongodb"])
}

func TestHealthShowsFailureDetailsInDevelopment(t *testing.T) {
	status, deps := healthResponse(t, true)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Contains(t, deps["mongodb"], "connection refused")
}
