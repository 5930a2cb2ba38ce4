package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/lead-service/internal/api/http/handlers"
	"github.com/spec-kit/lead-service/internal/observability"
	"github.com/spec-kit/lead-service/internal/ratelimit"
	"github.com/spec-kit/lead-service/internal/repository"
	"github.com/spec-kit/lead-service/internal/service"
)

func newTestApp(t *testing.T, limit int) *fiber.App {
	t.Helper()

	store := repository.NewMemoryStore()
	leadService := service.NewLeadService(service.LeadDependencies{
		LeadRepo:    store,
		HistoryRepo: store.HistoryRepo(),
	})
	limiter := ratelimit.New(ratelimit.NewMemoryStore(), limit, time.Minute)
	logger := zap.NewNop()

	app := fiber.New()
	RegisterMiddlewares(app, logger, observability.NewMetrics(), 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:  handlers.NewHealthHandler("lead-service", "test", nil, nil),
		Leads:   handlers.NewLeadsHandler(leadService),
		Limiter: limiter,
		Logger:  logger,
	})
	return app
}

func leadBody() []byte {
	payload := map[string]any{
		"full_name":     "A B",
		"phone":         "1234567890",
		"city":          "Mohali",
		"property_type": "Apartment",
		"bhk":           "TWO",
		"purpose":       "Buy",
		"timeline":      "Exploring",
		"source":        "Website",
	}
	body, _ := json.Marshal(payload)
	return body
}

func errorCode(t *testing.T, resp io.Reader) string {
	t.Helper()
	var parsed struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp).Decode(&parsed))
	return parsed.Error.Code
}

func TestCreateLead_RequiresActorHeader(t *testing.T) {
	app := newTestApp(t, 10)

	req := httptest.NewRequest("POST", "/leads", bytes.NewReader(leadBody()))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, resp.Body))
}

func TestCreateLead_Succeeds(t *testing.T) {
	app := newTestApp(t, 10)

	req := httptest.NewRequest("POST", "/leads", bytes.NewReader(leadBody()))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(ActorHeader, "u1")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "10", resp.Header.Get("X-RateLimit-Limit"))
	assert.Equal(t, "9", resp.Header.Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, resp.Header.Get("X-RateLimit-Reset"))

	var parsed struct {
		Data struct {
			ID      string `json:"id"`
			OwnerID string `json:"owner_id"`
			Status  string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	assert.NotEmpty(t, parsed.Data.ID)
	assert.Equal(t, "u1", parsed.Data.OwnerID)
	assert.Equal(t, "New", parsed.Data.Status)
}

func TestCreateLead_ValidationErrorMapped(t *testing.T) {
	app := newTestApp(t, 10)

	payload := map[string]any{
		"full_name":     "A B",
		"phone":         "1234567890",
		"city":          "Mohali",
		"property_type": "Apartment",
		"purpose":       "Buy",
		"timeline":      "Exploring",
		"source":        "Website",
	}
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest("POST", "/leads", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(ActorHeader, "u1")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "BHK_REQUIRED", errorCode(t, resp.Body))
}

func TestRateLimit_RejectsAfterLimit(t *testing.T) {
	app := newTestApp(t, 3)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/leads", nil)
		req.Header.Set(ActorHeader, "u1")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, "request %d", i+1)
	}

	req := httptest.NewRequest("GET", "/leads", nil)
	req.Header.Set(ActorHeader, "u1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
	assert.Equal(t, "RATE_LIMITED", errorCode(t, resp.Body))
}

func TestRateLimit_ActorSuffixSeparatesClients(t *testing.T) {
	app := newTestApp(t, 1)

	req := httptest.NewRequest("GET", "/leads", nil)
	req.Header.Set(ActorHeader, "u1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest("GET", "/leads", nil)
	req.Header.Set(ActorHeader, "u2")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestHealthRoutesBypassRateLimit(t *testing.T) {
	app := fiber.New()
	logger := zap.NewNop()
	limiter := ratelimit.New(ratelimit.NewMemoryStore(), 1, time.Minute)

	app.Get("/health/live", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Use("/leads", RateLimitMiddleware(limiter, logger))
	app.Get("/leads", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for i := 0; i < 5; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/health/live", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
}
