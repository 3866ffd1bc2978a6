package internal_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"sitepulse/internal"
	"sitepulse/internal/auth"
	"sitepulse/internal/config"
	"sitepulse/internal/geoip"
	"sitepulse/internal/http"
	"sitepulse/internal/testsupport"
)

func testConfig() *config.Config {
	return &config.Config{
		AppName:         "sitepulse",
		Environment:     config.Test,
		PrivateKey:      "0123456789abcdef0123456789abcdef",
		TokenTTLSeconds: 3600,
		ExportMaxEvents: 10000,
	}
}

func setupTestApp(t *testing.T) (*fiber.App, *gorm.DB, *auth.TokenIssuer) {
	t.Helper()

	db := testsupport.SetupTestDB(t)
	cfg := testConfig()
	logger := testsupport.GetLogger()
	geo := geoip.NewResolver("", logger)
	issuer := auth.NewTokenIssuer(cfg.PrivateKey, time.Duration(cfg.TokenTTLSeconds)*time.Second)

	handler := http.NewHandler(db, logger, cfg, geo, issuer)
	app := fiber.New()
	internal.MountRoutes(app, handler, issuer, cfg)

	return app, db, issuer
}

func jsonRequest(method, target string, body any) *nethttp.Request {
	var reader io.Reader
	if body != nil {
		encoded, _ := json.Marshal(body)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decodeBody(t *testing.T, resp *nethttp.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func registerAndLogin(t *testing.T, app *fiber.App) string {
	t.Helper()

	resp, err := app.Test(jsonRequest("POST", "/api/auth/register", map[string]string{
		"email":    "owner@example.com",
		"name":     "Owner",
		"password": "super-secret",
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body struct {
		Token string `json:"token"`
	}
	decodeBody(t, resp, &body)
	require.NotEmpty(t, body.Token)
	return body.Token
}

func createWebsite(t *testing.T, app *fiber.App, token, domain string) uint {
	t.Helper()

	req := jsonRequest("POST", "/api/websites", map[string]string{
		"name":   domain,
		"domain": domain,
	})
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body struct {
		ID uint `json:"id"`
	}
	decodeBody(t, resp, &body)
	require.NotZero(t, body.ID)
	return body.ID
}

func TestHealthEndpoint(t *testing.T) {
	app, _, _ := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/_health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAuthFlow(t *testing.T) {
	app, _, _ := setupTestApp(t)

	token := registerAndLogin(t, app)
	assert.NotEmpty(t, token)

	t.Run("duplicate registration conflicts", func(t *testing.T) {
		resp, err := app.Test(jsonRequest("POST", "/api/auth/register", map[string]string{
			"email":    "owner@example.com",
			"password": "super-secret",
		}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	})

	t.Run("short password rejected", func(t *testing.T) {
		resp, err := app.Test(jsonRequest("POST", "/api/auth/register", map[string]string{
			"email":    "short@example.com",
			"password": "short",
		}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("login with valid credentials", func(t *testing.T) {
		resp, err := app.Test(jsonRequest("POST", "/api/auth/login", map[string]string{
			"email":    "owner@example.com",
			"password": "super-secret",
		}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("login with wrong password", func(t *testing.T) {
		resp, err := app.Test(jsonRequest("POST", "/api/auth/login", map[string]string{
			"email":    "owner@example.com",
			"password": "wrong-password",
		}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestDashboardEndpointsRequireAuth(t *testing.T) {
	app, _, _ := setupTestApp(t)

	for _, target := range []string{
		"/api/visits?websiteId=1",
		"/api/analytics?websiteId=1",
		"/api/realtime?websiteId=1",
		"/api/export?websiteId=1",
		"/api/events?websiteId=1",
		"/api/websites",
	} {
		resp, err := app.Test(httptest.NewRequest("GET", target, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, target)
	}
}

func TestCollectEndpoint(t *testing.T) {
	app, db, _ := setupTestApp(t)
	user := testsupport.CreateTestUser(t, db, "tracked@example.com", "password123")
	website := testsupport.CreateTestWebsite(t, db, "tracked.example.com", user.ID)

	t.Run("accepts a valid event", func(t *testing.T) {
		resp, err := app.Test(jsonRequest("POST", "/api/collect", map[string]any{
			"websiteId": website.ID,
			"eventType": "pageview",
			"eventName": "page_view",
			"path":      "/pricing",
		}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

		var body struct {
			Success   bool   `json:"success"`
			SessionID string `json:"sessionId"`
		}
		decodeBody(t, resp, &body)
		assert.True(t, body.Success)
		assert.NotEmpty(t, body.SessionID, "server assigns a session id when missing")
	})

	t.Run("rejects missing event type", func(t *testing.T) {
		resp, err := app.Test(jsonRequest("POST", "/api/collect", map[string]any{
			"websiteId": website.ID,
			"eventName": "page_view",
		}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("rejects unknown website", func(t *testing.T) {
		resp, err := app.Test(jsonRequest("POST", "/api/collect", map[string]any{
			"websiteId": 99999,
			"eventType": "pageview",
			"eventName": "page_view",
		}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestVisitsEndpoint(t *testing.T) {
	app, db, _ := setupTestApp(t)
	token := registerAndLogin(t, app)
	websiteID := createWebsite(t, app, token, "site.example.com")

	now := time.Now()
	testsupport.CreateTestEvent(t, db, websiteID, "s1", "/", now.Add(-time.Minute))
	testsupport.CreateTestEvent(t, db, websiteID, "s2", "/docs", now.Add(-2*time.Minute))

	t.Run("returns the day series", func(t *testing.T) {
		req := httptest.NewRequest("GET", fmt.Sprintf("/api/visits?websiteId=%d&period=day", websiteID), nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body struct {
			TotalVisits   int `json:"totalVisits"`
			UniqueViewers int `json:"uniqueViewers"`
			Buckets       []struct {
				Label string `json:"label"`
				Count int    `json:"count"`
			} `json:"buckets"`
		}
		decodeBody(t, resp, &body)
		assert.Len(t, body.Buckets, 24)
		assert.LessOrEqual(t, body.UniqueViewers, body.TotalVisits)
	})

	t.Run("rejects an unknown period", func(t *testing.T) {
		req := httptest.NewRequest("GET", fmt.Sprintf("/api/visits?websiteId=%d&period=week", websiteID), nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing websiteId is a bad request", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/visits", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("foreign website is not found", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/visits?websiteId=424242", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestAnalyticsAndRealtimeEndpoints(t *testing.T) {
	app, db, _ := setupTestApp(t)
	token := registerAndLogin(t, app)
	websiteID := createWebsite(t, app, token, "site.example.com")

	now := time.Now()
	testsupport.CreateTestEvent(t, db, websiteID, "s1", "/", now.Add(-time.Minute))

	t.Run("analytics over the default window", func(t *testing.T) {
		req := httptest.NewRequest("GET", fmt.Sprintf("/api/analytics?websiteId=%d", websiteID), nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body struct {
			TotalPageViews   int `json:"totalPageViews"`
			UniqueVisitors   int `json:"uniqueVisitors"`
			RealtimeVisitors int `json:"realtimeVisitors"`
		}
		decodeBody(t, resp, &body)
		assert.Equal(t, 1, body.TotalPageViews)
		assert.Equal(t, 1, body.UniqueVisitors)
	})

	t.Run("analytics rejects an unknown range", func(t *testing.T) {
		req := httptest.NewRequest("GET", fmt.Sprintf("/api/analytics?websiteId=%d&range=1y", websiteID), nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("realtime view", func(t *testing.T) {
		req := httptest.NewRequest("GET", fmt.Sprintf("/api/realtime?websiteId=%d", websiteID), nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body struct {
			ActiveVisitors int `json:"activeVisitors"`
		}
		decodeBody(t, resp, &body)
		assert.Equal(t, 1, body.ActiveVisitors)
	})
}

func TestExportEndpoint(t *testing.T) {
	app, db, _ := setupTestApp(t)
	token := registerAndLogin(t, app)
	websiteID := createWebsite(t, app, token, "site.example.com")

	testsupport.CreateTestEvent(t, db, websiteID, "s1", "/pricing", time.Now().Add(-time.Hour))

	req := httptest.NewRequest("GET", fmt.Sprintf("/api/export?websiteId=%d", websiteID), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")

	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Date")
	assert.Contains(t, lines[0], "Session ID")
	assert.Contains(t, lines[1], "/pricing")
}

func TestWebsitesEndpoints(t *testing.T) {
	app, db, _ := setupTestApp(t)
	token := registerAndLogin(t, app)
	websiteID := createWebsite(t, app, token, "site.example.com")

	testsupport.CreateTestEvent(t, db, websiteID, "s1", "/", time.Now().Add(-time.Minute))

	t.Run("list includes event counts", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/websites", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body struct {
			Websites []struct {
				Domain     string `json:"domain"`
				EventCount int64  `json:"event_count"`
			} `json:"websites"`
		}
		decodeBody(t, resp, &body)
		require.Len(t, body.Websites, 1)
		assert.Equal(t, "site.example.com", body.Websites[0].Domain)
		assert.Equal(t, int64(1), body.Websites[0].EventCount)
	})

	t.Run("delete removes the website", func(t *testing.T) {
		req := httptest.NewRequest("DELETE", fmt.Sprintf("/api/websites/%d", websiteID), nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		req = httptest.NewRequest("GET", fmt.Sprintf("/api/visits?websiteId=%d", websiteID), nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err = app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestEventsEndpoint(t *testing.T) {
	app, db, _ := setupTestApp(t)
	token := registerAndLogin(t, app)
	websiteID := createWebsite(t, app, token, "site.example.com")

	now := time.Now()
	testsupport.CreateTestEvent(t, db, websiteID, "s1", "/", now.Add(-time.Minute))
	testsupport.CreateTestEvent(t, db, websiteID, "s2", "/docs", now.Add(-2*time.Minute))
	testsupport.CreateTestCustomEvent(t, db, websiteID, "s1", "signup", now.Add(-30*time.Second))

	t.Run("lists all recent events", func(t *testing.T) {
		req := httptest.NewRequest("GET", fmt.Sprintf("/api/events?websiteId=%d", websiteID), nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body struct {
			Events []struct {
				EventType string `json:"event_type"`
			} `json:"events"`
			Total int64 `json:"total"`
		}
		decodeBody(t, resp, &body)
		assert.Equal(t, int64(3), body.Total)
		require.Len(t, body.Events, 3)
		assert.Equal(t, "custom", body.Events[0].EventType, "newest first")
	})

	t.Run("filters by event type", func(t *testing.T) {
		req := httptest.NewRequest("GET", fmt.Sprintf("/api/events?websiteId=%d&eventType=pageview", websiteID), nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body struct {
			Total int64 `json:"total"`
		}
		decodeBody(t, resp, &body)
		assert.Equal(t, int64(2), body.Total)
	})
}
