package main

import (
	"io"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testpulse/testpulse/config"
	"github.com/testpulse/testpulse/utils"
)

// TestCreateFiberApp tests the Fiber app creation
func TestCreateFiberApp(t *testing.T) {
	app := createFiberApp(utils.NewLogger("error", "json"))

	assert.NotNil(t, app)
	assert.Equal(t, "TestPulse Backend v1.0.0", app.Config().AppName)
}

// TestHealthCheckHandler tests the health check endpoint
func TestHealthCheckHandler(t *testing.T) {
	cfg := &config.Config{
		Environment: "development",
		Port:        "8080",
	}

	app := fiber.New()
	app.Get("/health", healthCheckHandler(cfg))

	req, err := http.NewRequest("GET", "/health", nil)
	require.NoError(t, err)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "success")
	assert.Contains(t, string(body), "healthy")
	assert.Contains(t, string(body), "version")
	assert.Contains(t, string(body), "environment")
}

// TestSetupMiddleware tests middleware setup
func TestSetupMiddleware(t *testing.T) {
	cfg := &config.Config{
		Environment: "development",
		Port:        "8080",
		FrontendURL: "http://localhost:3000",
	}

	app := fiber.New()
	setupMiddleware(app, cfg)

	app.Get("/test", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"test": "ok"})
	})

	req, err := http.NewRequest("GET", "/test", nil)
	require.NoError(t, err)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))
}

// TestSetupRoutes tests that the API routes respond
func TestSetupRoutes(t *testing.T) {
	cfg := &config.Config{
		Environment: "development",
		Port:        "8080",
		ResultsDir:  t.TempDir(),
		ArchiveDir:  t.TempDir(),
		TestsDir:    t.TempDir(),
		MappingFile: "mapping.json",
	}

	app := fiber.New()
	setupRoutes(app, cfg, utils.NewLogger("error", "json"))

	req, err := http.NewRequest("GET", "/api", nil)
	require.NoError(t, err)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "TestPulse API")
}
