package router_test

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/Marrwan/student-platform-backend-sub000/internal/config"
	"github.com/Marrwan/student-platform-backend-sub000/internal/router"
)

func TestRegisterRequiresJWTMiddleware(t *testing.T) {
	app := fiber.New()

	require.PanicsWithValue(t, "router: JWT middleware is required", func() {
		router.Register(app, config.Config{AppName: "Test"}, router.Dependencies{})
	})
}

func TestRegisterHealthAndMetrics(t *testing.T) {
	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test"}, router.Dependencies{
		JWTMiddleware: func(c *fiber.Ctx) error { return c.Next() },
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/health", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "Test", resp.Header.Get("X-Application"))

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
