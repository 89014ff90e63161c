package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Marrwan/student-platform-backend-sub000/internal/config"
	"github.com/Marrwan/student-platform-backend-sub000/internal/handler"
	"github.com/Marrwan/student-platform-backend-sub000/internal/middleware"
	"github.com/Marrwan/student-platform-backend-sub000/internal/models"
	"github.com/Marrwan/student-platform-backend-sub000/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ProjectHandler     *handler.ProjectHandler
	SubmissionHandler  *handler.SubmissionHandler
	PaymentHandler     *handler.PaymentHandler
	LeaderboardHandler *handler.LeaderboardHandler
	ChallengeHandler   *handler.ChallengeHandler
	JWTMiddleware      fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	if deps.JWTMiddleware == nil {
		panic("router: JWT middleware is required")
	}
	jwtMiddleware := deps.JWTMiddleware

	// Admin surface: the role gate covers the whole /admin prefix, each
	// domain group resolves its specific capability on top of it.
	admin := api.Group("/admin", jwtMiddleware, middleware.RequireRole(models.RoleAdmin))

	if deps.ProjectHandler != nil {
		projects := api.Group("/projects", jwtMiddleware)
		adminProjects := admin.Group("/projects", middleware.RequirePermission(models.PermManageProjects, models.RolePermissions))
		deps.ProjectHandler.Register(projects, adminProjects)
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware)
		adminSubmissions := admin.Group("/submissions", middleware.RequirePermission(models.PermReviewSubmissions, models.RolePermissions))
		deps.SubmissionHandler.Register(submissions, adminSubmissions)
	}

	if deps.PaymentHandler != nil {
		payments := api.Group("/payments", jwtMiddleware)
		// The webhook carries the gateway's HMAC signature instead of a JWT:
		// the gateway has no user token.
		webhook := api.Group("/payments")
		deps.PaymentHandler.Register(payments, webhook)
	}

	if deps.LeaderboardHandler != nil {
		leaderboard := api.Group("/leaderboard", jwtMiddleware)
		adminLeaderboard := admin.Group("/leaderboard", middleware.RequirePermission(models.PermRecomputeStandings, models.RolePermissions))
		deps.LeaderboardHandler.Register(leaderboard, adminLeaderboard)
	}

	if deps.ChallengeHandler != nil {
		challenges := api.Group("/challenges", jwtMiddleware)
		adminChallenges := admin.Group("/challenges", middleware.RequirePermission(models.PermManageChallenges, models.RolePermissions))
		deps.ChallengeHandler.Register(challenges, adminChallenges)
	}
}
