package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Marrwan/student-platform-backend-sub000/internal/dto"
	"github.com/Marrwan/student-platform-backend-sub000/internal/models"
	"github.com/Marrwan/student-platform-backend-sub000/internal/service"
	"github.com/Marrwan/student-platform-backend-sub000/internal/utils"
)

// LeaderboardHandler manages standings endpoints.
type LeaderboardHandler struct {
	service service.LeaderboardService
	logger  zerolog.Logger
}

// NewLeaderboardHandler builds a leaderboard handler instance.
func NewLeaderboardHandler(service service.LeaderboardService, logger zerolog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		service: service,
		logger:  logger.With().Str("component", "leaderboard_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group. The admin group
// carries role middleware applied by the router.
func (h *LeaderboardHandler) Register(router fiber.Router, admin fiber.Router) {
	router.Get("", h.standings)

	admin.Post("/recompute", h.recompute)
}

func (h *LeaderboardHandler) standings(c *fiber.Ctx) error {
	query := dto.LeaderboardQuery{Window: models.WindowAllTime}
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}
	if query.Window == "" {
		query.Window = models.WindowAllTime
	}

	standings, err := h.service.Standings(c.Context(), query)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "standings retrieved", standings)
}

func (h *LeaderboardHandler) recompute(c *fiber.Ctx) error {
	if err := h.service.RecomputeAll(c.Context()); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "standings recomputed", nil)
}

func (h *LeaderboardHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	var validationError service.ValidationError
	switch {
	case errors.Is(err, service.ErrChallengeNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "challenge not found")
	case errors.As(err, &validationError):
		return utils.SendError(c, fiber.StatusBadRequest, validationError.Reason)
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
