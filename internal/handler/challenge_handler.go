package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Marrwan/student-platform-backend-sub000/internal/dto"
	"github.com/Marrwan/student-platform-backend-sub000/internal/service"
	"github.com/Marrwan/student-platform-backend-sub000/internal/utils"
)

// ChallengeHandler manages challenge endpoints.
type ChallengeHandler struct {
	service service.ChallengeService
	logger  zerolog.Logger
}

// NewChallengeHandler builds a challenge handler instance.
func NewChallengeHandler(service service.ChallengeService, logger zerolog.Logger) *ChallengeHandler {
	return &ChallengeHandler{
		service: service,
		logger:  logger.With().Str("component", "challenge_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group. The admin group
// carries role middleware applied by the router.
func (h *ChallengeHandler) Register(router fiber.Router, admin fiber.Router) {
	router.Get("", h.list)
	router.Post("/:id/register", h.register)

	admin.Post("", h.create)
}

func (h *ChallengeHandler) list(c *fiber.Ctx) error {
	challenges, err := h.service.List(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "challenges retrieved", challenges)
}

func (h *ChallengeHandler) create(c *fiber.Ctx) error {
	var payload dto.ChallengeCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	challenge, err := h.service.Create(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "challenge created", challenge)
}

func (h *ChallengeHandler) register(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	registration, err := h.service.Register(c.Context(), id, currentUserID(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "registered for challenge", registration)
}

func (h *ChallengeHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	var validationError service.ValidationError
	var notEligible service.NotEligibleError
	switch {
	case errors.Is(err, service.ErrChallengeNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "challenge not found")
	case errors.Is(err, service.ErrUserNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "user not found")
	case errors.Is(err, service.ErrAlreadyRegistered):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.As(err, &notEligible):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, notEligible.Reason)
	case errors.As(err, &validationError):
		return utils.SendError(c, fiber.StatusBadRequest, validationError.Reason)
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
