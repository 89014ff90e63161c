package handler

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Marrwan/student-platform-backend-sub000/internal/dto"
	"github.com/Marrwan/student-platform-backend-sub000/internal/service"
	"github.com/Marrwan/student-platform-backend-sub000/internal/utils"
	"github.com/Marrwan/student-platform-backend-sub000/pkg/paystack"
)

// PaymentHandler manages late-fee payment endpoints.
type PaymentHandler struct {
	service       service.PaymentService
	webhookSecret string
	logger        zerolog.Logger
}

// NewPaymentHandler builds a payment handler instance. The webhook secret is
// the gateway secret key; Paystack signs event bodies with it.
func NewPaymentHandler(service service.PaymentService, webhookSecret string, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service:       service,
		webhookSecret: webhookSecret,
		logger:        logger.With().Str("component", "payment_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group. The webhook
// route is registered separately because it carries no JWT.
func (h *PaymentHandler) Register(router fiber.Router, webhook fiber.Router) {
	router.Get("", h.list)
	router.Post("/late-fee", h.initialize)
	router.Get("/verify/:reference", h.verify)

	webhook.Post("/webhook", h.webhook)
}

func (h *PaymentHandler) list(c *fiber.Ctx) error {
	payments, err := h.service.ListByUser(c.Context(), currentUserID(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "payments retrieved", payments)
}

func (h *PaymentHandler) initialize(c *fiber.Ctx) error {
	var payload dto.LateFeeInitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	checkout, err := h.service.InitializeLateFee(c.Context(), currentUserID(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "checkout created", checkout)
}

func (h *PaymentHandler) verify(c *fiber.Ctx) error {
	reference := strings.TrimSpace(c.Params("reference"))
	if reference == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "reference is required")
	}

	payment, err := h.service.Verify(c.Context(), reference)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "payment verified", payment)
}

// webhook accepts gateway event notifications. The body must carry a valid
// HMAC-SHA512 signature, and even then only the reference is taken from the
// payload; the status is re-fetched from the gateway so a forged body cannot
// settle a payment.
func (h *PaymentHandler) webhook(c *fiber.Ctx) error {
	if !h.validWebhookSignature(c.Body(), c.Get("x-paystack-signature")) {
		requestLogger(h.logger, c).Warn().Msg("webhook signature mismatch")
		return utils.SendError(c, fiber.StatusUnauthorized, "invalid webhook signature")
	}

	var event struct {
		Event string `json:"event"`
		Data  struct {
			Reference string `json:"reference"`
		} `json:"data"`
	}

	if err := c.BodyParser(&event); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid webhook payload")
	}

	reference := strings.TrimSpace(event.Data.Reference)
	if reference == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "reference is required")
	}

	if _, err := h.service.Verify(c.Context(), reference); err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			// Unknown references are acknowledged so the gateway stops retrying.
			requestLogger(h.logger, c).Warn().Str("reference", reference).Msg("webhook for unknown payment reference")
			return utils.SendSuccess(c, "event ignored", nil)
		}
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "event processed", nil)
}

func (h *PaymentHandler) validWebhookSignature(body []byte, signature string) bool {
	if h.webhookSecret == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha512.New, []byte(h.webhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

func (h *PaymentHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	var validationError service.ValidationError
	var notEligible service.NotEligibleError
	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "project not found")
	case errors.Is(err, service.ErrPaymentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "payment not found")
	case errors.Is(err, service.ErrLateFeeAlreadyPaid):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, paystack.ErrUnavailable):
		return utils.SendErrorKind(c, fiber.StatusBadGateway, "gateway_unavailable", "payment gateway unavailable, retry later")
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
