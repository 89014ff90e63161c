package handler_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Marrwan/student-platform-backend-sub000/internal/config"
	"github.com/Marrwan/student-platform-backend-sub000/internal/dto"
	"github.com/Marrwan/student-platform-backend-sub000/internal/handler"
	"github.com/Marrwan/student-platform-backend-sub000/internal/models"
	"github.com/Marrwan/student-platform-backend-sub000/internal/router"
	"github.com/Marrwan/student-platform-backend-sub000/internal/service"
	"github.com/Marrwan/student-platform-backend-sub000/pkg/paystack"
)

type stubPaymentService struct {
	payments    map[string]dto.PaymentResponse
	verifyCalls []string
	verifyErr   error
}

func (s *stubPaymentService) InitializeLateFee(ctx context.Context, userID uint, payload dto.LateFeeInitRequest) (dto.CheckoutResponse, error) {
	return dto.CheckoutResponse{Reference: "ref-new", AuthorizationURL: "https://checkout.test/ref-new", AmountMinor: 50000}, nil
}

func (s *stubPaymentService) Verify(ctx context.Context, reference string) (dto.PaymentResponse, error) {
	s.verifyCalls = append(s.verifyCalls, reference)
	if s.verifyErr != nil {
		return dto.PaymentResponse{}, s.verifyErr
	}
	payment, ok := s.payments[reference]
	if !ok {
		return dto.PaymentResponse{}, service.ErrPaymentNotFound
	}
	return payment, nil
}

func (s *stubPaymentService) IsLateSubmissionCleared(ctx context.Context, userID uint, project models.Project) (bool, error) {
	return false, nil
}

func (s *stubPaymentService) ListByUser(ctx context.Context, userID uint) ([]dto.PaymentResponse, error) {
	return nil, nil
}

const testWebhookSecret = "whsec-test"

func signWebhook(body []byte) string {
	mac := hmac.New(sha512.New, []byte(testWebhookSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func setupPaymentApp(t *testing.T, stub *stubPaymentService) *fiber.App {
	t.Helper()

	app := fiber.New()
	paymentHandler := handler.NewPaymentHandler(stub, testWebhookSecret, zerolog.New(io.Discard))

	router.Register(app, config.Config{AppName: "Test"}, router.Dependencies{
		PaymentHandler: paymentHandler,
		JWTMiddleware: func(c *fiber.Ctx) error {
			c.Locals("user_id", uint(1))
			return c.Next()
		},
	})

	return app
}

func TestPaymentEndpointVerify(t *testing.T) {
	stub := &stubPaymentService{payments: map[string]dto.PaymentResponse{
		"ref-1": {Reference: "ref-1", Status: models.PaymentStatusSuccess},
	}}
	app := setupPaymentApp(t, stub)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/payments/verify/ref-1", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/payments/verify/missing", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestPaymentEndpointGatewayUnavailable(t *testing.T) {
	stub := &stubPaymentService{verifyErr: paystack.ErrUnavailable}
	app := setupPaymentApp(t, stub)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/payments/verify/ref-1", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}

func TestPaymentWebhookVerifiesByReferenceOnly(t *testing.T) {
	stub := &stubPaymentService{payments: map[string]dto.PaymentResponse{
		"ref-1": {Reference: "ref-1", Status: models.PaymentStatusSuccess},
	}}
	app := setupPaymentApp(t, stub)

	// The webhook body claims success for an unknown reference; the handler
	// must consult the service, not trust the payload.
	body, err := json.Marshal(map[string]interface{}{
		"event": "charge.success",
		"data":  map[string]interface{}{"reference": "forged", "status": "success"},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-paystack-signature", signWebhook(body))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, "unknown references are acknowledged, not retried")
	require.Equal(t, []string{"forged"}, stub.verifyCalls)

	body, err = json.Marshal(map[string]interface{}{
		"event": "charge.success",
		"data":  map[string]interface{}{"reference": "ref-1"},
	})
	require.NoError(t, err)

	req = httptest.NewRequest(fiber.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-paystack-signature", signWebhook(body))
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestPaymentWebhookMissingReference(t *testing.T) {
	app := setupPaymentApp(t, &stubPaymentService{})

	body := []byte(`{"event":"charge.success","data":{}}`)
	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-paystack-signature", signWebhook(body))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestPaymentWebhookRejectsBadSignature(t *testing.T) {
	stub := &stubPaymentService{payments: map[string]dto.PaymentResponse{
		"ref-1": {Reference: "ref-1", Status: models.PaymentStatusSuccess},
	}}
	app := setupPaymentApp(t, stub)

	body := []byte(`{"event":"charge.success","data":{"reference":"ref-1"}}`)

	// No signature header at all.
	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// A digest computed with the wrong secret.
	mac := hmac.New(sha512.New, []byte("wrong-secret"))
	mac.Write(body)
	req = httptest.NewRequest(fiber.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-paystack-signature", hex.EncodeToString(mac.Sum(nil)))
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	require.Empty(t, stub.verifyCalls, "an unsigned webhook must never reach the gateway")
}
