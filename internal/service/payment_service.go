package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Marrwan/student-platform-backend-sub000/internal/dto"
	"github.com/Marrwan/student-platform-backend-sub000/internal/models"
	"github.com/Marrwan/student-platform-backend-sub000/internal/observability"
	"github.com/Marrwan/student-platform-backend-sub000/internal/repository"
	"github.com/Marrwan/student-platform-backend-sub000/pkg/paystack"
)

// PaymentGateway abstracts the external processor so services and tests do
// not depend on the concrete client.
type PaymentGateway interface {
	Initialize(ctx context.Context, req paystack.InitializeRequest) (paystack.InitializeResult, error)
	Verify(ctx context.Context, reference string) (paystack.VerifyResult, error)
}

// PaymentService manages the late-fee payment lifecycle and exposes the
// admission check consumed by the submission flow.
type PaymentService interface {
	InitializeLateFee(ctx context.Context, userID uint, payload dto.LateFeeInitRequest) (dto.CheckoutResponse, error)
	Verify(ctx context.Context, reference string) (dto.PaymentResponse, error)
	IsLateSubmissionCleared(ctx context.Context, userID uint, project models.Project) (bool, error)
	ListByUser(ctx context.Context, userID uint) ([]dto.PaymentResponse, error)
}

type paymentService struct {
	payments  repository.PaymentRepository
	projects  repository.ProjectRepository
	users     repository.UserRepository
	gateway   PaymentGateway
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewPaymentService constructs a PaymentService instance.
func NewPaymentService(payments repository.PaymentRepository, projects repository.ProjectRepository, users repository.UserRepository, gateway PaymentGateway, validate *validator.Validate, logger zerolog.Logger) PaymentService {
	return &paymentService{
		payments:  payments,
		projects:  projects,
		users:     users,
		gateway:   gateway,
		validator: validate,
		logger:    logger.With().Str("component", "payment_service").Logger(),
		now:       time.Now,
	}
}

// InitializeLateFee creates a pending payment record and a gateway checkout
// for the project's late fee. Each attempt gets a fresh reference; failed
// payments are never retried in place.
func (s *paymentService) InitializeLateFee(ctx context.Context, userID uint, payload dto.LateFeeInitRequest) (dto.CheckoutResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CheckoutResponse{}, err
	}

	project, err := s.projects.GetByID(ctx, payload.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CheckoutResponse{}, ErrProjectNotFound
		}
		return dto.CheckoutResponse{}, err
	}

	if !project.RequireLateFee {
		return dto.CheckoutResponse{}, NotEligible("project %q does not require a late fee", project.Title)
	}

	cleared, err := s.payments.HasSuccessfulPayment(ctx, userID, project.ID)
	if err != nil {
		return dto.CheckoutResponse{}, err
	}
	if cleared {
		return dto.CheckoutResponse{}, ErrLateFeeAlreadyPaid
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CheckoutResponse{}, ErrUserNotFound
		}
		return dto.CheckoutResponse{}, err
	}

	reference := uuid.NewString()
	checkout, err := s.gateway.Initialize(ctx, paystack.InitializeRequest{
		AmountMinor: project.LateFeeAmount,
		Email:       user.Email,
		Reference:   reference,
		Metadata: map[string]string{
			"project_id": project.Title,
			"purpose":    "late_fee",
		},
	})
	if err != nil {
		return dto.CheckoutResponse{}, err
	}

	payment := models.LateFeePayment{
		UserID:    userID,
		ProjectID: project.ID,
		Amount:    project.LateFeeAmount,
		Reference: reference,
		Status:    models.PaymentStatusPending,
	}
	if err := s.payments.Create(ctx, &payment); err != nil {
		return dto.CheckoutResponse{}, err
	}

	s.logger.Info().Str("reference", reference).Uint("user_id", userID).Uint("project_id", project.ID).Msg("late fee checkout initialized")

	return dto.CheckoutResponse{
		Reference:        reference,
		AuthorizationURL: checkout.AuthorizationURL,
		AccessCode:       checkout.AccessCode,
		AmountMinor:      project.LateFeeAmount,
	}, nil
}

// Verify re-derives the payment status from the gateway's authoritative
// response. It is idempotent under concurrent invocation: the webhook and a
// client poll both funnel into the same pending-to-terminal conditional
// update, so whichever lands first wins and the other is a no-op. A gateway
// timeout leaves the payment pending and retry-safe.
func (s *paymentService) Verify(ctx context.Context, reference string) (dto.PaymentResponse, error) {
	payment, err := s.payments.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PaymentResponse{}, ErrPaymentNotFound
		}
		return dto.PaymentResponse{}, err
	}

	if payment.IsTerminal() {
		return dto.NewPaymentResponse(payment), nil
	}

	result, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		return dto.PaymentResponse{}, err
	}

	status := models.PaymentStatusPending
	switch result.Status {
	case "success":
		status = models.PaymentStatusSuccess
	case "failed", "abandoned", "reversed":
		status = models.PaymentStatusFailed
	}

	if status == models.PaymentStatusPending {
		// Gateway still processing; nothing to persist yet.
		return dto.NewPaymentResponse(payment), nil
	}

	settled, err := s.payments.SettleIfPending(ctx, reference, status, datatypes.JSONMap(result.RawPayload), result.PaidAt)
	if err != nil {
		return dto.PaymentResponse{}, err
	}

	if settled {
		observability.PaymentVerifications().WithLabelValues(status).Inc()
		s.logger.Info().Str("reference", reference).Str("status", status).Msg("payment settled")
	}

	payment, err = s.payments.GetByReference(ctx, reference)
	if err != nil {
		return dto.PaymentResponse{}, err
	}

	return dto.NewPaymentResponse(payment), nil
}

// IsLateSubmissionCleared reports whether the user may submit late to the
// project. Projects that charge no fee clear everyone; otherwise a verified
// successful payment must be on file.
func (s *paymentService) IsLateSubmissionCleared(ctx context.Context, userID uint, project models.Project) (bool, error) {
	if !project.RequireLateFee {
		return true, nil
	}

	return s.payments.HasSuccessfulPayment(ctx, userID, project.ID)
}

func (s *paymentService) ListByUser(ctx context.Context, userID uint) ([]dto.PaymentResponse, error) {
	payments, err := s.payments.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.PaymentResponse, 0, len(payments))
	for _, payment := range payments {
		responses = append(responses, dto.NewPaymentResponse(payment))
	}

	return responses, nil
}
