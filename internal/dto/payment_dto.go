package dto

import (
	"time"

	"github.com/Marrwan/student-platform-backend-sub000/internal/models"
)

// LateFeeInitRequest starts a late-fee checkout for a project.
type LateFeeInitRequest struct {
	ProjectID uint `json:"project_id" validate:"required,gt=0"`
}

// CheckoutResponse returns the gateway-hosted checkout handle.
type CheckoutResponse struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	AmountMinor      int64  `json:"amount"`
}

// PaymentResponse reports the current state of a late-fee payment.
type PaymentResponse struct {
	ID        uint       `json:"id"`
	UserID    uint       `json:"user_id"`
	ProjectID uint       `json:"project_id"`
	Amount    int64      `json:"amount"`
	Reference string     `json:"reference"`
	Status    string     `json:"status"`
	PaidAt    *time.Time `json:"paid_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewPaymentResponse converts a LateFeePayment model into a DTO. The raw
// gateway payload stays server-side.
func NewPaymentResponse(model models.LateFeePayment) PaymentResponse {
	return PaymentResponse{
		ID:        model.ID,
		UserID:    model.UserID,
		ProjectID: model.ProjectID,
		Amount:    model.Amount,
		Reference: model.Reference,
		Status:    model.Status,
		PaidAt:    model.PaidAt,
		CreatedAt: model.CreatedAt,
	}
}
