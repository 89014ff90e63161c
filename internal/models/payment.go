package models

import (
	"time"

	"gorm.io/datatypes"
)

// LateFeePayment lifecycle states. Terminal states never transition further;
// a failed payment requires a brand-new attempt with a fresh reference.
const (
	PaymentStatusPending = "pending"
	PaymentStatusSuccess = "success"
	PaymentStatusFailed  = "failed"
)

// LateFeePayment tracks a late-fee charge for one user/project pair. Status
// moves out of pending only when the gateway's verify endpoint confirms the
// outcome; a client-asserted result is never trusted.
type LateFeePayment struct {
	ID             uint              `gorm:"primaryKey" json:"id"`
	UserID         uint              `gorm:"not null;index" json:"user_id"`
	ProjectID      uint              `gorm:"not null;index" json:"project_id"`
	Amount         int64             `gorm:"not null" json:"amount"`
	Reference      string            `gorm:"size:64;uniqueIndex;not null" json:"reference"`
	Status         string            `gorm:"size:16;not null;default:pending" json:"status"`
	GatewayPayload datatypes.JSONMap `json:"gateway_payload"`
	PaidAt         *time.Time        `json:"paid_at"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// IsTerminal reports whether the payment reached a final state.
func (p LateFeePayment) IsTerminal() bool {
	return p.Status == PaymentStatusSuccess || p.Status == PaymentStatusFailed
}
