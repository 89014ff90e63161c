package repository

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Marrwan/student-platform-backend-sub000/internal/models"
)

// PaymentRepository defines data operations for late-fee payments.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.LateFeePayment) error
	GetByReference(ctx context.Context, reference string) (models.LateFeePayment, error)
	// SettleIfPending moves a pending payment to a terminal status. It is the
	// compare-and-swap behind idempotent verification: whichever of the
	// webhook and the client poll lands first wins, the other sees
	// settled=false and re-reads the row.
	SettleIfPending(ctx context.Context, reference, status string, payload datatypes.JSONMap, paidAt *time.Time) (bool, error)
	HasSuccessfulPayment(ctx context.Context, userID, projectID uint) (bool, error)
	ListByUser(ctx context.Context, userID uint) ([]models.LateFeePayment, error)
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository instantiates the repository.
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.LateFeePayment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepository) GetByReference(ctx context.Context, reference string) (models.LateFeePayment, error) {
	var payment models.LateFeePayment
	if err := r.db.WithContext(ctx).
		Where("reference = ?", reference).
		First(&payment).Error; err != nil {
		return models.LateFeePayment{}, err
	}

	return payment, nil
}

func (r *paymentRepository) SettleIfPending(ctx context.Context, reference, status string, payload datatypes.JSONMap, paidAt *time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status":          status,
		"gateway_payload": payload,
	}
	if paidAt != nil {
		updates["paid_at"] = *paidAt
	}

	result := r.db.WithContext(ctx).
		Model(&models.LateFeePayment{}).
		Where("reference = ?", reference).
		Where("status = ?", models.PaymentStatusPending).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *paymentRepository) HasSuccessfulPayment(ctx context.Context, userID, projectID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.LateFeePayment{}).
		Where("user_id = ?", userID).
		Where("project_id = ?", projectID).
		Where("status = ?", models.PaymentStatusSuccess).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *paymentRepository) ListByUser(ctx context.Context, userID uint) ([]models.LateFeePayment, error) {
	var payments []models.LateFeePayment
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&payments).Error; err != nil {
		return nil, err
	}

	return payments, nil
}
