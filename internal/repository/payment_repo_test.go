package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Marrwan/student-platform-backend-sub000/internal/models"
)

func paymentTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return setupTestDB(t, &models.User{}, &models.Project{}, &models.LateFeePayment{})
}

func TestPaymentRepositorySettleIfPending(t *testing.T) {
	db := paymentTestDB(t)
	repo := NewPaymentRepository(db)

	payment := models.LateFeePayment{UserID: 1, ProjectID: 2, Amount: 50000, Reference: "ref-1", Status: models.PaymentStatusPending}
	require.NoError(t, repo.Create(context.Background(), &payment))

	paidAt := time.Now()
	settled, err := repo.SettleIfPending(context.Background(), "ref-1", models.PaymentStatusSuccess, datatypes.JSONMap{"status": "success"}, &paidAt)
	require.NoError(t, err)
	require.True(t, settled)

	// The second settle sees a terminal row and is a no-op; a racing
	// webhook and client poll converge on the first writer's outcome.
	settled, err = repo.SettleIfPending(context.Background(), "ref-1", models.PaymentStatusFailed, datatypes.JSONMap{"status": "failed"}, nil)
	require.NoError(t, err)
	require.False(t, settled)

	stored, err := repo.GetByReference(context.Background(), "ref-1")
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusSuccess, stored.Status)
	require.NotNil(t, stored.PaidAt)
}

func TestPaymentRepositoryUniqueReference(t *testing.T) {
	db := paymentTestDB(t)
	repo := NewPaymentRepository(db)

	first := models.LateFeePayment{UserID: 1, ProjectID: 2, Reference: "ref-1", Status: models.PaymentStatusPending}
	require.NoError(t, repo.Create(context.Background(), &first))

	clash := models.LateFeePayment{UserID: 3, ProjectID: 4, Reference: "ref-1", Status: models.PaymentStatusPending}
	err := repo.Create(context.Background(), &clash)
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestPaymentRepositoryHasSuccessfulPayment(t *testing.T) {
	db := paymentTestDB(t)
	repo := NewPaymentRepository(db)

	pending := models.LateFeePayment{UserID: 1, ProjectID: 2, Reference: "ref-1", Status: models.PaymentStatusPending}
	require.NoError(t, repo.Create(context.Background(), &pending))

	cleared, err := repo.HasSuccessfulPayment(context.Background(), 1, 2)
	require.NoError(t, err)
	require.False(t, cleared)

	paidAt := time.Now()
	_, err = repo.SettleIfPending(context.Background(), "ref-1", models.PaymentStatusSuccess, nil, &paidAt)
	require.NoError(t, err)

	cleared, err = repo.HasSuccessfulPayment(context.Background(), 1, 2)
	require.NoError(t, err)
	require.True(t, cleared)
}
