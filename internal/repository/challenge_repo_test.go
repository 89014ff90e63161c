package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Marrwan/student-platform-backend-sub000/internal/models"
)

func challengeTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return setupTestDB(t, &models.User{}, &models.Challenge{}, &models.ChallengeRegistration{})
}

func seedChallenge(t *testing.T, db *gorm.DB, maxParticipants int) models.Challenge {
	t.Helper()
	challenge := models.Challenge{
		Title:           "Spring Sprint",
		IsActive:        true,
		StartDate:       time.Now().Add(-time.Hour),
		EndDate:         time.Now().Add(24 * time.Hour),
		MaxParticipants: maxParticipants,
	}
	require.NoError(t, db.Create(&challenge).Error)
	return challenge
}

func TestChallengeRepositoryRegisterEnforcesCapacity(t *testing.T) {
	db := challengeTestDB(t)
	repo := NewChallengeRepository(db)
	challenge := seedChallenge(t, db, 2)

	for userID := uint(1); userID <= 2; userID++ {
		registration := models.ChallengeRegistration{ChallengeID: challenge.ID, UserID: userID, RegisteredAt: time.Now()}
		require.NoError(t, repo.Register(context.Background(), &registration, challenge.MaxParticipants))
	}

	overflow := models.ChallengeRegistration{ChallengeID: challenge.ID, UserID: 3, RegisteredAt: time.Now()}
	err := repo.Register(context.Background(), &overflow, challenge.MaxParticipants)
	require.ErrorIs(t, err, ErrChallengeCapacityReached)

	count, err := repo.CountRegistrations(context.Background(), challenge.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)
}

func TestChallengeRepositoryRegisterRejectsDuplicate(t *testing.T) {
	db := challengeTestDB(t)
	repo := NewChallengeRepository(db)
	challenge := seedChallenge(t, db, 0)

	registration := models.ChallengeRegistration{ChallengeID: challenge.ID, UserID: 1, RegisteredAt: time.Now()}
	require.NoError(t, repo.Register(context.Background(), &registration, 0))

	again := models.ChallengeRegistration{ChallengeID: challenge.ID, UserID: 1, RegisteredAt: time.Now()}
	err := repo.Register(context.Background(), &again, 0)
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	registered, err := repo.IsRegistered(context.Background(), challenge.ID, 1)
	require.NoError(t, err)
	require.True(t, registered)
}

func TestChallengeRepositoryCreatePersistsInactive(t *testing.T) {
	db := challengeTestDB(t)
	repo := NewChallengeRepository(db)

	inactive := models.Challenge{Title: "Draft", IsActive: false, StartDate: time.Now(), EndDate: time.Now().Add(time.Hour)}
	require.NoError(t, db.Create(&inactive).Error)

	stored, err := repo.GetByID(context.Background(), inactive.ID)
	require.NoError(t, err)
	require.False(t, stored.IsActive, "a challenge created inactive must stay inactive")
}

func TestChallengeRepositoryListActiveOnly(t *testing.T) {
	db := challengeTestDB(t)
	repo := NewChallengeRepository(db)

	seedChallenge(t, db, 0)
	inactive := models.Challenge{Title: "Archived", IsActive: false, StartDate: time.Now(), EndDate: time.Now().Add(time.Hour)}
	require.NoError(t, db.Create(&inactive).Error)

	all, err := repo.List(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, all, 2)

	active, err := repo.List(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, "Spring Sprint", active[0].Title)
}
