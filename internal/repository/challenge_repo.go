package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Marrwan/student-platform-backend-sub000/internal/models"
)

// ErrChallengeCapacityReached is returned when a registration would exceed
// the challenge's participant cap.
var ErrChallengeCapacityReached = errors.New("challenge capacity reached")

// ChallengeRepository defines data operations for challenges and
// registrations.
type ChallengeRepository interface {
	List(ctx context.Context, activeOnly bool) ([]models.Challenge, error)
	GetByID(ctx context.Context, id uint) (models.Challenge, error)
	Create(ctx context.Context, challenge *models.Challenge) error
	Update(ctx context.Context, challenge *models.Challenge) error
	IsRegistered(ctx context.Context, challengeID, userID uint) (bool, error)
	CountRegistrations(ctx context.Context, challengeID uint) (int64, error)
	// Register inserts the registration while re-counting participants inside
	// the same transaction, so the capacity check cannot drift from the rows
	// it guards. The unique (challenge_id, user_id) index arbitrates
	// concurrent duplicates.
	Register(ctx context.Context, registration *models.ChallengeRegistration, maxParticipants int) error
}

type challengeRepository struct {
	db *gorm.DB
}

// NewChallengeRepository instantiates the repository.
func NewChallengeRepository(db *gorm.DB) ChallengeRepository {
	return &challengeRepository{db: db}
}

func (r *challengeRepository) List(ctx context.Context, activeOnly bool) ([]models.Challenge, error) {
	query := r.db.WithContext(ctx).Model(&models.Challenge{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var challenges []models.Challenge
	if err := query.Order("start_date DESC").Find(&challenges).Error; err != nil {
		return nil, err
	}

	return challenges, nil
}

func (r *challengeRepository) GetByID(ctx context.Context, id uint) (models.Challenge, error) {
	var challenge models.Challenge
	if err := r.db.WithContext(ctx).First(&challenge, id).Error; err != nil {
		return models.Challenge{}, err
	}

	return challenge, nil
}

func (r *challengeRepository) Create(ctx context.Context, challenge *models.Challenge) error {
	return r.db.WithContext(ctx).Create(challenge).Error
}

func (r *challengeRepository) Update(ctx context.Context, challenge *models.Challenge) error {
	return r.db.WithContext(ctx).Save(challenge).Error
}

func (r *challengeRepository) IsRegistered(ctx context.Context, challengeID, userID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ChallengeRegistration{}).
		Where("challenge_id = ?", challengeID).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *challengeRepository) CountRegistrations(ctx context.Context, challengeID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ChallengeRegistration{}).
		Where("challenge_id = ?", challengeID).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func (r *challengeRepository) Register(ctx context.Context, registration *models.ChallengeRegistration, maxParticipants int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if maxParticipants > 0 {
			var count int64
			if err := tx.Model(&models.ChallengeRegistration{}).
				Where("challenge_id = ?", registration.ChallengeID).
				Count(&count).Error; err != nil {
				return err
			}
			if count >= int64(maxParticipants) {
				return ErrChallengeCapacityReached
			}
		}

		return tx.Create(registration).Error
	})
}
