package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Marrwan/student-platform-backend-sub000/internal/models"
)

// LeaderboardRepository persists computed ranking entries.
type LeaderboardRepository interface {
	// Replace swaps out every entry for the (scope, window) pair in one
	// transaction. Full replacement keeps repeated recomputations idempotent
	// and immune to drift from missed incremental updates.
	Replace(ctx context.Context, scope, window string, entries []models.LeaderboardEntry) error
	List(ctx context.Context, scope, window string) ([]models.LeaderboardEntry, error)
}

type leaderboardRepository struct {
	db *gorm.DB
}

// NewLeaderboardRepository instantiates the repository.
func NewLeaderboardRepository(db *gorm.DB) LeaderboardRepository {
	return &leaderboardRepository{db: db}
}

func (r *leaderboardRepository) Replace(ctx context.Context, scope, window string, entries []models.LeaderboardEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("scope = ?", scope).
			Where(`"window" = ?`, window).
			Delete(&models.LeaderboardEntry{}).Error; err != nil {
			return err
		}

		if len(entries) == 0 {
			return nil
		}

		return tx.Create(&entries).Error
	})
}

func (r *leaderboardRepository) List(ctx context.Context, scope, window string) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	if err := r.db.WithContext(ctx).
		Where("scope = ?", scope).
		Where(`"window" = ?`, window).
		Order(`"rank" ASC`).
		Find(&entries).Error; err != nil {
		return nil, err
	}

	return entries, nil
}
