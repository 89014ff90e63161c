package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Marrwan/student-platform-backend-sub000/internal/models"
)

// SimilarityRepository stores and retrieves pairwise screening findings.
type SimilarityRepository interface {
	// Record persists findings that are not tied to a stored submission,
	// i.e. the audit trail of a flagged rejection.
	Record(ctx context.Context, findings []models.SimilarityFinding) error
	ListBySubmission(ctx context.Context, submissionID uint) ([]models.SimilarityFinding, error)
}

type similarityRepository struct {
	db *gorm.DB
}

// NewSimilarityRepository instantiates the repository.
func NewSimilarityRepository(db *gorm.DB) SimilarityRepository {
	return &similarityRepository{db: db}
}

func (r *similarityRepository) Record(ctx context.Context, findings []models.SimilarityFinding) error {
	if len(findings) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&findings).Error
}

// ListBySubmission returns findings where the submission appears on either
// side of the comparison, so rejected attempts recorded against a peer are
// visible when auditing that peer.
func (r *similarityRepository) ListBySubmission(ctx context.Context, submissionID uint) ([]models.SimilarityFinding, error) {
	var findings []models.SimilarityFinding
	if err := r.db.WithContext(ctx).
		Where("submission_id = ? OR peer_submission_id = ?", submissionID, submissionID).
		Order("similarity DESC").
		Find(&findings).Error; err != nil {
		return nil, err
	}

	return findings, nil
}
