package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Marrwan/student-platform-backend-sub000/internal/models"
)

// SubmissionFilter allows narrowing submission queries.
type SubmissionFilter struct {
	ProjectID *uint
	UserID    *uint
	Status    *string
}

// StandingsFilter bounds the submissions feeding a leaderboard recompute.
type StandingsFilter struct {
	ChallengeID *uint
	Since       *time.Time
}

// SubmissionRepository defines data operations for submissions.
type SubmissionRepository interface {
	List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error)
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	ListByProject(ctx context.Context, projectID uint) ([]models.Submission, error)
	CreateWithFindings(ctx context.Context, submission *models.Submission, findings []models.SimilarityFinding) error
	Update(ctx context.Context, submission *models.Submission) error
	Delete(ctx context.Context, id uint) error
	ListForStandings(ctx context.Context, filter StandingsFilter) ([]models.Submission, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Submission{}).
		Preload("Project").
		Preload("User")
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error) {
	query := r.baseQuery(ctx)

	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var submissions []models.Submission
	if err := query.Order("submitted_at DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) ListByProject(ctx context.Context, projectID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

// CreateWithFindings persists the submission and its similarity audit rows in
// one transaction. The unique (project_id, user_id) index arbitrates
// concurrent attempts; callers map gorm.ErrDuplicatedKey to a domain error.
func (r *submissionRepository) CreateWithFindings(ctx context.Context, submission *models.Submission, findings []models.SimilarityFinding) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(submission).Error; err != nil {
			return err
		}

		for i := range findings {
			findings[i].SubmissionID = &submission.ID
			findings[i].ProjectID = submission.ProjectID
		}

		if len(findings) > 0 {
			if err := tx.Create(&findings).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *submissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}

func (r *submissionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Submission{}, id).Error
}

// ListForStandings returns graded submissions eligible for ranking, scoped to
// a challenge and bounded in time when requested. A single query keeps the
// recompute on one consistent snapshot.
func (r *submissionRepository) ListForStandings(ctx context.Context, filter StandingsFilter) ([]models.Submission, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("status IN ?", []string{models.SubmissionStatusAccepted, models.SubmissionStatusReviewed}).
		Where("final_score IS NOT NULL")

	if filter.ChallengeID != nil {
		query = query.
			Joins("JOIN projects ON projects.id = submissions.project_id").
			Where("projects.challenge_id = ?", *filter.ChallengeID)
	}

	if filter.Since != nil {
		query = query.Where("submitted_at >= ?", *filter.Since)
	}

	var submissions []models.Submission
	if err := query.Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}
