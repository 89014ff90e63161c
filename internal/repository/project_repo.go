package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Marrwan/student-platform-backend-sub000/internal/models"
)

// ProjectFilter allows narrowing project queries.
type ProjectFilter struct {
	ChallengeID *uint
	Unlocked    *bool
}

// ProjectRepository defines data operations for projects.
type ProjectRepository interface {
	List(ctx context.Context, filter ProjectFilter) ([]models.Project, error)
	GetByID(ctx context.Context, id uint) (models.Project, error)
	Create(ctx context.Context, project *models.Project) error
	Update(ctx context.Context, project *models.Project) error
	SetUnlocked(ctx context.Context, id uint, unlocked bool) error
	ListAutoUnlockCandidates(ctx context.Context, now time.Time) ([]models.Project, error)
	CompletedProjectIDs(ctx context.Context, userID uint) ([]uint, error)
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository instantiates the repository.
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) List(ctx context.Context, filter ProjectFilter) ([]models.Project, error) {
	query := r.db.WithContext(ctx).Model(&models.Project{})

	if filter.ChallengeID != nil {
		query = query.Where("challenge_id = ?", *filter.ChallengeID)
	}

	if filter.Unlocked != nil {
		query = query.Where("is_unlocked = ?", *filter.Unlocked)
	}

	var projects []models.Project
	if err := query.Order("deadline ASC").Find(&projects).Error; err != nil {
		return nil, err
	}

	return projects, nil
}

func (r *projectRepository) GetByID(ctx context.Context, id uint) (models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).First(&project, id).Error; err != nil {
		return models.Project{}, err
	}

	return project, nil
}

func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *projectRepository) Update(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

func (r *projectRepository) SetUnlocked(ctx context.Context, id uint, unlocked bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("id = ?", id).
		Update("is_unlocked", unlocked).Error
}

// ListAutoUnlockCandidates returns locked projects whose automatic unlock may
// be due. The schedule gates (open time, unlock time of day) are re-checked
// by the caller; this query only prunes the obvious non-candidates.
func (r *projectRepository) ListAutoUnlockCandidates(ctx context.Context, now time.Time) ([]models.Project, error) {
	var projects []models.Project
	if err := r.db.WithContext(ctx).
		Where("is_unlocked = ?", false).
		Where("auto_unlock = ?", true).
		Where("open_at IS NULL OR open_at <= ?", now).
		Find(&projects).Error; err != nil {
		return nil, err
	}

	return projects, nil
}

// CompletedProjectIDs returns the projects the user has finished, where
// finished means an accepted or reviewed submission is on file.
func (r *projectRepository) CompletedProjectIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("user_id = ?", userID).
		Where("status IN ?", []string{models.SubmissionStatusAccepted, models.SubmissionStatusReviewed}).
		Pluck("project_id", &ids).Error; err != nil {
		return nil, err
	}

	return ids, nil
}
