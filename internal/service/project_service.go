package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/Marrwan/student-platform-backend-sub000/internal/dto"
	"github.com/Marrwan/student-platform-backend-sub000/internal/models"
	"github.com/Marrwan/student-platform-backend-sub000/internal/repository"
)

// ProjectService manages project definitions and per-user visibility.
type ProjectService interface {
	ListVisible(ctx context.Context, userID uint) ([]dto.ProjectResponse, error)
	ListAll(ctx context.Context, filter repository.ProjectFilter) ([]dto.ProjectResponse, error)
	Get(ctx context.Context, id, userID uint) (dto.ProjectResponse, error)
	Create(ctx context.Context, payload dto.ProjectCreateRequest, createdBy uint) (dto.ProjectResponse, error)
	Update(ctx context.Context, id uint, payload dto.ProjectUpdateRequest) (dto.ProjectResponse, error)
	Unlock(ctx context.Context, id uint) (dto.ProjectResponse, error)
}

type projectService struct {
	projects  repository.ProjectRepository
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewProjectService constructs a ProjectService instance.
func NewProjectService(projects repository.ProjectRepository, validate *validator.Validate, logger zerolog.Logger) ProjectService {
	return &projectService{
		projects:  projects,
		validator: validate,
		logger:    logger.With().Str("component", "project_service").Logger(),
		now:       time.Now,
	}
}

// ListVisible returns only the projects the user can currently see, with
// visibility evaluated against their completed prerequisites.
func (s *projectService) ListVisible(ctx context.Context, userID uint) ([]dto.ProjectResponse, error) {
	projects, err := s.projects.List(ctx, repository.ProjectFilter{})
	if err != nil {
		return nil, err
	}

	completedIDs, err := s.projects.CompletedProjectIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	completed := CompletedSet(completedIDs)

	now := s.now()
	responses := make([]dto.ProjectResponse, 0, len(projects))
	for _, project := range projects {
		if IsProjectVisible(project, now, completed) {
			responses = append(responses, dto.NewProjectResponse(project, true))
		}
	}

	return responses, nil
}

func (s *projectService) ListAll(ctx context.Context, filter repository.ProjectFilter) ([]dto.ProjectResponse, error) {
	projects, err := s.projects.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := s.now()
	responses := make([]dto.ProjectResponse, 0, len(projects))
	for _, project := range projects {
		responses = append(responses, dto.NewProjectResponse(project, IsProjectVisible(project, now, nil)))
	}

	return responses, nil
}

func (s *projectService) Get(ctx context.Context, id, userID uint) (dto.ProjectResponse, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProjectResponse{}, ErrProjectNotFound
		}
		return dto.ProjectResponse{}, err
	}

	completedIDs, err := s.projects.CompletedProjectIDs(ctx, userID)
	if err != nil {
		return dto.ProjectResponse{}, err
	}

	return dto.NewProjectResponse(project, IsProjectVisible(project, s.now(), CompletedSet(completedIDs))), nil
}

func (s *projectService) Create(ctx context.Context, payload dto.ProjectCreateRequest, createdBy uint) (dto.ProjectResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProjectResponse{}, err
	}

	autoUnlock := true
	if payload.AutoUnlock != nil {
		autoUnlock = *payload.AutoUnlock
	}

	project := models.Project{
		ChallengeID:         payload.ChallengeID,
		Title:               payload.Title,
		Description:         payload.Description,
		OpenAt:              payload.OpenAt,
		Deadline:            payload.Deadline,
		MaxScore:            payload.MaxScore,
		AutoUnlock:          autoUnlock,
		UnlockTime:          payload.UnlockTime,
		Prerequisites:       payload.Prerequisites,
		LatePenaltyPerHour:  payload.LatePenaltyPerHour,
		MaxLateHours:        payload.MaxLateHours,
		AllowLateSubmission: payload.AllowLateSubmission,
		RequireLateFee:      payload.RequireLateFee,
		LateFeeAmount:       payload.LateFeeAmount,
		SubmissionTypes:     payload.SubmissionTypes,
		CreatedBy:           createdBy,
	}

	if err := s.projects.Create(ctx, &project); err != nil {
		return dto.ProjectResponse{}, err
	}

	s.logger.Info().Uint("project_id", project.ID).Msg("project created")

	return dto.NewProjectResponse(project, IsProjectVisible(project, s.now(), nil)), nil
}

func (s *projectService) Update(ctx context.Context, id uint, payload dto.ProjectUpdateRequest) (dto.ProjectResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProjectResponse{}, err
	}

	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProjectResponse{}, ErrProjectNotFound
		}
		return dto.ProjectResponse{}, err
	}

	applyProjectUpdate(&project, payload)

	if err := s.projects.Update(ctx, &project); err != nil {
		return dto.ProjectResponse{}, err
	}

	s.logger.Info().Uint("project_id", project.ID).Msg("project updated")

	return dto.NewProjectResponse(project, IsProjectVisible(project, s.now(), nil)), nil
}

// Unlock is the explicit admin override that makes a project visible
// regardless of schedule and prerequisites.
func (s *projectService) Unlock(ctx context.Context, id uint) (dto.ProjectResponse, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProjectResponse{}, ErrProjectNotFound
		}
		return dto.ProjectResponse{}, err
	}

	if err := s.projects.SetUnlocked(ctx, id, true); err != nil {
		return dto.ProjectResponse{}, err
	}

	project.IsUnlocked = true
	s.logger.Info().Uint("project_id", id).Msg("project unlocked by admin")

	return dto.NewProjectResponse(project, true), nil
}

func applyProjectUpdate(project *models.Project, payload dto.ProjectUpdateRequest) {
	if payload.Title != nil {
		project.Title = *payload.Title
	}
	if payload.Description != nil {
		project.Description = *payload.Description
	}
	if payload.OpenAt != nil {
		project.OpenAt = payload.OpenAt
	}
	if payload.Deadline != nil {
		project.Deadline = *payload.Deadline
	}
	if payload.MaxScore != nil {
		project.MaxScore = *payload.MaxScore
	}
	if payload.IsUnlocked != nil {
		project.IsUnlocked = *payload.IsUnlocked
	}
	if payload.AutoUnlock != nil {
		project.AutoUnlock = *payload.AutoUnlock
	}
	if payload.UnlockTime != nil {
		project.UnlockTime = *payload.UnlockTime
	}
	if payload.Prerequisites != nil {
		project.Prerequisites = payload.Prerequisites
	}
	if payload.LatePenaltyPerHour != nil {
		project.LatePenaltyPerHour = *payload.LatePenaltyPerHour
	}
	if payload.MaxLateHours != nil {
		project.MaxLateHours = payload.MaxLateHours
	}
	if payload.AllowLateSubmission != nil {
		project.AllowLateSubmission = *payload.AllowLateSubmission
	}
	if payload.RequireLateFee != nil {
		project.RequireLateFee = *payload.RequireLateFee
	}
	if payload.LateFeeAmount != nil {
		project.LateFeeAmount = *payload.LateFeeAmount
	}
	if payload.SubmissionTypes != nil {
		project.SubmissionTypes = payload.SubmissionTypes
	}
}
