package dto

import (
	"time"

	"github.com/Marrwan/student-platform-backend-sub000/internal/models"
)

// ProjectCreateRequest describes the payload for creating a project.
type ProjectCreateRequest struct {
	ChallengeID         *uint      `json:"challenge_id" validate:"omitempty,gt=0"`
	Title               string     `json:"title" validate:"required,min=3,max=255"`
	Description         string     `json:"description"`
	OpenAt              *time.Time `json:"open_at"`
	Deadline            time.Time  `json:"deadline" validate:"required"`
	MaxScore            float64    `json:"max_score" validate:"required,gt=0"`
	AutoUnlock          *bool      `json:"auto_unlock"`
	UnlockTime          string     `json:"unlock_time" validate:"omitempty,len=5"`
	Prerequisites       []uint     `json:"prerequisites" validate:"omitempty,dive,gt=0"`
	LatePenaltyPerHour  float64    `json:"late_penalty_per_hour" validate:"gte=0"`
	MaxLateHours        *int       `json:"max_late_hours" validate:"omitempty,gt=0"`
	AllowLateSubmission bool       `json:"allow_late_submission"`
	RequireLateFee      bool       `json:"require_late_fee"`
	LateFeeAmount       int64      `json:"late_fee_amount" validate:"gte=0"`
	SubmissionTypes     []string   `json:"submission_types" validate:"omitempty,dive,oneof=github_link code file"`
}

// ProjectUpdateRequest applies partial admin edits to a project.
type ProjectUpdateRequest struct {
	Title               *string    `json:"title" validate:"omitempty,min=3,max=255"`
	Description         *string    `json:"description"`
	OpenAt              *time.Time `json:"open_at"`
	Deadline            *time.Time `json:"deadline"`
	MaxScore            *float64   `json:"max_score" validate:"omitempty,gt=0"`
	IsUnlocked          *bool      `json:"is_unlocked"`
	AutoUnlock          *bool      `json:"auto_unlock"`
	UnlockTime          *string    `json:"unlock_time" validate:"omitempty,len=5"`
	Prerequisites       []uint     `json:"prerequisites" validate:"omitempty,dive,gt=0"`
	LatePenaltyPerHour  *float64   `json:"late_penalty_per_hour" validate:"omitempty,gte=0"`
	MaxLateHours        *int       `json:"max_late_hours" validate:"omitempty,gt=0"`
	AllowLateSubmission *bool      `json:"allow_late_submission"`
	RequireLateFee      *bool      `json:"require_late_fee"`
	LateFeeAmount       *int64     `json:"late_fee_amount" validate:"omitempty,gte=0"`
	SubmissionTypes     []string   `json:"submission_types" validate:"omitempty,dive,oneof=github_link code file"`
}

// ProjectResponse is returned to API clients when viewing projects.
type ProjectResponse struct {
	ID                  uint       `json:"id"`
	ChallengeID         *uint      `json:"challenge_id"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	OpenAt              *time.Time `json:"open_at"`
	Deadline            time.Time  `json:"deadline"`
	MaxScore            float64    `json:"max_score"`
	IsUnlocked          bool       `json:"is_unlocked"`
	AutoUnlock          bool       `json:"auto_unlock"`
	UnlockTime          string     `json:"unlock_time,omitempty"`
	Prerequisites       []uint     `json:"prerequisites"`
	LatePenaltyPerHour  float64    `json:"late_penalty_per_hour"`
	MaxLateHours        *int       `json:"max_late_hours"`
	AllowLateSubmission bool       `json:"allow_late_submission"`
	RequireLateFee      bool       `json:"require_late_fee"`
	LateFeeAmount       int64      `json:"late_fee_amount"`
	SubmissionTypes     []string   `json:"submission_types"`
	Visible             bool       `json:"visible"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// NewProjectResponse converts a Project model into a DTO. Visibility is
// caller-dependent and supplied separately.
func NewProjectResponse(model models.Project, visible bool) ProjectResponse {
	return ProjectResponse{
		ID:                  model.ID,
		ChallengeID:         model.ChallengeID,
		Title:               model.Title,
		Description:         model.Description,
		OpenAt:              model.OpenAt,
		Deadline:            model.Deadline,
		MaxScore:            model.MaxScore,
		IsUnlocked:          model.IsUnlocked,
		AutoUnlock:          model.AutoUnlock,
		UnlockTime:          model.UnlockTime,
		Prerequisites:       model.Prerequisites,
		LatePenaltyPerHour:  model.LatePenaltyPerHour,
		MaxLateHours:        model.MaxLateHours,
		AllowLateSubmission: model.AllowLateSubmission,
		RequireLateFee:      model.RequireLateFee,
		LateFeeAmount:       model.LateFeeAmount,
		SubmissionTypes:     model.SubmissionTypes,
		Visible:             visible,
		CreatedAt:           model.CreatedAt,
		UpdatedAt:           model.UpdatedAt,
	}
}
