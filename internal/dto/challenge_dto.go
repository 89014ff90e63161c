package dto

import (
	"time"

	"github.com/Marrwan/student-platform-backend-sub000/internal/models"
)

// ChallengeCreateRequest describes the payload for creating a challenge.
type ChallengeCreateRequest struct {
	Title                string    `json:"title" validate:"required,min=3,max=255"`
	Description          string    `json:"description"`
	StartDate            time.Time `json:"start_date" validate:"required"`
	EndDate              time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
	MaxParticipants      int       `json:"max_participants" validate:"gte=0"`
	AllowPreRegistration bool      `json:"allow_pre_registration"`
	ExemptClassIDs       []uint    `json:"exempt_class_ids" validate:"omitempty,dive,gt=0"`
}

// ChallengeResponse is returned to API clients when viewing challenges.
type ChallengeResponse struct {
	ID                   uint      `json:"id"`
	Title                string    `json:"title"`
	Description          string    `json:"description"`
	IsActive             bool      `json:"is_active"`
	StartDate            time.Time `json:"start_date"`
	EndDate              time.Time `json:"end_date"`
	MaxParticipants      int       `json:"max_participants"`
	AllowPreRegistration bool      `json:"allow_pre_registration"`
	RegisteredCount      int64     `json:"registered_count"`
	CreatedAt            time.Time `json:"created_at"`
}

// RegistrationResponse confirms a successful challenge registration.
type RegistrationResponse struct {
	ChallengeID  uint      `json:"challenge_id"`
	UserID       uint      `json:"user_id"`
	RegisteredAt time.Time `json:"registered_at"`
}

// NewChallengeResponse converts a Challenge model into a DTO.
func NewChallengeResponse(model models.Challenge, registeredCount int64) ChallengeResponse {
	return ChallengeResponse{
		ID:                   model.ID,
		Title:                model.Title,
		Description:          model.Description,
		IsActive:             model.IsActive,
		StartDate:            model.StartDate,
		EndDate:              model.EndDate,
		MaxParticipants:      model.MaxParticipants,
		AllowPreRegistration: model.AllowPreRegistration,
		RegisteredCount:      registeredCount,
		CreatedAt:            model.CreatedAt,
	}
}
