package dto

import (
	"time"

	"github.com/Marrwan/student-platform-backend-sub000/internal/models"
)

// SubmissionCreateRequest describes the payload for submitting work.
type SubmissionCreateRequest struct {
	ProjectID   uint   `json:"project_id" validate:"required,gt=0"`
	ContentType string `json:"content_type" validate:"required,oneof=github_link code file"`
	ContentURL  string `json:"content_url" validate:"omitempty,url,max=512"`
	CodeContent string `json:"code_content"`
}

// SubmissionFilter describes query string filters for listing submissions.
type SubmissionFilter struct {
	ProjectID *uint   `query:"project_id"`
	UserID    *uint   `query:"user_id"`
	Status    *string `query:"status" validate:"omitempty,oneof=submitted accepted rejected reviewed"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID          uint        `json:"id"`
	ProjectID   uint        `json:"project_id"`
	UserID      uint        `json:"user_id"`
	SubmittedAt time.Time   `json:"submitted_at"`
	ContentType string      `json:"content_type"`
	ContentURL  string      `json:"content_url,omitempty"`
	CodeContent string      `json:"code_content,omitempty"`
	IsLate      bool        `json:"is_late"`
	LatePenalty float64     `json:"late_penalty"`
	RawScore    *float64    `json:"raw_score"`
	BonusPoints float64     `json:"bonus_points"`
	Deductions  float64     `json:"deductions"`
	FinalScore  *float64    `json:"final_score"`
	Status      string      `json:"status"`
	Feedback    string      `json:"feedback,omitempty"`
	ReviewedBy  *uint       `json:"reviewed_by"`
	ReviewedAt  *time.Time  `json:"reviewed_at"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Project     ProjectLite `json:"project"`
	User        UserLite    `json:"user"`
}

// ProjectLite summarizes a project in submission responses.
type ProjectLite struct {
	ID       uint      `json:"id"`
	Title    string    `json:"title"`
	Deadline time.Time `json:"deadline"`
	MaxScore float64   `json:"max_score"`
}

// UserLite summarizes a user without exposing full profile data.
type UserLite struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:          model.ID,
		ProjectID:   model.ProjectID,
		UserID:      model.UserID,
		SubmittedAt: model.SubmittedAt,
		ContentType: model.ContentType,
		ContentURL:  model.ContentURL,
		CodeContent: model.CodeContent,
		IsLate:      model.IsLate,
		LatePenalty: model.LatePenalty,
		RawScore:    model.RawScore,
		BonusPoints: model.BonusPoints,
		Deductions:  model.Deductions,
		FinalScore:  model.FinalScore,
		Status:      model.Status,
		Feedback:    model.Feedback,
		ReviewedBy:  model.ReviewedBy,
		ReviewedAt:  model.ReviewedAt,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
		Project: ProjectLite{
			ID:       model.Project.ID,
			Title:    model.Project.Title,
			Deadline: model.Project.Deadline,
			MaxScore: model.Project.MaxScore,
		},
		User: UserLite{
			ID:    model.User.ID,
			Name:  model.User.Name,
			Email: model.User.Email,
		},
	}
}

// SimilarityFindingResponse exposes one pairwise screening result. A nil
// submission_id marks a comparison whose submission was rejected.
type SimilarityFindingResponse struct {
	ID               uint      `json:"id"`
	ProjectID        uint      `json:"project_id"`
	SubmissionID     *uint     `json:"submission_id"`
	PeerSubmissionID uint      `json:"peer_submission_id"`
	Similarity       float64   `json:"similarity"`
	Flagged          bool      `json:"flagged"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewSimilarityFindingResponseSlice converts finding models into DTOs.
func NewSimilarityFindingResponseSlice(findings []models.SimilarityFinding) []SimilarityFindingResponse {
	responses := make([]SimilarityFindingResponse, 0, len(findings))
	for _, finding := range findings {
		responses = append(responses, SimilarityFindingResponse{
			ID:               finding.ID,
			ProjectID:        finding.ProjectID,
			SubmissionID:     finding.SubmissionID,
			PeerSubmissionID: finding.PeerSubmissionID,
			Similarity:       finding.Similarity,
			Flagged:          finding.Flagged,
			CreatedAt:        finding.CreatedAt,
		})
	}
	return responses
}

// NewSubmissionResponseSlice converts a slice of models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}
	return responses
}
