package models

import "time"

// Submission lifecycle states.
const (
	// SubmissionStatusSubmitted indicates the submission is awaiting review.
	SubmissionStatusSubmitted = "submitted"
	// SubmissionStatusAccepted indicates the submission passed review.
	SubmissionStatusAccepted = "accepted"
	// SubmissionStatusRejected indicates the submission failed review.
	SubmissionStatusRejected = "rejected"
	// SubmissionStatusReviewed indicates the submission was scored without an
	// accept/reject verdict.
	SubmissionStatusReviewed = "reviewed"
)

// Submission records a student's single attempt at a project. The unique
// index on (project_id, user_id) enforces at most one submission per user per
// project; resubmission requires an explicit admin reopen.
type Submission struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ProjectID   uint       `gorm:"not null;uniqueIndex:idx_submissions_project_user" json:"project_id"`
	UserID      uint       `gorm:"not null;uniqueIndex:idx_submissions_project_user" json:"user_id"`
	SubmittedAt time.Time  `gorm:"not null" json:"submitted_at"`
	ContentType string     `gorm:"size:32;not null" json:"content_type"`
	ContentURL  string     `gorm:"size:512" json:"content_url"`
	CodeContent string     `gorm:"type:text" json:"code_content"`
	IsLate      bool       `gorm:"not null;default:false" json:"is_late"`
	LatePenalty float64    `gorm:"not null;default:0" json:"late_penalty"`
	RawScore    *float64   `json:"raw_score"`
	BonusPoints float64    `gorm:"not null;default:0" json:"bonus_points"`
	Deductions  float64    `gorm:"not null;default:0" json:"deductions"`
	FinalScore  *float64   `json:"final_score"`
	Status      string     `gorm:"size:32;not null" json:"status"`
	Feedback    string     `gorm:"type:text" json:"feedback"`
	ReviewedBy  *uint      `json:"reviewed_by"`
	ReviewedAt  *time.Time `json:"reviewed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Project     Project    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"project"`
	User        User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user"`
}

// IsGraded reports whether a reviewer has produced a final score.
func (s Submission) IsGraded() bool {
	return s.Status == SubmissionStatusAccepted ||
		s.Status == SubmissionStatusRejected ||
		s.Status == SubmissionStatusReviewed
}

// CountsForLeaderboard reports whether the submission contributes to
// leaderboard standings.
func (s Submission) CountsForLeaderboard() bool {
	return (s.Status == SubmissionStatusAccepted || s.Status == SubmissionStatusReviewed) &&
		s.FinalScore != nil
}

// Content returns the comparable text body of the submission for similarity
// screening.
func (s Submission) Content() string {
	if s.CodeContent != "" {
		return s.CodeContent
	}
	return s.ContentURL
}
