package models

import (
	"time"

	"gorm.io/datatypes"
)

// Submission content types a project may accept.
const (
	SubmissionTypeGithubLink = "github_link"
	SubmissionTypeCode       = "code"
	SubmissionTypeFile       = "file"
)

// Project is a gradeable item students submit work against. A project may
// belong to a challenge (scoped leaderboard) or stand alone.
type Project struct {
	ID                  uint                        `gorm:"primaryKey" json:"id"`
	ChallengeID         *uint                       `gorm:"index" json:"challenge_id"`
	Title               string                      `gorm:"size:255;not null" json:"title"`
	Description         string                      `gorm:"type:text" json:"description"`
	OpenAt              *time.Time                  `json:"open_at"`
	Deadline            time.Time                   `gorm:"not null" json:"deadline"`
	MaxScore            float64                     `gorm:"not null;default:100" json:"max_score"`
	IsUnlocked          bool                        `gorm:"not null;default:false" json:"is_unlocked"`
	// No column default: gorm omits a false with a default:true tag on
	// insert, which would silently re-enable auto-unlock on manual-release
	// projects. The create path supplies the default instead.
	AutoUnlock bool `gorm:"not null" json:"auto_unlock"`
	UnlockTime          string                      `gorm:"size:5" json:"unlock_time"`
	Prerequisites       datatypes.JSONSlice[uint]   `json:"prerequisites"`
	LatePenaltyPerHour  float64                     `gorm:"not null;default:0" json:"late_penalty_per_hour"`
	MaxLateHours        *int                        `json:"max_late_hours"`
	AllowLateSubmission bool                        `gorm:"not null;default:false" json:"allow_late_submission"`
	RequireLateFee      bool                        `gorm:"not null;default:false" json:"require_late_fee"`
	LateFeeAmount       int64                       `gorm:"not null;default:0" json:"late_fee_amount"`
	SubmissionTypes     datatypes.JSONSlice[string] `json:"submission_types"`
	CreatedBy           uint                        `json:"created_by"`
	CreatedAt           time.Time                   `json:"created_at"`
	UpdatedAt           time.Time                   `json:"updated_at"`
	Submissions         []Submission                `json:"-"`
}

// IsPastDeadline reports whether a submission at the reference time is late.
// Deadline is the sole authority for lateness.
func (p Project) IsPastDeadline(reference time.Time) bool {
	return reference.After(p.Deadline)
}

// AcceptsSubmissionType reports whether the given content type satisfies the
// project's required submission types. A project with no configured types
// accepts any of the known ones.
func (p Project) AcceptsSubmissionType(submissionType string) bool {
	if len(p.SubmissionTypes) == 0 {
		return submissionType == SubmissionTypeGithubLink ||
			submissionType == SubmissionTypeCode ||
			submissionType == SubmissionTypeFile
	}
	for _, t := range p.SubmissionTypes {
		if t == submissionType {
			return true
		}
	}
	return false
}
