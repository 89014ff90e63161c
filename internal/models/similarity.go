package models

import "time"

// SimilarityFinding is an immutable audit record of one pairwise content
// comparison performed at submission time. Rows exist for every compared
// pair, flagged or not, so borderline cases can be reviewed manually later.
// A flagged comparison rejects the submission before it is stored, so
// SubmissionID is nil on those rows; the peer side always exists.
type SimilarityFinding struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ProjectID        uint      `gorm:"not null;index" json:"project_id"`
	SubmissionID     *uint     `gorm:"index" json:"submission_id"`
	PeerSubmissionID uint      `gorm:"not null" json:"peer_submission_id"`
	Similarity       float64   `gorm:"not null" json:"similarity"`
	Flagged          bool      `gorm:"not null;default:false" json:"flagged"`
	CreatedAt        time.Time `json:"created_at"`
}
