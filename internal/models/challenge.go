package models

import (
	"time"

	"gorm.io/datatypes"
)

// Challenge groups projects under a scoped leaderboard and controls who may
// register and when.
type Challenge struct {
	ID                   uint                      `gorm:"primaryKey" json:"id"`
	Title                string                    `gorm:"size:255;not null" json:"title"`
	Description          string                    `gorm:"type:text" json:"description"`
	// No column default: a default:true tag would make gorm drop an explicit
	// false on insert. The create path sets new challenges active.
	IsActive             bool                      `gorm:"not null" json:"is_active"`
	StartDate            time.Time                 `gorm:"not null" json:"start_date"`
	EndDate              time.Time                 `gorm:"not null" json:"end_date"`
	MaxParticipants      int                       `gorm:"not null;default:0" json:"max_participants"`
	AllowPreRegistration bool                      `gorm:"not null;default:false" json:"allow_pre_registration"`
	ExemptClassIDs       datatypes.JSONSlice[uint] `json:"exempt_class_ids"`
	CreatedAt            time.Time                 `json:"created_at"`
	UpdatedAt            time.Time                 `json:"updated_at"`
	Projects             []Project                 `json:"-"`
}

// HasCapacityLimit reports whether the challenge caps registrations.
func (c Challenge) HasCapacityLimit() bool {
	return c.MaxParticipants > 0
}

// ExemptsClass reports whether members of the given class are barred from
// registering.
func (c Challenge) ExemptsClass(classID *uint) bool {
	if classID == nil {
		return false
	}
	for _, id := range c.ExemptClassIDs {
		if id == *classID {
			return true
		}
	}
	return false
}

// ChallengeRegistration links a user to a challenge. The unique index keeps
// registration idempotent at the storage layer.
type ChallengeRegistration struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ChallengeID  uint      `gorm:"not null;uniqueIndex:idx_registrations_challenge_user" json:"challenge_id"`
	UserID       uint      `gorm:"not null;uniqueIndex:idx_registrations_challenge_user" json:"user_id"`
	RegisteredAt time.Time `gorm:"not null" json:"registered_at"`
	Challenge    Challenge `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	User         User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
