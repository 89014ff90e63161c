package models

import "time"

// Leaderboard windows. Monthly is a trailing 30-day window, weekly trailing
// 7 days, daily the current UTC calendar day.
const (
	WindowAllTime = "all_time"
	WindowDaily   = "daily"
	WindowWeekly  = "weekly"
	WindowMonthly = "monthly"
)

// ScopeGlobal is the leaderboard scope spanning every challenge.
const ScopeGlobal = "global"

// LeaderboardEntry is a cached ranking row, fully recomputable from accepted
// and reviewed submissions. Recomputation replaces all entries for a
// (scope, window) pair.
type LeaderboardEntry struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Scope           string    `gorm:"size:64;not null;uniqueIndex:idx_leaderboard_scope_window_user" json:"scope"`
	Window          string    `gorm:"size:16;not null;uniqueIndex:idx_leaderboard_scope_window_user" json:"window"`
	UserID          uint      `gorm:"not null;uniqueIndex:idx_leaderboard_scope_window_user" json:"user_id"`
	ChallengeID     *uint     `gorm:"index" json:"challenge_id"`
	TotalScore      float64   `gorm:"not null" json:"total_score"`
	CompletedCount  int       `gorm:"not null" json:"completed_count"`
	LastSubmittedAt time.Time `json:"last_submitted_at"`
	Rank            int       `gorm:"not null" json:"rank"`
	ComputedAt      time.Time `gorm:"not null" json:"computed_at"`
}

// ValidWindow reports whether the supplied window name is recognised.
func ValidWindow(window string) bool {
	switch window {
	case WindowAllTime, WindowDaily, WindowWeekly, WindowMonthly:
		return true
	}
	return false
}
