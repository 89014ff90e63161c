package dto

import (
	"time"

	"github.com/Marrwan/student-platform-backend-sub000/internal/models"
)

// LeaderboardQuery selects a standings scope and time window.
type LeaderboardQuery struct {
	ChallengeID *uint  `query:"challenge_id" validate:"omitempty,gt=0"`
	Window      string `query:"window" validate:"omitempty,oneof=all_time daily weekly monthly"`
}

// LeaderboardEntryResponse is one ranked row in the standings.
type LeaderboardEntryResponse struct {
	Rank            int       `json:"rank"`
	UserID          uint      `json:"user_id"`
	UserName        string    `json:"user_name,omitempty"`
	TotalScore      float64   `json:"total_score"`
	CompletedCount  int       `json:"completed_count"`
	LastSubmittedAt time.Time `json:"last_submitted_at"`
}

// LeaderboardResponse wraps the ranked standings for a scope/window pair.
type LeaderboardResponse struct {
	Scope      string                     `json:"scope"`
	Window     string                     `json:"window"`
	ComputedAt time.Time                  `json:"computed_at"`
	Entries    []LeaderboardEntryResponse `json:"entries"`
}

// NewLeaderboardResponse converts stored entries into the API shape. Names
// are resolved separately and may be absent.
func NewLeaderboardResponse(scope, window string, entries []models.LeaderboardEntry, names map[uint]string) LeaderboardResponse {
	response := LeaderboardResponse{
		Scope:   scope,
		Window:  window,
		Entries: make([]LeaderboardEntryResponse, 0, len(entries)),
	}

	for _, entry := range entries {
		if entry.ComputedAt.After(response.ComputedAt) {
			response.ComputedAt = entry.ComputedAt
		}
		response.Entries = append(response.Entries, LeaderboardEntryResponse{
			Rank:            entry.Rank,
			UserID:          entry.UserID,
			UserName:        names[entry.UserID],
			TotalScore:      entry.TotalScore,
			CompletedCount:  entry.CompletedCount,
			LastSubmittedAt: entry.LastSubmittedAt,
		})
	}

	return response
}
