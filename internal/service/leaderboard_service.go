package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Marrwan/student-platform-backend-sub000/internal/dto"
	"github.com/Marrwan/student-platform-backend-sub000/internal/models"
	"github.com/Marrwan/student-platform-backend-sub000/internal/observability"
	"github.com/Marrwan/student-platform-backend-sub000/internal/repository"
)

// LeaderboardService recomputes and serves ranked standings per scope and
// time window.
type LeaderboardService interface {
	Recompute(ctx context.Context, challengeID *uint, window string) ([]models.LeaderboardEntry, error)
	RecomputeAll(ctx context.Context) error
	Standings(ctx context.Context, query dto.LeaderboardQuery) (dto.LeaderboardResponse, error)
	RefreshAsync(challengeID *uint)
}

type leaderboardService struct {
	submissions repository.SubmissionRepository
	entries     repository.LeaderboardRepository
	challenges  repository.ChallengeRepository
	users       repository.UserRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewLeaderboardService builds the standings aggregator.
func NewLeaderboardService(submissions repository.SubmissionRepository, entries repository.LeaderboardRepository, challenges repository.ChallengeRepository, users repository.UserRepository, cache *redis.Client, cacheTTL time.Duration, validate *validator.Validate, logger zerolog.Logger) LeaderboardService {
	return &leaderboardService{
		submissions: submissions,
		entries:     entries,
		challenges:  challenges,
		users:       users,
		cache:       cache,
		cacheTTL:    cacheTTL,
		validator:   validate,
		logger:      logger.With().Str("component", "leaderboard_service").Logger(),
		now:         time.Now,
	}
}

// scopeName renders the persisted scope key for a challenge id.
func scopeName(challengeID *uint) string {
	if challengeID == nil {
		return models.ScopeGlobal
	}
	return fmt.Sprintf("challenge:%d", *challengeID)
}

// windowStart returns the inclusive lower bound for a window, or nil for
// all-time. Daily is the current UTC calendar day; weekly trails 7 days and
// monthly trails 30.
func windowStart(now time.Time, window string) *time.Time {
	var start time.Time
	switch window {
	case models.WindowDaily:
		utc := now.UTC()
		start = time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
	case models.WindowWeekly:
		start = now.Add(-7 * 24 * time.Hour)
	case models.WindowMonthly:
		start = now.Add(-30 * 24 * time.Hour)
	default:
		return nil
	}
	return &start
}

// Recompute rebuilds the standings for one (scope, window) pair from graded
// submissions and replaces the stored entries wholesale. Running it twice
// with no intervening data change yields identical output.
func (s *leaderboardService) Recompute(ctx context.Context, challengeID *uint, window string) ([]models.LeaderboardEntry, error) {
	if !models.ValidWindow(window) {
		return nil, ValidationError{Reason: fmt.Sprintf("unknown leaderboard window %q", window)}
	}

	started := s.now()
	scope := scopeName(challengeID)

	submissions, err := s.submissions.ListForStandings(ctx, repository.StandingsFilter{
		ChallengeID: challengeID,
		Since:       windowStart(started, window),
	})
	if err != nil {
		return nil, err
	}

	entries := rankSubmissions(submissions, scope, window, challengeID, started)

	if err := s.entries.Replace(ctx, scope, window, entries); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, scope, window)

	observability.LeaderboardRecomputeDuration().WithLabelValues(scope, window).Observe(time.Since(started).Seconds())
	s.logger.Debug().Str("scope", scope).Str("window", window).Int("entries", len(entries)).Msg("leaderboard recomputed")

	return entries, nil
}

// rankSubmissions aggregates per-user totals and orders them. Ties break by
// earliest last submission, then ascending user id, so ranks are never
// ambiguous.
func rankSubmissions(submissions []models.Submission, scope, window string, challengeID *uint, computedAt time.Time) []models.LeaderboardEntry {
	type aggregate struct {
		totalScore      float64
		completed       map[uint]struct{}
		lastSubmittedAt time.Time
	}

	byUser := make(map[uint]*aggregate)
	for _, submission := range submissions {
		if !submission.CountsForLeaderboard() {
			continue
		}

		agg, ok := byUser[submission.UserID]
		if !ok {
			agg = &aggregate{completed: make(map[uint]struct{})}
			byUser[submission.UserID] = agg
		}

		agg.totalScore += *submission.FinalScore
		agg.completed[submission.ProjectID] = struct{}{}
		if submission.SubmittedAt.After(agg.lastSubmittedAt) {
			agg.lastSubmittedAt = submission.SubmittedAt
		}
	}

	entries := make([]models.LeaderboardEntry, 0, len(byUser))
	for userID, agg := range byUser {
		entries = append(entries, models.LeaderboardEntry{
			Scope:           scope,
			Window:          window,
			UserID:          userID,
			ChallengeID:     challengeID,
			TotalScore:      agg.totalScore,
			CompletedCount:  len(agg.completed),
			LastSubmittedAt: agg.lastSubmittedAt,
			ComputedAt:      computedAt,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalScore != entries[j].TotalScore {
			return entries[i].TotalScore > entries[j].TotalScore
		}
		if !entries[i].LastSubmittedAt.Equal(entries[j].LastSubmittedAt) {
			return entries[i].LastSubmittedAt.Before(entries[j].LastSubmittedAt)
		}
		return entries[i].UserID < entries[j].UserID
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}

	return entries
}

// RecomputeAll refreshes every window for the global scope and each active
// challenge. Used by the scheduler and the admin recompute endpoint.
func (s *leaderboardService) RecomputeAll(ctx context.Context) error {
	windows := []string{models.WindowAllTime, models.WindowDaily, models.WindowWeekly, models.WindowMonthly}

	for _, window := range windows {
		if _, err := s.Recompute(ctx, nil, window); err != nil {
			return err
		}
	}

	challenges, err := s.challenges.List(ctx, true)
	if err != nil {
		return err
	}

	for _, challenge := range challenges {
		id := challenge.ID
		for _, window := range windows {
			if _, err := s.Recompute(ctx, &id, window); err != nil {
				return err
			}
		}
	}

	return nil
}

// RefreshAsync recomputes the affected scopes in the background after a
// review. Errors are logged only; standings tolerate staleness.
func (s *leaderboardService) RefreshAsync(challengeID *uint) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		for _, window := range []string{models.WindowAllTime, models.WindowDaily, models.WindowWeekly, models.WindowMonthly} {
			if _, err := s.Recompute(ctx, nil, window); err != nil {
				s.logger.Warn().Err(err).Str("window", window).Msg("background recompute failed")
			}
			if challengeID != nil {
				if _, err := s.Recompute(ctx, challengeID, window); err != nil {
					s.logger.Warn().Err(err).Str("window", window).Msg("background challenge recompute failed")
				}
			}
		}
	}()
}

// Standings serves the stored entries for a scope/window, with a short-lived
// cache in front of the database.
func (s *leaderboardService) Standings(ctx context.Context, query dto.LeaderboardQuery) (dto.LeaderboardResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return dto.LeaderboardResponse{}, err
	}

	window := query.Window
	if window == "" {
		window = models.WindowAllTime
	}

	scope := scopeName(query.ChallengeID)
	cacheKey := fmt.Sprintf("leaderboard:%s:%s", scope, window)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.LeaderboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read leaderboard cache")
		}
	}

	entries, err := s.entries.List(ctx, scope, window)
	if err != nil {
		return dto.LeaderboardResponse{}, err
	}

	userIDs := make([]uint, 0, len(entries))
	for _, entry := range entries {
		userIDs = append(userIDs, entry.UserID)
	}

	names := map[uint]string{}
	if users, err := s.users.ListByIDs(ctx, userIDs); err == nil {
		for _, user := range users {
			names[user.ID] = user.Name
		}
	} else {
		s.logger.Warn().Err(err).Msg("failed to resolve leaderboard user names")
	}

	response := dto.NewLeaderboardResponse(scope, window, entries, names)

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store leaderboard cache")
			}
		}
	}

	return response, nil
}

func (s *leaderboardService) invalidateCache(ctx context.Context, scope, window string) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Del(ctx, fmt.Sprintf("leaderboard:%s:%s", scope, window)).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate leaderboard cache")
	}
}
