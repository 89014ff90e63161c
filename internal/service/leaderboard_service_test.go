package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Marrwan/student-platform-backend-sub000/internal/dto"
	"github.com/Marrwan/student-platform-backend-sub000/internal/models"
	"github.com/Marrwan/student-platform-backend-sub000/internal/repository"
)

type fakeLeaderboardRepo struct {
	stored map[string][]models.LeaderboardEntry
}

func (f *fakeLeaderboardRepo) Replace(ctx context.Context, scope, window string, entries []models.LeaderboardEntry) error {
	if f.stored == nil {
		f.stored = map[string][]models.LeaderboardEntry{}
	}
	f.stored[scope+"/"+window] = entries
	return nil
}

func (f *fakeLeaderboardRepo) List(ctx context.Context, scope, window string) ([]models.LeaderboardEntry, error) {
	return f.stored[scope+"/"+window], nil
}

type fakeChallengeRepo struct {
	challenges    map[uint]models.Challenge
	registrations map[uint]int64
	registered    map[[2]uint]bool
}

func (f *fakeChallengeRepo) List(ctx context.Context, activeOnly bool) ([]models.Challenge, error) {
	var challenges []models.Challenge
	for _, challenge := range f.challenges {
		if activeOnly && !challenge.IsActive {
			continue
		}
		challenges = append(challenges, challenge)
	}
	return challenges, nil
}

func (f *fakeChallengeRepo) GetByID(ctx context.Context, id uint) (models.Challenge, error) {
	challenge, ok := f.challenges[id]
	if !ok {
		return models.Challenge{}, gorm.ErrRecordNotFound
	}
	return challenge, nil
}

func (f *fakeChallengeRepo) Create(ctx context.Context, challenge *models.Challenge) error {
	if f.challenges == nil {
		f.challenges = map[uint]models.Challenge{}
	}
	challenge.ID = uint(len(f.challenges) + 1)
	f.challenges[challenge.ID] = *challenge
	return nil
}

func (f *fakeChallengeRepo) Update(ctx context.Context, challenge *models.Challenge) error {
	f.challenges[challenge.ID] = *challenge
	return nil
}

func (f *fakeChallengeRepo) IsRegistered(ctx context.Context, challengeID, userID uint) (bool, error) {
	return f.registered[[2]uint{challengeID, userID}], nil
}

func (f *fakeChallengeRepo) CountRegistrations(ctx context.Context, challengeID uint) (int64, error) {
	return f.registrations[challengeID], nil
}

func (f *fakeChallengeRepo) Register(ctx context.Context, registration *models.ChallengeRegistration, maxParticipants int) error {
	if maxParticipants > 0 && f.registrations[registration.ChallengeID] >= int64(maxParticipants) {
		return repository.ErrChallengeCapacityReached
	}
	if f.registered[[2]uint{registration.ChallengeID, registration.UserID}] {
		return gorm.ErrDuplicatedKey
	}
	if f.registered == nil {
		f.registered = map[[2]uint]bool{}
	}
	if f.registrations == nil {
		f.registrations = map[uint]int64{}
	}
	f.registered[[2]uint{registration.ChallengeID, registration.UserID}] = true
	f.registrations[registration.ChallengeID]++
	return nil
}

func gradedSubmission(id, userID, projectID uint, score float64, submittedAt time.Time) models.Submission {
	return models.Submission{
		ID:          id,
		ProjectID:   projectID,
		UserID:      userID,
		SubmittedAt: submittedAt,
		Status:      models.SubmissionStatusAccepted,
		FinalScore:  &score,
	}
}

func newLeaderboardFixture(t *testing.T, cache *redis.Client) (*leaderboardService, *fakeSubmissionRepo, *fakeLeaderboardRepo) {
	t.Helper()

	subRepo := &fakeSubmissionRepo{submissions: map[uint]models.Submission{}}
	entryRepo := &fakeLeaderboardRepo{}

	svc := &leaderboardService{
		submissions: subRepo,
		entries:     entryRepo,
		challenges:  &fakeChallengeRepo{},
		users: &fakeUserRepo{users: map[uint]models.User{
			1: {ID: 1, Name: "Ada"},
			2: {ID: 2, Name: "Grace"},
			3: {ID: 3, Name: "Edsger"},
		}},
		cache:     cache,
		cacheTTL:  time.Minute,
		validator: validator.New(validator.WithRequiredStructEnabled()),
		logger:    testLogger(),
		now:       func() time.Time { return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC) },
	}

	return svc, subRepo, entryRepo
}

func TestLeaderboardRecomputeRanksAndTieBreaks(t *testing.T) {
	svc, subRepo, _ := newLeaderboardFixture(t, nil)

	early := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	late := time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC)

	subRepo.submissions[1] = gradedSubmission(1, 1, 10, 90, late)
	subRepo.submissions[2] = gradedSubmission(2, 2, 10, 90, early)
	subRepo.submissions[3] = gradedSubmission(3, 3, 10, 95, late)

	entries, err := svc.Recompute(context.Background(), nil, models.WindowAllTime)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	require.Equal(t, uint(3), entries[0].UserID, "highest total score first")
	require.Equal(t, 1, entries[0].Rank)
	require.Equal(t, uint(2), entries[1].UserID, "equal scores break ties by earliest last submission")
	require.Equal(t, uint(1), entries[2].UserID)
	require.Equal(t, 3, entries[2].Rank)
}

func TestLeaderboardRecomputeAggregatesPerUser(t *testing.T) {
	svc, subRepo, _ := newLeaderboardFixture(t, nil)

	at := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	subRepo.submissions[1] = gradedSubmission(1, 1, 10, 40, at)
	subRepo.submissions[2] = gradedSubmission(2, 1, 11, 55, at.Add(time.Hour))

	entries, err := svc.Recompute(context.Background(), nil, models.WindowAllTime)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, 95.0, entries[0].TotalScore)
	require.Equal(t, 2, entries[0].CompletedCount)
	require.Equal(t, at.Add(time.Hour), entries[0].LastSubmittedAt)
}

func TestLeaderboardRecomputeIdempotent(t *testing.T) {
	svc, subRepo, entryRepo := newLeaderboardFixture(t, nil)

	at := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	subRepo.submissions[1] = gradedSubmission(1, 1, 10, 80, at)

	first, err := svc.Recompute(context.Background(), nil, models.WindowAllTime)
	require.NoError(t, err)

	second, err := svc.Recompute(context.Background(), nil, models.WindowAllTime)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Len(t, entryRepo.stored["global/all_time"], 1)
}

func TestLeaderboardRecomputeExcludesUngraded(t *testing.T) {
	svc, subRepo, _ := newLeaderboardFixture(t, nil)

	at := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	subRepo.submissions[1] = gradedSubmission(1, 1, 10, 80, at)

	pending := gradedSubmission(2, 2, 10, 0, at)
	pending.Status = models.SubmissionStatusSubmitted
	pending.FinalScore = nil
	subRepo.submissions[2] = pending

	rejected := gradedSubmission(3, 3, 10, 60, at)
	rejected.Status = models.SubmissionStatusRejected
	subRepo.submissions[3] = rejected

	entries, err := svc.Recompute(context.Background(), nil, models.WindowAllTime)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, uint(1), entries[0].UserID)
}

func TestLeaderboardRecomputeUnknownWindow(t *testing.T) {
	svc, _, _ := newLeaderboardFixture(t, nil)

	_, err := svc.Recompute(context.Background(), nil, "yearly")

	var validation ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestLeaderboardWindowStart(t *testing.T) {
	now := time.Date(2026, 3, 15, 18, 30, 0, 0, time.UTC)

	require.Nil(t, windowStart(now, models.WindowAllTime))

	daily := windowStart(now, models.WindowDaily)
	require.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), *daily)

	weekly := windowStart(now, models.WindowWeekly)
	require.Equal(t, now.Add(-7*24*time.Hour), *weekly)

	monthly := windowStart(now, models.WindowMonthly)
	require.Equal(t, now.Add(-30*24*time.Hour), *monthly)
}

func TestLeaderboardStandingsCaches(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	svc, subRepo, _ := newLeaderboardFixture(t, cache)

	at := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	subRepo.submissions[1] = gradedSubmission(1, 1, 10, 80, at)

	_, err := svc.Recompute(context.Background(), nil, models.WindowAllTime)
	require.NoError(t, err)

	standings, err := svc.Standings(context.Background(), dto.LeaderboardQuery{Window: models.WindowAllTime})
	require.NoError(t, err)
	require.Len(t, standings.Entries, 1)
	require.Equal(t, "Ada", standings.Entries[0].UserName)
	require.True(t, mr.Exists("leaderboard:global:all_time"))

	// A recompute invalidates the cached page.
	_, err = svc.Recompute(context.Background(), nil, models.WindowAllTime)
	require.NoError(t, err)
	require.False(t, mr.Exists("leaderboard:global:all_time"))
}
