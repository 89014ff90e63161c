package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/require"

	"github.com/Marrwan/student-platform-backend-sub000/internal/dto"
	"github.com/Marrwan/student-platform-backend-sub000/internal/models"
)

type fakeStandingsRefresher struct {
	calls []*uint
}

func (f *fakeStandingsRefresher) RefreshAsync(challengeID *uint) {
	f.calls = append(f.calls, challengeID)
}

func newReviewFixture(t *testing.T, submission models.Submission) (*reviewService, *fakeSubmissionRepo, *fakeStandingsRefresher) {
	t.Helper()

	repo := &fakeSubmissionRepo{
		submissions: map[uint]models.Submission{submission.ID: submission},
		nextID:      submission.ID,
	}
	refresher := &fakeStandingsRefresher{}

	svc := &reviewService{
		submissions: repo,
		validator:   validator.New(validator.WithRequiredStructEnabled()),
		notifier:    &fakeNotifier{},
		standings:   refresher,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      testLogger(),
		now:         func() time.Time { return time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC) },
	}

	return svc, repo, refresher
}

func lateSubmission() models.Submission {
	return models.Submission{
		ID:          1,
		ProjectID:   2,
		UserID:      3,
		SubmittedAt: time.Date(2026, 3, 11, 2, 0, 0, 0, time.UTC),
		IsLate:      true,
		LatePenalty: 20,
		Status:      models.SubmissionStatusSubmitted,
		Project: models.Project{
			ID:       2,
			Title:    "Queue Worker",
			MaxScore: 100,
		},
		User: models.User{ID: 3, Name: "Ada", Email: "ada@example.com"},
	}
}

func TestReviewAppliesScoringFormula(t *testing.T) {
	svc, repo, refresher := newReviewFixture(t, lateSubmission())

	result, err := svc.Review(context.Background(), 1, dto.ReviewRequest{
		Status:      models.SubmissionStatusAccepted,
		RawScore:    80,
		BonusPoints: 5,
		Deductions:  10,
		Feedback:    "solid work",
	}, 42)
	require.NoError(t, err)
	require.NotNil(t, result.FinalScore)
	require.Equal(t, 55.0, *result.FinalScore, "80 + 5 - 10 - 20 late penalty")
	require.Equal(t, models.SubmissionStatusAccepted, result.Status)
	require.NotNil(t, result.ReviewedBy)
	require.Equal(t, uint(42), *result.ReviewedBy)
	require.Equal(t, 1, repo.updateCalls)
	require.Len(t, refresher.calls, 1)
}

func TestReviewScoreExceedsMax(t *testing.T) {
	svc, repo, _ := newReviewFixture(t, lateSubmission())

	_, err := svc.Review(context.Background(), 1, dto.ReviewRequest{
		Status:   models.SubmissionStatusAccepted,
		RawScore: 101,
	}, 42)
	require.ErrorIs(t, err, ErrScoreExceedsMax)
	require.Zero(t, repo.updateCalls)
}

func TestReviewPreservesRecordedLateness(t *testing.T) {
	svc, repo, _ := newReviewFixture(t, lateSubmission())

	_, err := svc.Review(context.Background(), 1, dto.ReviewRequest{
		Status:   models.SubmissionStatusReviewed,
		RawScore: 100,
	}, 42)
	require.NoError(t, err)

	stored := repo.submissions[1]
	require.True(t, stored.IsLate)
	require.Equal(t, 20.0, stored.LatePenalty, "a review must not reclassify lateness")
	require.Equal(t, 80.0, *stored.FinalScore)
}

func TestReviewOverwritesPriorVerdict(t *testing.T) {
	svc, repo, _ := newReviewFixture(t, lateSubmission())

	_, err := svc.Review(context.Background(), 1, dto.ReviewRequest{Status: models.SubmissionStatusRejected, RawScore: 10}, 42)
	require.NoError(t, err)

	result, err := svc.Review(context.Background(), 1, dto.ReviewRequest{Status: models.SubmissionStatusAccepted, RawScore: 90}, 43)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusAccepted, result.Status)
	require.Equal(t, 70.0, *result.FinalScore)
	require.Equal(t, 2, repo.updateCalls)
}

func TestReviewSanitizesFeedback(t *testing.T) {
	svc, repo, _ := newReviewFixture(t, lateSubmission())

	_, err := svc.Review(context.Background(), 1, dto.ReviewRequest{
		Status:   models.SubmissionStatusAccepted,
		RawScore: 50,
		Feedback: `nice <script>alert("x")</script>work`,
	}, 42)
	require.NoError(t, err)
	require.NotContains(t, repo.submissions[1].Feedback, "<script>")
}

func TestReviewUnknownSubmission(t *testing.T) {
	svc, _, _ := newReviewFixture(t, lateSubmission())

	_, err := svc.Review(context.Background(), 99, dto.ReviewRequest{
		Status:   models.SubmissionStatusAccepted,
		RawScore: 50,
	}, 42)
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestReviewInvalidStatusRejected(t *testing.T) {
	svc, _, _ := newReviewFixture(t, lateSubmission())

	_, err := svc.Review(context.Background(), 1, dto.ReviewRequest{
		Status:   "approved",
		RawScore: 50,
	}, 42)
	require.Error(t, err)

	var validationErrors validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrors)
}
