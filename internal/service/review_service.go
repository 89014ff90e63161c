package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/Marrwan/student-platform-backend-sub000/internal/dto"
	"github.com/Marrwan/student-platform-backend-sub000/internal/repository"
)

// ErrScoreExceedsMax indicates a raw score surpasses the project max.
var ErrScoreExceedsMax = errors.New("raw score exceeds project max score")

// ReviewService encapsulates the admin grading workflow. A review moves a
// submission into a terminal graded state and computes its final score; a
// re-review overwrites the scoring fields but never the recorded lateness.
type ReviewService interface {
	Review(ctx context.Context, submissionID uint, payload dto.ReviewRequest, reviewerID uint) (dto.SubmissionResponse, error)
}

// StandingsRefresher is notified after a review so cached rankings can catch
// up. Refreshes are best-effort; standings tolerate being one recompute
// behind.
type StandingsRefresher interface {
	RefreshAsync(challengeID *uint)
}

type reviewService struct {
	submissions repository.SubmissionRepository
	validator   *validator.Validate
	notifier    Notifier
	standings   StandingsRefresher
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewReviewService constructs the grading service.
func NewReviewService(submissions repository.SubmissionRepository, validate *validator.Validate, notifier Notifier, standings StandingsRefresher, logger zerolog.Logger) ReviewService {
	return &reviewService{
		submissions: submissions,
		validator:   validate,
		notifier:    notifier,
		standings:   standings,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "review_service").Logger(),
		now:         time.Now,
	}
}

func (s *reviewService) Review(ctx context.Context, submissionID uint, payload dto.ReviewRequest, reviewerID uint) (dto.SubmissionResponse, error) {
	tracer := otel.Tracer("github.com/Marrwan/student-platform-backend-sub000/internal/service/review")
	ctx, span := tracer.Start(ctx, "review.grade")
	span.SetAttributes(
		attribute.Int64("review.submission_id", int64(submissionID)),
		attribute.Int64("review.reviewer_id", int64(reviewerID)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "submission_not_found")
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_lookup_failed")
		return dto.SubmissionResponse{}, err
	}

	maxScore := submission.Project.MaxScore
	if maxScore <= 0 {
		maxScore = 100
	}

	if payload.RawScore > maxScore {
		span.SetStatus(codes.Error, "score_exceeds_max")
		return dto.SubmissionResponse{}, ErrScoreExceedsMax
	}

	if submission.IsGraded() {
		s.logger.Info().Uint("submission_id", submission.ID).Msg("overwriting an existing review")
	}

	// The late penalty was fixed at submission time; a review must not be
	// able to silently reclassify a user's lateness.
	finalScore := FinalScore(payload.RawScore, payload.BonusPoints, payload.Deductions, submission.LatePenalty, maxScore)

	rawScore := payload.RawScore
	submission.RawScore = &rawScore
	submission.BonusPoints = payload.BonusPoints
	submission.Deductions = payload.Deductions
	submission.FinalScore = &finalScore
	submission.Status = payload.Status
	submission.Feedback = s.sanitizer.Sanitize(payload.Feedback)
	reviewedAt := s.now()
	submission.ReviewedAt = &reviewedAt
	reviewer := reviewerID
	submission.ReviewedBy = &reviewer

	if err := s.submissions.Update(ctx, &submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_update_failed")
		return dto.SubmissionResponse{}, err
	}

	span.SetAttributes(
		attribute.Float64("review.final_score", finalScore),
		attribute.String("review.status", submission.Status),
	)

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Float64("final_score", finalScore).
		Str("status", submission.Status).
		Msg("submission reviewed")

	if s.notifier != nil && submission.User.Email != "" {
		go s.notifier.Notify(context.WithoutCancel(ctx), submission.User.Email,
			fmt.Sprintf("Your submission for %s was reviewed", submission.Project.Title),
			fmt.Sprintf("Status: %s. Final score: %.1f/%.0f.", submission.Status, finalScore, maxScore))
	}

	if s.standings != nil {
		s.standings.RefreshAsync(submission.Project.ChallengeID)
	}

	return dto.NewSubmissionResponse(submission), nil
}
