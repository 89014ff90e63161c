package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/Marrwan/student-platform-backend-sub000/internal/dto"
	"github.com/Marrwan/student-platform-backend-sub000/internal/models"
	"github.com/Marrwan/student-platform-backend-sub000/internal/observability"
	"github.com/Marrwan/student-platform-backend-sub000/internal/repository"
)

// SubmissionService orchestrates the submission lifecycle: admission guards,
// atomic creation and the best-effort reviewer notification.
type SubmissionService interface {
	List(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error)
	Get(ctx context.Context, id uint) (dto.SubmissionResponse, error)
	Create(ctx context.Context, userID uint, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error)
	// Reopen deletes a submission so the user can submit again. This is the
	// admin override path for cleared similarity flags and regrades.
	Reopen(ctx context.Context, id uint) error
	// Findings returns the similarity audit trail touching a submission,
	// including rejected attempts recorded against it as a peer.
	Findings(ctx context.Context, submissionID uint) ([]dto.SimilarityFindingResponse, error)
}

type submissionService struct {
	submissions   repository.SubmissionRepository
	projects      repository.ProjectRepository
	findings      repository.SimilarityRepository
	payments      PaymentService
	validator     *validator.Validate
	notifier      Notifier
	logger        zerolog.Logger
	threshold     float64
	reviewerEmail string
	now           func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(subRepo repository.SubmissionRepository, projectRepo repository.ProjectRepository, findingRepo repository.SimilarityRepository, payments PaymentService, validate *validator.Validate, notifier Notifier, threshold float64, reviewerEmail string, logger zerolog.Logger) SubmissionService {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}

	return &submissionService{
		submissions:   subRepo,
		projects:      projectRepo,
		findings:      findingRepo,
		payments:      payments,
		validator:     validate,
		notifier:      notifier,
		logger:        logger.With().Str("component", "submission_service").Logger(),
		threshold:     threshold,
		reviewerEmail: reviewerEmail,
		now:           time.Now,
	}
}

func (s *submissionService) List(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	repoFilter := repository.SubmissionFilter{
		ProjectID: filter.ProjectID,
		UserID:    filter.UserID,
		Status:    filter.Status,
	}

	submissions, err := s.submissions.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) Get(ctx context.Context, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

// Create runs every admission guard and persists the submission together
// with its similarity findings in one transaction. Any guard failure fails
// the whole operation; no partial record survives. The storage-level unique
// index, not this method, arbitrates concurrent duplicate attempts.
func (s *submissionService) Create(ctx context.Context, userID uint, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if err := validateContent(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	project, err := s.projects.GetByID(ctx, payload.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrProjectNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if !project.AcceptsSubmissionType(payload.ContentType) {
		return dto.SubmissionResponse{}, NotEligible("project %q does not accept %s submissions", project.Title, payload.ContentType)
	}

	now := s.now()

	completedIDs, err := s.projects.CompletedProjectIDs(ctx, userID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if !IsProjectVisible(project, now, CompletedSet(completedIDs)) {
		return dto.SubmissionResponse{}, NotEligible("project %q is not open for submissions", project.Title)
	}

	isLate, penalty := EvaluateLateness(project, now)
	if isLate {
		if !project.AllowLateSubmission {
			return dto.SubmissionResponse{}, NotEligible("project %q does not accept late submissions", project.Title)
		}

		cleared, err := s.payments.IsLateSubmissionCleared(ctx, userID, project)
		if err != nil {
			return dto.SubmissionResponse{}, err
		}
		if !cleared {
			return dto.SubmissionResponse{}, ErrPaymentRequired
		}
	}

	peers, err := s.submissions.ListByProject(ctx, project.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	// Exclude the user's own prior rows; they would be caught by the unique
	// index anyway and must not count as peer matches.
	otherPeers := peers[:0:0]
	for _, peer := range peers {
		if peer.UserID != userID {
			otherPeers = append(otherPeers, peer)
		}
	}

	content := payload.CodeContent
	if content == "" {
		content = payload.ContentURL
	}

	screen := ScreenContent(content, otherPeers, s.threshold)
	if screen.Flagged {
		// The submission is rejected, but the audit trail survives: every
		// pairwise finding is persisted without a submission row.
		for i := range screen.Findings {
			screen.Findings[i].ProjectID = project.ID
		}
		if err := s.findings.Record(ctx, screen.Findings); err != nil {
			return dto.SubmissionResponse{}, err
		}

		observability.SubmissionOutcomes().WithLabelValues("similarity_flagged").Inc()
		s.logger.Warn().Uint("user_id", userID).Uint("project_id", project.ID).Float64("similarity", screen.MaxSimilarity).Msg("submission flagged by similarity screen")
		return dto.SubmissionResponse{}, SimilarityError{Similarity: screen.MaxSimilarity, Threshold: s.threshold}
	}

	submission := models.Submission{
		ProjectID:   project.ID,
		UserID:      userID,
		SubmittedAt: now,
		ContentType: payload.ContentType,
		ContentURL:  payload.ContentURL,
		CodeContent: payload.CodeContent,
		IsLate:      isLate,
		LatePenalty: penalty,
		Status:      models.SubmissionStatusSubmitted,
	}

	if err := s.submissions.CreateWithFindings(ctx, &submission, screen.Findings); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			observability.SubmissionOutcomes().WithLabelValues("duplicate").Inc()
			return dto.SubmissionResponse{}, ErrAlreadySubmitted
		}
		return dto.SubmissionResponse{}, err
	}

	observability.SubmissionOutcomes().WithLabelValues("accepted").Inc()

	created, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().Uint("submission_id", created.ID).Uint("project_id", project.ID).Bool("is_late", isLate).Msg("submission created")

	if s.notifier != nil && s.reviewerEmail != "" {
		go s.notifier.Notify(context.WithoutCancel(ctx), s.reviewerEmail,
			fmt.Sprintf("New submission for %s", project.Title),
			fmt.Sprintf("%s submitted work for %q and is awaiting review.", created.User.Name, project.Title))
	}

	return dto.NewSubmissionResponse(created), nil
}

func (s *submissionService) Reopen(ctx context.Context, id uint) error {
	if _, err := s.submissions.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubmissionNotFound
		}
		return err
	}

	if err := s.submissions.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Uint("submission_id", id).Msg("submission reopened")

	return nil
}

func (s *submissionService) Findings(ctx context.Context, submissionID uint) ([]dto.SimilarityFindingResponse, error) {
	if _, err := s.submissions.GetByID(ctx, submissionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}

	findings, err := s.findings.ListBySubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	return dto.NewSimilarityFindingResponseSlice(findings), nil
}

func validateContent(payload dto.SubmissionCreateRequest) error {
	switch payload.ContentType {
	case models.SubmissionTypeCode:
		if payload.CodeContent == "" {
			return ValidationError{Reason: "code_content is required for code submissions"}
		}
	case models.SubmissionTypeGithubLink, models.SubmissionTypeFile:
		if payload.ContentURL == "" {
			return ValidationError{Reason: fmt.Sprintf("content_url is required for %s submissions", payload.ContentType)}
		}
	}
	return nil
}
