package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/Marrwan/student-platform-backend-sub000/internal/dto"
	"github.com/Marrwan/student-platform-backend-sub000/internal/models"
	"github.com/Marrwan/student-platform-backend-sub000/internal/repository"
)

// ChallengeService manages challenges and the registration admission gate.
type ChallengeService interface {
	List(ctx context.Context) ([]dto.ChallengeResponse, error)
	Create(ctx context.Context, payload dto.ChallengeCreateRequest) (dto.ChallengeResponse, error)
	Register(ctx context.Context, challengeID, userID uint) (dto.RegistrationResponse, error)
}

type challengeService struct {
	challenges repository.ChallengeRepository
	users      repository.UserRepository
	validator  *validator.Validate
	logger     zerolog.Logger
	now        func() time.Time
}

// NewChallengeService constructs a ChallengeService instance.
func NewChallengeService(challenges repository.ChallengeRepository, users repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) ChallengeService {
	return &challengeService{
		challenges: challenges,
		users:      users,
		validator:  validate,
		logger:     logger.With().Str("component", "challenge_service").Logger(),
		now:        time.Now,
	}
}

func (s *challengeService) List(ctx context.Context) ([]dto.ChallengeResponse, error) {
	challenges, err := s.challenges.List(ctx, false)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ChallengeResponse, 0, len(challenges))
	for _, challenge := range challenges {
		count, err := s.challenges.CountRegistrations(ctx, challenge.ID)
		if err != nil {
			return nil, err
		}
		responses = append(responses, dto.NewChallengeResponse(challenge, count))
	}

	return responses, nil
}

func (s *challengeService) Create(ctx context.Context, payload dto.ChallengeCreateRequest) (dto.ChallengeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ChallengeResponse{}, err
	}

	challenge := models.Challenge{
		Title:                payload.Title,
		Description:          payload.Description,
		IsActive:             true,
		StartDate:            payload.StartDate,
		EndDate:              payload.EndDate,
		MaxParticipants:      payload.MaxParticipants,
		AllowPreRegistration: payload.AllowPreRegistration,
		ExemptClassIDs:       payload.ExemptClassIDs,
	}

	if err := s.challenges.Create(ctx, &challenge); err != nil {
		return dto.ChallengeResponse{}, err
	}

	s.logger.Info().Uint("challenge_id", challenge.ID).Msg("challenge created")

	return dto.NewChallengeResponse(challenge, 0), nil
}

// Register runs the eligibility checks in a fixed order and surfaces the
// first failure as the rejection reason. The capacity check is re-run inside
// the insert transaction so concurrent registrations cannot oversubscribe.
func (s *challengeService) Register(ctx context.Context, challengeID, userID uint) (dto.RegistrationResponse, error) {
	challenge, err := s.challenges.GetByID(ctx, challengeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RegistrationResponse{}, ErrChallengeNotFound
		}
		return dto.RegistrationResponse{}, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RegistrationResponse{}, ErrUserNotFound
		}
		return dto.RegistrationResponse{}, err
	}

	now := s.now()

	if !challenge.IsActive {
		return dto.RegistrationResponse{}, NotEligible("challenge %q is not active", challenge.Title)
	}

	// Pre-registration before the start date is an opt-in per challenge.
	if now.Before(challenge.StartDate) && !challenge.AllowPreRegistration {
		return dto.RegistrationResponse{}, NotEligible("registration for %q has not opened yet", challenge.Title)
	}

	if now.After(challenge.EndDate) {
		return dto.RegistrationResponse{}, NotEligible("registration for %q has closed", challenge.Title)
	}

	registered, err := s.challenges.IsRegistered(ctx, challengeID, userID)
	if err != nil {
		return dto.RegistrationResponse{}, err
	}
	if registered {
		return dto.RegistrationResponse{}, ErrAlreadyRegistered
	}

	if challenge.HasCapacityLimit() {
		count, err := s.challenges.CountRegistrations(ctx, challengeID)
		if err != nil {
			return dto.RegistrationResponse{}, err
		}
		if count >= int64(challenge.MaxParticipants) {
			return dto.RegistrationResponse{}, NotEligible("challenge is full")
		}
	}

	if challenge.ExemptsClass(user.ClassID) {
		return dto.RegistrationResponse{}, NotEligible("your class is exempt from this challenge")
	}

	registration := models.ChallengeRegistration{
		ChallengeID:  challengeID,
		UserID:       userID,
		RegisteredAt: now,
	}

	if err := s.challenges.Register(ctx, &registration, challenge.MaxParticipants); err != nil {
		switch {
		case errors.Is(err, repository.ErrChallengeCapacityReached):
			return dto.RegistrationResponse{}, NotEligible("challenge is full")
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return dto.RegistrationResponse{}, ErrAlreadyRegistered
		}
		return dto.RegistrationResponse{}, err
	}

	s.logger.Info().Uint("challenge_id", challengeID).Uint("user_id", userID).Msg("challenge registration created")

	return dto.RegistrationResponse{
		ChallengeID:  challengeID,
		UserID:       userID,
		RegisteredAt: registration.RegisteredAt,
	}, nil
}
