package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Marrwan/student-platform-backend-sub000/internal/models"
	"github.com/Marrwan/student-platform-backend-sub000/internal/repository"
)

// IsProjectVisible decides whether a project is currently visible and
// submittable. The explicit unlock flag wins outright; otherwise auto-unlock
// requires the open date to have arrived, every prerequisite to be completed
// and the configured unlock time of day to have passed. The current time is
// an argument so the function stays pure.
func IsProjectVisible(project models.Project, now time.Time, completed map[uint]struct{}) bool {
	if project.IsUnlocked {
		return true
	}

	if !project.AutoUnlock {
		return false
	}

	if project.OpenAt != nil && now.Before(*project.OpenAt) {
		return false
	}

	// Unmet prerequisites keep a project locked even past its open date.
	for _, id := range project.Prerequisites {
		if _, ok := completed[id]; !ok {
			return false
		}
	}

	if project.UnlockTime != "" {
		hour, minute, ok := parseUnlockTime(project.UnlockTime)
		if ok {
			gate := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
			if now.Before(gate) {
				return false
			}
		}
	}

	return true
}

// CompletedSet converts a list of project ids into a membership set.
func CompletedSet(ids []uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func parseUnlockTime(value string) (hour, minute int, ok bool) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, false
	}

	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, false
	}

	return hour, minute, true
}

// UnlockService runs the scheduled sweep that persists is_unlocked flips for
// auto-unlock projects whose conditions are now met.
type UnlockService interface {
	Sweep(ctx context.Context) (int, error)
}

type unlockService struct {
	projects repository.ProjectRepository
	logger   zerolog.Logger
	now      func() time.Time
}

// NewUnlockService constructs the sweep service.
func NewUnlockService(projects repository.ProjectRepository, logger zerolog.Logger) UnlockService {
	return &unlockService{
		projects: projects,
		logger:   logger.With().Str("component", "unlock_service").Logger(),
		now:      time.Now,
	}
}

// Sweep flips is_unlocked on every auto-unlock candidate that has no
// prerequisites and whose schedule gates have passed. Prerequisite-gated
// projects are deliberately skipped: their visibility is per-user and is
// evaluated at read time instead.
func (s *unlockService) Sweep(ctx context.Context) (int, error) {
	now := s.now()

	candidates, err := s.projects.ListAutoUnlockCandidates(ctx, now)
	if err != nil {
		return 0, err
	}

	flipped := 0
	for _, project := range candidates {
		if len(project.Prerequisites) > 0 {
			continue
		}

		if !IsProjectVisible(project, now, nil) {
			continue
		}

		if err := s.projects.SetUnlocked(ctx, project.ID, true); err != nil {
			s.logger.Warn().Err(err).Uint("project_id", project.ID).Msg("failed to persist unlock")
			continue
		}
		flipped++
	}

	if flipped > 0 {
		s.logger.Info().Int("count", flipped).Msg("projects auto-unlocked")
	}

	return flipped, nil
}
