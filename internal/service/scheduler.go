package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler runs the periodic unlock sweep and leaderboard refresh.
type Scheduler struct {
	cron        *cron.Cron
	unlock      UnlockService
	leaderboard LeaderboardService
	logger      zerolog.Logger
}

// NewScheduler wires the background jobs onto a cron runner.
func NewScheduler(unlock UnlockService, leaderboard LeaderboardService, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:        cron.New(),
		unlock:      unlock,
		leaderboard: leaderboard,
		logger:      logger.With().Str("component", "scheduler").Logger(),
	}
}

// Start registers and launches the jobs: the unlock sweep every minute, the
// standings refresh every five.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("* * * * *", s.runUnlockSweep); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc("*/5 * * * *", s.runLeaderboardRefresh); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info().Msg("scheduler started")

	return nil
}

// Stop halts the cron runner and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("scheduler stopped")
}

func (s *Scheduler) runUnlockSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := s.unlock.Sweep(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("unlock sweep failed")
	}
}

func (s *Scheduler) runLeaderboardRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.leaderboard.RecomputeAll(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("leaderboard refresh failed")
	}
}
