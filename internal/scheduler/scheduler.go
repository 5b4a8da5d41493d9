package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// HorizonGenerator creates training sessions for the coming days
type HorizonGenerator interface {
	GenerateUpcoming(horizonDays int) (int, error)
}

// SessionCleaner removes expired login sessions
type SessionCleaner interface {
	CleanupExpiredSessions() (int64, error)
}

// Config holds the cron specs of the background jobs
type Config struct {
	HorizonSchedule string
	HorizonDays     int
	CleanupSchedule string
}

// Scheduler runs the background jobs in-process
type Scheduler struct {
	cron     *cron.Cron
	sessions HorizonGenerator
	logins   SessionCleaner
	days     int
}

// New registers the jobs. An empty schedule disables that job.
func New(cfg Config, sessions HorizonGenerator, logins SessionCleaner) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(),
		sessions: sessions,
		logins:   logins,
		days:     cfg.HorizonDays,
	}

	if cfg.HorizonSchedule != "" {
		if _, err := s.cron.AddFunc(cfg.HorizonSchedule, s.runHorizon); err != nil {
			return nil, fmt.Errorf("invalid horizon schedule %q: %w", cfg.HorizonSchedule, err)
		}
	}
	if cfg.CleanupSchedule != "" {
		if _, err := s.cron.AddFunc(cfg.CleanupSchedule, s.runCleanup); err != nil {
			return nil, fmt.Errorf("invalid cleanup schedule %q: %w", cfg.CleanupSchedule, err)
		}
	}
	return s, nil
}

// Jobs reports how many jobs are registered
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

// Start runs the scheduler in its own goroutine. The horizon is filled once
// right away so a fresh deployment has sessions before the first tick.
func (s *Scheduler) Start() {
	go s.runHorizon()
	s.cron.Start()
}

// Stop stops scheduling and returns a context done once running jobs finish
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) runHorizon() {
	if s.sessions == nil || s.days <= 0 {
		return
	}
	created, err := s.sessions.GenerateUpcoming(s.days)
	if err != nil {
		log.Printf("sessions.horizon failed: %v", err)
	}
	log.Printf("sessions.horizon: created %d training sessions for the next %d days", created, s.days)
}

func (s *Scheduler) runCleanup() {
	if s.logins == nil {
		return
	}
	removed, err := s.logins.CleanupExpiredSessions()
	if err != nil {
		log.Printf("sessions.cleanup failed: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("sessions.cleanup: removed %d expired login sessions", removed)
	}
}
