package scheduler

import (
	"errors"
	"testing"
)

type fakeGenerator struct {
	days  []int
	err   error
	count int
}

func (f *fakeGenerator) GenerateUpcoming(horizonDays int) (int, error) {
	f.days = append(f.days, horizonDays)
	return f.count, f.err
}

type fakeCleaner struct {
	calls int
}

func (f *fakeCleaner) CleanupExpiredSessions() (int64, error) {
	f.calls++
	return 2, nil
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantJobs int
		wantErr  bool
	}{
		{name: "both jobs", cfg: Config{HorizonSchedule: "@daily", HorizonDays: 28, CleanupSchedule: "@hourly"}, wantJobs: 2},
		{name: "cleanup disabled", cfg: Config{HorizonSchedule: "0 3 * * *", HorizonDays: 28}, wantJobs: 1},
		{name: "nothing scheduled", cfg: Config{}, wantJobs: 0},
		{name: "invalid spec", cfg: Config{HorizonSchedule: "every tuesday"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.cfg, &fakeGenerator{}, &fakeCleaner{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got := s.Jobs(); got != tt.wantJobs {
				t.Errorf("Jobs() = %d, want %d", got, tt.wantJobs)
			}
		})
	}
}

func TestRunHorizon(t *testing.T) {
	gen := &fakeGenerator{count: 4}
	s, err := New(Config{HorizonDays: 14}, gen, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	s.runHorizon()
	if len(gen.days) != 1 || gen.days[0] != 14 {
		t.Errorf("GenerateUpcoming() calls = %v, want [14]", gen.days)
	}

	gen.err = errors.New("database is locked")
	s.runHorizon()
	if len(gen.days) != 2 {
		t.Errorf("GenerateUpcoming() calls = %d, want 2", len(gen.days))
	}
}

func TestRunHorizonDisabled(t *testing.T) {
	gen := &fakeGenerator{}
	s, _ := New(Config{HorizonDays: 0}, gen, nil)
	s.runHorizon()
	if len(gen.days) != 0 {
		t.Errorf("GenerateUpcoming() called with zero horizon")
	}
}

func TestRunCleanup(t *testing.T) {
	cleaner := &fakeCleaner{}
	s, _ := New(Config{}, nil, cleaner)
	s.runCleanup()
	if cleaner.calls != 1 {
		t.Errorf("CleanupExpiredSessions() calls = %d, want 1", cleaner.calls)
	}
}
