package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"sportclub/internal/access"
	"sportclub/internal/database"
	"sportclub/internal/models"
	"sportclub/internal/repository"
	"sportclub/internal/validation"
)

// MaxGenerationSpanDays bounds a single session generation request
const MaxGenerationSpanDays = 366

// GenerationResult lists every session in the requested range and how many
// of them this call created
type GenerationResult struct {
	Sessions []models.TrainingSession `json:"sessions"`
	Created  int                      `json:"created"`
}

// ScheduleService expands weekly schedules into dated training sessions
type ScheduleService struct {
	db    *database.DB
	repos *repository.Repositories
	clock Clock
}

// NewScheduleService creates a new schedule service
func NewScheduleService(db *database.DB, clock Clock) *ScheduleService {
	if clock == nil {
		clock = time.Now
	}
	return &ScheduleService{db: db, repos: repository.New(db), clock: clock}
}

// ExpandDates returns every date in [from, to] whose ISO weekday is in the set
func ExpandDates(weekdays models.WeekdaySet, from, to models.Date) []models.Date {
	dates := []models.Date{}
	for d := from; !d.After(to); d = d.AddDays(1) {
		if weekdays.Contains(d.ISOWeekday()) {
			dates = append(dates, d)
		}
	}
	return dates
}

// validateRange checks from <= to and the maximum span
func validateRange(from, to models.Date) error {
	if to.Before(from) {
		return validation.ValidationError{Field: "to", Message: "must not be before from"}
	}
	if to.Sub(from.Time) > MaxGenerationSpanDays*24*time.Hour {
		return validation.ValidationError{Field: "to", Message: fmt.Sprintf("range must not exceed %d days", MaxGenerationSpanDays)}
	}
	return nil
}

// GenerateSessions persists the group's sessions in [from, to], clamped to the
// group's season. Dates that already have a session are left untouched.
func (s *ScheduleService) GenerateSessions(actor *access.Actor, groupID int64, from, to models.Date) (*GenerationResult, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	group, err := s.repos.Groups.GetGroupByID(groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	if group.Archived {
		return nil, ErrGroupArchived
	}

	result, err := s.generate(group, from, to)
	if err != nil {
		return nil, err
	}
	if result.Created > 0 {
		detail := fmt.Sprintf("from=%s to=%s created=%d", from, to, result.Created)
		if err := recordAudit(s.repos, actor, "sessions.generate", "group", group.ID, detail); err != nil {
			log.Printf("Failed to audit session generation: %v", err)
		}
	}
	return result, nil
}

func (s *ScheduleService) generate(group *models.Group, from, to models.Date) (*GenerationResult, error) {
	result := &GenerationResult{}

	err := s.db.InTx(func(tx *database.Tx) error {
		sessions := repository.NewTrainingSessionRepository(tx)
		for _, date := range ExpandDates(group.Weekdays, from, to) {
			if !group.InSeason(date) {
				continue
			}
			created, err := sessions.InsertIfMissing(group.ID, date)
			if err != nil {
				return err
			}
			if created {
				result.Created++
			}
		}

		var err error
		result.Sessions, err = sessions.ListSessions(group.ID, from, to)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GenerateUpcoming keeps every active group scheduled horizonDays ahead.
// It runs from the scheduler without an actor. A failing group does not stop
// the others; all failures are returned together.
func (s *ScheduleService) GenerateUpcoming(horizonDays int) (int, error) {
	groups, err := s.repos.Groups.ListGroups(0, false)
	if err != nil {
		return 0, err
	}

	from := today(s.clock)
	to := from.AddDays(horizonDays)
	total := 0
	var errs []error
	for i := range groups {
		result, err := s.generate(&groups[i], from, to)
		if err != nil {
			log.Printf("Failed to generate sessions for group %d: %v", groups[i].ID, err)
			errs = append(errs, fmt.Errorf("group %d: %w", groups[i].ID, err))
			continue
		}
		total += result.Created
	}
	return total, errors.Join(errs...)
}

// ListSessions returns the group's sessions in [from, to]
func (s *ScheduleService) ListSessions(actor *access.Actor, groupID int64, from, to models.Date) ([]models.TrainingSession, error) {
	if err := access.CanManageGroup(s.repos.Users, actor, groupID); err != nil {
		return nil, err
	}
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	group, err := s.repos.Groups.GetGroupByID(groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return s.repos.Sessions.ListSessions(groupID, from, to)
}

// CancelSession marks a session as cancelled
func (s *ScheduleService) CancelSession(actor *access.Actor, sessionID int64) (*models.TrainingSession, error) {
	return s.setCancelled(actor, sessionID, true)
}

// RestoreSession reverts a cancellation
func (s *ScheduleService) RestoreSession(actor *access.Actor, sessionID int64) (*models.TrainingSession, error) {
	return s.setCancelled(actor, sessionID, false)
}

func (s *ScheduleService) setCancelled(actor *access.Actor, sessionID int64, cancelled bool) (*models.TrainingSession, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	session, err := s.repos.Sessions.GetSessionByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrTrainingSessionNotFound
	}
	if session.Cancelled == cancelled {
		return session, nil
	}

	if err := s.repos.Sessions.SetCancelled(sessionID, cancelled); err != nil {
		return nil, err
	}
	session.Cancelled = cancelled

	action := "session.restore"
	if cancelled {
		action = "session.cancel"
	}
	if err := recordAudit(s.repos, actor, action, "training_session", sessionID, "date="+session.Date.String()); err != nil {
		log.Printf("Failed to audit %s: %v", action, err)
	}
	return session, nil
}
