package service

import (
	"fmt"
	"math"
	"sort"
	"time"

	"sportclub/internal/access"
	"sportclub/internal/database"
	"sportclub/internal/models"
	"sportclub/internal/repository"
)

const (
	defaultAuditLimit = 100
	maxAuditLimit     = 1000
)

// AttendanceService records and summarises attendance at training sessions
type AttendanceService struct {
	db    *database.DB
	repos *repository.Repositories
	clock Clock
}

// NewAttendanceService creates a new attendance service
func NewAttendanceService(db *database.DB, clock Clock) *AttendanceService {
	if clock == nil {
		clock = time.Now
	}
	return &AttendanceService{db: db, repos: repository.New(db), clock: clock}
}

// sessionForActor loads a session the actor may manage. Only administrators
// learn that a session does not exist; everyone else gets ErrForbidden.
func sessionForActor(repos *repository.Repositories, actor *access.Actor, sessionID int64) (*models.TrainingSession, error) {
	session, err := repos.Sessions.GetSessionByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		if actor.IsAdmin() {
			return nil, ErrTrainingSessionNotFound
		}
		return nil, access.ErrForbidden
	}
	if err := access.CanManageGroup(repos.Users, actor, session.GroupID); err != nil {
		return nil, err
	}
	return session, nil
}

// checkMarkable loads the session and verifies the actor may mark childID at it
func (s *AttendanceService) checkMarkable(repos *repository.Repositories, actor *access.Actor, sessionID, childID int64) (*models.TrainingSession, error) {
	session, err := sessionForActor(repos, actor, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Cancelled {
		return nil, ErrSessionCancelled
	}
	if !actor.IsAdmin() && session.Date.After(today(s.clock)) {
		return nil, ErrFutureSession
	}

	membership, err := repos.Memberships.GetMembership(childID, session.GroupID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, ErrNotEligible
	}
	if !membership.Covers(session.Date) {
		if !membership.Active {
			return nil, ErrMembershipInactive
		}
		return nil, ErrNotEligible
	}
	return session, nil
}

// ToggleAttendance marks the child present on the first call and flips the
// flag on every later call
func (s *AttendanceService) ToggleAttendance(actor *access.Actor, sessionID, childID int64) (*models.AttendanceRecord, error) {
	var record *models.AttendanceRecord
	err := s.db.InTx(func(tx *database.Tx) error {
		repos := repository.New(tx)
		if _, err := s.checkMarkable(repos, actor, sessionID, childID); err != nil {
			return err
		}

		created, err := repos.Attendance.MarkPresentIfMissing(sessionID, childID, actor.ID())
		if err != nil {
			return err
		}
		if !created {
			if err := repos.Attendance.Flip(sessionID, childID, actor.ID()); err != nil {
				return err
			}
		}

		record, err = repos.Attendance.GetRecord(sessionID, childID)
		if err != nil {
			return err
		}
		if record == nil {
			return fmt.Errorf("attendance record for session %d child %d missing after toggle", sessionID, childID)
		}
		detail := fmt.Sprintf("session=%d child=%d present=%t", sessionID, childID, record.Present)
		return recordAudit(repos, actor, "attendance.toggle", "attendance", record.ID, detail)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// SetAttendance stores an explicit present flag
func (s *AttendanceService) SetAttendance(actor *access.Actor, sessionID, childID int64, present bool) (*models.AttendanceRecord, error) {
	var record *models.AttendanceRecord
	err := s.db.InTx(func(tx *database.Tx) error {
		repos := repository.New(tx)
		if _, err := s.checkMarkable(repos, actor, sessionID, childID); err != nil {
			return err
		}
		if err := repos.Attendance.Set(sessionID, childID, present, actor.ID()); err != nil {
			return err
		}

		var err error
		record, err = repos.Attendance.GetRecord(sessionID, childID)
		if err != nil {
			return err
		}
		if record == nil {
			return fmt.Errorf("attendance record for session %d child %d missing after set", sessionID, childID)
		}
		detail := fmt.Sprintf("session=%d child=%d present=%t", sessionID, childID, present)
		return recordAudit(repos, actor, "attendance.set", "attendance", record.ID, detail)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// SessionRoster lists the children whose membership covers the session date,
// with their mark (nil when unmarked)
func (s *AttendanceService) SessionRoster(actor *access.Actor, sessionID int64) ([]models.RosterEntry, error) {
	session, err := sessionForActor(s.repos, actor, sessionID)
	if err != nil {
		return nil, err
	}

	members, err := s.repos.Memberships.ListGroupMembers(session.GroupID)
	if err != nil {
		return nil, err
	}
	marks, err := s.repos.Attendance.SessionMarks(sessionID)
	if err != nil {
		return nil, err
	}

	roster := []models.RosterEntry{}
	for _, member := range members {
		if !member.Membership.Covers(session.Date) {
			continue
		}
		entry := models.RosterEntry{Child: member.Child}
		if present, ok := marks[member.Child.ID]; ok {
			entry.Present = &present
		}
		roster = append(roster, entry)
	}
	return roster, nil
}

// summarize counts eligible and present sessions for one membership. Sessions
// that are cancelled, in the future or outside the membership are not eligible.
func summarize(membership *models.Membership, sessions []models.TrainingSession, present map[int64]bool, asOf models.Date) (int, int) {
	var attended, eligible int
	for _, session := range sessions {
		if session.Cancelled || session.Date.After(asOf) || !membership.Covers(session.Date) {
			continue
		}
		eligible++
		if present[session.ID] {
			attended++
		}
	}
	return attended, eligible
}

// AttendanceSummary returns the attendance percentage of a child in a group
// over [from, to]
func (s *AttendanceService) AttendanceSummary(actor *access.Actor, groupID, childID int64, from, to models.Date) (*models.AttendanceSummary, error) {
	if err := access.CanManageGroup(s.repos.Users, actor, groupID); err != nil {
		return nil, err
	}
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	child, err := s.repos.Children.GetChildByID(childID)
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, ErrChildNotFound
	}
	membership, err := s.repos.Memberships.GetMembership(childID, groupID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, ErrMembershipNotFound
	}

	sessions, err := s.repos.Sessions.ListSessions(groupID, from, to)
	if err != nil {
		return nil, err
	}
	marks, err := s.repos.Attendance.GroupMarks(groupID, from, to)
	if err != nil {
		return nil, err
	}

	attended, eligible := summarize(membership, sessions, marks[childID], today(s.clock))
	summary := models.NewAttendanceSummary(childID, groupID, from, to, attended, eligible)
	summary.ChildName = child.FullName()
	return &summary, nil
}

// GroupAttendanceSummary returns one summary per member of the group
func (s *AttendanceService) GroupAttendanceSummary(actor *access.Actor, groupID int64, from, to models.Date) ([]models.AttendanceSummary, error) {
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

	members, err := s.repos.Memberships.ListGroupMembers(groupID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.repos.Sessions.ListSessions(groupID, from, to)
	if err != nil {
		return nil, err
	}
	marks, err := s.repos.Attendance.GroupMarks(groupID, from, to)
	if err != nil {
		return nil, err
	}

	asOf := today(s.clock)
	summaries := make([]models.AttendanceSummary, 0, len(members))
	for _, member := range members {
		attended, eligible := summarize(&member.Membership, sessions, marks[member.Child.ID], asOf)
		summary := models.NewAttendanceSummary(member.Child.ID, groupID, from, to, attended, eligible)
		summary.ChildName = member.Child.FullName()
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// ListAudit returns audit entries, newest first
func (s *AttendanceService) ListAudit(actor *access.Actor, targetType string, targetID int64, limit int) ([]models.AuditEntry, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}
	return s.repos.Audit.List(targetType, targetID, limit)
}

// trainerForSession loads the trainer an actor wants to mark. Trainers may
// only mark themselves; administrators may mark any active trainer.
func trainerForSession(repos *repository.Repositories, actor *access.Actor, trainerID int64) (*models.User, error) {
	if !actor.IsAdmin() && actor.UserID != trainerID {
		return nil, access.ErrForbidden
	}
	trainer, err := repos.Users.GetUserByID(trainerID)
	if err != nil {
		return nil, err
	}
	if trainer == nil || trainer.Role != models.RoleTrainer || !trainer.Active {
		return nil, ErrTrainerNotFound
	}
	return trainer, nil
}

// ToggleTrainerAttendance marks a trainer present at a session on the first
// call and flips the flag afterwards. Marking a trainer who is not assigned to
// the group records the visit as extra access.
func (s *AttendanceService) ToggleTrainerAttendance(actor *access.Actor, sessionID, trainerID int64) (*models.TrainerAttendance, error) {
	var record *models.TrainerAttendance
	err := s.db.InTx(func(tx *database.Tx) error {
		repos := repository.New(tx)
		session, err := sessionForActor(repos, actor, sessionID)
		if err != nil {
			return err
		}
		if _, err := trainerForSession(repos, actor, trainerID); err != nil {
			return err
		}
		if session.Cancelled {
			return ErrSessionCancelled
		}
		if !actor.IsAdmin() && session.Date.After(today(s.clock)) {
			return ErrFutureSession
		}

		assigned, err := repos.Users.IsAssigned(trainerID, session.GroupID)
		if err != nil {
			return err
		}
		created, err := repos.Trainers.MarkPresentIfMissing(sessionID, trainerID, !assigned, actor.ID())
		if err != nil {
			return err
		}
		if !created {
			if err := repos.Trainers.Flip(sessionID, trainerID, actor.ID()); err != nil {
				return err
			}
		}

		record, err = repos.Trainers.GetRecord(sessionID, trainerID)
		if err != nil {
			return err
		}
		if record == nil {
			return fmt.Errorf("trainer attendance for session %d trainer %d missing after toggle", sessionID, trainerID)
		}
		detail := fmt.Sprintf("session=%d trainer=%d present=%t extra=%t", sessionID, trainerID, record.Present, record.ExtraAccess)
		return recordAudit(repos, actor, "trainer_attendance.toggle", "trainer_attendance", record.ID, detail)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// SessionTrainers lists the group's trainers at a session plus any visiting
// trainer with a record. Trainers only see their own entry.
func (s *AttendanceService) SessionTrainers(actor *access.Actor, sessionID int64) ([]models.TrainerRosterEntry, error) {
	session, err := sessionForActor(s.repos, actor, sessionID)
	if err != nil {
		return nil, err
	}
	trainers, err := s.repos.Users.ListGroupTrainers(session.GroupID)
	if err != nil {
		return nil, err
	}
	records, err := s.repos.Trainers.SessionRecords(sessionID)
	if err != nil {
		return nil, err
	}

	entries := []models.TrainerRosterEntry{}
	add := func(user *models.User, assigned bool) {
		if !actor.IsAdmin() && user.ID != actor.UserID {
			return
		}
		entry := models.TrainerRosterEntry{TrainerID: user.ID, Name: user.FullName(), Assigned: assigned}
		if rec, ok := records[user.ID]; ok {
			present := rec.Present
			entry.Present = &present
			entry.ExtraAccess = rec.ExtraAccess
		}
		entries = append(entries, entry)
	}

	seen := make(map[int64]bool, len(trainers))
	for i := range trainers {
		seen[trainers[i].ID] = true
		add(&trainers[i], true)
	}

	var visitors []int64
	for id := range records {
		if !seen[id] {
			visitors = append(visitors, id)
		}
	}
	sort.Slice(visitors, func(i, j int) bool { return visitors[i] < visitors[j] })
	for _, id := range visitors {
		user, err := s.repos.Users.GetUserByID(id)
		if err != nil {
			return nil, err
		}
		if user != nil {
			add(user, false)
		}
	}
	return entries, nil
}

// TrainerAttendanceSummary returns how many of the group's held sessions in
// [from, to] the trainer attended. Trainers may only ask about themselves.
func (s *AttendanceService) TrainerAttendanceSummary(actor *access.Actor, groupID, trainerID int64, from, to models.Date) (*models.TrainerAttendanceSummary, error) {
	if err := access.CanManageGroup(s.repos.Users, actor, groupID); err != nil {
		return nil, err
	}
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	trainer, err := trainerForSession(s.repos, actor, trainerID)
	if err != nil {
		return nil, err
	}

	sessions, err := s.repos.Sessions.ListSessions(groupID, from, to)
	if err != nil {
		return nil, err
	}
	present, err := s.repos.Trainers.PresentSessionIDs(groupID, trainerID, from, to)
	if err != nil {
		return nil, err
	}

	asOf := today(s.clock)
	summary := &models.TrainerAttendanceSummary{
		TrainerID:   trainerID,
		TrainerName: trainer.FullName(),
		GroupID:     groupID,
		From:        from,
		To:          to,
	}
	for _, session := range sessions {
		if session.Cancelled || session.Date.After(asOf) {
			continue
		}
		summary.Sessions++
		if present[session.ID] {
			summary.Present++
		}
	}
	if summary.Sessions > 0 {
		summary.HasData = true
		summary.Percentage = math.Round(float64(summary.Present)*1000/float64(summary.Sessions)) / 10
	}
	return summary, nil
}
