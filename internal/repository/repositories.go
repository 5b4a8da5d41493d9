package repository

import "sportclub/internal/database"

// Repositories bundles every repository bound to one DBTX. Services build it
// from the pool for reads and from a *database.Tx for atomic writes.
type Repositories struct {
	Users       *UserRepository
	Settings    *SettingsRepository
	Sports      *SportRepository
	Groups      *GroupRepository
	Options     *OptionRepository
	Parents     *ParentRepository
	Children    *ChildRepository
	Memberships *MembershipRepository
	Sessions    *TrainingSessionRepository
	Attendance  *AttendanceRepository
	Trainers    *TrainerAttendanceRepository
	Payments    *PaymentRepository
	Audit       *AuditRepository
}

// New binds all repositories to db
func New(db database.DBTX) *Repositories {
	return &Repositories{
		Users:       NewUserRepository(db),
		Settings:    NewSettingsRepository(db),
		Sports:      NewSportRepository(db),
		Groups:      NewGroupRepository(db),
		Options:     NewOptionRepository(db),
		Parents:     NewParentRepository(db),
		Children:    NewChildRepository(db),
		Memberships: NewMembershipRepository(db),
		Sessions:    NewTrainingSessionRepository(db),
		Attendance:  NewAttendanceRepository(db),
		Trainers:    NewTrainerAttendanceRepository(db),
		Payments:    NewPaymentRepository(db),
		Audit:       NewAuditRepository(db),
	}
}
