package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"sportclub/internal/database"
	"sportclub/internal/models"
	"sportclub/internal/repository"
)

// BackupVersion is written into every backup and checked on import
const BackupVersion = "1.0"

// BackupData represents the complete database backup structure
type BackupData struct {
	Version      string                    `json:"version"`
	ExportedAt   time.Time                 `json:"exported_at"`
	DatabaseType string                    `json:"database_type"`
	Users        []UserBackup              `json:"users"`
	Sports       []SportBackup             `json:"sports"`
	Groups       []GroupBackup             `json:"groups"`
	Options      []OptionBackup            `json:"attendance_options"`
	Parents      []ParentBackup            `json:"parents"`
	Children     []ChildBackup             `json:"children"`
	Memberships  []MembershipBackup        `json:"memberships"`
	Sessions     []SessionBackup           `json:"training_sessions"`
	Attendance   []AttendanceBackup        `json:"attendance"`
	Audit        []AuditBackup             `json:"audit_log"`
	Payments     []PaymentBackup           `json:"received_payments"`
	Trainers     []TrainerAttendanceBackup `json:"trainer_attendance"`
	Settings     map[string]string         `json:"settings"`
}

// UserBackup represents a staff account with its group assignments
type UserBackup struct {
	ID            int64   `json:"id"`
	Email         string  `json:"email"`
	PasswordHash  string  `json:"password_hash"`
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name"`
	Phone         string  `json:"phone"`
	Role          string  `json:"role"`
	Active        bool    `json:"active"`
	OAuthProvider string  `json:"oauth_provider"`
	OAuthSubject  string  `json:"oauth_subject"`
	GroupIDs      []int64 `json:"group_ids"`
}

// SportBackup represents a sport
type SportBackup struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// GroupBackup represents a training group
type GroupBackup struct {
	ID                int64        `json:"id"`
	SportID           int64        `json:"sport_id"`
	Name              string       `json:"name"`
	Weekdays          string       `json:"weekdays"`
	StartDate         *models.Date `json:"start_date"`
	EndDate           *models.Date `json:"end_date"`
	RegistrationState string       `json:"registration_state"`
	MaxMembers        int          `json:"max_members"`
	Archived          bool         `json:"archived"`
}

// OptionBackup represents an attendance option
type OptionBackup struct {
	ID               int64  `json:"id"`
	GroupID          int64  `json:"group_id"`
	Name             string `json:"name"`
	FrequencyPerWeek int    `json:"frequency_per_week"`
	PriceMinor       int64  `json:"price_minor"`
}

// ParentBackup represents a parent contact
type ParentBackup struct {
	ID         int64  `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
}

// ChildBackup represents a child record
type ChildBackup struct {
	ID             int64  `json:"id"`
	PublicID       string `json:"public_id"`
	ParentID       int64  `json:"parent_id"`
	NationalID     string `json:"national_id"`
	PassportNumber string `json:"passport_number"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Phone          string `json:"phone"`
	VariableSymbol string `json:"variable_symbol"`
}

// MembershipBackup represents a membership
type MembershipBackup struct {
	ID           int64        `json:"id"`
	ChildID      int64        `json:"child_id"`
	GroupID      int64        `json:"group_id"`
	OptionID     *int64       `json:"attendance_option_id"`
	RegisteredOn models.Date  `json:"registered_on"`
	Active       bool         `json:"active"`
	EndedOn      *models.Date `json:"ended_on"`
	BillingStart *models.Date `json:"billing_start_month"`
}

// SessionBackup represents a training session
type SessionBackup struct {
	ID        int64       `json:"id"`
	GroupID   int64       `json:"group_id"`
	Date      models.Date `json:"date"`
	Cancelled bool        `json:"cancelled"`
}

// AttendanceBackup represents an attendance record
type AttendanceBackup struct {
	SessionID  int64     `json:"session_id"`
	ChildID    int64     `json:"child_id"`
	Present    bool      `json:"present"`
	RecordedBy *int64    `json:"recorded_by"`
	RecordedAt time.Time `json:"recorded_at"`
}

// TrainerAttendanceBackup represents a trainer's mark at a session
type TrainerAttendanceBackup struct {
	SessionID   int64     `json:"session_id"`
	TrainerID   int64     `json:"trainer_id"`
	Present     bool      `json:"present"`
	ExtraAccess bool      `json:"extra_access"`
	RecordedBy  *int64    `json:"recorded_by"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// PaymentBackup represents a received payment
type PaymentBackup struct {
	ReceivedDate   models.Date `json:"received_date"`
	VariableSymbol string      `json:"variable_symbol"`
	AmountMinor    int64       `json:"amount_minor"`
	SenderName     string      `json:"sender_name"`
	Note           string      `json:"note"`
}

// AuditBackup represents an audit entry. Target ids are kept as exported.
type AuditBackup struct {
	ActorID    *int64    `json:"actor_id"`
	Action     string    `json:"action"`
	TargetType string    `json:"target_type"`
	TargetID   int64     `json:"target_id"`
	Detail     string    `json:"detail"`
	CreatedAt  time.Time `json:"created_at"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportTo(file); err != nil {
		return err
	}
	log.Printf("Database exported successfully to %s", outputPath)
	return nil
}

// ExportTo writes a complete backup as indented JSON
func (s *BackupService) ExportTo(w io.Writer) error {
	log.Println("Starting database export...")

	backup, err := s.collect()
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	log.Printf("Exported: %d users, %d sports, %d groups, %d children, %d memberships, %d sessions, %d attendance records, %d payments",
		len(backup.Users), len(backup.Sports), len(backup.Groups), len(backup.Children),
		len(backup.Memberships), len(backup.Sessions), len(backup.Attendance), len(backup.Payments))
	return nil
}

func (s *BackupService) collect() (*BackupData, error) {
	backup := &BackupData{
		Version:      BackupVersion,
		ExportedAt:   time.Now(),
		DatabaseType: s.db.Dialect.DriverName(),
		Settings:     map[string]string{},
	}

	steps := []struct {
		name string
		fn   func(*BackupData) error
	}{
		{"users", s.exportUsers},
		{"sports", s.exportSports},
		{"groups", s.exportGroups},
		{"attendance options", s.exportOptions},
		{"parents", s.exportParents},
		{"children", s.exportChildren},
		{"memberships", s.exportMemberships},
		{"training sessions", s.exportSessions},
		{"attendance", s.exportAttendance},
		{"trainer attendance", s.exportTrainerAttendance},
		{"payments", s.exportPayments},
		{"audit log", s.exportAudit},
		{"settings", s.exportSettings},
	}
	for _, step := range steps {
		if err := step.fn(backup); err != nil {
			return nil, fmt.Errorf("failed to export %s: %w", step.name, err)
		}
	}
	return backup, nil
}

// Import restores a database from a backup file
func (s *BackupService) Import(inputPath string) error {
	log.Printf("Starting database import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores a backup in one transaction. Rows are merged on
// their natural keys (emails, names, public ids, dates) and get new ids; all
// references are remapped.
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != BackupVersion {
		return fmt.Errorf("unsupported backup version %q", backup.Version)
	}
	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	err := s.db.InTx(func(tx *database.Tx) error {
		imp := &importer{tx: tx, repos: repository.New(tx), ids: newIDMaps()}
		return imp.run(&backup)
	})
	if err != nil {
		return err
	}

	log.Println("Database import completed successfully")
	return nil
}

func (s *BackupService) exportUsers(backup *BackupData) error {
	query := `
		SELECT id, email, password_hash, first_name, last_name, phone, role, active,
			COALESCE(oauth_provider, ''), COALESCE(oauth_subject, '')
		FROM users ORDER BY id
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var u UserBackup
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Phone, &u.Role, &u.Active, &u.OAuthProvider, &u.OAuthSubject); err != nil {
			return err
		}
		backup.Users = append(backup.Users, u)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	assignments, err := repository.NewUserRepository(s.db).GetAllAssignments()
	if err != nil {
		return err
	}
	for i := range backup.Users {
		backup.Users[i].GroupIDs = assignments[backup.Users[i].ID]
	}
	return nil
}

func (s *BackupService) exportSports(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, name FROM sports ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var sp SportBackup
		if err := rows.Scan(&sp.ID, &sp.Name); err != nil {
			return err
		}
		backup.Sports = append(backup.Sports, sp)
	}
	return rows.Err()
}

func (s *BackupService) exportGroups(backup *BackupData) error {
	query := `
		SELECT id, sport_id, name, weekdays, start_date, end_date, registration_state, max_members, archived
		FROM training_groups ORDER BY id
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var g GroupBackup
		if err := rows.Scan(&g.ID, &g.SportID, &g.Name, &g.Weekdays, &g.StartDate, &g.EndDate, &g.RegistrationState, &g.MaxMembers, &g.Archived); err != nil {
			return err
		}
		backup.Groups = append(backup.Groups, g)
	}
	return rows.Err()
}

func (s *BackupService) exportOptions(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, group_id, name, frequency_per_week, price_minor FROM attendance_options ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var o OptionBackup
		if err := rows.Scan(&o.ID, &o.GroupID, &o.Name, &o.FrequencyPerWeek, &o.PriceMinor); err != nil {
			return err
		}
		backup.Options = append(backup.Options, o)
	}
	return rows.Err()
}

func (s *BackupService) exportParents(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, first_name, last_name, email, phone, street, city, postal_code FROM parents ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p ParentBackup
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Phone, &p.Street, &p.City, &p.PostalCode); err != nil {
			return err
		}
		backup.Parents = append(backup.Parents, p)
	}
	return rows.Err()
}

func (s *BackupService) exportChildren(backup *BackupData) error {
	query := `
		SELECT id, public_id, parent_id, COALESCE(national_id, ''), COALESCE(passport_number, ''),
			first_name, last_name, phone, COALESCE(variable_symbol, '')
		FROM children ORDER BY id
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c ChildBackup
		if err := rows.Scan(&c.ID, &c.PublicID, &c.ParentID, &c.NationalID, &c.PassportNumber, &c.FirstName, &c.LastName, &c.Phone, &c.VariableSymbol); err != nil {
			return err
		}
		backup.Children = append(backup.Children, c)
	}
	return rows.Err()
}

func (s *BackupService) exportMemberships(backup *BackupData) error {
	query := `
		SELECT id, child_id, group_id, attendance_option_id, registered_on, active, ended_on, billing_start_month
		FROM memberships ORDER BY id
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var m MembershipBackup
		if err := rows.Scan(&m.ID, &m.ChildID, &m.GroupID, &m.OptionID, &m.RegisteredOn, &m.Active, &m.EndedOn, &m.BillingStart); err != nil {
			return err
		}
		backup.Memberships = append(backup.Memberships, m)
	}
	return rows.Err()
}

func (s *BackupService) exportSessions(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, group_id, session_date, cancelled FROM training_sessions ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var ts SessionBackup
		if err := rows.Scan(&ts.ID, &ts.GroupID, &ts.Date, &ts.Cancelled); err != nil {
			return err
		}
		backup.Sessions = append(backup.Sessions, ts)
	}
	return rows.Err()
}

func (s *BackupService) exportAttendance(backup *BackupData) error {
	rows, err := s.db.Query("SELECT session_id, child_id, present, recorded_by, recorded_at FROM attendance_records ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var a AttendanceBackup
		if err := rows.Scan(&a.SessionID, &a.ChildID, &a.Present, &a.RecordedBy, &a.RecordedAt); err != nil {
			return err
		}
		backup.Attendance = append(backup.Attendance, a)
	}
	return rows.Err()
}

func (s *BackupService) exportTrainerAttendance(backup *BackupData) error {
	rows, err := s.db.Query("SELECT session_id, trainer_id, present, extra_access, recorded_by, recorded_at FROM trainer_attendance ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var t TrainerAttendanceBackup
		if err := rows.Scan(&t.SessionID, &t.TrainerID, &t.Present, &t.ExtraAccess, &t.RecordedBy, &t.RecordedAt); err != nil {
			return err
		}
		backup.Trainers = append(backup.Trainers, t)
	}
	return rows.Err()
}

func (s *BackupService) exportPayments(backup *BackupData) error {
	payments, err := repository.New(s.db).Payments.ListPayments()
	if err != nil {
		return err
	}
	for _, p := range payments {
		backup.Payments = append(backup.Payments, PaymentBackup{
			ReceivedDate:   p.ReceivedDate,
			VariableSymbol: p.VariableSymbol,
			AmountMinor:    p.AmountMinor,
			SenderName:     p.SenderName,
			Note:           p.Note,
		})
	}
	return nil
}

func (s *BackupService) exportAudit(backup *BackupData) error {
	rows, err := s.db.Query("SELECT actor_id, action, target_type, target_id, detail, created_at FROM audit_log ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var a AuditBackup
		if err := rows.Scan(&a.ActorID, &a.Action, &a.TargetType, &a.TargetID, &a.Detail, &a.CreatedAt); err != nil {
			return err
		}
		backup.Audit = append(backup.Audit, a)
	}
	return rows.Err()
}

func (s *BackupService) exportSettings(backup *BackupData) error {
	rows, err := s.db.Query("SELECT setting_key, setting_value FROM settings ORDER BY setting_key")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return err
		}
		backup.Settings[key] = value
	}
	return rows.Err()
}

// idMaps translates exported ids to ids in the target database
type idMaps struct {
	users, sports, groups, options, parents, children, sessions map[int64]int64
}

func newIDMaps() *idMaps {
	return &idMaps{
		users:    map[int64]int64{},
		sports:   map[int64]int64{},
		groups:   map[int64]int64{},
		options:  map[int64]int64{},
		parents:  map[int64]int64{},
		children: map[int64]int64{},
		sessions: map[int64]int64{},
	}
}

// mapOptional translates a nullable reference, dropping unknown ids
func mapOptional(m map[int64]int64, id *int64) *int64 {
	if id == nil {
		return nil
	}
	mapped, ok := m[*id]
	if !ok {
		return nil
	}
	return &mapped
}

type importer struct {
	tx    *database.Tx
	repos *repository.Repositories
	ids   *idMaps
}

func (imp *importer) run(backup *BackupData) error {
	steps := []struct {
		name string
		fn   func(*BackupData) error
	}{
		{"sports", imp.importSports},
		{"groups", imp.importGroups},
		{"attendance options", imp.importOptions},
		{"users", imp.importUsers},
		{"parents", imp.importParents},
		{"children", imp.importChildren},
		{"memberships", imp.importMemberships},
		{"training sessions", imp.importSessions},
		{"attendance", imp.importAttendance},
		{"trainer attendance", imp.importTrainerAttendance},
		{"payments", imp.importPayments},
		{"audit log", imp.importAudit},
		{"settings", imp.importSettings},
	}
	for _, step := range steps {
		if err := step.fn(backup); err != nil {
			return fmt.Errorf("failed to import %s: %w", step.name, err)
		}
	}
	return nil
}

func (imp *importer) importSports(backup *BackupData) error {
	log.Printf("Importing %d sports...", len(backup.Sports))
	for _, sp := range backup.Sports {
		existing, err := imp.repos.Sports.GetSportByName(sp.Name)
		if err != nil {
			return err
		}
		if existing == nil {
			existing, err = imp.repos.Sports.CreateSport(sp.Name)
			if err != nil {
				return err
			}
		}
		imp.ids.sports[sp.ID] = existing.ID
	}
	return nil
}

func (imp *importer) importGroups(backup *BackupData) error {
	log.Printf("Importing %d groups...", len(backup.Groups))
	for _, g := range backup.Groups {
		sportID, ok := imp.ids.sports[g.SportID]
		if !ok {
			return fmt.Errorf("group %d references unknown sport %d", g.ID, g.SportID)
		}

		var id int64
		err := imp.tx.QueryRow("SELECT id FROM training_groups WHERE sport_id = ? AND name = ?", sportID, g.Name).Scan(&id)
		if err != nil && err != sql.ErrNoRows {
			return err
		}
		if err == sql.ErrNoRows {
			weekdays, err := models.ParseWeekdaySet(g.Weekdays)
			if err != nil {
				return fmt.Errorf("group %d: %w", g.ID, err)
			}
			group := &models.Group{
				SportID:           sportID,
				Name:              g.Name,
				Weekdays:          weekdays,
				StartDate:         g.StartDate,
				EndDate:           g.EndDate,
				RegistrationState: models.RegistrationState(g.RegistrationState),
				MaxMembers:        g.MaxMembers,
			}
			if err := imp.repos.Groups.CreateGroup(group); err != nil {
				return err
			}
			if g.Archived {
				if err := imp.repos.Groups.SetArchived(group.ID, true); err != nil {
					return err
				}
			}
			id = group.ID
		}
		imp.ids.groups[g.ID] = id
	}
	return nil
}

func (imp *importer) importOptions(backup *BackupData) error {
	for _, o := range backup.Options {
		groupID, ok := imp.ids.groups[o.GroupID]
		if !ok {
			return fmt.Errorf("option %d references unknown group %d", o.ID, o.GroupID)
		}
		existing, err := imp.repos.Options.FindOptionByName(groupID, o.Name)
		if err != nil {
			return err
		}
		if existing == nil {
			existing = &models.AttendanceOption{
				GroupID:          groupID,
				Name:             o.Name,
				FrequencyPerWeek: o.FrequencyPerWeek,
				PriceMinor:       o.PriceMinor,
			}
			if err := imp.repos.Options.CreateOption(existing); err != nil {
				return err
			}
		}
		imp.ids.options[o.ID] = existing.ID
	}
	return nil
}

func (imp *importer) importUsers(backup *BackupData) error {
	log.Printf("Importing %d users...", len(backup.Users))
	for _, u := range backup.Users {
		existing, err := imp.repos.Users.GetUserByEmail(u.Email)
		if err != nil {
			return err
		}
		if existing == nil {
			existing, err = imp.repos.Users.CreateUser(u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Phone, models.Role(u.Role))
			if err != nil {
				return err
			}
			if !u.Active {
				if err := imp.repos.Users.SetActive(existing.ID, false); err != nil {
					return err
				}
			}
			if u.OAuthProvider != "" && u.OAuthSubject != "" {
				if err := imp.repos.Users.LinkOAuthProvider(existing.ID, u.OAuthProvider, u.OAuthSubject); err != nil {
					return err
				}
			}
		}
		imp.ids.users[u.ID] = existing.ID

		for _, groupID := range u.GroupIDs {
			if mapped, ok := imp.ids.groups[groupID]; ok {
				if err := imp.repos.Users.AssignGroup(existing.ID, mapped); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (imp *importer) importParents(backup *BackupData) error {
	log.Printf("Importing %d parents...", len(backup.Parents))
	for _, p := range backup.Parents {
		existing, err := imp.repos.Parents.GetParentByEmail(p.Email)
		if err != nil {
			return err
		}
		if existing == nil {
			existing = &models.Parent{
				FirstName:  p.FirstName,
				LastName:   p.LastName,
				Email:      p.Email,
				Phone:      p.Phone,
				Street:     p.Street,
				City:       p.City,
				PostalCode: p.PostalCode,
			}
			if err := imp.repos.Parents.UpsertParentByEmail(existing); err != nil {
				return err
			}
		}
		imp.ids.parents[p.ID] = existing.ID
	}
	return nil
}

func (imp *importer) importChildren(backup *BackupData) error {
	log.Printf("Importing %d children...", len(backup.Children))
	for _, c := range backup.Children {
		parentID, ok := imp.ids.parents[c.ParentID]
		if !ok {
			return fmt.Errorf("child %d references unknown parent %d", c.ID, c.ParentID)
		}

		var existing *models.Child
		var err error
		if c.NationalID != "" {
			existing, err = imp.repos.Children.GetChildByNationalID(c.NationalID)
		} else {
			existing, err = imp.repos.Children.GetChildByPassport(c.PassportNumber)
		}
		if err != nil {
			return err
		}
		if existing == nil {
			vs, err := imp.freeVariableSymbol(c.VariableSymbol)
			if err != nil {
				return err
			}
			existing = &models.Child{
				PublicID:       c.PublicID,
				ParentID:       parentID,
				NationalID:     c.NationalID,
				PassportNumber: c.PassportNumber,
				FirstName:      c.FirstName,
				LastName:       c.LastName,
				Phone:          c.Phone,
				VariableSymbol: vs,
			}
			if err := imp.repos.Children.CreateChild(existing); err != nil {
				return err
			}
		}
		imp.ids.children[c.ID] = existing.ID
	}
	return nil
}

func (imp *importer) importMemberships(backup *BackupData) error {
	log.Printf("Importing %d memberships...", len(backup.Memberships))
	for _, m := range backup.Memberships {
		childID, okChild := imp.ids.children[m.ChildID]
		groupID, okGroup := imp.ids.groups[m.GroupID]
		if !okChild || !okGroup {
			return fmt.Errorf("membership %d references unknown child or group", m.ID)
		}

		existing, err := imp.repos.Memberships.GetMembership(childID, groupID)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}

		membership := &models.Membership{
			ChildID:      childID,
			GroupID:      groupID,
			OptionID:          mapOptional(imp.ids.options, m.OptionID),
			RegisteredOn:      m.RegisteredOn,
			BillingStartMonth: m.BillingStart,
		}
		if err := imp.repos.Memberships.CreateMembership(membership); err != nil {
			return err
		}
		if !m.Active && m.EndedOn != nil {
			if err := imp.repos.Memberships.Deactivate(membership.ID, *m.EndedOn); err != nil {
				return err
			}
		}
	}
	return nil
}

func (imp *importer) importSessions(backup *BackupData) error {
	log.Printf("Importing %d training sessions...", len(backup.Sessions))
	for _, ts := range backup.Sessions {
		groupID, ok := imp.ids.groups[ts.GroupID]
		if !ok {
			return fmt.Errorf("session %d references unknown group %d", ts.ID, ts.GroupID)
		}
		if _, err := imp.repos.Sessions.InsertIfMissing(groupID, ts.Date); err != nil {
			return err
		}

		var id int64
		if err := imp.tx.QueryRow("SELECT id FROM training_sessions WHERE group_id = ? AND session_date = ?", groupID, ts.Date).Scan(&id); err != nil {
			return err
		}
		if ts.Cancelled {
			if err := imp.repos.Sessions.SetCancelled(id, true); err != nil {
				return err
			}
		}
		imp.ids.sessions[ts.ID] = id
	}
	return nil
}

func (imp *importer) importAttendance(backup *BackupData) error {
	log.Printf("Importing %d attendance records...", len(backup.Attendance))
	query := imp.tx.GetDialect().InsertIgnore("attendance_records", "session_id", "child_id", "present", "recorded_by", "recorded_at")
	for _, a := range backup.Attendance {
		sessionID, okSession := imp.ids.sessions[a.SessionID]
		childID, okChild := imp.ids.children[a.ChildID]
		if !okSession || !okChild {
			return fmt.Errorf("attendance references unknown session %d or child %d", a.SessionID, a.ChildID)
		}
		if _, err := imp.tx.Exec(query, sessionID, childID, a.Present, mapOptional(imp.ids.users, a.RecordedBy), a.RecordedAt); err != nil {
			return err
		}
	}
	return nil
}

// freeVariableSymbol keeps an exported symbol unless another child holds it,
// in which case the new child falls back to its own id
func (imp *importer) freeVariableSymbol(vs string) (string, error) {
	if vs == "" {
		return "", nil
	}
	holder, err := imp.repos.Children.GetChildByVariableSymbol(vs)
	if err != nil {
		return "", err
	}
	if holder != nil {
		log.Printf("Variable symbol %s already in use, assigning a new one", vs)
		return "", nil
	}
	return vs, nil
}

func (imp *importer) importTrainerAttendance(backup *BackupData) error {
	log.Printf("Importing %d trainer attendance records...", len(backup.Trainers))
	query := imp.tx.GetDialect().InsertIgnore("trainer_attendance", "session_id", "trainer_id", "present", "extra_access", "recorded_by", "recorded_at")
	for _, t := range backup.Trainers {
		sessionID, okSession := imp.ids.sessions[t.SessionID]
		trainerID, okTrainer := imp.ids.users[t.TrainerID]
		if !okSession || !okTrainer {
			return fmt.Errorf("trainer attendance references unknown session %d or trainer %d", t.SessionID, t.TrainerID)
		}
		if _, err := imp.tx.Exec(query, sessionID, trainerID, t.Present, t.ExtraAccess, mapOptional(imp.ids.users, t.RecordedBy), t.RecordedAt); err != nil {
			return err
		}
	}
	return nil
}

// importPayments skips payments identical to one already stored
func (imp *importer) importPayments(backup *BackupData) error {
	log.Printf("Importing %d payments...", len(backup.Payments))
	for _, p := range backup.Payments {
		var count int
		err := imp.tx.QueryRow(`
			SELECT COUNT(*) FROM received_payments
			WHERE received_date = ? AND variable_symbol = ? AND amount_minor = ? AND sender_name = ? AND note = ?
		`, p.ReceivedDate, p.VariableSymbol, p.AmountMinor, p.SenderName, p.Note).Scan(&count)
		if err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		payment := &models.ReceivedPayment{
			ReceivedDate:   p.ReceivedDate,
			VariableSymbol: p.VariableSymbol,
			AmountMinor:    p.AmountMinor,
			SenderName:     p.SenderName,
			Note:           p.Note,
		}
		if err := imp.repos.Payments.CreatePayment(payment); err != nil {
			return err
		}
	}
	return nil
}

func (imp *importer) importAudit(backup *BackupData) error {
	query := "INSERT INTO audit_log (actor_id, action, target_type, target_id, detail, created_at) VALUES (?, ?, ?, ?, ?, ?)"
	for _, a := range backup.Audit {
		if _, err := imp.tx.Exec(query, mapOptional(imp.ids.users, a.ActorID), a.Action, a.TargetType, a.TargetID, a.Detail, a.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

func (imp *importer) importSettings(backup *BackupData) error {
	for key, value := range backup.Settings {
		if err := imp.repos.Settings.SetSetting(key, value); err != nil {
			return err
		}
	}
	return nil
}
