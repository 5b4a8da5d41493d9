package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"sportclub/internal/access"
	"sportclub/internal/database"
	"sportclub/internal/models"
	"sportclub/internal/repository"
	"sportclub/internal/verification"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "club.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	if err := db.SeedSports(); err != nil {
		t.Fatalf("Failed to seed sports: %v", err)
	}
	return db
}

func fixedClock(year int, month time.Month, day int) Clock {
	return func() time.Time {
		return time.Date(year, month, day, 10, 0, 0, 0, time.UTC)
	}
}

func createStaff(t *testing.T, db *database.DB, email string, role models.Role) *access.Actor {
	t.Helper()
	user, err := repository.NewUserRepository(db).CreateUser(email, "not-a-real-hash", "Alex", "Staff", "", role)
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	return access.NewActor(user)
}

func footballID(t *testing.T, db *database.DB) int64 {
	t.Helper()
	sport, err := repository.NewSportRepository(db).GetSportByName("football")
	if err != nil || sport == nil {
		t.Fatalf("GetSportByName() = %v, %v", sport, err)
	}
	return sport.ID
}

func createGroup(t *testing.T, db *database.DB, admin *access.Actor, name string, weekdays []int, options ...OptionInput) *GroupDetails {
	t.Helper()
	group, err := NewRosterService(db, nil).CreateGroup(admin, GroupInput{
		SportID:  footballID(t, db),
		Name:     name,
		Weekdays: weekdays,
		Options:  options,
	})
	if err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}
	return group
}

// enrol creates a parent, a child and a membership starting on registeredOn
func enrol(t *testing.T, db *database.DB, groupID int64, nationalID string, registeredOn models.Date) (*models.Child, *models.Membership) {
	t.Helper()
	repos := repository.New(db)

	parent := &models.Parent{
		FirstName:  "Petra",
		LastName:   "Nováková",
		Email:      nationalID[:6] + "@example.com",
		Phone:      "603123456",
		Street:     "Dlouhá 12",
		City:       "Praha",
		PostalCode: "11000",
	}
	if err := repos.Parents.UpsertParentByEmail(parent); err != nil {
		t.Fatalf("UpsertParentByEmail() error = %v", err)
	}
	child := &models.Child{ParentID: parent.ID, NationalID: nationalID, FirstName: "Jan", LastName: "Novák"}
	if err := repos.Children.CreateChild(child); err != nil {
		t.Fatalf("CreateChild() error = %v", err)
	}
	membership := &models.Membership{ChildID: child.ID, GroupID: groupID, RegisteredOn: registeredOn}
	if err := repos.Memberships.CreateMembership(membership); err != nil {
		t.Fatalf("CreateMembership() error = %v", err)
	}
	return child, membership
}

// fakeVerifier counts calls and answers with a fixed result
type fakeVerifier struct {
	mu     sync.Mutex
	calls  int
	result *verification.Result
	err    error
}

func (f *fakeVerifier) Verify(ctx context.Context, nationalID string) (*verification.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeNotifier struct {
	mu            sync.Mutex
	confirmations []RegistrationEmail
	welcomes      []string
}

func (f *fakeNotifier) SendRegistrationConfirmation(ctx context.Context, msg RegistrationEmail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmations = append(f.confirmations, msg)
	return nil
}

func (f *fakeNotifier) SendStaffWelcome(ctx context.Context, toEmail, toName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.welcomes = append(f.welcomes, toEmail)
	return nil
}
