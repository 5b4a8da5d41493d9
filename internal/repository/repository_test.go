package repository

import (
	"path/filepath"
	"testing"
	"time"

	"sportclub/internal/database"
	"sportclub/internal/models"
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

func createTestGroup(t *testing.T, db database.DBTX, name string, days ...int) *models.Group {
	t.Helper()
	sport, err := NewSportRepository(db).GetSportByName("football")
	if err != nil || sport == nil {
		t.Fatalf("GetSportByName() = %v, %v", sport, err)
	}
	weekdays, err := models.NewWeekdaySet(days...)
	if err != nil {
		t.Fatalf("NewWeekdaySet() error = %v", err)
	}
	group := &models.Group{
		SportID:           sport.ID,
		Name:              name,
		Weekdays:          weekdays,
		RegistrationState: models.RegistrationOpen,
	}
	if err := NewGroupRepository(db).CreateGroup(group); err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}
	return group
}

func createTestChild(t *testing.T, db database.DBTX, email, nationalID string) *models.Child {
	t.Helper()
	parent := &models.Parent{
		FirstName:  "Petra",
		LastName:   "Nováková",
		Email:      email,
		Phone:      "603123456",
		Street:     "Dlouhá 12",
		City:       "Praha",
		PostalCode: "11000",
	}
	if err := NewParentRepository(db).UpsertParentByEmail(parent); err != nil {
		t.Fatalf("UpsertParentByEmail() error = %v", err)
	}
	child := &models.Child{
		ParentID:   parent.ID,
		NationalID: nationalID,
		FirstName:  "Jan",
		LastName:   "Novák",
	}
	if err := NewChildRepository(db).CreateChild(child); err != nil {
		t.Fatalf("CreateChild() error = %v", err)
	}
	return child
}

func TestGroupRoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewGroupRepository(db)

	group := createTestGroup(t, db, "U7", 2, 4)
	start := models.NewDate(2024, time.January, 1)
	group.StartDate = &start
	group.MaxMembers = 12
	if err := repo.UpdateGroup(group); err != nil {
		t.Fatalf("UpdateGroup() error = %v", err)
	}

	got, err := repo.GetGroupByID(group.ID)
	if err != nil || got == nil {
		t.Fatalf("GetGroupByID() = %v, %v", got, err)
	}
	if got.Weekdays.String() != "2,4" {
		t.Errorf("Weekdays = %v, want 2,4", got.Weekdays)
	}
	if got.StartDate == nil || !got.StartDate.Equal(start) {
		t.Errorf("StartDate = %v, want %v", got.StartDate, start)
	}
	if got.EndDate != nil {
		t.Errorf("EndDate = %v, want nil", got.EndDate)
	}
	if got.SportName != "football" {
		t.Errorf("SportName = %v, want football", got.SportName)
	}
	if got.MaxMembers != 12 {
		t.Errorf("MaxMembers = %v, want 12", got.MaxMembers)
	}

	if err := repo.SetArchived(group.ID, true); err != nil {
		t.Fatalf("SetArchived() error = %v", err)
	}
	active, err := repo.ListGroups(0, false)
	if err != nil {
		t.Fatalf("ListGroups() error = %v", err)
	}
	if len(active) != 0 {
		t.Errorf("ListGroups(active) = %d groups, want 0", len(active))
	}
	all, _ := repo.ListGroups(0, true)
	if len(all) != 1 {
		t.Errorf("ListGroups(all) = %d groups, want 1", len(all))
	}
}

func TestMissingRowsReturnNil(t *testing.T) {
	db := openTestDB(t)

	group, err := NewGroupRepository(db).GetGroupByID(999)
	if group != nil || err != nil {
		t.Errorf("GetGroupByID(999) = %v, %v, want nil, nil", group, err)
	}
	child, err := NewChildRepository(db).GetChildByNationalID("150315/1001")
	if child != nil || err != nil {
		t.Errorf("GetChildByNationalID() = %v, %v, want nil, nil", child, err)
	}
	user, err := NewUserRepository(db).GetUserByEmail("nobody@example.com")
	if user != nil || err != nil {
		t.Errorf("GetUserByEmail() = %v, %v, want nil, nil", user, err)
	}
}

func TestInsertIfMissingIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	group := createTestGroup(t, db, "U7", 2, 4)
	repo := NewTrainingSessionRepository(db)
	date := models.NewDate(2024, time.January, 2)

	created, err := repo.InsertIfMissing(group.ID, date)
	if err != nil || !created {
		t.Fatalf("first InsertIfMissing() = %v, %v, want true", created, err)
	}
	created, err = repo.InsertIfMissing(group.ID, date)
	if err != nil || created {
		t.Fatalf("second InsertIfMissing() = %v, %v, want false", created, err)
	}

	sessions, err := repo.ListSessions(group.ID, date, date)
	if err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("ListSessions() = %d sessions, want 1", len(sessions))
	}
	if !sessions[0].Date.Equal(date) {
		t.Errorf("session date = %v, want %v", sessions[0].Date, date)
	}
}

func TestAttendanceFlip(t *testing.T) {
	db := openTestDB(t)
	group := createTestGroup(t, db, "U7", 2)
	child := createTestChild(t, db, "petra@example.com", "150315/1001")
	sessions := NewTrainingSessionRepository(db)
	date := models.NewDate(2024, time.January, 2)
	if _, err := sessions.InsertIfMissing(group.ID, date); err != nil {
		t.Fatal(err)
	}
	list, _ := sessions.ListSessions(group.ID, date, date)
	sessionID := list[0].ID

	repo := NewAttendanceRepository(db)

	created, err := repo.MarkPresentIfMissing(sessionID, child.ID, nil)
	if err != nil || !created {
		t.Fatalf("MarkPresentIfMissing() = %v, %v, want true", created, err)
	}
	created, _ = repo.MarkPresentIfMissing(sessionID, child.ID, nil)
	if created {
		t.Fatal("MarkPresentIfMissing() created a second record")
	}

	if err := repo.Flip(sessionID, child.ID, nil); err != nil {
		t.Fatalf("Flip() error = %v", err)
	}
	rec, err := repo.GetRecord(sessionID, child.ID)
	if err != nil || rec == nil {
		t.Fatalf("GetRecord() = %v, %v", rec, err)
	}
	if rec.Present {
		t.Error("Present = true after flip, want false")
	}

	if err := repo.Set(sessionID, child.ID, true, nil); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	marks, _ := repo.SessionMarks(sessionID)
	if !marks[child.ID] {
		t.Error("SessionMarks() should report the child present")
	}
	if count, _ := repo.CountForSession(sessionID); count != 1 {
		t.Errorf("CountForSession() = %d, want 1", count)
	}
}

func TestDeleteMembershipRemovesGroupAttendance(t *testing.T) {
	db := openTestDB(t)
	group := createTestGroup(t, db, "U7", 2)
	other := createTestGroup(t, db, "U9", 2)
	child := createTestChild(t, db, "petra@example.com", "150315/1001")
	date := models.NewDate(2024, time.January, 2)

	memberships := NewMembershipRepository(db)
	sessions := NewTrainingSessionRepository(db)
	attendance := NewAttendanceRepository(db)

	var membership *models.Membership
	for _, g := range []*models.Group{group, other} {
		m := &models.Membership{ChildID: child.ID, GroupID: g.ID, RegisteredOn: date}
		if err := memberships.CreateMembership(m); err != nil {
			t.Fatalf("CreateMembership() error = %v", err)
		}
		if g == group {
			membership = m
		}
		sessions.InsertIfMissing(g.ID, date)
		list, _ := sessions.ListSessions(g.ID, date, date)
		attendance.MarkPresentIfMissing(list[0].ID, child.ID, nil)
	}

	if err := memberships.DeleteMembership(membership); err != nil {
		t.Fatalf("DeleteMembership() error = %v", err)
	}

	if m, _ := memberships.GetMembership(child.ID, group.ID); m != nil {
		t.Error("membership still present after delete")
	}
	kept, _ := sessions.ListSessions(other.ID, date, date)
	if marks, _ := attendance.SessionMarks(kept[0].ID); !marks[child.ID] {
		t.Error("attendance in the other group should be kept")
	}
	removed, _ := sessions.ListSessions(group.ID, date, date)
	if count, _ := attendance.CountForSession(removed[0].ID); count != 0 {
		t.Errorf("CountForSession() = %d, want 0", count)
	}
}

func TestSearchChildren(t *testing.T) {
	db := openTestDB(t)
	group := createTestGroup(t, db, "U7", 2)
	first := createTestChild(t, db, "petra@example.com", "150315/1001")
	createTestChild(t, db, "eva@example.com", "160229/1009")

	m := &models.Membership{ChildID: first.ID, GroupID: group.ID, RegisteredOn: models.NewDate(2024, time.January, 2)}
	if err := NewMembershipRepository(db).CreateMembership(m); err != nil {
		t.Fatal(err)
	}

	repo := NewChildRepository(db)
	tests := []struct {
		name    string
		search  string
		groupID int64
		want    int
	}{
		{name: "everybody", want: 2},
		{name: "by parent email", search: "EVA@", want: 1},
		{name: "by national id", search: "150315", want: 1},
		{name: "by surname", search: "novák", want: 2},
		{name: "by group", groupID: group.ID, want: 1},
		{name: "no match", search: "zzz", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.SearchChildren(tt.search, tt.groupID)
			if err != nil {
				t.Fatalf("SearchChildren() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("SearchChildren(%q, %d) = %d results, want %d", tt.search, tt.groupID, len(got), tt.want)
			}
		})
	}
}

func TestUpsertParentReusesEmail(t *testing.T) {
	db := openTestDB(t)
	repo := NewParentRepository(db)

	first := &models.Parent{FirstName: "Petra", LastName: "Nováková", Email: "petra@example.com", Phone: "603123456",
		Street: "Dlouhá 12", City: "Praha", PostalCode: "11000"}
	if err := repo.UpsertParentByEmail(first); err != nil {
		t.Fatal(err)
	}

	second := *first
	second.ID = 0
	second.Phone = "777888999"
	if err := repo.UpsertParentByEmail(&second); err != nil {
		t.Fatal(err)
	}

	if second.ID != first.ID {
		t.Errorf("UpsertParentByEmail() ID = %d, want %d", second.ID, first.ID)
	}
	stored, _ := repo.GetParentByID(first.ID)
	if stored.Phone != "777888999" {
		t.Errorf("Phone = %v, want refreshed 777888999", stored.Phone)
	}
}

func TestRegistrationOpenSetting(t *testing.T) {
	db := openTestDB(t)
	repo := NewSettingsRepository(db)

	open, err := repo.IsRegistrationOpen()
	if err != nil || !open {
		t.Fatalf("IsRegistrationOpen() = %v, %v, want true by default", open, err)
	}
	if err := repo.SetRegistrationOpen(false); err != nil {
		t.Fatal(err)
	}
	if open, _ := repo.IsRegistrationOpen(); open {
		t.Error("IsRegistrationOpen() = true after closing")
	}
}

func TestTrainerAssignments(t *testing.T) {
	db := openTestDB(t)
	group := createTestGroup(t, db, "U7", 2)
	repo := NewUserRepository(db)

	trainer, err := repo.CreateUser("coach@example.com", "hash", "Karel", "Trenér", "", models.RoleTrainer)
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := repo.AssignGroup(trainer.ID, group.ID); err != nil {
			t.Fatalf("AssignGroup() error = %v", err)
		}
	}
	ids, _ := repo.GetAssignedGroupIDs(trainer.ID)
	if len(ids) != 1 || ids[0] != group.ID {
		t.Errorf("GetAssignedGroupIDs() = %v, want [%d]", ids, group.ID)
	}
	if ok, _ := repo.IsAssigned(trainer.ID, group.ID); !ok {
		t.Error("IsAssigned() = false, want true")
	}

	if err := repo.UnassignGroup(trainer.ID, group.ID); err != nil {
		t.Fatal(err)
	}
	if ok, _ := repo.IsAssigned(trainer.ID, group.ID); ok {
		t.Error("IsAssigned() = true after unassign")
	}
}
