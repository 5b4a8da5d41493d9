package service

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"sportclub/internal/models"
	"sportclub/internal/repository"
)

func exportBackup(t *testing.T, svc *BackupService) (*BackupData, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if err := svc.ExportTo(&buf); err != nil {
		t.Fatalf("ExportTo() error = %v", err)
	}
	var data BackupData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("backup is not valid JSON: %v", err)
	}
	return &data, buf.Bytes()
}

func TestBackupRoundTrip(t *testing.T) {
	source := openTestDB(t)
	clock := fixedClock(2024, time.January, 1)
	admin := createStaff(t, source, "admin@example.com", models.RoleAdmin)
	trainer := createStaff(t, source, "trainer@example.com", models.RoleTrainer)
	group := createGroup(t, source, admin, "Fotbal U7", []int{2, 4}, OptionInput{Name: "Twice", FrequencyPerWeek: 2, PriceMinor: 150000})
	if err := NewTrainerService(source, nil).AssignTrainer(admin, trainer.UserID, group.ID); err != nil {
		t.Fatalf("AssignTrainer() error = %v", err)
	}
	sessions := januaryGroup(t, NewScheduleService(source, clock), admin, group)
	child, membership := enrol(t, source, group.ID, "150315/1001", models.NewDate(2024, time.January, 1))
	attendance := NewAttendanceService(source, clock)
	if _, err := attendance.ToggleAttendance(admin, sessions[0].ID, child.ID); err != nil {
		t.Fatalf("ToggleAttendance() error = %v", err)
	}
	if _, err := attendance.ToggleTrainerAttendance(admin, sessions[0].ID, trainer.UserID); err != nil {
		t.Fatalf("ToggleTrainerAttendance() error = %v", err)
	}
	dues := NewContributionService(source, clock)
	if _, err := dues.SetBillingStart(admin, membership.ID, datePtr(2024, time.March, 1)); err != nil {
		t.Fatalf("SetBillingStart() error = %v", err)
	}
	if err := dues.RecordPayment(admin, &models.ReceivedPayment{VariableSymbol: child.VariableSymbol, AmountMinor: 150000}); err != nil {
		t.Fatalf("RecordPayment() error = %v", err)
	}

	exported, raw := exportBackup(t, NewBackupService(source))
	if exported.Version != BackupVersion {
		t.Errorf("Version = %q, want %q", exported.Version, BackupVersion)
	}

	target := openTestDB(t)
	restore := NewBackupService(target)
	if err := restore.ImportFromReader(bytes.NewReader(raw)); err != nil {
		t.Fatalf("ImportFromReader() error = %v", err)
	}

	restored, _ := exportBackup(t, restore)
	counts := []struct {
		name      string
		got, want int
	}{
		{"users", len(restored.Users), len(exported.Users)},
		{"sports", len(restored.Sports), len(exported.Sports)},
		{"groups", len(restored.Groups), len(exported.Groups)},
		{"options", len(restored.Options), len(exported.Options)},
		{"children", len(restored.Children), len(exported.Children)},
		{"memberships", len(restored.Memberships), len(exported.Memberships)},
		{"sessions", len(restored.Sessions), len(exported.Sessions)},
		{"attendance", len(restored.Attendance), len(exported.Attendance)},
		{"trainer attendance", len(restored.Trainers), len(exported.Trainers)},
		{"payments", len(restored.Payments), len(exported.Payments)},
	}
	for _, c := range counts {
		if c.got != c.want {
			t.Errorf("restored %s = %d, want %d", c.name, c.got, c.want)
		}
	}

	restoredChild, err := repository.NewChildRepository(target).GetChildByNationalID("150315/1001")
	if err != nil || restoredChild == nil {
		t.Fatalf("GetChildByNationalID() = %v, %v", restoredChild, err)
	}
	if restoredChild.PublicID != child.PublicID {
		t.Errorf("PublicID = %q, want %q", restoredChild.PublicID, child.PublicID)
	}
	if restoredChild.VariableSymbol != child.VariableSymbol {
		t.Errorf("VariableSymbol = %q, want %q", restoredChild.VariableSymbol, child.VariableSymbol)
	}
	if len(restored.Memberships) != 1 || restored.Memberships[0].BillingStart == nil ||
		restored.Memberships[0].BillingStart.String() != "2024-03-01" {
		t.Errorf("restored memberships = %+v, want billing start 2024-03-01", restored.Memberships)
	}

	restoredTrainer, _ := repository.NewUserRepository(target).GetUserByEmail("trainer@example.com")
	if restoredTrainer == nil {
		t.Fatal("trainer was not restored")
	}
	assigned, _ := repository.NewUserRepository(target).GetAssignedGroupIDs(restoredTrainer.ID)
	if len(assigned) != 1 {
		t.Errorf("restored assignments = %v, want one group", assigned)
	}

	// importing again merges into the existing rows
	if err := restore.ImportFromReader(bytes.NewReader(raw)); err != nil {
		t.Fatalf("second ImportFromReader() error = %v", err)
	}
	again, _ := exportBackup(t, restore)
	if len(again.Children) != 1 || len(again.Memberships) != 1 || len(again.Sessions) != len(exported.Sessions) || len(again.Attendance) != 1 {
		t.Errorf("second import duplicated rows: children=%d memberships=%d sessions=%d attendance=%d",
			len(again.Children), len(again.Memberships), len(again.Sessions), len(again.Attendance))
	}
	if len(again.Trainers) != 1 || len(again.Payments) != 1 {
		t.Errorf("second import duplicated rows: trainer attendance=%d payments=%d", len(again.Trainers), len(again.Payments))
	}
}

func TestImportRejectsUnknownVersion(t *testing.T) {
	db := openTestDB(t)
	err := NewBackupService(db).ImportFromReader(strings.NewReader(`{"version": "0.1"}`))
	if err == nil || !strings.Contains(err.Error(), "unsupported backup version") {
		t.Errorf("ImportFromReader() error = %v, want unsupported version", err)
	}
}
