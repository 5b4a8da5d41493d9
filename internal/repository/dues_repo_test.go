package repository

import (
	"strconv"
	"testing"
	"time"

	"sportclub/internal/models"
)

func TestChildVariableSymbol(t *testing.T) {
	db := openTestDB(t)
	child := createTestChild(t, db, "petra@example.com", "150315/1001")

	if want := strconv.FormatInt(child.ID, 10); child.VariableSymbol != want {
		t.Errorf("VariableSymbol = %q, want %q", child.VariableSymbol, want)
	}
	loaded, err := NewChildRepository(db).GetChildByVariableSymbol(child.VariableSymbol)
	if err != nil || loaded == nil || loaded.ID != child.ID {
		t.Fatalf("GetChildByVariableSymbol() = %v, %v", loaded, err)
	}

	custom := &models.Child{ParentID: child.ParentID, PassportNumber: "AB12345", FirstName: "Eva", LastName: "Nováková", VariableSymbol: "2024001"}
	if err := NewChildRepository(db).CreateChild(custom); err != nil {
		t.Fatalf("CreateChild() error = %v", err)
	}
	if custom.VariableSymbol != "2024001" {
		t.Errorf("VariableSymbol = %q, want the given one", custom.VariableSymbol)
	}

	clash := &models.Child{ParentID: child.ParentID, PassportNumber: "CD67890", FirstName: "Ota", LastName: "Novák", VariableSymbol: "2024001"}
	if err := NewChildRepository(db).CreateChild(clash); err == nil {
		t.Error("CreateChild() with a taken variable symbol succeeded")
	}
}

func TestListActiveMembers(t *testing.T) {
	db := openTestDB(t)
	group := createTestGroup(t, db, "U7", 2)
	first := createTestChild(t, db, "petra@example.com", "150315/1001")
	second := createTestChild(t, db, "eva@example.com", "160229/1009")

	options := NewOptionRepository(db)
	option := &models.AttendanceOption{GroupID: group.ID, Name: "Twice", FrequencyPerWeek: 2, PriceMinor: 250000}
	if err := options.CreateOption(option); err != nil {
		t.Fatalf("CreateOption() error = %v", err)
	}

	memberships := NewMembershipRepository(db)
	registered := models.NewDate(2024, time.January, 2)
	withOption := &models.Membership{ChildID: first.ID, GroupID: group.ID, OptionID: &option.ID, RegisteredOn: registered}
	ended := &models.Membership{ChildID: second.ID, GroupID: group.ID, RegisteredOn: registered}
	for _, m := range []*models.Membership{withOption, ended} {
		if err := memberships.CreateMembership(m); err != nil {
			t.Fatalf("CreateMembership() error = %v", err)
		}
	}
	if err := memberships.Deactivate(ended.ID, registered.AddDays(10)); err != nil {
		t.Fatal(err)
	}

	active, err := memberships.ListActiveMembers("")
	if err != nil {
		t.Fatalf("ListActiveMembers() error = %v", err)
	}
	if len(active) != 1 || active[0].Membership.ID != withOption.ID {
		t.Fatalf("ListActiveMembers() = %+v, want only the active membership", active)
	}
	if active[0].OptionPriceMinor != 250000 || active[0].OptionName != "Twice" {
		t.Errorf("option = %q %d, want Twice 250000", active[0].OptionName, active[0].OptionPriceMinor)
	}
	if active[0].Child.VariableSymbol != first.VariableSymbol {
		t.Errorf("VariableSymbol = %q, want %q", active[0].Child.VariableSymbol, first.VariableSymbol)
	}

	byVS, _ := memberships.ListActiveMembers(first.VariableSymbol)
	if len(byVS) != 1 {
		t.Errorf("ListActiveMembers(vs) = %d rows, want 1", len(byVS))
	}
	if none, _ := memberships.ListActiveMembers("nobody"); len(none) != 0 {
		t.Errorf("ListActiveMembers(nobody) = %d rows, want 0", len(none))
	}

	month := models.NewDate(2024, time.March, 1)
	if err := memberships.SetBillingStart(withOption.ID, &month); err != nil {
		t.Fatalf("SetBillingStart() error = %v", err)
	}
	loaded, _ := memberships.GetMembershipByID(withOption.ID)
	if loaded.BillingStartMonth == nil || !loaded.BillingStartMonth.Equal(month) {
		t.Errorf("BillingStartMonth = %v, want %s", loaded.BillingStartMonth, month)
	}
	if err := memberships.SetBillingStart(withOption.ID, nil); err != nil {
		t.Fatalf("SetBillingStart(nil) error = %v", err)
	}
	if loaded, _ = memberships.GetMembershipByID(withOption.ID); loaded.BillingStartMonth != nil {
		t.Errorf("BillingStartMonth = %v, want nil", loaded.BillingStartMonth)
	}
}

func TestPaymentRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewPaymentRepository(db)

	older := &models.ReceivedPayment{ReceivedDate: models.NewDate(2024, time.January, 5), VariableSymbol: "12", AmountMinor: 150000, SenderName: "Petra Nováková"}
	newer := &models.ReceivedPayment{ReceivedDate: models.NewDate(2024, time.February, 5), VariableSymbol: "13", AmountMinor: 90000, Note: "late"}
	for _, p := range []*models.ReceivedPayment{older, newer} {
		if err := repo.CreatePayment(p); err != nil {
			t.Fatalf("CreatePayment() error = %v", err)
		}
	}

	list, err := repo.ListPayments()
	if err != nil {
		t.Fatalf("ListPayments() error = %v", err)
	}
	if len(list) != 2 || list[0].ID != newer.ID {
		t.Fatalf("ListPayments() = %+v, want newest first", list)
	}
	if list[1].SenderName != "Petra Nováková" || !list[1].ReceivedDate.Equal(older.ReceivedDate) {
		t.Errorf("older payment = %+v", list[1])
	}

	if err := repo.DeletePayment(older.ID); err != nil {
		t.Fatalf("DeletePayment() error = %v", err)
	}
	if p, _ := repo.GetPaymentByID(older.ID); p != nil {
		t.Error("payment still present after delete")
	}
}

func TestTrainerAttendanceRepository(t *testing.T) {
	db := openTestDB(t)
	group := createTestGroup(t, db, "U7", 2)
	users := NewUserRepository(db)
	trainer, err := users.CreateUser("coach@example.com", "hash", "Karel", "Trenér", "", models.RoleTrainer)
	if err != nil {
		t.Fatal(err)
	}
	if err := users.AssignGroup(trainer.ID, group.ID); err != nil {
		t.Fatal(err)
	}

	sessions := NewTrainingSessionRepository(db)
	date := models.NewDate(2024, time.January, 2)
	sessions.InsertIfMissing(group.ID, date)
	list, _ := sessions.ListSessions(group.ID, date, date)
	sessionID := list[0].ID

	trainers, err := users.ListGroupTrainers(group.ID)
	if err != nil || len(trainers) != 1 || trainers[0].ID != trainer.ID {
		t.Fatalf("ListGroupTrainers() = %v, %v", trainers, err)
	}

	repo := NewTrainerAttendanceRepository(db)
	created, err := repo.MarkPresentIfMissing(sessionID, trainer.ID, false, nil)
	if err != nil || !created {
		t.Fatalf("MarkPresentIfMissing() = %v, %v, want true", created, err)
	}
	if created, _ = repo.MarkPresentIfMissing(sessionID, trainer.ID, false, nil); created {
		t.Fatal("MarkPresentIfMissing() created a second record")
	}

	present, err := repo.PresentSessionIDs(group.ID, trainer.ID, date, date)
	if err != nil || !present[sessionID] {
		t.Errorf("PresentSessionIDs() = %v, %v", present, err)
	}

	if err := repo.Flip(sessionID, trainer.ID, nil); err != nil {
		t.Fatalf("Flip() error = %v", err)
	}
	records, _ := repo.SessionRecords(sessionID)
	if rec, ok := records[trainer.ID]; !ok || rec.Present {
		t.Errorf("SessionRecords() = %+v, want an absent mark", records)
	}
	if present, _ = repo.PresentSessionIDs(group.ID, trainer.ID, date, date); len(present) != 0 {
		t.Errorf("PresentSessionIDs() after flip = %v, want empty", present)
	}
	if count, _ := repo.CountForSession(sessionID); count != 1 {
		t.Errorf("CountForSession() = %d, want 1", count)
	}
}
