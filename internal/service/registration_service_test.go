package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"sportclub/internal/models"
	"sportclub/internal/repository"
	"sportclub/internal/validation"
	"sportclub/internal/verification"
)

func validRegistration(groupID int64) RegistrationInput {
	return RegistrationInput{
		GroupID:        groupID,
		NationalID:     "1503151001",
		ChildFirstName: "jan",
		ChildLastName:  "novák",
		Parent: ParentInput{
			FirstName:  "Petra",
			LastName:   "Nováková",
			Email:      "Petra@Example.com",
			Phone:      "+420 603 123 456",
			Street:     "Dlouhá 12",
			City:       "Praha",
			PostalCode: "110 00",
		},
	}
}

func TestRegisterCreatesMembership(t *testing.T) {
	db := openTestDB(t)
	admin := createStaff(t, db, "admin@example.com", models.RoleAdmin)
	group := createGroup(t, db, admin, "Fotbal U7", []int{2, 4},
		OptionInput{Name: "Twice a week", FrequencyPerWeek: 2, PriceMinor: 250000},
		OptionInput{Name: "Once a week", FrequencyPerWeek: 1, PriceMinor: 150000},
	)

	verifier := &fakeVerifier{result: &verification.Result{Valid: true}}
	notifier := &fakeNotifier{}
	svc := NewRegistrationService(db, verifier, notifier, fixedClock(2024, time.January, 1))

	result, err := svc.Register(context.Background(), validRegistration(group.ID))
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if !result.NewChild {
		t.Error("NewChild should be true for a first registration")
	}
	if result.Child.NationalID != "150315/1001" {
		t.Errorf("NationalID = %q, want normalized 150315/1001", result.Child.NationalID)
	}
	if result.Parent.Email != "petra@example.com" {
		t.Errorf("parent email = %q, want lower case", result.Parent.Email)
	}
	if result.Option == nil || result.Option.ID != group.Options[0].ID {
		t.Errorf("Option = %v, want first option %d", result.Option, group.Options[0].ID)
	}
	if result.Membership.RegisteredOn.String() != "2024-01-01" {
		t.Errorf("RegisteredOn = %v, want 2024-01-01", result.Membership.RegisteredOn)
	}
	if verifier.calls != 1 {
		t.Errorf("verifier calls = %d, want 1", verifier.calls)
	}
	if len(notifier.confirmations) != 1 || notifier.confirmations[0].GroupName != "Fotbal U7" {
		t.Errorf("confirmations = %+v, want one for Fotbal U7", notifier.confirmations)
	}

	_, err = svc.Register(context.Background(), validRegistration(group.ID))
	if !errors.Is(err, ErrAlreadyMember) {
		t.Errorf("second Register() error = %v, want ErrAlreadyMember", err)
	}
}

func TestRegisterRejectsChecksumBeforeVerifier(t *testing.T) {
	db := openTestDB(t)
	admin := createStaff(t, db, "admin@example.com", models.RoleAdmin)
	group := createGroup(t, db, admin, "Fotbal U7", []int{2, 4})

	verifier := &fakeVerifier{result: &verification.Result{Valid: true}}
	svc := NewRegistrationService(db, verifier, nil, fixedClock(2024, time.January, 1))

	input := validRegistration(group.ID)
	input.NationalID = "150315/1002"
	_, err := svc.Register(context.Background(), input)

	if !errors.Is(err, ErrNationalIDFormat) {
		t.Fatalf("Register() error = %v, want ErrNationalIDFormat", err)
	}
	var vErr validation.ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "national_id" {
		t.Errorf("Register() error = %v, want a national_id ValidationError", err)
	}
	if verifier.calls != 0 {
		t.Errorf("verifier calls = %d, want 0", verifier.calls)
	}
}

func TestRegisterIdentityErrors(t *testing.T) {
	tests := []struct {
		name     string
		verifier *fakeVerifier
		wantErr  error
	}{
		{
			name:     "registry says invalid",
			verifier: &fakeVerifier{result: &verification.Result{Valid: false}},
			wantErr:  ErrNationalIDUnverified,
		},
		{
			name:     "registry unavailable",
			verifier: &fakeVerifier{err: verification.ErrUnavailable},
			wantErr:  ErrRegistryUnavailable,
		},
		{
			name:     "registry timed out",
			verifier: &fakeVerifier{err: context.DeadlineExceeded},
			wantErr:  ErrRegistryUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := openTestDB(t)
			admin := createStaff(t, db, "admin@example.com", models.RoleAdmin)
			group := createGroup(t, db, admin, "Fotbal U7", []int{2, 4})
			svc := NewRegistrationService(db, tt.verifier, nil, fixedClock(2024, time.January, 1))

			_, err := svc.Register(context.Background(), validRegistration(group.ID))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Register() error = %v, want %v", err, tt.wantErr)
			}

			child, err := repository.NewChildRepository(db).GetChildByNationalID("150315/1001")
			if err != nil || child != nil {
				t.Errorf("child persisted after failure: %v, %v", child, err)
			}
		})
	}
}

func TestRegisterGroupRules(t *testing.T) {
	db := openTestDB(t)
	admin := createStaff(t, db, "admin@example.com", models.RoleAdmin)
	roster := NewRosterService(db, nil)
	sportID := footballID(t, db)

	closed, err := roster.CreateGroup(admin, GroupInput{SportID: sportID, Name: "Closed", Weekdays: []int{1}, RegistrationState: "closed"})
	if err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}
	full, err := roster.CreateGroup(admin, GroupInput{SportID: sportID, Name: "Tiny", Weekdays: []int{1}, MaxMembers: 1})
	if err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}
	enrol(t, db, full.ID, "155315/1006", models.NewDate(2024, time.January, 1))

	svc := NewRegistrationService(db, &fakeVerifier{result: &verification.Result{Valid: true}}, nil, fixedClock(2024, time.January, 1))

	tests := []struct {
		name    string
		mutate  func(*RegistrationInput)
		wantErr error
	}{
		{name: "group not open", mutate: func(in *RegistrationInput) { in.GroupID = closed.ID }, wantErr: ErrGroupNotOpen},
		{name: "group full", mutate: func(in *RegistrationInput) { in.GroupID = full.ID }, wantErr: ErrGroupFull},
		{name: "unknown group", mutate: func(in *RegistrationInput) { in.GroupID = 999 }, wantErr: ErrGroupNotFound},
		{name: "sport mismatch", mutate: func(in *RegistrationInput) { in.GroupID = full.ID; in.SportID = sportID + 100 }, wantErr: ErrSportGroupMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validRegistration(0)
			tt.mutate(&input)
			if _, err := svc.Register(context.Background(), input); !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegisterRespectsGlobalSwitch(t *testing.T) {
	db := openTestDB(t)
	admin := createStaff(t, db, "admin@example.com", models.RoleAdmin)
	group := createGroup(t, db, admin, "Fotbal U7", []int{2, 4})
	if err := NewRosterService(db, nil).SetRegistrationOpen(admin, false); err != nil {
		t.Fatalf("SetRegistrationOpen() error = %v", err)
	}

	verifier := &fakeVerifier{result: &verification.Result{Valid: true}}
	svc := NewRegistrationService(db, verifier, nil, fixedClock(2024, time.January, 1))
	if _, err := svc.Register(context.Background(), validRegistration(group.ID)); !errors.Is(err, ErrRegistrationClosed) {
		t.Errorf("Register() error = %v, want ErrRegistrationClosed", err)
	}
	if verifier.calls != 0 {
		t.Errorf("verifier calls = %d, want 0", verifier.calls)
	}
}

func TestRegisterPassportAndOwnership(t *testing.T) {
	db := openTestDB(t)
	admin := createStaff(t, db, "admin@example.com", models.RoleAdmin)
	u7 := createGroup(t, db, admin, "Fotbal U7", []int{2, 4})
	u9 := createGroup(t, db, admin, "Fotbal U9", []int{1, 3})

	verifier := &fakeVerifier{result: &verification.Result{Valid: true}}
	svc := NewRegistrationService(db, verifier, nil, fixedClock(2024, time.January, 1))

	input := validRegistration(u7.ID)
	input.NationalID = ""
	input.PassportNumber = "ab1234567"
	first, err := svc.Register(context.Background(), input)
	if err != nil {
		t.Fatalf("Register() with passport error = %v", err)
	}
	if verifier.calls != 0 {
		t.Errorf("verifier calls = %d, want 0 for a passport", verifier.calls)
	}

	// Same child, same parent, second group: the child row is reused
	input.GroupID = u9.ID
	second, err := svc.Register(context.Background(), input)
	if err != nil {
		t.Fatalf("Register() into second group error = %v", err)
	}
	if second.NewChild || second.Child.ID != first.Child.ID {
		t.Errorf("second registration child = %d (new=%t), want reuse of %d", second.Child.ID, second.NewChild, first.Child.ID)
	}

	// Same child claimed by another parent
	input.GroupID = u7.ID
	input.Parent.Email = "someone.else@example.com"
	if _, err := svc.Register(context.Background(), input); !errors.Is(err, ErrChildOwnedByOther) {
		t.Errorf("Register() by another parent error = %v, want ErrChildOwnedByOther", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	db := openTestDB(t)
	admin := createStaff(t, db, "admin@example.com", models.RoleAdmin)
	group := createGroup(t, db, admin, "Fotbal U7", []int{2, 4})
	svc := NewRegistrationService(db, &fakeVerifier{result: &verification.Result{Valid: true}}, nil, fixedClock(2024, time.January, 1))

	tests := []struct {
		name      string
		mutate    func(*RegistrationInput)
		wantField string
	}{
		{name: "both identities", mutate: func(in *RegistrationInput) { in.PassportNumber = "AB1234567" }, wantField: "national_id"},
		{name: "no identity", mutate: func(in *RegistrationInput) { in.NationalID = "" }, wantField: "national_id"},
		{name: "bad email", mutate: func(in *RegistrationInput) { in.Parent.Email = "not-an-email" }, wantField: "parent_email"},
		{name: "bad postal code", mutate: func(in *RegistrationInput) { in.Parent.PostalCode = "1234" }, wantField: "postal_code"},
		{name: "missing group", mutate: func(in *RegistrationInput) { in.GroupID = 0 }, wantField: "group_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validRegistration(group.ID)
			tt.mutate(&input)
			_, err := svc.Register(context.Background(), input)
			var vErr validation.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Register() error = %v, want ValidationError", err)
			}
			if vErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", vErr.Field, tt.wantField)
			}
		})
	}
}
