package service

import (
	"errors"
	"testing"
	"time"

	"sportclub/internal/access"
	"sportclub/internal/models"
	"sportclub/internal/repository"
	"sportclub/internal/validation"
)

func TestCreateOptionRejectsSixth(t *testing.T) {
	db := openTestDB(t)
	admin := createStaff(t, db, "admin@example.com", models.RoleAdmin)
	group := createGroup(t, db, admin, "Fotbal U7", []int{2, 4})
	svc := NewRosterService(db, nil)

	names := []string{"Once", "Twice", "Three times", "Four times", "Five times"}
	for i, name := range names {
		if _, err := svc.CreateOption(admin, group.ID, OptionInput{Name: name, FrequencyPerWeek: i + 1}); err != nil {
			t.Fatalf("CreateOption(%q) error = %v", name, err)
		}
	}

	_, err := svc.CreateOption(admin, group.ID, OptionInput{Name: "Daily", FrequencyPerWeek: 7})
	if !errors.Is(err, ErrTooManyOptions) {
		t.Fatalf("sixth CreateOption() error = %v, want ErrTooManyOptions", err)
	}
	var vErr validation.ValidationError
	if !errors.As(err, &vErr) {
		t.Errorf("sixth CreateOption() error = %T, want ValidationError", err)
	}

	options, _ := svc.ListOptions(group.ID)
	if len(options) != models.MaxAttendanceOptions {
		t.Errorf("ListOptions() = %d options, want %d", len(options), models.MaxAttendanceOptions)
	}
}

func TestCreateGroupValidation(t *testing.T) {
	db := openTestDB(t)
	admin := createStaff(t, db, "admin@example.com", models.RoleAdmin)
	trainer := createStaff(t, db, "trainer@example.com", models.RoleTrainer)
	svc := NewRosterService(db, nil)
	sportID := footballID(t, db)
	createGroup(t, db, admin, "Fotbal U7", []int{2})

	tooMany := make([]OptionInput, 6)
	for i := range tooMany {
		tooMany[i] = OptionInput{Name: string(rune('A' + i)), FrequencyPerWeek: 1}
	}
	start := models.NewDate(2024, time.June, 1)
	end := models.NewDate(2024, time.January, 1)

	tests := []struct {
		name    string
		actor   *access.Actor
		input   GroupInput
		wantErr error
	}{
		{name: "trainer", actor: trainer, input: GroupInput{SportID: sportID, Name: "U9", Weekdays: []int{1}}, wantErr: access.ErrForbidden},
		{name: "duplicate name", actor: admin, input: GroupInput{SportID: sportID, Name: "fotbal u7", Weekdays: []int{1}}, wantErr: ErrDuplicateName},
		{name: "unknown sport", actor: admin, input: GroupInput{SportID: 999, Name: "U9", Weekdays: []int{1}}, wantErr: ErrSportNotFound},
		{name: "six options", actor: admin, input: GroupInput{SportID: sportID, Name: "U9", Weekdays: []int{1}, Options: tooMany}, wantErr: ErrTooManyOptions},
		{name: "duplicate option", actor: admin, input: GroupInput{SportID: sportID, Name: "U9", Weekdays: []int{1}, Options: []OptionInput{{Name: "A", FrequencyPerWeek: 1}, {Name: "a", FrequencyPerWeek: 2}}}, wantErr: ErrDuplicateName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateGroup(tt.actor, tt.input); !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateGroup() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	fieldTests := []struct {
		name      string
		input     GroupInput
		wantField string
	}{
		{name: "no weekdays", input: GroupInput{SportID: sportID, Name: "U9"}, wantField: "weekdays"},
		{name: "weekday out of range", input: GroupInput{SportID: sportID, Name: "U9", Weekdays: []int{8}}, wantField: "weekdays"},
		{name: "season reversed", input: GroupInput{SportID: sportID, Name: "U9", Weekdays: []int{1}, StartDate: &start, EndDate: &end}, wantField: "end_date"},
		{name: "bad state", input: GroupInput{SportID: sportID, Name: "U9", Weekdays: []int{1}, RegistrationState: "maybe"}, wantField: "registration_state"},
		{name: "short name", input: GroupInput{SportID: sportID, Name: "U", Weekdays: []int{1}}, wantField: "name"},
	}

	for _, tt := range fieldTests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateGroup(admin, tt.input)
			var vErr validation.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("CreateGroup() error = %v, want ValidationError", err)
			}
			if vErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", vErr.Field, tt.wantField)
			}
		})
	}
}

func TestCloneChildAddsOneMembership(t *testing.T) {
	db := openTestDB(t)
	admin := createStaff(t, db, "admin@example.com", models.RoleAdmin)
	u7 := createGroup(t, db, admin, "Fotbal U7", []int{2, 4}, OptionInput{Name: "Twice", FrequencyPerWeek: 2})
	u9 := createGroup(t, db, admin, "Fotbal U9", []int{1, 3}, OptionInput{Name: "Once", FrequencyPerWeek: 1})
	child, original := enrol(t, db, u7.ID, "150315/1001", models.NewDate(2024, time.January, 1))

	svc := NewRosterService(db, fixedClock(2024, time.March, 1))
	clone, err := svc.CloneChild(admin, child.ID, u9.ID, nil)
	if err != nil {
		t.Fatalf("CloneChild() error = %v", err)
	}
	if clone.ChildID != child.ID || clone.GroupID != u9.ID {
		t.Errorf("clone = child %d group %d, want child %d group %d", clone.ChildID, clone.GroupID, child.ID, u9.ID)
	}
	if clone.OptionID == nil || *clone.OptionID != u9.Options[0].ID {
		t.Errorf("clone option = %v, want %d", clone.OptionID, u9.Options[0].ID)
	}
	if clone.RegisteredOn.String() != "2024-03-01" {
		t.Errorf("clone RegisteredOn = %v, want 2024-03-01", clone.RegisteredOn)
	}

	memberships, err := repository.NewMembershipRepository(db).ListChildMemberships(child.ID)
	if err != nil {
		t.Fatalf("ListChildMemberships() error = %v", err)
	}
	if len(memberships) != 2 {
		t.Fatalf("child has %d memberships, want 2", len(memberships))
	}

	after, _ := repository.NewMembershipRepository(db).GetMembershipByID(original.ID)
	if after.GroupID != u7.ID || !after.Active || after.RegisteredOn.String() != "2024-01-01" {
		t.Errorf("original membership changed: %+v", after)
	}

	if _, err := svc.CloneChild(admin, child.ID, u9.ID, nil); !errors.Is(err, ErrAlreadyMember) {
		t.Errorf("second CloneChild() error = %v, want ErrAlreadyMember", err)
	}
	if _, err := svc.CloneChild(admin, child.ID, u7.ID, &u9.Options[0].ID); !errors.Is(err, ErrAlreadyMember) {
		t.Errorf("CloneChild() into own group error = %v, want ErrAlreadyMember", err)
	}
}

func TestMoveMembershipsMapsOptionByName(t *testing.T) {
	db := openTestDB(t)
	admin := createStaff(t, db, "admin@example.com", models.RoleAdmin)
	from := createGroup(t, db, admin, "Fotbal U7", []int{2, 4},
		OptionInput{Name: "Once", FrequencyPerWeek: 1},
		OptionInput{Name: "Twice", FrequencyPerWeek: 2},
	)
	to := createGroup(t, db, admin, "Fotbal U9", []int{1, 3},
		OptionInput{Name: "Weekend", FrequencyPerWeek: 1},
		OptionInput{Name: "Twice", FrequencyPerWeek: 2},
	)
	_, matched := enrol(t, db, from.ID, "150315/1001", models.NewDate(2024, time.January, 1))
	_, unmatched := enrol(t, db, from.ID, "155315/1006", models.NewDate(2024, time.January, 1))

	svc := NewRosterService(db, fixedClock(2024, time.April, 1))
	if _, err := svc.ChangeMembershipOption(admin, matched.ID, &from.Options[1].ID); err != nil {
		t.Fatalf("ChangeMembershipOption() error = %v", err)
	}
	if _, err := svc.ChangeMembershipOption(admin, unmatched.ID, &from.Options[0].ID); err != nil {
		t.Fatalf("ChangeMembershipOption() error = %v", err)
	}
	if _, err := svc.ChangeMembershipOption(admin, unmatched.ID, &to.Options[0].ID); !errors.Is(err, ErrOptionOutsideGroup) {
		t.Errorf("ChangeMembershipOption() foreign option error = %v, want ErrOptionOutsideGroup", err)
	}

	moved, err := svc.MoveMemberships(admin, []int64{matched.ID, unmatched.ID}, to.ID)
	if err != nil {
		t.Fatalf("MoveMemberships() error = %v", err)
	}
	if len(moved) != 2 {
		t.Fatalf("MoveMemberships() = %d memberships, want 2", len(moved))
	}

	repo := repository.NewMembershipRepository(db)
	m1, _ := repo.GetMembershipByID(matched.ID)
	if m1.GroupID != to.ID || m1.OptionID == nil || *m1.OptionID != to.Options[1].ID {
		t.Errorf("matched membership = group %d option %v, want group %d option %d", m1.GroupID, m1.OptionID, to.ID, to.Options[1].ID)
	}
	if m1.RegisteredOn.String() != "2024-04-01" {
		t.Errorf("moved RegisteredOn = %v, want 2024-04-01", m1.RegisteredOn)
	}
	m2, _ := repo.GetMembershipByID(unmatched.ID)
	if m2.OptionID == nil || *m2.OptionID != to.Options[0].ID {
		t.Errorf("unmatched membership option = %v, want first option %d", m2.OptionID, to.Options[0].ID)
	}
}

func TestUpdateGroupPrunesDroppedWeekdays(t *testing.T) {
	db := openTestDB(t)
	clock := fixedClock(2024, time.January, 1)
	admin := createStaff(t, db, "admin@example.com", models.RoleAdmin)
	group := createGroup(t, db, admin, "Fotbal U7", []int{2, 4})
	scheduler := NewScheduleService(db, clock)
	januaryGroup(t, scheduler, admin, group)

	svc := NewRosterService(db, clock)
	updated, err := svc.UpdateGroup(admin, group.ID, GroupInput{Name: "Fotbal U7", Weekdays: []int{2}})
	if err != nil {
		t.Fatalf("UpdateGroup() error = %v", err)
	}
	if updated.Weekdays.String() != "2" {
		t.Errorf("Weekdays = %v, want 2", updated.Weekdays)
	}

	sessions, _ := scheduler.ListSessions(admin, group.ID, models.NewDate(2024, time.January, 1), models.NewDate(2024, time.January, 31))
	if len(sessions) != 5 {
		t.Errorf("ListSessions() after update = %d sessions, want 5 Tuesdays", len(sessions))
	}
}

func TestUpdateGroupKeepsSessionsWithAttendance(t *testing.T) {
	db := openTestDB(t)
	clock := fixedClock(2024, time.January, 1)
	admin := createStaff(t, db, "admin@example.com", models.RoleAdmin)
	group := createGroup(t, db, admin, "Fotbal U7", []int{2, 4})
	scheduler := NewScheduleService(db, clock)
	sessions := januaryGroup(t, scheduler, admin, group)
	child, _ := enrol(t, db, group.ID, "150315/1001", models.NewDate(2024, time.January, 1))

	// Jan 4 is a Thursday; administrators may mark ahead of time
	if _, err := NewAttendanceService(db, clock).ToggleAttendance(admin, sessions[1].ID, child.ID); err != nil {
		t.Fatalf("ToggleAttendance() error = %v", err)
	}

	svc := NewRosterService(db, clock)
	_, err := svc.UpdateGroup(admin, group.ID, GroupInput{Name: "Fotbal U7", Weekdays: []int{2}})
	if !errors.Is(err, ErrScheduledAttendance) {
		t.Fatalf("UpdateGroup() error = %v, want ErrScheduledAttendance", err)
	}

	got, _ := svc.GetGroup(group.ID)
	if got.Weekdays.String() != "2,4" {
		t.Errorf("Weekdays after refused update = %v, want 2,4", got.Weekdays)
	}
	remaining, _ := scheduler.ListSessions(admin, group.ID, models.NewDate(2024, time.January, 1), models.NewDate(2024, time.January, 31))
	if len(remaining) != 9 {
		t.Errorf("sessions after refused update = %d, want 9", len(remaining))
	}
}

func TestDeleteRules(t *testing.T) {
	db := openTestDB(t)
	admin := createStaff(t, db, "admin@example.com", models.RoleAdmin)
	svc := NewRosterService(db, nil)
	group := createGroup(t, db, admin, "Fotbal U7", []int{2, 4})
	child, membership := enrol(t, db, group.ID, "150315/1001", models.NewDate(2024, time.January, 1))

	if err := svc.DeleteSport(admin, footballID(t, db)); !errors.Is(err, ErrSportInUse) {
		t.Errorf("DeleteSport() error = %v, want ErrSportInUse", err)
	}
	if err := svc.DeleteGroup(admin, group.ID); !errors.Is(err, ErrGroupHasMembers) {
		t.Errorf("DeleteGroup() error = %v, want ErrGroupHasMembers", err)
	}

	if err := svc.RemoveMembership(admin, membership.ID); err != nil {
		t.Fatalf("RemoveMembership() error = %v", err)
	}
	if err := svc.DeleteGroup(admin, group.ID); err != nil {
		t.Errorf("DeleteGroup() after removing members error = %v", err)
	}

	details, err := svc.GetChild(admin, child.ID)
	if err != nil {
		t.Fatalf("GetChild() error = %v", err)
	}
	if len(details.Memberships) != 0 {
		t.Errorf("GetChild() memberships = %d, want 0", len(details.Memberships))
	}

	parentID := child.ParentID
	if err := svc.DeleteChildRecord(admin, child.ID); err != nil {
		t.Fatalf("DeleteChildRecord() error = %v", err)
	}
	parent, _ := repository.NewParentRepository(db).GetParentByID(parentID)
	if parent != nil {
		t.Error("parent without children should be removed")
	}
	if _, err := svc.GetChild(admin, child.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetChild() after delete error = %v, want ErrNotFound", err)
	}
}

func TestSportsAndSearch(t *testing.T) {
	db := openTestDB(t)
	admin := createStaff(t, db, "admin@example.com", models.RoleAdmin)
	svc := NewRosterService(db, nil)

	sport, err := svc.CreateSport(admin, "  floorball ")
	if err != nil {
		t.Fatalf("CreateSport() error = %v", err)
	}
	if sport.Name != "floorball" {
		t.Errorf("Name = %q, want floorball", sport.Name)
	}
	if _, err := svc.CreateSport(admin, "floorball"); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("duplicate CreateSport() error = %v, want ErrDuplicateName", err)
	}
	if err := svc.DeleteSport(admin, sport.ID); err != nil {
		t.Errorf("DeleteSport() error = %v", err)
	}

	group := createGroup(t, db, admin, "Fotbal U7", []int{2})
	enrol(t, db, group.ID, "150315/1001", models.NewDate(2024, time.January, 1))
	enrol(t, db, group.ID, "155315/1006", models.NewDate(2024, time.January, 1))

	all, err := svc.ListChildren(admin, "", 0)
	if err != nil {
		t.Fatalf("ListChildren() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("ListChildren() = %d, want 2", len(all))
	}
	found, _ := svc.ListChildren(admin, "155315", 0)
	if len(found) != 1 || found[0].Child.NationalID != "155315/1006" {
		t.Errorf("ListChildren(155315) = %+v, want one child", found)
	}
	if len(found) == 1 && len(found[0].Memberships) != 1 {
		t.Errorf("memberships = %d, want 1", len(found[0].Memberships))
	}

	members, err := svc.ListGroupChildren(admin, group.ID)
	if err != nil || len(members) != 2 {
		t.Errorf("ListGroupChildren() = %d, %v, want 2", len(members), err)
	}
}

func TestRegistrationSetting(t *testing.T) {
	db := openTestDB(t)
	admin := createStaff(t, db, "admin@example.com", models.RoleAdmin)
	trainer := createStaff(t, db, "trainer@example.com", models.RoleTrainer)
	svc := NewRosterService(db, nil)

	open, err := svc.RegistrationOpen()
	if err != nil || !open {
		t.Fatalf("RegistrationOpen() = %v, %v, want true by default", open, err)
	}
	if err := svc.SetRegistrationOpen(trainer, false); !errors.Is(err, access.ErrForbidden) {
		t.Errorf("SetRegistrationOpen() as trainer error = %v, want ErrForbidden", err)
	}
	if err := svc.SetRegistrationOpen(admin, false); err != nil {
		t.Fatalf("SetRegistrationOpen() error = %v", err)
	}
	open, _ = svc.RegistrationOpen()
	if open {
		t.Error("RegistrationOpen() should be false after closing")
	}
}
