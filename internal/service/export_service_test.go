package service

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"sportclub/internal/access"
	"sportclub/internal/models"
)

func TestMembershipLabels(t *testing.T) {
	memberships := []models.ChildMembership{
		{Membership: models.Membership{Active: true}, SportName: "football", GroupName: "U7", OptionName: "Twice"},
		{Membership: models.Membership{Active: false}, SportName: "athletics", GroupName: "Juniors"},
	}
	want := "football / U7 (Twice); athletics / Juniors [inactive]"
	if got := membershipLabels(memberships); got != want {
		t.Errorf("membershipLabels() = %q, want %q", got, want)
	}
	if got := membershipLabels(nil); got != "" {
		t.Errorf("membershipLabels(nil) = %q, want empty", got)
	}
}

func TestBuildChildrenWorkbook(t *testing.T) {
	children := []models.ChildDetails{
		{
			Child: models.Child{PublicID: "abc", FirstName: "Jan", LastName: "Novák", NationalID: "150315/1001"},
			Parent: models.Parent{
				FirstName: "Petra", LastName: "Nováková", Email: "petra@example.com",
				Phone: "603123456", Street: "Dlouhá 12", City: "Praha", PostalCode: "11000",
			},
			Memberships: []models.ChildMembership{
				{Membership: models.Membership{Active: true}, SportName: "football", GroupName: "U7"},
			},
		},
	}

	f, err := buildChildrenWorkbook(children)
	if err != nil {
		t.Fatalf("buildChildrenWorkbook() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(ChildrenSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want header and one child", len(rows))
	}
	if len(rows[0]) != len(childrenExportHeaders) || rows[0][0] != "Public ID" {
		t.Errorf("header = %v", rows[0])
	}

	checks := map[int]string{0: "abc", 3: "150315/1001", 6: "Petra Nováková", 7: "petra@example.com", 12: "football / U7"}
	for col, want := range checks {
		if rows[1][col] != want {
			t.Errorf("column %d = %q, want %q", col, rows[1][col], want)
		}
	}
}

func TestExportChildren(t *testing.T) {
	db := openTestDB(t)
	admin := createStaff(t, db, "admin@example.com", models.RoleAdmin)
	trainer := createStaff(t, db, "trainer@example.com", models.RoleTrainer)
	group := createGroup(t, db, admin, "Fotbal U7", []int{2})
	enrol(t, db, group.ID, "150315/1001", models.NewDate(2024, time.January, 1))
	enrol(t, db, group.ID, "155315/1006", models.NewDate(2024, time.January, 1))
	svc := NewRosterService(db, nil)

	var buf bytes.Buffer
	if err := svc.ExportChildren(trainer, &buf, "", 0); !errors.Is(err, access.ErrForbidden) {
		t.Errorf("ExportChildren() as trainer error = %v, want ErrForbidden", err)
	}
	if err := svc.ExportChildren(admin, &buf, "", group.ID); err != nil {
		t.Fatalf("ExportChildren() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(ChildrenSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("rows = %d, want 3", len(rows))
	}
}

func TestBuildContributionsWorkbook(t *testing.T) {
	report := &models.ContributionReport{
		Rows: []models.Contribution{
			{
				VariableSymbol: "12", FirstName: "Jan", LastName: "Novák", ParentPhone: "603123456",
				SportName: "football", GroupName: "U7", OptionName: "Twice",
				FullPriceMinor: 250000, BillingStart: models.NewDate(2023, time.November, 1),
				PayableMonths: 3, AmountDueMinor: 150000, Paid: true,
			},
		},
		TotalDueMinor:    150000,
		PaidCount:        1,
		FullPeriodMonths: models.FullPeriodMonths,
	}

	f, err := buildContributionsWorkbook(report)
	if err != nil {
		t.Fatalf("buildContributionsWorkbook() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(ContributionsSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header, one contribution and total", len(rows))
	}
	if len(rows[0]) != len(contributionExportHeaders) {
		t.Errorf("header = %v", rows[0])
	}

	checks := map[int]string{0: "12", 1: "Novák", 7: "2500", 8: "2023-11", 9: "3", 10: "1500", 11: "yes"}
	for col, want := range checks {
		if got := rows[1][col]; got != want {
			t.Errorf("row[%d] = %q, want %q", col, got, want)
		}
	}
	if rows[2][0] != "Total" || rows[2][10] != "1500" {
		t.Errorf("total row = %v", rows[2])
	}
}
