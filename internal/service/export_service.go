package service

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"sportclub/internal/access"
	"sportclub/internal/models"
)

// ChildrenSheet is the worksheet name of the children export
const ChildrenSheet = "Children"

var childrenExportHeaders = []string{
	"Public ID", "First name", "Last name", "National ID", "Passport", "Child phone",
	"Parent", "Parent email", "Parent phone", "Street", "City", "Postal code", "Groups", "Variable symbol",
}

// ExportChildren writes the children matching the search as an XLSX workbook
func (s *RosterService) ExportChildren(actor *access.Actor, w io.Writer, search string, groupID int64) error {
	if err := access.RequireAdmin(actor); err != nil {
		return err
	}
	children, err := listChildrenWithMemberships(s.repos, search, groupID)
	if err != nil {
		return err
	}

	f, err := buildChildrenWorkbook(children)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func buildChildrenWorkbook(children []models.ChildDetails) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", ChildrenSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, header := range childrenExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(ChildrenSheet, cell, header)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(childrenExportHeaders), 1)
		f.SetCellStyle(ChildrenSheet, "A1", last, style)
	}

	for i, c := range children {
		row := i + 2
		values := []interface{}{
			c.Child.PublicID,
			c.Child.FirstName,
			c.Child.LastName,
			c.Child.NationalID,
			c.Child.PassportNumber,
			c.Child.Phone,
			strings.TrimSpace(c.Parent.FirstName + " " + c.Parent.LastName),
			c.Parent.Email,
			c.Parent.Phone,
			c.Parent.Street,
			c.Parent.City,
			c.Parent.PostalCode,
			membershipLabels(c.Memberships),
			c.Child.VariableSymbol,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(ChildrenSheet, cell, value)
		}
	}

	f.SetColWidth(ChildrenSheet, "A", "N", 18)
	return f, nil
}

// membershipLabels renders "Sport / Group (Option)" per membership
func membershipLabels(memberships []models.ChildMembership) string {
	labels := make([]string, 0, len(memberships))
	for _, m := range memberships {
		label := m.SportName + " / " + m.GroupName
		if m.OptionName != "" {
			label += " (" + m.OptionName + ")"
		}
		if !m.Membership.Active {
			label += " [inactive]"
		}
		labels = append(labels, label)
	}
	return strings.Join(labels, "; ")
}

// ContributionsSheet is the worksheet name of the dues export
const ContributionsSheet = "Contributions"

var contributionExportHeaders = []string{
	"Variable symbol", "Last name", "First name", "Parent phone", "Sport", "Group", "Option",
	"Full price", "Billing start", "Months", "Amount due", "Paid",
}

// ExportContributions writes the dues report as an XLSX workbook with a total row
func (s *ContributionService) ExportContributions(actor *access.Actor, w io.Writer, search, sortBy string, desc bool) error {
	report, err := s.ListContributions(actor, search, sortBy, desc)
	if err != nil {
		return err
	}

	f, err := buildContributionsWorkbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func buildContributionsWorkbook(report *models.ContributionReport) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", ContributionsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, header := range contributionExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(ContributionsSheet, cell, header)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(contributionExportHeaders), 1)
		f.SetCellStyle(ContributionsSheet, "A1", last, bold)
	}

	for i, c := range report.Rows {
		paid := "no"
		if c.Paid {
			paid = "yes"
		}
		values := []interface{}{
			c.VariableSymbol,
			c.LastName,
			c.FirstName,
			c.ParentPhone,
			c.SportName,
			c.GroupName,
			c.OptionName,
			majorUnits(c.FullPriceMinor),
			c.BillingStart.Format("2006-01"),
			c.PayableMonths,
			majorUnits(c.AmountDueMinor),
			paid,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			f.SetCellValue(ContributionsSheet, cell, value)
		}
	}

	totalRow := len(report.Rows) + 2
	label, _ := excelize.CoordinatesToCellName(1, totalRow)
	amount, _ := excelize.CoordinatesToCellName(11, totalRow)
	f.SetCellValue(ContributionsSheet, label, "Total")
	f.SetCellValue(ContributionsSheet, amount, majorUnits(report.TotalDueMinor))
	if err == nil {
		f.SetCellStyle(ContributionsSheet, label, amount, bold)
	}

	f.SetColWidth(ContributionsSheet, "A", "L", 16)
	return f, nil
}

// majorUnits converts minor currency units for spreadsheet cells
func majorUnits(minor int64) float64 {
	return float64(minor) / 100
}
