package models

import "time"

// FullPeriodMonths is the number of months the full option price pays for
const FullPeriodMonths = 5

// MaxVariableSymbolLength bounds the payment reference printed on bank orders
const MaxVariableSymbolLength = 20

// ReceivedPayment is a bank payment entered by an administrator
type ReceivedPayment struct {
	ID             int64     `json:"id"`
	ReceivedDate   Date      `json:"received_date"`
	VariableSymbol string    `json:"variable_symbol"`
	AmountMinor    int64     `json:"amount_minor"`
	SenderName     string    `json:"sender_name,omitempty"`
	Note           string    `json:"note,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Contribution is the dues owed for one active membership
type Contribution struct {
	MembershipID   int64  `json:"membership_id"`
	ChildID        int64  `json:"child_id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	VariableSymbol string `json:"variable_symbol"`
	ParentPhone    string `json:"parent_phone,omitempty"`
	GroupID        int64  `json:"group_id"`
	GroupName      string `json:"group_name"`
	SportName      string `json:"sport_name"`
	OptionName     string `json:"option_name,omitempty"`
	FullPriceMinor int64  `json:"full_price_minor"`
	BillingStart   Date   `json:"billing_start"`
	PayableMonths  int    `json:"payable_months"`
	AmountDueMinor int64  `json:"amount_due_minor"`
	Paid           bool   `json:"paid"`
}

// MonthStart returns the first day of d's month
func MonthStart(d Date) Date {
	return NewDate(d.Year(), d.Month(), 1)
}

// AddMonths returns the first day of the month n months after d's month
func AddMonths(d Date, n int) Date {
	return NewDate(d.Year(), d.Month()+time.Month(n), 1)
}

// SeasonMonths lists the first day of every month the group's season touches.
// A group without both bounds, or with inverted bounds, has no season months.
func (g *Group) SeasonMonths() []Date {
	if g.StartDate == nil || g.EndDate == nil || g.StartDate.After(*g.EndDate) {
		return nil
	}
	last := MonthStart(*g.EndDate)
	var months []Date
	for m := MonthStart(*g.StartDate); !m.After(last); m = AddMonths(m, 1) {
		months = append(months, m)
	}
	return months
}

// BillingStart clamps the selected month into the group's season. Without a
// selection the fallback day is used, and without a season the month is
// returned unchanged.
func (g *Group) BillingStart(selected *Date, fallback Date) Date {
	start := MonthStart(fallback)
	if selected != nil {
		start = MonthStart(*selected)
	}
	months := g.SeasonMonths()
	if len(months) == 0 {
		return start
	}
	if start.Before(months[0]) {
		return months[0]
	}
	if last := months[len(months)-1]; start.After(last) {
		return last
	}
	return start
}

// PayableMonths counts the season months from start on, between 1 and
// FullPeriodMonths. Groups without a season pay the full period.
func (g *Group) PayableMonths(start Date) int {
	months := g.SeasonMonths()
	if len(months) == 0 {
		return FullPeriodMonths
	}
	start = g.BillingStart(&start, start)
	count := 0
	for _, m := range months {
		if !m.Before(start) {
			count++
		}
	}
	if count < 1 {
		count = 1
	}
	if count > FullPeriodMonths {
		count = FullPeriodMonths
	}
	return count
}

// ProratedMinor scales a full-period price to the payable months, rounding
// half a minor unit up
func ProratedMinor(fullPriceMinor int64, months int) int64 {
	if fullPriceMinor <= 0 {
		return 0
	}
	return (2*fullPriceMinor*int64(months) + FullPeriodMonths) / (2 * FullPeriodMonths)
}

// TrainerAttendance records whether a trainer led a session. ExtraAccess
// marks a trainer who was not assigned to the group.
type TrainerAttendance struct {
	ID          int64     `json:"id"`
	SessionID   int64     `json:"session_id"`
	TrainerID   int64     `json:"trainer_id"`
	Present     bool      `json:"present"`
	ExtraAccess bool      `json:"extra_access"`
	RecordedBy  *int64    `json:"recorded_by,omitempty"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// TrainerRosterEntry is a trainer at a session with their mark, nil when unmarked
type TrainerRosterEntry struct {
	TrainerID   int64  `json:"trainer_id"`
	Name        string `json:"name"`
	Assigned    bool   `json:"assigned"`
	Present     *bool  `json:"present"`
	ExtraAccess bool   `json:"extra_access"`
}

// ContributionReport lists the dues of active memberships and their total
type ContributionReport struct {
	Rows             []Contribution `json:"rows"`
	TotalDueMinor    int64          `json:"total_due_minor"`
	PaidCount        int            `json:"paid_count"`
	FullPeriodMonths int            `json:"full_period_months"`
}

// TrainerAttendanceSummary is a trainer's presence at a group's sessions over a period
type TrainerAttendanceSummary struct {
	TrainerID   int64   `json:"trainer_id"`
	TrainerName string  `json:"trainer_name"`
	GroupID     int64   `json:"group_id"`
	From        Date    `json:"from"`
	To          Date    `json:"to"`
	Present     int     `json:"present"`
	Sessions    int     `json:"sessions"`
	Percentage  float64 `json:"percentage"`
	HasData     bool    `json:"has_data"`
}
