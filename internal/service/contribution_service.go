package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"sportclub/internal/access"
	"sportclub/internal/database"
	"sportclub/internal/models"
	"sportclub/internal/repository"
	"sportclub/internal/validation"
)

// Contribution list orderings
const (
	SortByName   = "name"
	SortByVS     = "vs"
	SortByPhone  = "phone"
	SortByGroup  = "group"
	SortByOption = "option"
	SortByAmount = "amount"
)

// ContributionService computes membership dues and tracks received payments
type ContributionService struct {
	db    *database.DB
	repos *repository.Repositories
	clock Clock
}

// NewContributionService creates a new contribution service
func NewContributionService(db *database.DB, clock Clock) *ContributionService {
	if clock == nil {
		clock = time.Now
	}
	return &ContributionService{db: db, repos: repository.New(db), clock: clock}
}

// paymentKey identifies payments that settle the same due
type paymentKey struct {
	vs     string
	amount int64
}

// paymentPool counts unconsumed payments per variable symbol and amount
type paymentPool map[paymentKey]int

func newPaymentPool(payments []models.ReceivedPayment) paymentPool {
	pool := make(paymentPool)
	for _, p := range payments {
		pool[paymentKey{strings.TrimSpace(p.VariableSymbol), p.AmountMinor}]++
	}
	return pool
}

// consume uses up one payment matching vs and amount, reporting whether one was left
func (p paymentPool) consume(vs string, amount int64) bool {
	key := paymentKey{strings.TrimSpace(vs), amount}
	if p[key] == 0 {
		return false
	}
	p[key]--
	return true
}

// ListContributions returns the dues of every active membership. Payments are
// matched in membership order before sorting so the paid flags do not depend
// on the requested ordering.
func (s *ContributionService) ListContributions(actor *access.Actor, search, sortBy string, desc bool) (*models.ContributionReport, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}

	members, err := s.repos.Memberships.ListActiveMembers(search)
	if err != nil {
		return nil, err
	}
	groups, err := s.repos.Groups.ListGroups(0, true)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*models.Group, len(groups))
	for i := range groups {
		byID[groups[i].ID] = &groups[i]
	}
	payments, err := s.repos.Payments.ListPayments()
	if err != nil {
		return nil, err
	}
	pool := newPaymentPool(payments)

	now := today(s.clock)
	report := &models.ContributionReport{Rows: []models.Contribution{}, FullPeriodMonths: models.FullPeriodMonths}
	for _, member := range members {
		group, ok := byID[member.Membership.GroupID]
		if !ok {
			return nil, fmt.Errorf("membership %d refers to missing group %d", member.Membership.ID, member.Membership.GroupID)
		}
		row := contributionFor(member, group, now)
		row.Paid = pool.consume(row.VariableSymbol, row.AmountDueMinor)
		report.TotalDueMinor += row.AmountDueMinor
		if row.Paid {
			report.PaidCount++
		}
		report.Rows = append(report.Rows, row)
	}

	sortContributions(report.Rows, sortBy, desc)
	return report, nil
}

// contributionFor prices one membership. Billing starts in the selected month
// or the month of registration, clamped into the group's season.
func contributionFor(member models.GroupMember, group *models.Group, now models.Date) models.Contribution {
	selected := member.Membership.BillingStartMonth
	if selected == nil {
		registered := models.MonthStart(member.Membership.RegisteredOn)
		selected = &registered
	}
	start := group.BillingStart(selected, now)
	months := group.PayableMonths(start)

	return models.Contribution{
		MembershipID:   member.Membership.ID,
		ChildID:        member.Child.ID,
		FirstName:      member.Child.FirstName,
		LastName:       member.Child.LastName,
		VariableSymbol: member.Child.VariableSymbol,
		ParentPhone:    member.Parent.Phone,
		GroupID:        group.ID,
		GroupName:      group.Name,
		SportName:      group.SportName,
		OptionName:     member.OptionName,
		FullPriceMinor: member.OptionPriceMinor,
		BillingStart:   start,
		PayableMonths:  months,
		AmountDueMinor: models.ProratedMinor(member.OptionPriceMinor, months),
	}
}

func sortContributions(rows []models.Contribution, sortBy string, desc bool) {
	compare := func(a, b *models.Contribution) int {
		switch sortBy {
		case SortByVS:
			return compareVS(a.VariableSymbol, b.VariableSymbol)
		case SortByPhone:
			return strings.Compare(a.ParentPhone, b.ParentPhone)
		case SortByGroup:
			if c := strings.Compare(a.SportName, b.SportName); c != 0 {
				return c
			}
			return strings.Compare(a.GroupName, b.GroupName)
		case SortByOption:
			return strings.Compare(a.OptionName, b.OptionName)
		case SortByAmount:
			return compareInt(a.AmountDueMinor, b.AmountDueMinor)
		default:
			if c := strings.Compare(strings.ToLower(a.LastName), strings.ToLower(b.LastName)); c != 0 {
				return c
			}
			return strings.Compare(strings.ToLower(a.FirstName), strings.ToLower(b.FirstName))
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		c := compare(&rows[i], &rows[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
}

// compareVS orders numeric symbols numerically and places them before others
func compareVS(a, b string) int {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		return compareInt(na, nb)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return strings.Compare(a, b)
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// validatePayment normalizes and checks a payment before it is stored
func validatePayment(p *models.ReceivedPayment, now models.Date) error {
	p.VariableSymbol = strings.TrimSpace(p.VariableSymbol)
	p.SenderName = validation.NormalizeSpaces(p.SenderName)
	p.Note = strings.TrimSpace(p.Note)

	if p.VariableSymbol == "" {
		return validation.ValidationError{Field: "variable_symbol", Message: "variable symbol is required"}
	}
	if len(p.VariableSymbol) > models.MaxVariableSymbolLength {
		return validation.ValidationError{Field: "variable_symbol", Message: "variable symbol is too long"}
	}
	if p.AmountMinor <= 0 {
		return validation.ValidationError{Field: "amount_minor", Message: "amount must be positive"}
	}
	if utf8.RuneCountInString(p.SenderName) > 160 {
		return validation.ValidationError{Field: "sender_name", Message: "sender name is too long"}
	}
	if utf8.RuneCountInString(p.Note) > 255 {
		return validation.ValidationError{Field: "note", Message: "note is too long"}
	}
	if p.ReceivedDate.IsZero() {
		p.ReceivedDate = now
	}
	return nil
}

// RecordPayment stores a received payment. A missing date means today.
func (s *ContributionService) RecordPayment(actor *access.Actor, payment *models.ReceivedPayment) error {
	if err := access.RequireAdmin(actor); err != nil {
		return err
	}
	if err := validatePayment(payment, today(s.clock)); err != nil {
		return err
	}

	return s.db.InTx(func(tx *database.Tx) error {
		repos := repository.New(tx)
		if err := repos.Payments.CreatePayment(payment); err != nil {
			return err
		}
		detail := fmt.Sprintf("vs=%s amount=%d date=%s", payment.VariableSymbol, payment.AmountMinor, payment.ReceivedDate)
		return recordAudit(repos, actor, "payment.record", "payment", payment.ID, detail)
	})
}

// ListPayments returns every received payment, newest first
func (s *ContributionService) ListPayments(actor *access.Actor) ([]models.ReceivedPayment, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	return s.repos.Payments.ListPayments()
}

// DeletePayment removes a payment entered by mistake
func (s *ContributionService) DeletePayment(actor *access.Actor, id int64) error {
	if err := access.RequireAdmin(actor); err != nil {
		return err
	}
	return s.db.InTx(func(tx *database.Tx) error {
		repos := repository.New(tx)
		payment, err := repos.Payments.GetPaymentByID(id)
		if err != nil {
			return err
		}
		if payment == nil {
			return ErrPaymentNotFound
		}
		if err := repos.Payments.DeletePayment(id); err != nil {
			return err
		}
		detail := fmt.Sprintf("vs=%s amount=%d", payment.VariableSymbol, payment.AmountMinor)
		return recordAudit(repos, actor, "payment.delete", "payment", id, detail)
	})
}

// SetBillingStart overrides the month a membership's dues are counted from.
// The month is stored as its first day; nil restores the registration month.
func (s *ContributionService) SetBillingStart(actor *access.Actor, membershipID int64, month *models.Date) (*models.Membership, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if month != nil {
		start := models.MonthStart(*month)
		month = &start
	}

	var membership *models.Membership
	err := s.db.InTx(func(tx *database.Tx) error {
		repos := repository.New(tx)
		var err error
		membership, err = repos.Memberships.GetMembershipByID(membershipID)
		if err != nil {
			return err
		}
		if membership == nil {
			return ErrMembershipNotFound
		}
		if err := repos.Memberships.SetBillingStart(membershipID, month); err != nil {
			return err
		}
		membership.BillingStartMonth = month

		detail := "billing_start=default"
		if month != nil {
			detail = "billing_start=" + month.String()
		}
		return recordAudit(repos, actor, "membership.billing_start", "membership", membershipID, detail)
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}
