package models

import "time"

// Parent is the guardian contact captured by the registration form
type Parent struct {
	ID         int64     `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Street     string    `json:"street"`
	City       string    `json:"city"`
	PostalCode string    `json:"postal_code"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Child is a registered club member. Exactly one of NationalID and
// PassportNumber is set.
type Child struct {
	ID             int64     `json:"id"`
	PublicID       string    `json:"public_id"`
	ParentID       int64     `json:"parent_id"`
	NationalID     string    `json:"national_id,omitempty"`
	PassportNumber string    `json:"passport_number,omitempty"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Phone          string    `json:"phone,omitempty"`
	VariableSymbol string    `json:"variable_symbol"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// FullName returns "First Last"
func (c *Child) FullName() string {
	return c.FirstName + " " + c.LastName
}

// Membership is a child's enrollment in one group under one attendance option.
// BillingStartMonth overrides the month dues are counted from.
type Membership struct {
	ID                int64     `json:"id"`
	ChildID           int64     `json:"child_id"`
	GroupID           int64     `json:"group_id"`
	OptionID          *int64    `json:"attendance_option_id"`
	RegisteredOn      Date      `json:"registered_on"`
	Active            bool      `json:"active"`
	EndedOn           *Date     `json:"ended_on,omitempty"`
	BillingStartMonth *Date     `json:"billing_start_month,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// Covers reports whether the membership was in force on d
func (m *Membership) Covers(d Date) bool {
	if d.Before(m.RegisteredOn) {
		return false
	}
	if m.EndedOn != nil && d.After(*m.EndedOn) {
		return false
	}
	return true
}

// GroupMember is a membership joined with the child, parent and option
// details. OptionPriceMinor is 0 without an option.
type GroupMember struct {
	Membership       Membership `json:"membership"`
	Child            Child      `json:"child"`
	Parent           Parent     `json:"parent"`
	OptionName       string     `json:"option_name,omitempty"`
	OptionPriceMinor int64      `json:"option_price_minor"`
}

// ChildMembership is a membership joined with its group for a child's profile
type ChildMembership struct {
	Membership Membership `json:"membership"`
	GroupName  string     `json:"group_name"`
	SportName  string     `json:"sport_name"`
	OptionName string     `json:"option_name,omitempty"`
}

// ChildDetails is a child with its parent and all memberships
type ChildDetails struct {
	Child       Child             `json:"child"`
	Parent      Parent            `json:"parent"`
	Memberships []ChildMembership `json:"memberships"`
}
