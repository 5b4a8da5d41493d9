package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Sport is a discipline the club offers
type Sport struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// RegistrationState controls whether the public form accepts a group
type RegistrationState string

const (
	RegistrationOpen   RegistrationState = "open"
	RegistrationFull   RegistrationState = "full"
	RegistrationClosed RegistrationState = "closed"
)

// Valid reports whether s is a known registration state
func (s RegistrationState) Valid() bool {
	switch s {
	case RegistrationOpen, RegistrationFull, RegistrationClosed:
		return true
	}
	return false
}

// MaxAttendanceOptions is the number of pricing variants a group may offer
const MaxAttendanceOptions = 5

// Group is a training group of one sport with a weekly schedule
type Group struct {
	ID                int64             `json:"id"`
	SportID           int64             `json:"sport_id"`
	SportName         string            `json:"sport_name,omitempty"`
	Name              string            `json:"name"`
	Weekdays          WeekdaySet        `json:"weekdays"`
	StartDate         *Date             `json:"start_date,omitempty"`
	EndDate           *Date             `json:"end_date,omitempty"`
	RegistrationState RegistrationState `json:"registration_state"`
	MaxMembers        int               `json:"max_members"`
	Archived          bool              `json:"archived"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// InSeason reports whether d falls within the group's optional season bounds
func (g *Group) InSeason(d Date) bool {
	if g.StartDate != nil && d.Before(*g.StartDate) {
		return false
	}
	if g.EndDate != nil && d.After(*g.EndDate) {
		return false
	}
	return true
}

// AttendanceOption is a named pricing/frequency variant of a group
type AttendanceOption struct {
	ID               int64     `json:"id"`
	GroupID          int64     `json:"group_id"`
	Name             string    `json:"name"`
	FrequencyPerWeek int       `json:"frequency_per_week"`
	PriceMinor       int64     `json:"price_minor"`
	CreatedAt        time.Time `json:"created_at"`
}

// WeekdaySet is a set of ISO weekdays, bit n set for weekday n (1=Monday..7=Sunday)
type WeekdaySet uint8

// NewWeekdaySet builds a set from ISO weekday numbers
func NewWeekdaySet(days ...int) (WeekdaySet, error) {
	var s WeekdaySet
	for _, d := range days {
		if d < 1 || d > 7 {
			return 0, fmt.Errorf("invalid weekday %d, expected 1 (Monday) to 7 (Sunday)", d)
		}
		s |= 1 << uint(d)
	}
	return s, nil
}

// ParseWeekdaySet parses the stored "2,4" form
func ParseWeekdaySet(s string) (WeekdaySet, error) {
	var days []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0, fmt.Errorf("invalid weekday %q", part)
		}
		days = append(days, n)
	}
	return NewWeekdaySet(days...)
}

// Contains reports whether the ISO weekday is in the set
func (s WeekdaySet) Contains(isoWeekday int) bool {
	if isoWeekday < 1 || isoWeekday > 7 {
		return false
	}
	return s&(1<<uint(isoWeekday)) != 0
}

// Empty reports whether no weekday is set
func (s WeekdaySet) Empty() bool {
	return s == 0
}

// Days returns the ISO weekday numbers in ascending order
func (s WeekdaySet) Days() []int {
	days := []int{}
	for d := 1; d <= 7; d++ {
		if s.Contains(d) {
			days = append(days, d)
		}
	}
	return days
}

// Without returns the days of s that are not in other
func (s WeekdaySet) Without(other WeekdaySet) WeekdaySet {
	return s &^ other
}

// String renders the storage form, e.g. "2,4"
func (s WeekdaySet) String() string {
	days := s.Days()
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

func (s WeekdaySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Days())
}

func (s *WeekdaySet) UnmarshalJSON(data []byte) error {
	var days []int
	if err := json.Unmarshal(data, &days); err != nil {
		return err
	}
	sort.Ints(days)
	set, err := NewWeekdaySet(days...)
	if err != nil {
		return err
	}
	*s = set
	return nil
}
