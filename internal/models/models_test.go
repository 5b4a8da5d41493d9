package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSessionIsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{
			name:      "future expiration",
			expiresAt: time.Now().Add(1 * time.Hour),
			want:      false,
		},
		{
			name:      "just expired",
			expiresAt: time.Now().Add(-1 * time.Second),
			want:      true,
		},
		{
			name:      "expired yesterday",
			expiresAt: time.Now().Add(-24 * time.Hour),
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := Session{
				ID:        "test-session",
				UserID:    1,
				ExpiresAt: tt.expiresAt,
				CreatedAt: time.Now().Add(-1 * time.Hour),
			}
			result := session.IsExpired()
			if result != tt.want {
				t.Errorf("Session.IsExpired() = %v, want %v", result, tt.want)
			}
		})
	}
}

func TestWeekdaySet(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []int
		wantErr bool
	}{
		{name: "tuesday and thursday", input: "2,4", want: []int{2, 4}},
		{name: "unordered with spaces", input: " 7, 1 ", want: []int{1, 7}},
		{name: "duplicates collapse", input: "3,3", want: []int{3}},
		{name: "empty", input: "", want: []int{}},
		{name: "zero is invalid", input: "0", wantErr: true},
		{name: "eight is invalid", input: "8", wantErr: true},
		{name: "not a number", input: "tue", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := ParseWeekdaySet(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseWeekdaySet(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			got := set.Days()
			if len(got) != len(tt.want) {
				t.Fatalf("Days() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Days() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestWeekdaySetJSONRoundTrip(t *testing.T) {
	set, _ := NewWeekdaySet(2, 4)

	data, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != "[2,4]" {
		t.Errorf("Marshal() = %s, want [2,4]", data)
	}

	var decoded WeekdaySet
	if err := json.Unmarshal([]byte("[4,2]"), &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded != set {
		t.Errorf("Unmarshal() = %v, want %v", decoded, set)
	}
	if decoded.String() != "2,4" {
		t.Errorf("String() = %q, want %q", decoded.String(), "2,4")
	}
}

func TestWeekdaySetWithout(t *testing.T) {
	current, _ := NewWeekdaySet(1, 3, 5)
	next, _ := NewWeekdaySet(1, 5)

	dropped := current.Without(next)
	if dropped.String() != "3" {
		t.Errorf("Without() = %q, want %q", dropped.String(), "3")
	}
}

func TestDateISOWeekday(t *testing.T) {
	tests := []struct {
		date Date
		want int
	}{
		{NewDate(2024, time.January, 1), 1}, // Monday
		{NewDate(2024, time.January, 2), 2},
		{NewDate(2024, time.January, 7), 7}, // Sunday
	}

	for _, tt := range tests {
		t.Run(tt.date.String(), func(t *testing.T) {
			if got := tt.date.ISOWeekday(); got != tt.want {
				t.Errorf("ISOWeekday() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDateScan(t *testing.T) {
	tests := []struct {
		name string
		src  interface{}
		want string
	}{
		{"time value", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), "2024-01-02"},
		{"plain string", "2024-01-02", "2024-01-02"},
		{"timestamp string", "2024-01-02T00:00:00Z", "2024-01-02"},
		{"bytes", []byte("2024-03-15"), "2024-03-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			if err := d.Scan(tt.src); err != nil {
				t.Fatalf("Scan() error = %v", err)
			}
			if d.String() != tt.want {
				t.Errorf("Scan() = %v, want %v", d, tt.want)
			}
		})
	}
}

func TestMembershipCovers(t *testing.T) {
	ended := NewDate(2024, time.March, 31)
	m := Membership{RegisteredOn: NewDate(2024, time.January, 10), EndedOn: &ended}

	tests := []struct {
		date Date
		want bool
	}{
		{NewDate(2024, time.January, 9), false},
		{NewDate(2024, time.January, 10), true},
		{NewDate(2024, time.March, 31), true},
		{NewDate(2024, time.April, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.date.String(), func(t *testing.T) {
			if got := m.Covers(tt.date); got != tt.want {
				t.Errorf("Covers(%s) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func TestNewAttendanceSummary(t *testing.T) {
	from := NewDate(2024, time.January, 1)
	to := NewDate(2024, time.January, 31)

	tests := []struct {
		name     string
		present  int
		eligible int
		wantPct  float64
		wantData bool
	}{
		{name: "five of nine", present: 5, eligible: 9, wantPct: 55.6, wantData: true},
		{name: "all present", present: 4, eligible: 4, wantPct: 100, wantData: true},
		{name: "none present", present: 0, eligible: 3, wantPct: 0, wantData: true},
		{name: "no eligible sessions", present: 0, eligible: 0, wantPct: 0, wantData: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewAttendanceSummary(1, 2, from, to, tt.present, tt.eligible)
			if s.Percentage != tt.wantPct {
				t.Errorf("Percentage = %v, want %v", s.Percentage, tt.wantPct)
			}
			if s.HasData != tt.wantData {
				t.Errorf("HasData = %v, want %v", s.HasData, tt.wantData)
			}
		})
	}
}

func TestGroupInSeason(t *testing.T) {
	start := NewDate(2024, time.September, 1)
	end := NewDate(2025, time.June, 30)
	g := Group{StartDate: &start, EndDate: &end}

	if g.InSeason(NewDate(2024, time.August, 31)) {
		t.Error("InSeason() should be false before the start date")
	}
	if !g.InSeason(start) {
		t.Error("InSeason() should include the start date")
	}
	if g.InSeason(NewDate(2025, time.July, 1)) {
		t.Error("InSeason() should be false after the end date")
	}

	open := Group{}
	if !open.InSeason(NewDate(2030, time.January, 1)) {
		t.Error("InSeason() should be true without bounds")
	}
}
