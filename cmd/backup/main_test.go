package main

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestDefaultOutputPath(t *testing.T) {
	now := time.Date(2024, time.March, 5, 14, 7, 9, 0, time.UTC)
	if got := defaultOutputPath(now); got != "sportclub_backup_20240305_140709.json" {
		t.Errorf("defaultOutputPath() = %q", got)
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "yes\n", want: true},
		{input: "YES\n", want: true},
		{input: "  yes  \n", want: true},
		{input: "yes", want: true},
		{input: "y\n", want: false},
		{input: "no\n", want: false},
		{input: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var out bytes.Buffer
			if got := confirm(strings.NewReader(tt.input), &out, "sure? "); got != tt.want {
				t.Errorf("confirm(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if out.String() != "sure? " {
				t.Errorf("prompt = %q", out.String())
			}
		})
	}
}

func TestClubTablesCoverChildrenFirst(t *testing.T) {
	position := map[string]int{}
	for i, table := range clubTables {
		position[table] = i
	}
	// referencing table must be cleared before the table it references
	pairs := [][2]string{
		{"attendance_records", "children"},
		{"trainer_attendance", "training_sessions"},
		{"memberships", "training_groups"},
		{"children", "parents"},
		{"training_groups", "sports"},
		{"sessions", "users"},
	}
	for _, p := range pairs {
		from, okFrom := position[p[0]]
		to, okTo := position[p[1]]
		if !okFrom || !okTo {
			t.Fatalf("clubTables is missing %s or %s", p[0], p[1])
		}
		if from > to {
			t.Errorf("%s is cleared after %s", p[0], p[1])
		}
	}
}
