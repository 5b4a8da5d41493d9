package models

import (
	"math"
	"time"
)

// TrainingSession is one dated occurrence of a group's weekly training
type TrainingSession struct {
	ID        int64     `json:"id"`
	GroupID   int64     `json:"group_id"`
	Date      Date      `json:"date"`
	Cancelled bool      `json:"cancelled"`
	CreatedAt time.Time `json:"created_at"`
}

// AttendanceRecord holds the present flag of one child at one session
type AttendanceRecord struct {
	ID         int64     `json:"id"`
	SessionID  int64     `json:"session_id"`
	ChildID    int64     `json:"child_id"`
	Present    bool      `json:"present"`
	RecordedBy *int64    `json:"recorded_by,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// RosterEntry is an eligible child at a session with its mark, nil when unmarked
type RosterEntry struct {
	Child   Child `json:"child"`
	Present *bool `json:"present"`
}

// AttendanceSummary is the attendance of one child over a period
type AttendanceSummary struct {
	ChildID    int64   `json:"child_id"`
	ChildName  string  `json:"child_name,omitempty"`
	GroupID    int64   `json:"group_id"`
	From       Date    `json:"from"`
	To         Date    `json:"to"`
	Present    int     `json:"present"`
	Eligible   int     `json:"eligible"`
	Percentage float64 `json:"percentage"`
	HasData    bool    `json:"has_data"`
}

// NewAttendanceSummary computes the percentage, rounded to one decimal.
// Zero eligible sessions yields HasData=false and a 0 percentage.
func NewAttendanceSummary(childID, groupID int64, from, to Date, present, eligible int) AttendanceSummary {
	s := AttendanceSummary{
		ChildID:  childID,
		GroupID:  groupID,
		From:     from,
		To:       to,
		Present:  present,
		Eligible: eligible,
	}
	if eligible > 0 {
		s.HasData = true
		s.Percentage = math.Round(float64(present)*1000/float64(eligible)) / 10
	}
	return s
}

// AuditEntry records who changed what and when
type AuditEntry struct {
	ID         int64     `json:"id"`
	ActorID    *int64    `json:"actor_id,omitempty"`
	Action     string    `json:"action"`
	TargetType string    `json:"target_type"`
	TargetID   int64     `json:"target_id"`
	Detail     string    `json:"detail,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
