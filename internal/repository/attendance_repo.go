package repository

import (
	"database/sql"
	"fmt"

	"sportclub/internal/database"
	"sportclub/internal/models"
)

// AttendanceRepository handles database operations for attendance records
type AttendanceRepository struct {
	db database.DBTX
}

// NewAttendanceRepository creates a new attendance repository
func NewAttendanceRepository(db database.DBTX) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// GetRecord retrieves the record of a child at a session
func (r *AttendanceRepository) GetRecord(sessionID, childID int64) (*models.AttendanceRecord, error) {
	query := `
		SELECT id, session_id, child_id, present, recorded_by, recorded_at
		FROM attendance_records
		WHERE session_id = ? AND child_id = ?
	`
	rec := &models.AttendanceRecord{}
	err := r.db.QueryRow(query, sessionID, childID).Scan(
		&rec.ID,
		&rec.SessionID,
		&rec.ChildID,
		&rec.Present,
		&rec.RecordedBy,
		&rec.RecordedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}
	return rec, nil
}

// MarkPresentIfMissing creates a present record unless one exists.
// It reports whether a row was created.
func (r *AttendanceRepository) MarkPresentIfMissing(sessionID, childID int64, recordedBy *int64) (bool, error) {
	query := r.db.GetDialect().InsertIgnore("attendance_records", "session_id", "child_id", "present", "recorded_by")
	result, err := r.db.Exec(query, sessionID, childID, true, recordedBy)
	if err != nil {
		return false, fmt.Errorf("failed to insert attendance: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}
	return affected > 0, nil
}

// Flip inverts the present flag of an existing record
func (r *AttendanceRepository) Flip(sessionID, childID int64, recordedBy *int64) error {
	query := `
		UPDATE attendance_records
		SET present = NOT present, recorded_by = ?, recorded_at = CURRENT_TIMESTAMP
		WHERE session_id = ? AND child_id = ?
	`
	if _, err := r.db.Exec(query, recordedBy, sessionID, childID); err != nil {
		return fmt.Errorf("failed to toggle attendance: %w", err)
	}
	return nil
}

// Set stores an explicit present flag, creating the record when needed
func (r *AttendanceRepository) Set(sessionID, childID int64, present bool, recordedBy *int64) error {
	query := r.db.GetDialect().InsertIgnore("attendance_records", "session_id", "child_id", "present", "recorded_by")
	if _, err := r.db.Exec(query, sessionID, childID, present, recordedBy); err != nil {
		return fmt.Errorf("failed to insert attendance: %w", err)
	}
	update := `
		UPDATE attendance_records
		SET present = ?, recorded_by = ?, recorded_at = CURRENT_TIMESTAMP
		WHERE session_id = ? AND child_id = ?
	`
	if _, err := r.db.Exec(update, present, recordedBy, sessionID, childID); err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	return nil
}

// SessionMarks returns the present flag of every marked child at a session
func (r *AttendanceRepository) SessionMarks(sessionID int64) (map[int64]bool, error) {
	rows, err := r.db.Query("SELECT child_id, present FROM attendance_records WHERE session_id = ?", sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	marks := make(map[int64]bool)
	for rows.Next() {
		var childID int64
		var present bool
		if err := rows.Scan(&childID, &present); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		marks[childID] = present
	}
	return marks, rows.Err()
}

// GroupMarks returns, per child, the ids of sessions in [from, to] of the
// group where the child was marked present
func (r *AttendanceRepository) GroupMarks(groupID int64, from, to models.Date) (map[int64]map[int64]bool, error) {
	query := `
		SELECT a.child_id, a.session_id
		FROM attendance_records a
		JOIN training_sessions s ON s.id = a.session_id
		WHERE s.group_id = ? AND s.session_date >= ? AND s.session_date <= ? AND a.present = ?
	`
	rows, err := r.db.Query(query, groupID, from, to, true)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	marks := make(map[int64]map[int64]bool)
	for rows.Next() {
		var childID, sessionID int64
		if err := rows.Scan(&childID, &sessionID); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		if marks[childID] == nil {
			marks[childID] = make(map[int64]bool)
		}
		marks[childID][sessionID] = true
	}
	return marks, rows.Err()
}

// CountForSession returns how many records a session has
func (r *AttendanceRepository) CountForSession(sessionID int64) (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM attendance_records WHERE session_id = ?", sessionID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count attendance: %w", err)
	}
	return count, nil
}
