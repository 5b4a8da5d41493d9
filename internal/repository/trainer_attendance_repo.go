package repository

import (
	"database/sql"
	"fmt"

	"sportclub/internal/database"
	"sportclub/internal/models"
)

// TrainerAttendanceRepository handles database operations for trainer presence
type TrainerAttendanceRepository struct {
	db database.DBTX
}

// NewTrainerAttendanceRepository creates a new trainer attendance repository
func NewTrainerAttendanceRepository(db database.DBTX) *TrainerAttendanceRepository {
	return &TrainerAttendanceRepository{db: db}
}

// GetRecord retrieves the record of a trainer at a session
func (r *TrainerAttendanceRepository) GetRecord(sessionID, trainerID int64) (*models.TrainerAttendance, error) {
	query := `
		SELECT id, session_id, trainer_id, present, extra_access, recorded_by, recorded_at
		FROM trainer_attendance
		WHERE session_id = ? AND trainer_id = ?
	`
	rec := &models.TrainerAttendance{}
	err := r.db.QueryRow(query, sessionID, trainerID).Scan(
		&rec.ID,
		&rec.SessionID,
		&rec.TrainerID,
		&rec.Present,
		&rec.ExtraAccess,
		&rec.RecordedBy,
		&rec.RecordedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trainer attendance: %w", err)
	}
	return rec, nil
}

// MarkPresentIfMissing creates a present record unless one exists.
// It reports whether a row was created.
func (r *TrainerAttendanceRepository) MarkPresentIfMissing(sessionID, trainerID int64, extraAccess bool, recordedBy *int64) (bool, error) {
	query := r.db.GetDialect().InsertIgnore("trainer_attendance", "session_id", "trainer_id", "present", "extra_access", "recorded_by")
	result, err := r.db.Exec(query, sessionID, trainerID, true, extraAccess, recordedBy)
	if err != nil {
		return false, fmt.Errorf("failed to insert trainer attendance: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}
	return affected > 0, nil
}

// Flip inverts the present flag of an existing record
func (r *TrainerAttendanceRepository) Flip(sessionID, trainerID int64, recordedBy *int64) error {
	query := `
		UPDATE trainer_attendance
		SET present = NOT present, recorded_by = ?, recorded_at = CURRENT_TIMESTAMP
		WHERE session_id = ? AND trainer_id = ?
	`
	if _, err := r.db.Exec(query, recordedBy, sessionID, trainerID); err != nil {
		return fmt.Errorf("failed to toggle trainer attendance: %w", err)
	}
	return nil
}

// SessionRecords returns the records of a session keyed by trainer
func (r *TrainerAttendanceRepository) SessionRecords(sessionID int64) (map[int64]models.TrainerAttendance, error) {
	query := `
		SELECT id, session_id, trainer_id, present, extra_access, recorded_by, recorded_at
		FROM trainer_attendance
		WHERE session_id = ?
	`
	rows, err := r.db.Query(query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trainer attendance: %w", err)
	}
	defer rows.Close()

	records := make(map[int64]models.TrainerAttendance)
	for rows.Next() {
		var rec models.TrainerAttendance
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.TrainerID, &rec.Present, &rec.ExtraAccess, &rec.RecordedBy, &rec.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan trainer attendance: %w", err)
		}
		records[rec.TrainerID] = rec
	}
	return records, rows.Err()
}

// PresentSessionIDs returns the sessions of the group in [from, to] where the
// trainer was marked present
func (r *TrainerAttendanceRepository) PresentSessionIDs(groupID, trainerID int64, from, to models.Date) (map[int64]bool, error) {
	query := `
		SELECT t.session_id
		FROM trainer_attendance t
		JOIN training_sessions s ON s.id = t.session_id
		WHERE s.group_id = ? AND t.trainer_id = ? AND s.session_date >= ? AND s.session_date <= ? AND t.present = ?
	`
	rows, err := r.db.Query(query, groupID, trainerID, from, to, true)
	if err != nil {
		return nil, fmt.Errorf("failed to query trainer attendance: %w", err)
	}
	defer rows.Close()

	ids := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan trainer attendance: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// CountForSession returns how many trainer records a session has
func (r *TrainerAttendanceRepository) CountForSession(sessionID int64) (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM trainer_attendance WHERE session_id = ?", sessionID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count trainer attendance: %w", err)
	}
	return count, nil
}
