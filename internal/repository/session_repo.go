package repository

import (
	"database/sql"
	"fmt"

	"sportclub/internal/database"
	"sportclub/internal/models"
)

// TrainingSessionRepository handles database operations for training sessions
type TrainingSessionRepository struct {
	db database.DBTX
}

// NewTrainingSessionRepository creates a new training session repository
func NewTrainingSessionRepository(db database.DBTX) *TrainingSessionRepository {
	return &TrainingSessionRepository{db: db}
}

const sessionColumns = "id, group_id, session_date, cancelled, created_at"

func scanTrainingSession(row rowScanner) (*models.TrainingSession, error) {
	s := &models.TrainingSession{}
	err := row.Scan(&s.ID, &s.GroupID, &s.Date, &s.Cancelled, &s.CreatedAt)
	return s, err
}

// InsertIfMissing creates the session for (group, date) unless it exists.
// It reports whether a row was created.
func (r *TrainingSessionRepository) InsertIfMissing(groupID int64, date models.Date) (bool, error) {
	query := r.db.GetDialect().InsertIgnore("training_sessions", "group_id", "session_date")
	result, err := r.db.Exec(query, groupID, date)
	if err != nil {
		return false, fmt.Errorf("failed to insert session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}
	return affected > 0, nil
}

// GetSessionByID retrieves a session by ID
func (r *TrainingSessionRepository) GetSessionByID(id int64) (*models.TrainingSession, error) {
	s, err := scanTrainingSession(r.db.QueryRow("SELECT "+sessionColumns+" FROM training_sessions WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return s, nil
}

// ListSessions returns a group's sessions in [from, to] ordered by date
func (r *TrainingSessionRepository) ListSessions(groupID int64, from, to models.Date) ([]models.TrainingSession, error) {
	query := "SELECT " + sessionColumns + `
		FROM training_sessions
		WHERE group_id = ? AND session_date >= ? AND session_date <= ?
		ORDER BY session_date`
	return r.querySessions(query, groupID, from, to)
}

// ListSessionsAfter returns a group's sessions strictly after the given day
func (r *TrainingSessionRepository) ListSessionsAfter(groupID int64, after models.Date) ([]models.TrainingSession, error) {
	query := "SELECT " + sessionColumns + `
		FROM training_sessions
		WHERE group_id = ? AND session_date > ?
		ORDER BY session_date`
	return r.querySessions(query, groupID, after)
}

func (r *TrainingSessionRepository) querySessions(query string, args ...interface{}) ([]models.TrainingSession, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.TrainingSession{}
	for rows.Next() {
		s, err := scanTrainingSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// SetCancelled cancels or restores a session
func (r *TrainingSessionRepository) SetCancelled(id int64, cancelled bool) error {
	if _, err := r.db.Exec("UPDATE training_sessions SET cancelled = ? WHERE id = ?", cancelled, id); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return nil
}

// DeleteSession removes a session
func (r *TrainingSessionRepository) DeleteSession(id int64) error {
	if _, err := r.db.Exec("DELETE FROM training_sessions WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
