package repository

import (
	"fmt"
	"time"

	"sportclub/internal/database"
	"sportclub/internal/models"
)

// AuditRepository persists the audit trail
type AuditRepository struct {
	db database.DBTX
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db database.DBTX) *AuditRepository {
	return &AuditRepository{db: db}
}

// Record appends an entry and sets its ID
func (r *AuditRepository) Record(entry *models.AuditEntry) error {
	query := "INSERT INTO audit_log (actor_id, action, target_type, target_id, detail) VALUES (?, ?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(query, entry.ActorID, entry.Action, entry.TargetType, entry.TargetID, entry.Detail)
	if err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	entry.ID = id
	entry.CreatedAt = time.Now()
	return nil
}

// List returns the newest entries first. An empty targetType lists all
// targets; a zero targetID lists all ids of the type.
func (r *AuditRepository) List(targetType string, targetID int64, limit int) ([]models.AuditEntry, error) {
	query := "SELECT id, actor_id, action, target_type, target_id, detail, created_at FROM audit_log WHERE 1 = 1"
	var args []interface{}
	if targetType != "" {
		query += " AND target_type = ?"
		args = append(args, targetType)
		if targetID != 0 {
			query += " AND target_id = ?"
			args = append(args, targetID)
		}
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	entries := []models.AuditEntry{}
	for rows.Next() {
		var e models.AuditEntry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.TargetType, &e.TargetID, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
