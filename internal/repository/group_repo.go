package repository

import (
	"database/sql"
	"fmt"
	"time"

	"sportclub/internal/database"
	"sportclub/internal/models"
)

// GroupRepository handles database operations for training groups
type GroupRepository struct {
	db database.DBTX
}

// NewGroupRepository creates a new group repository
func NewGroupRepository(db database.DBTX) *GroupRepository {
	return &GroupRepository{db: db}
}

const groupSelect = `
	SELECT g.id, g.sport_id, s.name, g.name, g.weekdays, g.start_date, g.end_date,
		g.registration_state, g.max_members, g.archived, g.created_at, g.updated_at
	FROM training_groups g
	JOIN sports s ON s.id = g.sport_id
`

func scanGroup(row rowScanner) (*models.Group, error) {
	group := &models.Group{}
	var weekdays string
	err := row.Scan(
		&group.ID,
		&group.SportID,
		&group.SportName,
		&group.Name,
		&weekdays,
		&group.StartDate,
		&group.EndDate,
		&group.RegistrationState,
		&group.MaxMembers,
		&group.Archived,
		&group.CreatedAt,
		&group.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if group.Weekdays, err = models.ParseWeekdaySet(weekdays); err != nil {
		return nil, fmt.Errorf("group %d: %w", group.ID, err)
	}
	return group, nil
}

// CreateGroup inserts a group and sets its ID
func (r *GroupRepository) CreateGroup(group *models.Group) error {
	query := `
		INSERT INTO training_groups (sport_id, name, weekdays, start_date, end_date, registration_state, max_members)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		group.SportID,
		group.Name,
		group.Weekdays.String(),
		group.StartDate,
		group.EndDate,
		string(group.RegistrationState),
		group.MaxMembers,
	)
	if err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}

	group.ID = id
	group.CreatedAt = time.Now()
	group.UpdatedAt = group.CreatedAt
	return nil
}

// GetGroupByID retrieves a group with its sport name
func (r *GroupRepository) GetGroupByID(id int64) (*models.Group, error) {
	group, err := scanGroup(r.db.QueryRow(groupSelect+" WHERE g.id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return group, nil
}

// ListGroups returns groups ordered by sport and name. A zero sportID lists
// every sport.
func (r *GroupRepository) ListGroups(sportID int64, includeArchived bool) ([]models.Group, error) {
	query := groupSelect + " WHERE 1 = 1"
	var args []interface{}
	if sportID != 0 {
		query += " AND g.sport_id = ?"
		args = append(args, sportID)
	}
	if !includeArchived {
		query += " AND g.archived = ?"
		args = append(args, false)
	}
	query += " ORDER BY s.name, g.name"

	return r.queryGroups(query, args...)
}

// ListGroupsByIDs returns the given groups, skipping unknown ids
func (r *GroupRepository) ListGroupsByIDs(ids []int64) ([]models.Group, error) {
	groups := []models.Group{}
	for _, id := range ids {
		group, err := r.GetGroupByID(id)
		if err != nil {
			return nil, err
		}
		if group != nil {
			groups = append(groups, *group)
		}
	}
	return groups, nil
}

func (r *GroupRepository) queryGroups(query string, args ...interface{}) ([]models.Group, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	groups := []models.Group{}
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, *group)
	}
	return groups, rows.Err()
}

// UpdateGroup stores the editable fields of a group
func (r *GroupRepository) UpdateGroup(group *models.Group) error {
	query := `
		UPDATE training_groups
		SET name = ?, weekdays = ?, start_date = ?, end_date = ?, registration_state = ?, max_members = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := r.db.Exec(query,
		group.Name,
		group.Weekdays.String(),
		group.StartDate,
		group.EndDate,
		string(group.RegistrationState),
		group.MaxMembers,
		group.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	return nil
}

// SetArchived archives or restores a group
func (r *GroupRepository) SetArchived(id int64, archived bool) error {
	query := "UPDATE training_groups SET archived = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.Exec(query, archived, id); err != nil {
		return fmt.Errorf("failed to archive group: %w", err)
	}
	return nil
}

// DeleteGroup removes a group. Options, sessions and assignments cascade.
func (r *GroupRepository) DeleteGroup(id int64) error {
	if _, err := r.db.Exec("DELETE FROM training_groups WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return nil
}
