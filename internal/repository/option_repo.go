package repository

import (
	"database/sql"
	"fmt"
	"time"

	"sportclub/internal/database"
	"sportclub/internal/models"
)

// OptionRepository handles database operations for attendance options
type OptionRepository struct {
	db database.DBTX
}

// NewOptionRepository creates a new option repository
func NewOptionRepository(db database.DBTX) *OptionRepository {
	return &OptionRepository{db: db}
}

const optionColumns = "id, group_id, name, frequency_per_week, price_minor, created_at"

func scanOption(row rowScanner) (*models.AttendanceOption, error) {
	option := &models.AttendanceOption{}
	err := row.Scan(
		&option.ID,
		&option.GroupID,
		&option.Name,
		&option.FrequencyPerWeek,
		&option.PriceMinor,
		&option.CreatedAt,
	)
	return option, err
}

// CreateOption inserts an option and sets its ID
func (r *OptionRepository) CreateOption(option *models.AttendanceOption) error {
	query := `
		INSERT INTO attendance_options (group_id, name, frequency_per_week, price_minor)
		VALUES (?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, option.GroupID, option.Name, option.FrequencyPerWeek, option.PriceMinor)
	if err != nil {
		return fmt.Errorf("failed to create option: %w", err)
	}
	option.ID = id
	option.CreatedAt = time.Now()
	return nil
}

// GetOptionByID retrieves an option by ID
func (r *OptionRepository) GetOptionByID(id int64) (*models.AttendanceOption, error) {
	option, err := scanOption(r.db.QueryRow("SELECT "+optionColumns+" FROM attendance_options WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get option: %w", err)
	}
	return option, nil
}

// ListOptions returns a group's options in creation order
func (r *OptionRepository) ListOptions(groupID int64) ([]models.AttendanceOption, error) {
	rows, err := r.db.Query("SELECT "+optionColumns+" FROM attendance_options WHERE group_id = ? ORDER BY id", groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query options: %w", err)
	}
	defer rows.Close()

	options := []models.AttendanceOption{}
	for rows.Next() {
		option, err := scanOption(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		options = append(options, *option)
	}
	return options, rows.Err()
}

// CountOptions returns the number of options a group has
func (r *OptionRepository) CountOptions(groupID int64) (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM attendance_options WHERE group_id = ?", groupID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count options: %w", err)
	}
	return count, nil
}

// FirstOption returns the group's oldest option, nil when it has none
func (r *OptionRepository) FirstOption(groupID int64) (*models.AttendanceOption, error) {
	query := "SELECT " + optionColumns + " FROM attendance_options WHERE group_id = ? ORDER BY id LIMIT 1"
	option, err := scanOption(r.db.QueryRow(query, groupID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get first option: %w", err)
	}
	return option, nil
}

// FindOptionByName looks an option up by its name within a group
func (r *OptionRepository) FindOptionByName(groupID int64, name string) (*models.AttendanceOption, error) {
	query := "SELECT " + optionColumns + " FROM attendance_options WHERE group_id = ? AND name = ?"
	option, err := scanOption(r.db.QueryRow(query, groupID, name))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get option: %w", err)
	}
	return option, nil
}

// UpdateOption stores an option's name, frequency and price
func (r *OptionRepository) UpdateOption(option *models.AttendanceOption) error {
	query := "UPDATE attendance_options SET name = ?, frequency_per_week = ?, price_minor = ? WHERE id = ?"
	if _, err := r.db.Exec(query, option.Name, option.FrequencyPerWeek, option.PriceMinor, option.ID); err != nil {
		return fmt.Errorf("failed to update option: %w", err)
	}
	return nil
}

// DeleteOption removes an option. Memberships that used it are left without one.
func (r *OptionRepository) DeleteOption(id int64) error {
	if _, err := r.db.Exec("UPDATE memberships SET attendance_option_id = NULL WHERE attendance_option_id = ?", id); err != nil {
		return fmt.Errorf("failed to detach option: %w", err)
	}
	if _, err := r.db.Exec("DELETE FROM attendance_options WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete option: %w", err)
	}
	return nil
}
