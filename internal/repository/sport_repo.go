package repository

import (
	"database/sql"
	"fmt"
	"time"

	"sportclub/internal/database"
	"sportclub/internal/models"
)

// SportRepository handles database operations for sports
type SportRepository struct {
	db database.DBTX
}

// NewSportRepository creates a new sport repository
func NewSportRepository(db database.DBTX) *SportRepository {
	return &SportRepository{db: db}
}

// CreateSport inserts a sport
func (r *SportRepository) CreateSport(name string) (*models.Sport, error) {
	id, err := r.db.ExecReturningID("INSERT INTO sports (name) VALUES (?)", name)
	if err != nil {
		return nil, fmt.Errorf("failed to create sport: %w", err)
	}
	return &models.Sport{ID: id, Name: name, CreatedAt: time.Now()}, nil
}

// GetSportByID retrieves a sport by ID
func (r *SportRepository) GetSportByID(id int64) (*models.Sport, error) {
	sport := &models.Sport{}
	err := r.db.QueryRow("SELECT id, name, created_at FROM sports WHERE id = ?", id).
		Scan(&sport.ID, &sport.Name, &sport.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sport: %w", err)
	}
	return sport, nil
}

// GetSportByName retrieves a sport by its unique name
func (r *SportRepository) GetSportByName(name string) (*models.Sport, error) {
	sport := &models.Sport{}
	err := r.db.QueryRow("SELECT id, name, created_at FROM sports WHERE name = ?", name).
		Scan(&sport.ID, &sport.Name, &sport.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sport: %w", err)
	}
	return sport, nil
}

// ListSports returns all sports ordered by name
func (r *SportRepository) ListSports() ([]models.Sport, error) {
	rows, err := r.db.Query("SELECT id, name, created_at FROM sports ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query sports: %w", err)
	}
	defer rows.Close()

	sports := []models.Sport{}
	for rows.Next() {
		var sport models.Sport
		if err := rows.Scan(&sport.ID, &sport.Name, &sport.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sport: %w", err)
		}
		sports = append(sports, sport)
	}
	return sports, rows.Err()
}

// CountGroups returns how many groups (archived included) belong to the sport
func (r *SportRepository) CountGroups(sportID int64) (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM training_groups WHERE sport_id = ?", sportID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count groups: %w", err)
	}
	return count, nil
}

// DeleteSport removes a sport
func (r *SportRepository) DeleteSport(id int64) error {
	if _, err := r.db.Exec("DELETE FROM sports WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete sport: %w", err)
	}
	return nil
}
