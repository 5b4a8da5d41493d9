package repository

import (
	"database/sql"
	"fmt"
	"time"

	"sportclub/internal/database"
	"sportclub/internal/models"
)

// ParentRepository handles database operations for parents
type ParentRepository struct {
	db database.DBTX
}

// NewParentRepository creates a new parent repository
func NewParentRepository(db database.DBTX) *ParentRepository {
	return &ParentRepository{db: db}
}

const parentColumns = "id, first_name, last_name, email, phone, street, city, postal_code, created_at, updated_at"

func scanParent(row rowScanner) (*models.Parent, error) {
	parent := &models.Parent{}
	err := row.Scan(
		&parent.ID,
		&parent.FirstName,
		&parent.LastName,
		&parent.Email,
		&parent.Phone,
		&parent.Street,
		&parent.City,
		&parent.PostalCode,
		&parent.CreatedAt,
		&parent.UpdatedAt,
	)
	return parent, err
}

// GetParentByID retrieves a parent by ID
func (r *ParentRepository) GetParentByID(id int64) (*models.Parent, error) {
	parent, err := scanParent(r.db.QueryRow("SELECT "+parentColumns+" FROM parents WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get parent: %w", err)
	}
	return parent, nil
}

// GetParentByEmail retrieves a parent by email address
func (r *ParentRepository) GetParentByEmail(email string) (*models.Parent, error) {
	parent, err := scanParent(r.db.QueryRow("SELECT "+parentColumns+" FROM parents WHERE email = ?", email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get parent: %w", err)
	}
	return parent, nil
}

// UpsertParentByEmail reuses the parent with the same email, refreshing the
// contact details, or inserts a new one. The parent's ID is set either way.
func (r *ParentRepository) UpsertParentByEmail(parent *models.Parent) error {
	existing, err := r.GetParentByEmail(parent.Email)
	if err != nil {
		return err
	}

	now := time.Now()
	if existing != nil {
		query := `
			UPDATE parents
			SET first_name = ?, last_name = ?, phone = ?, street = ?, city = ?, postal_code = ?,
				updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`
		_, err := r.db.Exec(query, parent.FirstName, parent.LastName, parent.Phone,
			parent.Street, parent.City, parent.PostalCode, existing.ID)
		if err != nil {
			return fmt.Errorf("failed to update parent: %w", err)
		}
		parent.ID = existing.ID
		parent.CreatedAt = existing.CreatedAt
		parent.UpdatedAt = now
		return nil
	}

	query := `
		INSERT INTO parents (first_name, last_name, email, phone, street, city, postal_code)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, parent.FirstName, parent.LastName, parent.Email,
		parent.Phone, parent.Street, parent.City, parent.PostalCode)
	if err != nil {
		return fmt.Errorf("failed to create parent: %w", err)
	}
	parent.ID = id
	parent.CreatedAt = now
	parent.UpdatedAt = now
	return nil
}

// CountChildren returns how many children the parent has
func (r *ParentRepository) CountChildren(parentID int64) (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM children WHERE parent_id = ?", parentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count children: %w", err)
	}
	return count, nil
}

// DeleteParent removes a parent without children
func (r *ParentRepository) DeleteParent(id int64) error {
	if _, err := r.db.Exec("DELETE FROM parents WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete parent: %w", err)
	}
	return nil
}
