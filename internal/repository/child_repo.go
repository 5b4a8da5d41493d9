package repository

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"sportclub/internal/database"
	"sportclub/internal/models"
)

// ChildRepository handles database operations for children
type ChildRepository struct {
	db database.DBTX
}

// NewChildRepository creates a new child repository
func NewChildRepository(db database.DBTX) *ChildRepository {
	return &ChildRepository{db: db}
}

const childColumns = `c.id, c.public_id, c.parent_id, COALESCE(c.national_id, ''), COALESCE(c.passport_number, ''),
	c.first_name, c.last_name, c.phone, COALESCE(c.variable_symbol, ''), c.created_at, c.updated_at`

func childDest(child *models.Child) []interface{} {
	return []interface{}{
		&child.ID,
		&child.PublicID,
		&child.ParentID,
		&child.NationalID,
		&child.PassportNumber,
		&child.FirstName,
		&child.LastName,
		&child.Phone,
		&child.VariableSymbol,
		&child.CreatedAt,
		&child.UpdatedAt,
	}
}

func scanChild(row rowScanner, extra ...interface{}) (*models.Child, error) {
	child := &models.Child{}
	err := row.Scan(append(childDest(child), extra...)...)
	return child, err
}

// CreateChild inserts a child, assigning a public UUID when none is set. A
// child without a variable symbol gets its ID as one.
func (r *ChildRepository) CreateChild(child *models.Child) error {
	if child.PublicID == "" {
		child.PublicID = uuid.NewString()
	}

	query := `
		INSERT INTO children (public_id, parent_id, national_id, passport_number, first_name, last_name, phone, variable_symbol)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		child.PublicID,
		child.ParentID,
		nullIfEmpty(child.NationalID),
		nullIfEmpty(child.PassportNumber),
		child.FirstName,
		child.LastName,
		child.Phone,
		nullIfEmpty(child.VariableSymbol),
	)
	if err != nil {
		return fmt.Errorf("failed to create child: %w", err)
	}

	if child.VariableSymbol == "" {
		vs := strconv.FormatInt(id, 10)
		if _, err := r.db.Exec("UPDATE children SET variable_symbol = ? WHERE id = ?", vs, id); err != nil {
			return fmt.Errorf("failed to set variable symbol: %w", err)
		}
		child.VariableSymbol = vs
	}

	child.ID = id
	child.CreatedAt = time.Now()
	child.UpdatedAt = child.CreatedAt
	return nil
}

func (r *ChildRepository) getChild(where string, arg interface{}) (*models.Child, error) {
	child, err := scanChild(r.db.QueryRow("SELECT "+childColumns+" FROM children c WHERE "+where, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	return child, nil
}

// GetChildByID retrieves a child by ID
func (r *ChildRepository) GetChildByID(id int64) (*models.Child, error) {
	return r.getChild("c.id = ?", id)
}

// GetChildByNationalID retrieves a child by normalized national ID
func (r *ChildRepository) GetChildByNationalID(nationalID string) (*models.Child, error) {
	return r.getChild("c.national_id = ?", nationalID)
}

// GetChildByPassport retrieves a child by passport number
func (r *ChildRepository) GetChildByPassport(passport string) (*models.Child, error) {
	return r.getChild("c.passport_number = ?", passport)
}

// GetChildByVariableSymbol retrieves a child by payment reference
func (r *ChildRepository) GetChildByVariableSymbol(vs string) (*models.Child, error) {
	return r.getChild("c.variable_symbol = ?", vs)
}

// UpdateChildPhone replaces the child's own contact number
func (r *ChildRepository) UpdateChildPhone(id int64, phone string) error {
	query := "UPDATE children SET phone = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.Exec(query, phone, id); err != nil {
		return fmt.Errorf("failed to update child: %w", err)
	}
	return nil
}

// SearchChildren lists children with their parents. The query matches names,
// identity documents and the parent's email; groupID narrows to members of
// one group. Empty query and zero groupID list everybody.
func (r *ChildRepository) SearchChildren(search string, groupID int64) ([]models.ChildDetails, error) {
	query := "SELECT " + childColumns + ", " + prefixed("p", parentColumns) + `
		FROM children c
		JOIN parents p ON p.id = c.parent_id
		WHERE 1 = 1`
	var args []interface{}

	if search = strings.ToLower(strings.TrimSpace(search)); search != "" {
		pattern := "%" + search + "%"
		query += ` AND (LOWER(c.first_name) LIKE ? OR LOWER(c.last_name) LIKE ?
			OR COALESCE(c.national_id, '') LIKE ? OR LOWER(COALESCE(c.passport_number, '')) LIKE ?
			OR LOWER(p.email) LIKE ? OR COALESCE(c.variable_symbol, '') LIKE ?)`
		args = append(args, pattern, pattern, pattern, pattern, pattern, pattern)
	}
	if groupID != 0 {
		query += " AND c.id IN (SELECT child_id FROM memberships WHERE group_id = ?)"
		args = append(args, groupID)
	}
	query += " ORDER BY c.last_name, c.first_name, c.id"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query children: %w", err)
	}
	defer rows.Close()

	results := []models.ChildDetails{}
	for rows.Next() {
		var p models.Parent
		child, err := scanChild(rows,
			&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Phone,
			&p.Street, &p.City, &p.PostalCode, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan child: %w", err)
		}
		results = append(results, models.ChildDetails{Child: *child, Parent: p})
	}
	return results, rows.Err()
}

// DeleteChild removes a child together with its memberships and attendance
func (r *ChildRepository) DeleteChild(id int64) error {
	statements := []string{
		"DELETE FROM attendance_records WHERE child_id = ?",
		"DELETE FROM memberships WHERE child_id = ?",
		"DELETE FROM children WHERE id = ?",
	}
	for _, stmt := range statements {
		if _, err := r.db.Exec(stmt, id); err != nil {
			return fmt.Errorf("failed to delete child: %w", err)
		}
	}
	return nil
}

// prefixed qualifies a comma separated column list with a table alias
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, part := range parts {
		parts[i] = alias + "." + strings.TrimSpace(part)
	}
	return strings.Join(parts, ", ")
}
