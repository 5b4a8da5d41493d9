package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"sportclub/internal/database"
	"sportclub/internal/models"
)

// MembershipRepository handles database operations for memberships
type MembershipRepository struct {
	db database.DBTX
}

// NewMembershipRepository creates a new membership repository
func NewMembershipRepository(db database.DBTX) *MembershipRepository {
	return &MembershipRepository{db: db}
}

const membershipColumns = `m.id, m.child_id, m.group_id, m.attendance_option_id, m.registered_on, m.active, m.ended_on,
	m.billing_start_month, m.created_at`

func membershipDest(m *models.Membership) []interface{} {
	return []interface{}{
		&m.ID,
		&m.ChildID,
		&m.GroupID,
		&m.OptionID,
		&m.RegisteredOn,
		&m.Active,
		&m.EndedOn,
		&m.BillingStartMonth,
		&m.CreatedAt,
	}
}

// CreateMembership inserts an active membership and sets its ID
func (r *MembershipRepository) CreateMembership(m *models.Membership) error {
	query := `
		INSERT INTO memberships (child_id, group_id, attendance_option_id, registered_on, active, billing_start_month)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, m.ChildID, m.GroupID, m.OptionID, m.RegisteredOn, true, m.BillingStartMonth)
	if err != nil {
		return fmt.Errorf("failed to create membership: %w", err)
	}
	m.ID = id
	m.Active = true
	m.EndedOn = nil
	m.CreatedAt = time.Now()
	return nil
}

func (r *MembershipRepository) getMembership(where string, args ...interface{}) (*models.Membership, error) {
	m := &models.Membership{}
	err := r.db.QueryRow("SELECT "+membershipColumns+" FROM memberships m WHERE "+where, args...).Scan(membershipDest(m)...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return m, nil
}

// GetMembershipByID retrieves a membership by ID
func (r *MembershipRepository) GetMembershipByID(id int64) (*models.Membership, error) {
	return r.getMembership("m.id = ?", id)
}

// GetMembership retrieves the membership of a child in a group
func (r *MembershipRepository) GetMembership(childID, groupID int64) (*models.Membership, error) {
	return r.getMembership("m.child_id = ? AND m.group_id = ?", childID, groupID)
}

// CountActiveMembers returns the number of active memberships in a group
func (r *MembershipRepository) CountActiveMembers(groupID int64) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM memberships WHERE group_id = ? AND active = ?", groupID, true).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return count, nil
}

// CountMembers returns the number of memberships in a group, ended ones included
func (r *MembershipRepository) CountMembers(groupID int64) (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM memberships WHERE group_id = ?", groupID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return count, nil
}

var memberSelect = "SELECT " + membershipColumns + ", " + childColumns + ", " + prefixed("p", parentColumns) + `,
		COALESCE(o.name, ''), COALESCE(o.price_minor, 0)
	FROM memberships m
	JOIN children c ON c.id = m.child_id
	JOIN parents p ON p.id = c.parent_id
	LEFT JOIN attendance_options o ON o.id = m.attendance_option_id
`

func (r *MembershipRepository) queryMembers(query string, args ...interface{}) ([]models.GroupMember, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	members := []models.GroupMember{}
	for rows.Next() {
		var gm models.GroupMember
		p := &gm.Parent
		dest := append(membershipDest(&gm.Membership), childDest(&gm.Child)...)
		dest = append(dest,
			&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Phone,
			&p.Street, &p.City, &p.PostalCode, &p.CreatedAt, &p.UpdatedAt,
			&gm.OptionName, &gm.OptionPriceMinor,
		)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, gm)
	}
	return members, rows.Err()
}

// ListGroupMembers returns a group's memberships with child, parent and option
func (r *MembershipRepository) ListGroupMembers(groupID int64) ([]models.GroupMember, error) {
	return r.queryMembers(memberSelect+" WHERE m.group_id = ? ORDER BY c.last_name, c.first_name, c.id", groupID)
}

// ListActiveMembers returns active memberships of every group in creation
// order. The search matches child names and variable symbols.
func (r *MembershipRepository) ListActiveMembers(search string) ([]models.GroupMember, error) {
	query := memberSelect + " WHERE m.active = ?"
	args := []interface{}{true}
	if search = strings.ToLower(strings.TrimSpace(search)); search != "" {
		pattern := "%" + search + "%"
		query += ` AND (LOWER(c.first_name) LIKE ? OR LOWER(c.last_name) LIKE ?
			OR COALESCE(c.variable_symbol, '') LIKE ?)`
		args = append(args, pattern, pattern, pattern)
	}
	return r.queryMembers(query+" ORDER BY m.id", args...)
}

// ListChildMemberships returns every membership of a child with group details
func (r *MembershipRepository) ListChildMemberships(childID int64) ([]models.ChildMembership, error) {
	query := "SELECT " + membershipColumns + `, g.name, s.name, COALESCE(o.name, '')
		FROM memberships m
		JOIN training_groups g ON g.id = m.group_id
		JOIN sports s ON s.id = g.sport_id
		LEFT JOIN attendance_options o ON o.id = m.attendance_option_id
		WHERE m.child_id = ?
		ORDER BY m.registered_on, m.id`

	rows, err := r.db.Query(query, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to query memberships: %w", err)
	}
	defer rows.Close()

	memberships := []models.ChildMembership{}
	for rows.Next() {
		var cm models.ChildMembership
		dest := append(membershipDest(&cm.Membership), &cm.GroupName, &cm.SportName, &cm.OptionName)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		memberships = append(memberships, cm)
	}
	return memberships, rows.Err()
}

// SetOption changes the attendance option of a membership
func (r *MembershipRepository) SetOption(id int64, optionID *int64) error {
	if _, err := r.db.Exec("UPDATE memberships SET attendance_option_id = ? WHERE id = ?", optionID, id); err != nil {
		return fmt.Errorf("failed to update membership option: %w", err)
	}
	return nil
}

// SetBillingStart overrides the month dues are counted from, nil restores the default
func (r *MembershipRepository) SetBillingStart(id int64, month *models.Date) error {
	if _, err := r.db.Exec("UPDATE memberships SET billing_start_month = ? WHERE id = ?", month, id); err != nil {
		return fmt.Errorf("failed to update billing start: %w", err)
	}
	return nil
}

// Deactivate ends a membership on the given day
func (r *MembershipRepository) Deactivate(id int64, endedOn models.Date) error {
	query := "UPDATE memberships SET active = ?, ended_on = ? WHERE id = ?"
	if _, err := r.db.Exec(query, false, endedOn, id); err != nil {
		return fmt.Errorf("failed to deactivate membership: %w", err)
	}
	return nil
}

// MoveToGroup re-points a membership at another group starting on registeredOn
func (r *MembershipRepository) MoveToGroup(id, groupID int64, optionID *int64, registeredOn models.Date) error {
	query := `
		UPDATE memberships
		SET group_id = ?, attendance_option_id = ?, registered_on = ?, active = ?, ended_on = NULL
		WHERE id = ?
	`
	if _, err := r.db.Exec(query, groupID, optionID, registeredOn, true, id); err != nil {
		return fmt.Errorf("failed to move membership: %w", err)
	}
	return nil
}

// DeleteMembership removes a membership and the child's attendance in that
// group's sessions
func (r *MembershipRepository) DeleteMembership(m *models.Membership) error {
	query := `
		DELETE FROM attendance_records
		WHERE child_id = ? AND session_id IN (SELECT id FROM training_sessions WHERE group_id = ?)
	`
	if _, err := r.db.Exec(query, m.ChildID, m.GroupID); err != nil {
		return fmt.Errorf("failed to delete membership attendance: %w", err)
	}
	if _, err := r.db.Exec("DELETE FROM memberships WHERE id = ?", m.ID); err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	return nil
}
