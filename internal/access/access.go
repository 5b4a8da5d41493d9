// Package access decides what a signed-in staff member may do
package access

import (
	"errors"
	"fmt"

	"sportclub/internal/models"
)

// ErrForbidden is deliberately generic so responses do not reveal why
var ErrForbidden = errors.New("forbidden")

// Actor is the authenticated staff member performing an operation
type Actor struct {
	UserID int64
	Role   models.Role
}

// NewActor builds an actor from a loaded user
func NewActor(user *models.User) *Actor {
	return &Actor{UserID: user.ID, Role: user.Role}
}

// IsAdmin reports whether the actor is an administrator
func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == models.RoleAdmin
}

// ID returns a pointer for nullable actor columns, nil for system work
func (a *Actor) ID() *int64 {
	if a == nil {
		return nil
	}
	id := a.UserID
	return &id
}

// AssignmentChecker reports trainer group assignments
type AssignmentChecker interface {
	IsAssigned(userID, groupID int64) (bool, error)
}

// RequireAdmin fails unless the actor is an administrator
func RequireAdmin(actor *Actor) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// CanManageGroup allows administrators and trainers assigned to the group
func CanManageGroup(checker AssignmentChecker, actor *Actor, groupID int64) error {
	if actor == nil {
		return ErrForbidden
	}
	if actor.IsAdmin() {
		return nil
	}
	if actor.Role != models.RoleTrainer {
		return ErrForbidden
	}

	assigned, err := checker.IsAssigned(actor.UserID, groupID)
	if err != nil {
		return fmt.Errorf("failed to check group access: %w", err)
	}
	if !assigned {
		return ErrForbidden
	}
	return nil
}
