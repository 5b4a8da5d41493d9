package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"sportclub/internal/access"
	"sportclub/internal/credentials"
	"sportclub/internal/database"
	"sportclub/internal/models"
	"sportclub/internal/repository"
	"sportclub/internal/security"
	"sportclub/internal/validation"
)

// TrainerInput holds the editable fields of a staff account
type TrainerInput struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
	Password  string
	Role      models.Role
}

// CreatedTrainer is returned once after account creation. TemporaryPassword
// is only set when the password was generated.
type CreatedTrainer struct {
	Trainer           models.Trainer `json:"trainer"`
	TemporaryPassword string         `json:"temporary_password,omitempty"`
}

// TrainerService manages staff accounts and their group assignments
type TrainerService struct {
	db       *database.DB
	repos    *repository.Repositories
	notifier Notifier
}

// NewTrainerService creates a new trainer service. notifier may be nil.
func NewTrainerService(db *database.DB, notifier Notifier) *TrainerService {
	return &TrainerService{db: db, repos: repository.New(db), notifier: notifier}
}

func normalizeStaff(input TrainerInput) (TrainerInput, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validation.ValidateEmail(input.Email); err != nil {
		return input, err
	}
	var err error
	if input.FirstName, err = validation.NormalizePersonName("first_name", input.FirstName); err != nil {
		return input, err
	}
	if input.LastName, err = validation.NormalizePersonName("last_name", input.LastName); err != nil {
		return input, err
	}
	if input.Phone, err = validation.NormalizePhone("phone", input.Phone, false); err != nil {
		return input, err
	}
	return input, nil
}

// CreateTrainer creates a staff account. Without a password a temporary one
// is generated and returned.
func (s *TrainerService) CreateTrainer(ctx context.Context, actor *access.Actor, input TrainerInput) (*CreatedTrainer, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	input, err := normalizeStaff(input)
	if err != nil {
		return nil, err
	}
	if input.Role == "" {
		input.Role = models.RoleTrainer
	}
	if !input.Role.Valid() {
		return nil, validation.ValidationError{Field: "role", Message: "must be admin or trainer"}
	}

	result := &CreatedTrainer{}
	password := input.Password
	if password == "" {
		password, err = credentials.GenerateTemporaryPassword()
		if err != nil {
			return nil, fmt.Errorf("failed to generate password: %w", err)
		}
		result.TemporaryPassword = password
	} else if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}

	existing, err := s.repos.Users.GetUserByEmail(input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user, err := s.repos.Users.CreateUser(input.Email, hash, input.FirstName, input.LastName, input.Phone, input.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if err := recordAudit(s.repos, actor, "staff.create", "user", user.ID, string(user.Role)); err != nil {
		log.Printf("Failed to audit staff.create: %v", err)
	}

	if s.notifier != nil {
		if err := s.notifier.SendStaffWelcome(ctx, user.Email, user.FullName()); err != nil {
			log.Printf("Failed to send welcome email to %s: %v", user.Email, err)
		}
	}

	result.Trainer = models.Trainer{User: *user, GroupIDs: []int64{}}
	return result, nil
}

func (s *TrainerService) getStaff(id int64) (*models.User, error) {
	user, err := s.repos.Users.GetUserByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrTrainerNotFound
	}
	return user, nil
}

// UpdateTrainer edits contact details; a non-empty password replaces the old one
func (s *TrainerService) UpdateTrainer(actor *access.Actor, id int64, input TrainerInput) (*models.User, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := s.getStaff(id)
	if err != nil {
		return nil, err
	}
	input, err = normalizeStaff(input)
	if err != nil {
		return nil, err
	}
	if input.Password != "" {
		if err := validation.ValidatePassword(input.Password); err != nil {
			return nil, err
		}
	}

	if input.Email != user.Email {
		other, err := s.repos.Users.GetUserByEmail(input.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing user: %w", err)
		}
		if other != nil {
			return nil, ErrEmailTaken
		}
	}

	if err := s.repos.Users.UpdateUser(id, input.Email, input.FirstName, input.LastName, input.Phone); err != nil {
		return nil, err
	}
	if input.Password != "" {
		hash, err := security.HashPassword(input.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		if err := s.repos.Users.UpdatePassword(id, hash); err != nil {
			return nil, err
		}
		if err := s.repos.Users.DeleteUserSessions(id); err != nil {
			return nil, err
		}
	}

	user.Email = input.Email
	user.FirstName = input.FirstName
	user.LastName = input.LastName
	user.Phone = input.Phone
	if err := recordAudit(s.repos, actor, "staff.update", "user", id, ""); err != nil {
		log.Printf("Failed to audit staff.update: %v", err)
	}
	return user, nil
}

// SetTrainerActive enables or disables a staff account. Disabling ends all of
// its sessions and is refused for the last active administrator.
func (s *TrainerService) SetTrainerActive(actor *access.Actor, id int64, active bool) (*models.User, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}

	var user *models.User
	err := s.db.InTx(func(tx *database.Tx) error {
		repos := repository.New(tx)
		var err error
		user, err = repos.Users.GetUserByID(id)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrTrainerNotFound
		}
		if user.Active == active {
			return nil
		}

		if !active && user.IsAdmin() {
			admins, err := repos.Users.CountActiveAdmins()
			if err != nil {
				return err
			}
			if admins <= 1 {
				return ErrLastAdmin
			}
		}

		if err := repos.Users.SetActive(id, active); err != nil {
			return err
		}
		if !active {
			if err := repos.Users.DeleteUserSessions(id); err != nil {
				return err
			}
		}
		user.Active = active
		return recordAudit(repos, actor, "staff.active", "user", id, fmt.Sprintf("active=%t", active))
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ListTrainers returns every staff account with its assigned group ids
func (s *TrainerService) ListTrainers(actor *access.Actor) ([]models.Trainer, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	assignments, err := s.repos.Users.GetAllAssignments()
	if err != nil {
		return nil, err
	}

	trainers := []models.Trainer{}
	for _, role := range []models.Role{models.RoleAdmin, models.RoleTrainer} {
		users, err := s.repos.Users.ListUsersByRole(role)
		if err != nil {
			return nil, err
		}
		for _, user := range users {
			groupIDs := assignments[user.ID]
			if groupIDs == nil {
				groupIDs = []int64{}
			}
			trainers = append(trainers, models.Trainer{User: user, GroupIDs: groupIDs})
		}
	}
	return trainers, nil
}

// AssignTrainer lets a trainer manage a group. Assigning twice is a no-op.
func (s *TrainerService) AssignTrainer(actor *access.Actor, trainerID, groupID int64) error {
	if err := access.RequireAdmin(actor); err != nil {
		return err
	}
	user, err := s.getStaff(trainerID)
	if err != nil {
		return err
	}
	if user.Role != models.RoleTrainer {
		return validation.ValidationError{Field: "trainer_id", Message: "only trainers can be assigned to groups"}
	}
	group, err := s.repos.Groups.GetGroupByID(groupID)
	if err != nil {
		return err
	}
	if group == nil {
		return ErrGroupNotFound
	}

	if err := s.repos.Users.AssignGroup(trainerID, groupID); err != nil {
		return err
	}
	if err := recordAudit(s.repos, actor, "trainer.assign", "user", trainerID, fmt.Sprintf("group=%d", groupID)); err != nil {
		log.Printf("Failed to audit trainer.assign: %v", err)
	}
	return nil
}

// UnassignTrainer removes a group assignment
func (s *TrainerService) UnassignTrainer(actor *access.Actor, trainerID, groupID int64) error {
	if err := access.RequireAdmin(actor); err != nil {
		return err
	}
	if _, err := s.getStaff(trainerID); err != nil {
		return err
	}
	if err := s.repos.Users.UnassignGroup(trainerID, groupID); err != nil {
		return err
	}
	if err := recordAudit(s.repos, actor, "trainer.unassign", "user", trainerID, fmt.Sprintf("group=%d", groupID)); err != nil {
		log.Printf("Failed to audit trainer.unassign: %v", err)
	}
	return nil
}

// ListAssignedGroups returns the groups the actor may manage: all active
// groups for administrators, the assigned ones for trainers.
func (s *TrainerService) ListAssignedGroups(actor *access.Actor) ([]models.Group, error) {
	if actor == nil {
		return nil, access.ErrForbidden
	}
	if actor.IsAdmin() {
		return s.repos.Groups.ListGroups(0, false)
	}
	ids, err := s.repos.Users.GetAssignedGroupIDs(actor.UserID)
	if err != nil {
		return nil, err
	}
	return s.repos.Groups.ListGroupsByIDs(ids)
}
