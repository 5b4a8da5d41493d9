package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"sportclub/internal/database"
	"sportclub/internal/models"
	"sportclub/internal/repository"
	"sportclub/internal/validation"
	"sportclub/internal/verification"
)

// ParentInput is the guardian block of the registration form
type ParentInput struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Street     string
	City       string
	PostalCode string
}

// RegistrationInput is the public registration form. Exactly one of
// NationalID and PassportNumber is filled in.
type RegistrationInput struct {
	SportID        int64
	GroupID        int64
	OptionID       *int64
	NationalID     string
	PassportNumber string
	ChildFirstName string
	ChildLastName  string
	ChildPhone     string
	Parent         ParentInput
}

// RegistrationResult is what a successful registration created or reused
type RegistrationResult struct {
	Child      models.Child             `json:"child"`
	Parent     models.Parent            `json:"parent"`
	Membership models.Membership        `json:"membership"`
	Group      models.Group             `json:"group"`
	Option     *models.AttendanceOption `json:"attendance_option,omitempty"`
	NewChild   bool                     `json:"new_child"`
}

// RegistrationService turns public form submissions into memberships
type RegistrationService struct {
	db       *database.DB
	verifier verification.Verifier
	notifier Notifier
	clock    Clock
}

// NewRegistrationService creates a new registration service. notifier may be nil.
func NewRegistrationService(db *database.DB, verifier verification.Verifier, notifier Notifier, clock Clock) *RegistrationService {
	if clock == nil {
		clock = time.Now
	}
	return &RegistrationService{
		db:       db,
		verifier: verifier,
		notifier: notifier,
		clock:    clock,
	}
}

// normalizedRegistration is the validated form
type normalizedRegistration struct {
	input      RegistrationInput
	nationalID *validation.NationalID
	passport   string
	firstName  string
	lastName   string
	childPhone string
	parent     models.Parent
}

// Register validates the form, verifies the national ID and creates the
// parent, child and membership in one transaction
func (s *RegistrationService) Register(ctx context.Context, input RegistrationInput) (*RegistrationResult, error) {
	repos := repository.New(s.db)

	open, err := repos.Settings.IsRegistrationOpen()
	if err != nil {
		return nil, err
	}
	if !open {
		return nil, ErrRegistrationClosed
	}

	reg, err := s.validate(input)
	if err != nil {
		return nil, err
	}

	if reg.nationalID != nil {
		if err := s.verify(ctx, reg); err != nil {
			return nil, err
		}
	}

	group, err := repos.Groups.GetGroupByID(input.GroupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	if input.SportID != 0 && input.SportID != group.SportID {
		return nil, ErrSportGroupMismatch
	}
	if group.Archived {
		return nil, ErrGroupArchived
	}
	if group.RegistrationState != models.RegistrationOpen {
		return nil, ErrGroupNotOpen
	}

	result := &RegistrationResult{Group: *group}
	registeredOn := today(s.clock)

	err = s.db.InTx(func(tx *database.Tx) error {
		txRepos := repository.New(tx)

		if group.MaxMembers > 0 {
			count, err := txRepos.Memberships.CountActiveMembers(group.ID)
			if err != nil {
				return err
			}
			if count >= group.MaxMembers {
				return ErrGroupFull
			}
		}

		option, err := resolveOption(txRepos, group.ID, input.OptionID)
		if err != nil {
			return err
		}
		result.Option = option

		parent := reg.parent
		if err := txRepos.Parents.UpsertParentByEmail(&parent); err != nil {
			return err
		}
		result.Parent = parent

		child, created, err := s.findOrCreateChild(txRepos, reg, parent.ID)
		if err != nil {
			return err
		}
		result.Child = *child
		result.NewChild = created

		existing, err := txRepos.Memberships.GetMembership(child.ID, group.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAlreadyMember
		}

		membership := &models.Membership{
			ChildID:      child.ID,
			GroupID:      group.ID,
			RegisteredOn: registeredOn,
		}
		if option != nil {
			membership.OptionID = &option.ID
		}
		if err := txRepos.Memberships.CreateMembership(membership); err != nil {
			return err
		}
		result.Membership = *membership

		detail := fmt.Sprintf("child=%d group=%d parent=%d", child.ID, group.ID, parent.ID)
		return recordAudit(txRepos, nil, "registration.created", "membership", membership.ID, detail)
	})
	if err != nil {
		return nil, err
	}

	s.sendConfirmation(ctx, result)
	return result, nil
}

// validate normalises every field. The national ID checksum is checked here,
// before any call to the registry.
func (s *RegistrationService) validate(input RegistrationInput) (*normalizedRegistration, error) {
	reg := &normalizedRegistration{input: input}

	if input.GroupID == 0 {
		return nil, validation.ValidationError{Field: "group_id", Message: "is required"}
	}

	nationalID := strings.TrimSpace(input.NationalID)
	passport := strings.TrimSpace(input.PassportNumber)
	switch {
	case nationalID != "" && passport != "":
		return nil, validation.ValidationError{Field: "national_id", Message: "provide either a national ID or a passport number, not both"}
	case nationalID == "" && passport == "":
		return nil, validation.ValidationError{Field: "national_id", Message: "a national ID or a passport number is required"}
	case nationalID != "":
		id, err := validation.ParseNationalID(nationalID, s.clock())
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNationalIDFormat, err)
		}
		reg.nationalID = &id
	default:
		number, err := validation.NormalizePassport(passport)
		if err != nil {
			return nil, err
		}
		reg.passport = number
	}

	// Names are optional on the national ID branch, the registry may supply them
	namesRequired := reg.nationalID == nil
	var err error
	if input.ChildFirstName != "" || namesRequired {
		if reg.firstName, err = validation.NormalizePersonName("child_first_name", input.ChildFirstName); err != nil {
			return nil, err
		}
	}
	if input.ChildLastName != "" || namesRequired {
		if reg.lastName, err = validation.NormalizePersonName("child_last_name", input.ChildLastName); err != nil {
			return nil, err
		}
	}
	if reg.childPhone, err = validation.NormalizePhone("child_phone", input.ChildPhone, false); err != nil {
		return nil, err
	}

	p := input.Parent
	parent := models.Parent{}
	if parent.FirstName, err = validation.NormalizePersonName("parent_first_name", p.FirstName); err != nil {
		return nil, err
	}
	if parent.LastName, err = validation.NormalizePersonName("parent_last_name", p.LastName); err != nil {
		return nil, err
	}
	parent.Email = strings.ToLower(strings.TrimSpace(p.Email))
	if err := validation.ValidateEmail(parent.Email); err != nil {
		return nil, validation.ValidationError{Field: "parent_email", Message: "invalid email format"}
	}
	if parent.Phone, err = validation.NormalizePhone("parent_phone", p.Phone, true); err != nil {
		return nil, err
	}
	if parent.Street, err = validation.NormalizeAddressLine("street", p.Street, 3); err != nil {
		return nil, err
	}
	if parent.City, err = validation.NormalizeAddressLine("city", p.City, 2); err != nil {
		return nil, err
	}
	if parent.PostalCode, err = validation.NormalizePostalCode(p.PostalCode); err != nil {
		return nil, err
	}
	reg.parent = parent

	return reg, nil
}

// verify asks the registry about the national ID and takes names from its answer
func (s *RegistrationService) verify(ctx context.Context, reg *normalizedRegistration) error {
	result, err := s.verifier.Verify(ctx, reg.nationalID.Normalized)
	if err != nil {
		log.Printf("National ID verification failed: %v", err)
		if errors.Is(err, verification.ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
			return ErrRegistryUnavailable
		}
		return fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	if !result.Valid {
		return ErrNationalIDUnverified
	}

	if result.FirstName != "" {
		reg.firstName = result.FirstName
	}
	if result.LastName != "" {
		reg.lastName = result.LastName
	}
	if reg.firstName == "" {
		return validation.ValidationError{Field: "child_first_name", Message: "is required"}
	}
	if reg.lastName == "" {
		return validation.ValidationError{Field: "child_last_name", Message: "is required"}
	}
	return nil
}

// findOrCreateChild reuses a child already known by its identity document
func (s *RegistrationService) findOrCreateChild(repos *repository.Repositories, reg *normalizedRegistration, parentID int64) (*models.Child, bool, error) {
	var existing *models.Child
	var err error
	if reg.nationalID != nil {
		existing, err = repos.Children.GetChildByNationalID(reg.nationalID.Normalized)
	} else {
		existing, err = repos.Children.GetChildByPassport(reg.passport)
	}
	if err != nil {
		return nil, false, err
	}

	if existing != nil {
		if existing.ParentID != parentID {
			return nil, false, ErrChildOwnedByOther
		}
		if reg.childPhone != "" && reg.childPhone != existing.Phone {
			if err := repos.Children.UpdateChildPhone(existing.ID, reg.childPhone); err != nil {
				return nil, false, err
			}
			existing.Phone = reg.childPhone
		}
		return existing, false, nil
	}

	child := &models.Child{
		ParentID:       parentID,
		PassportNumber: reg.passport,
		FirstName:      reg.firstName,
		LastName:       reg.lastName,
		Phone:          reg.childPhone,
	}
	if reg.nationalID != nil {
		child.NationalID = reg.nationalID.Normalized
	}
	if err := repos.Children.CreateChild(child); err != nil {
		return nil, false, err
	}
	return child, true, nil
}

// resolveOption returns the requested option, or the group's first one
func resolveOption(repos *repository.Repositories, groupID int64, optionID *int64) (*models.AttendanceOption, error) {
	if optionID == nil {
		return repos.Options.FirstOption(groupID)
	}
	option, err := repos.Options.GetOptionByID(*optionID)
	if err != nil {
		return nil, err
	}
	if option == nil {
		return nil, ErrOptionNotFound
	}
	if option.GroupID != groupID {
		return nil, ErrOptionOutsideGroup
	}
	return option, nil
}

func (s *RegistrationService) sendConfirmation(ctx context.Context, result *RegistrationResult) {
	if s.notifier == nil {
		return
	}
	msg := RegistrationEmail{
		ParentEmail:  result.Parent.Email,
		ParentName:   result.Parent.FirstName + " " + result.Parent.LastName,
		ChildName:    result.Child.FullName(),
		SportName:    result.Group.SportName,
		GroupName:    result.Group.Name,
		RegisteredOn: result.Membership.RegisteredOn.String(),
	}
	if result.Option != nil {
		msg.OptionName = result.Option.Name
	}
	if err := s.notifier.SendRegistrationConfirmation(ctx, msg); err != nil {
		log.Printf("Failed to send registration confirmation to %s: %v", msg.ParentEmail, err)
	}
}
