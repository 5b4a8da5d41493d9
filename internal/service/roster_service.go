package service

import (
	"fmt"
	"log"
	"strings"
	"time"

	"sportclub/internal/access"
	"sportclub/internal/database"
	"sportclub/internal/models"
	"sportclub/internal/repository"
	"sportclub/internal/validation"
)

// GroupInput holds the editable fields of a group. Options are only read on
// creation.
type GroupInput struct {
	SportID           int64
	Name              string
	Weekdays          []int
	StartDate         *models.Date
	EndDate           *models.Date
	RegistrationState string
	MaxMembers        int
	Options           []OptionInput
}

// OptionInput holds the fields of an attendance option
type OptionInput struct {
	Name             string
	FrequencyPerWeek int
	PriceMinor       int64
}

// GroupDetails is a group with its attendance options
type GroupDetails struct {
	models.Group
	Options []models.AttendanceOption `json:"attendance_options"`
}

// RosterService administers sports, groups, options, memberships and children
type RosterService struct {
	db    *database.DB
	repos *repository.Repositories
	clock Clock
}

// NewRosterService creates a new roster service
func NewRosterService(db *database.DB, clock Clock) *RosterService {
	if clock == nil {
		clock = time.Now
	}
	return &RosterService{db: db, repos: repository.New(db), clock: clock}
}

// ListSports returns every sport
func (s *RosterService) ListSports() ([]models.Sport, error) {
	return s.repos.Sports.ListSports()
}

// CreateSport adds a sport
func (s *RosterService) CreateSport(actor *access.Actor, name string) (*models.Sport, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	name = validation.NormalizeSpaces(name)
	if len(name) < 2 || len(name) > 50 {
		return nil, validation.ValidationError{Field: "name", Message: "must be 2 to 50 characters"}
	}

	existing, err := s.repos.Sports.GetSportByName(name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateName
	}

	sport, err := s.repos.Sports.CreateSport(name)
	if err != nil {
		return nil, err
	}
	s.audit(actor, "sport.create", "sport", sport.ID, name)
	return sport, nil
}

// DeleteSport removes a sport that no group references
func (s *RosterService) DeleteSport(actor *access.Actor, id int64) error {
	if err := access.RequireAdmin(actor); err != nil {
		return err
	}
	sport, err := s.repos.Sports.GetSportByID(id)
	if err != nil {
		return err
	}
	if sport == nil {
		return ErrSportNotFound
	}
	groups, err := s.repos.Sports.CountGroups(id)
	if err != nil {
		return err
	}
	if groups > 0 {
		return ErrSportInUse
	}
	if err := s.repos.Sports.DeleteSport(id); err != nil {
		return err
	}
	s.audit(actor, "sport.delete", "sport", id, sport.Name)
	return nil
}

// ListGroups lists groups of a sport (all sports when sportID is 0)
func (s *RosterService) ListGroups(sportID int64, includeArchived bool) ([]models.Group, error) {
	return s.repos.Groups.ListGroups(sportID, includeArchived)
}

// GetGroup returns a group with its options
func (s *RosterService) GetGroup(id int64) (*GroupDetails, error) {
	group, err := s.repos.Groups.GetGroupByID(id)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	options, err := s.repos.Options.ListOptions(id)
	if err != nil {
		return nil, err
	}
	return &GroupDetails{Group: *group, Options: options}, nil
}

// validateGroup normalises the input into group, leaving ID and sport alone
func validateGroup(input GroupInput, group *models.Group) error {
	name := validation.NormalizeSpaces(input.Name)
	if len(name) < 2 || len(name) > 100 {
		return validation.ValidationError{Field: "name", Message: "must be 2 to 100 characters"}
	}

	weekdays, err := models.NewWeekdaySet(input.Weekdays...)
	if err != nil {
		return validation.ValidationError{Field: "weekdays", Message: err.Error()}
	}
	if weekdays.Empty() {
		return validation.ValidationError{Field: "weekdays", Message: "at least one training day is required"}
	}

	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return validation.ValidationError{Field: "end_date", Message: "must not be before start_date"}
	}

	state := models.RegistrationState(input.RegistrationState)
	if state == "" {
		state = models.RegistrationOpen
	}
	if !state.Valid() {
		return validation.ValidationError{Field: "registration_state", Message: "must be open, full or closed"}
	}

	if input.MaxMembers < 0 {
		return validation.ValidationError{Field: "max_members", Message: "must not be negative"}
	}

	group.Name = name
	group.Weekdays = weekdays
	group.StartDate = input.StartDate
	group.EndDate = input.EndDate
	group.RegistrationState = state
	group.MaxMembers = input.MaxMembers
	return nil
}

func validateOption(input OptionInput) (*models.AttendanceOption, error) {
	name := validation.NormalizeSpaces(input.Name)
	if name == "" || len(name) > 50 {
		return nil, validation.ValidationError{Field: "name", Message: "must be 1 to 50 characters"}
	}
	if input.FrequencyPerWeek < 1 || input.FrequencyPerWeek > 7 {
		return nil, validation.ValidationError{Field: "frequency_per_week", Message: "must be between 1 and 7"}
	}
	if input.PriceMinor < 0 {
		return nil, validation.ValidationError{Field: "price", Message: "must not be negative"}
	}
	return &models.AttendanceOption{
		Name:             name,
		FrequencyPerWeek: input.FrequencyPerWeek,
		PriceMinor:       input.PriceMinor,
	}, nil
}

func (s *RosterService) groupNameTaken(repos *repository.Repositories, sportID int64, name string, exceptID int64) (bool, error) {
	groups, err := repos.Groups.ListGroups(sportID, true)
	if err != nil {
		return false, err
	}
	for _, g := range groups {
		if g.ID != exceptID && strings.EqualFold(g.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

// CreateGroup creates a group together with up to five attendance options
func (s *RosterService) CreateGroup(actor *access.Actor, input GroupInput) (*GroupDetails, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}

	group := &models.Group{SportID: input.SportID}
	if err := validateGroup(input, group); err != nil {
		return nil, err
	}
	if len(input.Options) > models.MaxAttendanceOptions {
		return nil, ErrTooManyOptions
	}
	options := make([]*models.AttendanceOption, 0, len(input.Options))
	seen := make(map[string]bool)
	for _, in := range input.Options {
		option, err := validateOption(in)
		if err != nil {
			return nil, err
		}
		key := strings.ToLower(option.Name)
		if seen[key] {
			return nil, ErrDuplicateName
		}
		seen[key] = true
		options = append(options, option)
	}

	details := &GroupDetails{}
	err := s.db.InTx(func(tx *database.Tx) error {
		repos := repository.New(tx)

		sport, err := repos.Sports.GetSportByID(input.SportID)
		if err != nil {
			return err
		}
		if sport == nil {
			return ErrSportNotFound
		}
		taken, err := s.groupNameTaken(repos, sport.ID, group.Name, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateName
		}

		if err := repos.Groups.CreateGroup(group); err != nil {
			return err
		}
		group.SportName = sport.Name

		details.Options = []models.AttendanceOption{}
		for _, option := range options {
			option.GroupID = group.ID
			if err := repos.Options.CreateOption(option); err != nil {
				return err
			}
			details.Options = append(details.Options, *option)
		}
		return recordAudit(repos, actor, "group.create", "group", group.ID, group.Name)
	})
	if err != nil {
		return nil, err
	}

	details.Group = *group
	return details, nil
}

// UpdateGroup edits a group. Future sessions that no longer fit the weekdays
// or season are removed; the update is refused when one of them already has
// attendance.
func (s *RosterService) UpdateGroup(actor *access.Actor, id int64, input GroupInput) (*models.Group, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}

	var group *models.Group
	err := s.db.InTx(func(tx *database.Tx) error {
		repos := repository.New(tx)

		var err error
		group, err = repos.Groups.GetGroupByID(id)
		if err != nil {
			return err
		}
		if group == nil {
			return ErrGroupNotFound
		}
		if err := validateGroup(input, group); err != nil {
			return err
		}
		taken, err := s.groupNameTaken(repos, group.SportID, group.Name, group.ID)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateName
		}

		removed, err := s.pruneUnscheduledSessions(repos, group)
		if err != nil {
			return err
		}
		if err := repos.Groups.UpdateGroup(group); err != nil {
			return err
		}
		detail := fmt.Sprintf("weekdays=%s removed_sessions=%d", group.Weekdays, removed)
		return recordAudit(repos, actor, "group.update", "group", group.ID, detail)
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

// pruneUnscheduledSessions deletes future sessions that the updated group
// would not generate
func (s *RosterService) pruneUnscheduledSessions(repos *repository.Repositories, group *models.Group) (int, error) {
	future, err := repos.Sessions.ListSessionsAfter(group.ID, today(s.clock))
	if err != nil {
		return 0, err
	}

	var stale []models.TrainingSession
	for _, session := range future {
		if group.Weekdays.Contains(session.Date.ISOWeekday()) && group.InSeason(session.Date) {
			continue
		}
		count, err := repos.Attendance.CountForSession(session.ID)
		if err != nil {
			return 0, err
		}
		trainers, err := repos.Trainers.CountForSession(session.ID)
		if err != nil {
			return 0, err
		}
		if count+trainers > 0 {
			return 0, ErrScheduledAttendance
		}
		stale = append(stale, session)
	}

	for _, session := range stale {
		if err := repos.Sessions.DeleteSession(session.ID); err != nil {
			return 0, err
		}
	}
	return len(stale), nil
}

// ArchiveGroup hides a group from registration and scheduling, keeping history
func (s *RosterService) ArchiveGroup(actor *access.Actor, id int64) error {
	if err := access.RequireAdmin(actor); err != nil {
		return err
	}
	group, err := s.repos.Groups.GetGroupByID(id)
	if err != nil {
		return err
	}
	if group == nil {
		return ErrGroupNotFound
	}
	if err := s.repos.Groups.SetArchived(id, true); err != nil {
		return err
	}
	s.audit(actor, "group.archive", "group", id, group.Name)
	return nil
}

// DeleteGroup removes a group that never had members
func (s *RosterService) DeleteGroup(actor *access.Actor, id int64) error {
	if err := access.RequireAdmin(actor); err != nil {
		return err
	}
	return s.db.InTx(func(tx *database.Tx) error {
		repos := repository.New(tx)
		group, err := repos.Groups.GetGroupByID(id)
		if err != nil {
			return err
		}
		if group == nil {
			return ErrGroupNotFound
		}
		members, err := repos.Memberships.CountMembers(id)
		if err != nil {
			return err
		}
		if members > 0 {
			return ErrGroupHasMembers
		}
		if err := repos.Groups.DeleteGroup(id); err != nil {
			return err
		}
		return recordAudit(repos, actor, "group.delete", "group", id, group.Name)
	})
}

// ListOptions returns a group's attendance options
func (s *RosterService) ListOptions(groupID int64) ([]models.AttendanceOption, error) {
	group, err := s.repos.Groups.GetGroupByID(groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return s.repos.Options.ListOptions(groupID)
}

// CreateOption adds an attendance option; a sixth one is rejected
func (s *RosterService) CreateOption(actor *access.Actor, groupID int64, input OptionInput) (*models.AttendanceOption, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	option, err := validateOption(input)
	if err != nil {
		return nil, err
	}
	option.GroupID = groupID

	err = s.db.InTx(func(tx *database.Tx) error {
		repos := repository.New(tx)
		group, err := repos.Groups.GetGroupByID(groupID)
		if err != nil {
			return err
		}
		if group == nil {
			return ErrGroupNotFound
		}
		count, err := repos.Options.CountOptions(groupID)
		if err != nil {
			return err
		}
		if count >= models.MaxAttendanceOptions {
			return ErrTooManyOptions
		}
		existing, err := repos.Options.FindOptionByName(groupID, option.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrDuplicateName
		}
		if err := repos.Options.CreateOption(option); err != nil {
			return err
		}
		return recordAudit(repos, actor, "option.create", "attendance_option", option.ID, option.Name)
	})
	if err != nil {
		return nil, err
	}
	return option, nil
}

// UpdateOption edits an attendance option
func (s *RosterService) UpdateOption(actor *access.Actor, id int64, input OptionInput) (*models.AttendanceOption, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	updated, err := validateOption(input)
	if err != nil {
		return nil, err
	}

	option, err := s.repos.Options.GetOptionByID(id)
	if err != nil {
		return nil, err
	}
	if option == nil {
		return nil, ErrOptionNotFound
	}
	same, err := s.repos.Options.FindOptionByName(option.GroupID, updated.Name)
	if err != nil {
		return nil, err
	}
	if same != nil && same.ID != id {
		return nil, ErrDuplicateName
	}

	option.Name = updated.Name
	option.FrequencyPerWeek = updated.FrequencyPerWeek
	option.PriceMinor = updated.PriceMinor
	if err := s.repos.Options.UpdateOption(option); err != nil {
		return nil, err
	}
	s.audit(actor, "option.update", "attendance_option", id, option.Name)
	return option, nil
}

// DeleteOption removes an option; memberships using it keep no option
func (s *RosterService) DeleteOption(actor *access.Actor, id int64) error {
	if err := access.RequireAdmin(actor); err != nil {
		return err
	}
	return s.db.InTx(func(tx *database.Tx) error {
		repos := repository.New(tx)
		option, err := repos.Options.GetOptionByID(id)
		if err != nil {
			return err
		}
		if option == nil {
			return ErrOptionNotFound
		}
		if err := repos.Options.DeleteOption(id); err != nil {
			return err
		}
		return recordAudit(repos, actor, "option.delete", "attendance_option", id, option.Name)
	})
}

// ListGroupChildren returns the members of a group with child and parent details
func (s *RosterService) ListGroupChildren(actor *access.Actor, groupID int64) ([]models.GroupMember, error) {
	if err := access.CanManageGroup(s.repos.Users, actor, groupID); err != nil {
		return nil, err
	}
	group, err := s.repos.Groups.GetGroupByID(groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return s.repos.Memberships.ListGroupMembers(groupID)
}

func (s *RosterService) getMembership(repos *repository.Repositories, id int64) (*models.Membership, error) {
	membership, err := repos.Memberships.GetMembershipByID(id)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, ErrMembershipNotFound
	}
	return membership, nil
}

// RemoveMembership deletes a membership and the child's attendance in that
// group. The child record stays.
func (s *RosterService) RemoveMembership(actor *access.Actor, id int64) error {
	if err := access.RequireAdmin(actor); err != nil {
		return err
	}
	return s.db.InTx(func(tx *database.Tx) error {
		repos := repository.New(tx)
		membership, err := s.getMembership(repos, id)
		if err != nil {
			return err
		}
		if err := repos.Memberships.DeleteMembership(membership); err != nil {
			return err
		}
		detail := fmt.Sprintf("child=%d group=%d", membership.ChildID, membership.GroupID)
		return recordAudit(repos, actor, "membership.remove", "membership", id, detail)
	})
}

// DeactivateMembership ends a membership today, keeping its history
func (s *RosterService) DeactivateMembership(actor *access.Actor, id int64) (*models.Membership, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	membership, err := s.getMembership(s.repos, id)
	if err != nil {
		return nil, err
	}
	if !membership.Active {
		return membership, nil
	}

	endedOn := today(s.clock)
	if err := s.repos.Memberships.Deactivate(id, endedOn); err != nil {
		return nil, err
	}
	membership.Active = false
	membership.EndedOn = &endedOn
	s.audit(actor, "membership.deactivate", "membership", id, "ended_on="+endedOn.String())
	return membership, nil
}

// ChangeMembershipOption switches the attendance option of a membership
func (s *RosterService) ChangeMembershipOption(actor *access.Actor, id int64, optionID *int64) (*models.Membership, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	membership, err := s.getMembership(s.repos, id)
	if err != nil {
		return nil, err
	}
	if optionID != nil {
		option, err := s.repos.Options.GetOptionByID(*optionID)
		if err != nil {
			return nil, err
		}
		if option == nil {
			return nil, ErrOptionNotFound
		}
		if option.GroupID != membership.GroupID {
			return nil, ErrOptionOutsideGroup
		}
	}

	if err := s.repos.Memberships.SetOption(id, optionID); err != nil {
		return nil, err
	}
	membership.OptionID = optionID
	s.audit(actor, "membership.option", "membership", id, fmt.Sprintf("option=%v", optionLabel(optionID)))
	return membership, nil
}

// MoveMemberships moves memberships to another group. The option is matched
// by name in the target group, falling back to its first option, and the
// membership counts from today in the new group.
func (s *RosterService) MoveMemberships(actor *access.Actor, ids []int64, targetGroupID int64) ([]models.Membership, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, validation.ValidationError{Field: "membership_ids", Message: "at least one membership is required"}
	}

	moved := []models.Membership{}
	err := s.db.InTx(func(tx *database.Tx) error {
		repos := repository.New(tx)
		target, err := repos.Groups.GetGroupByID(targetGroupID)
		if err != nil {
			return err
		}
		if target == nil {
			return ErrGroupNotFound
		}
		if target.Archived {
			return ErrGroupArchived
		}
		fallback, err := repos.Options.FirstOption(target.ID)
		if err != nil {
			return err
		}
		startsOn := today(s.clock)

		for _, id := range ids {
			membership, err := s.getMembership(repos, id)
			if err != nil {
				return err
			}
			if membership.GroupID == target.ID {
				moved = append(moved, *membership)
				continue
			}
			existing, err := repos.Memberships.GetMembership(membership.ChildID, target.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				return ErrAlreadyMember
			}

			optionID, err := mapOption(repos, membership.OptionID, target.ID, fallback)
			if err != nil {
				return err
			}
			if err := repos.Memberships.MoveToGroup(id, target.ID, optionID, startsOn); err != nil {
				return err
			}

			detail := fmt.Sprintf("child=%d from_group=%d to_group=%d", membership.ChildID, membership.GroupID, target.ID)
			if err := recordAudit(repos, actor, "membership.move", "membership", id, detail); err != nil {
				return err
			}

			membership.GroupID = target.ID
			membership.OptionID = optionID
			membership.RegisteredOn = startsOn
			membership.Active = true
			membership.EndedOn = nil
			moved = append(moved, *membership)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

// mapOption finds the target group's option with the same name as the current one
func mapOption(repos *repository.Repositories, current *int64, targetGroupID int64, fallback *models.AttendanceOption) (*int64, error) {
	if current != nil {
		option, err := repos.Options.GetOptionByID(*current)
		if err != nil {
			return nil, err
		}
		if option != nil {
			match, err := repos.Options.FindOptionByName(targetGroupID, option.Name)
			if err != nil {
				return nil, err
			}
			if match != nil {
				return &match.ID, nil
			}
		}
	}
	if fallback == nil {
		return nil, nil
	}
	return &fallback.ID, nil
}

// CloneChild enrols an existing child in another group. The child row is
// shared and existing memberships are untouched.
func (s *RosterService) CloneChild(actor *access.Actor, childID, targetGroupID int64, optionID *int64) (*models.Membership, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}

	membership := &models.Membership{ChildID: childID, GroupID: targetGroupID}
	err := s.db.InTx(func(tx *database.Tx) error {
		repos := repository.New(tx)
		child, err := repos.Children.GetChildByID(childID)
		if err != nil {
			return err
		}
		if child == nil {
			return ErrChildNotFound
		}
		group, err := repos.Groups.GetGroupByID(targetGroupID)
		if err != nil {
			return err
		}
		if group == nil {
			return ErrGroupNotFound
		}
		if group.Archived {
			return ErrGroupArchived
		}
		existing, err := repos.Memberships.GetMembership(childID, targetGroupID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAlreadyMember
		}

		option, err := resolveOption(repos, targetGroupID, optionID)
		if err != nil {
			return err
		}
		if option != nil {
			membership.OptionID = &option.ID
		}
		membership.RegisteredOn = today(s.clock)
		if err := repos.Memberships.CreateMembership(membership); err != nil {
			return err
		}
		detail := fmt.Sprintf("child=%d group=%d", childID, targetGroupID)
		return recordAudit(repos, actor, "child.clone", "membership", membership.ID, detail)
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

// ListChildren searches children by name, identity document or parent email
func (s *RosterService) ListChildren(actor *access.Actor, search string, groupID int64) ([]models.ChildDetails, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	return listChildrenWithMemberships(s.repos, search, groupID)
}

func listChildrenWithMemberships(repos *repository.Repositories, search string, groupID int64) ([]models.ChildDetails, error) {
	children, err := repos.Children.SearchChildren(search, groupID)
	if err != nil {
		return nil, err
	}
	for i := range children {
		memberships, err := repos.Memberships.ListChildMemberships(children[i].Child.ID)
		if err != nil {
			return nil, err
		}
		children[i].Memberships = memberships
	}
	return children, nil
}

// GetChild returns a child with its parent and memberships
func (s *RosterService) GetChild(actor *access.Actor, id int64) (*models.ChildDetails, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	child, err := s.repos.Children.GetChildByID(id)
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, ErrChildNotFound
	}
	parent, err := s.repos.Parents.GetParentByID(child.ParentID)
	if err != nil {
		return nil, err
	}
	memberships, err := s.repos.Memberships.ListChildMemberships(id)
	if err != nil {
		return nil, err
	}

	details := &models.ChildDetails{Child: *child, Memberships: memberships}
	if parent != nil {
		details.Parent = *parent
	}
	return details, nil
}

// DeleteChildRecord purges a child with all memberships and attendance. A
// parent left without children is removed as well.
func (s *RosterService) DeleteChildRecord(actor *access.Actor, id int64) error {
	if err := access.RequireAdmin(actor); err != nil {
		return err
	}
	return s.db.InTx(func(tx *database.Tx) error {
		repos := repository.New(tx)
		child, err := repos.Children.GetChildByID(id)
		if err != nil {
			return err
		}
		if child == nil {
			return ErrChildNotFound
		}
		if err := repos.Children.DeleteChild(id); err != nil {
			return err
		}

		remaining, err := repos.Parents.CountChildren(child.ParentID)
		if err != nil {
			return err
		}
		if remaining == 0 {
			if err := repos.Parents.DeleteParent(child.ParentID); err != nil {
				return err
			}
		}
		return recordAudit(repos, actor, "child.delete", "child", id, child.PublicID)
	})
}

// RegistrationOpen reports the global registration switch
func (s *RosterService) RegistrationOpen() (bool, error) {
	return s.repos.Settings.IsRegistrationOpen()
}

// SetRegistrationOpen flips the global registration switch
func (s *RosterService) SetRegistrationOpen(actor *access.Actor, open bool) error {
	if err := access.RequireAdmin(actor); err != nil {
		return err
	}
	if err := s.repos.Settings.SetRegistrationOpen(open); err != nil {
		return err
	}
	s.audit(actor, "settings.registration", "setting", 0, fmt.Sprintf("open=%t", open))
	return nil
}

// audit records outside a transaction; a failure is logged, not returned
func (s *RosterService) audit(actor *access.Actor, action, targetType string, targetID int64, detail string) {
	if err := recordAudit(s.repos, actor, action, targetType, targetID, detail); err != nil {
		log.Printf("Failed to audit %s: %v", action, err)
	}
}

func optionLabel(optionID *int64) string {
	if optionID == nil {
		return "none"
	}
	return fmt.Sprintf("%d", *optionID)
}
