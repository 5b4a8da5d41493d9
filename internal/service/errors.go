package service

import (
	"errors"

	"sportclub/internal/validation"
)

// Error kinds. Every service error below unwraps to one of them so handlers
// can map it to a status code.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// kindError carries a user-facing message and unwraps to its kind
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func notFound(msg string) error { return &kindError{kind: ErrNotFound, msg: msg} }
func conflict(msg string) error { return &kindError{kind: ErrConflict, msg: msg} }

var (
	ErrSportNotFound           = notFound("sport not found")
	ErrGroupNotFound           = notFound("group not found")
	ErrOptionNotFound          = notFound("attendance option not found")
	ErrChildNotFound           = notFound("child not found")
	ErrMembershipNotFound      = notFound("membership not found")
	ErrTrainingSessionNotFound = notFound("training session not found")
	ErrTrainerNotFound         = notFound("trainer not found")
	ErrPaymentNotFound         = notFound("payment not found")
)

var (
	ErrRegistrationClosed  = conflict("registration is currently closed")
	ErrGroupNotOpen        = conflict("the group is not accepting registrations")
	ErrGroupFull           = conflict("the group is full")
	ErrGroupArchived       = conflict("the group is archived")
	ErrAlreadyMember       = conflict("the child is already a member of this group")
	ErrChildOwnedByOther   = conflict("the child is registered under a different parent")
	ErrSportInUse          = conflict("the sport still has groups")
	ErrGroupHasMembers     = conflict("the group has memberships, archive it instead")
	ErrScheduledAttendance = conflict("sessions that would be removed already have attendance")
	ErrDuplicateName       = conflict("the name is already in use")
	ErrEmailTaken          = conflict("email already taken")
	ErrSessionCancelled    = conflict("the training session is cancelled")
	ErrFutureSession       = conflict("attendance cannot be marked before the session takes place")
	ErrNotEligible         = conflict("the child has no active membership covering this session")
	ErrLastAdmin           = conflict("the last active administrator cannot be deactivated")
	ErrMembershipInactive  = conflict("the membership is not active")
	ErrOptionOutsideGroup  = conflict("the attendance option belongs to another group")
	ErrSportGroupMismatch  = conflict("the group does not belong to the selected sport")
)

// Registration identity errors are distinguishable from each other
var (
	ErrNationalIDFormat     = errors.New("invalid national ID format")
	ErrNationalIDUnverified = errors.New("national ID could not be verified")
	ErrRegistryUnavailable  = errors.New("verification service unavailable, please try again later")
)

// ErrTooManyOptions rejects a sixth attendance option
var ErrTooManyOptions = validation.ValidationError{
	Field:   "attendance_options",
	Message: "a group can have at most 5 attendance options",
}
