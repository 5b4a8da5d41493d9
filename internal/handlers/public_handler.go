package handlers

import (
	"context"
	"net/http"
	"time"

	"sportclub/internal/service"
)

// Pinger reports database reachability
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PublicHandler serves the unauthenticated catalogue and registration form
type PublicHandler struct {
	db           Pinger
	roster       *service.RosterService
	registration *service.RegistrationService
}

// NewPublicHandler creates a new public handler
func NewPublicHandler(db Pinger, roster *service.RosterService, registration *service.RegistrationService) *PublicHandler {
	return &PublicHandler{db: db, roster: roster, registration: registration}
}

// Health reports whether the database answers
func (h *PublicHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		respondWithError(w, http.StatusServiceUnavailable, "Database unavailable", "Health check failed", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListSports lists every sport
func (h *PublicHandler) ListSports(w http.ResponseWriter, r *http.Request) {
	sports, err := h.roster.ListSports()
	if err != nil {
		respondWithServiceError(w, "Error listing sports", err)
		return
	}
	respondJSON(w, http.StatusOK, sports)
}

// ListGroups lists active groups, optionally of one sport
func (h *PublicHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	sportID, err := queryID(r, "sport_id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	groups, err := h.roster.ListGroups(sportID, false)
	if err != nil {
		respondWithServiceError(w, "Error listing groups", err)
		return
	}
	respondJSON(w, http.StatusOK, groups)
}

// ListGroupOptions lists the attendance options of a group
func (h *PublicHandler) ListGroupOptions(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	options, err := h.roster.ListOptions(groupID)
	if err != nil {
		respondWithServiceError(w, "Error listing options", err)
		return
	}
	respondJSON(w, http.StatusOK, options)
}

type parentRequest struct {
	FirstName  string `json:"first_name" validate:"required,max=100"`
	LastName   string `json:"last_name" validate:"required,max=100"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"required,max=30"`
	Street     string `json:"street" validate:"required,max=200"`
	City       string `json:"city" validate:"required,max=100"`
	PostalCode string `json:"postal_code" validate:"required,max=10"`
}

type registrationRequest struct {
	SportID        int64         `json:"sport_id" validate:"required,gt=0"`
	GroupID        int64         `json:"group_id" validate:"required,gt=0"`
	OptionID       *int64        `json:"attendance_option_id" validate:"omitempty,gt=0"`
	NationalID     string        `json:"national_id" validate:"required_without=PassportNumber,excluded_with=PassportNumber"`
	PassportNumber string        `json:"passport_number" validate:"max=30"`
	ChildFirstName string        `json:"child_first_name" validate:"required,max=100"`
	ChildLastName  string        `json:"child_last_name" validate:"required,max=100"`
	ChildPhone     string        `json:"child_phone" validate:"max=30"`
	Parent         parentRequest `json:"parent" validate:"required"`
}

// Register handles the public registration form
func (h *PublicHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registrationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "", err)
		return
	}

	result, err := h.registration.Register(r.Context(), service.RegistrationInput{
		SportID:        req.SportID,
		GroupID:        req.GroupID,
		OptionID:       req.OptionID,
		NationalID:     req.NationalID,
		PassportNumber: req.PassportNumber,
		ChildFirstName: req.ChildFirstName,
		ChildLastName:  req.ChildLastName,
		ChildPhone:     req.ChildPhone,
		Parent: service.ParentInput{
			FirstName:  req.Parent.FirstName,
			LastName:   req.Parent.LastName,
			Email:      req.Parent.Email,
			Phone:      req.Parent.Phone,
			Street:     req.Parent.Street,
			City:       req.Parent.City,
			PostalCode: req.Parent.PostalCode,
		},
	})
	if err != nil {
		respondWithServiceError(w, "Error registering child", err)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}
