package handlers

import (
	"net/http"

	"sportclub/internal/models"
	"sportclub/internal/service"
)

// TrainerHandler manages staff accounts and group assignments
type TrainerHandler struct {
	trainers *service.TrainerService
}

// NewTrainerHandler creates a new trainer handler
func NewTrainerHandler(trainers *service.TrainerService) *TrainerHandler {
	return &TrainerHandler{trainers: trainers}
}

type trainerRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Phone     string `json:"phone" validate:"max=30"`
	Password  string `json:"password" validate:"omitempty,min=8"`
	Role      string `json:"role" validate:"omitempty,oneof=admin trainer"`
}

func (t trainerRequest) input() service.TrainerInput {
	return service.TrainerInput{
		Email:     t.Email,
		FirstName: t.FirstName,
		LastName:  t.LastName,
		Phone:     t.Phone,
		Password:  t.Password,
		Role:      models.Role(t.Role),
	}
}

type activeRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// ListTrainers lists all staff accounts
func (h *TrainerHandler) ListTrainers(w http.ResponseWriter, r *http.Request) {
	trainers, err := h.trainers.ListTrainers(actorFrom(r))
	if err != nil {
		respondWithServiceError(w, "Error listing trainers", err)
		return
	}
	respondJSON(w, http.StatusOK, trainers)
}

// CreateTrainer creates a staff account. A generated password is returned
// once in the response.
func (h *TrainerHandler) CreateTrainer(w http.ResponseWriter, r *http.Request) {
	var req trainerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	created, err := h.trainers.CreateTrainer(r.Context(), actorFrom(r), req.input())
	if err != nil {
		respondWithServiceError(w, "Error creating trainer", err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// UpdateTrainer edits a staff account
func (h *TrainerHandler) UpdateTrainer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	var req trainerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	user, err := h.trainers.UpdateTrainer(actorFrom(r), id, req.input())
	if err != nil {
		respondWithServiceError(w, "Error updating trainer", err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// SetTrainerActive enables or disables a staff account
func (h *TrainerHandler) SetTrainerActive(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	var req activeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	user, err := h.trainers.SetTrainerActive(actorFrom(r), id, *req.Active)
	if err != nil {
		respondWithServiceError(w, "Error updating trainer", err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// AssignGroup lets a trainer manage a group
func (h *TrainerHandler) AssignGroup(w http.ResponseWriter, r *http.Request) {
	trainerID, groupID, ok := trainerGroupIDs(w, r)
	if !ok {
		return
	}
	if err := h.trainers.AssignTrainer(actorFrom(r), trainerID, groupID); err != nil {
		respondWithServiceError(w, "Error assigning trainer", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UnassignGroup removes a group assignment
func (h *TrainerHandler) UnassignGroup(w http.ResponseWriter, r *http.Request) {
	trainerID, groupID, ok := trainerGroupIDs(w, r)
	if !ok {
		return
	}
	if err := h.trainers.UnassignTrainer(actorFrom(r), trainerID, groupID); err != nil {
		respondWithServiceError(w, "Error unassigning trainer", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MyGroups lists the groups the signed-in staff member may manage
func (h *TrainerHandler) MyGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.trainers.ListAssignedGroups(actorFrom(r))
	if err != nil {
		respondWithServiceError(w, "Error listing assigned groups", err)
		return
	}
	respondJSON(w, http.StatusOK, groups)
}

func trainerGroupIDs(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	trainerID, err := pathID(r, "id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return 0, 0, false
	}
	groupID, err := pathID(r, "groupId")
	if err != nil {
		respondWithServiceError(w, "", err)
		return 0, 0, false
	}
	return trainerID, groupID, true
}
