package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"sportclub/internal/service"
)

// RosterHandler serves group rosters, memberships and child records
type RosterHandler struct {
	roster *service.RosterService
}

// NewRosterHandler creates a new roster handler
func NewRosterHandler(roster *service.RosterService) *RosterHandler {
	return &RosterHandler{roster: roster}
}

type membershipOptionRequest struct {
	OptionID *int64 `json:"attendance_option_id" validate:"omitempty,gt=0"`
}

type moveRequest struct {
	TargetGroupID int64   `json:"target_group_id" validate:"required,gt=0"`
	MembershipIDs []int64 `json:"membership_ids" validate:"dive,gt=0"`
}

type cloneRequest struct {
	TargetGroupID int64  `json:"target_group_id" validate:"required,gt=0"`
	OptionID      *int64 `json:"attendance_option_id" validate:"omitempty,gt=0"`
}

// ListGroupChildren lists the members of a group
func (h *RosterHandler) ListGroupChildren(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	members, err := h.roster.ListGroupChildren(actorFrom(r), groupID)
	if err != nil {
		respondWithServiceError(w, "Error listing group children", err)
		return
	}
	respondJSON(w, http.StatusOK, members)
}

// RemoveMembership hard-deletes a membership
func (h *RosterHandler) RemoveMembership(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	if err := h.roster.RemoveMembership(actorFrom(r), id); err != nil {
		respondWithServiceError(w, "Error removing membership", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeactivateMembership ends a membership today
func (h *RosterHandler) DeactivateMembership(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	membership, err := h.roster.DeactivateMembership(actorFrom(r), id)
	if err != nil {
		respondWithServiceError(w, "Error deactivating membership", err)
		return
	}
	respondJSON(w, http.StatusOK, membership)
}

// ChangeMembershipOption switches the attendance option; null clears it
func (h *RosterHandler) ChangeMembershipOption(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	var req membershipOptionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	membership, err := h.roster.ChangeMembershipOption(actorFrom(r), id, req.OptionID)
	if err != nil {
		respondWithServiceError(w, "Error changing membership option", err)
		return
	}
	respondJSON(w, http.StatusOK, membership)
}

// MoveMembership moves the membership in the path, plus any listed in the
// body, to the target group
func (h *RosterHandler) MoveMembership(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	var req moveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "", err)
		return
	}

	ids := []int64{id}
	seen := map[int64]bool{id: true}
	for _, other := range req.MembershipIDs {
		if !seen[other] {
			seen[other] = true
			ids = append(ids, other)
		}
	}

	moved, err := h.roster.MoveMemberships(actorFrom(r), ids, req.TargetGroupID)
	if err != nil {
		respondWithServiceError(w, "Error moving memberships", err)
		return
	}
	respondJSON(w, http.StatusOK, moved)
}

// ListChildren searches children with ?q= and ?group_id=
func (h *RosterHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	groupID, err := queryID(r, "group_id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	children, err := h.roster.ListChildren(actorFrom(r), r.URL.Query().Get("q"), groupID)
	if err != nil {
		respondWithServiceError(w, "Error listing children", err)
		return
	}
	respondJSON(w, http.StatusOK, children)
}

// ExportChildren downloads the children list as an XLSX workbook
func (h *RosterHandler) ExportChildren(w http.ResponseWriter, r *http.Request) {
	groupID, err := queryID(r, "group_id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}

	// Build into a buffer so failures still produce a JSON error
	var buf bytes.Buffer
	if err := h.roster.ExportChildren(actorFrom(r), &buf, r.URL.Query().Get("q"), groupID); err != nil {
		respondWithServiceError(w, "Error exporting children", err)
		return
	}

	filename := fmt.Sprintf("children_%s.xlsx", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Write(buf.Bytes())
}

// GetChild returns a child with parent and memberships
func (h *RosterHandler) GetChild(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	child, err := h.roster.GetChild(actorFrom(r), id)
	if err != nil {
		respondWithServiceError(w, "Error loading child", err)
		return
	}
	respondJSON(w, http.StatusOK, child)
}

// DeleteChild purges a child record
func (h *RosterHandler) DeleteChild(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	if err := h.roster.DeleteChildRecord(actorFrom(r), id); err != nil {
		respondWithServiceError(w, "Error deleting child", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CloneChild enrols an existing child in another group
func (h *RosterHandler) CloneChild(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	var req cloneRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	membership, err := h.roster.CloneChild(actorFrom(r), id, req.TargetGroupID, req.OptionID)
	if err != nil {
		respondWithServiceError(w, "Error cloning child", err)
		return
	}
	respondJSON(w, http.StatusCreated, membership)
}
