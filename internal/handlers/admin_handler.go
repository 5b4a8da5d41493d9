package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"sportclub/internal/models"
	"sportclub/internal/service"
	"sportclub/internal/validation"
)

// AdminHandler serves club administration: sports, groups, options, the
// training calendar, settings, the audit trail and backups
type AdminHandler struct {
	roster     *service.RosterService
	schedule   *service.ScheduleService
	attendance *service.AttendanceService
	backup     *service.BackupService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(roster *service.RosterService, schedule *service.ScheduleService, attendance *service.AttendanceService, backup *service.BackupService) *AdminHandler {
	return &AdminHandler{
		roster:     roster,
		schedule:   schedule,
		attendance: attendance,
		backup:     backup,
	}
}

type sportRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}

type optionRequest struct {
	Name             string `json:"name" validate:"required,max=50"`
	FrequencyPerWeek int    `json:"frequency_per_week" validate:"required,min=1,max=7"`
	PriceMinor       int64  `json:"price_minor" validate:"gte=0"`
}

func (o optionRequest) input() service.OptionInput {
	return service.OptionInput{Name: o.Name, FrequencyPerWeek: o.FrequencyPerWeek, PriceMinor: o.PriceMinor}
}

type groupRequest struct {
	SportID           int64           `json:"sport_id" validate:"gte=0"`
	Name              string          `json:"name" validate:"required,max=100"`
	Weekdays          []int           `json:"weekdays" validate:"required,min=1,dive,min=1,max=7"`
	StartDate         *models.Date    `json:"start_date"`
	EndDate           *models.Date    `json:"end_date"`
	RegistrationState string          `json:"registration_state" validate:"omitempty,oneof=open full closed"`
	MaxMembers        int             `json:"max_members" validate:"gte=0"`
	Options           []optionRequest `json:"attendance_options" validate:"dive"`
}

func (g groupRequest) input() service.GroupInput {
	input := service.GroupInput{
		SportID:           g.SportID,
		Name:              g.Name,
		Weekdays:          g.Weekdays,
		StartDate:         g.StartDate,
		EndDate:           g.EndDate,
		RegistrationState: g.RegistrationState,
		MaxMembers:        g.MaxMembers,
	}
	for _, o := range g.Options {
		input.Options = append(input.Options, o.input())
	}
	return input
}

type periodRequest struct {
	From models.Date `json:"from" validate:"required"`
	To   models.Date `json:"to" validate:"required"`
}

type registrationSettingRequest struct {
	Open *bool `json:"open" validate:"required"`
}

// CreateSport adds a sport
func (h *AdminHandler) CreateSport(w http.ResponseWriter, r *http.Request) {
	var req sportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	sport, err := h.roster.CreateSport(actorFrom(r), req.Name)
	if err != nil {
		respondWithServiceError(w, "Error creating sport", err)
		return
	}
	respondJSON(w, http.StatusCreated, sport)
}

// DeleteSport removes a sport without groups
func (h *AdminHandler) DeleteSport(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	if err := h.roster.DeleteSport(actorFrom(r), id); err != nil {
		respondWithServiceError(w, "Error deleting sport", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListGroups lists groups including archived ones when ?archived=true
func (h *AdminHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	sportID, err := queryID(r, "sport_id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	includeArchived, _ := strconv.ParseBool(r.URL.Query().Get("archived"))

	groups, err := h.roster.ListGroups(sportID, includeArchived)
	if err != nil {
		respondWithServiceError(w, "Error listing groups", err)
		return
	}
	respondJSON(w, http.StatusOK, groups)
}

// GetGroup returns a group with its options
func (h *AdminHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	group, err := h.roster.GetGroup(id)
	if err != nil {
		respondWithServiceError(w, "Error loading group", err)
		return
	}
	respondJSON(w, http.StatusOK, group)
}

// CreateGroup creates a group with its initial options
func (h *AdminHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	if req.SportID == 0 {
		respondWithServiceError(w, "", validation.ValidationError{Field: "sport_id", Message: "is required"})
		return
	}
	group, err := h.roster.CreateGroup(actorFrom(r), req.input())
	if err != nil {
		respondWithServiceError(w, "Error creating group", err)
		return
	}
	respondJSON(w, http.StatusCreated, group)
}

// UpdateGroup edits a group; options are managed through their own routes
func (h *AdminHandler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	var req groupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	group, err := h.roster.UpdateGroup(actorFrom(r), id, req.input())
	if err != nil {
		respondWithServiceError(w, "Error updating group", err)
		return
	}
	respondJSON(w, http.StatusOK, group)
}

// ArchiveGroup hides a group while keeping its history
func (h *AdminHandler) ArchiveGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	if err := h.roster.ArchiveGroup(actorFrom(r), id); err != nil {
		respondWithServiceError(w, "Error archiving group", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteGroup removes a group without memberships
func (h *AdminHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	if err := h.roster.DeleteGroup(actorFrom(r), id); err != nil {
		respondWithServiceError(w, "Error deleting group", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateOption adds an attendance option to a group
func (h *AdminHandler) CreateOption(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	var req optionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	option, err := h.roster.CreateOption(actorFrom(r), groupID, req.input())
	if err != nil {
		respondWithServiceError(w, "Error creating option", err)
		return
	}
	respondJSON(w, http.StatusCreated, option)
}

// UpdateOption edits an attendance option
func (h *AdminHandler) UpdateOption(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	var req optionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	option, err := h.roster.UpdateOption(actorFrom(r), id, req.input())
	if err != nil {
		respondWithServiceError(w, "Error updating option", err)
		return
	}
	respondJSON(w, http.StatusOK, option)
}

// DeleteOption removes an attendance option
func (h *AdminHandler) DeleteOption(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	if err := h.roster.DeleteOption(actorFrom(r), id); err != nil {
		respondWithServiceError(w, "Error deleting option", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GenerateSessions creates the group's sessions in a date range
func (h *AdminHandler) GenerateSessions(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	var req periodRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	result, err := h.schedule.GenerateSessions(actorFrom(r), groupID, req.From, req.To)
	if err != nil {
		respondWithServiceError(w, "Error generating sessions", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// CancelSession marks a session as cancelled
func (h *AdminHandler) CancelSession(w http.ResponseWriter, r *http.Request) {
	h.setSessionCancelled(w, r, true)
}

// RestoreSession undoes a cancellation
func (h *AdminHandler) RestoreSession(w http.ResponseWriter, r *http.Request) {
	h.setSessionCancelled(w, r, false)
}

func (h *AdminHandler) setSessionCancelled(w http.ResponseWriter, r *http.Request, cancelled bool) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	var session *models.TrainingSession
	if cancelled {
		session, err = h.schedule.CancelSession(actorFrom(r), id)
	} else {
		session, err = h.schedule.RestoreSession(actorFrom(r), id)
	}
	if err != nil {
		respondWithServiceError(w, "Error updating session", err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

// GetRegistrationSetting reports the global registration switch
func (h *AdminHandler) GetRegistrationSetting(w http.ResponseWriter, r *http.Request) {
	open, err := h.roster.RegistrationOpen()
	if err != nil {
		respondWithServiceError(w, "Error reading registration setting", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"open": open})
}

// SetRegistrationSetting opens or closes public registration
func (h *AdminHandler) SetRegistrationSetting(w http.ResponseWriter, r *http.Request) {
	var req registrationSettingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	if err := h.roster.SetRegistrationOpen(actorFrom(r), *req.Open); err != nil {
		respondWithServiceError(w, "Error saving registration setting", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"open": *req.Open})
}

// ListAudit lists audit entries, optionally for one target
func (h *AdminHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	targetID, err := queryID(r, "target_id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.attendance.ListAudit(actorFrom(r), r.URL.Query().Get("target_type"), targetID, limit)
	if err != nil {
		respondWithServiceError(w, "Error listing audit log", err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// ExportDatabase exports the database to JSON for download
func (h *AdminHandler) ExportDatabase(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	// Set headers for file download
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("sportclub_backup_%s.json", timestamp)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	// Export directly to response writer
	if err := h.backup.ExportTo(w); err != nil {
		log.Printf("Error exporting database: %v", err)
		return
	}

	log.Printf("Database exported by admin user %s", user.Email)
}
