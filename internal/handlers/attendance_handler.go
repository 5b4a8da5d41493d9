package handlers

import (
	"net/http"

	"sportclub/internal/service"
)

// AttendanceHandler serves the training calendar and attendance marking for
// administrators and assigned trainers
type AttendanceHandler struct {
	schedule   *service.ScheduleService
	attendance *service.AttendanceService
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(schedule *service.ScheduleService, attendance *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{schedule: schedule, attendance: attendance}
}

type markRequest struct {
	Present *bool `json:"present" validate:"required"`
}

// ListSessions lists a group's sessions between ?from and ?to
func (h *AttendanceHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	from, to, err := queryPeriod(r)
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	sessions, err := h.schedule.ListSessions(actorFrom(r), groupID, from, to)
	if err != nil {
		respondWithServiceError(w, "Error listing sessions", err)
		return
	}
	respondJSON(w, http.StatusOK, sessions)
}

// SessionRoster lists the children eligible for a session with their marks
func (h *AttendanceHandler) SessionRoster(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	roster, err := h.attendance.SessionRoster(actorFrom(r), sessionID)
	if err != nil {
		respondWithServiceError(w, "Error loading session roster", err)
		return
	}
	respondJSON(w, http.StatusOK, roster)
}

// ToggleAttendance flips a child's mark for a session
func (h *AttendanceHandler) ToggleAttendance(w http.ResponseWriter, r *http.Request) {
	sessionID, childID, ok := sessionChildIDs(w, r)
	if !ok {
		return
	}
	record, err := h.attendance.ToggleAttendance(actorFrom(r), sessionID, childID)
	if err != nil {
		respondWithServiceError(w, "Error toggling attendance", err)
		return
	}
	respondJSON(w, http.StatusOK, record)
}

// SetAttendance sets a child's mark explicitly
func (h *AttendanceHandler) SetAttendance(w http.ResponseWriter, r *http.Request) {
	sessionID, childID, ok := sessionChildIDs(w, r)
	if !ok {
		return
	}
	var req markRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	record, err := h.attendance.SetAttendance(actorFrom(r), sessionID, childID, *req.Present)
	if err != nil {
		respondWithServiceError(w, "Error setting attendance", err)
		return
	}
	respondJSON(w, http.StatusOK, record)
}

// GroupSummary returns the attendance summary of every member
func (h *AttendanceHandler) GroupSummary(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	from, to, err := queryPeriod(r)
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	summaries, err := h.attendance.GroupAttendanceSummary(actorFrom(r), groupID, from, to)
	if err != nil {
		respondWithServiceError(w, "Error summarizing attendance", err)
		return
	}
	respondJSON(w, http.StatusOK, summaries)
}

// ChildSummary returns one child's attendance summary in a group
func (h *AttendanceHandler) ChildSummary(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	childID, err := pathID(r, "childId")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	from, to, err := queryPeriod(r)
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	summary, err := h.attendance.AttendanceSummary(actorFrom(r), groupID, childID, from, to)
	if err != nil {
		respondWithServiceError(w, "Error summarizing attendance", err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// SessionTrainers lists the trainers at a session with their marks
func (h *AttendanceHandler) SessionTrainers(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	trainers, err := h.attendance.SessionTrainers(actorFrom(r), sessionID)
	if err != nil {
		respondWithServiceError(w, "Error loading session trainers", err)
		return
	}
	respondJSON(w, http.StatusOK, trainers)
}

// ToggleTrainerAttendance flips a trainer's mark for a session
func (h *AttendanceHandler) ToggleTrainerAttendance(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	trainerID, err := pathID(r, "trainerId")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	record, err := h.attendance.ToggleTrainerAttendance(actorFrom(r), sessionID, trainerID)
	if err != nil {
		respondWithServiceError(w, "Error toggling trainer attendance", err)
		return
	}
	respondJSON(w, http.StatusOK, record)
}

// TrainerSummary returns a trainer's presence at a group's sessions
func (h *AttendanceHandler) TrainerSummary(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	trainerID, err := pathID(r, "trainerId")
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	from, to, err := queryPeriod(r)
	if err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	summary, err := h.attendance.TrainerAttendanceSummary(actorFrom(r), groupID, trainerID, from, to)
	if err != nil {
		respondWithServiceError(w, "Error summarizing trainer attendance", err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func sessionChildIDs(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	sessionID, err := pathID(r, "id")
	if err != nil {
		respondWithServiceError(w, "", err)
		return 0, 0, false
	}
	childID, err := pathID(r, "childId")
	if err != nil {
		respondWithServiceError(w, "", err)
		return 0, 0, false
	}
	return sessionID, childID, true
}
