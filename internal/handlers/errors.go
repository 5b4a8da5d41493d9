package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"sportclub/internal/access"
	"sportclub/internal/security"
	"sportclub/internal/service"
	"sportclub/internal/validation"
)

// errorResponse is the body of every error reply
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	respondJSON(w, status, errorResponse{Error: userMsg})
}

// respondWithServiceError maps service errors onto status codes. Anything
// unrecognised is logged and reported as a 500.
func respondWithServiceError(w http.ResponseWriter, logMsg string, err error) {
	var vErr validation.ValidationError
	switch {
	case errors.As(err, &vErr):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: vErr.Message, Field: vErr.Field})
	case errors.Is(err, service.ErrNationalIDUnverified):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Field: "national_id"})
	case errors.Is(err, service.ErrRegistryUnavailable):
		respondWithError(w, http.StatusServiceUnavailable, ErrTryAgainLater, logMsg, err)
	case errors.Is(err, access.ErrForbidden):
		respondJSON(w, http.StatusForbidden, errorResponse{Error: ErrForbidden})
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, security.ErrInvalidToken):
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrAccountNotLinked):
		respondJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrConflict):
		respondJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, logMsg, err)
	}
}
