package handlers

import (
	"net/http"
	"time"

	"sportclub/internal/models"
	"sportclub/internal/security"
	"sportclub/internal/service"
)

// AuthHandler handles staff sign-in over JSON, cookies and Google SSO
type AuthHandler struct {
	authService          *service.AuthService
	csrf                 *security.CSRFGenerator
	oauthProviders       map[string]OAuthProvider
	oauthRedirectBaseURL string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, csrf *security.CSRFGenerator, oauthProviders map[string]OAuthProvider, oauthRedirectBaseURL string) *AuthHandler {
	return &AuthHandler{
		authService:          authService,
		csrf:                 csrf,
		oauthProviders:       oauthProviders,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
	}
}

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	User      *models.User `json:"user"`
	CSRFToken string       `json:"csrf_token,omitempty"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
}

type tokenResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Login starts a cookie session and returns the CSRF token for it
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "Error decoding login", err)
		return
	}

	session, user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, "Error logging in", err)
		return
	}

	csrfToken, err := h.csrf.GenerateToken(session.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error generating CSRF token", err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, security.SessionCookieName, session.ID, session.ExpiresAt))
	respondJSON(w, http.StatusOK, sessionResponse{User: user, CSRFToken: csrfToken, ExpiresAt: &session.ExpiresAt})
}

// Token exchanges credentials for a bearer token
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, "Error decoding token request", err)
		return
	}

	token, expiresAt, user, err := h.authService.IssueToken(req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, "Error issuing token", err)
		return
	}
	respondJSON(w, http.StatusOK, tokenResponse{Token: token, TokenType: "Bearer", ExpiresAt: expiresAt, User: user})
}

// Logout handles logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	// Get session cookie
	cookie, err := r.Cookie(security.SessionCookieName)
	if err == nil {
		// Delete session from database
		_ = h.authService.Logout(cookie.Value)
	}

	// Clear cookie
	http.SetCookie(w, security.CreateDeleteCookie(r, security.SessionCookieName))
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the signed-in staff member. Cookie sessions also get their CSRF
// token back so a reloaded page can keep making changes.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	resp := sessionResponse{User: GetUserFromContext(r.Context())}
	if sessionID, ok := r.Context().Value(SessionContextKey).(string); ok {
		if token, err := h.csrf.GenerateToken(sessionID); err == nil {
			resp.CSRFToken = token
		}
	}
	respondJSON(w, http.StatusOK, resp)
}
