package handlers

const (
	ErrInvalidJSON         = "Invalid request body"
	ErrInvalidID           = "Invalid id"
	ErrUnauthorized        = "Unauthorized"
	ErrForbidden           = "Forbidden"
	ErrTooManyRequests     = "Too many requests, please try again later"
	ErrInvalidCSRFToken    = "Invalid CSRF token"
	ErrInternalServerError = "Internal server error"
	ErrTryAgainLater       = "The identity registry is unavailable, please try again later"

	maxBodyBytes = 1 << 20
)
