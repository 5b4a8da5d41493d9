package service

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"sportclub/internal/database"
	"sportclub/internal/models"
	"sportclub/internal/repository"
	"sportclub/internal/security"
	"sportclub/internal/validation"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrAccountNotLinked   = errors.New("no staff account matches this sign-in")
)

// AuthService handles staff authentication: password logins backed by
// database sessions, bearer tokens for API clients and OAuth sign-in
type AuthService struct {
	userRepo        *repository.UserRepository
	tokens          *security.TokenIssuer
	sessionDuration time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(db *database.DB, tokens *security.TokenIssuer, sessionDuration time.Duration) *AuthService {
	return &AuthService{
		userRepo:        repository.NewUserRepository(db),
		tokens:          tokens,
		sessionDuration: sessionDuration,
	}
}

// authenticate checks an email/password pair against an active account
func (s *AuthService) authenticate(email, password string) (*models.User, error) {
	user, err := s.userRepo.GetUserByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !user.Active {
		return nil, ErrInvalidCredentials
	}
	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) startSession(user *models.User) (*models.Session, error) {
	sessionID := security.GenerateSessionID()
	expiresAt := time.Now().Add(s.sessionDuration)

	session, err := s.userRepo.CreateSession(sessionID, user.ID, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// Login authenticates a staff member and creates a session
func (s *AuthService) Login(email, password string) (*models.Session, *models.User, error) {
	user, err := s.authenticate(email, password)
	if err != nil {
		return nil, nil, err
	}
	session, err := s.startSession(user)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

// ValidateSession checks if a session is valid and returns the associated user
func (s *AuthService) ValidateSession(sessionID string) (*models.User, error) {
	session, err := s.userRepo.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if session.IsExpired() {
		_ = s.userRepo.DeleteSession(sessionID)
		return nil, ErrSessionExpired
	}

	user, err := s.userRepo.GetUserByID(session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !user.Active {
		return nil, ErrSessionNotFound
	}

	return user, nil
}

// Logout invalidates a session
func (s *AuthService) Logout(sessionID string) error {
	if err := s.userRepo.DeleteSession(sessionID); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes expired sessions from the database
func (s *AuthService) CleanupExpiredSessions() (int64, error) {
	removed, err := s.userRepo.DeleteExpiredSessions()
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	return removed, nil
}

// IssueToken exchanges credentials for a signed bearer token
func (s *AuthService) IssueToken(email, password string) (string, time.Time, *models.User, error) {
	user, err := s.authenticate(email, password)
	if err != nil {
		return "", time.Time{}, nil, err
	}
	token, expiresAt, err := s.tokens.Issue(user.ID, string(user.Role))
	if err != nil {
		return "", time.Time{}, nil, err
	}
	return token, expiresAt, user, nil
}

// AuthenticateToken resolves a bearer token to its active user. The role is
// re-read from the database so a demoted or disabled account loses access
// before the token expires.
func (s *AuthService) AuthenticateToken(tokenString string) (*models.User, error) {
	claims, err := s.tokens.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, security.ErrInvalidToken
	}

	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !user.Active {
		return nil, security.ErrInvalidToken
	}
	return user, nil
}

// OAuthLogin signs in an existing active staff account through an OAuth
// provider. The account is linked on first use by email; unknown emails are
// refused since staff accounts are only created by administrators.
func (s *AuthService) OAuthLogin(provider, subject, email string) (*models.Session, *models.User, error) {
	if provider == "" || subject == "" {
		return nil, nil, errors.New("missing oauth provider information")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, nil, err
	}

	user, err := s.userRepo.GetUserByOAuth(provider, subject)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lookup oauth user: %w", err)
	}

	if user == nil {
		existingUser, err := s.userRepo.GetUserByEmail(email)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to check existing user: %w", err)
		}
		if existingUser == nil {
			return nil, nil, ErrAccountNotLinked
		}
		if existingUser.OAuthProvider != "" && existingUser.OAuthProvider != provider {
			return nil, nil, ErrAccountNotLinked
		}
		if err := s.userRepo.LinkOAuthProvider(existingUser.ID, provider, subject); err != nil {
			return nil, nil, fmt.Errorf("failed to link oauth provider: %w", err)
		}
		user = existingUser
	}

	if !user.Active {
		return nil, nil, ErrAccountNotLinked
	}

	session, err := s.startSession(user)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

// EnsureAdmin creates the bootstrap administrator when the club has no active
// administrator yet. It is a no-op when email is empty.
func (s *AuthService) EnsureAdmin(email, password string) error {
	if email == "" {
		return nil
	}
	admins, err := s.userRepo.CountActiveAdmins()
	if err != nil {
		return err
	}
	if admins > 0 {
		return nil
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.ValidateEmail(email); err != nil {
		return err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return err
	}
	existing, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("bootstrap admin %s exists but is not an active administrator", email)
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if _, err := s.userRepo.CreateUser(email, hash, "Club", "Admin", "", models.RoleAdmin); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	log.Printf("Created bootstrap administrator %s", email)
	return nil
}
