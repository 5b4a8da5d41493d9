package config

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort string
	Debug      bool

	// Database
	DatabaseType string
	DatabaseURL  string
	DatabasePath string

	// Sessions and tokens
	SessionDuration time.Duration
	SessionSecret   string
	JWTTTL          time.Duration

	// Bootstrap administrator, created when no admin exists
	AdminEmail    string
	AdminPassword string

	// National ID registry
	VerificationURL     string
	VerificationTimeout time.Duration

	// Email (Amazon SES)
	AWSRegion    string
	SESFromEmail string
	SESFromName  string
	AppBaseURL   string

	// Staff single sign-on
	GoogleClientID       string
	GoogleClientSecret   string
	OAuthRedirectBaseURL string

	// Public registration throttling
	RegistrationRate   int
	RegistrationWindow time.Duration

	// Rolling session generation
	SessionHorizonDays     int
	SessionHorizonSchedule string
	SessionCleanupSchedule string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env file: %v", err)
	}

	return &Config{
		ServerPort: getEnv("PORT", "8080"),
		Debug:      getEnvBool("DEBUG", false),

		DatabaseType: getEnv("DATABASE_TYPE", "sqlite"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		DatabasePath: getEnv("DB_PATH", "./sportclub.db"),

		SessionDuration: getEnvDuration("SESSION_DURATION", 24*time.Hour),
		SessionSecret:   sessionSecret(),
		JWTTTL:          getEnvDuration("JWT_TTL", 12*time.Hour),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		VerificationURL:     getEnv("VERIFICATION_URL", ""),
		VerificationTimeout: getEnvDuration("VERIFICATION_TIMEOUT", 4*time.Second),

		AWSRegion:    getEnv("AWS_REGION", "eu-central-1"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "Sport Club"),
		AppBaseURL:   strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:8080"), "/"),

		GoogleClientID:       getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:   getEnv("GOOGLE_CLIENT_SECRET", ""),
		OAuthRedirectBaseURL: strings.TrimRight(getEnv("OAUTH_REDIRECT_BASE_URL", ""), "/"),

		RegistrationRate:   getEnvInt("REGISTRATION_RATE", 5),
		RegistrationWindow: getEnvDuration("REGISTRATION_WINDOW", time.Minute),

		SessionHorizonDays:     getEnvInt("SESSION_HORIZON_DAYS", 28),
		SessionHorizonSchedule: getEnv("SESSION_HORIZON_SCHEDULE", "@daily"),
		SessionCleanupSchedule: getEnv("SESSION_CLEANUP_SCHEDULE", "@hourly"),
	}
}

// sessionSecret returns SESSION_SECRET, or a random per-process secret when it
// is unset. The secret signs CSRF and bearer tokens, so it never has a fixed
// default.
func sessionSecret() string {
	if secret := os.Getenv("SESSION_SECRET"); secret != "" {
		return secret
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalf("Failed to generate session secret: %v", err)
	}
	log.Println("Warning: SESSION_SECRET not set, using a random secret. Tokens will not survive a restart.")
	return hex.EncodeToString(buf)
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: invalid integer for %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Warning: invalid boolean for %s=%q, using %t", key, value, defaultValue)
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Warning: invalid duration for %s=%q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}
