package repository

import (
	"database/sql"
	"fmt"
	"strconv"

	"sportclub/internal/database"
)

// SettingRegistrationOpen gates the public registration form
const SettingRegistrationOpen = "registration_open"

type SettingsRepository struct {
	db database.DBTX
}

func NewSettingsRepository(db database.DBTX) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetSetting retrieves a setting value by key, "" when unset
func (r *SettingsRepository) GetSetting(key string) (string, error) {
	var value string
	err := r.db.QueryRow("SELECT setting_value FROM settings WHERE setting_key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, nil
}

// SetSetting updates or inserts a setting
func (r *SettingsRepository) SetSetting(key, value string) error {
	if _, err := r.db.Exec(r.db.GetDialect().UpsertSetting(), key, value); err != nil {
		return fmt.Errorf("failed to store setting %s: %w", key, err)
	}
	return nil
}

// IsRegistrationOpen reports whether the public form accepts registrations.
// An unset value counts as open.
func (r *SettingsRepository) IsRegistrationOpen() (bool, error) {
	value, err := r.GetSetting(SettingRegistrationOpen)
	if err != nil {
		return false, err
	}
	if value == "" {
		return true, nil
	}
	open, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q", SettingRegistrationOpen, value)
	}
	return open, nil
}

// SetRegistrationOpen opens or closes the public form
func (r *SettingsRepository) SetRegistrationOpen(open bool) error {
	return r.SetSetting(SettingRegistrationOpen, strconv.FormatBool(open))
}
