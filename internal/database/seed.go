package database

import (
	"fmt"
	"log"
)

// DefaultSports are the sports a fresh club starts with. They are plain rows,
// administrators can add more.
var DefaultSports = []string{"athletics", "football", "gymnastics"}

// SeedSports inserts the default sports when the sports table is empty
func (db *DB) SeedSports() error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM sports").Scan(&count); err != nil {
		return fmt.Errorf("failed to check sports count: %w", err)
	}

	if count > 0 {
		log.Printf("Sports already seeded (%d rows)", count)
		return nil
	}

	err := db.InTx(func(tx *Tx) error {
		query := db.Dialect.InsertIgnore("sports", "name")
		for _, name := range DefaultSports {
			if _, err := tx.Exec(query, name); err != nil {
				return fmt.Errorf("failed to insert sport %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("Seeded %d default sports", len(DefaultSports))
	return nil
}

// SeedSettings stores defaults for settings that have never been written
func (db *DB) SeedSettings(defaults map[string]string) error {
	query := db.Dialect.InsertIgnore("settings", "setting_key", "setting_value")
	for key, value := range defaults {
		if _, err := db.Exec(query, key, value); err != nil {
			return fmt.Errorf("failed to seed setting %s: %w", key, err)
		}
	}
	return nil
}
