package database

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Initialize(filepath.Join(t.TempDir(), "club.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.RunMigrations(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// TestDatabaseIntegration tests the complete database lifecycle
func TestDatabaseIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)

	tables := []string{"users", "sessions", "sports", "training_groups", "attendance_options", "trainer_groups",
		"parents", "children", "memberships", "training_sessions", "attendance_records", "audit_log", "settings",
		"received_payments", "trainer_attendance"}

	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}

	// Running again must be a no-op
	if err := db.RunMigrations(); err != nil {
		t.Fatalf("Second RunMigrations() failed: %v", err)
	}
}

func TestSeedSportsIsIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)

	for i := 0; i < 2; i++ {
		if err := db.SeedSports(); err != nil {
			t.Fatalf("SeedSports() error = %v", err)
		}
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM sports").Scan(&count); err != nil {
		t.Fatalf("count sports: %v", err)
	}
	if count != len(DefaultSports) {
		t.Errorf("sports count = %d, want %d", count, len(DefaultSports))
	}
}

// TestDatabaseTransactions tests transaction support
func TestDatabaseTransactions(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)

	err := db.InTx(func(tx *Tx) error {
		_, err := tx.ExecReturningID("INSERT INTO sports (name) VALUES (?)", "swimming")
		return err
	})
	if err != nil {
		t.Fatalf("InTx() commit path error = %v", err)
	}

	err = db.InTx(func(tx *Tx) error {
		if _, err := tx.Exec("INSERT INTO sports (name) VALUES (?)", "rowing"); err != nil {
			return err
		}
		return errRollback
	})
	if err != errRollback {
		t.Fatalf("InTx() error = %v, want %v", err, errRollback)
	}

	var count int
	db.QueryRow("SELECT COUNT(*) FROM sports WHERE name IN ('swimming', 'rowing')").Scan(&count)
	if count != 1 {
		t.Errorf("expected only the committed sport, got %d rows", count)
	}
}

func TestInsertIgnoreSkipsDuplicates(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)
	query := db.Dialect.InsertIgnore("sports", "name")

	first, err := db.Exec(query, "judo")
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}
	second, err := db.Exec(query, "judo")
	if err != nil {
		t.Fatalf("second insert: %v", err)
	}

	if n, _ := first.RowsAffected(); n != 1 {
		t.Errorf("first RowsAffected() = %d, want 1", n)
	}
	if n, _ := second.RowsAffected(); n != 0 {
		t.Errorf("second RowsAffected() = %d, want 0", n)
	}
}

func TestUpsertSetting(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)
	for _, value := range []string{"true", "false"} {
		if _, err := db.Exec(db.Dialect.UpsertSetting(), "registration_open", value); err != nil {
			t.Fatalf("UpsertSetting(%s): %v", value, err)
		}
	}

	var value string
	if err := db.QueryRow("SELECT setting_value FROM settings WHERE setting_key = ?", "registration_open").Scan(&value); err != nil {
		t.Fatalf("read setting: %v", err)
	}
	if value != "false" {
		t.Errorf("setting value = %v, want false", value)
	}
}

var errRollback = rollbackError("rollback requested")

type rollbackError string

func (e rollbackError) Error() string { return string(e) }
