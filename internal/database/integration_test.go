package database

import (
	"os"
	"testing"

	"typeb/internal/config"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	dbPath := t.TempDir() + "/test.db"
	cfg := &config.Config{
		DatabaseType: "sqlite",
		DatabasePath: dbPath,
	}

	db, err := Open(cfg)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})

	if err := db.RunMigrations("../../migrations"); err != nil {
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

	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	// Migrations must have created the full schema
	tables := []string{
		"families", "users", "categories", "tasks", "submissions",
		"rewards", "redemptions", "activity", "refresh_tokens",
		"password_reset_tokens",
	}

	for _, table := range tables {
		query := "SELECT name FROM sqlite_master WHERE type='table' AND name=?"
		var name string
		if err := db.QueryRow(query, table).Scan(&name); err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}
}

// TestDatabaseTransactions tests commit and rollback through the Tx wrapper
func TestDatabaseTransactions(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}

	id, err := tx.ExecReturningID(
		"INSERT INTO families (name, invite_code, max_members) VALUES (?, ?, ?)",
		"The Does", "ABC123", 10)
	if err != nil {
		tx.Rollback()
		t.Fatalf("Failed to insert in transaction: %v", err)
	}
	if id == 0 {
		tx.Rollback()
		t.Fatal("ExecReturningID() returned id 0")
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("Failed to commit transaction: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM families WHERE invite_code = ?", "ABC123").Scan(&count); err != nil {
		t.Fatalf("Failed to query after commit: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 family, got %d", count)
	}

	// Rolled back insert must not persist
	tx2, err := db.Begin()
	if err != nil {
		t.Fatalf("Failed to begin second transaction: %v", err)
	}
	if _, err := tx2.Exec(
		"INSERT INTO families (name, invite_code, max_members) VALUES (?, ?, ?)",
		"The Smiths", "XYZ789", 10); err != nil {
		tx2.Rollback()
		t.Fatalf("Failed to insert in second transaction: %v", err)
	}
	if err := tx2.Rollback(); err != nil {
		t.Fatalf("Failed to rollback: %v", err)
	}

	if err := db.QueryRow("SELECT COUNT(*) FROM families WHERE invite_code = ?", "XYZ789").Scan(&count); err != nil {
		t.Fatalf("Failed to query after rollback: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 families after rollback, got %d", count)
	}
}

// TestMigrationsAreIdempotent verifies a second run applies nothing new
func TestMigrationsAreIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Second RunMigrations() failed: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&count); err != nil {
		t.Fatalf("Failed to count migrations: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 recorded migration, got %d", count)
	}
}
