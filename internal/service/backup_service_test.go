package service

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"typeb/internal/config"
	"typeb/internal/database"
)

func openServiceTestDB(t *testing.T) *database.DB {
	t.Helper()

	cfg := &config.Config{
		DatabaseType: "sqlite",
		DatabasePath: t.TempDir() + "/service_test.db",
	}
	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func seedBackupData(t *testing.T, db *database.DB) {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)

	familyID, err := db.ExecReturningID(
		"INSERT INTO families (name, invite_code, max_members) VALUES (?, ?, ?)",
		"The Does", "AB12CD", 10)
	if err != nil {
		t.Fatalf("Failed to seed family: %v", err)
	}

	parentID, err := db.ExecReturningID(
		`INSERT INTO users (email, password_hash, display_name, role, family_id, timezone)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		"parent@example.com", "x", "Parent", "parent", familyID, "UTC")
	if err != nil {
		t.Fatalf("Failed to seed parent: %v", err)
	}

	childID, err := db.ExecReturningID(
		`INSERT INTO users (email, password_hash, display_name, role, family_id, timezone)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		"kid@example.com", "x", "Kid", "child", familyID, "UTC")
	if err != nil {
		t.Fatalf("Failed to seed child: %v", err)
	}

	taskID, err := db.ExecReturningID(
		`INSERT INTO tasks (family_id, title, description, assigned_to, assigned_by,
		 created_by, status, priority, due_date, points, requires_photo, is_recurring,
		 recurrence_frequency, recurrence_interval, recurrence_days)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		familyID, "Feed the dog", "", childID, parentID, parentID,
		"pending", "medium", now.Add(24*time.Hour), 10, true, false, "", 1, "")
	if err != nil {
		t.Fatalf("Failed to seed task: %v", err)
	}

	if _, err := db.Exec(
		"INSERT INTO submissions (task_id, submitted_by, photo_key, note, status) VALUES (?, ?, ?, ?, ?)",
		taskID, childID, "families/1/tasks/1/photo.jpg", "done", "pending"); err != nil {
		t.Fatalf("Failed to seed submission: %v", err)
	}
}

func TestBackupExportImportRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	source := openServiceTestDB(t)
	seedBackupData(t, source)

	var buf bytes.Buffer
	if err := NewBackupService(source).ExportToWriter(&buf); err != nil {
		t.Fatalf("ExportToWriter() error = %v", err)
	}

	var data BackupData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if data.Version == "" {
		t.Error("export should carry a version")
	}
	if len(data.Families) != 1 || len(data.Users) != 2 || len(data.Tasks) != 1 || len(data.Submissions) != 1 {
		t.Fatalf("unexpected export counts: families=%d users=%d tasks=%d submissions=%d",
			len(data.Families), len(data.Users), len(data.Tasks), len(data.Submissions))
	}

	target := openServiceTestDB(t)
	if err := NewBackupService(target).ImportFromReader(bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("ImportFromReader() error = %v", err)
	}

	var count int
	if err := target.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		t.Fatalf("Failed to count users: %v", err)
	}
	if count != 2 {
		t.Errorf("imported users = %d, want 2", count)
	}

	var title string
	if err := target.QueryRow("SELECT title FROM tasks WHERE id = ?", data.Tasks[0].ID).Scan(&title); err != nil {
		t.Fatalf("Failed to read imported task: %v", err)
	}
	if title != "Feed the dog" {
		t.Errorf("imported task title = %q, want %q", title, "Feed the dog")
	}
}
