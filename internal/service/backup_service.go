package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"typeb/internal/database"
)

// BackupData represents the complete database backup structure
type BackupData struct {
	Version     string             `json:"version"`
	ExportedAt  time.Time          `json:"exported_at"`
	Families    []FamilyBackup     `json:"families"`
	Users       []UserBackup       `json:"users"`
	Categories  []CategoryBackup   `json:"categories"`
	Tasks       []TaskBackup       `json:"tasks"`
	Submissions []SubmissionBackup `json:"submissions"`
	Rewards     []RewardBackup     `json:"rewards"`
	Redemptions []RedemptionBackup `json:"redemptions"`
	Activity    []ActivityBackup   `json:"activity"`
}

// FamilyBackup represents a family record for backup
type FamilyBackup struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	InviteCode string    `json:"invite_code"`
	MaxMembers int       `json:"max_members"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// UserBackup represents a user record for backup
type UserBackup struct {
	ID                   int64     `json:"id"`
	Email                string    `json:"email"`
	PasswordHash         string    `json:"password_hash"`
	DisplayName          string    `json:"display_name"`
	Role                 string    `json:"role"`
	FamilyID             *int64    `json:"family_id"`
	NotificationsEnabled bool      `json:"notifications_enabled"`
	Timezone             string    `json:"timezone"`
	IsPremium            bool      `json:"is_premium"`
	PointsBalance        int       `json:"points_balance"`
	OAuthProvider        string    `json:"oauth_provider"`
	OAuthSubject         string    `json:"oauth_subject"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// CategoryBackup represents a task category for backup
type CategoryBackup struct {
	ID        int64     `json:"id"`
	FamilyID  int64     `json:"family_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Icon      string    `json:"icon"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskBackup represents a task record for backup
type TaskBackup struct {
	ID                  int64      `json:"id"`
	FamilyID            int64      `json:"family_id"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	CategoryID          *int64     `json:"category_id"`
	AssignedTo          *int64     `json:"assigned_to"`
	AssignedBy          int64      `json:"assigned_by"`
	CreatedBy           int64      `json:"created_by"`
	Status              string     `json:"status"`
	Priority            string     `json:"priority"`
	DueDate             *time.Time `json:"due_date"`
	Points              int        `json:"points"`
	RequiresPhoto       bool       `json:"requires_photo"`
	IsRecurring         bool       `json:"is_recurring"`
	RecurrenceFrequency string     `json:"recurrence_frequency"`
	RecurrenceInterval  int        `json:"recurrence_interval"`
	RecurrenceDays      string     `json:"recurrence_days"`
	EscalationLevel     int        `json:"escalation_level"`
	CompletedAt         *time.Time `json:"completed_at"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// SubmissionBackup represents a task submission for backup
type SubmissionBackup struct {
	ID              int64      `json:"id"`
	TaskID          int64      `json:"task_id"`
	SubmittedBy     int64      `json:"submitted_by"`
	PhotoKey        string     `json:"photo_key"`
	Note            string     `json:"note"`
	Status          string     `json:"status"`
	SubmittedAt     time.Time  `json:"submitted_at"`
	ReviewedAt      *time.Time `json:"reviewed_at"`
	ReviewedBy      *int64     `json:"reviewed_by"`
	ValidationNotes string     `json:"validation_notes"`
}

// RewardBackup represents a reward record for backup
type RewardBackup struct {
	ID          int64     `json:"id"`
	FamilyID    int64     `json:"family_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PointsCost  int       `json:"points_cost"`
	CreatedBy   int64     `json:"created_by"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RedemptionBackup represents a redemption record for backup
type RedemptionBackup struct {
	ID          int64     `json:"id"`
	RewardID    int64     `json:"reward_id"`
	UserID      int64     `json:"user_id"`
	PointsSpent int       `json:"points_spent"`
	RedeemedAt  time.Time `json:"redeemed_at"`
}

// ActivityBackup represents an activity log event for backup
type ActivityBackup struct {
	ID         int64     `json:"id"`
	FamilyID   int64     `json:"family_id"`
	UserID     int64     `json:"user_id"`
	Type       string    `json:"type"`
	TaskID     *int64    `json:"task_id"`
	Points     int       `json:"points"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BackupService handles database backup and restore operations. Refresh and
// password reset tokens are transient credentials and are not exported.
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(outputPath string) error {
	log.Println("Starting database export...")

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}

	log.Printf("Database exported successfully to %s", outputPath)
	return nil
}

// ExportToWriter exports the database to an io.Writer
func (s *BackupService) ExportToWriter(w io.Writer) error {
	backup := &BackupData{
		Version:    "1.0",
		ExportedAt: time.Now(),
	}

	if err := s.exportFamilies(backup); err != nil {
		return fmt.Errorf("failed to export families: %w", err)
	}
	if err := s.exportUsers(backup); err != nil {
		return fmt.Errorf("failed to export users: %w", err)
	}
	if err := s.exportCategories(backup); err != nil {
		return fmt.Errorf("failed to export categories: %w", err)
	}
	if err := s.exportTasks(backup); err != nil {
		return fmt.Errorf("failed to export tasks: %w", err)
	}
	if err := s.exportSubmissions(backup); err != nil {
		return fmt.Errorf("failed to export submissions: %w", err)
	}
	if err := s.exportRewards(backup); err != nil {
		return fmt.Errorf("failed to export rewards: %w", err)
	}
	if err := s.exportRedemptions(backup); err != nil {
		return fmt.Errorf("failed to export redemptions: %w", err)
	}
	if err := s.exportActivity(backup); err != nil {
		return fmt.Errorf("failed to export activity: %w", err)
	}

	log.Printf("Exported: %d families, %d users, %d categories, %d tasks, %d submissions, %d rewards, %d redemptions, %d activity events",
		len(backup.Families), len(backup.Users), len(backup.Categories), len(backup.Tasks),
		len(backup.Submissions), len(backup.Rewards), len(backup.Redemptions), len(backup.Activity))

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(backup)
}

// Import restores a database from a backup file
func (s *BackupService) Import(inputPath string) error {
	log.Printf("Starting database import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores a database from a backup reader
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	// Import in dependency order. Users reference families, everything else
	// references users or families.
	if err := s.importFamilies(backup.Families); err != nil {
		return fmt.Errorf("failed to import families: %w", err)
	}
	if err := s.importUsers(backup.Users); err != nil {
		return fmt.Errorf("failed to import users: %w", err)
	}
	if err := s.importCategories(backup.Categories); err != nil {
		return fmt.Errorf("failed to import categories: %w", err)
	}
	if err := s.importTasks(backup.Tasks); err != nil {
		return fmt.Errorf("failed to import tasks: %w", err)
	}
	if err := s.importSubmissions(backup.Submissions); err != nil {
		return fmt.Errorf("failed to import submissions: %w", err)
	}
	if err := s.importRewards(backup.Rewards); err != nil {
		return fmt.Errorf("failed to import rewards: %w", err)
	}
	if err := s.importRedemptions(backup.Redemptions); err != nil {
		return fmt.Errorf("failed to import redemptions: %w", err)
	}
	if err := s.importActivity(backup.Activity); err != nil {
		return fmt.Errorf("failed to import activity: %w", err)
	}

	log.Println("Database import completed successfully")
	return nil
}

func (s *BackupService) exportFamilies(backup *BackupData) error {
	query := "SELECT id, name, invite_code, max_members, created_at, updated_at FROM families ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var f FamilyBackup
		if err := rows.Scan(&f.ID, &f.Name, &f.InviteCode, &f.MaxMembers, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return err
		}
		backup.Families = append(backup.Families, f)
	}
	return rows.Err()
}

func (s *BackupService) exportUsers(backup *BackupData) error {
	query := `SELECT id, email, password_hash, display_name, role, family_id,
		notifications_enabled, timezone, is_premium, points_balance,
		oauth_provider, oauth_subject, created_at, updated_at
		FROM users ORDER BY id`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var u UserBackup
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.Role, &u.FamilyID,
			&u.NotificationsEnabled, &u.Timezone, &u.IsPremium, &u.PointsBalance,
			&u.OAuthProvider, &u.OAuthSubject, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return err
		}
		backup.Users = append(backup.Users, u)
	}
	return rows.Err()
}

func (s *BackupService) exportCategories(backup *BackupData) error {
	query := "SELECT id, family_id, name, color, icon, sort_order, created_at FROM categories ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c CategoryBackup
		if err := rows.Scan(&c.ID, &c.FamilyID, &c.Name, &c.Color, &c.Icon, &c.SortOrder, &c.CreatedAt); err != nil {
			return err
		}
		backup.Categories = append(backup.Categories, c)
	}
	return rows.Err()
}

func (s *BackupService) exportTasks(backup *BackupData) error {
	query := `SELECT id, family_id, title, description, category_id,
		assigned_to, assigned_by, created_by, status, priority, due_date, points,
		requires_photo, is_recurring, recurrence_frequency,
		recurrence_interval, recurrence_days,
		escalation_level, completed_at, created_at, updated_at
		FROM tasks ORDER BY id`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var t TaskBackup
		var dueDate, completedAt sql.NullTime
		if err := rows.Scan(&t.ID, &t.FamilyID, &t.Title, &t.Description, &t.CategoryID,
			&t.AssignedTo, &t.AssignedBy, &t.CreatedBy, &t.Status, &t.Priority, &dueDate, &t.Points,
			&t.RequiresPhoto, &t.IsRecurring, &t.RecurrenceFrequency,
			&t.RecurrenceInterval, &t.RecurrenceDays,
			&t.EscalationLevel, &completedAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return err
		}
		if dueDate.Valid {
			t.DueDate = &dueDate.Time
		}
		if completedAt.Valid {
			t.CompletedAt = &completedAt.Time
		}
		backup.Tasks = append(backup.Tasks, t)
	}
	return rows.Err()
}

func (s *BackupService) exportSubmissions(backup *BackupData) error {
	query := `SELECT id, task_id, submitted_by, photo_key, note,
		status, submitted_at, reviewed_at, reviewed_by, validation_notes
		FROM submissions ORDER BY id`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var sub SubmissionBackup
		var reviewedAt sql.NullTime
		if err := rows.Scan(&sub.ID, &sub.TaskID, &sub.SubmittedBy, &sub.PhotoKey, &sub.Note,
			&sub.Status, &sub.SubmittedAt, &reviewedAt, &sub.ReviewedBy, &sub.ValidationNotes); err != nil {
			return err
		}
		if reviewedAt.Valid {
			sub.ReviewedAt = &reviewedAt.Time
		}
		backup.Submissions = append(backup.Submissions, sub)
	}
	return rows.Err()
}

func (s *BackupService) exportRewards(backup *BackupData) error {
	query := "SELECT id, family_id, title, description, points_cost, created_by, is_active, created_at, updated_at FROM rewards ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var r RewardBackup
		if err := rows.Scan(&r.ID, &r.FamilyID, &r.Title, &r.Description, &r.PointsCost, &r.CreatedBy, &r.IsActive, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return err
		}
		backup.Rewards = append(backup.Rewards, r)
	}
	return rows.Err()
}

func (s *BackupService) exportRedemptions(backup *BackupData) error {
	query := "SELECT id, reward_id, user_id, points_spent, redeemed_at FROM redemptions ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var r RedemptionBackup
		if err := rows.Scan(&r.ID, &r.RewardID, &r.UserID, &r.PointsSpent, &r.RedeemedAt); err != nil {
			return err
		}
		backup.Redemptions = append(backup.Redemptions, r)
	}
	return rows.Err()
}

func (s *BackupService) exportActivity(backup *BackupData) error {
	query := "SELECT id, family_id, user_id, type, task_id, points, occurred_at FROM activity ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var a ActivityBackup
		if err := rows.Scan(&a.ID, &a.FamilyID, &a.UserID, &a.Type, &a.TaskID, &a.Points, &a.OccurredAt); err != nil {
			return err
		}
		backup.Activity = append(backup.Activity, a)
	}
	return rows.Err()
}

func (s *BackupService) importFamilies(families []FamilyBackup) error {
	log.Printf("Importing %d families...", len(families))
	for _, f := range families {
		query := "INSERT INTO families (id, name, invite_code, max_members, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)"
		if _, err := s.db.Exec(query, f.ID, f.Name, f.InviteCode, f.MaxMembers, f.CreatedAt, f.UpdatedAt); err != nil {
			return fmt.Errorf("failed to import family %d: %w", f.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importUsers(users []UserBackup) error {
	log.Printf("Importing %d users...", len(users))
	for _, u := range users {
		query := `INSERT INTO users (id, email, password_hash, display_name, role, family_id,
			notifications_enabled, timezone, is_premium, points_balance,
			oauth_provider, oauth_subject, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := s.db.Exec(query, u.ID, u.Email, u.PasswordHash, u.DisplayName, u.Role, u.FamilyID,
			u.NotificationsEnabled, u.Timezone, u.IsPremium, u.PointsBalance,
			u.OAuthProvider, u.OAuthSubject, u.CreatedAt, u.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import user %d: %w", u.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importCategories(categories []CategoryBackup) error {
	log.Printf("Importing %d categories...", len(categories))
	for _, c := range categories {
		query := "INSERT INTO categories (id, family_id, name, color, icon, sort_order, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
		if _, err := s.db.Exec(query, c.ID, c.FamilyID, c.Name, c.Color, c.Icon, c.SortOrder, c.CreatedAt); err != nil {
			return fmt.Errorf("failed to import category %d: %w", c.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importTasks(tasks []TaskBackup) error {
	log.Printf("Importing %d tasks...", len(tasks))
	for _, t := range tasks {
		query := `INSERT INTO tasks (id, family_id, title, description, category_id,
			assigned_to, assigned_by, created_by, status, priority, due_date, points,
			requires_photo, is_recurring, recurrence_frequency, recurrence_interval,
			recurrence_days, escalation_level, completed_at, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := s.db.Exec(query, t.ID, t.FamilyID, t.Title, t.Description, t.CategoryID,
			t.AssignedTo, t.AssignedBy, t.CreatedBy, t.Status, t.Priority, t.DueDate, t.Points,
			t.RequiresPhoto, t.IsRecurring, t.RecurrenceFrequency, t.RecurrenceInterval,
			t.RecurrenceDays, t.EscalationLevel, t.CompletedAt, t.CreatedAt, t.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import task %d: %w", t.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importSubmissions(submissions []SubmissionBackup) error {
	log.Printf("Importing %d submissions...", len(submissions))
	for _, sub := range submissions {
		query := `INSERT INTO submissions (id, task_id, submitted_by, photo_key, note,
			status, submitted_at, reviewed_at, reviewed_by, validation_notes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := s.db.Exec(query, sub.ID, sub.TaskID, sub.SubmittedBy, sub.PhotoKey, sub.Note,
			sub.Status, sub.SubmittedAt, sub.ReviewedAt, sub.ReviewedBy, sub.ValidationNotes)
		if err != nil {
			return fmt.Errorf("failed to import submission %d: %w", sub.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importRewards(rewards []RewardBackup) error {
	log.Printf("Importing %d rewards...", len(rewards))
	for _, r := range rewards {
		query := "INSERT INTO rewards (id, family_id, title, description, points_cost, created_by, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"
		_, err := s.db.Exec(query, r.ID, r.FamilyID, r.Title, r.Description, r.PointsCost, r.CreatedBy, r.IsActive, r.CreatedAt, r.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import reward %d: %w", r.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importRedemptions(redemptions []RedemptionBackup) error {
	log.Printf("Importing %d redemptions...", len(redemptions))
	for _, r := range redemptions {
		query := "INSERT INTO redemptions (id, reward_id, user_id, points_spent, redeemed_at) VALUES (?, ?, ?, ?, ?)"
		if _, err := s.db.Exec(query, r.ID, r.RewardID, r.UserID, r.PointsSpent, r.RedeemedAt); err != nil {
			return fmt.Errorf("failed to import redemption %d: %w", r.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importActivity(activity []ActivityBackup) error {
	log.Printf("Importing %d activity events...", len(activity))
	for _, a := range activity {
		query := "INSERT INTO activity (id, family_id, user_id, type, task_id, points, occurred_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
		if _, err := s.db.Exec(query, a.ID, a.FamilyID, a.UserID, a.Type, a.TaskID, a.Points, a.OccurredAt); err != nil {
			return fmt.Errorf("failed to import activity %d: %w", a.ID, err)
		}
	}
	return nil
}
