package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"typeb/internal/database"
	"typeb/internal/models"
)

const submissionColumns = `id, task_id, submitted_by, photo_key, note,
	status, submitted_at, reviewed_at, reviewed_by, validation_notes`

// SubmissionRepository handles database operations for task submissions
type SubmissionRepository struct {
	db *database.DB
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *database.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func scanSubmission(row interface{ Scan(...interface{}) error }) (*models.Submission, error) {
	s := &models.Submission{}
	err := row.Scan(
		&s.ID,
		&s.TaskID,
		&s.SubmittedBy,
		&s.PhotoKey,
		&s.Note,
		&s.Status,
		&s.SubmittedAt,
		&s.ReviewedAt,
		&s.ReviewedBy,
		&s.ValidationNotes,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan submission: %w", err)
	}
	return s, nil
}

// CreateSubmission records a completion attempt for a task
func (r *SubmissionRepository) CreateSubmission(taskID, submittedBy int64, photoKey, note string) (*models.Submission, error) {
	query := `INSERT INTO submissions (task_id, submitted_by, photo_key, note, status)
		VALUES (?, ?, ?, ?, ?)`
	id, err := r.db.ExecReturningID(query, taskID, submittedBy, photoKey, note, string(models.SubmissionPending))
	if err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}
	return r.GetSubmissionByID(id)
}

// GetSubmissionByID retrieves a submission by id
func (r *SubmissionRepository) GetSubmissionByID(id int64) (*models.Submission, error) {
	query := "SELECT " + submissionColumns + " FROM submissions WHERE id = ?"
	return scanSubmission(r.db.QueryRow(query, id))
}

// HasPendingSubmission reports whether a task already has an unreviewed
// submission
func (r *SubmissionRepository) HasPendingSubmission(taskID int64) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM submissions WHERE task_id = ? AND status = ?"
	err := r.db.QueryRow(query, taskID, string(models.SubmissionPending)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check pending submission: %w", err)
	}
	return count > 0, nil
}

// GetPendingQueue returns a family's pending submissions joined with their
// tasks and submitter names, oldest first
func (r *SubmissionRepository) GetPendingQueue(familyID int64) ([]models.QueueEntry, error) {
	query := `
		SELECT s.id, s.task_id, s.submitted_by, s.photo_key, s.note,
		       s.status, s.submitted_at, s.reviewed_at, s.reviewed_by, s.validation_notes,
		       ` + taskColumns2("t") + `,
		       u.display_name
		FROM submissions s
		INNER JOIN tasks t ON s.task_id = t.id
		INNER JOIN users u ON s.submitted_by = u.id
		WHERE t.family_id = ? AND s.status = ?
		ORDER BY s.submitted_at ASC
	`
	rows, err := r.db.Query(query, familyID, string(models.SubmissionPending))
	if err != nil {
		return nil, fmt.Errorf("failed to query validation queue: %w", err)
	}
	defer rows.Close()

	var entries []models.QueueEntry
	for rows.Next() {
		var entry models.QueueEntry
		var frequency, days string
		var interval int
		err := rows.Scan(
			&entry.Submission.ID,
			&entry.Submission.TaskID,
			&entry.Submission.SubmittedBy,
			&entry.Submission.PhotoKey,
			&entry.Submission.Note,
			&entry.Submission.Status,
			&entry.Submission.SubmittedAt,
			&entry.Submission.ReviewedAt,
			&entry.Submission.ReviewedBy,
			&entry.Submission.ValidationNotes,
			&entry.Task.ID,
			&entry.Task.FamilyID,
			&entry.Task.Title,
			&entry.Task.Description,
			&entry.Task.CategoryID,
			&entry.Task.AssignedTo,
			&entry.Task.AssignedBy,
			&entry.Task.CreatedBy,
			&entry.Task.Status,
			&entry.Task.Priority,
			&entry.Task.DueDate,
			&entry.Task.Points,
			&entry.Task.RequiresPhoto,
			&entry.Task.IsRecurring,
			&frequency,
			&interval,
			&days,
			&entry.Task.EscalationLevel,
			&entry.Task.CompletedAt,
			&entry.Task.CreatedAt,
			&entry.Task.UpdatedAt,
			&entry.SubmitterName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan queue entry: %w", err)
		}
		if entry.Task.IsRecurring && frequency != "" {
			entry.Task.Recurrence = &models.RecurrencePattern{
				Frequency:  models.RecurrenceFrequency(frequency),
				Interval:   interval,
				DaysOfWeek: daysFromCSV(days),
			}
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// Review marks a submission approved or rejected inside the caller's
// transaction
func (r *SubmissionRepository) Review(q database.DBTX, submissionID, reviewerID int64, status models.SubmissionStatus, notes string) error {
	query := `UPDATE submissions SET status = ?, reviewed_at = ?, reviewed_by = ?,
		validation_notes = ? WHERE id = ?`
	if _, err := q.Exec(query, string(status), time.Now(), reviewerID, notes, submissionID); err != nil {
		return fmt.Errorf("failed to review submission: %w", err)
	}
	return nil
}

// GetSubmissionsForTask lists a task's submissions, newest first
func (r *SubmissionRepository) GetSubmissionsForTask(taskID int64) ([]models.Submission, error) {
	query := "SELECT " + submissionColumns + " FROM submissions WHERE task_id = ? ORDER BY submitted_at DESC"
	rows, err := r.db.Query(query, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	var submissions []models.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, *s)
	}

	return submissions, rows.Err()
}

// taskColumns2 qualifies the task column list with a table alias for joins
func taskColumns2(alias string) string {
	cols := []string{
		"id", "family_id", "title", "description", "category_id",
		"assigned_to", "assigned_by", "created_by", "status", "priority",
		"due_date", "points", "requires_photo", "is_recurring",
		"recurrence_frequency", "recurrence_interval", "recurrence_days",
		"escalation_level", "completed_at", "created_at", "updated_at",
	}
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = alias + "." + c
	}
	return strings.Join(out, ", ")
}
