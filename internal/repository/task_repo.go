package repository

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"typeb/internal/database"
	"typeb/internal/models"
)

const taskColumns = `id, family_id, title, description, category_id,
	assigned_to, assigned_by, created_by, status, priority, due_date, points,
	requires_photo, is_recurring, recurrence_frequency, recurrence_interval,
	recurrence_days, escalation_level, completed_at, created_at, updated_at`

// TaskRepository handles database operations for tasks
type TaskRepository struct {
	db *database.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *database.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// daysToCSV encodes weekdays as a comma-separated string for storage
func daysToCSV(days []time.Weekday) string {
	if len(days) == 0 {
		return ""
	}
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(int(d))
	}
	return strings.Join(parts, ",")
}

// daysFromCSV decodes a stored weekday list, skipping malformed entries
func daysFromCSV(s string) []time.Weekday {
	if s == "" {
		return nil
	}
	var days []time.Weekday
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 || n > 6 {
			continue
		}
		days = append(days, time.Weekday(n))
	}
	return days
}

func recurrenceColumns(t *models.Task) (string, int, string) {
	if !t.IsRecurring || t.Recurrence == nil {
		return "", 1, ""
	}
	return string(t.Recurrence.Frequency), t.Recurrence.Interval, daysToCSV(t.Recurrence.DaysOfWeek)
}

func scanTask(row interface{ Scan(...interface{}) error }) (*models.Task, error) {
	task := &models.Task{}
	var frequency, days string
	var interval int
	err := row.Scan(
		&task.ID,
		&task.FamilyID,
		&task.Title,
		&task.Description,
		&task.CategoryID,
		&task.AssignedTo,
		&task.AssignedBy,
		&task.CreatedBy,
		&task.Status,
		&task.Priority,
		&task.DueDate,
		&task.Points,
		&task.RequiresPhoto,
		&task.IsRecurring,
		&frequency,
		&interval,
		&days,
		&task.EscalationLevel,
		&task.CompletedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}

	if task.IsRecurring && frequency != "" {
		task.Recurrence = &models.RecurrencePattern{
			Frequency:  models.RecurrenceFrequency(frequency),
			Interval:   interval,
			DaysOfWeek: daysFromCSV(days),
		}
	}

	return task, nil
}

// CreateTask inserts a new task
func (r *TaskRepository) CreateTask(task *models.Task) (*models.Task, error) {
	frequency, interval, days := recurrenceColumns(task)

	query := `INSERT INTO tasks (family_id, title, description, category_id,
		assigned_to, assigned_by, created_by, status, priority, due_date,
		points, requires_photo, is_recurring, recurrence_frequency,
		recurrence_interval, recurrence_days)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	id, err := r.db.ExecReturningID(query,
		task.FamilyID, task.Title, task.Description, task.CategoryID,
		task.AssignedTo, task.AssignedBy, task.CreatedBy, string(task.Status),
		string(task.Priority), task.DueDate, task.Points, task.RequiresPhoto,
		task.IsRecurring, frequency, interval, days,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return r.GetTaskByID(id)
}

// GetTaskByID retrieves a task by id
func (r *TaskRepository) GetTaskByID(id int64) (*models.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE id = ?"
	return scanTask(r.db.QueryRow(query, id))
}

// ListTasks retrieves a family's tasks, newest first, narrowed by filter
func (r *TaskRepository) ListTasks(familyID int64, filter models.TaskFilter) ([]models.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE family_id = ?"
	args := []interface{}{familyID}

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filter.Status))
	}
	if filter.AssignedTo != 0 {
		query += " AND assigned_to = ?"
		args = append(args, filter.AssignedTo)
	}
	if filter.CategoryID != 0 {
		query += " AND category_id = ?"
		args = append(args, filter.CategoryID)
	}
	if filter.DueBefore != nil {
		query += " AND due_date IS NOT NULL AND due_date < ?"
		args = append(args, *filter.DueBefore)
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}

	return tasks, rows.Err()
}

// UpdateTask persists a task's editable fields
func (r *TaskRepository) UpdateTask(task *models.Task) error {
	frequency, interval, days := recurrenceColumns(task)

	query := `UPDATE tasks SET title = ?, description = ?, category_id = ?,
		assigned_to = ?, priority = ?, due_date = ?, points = ?,
		requires_photo = ?, is_recurring = ?, recurrence_frequency = ?,
		recurrence_interval = ?, recurrence_days = ?,
		updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	_, err := r.db.Exec(query,
		task.Title, task.Description, task.CategoryID, task.AssignedTo,
		string(task.Priority), task.DueDate, task.Points, task.RequiresPhoto,
		task.IsRecurring, frequency, interval, days, task.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

// UpdateStatus moves a task to a new status inside the caller's transaction.
// CompletedAt is set when entering completed and cleared otherwise.
func (r *TaskRepository) UpdateStatus(q database.DBTX, taskID int64, status models.TaskStatus) error {
	var completedAt interface{}
	if status == models.TaskCompleted {
		completedAt = time.Now()
	}
	query := "UPDATE tasks SET status = ?, completed_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := q.Exec(query, string(status), completedAt, taskID); err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}
	return nil
}

// CreateTaskTx inserts a task inside the caller's transaction; used when
// spawning the next instance of a recurring task on approval.
func (r *TaskRepository) CreateTaskTx(q database.DBTX, task *models.Task) (int64, error) {
	frequency, interval, days := recurrenceColumns(task)

	query := `INSERT INTO tasks (family_id, title, description, category_id,
		assigned_to, assigned_by, created_by, status, priority, due_date,
		points, requires_photo, is_recurring, recurrence_frequency,
		recurrence_interval, recurrence_days)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	id, err := q.ExecReturningID(query,
		task.FamilyID, task.Title, task.Description, task.CategoryID,
		task.AssignedTo, task.AssignedBy, task.CreatedBy, string(task.Status),
		string(task.Priority), task.DueDate, task.Points, task.RequiresPhoto,
		task.IsRecurring, frequency, interval, days,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create task: %w", err)
	}
	return id, nil
}

// GetOverdueTasks returns non-terminal tasks past their due date that have
// not reached the escalation cap
func (r *TaskRepository) GetOverdueTasks(now time.Time) ([]models.Task, error) {
	query := "SELECT " + taskColumns + ` FROM tasks
		WHERE status IN (?, ?) AND due_date IS NOT NULL AND due_date < ?
		AND escalation_level < ?`
	rows, err := r.db.Query(query,
		string(models.TaskPending), string(models.TaskInProgress), now, models.MaxEscalationLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to query overdue tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}

	return tasks, rows.Err()
}

// SetEscalationLevel records an escalation sweep result
func (r *TaskRepository) SetEscalationLevel(taskID int64, level int) error {
	query := "UPDATE tasks SET escalation_level = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.Exec(query, level, taskID); err != nil {
		return fmt.Errorf("failed to set escalation level: %w", err)
	}
	return nil
}

// DeleteTask removes a task and its submissions via FK cascade
func (r *TaskRepository) DeleteTask(taskID int64) error {
	if _, err := r.db.Exec("DELETE FROM tasks WHERE id = ?", taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// CountCompletedTasks returns how many tasks a user has completed
func (r *TaskRepository) CountCompletedTasks(userID int64) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM tasks WHERE assigned_to = ? AND status = ?"
	err := r.db.QueryRow(query, userID, string(models.TaskCompleted)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count completed tasks: %w", err)
	}
	return count, nil
}
