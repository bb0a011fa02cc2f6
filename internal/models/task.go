package models

import "time"

// TaskStatus is the lifecycle state of a task
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskCancelled  TaskStatus = "cancelled"
)

// Valid reports whether the status is one of the known values
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted, TaskCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions
func (s TaskStatus) IsTerminal() bool {
	return s == TaskCompleted || s == TaskCancelled
}

// TaskPriority orders tasks by urgency
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// Valid reports whether the priority is one of the known values
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// RecurrenceFrequency is the unit a recurring task repeats on
type RecurrenceFrequency string

const (
	RecurrenceDaily   RecurrenceFrequency = "daily"
	RecurrenceWeekly  RecurrenceFrequency = "weekly"
	RecurrenceMonthly RecurrenceFrequency = "monthly"
)

// RecurrencePattern describes how a recurring task repeats
type RecurrencePattern struct {
	Frequency RecurrenceFrequency
	// Interval is the number of frequency units between occurrences (>= 1)
	Interval int
	// DaysOfWeek restricts weekly recurrence to specific weekdays
	// (0 = Sunday .. 6 = Saturday)
	DaysOfWeek []time.Weekday
}

// MaxEscalationLevel caps how far an overdue task can be escalated
const MaxEscalationLevel = 3

// Task represents a chore assigned within a family
type Task struct {
	ID              int64
	FamilyID        int64
	Title           string
	Description     string
	CategoryID      *int64
	AssignedTo      *int64
	AssignedBy      int64
	CreatedBy       int64
	Status          TaskStatus
	Priority        TaskPriority
	DueDate         *time.Time
	Points          int
	RequiresPhoto   bool
	IsRecurring     bool
	Recurrence      *RecurrencePattern
	EscalationLevel int
	CompletedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsOverdue reports whether a non-terminal task is past its due date
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Status.IsTerminal() {
		return false
	}
	return now.After(*t.DueDate)
}

// TaskWithCategory pairs a task with its embedded category for API responses
type TaskWithCategory struct {
	Task     Task
	Category *Category
}

// TaskFilter narrows task listings
type TaskFilter struct {
	Status     TaskStatus
	AssignedTo int64
	CategoryID int64
	DueBefore  *time.Time
}
