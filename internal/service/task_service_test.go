package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"typeb/internal/models"
)

func TestValidTransition(t *testing.T) {
	tests := []struct {
		name string
		from models.TaskStatus
		to   models.TaskStatus
		want bool
	}{
		{"pending to in_progress", models.TaskPending, models.TaskInProgress, true},
		{"pending to completed", models.TaskPending, models.TaskCompleted, true},
		{"pending to cancelled", models.TaskPending, models.TaskCancelled, true},
		{"in_progress to completed", models.TaskInProgress, models.TaskCompleted, true},
		{"in_progress to cancelled", models.TaskInProgress, models.TaskCancelled, true},
		{"in_progress back to pending", models.TaskInProgress, models.TaskPending, false},
		{"completed to anything", models.TaskCompleted, models.TaskPending, false},
		{"cancelled to anything", models.TaskCancelled, models.TaskInProgress, false},
		{"no self transition", models.TaskPending, models.TaskPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("ValidTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestNextDueDate(t *testing.T) {
	// Wednesday
	base := time.Date(2026, 3, 4, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		pattern models.RecurrencePattern
		from    time.Time
		want    time.Time
	}{
		{
			name:    "daily",
			pattern: models.RecurrencePattern{Frequency: models.RecurrenceDaily, Interval: 1},
			from:    base,
			want:    time.Date(2026, 3, 5, 18, 0, 0, 0, time.UTC),
		},
		{
			name:    "every third day",
			pattern: models.RecurrencePattern{Frequency: models.RecurrenceDaily, Interval: 3},
			from:    base,
			want:    time.Date(2026, 3, 7, 18, 0, 0, 0, time.UTC),
		},
		{
			name:    "weekly without days",
			pattern: models.RecurrencePattern{Frequency: models.RecurrenceWeekly, Interval: 1},
			from:    base,
			want:    time.Date(2026, 3, 11, 18, 0, 0, 0, time.UTC),
		},
		{
			name: "weekly advances to next listed day in same week",
			pattern: models.RecurrencePattern{
				Frequency:  models.RecurrenceWeekly,
				Interval:   1,
				DaysOfWeek: []time.Weekday{time.Monday, time.Friday},
			},
			from: base,
			want: time.Date(2026, 3, 6, 18, 0, 0, 0, time.UTC),
		},
		{
			name: "weekly wraps to first listed day next interval",
			pattern: models.RecurrencePattern{
				Frequency:  models.RecurrenceWeekly,
				Interval:   1,
				DaysOfWeek: []time.Weekday{time.Monday},
			},
			from: base,
			want: time.Date(2026, 3, 9, 18, 0, 0, 0, time.UTC),
		},
		{
			name: "weekly wrap honors interval",
			pattern: models.RecurrencePattern{
				Frequency:  models.RecurrenceWeekly,
				Interval:   2,
				DaysOfWeek: []time.Weekday{time.Monday},
			},
			from: base,
			want: time.Date(2026, 3, 16, 18, 0, 0, 0, time.UTC),
		},
		{
			name:    "monthly",
			pattern: models.RecurrencePattern{Frequency: models.RecurrenceMonthly, Interval: 1},
			from:    time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC),
			want:    time.Date(2026, 4, 15, 9, 0, 0, 0, time.UTC),
		},
		{
			name:    "monthly clamps jan 31 to feb 28",
			pattern: models.RecurrencePattern{Frequency: models.RecurrenceMonthly, Interval: 1},
			from:    time.Date(2026, 1, 31, 9, 0, 0, 0, time.UTC),
			want:    time.Date(2026, 2, 28, 9, 0, 0, 0, time.UTC),
		},
		{
			name:    "monthly clamps to feb 29 on leap year",
			pattern: models.RecurrencePattern{Frequency: models.RecurrenceMonthly, Interval: 1},
			from:    time.Date(2028, 1, 31, 9, 0, 0, 0, time.UTC),
			want:    time.Date(2028, 2, 29, 9, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextDueDate(&tt.pattern, tt.from)
			if !got.Equal(tt.want) {
				t.Errorf("NextDueDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextInstance(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	due := time.Date(2026, 3, 9, 18, 0, 0, 0, time.UTC)
	categoryID := int64(4)
	assignee := int64(9)

	task := &models.Task{
		FamilyID:      1,
		Title:         "Empty the dishwasher",
		Description:   "Before dinner",
		CategoryID:    &categoryID,
		AssignedTo:    &assignee,
		AssignedBy:    2,
		CreatedBy:     2,
		Status:        models.TaskCompleted,
		Priority:      models.PriorityMedium,
		DueDate:       &due,
		Points:        10,
		RequiresPhoto: true,
		IsRecurring:   true,
		Recurrence:    &models.RecurrencePattern{Frequency: models.RecurrenceDaily, Interval: 1},
	}

	next := NextInstance(task, now)

	if next.Status != models.TaskPending {
		t.Errorf("next instance status = %q, want pending", next.Status)
	}
	if next.DueDate == nil {
		t.Fatal("next instance should carry a due date")
	}
	want := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	if !next.DueDate.Equal(want) {
		t.Errorf("next due date = %v, want %v", next.DueDate, want)
	}
	if next.AssignedTo == nil || *next.AssignedTo != assignee {
		t.Errorf("next instance should keep the assignee")
	}
	if !next.RequiresPhoto {
		t.Error("next instance should keep requires_photo")
	}
	if next.ID != 0 {
		t.Error("next instance should not carry the old id")
	}
}

func TestNextInstanceCatchesUpBehindSchedule(t *testing.T) {
	// Task fell a week behind; the next instance must land in the future,
	// not on the next stale slot
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	due := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)

	task := &models.Task{
		FamilyID:    1,
		Title:       "Water the plants",
		AssignedBy:  2,
		CreatedBy:   2,
		DueDate:     &due,
		IsRecurring: true,
		Recurrence:  &models.RecurrencePattern{Frequency: models.RecurrenceDaily, Interval: 1},
	}

	next := NextInstance(task, now)
	if !next.DueDate.After(now) {
		t.Errorf("next due date %v should be after now %v", next.DueDate, now)
	}
	want := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	if !next.DueDate.Equal(want) {
		t.Errorf("next due date = %v, want %v", next.DueDate, want)
	}
}

func TestNextInstanceWithoutDueDate(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	task := &models.Task{
		FamilyID:    1,
		Title:       "Take out recycling",
		AssignedBy:  2,
		CreatedBy:   2,
		IsRecurring: true,
		Recurrence:  &models.RecurrencePattern{Frequency: models.RecurrenceWeekly, Interval: 1},
	}

	next := NextInstance(task, now)
	if next.DueDate == nil {
		t.Fatal("next instance should gain a due date")
	}
	want := now.AddDate(0, 0, 7)
	if !next.DueDate.Equal(want) {
		t.Errorf("next due date = %v, want %v", next.DueDate, want)
	}
}

func TestGetTaskEmbedsCategory(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	env := newServiceTestEnv(t)

	detail, err := env.tasks.GetTask(env.childID, env.taskID)
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if detail.Category == nil {
		t.Fatal("GetTask() returned no embedded category")
	}
	if detail.Category.ID != env.categoryID {
		t.Errorf("category id = %d, want %d", detail.Category.ID, env.categoryID)
	}
	if detail.Category.Name != "Chores" {
		t.Errorf("category name = %q, want %q", detail.Category.Name, "Chores")
	}
}

func TestDeleteTaskRemovesSubmissions(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	env := newServiceTestEnv(t)
	ctx := context.Background()

	if _, err := env.submissions.Submit(ctx, env.childID, env.taskID, nil, 0, "", "all done"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if err := env.tasks.DeleteTask(ctx, env.parentID, env.taskID); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}

	if _, err := env.tasks.GetTask(env.parentID, env.taskID); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("GetTask() after delete error = %v, want %v", err, ErrTaskNotFound)
	}
	submissions, err := env.subRepo.GetSubmissionsForTask(env.taskID)
	if err != nil {
		t.Fatalf("GetSubmissionsForTask() error = %v", err)
	}
	if len(submissions) != 0 {
		t.Errorf("submissions after task delete = %d, want 0", len(submissions))
	}
}
