package service

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"typeb/internal/database"
	"typeb/internal/models"
	"typeb/internal/repository"
	"typeb/internal/validation"
)

var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotAssignee       = errors.New("task is not assigned to this user")
	ErrPhotoRequired     = errors.New("task requires a photo submission to complete")
	ErrAssigneeNotMember = errors.New("assignee is not a member of this family")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo       *repository.TaskRepository
	familyRepo     *repository.FamilyRepository
	userRepo       *repository.UserRepository
	submissionRepo *repository.SubmissionRepository
	activityRepo   *repository.ActivityRepository
	familyService  *FamilyService
	photos         *PhotoService
}

// NewTaskService creates a new task service
func NewTaskService(taskRepo *repository.TaskRepository, familyRepo *repository.FamilyRepository, userRepo *repository.UserRepository, submissionRepo *repository.SubmissionRepository, activityRepo *repository.ActivityRepository, familyService *FamilyService, photos *PhotoService) *TaskService {
	return &TaskService{
		taskRepo:       taskRepo,
		familyRepo:     familyRepo,
		userRepo:       userRepo,
		submissionRepo: submissionRepo,
		activityRepo:   activityRepo,
		familyService:  familyService,
		photos:         photos,
	}
}

// CreateTaskRequest carries everything needed to create a task
type CreateTaskRequest struct {
	Title         string
	Description   string
	CategoryID    *int64
	AssignedTo    *int64
	Priority      models.TaskPriority
	DueDate       *time.Time
	Points        int
	RequiresPhoto bool
	IsRecurring   bool
	Recurrence    *models.RecurrencePattern
}

// CreateTask creates a task in the actor's family (parent only)
func (s *TaskService) CreateTask(actorID, familyID int64, req CreateTaskRequest) (*models.Task, error) {
	if _, err := s.familyService.VerifyParent(actorID, familyID); err != nil {
		return nil, err
	}

	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}

	if errs := validation.ValidateCreateTaskInput(validation.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Points:      req.Points,
		IsRecurring: req.IsRecurring,
		Recurrence:  req.Recurrence,
	}); len(errs) > 0 {
		return nil, errs
	}

	if req.AssignedTo != nil {
		if _, err := s.familyService.VerifyMember(*req.AssignedTo, familyID); err != nil {
			return nil, ErrAssigneeNotMember
		}
	}
	if req.CategoryID != nil {
		category, err := s.familyRepo.GetCategoryByID(*req.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil || category.FamilyID != familyID {
			return nil, ErrCategoryNotFound
		}
	}

	task := &models.Task{
		FamilyID:      familyID,
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		CategoryID:    req.CategoryID,
		AssignedTo:    req.AssignedTo,
		AssignedBy:    actorID,
		CreatedBy:     actorID,
		Status:        models.TaskPending,
		Priority:      req.Priority,
		DueDate:       req.DueDate,
		Points:        req.Points,
		RequiresPhoto: req.RequiresPhoto,
		IsRecurring:   req.IsRecurring,
		Recurrence:    req.Recurrence,
	}

	created, err := s.taskRepo.CreateTask(task)
	if err != nil {
		return nil, err
	}

	if err := s.activityRepo.Record(familyID, actorID, models.ActivityTaskCreated, &created.ID, 0); err != nil {
		return nil, err
	}

	return created, nil
}

// GetTask loads a task visible to the actor
func (s *TaskService) GetTask(actorID, taskID int64) (*models.TaskWithCategory, error) {
	task, err := s.taskRepo.GetTaskByID(taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	if _, err := s.familyService.VerifyMember(actorID, task.FamilyID); err != nil {
		return nil, err
	}

	detail := &models.TaskWithCategory{Task: *task}
	if task.CategoryID != nil {
		category, err := s.familyRepo.GetCategoryByID(*task.CategoryID)
		if err != nil {
			return nil, err
		}
		detail.Category = category
	}
	return detail, nil
}

// ListTasks lists tasks in the actor's family. Children only see their own
// assignments.
func (s *TaskService) ListTasks(actorID, familyID int64, filter models.TaskFilter) ([]models.Task, error) {
	actor, err := s.familyService.VerifyMember(actorID, familyID)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.RoleChild {
		filter.AssignedTo = actorID
	}
	return s.taskRepo.ListTasks(familyID, filter)
}

// UpdateTask edits a task's fields (parent only)
func (s *TaskService) UpdateTask(actorID, taskID int64, req CreateTaskRequest) (*models.Task, error) {
	task, err := s.taskRepo.GetTaskByID(taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	if _, err := s.familyService.VerifyParent(actorID, task.FamilyID); err != nil {
		return nil, err
	}
	if task.Status.IsTerminal() {
		return nil, ErrInvalidTransition
	}

	if req.Priority == "" {
		req.Priority = task.Priority
	}

	if errs := validation.ValidateCreateTaskInput(validation.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Points:      req.Points,
		IsRecurring: req.IsRecurring,
		Recurrence:  req.Recurrence,
	}); len(errs) > 0 {
		return nil, errs
	}

	if req.AssignedTo != nil {
		if _, err := s.familyService.VerifyMember(*req.AssignedTo, task.FamilyID); err != nil {
			return nil, ErrAssigneeNotMember
		}
	}

	task.Title = strings.TrimSpace(req.Title)
	task.Description = req.Description
	task.CategoryID = req.CategoryID
	task.AssignedTo = req.AssignedTo
	task.Priority = req.Priority
	task.DueDate = req.DueDate
	task.Points = req.Points
	task.RequiresPhoto = req.RequiresPhoto
	task.IsRecurring = req.IsRecurring
	task.Recurrence = req.Recurrence

	if err := s.taskRepo.UpdateTask(task); err != nil {
		return nil, err
	}

	return s.taskRepo.GetTaskByID(taskID)
}

// ChangeStatus moves a task through its lifecycle. Parents may move any
// task; children only tasks assigned to them. Completing a photo-proof task
// must go through the submission flow.
func (s *TaskService) ChangeStatus(actorID, taskID int64, status models.TaskStatus) (*models.Task, error) {
	if !status.Valid() {
		return nil, validation.ValidationError{Field: "status", Message: "unknown status"}
	}

	task, err := s.taskRepo.GetTaskByID(taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}

	actor, err := s.familyService.VerifyMember(actorID, task.FamilyID)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.RoleChild {
		if task.AssignedTo == nil || *task.AssignedTo != actorID {
			return nil, ErrNotAssignee
		}
		if status == models.TaskCancelled {
			return nil, ErrNotParent
		}
	}

	if !ValidTransition(task.Status, status) {
		return nil, ErrInvalidTransition
	}
	if status == models.TaskCompleted && task.RequiresPhoto {
		return nil, ErrPhotoRequired
	}

	tx, err := s.familyRepo.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.taskRepo.UpdateStatus(tx, taskID, status); err != nil {
		return nil, err
	}

	if status == models.TaskCompleted {
		if err := s.completeInTx(tx, task, actorID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return s.taskRepo.GetTaskByID(taskID)
}

// completeInTx records completion side effects: the activity events, the
// points award to the assignee, and the next recurring instance
func (s *TaskService) completeInTx(tx database.DBTX, task *models.Task, actorID int64) error {
	assignee := actorID
	if task.AssignedTo != nil {
		assignee = *task.AssignedTo
	}

	if err := s.activityRepo.RecordTx(tx, task.FamilyID, assignee, models.ActivityTaskCompleted, &task.ID, 0); err != nil {
		return err
	}

	if task.Points > 0 {
		if err := s.userRepo.AddPoints(tx, assignee, task.Points); err != nil {
			return err
		}
		if err := s.activityRepo.RecordTx(tx, task.FamilyID, assignee, models.ActivityPointsAwarded, &task.ID, task.Points); err != nil {
			return err
		}
	}

	if task.IsRecurring && task.Recurrence != nil {
		next := NextInstance(task, time.Now())
		if _, err := s.taskRepo.CreateTaskTx(tx, next); err != nil {
			return err
		}
	}

	return nil
}

// NextInstance builds the follow-up task spawned when a recurring task
// completes. The due date advances from the old due date, or from now for
// tasks without one.
func NextInstance(task *models.Task, now time.Time) *models.Task {
	base := now
	if task.DueDate != nil {
		base = *task.DueDate
	}
	due := NextDueDate(task.Recurrence, base)
	// If the schedule has fallen behind, catch up to the future
	for !due.After(now) {
		due = NextDueDate(task.Recurrence, due)
	}

	return &models.Task{
		FamilyID:      task.FamilyID,
		Title:         task.Title,
		Description:   task.Description,
		CategoryID:    task.CategoryID,
		AssignedTo:    task.AssignedTo,
		AssignedBy:    task.AssignedBy,
		CreatedBy:     task.CreatedBy,
		Status:        models.TaskPending,
		Priority:      task.Priority,
		DueDate:       &due,
		Points:        task.Points,
		RequiresPhoto: task.RequiresPhoto,
		IsRecurring:   true,
		Recurrence:    task.Recurrence,
	}
}

// DeleteTask removes a task and the stored photos of its submissions
// (parent only)
func (s *TaskService) DeleteTask(ctx context.Context, actorID, taskID int64) error {
	task, err := s.taskRepo.GetTaskByID(taskID)
	if err != nil {
		return err
	}
	if task == nil {
		return ErrTaskNotFound
	}
	if _, err := s.familyService.VerifyParent(actorID, task.FamilyID); err != nil {
		return err
	}

	submissions, err := s.submissionRepo.GetSubmissionsForTask(taskID)
	if err != nil {
		return err
	}
	if err := s.taskRepo.DeleteTask(taskID); err != nil {
		return err
	}
	for _, sub := range submissions {
		if err := s.photos.DeletePhoto(ctx, sub.PhotoKey); err != nil {
			log.Printf("failed to delete photo %s for task %d: %v", sub.PhotoKey, taskID, err)
		}
	}
	return nil
}

// ValidTransition reports whether a task may move from one status to another
func ValidTransition(from, to models.TaskStatus) bool {
	if from == to {
		return false
	}
	switch from {
	case models.TaskPending:
		return to == models.TaskInProgress || to == models.TaskCompleted || to == models.TaskCancelled
	case models.TaskInProgress:
		return to == models.TaskCompleted || to == models.TaskCancelled
	default:
		return false
	}
}

// NextDueDate advances a due date per the recurrence pattern
func NextDueDate(p *models.RecurrencePattern, from time.Time) time.Time {
	switch p.Frequency {
	case models.RecurrenceDaily:
		return from.AddDate(0, 0, p.Interval)

	case models.RecurrenceWeekly:
		if len(p.DaysOfWeek) == 0 {
			return from.AddDate(0, 0, 7*p.Interval)
		}
		days := append([]time.Weekday(nil), p.DaysOfWeek...)
		sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

		// Next listed weekday strictly after from, within the same week
		for _, d := range days {
			if d > from.Weekday() {
				return from.AddDate(0, 0, int(d-from.Weekday()))
			}
		}
		// Wrap to the first listed weekday, interval weeks ahead
		delta := int(days[0]-from.Weekday()) + 7*p.Interval
		return from.AddDate(0, 0, delta)

	case models.RecurrenceMonthly:
		return addMonthsClamped(from, p.Interval)
	}
	return from
}

// addMonthsClamped adds months keeping the day-of-month, clamping to the
// last day of shorter months (Jan 31 + 1 month = Feb 28/29)
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	firstOfTarget := time.Date(year, month+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// EscalateOverdueTasks promotes overdue tasks one level and records each
// escalation as an activity event. Called periodically from the server's
// background sweep, which logs the returned count.
func (s *TaskService) EscalateOverdueTasks(now time.Time) (int, error) {
	tasks, err := s.taskRepo.GetOverdueTasks(now)
	if err != nil {
		return 0, err
	}

	escalated := 0
	for _, task := range tasks {
		level := task.EscalationLevel + 1
		if level > models.MaxEscalationLevel {
			continue
		}
		if err := s.taskRepo.SetEscalationLevel(task.ID, level); err != nil {
			log.Printf("failed to escalate task %d: %v", task.ID, err)
			continue
		}
		actor := task.AssignedBy
		if err := s.activityRepo.Record(task.FamilyID, actor, models.ActivityTaskEscalated, &task.ID, 0); err != nil {
			log.Printf("failed to record escalation for task %d: %v", task.ID, err)
		}
		escalated++
	}

	return escalated, nil
}
