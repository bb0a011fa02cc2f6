package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"typeb/internal/database"
	"typeb/internal/models"
	"typeb/internal/repository"
)

// serviceTestEnv wires the task and submission services against a seeded
// sqlite database: one family with a parent, a child, a category, and a
// 10-point task assigned to the child.
type serviceTestEnv struct {
	tasks       *TaskService
	submissions *SubmissionService
	userRepo    *repository.UserRepository
	subRepo     *repository.SubmissionRepository
	familyID    int64
	parentID    int64
	childID     int64
	categoryID  int64
	taskID      int64
}

func newServiceTestEnv(t *testing.T) *serviceTestEnv {
	t.Helper()

	db := openServiceTestDB(t)
	env := &serviceTestEnv{}
	env.seed(t, db)

	userRepo := repository.NewUserRepository(db)
	familyRepo := repository.NewFamilyRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	familyService := NewFamilyService(familyRepo, userRepo, activityRepo)
	photos := &PhotoService{}
	env.tasks = NewTaskService(taskRepo, familyRepo, userRepo, submissionRepo, activityRepo, familyService, photos)
	env.submissions = NewSubmissionService(submissionRepo, taskRepo, userRepo, familyRepo, activityRepo, familyService, photos)
	env.userRepo = userRepo
	env.subRepo = submissionRepo
	return env
}

func (env *serviceTestEnv) seed(t *testing.T, db *database.DB) {
	t.Helper()

	var err error
	env.familyID, err = db.ExecReturningID(
		"INSERT INTO families (name, invite_code, max_members) VALUES (?, ?, ?)",
		"The Does", "EF34AB", 10)
	if err != nil {
		t.Fatalf("Failed to seed family: %v", err)
	}

	env.parentID, err = db.ExecReturningID(
		`INSERT INTO users (email, password_hash, display_name, role, family_id, timezone)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		"parent@example.com", "x", "Parent", "parent", env.familyID, "UTC")
	if err != nil {
		t.Fatalf("Failed to seed parent: %v", err)
	}

	env.childID, err = db.ExecReturningID(
		`INSERT INTO users (email, password_hash, display_name, role, family_id, timezone)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		"kid@example.com", "x", "Kid", "child", env.familyID, "UTC")
	if err != nil {
		t.Fatalf("Failed to seed child: %v", err)
	}

	env.categoryID, err = db.ExecReturningID(
		"INSERT INTO categories (family_id, name, color, icon, sort_order) VALUES (?, ?, ?, ?, ?)",
		env.familyID, "Chores", "#4caf50", "broom", 1)
	if err != nil {
		t.Fatalf("Failed to seed category: %v", err)
	}

	due := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)
	env.taskID, err = db.ExecReturningID(
		`INSERT INTO tasks (family_id, title, description, category_id, assigned_to,
		 assigned_by, created_by, status, priority, due_date, points, requires_photo,
		 is_recurring, recurrence_frequency, recurrence_interval, recurrence_days)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		env.familyID, "Feed the dog", "", env.categoryID, env.childID,
		env.parentID, env.parentID, "pending", "medium", due, 10, false,
		false, "", 1, "")
	if err != nil {
		t.Fatalf("Failed to seed task: %v", err)
	}
}

func TestApproveRefusesCompletedTask(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	env := newServiceTestEnv(t)
	ctx := context.Background()

	submission, err := env.submissions.Submit(ctx, env.childID, env.taskID, nil, 0, "", "all done")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	// The parent completes the task directly while the submission is
	// still pending; the child is paid on this path.
	if _, err := env.tasks.ChangeStatus(env.parentID, env.taskID, models.TaskCompleted); err != nil {
		t.Fatalf("ChangeStatus() error = %v", err)
	}
	child, err := env.userRepo.GetUserByID(env.childID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if child.PointsBalance != 10 {
		t.Fatalf("balance after direct complete = %d, want 10", child.PointsBalance)
	}

	if _, err := env.submissions.Approve(env.parentID, submission.ID, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Approve() on completed task error = %v, want %v", err, ErrInvalidTransition)
	}

	child, err = env.userRepo.GetUserByID(env.childID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if child.PointsBalance != 10 {
		t.Errorf("balance after refused approval = %d, want 10", child.PointsBalance)
	}
}

func TestRejectRefusesCompletedTask(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	env := newServiceTestEnv(t)
	ctx := context.Background()

	submission, err := env.submissions.Submit(ctx, env.childID, env.taskID, nil, 0, "", "all done")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if _, err := env.tasks.ChangeStatus(env.parentID, env.taskID, models.TaskCompleted); err != nil {
		t.Fatalf("ChangeStatus() error = %v", err)
	}

	if _, err := env.submissions.Reject(env.parentID, submission.ID, "blurry"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Reject() on completed task error = %v, want %v", err, ErrInvalidTransition)
	}

	detail, err := env.tasks.GetTask(env.parentID, env.taskID)
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if detail.Task.Status != models.TaskCompleted {
		t.Errorf("task status after refused rejection = %s, want %s", detail.Task.Status, models.TaskCompleted)
	}
}
