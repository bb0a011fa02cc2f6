package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"typeb/internal/models"
	"typeb/internal/repository"
)

var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrAlreadyReviewed    = errors.New("submission already reviewed")
	ErrDuplicatePending   = errors.New("task already has a pending submission")
	ErrMissingPhoto       = errors.New("a photo is required for this task")
)

// SubmissionService handles the photo-proof completion flow and the parent
// validation queue
type SubmissionService struct {
	submissionRepo *repository.SubmissionRepository
	taskRepo       *repository.TaskRepository
	userRepo       *repository.UserRepository
	familyRepo     *repository.FamilyRepository
	activityRepo   *repository.ActivityRepository
	familyService  *FamilyService
	photos         *PhotoService
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(submissionRepo *repository.SubmissionRepository, taskRepo *repository.TaskRepository, userRepo *repository.UserRepository, familyRepo *repository.FamilyRepository, activityRepo *repository.ActivityRepository, familyService *FamilyService, photos *PhotoService) *SubmissionService {
	return &SubmissionService{
		submissionRepo: submissionRepo,
		taskRepo:       taskRepo,
		userRepo:       userRepo,
		familyRepo:     familyRepo,
		activityRepo:   activityRepo,
		familyService:  familyService,
		photos:         photos,
	}
}

// Submit records a completion attempt by the assignee, uploading the photo
// proof when one is provided. The task moves to in_progress while it awaits
// review.
func (s *SubmissionService) Submit(ctx context.Context, actorID, taskID int64, photo io.Reader, photoSize int64, contentType, note string) (*models.Submission, error) {
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
	if task.AssignedTo == nil || *task.AssignedTo != actorID {
		return nil, ErrNotAssignee
	}
	if task.Status.IsTerminal() {
		return nil, ErrInvalidTransition
	}

	pending, err := s.submissionRepo.HasPendingSubmission(taskID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, ErrDuplicatePending
	}

	if task.RequiresPhoto && photo == nil {
		return nil, ErrMissingPhoto
	}

	var photoKey string
	if photo != nil {
		if s.photos == nil || !s.photos.IsEnabled() {
			return nil, errors.New("photo storage is not configured")
		}
		photoKey, err = s.photos.UploadTaskPhoto(ctx, task.FamilyID, taskID, photo, photoSize, contentType)
		if err != nil {
			return nil, fmt.Errorf("failed to upload photo: %w", err)
		}
	}

	submission, err := s.submissionRepo.CreateSubmission(taskID, actorID, photoKey, note)
	if err != nil {
		return nil, err
	}

	if task.Status == models.TaskPending {
		tx, err := s.familyRepo.Begin()
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()
		if err := s.taskRepo.UpdateStatus(tx, taskID, models.TaskInProgress); err != nil {
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, err
		}
	}

	if err := s.activityRepo.Record(task.FamilyID, actorID, models.ActivitySubmissionMade, &taskID, 0); err != nil {
		return nil, err
	}

	return submission, nil
}

// Queue returns the pending submissions awaiting review in the actor's
// family, with presigned photo URLs (parent only)
func (s *SubmissionService) Queue(ctx context.Context, actorID, familyID int64) ([]models.QueueEntry, error) {
	if _, err := s.familyService.VerifyParent(actorID, familyID); err != nil {
		return nil, err
	}

	entries, err := s.submissionRepo.GetPendingQueue(familyID)
	if err != nil {
		return nil, err
	}

	for i := range entries {
		if entries[i].Submission.PhotoKey != "" && s.photos != nil && s.photos.IsEnabled() {
			url, err := s.photos.PresignPhotoURL(ctx, entries[i].Submission.PhotoKey)
			if err != nil {
				return nil, fmt.Errorf("failed to presign photo url: %w", err)
			}
			entries[i].PhotoURL = url
		}
	}

	return entries, nil
}

// Approve accepts a submission: in one transaction the submission is marked
// approved, the task completed, the child's points awarded, and the
// activity recorded. Recurring tasks spawn their next instance on the same
// transaction.
func (s *SubmissionService) Approve(actorID, submissionID int64, notes string) (*models.Submission, error) {
	submission, task, err := s.loadForReview(actorID, submissionID)
	if err != nil {
		return nil, err
	}

	tx, err := s.familyRepo.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.submissionRepo.Review(tx, submissionID, actorID, models.SubmissionApproved, notes); err != nil {
		return nil, err
	}
	if err := s.taskRepo.UpdateStatus(tx, task.ID, models.TaskCompleted); err != nil {
		return nil, err
	}

	if err := s.activityRepo.RecordTx(tx, task.FamilyID, submission.SubmittedBy, models.ActivityTaskCompleted, &task.ID, 0); err != nil {
		return nil, err
	}
	if task.Points > 0 {
		if err := s.userRepo.AddPoints(tx, submission.SubmittedBy, task.Points); err != nil {
			return nil, err
		}
		if err := s.activityRepo.RecordTx(tx, task.FamilyID, submission.SubmittedBy, models.ActivityPointsAwarded, &task.ID, task.Points); err != nil {
			return nil, err
		}
	}

	if task.IsRecurring && task.Recurrence != nil {
		next := NextInstance(task, time.Now())
		if _, err := s.taskRepo.CreateTaskTx(tx, next); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return s.submissionRepo.GetSubmissionByID(submissionID)
}

// Reject declines a submission with review notes; the task returns to
// pending so the child can try again
func (s *SubmissionService) Reject(actorID, submissionID int64, notes string) (*models.Submission, error) {
	submission, task, err := s.loadForReview(actorID, submissionID)
	if err != nil {
		return nil, err
	}

	tx, err := s.familyRepo.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.submissionRepo.Review(tx, submissionID, actorID, models.SubmissionRejected, notes); err != nil {
		return nil, err
	}
	if err := s.taskRepo.UpdateStatus(tx, task.ID, models.TaskPending); err != nil {
		return nil, err
	}
	if err := s.activityRepo.RecordTx(tx, task.FamilyID, submission.SubmittedBy, models.ActivitySubmissionDenied, &task.ID, 0); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return s.submissionRepo.GetSubmissionByID(submissionID)
}

// GetTaskSubmissions lists a task's submission history for family members
func (s *SubmissionService) GetTaskSubmissions(actorID, taskID int64) ([]models.Submission, error) {
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
	return s.submissionRepo.GetSubmissionsForTask(taskID)
}

func (s *SubmissionService) loadForReview(actorID, submissionID int64) (*models.Submission, *models.Task, error) {
	submission, err := s.submissionRepo.GetSubmissionByID(submissionID)
	if err != nil {
		return nil, nil, err
	}
	if submission == nil {
		return nil, nil, ErrSubmissionNotFound
	}
	if submission.IsReviewed() {
		return nil, nil, ErrAlreadyReviewed
	}

	task, err := s.taskRepo.GetTaskByID(submission.TaskID)
	if err != nil {
		return nil, nil, err
	}
	if task == nil {
		return nil, nil, ErrTaskNotFound
	}

	if _, err := s.familyService.VerifyParent(actorID, task.FamilyID); err != nil {
		return nil, nil, err
	}
	// The task may have reached a terminal status since the submission
	// was made; terminal tasks take no further reviews.
	if task.Status.IsTerminal() {
		return nil, nil, ErrInvalidTransition
	}

	return submission, task, nil
}
