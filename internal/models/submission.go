package models

import "time"

// SubmissionStatus is the review state of a task submission
type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

// Submission records a child marking a task complete, with optional photo
// proof awaiting parent review
type Submission struct {
	ID              int64
	TaskID          int64
	SubmittedBy     int64
	PhotoKey        string
	Note            string
	Status          SubmissionStatus
	SubmittedAt     time.Time
	ReviewedAt      *time.Time
	ReviewedBy      *int64
	ValidationNotes string
}

// IsReviewed reports whether a parent has already acted on the submission
func (s *Submission) IsReviewed() bool {
	return s.Status != SubmissionPending
}

// QueueEntry is a pending submission joined with its task and submitter,
// as shown in the parent validation queue
type QueueEntry struct {
	Submission    Submission
	Task          Task
	SubmitterName string
	PhotoURL      string
}
