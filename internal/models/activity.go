package models

import "time"

// ActivityType identifies an event in the family activity log
type ActivityType string

const (
	ActivityTaskCreated      ActivityType = "task_created"
	ActivityTaskCompleted    ActivityType = "task_completed"
	ActivityTaskEscalated    ActivityType = "task_escalated"
	ActivityPointsAwarded    ActivityType = "points_awarded"
	ActivityPointsRedeemed   ActivityType = "points_redeemed"
	ActivityMemberJoined     ActivityType = "member_joined"
	ActivityMemberLeft       ActivityType = "member_left"
	ActivitySubmissionMade   ActivityType = "submission_made"
	ActivitySubmissionDenied ActivityType = "submission_denied"
)

// Activity is an append-only event in a family's history. Completion events
// feed streak computation; point events form the audit trail for balances.
type Activity struct {
	ID         int64
	FamilyID   int64
	UserID     int64
	Type       ActivityType
	TaskID     *int64
	Points     int
	OccurredAt time.Time
}

// MemberStats aggregates a member's gamification numbers
type MemberStats struct {
	UserID         int64
	DisplayName    string
	PointsBalance  int
	TasksCompleted int
	PointsEarned   int
	CurrentStreak  int
	LongestStreak  int
}
