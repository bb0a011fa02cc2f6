package handlers

import (
	"time"

	"typeb/internal/models"
	"typeb/internal/service"
)

// JSON shapes returned by the API. Domain models stay free of transport
// concerns; these views decide field names and what is exposed.

type tokenView struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func newTokenView(pair *service.TokenPair) tokenView {
	return tokenView{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    pair.ExpiresIn,
	}
}

type userView struct {
	ID                   int64     `json:"id"`
	Email                string    `json:"email"`
	DisplayName          string    `json:"display_name"`
	Role                 string    `json:"role"`
	FamilyID             *int64    `json:"family_id"`
	NotificationsEnabled bool      `json:"notifications_enabled"`
	Timezone             string    `json:"timezone"`
	IsPremium            bool      `json:"is_premium"`
	PointsBalance        int       `json:"points_balance"`
	CreatedAt            time.Time `json:"created_at"`
}

func newUserView(u *models.User) userView {
	return userView{
		ID:                   u.ID,
		Email:                u.Email,
		DisplayName:          u.DisplayName,
		Role:                 string(u.Role),
		FamilyID:             u.FamilyID,
		NotificationsEnabled: u.NotificationsEnabled,
		Timezone:             u.Timezone,
		IsPremium:            u.IsPremium,
		PointsBalance:        u.PointsBalance,
		CreatedAt:            u.CreatedAt,
	}
}

type familyView struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	InviteCode string    `json:"invite_code"`
	MaxMembers int       `json:"max_members"`
	CreatedAt  time.Time `json:"created_at"`
}

func newFamilyView(f *models.Family) familyView {
	return familyView{
		ID:         f.ID,
		Name:       f.Name,
		InviteCode: f.InviteCode,
		MaxMembers: f.MaxMembers,
		CreatedAt:  f.CreatedAt,
	}
}

type familyDetailView struct {
	familyView
	Members []userView `json:"members"`
}

func newFamilyDetailView(f *models.FamilyWithMembers) familyDetailView {
	view := familyDetailView{familyView: newFamilyView(&f.Family)}
	for i := range f.Members {
		view.Members = append(view.Members, newUserView(&f.Members[i]))
	}
	return view
}

type categoryView struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Icon      string `json:"icon"`
	SortOrder int    `json:"sort_order"`
}

func newCategoryView(c *models.Category) categoryView {
	return categoryView{
		ID:        c.ID,
		Name:      c.Name,
		Color:     c.Color,
		Icon:      c.Icon,
		SortOrder: c.SortOrder,
	}
}

type recurrenceView struct {
	Frequency  string `json:"frequency"`
	Interval   int    `json:"interval"`
	DaysOfWeek []int  `json:"days_of_week,omitempty"`
}

type taskView struct {
	ID              int64           `json:"id"`
	FamilyID        int64           `json:"family_id"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	CategoryID      *int64          `json:"category_id"`
	AssignedTo      *int64          `json:"assigned_to"`
	AssignedBy      int64           `json:"assigned_by"`
	CreatedBy       int64           `json:"created_by"`
	Status          string          `json:"status"`
	Priority        string          `json:"priority"`
	DueDate         *time.Time      `json:"due_date"`
	Points          int             `json:"points"`
	RequiresPhoto   bool            `json:"requires_photo"`
	IsRecurring     bool            `json:"is_recurring"`
	Recurrence      *recurrenceView `json:"recurrence,omitempty"`
	EscalationLevel int             `json:"escalation_level"`
	CompletedAt     *time.Time      `json:"completed_at"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func newTaskView(t *models.Task) taskView {
	view := taskView{
		ID:              t.ID,
		FamilyID:        t.FamilyID,
		Title:           t.Title,
		Description:     t.Description,
		CategoryID:      t.CategoryID,
		AssignedTo:      t.AssignedTo,
		AssignedBy:      t.AssignedBy,
		CreatedBy:       t.CreatedBy,
		Status:          string(t.Status),
		Priority:        string(t.Priority),
		DueDate:         t.DueDate,
		Points:          t.Points,
		RequiresPhoto:   t.RequiresPhoto,
		IsRecurring:     t.IsRecurring,
		EscalationLevel: t.EscalationLevel,
		CompletedAt:     t.CompletedAt,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
	if t.Recurrence != nil {
		rv := &recurrenceView{
			Frequency: string(t.Recurrence.Frequency),
			Interval:  t.Recurrence.Interval,
		}
		for _, d := range t.Recurrence.DaysOfWeek {
			rv.DaysOfWeek = append(rv.DaysOfWeek, int(d))
		}
		view.Recurrence = rv
	}
	return view
}

func newTaskViews(tasks []models.Task) []taskView {
	views := make([]taskView, 0, len(tasks))
	for i := range tasks {
		views = append(views, newTaskView(&tasks[i]))
	}
	return views
}

type taskDetailView struct {
	taskView
	Category *categoryView `json:"category,omitempty"`
}

func newTaskDetailView(d *models.TaskWithCategory) taskDetailView {
	view := taskDetailView{taskView: newTaskView(&d.Task)}
	if d.Category != nil {
		cv := newCategoryView(d.Category)
		view.Category = &cv
	}
	return view
}

type submissionView struct {
	ID              int64      `json:"id"`
	TaskID          int64      `json:"task_id"`
	SubmittedBy     int64      `json:"submitted_by"`
	Note            string     `json:"note,omitempty"`
	Status          string     `json:"status"`
	SubmittedAt     time.Time  `json:"submitted_at"`
	ReviewedAt      *time.Time `json:"reviewed_at"`
	ReviewedBy      *int64     `json:"reviewed_by"`
	ValidationNotes string     `json:"validation_notes,omitempty"`
}

func newSubmissionView(s *models.Submission) submissionView {
	return submissionView{
		ID:              s.ID,
		TaskID:          s.TaskID,
		SubmittedBy:     s.SubmittedBy,
		Note:            s.Note,
		Status:          string(s.Status),
		SubmittedAt:     s.SubmittedAt,
		ReviewedAt:      s.ReviewedAt,
		ReviewedBy:      s.ReviewedBy,
		ValidationNotes: s.ValidationNotes,
	}
}

type queueEntryView struct {
	Submission    submissionView `json:"submission"`
	Task          taskView       `json:"task"`
	SubmitterName string         `json:"submitter_name"`
	PhotoURL      string         `json:"photo_url,omitempty"`
}

func newQueueEntryView(e *models.QueueEntry) queueEntryView {
	return queueEntryView{
		Submission:    newSubmissionView(&e.Submission),
		Task:          newTaskView(&e.Task),
		SubmitterName: e.SubmitterName,
		PhotoURL:      e.PhotoURL,
	}
}

type rewardView struct {
	ID          int64     `json:"id"`
	FamilyID    int64     `json:"family_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	PointsCost  int       `json:"points_cost"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func newRewardView(r *models.Reward) rewardView {
	return rewardView{
		ID:          r.ID,
		FamilyID:    r.FamilyID,
		Title:       r.Title,
		Description: r.Description,
		PointsCost:  r.PointsCost,
		IsActive:    r.IsActive,
		CreatedAt:   r.CreatedAt,
	}
}

type redemptionView struct {
	ID          int64     `json:"id"`
	RewardID    int64     `json:"reward_id"`
	PointsSpent int       `json:"points_spent"`
	RedeemedAt  time.Time `json:"redeemed_at"`
}

func newRedemptionView(r *models.Redemption) redemptionView {
	return redemptionView{
		ID:          r.ID,
		RewardID:    r.RewardID,
		PointsSpent: r.PointsSpent,
		RedeemedAt:  r.RedeemedAt,
	}
}

type activityView struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Type       string    `json:"type"`
	TaskID     *int64    `json:"task_id"`
	Points     int       `json:"points"`
	OccurredAt time.Time `json:"occurred_at"`
}

func newActivityView(a *models.Activity) activityView {
	return activityView{
		ID:         a.ID,
		UserID:     a.UserID,
		Type:       string(a.Type),
		TaskID:     a.TaskID,
		Points:     a.Points,
		OccurredAt: a.OccurredAt,
	}
}

type memberStatsView struct {
	UserID         int64  `json:"user_id"`
	DisplayName    string `json:"display_name"`
	PointsBalance  int    `json:"points_balance"`
	TasksCompleted int    `json:"tasks_completed"`
	PointsEarned   int    `json:"points_earned"`
	CurrentStreak  int    `json:"current_streak"`
	LongestStreak  int    `json:"longest_streak"`
}

func newMemberStatsView(s *models.MemberStats) memberStatsView {
	return memberStatsView{
		UserID:         s.UserID,
		DisplayName:    s.DisplayName,
		PointsBalance:  s.PointsBalance,
		TasksCompleted: s.TasksCompleted,
		PointsEarned:   s.PointsEarned,
		CurrentStreak:  s.CurrentStreak,
		LongestStreak:  s.LongestStreak,
	}
}
