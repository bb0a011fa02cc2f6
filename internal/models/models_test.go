package models

import (
	"testing"
	"time"
)

func TestTaskStatusValid(t *testing.T) {
	tests := []struct {
		status TaskStatus
		want   bool
	}{
		{TaskPending, true},
		{TaskInProgress, true},
		{TaskCompleted, true},
		{TaskCancelled, true},
		{TaskStatus("archived"), false},
		{TaskStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Valid(); got != tt.want {
				t.Errorf("TaskStatus(%q).Valid() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestTaskStatusIsTerminal(t *testing.T) {
	tests := []struct {
		status TaskStatus
		want   bool
	}{
		{TaskPending, false},
		{TaskInProgress, false},
		{TaskCompleted, true},
		{TaskCancelled, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsTerminal(); got != tt.want {
				t.Errorf("TaskStatus(%q).IsTerminal() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestTaskPriorityValid(t *testing.T) {
	for _, p := range []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent} {
		if !p.Valid() {
			t.Errorf("TaskPriority(%q).Valid() = false, want true", p)
		}
	}
	if TaskPriority("asap").Valid() {
		t.Error("TaskPriority(\"asap\").Valid() = true, want false")
	}
}

func TestTaskIsOverdue(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-1 * time.Hour)
	future := now.Add(1 * time.Hour)

	tests := []struct {
		name string
		task Task
		want bool
	}{
		{
			name: "no due date",
			task: Task{Status: TaskPending},
			want: false,
		},
		{
			name: "due in the future",
			task: Task{Status: TaskPending, DueDate: &future},
			want: false,
		},
		{
			name: "past due and pending",
			task: Task{Status: TaskPending, DueDate: &past},
			want: true,
		},
		{
			name: "past due but completed",
			task: Task{Status: TaskCompleted, DueDate: &past},
			want: false,
		},
		{
			name: "past due but cancelled",
			task: Task{Status: TaskCancelled, DueDate: &past},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.task.IsOverdue(now); got != tt.want {
				t.Errorf("IsOverdue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSubmissionIsReviewed(t *testing.T) {
	tests := []struct {
		status SubmissionStatus
		want   bool
	}{
		{SubmissionPending, false},
		{SubmissionApproved, true},
		{SubmissionRejected, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			s := Submission{Status: tt.status}
			if got := s.IsReviewed(); got != tt.want {
				t.Errorf("IsReviewed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRefreshTokenIsExpired(t *testing.T) {
	expired := RefreshToken{ExpiresAt: time.Now().Add(-1 * time.Minute)}
	if !expired.IsExpired() {
		t.Error("token expired a minute ago should report expired")
	}

	live := RefreshToken{ExpiresAt: time.Now().Add(1 * time.Hour)}
	if live.IsExpired() {
		t.Error("token expiring in an hour should not report expired")
	}
}

func TestUserLocation(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		want     string
	}{
		{
			name:     "valid timezone",
			timezone: "America/New_York",
			want:     "America/New_York",
		},
		{
			name:     "empty falls back to UTC",
			timezone: "",
			want:     "UTC",
		},
		{
			name:     "garbage falls back to UTC",
			timezone: "Mars/Olympus_Mons",
			want:     "UTC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := User{Timezone: tt.timezone}
			if got := u.Location().String(); got != tt.want {
				t.Errorf("Location() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFamilyWithMembersIsFull(t *testing.T) {
	family := FamilyWithMembers{
		Family:  Family{MaxMembers: 2},
		Members: []User{{ID: 1}},
	}
	if family.IsFull() {
		t.Error("family with one of two slots used should not be full")
	}

	family.Members = append(family.Members, User{ID: 2})
	if !family.IsFull() {
		t.Error("family at max members should be full")
	}
}

func TestFamilyWithMembersMemberIDs(t *testing.T) {
	family := FamilyWithMembers{
		Members: []User{
			{ID: 3, Role: RoleChild},
			{ID: 7, Role: RoleParent},
			{ID: 9, Role: RoleChild},
		},
	}
	ids := family.MemberIDs()
	want := []int64{7, 3, 9}
	if len(ids) != len(want) {
		t.Fatalf("MemberIDs() returned %d ids, want %d", len(ids), len(want))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("MemberIDs()[%d] = %d, want %d", i, ids[i], want[i])
		}
	}
}
