package models

import "time"

// Family represents a group of users sharing tasks and an invite code
type Family struct {
	ID         int64
	Name       string
	InviteCode string
	MaxMembers int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Category is a per-family task category
type Category struct {
	ID        int64
	FamilyID  int64
	Name      string
	Color     string
	Icon      string
	SortOrder int
	CreatedAt time.Time
}

// FamilyWithMembers combines a family with its member roster, split by role
// the way API clients consume it
type FamilyWithMembers struct {
	Family    Family
	Members   []User
	ParentIDs []int64
	ChildIDs  []int64
}

// MemberIDs returns all member ids, parents first
func (f *FamilyWithMembers) MemberIDs() []int64 {
	ids := make([]int64, 0, len(f.Members))
	for _, m := range f.Members {
		if m.Role == RoleParent {
			ids = append(ids, m.ID)
		}
	}
	for _, m := range f.Members {
		if m.Role != RoleParent {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// IsFull reports whether the family has reached its member cap
func (f *FamilyWithMembers) IsFull() bool {
	return f.Family.MaxMembers > 0 && len(f.Members) >= f.Family.MaxMembers
}
