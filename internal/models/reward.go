package models

import "time"

// Reward is something a child can spend points on
type Reward struct {
	ID          int64
	FamilyID    int64
	Title       string
	Description string
	PointsCost  int
	CreatedBy   int64
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Redemption records a child spending points on a reward
type Redemption struct {
	ID          int64
	RewardID    int64
	UserID      int64
	PointsSpent int
	RedeemedAt  time.Time
}
