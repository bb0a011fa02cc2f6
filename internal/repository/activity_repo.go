package repository

import (
	"fmt"
	"time"

	"typeb/internal/database"
	"typeb/internal/models"
)

// ActivityRepository handles the append-only family activity log
type ActivityRepository struct {
	db *database.DB
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *database.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Record appends an event to the activity log
func (r *ActivityRepository) Record(familyID, userID int64, activityType models.ActivityType, taskID *int64, points int) error {
	return r.RecordTx(r.db, familyID, userID, activityType, taskID, points)
}

// RecordTx appends an event inside the caller's transaction
func (r *ActivityRepository) RecordTx(q database.DBTX, familyID, userID int64, activityType models.ActivityType, taskID *int64, points int) error {
	query := `INSERT INTO activity (family_id, user_id, type, task_id, points)
		VALUES (?, ?, ?, ?, ?)`
	if _, err := q.Exec(query, familyID, userID, string(activityType), taskID, points); err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

// GetFamilyActivity lists a family's recent events, newest first
func (r *ActivityRepository) GetFamilyActivity(familyID int64, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, family_id, user_id, type, task_id, points, occurred_at
		FROM activity WHERE family_id = ? ORDER BY occurred_at DESC, id DESC LIMIT ?`
	rows, err := r.db.Query(query, familyID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity: %w", err)
	}
	defer rows.Close()

	var events []models.Activity
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.FamilyID, &a.UserID, &a.Type, &a.TaskID, &a.Points, &a.OccurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		events = append(events, a)
	}

	return events, rows.Err()
}

// GetCompletionTimes returns the timestamps of a user's task completion
// events, oldest first; streaks are computed from these
func (r *ActivityRepository) GetCompletionTimes(userID int64) ([]time.Time, error) {
	query := `SELECT occurred_at FROM activity
		WHERE user_id = ? AND type = ? ORDER BY occurred_at ASC`
	rows, err := r.db.Query(query, userID, string(models.ActivityTaskCompleted))
	if err != nil {
		return nil, fmt.Errorf("failed to query completion times: %w", err)
	}
	defer rows.Close()

	var times []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan completion time: %w", err)
		}
		times = append(times, t)
	}

	return times, rows.Err()
}

// SumPointsEarned totals the points a user has been awarded over time
func (r *ActivityRepository) SumPointsEarned(userID int64) (int, error) {
	var total int
	query := `SELECT COALESCE(SUM(points), 0) FROM activity
		WHERE user_id = ? AND type = ?`
	err := r.db.QueryRow(query, userID, string(models.ActivityPointsAwarded)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum points: %w", err)
	}
	return total, nil
}
