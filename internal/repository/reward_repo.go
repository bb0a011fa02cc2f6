package repository

import (
	"database/sql"
	"fmt"

	"typeb/internal/database"
	"typeb/internal/models"
)

// RewardRepository handles database operations for rewards and redemptions
type RewardRepository struct {
	db *database.DB
}

// NewRewardRepository creates a new reward repository
func NewRewardRepository(db *database.DB) *RewardRepository {
	return &RewardRepository{db: db}
}

const rewardColumns = "id, family_id, title, description, points_cost, created_by, is_active, created_at, updated_at"

func scanReward(row interface{ Scan(...interface{}) error }) (*models.Reward, error) {
	reward := &models.Reward{}
	err := row.Scan(
		&reward.ID,
		&reward.FamilyID,
		&reward.Title,
		&reward.Description,
		&reward.PointsCost,
		&reward.CreatedBy,
		&reward.IsActive,
		&reward.CreatedAt,
		&reward.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan reward: %w", err)
	}
	return reward, nil
}

// CreateReward inserts a new reward
func (r *RewardRepository) CreateReward(familyID int64, title, description string, pointsCost int, createdBy int64) (*models.Reward, error) {
	query := `INSERT INTO rewards (family_id, title, description, points_cost, created_by, is_active)
		VALUES (?, ?, ?, ?, ?, ?)`
	id, err := r.db.ExecReturningID(query, familyID, title, description, pointsCost, createdBy, true)
	if err != nil {
		return nil, fmt.Errorf("failed to create reward: %w", err)
	}
	return r.GetRewardByID(id)
}

// GetRewardByID retrieves a reward by id
func (r *RewardRepository) GetRewardByID(id int64) (*models.Reward, error) {
	query := "SELECT " + rewardColumns + " FROM rewards WHERE id = ?"
	return scanReward(r.db.QueryRow(query, id))
}

// GetFamilyRewards lists a family's rewards; activeOnly hides retired ones
func (r *RewardRepository) GetFamilyRewards(familyID int64, activeOnly bool) ([]models.Reward, error) {
	query := "SELECT " + rewardColumns + " FROM rewards WHERE family_id = ?"
	args := []interface{}{familyID}
	if activeOnly {
		query += " AND is_active = ?"
		args = append(args, true)
	}
	query += " ORDER BY points_cost ASC, id ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rewards: %w", err)
	}
	defer rows.Close()

	var rewards []models.Reward
	for rows.Next() {
		reward, err := scanReward(rows)
		if err != nil {
			return nil, err
		}
		rewards = append(rewards, *reward)
	}

	return rewards, rows.Err()
}

// UpdateReward updates a reward's fields
func (r *RewardRepository) UpdateReward(reward *models.Reward) error {
	query := `UPDATE rewards SET title = ?, description = ?, points_cost = ?,
		is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	if _, err := r.db.Exec(query, reward.Title, reward.Description, reward.PointsCost, reward.IsActive, reward.ID); err != nil {
		return fmt.Errorf("failed to update reward: %w", err)
	}
	return nil
}

// DeleteReward removes a reward
func (r *RewardRepository) DeleteReward(id int64) error {
	if _, err := r.db.Exec("DELETE FROM rewards WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete reward: %w", err)
	}
	return nil
}

// CreateRedemption records a redemption inside the caller's transaction
func (r *RewardRepository) CreateRedemption(q database.DBTX, rewardID, userID int64, pointsSpent int) (int64, error) {
	query := "INSERT INTO redemptions (reward_id, user_id, points_spent) VALUES (?, ?, ?)"
	id, err := q.ExecReturningID(query, rewardID, userID, pointsSpent)
	if err != nil {
		return 0, fmt.Errorf("failed to create redemption: %w", err)
	}
	return id, nil
}

// GetUserRedemptions lists a user's redemptions, newest first
func (r *RewardRepository) GetUserRedemptions(userID int64) ([]models.Redemption, error) {
	query := `SELECT id, reward_id, user_id, points_spent, redeemed_at
		FROM redemptions WHERE user_id = ? ORDER BY redeemed_at DESC`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query redemptions: %w", err)
	}
	defer rows.Close()

	var redemptions []models.Redemption
	for rows.Next() {
		var red models.Redemption
		if err := rows.Scan(&red.ID, &red.RewardID, &red.UserID, &red.PointsSpent, &red.RedeemedAt); err != nil {
			return nil, fmt.Errorf("failed to scan redemption: %w", err)
		}
		redemptions = append(redemptions, red)
	}

	return redemptions, rows.Err()
}
