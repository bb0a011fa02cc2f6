package service

import (
	"database/sql"
	"errors"

	"typeb/internal/models"
	"typeb/internal/repository"
)

var (
	ErrRewardNotFound     = errors.New("reward not found")
	ErrRewardInactive     = errors.New("reward is no longer available")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrInvalidReward      = errors.New("invalid reward")
)

// RewardService manages the family reward catalog and point redemptions
type RewardService struct {
	rewardRepo    *repository.RewardRepository
	userRepo      *repository.UserRepository
	familyRepo    *repository.FamilyRepository
	activityRepo  *repository.ActivityRepository
	familyService *FamilyService
}

// NewRewardService creates a new reward service
func NewRewardService(rewardRepo *repository.RewardRepository, userRepo *repository.UserRepository, familyRepo *repository.FamilyRepository, activityRepo *repository.ActivityRepository, familyService *FamilyService) *RewardService {
	return &RewardService{
		rewardRepo:    rewardRepo,
		userRepo:      userRepo,
		familyRepo:    familyRepo,
		activityRepo:  activityRepo,
		familyService: familyService,
	}
}

// CreateReward adds a reward to the family catalog (parent only)
func (s *RewardService) CreateReward(actorID, familyID int64, title, description string, pointsCost int) (*models.Reward, error) {
	if _, err := s.familyService.VerifyParent(actorID, familyID); err != nil {
		return nil, err
	}
	if title == "" || pointsCost < 1 || pointsCost > 10000 {
		return nil, ErrInvalidReward
	}
	return s.rewardRepo.CreateReward(familyID, title, description, pointsCost, actorID)
}

// ListRewards returns the family catalog. Children only see active rewards.
func (s *RewardService) ListRewards(actorID, familyID int64) ([]models.Reward, error) {
	actor, err := s.familyService.VerifyMember(actorID, familyID)
	if err != nil {
		return nil, err
	}
	activeOnly := actor.Role != models.RoleParent
	return s.rewardRepo.GetFamilyRewards(familyID, activeOnly)
}

// UpdateReward edits a reward's fields (parent only)
func (s *RewardService) UpdateReward(actorID, rewardID int64, title, description *string, pointsCost *int, isActive *bool) (*models.Reward, error) {
	reward, err := s.loadForParent(actorID, rewardID)
	if err != nil {
		return nil, err
	}

	if title != nil {
		reward.Title = *title
	}
	if description != nil {
		reward.Description = *description
	}
	if pointsCost != nil {
		reward.PointsCost = *pointsCost
	}
	if isActive != nil {
		reward.IsActive = *isActive
	}
	if reward.Title == "" || reward.PointsCost < 1 || reward.PointsCost > 10000 {
		return nil, ErrInvalidReward
	}

	if err := s.rewardRepo.UpdateReward(reward); err != nil {
		return nil, err
	}
	return s.rewardRepo.GetRewardByID(rewardID)
}

// DeleteReward removes a reward from the catalog (parent only)
func (s *RewardService) DeleteReward(actorID, rewardID int64) error {
	if _, err := s.loadForParent(actorID, rewardID); err != nil {
		return err
	}
	return s.rewardRepo.DeleteReward(rewardID)
}

// Redeem spends the actor's points on a reward. The balance check and
// deduction happen atomically so concurrent redemptions cannot overspend.
func (s *RewardService) Redeem(actorID, rewardID int64) (*models.Redemption, error) {
	reward, err := s.rewardRepo.GetRewardByID(rewardID)
	if err != nil {
		return nil, err
	}
	if reward == nil {
		return nil, ErrRewardNotFound
	}
	if !reward.IsActive {
		return nil, ErrRewardInactive
	}
	if _, err := s.familyService.VerifyMember(actorID, reward.FamilyID); err != nil {
		return nil, err
	}

	tx, err := s.familyRepo.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.userRepo.AddPoints(tx, actorID, -reward.PointsCost); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInsufficientPoints
		}
		return nil, err
	}

	redemptionID, err := s.rewardRepo.CreateRedemption(tx, rewardID, actorID, reward.PointsCost)
	if err != nil {
		return nil, err
	}
	if err := s.activityRepo.RecordTx(tx, reward.FamilyID, actorID, models.ActivityPointsRedeemed, nil, -reward.PointsCost); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	redemptions, err := s.rewardRepo.GetUserRedemptions(actorID)
	if err != nil {
		return nil, err
	}
	for i := range redemptions {
		if redemptions[i].ID == redemptionID {
			return &redemptions[i], nil
		}
	}
	return nil, errors.New("redemption not found after creation")
}

// GetRedemptions lists the actor's redemption history
func (s *RewardService) GetRedemptions(actorID int64) ([]models.Redemption, error) {
	return s.rewardRepo.GetUserRedemptions(actorID)
}

func (s *RewardService) loadForParent(actorID, rewardID int64) (*models.Reward, error) {
	reward, err := s.rewardRepo.GetRewardByID(rewardID)
	if err != nil {
		return nil, err
	}
	if reward == nil {
		return nil, ErrRewardNotFound
	}
	if _, err := s.familyService.VerifyParent(actorID, reward.FamilyID); err != nil {
		return nil, err
	}
	return reward, nil
}
