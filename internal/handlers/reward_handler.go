package handlers

import (
	"net/http"

	"typeb/internal/service"
)

// RewardHandler handles reward catalog and redemption HTTP requests
type RewardHandler struct {
	rewardService *service.RewardService
}

// NewRewardHandler creates a new reward handler
func NewRewardHandler(rewardService *service.RewardService) *RewardHandler {
	return &RewardHandler{rewardService: rewardService}
}

type createRewardRequest struct {
	FamilyID    int64  `json:"family_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	PointsCost  int    `json:"points_cost"`
}

// Create adds a reward to the family catalog (parent only)
func (h *RewardHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	var req createRewardRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid request body"})
		return
	}
	if req.FamilyID == 0 {
		req.FamilyID = claims.FamilyID
	}

	reward, err := h.rewardService.CreateReward(claims.UserID, req.FamilyID, req.Title, req.Description, req.PointsCost)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondData(w, http.StatusCreated, newRewardView(reward))
}

// List returns a family's reward catalog
func (h *RewardHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	familyID, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid family id"})
		return
	}

	rewards, err := h.rewardService.ListRewards(claims.UserID, familyID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	views := make([]rewardView, 0, len(rewards))
	for i := range rewards {
		views = append(views, newRewardView(&rewards[i]))
	}
	respondData(w, http.StatusOK, views)
}

type updateRewardRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	PointsCost  *int    `json:"points_cost"`
	IsActive    *bool   `json:"is_active"`
}

// Update edits a reward (parent only)
func (h *RewardHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	rewardID, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid reward id"})
		return
	}

	var req updateRewardRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid request body"})
		return
	}

	reward, err := h.rewardService.UpdateReward(claims.UserID, rewardID, req.Title, req.Description, req.PointsCost, req.IsActive)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondData(w, http.StatusOK, newRewardView(reward))
}

// Delete removes a reward (parent only)
func (h *RewardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	rewardID, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid reward id"})
		return
	}

	if err := h.rewardService.DeleteReward(claims.UserID, rewardID); err != nil {
		respondError(w, r, err)
		return
	}

	respondMessage(w, http.StatusOK, "reward deleted")
}

// Redeem spends the caller's points on a reward
func (h *RewardHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	rewardID, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid reward id"})
		return
	}

	redemption, err := h.rewardService.Redeem(claims.UserID, rewardID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondData(w, http.StatusCreated, newRedemptionView(redemption))
}

// Redemptions lists the caller's redemption history
func (h *RewardHandler) Redemptions(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	redemptions, err := h.rewardService.GetRedemptions(claims.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	views := make([]redemptionView, 0, len(redemptions))
	for i := range redemptions {
		views = append(views, newRedemptionView(&redemptions[i]))
	}
	respondData(w, http.StatusOK, views)
}
