package handlers

import (
	"net/http"
	"strconv"

	"typeb/internal/service"
)

// StatsHandler handles streak, leaderboard and activity HTTP requests
type StatsHandler struct {
	statsService *service.StatsService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// MemberStats returns one member's completion and streak numbers
func (h *StatsHandler) MemberStats(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	userID, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid user id"})
		return
	}

	stats, err := h.statsService.GetMemberStats(claims.UserID, userID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondData(w, http.StatusOK, newMemberStatsView(stats))
}

// Leaderboard ranks a family's members by points earned
func (h *StatsHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	familyID, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid family id"})
		return
	}

	stats, err := h.statsService.GetLeaderboard(claims.UserID, familyID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	views := make([]memberStatsView, 0, len(stats))
	for i := range stats {
		views = append(views, newMemberStatsView(&stats[i]))
	}
	respondData(w, http.StatusOK, views)
}

// Activity returns a family's recent event feed
func (h *StatsHandler) Activity(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	familyID, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid family id"})
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	events, err := h.statsService.GetFamilyActivity(claims.UserID, familyID, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}

	views := make([]activityView, 0, len(events))
	for i := range events {
		views = append(views, newActivityView(&events[i]))
	}
	respondData(w, http.StatusOK, views)
}

// Summary returns the premium family analytics roll-up
func (h *StatsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	familyID, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid family id"})
		return
	}

	summary, err := h.statsService.GetFamilySummary(claims.UserID, familyID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	members := make([]memberStatsView, 0, len(summary.Members))
	for i := range summary.Members {
		members = append(members, newMemberStatsView(&summary.Members[i]))
	}

	respondData(w, http.StatusOK, map[string]interface{}{
		"family_id":       summary.FamilyID,
		"members":         members,
		"tasks_completed": summary.TasksCompleted,
		"points_earned":   summary.PointsEarned,
	})
}
