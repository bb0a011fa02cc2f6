package handlers

import (
	"net/http"
	"strconv"

	"typeb/internal/models"
	"typeb/internal/service"
)

// FamilyHandler handles family and category HTTP requests
type FamilyHandler struct {
	familyService *service.FamilyService
	authService   *service.AuthService
	emailService  *service.EmailService
}

// NewFamilyHandler creates a new family handler
func NewFamilyHandler(familyService *service.FamilyService, authService *service.AuthService, emailService *service.EmailService) *FamilyHandler {
	return &FamilyHandler{
		familyService: familyService,
		authService:   authService,
		emailService:  emailService,
	}
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil && id > 0
}

type createFamilyRequest struct {
	Name string `json:"name"`
}

// Create creates a new family with the caller as its first parent
func (h *FamilyHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	var req createFamilyRequest
	if err := decodeJSON(r, &req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "name is required"})
		return
	}

	family, err := h.familyService.CreateFamily(req.Name, claims.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondData(w, http.StatusCreated, newFamilyView(family))
}

type joinFamilyRequest struct {
	InviteCode string `json:"invite_code"`
	Role       string `json:"role"`
}

// Join adds the caller to a family via invite code
func (h *FamilyHandler) Join(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	var req joinFamilyRequest
	if err := decodeJSON(r, &req); err != nil || req.InviteCode == "" {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invite_code is required"})
		return
	}
	role := models.Role(req.Role)
	if req.Role == "" {
		role = models.RoleChild
	}

	if err := h.familyService.JoinFamily(claims.UserID, req.InviteCode, role); err != nil {
		respondError(w, r, err)
		return
	}

	user, err := h.authService.GetUser(claims.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondData(w, http.StatusOK, newUserView(user))
}

// Get returns a family with its members
func (h *FamilyHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	familyID, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid family id"})
		return
	}

	if _, err := h.familyService.VerifyMember(claims.UserID, familyID); err != nil {
		respondError(w, r, err)
		return
	}

	family, err := h.familyService.GetFamilyWithMembers(familyID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondData(w, http.StatusOK, newFamilyDetailView(family))
}

type updateFamilyRequest struct {
	Name       string `json:"name"`
	MaxMembers int    `json:"max_members"`
}

// Update edits family settings (parent only)
func (h *FamilyHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	familyID, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid family id"})
		return
	}

	var req updateFamilyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid request body"})
		return
	}

	family, err := h.familyService.UpdateFamily(claims.UserID, familyID, req.Name, req.MaxMembers)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondData(w, http.StatusOK, newFamilyView(family))
}

// Leave removes the caller from a family
func (h *FamilyHandler) Leave(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	familyID, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid family id"})
		return
	}

	if err := h.familyService.LeaveFamily(claims.UserID, familyID); err != nil {
		respondError(w, r, err)
		return
	}

	respondMessage(w, http.StatusOK, "left family")
}

// RemoveMember removes another member from a family (parent only)
func (h *FamilyHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	familyID, ok := pathID(r, "id")
	memberID, ok2 := pathID(r, "memberId")
	if !ok || !ok2 {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid id"})
		return
	}

	if err := h.familyService.RemoveMember(claims.UserID, familyID, memberID); err != nil {
		respondError(w, r, err)
		return
	}

	respondMessage(w, http.StatusOK, "member removed")
}

type changeRoleRequest struct {
	Role string `json:"role"`
}

// ChangeMemberRole switches a member between parent and child (parent only)
func (h *FamilyHandler) ChangeMemberRole(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	familyID, ok := pathID(r, "id")
	memberID, ok2 := pathID(r, "memberId")
	if !ok || !ok2 {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid id"})
		return
	}

	var req changeRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid request body"})
		return
	}

	if err := h.familyService.ChangeMemberRole(claims.UserID, familyID, memberID, models.Role(req.Role)); err != nil {
		respondError(w, r, err)
		return
	}

	respondMessage(w, http.StatusOK, "role updated")
}

type inviteRequest struct {
	Email string `json:"email"`
}

// Invite emails the family invite code to an address (parent only)
func (h *FamilyHandler) Invite(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	familyID, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid family id"})
		return
	}

	var req inviteRequest
	if err := decodeJSON(r, &req); err != nil || req.Email == "" {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "email is required"})
		return
	}

	if err := h.familyService.SendInvite(r.Context(), h.emailService, claims.UserID, familyID, req.Email); err != nil {
		respondError(w, r, err)
		return
	}

	respondMessage(w, http.StatusOK, "invite sent")
}

// ListCategories returns a family's task categories
func (h *FamilyHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	familyID, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid family id"})
		return
	}

	categories, err := h.familyService.GetCategories(claims.UserID, familyID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	views := make([]categoryView, 0, len(categories))
	for i := range categories {
		views = append(views, newCategoryView(&categories[i]))
	}
	respondData(w, http.StatusOK, views)
}

type categoryRequest struct {
	Name      string `json:"name"`
	Color     string `json:"color"`
	Icon      string `json:"icon"`
	SortOrder int    `json:"sort_order"`
}

// CreateCategory adds a category to a family (parent only)
func (h *FamilyHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	familyID, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid family id"})
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "name is required"})
		return
	}

	category, err := h.familyService.CreateCategory(claims.UserID, familyID, req.Name, req.Color, req.Icon, req.SortOrder)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondData(w, http.StatusCreated, newCategoryView(category))
}

// UpdateCategory edits a category (parent only)
func (h *FamilyHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	familyID, ok := pathID(r, "id")
	categoryID, ok2 := pathID(r, "categoryId")
	if !ok || !ok2 {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid id"})
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "name is required"})
		return
	}

	category, err := h.familyService.UpdateCategory(claims.UserID, familyID, categoryID, req.Name, req.Color, req.Icon, req.SortOrder)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondData(w, http.StatusOK, newCategoryView(category))
}

// DeleteCategory removes a category (parent only)
func (h *FamilyHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	familyID, ok := pathID(r, "id")
	categoryID, ok2 := pathID(r, "categoryId")
	if !ok || !ok2 {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid id"})
		return
	}

	if err := h.familyService.DeleteCategory(claims.UserID, familyID, categoryID); err != nil {
		respondError(w, r, err)
		return
	}

	respondMessage(w, http.StatusOK, "category deleted")
}
