package handlers

import (
	"net/http"
	"strconv"
	"time"

	"typeb/internal/models"
	"typeb/internal/service"
)

// TaskHandler handles task HTTP requests
type TaskHandler struct {
	taskService *service.TaskService
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

type recurrenceRequest struct {
	Frequency  string `json:"frequency"`
	Interval   int    `json:"interval"`
	DaysOfWeek []int  `json:"days_of_week"`
}

func (r *recurrenceRequest) toPattern() *models.RecurrencePattern {
	if r == nil {
		return nil
	}
	p := &models.RecurrencePattern{
		Frequency: models.RecurrenceFrequency(r.Frequency),
		Interval:  r.Interval,
	}
	for _, d := range r.DaysOfWeek {
		p.DaysOfWeek = append(p.DaysOfWeek, time.Weekday(d))
	}
	return p
}

type taskRequest struct {
	FamilyID      int64              `json:"family_id"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	CategoryID    *int64             `json:"category_id"`
	AssignedTo    *int64             `json:"assigned_to"`
	Priority      string             `json:"priority"`
	DueDate       *time.Time         `json:"due_date"`
	Points        int                `json:"points"`
	RequiresPhoto bool               `json:"requires_photo"`
	Recurrence    *recurrenceRequest `json:"recurrence"`
}

func (req *taskRequest) toCreateRequest() service.CreateTaskRequest {
	return service.CreateTaskRequest{
		Title:         req.Title,
		Description:   req.Description,
		CategoryID:    req.CategoryID,
		AssignedTo:    req.AssignedTo,
		Priority:      models.TaskPriority(req.Priority),
		DueDate:       req.DueDate,
		Points:        req.Points,
		RequiresPhoto: req.RequiresPhoto,
		IsRecurring:   req.Recurrence != nil,
		Recurrence:    req.Recurrence.toPattern(),
	}
}

// Create creates a task in the caller's family (parent only)
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	var req taskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid request body"})
		return
	}
	if req.FamilyID == 0 {
		req.FamilyID = claims.FamilyID
	}

	task, err := h.taskService.CreateTask(claims.UserID, req.FamilyID, req.toCreateRequest())
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondData(w, http.StatusCreated, newTaskView(task))
}

// List lists the tasks visible to the caller, with optional filters
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	familyID := claims.FamilyID
	if raw := r.URL.Query().Get("family_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			familyID = id
		}
	}

	filter := models.TaskFilter{
		Status: models.TaskStatus(r.URL.Query().Get("status")),
	}
	if raw := r.URL.Query().Get("assigned_to"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.AssignedTo = id
		}
	}
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.CategoryID = id
		}
	}
	if raw := r.URL.Query().Get("due_before"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.DueBefore = &t
		}
	}

	tasks, err := h.taskService.ListTasks(claims.UserID, familyID, filter)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondData(w, http.StatusOK, newTaskViews(tasks))
}

// Get returns a single task
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	taskID, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid task id"})
		return
	}

	detail, err := h.taskService.GetTask(claims.UserID, taskID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondData(w, http.StatusOK, newTaskDetailView(detail))
}

// Update edits a task (parent only)
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	taskID, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid task id"})
		return
	}

	var req taskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid request body"})
		return
	}

	task, err := h.taskService.UpdateTask(claims.UserID, taskID, req.toCreateRequest())
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondData(w, http.StatusOK, newTaskView(task))
}

type statusRequest struct {
	Status string `json:"status"`
}

// ChangeStatus moves a task through its lifecycle. Completing a task awards
// points and spawns the next instance of a recurring task.
func (h *TaskHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	taskID, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid task id"})
		return
	}

	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid request body"})
		return
	}

	task, err := h.taskService.ChangeStatus(claims.UserID, taskID, models.TaskStatus(req.Status))
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondData(w, http.StatusOK, newTaskView(task))
}

// Delete removes a task (parent only)
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	taskID, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid task id"})
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), claims.UserID, taskID); err != nil {
		respondError(w, r, err)
		return
	}

	respondMessage(w, http.StatusOK, "task deleted")
}
