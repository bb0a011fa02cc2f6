package handlers

import (
	"errors"
	"io"
	"net/http"

	"typeb/internal/service"
)

// SubmissionHandler handles task submission HTTP requests
type SubmissionHandler struct {
	submissionService *service.SubmissionService
	maxUploadSize     int64
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(submissionService *service.SubmissionService, maxUploadSize int64) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
		maxUploadSize:     maxUploadSize,
	}
}

// Submit records a completion attempt for a task. The request is multipart
// form data with an optional "photo" file part and "note" field.
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	taskID, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid task id"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, APIResponse{Success: false, Message: "photo exceeds the upload size limit"})
			return
		}
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid multipart form"})
		return
	}

	note := r.FormValue("note")

	file, header, err := r.FormFile("photo")
	var submission interface{}
	if err == http.ErrMissingFile || header == nil {
		result, serr := h.submissionService.Submit(r.Context(), claims.UserID, taskID, nil, 0, "", note)
		if serr != nil {
			respondError(w, r, serr)
			return
		}
		submission = newSubmissionView(result)
	} else if err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid photo upload"})
		return
	} else {
		defer file.Close()
		contentType := header.Header.Get("Content-Type")
		result, serr := h.submissionService.Submit(r.Context(), claims.UserID, taskID, file, header.Size, contentType, note)
		if serr != nil {
			respondError(w, r, serr)
			return
		}
		submission = newSubmissionView(result)
	}

	respondData(w, http.StatusCreated, submission)
}

// Queue returns the pending submissions awaiting review (parent only)
func (h *SubmissionHandler) Queue(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	familyID, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid family id"})
		return
	}

	entries, err := h.submissionService.Queue(r.Context(), claims.UserID, familyID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	views := make([]queueEntryView, 0, len(entries))
	for i := range entries {
		views = append(views, newQueueEntryView(&entries[i]))
	}
	respondData(w, http.StatusOK, views)
}

type reviewRequest struct {
	Notes string `json:"notes"`
}

// Approve accepts a submission, completing the task and awarding points
func (h *SubmissionHandler) Approve(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	submissionID, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid submission id"})
		return
	}

	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid request body"})
		return
	}

	submission, err := h.submissionService.Approve(claims.UserID, submissionID, req.Notes)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondData(w, http.StatusOK, newSubmissionView(submission))
}

// Reject declines a submission with review notes
func (h *SubmissionHandler) Reject(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	submissionID, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid submission id"})
		return
	}

	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid request body"})
		return
	}

	submission, err := h.submissionService.Reject(claims.UserID, submissionID, req.Notes)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondData(w, http.StatusOK, newSubmissionView(submission))
}

// ListForTask returns a task's submission history
func (h *SubmissionHandler) ListForTask(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	taskID, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid task id"})
		return
	}

	submissions, err := h.submissionService.GetTaskSubmissions(claims.UserID, taskID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	views := make([]submissionView, 0, len(submissions))
	for i := range submissions {
		views = append(views, newSubmissionView(&submissions[i]))
	}
	respondData(w, http.StatusOK, views)
}
