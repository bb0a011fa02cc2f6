package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"typeb/internal/service"
	"typeb/internal/validation"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation error", validation.ValidationError{Field: "email", Message: "bad"}, http.StatusBadRequest},
		{"validation errors", validation.ValidationErrors{{Field: "title", Message: "bad"}}, http.StatusBadRequest},
		{"invalid credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"not a member", service.ErrNotFamilyMember, http.StatusForbidden},
		{"not a parent", service.ErrNotParent, http.StatusForbidden},
		{"premium required", service.ErrPremiumRequired, http.StatusForbidden},
		{"task not found", service.ErrTaskNotFound, http.StatusNotFound},
		{"reward not found", service.ErrRewardNotFound, http.StatusNotFound},
		{"email taken", service.ErrEmailTaken, http.StatusConflict},
		{"invalid transition", service.ErrInvalidTransition, http.StatusConflict},
		{"duplicate pending", service.ErrDuplicatePending, http.StatusConflict},
		{"insufficient points", service.ErrInsufficientPoints, http.StatusConflict},
		{"invalid invite code", service.ErrInvalidInviteCode, http.StatusBadRequest},
		{"photo required", service.ErrPhotoRequired, http.StatusBadRequest},
		{"wrapped sentinel", fmt.Errorf("redeeming: %w", service.ErrRewardInactive), http.StatusConflict},
		{"unknown error", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestRespondErrorWritesEnvelope(t *testing.T) {
	recorder := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/v1/tasks", nil)

	respondError(recorder, r, service.ErrTaskNotFound)

	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", recorder.Code)
	}

	var resp APIResponse
	if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Success {
		t.Error("error response should have success=false")
	}
	if resp.Message == "" {
		t.Error("error response should carry a message")
	}
}

func TestRespondErrorMasksInternalDetail(t *testing.T) {
	var buf bytes.Buffer
	logger := log.Default()
	originalOutput := logger.Writer()
	logger.SetOutput(&buf)
	defer logger.SetOutput(originalOutput)

	recorder := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/v1/me", nil)

	respondError(recorder, r, errors.New("pq: connection refused"))

	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", recorder.Code)
	}

	body := recorder.Body.String()
	if strings.Contains(body, "connection refused") {
		t.Errorf("response body leaked internal detail: %q", body)
	}
	if !strings.Contains(body, "internal server error") {
		t.Errorf("expected generic message, got %q", body)
	}
	if !strings.Contains(buf.String(), "connection refused") {
		t.Errorf("expected log to include underlying error, got %q", buf.String())
	}
}
