package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRespondData(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondData(recorder, http.StatusCreated, map[string]int{"id": 7})

	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", recorder.Code)
	}
	if ct := recorder.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var resp struct {
		Success bool           `json:"success"`
		Data    map[string]int `json:"data"`
	}
	if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success {
		t.Error("expected success=true")
	}
	if resp.Data["id"] != 7 {
		t.Errorf("data.id = %d, want 7", resp.Data["id"])
	}
}

func TestRespondMessage(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondMessage(recorder, http.StatusOK, "logged out")

	var resp APIResponse
	if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success {
		t.Error("expected success=true")
	}
	if resp.Message != "logged out" {
		t.Errorf("message = %q, want %q", resp.Message, "logged out")
	}
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@b.com","bogus":true}`))

	var dst struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &dst); err == nil {
		t.Error("decodeJSON() should reject unknown fields")
	}
}

func TestDecodeJSON(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@b.com"}`))

	var dst struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &dst); err != nil {
		t.Fatalf("decodeJSON() error = %v", err)
	}
	if dst.Email != "a@b.com" {
		t.Errorf("email = %q, want %q", dst.Email, "a@b.com")
	}
}
