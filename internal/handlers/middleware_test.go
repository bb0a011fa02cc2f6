package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"typeb/internal/security"
	"typeb/internal/service"
)

func testMiddleware(t *testing.T) (*Middleware, *security.TokenIssuer) {
	t.Helper()

	issuer, err := security.NewTokenIssuer("test-secret", "typeb", 15*time.Minute)
	if err != nil {
		t.Fatalf("NewTokenIssuer() error = %v", err)
	}
	authService := service.NewAuthService(nil, nil, issuer, time.Hour, time.Hour)
	limiter := security.NewRateLimiter(2, time.Hour)
	return NewMiddleware(authService, limiter), issuer
}

func TestRequireAuth(t *testing.T) {
	m, issuer := testMiddleware(t)

	handler := m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil {
			t.Error("expected claims in request context")
		} else if claims.UserID != 42 {
			t.Errorf("claims.UserID = %d, want 42", claims.UserID)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("missing token", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		handler(recorder, httptest.NewRequest("GET", "/api/v1/me", nil))
		if recorder.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", recorder.Code)
		}
	})

	t.Run("malformed token", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/v1/me", nil)
		r.Header.Set("Authorization", "Bearer garbage")
		handler(recorder, r)
		if recorder.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", recorder.Code)
		}
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := issuer.Issue(42, "parent", 1)
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}
		recorder := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/v1/me", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		handler(recorder, r)
		if recorder.Code != http.StatusNoContent {
			t.Errorf("expected 204, got %d", recorder.Code)
		}
	})
}

func TestRequireParent(t *testing.T) {
	m, issuer := testMiddleware(t)

	handler := m.RequireParent(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("child role denied", func(t *testing.T) {
		token, err := issuer.Issue(9, "child", 1)
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}
		recorder := httptest.NewRecorder()
		r := httptest.NewRequest("POST", "/api/v1/rewards", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		handler(recorder, r)
		if recorder.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", recorder.Code)
		}
	})

	t.Run("parent role allowed", func(t *testing.T) {
		token, err := issuer.Issue(2, "parent", 1)
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}
		recorder := httptest.NewRecorder()
		r := httptest.NewRequest("POST", "/api/v1/rewards", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		handler(recorder, r)
		if recorder.Code != http.StatusNoContent {
			t.Errorf("expected 204, got %d", recorder.Code)
		}
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	m, _ := testMiddleware(t)

	handler := m.RateLimit(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	req := func() *http.Request {
		r := httptest.NewRequest("POST", "/api/v1/auth/login", nil)
		r.RemoteAddr = "10.0.0.1:5000"
		return r
	}

	for i := 0; i < 2; i++ {
		recorder := httptest.NewRecorder()
		handler(recorder, req())
		if recorder.Code != http.StatusNoContent {
			t.Fatalf("request %d: expected 204, got %d", i+1, recorder.Code)
		}
	}

	recorder := httptest.NewRecorder()
	handler(recorder, req())
	if recorder.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", recorder.Code)
	}
}
