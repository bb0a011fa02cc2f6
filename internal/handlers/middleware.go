package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"typeb/internal/models"
	"typeb/internal/security"
	"typeb/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const ClaimsContextKey ContextKey = "claims"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService *service.AuthService
	limiter     *security.RateLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService, limiter *security.RateLimiter) *Middleware {
	return &Middleware{
		authService: authService,
		limiter:     limiter,
	}
}

// RequireAuth validates the bearer token and puts its claims in the request
// context
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, APIResponse{Success: false, Message: "missing bearer token"})
			return
		}

		claims, err := m.authService.ValidateAccessToken(token)
		if err != nil {
			respondError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// RequireParent requires an authenticated request from a parent account
func (m *Middleware) RequireParent(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil || claims.Role != string(models.RoleParent) {
			writeJSON(w, http.StatusForbidden, APIResponse{Success: false, Message: "parent account required"})
			return
		}
		next(w, r)
	})
}

// RateLimit rejects requests from clients that exceed the limiter's budget
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !m.limiter.Allow(security.ClientIP(r)) {
			writeJSON(w, http.StatusTooManyRequests, APIResponse{Success: false, Message: "too many requests"})
			return
		}
		next(w, r)
	}
}

// ClaimsFromContext returns the authenticated claims, or nil
func ClaimsFromContext(ctx context.Context) *security.Claims {
	claims, _ := ctx.Value(ClaimsContextKey).(*security.Claims)
	return claims
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s %v", r.Method, r.URL.Path, security.ClientIP(r), time.Since(start))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
