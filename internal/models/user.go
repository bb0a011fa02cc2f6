package models

import "time"

// Role distinguishes parents (managers) from children (members)
type Role string

const (
	RoleParent Role = "parent"
	RoleChild  Role = "child"
)

// Valid reports whether the role is one of the known values
func (r Role) Valid() bool {
	return r == RoleParent || r == RoleChild
}

// User represents an account in the system. A user belongs to at most one
// family; FamilyID is nil until they create or join one.
type User struct {
	ID                   int64
	Email                string
	PasswordHash         string
	DisplayName          string
	Role                 Role
	FamilyID             *int64
	NotificationsEnabled bool
	Timezone             string
	IsPremium            bool
	PointsBalance        int
	OAuthProvider        string
	OAuthSubject         string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Location resolves the user's IANA timezone, falling back to UTC
func (u *User) Location() *time.Location {
	if u.Timezone != "" {
		if loc, err := time.LoadLocation(u.Timezone); err == nil {
			return loc
		}
	}
	return time.UTC
}

// RefreshToken is an opaque long-lived credential exchanged for access tokens
type RefreshToken struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired checks if the refresh token has expired
func (t *RefreshToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// PasswordResetToken represents a single-use token for password reset
type PasswordResetToken struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
	Used      bool
}

// IsExpired checks if the reset token has expired
func (t *PasswordResetToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}
