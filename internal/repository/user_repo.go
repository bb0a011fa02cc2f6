package repository

import (
	"database/sql"
	"fmt"
	"time"

	"typeb/internal/database"
	"typeb/internal/models"
)

const userColumns = `id, email, password_hash, display_name, role, family_id,
	notifications_enabled, timezone, is_premium, points_balance,
	oauth_provider, oauth_subject, created_at, updated_at`

// UserRepository handles database operations for users and their tokens
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.DisplayName,
		&user.Role,
		&user.FamilyID,
		&user.NotificationsEnabled,
		&user.Timezone,
		&user.IsPremium,
		&user.PointsBalance,
		&user.OAuthProvider,
		&user.OAuthSubject,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return user, nil
}

// CreateUser inserts a new user account
func (r *UserRepository) CreateUser(email, passwordHash, displayName string, role models.Role, timezone string) (*models.User, error) {
	if timezone == "" {
		timezone = "UTC"
	}
	query := `INSERT INTO users (email, password_hash, display_name, role, timezone)
		VALUES (?, ?, ?, ?, ?)`
	id, err := r.db.ExecReturningID(query, email, passwordHash, displayName, string(role), timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return r.GetUserByID(id)
}

// GetUserByID retrieves a user by id
func (r *UserRepository) GetUserByID(id int64) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id = ?"
	return scanUser(r.db.QueryRow(query, id))
}

// GetUserByEmail retrieves a user by email
func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE email = ?"
	return scanUser(r.db.QueryRow(query, email))
}

// GetUserByOAuth retrieves a user by OAuth provider and subject
func (r *UserRepository) GetUserByOAuth(provider, subject string) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE oauth_provider = ? AND oauth_subject = ?"
	return scanUser(r.db.QueryRow(query, provider, subject))
}

// LinkOAuthProvider attaches an OAuth identity to an existing account
func (r *UserRepository) LinkOAuthProvider(userID int64, provider, subject string) error {
	query := `UPDATE users SET oauth_provider = ?, oauth_subject = ?,
		updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	if _, err := r.db.Exec(query, provider, subject, userID); err != nil {
		return fmt.Errorf("failed to link oauth provider: %w", err)
	}
	return nil
}

// UpdateProfile updates a user's mutable profile fields
func (r *UserRepository) UpdateProfile(userID int64, displayName, timezone string, notificationsEnabled bool) error {
	query := `UPDATE users SET display_name = ?, timezone = ?,
		notifications_enabled = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	if _, err := r.db.Exec(query, displayName, timezone, notificationsEnabled, userID); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// UpdatePassword replaces a user's password hash
func (r *UserRepository) UpdatePassword(userID int64, passwordHash string) error {
	query := "UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.Exec(query, passwordHash, userID); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// SetFamily assigns a user to a family with the given role. A nil familyID
// detaches the user.
func (r *UserRepository) SetFamily(q database.DBTX, userID int64, familyID *int64, role models.Role) error {
	query := "UPDATE users SET family_id = ?, role = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := q.Exec(query, familyID, string(role), userID); err != nil {
		return fmt.Errorf("failed to set family: %w", err)
	}
	return nil
}

// AddPoints adjusts a user's points balance by delta inside the caller's
// transaction. A negative delta fails when the balance would go below zero.
func (r *UserRepository) AddPoints(q database.DBTX, userID int64, delta int) error {
	if delta < 0 {
		query := "UPDATE users SET points_balance = points_balance + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND points_balance >= ?"
		result, err := q.Exec(query, delta, userID, -delta)
		if err != nil {
			return fmt.Errorf("failed to deduct points: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to deduct points: %w", err)
		}
		if affected == 0 {
			return sql.ErrNoRows
		}
		return nil
	}

	query := "UPDATE users SET points_balance = points_balance + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := q.Exec(query, delta, userID); err != nil {
		return fmt.Errorf("failed to add points: %w", err)
	}
	return nil
}

// CreateRefreshToken stores a refresh token
func (r *UserRepository) CreateRefreshToken(token string, userID int64, expiresAt time.Time) (*models.RefreshToken, error) {
	query := "INSERT INTO refresh_tokens (token, user_id, expires_at) VALUES (?, ?, ?)"
	if _, err := r.db.Exec(query, token, userID, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to create refresh token: %w", err)
	}
	return &models.RefreshToken{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}, nil
}

// GetRefreshToken retrieves a refresh token
func (r *UserRepository) GetRefreshToken(token string) (*models.RefreshToken, error) {
	query := "SELECT token, user_id, expires_at, created_at FROM refresh_tokens WHERE token = ?"
	rt := &models.RefreshToken{}
	err := r.db.QueryRow(query, token).Scan(&rt.Token, &rt.UserID, &rt.ExpiresAt, &rt.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}
	return rt, nil
}

// DeleteRefreshToken revokes a refresh token
func (r *UserRepository) DeleteRefreshToken(token string) error {
	if _, err := r.db.Exec("DELETE FROM refresh_tokens WHERE token = ?", token); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

// DeleteUserRefreshTokens revokes every refresh token for a user
func (r *UserRepository) DeleteUserRefreshTokens(userID int64) error {
	if _, err := r.db.Exec("DELETE FROM refresh_tokens WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to delete user refresh tokens: %w", err)
	}
	return nil
}

// DeleteExpiredRefreshTokens removes expired refresh tokens
func (r *UserRepository) DeleteExpiredRefreshTokens() error {
	if _, err := r.db.Exec("DELETE FROM refresh_tokens WHERE expires_at < ?", time.Now()); err != nil {
		return fmt.Errorf("failed to delete expired refresh tokens: %w", err)
	}
	return nil
}

// CreatePasswordResetToken stores a password reset token
func (r *UserRepository) CreatePasswordResetToken(token string, userID int64, expiresAt time.Time) error {
	query := "INSERT INTO password_reset_tokens (token, user_id, expires_at) VALUES (?, ?, ?)"
	if _, err := r.db.Exec(query, token, userID, expiresAt); err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}
	return nil
}

// GetPasswordResetToken retrieves a password reset token
func (r *UserRepository) GetPasswordResetToken(token string) (*models.PasswordResetToken, error) {
	query := "SELECT token, user_id, expires_at, created_at, used FROM password_reset_tokens WHERE token = ?"
	t := &models.PasswordResetToken{}
	err := r.db.QueryRow(query, token).Scan(&t.Token, &t.UserID, &t.ExpiresAt, &t.CreatedAt, &t.Used)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reset token: %w", err)
	}
	return t, nil
}

// MarkPasswordResetTokenUsed marks a reset token as consumed
func (r *UserRepository) MarkPasswordResetTokenUsed(token string) error {
	query := "UPDATE password_reset_tokens SET used = ? WHERE token = ?"
	if _, err := r.db.Exec(query, true, token); err != nil {
		return fmt.Errorf("failed to mark reset token used: %w", err)
	}
	return nil
}

// DeleteUserPasswordResetTokens removes all reset tokens for a user
func (r *UserRepository) DeleteUserPasswordResetTokens(userID int64) error {
	if _, err := r.db.Exec("DELETE FROM password_reset_tokens WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to delete user reset tokens: %w", err)
	}
	return nil
}

// DeleteExpiredPasswordResetTokens removes expired reset tokens
func (r *UserRepository) DeleteExpiredPasswordResetTokens() error {
	if _, err := r.db.Exec("DELETE FROM password_reset_tokens WHERE expires_at < ?", time.Now()); err != nil {
		return fmt.Errorf("failed to delete expired reset tokens: %w", err)
	}
	return nil
}
