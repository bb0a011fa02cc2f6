package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"typeb/internal/models"
	"typeb/internal/repository"
	"typeb/internal/security"
	"typeb/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidRefresh     = errors.New("invalid or expired refresh token")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

// TokenPair is the credential set issued on login and refresh
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// AuthService handles authentication business logic
type AuthService struct {
	userRepo      *repository.UserRepository
	familyService *FamilyService
	issuer        *security.TokenIssuer
	refreshTTL    time.Duration
	resetTTL      time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *repository.UserRepository, familyService *FamilyService, issuer *security.TokenIssuer, refreshTTL, resetTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		familyService: familyService,
		issuer:        issuer,
		refreshTTL:    refreshTTL,
		resetTTL:      resetTTL,
	}
}

// Register creates a new account. When inviteCode is set the user joins that
// family with the requested role; otherwise they start without a family.
func (s *AuthService) Register(email, password, displayName, timezone, inviteCode string, role models.Role) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := validation.ValidateDisplayName(displayName); err != nil {
		return nil, err
	}
	if role == "" {
		role = models.RoleParent
	}
	if !role.Valid() {
		return nil, validation.ValidationError{Field: "role", Message: "role must be parent or child"}
	}

	existing, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.CreateUser(email, passwordHash, displayName, role, timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if inviteCode != "" {
		if err := s.familyService.JoinFamily(user.ID, inviteCode, role); err != nil {
			return nil, err
		}
		user, err = s.userRepo.GetUserByID(user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to reload user: %w", err)
		}
	}

	return user, nil
}

// Login authenticates a user and issues a token pair
func (s *AuthService) Login(email, password string) (*TokenPair, *models.User, error) {
	user, err := s.userRepo.GetUserByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	return pair, user, nil
}

// Refresh rotates a refresh token and issues a fresh pair
func (s *AuthService) Refresh(refreshToken string) (*TokenPair, *models.User, error) {
	stored, err := s.userRepo.GetRefreshToken(refreshToken)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get refresh token: %w", err)
	}
	if stored == nil {
		return nil, nil, ErrInvalidRefresh
	}
	if stored.IsExpired() {
		_ = s.userRepo.DeleteRefreshToken(refreshToken)
		return nil, nil, ErrInvalidRefresh
	}

	user, err := s.userRepo.GetUserByID(stored.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, nil, ErrInvalidRefresh
	}

	// Rotate: the old token is revoked before the new pair is issued
	if err := s.userRepo.DeleteRefreshToken(refreshToken); err != nil {
		return nil, nil, err
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	return pair, user, nil
}

// Logout revokes a refresh token
func (s *AuthService) Logout(refreshToken string) error {
	if err := s.userRepo.DeleteRefreshToken(refreshToken); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// GetUser retrieves a user by id
func (s *AuthService) GetUser(userID int64) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ValidateAccessToken verifies a bearer token and returns its claims
func (s *AuthService) ValidateAccessToken(token string) (*security.Claims, error) {
	return s.issuer.Validate(token)
}

// UpdateProfile updates a user's display name, timezone and notification flag
func (s *AuthService) UpdateProfile(userID int64, displayName, timezone string, notificationsEnabled bool) (*models.User, error) {
	if err := validation.ValidateDisplayName(displayName); err != nil {
		return nil, err
	}
	if timezone != "" {
		if _, err := time.LoadLocation(timezone); err != nil {
			return nil, validation.ValidationError{Field: "timezone", Message: "unknown timezone"}
		}
	} else {
		timezone = "UTC"
	}

	if err := s.userRepo.UpdateProfile(userID, strings.TrimSpace(displayName), timezone, notificationsEnabled); err != nil {
		return nil, err
	}

	return s.GetUser(userID)
}

// OAuthLogin authenticates or creates a user via an OAuth provider identity
func (s *AuthService) OAuthLogin(provider, subject, email, displayName string) (*TokenPair, *models.User, error) {
	if provider == "" || subject == "" {
		return nil, nil, errors.New("missing oauth provider information")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, nil, err
	}

	user, err := s.userRepo.GetUserByOAuth(provider, subject)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lookup oauth user: %w", err)
	}

	if user == nil {
		existing, err := s.userRepo.GetUserByEmail(email)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to check existing user: %w", err)
		}
		if existing != nil {
			if existing.OAuthProvider != "" && existing.OAuthProvider != provider {
				return nil, nil, ErrEmailTaken
			}
			if err := s.userRepo.LinkOAuthProvider(existing.ID, provider, subject); err != nil {
				return nil, nil, err
			}
			user = existing
		} else {
			if displayName == "" {
				displayName = strings.Split(email, "@")[0]
			}
			// OAuth-only accounts get an unguessable placeholder password
			placeholder, err := security.HashPassword(security.GenerateRefreshToken())
			if err != nil {
				return nil, nil, fmt.Errorf("failed to generate placeholder hash: %w", err)
			}
			user, err = s.userRepo.CreateUser(email, placeholder, displayName, models.RoleParent, "")
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create oauth user: %w", err)
			}
			if err := s.userRepo.LinkOAuthProvider(user.ID, provider, subject); err != nil {
				return nil, nil, err
			}
		}
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	return pair, user, nil
}

// RequestPasswordReset creates a reset token and emails it. Unknown
// addresses succeed silently.
func (s *AuthService) RequestPasswordReset(ctx context.Context, emailService *EmailService, email string) error {
	user, err := s.userRepo.GetUserByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil
	}

	token, err := security.GenerateResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	_ = s.userRepo.DeleteUserPasswordResetTokens(user.ID)

	expiresAt := time.Now().Add(s.resetTTL)
	if err := s.userRepo.CreatePasswordResetToken(token, user.ID, expiresAt); err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}

	if emailService != nil && emailService.IsEnabled() {
		if err := emailService.SendPasswordResetEmail(ctx, user.Email, user.DisplayName, token); err != nil {
			return fmt.Errorf("failed to send reset email: %w", err)
		}
	}

	return nil
}

// ResetPassword sets a new password using a valid single-use token and
// revokes every session for the user
func (s *AuthService) ResetPassword(token, newPassword string) error {
	reset, err := s.userRepo.GetPasswordResetToken(token)
	if err != nil {
		return fmt.Errorf("failed to get reset token: %w", err)
	}
	if reset == nil || reset.Used || reset.IsExpired() {
		return ErrInvalidResetToken
	}

	if err := validation.ValidatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(reset.UserID, passwordHash); err != nil {
		return err
	}
	if err := s.userRepo.MarkPasswordResetTokenUsed(token); err != nil {
		return err
	}
	if err := s.userRepo.DeleteUserRefreshTokens(reset.UserID); err != nil {
		log.Printf("failed to revoke sessions after password reset for user %d: %v", reset.UserID, err)
	}

	return nil
}

// CleanupExpiredTokens removes expired refresh and reset tokens
func (s *AuthService) CleanupExpiredTokens() error {
	if err := s.userRepo.DeleteExpiredRefreshTokens(); err != nil {
		return err
	}
	return s.userRepo.DeleteExpiredPasswordResetTokens()
}

func (s *AuthService) issueTokens(user *models.User) (*TokenPair, error) {
	var familyID int64
	if user.FamilyID != nil {
		familyID = *user.FamilyID
	}

	access, err := s.issuer.Issue(user.ID, string(user.Role), familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	refresh := security.GenerateRefreshToken()
	if _, err := s.userRepo.CreateRefreshToken(refresh, user.ID, time.Now().Add(s.refreshTTL)); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.issuer.TTL().Seconds()),
	}, nil
}
