package security

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Claims are the access token claims carried on every authenticated request
type Claims struct {
	UserID   int64  `json:"uid"`
	Role     string `json:"role"`
	FamilyID int64  `json:"fid,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and validates HS256 access tokens
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenIssuer creates a token issuer. The secret must be non-empty.
func NewTokenIssuer(secret, issuer string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("JWT secret is not set")
	}
	return &TokenIssuer{secret: []byte(secret), issuer: issuer, ttl: ttl}, nil
}

// TTL returns the lifetime signed into issued tokens
func (ti *TokenIssuer) TTL() time.Duration {
	return ti.ttl
}

// Issue mints a signed access token for a user
func (ti *TokenIssuer) Issue(userID int64, role string, familyID int64) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   userID,
		Role:     role,
		FamilyID: familyID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ti.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(ti.secret)
}

// Validate parses and verifies an access token, returning its claims
func (ti *TokenIssuer) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return ti.secret, nil
	}, jwt.WithIssuer(ti.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateRefreshToken creates an opaque refresh token
func GenerateRefreshToken() string {
	return uuid.New().String() + uuid.New().String()
}

// GenerateResetToken creates a cryptographically secure password reset token
func GenerateResetToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// InviteCodeLength is the number of characters in a family invite code
const InviteCodeLength = 6

// GenerateInviteCode derives a 6-character upper-cased code from a fresh
// UUID. Uniqueness is enforced at the database level; callers retry on
// collision.
func GenerateInviteCode() string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return strings.ToUpper(id[:InviteCodeLength])
}
