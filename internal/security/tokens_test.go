package security

import (
	"errors"
	"testing"
	"time"
)

func TestTokenIssuerRoundTrip(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret", "typeb", 15*time.Minute)
	if err != nil {
		t.Fatalf("NewTokenIssuer() error = %v", err)
	}

	token, err := issuer.Issue(42, "parent", 7)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims, err := issuer.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Role != "parent" {
		t.Errorf("Role = %q, want %q", claims.Role, "parent")
	}
	if claims.FamilyID != 7 {
		t.Errorf("FamilyID = %d, want 7", claims.FamilyID)
	}
}

func TestTokenIssuerRequiresSecret(t *testing.T) {
	if _, err := NewTokenIssuer("", "typeb", time.Minute); err == nil {
		t.Error("NewTokenIssuer() with empty secret should fail")
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	issuer, err := NewTokenIssuer("secret-a", "typeb", 15*time.Minute)
	if err != nil {
		t.Fatalf("NewTokenIssuer() error = %v", err)
	}
	other, err := NewTokenIssuer("secret-b", "typeb", 15*time.Minute)
	if err != nil {
		t.Fatalf("NewTokenIssuer() error = %v", err)
	}

	token, err := issuer.Issue(1, "child", 0)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate() with wrong secret error = %v, want ErrInvalidToken", err)
	}
}

func TestValidateRejectsWrongIssuer(t *testing.T) {
	a, err := NewTokenIssuer("shared-secret", "typeb", 15*time.Minute)
	if err != nil {
		t.Fatalf("NewTokenIssuer() error = %v", err)
	}
	b, err := NewTokenIssuer("shared-secret", "someone-else", 15*time.Minute)
	if err != nil {
		t.Fatalf("NewTokenIssuer() error = %v", err)
	}

	token, err := b.Issue(1, "child", 0)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := a.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate() with wrong issuer error = %v, want ErrInvalidToken", err)
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret", "typeb", -1*time.Minute)
	if err != nil {
		t.Fatalf("NewTokenIssuer() error = %v", err)
	}

	token, err := issuer.Issue(1, "child", 0)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := issuer.Validate(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Validate() on expired token error = %v, want ErrExpiredToken", err)
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret", "typeb", 15*time.Minute)
	if err != nil {
		t.Fatalf("NewTokenIssuer() error = %v", err)
	}

	if _, err := issuer.Validate("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate() on garbage error = %v, want ErrInvalidToken", err)
	}
}

func TestGenerateInviteCode(t *testing.T) {
	code := GenerateInviteCode()
	if len(code) != InviteCodeLength {
		t.Errorf("invite code length = %d, want %d", len(code), InviteCodeLength)
	}
	for _, r := range code {
		if (r < '0' || r > '9') && (r < 'A' || r > 'F') {
			t.Errorf("invite code %q contains unexpected character %q", code, r)
		}
	}
}

func TestGenerateResetToken(t *testing.T) {
	token, err := GenerateResetToken()
	if err != nil {
		t.Fatalf("GenerateResetToken() error = %v", err)
	}
	if len(token) != 64 {
		t.Errorf("reset token length = %d, want 64", len(token))
	}

	other, err := GenerateResetToken()
	if err != nil {
		t.Fatalf("GenerateResetToken() error = %v", err)
	}
	if token == other {
		t.Error("two reset tokens should differ")
	}
}

func TestGenerateRefreshTokensAreUnique(t *testing.T) {
	if GenerateRefreshToken() == GenerateRefreshToken() {
		t.Error("two refresh tokens should differ")
	}
}
