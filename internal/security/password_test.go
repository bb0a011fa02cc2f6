package security

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	password := "Secret1!"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == password {
		t.Fatal("hash should not equal the plaintext password")
	}

	if !CheckPassword(password, hash) {
		t.Error("CheckPassword() should accept the correct password")
	}
	if CheckPassword("wrong-password", hash) {
		t.Error("CheckPassword() should reject an incorrect password")
	}
}

func TestHashPasswordProducesUniqueHashes(t *testing.T) {
	h1, err := HashPassword("Secret1!")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	h2, err := HashPassword("Secret1!")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password should differ (random salt)")
	}
}
