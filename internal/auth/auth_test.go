package auth

import (
	"context"
	"testing"

	"github.com/YeonghyeonKO/waffle-sugang/internal/config"
)

func TestAuthorize(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}
	handler := NewAuthHandler(cfg, nil)

	token, err := handler.GenerateToken(42)
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}

	t.Run("ValidToken", func(t *testing.T) {
		userID, err := handler.Authorize(context.Background(), "Bearer "+token)
		if err != nil {
			t.Fatalf("Authorize returned error: %v", err)
		}
		if userID != 42 {
			t.Errorf("expected user 42, got %d", userID)
		}
	})

	t.Run("MissingHeader", func(t *testing.T) {
		if _, err := handler.Authorize(context.Background(), ""); err == nil {
			t.Fatal("expected error for missing header")
		}
	})

	t.Run("WrongScheme", func(t *testing.T) {
		if _, err := handler.Authorize(context.Background(), "Token "+token); err == nil {
			t.Fatal("expected error for non-bearer scheme")
		}
	})

	t.Run("GarbageToken", func(t *testing.T) {
		if _, err := handler.Authorize(context.Background(), "Bearer not-a-jwt"); err == nil {
			t.Fatal("expected error for malformed token")
		}
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other := NewAuthHandler(&config.Config{JWTSecret: "other-secret"}, nil)
		otherToken, err := other.GenerateToken(42)
		if err != nil {
			t.Fatalf("GenerateToken returned error: %v", err)
		}
		if _, err := handler.Authorize(context.Background(), "Bearer "+otherToken); err == nil {
			t.Fatal("expected error for token signed with another secret")
		}
	})
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("password")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "password" {
		t.Fatal("hash must differ from the plain password")
	}
	if !CheckPassword(hash, "password") {
		t.Error("expected matching password to verify")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("expected non-matching password to fail")
	}
}
