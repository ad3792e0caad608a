package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shikshaprep/mocktest-backend/internal/config"
	"github.com/shikshaprep/mocktest-backend/internal/model"
	"golang.org/x/crypto/bcrypt"
)

func testAuthService() *AuthService {
	return NewAuthService(&config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: bcrypt.MinCost,
	})
}

func TestPasswordHashRoundTrip(t *testing.T) {
	s := testAuthService()

	hash, err := s.HashPassword("password123")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hash == "password123" {
		t.Fatal("hash must not equal the plaintext")
	}

	if err := s.CheckPassword(hash, "password123"); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := s.CheckPassword(hash, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password should return ErrInvalidCredentials, got %v", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	s := testAuthService()

	token, err := s.GenerateToken(42, model.RoleAdmin)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := s.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("expected user_id 42, got %d", claims.UserID)
	}
	if claims.Role != model.RoleAdmin {
		t.Errorf("expected admin role, got %q", claims.Role)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	s := testAuthService()
	token, err := s.GenerateToken(1, model.RoleUser)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	other := NewAuthService(&config.Config{JWTSecret: "different-secret", JWTExpiry: time.Hour})
	if _, err := other.ValidateToken(token); err == nil {
		t.Error("token signed with another secret must be rejected")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	s := NewAuthService(&config.Config{
		JWTSecret: "test-secret",
		JWTExpiry: -time.Minute,
	})
	token, err := s.GenerateToken(1, model.RoleUser)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := s.ValidateToken(token); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Errorf("expired token should surface jwt.ErrTokenExpired, got %v", err)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	s := testAuthService()
	if _, err := s.ValidateToken("not.a.token"); err == nil {
		t.Error("garbage token must be rejected")
	}
}
