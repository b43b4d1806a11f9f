package service

import (
	"errors"
	"testing"

	"github.com/aurelia-jewelry/internal/config"
	"github.com/aurelia-jewelry/internal/constants"
	"github.com/aurelia-jewelry/internal/models"
	"github.com/aurelia-jewelry/internal/repository"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	db := openServiceTestDB(t)
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	if err := db.Create(&models.Admin{Username: "owner", PasswordHash: hash, Role: constants.RoleAdmin}).Error; err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	return NewAuthService(config.JWTConfig{SecretKey: "test-secret", ExpireHours: 2}, repository.NewAdminRepository(db))
}

func TestLoginIssuesParsableToken(t *testing.T) {
	svc := newTestAuthService(t)
	result, err := svc.Login(" owner ", "s3cret-pass")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.Token == "" || result.Admin.LastLoginAt == nil {
		t.Fatalf("unexpected login result: %+v", result)
	}
	claims, err := svc.ParseJWT(result.Token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.Username != "owner" || claims.Role != constants.RoleAdmin || claims.AdminID != result.Admin.ID {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestAuthService(t)
	for _, tc := range [][2]string{{"owner", "wrong"}, {"ghost", "s3cret-pass"}, {"", ""}} {
		if _, err := svc.Login(tc[0], tc[1]); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("login %q expected invalid credentials, got %v", tc[0], err)
		}
	}
}

func TestParseJWTRejectsForeignSecret(t *testing.T) {
	svc := newTestAuthService(t)
	other := NewAuthService(config.JWTConfig{SecretKey: "other-secret"}, nil)
	token, _, err := other.GenerateJWT(&models.Admin{ID: 1, Username: "owner", Role: constants.RoleAdmin})
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}
	if _, err := svc.ParseJWT(token); err == nil {
		t.Fatalf("token signed with another secret must be rejected")
	}
}
