package service

import (
	"errors"
	"testing"
	"time"

	"github.com/chestno/chestno-api/internal/config"
	"github.com/chestno/chestno-api/internal/constants"
	"github.com/chestno/chestno-api/internal/repository"

	"gorm.io/gorm"
)

func newUserAuthForTest(t *testing.T) (*UserAuthService, *gorm.DB) {
	t.Helper()
	db := setupServiceDB(t)
	cfg := &config.Config{
		Session: config.SessionConfig{TTLHours: 1},
		Security: config.SecurityConfig{
			PasswordPolicy: config.PasswordPolicyConfig{MinLength: 8},
		},
	}
	return NewUserAuthService(cfg, repository.NewUserRepository(db), repository.NewSessionRepository(db)), db
}

func TestRegisterValidatesInput(t *testing.T) {
	svc, _ := newUserAuthForTest(t)

	if _, err := svc.Register(RegisterInput{Email: "not-an-email", Password: "Password1"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for bad email, got %v", err)
	}
	if _, err := svc.Register(RegisterInput{Email: "user@example.com", Password: "short"}); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected weak password error, got %v", err)
	}

	user, err := svc.Register(RegisterInput{Email: "User@Example.com", Password: "Password1", Locale: "xx"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Email != "user@example.com" {
		t.Fatalf("email not normalized: %s", user.Email)
	}
	if user.DisplayName != "user" {
		t.Fatalf("expected display name from email, got %s", user.DisplayName)
	}
	if user.Locale != "ru" {
		t.Fatalf("unsupported locale must default to ru, got %s", user.Locale)
	}

	if _, err := svc.Register(RegisterInput{Email: "user@example.com", Password: "Password1"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict for duplicate email, got %v", err)
	}
}

func TestLoginAndResolveSession(t *testing.T) {
	svc, _ := newUserAuthForTest(t)
	if _, err := svc.Register(RegisterInput{Email: "user@example.com", Password: "Password1"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, _, err := svc.Login("user@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}

	user, session, err := svc.Login("user@example.com", "Password1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if session.Token == "" {
		t.Fatalf("expected session token")
	}

	resolved, err := svc.ResolveSession(session.Token)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved.ID != user.ID {
		t.Fatalf("resolved wrong user: %d vs %d", resolved.ID, user.ID)
	}

	if err := svc.Logout(session.Token); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := svc.ResolveSession(session.Token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected expired session after logout, got %v", err)
	}
}

func TestResolveSessionRejectsDisabledUser(t *testing.T) {
	svc, db := newUserAuthForTest(t)
	if _, err := svc.Register(RegisterInput{Email: "user@example.com", Password: "Password1"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	_, session, err := svc.Login("user@example.com", "Password1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := db.Exec("UPDATE users SET status = ?", constants.UserStatusDisabled).Error; err != nil {
		t.Fatalf("disable user failed: %v", err)
	}
	if _, err := svc.ResolveSession(session.Token); !errors.Is(err, ErrUserDisabled) {
		t.Fatalf("expected disabled error, got %v", err)
	}
}

func TestPurgeExpiredSessions(t *testing.T) {
	svc, db := newUserAuthForTest(t)
	if _, err := svc.Register(RegisterInput{Email: "user@example.com", Password: "Password1"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	_, session, err := svc.Login("user@example.com", "Password1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := db.Exec("UPDATE sessions SET expires_at = ?", time.Now().Add(-time.Hour)).Error; err != nil {
		t.Fatalf("expire session failed: %v", err)
	}
	purged, err := svc.PurgeExpiredSessions()
	if err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if purged != 1 {
		t.Fatalf("expected 1 purged session, got %d", purged)
	}
	if _, err := svc.ResolveSession(session.Token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected expired session, got %v", err)
	}
}
