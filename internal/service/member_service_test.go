package service

import (
	"errors"
	"testing"

	"github.com/chestno/chestno-api/internal/constants"
	"github.com/chestno/chestno-api/internal/models"
	"github.com/chestno/chestno-api/internal/repository"

	"gorm.io/gorm"
)

func newMemberForTest(t *testing.T) (*MemberService, *gorm.DB) {
	t.Helper()
	db := setupServiceDB(t)
	return NewMemberService(repository.NewMemberRepository(db), repository.NewUserRepository(db)), db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, DisplayName: email, Status: constants.UserStatusActive, Locale: "ru"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func seedMember(t *testing.T, db *gorm.DB, orgID, userID uint, role string) {
	t.Helper()
	member := &models.OrganizationMember{OrganizationID: orgID, UserID: userID, Role: role}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("create member failed: %v", err)
	}
}

func TestRequireRoleHidesMembership(t *testing.T) {
	svc, db := newMemberForTest(t)
	viewer := seedUser(t, db, "viewer@example.com")
	seedMember(t, db, 1, viewer.ID, constants.OrgRoleViewer)

	// Non-member and under-privileged member look identical.
	if _, err := svc.RequireRole(1, 999, constants.OrgRoleViewer); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden for non-member, got %v", err)
	}
	if _, err := svc.RequireRole(1, viewer.ID, constants.OrgRoleManager); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden for viewer acting as manager, got %v", err)
	}

	member, err := svc.RequireRole(1, viewer.ID, constants.OrgRoleViewer)
	if err != nil {
		t.Fatalf("require role failed: %v", err)
	}
	if member.Role != constants.OrgRoleViewer {
		t.Fatalf("unexpected role %s", member.Role)
	}
}

func TestInviteByEmail(t *testing.T) {
	svc, db := newMemberForTest(t)
	user := seedUser(t, db, "staff@example.com")

	if _, err := svc.Invite(1, "staff@example.com", "boss"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for unknown role, got %v", err)
	}
	if _, err := svc.Invite(1, "nobody@example.com", constants.OrgRoleManager); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for unregistered email, got %v", err)
	}

	member, err := svc.Invite(1, " Staff@Example.com ", constants.OrgRoleManager)
	if err != nil {
		t.Fatalf("invite failed: %v", err)
	}
	if member.UserID != user.ID || member.Role != constants.OrgRoleManager {
		t.Fatalf("unexpected member: %+v", member)
	}

	if _, err := svc.Invite(1, "staff@example.com", constants.OrgRoleViewer); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict for repeat invite, got %v", err)
	}
}

func TestLastOwnerIsProtected(t *testing.T) {
	svc, db := newMemberForTest(t)
	owner := seedUser(t, db, "owner@example.com")
	second := seedUser(t, db, "second@example.com")
	seedMember(t, db, 1, owner.ID, constants.OrgRoleOwner)
	seedMember(t, db, 1, second.ID, constants.OrgRoleManager)

	if err := svc.ChangeRole(1, owner.ID, constants.OrgRoleManager); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error demoting the only owner, got %v", err)
	}
	if err := svc.Remove(1, owner.ID); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error removing the only owner, got %v", err)
	}

	if err := svc.ChangeRole(1, second.ID, constants.OrgRoleOwner); err != nil {
		t.Fatalf("promote failed: %v", err)
	}
	// With two owners the first one may step down.
	if err := svc.ChangeRole(1, owner.ID, constants.OrgRoleViewer); err != nil {
		t.Fatalf("demote with second owner failed: %v", err)
	}
	if err := svc.Remove(1, owner.ID); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	views, err := svc.ListMembers(1)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(views) != 1 || views[0].UserID != second.ID {
		t.Fatalf("unexpected members: %+v", views)
	}
}
