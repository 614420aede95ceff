package service

import (
	"errors"
	"testing"

	"github.com/chestno/chestno-api/internal/constants"
	"github.com/chestno/chestno-api/internal/models"
	"github.com/chestno/chestno-api/internal/repository"

	"gorm.io/gorm"
)

func newSocialForTest(t *testing.T) (*SocialService, *gorm.DB) {
	t.Helper()
	db := setupServiceDB(t)
	return NewSocialService(repository.NewFollowRepository(db), repository.NewOrganizationRepository(db)), db
}

func seedOrgForFollow(t *testing.T, db *gorm.DB, slug string) *models.Organization {
	t.Helper()
	org := &models.Organization{Slug: slug, Name: slug, StatusLevel: constants.StatusLevelC}
	if err := db.Create(org).Error; err != nil {
		t.Fatalf("create org failed: %v", err)
	}
	return org
}

func TestFollowLifecycle(t *testing.T) {
	svc, db := newSocialForTest(t)
	org := seedOrgForFollow(t, db, "farm")

	if err := svc.Follow(5, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for unknown org, got %v", err)
	}
	if err := svc.Follow(5, org.ID); err != nil {
		t.Fatalf("follow failed: %v", err)
	}
	if err := svc.Follow(5, org.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict on double follow, got %v", err)
	}

	following, err := svc.IsFollowing(5, org.ID)
	if err != nil {
		t.Fatalf("is-following failed: %v", err)
	}
	if !following {
		t.Fatalf("expected user to be following")
	}

	count, err := svc.FollowerCount(org.ID)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 follower, got %d", count)
	}

	if err := svc.Unfollow(5, org.ID); err != nil {
		t.Fatalf("unfollow failed: %v", err)
	}
	// Unfollowing again is a no-op, not an error.
	if err := svc.Unfollow(5, org.ID); err != nil {
		t.Fatalf("repeat unfollow failed: %v", err)
	}
}

func TestListFollowedPages(t *testing.T) {
	svc, db := newSocialForTest(t)
	first := seedOrgForFollow(t, db, "farm")
	second := seedOrgForFollow(t, db, "dairy")
	third := seedOrgForFollow(t, db, "bakery")
	for _, org := range []*models.Organization{first, second, third} {
		if err := svc.Follow(5, org.ID); err != nil {
			t.Fatalf("follow failed: %v", err)
		}
	}

	orgs, total, err := svc.ListFollowed(5, 1, 2)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected total 3, got %d", total)
	}
	if len(orgs) != 2 {
		t.Fatalf("expected 2 orgs on the first page, got %d", len(orgs))
	}

	rest, _, err := svc.ListFollowed(5, 2, 2)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(rest) != 1 {
		t.Fatalf("expected 1 org on the second page, got %d", len(rest))
	}

	// Another user follows nothing.
	none, total, err := svc.ListFollowed(6, 1, 20)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 0 || len(none) != 0 {
		t.Fatalf("expected empty result, got %d/%d", len(none), total)
	}
}
