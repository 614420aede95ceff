package service

import (
	"errors"
	"testing"

	"github.com/chestno/chestno-api/internal/constants"
	"github.com/chestno/chestno-api/internal/models"
	"github.com/chestno/chestno-api/internal/repository"

	"gorm.io/gorm"
)

func newWarrantyForTest(t *testing.T) (*WarrantyService, *gorm.DB) {
	t.Helper()
	db := setupServiceDB(t)
	svc := NewWarrantyService(
		repository.NewWarrantyRepository(db),
		repository.NewProductRepository(db),
		nil,
	)
	return svc, db
}

func createProductForClaim(t *testing.T, db *gorm.DB, orgID uint) *models.Product {
	t.Helper()
	product := &models.Product{OrganizationID: orgID, Slug: "kettle", Name: "Kettle", IsActive: true}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func TestFileClaimValidation(t *testing.T) {
	svc, db := newWarrantyForTest(t)
	product := createProductForClaim(t, db, 1)

	if _, err := svc.File(5, FileClaimInput{ProductID: product.ID, Subject: "  "}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for empty subject, got %v", err)
	}
	if _, err := svc.File(5, FileClaimInput{ProductID: 999, Subject: "broken"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for unknown product, got %v", err)
	}

	claim, err := svc.File(5, FileClaimInput{ProductID: product.ID, Subject: "broken lid"})
	if err != nil {
		t.Fatalf("file claim failed: %v", err)
	}
	if claim.Status != constants.ClaimStatusOpen {
		t.Fatalf("new claim must be open, got %s", claim.Status)
	}
	if claim.OrganizationID != product.OrganizationID {
		t.Fatalf("claim must inherit the product's organization")
	}
}

func TestRespondFollowsClaimLifecycle(t *testing.T) {
	svc, db := newWarrantyForTest(t)
	product := createProductForClaim(t, db, 1)
	claim, err := svc.File(5, FileClaimInput{ProductID: product.ID, Subject: "broken lid"})
	if err != nil {
		t.Fatalf("file claim failed: %v", err)
	}

	// Another organization cannot touch the claim.
	if _, err := svc.Respond(2, claim.ID, constants.ClaimStatusInReview, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for foreign org, got %v", err)
	}

	updated, err := svc.Respond(1, claim.ID, constants.ClaimStatusInReview, "")
	if err != nil {
		t.Fatalf("respond failed: %v", err)
	}
	if updated.Status != constants.ClaimStatusInReview || updated.RespondedAt == nil {
		t.Fatalf("unexpected claim state: %+v", updated)
	}

	// in_review cannot go back to open.
	if _, err := svc.Respond(1, claim.ID, constants.ClaimStatusOpen, ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for backwards move, got %v", err)
	}

	resolved, err := svc.Respond(1, claim.ID, constants.ClaimStatusResolved, "replacement shipped")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved.Resolution != "replacement shipped" {
		t.Fatalf("resolution not stored: %s", resolved.Resolution)
	}

	// Terminal states have no exits.
	if _, err := svc.Respond(1, claim.ID, constants.ClaimStatusInReview, ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error leaving terminal state, got %v", err)
	}
}

func TestGetForUserScopesOwnership(t *testing.T) {
	svc, db := newWarrantyForTest(t)
	product := createProductForClaim(t, db, 1)
	claim, err := svc.File(5, FileClaimInput{ProductID: product.ID, Subject: "noise"})
	if err != nil {
		t.Fatalf("file claim failed: %v", err)
	}

	if _, err := svc.GetForUser(6, claim.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for foreign user, got %v", err)
	}
	got, err := svc.GetForUser(5, claim.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.ID != claim.ID {
		t.Fatalf("wrong claim: %d", got.ID)
	}
}
