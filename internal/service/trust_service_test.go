package service

import (
	"testing"

	"github.com/chestno/chestno-api/internal/constants"
	"github.com/chestno/chestno-api/internal/models"
	"github.com/chestno/chestno-api/internal/repository"

	"github.com/shopspring/decimal"
)

func TestLevelForScoreBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		level string
	}{
		{0, constants.StatusLevelC},
		{39.99, constants.StatusLevelC},
		{40, constants.StatusLevelB},
		{64.99, constants.StatusLevelB},
		{65, constants.StatusLevelA},
		{84.99, constants.StatusLevelA},
		{85, constants.StatusLevelZero},
		{100, constants.StatusLevelZero},
	}
	for _, tc := range cases {
		if got := LevelForScore(tc.score); got != tc.level {
			t.Fatalf("score %.2f: expected level %s, got %s", tc.score, tc.level, got)
		}
	}
}

func TestRecomputePersistsScoreAndLevel(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewTrustService(
		repository.NewOrganizationRepository(db),
		repository.NewReviewRepository(db),
		repository.NewWarrantyRepository(db),
		repository.NewAnomalyRepository(db),
	)

	org := &models.Organization{Slug: "farm", Name: "Farm", IsVerified: true, StatusLevel: constants.StatusLevelC}
	if err := db.Create(org).Error; err != nil {
		t.Fatalf("create org failed: %v", err)
	}
	product := &models.Product{OrganizationID: org.ID, Slug: "milk", Name: "Milk", IsActive: true}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		review := &models.Review{
			ProductID:      product.ID,
			OrganizationID: org.ID,
			UserID:         uint(i + 1),
			Rating:         5,
			Status:         constants.ReviewStatusApproved,
		}
		if err := db.Create(review).Error; err != nil {
			t.Fatalf("create review failed: %v", err)
		}
	}

	score, level, err := svc.Recompute(org.ID)
	if err != nil {
		t.Fatalf("recompute failed: %v", err)
	}
	// Perfect ratings (50) + small volume (0.6) + verified (15) + no claims (15).
	if score.LessThan(decimal.NewFromInt(80)) || score.GreaterThan(decimal.NewFromInt(81)) {
		t.Fatalf("unexpected score %s", score.String())
	}
	if level != constants.StatusLevelA {
		t.Fatalf("expected level A, got %s", level)
	}

	var stored models.Organization
	if err := db.First(&stored, org.ID).Error; err != nil {
		t.Fatalf("load org failed: %v", err)
	}
	if stored.StatusLevel != level {
		t.Fatalf("level not persisted: %s", stored.StatusLevel)
	}
	if !stored.TrustScore.Equal(score) {
		t.Fatalf("score not persisted: %s vs %s", stored.TrustScore, score)
	}
}

func TestRecomputeAppliesAnomalyPenalty(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewTrustService(
		repository.NewOrganizationRepository(db),
		repository.NewReviewRepository(db),
		repository.NewWarrantyRepository(db),
		repository.NewAnomalyRepository(db),
	)

	org := &models.Organization{Slug: "risky", Name: "Risky", IsVerified: true, StatusLevel: constants.StatusLevelC}
	if err := db.Create(org).Error; err != nil {
		t.Fatalf("create org failed: %v", err)
	}

	base, _, err := svc.Recompute(org.ID)
	if err != nil {
		t.Fatalf("recompute failed: %v", err)
	}

	alert := &models.AnomalyAlert{
		OrganizationID: org.ID,
		QRCodeID:       1,
		Kind:           constants.AlertKindVelocity,
		Status:         constants.AlertStatusOpen,
	}
	if err := db.Create(alert).Error; err != nil {
		t.Fatalf("create alert failed: %v", err)
	}

	penalized, _, err := svc.Recompute(org.ID)
	if err != nil {
		t.Fatalf("recompute failed: %v", err)
	}
	if !penalized.LessThan(base) {
		t.Fatalf("open alert must lower the score: %s vs %s", penalized, base)
	}
}
