package service

import (
	"errors"
	"testing"

	"github.com/chestno/chestno-api/internal/config"
	"github.com/chestno/chestno-api/internal/constants"
	"github.com/chestno/chestno-api/internal/models"
	"github.com/chestno/chestno-api/internal/repository"

	"gorm.io/gorm"
)

func newReviewForTest(t *testing.T) (*ReviewService, *gorm.DB) {
	t.Helper()
	db := setupServiceDB(t)
	rewards := NewRewardService(
		&config.Config{Rewards: config.RewardsConfig{ReviewPoints: 10, DailyCap: 100}},
		repository.NewRewardRepository(db),
	)
	svc := NewReviewService(
		repository.NewReviewRepository(db),
		repository.NewProductRepository(db),
		rewards,
		nil,
	)
	return svc, db
}

func seedReviewProduct(t *testing.T, db *gorm.DB) *models.Product {
	t.Helper()
	product := &models.Product{OrganizationID: 1, Slug: "milk", Name: "Milk", IsActive: true}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func TestSubmitReviewValidation(t *testing.T) {
	svc, db := newReviewForTest(t)
	product := seedReviewProduct(t, db)

	if _, err := svc.Submit(5, SubmitReviewInput{ProductID: product.ID, Rating: 6}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for rating 6, got %v", err)
	}
	if _, err := svc.Submit(5, SubmitReviewInput{ProductID: 999, Rating: 4}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for unknown product, got %v", err)
	}

	review, err := svc.Submit(5, SubmitReviewInput{ProductID: product.ID, Rating: 4, Body: " tasty "})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if review.Status != constants.ReviewStatusPending {
		t.Fatalf("new review must be pending, got %s", review.Status)
	}
	if review.Body != "tasty" {
		t.Fatalf("body not trimmed: %q", review.Body)
	}
}

func TestModerationLifecycle(t *testing.T) {
	svc, db := newReviewForTest(t)
	product := seedReviewProduct(t, db)
	review, err := svc.Submit(5, SubmitReviewInput{ProductID: product.ID, Rating: 5, Body: "great"})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	queue, total, err := svc.ModerationQueue(1, 20)
	if err != nil {
		t.Fatalf("queue failed: %v", err)
	}
	if total != 1 || len(queue) != 1 {
		t.Fatalf("expected one pending review, got %d", total)
	}

	if _, err := svc.Reject(review.ID, 1, ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for empty reason, got %v", err)
	}

	approved, err := svc.Approve(review.ID, 1)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != constants.ReviewStatusApproved || approved.ModeratedAt == nil {
		t.Fatalf("unexpected review state: %+v", approved)
	}

	// Moderation decisions are final.
	if _, err := svc.Approve(review.ID, 1); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict re-approving, got %v", err)
	}
	if _, err := svc.Reject(review.ID, 1, "spam"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict rejecting approved review, got %v", err)
	}

	// Approval credited the author.
	balance, err := svc.rewards.Balance(5)
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if balance != 10 {
		t.Fatalf("expected 10 points after approval, got %d", balance)
	}

	// An approved review blocks a second one for the same product.
	if _, err := svc.Submit(5, SubmitReviewInput{ProductID: product.ID, Rating: 1}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict for duplicate review, got %v", err)
	}
}

func TestRejectedReviewFreesTheSlot(t *testing.T) {
	svc, db := newReviewForTest(t)
	product := seedReviewProduct(t, db)
	review, err := svc.Submit(5, SubmitReviewInput{ProductID: product.ID, Rating: 2, Body: "meh"})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	rejected, err := svc.Reject(review.ID, 1, "too vague")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.RejectReason != "too vague" {
		t.Fatalf("reason not stored: %s", rejected.RejectReason)
	}

	if _, err := svc.Submit(5, SubmitReviewInput{ProductID: product.ID, Rating: 4, Body: "better now"}); err != nil {
		t.Fatalf("resubmit after rejection failed: %v", err)
	}
}

func TestReplyRequiresApprovedReviewAndOwnership(t *testing.T) {
	svc, db := newReviewForTest(t)
	product := seedReviewProduct(t, db)
	review, err := svc.Submit(5, SubmitReviewInput{ProductID: product.ID, Rating: 5, Body: "great"})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if _, err := svc.Reply(1, review.ID, "thanks"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error replying to pending review, got %v", err)
	}
	if _, err := svc.Approve(review.ID, 1); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	if _, err := svc.Reply(2, review.ID, "thanks"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for foreign org, got %v", err)
	}
	replied, err := svc.Reply(1, review.ID, " thank you! ")
	if err != nil {
		t.Fatalf("reply failed: %v", err)
	}
	if replied.OrgReply != "thank you!" || replied.RepliedAt == nil {
		t.Fatalf("unexpected reply state: %+v", replied)
	}
}
