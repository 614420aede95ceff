package service

import (
	"errors"
	"testing"
	"time"

	"github.com/chestno/chestno-api/internal/constants"
	"github.com/chestno/chestno-api/internal/models"
	"github.com/chestno/chestno-api/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func newSubscriptionForTest(t *testing.T) (*SubscriptionService, *gorm.DB) {
	t.Helper()
	db := setupServiceDB(t)
	svc := NewSubscriptionService(
		repository.NewSubscriptionRepository(db),
		repository.NewOrganizationRepository(db),
		repository.NewProductRepository(db),
		repository.NewQRCodeRepository(db),
	)
	return svc, db
}

func seedOrgForSub(t *testing.T, db *gorm.DB, slug string) *models.Organization {
	t.Helper()
	org := &models.Organization{Slug: slug, Name: slug, StatusLevel: constants.StatusLevelC}
	if err := db.Create(org).Error; err != nil {
		t.Fatalf("create org failed: %v", err)
	}
	return org
}

func TestCreatePlanEnforcesUniqueCode(t *testing.T) {
	svc, _ := newSubscriptionForTest(t)

	if _, err := svc.CreatePlan(CreatePlanInput{Code: " ", Name: "Free"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for blank code, got %v", err)
	}

	plan, err := svc.CreatePlan(CreatePlanInput{
		Code:         "Standard",
		Name:         "Standard",
		MonthlyPrice: decimal.NewFromInt(2900),
		MaxProducts:  50,
		MaxQRCodes:   200,
	})
	if err != nil {
		t.Fatalf("create plan failed: %v", err)
	}
	if plan.Code != "standard" {
		t.Fatalf("code not normalized: %s", plan.Code)
	}

	if _, err := svc.CreatePlan(CreatePlanInput{Code: "standard", Name: "Other"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict for duplicate code, got %v", err)
	}
}

func TestAssignSupersedesCurrentSubscription(t *testing.T) {
	svc, db := newSubscriptionForTest(t)
	org := seedOrgForSub(t, db, "farm")
	free, err := svc.CreatePlan(CreatePlanInput{Code: "free", Name: "Free", MaxProducts: 3})
	if err != nil {
		t.Fatalf("create plan failed: %v", err)
	}
	paid, err := svc.CreatePlan(CreatePlanInput{Code: "paid", Name: "Paid", MaxProducts: 50})
	if err != nil {
		t.Fatalf("create plan failed: %v", err)
	}

	if _, err := svc.Assign(999, free.ID, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for unknown org, got %v", err)
	}

	first, err := svc.Assign(org.ID, free.ID, 1)
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if _, err := svc.Assign(org.ID, paid.ID, 12); err != nil {
		t.Fatalf("second assign failed: %v", err)
	}

	sub, plan, err := svc.Current(org.ID)
	if err != nil {
		t.Fatalf("current failed: %v", err)
	}
	if sub == nil || plan == nil || plan.ID != paid.ID {
		t.Fatalf("expected the paid plan to be current")
	}

	var old models.OrgSubscription
	if err := db.First(&old, first.ID).Error; err != nil {
		t.Fatalf("load old subscription failed: %v", err)
	}
	if old.Status != constants.SubscriptionStatusCanceled {
		t.Fatalf("superseded subscription must be canceled, got %s", old.Status)
	}
}

func TestQuotaChecks(t *testing.T) {
	svc, db := newSubscriptionForTest(t)
	org := seedOrgForSub(t, db, "farm")

	// No subscription means no limits.
	if err := svc.CheckProductQuota(org.ID); err != nil {
		t.Fatalf("unsubscribed org must be unlimited, got %v", err)
	}

	plan, err := svc.CreatePlan(CreatePlanInput{Code: "tiny", Name: "Tiny", MaxProducts: 1, MaxQRCodes: 1})
	if err != nil {
		t.Fatalf("create plan failed: %v", err)
	}
	if _, err := svc.Assign(org.ID, plan.ID, 1); err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	if err := svc.CheckProductQuota(org.ID); err != nil {
		t.Fatalf("quota must allow the first product, got %v", err)
	}
	product := &models.Product{OrganizationID: org.ID, Slug: "milk", Name: "Milk", IsActive: true}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if err := svc.CheckProductQuota(org.ID); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected quota exceeded, got %v", err)
	}

	qr := &models.QRCode{OrganizationID: org.ID, ProductID: product.ID, Slug: "jar-001", IsActive: true}
	if err := db.Create(qr).Error; err != nil {
		t.Fatalf("create qr failed: %v", err)
	}
	if err := svc.CheckQRQuota(org.ID); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected qr quota exceeded, got %v", err)
	}

	// Zero limits mean unlimited.
	unlimited, err := svc.UpdatePlan(plan.ID, "", intPtr(0), intPtr(0), nil)
	if err != nil {
		t.Fatalf("update plan failed: %v", err)
	}
	if unlimited.MaxProducts != 0 {
		t.Fatalf("limit not cleared: %d", unlimited.MaxProducts)
	}
	if err := svc.CheckProductQuota(org.ID); err != nil {
		t.Fatalf("zero limit must be unlimited, got %v", err)
	}
}

func TestExpireOverdueSweep(t *testing.T) {
	svc, db := newSubscriptionForTest(t)
	org := seedOrgForSub(t, db, "farm")
	plan, err := svc.CreatePlan(CreatePlanInput{Code: "free", Name: "Free"})
	if err != nil {
		t.Fatalf("create plan failed: %v", err)
	}
	sub, err := svc.Assign(org.ID, plan.ID, 1)
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	if err := db.Exec("UPDATE org_subscriptions SET ends_at = ? WHERE id = ?", time.Now().Add(-24*time.Hour), sub.ID).Error; err != nil {
		t.Fatalf("backdate failed: %v", err)
	}
	expired, err := svc.ExpireOverdue()
	if err != nil {
		t.Fatalf("expire failed: %v", err)
	}
	if expired != 1 {
		t.Fatalf("expected 1 expired subscription, got %d", expired)
	}

	current, _, err := svc.Current(org.ID)
	if err != nil {
		t.Fatalf("current failed: %v", err)
	}
	if current != nil {
		t.Fatalf("expired subscription must not be current")
	}
}

func intPtr(v int) *int { return &v }
