package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/chestno/chestno-api/internal/config"
	"github.com/chestno/chestno-api/internal/repository"
)

func newRewardServiceForTest(t *testing.T, rewards config.RewardsConfig) *RewardService {
	t.Helper()
	db := setupServiceDB(t)
	cfg := &config.Config{Rewards: rewards}
	return NewRewardService(cfg, repository.NewRewardRepository(db))
}

func TestAccrueScanAwardsPoints(t *testing.T) {
	svc := newRewardServiceForTest(t, config.RewardsConfig{
		ScanPoints: 1,
		DailyCap:   50,
	})

	svc.AccrueScan(7, 1)
	svc.AccrueScan(7, 2)
	// Anonymous scans earn nothing.
	svc.AccrueScan(0, 3)

	balance, err := svc.Balance(7)
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if balance != 2 {
		t.Fatalf("expected balance 2, got %d", balance)
	}
}

func TestAccrueReviewQualityBonus(t *testing.T) {
	svc := newRewardServiceForTest(t, config.RewardsConfig{
		ReviewPoints:       10,
		QualityBonusPoints: 5,
		QualityMinChars:    50,
		DailyCap:           100,
	})

	svc.AccrueReviewApproved(1, 1, "short")
	svc.AccrueReviewApproved(2, 2, strings.Repeat("х", 50))

	short, err := svc.Balance(1)
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if short != 10 {
		t.Fatalf("expected base points 10, got %d", short)
	}

	long, err := svc.Balance(2)
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if long != 15 {
		t.Fatalf("expected quality bonus total 15, got %d", long)
	}
}

func TestDailyCapClampsAccrual(t *testing.T) {
	svc := newRewardServiceForTest(t, config.RewardsConfig{
		ReviewPoints: 10,
		DailyCap:     12,
	})

	svc.AccrueReviewApproved(3, 1, "ok")
	// The cap clamps this accrual to the remaining 2 points.
	svc.AccrueReviewApproved(3, 2, "ok")
	// And nothing more is earned today.
	svc.AccrueReviewApproved(3, 3, "ok")

	balance, err := svc.Balance(3)
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if balance != 12 {
		t.Fatalf("expected capped balance 12, got %d", balance)
	}
}

func TestAdminAdjustBypassesCap(t *testing.T) {
	svc := newRewardServiceForTest(t, config.RewardsConfig{
		DailyCap: 5,
	})

	if err := svc.AdminAdjust(4, 100, "promo credit"); err != nil {
		t.Fatalf("adjust failed: %v", err)
	}
	if err := svc.AdminAdjust(4, -30, "correction"); err != nil {
		t.Fatalf("negative adjust failed: %v", err)
	}

	balance, err := svc.Balance(4)
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if balance != 70 {
		t.Fatalf("expected balance 70, got %d", balance)
	}

	if err := svc.AdminAdjust(4, 0, "noop"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for zero adjustment, got %v", err)
	}
}
