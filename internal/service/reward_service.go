package service

import (
	"time"
	"unicode/utf8"

	"github.com/chestno/chestno-api/internal/config"
	"github.com/chestno/chestno-api/internal/constants"
	"github.com/chestno/chestno-api/internal/logger"
	"github.com/chestno/chestno-api/internal/models"
	"github.com/chestno/chestno-api/internal/repository"
)

// RewardService accrues engagement points. Accrual is best-effort:
// a failed accrual never fails the action that earned it.
type RewardService struct {
	cfg  *config.Config
	repo repository.RewardRepository
}

// NewRewardService creates the reward service.
func NewRewardService(cfg *config.Config, repo repository.RewardRepository) *RewardService {
	return &RewardService{cfg: cfg, repo: repo}
}

// Balance returns the user's current point balance.
func (s *RewardService) Balance(userID uint) (int64, error) {
	account, err := s.repo.GetAccount(userID)
	if err != nil {
		return 0, err
	}
	if account == nil {
		return 0, nil
	}
	return account.Balance, nil
}

// History pages through the user's point transactions.
func (s *RewardService) History(userID uint, page, pageSize int) ([]models.RewardTransaction, int64, error) {
	return s.repo.ListTransactions(repository.RewardTxListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
	})
}

// AccrueScan awards the scan points, respecting the daily cap.
func (s *RewardService) AccrueScan(userID, qrCodeID uint) {
	if userID == 0 {
		return
	}
	s.accrueCapped(userID, constants.RewardKindScan, s.cfg.Rewards.ScanPoints, qrCodeID, "qr scan")
}

// AccrueReviewApproved awards review points plus a quality bonus for
// substantial text, respecting the daily cap.
func (s *RewardService) AccrueReviewApproved(userID, reviewID uint, body string) {
	if userID == 0 {
		return
	}
	points := s.cfg.Rewards.ReviewPoints
	if s.cfg.Rewards.QualityMinChars > 0 && utf8.RuneCountInString(body) >= s.cfg.Rewards.QualityMinChars {
		points += s.cfg.Rewards.QualityBonusPoints
	}
	s.accrueCapped(userID, constants.RewardKindReviewApproved, points, reviewID, "approved review")
}

// AdminAdjust records a manual balance correction. Adjustments bypass
// the daily cap and may be negative.
func (s *RewardService) AdminAdjust(userID uint, points int64, comment string) error {
	if userID == 0 || points == 0 {
		return ErrValidation
	}
	return s.repo.Accrue(userID, constants.RewardKindAdminAdjust, points, 0, comment)
}

func (s *RewardService) accrueCapped(userID uint, kind string, points int64, refID uint, comment string) {
	if points <= 0 {
		return
	}
	dailyCap := s.cfg.Rewards.DailyCap
	if dailyCap > 0 {
		dayStart := time.Now().Truncate(24 * time.Hour)
		earned, err := s.repo.PointsEarnedSince(userID, dayStart)
		if err != nil {
			logger.Warnw("reward_cap_check_failed", "user_id", userID, "error", err)
			return
		}
		if earned >= dailyCap {
			return
		}
		if earned+points > dailyCap {
			points = dailyCap - earned
		}
	}
	if err := s.repo.Accrue(userID, kind, points, refID, comment); err != nil {
		logger.Warnw("reward_accrue_failed", "user_id", userID, "kind", kind, "error", err)
	}
}
