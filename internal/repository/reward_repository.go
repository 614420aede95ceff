package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/chestno/chestno-api/internal/models"

	"gorm.io/gorm"
)

// RewardRepository is the reward points data access interface.
type RewardRepository interface {
	GetAccount(userID uint) (*models.RewardAccount, error)
	ListTransactions(filter RewardTxListFilter) ([]models.RewardTransaction, int64, error)
	PointsEarnedSince(userID uint, since time.Time) (int64, error)
	Accrue(userID uint, kind string, points int64, refID uint, comment string) error
}

// GormRewardRepository is the GORM implementation.
type GormRewardRepository struct {
	db *gorm.DB
}

// NewRewardRepository creates the reward repository.
func NewRewardRepository(db *gorm.DB) *GormRewardRepository {
	return &GormRewardRepository{db: db}
}

// GetAccount fetches a user's reward account.
func (r *GormRewardRepository) GetAccount(userID uint) (*models.RewardAccount, error) {
	var account models.RewardAccount
	if err := r.db.Where("user_id = ?", userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// ListTransactions pages through a user's point history.
func (r *GormRewardRepository) ListTransactions(filter RewardTxListFilter) ([]models.RewardTransaction, int64, error) {
	var txs []models.RewardTransaction
	query := r.db.Model(&models.RewardTransaction{})
	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if kind := strings.TrimSpace(filter.Kind); kind != "" {
		query = query.Where("kind = ?", kind)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("created_at DESC, id DESC").Find(&txs).Error; err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

// PointsEarnedSince sums positive accruals since the given time.
func (r *GormRewardRepository) PointsEarnedSince(userID uint, since time.Time) (int64, error) {
	var sum int64
	err := r.db.Model(&models.RewardTransaction{}).
		Select("COALESCE(SUM(points), 0)").
		Where("user_id = ? AND points > 0 AND created_at >= ?", userID, since).
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	return sum, nil
}

// Accrue records a transaction and adjusts the balance atomically,
// creating the account on first use.
func (r *GormRewardRepository) Accrue(userID uint, kind string, points int64, refID uint, comment string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var account models.RewardAccount
		err := tx.Where("user_id = ?", userID).First(&account).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			account = models.RewardAccount{UserID: userID}
			if err := tx.Create(&account).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if err := tx.Model(&models.RewardAccount{}).Where("user_id = ?", userID).
			UpdateColumn("balance", gorm.Expr("balance + ?", points)).Error; err != nil {
			return err
		}

		return tx.Create(&models.RewardTransaction{
			UserID:  userID,
			Kind:    kind,
			Points:  points,
			RefID:   refID,
			Comment: comment,
		}).Error
	})
}
