package repository

import (
	"errors"
	"time"

	"github.com/chestno/chestno-api/internal/constants"
	"github.com/chestno/chestno-api/internal/models"

	"gorm.io/gorm"
)

// SubscriptionRepository is the plan and subscription data access interface.
type SubscriptionRepository interface {
	ListPlans(onlyActive bool) ([]models.SubscriptionPlan, error)
	GetPlanByID(id uint) (*models.SubscriptionPlan, error)
	GetPlanByCode(code string) (*models.SubscriptionPlan, error)
	CreatePlan(plan *models.SubscriptionPlan) error
	UpdatePlan(plan *models.SubscriptionPlan) error
	GetCurrent(orgID uint, at time.Time) (*models.OrgSubscription, error)
	ListByOrg(orgID uint) ([]models.OrgSubscription, error)
	Create(sub *models.OrgSubscription) error
	UpdateStatus(id uint, status string) error
	ExpireOverdue(at time.Time) (int64, error)
}

// GormSubscriptionRepository is the GORM implementation.
type GormSubscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates the subscription repository.
func NewSubscriptionRepository(db *gorm.DB) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

// ListPlans returns subscription plans.
func (r *GormSubscriptionRepository) ListPlans(onlyActive bool) ([]models.SubscriptionPlan, error) {
	var plans []models.SubscriptionPlan
	query := r.db.Model(&models.SubscriptionPlan{})
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Order("monthly_price ASC").Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

// GetPlanByID fetches a plan by ID.
func (r *GormSubscriptionRepository) GetPlanByID(id uint) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	if err := r.db.First(&plan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

// GetPlanByCode fetches a plan by code.
func (r *GormSubscriptionRepository) GetPlanByCode(code string) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	if err := r.db.Where("code = ?", code).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

// CreatePlan inserts a plan.
func (r *GormSubscriptionRepository) CreatePlan(plan *models.SubscriptionPlan) error {
	return r.db.Create(plan).Error
}

// UpdatePlan saves plan changes.
func (r *GormSubscriptionRepository) UpdatePlan(plan *models.SubscriptionPlan) error {
	return r.db.Save(plan).Error
}

// GetCurrent fetches the active subscription covering the given moment.
func (r *GormSubscriptionRepository) GetCurrent(orgID uint, at time.Time) (*models.OrgSubscription, error) {
	var sub models.OrgSubscription
	err := r.db.Where("organization_id = ? AND status = ?", orgID, constants.SubscriptionStatusActive).
		Where("starts_at <= ? AND ends_at > ?", at, at).
		Order("ends_at DESC").
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// ListByOrg returns an organization's subscription history, newest first.
func (r *GormSubscriptionRepository) ListByOrg(orgID uint) ([]models.OrgSubscription, error) {
	var subs []models.OrgSubscription
	err := r.db.Where("organization_id = ?", orgID).
		Order("starts_at DESC").Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

// Create inserts a subscription.
func (r *GormSubscriptionRepository) Create(sub *models.OrgSubscription) error {
	return r.db.Create(sub).Error
}

// UpdateStatus moves a subscription through its lifecycle.
func (r *GormSubscriptionRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.OrgSubscription{}).Where("id = ?", id).
		Update("status", status).Error
}

// ExpireOverdue marks active subscriptions past their end as expired.
func (r *GormSubscriptionRepository) ExpireOverdue(at time.Time) (int64, error) {
	result := r.db.Model(&models.OrgSubscription{}).
		Where("status = ? AND ends_at <= ?", constants.SubscriptionStatusActive, at).
		Update("status", constants.SubscriptionStatusExpired)
	return result.RowsAffected, result.Error
}
