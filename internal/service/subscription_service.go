package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/chestno/chestno-api/internal/constants"
	"github.com/chestno/chestno-api/internal/models"
	"github.com/chestno/chestno-api/internal/repository"

	"github.com/shopspring/decimal"
)

// SubscriptionService manages plans and per-organization quotas.
type SubscriptionService struct {
	repo        repository.SubscriptionRepository
	orgRepo     repository.OrganizationRepository
	productRepo repository.ProductRepository
	qrRepo      repository.QRCodeRepository
}

// NewSubscriptionService creates the subscription service.
func NewSubscriptionService(
	repo repository.SubscriptionRepository,
	orgRepo repository.OrganizationRepository,
	productRepo repository.ProductRepository,
	qrRepo repository.QRCodeRepository,
) *SubscriptionService {
	return &SubscriptionService{
		repo:        repo,
		orgRepo:     orgRepo,
		productRepo: productRepo,
		qrRepo:      qrRepo,
	}
}

// ListPlans returns plans; consumers only see active ones.
func (s *SubscriptionService) ListPlans(onlyActive bool) ([]models.SubscriptionPlan, error) {
	return s.repo.ListPlans(onlyActive)
}

// CreatePlanInput describes a new plan.
type CreatePlanInput struct {
	Code         string
	Name         string
	MonthlyPrice decimal.Decimal
	MaxProducts  int
	MaxQRCodes   int
}

// CreatePlan adds a plan.
func (s *SubscriptionService) CreatePlan(input CreatePlanInput) (*models.SubscriptionPlan, error) {
	code := strings.ToLower(strings.TrimSpace(input.Code))
	name := strings.TrimSpace(input.Name)
	if code == "" || name == "" {
		return nil, fmt.Errorf("%w: code and name required", ErrValidation)
	}
	if input.MonthlyPrice.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	existing, err := s.repo.GetPlanByCode(code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: plan code taken", ErrConflict)
	}
	plan := &models.SubscriptionPlan{
		Code:         code,
		Name:         name,
		MonthlyPrice: input.MonthlyPrice,
		MaxProducts:  input.MaxProducts,
		MaxQRCodes:   input.MaxQRCodes,
		IsActive:     true,
	}
	if err := s.repo.CreatePlan(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// UpdatePlan edits plan limits or deactivates it. Existing subscriptions
// keep running; changed limits apply to future checks.
func (s *SubscriptionService) UpdatePlan(id uint, name string, maxProducts, maxQRCodes *int, isActive *bool) (*models.SubscriptionPlan, error) {
	plan, err := s.repo.GetPlanByID(id)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrNotFound
	}
	if name = strings.TrimSpace(name); name != "" {
		plan.Name = name
	}
	if maxProducts != nil {
		plan.MaxProducts = *maxProducts
	}
	if maxQRCodes != nil {
		plan.MaxQRCodes = *maxQRCodes
	}
	if isActive != nil {
		plan.IsActive = *isActive
	}
	if err := s.repo.UpdatePlan(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// Assign puts an organization on a plan for the given number of months.
func (s *SubscriptionService) Assign(orgID, planID uint, months int) (*models.OrgSubscription, error) {
	if months <= 0 {
		months = 1
	}
	org, err := s.orgRepo.GetByID(orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, ErrNotFound
	}
	plan, err := s.repo.GetPlanByID(planID)
	if err != nil {
		return nil, err
	}
	if plan == nil || !plan.IsActive {
		return nil, fmt.Errorf("%w: plan unavailable", ErrNotFound)
	}

	// A new assignment supersedes the current one.
	if current, err := s.repo.GetCurrent(orgID, time.Now()); err != nil {
		return nil, err
	} else if current != nil {
		if err := s.repo.UpdateStatus(current.ID, constants.SubscriptionStatusCanceled); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	sub := &models.OrgSubscription{
		OrganizationID: orgID,
		PlanID:         planID,
		Status:         constants.SubscriptionStatusActive,
		StartsAt:       now,
		EndsAt:         now.AddDate(0, months, 0),
	}
	if err := s.repo.Create(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Current returns the organization's active subscription and plan,
// both nil when the organization runs unsubscribed.
func (s *SubscriptionService) Current(orgID uint) (*models.OrgSubscription, *models.SubscriptionPlan, error) {
	sub, err := s.repo.GetCurrent(orgID, time.Now())
	if err != nil {
		return nil, nil, err
	}
	if sub == nil {
		return nil, nil, nil
	}
	plan, err := s.repo.GetPlanByID(sub.PlanID)
	if err != nil {
		return nil, nil, err
	}
	return sub, plan, nil
}

// History returns an organization's subscription records.
func (s *SubscriptionService) History(orgID uint) ([]models.OrgSubscription, error) {
	return s.repo.ListByOrg(orgID)
}

// CheckProductQuota rejects product creation past the plan limit.
// Unsubscribed organizations and zero limits are unlimited.
func (s *SubscriptionService) CheckProductQuota(orgID uint) error {
	_, plan, err := s.Current(orgID)
	if err != nil {
		return err
	}
	if plan == nil || plan.MaxProducts <= 0 {
		return nil
	}
	count, err := s.productRepo.CountByOrg(orgID)
	if err != nil {
		return err
	}
	if count >= int64(plan.MaxProducts) {
		return fmt.Errorf("%w: product limit %d reached", ErrQuotaExceeded, plan.MaxProducts)
	}
	return nil
}

// CheckQRQuota rejects QR code creation past the plan limit.
func (s *SubscriptionService) CheckQRQuota(orgID uint) error {
	_, plan, err := s.Current(orgID)
	if err != nil {
		return err
	}
	if plan == nil || plan.MaxQRCodes <= 0 {
		return nil
	}
	count, err := s.qrRepo.CountByOrg(orgID)
	if err != nil {
		return err
	}
	if count >= int64(plan.MaxQRCodes) {
		return fmt.Errorf("%w: qr code limit %d reached", ErrQuotaExceeded, plan.MaxQRCodes)
	}
	return nil
}

// ExpireOverdue marks lapsed subscriptions, for the periodic sweep.
func (s *SubscriptionService) ExpireOverdue() (int64, error) {
	return s.repo.ExpireOverdue(time.Now())
}
