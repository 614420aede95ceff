package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/chestno/chestno-api/internal/constants"
	"github.com/chestno/chestno-api/internal/logger"
	"github.com/chestno/chestno-api/internal/models"
	"github.com/chestno/chestno-api/internal/queue"
	"github.com/chestno/chestno-api/internal/repository"
)

// WarrantyService handles consumer warranty claims and the producer's
// responses to them.
type WarrantyService struct {
	warrantyRepo repository.WarrantyRepository
	productRepo  repository.ProductRepository
	queue        *queue.Client
}

// NewWarrantyService creates the warranty service.
func NewWarrantyService(
	warrantyRepo repository.WarrantyRepository,
	productRepo repository.ProductRepository,
	queueClient *queue.Client,
) *WarrantyService {
	return &WarrantyService{
		warrantyRepo: warrantyRepo,
		productRepo:  productRepo,
		queue:        queueClient,
	}
}

// claimTransitions lists the allowed status moves. Terminal states have
// no exits.
var claimTransitions = map[string][]string{
	constants.ClaimStatusOpen:     {constants.ClaimStatusInReview, constants.ClaimStatusResolved, constants.ClaimStatusRejected},
	constants.ClaimStatusInReview: {constants.ClaimStatusResolved, constants.ClaimStatusRejected},
}

// List pages through claims.
func (s *WarrantyService) List(filter repository.WarrantyListFilter) ([]models.WarrantyClaim, int64, error) {
	return s.warrantyRepo.List(filter)
}

// GetForUser fetches one claim belonging to the user.
func (s *WarrantyService) GetForUser(userID, claimID uint) (*models.WarrantyClaim, error) {
	claim, err := s.warrantyRepo.GetByID(claimID)
	if err != nil {
		return nil, err
	}
	if claim == nil || claim.UserID != userID {
		return nil, ErrNotFound
	}
	return claim, nil
}

// FileClaimInput is a consumer's warranty request.
type FileClaimInput struct {
	ProductID     uint
	Subject       string
	Description   string
	PurchaseProof string
}

// File opens a claim against a product.
func (s *WarrantyService) File(userID uint, input FileClaimInput) (*models.WarrantyClaim, error) {
	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		return nil, fmt.Errorf("%w: subject required", ErrValidation)
	}
	product, err := s.productRepo.GetByID(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, ErrNotFound
	}

	claim := &models.WarrantyClaim{
		OrganizationID: product.OrganizationID,
		ProductID:      product.ID,
		UserID:         userID,
		Subject:        subject,
		Description:    strings.TrimSpace(input.Description),
		PurchaseProof:  strings.TrimSpace(input.PurchaseProof),
		Status:         constants.ClaimStatusOpen,
	}
	if err := s.warrantyRepo.Create(claim); err != nil {
		return nil, err
	}
	return claim, nil
}

// Respond moves a claim to a new status with an optional resolution
// note, and tells the claimant. Only forward moves are allowed.
func (s *WarrantyService) Respond(orgID, claimID uint, status, resolution string) (*models.WarrantyClaim, error) {
	claim, err := s.warrantyRepo.GetByID(claimID)
	if err != nil {
		return nil, err
	}
	if claim == nil || claim.OrganizationID != orgID {
		return nil, ErrNotFound
	}
	if !claimTransitionAllowed(claim.Status, status) {
		return nil, fmt.Errorf("%w: cannot move claim from %s to %s", ErrValidation, claim.Status, status)
	}

	now := time.Now()
	claim.Status = status
	claim.RespondedAt = &now
	if resolution = strings.TrimSpace(resolution); resolution != "" {
		claim.Resolution = resolution
	}
	if err := s.warrantyRepo.Update(claim); err != nil {
		return nil, err
	}

	s.notifyClaimant(claim)
	if status == constants.ClaimStatusResolved || status == constants.ClaimStatusRejected {
		s.enqueueTrustRecompute(claim.OrganizationID)
	}
	return claim, nil
}

func claimTransitionAllowed(from, to string) bool {
	for _, next := range claimTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s *WarrantyService) notifyClaimant(claim *models.WarrantyClaim) {
	if s.queue == nil {
		return
	}
	err := s.queue.EnqueueNotifyEvent(queue.NotifyEventPayload{
		Event:          constants.NotifyEventClaimStatus,
		UserID:         claim.UserID,
		OrganizationID: claim.OrganizationID,
		RefID:          claim.ID,
		Subject:        "Warranty claim update: " + claim.Subject,
		Body:           "Your warranty claim is now " + claim.Status + ". " + claim.Resolution,
	})
	if err != nil {
		logger.Warnw("notify_enqueue_failed", "event", constants.NotifyEventClaimStatus, "claim_id", claim.ID, "error", err)
	}
}

func (s *WarrantyService) enqueueTrustRecompute(orgID uint) {
	if s.queue == nil {
		return
	}
	if err := s.queue.EnqueueTrustRecompute(queue.TrustRecomputePayload{OrganizationID: orgID}); err != nil {
		logger.Warnw("trust_enqueue_failed", "org_id", orgID, "error", err)
	}
}
