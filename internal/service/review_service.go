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

// ReviewService handles consumer reviews, org replies and moderation.
type ReviewService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
	rewards     *RewardService
	queue       *queue.Client
}

// NewReviewService creates the review service.
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	productRepo repository.ProductRepository,
	rewards *RewardService,
	queueClient *queue.Client,
) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		rewards:     rewards,
		queue:       queueClient,
	}
}

// ListPublic pages through a product's approved reviews.
func (s *ReviewService) ListPublic(productID uint, minRating, page, pageSize int) ([]models.Review, int64, error) {
	return s.reviewRepo.List(repository.ReviewListFilter{
		Page:      page,
		PageSize:  pageSize,
		ProductID: productID,
		Status:    constants.ReviewStatusApproved,
		MinRating: minRating,
	})
}

// List pages through reviews with arbitrary filters.
func (s *ReviewService) List(filter repository.ReviewListFilter) ([]models.Review, int64, error) {
	return s.reviewRepo.List(filter)
}

// ListByUser pages through one user's own reviews, any status.
func (s *ReviewService) ListByUser(userID uint, page, pageSize int) ([]models.Review, int64, error) {
	return s.reviewRepo.List(repository.ReviewListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
	})
}

// SubmitReviewInput is a consumer's review.
type SubmitReviewInput struct {
	ProductID uint
	Rating    int
	Body      string
	Photos    []string
}

// Submit files a review for moderation. One review per user per product;
// a rejected review frees the slot for another attempt.
func (s *ReviewService) Submit(userID uint, input SubmitReviewInput) (*models.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be 1-5", ErrValidation)
	}
	product, err := s.productRepo.GetByID(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, ErrNotFound
	}
	exists, err := s.reviewRepo.HasApprovedForProduct(userID, product.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: you already reviewed this product", ErrConflict)
	}

	review := &models.Review{
		OrganizationID: product.OrganizationID,
		ProductID:      product.ID,
		UserID:         userID,
		Rating:         input.Rating,
		Body:           strings.TrimSpace(input.Body),
		Photos:         input.Photos,
		Status:         constants.ReviewStatusPending,
	}
	if err := s.reviewRepo.Create(review); err != nil {
		return nil, err
	}
	return review, nil
}

// Reply attaches the organization's public answer to an approved review.
func (s *ReviewService) Reply(orgID, reviewID uint, reply string) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		return nil, err
	}
	if review == nil || review.OrganizationID != orgID {
		return nil, ErrNotFound
	}
	if review.Status != constants.ReviewStatusApproved {
		return nil, fmt.Errorf("%w: only approved reviews can be answered", ErrValidation)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return nil, fmt.Errorf("%w: reply required", ErrValidation)
	}
	now := time.Now()
	review.OrgReply = reply
	review.RepliedAt = &now
	if err := s.reviewRepo.Update(review); err != nil {
		return nil, err
	}
	return review, nil
}

// ModerationQueue pages through reviews awaiting a decision.
func (s *ReviewService) ModerationQueue(page, pageSize int) ([]models.Review, int64, error) {
	return s.reviewRepo.List(repository.ReviewListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   constants.ReviewStatusPending,
	})
}

// Approve publishes a pending review, credits the author and refreshes
// the organization's trust score.
func (s *ReviewService) Approve(reviewID, adminID uint) (*models.Review, error) {
	review, err := s.pendingReview(reviewID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	review.Status = constants.ReviewStatusApproved
	review.ModeratedBy = adminID
	review.ModeratedAt = &now
	review.RejectReason = ""
	if err := s.reviewRepo.Update(review); err != nil {
		return nil, err
	}

	if s.rewards != nil {
		s.rewards.AccrueReviewApproved(review.UserID, review.ID, review.Body)
	}
	s.enqueueAfterModeration(review, constants.NotifyEventReviewApproved,
		"Your review was published", "Your review has passed moderation and is now visible.")
	return review, nil
}

// Reject declines a pending review with a reason shown to the author.
func (s *ReviewService) Reject(reviewID, adminID uint, reason string) (*models.Review, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: reject reason required", ErrValidation)
	}
	review, err := s.pendingReview(reviewID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	review.Status = constants.ReviewStatusRejected
	review.ModeratedBy = adminID
	review.ModeratedAt = &now
	review.RejectReason = reason
	if err := s.reviewRepo.Update(review); err != nil {
		return nil, err
	}

	s.enqueueAfterModeration(review, constants.NotifyEventReviewRejected,
		"Your review was declined", "Your review did not pass moderation: "+reason)
	return review, nil
}

// Delete removes a review outright. Admin recourse for content that
// slipped through moderation.
func (s *ReviewService) Delete(reviewID uint) error {
	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		return err
	}
	if review == nil {
		return ErrNotFound
	}
	if err := s.reviewRepo.Delete(reviewID); err != nil {
		return err
	}
	s.enqueueTrustRecompute(review.OrganizationID)
	return nil
}

func (s *ReviewService) pendingReview(reviewID uint) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, ErrNotFound
	}
	if review.Status != constants.ReviewStatusPending {
		return nil, fmt.Errorf("%w: review already moderated", ErrConflict)
	}
	return review, nil
}

func (s *ReviewService) enqueueAfterModeration(review *models.Review, event, subject, body string) {
	if s.queue == nil {
		return
	}
	if err := s.queue.EnqueueNotifyEvent(queue.NotifyEventPayload{
		Event:          event,
		UserID:         review.UserID,
		OrganizationID: review.OrganizationID,
		RefID:          review.ID,
		Subject:        subject,
		Body:           body,
	}); err != nil {
		logger.Warnw("notify_enqueue_failed", "event", event, "review_id", review.ID, "error", err)
	}
	s.enqueueTrustRecompute(review.OrganizationID)
}

func (s *ReviewService) enqueueTrustRecompute(orgID uint) {
	if s.queue == nil {
		return
	}
	if err := s.queue.EnqueueTrustRecompute(queue.TrustRecomputePayload{OrganizationID: orgID}); err != nil {
		logger.Warnw("trust_enqueue_failed", "org_id", orgID, "error", err)
	}
}
