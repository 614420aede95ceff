package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/chestno/chestno-api/internal/constants"
	"github.com/chestno/chestno-api/internal/models"

	"gorm.io/gorm"
)

// ReviewRepository is the review data access interface.
type ReviewRepository interface {
	List(filter ReviewListFilter) ([]models.Review, int64, error)
	GetByID(id uint) (*models.Review, error)
	Create(review *models.Review) error
	Update(review *models.Review) error
	Delete(id uint) error
	HasApprovedForProduct(userID, productID uint) (bool, error)
	ApprovedStats(orgID uint) (count int64, avgRating float64, err error)
	CountByUserSince(userID uint, status string, since *time.Time) (int64, error)
}

// GormReviewRepository is the GORM implementation.
type GormReviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates the review repository.
func NewReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// List pages through reviews.
func (r *GormReviewRepository) List(filter ReviewListFilter) ([]models.Review, int64, error) {
	var reviews []models.Review
	query := r.db.Model(&models.Review{})
	if filter.OrganizationID > 0 {
		query = query.Where("organization_id = ?", filter.OrganizationID)
	}
	if filter.ProductID > 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if filter.MinRating > 0 {
		query = query.Where("rating >= ?", filter.MinRating)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("created_at DESC").Find(&reviews).Error; err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

// GetByID fetches a review by ID.
func (r *GormReviewRepository) GetByID(id uint) (*models.Review, error) {
	var review models.Review
	if err := r.db.First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &review, nil
}

// Create inserts a review.
func (r *GormReviewRepository) Create(review *models.Review) error {
	return r.db.Create(review).Error
}

// Update saves review changes.
func (r *GormReviewRepository) Update(review *models.Review) error {
	return r.db.Save(review).Error
}

// Delete soft deletes a review.
func (r *GormReviewRepository) Delete(id uint) error {
	return r.db.Delete(&models.Review{}, id).Error
}

// HasApprovedForProduct reports whether the user already has a visible
// review on the product.
func (r *GormReviewRepository) HasApprovedForProduct(userID, productID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Review{}).
		Where("user_id = ? AND product_id = ? AND status <> ?", userID, productID, constants.ReviewStatusRejected).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ApprovedStats returns the approved review count and average rating
// for an organization.
func (r *GormReviewRepository) ApprovedStats(orgID uint) (int64, float64, error) {
	var row struct {
		Count int64
		Avg   float64
	}
	err := r.db.Model(&models.Review{}).
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS avg").
		Where("organization_id = ? AND status = ?", orgID, constants.ReviewStatusApproved).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Count, row.Avg, nil
}

// CountByUserSince counts a user's reviews created since the given time.
func (r *GormReviewRepository) CountByUserSince(userID uint, status string, since *time.Time) (int64, error) {
	var count int64
	query := r.db.Model(&models.Review{}).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if since != nil {
		query = query.Where("created_at >= ?", *since)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
