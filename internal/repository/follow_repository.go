package repository

import (
	"errors"

	"github.com/chestno/chestno-api/internal/models"

	"gorm.io/gorm"
)

// FollowRepository is the producer-follow data access interface.
type FollowRepository interface {
	Get(userID, orgID uint) (*models.Follow, error)
	ListByUser(userID uint, page, pageSize int) ([]models.Follow, int64, error)
	ListFollowerUserIDs(orgID uint) ([]uint, error)
	CountByOrg(orgID uint) (int64, error)
	Create(follow *models.Follow) error
	Delete(userID, orgID uint) error
}

// GormFollowRepository is the GORM implementation.
type GormFollowRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates the follow repository.
func NewFollowRepository(db *gorm.DB) *GormFollowRepository {
	return &GormFollowRepository{db: db}
}

// Get fetches one follow edge.
func (r *GormFollowRepository) Get(userID, orgID uint) (*models.Follow, error) {
	var follow models.Follow
	err := r.db.Where("user_id = ? AND organization_id = ?", userID, orgID).First(&follow).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &follow, nil
}

// ListByUser pages through the organizations a user follows.
func (r *GormFollowRepository) ListByUser(userID uint, page, pageSize int) ([]models.Follow, int64, error) {
	var follows []models.Follow
	query := r.db.Model(&models.Follow{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, page, pageSize)
	if err := query.Order("created_at DESC").Find(&follows).Error; err != nil {
		return nil, 0, err
	}
	return follows, total, nil
}

// ListFollowerUserIDs returns every follower of an organization.
func (r *GormFollowRepository) ListFollowerUserIDs(orgID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Follow{}).
		Where("organization_id = ?", orgID).Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// CountByOrg counts the followers of an organization.
func (r *GormFollowRepository) CountByOrg(orgID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).Where("organization_id = ?", orgID).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a follow edge.
func (r *GormFollowRepository) Create(follow *models.Follow) error {
	return r.db.Create(follow).Error
}

// Delete removes a follow edge.
func (r *GormFollowRepository) Delete(userID, orgID uint) error {
	return r.db.Where("user_id = ? AND organization_id = ?", userID, orgID).
		Delete(&models.Follow{}).Error
}
