package repository

import (
	"errors"
	"strings"

	"github.com/chestno/chestno-api/internal/models"

	"gorm.io/gorm"
)

// WarrantyRepository is the warranty claim data access interface.
type WarrantyRepository interface {
	List(filter WarrantyListFilter) ([]models.WarrantyClaim, int64, error)
	GetByID(id uint) (*models.WarrantyClaim, error)
	Create(claim *models.WarrantyClaim) error
	Update(claim *models.WarrantyClaim) error
	CountByOrgStatus(orgID uint, statuses []string) (int64, error)
}

// GormWarrantyRepository is the GORM implementation.
type GormWarrantyRepository struct {
	db *gorm.DB
}

// NewWarrantyRepository creates the warranty repository.
func NewWarrantyRepository(db *gorm.DB) *GormWarrantyRepository {
	return &GormWarrantyRepository{db: db}
}

// List pages through warranty claims.
func (r *GormWarrantyRepository) List(filter WarrantyListFilter) ([]models.WarrantyClaim, int64, error) {
	var claims []models.WarrantyClaim
	query := r.db.Model(&models.WarrantyClaim{})
	if filter.OrganizationID > 0 {
		query = query.Where("organization_id = ?", filter.OrganizationID)
	}
	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("created_at DESC").Find(&claims).Error; err != nil {
		return nil, 0, err
	}
	return claims, total, nil
}

// GetByID fetches a claim by ID.
func (r *GormWarrantyRepository) GetByID(id uint) (*models.WarrantyClaim, error) {
	var claim models.WarrantyClaim
	if err := r.db.First(&claim, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &claim, nil
}

// Create inserts a claim.
func (r *GormWarrantyRepository) Create(claim *models.WarrantyClaim) error {
	return r.db.Create(claim).Error
}

// Update saves claim changes.
func (r *GormWarrantyRepository) Update(claim *models.WarrantyClaim) error {
	return r.db.Save(claim).Error
}

// CountByOrgStatus counts an organization's claims in the given statuses.
func (r *GormWarrantyRepository) CountByOrgStatus(orgID uint, statuses []string) (int64, error) {
	var count int64
	query := r.db.Model(&models.WarrantyClaim{}).Where("organization_id = ?", orgID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
