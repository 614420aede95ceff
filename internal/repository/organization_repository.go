package repository

import (
	"errors"
	"strings"

	"github.com/chestno/chestno-api/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrganizationRepository is the producer organization data access interface.
type OrganizationRepository interface {
	GetByID(id uint) (*models.Organization, error)
	GetBySlug(slug string) (*models.Organization, error)
	List(filter OrganizationListFilter) ([]models.Organization, int64, error)
	ListIDs() ([]uint, error)
	Create(org *models.Organization) error
	Update(org *models.Organization) error
	Delete(id uint) error
	CountBySlug(slug string, excludeID uint) (int64, error)
	UpdateTrust(id uint, score decimal.Decimal, level string) error
	SetVerified(id uint, verified bool) error
}

// GormOrganizationRepository is the GORM implementation.
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository creates the organization repository.
func NewOrganizationRepository(db *gorm.DB) *GormOrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// GetByID fetches an organization by ID.
func (r *GormOrganizationRepository) GetByID(id uint) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.First(&org, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &org, nil
}

// GetBySlug fetches an organization by slug.
func (r *GormOrganizationRepository) GetBySlug(slug string) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.Where("slug = ?", slug).First(&org).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &org, nil
}

// List pages through organizations.
func (r *GormOrganizationRepository) List(filter OrganizationListFilter) ([]models.Organization, int64, error) {
	var orgs []models.Organization
	query := r.db.Model(&models.Organization{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR slug LIKE ?", like, like)
	}
	if country := strings.TrimSpace(filter.Country); country != "" {
		query = query.Where("country = ?", country)
	}
	if level := strings.TrimSpace(filter.StatusLevel); level != "" {
		query = query.Where("status_level = ?", level)
	}
	if filter.OnlyVerified {
		query = query.Where("is_verified = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("trust_score DESC, created_at DESC").Find(&orgs).Error; err != nil {
		return nil, 0, err
	}
	return orgs, total, nil
}

// ListIDs returns every organization ID, for periodic recomputation.
func (r *GormOrganizationRepository) ListIDs() ([]uint, error) {
	var ids []uint
	if err := r.db.Model(&models.Organization{}).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Create inserts an organization.
func (r *GormOrganizationRepository) Create(org *models.Organization) error {
	return r.db.Create(org).Error
}

// Update saves organization changes.
func (r *GormOrganizationRepository) Update(org *models.Organization) error {
	return r.db.Save(org).Error
}

// Delete soft deletes an organization.
func (r *GormOrganizationRepository) Delete(id uint) error {
	return r.db.Delete(&models.Organization{}, id).Error
}

// CountBySlug counts slug usage for uniqueness checks.
func (r *GormOrganizationRepository) CountBySlug(slug string, excludeID uint) (int64, error) {
	var count int64
	query := r.db.Model(&models.Organization{}).Where("slug = ?", slug)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// UpdateTrust stores a recomputed trust score and level.
func (r *GormOrganizationRepository) UpdateTrust(id uint, score decimal.Decimal, level string) error {
	return r.db.Model(&models.Organization{}).Where("id = ?", id).Updates(map[string]interface{}{
		"trust_score":  score,
		"status_level": level,
	}).Error
}

// SetVerified flips the verification flag.
func (r *GormOrganizationRepository) SetVerified(id uint, verified bool) error {
	return r.db.Model(&models.Organization{}).Where("id = ?", id).
		Update("is_verified", verified).Error
}
