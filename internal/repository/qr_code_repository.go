package repository

import (
	"errors"
	"strings"

	"github.com/chestno/chestno-api/internal/models"

	"gorm.io/gorm"
)

// QRCodeRepository is the QR code data access interface.
type QRCodeRepository interface {
	List(filter QRCodeListFilter) ([]models.QRCode, int64, error)
	GetByID(id uint) (*models.QRCode, error)
	GetBySlug(slug string) (*models.QRCode, error)
	Create(code *models.QRCode) error
	Update(code *models.QRCode) error
	Delete(id uint) error
	CountBySlug(slug string, excludeID uint) (int64, error)
	CountByOrg(orgID uint) (int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
}

// GormQRCodeRepository is the GORM implementation.
type GormQRCodeRepository struct {
	db *gorm.DB
}

// NewQRCodeRepository creates the QR code repository.
func NewQRCodeRepository(db *gorm.DB) *GormQRCodeRepository {
	return &GormQRCodeRepository{db: db}
}

// Transaction runs fn inside one transaction.
func (r *GormQRCodeRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// List pages through QR codes.
func (r *GormQRCodeRepository) List(filter QRCodeListFilter) ([]models.QRCode, int64, error) {
	var codes []models.QRCode
	query := r.db.Model(&models.QRCode{})
	if filter.OrganizationID > 0 {
		query = query.Where("organization_id = ?", filter.OrganizationID)
	}
	if filter.ProductID > 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("slug LIKE ? OR label LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("created_at DESC").Find(&codes).Error; err != nil {
		return nil, 0, err
	}
	return codes, total, nil
}

// GetByID fetches a QR code by ID.
func (r *GormQRCodeRepository) GetByID(id uint) (*models.QRCode, error) {
	var code models.QRCode
	if err := r.db.First(&code, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &code, nil
}

// GetBySlug fetches a QR code by scan slug.
func (r *GormQRCodeRepository) GetBySlug(slug string) (*models.QRCode, error) {
	var code models.QRCode
	if err := r.db.Where("slug = ?", slug).First(&code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &code, nil
}

// Create inserts a QR code.
func (r *GormQRCodeRepository) Create(code *models.QRCode) error {
	return r.db.Create(code).Error
}

// Update saves QR code changes.
func (r *GormQRCodeRepository) Update(code *models.QRCode) error {
	return r.db.Save(code).Error
}

// Delete soft deletes a QR code.
func (r *GormQRCodeRepository) Delete(id uint) error {
	return r.db.Delete(&models.QRCode{}, id).Error
}

// CountBySlug counts slug usage for uniqueness checks.
func (r *GormQRCodeRepository) CountBySlug(slug string, excludeID uint) (int64, error) {
	var count int64
	query := r.db.Model(&models.QRCode{}).Where("slug = ?", slug)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByOrg counts QR codes of an organization, for plan limits.
func (r *GormQRCodeRepository) CountByOrg(orgID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.QRCode{}).Where("organization_id = ?", orgID).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
