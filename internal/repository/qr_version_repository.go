package repository

import (
	"errors"

	"github.com/chestno/chestno-api/internal/models"

	"gorm.io/gorm"
)

// QRVersionRepository is the QR URL version data access interface.
type QRVersionRepository interface {
	ListByQR(qrID uint) ([]models.QRUrlVersion, error)
	GetByID(id uint) (*models.QRUrlVersion, error)
	GetCurrent(qrID uint) (*models.QRUrlVersion, error)
	Create(version *models.QRUrlVersion) error
	UnsetCurrent(qrID uint) error
	SetCurrent(qrID, versionID uint) error
	IncrementHit(id uint) error
	WithTx(tx *gorm.DB) QRVersionRepository
}

// GormQRVersionRepository is the GORM implementation.
type GormQRVersionRepository struct {
	db *gorm.DB
}

// NewQRVersionRepository creates the URL version repository.
func NewQRVersionRepository(db *gorm.DB) *GormQRVersionRepository {
	return &GormQRVersionRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormQRVersionRepository) WithTx(tx *gorm.DB) QRVersionRepository {
	if tx == nil {
		return r
	}
	return &GormQRVersionRepository{db: tx}
}

// ListByQR returns all versions of a QR code, newest first.
func (r *GormQRVersionRepository) ListByQR(qrID uint) ([]models.QRUrlVersion, error) {
	var versions []models.QRUrlVersion
	err := r.db.Where("qr_code_id = ?", qrID).
		Order("created_at DESC, id DESC").Find(&versions).Error
	if err != nil {
		return nil, err
	}
	return versions, nil
}

// GetByID fetches a version by ID.
func (r *GormQRVersionRepository) GetByID(id uint) (*models.QRUrlVersion, error) {
	var version models.QRUrlVersion
	if err := r.db.First(&version, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &version, nil
}

// GetCurrent fetches the current version of a QR code.
func (r *GormQRVersionRepository) GetCurrent(qrID uint) (*models.QRUrlVersion, error) {
	var version models.QRUrlVersion
	err := r.db.Where("qr_code_id = ? AND is_current = ?", qrID, true).First(&version).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &version, nil
}

// Create inserts a version.
func (r *GormQRVersionRepository) Create(version *models.QRUrlVersion) error {
	return r.db.Create(version).Error
}

// UnsetCurrent clears the current flag on every version of a QR code.
func (r *GormQRVersionRepository) UnsetCurrent(qrID uint) error {
	return r.db.Model(&models.QRUrlVersion{}).
		Where("qr_code_id = ? AND is_current = ?", qrID, true).
		Update("is_current", false).Error
}

// SetCurrent marks one version of a QR code as current.
func (r *GormQRVersionRepository) SetCurrent(qrID, versionID uint) error {
	return r.db.Model(&models.QRUrlVersion{}).
		Where("qr_code_id = ? AND id = ?", qrID, versionID).
		Update("is_current", true).Error
}

// IncrementHit bumps the resolve counter.
func (r *GormQRVersionRepository) IncrementHit(id uint) error {
	return r.db.Model(&models.QRUrlVersion{}).Where("id = ?", id).
		UpdateColumn("hit_count", gorm.Expr("hit_count + 1")).Error
}
