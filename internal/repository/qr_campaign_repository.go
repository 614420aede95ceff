package repository

import (
	"errors"
	"time"

	"github.com/chestno/chestno-api/internal/constants"
	"github.com/chestno/chestno-api/internal/models"

	"gorm.io/gorm"
)

// QRCampaignRepository is the campaign override data access interface.
type QRCampaignRepository interface {
	ListByQR(qrID uint) ([]models.QRCampaign, error)
	GetByID(id uint) (*models.QRCampaign, error)
	GetActiveAt(qrID uint, at time.Time) (*models.QRCampaign, error)
	Create(campaign *models.QRCampaign) error
	Update(campaign *models.QRCampaign) error
	Delete(id uint) error
	IncrementHit(id uint) error
}

// GormQRCampaignRepository is the GORM implementation.
type GormQRCampaignRepository struct {
	db *gorm.DB
}

// NewQRCampaignRepository creates the campaign repository.
func NewQRCampaignRepository(db *gorm.DB) *GormQRCampaignRepository {
	return &GormQRCampaignRepository{db: db}
}

// ListByQR returns all campaigns of a QR code, newest first.
func (r *GormQRCampaignRepository) ListByQR(qrID uint) ([]models.QRCampaign, error) {
	var campaigns []models.QRCampaign
	err := r.db.Where("qr_code_id = ?", qrID).
		Order("created_at DESC, id DESC").Find(&campaigns).Error
	if err != nil {
		return nil, err
	}
	return campaigns, nil
}

// GetByID fetches a campaign by ID.
func (r *GormQRCampaignRepository) GetByID(id uint) (*models.QRCampaign, error) {
	var campaign models.QRCampaign
	if err := r.db.First(&campaign, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &campaign, nil
}

// GetActiveAt returns the campaign overriding the QR code at the given
// moment. When windows overlap the most recently created one wins.
func (r *GormQRCampaignRepository) GetActiveAt(qrID uint, at time.Time) (*models.QRCampaign, error) {
	var campaign models.QRCampaign
	err := r.db.Where("qr_code_id = ? AND status = ?", qrID, constants.CampaignStatusActive).
		Where("starts_at <= ? AND ends_at > ?", at, at).
		Order("created_at DESC, id DESC").
		First(&campaign).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &campaign, nil
}

// Create inserts a campaign.
func (r *GormQRCampaignRepository) Create(campaign *models.QRCampaign) error {
	return r.db.Create(campaign).Error
}

// Update saves campaign changes.
func (r *GormQRCampaignRepository) Update(campaign *models.QRCampaign) error {
	return r.db.Save(campaign).Error
}

// Delete removes a campaign.
func (r *GormQRCampaignRepository) Delete(id uint) error {
	return r.db.Delete(&models.QRCampaign{}, id).Error
}

// IncrementHit bumps the resolve counter.
func (r *GormQRCampaignRepository) IncrementHit(id uint) error {
	return r.db.Model(&models.QRCampaign{}).Where("id = ?", id).
		UpdateColumn("hit_count", gorm.Expr("hit_count + 1")).Error
}
