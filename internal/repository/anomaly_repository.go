package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/chestno/chestno-api/internal/constants"
	"github.com/chestno/chestno-api/internal/models"

	"gorm.io/gorm"
)

// AnomalyRepository is the anomaly alert data access interface.
type AnomalyRepository interface {
	List(filter AnomalyListFilter) ([]models.AnomalyAlert, int64, error)
	GetByID(id uint) (*models.AnomalyAlert, error)
	Create(alert *models.AnomalyAlert) error
	Acknowledge(id uint, actorKind string, actorID uint, at time.Time) error
	HasOpenAlert(qrID uint, kind string, since time.Time) (bool, error)
	CountOpenByOrg(orgID uint) (int64, error)
}

// GormAnomalyRepository is the GORM implementation.
type GormAnomalyRepository struct {
	db *gorm.DB
}

// NewAnomalyRepository creates the anomaly repository.
func NewAnomalyRepository(db *gorm.DB) *GormAnomalyRepository {
	return &GormAnomalyRepository{db: db}
}

// List pages through alerts.
func (r *GormAnomalyRepository) List(filter AnomalyListFilter) ([]models.AnomalyAlert, int64, error) {
	var alerts []models.AnomalyAlert
	query := r.db.Model(&models.AnomalyAlert{})
	if filter.OrganizationID > 0 {
		query = query.Where("organization_id = ?", filter.OrganizationID)
	}
	if filter.QRCodeID > 0 {
		query = query.Where("qr_code_id = ?", filter.QRCodeID)
	}
	if kind := strings.TrimSpace(filter.Kind); kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("created_at DESC").Find(&alerts).Error; err != nil {
		return nil, 0, err
	}
	return alerts, total, nil
}

// GetByID fetches an alert by ID.
func (r *GormAnomalyRepository) GetByID(id uint) (*models.AnomalyAlert, error) {
	var alert models.AnomalyAlert
	if err := r.db.First(&alert, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &alert, nil
}

// Create inserts an alert.
func (r *GormAnomalyRepository) Create(alert *models.AnomalyAlert) error {
	return r.db.Create(alert).Error
}

// Acknowledge marks an alert as handled, recording who closed it.
func (r *GormAnomalyRepository) Acknowledge(id uint, actorKind string, actorID uint, at time.Time) error {
	return r.db.Model(&models.AnomalyAlert{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":               constants.AlertStatusAcknowledged,
		"acknowledged_by":      actorID,
		"acknowledged_by_kind": actorKind,
		"acknowledged_at":      at,
	}).Error
}

// HasOpenAlert reports whether an equivalent open alert already exists,
// to avoid duplicate alerts within a detection window.
func (r *GormAnomalyRepository) HasOpenAlert(qrID uint, kind string, since time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&models.AnomalyAlert{}).
		Where("qr_code_id = ? AND kind = ? AND status = ? AND created_at >= ?",
			qrID, kind, constants.AlertStatusOpen, since).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountOpenByOrg counts an organization's unhandled alerts.
func (r *GormAnomalyRepository) CountOpenByOrg(orgID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.AnomalyAlert{}).
		Where("organization_id = ? AND status = ?", orgID, constants.AlertStatusOpen).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
