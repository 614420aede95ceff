package repository

import (
	"strings"
	"time"

	"github.com/chestno/chestno-api/internal/models"

	"gorm.io/gorm"
)

// DailyScanCount is one day of scan volume.
type DailyScanCount struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// ScanEventRepository is the scan analytics data access interface.
type ScanEventRepository interface {
	Create(event *models.ScanEvent) error
	List(filter ScanEventListFilter) ([]models.ScanEvent, int64, error)
	CountByQRSince(qrID uint, since time.Time) (int64, error)
	CountriesByQRSince(qrID uint, since time.Time) ([]string, error)
	CountByOrgSince(orgID uint, since time.Time) (int64, error)
	DailyCountsByOrg(orgID uint, from, to time.Time) ([]DailyScanCount, error)
	RecentQRCodeIDs(since time.Time) ([]uint, error)
}

// GormScanEventRepository is the GORM implementation.
type GormScanEventRepository struct {
	db *gorm.DB
}

// NewScanEventRepository creates the scan event repository.
func NewScanEventRepository(db *gorm.DB) *GormScanEventRepository {
	return &GormScanEventRepository{db: db}
}

// Create inserts a scan event.
func (r *GormScanEventRepository) Create(event *models.ScanEvent) error {
	return r.db.Create(event).Error
}

// List pages through scan events.
func (r *GormScanEventRepository) List(filter ScanEventListFilter) ([]models.ScanEvent, int64, error) {
	var events []models.ScanEvent
	query := r.db.Model(&models.ScanEvent{})
	if filter.OrganizationID > 0 {
		query = query.
			Joins("JOIN qr_codes ON qr_codes.id = scan_events.qr_code_id").
			Where("qr_codes.organization_id = ?", filter.OrganizationID)
	}
	if filter.QRCodeID > 0 {
		query = query.Where("scan_events.qr_code_id = ?", filter.QRCodeID)
	}
	if kind := strings.TrimSpace(filter.SourceKind); kind != "" {
		query = query.Where("scan_events.source_kind = ?", kind)
	}
	if country := strings.TrimSpace(filter.Country); country != "" {
		query = query.Where("scan_events.country = ?", country)
	}
	if filter.ScannedFrom != nil {
		query = query.Where("scan_events.scanned_at >= ?", *filter.ScannedFrom)
	}
	if filter.ScannedTo != nil {
		query = query.Where("scan_events.scanned_at < ?", *filter.ScannedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("scan_events.scanned_at DESC, scan_events.id DESC").Find(&events).Error; err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// CountByQRSince counts scans of one QR code since the given time.
func (r *GormScanEventRepository) CountByQRSince(qrID uint, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.ScanEvent{}).
		Where("qr_code_id = ? AND scanned_at >= ?", qrID, since).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// CountriesByQRSince returns the distinct non-empty countries seen on a
// QR code since the given time.
func (r *GormScanEventRepository) CountriesByQRSince(qrID uint, since time.Time) ([]string, error) {
	var countries []string
	err := r.db.Model(&models.ScanEvent{}).
		Where("qr_code_id = ? AND scanned_at >= ? AND country <> ''", qrID, since).
		Distinct().Pluck("country", &countries).Error
	if err != nil {
		return nil, err
	}
	return countries, nil
}

// CountByOrgSince counts scans across an organization since the given time.
func (r *GormScanEventRepository) CountByOrgSince(orgID uint, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.ScanEvent{}).
		Joins("JOIN qr_codes ON qr_codes.id = scan_events.qr_code_id").
		Where("qr_codes.organization_id = ? AND scan_events.scanned_at >= ?", orgID, since).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// DailyCountsByOrg aggregates scan volume per day for an organization.
func (r *GormScanEventRepository) DailyCountsByOrg(orgID uint, from, to time.Time) ([]DailyScanCount, error) {
	var rows []DailyScanCount
	err := r.db.Model(&models.ScanEvent{}).
		Select("DATE(scan_events.scanned_at) AS day, COUNT(*) AS count").
		Joins("JOIN qr_codes ON qr_codes.id = scan_events.qr_code_id").
		Where("qr_codes.organization_id = ?", orgID).
		Where("scan_events.scanned_at >= ? AND scan_events.scanned_at < ?", from, to).
		Group("DATE(scan_events.scanned_at)").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// RecentQRCodeIDs lists QR codes with scan activity since the given time.
func (r *GormScanEventRepository) RecentQRCodeIDs(since time.Time) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.ScanEvent{}).
		Where("scanned_at >= ?", since).
		Distinct().Pluck("qr_code_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
