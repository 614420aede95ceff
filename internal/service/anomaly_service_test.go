package service

import (
	"errors"
	"testing"
	"time"

	"github.com/chestno/chestno-api/internal/config"
	"github.com/chestno/chestno-api/internal/constants"
	"github.com/chestno/chestno-api/internal/models"
	"github.com/chestno/chestno-api/internal/repository"

	"gorm.io/gorm"
)

func newAnomalyForTest(t *testing.T, anomaly config.AnomalyConfig) (*AnomalyService, *gorm.DB) {
	t.Helper()
	db := setupServiceDB(t)
	cfg := &config.Config{Anomaly: anomaly}
	svc := NewAnomalyService(
		cfg,
		repository.NewAnomalyRepository(db),
		repository.NewScanEventRepository(db),
		repository.NewQRCodeRepository(db),
		nil,
	)
	return svc, db
}

func seedScannedQR(t *testing.T, db *gorm.DB) *models.QRCode {
	t.Helper()
	qr := &models.QRCode{OrganizationID: 1, ProductID: 1, Slug: "jar-001", IsActive: true}
	if err := db.Create(qr).Error; err != nil {
		t.Fatalf("create qr failed: %v", err)
	}
	return qr
}

func recordScan(t *testing.T, db *gorm.DB, qrID uint, country string, at time.Time) {
	t.Helper()
	event := &models.ScanEvent{
		QRCodeID:   qrID,
		SourceKind: constants.ScanSourceVersion,
		SourceID:   1,
		VisitorKey: "v-" + country,
		Country:    country,
		ScannedAt:  at,
	}
	if err := db.Create(event).Error; err != nil {
		t.Fatalf("create scan failed: %v", err)
	}
}

func openAlerts(t *testing.T, db *gorm.DB, qrID uint, kind string) int64 {
	t.Helper()
	var count int64
	err := db.Model(&models.AnomalyAlert{}).
		Where("qr_code_id = ? AND kind = ? AND status = ?", qrID, kind, constants.AlertStatusOpen).
		Count(&count).Error
	if err != nil {
		t.Fatalf("count alerts failed: %v", err)
	}
	return count
}

func TestGeoSpreadDetector(t *testing.T) {
	svc, db := newAnomalyForTest(t, config.AnomalyConfig{
		GeoCountryThreshold: 3,
		GeoWindowMinutes:    60,
	})
	qr := seedScannedQR(t, db)

	now := time.Now()
	recordScan(t, db, qr.ID, "RU", now.Add(-time.Minute))
	recordScan(t, db, qr.ID, "KZ", now.Add(-2*time.Minute))

	if err := svc.CheckQRCode(qr.ID); err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if n := openAlerts(t, db, qr.ID, constants.AlertKindGeoSpread); n != 0 {
		t.Fatalf("two countries must not alert, got %d alerts", n)
	}

	recordScan(t, db, qr.ID, "CN", now.Add(-3*time.Minute))
	if err := svc.CheckQRCode(qr.ID); err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if n := openAlerts(t, db, qr.ID, constants.AlertKindGeoSpread); n != 1 {
		t.Fatalf("expected one geo_spread alert, got %d", n)
	}

	// A still-open alert suppresses duplicates on the next check.
	if err := svc.CheckQRCode(qr.ID); err != nil {
		t.Fatalf("recheck failed: %v", err)
	}
	if n := openAlerts(t, db, qr.ID, constants.AlertKindGeoSpread); n != 1 {
		t.Fatalf("expected deduplicated alert, got %d", n)
	}
}

func TestVelocityDetector(t *testing.T) {
	svc, db := newAnomalyForTest(t, config.AnomalyConfig{
		VelocityThreshold:     5,
		VelocityWindowSeconds: 60,
	})
	qr := seedScannedQR(t, db)

	now := time.Now()
	for i := 0; i < 5; i++ {
		recordScan(t, db, qr.ID, "RU", now.Add(-time.Duration(i)*time.Second))
	}

	if err := svc.CheckQRCode(qr.ID); err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if n := openAlerts(t, db, qr.ID, constants.AlertKindVelocity); n != 1 {
		t.Fatalf("expected one velocity alert, got %d", n)
	}
}

func TestAcknowledgeOpenAlertsOnly(t *testing.T) {
	svc, db := newAnomalyForTest(t, config.AnomalyConfig{})

	alert := &models.AnomalyAlert{
		OrganizationID: 1,
		QRCodeID:       1,
		Kind:           constants.AlertKindVelocity,
		Status:         constants.AlertStatusOpen,
	}
	if err := db.Create(alert).Error; err != nil {
		t.Fatalf("create alert failed: %v", err)
	}

	if err := svc.Acknowledge(999, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for unknown alert, got %v", err)
	}
	if err := svc.Acknowledge(alert.ID, 1); err != nil {
		t.Fatalf("acknowledge failed: %v", err)
	}

	var stored models.AnomalyAlert
	if err := db.First(&stored, alert.ID).Error; err != nil {
		t.Fatalf("load alert failed: %v", err)
	}
	if stored.Status != constants.AlertStatusAcknowledged || stored.AcknowledgedBy != 1 {
		t.Fatalf("unexpected alert state: %+v", stored)
	}
	if stored.AcknowledgedByKind != constants.AlertAckByAdmin {
		t.Fatalf("expected admin actor kind, got %q", stored.AcknowledgedByKind)
	}

	if err := svc.Acknowledge(alert.ID, 1); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict re-acknowledging, got %v", err)
	}
}

func TestAcknowledgeForOrgScopesOwnership(t *testing.T) {
	svc, db := newAnomalyForTest(t, config.AnomalyConfig{})

	alert := &models.AnomalyAlert{
		OrganizationID: 1,
		QRCodeID:       1,
		Kind:           constants.AlertKindGeoSpread,
		Status:         constants.AlertStatusOpen,
	}
	if err := db.Create(alert).Error; err != nil {
		t.Fatalf("create alert failed: %v", err)
	}

	// Another organization's alert reads as not found.
	if err := svc.AcknowledgeForOrg(2, alert.ID, 7); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for foreign org, got %v", err)
	}

	if err := svc.AcknowledgeForOrg(1, alert.ID, 7); err != nil {
		t.Fatalf("org acknowledge failed: %v", err)
	}

	var stored models.AnomalyAlert
	if err := db.First(&stored, alert.ID).Error; err != nil {
		t.Fatalf("load alert failed: %v", err)
	}
	if stored.AcknowledgedByKind != constants.AlertAckByMember || stored.AcknowledgedBy != 7 {
		t.Fatalf("unexpected acknowledger: %s/%d", stored.AcknowledgedByKind, stored.AcknowledgedBy)
	}

	if err := svc.AcknowledgeForOrg(1, alert.ID, 7); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict re-acknowledging, got %v", err)
	}
}
