package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/chestno/chestno-api/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupScanEventRepositoryTest(t *testing.T) (*GormScanEventRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.QRCode{}, &models.ScanEvent{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return NewScanEventRepository(db), db
}

func createScan(t *testing.T, repo *GormScanEventRepository, qrID uint, country string, at time.Time) {
	t.Helper()
	err := repo.Create(&models.ScanEvent{
		QRCodeID:   qrID,
		SourceKind: "version",
		VisitorKey: "v1",
		Country:    country,
		ScannedAt:  at,
	})
	if err != nil {
		t.Fatalf("create scan failed: %v", err)
	}
}

func TestCountByQRSinceHonorsWindow(t *testing.T) {
	repo, _ := setupScanEventRepositoryTest(t)
	now := time.Now()

	createScan(t, repo, 1, "RU", now.Add(-2*time.Hour))
	createScan(t, repo, 1, "RU", now.Add(-time.Minute))
	createScan(t, repo, 1, "RU", now.Add(-30*time.Second))
	createScan(t, repo, 2, "RU", now.Add(-time.Minute))

	count, err := repo.CountByQRSince(1, now.Add(-10*time.Minute))
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 scans in window, got %d", count)
	}
}

func TestCountriesByQRSinceSkipsEmpty(t *testing.T) {
	repo, _ := setupScanEventRepositoryTest(t)
	now := time.Now()

	createScan(t, repo, 1, "RU", now.Add(-time.Minute))
	createScan(t, repo, 1, "DE", now.Add(-time.Minute))
	createScan(t, repo, 1, "DE", now.Add(-time.Second))
	createScan(t, repo, 1, "", now.Add(-time.Second))
	createScan(t, repo, 1, "BR", now.Add(-time.Hour))

	countries, err := repo.CountriesByQRSince(1, now.Add(-10*time.Minute))
	if err != nil {
		t.Fatalf("countries failed: %v", err)
	}
	if len(countries) != 2 {
		t.Fatalf("expected 2 distinct countries, got %v", countries)
	}
}

func TestScanEventListFiltersByOrgWithAccurateTotal(t *testing.T) {
	repo, db := setupScanEventRepositoryTest(t)
	now := time.Now()

	for i, orgID := range []uint{10, 10, 20} {
		code := &models.QRCode{
			OrganizationID: orgID,
			ProductID:      1,
			Slug:           fmt.Sprintf("qr-%d", i),
			IsActive:       true,
		}
		if err := db.Create(code).Error; err != nil {
			t.Fatalf("create qr failed: %v", err)
		}
		for j := 0; j < 3; j++ {
			createScan(t, repo, code.ID, "RU", now.Add(-time.Duration(j)*time.Minute))
		}
	}

	events, total, err := repo.List(ScanEventListFilter{
		Page:           1,
		PageSize:       4,
		OrganizationID: 10,
	})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 6 {
		t.Fatalf("expected total 6, got %d", total)
	}
	if len(events) != 4 {
		t.Fatalf("expected page of 4, got %d", len(events))
	}

	events, total, err = repo.List(ScanEventListFilter{
		Page:           2,
		PageSize:       4,
		OrganizationID: 10,
	})
	if err != nil {
		t.Fatalf("list page 2 failed: %v", err)
	}
	if total != 6 || len(events) != 2 {
		t.Fatalf("expected remainder of 2 with total 6, got %d/%d", len(events), total)
	}
}
