package public

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/chestno/chestno-api/internal/config"
	"github.com/chestno/chestno-api/internal/models"
	"github.com/chestno/chestno-api/internal/provider"
	"github.com/chestno/chestno-api/internal/repository"
	"github.com/chestno/chestno-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// newScanEngine wires the redirect handler against an in-memory store
// with no queue client, so all scan bookkeeping must happen inline.
func newScanEngine(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	err = db.AutoMigrate(
		&models.QRCode{},
		&models.QRUrlVersion{},
		&models.QRCampaign{},
		&models.QRABTest{},
		&models.QRABVariant{},
		&models.ScanEvent{},
		&models.AnomalyAlert{},
	)
	if err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	qrRepo := repository.NewQRCodeRepository(db)
	versionRepo := repository.NewQRVersionRepository(db)
	campaignRepo := repository.NewQRCampaignRepository(db)
	abRepo := repository.NewQRABTestRepository(db)
	scanRepo := repository.NewScanEventRepository(db)

	cfg := &config.Config{}
	container := &provider.Container{
		Config:          cfg,
		ResolverService: service.NewResolverService(qrRepo, versionRepo, campaignRepo, abRepo),
		ScanService:     service.NewScanService(scanRepo, qrRepo, versionRepo, campaignRepo, abRepo, nil, nil, nil),
		AnomalyService: service.NewAnomalyService(cfg,
			repository.NewAnomalyRepository(db), scanRepo, qrRepo, nil),
	}

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	handler := New(container)
	engine.GET("/q/:slug", handler.ResolveScan)
	return engine, db
}

func seedScanTarget(t *testing.T, db *gorm.DB) *models.QRUrlVersion {
	t.Helper()
	qr := &models.QRCode{OrganizationID: 1, ProductID: 1, Slug: "jar-001", IsActive: true}
	if err := db.Create(qr).Error; err != nil {
		t.Fatalf("create qr failed: %v", err)
	}
	version := &models.QRUrlVersion{QRCodeID: qr.ID, URL: "https://chestno.ru/p/tvorog", IsCurrent: true}
	if err := db.Create(version).Error; err != nil {
		t.Fatalf("create version failed: %v", err)
	}
	return version
}

func TestResolveScanRecordsInlineWithoutQueue(t *testing.T) {
	engine, db := newScanEngine(t)
	version := seedScanTarget(t, db)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/q/jar-001", nil))

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != version.URL {
		t.Fatalf("unexpected redirect target: %s", loc)
	}

	var events int64
	if err := db.Model(&models.ScanEvent{}).Count(&events).Error; err != nil {
		t.Fatalf("count events failed: %v", err)
	}
	if events != 1 {
		t.Fatalf("expected 1 inline-recorded scan event, got %d", events)
	}

	var stored models.QRUrlVersion
	if err := db.First(&stored, version.ID).Error; err != nil {
		t.Fatalf("load version failed: %v", err)
	}
	if stored.HitCount != 1 {
		t.Fatalf("expected hit counter 1, got %d", stored.HitCount)
	}
}

func TestResolveScanMintsVisitorCookie(t *testing.T) {
	engine, db := newScanEngine(t)
	seedScanTarget(t, db)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/q/jar-001", nil))

	var minted string
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == visitorCookieName {
			minted = cookie.Value
		}
	}
	if minted == "" {
		t.Fatalf("expected a visitor cookie on first scan")
	}

	// Returning visitors keep their key: no new cookie, the presented
	// value lands on the scan event.
	req := httptest.NewRequest(http.MethodGet, "/q/jar-001", nil)
	req.AddCookie(&http.Cookie{Name: visitorCookieName, Value: minted})
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == visitorCookieName {
			t.Fatalf("visitor cookie must not be re-minted")
		}
	}

	var events []models.ScanEvent
	if err := db.Order("id").Find(&events).Error; err != nil {
		t.Fatalf("load events failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 scan events, got %d", len(events))
	}
	for _, e := range events {
		if e.VisitorKey != minted {
			t.Fatalf("scan event carries key %q, cookie is %q", e.VisitorKey, minted)
		}
	}
}

func TestResolveScanUnknownSlug(t *testing.T) {
	engine, _ := newScanEngine(t)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/q/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "unknown code") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}
