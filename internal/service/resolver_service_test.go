package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/chestno/chestno-api/internal/constants"
	"github.com/chestno/chestno-api/internal/models"
	"github.com/chestno/chestno-api/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	err = db.AutoMigrate(
		&models.Admin{},
		&models.User{},
		&models.Session{},
		&models.Organization{},
		&models.OrganizationMember{},
		&models.Product{},
		&models.JourneyStep{},
		&models.QRCode{},
		&models.QRUrlVersion{},
		&models.QRCampaign{},
		&models.QRABTest{},
		&models.QRABVariant{},
		&models.ScanEvent{},
		&models.Review{},
		&models.Follow{},
		&models.RewardAccount{},
		&models.RewardTransaction{},
		&models.WarrantyClaim{},
		&models.SubscriptionPlan{},
		&models.OrgSubscription{},
		&models.AnomalyAlert{},
	)
	if err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db
}

func newResolverForTest(db *gorm.DB) *ResolverService {
	return NewResolverService(
		repository.NewQRCodeRepository(db),
		repository.NewQRVersionRepository(db),
		repository.NewQRCampaignRepository(db),
		repository.NewQRABTestRepository(db),
	)
}

func createCodeWithVersion(t *testing.T, db *gorm.DB, slug, url string) *models.QRCode {
	t.Helper()
	code := &models.QRCode{OrganizationID: 1, Slug: slug, IsActive: true}
	if err := db.Create(code).Error; err != nil {
		t.Fatalf("create qr failed: %v", err)
	}
	version := &models.QRUrlVersion{QRCodeID: code.ID, URL: url, IsCurrent: true}
	if err := db.Create(version).Error; err != nil {
		t.Fatalf("create version failed: %v", err)
	}
	return code
}

func TestResolveUsesCurrentVersion(t *testing.T) {
	db := setupServiceDB(t)
	resolver := newResolverForTest(db)
	createCodeWithVersion(t, db, "plain", "https://example.com/v1")

	res, err := resolver.Resolve("plain", "visitor")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if res.URL != "https://example.com/v1" {
		t.Fatalf("expected version url, got %s", res.URL)
	}
	if res.SourceKind != constants.ScanSourceVersion {
		t.Fatalf("expected version source, got %s", res.SourceKind)
	}
}

func TestResolveUnknownAndInactiveSlugs(t *testing.T) {
	db := setupServiceDB(t)
	resolver := newResolverForTest(db)

	if _, err := resolver.Resolve("missing", "visitor"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for unknown slug, got %v", err)
	}

	code := createCodeWithVersion(t, db, "paused", "https://example.com")
	if err := db.Model(code).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	if _, err := resolver.Resolve("paused", "visitor"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for inactive code, got %v", err)
	}
}

func TestResolveActiveCampaignOverridesVersion(t *testing.T) {
	db := setupServiceDB(t)
	resolver := newResolverForTest(db)
	code := createCodeWithVersion(t, db, "promo", "https://example.com/base")

	now := time.Now()
	older := &models.QRCampaign{
		QRCodeID: code.ID,
		Name:     "first",
		URL:      "https://example.com/first",
		StartsAt: now.Add(-time.Hour),
		EndsAt:   now.Add(time.Hour),
		Status:   constants.CampaignStatusActive,
	}
	if err := db.Create(older).Error; err != nil {
		t.Fatalf("create campaign failed: %v", err)
	}
	newer := &models.QRCampaign{
		QRCodeID: code.ID,
		Name:     "second",
		URL:      "https://example.com/second",
		StartsAt: now.Add(-time.Hour),
		EndsAt:   now.Add(time.Hour),
		Status:   constants.CampaignStatusActive,
	}
	if err := db.Create(newer).Error; err != nil {
		t.Fatalf("create campaign failed: %v", err)
	}

	res, err := resolver.ResolveAt("promo", "visitor", now)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if res.SourceKind != constants.ScanSourceCampaign {
		t.Fatalf("expected campaign source, got %s", res.SourceKind)
	}
	// Overlapping windows: the most recently created campaign wins.
	if res.URL != "https://example.com/second" {
		t.Fatalf("expected newest campaign url, got %s", res.URL)
	}

	res, err = resolver.ResolveAt("promo", "visitor", now.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("resolve after window failed: %v", err)
	}
	if res.SourceKind != constants.ScanSourceVersion {
		t.Fatalf("expected version fallback after window, got %s", res.SourceKind)
	}
}

func TestResolveABTestIsDeterministicPerVisitor(t *testing.T) {
	db := setupServiceDB(t)
	resolver := newResolverForTest(db)
	code := createCodeWithVersion(t, db, "split", "https://example.com/base")

	test := &models.QRABTest{
		QRCodeID: code.ID,
		Name:     "landing",
		Status:   constants.ABTestStatusRunning,
		Variants: []models.QRABVariant{
			{Name: "a", URL: "https://example.com/a", Weight: 50, Position: 0},
			{Name: "b", URL: "https://example.com/b", Weight: 50, Position: 1},
		},
	}
	if err := db.Create(test).Error; err != nil {
		t.Fatalf("create ab test failed: %v", err)
	}

	first, err := resolver.Resolve("split", "visitor-1")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if first.SourceKind != constants.ScanSourceABTest {
		t.Fatalf("expected ab test source, got %s", first.SourceKind)
	}
	for i := 0; i < 10; i++ {
		again, err := resolver.Resolve("split", "visitor-1")
		if err != nil {
			t.Fatalf("resolve failed: %v", err)
		}
		if again.URL != first.URL {
			t.Fatalf("assignment not sticky: %s vs %s", again.URL, first.URL)
		}
	}
}

func TestResolveBrokenVariantWeightsFallThrough(t *testing.T) {
	db := setupServiceDB(t)
	resolver := newResolverForTest(db)
	code := createCodeWithVersion(t, db, "broken", "https://example.com/base")

	test := &models.QRABTest{
		QRCodeID: code.ID,
		Name:     "bad-weights",
		Status:   constants.ABTestStatusRunning,
		Variants: []models.QRABVariant{
			{Name: "a", URL: "https://example.com/a", Weight: 40, Position: 0},
			{Name: "b", URL: "https://example.com/b", Weight: 40, Position: 1},
		},
	}
	if err := db.Create(test).Error; err != nil {
		t.Fatalf("create ab test failed: %v", err)
	}

	res, err := resolver.Resolve("broken", "visitor")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if res.SourceKind != constants.ScanSourceVersion {
		t.Fatalf("expected fall through to version, got %s", res.SourceKind)
	}
}

func TestPickVariantHonorsWeights(t *testing.T) {
	test := &models.QRABTest{
		QRCodeID: 1,
		Status:   constants.ABTestStatusRunning,
		Variants: []models.QRABVariant{
			{Name: "a", URL: "https://example.com/a", Weight: 70, Position: 0},
			{Name: "b", URL: "https://example.com/b", Weight: 30, Position: 1},
		},
	}

	const visitors = 10000
	counts := map[string]int{}
	for i := 0; i < visitors; i++ {
		variant := pickVariant(test, 1, fmt.Sprintf("visitor-%d", i))
		if variant == nil {
			t.Fatalf("no variant assigned for visitor %d", i)
		}
		counts[variant.Name]++
	}

	// Hash buckets should track the configured 70/30 split closely over
	// this many distinct keys.
	shareA := float64(counts["a"]) / visitors
	if shareA < 0.67 || shareA > 0.73 {
		t.Fatalf("variant a got %.4f of visitors, want ~0.70 (counts %v)", shareA, counts)
	}
	if counts["a"]+counts["b"] != visitors {
		t.Fatalf("assignments leaked outside the variant set: %v", counts)
	}
}

func TestVisitorBucketRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		bucket := visitorBucket(uint(i%7), fmt.Sprintf("visitor-%d", i))
		if bucket < 0 || bucket >= 100 {
			t.Fatalf("bucket out of range: %d", bucket)
		}
	}
}
