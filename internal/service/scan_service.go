package service

import (
	"time"

	"github.com/chestno/chestno-api/internal/constants"
	"github.com/chestno/chestno-api/internal/logger"
	"github.com/chestno/chestno-api/internal/models"
	"github.com/chestno/chestno-api/internal/queue"
	"github.com/chestno/chestno-api/internal/repository"
)

// GeoLookup resolves request geography. Implementations may be disabled
// and return empty strings.
type GeoLookup interface {
	Lookup(ip string) (country, city string)
}

// LiveFeed pushes scan activity to organization dashboards.
type LiveFeed interface {
	Broadcast(orgID uint, payload interface{})
}

// LiveScanEvent is the dashboard feed message for one scan.
type LiveScanEvent struct {
	Type       string    `json:"type"`
	QRCodeID   uint      `json:"qr_code_id"`
	Slug       string    `json:"slug"`
	SourceKind string    `json:"source_kind"`
	Country    string    `json:"country"`
	City       string    `json:"city"`
	ScannedAt  time.Time `json:"scanned_at"`
}

// ScanService persists resolved scans and their side effects off the
// redirect path: analytics row, hit counters, live feed, points.
type ScanService struct {
	scanRepo     repository.ScanEventRepository
	qrRepo       repository.QRCodeRepository
	versionRepo  repository.QRVersionRepository
	campaignRepo repository.QRCampaignRepository
	abRepo       repository.QRABTestRepository
	rewards      *RewardService
	geo          GeoLookup
	feed         LiveFeed
}

// NewScanService creates the scan recorder.
func NewScanService(
	scanRepo repository.ScanEventRepository,
	qrRepo repository.QRCodeRepository,
	versionRepo repository.QRVersionRepository,
	campaignRepo repository.QRCampaignRepository,
	abRepo repository.QRABTestRepository,
	rewards *RewardService,
	geo GeoLookup,
	feed LiveFeed,
) *ScanService {
	return &ScanService{
		scanRepo:     scanRepo,
		qrRepo:       qrRepo,
		versionRepo:  versionRepo,
		campaignRepo: campaignRepo,
		abRepo:       abRepo,
		rewards:      rewards,
		geo:          geo,
		feed:         feed,
	}
}

// Record persists one scan. Failures of secondary effects (counters,
// feed, points) are logged, not returned; the analytics row decides
// task success.
func (s *ScanService) Record(payload queue.ScanRecordPayload) error {
	qr, err := s.qrRepo.GetByID(payload.QRCodeID)
	if err != nil {
		return err
	}
	if qr == nil {
		// Code deleted between resolve and record; nothing to attribute.
		return nil
	}

	country, city := "", ""
	if s.geo != nil {
		country, city = s.geo.Lookup(payload.IP)
	}

	scannedAt := payload.ScannedAt
	if scannedAt.IsZero() {
		scannedAt = time.Now()
	}

	event := &models.ScanEvent{
		QRCodeID:   qr.ID,
		SourceKind: payload.SourceKind,
		SourceID:   payload.SourceID,
		VisitorKey: payload.VisitorKey,
		IP:         payload.IP,
		Country:    country,
		City:       city,
		UserAgent:  payload.UserAgent,
		ScannedAt:  scannedAt,
	}
	if err := s.scanRepo.Create(event); err != nil {
		return err
	}

	s.bumpCounter(payload.SourceKind, payload.SourceID)

	if s.rewards != nil && payload.UserID > 0 {
		s.rewards.AccrueScan(payload.UserID, qr.ID)
	}

	if s.feed != nil {
		s.feed.Broadcast(qr.OrganizationID, LiveScanEvent{
			Type:       "scan",
			QRCodeID:   qr.ID,
			Slug:       qr.Slug,
			SourceKind: payload.SourceKind,
			Country:    country,
			City:       city,
			ScannedAt:  scannedAt,
		})
	}

	return nil
}

func (s *ScanService) bumpCounter(sourceKind string, sourceID uint) {
	if sourceID == 0 {
		return
	}
	var err error
	switch sourceKind {
	case constants.ScanSourceCampaign:
		err = s.campaignRepo.IncrementHit(sourceID)
	case constants.ScanSourceABTest:
		err = s.abRepo.IncrementVariantHit(sourceID)
	case constants.ScanSourceVersion:
		err = s.versionRepo.IncrementHit(sourceID)
	}
	if err != nil {
		logger.Warnw("scan_counter_bump_failed", "source_kind", sourceKind, "source_id", sourceID, "error", err)
	}
}

// ListEvents pages through scan analytics for dashboards.
func (s *ScanService) ListEvents(filter repository.ScanEventListFilter) ([]models.ScanEvent, int64, error) {
	return s.scanRepo.List(filter)
}

// DailyCounts aggregates an organization's scan volume per day.
func (s *ScanService) DailyCounts(orgID uint, days int) ([]repository.DailyScanCount, error) {
	if days <= 0 || days > 365 {
		days = 30
	}
	to := time.Now()
	from := to.AddDate(0, 0, -days)
	return s.scanRepo.DailyCountsByOrg(orgID, from, to)
}
