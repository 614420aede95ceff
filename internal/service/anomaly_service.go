package service

import (
	"time"

	"github.com/chestno/chestno-api/internal/config"
	"github.com/chestno/chestno-api/internal/constants"
	"github.com/chestno/chestno-api/internal/logger"
	"github.com/chestno/chestno-api/internal/models"
	"github.com/chestno/chestno-api/internal/queue"
	"github.com/chestno/chestno-api/internal/repository"
)

// AnomalyService detects suspicious scan patterns. Two detectors run
// per QR code: geo_spread (one code scanned from too many countries in
// a short window, a counterfeit signature) and velocity (scan bursts
// beyond plausible human rates).
type AnomalyService struct {
	cfg         *config.Config
	anomalyRepo repository.AnomalyRepository
	scanRepo    repository.ScanEventRepository
	qrRepo      repository.QRCodeRepository
	queue       *queue.Client
}

// NewAnomalyService creates the anomaly detector.
func NewAnomalyService(
	cfg *config.Config,
	anomalyRepo repository.AnomalyRepository,
	scanRepo repository.ScanEventRepository,
	qrRepo repository.QRCodeRepository,
	queueClient *queue.Client,
) *AnomalyService {
	return &AnomalyService{
		cfg:         cfg,
		anomalyRepo: anomalyRepo,
		scanRepo:    scanRepo,
		qrRepo:      qrRepo,
		queue:       queueClient,
	}
}

// List pages through alerts.
func (s *AnomalyService) List(filter repository.AnomalyListFilter) ([]models.AnomalyAlert, int64, error) {
	return s.anomalyRepo.List(filter)
}

// Acknowledge marks an alert as handled by a platform admin.
func (s *AnomalyService) Acknowledge(alertID, adminID uint) error {
	return s.acknowledge(alertID, 0, constants.AlertAckByAdmin, adminID)
}

// AcknowledgeForOrg marks an alert as handled by a member of the owning
// organization. Alerts of other organizations read as not found.
func (s *AnomalyService) AcknowledgeForOrg(orgID, alertID, userID uint) error {
	return s.acknowledge(alertID, orgID, constants.AlertAckByMember, userID)
}

func (s *AnomalyService) acknowledge(alertID, orgID uint, actorKind string, actorID uint) error {
	alert, err := s.anomalyRepo.GetByID(alertID)
	if err != nil {
		return err
	}
	if alert == nil || (orgID > 0 && alert.OrganizationID != orgID) {
		return ErrNotFound
	}
	if alert.Status != constants.AlertStatusOpen {
		return ErrConflict
	}
	if err := s.anomalyRepo.Acknowledge(alertID, actorKind, actorID, time.Now()); err != nil {
		return err
	}
	s.enqueueTrustRecompute(alert.OrganizationID)
	return nil
}

// CheckQRCode runs both detectors against one QR code. An open alert of
// the same kind within its window suppresses a duplicate.
func (s *AnomalyService) CheckQRCode(qrID uint) error {
	qr, err := s.qrRepo.GetByID(qrID)
	if err != nil {
		return err
	}
	if qr == nil {
		return nil
	}

	now := time.Now()
	if err := s.checkGeoSpread(qr, now); err != nil {
		return err
	}
	return s.checkVelocity(qr, now)
}

// Sweep checks every QR code with recent scan activity. Runs on a timer
// in the worker.
func (s *AnomalyService) Sweep() error {
	window := s.geoWindow()
	if v := s.velocityWindow(); v > window {
		window = v
	}
	ids, err := s.scanRepo.RecentQRCodeIDs(time.Now().Add(-window))
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := s.CheckQRCode(id); err != nil {
			logger.Warnw("anomaly_check_failed", "qr_code_id", id, "error", err)
		}
	}
	return nil
}

func (s *AnomalyService) checkGeoSpread(qr *models.QRCode, now time.Time) error {
	threshold := s.cfg.Anomaly.GeoCountryThreshold
	if threshold <= 0 {
		return nil
	}
	since := now.Add(-s.geoWindow())
	countries, err := s.scanRepo.CountriesByQRSince(qr.ID, since)
	if err != nil {
		return err
	}
	if len(countries) < threshold {
		return nil
	}
	return s.raise(qr, constants.AlertKindGeoSpread, since, models.JSON{
		"countries":      countries,
		"window_minutes": s.cfg.Anomaly.GeoWindowMinutes,
	})
}

func (s *AnomalyService) checkVelocity(qr *models.QRCode, now time.Time) error {
	threshold := s.cfg.Anomaly.VelocityThreshold
	if threshold <= 0 {
		return nil
	}
	since := now.Add(-s.velocityWindow())
	count, err := s.scanRepo.CountByQRSince(qr.ID, since)
	if err != nil {
		return err
	}
	if count < int64(threshold) {
		return nil
	}
	return s.raise(qr, constants.AlertKindVelocity, since, models.JSON{
		"scan_count":     count,
		"window_seconds": s.cfg.Anomaly.VelocityWindowSeconds,
	})
}

func (s *AnomalyService) raise(qr *models.QRCode, kind string, since time.Time, details models.JSON) error {
	exists, err := s.anomalyRepo.HasOpenAlert(qr.ID, kind, since)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	alert := &models.AnomalyAlert{
		OrganizationID: qr.OrganizationID,
		QRCodeID:       qr.ID,
		Kind:           kind,
		Details:        details,
		Status:         constants.AlertStatusOpen,
	}
	if err := s.anomalyRepo.Create(alert); err != nil {
		return err
	}
	logger.Infow("anomaly_alert_raised", "qr_code_id", qr.ID, "kind", kind, "alert_id", alert.ID)

	if s.queue != nil {
		if err := s.queue.EnqueueNotifyEvent(queue.NotifyEventPayload{
			Event:          constants.NotifyEventAnomalyAlert,
			OrganizationID: qr.OrganizationID,
			RefID:          alert.ID,
			Subject:        "Suspicious scan activity on " + qr.Slug,
			Body:           "QR code " + qr.Slug + " triggered a " + kind + " alert. Review it in your dashboard.",
		}); err != nil {
			logger.Warnw("notify_enqueue_failed", "event", constants.NotifyEventAnomalyAlert, "alert_id", alert.ID, "error", err)
		}
	}
	s.enqueueTrustRecompute(qr.OrganizationID)
	return nil
}

func (s *AnomalyService) geoWindow() time.Duration {
	minutes := s.cfg.Anomaly.GeoWindowMinutes
	if minutes <= 0 {
		minutes = 60
	}
	return time.Duration(minutes) * time.Minute
}

func (s *AnomalyService) velocityWindow() time.Duration {
	seconds := s.cfg.Anomaly.VelocityWindowSeconds
	if seconds <= 0 {
		seconds = 60
	}
	return time.Duration(seconds) * time.Second
}

func (s *AnomalyService) enqueueTrustRecompute(orgID uint) {
	if s.queue == nil {
		return
	}
	if err := s.queue.EnqueueTrustRecompute(queue.TrustRecomputePayload{OrganizationID: orgID}); err != nil {
		logger.Warnw("trust_enqueue_failed", "org_id", orgID, "error", err)
	}
}
