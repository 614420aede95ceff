package service

import (
	"github.com/chestno/chestno-api/internal/constants"
	"github.com/chestno/chestno-api/internal/logger"
	"github.com/chestno/chestno-api/internal/repository"

	"github.com/shopspring/decimal"
)

// TrustService scores organizations from observable behavior. The score
// lives in [0,100] and maps onto public status levels; consumers see
// the level, producers see the number.
type TrustService struct {
	orgRepo      repository.OrganizationRepository
	reviewRepo   repository.ReviewRepository
	warrantyRepo repository.WarrantyRepository
	anomalyRepo  repository.AnomalyRepository
}

// NewTrustService creates the trust scorer.
func NewTrustService(
	orgRepo repository.OrganizationRepository,
	reviewRepo repository.ReviewRepository,
	warrantyRepo repository.WarrantyRepository,
	anomalyRepo repository.AnomalyRepository,
) *TrustService {
	return &TrustService{
		orgRepo:      orgRepo,
		reviewRepo:   reviewRepo,
		warrantyRepo: warrantyRepo,
		anomalyRepo:  anomalyRepo,
	}
}

// Score components. Ratings dominate; verification and warranty conduct
// round the score out, open anomalies subtract.
const (
	ratingWeight     = 50.0
	volumeWeight     = 20.0
	verifiedBonus    = 15.0
	warrantyWeight   = 15.0
	anomalyPenalty   = 10.0
	maxAnomalyPoints = 20.0
	volumeSaturation = 100
)

// Recompute recalculates and stores one organization's score and level.
func (s *TrustService) Recompute(orgID uint) (decimal.Decimal, string, error) {
	org, err := s.orgRepo.GetByID(orgID)
	if err != nil {
		return decimal.Zero, "", err
	}
	if org == nil {
		return decimal.Zero, "", ErrNotFound
	}

	count, avgRating, err := s.reviewRepo.ApprovedStats(orgID)
	if err != nil {
		return decimal.Zero, "", err
	}

	score := 0.0
	if count > 0 {
		score += avgRating / 5 * ratingWeight
		volume := float64(count)
		if volume > volumeSaturation {
			volume = volumeSaturation
		}
		score += volume / volumeSaturation * volumeWeight
	}
	if org.IsVerified {
		score += verifiedBonus
	}

	resolved, err := s.warrantyRepo.CountByOrgStatus(orgID, []string{constants.ClaimStatusResolved})
	if err != nil {
		return decimal.Zero, "", err
	}
	totalClaims, err := s.warrantyRepo.CountByOrgStatus(orgID, nil)
	if err != nil {
		return decimal.Zero, "", err
	}
	if totalClaims > 0 {
		score += float64(resolved) / float64(totalClaims) * warrantyWeight
	} else {
		// No claims is not held against anyone.
		score += warrantyWeight
	}

	openAlerts, err := s.anomalyRepo.CountOpenByOrg(orgID)
	if err != nil {
		return decimal.Zero, "", err
	}
	penalty := float64(openAlerts) * anomalyPenalty
	if penalty > maxAnomalyPoints {
		penalty = maxAnomalyPoints
	}
	score -= penalty

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	rounded := decimal.NewFromFloat(score).Round(2)
	level := LevelForScore(score)
	if err := s.orgRepo.UpdateTrust(orgID, rounded, level); err != nil {
		return decimal.Zero, "", err
	}
	logger.Debugw("trust_recomputed", "org_id", orgID, "score", rounded.String(), "level", level)
	return rounded, level, nil
}

// LevelForScore maps a score onto a status level.
// Boundaries: C below 40, B below 65, A below 85, level zero at 85 and up.
func LevelForScore(score float64) string {
	switch {
	case score >= 85:
		return constants.StatusLevelZero
	case score >= 65:
		return constants.StatusLevelA
	case score >= 40:
		return constants.StatusLevelB
	default:
		return constants.StatusLevelC
	}
}
