package service

import (
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/chestno/chestno-api/internal/constants"
	"github.com/chestno/chestno-api/internal/logger"
	"github.com/chestno/chestno-api/internal/models"
	"github.com/chestno/chestno-api/internal/repository"
)

// Resolution is the outcome of one scan: where to send the visitor and
// which destination source won.
type Resolution struct {
	QRCode     *models.QRCode
	URL        string
	SourceKind string
	SourceID   uint
}

// ResolverService turns a scanned slug into a redirect destination.
// Priority: active campaign, then running A/B test, then current URL
// version. The printed code never changes; only this lookup does.
type ResolverService struct {
	qrRepo       repository.QRCodeRepository
	versionRepo  repository.QRVersionRepository
	campaignRepo repository.QRCampaignRepository
	abRepo       repository.QRABTestRepository
}

// NewResolverService creates the resolver.
func NewResolverService(
	qrRepo repository.QRCodeRepository,
	versionRepo repository.QRVersionRepository,
	campaignRepo repository.QRCampaignRepository,
	abRepo repository.QRABTestRepository,
) *ResolverService {
	return &ResolverService{
		qrRepo:       qrRepo,
		versionRepo:  versionRepo,
		campaignRepo: campaignRepo,
		abRepo:       abRepo,
	}
}

// Resolve finds the destination for a slug at the current moment.
// visitorKey keeps A/B assignment sticky per visitor.
func (s *ResolverService) Resolve(slug, visitorKey string) (*Resolution, error) {
	return s.ResolveAt(slug, visitorKey, time.Now())
}

// ResolveAt resolves against a fixed moment, for deterministic tests.
func (s *ResolverService) ResolveAt(slug, visitorKey string, at time.Time) (*Resolution, error) {
	qr, err := s.qrRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if qr == nil || !qr.IsActive {
		return nil, ErrNotFound
	}

	campaign, err := s.campaignRepo.GetActiveAt(qr.ID, at)
	if err != nil {
		return nil, err
	}
	if campaign != nil {
		return &Resolution{
			QRCode:     qr,
			URL:        campaign.URL,
			SourceKind: constants.ScanSourceCampaign,
			SourceID:   campaign.ID,
		}, nil
	}

	test, err := s.abRepo.GetRunning(qr.ID)
	if err != nil {
		return nil, err
	}
	if test != nil {
		if variant := pickVariant(test, qr.ID, visitorKey); variant != nil {
			return &Resolution{
				QRCode:     qr,
				URL:        variant.URL,
				SourceKind: constants.ScanSourceABTest,
				SourceID:   variant.ID,
			}, nil
		}
		// A running test with a broken variant set must not break scans.
		logger.Warnw("ab_test_variants_invalid", "qr_id", qr.ID, "test_id", test.ID)
	}

	version, err := s.versionRepo.GetCurrent(qr.ID)
	if err != nil {
		return nil, err
	}
	if version != nil {
		return &Resolution{
			QRCode:     qr,
			URL:        version.URL,
			SourceKind: constants.ScanSourceVersion,
			SourceID:   version.ID,
		}, nil
	}

	return nil, ErrNotFound
}

// pickVariant assigns a visitor to a variant by hashing (qrID, visitorKey)
// into [0,100) and walking cumulative weights in variant order. The same
// visitor always lands in the same bucket for the lifetime of the test.
func pickVariant(test *models.QRABTest, qrID uint, visitorKey string) *models.QRABVariant {
	if test == nil || len(test.Variants) == 0 {
		return nil
	}
	sum := 0
	for _, v := range test.Variants {
		if v.Weight <= 0 {
			return nil
		}
		sum += v.Weight
	}
	if sum != 100 {
		return nil
	}

	bucket := visitorBucket(qrID, visitorKey)
	cumulative := 0
	for i := range test.Variants {
		cumulative += test.Variants[i].Weight
		if bucket < cumulative {
			return &test.Variants[i]
		}
	}
	return &test.Variants[len(test.Variants)-1]
}

// visitorBucket maps (qrID, visitorKey) onto [0,100).
func visitorBucket(qrID uint, visitorKey string) int {
	digest := sha1.Sum([]byte(fmt.Sprintf("%d:%s", qrID, visitorKey)))
	return int(binary.BigEndian.Uint64(digest[:8]) % 100)
}

// DeriveVisitorKey builds a stable pseudonymous key for visitors that
// did not present one, from request attributes.
func DeriveVisitorKey(ip, userAgent string) string {
	digest := sha1.Sum([]byte(ip + "|" + userAgent))
	return fmt.Sprintf("%x", digest[:12])
}
