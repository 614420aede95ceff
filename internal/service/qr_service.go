package service

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/chestno/chestno-api/internal/constants"
	"github.com/chestno/chestno-api/internal/models"
	"github.com/chestno/chestno-api/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,62}[a-z0-9]$`)

// QRService manages printed codes and the destinations behind them.
type QRService struct {
	qrRepo       repository.QRCodeRepository
	versionRepo  repository.QRVersionRepository
	campaignRepo repository.QRCampaignRepository
	abRepo       repository.QRABTestRepository
	productRepo  repository.ProductRepository
	subs         *SubscriptionService
}

// NewQRService creates the QR management service.
func NewQRService(
	qrRepo repository.QRCodeRepository,
	versionRepo repository.QRVersionRepository,
	campaignRepo repository.QRCampaignRepository,
	abRepo repository.QRABTestRepository,
	productRepo repository.ProductRepository,
	subs *SubscriptionService,
) *QRService {
	return &QRService{
		qrRepo:       qrRepo,
		versionRepo:  versionRepo,
		campaignRepo: campaignRepo,
		abRepo:       abRepo,
		productRepo:  productRepo,
		subs:         subs,
	}
}

// ListCodes pages through an organization's QR codes.
func (s *QRService) ListCodes(filter repository.QRCodeListFilter) ([]models.QRCode, int64, error) {
	return s.qrRepo.List(filter)
}

// GetCode fetches one code, scoped to the organization.
func (s *QRService) GetCode(orgID, id uint) (*models.QRCode, error) {
	return s.ownedCode(orgID, id)
}

// CreateCodeInput describes a new QR code.
type CreateCodeInput struct {
	OrganizationID uint
	ProductID      uint
	Slug           string
	Label          string
	TargetURL      string
}

// CreateCode registers a code with its first URL version, atomically.
// An omitted slug gets a generated one.
func (s *QRService) CreateCode(input CreateCodeInput) (*models.QRCode, error) {
	if err := validateTargetURL(input.TargetURL); err != nil {
		return nil, err
	}
	if s.subs != nil {
		if err := s.subs.CheckQRQuota(input.OrganizationID); err != nil {
			return nil, err
		}
	}
	if input.ProductID > 0 {
		product, err := s.productRepo.GetByID(input.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil || product.OrganizationID != input.OrganizationID {
			return nil, fmt.Errorf("%w: product", ErrNotFound)
		}
	}

	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	if slug == "" {
		slug = generateSlug()
	} else if !slugPattern.MatchString(slug) {
		return nil, fmt.Errorf("%w: slug format", ErrValidation)
	}
	count, err := s.qrRepo.CountBySlug(slug, 0)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: slug taken", ErrConflict)
	}

	code := &models.QRCode{
		OrganizationID: input.OrganizationID,
		ProductID:      input.ProductID,
		Slug:           slug,
		Label:          strings.TrimSpace(input.Label),
		IsActive:       true,
	}
	err = s.qrRepo.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(code).Error; err != nil {
			return err
		}
		return s.versionRepo.WithTx(tx).Create(&models.QRUrlVersion{
			QRCodeID:  code.ID,
			URL:       strings.TrimSpace(input.TargetURL),
			Comment:   "initial",
			IsCurrent: true,
		})
	})
	if err != nil {
		return nil, err
	}
	return code, nil
}

// UpdateCode edits the label or active flag.
func (s *QRService) UpdateCode(orgID, id uint, label *string, isActive *bool) (*models.QRCode, error) {
	code, err := s.ownedCode(orgID, id)
	if err != nil {
		return nil, err
	}
	if label != nil {
		code.Label = strings.TrimSpace(*label)
	}
	if isActive != nil {
		code.IsActive = *isActive
	}
	if err := s.qrRepo.Update(code); err != nil {
		return nil, err
	}
	return code, nil
}

// DeleteCode retires a code. Scan history is kept.
func (s *QRService) DeleteCode(orgID, id uint) error {
	code, err := s.ownedCode(orgID, id)
	if err != nil {
		return err
	}
	return s.qrRepo.Delete(code.ID)
}

// ListVersions returns a code's URL history, newest first.
func (s *QRService) ListVersions(orgID, qrID uint) ([]models.QRUrlVersion, error) {
	code, err := s.ownedCode(orgID, qrID)
	if err != nil {
		return nil, err
	}
	return s.versionRepo.ListByQR(code.ID)
}

// AddVersion appends a new destination and makes it current, atomically.
// The previous version stays in the history for rollback.
func (s *QRService) AddVersion(orgID, qrID uint, targetURL, comment string) (*models.QRUrlVersion, error) {
	code, err := s.ownedCode(orgID, qrID)
	if err != nil {
		return nil, err
	}
	if err := validateTargetURL(targetURL); err != nil {
		return nil, err
	}
	version := &models.QRUrlVersion{
		QRCodeID:  code.ID,
		URL:       strings.TrimSpace(targetURL),
		Comment:   strings.TrimSpace(comment),
		IsCurrent: true,
	}
	err = s.qrRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.versionRepo.WithTx(tx)
		if err := repo.UnsetCurrent(code.ID); err != nil {
			return err
		}
		return repo.Create(version)
	})
	if err != nil {
		return nil, err
	}
	return version, nil
}

// RollbackVersion makes an older version current again, atomically.
func (s *QRService) RollbackVersion(orgID, qrID, versionID uint) (*models.QRUrlVersion, error) {
	code, err := s.ownedCode(orgID, qrID)
	if err != nil {
		return nil, err
	}
	version, err := s.versionRepo.GetByID(versionID)
	if err != nil {
		return nil, err
	}
	if version == nil || version.QRCodeID != code.ID {
		return nil, fmt.Errorf("%w: version", ErrNotFound)
	}
	err = s.qrRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.versionRepo.WithTx(tx)
		if err := repo.UnsetCurrent(code.ID); err != nil {
			return err
		}
		return repo.SetCurrent(code.ID, version.ID)
	})
	if err != nil {
		return nil, err
	}
	version.IsCurrent = true
	return version, nil
}

// ListCampaigns returns a code's campaigns, newest first.
func (s *QRService) ListCampaigns(orgID, qrID uint) ([]models.QRCampaign, error) {
	code, err := s.ownedCode(orgID, qrID)
	if err != nil {
		return nil, err
	}
	return s.campaignRepo.ListByQR(code.ID)
}

// CreateCampaignInput describes a scheduled destination override.
type CreateCampaignInput struct {
	Name      string
	TargetURL string
	StartsAt  time.Time
	EndsAt    time.Time
}

// CreateCampaign schedules an override window. Overlapping windows are
// allowed; the newest one wins at resolve time.
func (s *QRService) CreateCampaign(orgID, qrID uint, input CreateCampaignInput) (*models.QRCampaign, error) {
	code, err := s.ownedCode(orgID, qrID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}
	if err := validateTargetURL(input.TargetURL); err != nil {
		return nil, err
	}
	if !input.StartsAt.Before(input.EndsAt) {
		return nil, fmt.Errorf("%w: window must end after it starts", ErrValidation)
	}
	campaign := &models.QRCampaign{
		QRCodeID: code.ID,
		Name:     strings.TrimSpace(input.Name),
		URL:      strings.TrimSpace(input.TargetURL),
		StartsAt: input.StartsAt,
		EndsAt:   input.EndsAt,
		Status:   constants.CampaignStatusActive,
	}
	if err := s.campaignRepo.Create(campaign); err != nil {
		return nil, err
	}
	return campaign, nil
}

// SetCampaignStatus enables or disables a campaign without deleting it.
func (s *QRService) SetCampaignStatus(orgID, qrID, campaignID uint, status string) (*models.QRCampaign, error) {
	code, err := s.ownedCode(orgID, qrID)
	if err != nil {
		return nil, err
	}
	if status != constants.CampaignStatusActive && status != constants.CampaignStatusDisabled {
		return nil, fmt.Errorf("%w: status", ErrValidation)
	}
	campaign, err := s.campaignRepo.GetByID(campaignID)
	if err != nil {
		return nil, err
	}
	if campaign == nil || campaign.QRCodeID != code.ID {
		return nil, fmt.Errorf("%w: campaign", ErrNotFound)
	}
	campaign.Status = status
	if err := s.campaignRepo.Update(campaign); err != nil {
		return nil, err
	}
	return campaign, nil
}

// DeleteCampaign removes a campaign.
func (s *QRService) DeleteCampaign(orgID, qrID, campaignID uint) error {
	code, err := s.ownedCode(orgID, qrID)
	if err != nil {
		return err
	}
	campaign, err := s.campaignRepo.GetByID(campaignID)
	if err != nil {
		return err
	}
	if campaign == nil || campaign.QRCodeID != code.ID {
		return fmt.Errorf("%w: campaign", ErrNotFound)
	}
	return s.campaignRepo.Delete(campaign.ID)
}

// ListABTests returns a code's experiments with variants.
func (s *QRService) ListABTests(orgID, qrID uint) ([]models.QRABTest, error) {
	code, err := s.ownedCode(orgID, qrID)
	if err != nil {
		return nil, err
	}
	return s.abRepo.ListByQR(code.ID)
}

// ABVariantInput is one experiment arm.
type ABVariantInput struct {
	Name      string
	TargetURL string
	Weight    int
}

// CreateABTest creates a draft experiment. Weights are whole percents
// and must sum to exactly 100 across at least two variants.
func (s *QRService) CreateABTest(orgID, qrID uint, name string, variants []ABVariantInput) (*models.QRABTest, error) {
	code, err := s.ownedCode(orgID, qrID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}
	rows, err := buildVariants(variants)
	if err != nil {
		return nil, err
	}
	test := &models.QRABTest{
		QRCodeID: code.ID,
		Name:     strings.TrimSpace(name),
		Status:   constants.ABTestStatusDraft,
		Variants: rows,
	}
	if err := s.abRepo.Create(test); err != nil {
		return nil, err
	}
	return test, nil
}

// ReplaceABVariants swaps the variant set of a draft test. Running
// tests are immutable; conclude and recreate instead.
func (s *QRService) ReplaceABVariants(orgID, qrID, testID uint, variants []ABVariantInput) (*models.QRABTest, error) {
	test, err := s.ownedTest(orgID, qrID, testID)
	if err != nil {
		return nil, err
	}
	if test.Status != constants.ABTestStatusDraft {
		return nil, fmt.Errorf("%w: only draft tests can change variants", ErrValidation)
	}
	rows, err := buildVariants(variants)
	if err != nil {
		return nil, err
	}
	if err := s.abRepo.ReplaceVariants(test.ID, rows); err != nil {
		return nil, err
	}
	return s.abRepo.GetByID(test.ID)
}

// StartABTest moves a draft test to running. Only one test per code may
// run at a time.
func (s *QRService) StartABTest(orgID, qrID, testID uint) (*models.QRABTest, error) {
	test, err := s.ownedTest(orgID, qrID, testID)
	if err != nil {
		return nil, err
	}
	if test.Status != constants.ABTestStatusDraft {
		return nil, fmt.Errorf("%w: test is not a draft", ErrValidation)
	}
	if _, err := buildVariants(variantInputs(test.Variants)); err != nil {
		return nil, err
	}
	running, err := s.abRepo.GetRunning(test.QRCodeID)
	if err != nil {
		return nil, err
	}
	if running != nil {
		return nil, fmt.Errorf("%w: another test is running", ErrConflict)
	}
	if err := s.abRepo.UpdateStatus(test.ID, constants.ABTestStatusRunning); err != nil {
		return nil, err
	}
	test.Status = constants.ABTestStatusRunning
	return test, nil
}

// ConcludeABTest stops a running test. Counters stay for analysis.
func (s *QRService) ConcludeABTest(orgID, qrID, testID uint) (*models.QRABTest, error) {
	test, err := s.ownedTest(orgID, qrID, testID)
	if err != nil {
		return nil, err
	}
	if test.Status != constants.ABTestStatusRunning {
		return nil, fmt.Errorf("%w: test is not running", ErrValidation)
	}
	if err := s.abRepo.UpdateStatus(test.ID, constants.ABTestStatusConcluded); err != nil {
		return nil, err
	}
	test.Status = constants.ABTestStatusConcluded
	return test, nil
}

// DeleteABTest removes a draft or concluded test.
func (s *QRService) DeleteABTest(orgID, qrID, testID uint) error {
	test, err := s.ownedTest(orgID, qrID, testID)
	if err != nil {
		return err
	}
	if test.Status == constants.ABTestStatusRunning {
		return fmt.Errorf("%w: conclude the test first", ErrValidation)
	}
	return s.abRepo.Delete(test.ID)
}

func (s *QRService) ownedCode(orgID, id uint) (*models.QRCode, error) {
	code, err := s.qrRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if code == nil || code.OrganizationID != orgID {
		return nil, ErrNotFound
	}
	return code, nil
}

func (s *QRService) ownedTest(orgID, qrID, testID uint) (*models.QRABTest, error) {
	code, err := s.ownedCode(orgID, qrID)
	if err != nil {
		return nil, err
	}
	test, err := s.abRepo.GetByID(testID)
	if err != nil {
		return nil, err
	}
	if test == nil || test.QRCodeID != code.ID {
		return nil, fmt.Errorf("%w: test", ErrNotFound)
	}
	return test, nil
}

func buildVariants(inputs []ABVariantInput) ([]models.QRABVariant, error) {
	if len(inputs) < 2 {
		return nil, fmt.Errorf("%w: at least two variants required", ErrValidation)
	}
	sum := 0
	rows := make([]models.QRABVariant, 0, len(inputs))
	for i, input := range inputs {
		if strings.TrimSpace(input.Name) == "" {
			return nil, fmt.Errorf("%w: variant name required", ErrValidation)
		}
		if err := validateTargetURL(input.TargetURL); err != nil {
			return nil, err
		}
		if input.Weight <= 0 {
			return nil, fmt.Errorf("%w: variant weight must be positive", ErrValidation)
		}
		sum += input.Weight
		rows = append(rows, models.QRABVariant{
			Name:     strings.TrimSpace(input.Name),
			URL:      strings.TrimSpace(input.TargetURL),
			Weight:   input.Weight,
			Position: i,
		})
	}
	if sum != 100 {
		return nil, fmt.Errorf("%w: variant weights must sum to 100, got %d", ErrValidation, sum)
	}
	return rows, nil
}

func variantInputs(variants []models.QRABVariant) []ABVariantInput {
	inputs := make([]ABVariantInput, 0, len(variants))
	for _, v := range variants {
		inputs = append(inputs, ABVariantInput{Name: v.Name, TargetURL: v.URL, Weight: v.Weight})
	}
	return inputs
}

func validateTargetURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("%w: url required", ErrValidation)
	}
	parsed, err := url.Parse(raw)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("%w: url must be absolute http(s)", ErrValidation)
	}
	return nil
}

func generateSlug() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}
