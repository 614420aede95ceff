package repository

import (
	"errors"

	"github.com/chestno/chestno-api/internal/constants"
	"github.com/chestno/chestno-api/internal/models"

	"gorm.io/gorm"
)

// QRABTestRepository is the A/B test data access interface.
type QRABTestRepository interface {
	ListByQR(qrID uint) ([]models.QRABTest, error)
	GetByID(id uint) (*models.QRABTest, error)
	GetRunning(qrID uint) (*models.QRABTest, error)
	Create(test *models.QRABTest) error
	Update(test *models.QRABTest) error
	UpdateStatus(id uint, status string) error
	Delete(id uint) error
	ReplaceVariants(testID uint, variants []models.QRABVariant) error
	IncrementVariantHit(variantID uint) error
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) QRABTestRepository
}

// GormQRABTestRepository is the GORM implementation.
type GormQRABTestRepository struct {
	db *gorm.DB
}

// NewQRABTestRepository creates the A/B test repository.
func NewQRABTestRepository(db *gorm.DB) *GormQRABTestRepository {
	return &GormQRABTestRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormQRABTestRepository) WithTx(tx *gorm.DB) QRABTestRepository {
	if tx == nil {
		return r
	}
	return &GormQRABTestRepository{db: tx}
}

// Transaction runs fn inside one transaction.
func (r *GormQRABTestRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// ListByQR returns the tests of a QR code with their variants.
func (r *GormQRABTestRepository) ListByQR(qrID uint) ([]models.QRABTest, error) {
	var tests []models.QRABTest
	err := r.db.Preload("Variants", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC, id ASC")
	}).Where("qr_code_id = ?", qrID).Order("created_at DESC").Find(&tests).Error
	if err != nil {
		return nil, err
	}
	return tests, nil
}

// GetByID fetches a test with variants.
func (r *GormQRABTestRepository) GetByID(id uint) (*models.QRABTest, error) {
	var test models.QRABTest
	err := r.db.Preload("Variants", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC, id ASC")
	}).First(&test, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &test, nil
}

// GetRunning fetches the running test of a QR code, if any.
func (r *GormQRABTestRepository) GetRunning(qrID uint) (*models.QRABTest, error) {
	var test models.QRABTest
	err := r.db.Preload("Variants", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC, id ASC")
	}).Where("qr_code_id = ? AND status = ?", qrID, constants.ABTestStatusRunning).
		Order("created_at DESC").First(&test).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &test, nil
}

// Create inserts a test with its variants.
func (r *GormQRABTestRepository) Create(test *models.QRABTest) error {
	return r.db.Create(test).Error
}

// Update saves test changes without touching variants.
func (r *GormQRABTestRepository) Update(test *models.QRABTest) error {
	return r.db.Omit("Variants").Save(test).Error
}

// UpdateStatus moves a test through its lifecycle.
func (r *GormQRABTestRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.QRABTest{}).Where("id = ?", id).
		Update("status", status).Error
}

// Delete removes a test and its variants.
func (r *GormQRABTestRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ab_test_id = ?", id).Delete(&models.QRABVariant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.QRABTest{}, id).Error
	})
}

// ReplaceVariants swaps the variant set of a draft test.
func (r *GormQRABTestRepository) ReplaceVariants(testID uint, variants []models.QRABVariant) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ab_test_id = ?", testID).Delete(&models.QRABVariant{}).Error; err != nil {
			return err
		}
		for i := range variants {
			variants[i].ID = 0
			variants[i].ABTestID = testID
			variants[i].Position = i
		}
		if len(variants) == 0 {
			return nil
		}
		return tx.Create(&variants).Error
	})
}

// IncrementVariantHit bumps the resolve counter of a variant.
func (r *GormQRABTestRepository) IncrementVariantHit(variantID uint) error {
	return r.db.Model(&models.QRABVariant{}).Where("id = ?", variantID).
		UpdateColumn("hit_count", gorm.Expr("hit_count + 1")).Error
}
