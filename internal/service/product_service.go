package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/chestno/chestno-api/internal/models"
	"github.com/chestno/chestno-api/internal/repository"
)

// ProductService manages a producer's catalog and provenance journals.
type ProductService struct {
	productRepo repository.ProductRepository
	subs        *SubscriptionService
}

// NewProductService creates the product service.
func NewProductService(productRepo repository.ProductRepository, subs *SubscriptionService) *ProductService {
	return &ProductService{productRepo: productRepo, subs: subs}
}

// List pages through products.
func (s *ProductService) List(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	return s.productRepo.List(filter)
}

// GetPublicBySlug returns an active product for consumers.
func (s *ProductService) GetPublicBySlug(slug string) (*models.Product, error) {
	product, err := s.productRepo.GetBySlug(strings.ToLower(strings.TrimSpace(slug)), true)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	return product, nil
}

// Get fetches one product, scoped to the organization.
func (s *ProductService) Get(orgID, id uint) (*models.Product, error) {
	return s.ownedProduct(orgID, id)
}

// CreateProductInput describes a new product.
type CreateProductInput struct {
	Slug        string
	Name        string
	Description string
	Images      []string
	Attributes  map[string]interface{}
}

// Create adds a product, subject to the plan quota.
func (s *ProductService) Create(orgID uint, input CreateProductInput) (*models.Product, error) {
	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}
	if !slugPattern.MatchString(slug) {
		return nil, fmt.Errorf("%w: slug format", ErrValidation)
	}
	if s.subs != nil {
		if err := s.subs.CheckProductQuota(orgID); err != nil {
			return nil, err
		}
	}
	count, err := s.productRepo.CountBySlug(slug, 0)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: slug taken", ErrConflict)
	}

	product := &models.Product{
		OrganizationID: orgID,
		Slug:           slug,
		Name:           name,
		Description:    strings.TrimSpace(input.Description),
		Images:         input.Images,
		Attributes:     input.Attributes,
		IsActive:       true,
	}
	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProductInput carries optional product edits.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Images      *[]string
	Attributes  *map[string]interface{}
	IsActive    *bool
}

// Update edits a product. The slug is immutable once printed.
func (s *ProductService) Update(orgID, id uint, input UpdateProductInput) (*models.Product, error) {
	product, err := s.ownedProduct(orgID, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		if name := strings.TrimSpace(*input.Name); name != "" {
			product.Name = name
		}
	}
	if input.Description != nil {
		product.Description = strings.TrimSpace(*input.Description)
	}
	if input.Images != nil {
		product.Images = *input.Images
	}
	if input.Attributes != nil {
		product.Attributes = *input.Attributes
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Delete retires a product.
func (s *ProductService) Delete(orgID, id uint) error {
	product, err := s.ownedProduct(orgID, id)
	if err != nil {
		return err
	}
	return s.productRepo.Delete(product.ID)
}

// Journey returns a product's provenance steps in event order.
func (s *ProductService) Journey(productID uint) ([]models.JourneyStep, error) {
	return s.productRepo.ListJourney(productID)
}

// AppendJourneyInput is one provenance event.
type AppendJourneyInput struct {
	Title      string
	Details    string
	Location   string
	OccurredAt time.Time
}

// AppendJourneyStep records a provenance event. The journal is
// append-only; corrections are new entries.
func (s *ProductService) AppendJourneyStep(orgID, productID uint, input AppendJourneyInput) (*models.JourneyStep, error) {
	product, err := s.ownedProduct(orgID, productID)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title required", ErrValidation)
	}
	occurredAt := input.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	step := &models.JourneyStep{
		ProductID:  product.ID,
		Title:      title,
		Details:    strings.TrimSpace(input.Details),
		Location:   strings.TrimSpace(input.Location),
		OccurredAt: occurredAt,
	}
	if err := s.productRepo.AppendJourneyStep(step); err != nil {
		return nil, err
	}
	return step, nil
}

func (s *ProductService) ownedProduct(orgID, id uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil || product.OrganizationID != orgID {
		return nil, ErrNotFound
	}
	return product, nil
}
