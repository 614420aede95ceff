package service

import (
	"fmt"
	"strings"

	"github.com/chestno/chestno-api/internal/constants"
	"github.com/chestno/chestno-api/internal/models"
	"github.com/chestno/chestno-api/internal/repository"
)

// OrgService manages producer organizations.
type OrgService struct {
	orgRepo    repository.OrganizationRepository
	memberRepo repository.MemberRepository
	followRepo repository.FollowRepository
}

// NewOrgService creates the organization service.
func NewOrgService(
	orgRepo repository.OrganizationRepository,
	memberRepo repository.MemberRepository,
	followRepo repository.FollowRepository,
) *OrgService {
	return &OrgService{
		orgRepo:    orgRepo,
		memberRepo: memberRepo,
		followRepo: followRepo,
	}
}

// List pages through organizations.
func (s *OrgService) List(filter repository.OrganizationListFilter) ([]models.Organization, int64, error) {
	return s.orgRepo.List(filter)
}

// PublicProfile is an organization as consumers see it.
type PublicProfile struct {
	Organization *models.Organization `json:"organization"`
	Followers    int64                `json:"followers"`
}

// GetPublicBySlug returns the consumer-facing profile.
func (s *OrgService) GetPublicBySlug(slug string) (*PublicProfile, error) {
	org, err := s.orgRepo.GetBySlug(strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, ErrNotFound
	}
	followers, err := s.followRepo.CountByOrg(org.ID)
	if err != nil {
		return nil, err
	}
	return &PublicProfile{Organization: org, Followers: followers}, nil
}

// GetByID fetches an organization.
func (s *OrgService) GetByID(id uint) (*models.Organization, error) {
	org, err := s.orgRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, ErrNotFound
	}
	return org, nil
}

// CreateOrgInput describes a new organization.
type CreateOrgInput struct {
	Slug         string
	Name         string
	Description  string
	Website      string
	Country      string
	ContactEmail string
}

// Create registers an organization; the creating user becomes its owner.
func (s *OrgService) Create(ownerUserID uint, input CreateOrgInput) (*models.Organization, error) {
	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}
	if !slugPattern.MatchString(slug) {
		return nil, fmt.Errorf("%w: slug format", ErrValidation)
	}
	count, err := s.orgRepo.CountBySlug(slug, 0)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: slug taken", ErrConflict)
	}

	org := &models.Organization{
		Slug:         slug,
		Name:         name,
		Description:  strings.TrimSpace(input.Description),
		Website:      strings.TrimSpace(input.Website),
		Country:      strings.ToUpper(strings.TrimSpace(input.Country)),
		ContactEmail: strings.TrimSpace(input.ContactEmail),
		StatusLevel:  constants.StatusLevelC,
	}
	if err := s.orgRepo.Create(org); err != nil {
		return nil, err
	}
	member := &models.OrganizationMember{
		OrganizationID: org.ID,
		UserID:         ownerUserID,
		Role:           constants.OrgRoleOwner,
	}
	if err := s.memberRepo.Create(member); err != nil {
		return nil, err
	}
	return org, nil
}

// UpdateOrgInput carries optional profile edits.
type UpdateOrgInput struct {
	Name         *string
	Description  *string
	Website      *string
	Country      *string
	ContactEmail *string
	TelegramChat *string
}

// Update edits the organization profile. The slug is immutable: it is
// printed on packaging next to QR codes.
func (s *OrgService) Update(id uint, input UpdateOrgInput) (*models.Organization, error) {
	org, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		if name := strings.TrimSpace(*input.Name); name != "" {
			org.Name = name
		}
	}
	if input.Description != nil {
		org.Description = strings.TrimSpace(*input.Description)
	}
	if input.Website != nil {
		org.Website = strings.TrimSpace(*input.Website)
	}
	if input.Country != nil {
		org.Country = strings.ToUpper(strings.TrimSpace(*input.Country))
	}
	if input.ContactEmail != nil {
		org.ContactEmail = strings.TrimSpace(*input.ContactEmail)
	}
	if input.TelegramChat != nil {
		org.TelegramChat = strings.TrimSpace(*input.TelegramChat)
	}
	if err := s.orgRepo.Update(org); err != nil {
		return nil, err
	}
	return org, nil
}

// SetVerified flips the admin verification badge.
func (s *OrgService) SetVerified(id uint, verified bool) error {
	if _, err := s.GetByID(id); err != nil {
		return err
	}
	return s.orgRepo.SetVerified(id, verified)
}

// Delete retires an organization.
func (s *OrgService) Delete(id uint) error {
	if _, err := s.GetByID(id); err != nil {
		return err
	}
	return s.orgRepo.Delete(id)
}
