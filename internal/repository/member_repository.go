package repository

import (
	"errors"

	"github.com/chestno/chestno-api/internal/constants"
	"github.com/chestno/chestno-api/internal/models"

	"gorm.io/gorm"
)

// MemberRepository is the organization membership data access interface.
type MemberRepository interface {
	Get(orgID, userID uint) (*models.OrganizationMember, error)
	ListByOrg(orgID uint) ([]models.OrganizationMember, error)
	ListByUser(userID uint) ([]models.OrganizationMember, error)
	Create(member *models.OrganizationMember) error
	UpdateRole(orgID, userID uint, role string) error
	Delete(orgID, userID uint) error
	CountOwners(orgID uint) (int64, error)
}

// GormMemberRepository is the GORM implementation.
type GormMemberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates the membership repository.
func NewMemberRepository(db *gorm.DB) *GormMemberRepository {
	return &GormMemberRepository{db: db}
}

// Get fetches one membership.
func (r *GormMemberRepository) Get(orgID, userID uint) (*models.OrganizationMember, error) {
	var member models.OrganizationMember
	err := r.db.Where("organization_id = ? AND user_id = ?", orgID, userID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

// ListByOrg lists the members of an organization.
func (r *GormMemberRepository) ListByOrg(orgID uint) ([]models.OrganizationMember, error) {
	var members []models.OrganizationMember
	err := r.db.Where("organization_id = ?", orgID).Order("created_at ASC").Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// ListByUser lists the organizations a user belongs to.
func (r *GormMemberRepository) ListByUser(userID uint) ([]models.OrganizationMember, error) {
	var members []models.OrganizationMember
	err := r.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// Create inserts a membership.
func (r *GormMemberRepository) Create(member *models.OrganizationMember) error {
	return r.db.Create(member).Error
}

// UpdateRole changes a member's role.
func (r *GormMemberRepository) UpdateRole(orgID, userID uint, role string) error {
	return r.db.Model(&models.OrganizationMember{}).
		Where("organization_id = ? AND user_id = ?", orgID, userID).
		Update("role", role).Error
}

// Delete removes a membership.
func (r *GormMemberRepository) Delete(orgID, userID uint) error {
	return r.db.Where("organization_id = ? AND user_id = ?", orgID, userID).
		Delete(&models.OrganizationMember{}).Error
}

// CountOwners counts owner-role members of an organization.
func (r *GormMemberRepository) CountOwners(orgID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.OrganizationMember{}).
		Where("organization_id = ? AND role = ?", orgID, constants.OrgRoleOwner).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
