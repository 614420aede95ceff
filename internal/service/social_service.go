package service

import (
	"fmt"

	"github.com/chestno/chestno-api/internal/models"
	"github.com/chestno/chestno-api/internal/repository"
)

// SocialService manages consumer follows of organizations.
type SocialService struct {
	followRepo repository.FollowRepository
	orgRepo    repository.OrganizationRepository
}

// NewSocialService creates the social service.
func NewSocialService(followRepo repository.FollowRepository, orgRepo repository.OrganizationRepository) *SocialService {
	return &SocialService{followRepo: followRepo, orgRepo: orgRepo}
}

// Follow subscribes the user to an organization.
func (s *SocialService) Follow(userID, orgID uint) error {
	org, err := s.orgRepo.GetByID(orgID)
	if err != nil {
		return err
	}
	if org == nil {
		return ErrNotFound
	}
	existing, err := s.followRepo.Get(userID, orgID)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: already following", ErrConflict)
	}
	return s.followRepo.Create(&models.Follow{UserID: userID, OrganizationID: orgID})
}

// Unfollow removes the subscription. Unfollowing an organization the
// user never followed is not an error.
func (s *SocialService) Unfollow(userID, orgID uint) error {
	return s.followRepo.Delete(userID, orgID)
}

// IsFollowing reports whether the user follows the organization.
func (s *SocialService) IsFollowing(userID, orgID uint) (bool, error) {
	follow, err := s.followRepo.Get(userID, orgID)
	if err != nil {
		return false, err
	}
	return follow != nil, nil
}

// ListFollowed pages through the organizations the user follows.
func (s *SocialService) ListFollowed(userID uint, page, pageSize int) ([]models.Organization, int64, error) {
	follows, total, err := s.followRepo.ListByUser(userID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	orgs := make([]models.Organization, 0, len(follows))
	for _, f := range follows {
		org, err := s.orgRepo.GetByID(f.OrganizationID)
		if err != nil {
			return nil, 0, err
		}
		if org != nil {
			orgs = append(orgs, *org)
		}
	}
	return orgs, total, nil
}

// FollowerCount returns how many users follow the organization.
func (s *SocialService) FollowerCount(orgID uint) (int64, error) {
	return s.followRepo.CountByOrg(orgID)
}
