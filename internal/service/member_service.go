package service

import (
	"fmt"
	"strings"

	"github.com/chestno/chestno-api/internal/constants"
	"github.com/chestno/chestno-api/internal/models"
	"github.com/chestno/chestno-api/internal/repository"
)

// MemberService manages organization staff and gates org-scoped access.
type MemberService struct {
	memberRepo repository.MemberRepository
	userRepo   repository.UserRepository
}

// NewMemberService creates the membership service.
func NewMemberService(memberRepo repository.MemberRepository, userRepo repository.UserRepository) *MemberService {
	return &MemberService{memberRepo: memberRepo, userRepo: userRepo}
}

// RequireRole checks that the user holds at least minRole in the
// organization. Non-members get ErrForbidden, same as under-privileged
// members, so membership itself is not probeable.
func (s *MemberService) RequireRole(orgID, userID uint, minRole string) (*models.OrganizationMember, error) {
	member, err := s.memberRepo.Get(orgID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrForbidden
	}
	if constants.OrgRoleRank[member.Role] < constants.OrgRoleRank[minRole] {
		return nil, ErrForbidden
	}
	return member, nil
}

// MemberView is a membership row with the user's public identity.
type MemberView struct {
	UserID      uint   `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// ListMembers returns an organization's staff.
func (s *MemberService) ListMembers(orgID uint) ([]MemberView, error) {
	members, err := s.memberRepo.ListByOrg(orgID)
	if err != nil {
		return nil, err
	}
	views := make([]MemberView, 0, len(members))
	for _, m := range members {
		view := MemberView{UserID: m.UserID, Role: m.Role}
		if user, err := s.userRepo.GetByID(m.UserID); err == nil && user != nil {
			view.Email = user.Email
			view.DisplayName = user.DisplayName
		}
		views = append(views, view)
	}
	return views, nil
}

// ListUserOrgs returns the memberships of one user.
func (s *MemberService) ListUserOrgs(userID uint) ([]models.OrganizationMember, error) {
	return s.memberRepo.ListByUser(userID)
}

// Invite adds a registered user to the organization by email.
func (s *MemberService) Invite(orgID uint, email, role string) (*models.OrganizationMember, error) {
	if !isValidOrgRole(role) {
		return nil, fmt.Errorf("%w: role", ErrValidation)
	}
	user, err := s.userRepo.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: no account with that email", ErrNotFound)
	}
	existing, err := s.memberRepo.Get(orgID, user.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: already a member", ErrConflict)
	}
	member := &models.OrganizationMember{
		OrganizationID: orgID,
		UserID:         user.ID,
		Role:           role,
	}
	if err := s.memberRepo.Create(member); err != nil {
		return nil, err
	}
	return member, nil
}

// ChangeRole updates a member's role. The last owner cannot be demoted.
func (s *MemberService) ChangeRole(orgID, userID uint, role string) error {
	if !isValidOrgRole(role) {
		return fmt.Errorf("%w: role", ErrValidation)
	}
	member, err := s.memberRepo.Get(orgID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrNotFound
	}
	if member.Role == constants.OrgRoleOwner && role != constants.OrgRoleOwner {
		if err := s.ensureAnotherOwner(orgID); err != nil {
			return err
		}
	}
	return s.memberRepo.UpdateRole(orgID, userID, role)
}

// Remove drops a member. The last owner cannot leave.
func (s *MemberService) Remove(orgID, userID uint) error {
	member, err := s.memberRepo.Get(orgID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrNotFound
	}
	if member.Role == constants.OrgRoleOwner {
		if err := s.ensureAnotherOwner(orgID); err != nil {
			return err
		}
	}
	return s.memberRepo.Delete(orgID, userID)
}

func (s *MemberService) ensureAnotherOwner(orgID uint) error {
	owners, err := s.memberRepo.CountOwners(orgID)
	if err != nil {
		return err
	}
	if owners <= 1 {
		return fmt.Errorf("%w: an organization needs at least one owner", ErrValidation)
	}
	return nil
}

func isValidOrgRole(role string) bool {
	_, ok := constants.OrgRoleRank[role]
	return ok
}
