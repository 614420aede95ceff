package service

import (
	"fmt"
	"strings"

	"github.com/chestno/chestno-api/internal/constants"
	"github.com/chestno/chestno-api/internal/models"
	"github.com/chestno/chestno-api/internal/repository"
)

// UserService covers account profile edits and admin account management.
type UserService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
}

// NewUserService creates the user service.
func NewUserService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository) *UserService {
	return &UserService{userRepo: userRepo, sessionRepo: sessionRepo}
}

// List pages through accounts.
func (s *UserService) List(filter repository.UserListFilter) ([]models.User, int64, error) {
	return s.userRepo.List(filter)
}

// Get fetches one account.
func (s *UserService) Get(id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// UpdateProfileInput carries optional profile edits.
type UpdateProfileInput struct {
	DisplayName  *string
	Locale       *string
	TelegramChat *string
}

// UpdateProfile edits the user's own profile.
func (s *UserService) UpdateProfile(userID uint, input UpdateProfileInput) (*models.User, error) {
	user, err := s.Get(userID)
	if err != nil {
		return nil, err
	}
	if input.DisplayName != nil {
		if name := strings.TrimSpace(*input.DisplayName); name != "" {
			user.DisplayName = name
		}
	}
	if input.Locale != nil {
		locale := strings.ToLower(strings.TrimSpace(*input.Locale))
		if !isSupportedLocale(locale) {
			return nil, fmt.Errorf("%w: unsupported locale", ErrValidation)
		}
		user.Locale = locale
	}
	if input.TelegramChat != nil {
		user.TelegramChat = strings.TrimSpace(*input.TelegramChat)
	}
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetStatus enables or disables an account. Disabling kills the
// account's sessions so the lockout is immediate.
func (s *UserService) SetStatus(userID uint, status string) error {
	if status != constants.UserStatusActive && status != constants.UserStatusDisabled {
		return fmt.Errorf("%w: status", ErrValidation)
	}
	user, err := s.Get(userID)
	if err != nil {
		return err
	}
	if user.Status == status {
		return nil
	}
	if err := s.userRepo.UpdateStatus(userID, status); err != nil {
		return err
	}
	if status == constants.UserStatusDisabled {
		return s.sessionRepo.DeleteByUser(userID)
	}
	return nil
}
