package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/chestno/chestno-api/internal/config"
	"github.com/chestno/chestno-api/internal/constants"
	"github.com/chestno/chestno-api/internal/models"
	"github.com/chestno/chestno-api/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// UserAuthService handles consumer registration and cookie sessions.
type UserAuthService struct {
	cfg         *config.Config
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
}

// NewUserAuthService creates the consumer auth service.
func NewUserAuthService(cfg *config.Config, userRepo repository.UserRepository, sessionRepo repository.SessionRepository) *UserAuthService {
	return &UserAuthService{
		cfg:         cfg,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
	}
}

// RegisterInput is the consumer signup payload.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
	Locale      string
}

// Register creates a consumer account.
func (s *UserAuthService) Register(input RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, input.Password); err != nil {
		return nil, err
	}
	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = strings.SplitN(email, "@", 2)[0]
	}

	existing, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: email taken", ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	locale := strings.ToLower(strings.TrimSpace(input.Locale))
	if !isSupportedLocale(locale) {
		locale = "ru"
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		Locale:       locale,
		Status:       constants.UserStatusActive,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and opens a session.
func (s *UserAuthService) Login(email, password string) (*models.User, *models.Session, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if user.Status != constants.UserStatusActive {
		return nil, nil, ErrUserDisabled
	}

	token, err := newSessionToken()
	if err != nil {
		return nil, nil, err
	}
	ttl := time.Duration(s.cfg.Session.TTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 720 * time.Hour
	}
	session := &models.Session{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

// Logout discards a session token.
func (s *UserAuthService) Logout(token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	return s.sessionRepo.DeleteByToken(token)
}

// ResolveSession maps a cookie token to its user.
func (s *UserAuthService) ResolveSession(token string) (*models.User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrSessionExpired
	}
	session, err := s.sessionRepo.GetByToken(token)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionExpired
	}
	if time.Now().After(session.ExpiresAt) {
		_ = s.sessionRepo.DeleteByToken(token)
		return nil, ErrSessionExpired
	}
	user, err := s.userRepo.GetByID(session.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrSessionExpired
	}
	if user.Status != constants.UserStatusActive {
		return nil, ErrUserDisabled
	}
	return user, nil
}

// PurgeExpiredSessions removes sessions past their expiry.
func (s *UserAuthService) PurgeExpiredSessions() (int64, error) {
	return s.sessionRepo.DeleteExpired(time.Now())
}

func newSessionToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

func isSupportedLocale(locale string) bool {
	for _, supported := range constants.SupportedLocales {
		if locale == supported {
			return true
		}
	}
	return false
}
