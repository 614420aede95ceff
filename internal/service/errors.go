package service

import "errors"

// Sentinel errors shared across services. Handlers map these onto
// response codes; services wrap them with context via fmt.Errorf and %w.
var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("already exists")
	ErrForbidden          = errors.New("permission denied")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrWeakPassword       = errors.New("password too weak")
	ErrUserDisabled       = errors.New("account disabled")
	ErrSessionExpired     = errors.New("session expired")
	ErrQuotaExceeded      = errors.New("plan quota exceeded")

	ErrEmailDisabled      = errors.New("email sending disabled")
	ErrEmailNotConfigured = errors.New("email service not configured")
	ErrTelegramDisabled   = errors.New("telegram sending disabled")
	ErrCaptchaInvalid     = errors.New("captcha verification failed")
)
