package service

import (
	"context"
	"errors"
	"strings"

	"github.com/chestno/chestno-api/internal/constants"
	"github.com/chestno/chestno-api/internal/logger"
	"github.com/chestno/chestno-api/internal/queue"
	"github.com/chestno/chestno-api/internal/repository"
)

// NotificationService fans one event out to its recipients over email
// and Telegram. Delivery is best-effort per channel: a dead channel is
// logged and the rest still go out.
type NotificationService struct {
	userRepo repository.UserRepository
	orgRepo  repository.OrganizationRepository
	email    *EmailService
	telegram *TelegramService
}

// NewNotificationService creates the notification service.
func NewNotificationService(
	userRepo repository.UserRepository,
	orgRepo repository.OrganizationRepository,
	email *EmailService,
	telegram *TelegramService,
) *NotificationService {
	return &NotificationService{
		userRepo: userRepo,
		orgRepo:  orgRepo,
		email:    email,
		telegram: telegram,
	}
}

// Deliver resolves the event's recipients and sends on every channel
// they have. Org-facing events go to the organization's contacts,
// user-facing events to the account's.
func (s *NotificationService) Deliver(ctx context.Context, payload queue.NotifyEventPayload) error {
	switch payload.Event {
	case constants.NotifyEventAnomalyAlert:
		return s.deliverToOrg(ctx, payload)
	default:
		return s.deliverToUser(ctx, payload)
	}
}

func (s *NotificationService) deliverToUser(ctx context.Context, payload queue.NotifyEventPayload) error {
	if payload.UserID == 0 {
		return nil
	}
	user, err := s.userRepo.GetByID(payload.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		logger.Warnw("notify_recipient_missing", "event", payload.Event, "user_id", payload.UserID)
		return nil
	}
	s.sendEmail(payload, user.Email)
	s.sendTelegram(ctx, payload, user.TelegramChat)
	return nil
}

func (s *NotificationService) deliverToOrg(ctx context.Context, payload queue.NotifyEventPayload) error {
	if payload.OrganizationID == 0 {
		return nil
	}
	org, err := s.orgRepo.GetByID(payload.OrganizationID)
	if err != nil {
		return err
	}
	if org == nil {
		logger.Warnw("notify_recipient_missing", "event", payload.Event, "org_id", payload.OrganizationID)
		return nil
	}
	s.sendEmail(payload, org.ContactEmail)
	s.sendTelegram(ctx, payload, org.TelegramChat)
	return nil
}

func (s *NotificationService) sendEmail(payload queue.NotifyEventPayload, to string) {
	if s.email == nil || strings.TrimSpace(to) == "" {
		return
	}
	if err := s.email.Send(to, payload.Subject, payload.Body); err != nil {
		if errors.Is(err, ErrEmailDisabled) || errors.Is(err, ErrEmailNotConfigured) {
			return
		}
		logger.Warnw("notify_email_failed", "event", payload.Event, "error", err)
	}
}

func (s *NotificationService) sendTelegram(ctx context.Context, payload queue.NotifyEventPayload, chatID string) {
	if s.telegram == nil || strings.TrimSpace(chatID) == "" {
		return
	}
	text := payload.Subject
	if payload.Body != "" {
		text += "\n\n" + payload.Body
	}
	if err := s.telegram.SendMessage(ctx, chatID, text); err != nil {
		if errors.Is(err, ErrTelegramDisabled) {
			return
		}
		logger.Warnw("notify_telegram_failed", "event", payload.Event, "error", err)
	}
}
