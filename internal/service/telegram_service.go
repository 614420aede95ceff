package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chestno/chestno-api/internal/config"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramService pushes notifications through the Telegram Bot API.
type TelegramService struct {
	cfg    *config.TelegramConfig
	client *http.Client
}

// NewTelegramService creates the Telegram service.
func NewTelegramService(cfg *config.TelegramConfig) *TelegramService {
	timeout := 5 * time.Second
	if cfg != nil && cfg.TimeoutMS > 0 {
		timeout = time.Duration(cfg.TimeoutMS) * time.Millisecond
	}
	return &TelegramService{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether messages can actually go out.
func (s *TelegramService) Enabled() bool {
	return s != nil && s.cfg != nil && s.cfg.Enabled && strings.TrimSpace(s.cfg.BotToken) != ""
}

// SendMessage delivers one text message to a chat.
func (s *TelegramService) SendMessage(ctx context.Context, chatID, text string) error {
	if !s.Enabled() {
		return ErrTelegramDisabled
	}
	chatID = strings.TrimSpace(chatID)
	if chatID == "" {
		return fmt.Errorf("%w: chat id required", ErrValidation)
	}

	base := telegramAPIBase
	if s.cfg.APIBase != "" {
		base = strings.TrimRight(s.cfg.APIBase, "/")
	}
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", base, s.cfg.BotToken)

	form := url.Values{}
	form.Set("chat_id", chatID)
	form.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("telegram response: %w", err)
	}
	if !result.OK {
		return fmt.Errorf("telegram send failed: %s", result.Description)
	}
	return nil
}
