package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/corepay/usdtgate/internal/adapter/config"
	"go.uber.org/zap"
)

// TelegramBot pushes operator notifications through the Telegram bot
// API. With no token or chat configured it degrades to a no-op.
type TelegramBot struct {
	logger     *zap.Logger
	token      string
	chatID     string
	httpClient *http.Client
}

func NewTelegramBot(cfg *config.Telegram, log *zap.Logger) (*TelegramBot, error) {
	if cfg.BotToken == "" || cfg.ChatID == "" {
		log.Info("telegram notifications disabled")
	}
	return &TelegramBot{
		logger:     log,
		token:      cfg.BotToken,
		chatID:     cfg.ChatID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

func (b *TelegramBot) Notify(ctx context.Context, message string) error {
	if b.token == "" || b.chatID == "" {
		return nil
	}

	body, err := json.Marshal(sendMessageRequest{ChatID: b.chatID, Text: message})
	if err != nil {
		return fmt.Errorf("error building telegram message: %w", err)
	}

	requestStr := "https://api.telegram.org/bot" + b.token + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestStr, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("error on telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request error: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		b.logger.Error("unexpected status from telegram", zap.Int("status", resp.StatusCode))
		return fmt.Errorf("bad response %v from telegram", resp.StatusCode)
	}

	return nil
}
