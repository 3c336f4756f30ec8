package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const maxAckBytes = 4096

// Sender delivers signed payment callbacks to merchant notify URLs.
type Sender struct {
	logger     *zap.Logger
	httpClient *http.Client
}

func NewSender(log *zap.Logger) (*Sender, error) {
	return &Sender{
		logger:     log,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (s *Sender) Post(ctx context.Context, url string, payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("error building callback body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("error on %s : %w", url, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("callback request error %s : %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	ack, err := io.ReadAll(io.LimitReader(resp.Body, maxAckBytes))
	if err != nil {
		return "", fmt.Errorf("error reading callback response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		s.logger.Error("unexpected status from callback endpoint",
			zap.String("url", url), zap.Int("status", resp.StatusCode))
		return string(ack), fmt.Errorf("bad response %v for callback %s", resp.StatusCode, url)
	}

	return string(ack), nil
}
