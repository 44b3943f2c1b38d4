package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/RobinNagpal/defi-alerts/internal/domain"
	"go.uber.org/zap"
)

// WebhookSink POSTs the rendered message as JSON to the channel's target URL.
type WebhookSink struct {
	client *http.Client
	logger *zap.Logger
}

func NewWebhookSink(timeout time.Duration, logger *zap.Logger) *WebhookSink {
	return &WebhookSink{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (s *WebhookSink) Kind() domain.ChannelKind { return domain.ChannelWebhook }

type webhookPayload struct {
	AlertID  uint   `json:"alert_id"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	Severity string `json:"severity"`
	SentAt   string `json:"sent_at"`
}

func (s *WebhookSink) Send(ctx context.Context, target string, msg domain.Message) error {
	payload, err := json.Marshal(webhookPayload{
		AlertID:  msg.AlertID,
		Subject:  msg.Subject,
		Body:     msg.Body,
		Severity: msg.Severity.String(),
		SentAt:   msg.SentAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := s.client.Do(request)
	if err != nil {
		s.logger.Warn("webhook delivery failed", zap.Uint("alert_id", msg.AlertID), zap.Error(err))
		return err
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("webhook error: status %d", response.StatusCode)
	}
	return nil
}
