package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/signoffhq/signoff/internal/config"
	"go.uber.org/zap"
)

// WebhookClient posts JSON events to the agency's configured endpoint.
type WebhookClient struct {
	URL        string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

func NewWebhookClient(cfg *config.Config, log *zap.Logger) *WebhookClient {
	timeout := time.Duration(cfg.Webhook.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookClient{
		URL: cfg.Webhook.URL,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		Logger: log,
	}
}

// Post sends payload as JSON. Non-2xx responses are errors.
func (c *WebhookClient) Post(ctx context.Context, event string, payload interface{}) error {
	body, err := sonic.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signoff-Event", event)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Logger.Sugar().Warnw("webhook request failed", "url", c.URL, "event", event, "err", err)
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, string(snippet))
	}
	return nil
}
