package report

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/amanpro/barn-node/internal/core"
)

const sendTimeout = 30 * time.Second

// WebhookPublisher POSTs reports to an Apps-Script-style HTTPS webhook.
// There is deliberately no retry: a report that cannot be delivered within
// the timeout is stale by the time it could be resent, and the period state
// has already been reset for the next hour.
type WebhookPublisher struct {
	client *resty.Client
	url    string
	log    *zap.Logger
}

// NewWebhookPublisher creates a publisher for the given webhook URL.
func NewWebhookPublisher(url string, log *zap.Logger) *WebhookPublisher {
	client := resty.New().
		SetTimeout(sendTimeout).
		SetHeader("Content-Type", "application/json").
		// Apps Script answers with a 302 to a one-time result URL.
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))

	return &WebhookPublisher{client: client, url: url, log: log}
}

// Publish sends one report and returns an error on transport failure or a
// non-2xx response.
func (p *WebhookPublisher) Publish(r *core.Report) error {
	body, err := Format(r)
	if err != nil {
		return fmt.Errorf("format report: %w", err)
	}

	resp, err := p.client.R().SetBody(body).Post(p.url)
	if err != nil {
		return fmt.Errorf("post report: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("post report: status %d", resp.StatusCode())
	}

	p.log.Info("hourly report delivered",
		zap.String("timestamp", BuildPayload(r).Timestamp),
		zap.Int("status", resp.StatusCode()))
	return nil
}

// Close releases transport resources. resty clients hold none that need
// explicit teardown, but Publisher implementations are closeable uniformly.
func (p *WebhookPublisher) Close() error {
	return nil
}
