// Package notify posts ledger change events to an external webhook, used by
// the office dashboard to refresh itself when the scale operator saves a row.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/candelento/balanza/internal/config"
)

// Client exposes the change notification operation used by the application.
type Client interface {
	NotifyChange(ctx context.Context, event ChangeEvent) error
}

// ChangeEvent is the payload posted to the webhook.
type ChangeEvent struct {
	Type string `json:"type"`
	ID   int    `json:"id"`
	Date string `json:"date"`
}

// WebhookClient is a resty-backed implementation of Client.
type WebhookClient struct {
	httpClient *resty.Client
	url        string
}

// NewClient builds a webhook client using the provided configuration values.
func NewClient(cfg config.NotifyConfig) *WebhookClient {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second)

	return &WebhookClient{
		httpClient: restyClient,
		url:        cfg.WebhookURL,
	}
}

// NotifyChange posts the event to the configured webhook.
func (c *WebhookClient) NotifyChange(ctx context.Context, event ChangeEvent) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(event).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("notify webhook: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("notify webhook: unexpected status %d", resp.StatusCode())
	}

	return nil
}

// NopClient discards events. Used when no webhook is configured.
type NopClient struct{}

func (NopClient) NotifyChange(context.Context, ChangeEvent) error { return nil }
