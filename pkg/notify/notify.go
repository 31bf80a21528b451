// Package notify delivers fire-and-forget event notifications. Delivery
// failures are logged and never propagated; translation results are already
// persisted by the time a notification goes out.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"mail_trans_engine/config"
	"mail_trans_engine/pkg/httpclient"
)

type Sink interface {
	Publish(ctx context.Context, tenantId, event string, payload interface{})
}

// NopSink is used when no webhook is configured.
type NopSink struct{}

func (NopSink) Publish(ctx context.Context, tenantId, event string, payload interface{}) {}

type envelope struct {
	TenantId string      `json:"tenant_id,omitempty"`
	Event    string      `json:"event"`
	Payload  interface{} `json:"payload"`
	SentAt   time.Time   `json:"sent_at"`
}

// WebhookSink posts events to a single configured endpoint, retrying a
// bounded number of times with a short backoff.
type WebhookSink struct {
	client     httpclient.Controller
	url        string
	maxRetries int
	log        *slog.Logger
}

func NewWebhookSink(cfg config.Webhook, client httpclient.Controller, log *slog.Logger) Sink {
	if cfg.URL == "" {
		return NopSink{}
	}
	return &WebhookSink{
		client:     client,
		url:        cfg.URL,
		maxRetries: cfg.MaxRetries,
		log:        log,
	}
}

func (s *WebhookSink) Publish(ctx context.Context, tenantId, event string, payload interface{}) {
	body, err := json.Marshal(envelope{
		TenantId: tenantId,
		Event:    event,
		Payload:  payload,
		SentAt:   time.Now(),
	})
	if err != nil {
		s.log.Error("webhook payload marshal failed", "event", event, "error", err.Error())
		return
	}

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				s.log.Warn("webhook delivery canceled", "event", event)
				return
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		lastErr = s.send(ctx, body)
		if lastErr == nil {
			return
		}
		s.log.Warn("webhook delivery failed",
			"event", event, "attempt", attempt+1, "error", lastErr.Error())
	}

	s.log.Error("webhook delivery abandoned",
		"event", event, "retries", s.maxRetries, "error", lastErr.Error())
}

func (s *WebhookSink) send(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook endpoint returned %d", resp.StatusCode)
	}
	return nil
}
