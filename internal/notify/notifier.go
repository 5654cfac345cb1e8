// Package notify posts plant-care notifications to a Discord webhook.
// Delivery is fire-and-forget: failures are retried a few times, then
// dropped with a log line, and never influence control decisions.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/Cknrf/intelligent-plant-care-system/internal/config"
	"github.com/Cknrf/intelligent-plant-care-system/internal/logger"
)

// Severity selects the emoji prefixed to the message.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeveritySuccess  Severity = "success"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

func (s Severity) emoji() string {
	switch s {
	case SeveritySuccess:
		return "✅"
	case SeverityWarning:
		return "⚠️"
	case SeverityCritical:
		return "🚨"
	default:
		return "ℹ️"
	}
}

// Notifier delivers a human-readable message at a severity.
type Notifier interface {
	Notify(ctx context.Context, severity Severity, message string)
}

type webhookPayload struct {
	Content string `json:"content"`
}

// Discord posts messages formatted as
// {"content":"<emoji> **Plant Care** - <message>"} and treats any 2xx
// response as success.
type Discord struct {
	httpClient *http.Client
	log        *logger.Logger
	webhookURL string
	retries    int
	retryDelay time.Duration
}

func NewDiscord(cfg config.NotifyConfig, log *logger.Logger) *Discord {
	return &Discord{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		log:        log,
		webhookURL: cfg.WebhookURL,
		retries:    cfg.Retries,
		retryDelay: cfg.RetryDelay,
	}
}

func (d *Discord) Notify(ctx context.Context, severity Severity, message string) {
	if d.webhookURL == "" {
		d.log.Debugw("webhook not configured, dropping notification", "message", message)
		return
	}

	body, err := json.Marshal(webhookPayload{
		Content: fmt.Sprintf("%s **Plant Care** - %s", severity.emoji(), message),
	})
	if err != nil {
		d.log.Errorw("notification marshal failed", "err", err)
		return
	}

	op := func() error { return d.post(ctx, body) }
	bo := backoff.WithMaxRetries(backoff.NewConstantBackOff(d.retryDelay), uint64(d.retries-1))
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		notifications.WithLabelValues("dropped").Inc()
		d.log.Warnw("notification dropped after retries", "err", err, "severity", severity)
		return
	}
	notifications.WithLabelValues("delivered").Inc()
	d.log.Debugw("notification delivered", "severity", severity, "message", message)
}

func (d *Discord) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook status %d", resp.StatusCode)
	}
	return nil
}
