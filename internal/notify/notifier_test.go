package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Cknrf/intelligent-plant-care-system/internal/config"
	"github.com/Cknrf/intelligent-plant-care-system/internal/logger"
)

func testNotifyConfig(url string) config.NotifyConfig {
	return config.NotifyConfig{
		WebhookURL:     url,
		Retries:        3,
		RetryDelay:     time.Millisecond,
		RequestTimeout: 2 * time.Second,
	}
}

func TestDiscord_PostsFormattedPayload(t *testing.T) {
	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type %q", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("payload not json: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := NewDiscord(testNotifyConfig(srv.URL), logger.Get(logger.ErrorLevel))
	d.Notify(context.Background(), SeverityCritical, "Pump ran too long - force-stopped all watering")

	want := "🚨 **Plant Care** - Pump ran too long - force-stopped all watering"
	if got.Content != want {
		t.Fatalf("content = %q, want %q", got.Content, want)
	}
}

func TestDiscord_SeverityEmoji(t *testing.T) {
	cases := map[Severity]string{
		SeverityInfo:     "ℹ️",
		SeveritySuccess:  "✅",
		SeverityWarning:  "⚠️",
		SeverityCritical: "🚨",
	}
	for sev, want := range cases {
		if got := sev.emoji(); got != want {
			t.Fatalf("emoji(%s) = %q, want %q", sev, got, want)
		}
	}
}

func TestDiscord_RetriesThenDelivers(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewDiscord(testNotifyConfig(srv.URL), logger.Get(logger.ErrorLevel))
	d.Notify(context.Background(), SeverityInfo, "status")

	if calls.Load() != 3 {
		t.Fatalf("expected delivery on the third attempt, got %d calls", calls.Load())
	}
}

func TestDiscord_DropsAfterRetryBudget(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	d := NewDiscord(testNotifyConfig(srv.URL), logger.Get(logger.ErrorLevel))
	// must return normally; delivery failures never propagate
	d.Notify(context.Background(), SeverityWarning, "lux sensor failed")

	if calls.Load() != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", calls.Load())
	}
}

func TestDiscord_NoWebhookConfiguredIsSilent(t *testing.T) {
	d := NewDiscord(config.NotifyConfig{Retries: 3, RetryDelay: time.Millisecond}, logger.Get(logger.ErrorLevel))
	// nothing to assert beyond not panicking and not blocking
	d.Notify(context.Background(), SeverityInfo, "dropped")
}
