package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const ActionAnimeData = "ANIME_DATA"

// Message is the unsolicited push envelope, the same {action, payload}
// shape listeners receive from request/response messages.
type Message struct {
	Action  string `json:"action"`
	Payload any    `json:"payload"`
}

type Notifier interface {
	Notify(ctx context.Context, message Message) error
}

type NoopNotifier struct{}

func (n NoopNotifier) Notify(_ context.Context, _ Message) error {
	return nil
}

type WebhookNotifier struct {
	url    string
	client *http.Client
}

func NewWebhookNotifier(webhookURL string) (*WebhookNotifier, error) {
	trimmed := strings.TrimSpace(webhookURL)
	if trimmed == "" {
		return nil, fmt.Errorf("webhook url is required")
	}
	return &WebhookNotifier{
		url: trimmed,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

func (w *WebhookNotifier) Notify(ctx context.Context, message Message) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal push message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send push message: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("push listener returned status %d", res.StatusCode)
	}

	return nil
}

type MultiNotifier struct {
	notifiers []Notifier
}

func NewMultiNotifier(items ...Notifier) *MultiNotifier {
	filtered := make([]Notifier, 0, len(items))
	for _, item := range items {
		if item != nil {
			filtered = append(filtered, item)
		}
	}
	return &MultiNotifier{notifiers: filtered}
}

// Notify delivers to every listener; one failing listener does not stop
// the rest.
func (m *MultiNotifier) Notify(ctx context.Context, message Message) error {
	var errs []error
	for _, notifier := range m.notifiers {
		if err := notifier.Notify(ctx, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FromURL returns a webhook notifier, or a no-op when nobody listens.
func FromURL(webhookURL string) Notifier {
	webhook, err := NewWebhookNotifier(webhookURL)
	if err != nil {
		return NoopNotifier{}
	}
	return webhook
}

// Publisher sends pushes without making the caller wait for listeners.
type Publisher struct {
	notifier Notifier
	timeout  time.Duration
	logger   *slog.Logger
}

func NewPublisher(notifier Notifier, timeout time.Duration, logger *slog.Logger) *Publisher {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{notifier: notifier, timeout: timeout, logger: logger}
}

// Publish returns a channel closed once delivery has finished.
func (p *Publisher) Publish(action string, payload any) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if recovered := recover(); recovered != nil {
				p.logger.Warn("push listener panicked", "action", action, "panic", recovered)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		if err := p.notifier.Notify(ctx, Message{Action: action, Payload: payload}); err != nil {
			p.logger.Warn("push delivery failed", "action", action, "error", err)
		}
	}()
	return done
}
