// Package webhook posts completion events as JSON to an HTTP endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pithecene-io/splimer/adapter"
	"github.com/pithecene-io/splimer/iox"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 10 * time.Second

// DefaultRetries is the default number of retry attempts.
const DefaultRetries = 3

// Config configures the webhook adapter.
type Config struct {
	// URL is the HTTP endpoint to POST to (required).
	URL string
	// Headers are added to each request.
	Headers map[string]string
	// Timeout is the per-request timeout (default 10s).
	Timeout time.Duration
	// Retries is the number of retries after the first attempt.
	Retries int
	// Backoff is the first retry delay (default adapter.DefaultBackoff).
	Backoff time.Duration
}

// Adapter publishes completion events via HTTP POST.
type Adapter struct {
	config Config
	client *http.Client
}

// New creates a webhook adapter. Returns an error if the URL is empty.
func New(cfg Config) (*Adapter, error) {
	if cfg.URL == "" {
		return nil, errors.New("webhook adapter requires a URL")
	}
	if cfg.Retries < 0 {
		return nil, fmt.Errorf("retries must be >= 0, got %d", cfg.Retries)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = adapter.DefaultBackoff
	}

	return &Adapter{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Publish POSTs the event. 5xx responses and network errors are retried;
// 4xx responses fail immediately.
func (a *Adapter) Publish(ctx context.Context, event *adapter.OperationCompletedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}

	return adapter.Retry(ctx, "webhook", a.config.Retries, a.config.Backoff,
		func(ctx context.Context) error { return a.post(ctx, body) },
		isClientError,
	)
}

// StatusError is returned for non-2xx HTTP responses.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

func isClientError(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Code >= 400 && statusErr.Code < 500
}

func (a *Adapter) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "splimer")
	for k, v := range a.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer iox.DiscardClose(resp.Body)

	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Code: resp.StatusCode}
	}
	return nil
}

// Close releases idle connections.
func (a *Adapter) Close() error {
	a.client.CloseIdleConnections()
	return nil
}

var _ adapter.Adapter = (*Adapter)(nil)
