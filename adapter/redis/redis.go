// Package redis publishes completion events to a Redis pub/sub channel.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pithecene-io/splimer/adapter"
)

// DefaultChannel is the default pub/sub channel name.
const DefaultChannel = "splimer:operation_completed"

// DefaultTimeout is the default per-publish timeout.
const DefaultTimeout = 5 * time.Second

// DefaultRetries is the default number of retry attempts.
const DefaultRetries = 3

// Config configures the Redis adapter.
type Config struct {
	// URL is the Redis connection URL (required).
	// Format: redis://[:password@]host:port[/db]
	URL string
	// Channel is the pub/sub channel (default DefaultChannel).
	Channel string
	// Timeout bounds each PUBLISH (default 5s).
	Timeout time.Duration
	// Retries is the number of retries after the first attempt.
	Retries int
	// Backoff is the first retry delay (default adapter.DefaultBackoff).
	Backoff time.Duration
}

// Adapter publishes completion events via Redis PUBLISH.
type Adapter struct {
	config Config
	client *goredis.Client
}

// New creates a Redis adapter. Returns an error if the URL is empty or
// cannot be parsed.
func New(cfg Config) (*Adapter, error) {
	if cfg.URL == "" {
		return nil, errors.New("redis adapter requires a URL")
	}
	if cfg.Retries < 0 {
		return nil, fmt.Errorf("retries must be >= 0, got %d", cfg.Retries)
	}

	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis adapter: invalid URL: %w", err)
	}

	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = adapter.DefaultBackoff
	}

	return &Adapter{
		config: cfg,
		client: goredis.NewClient(opts),
	}, nil
}

// Publish sends the event as JSON to the configured channel, retrying
// every failure.
func (a *Adapter) Publish(ctx context.Context, event *adapter.OperationCompletedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("redis: marshal event: %w", err)
	}

	return adapter.Retry(ctx, "redis", a.config.Retries, a.config.Backoff, func(ctx context.Context) error {
		publishCtx, cancel := context.WithTimeout(ctx, a.config.Timeout)
		defer cancel()
		return a.client.Publish(publishCtx, a.config.Channel, body).Err()
	}, isClosed)
}

// isClosed stops retries on a client that has been closed.
func isClosed(err error) bool {
	return errors.Is(err, goredis.ErrClosed)
}

// Close releases the connection pool.
func (a *Adapter) Close() error {
	return a.client.Close()
}

var _ adapter.Adapter = (*Adapter)(nil)
