package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"
)

// RetryConfig controls how Connect retries the initial connection.
type RetryConfig struct {
	Attempts     int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	JitterFactor float64 // 0.0 to 1.0
}

// DefaultRetryConfig waits roughly 0.5s, 1s, 2s, 4s between five attempts.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Attempts:     5,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.2,
	}
}

// backoff calculates exponential delays with jitter. It owns its RNG so
// tests can seed it.
type backoff struct {
	cfg RetryConfig
	rng *rand.Rand
	mu  sync.Mutex
}

func newBackoff(cfg RetryConfig, seed int64) *backoff {
	return &backoff{cfg: cfg, rng: rand.New(rand.NewSource(seed))}
}

// delay returns the wait after the given attempt (0-indexed).
func (b *backoff) delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	mult := b.cfg.Multiplier
	if mult < 1 {
		mult = 1
	}

	d := float64(b.cfg.InitialDelay) * math.Pow(mult, float64(attempt))
	if b.cfg.MaxDelay > 0 && d > float64(b.cfg.MaxDelay) {
		d = float64(b.cfg.MaxDelay)
	}

	if b.cfg.JitterFactor > 0 {
		b.mu.Lock()
		d += d * b.cfg.JitterFactor * (b.rng.Float64()*2 - 1)
		b.mu.Unlock()
	}
	if d < 0 {
		d = 0
	}
	return time.Duration(d)
}

// Connect calls Open until it succeeds, the attempts run out, or ctx is done.
// An unsupported driver fails immediately.
func Connect(ctx context.Context, opts Options, retry RetryConfig) (*Store, error) {
	attempts := retry.Attempts
	if attempts < 1 {
		attempts = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	b := newBackoff(retry, time.Now().UnixNano())

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		st, err := Open(ctx, opts)
		if err == nil {
			return st, nil
		}
		if errors.Is(err, ErrUnsupportedDriver) {
			return nil, err
		}
		lastErr = err
		if attempt == attempts-1 {
			break
		}

		d := b.delay(attempt)
		logger.Warn("database not ready, retrying",
			"attempt", attempt+1,
			"delay", d,
			"error", err,
		)
		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("connect: %w", ctx.Err())
		case <-timer.C:
		}
	}
	return nil, fmt.Errorf("connect after %d attempts: %w", attempts, lastErr)
}
