package store

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RetryConfig configures retry behavior for transient store failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// retryRepo is a decorator that retries persistence failures with
// exponential backoff and jitter.
type retryRepo struct {
	inner  HistoryRepo
	config RetryConfig
	logger *zap.Logger
}

// WithRetry wraps a HistoryRepo with retry logic. Appends are made
// idempotent by fixing the record ID before the first try.
func WithRetry(r HistoryRepo, cfg RetryConfig, logger *zap.Logger) HistoryRepo {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &retryRepo{inner: r, config: cfg, logger: logger}
}

func (r *retryRepo) Append(ctx context.Context, userID int64, rec AttemptRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CompletedAt.IsZero() {
		rec.CompletedAt = time.Now().UTC()
	}
	return r.do(ctx, "append", func() error {
		return r.inner.Append(ctx, userID, rec)
	})
}

func (r *retryRepo) ReadAll(ctx context.Context, userID int64) ([]AttemptRecord, error) {
	var out []AttemptRecord
	err := r.do(ctx, "read", func() error {
		var err error
		out, err = r.inner.ReadAll(ctx, userID)
		return err
	})
	return out, err
}

func (r *retryRepo) ReadAllUsers(ctx context.Context) ([]UserHistory, error) {
	var out []UserHistory
	err := r.do(ctx, "list", func() error {
		var err error
		out, err = r.inner.ReadAllUsers(ctx)
		return err
	})
	return out, err
}

func (r *retryRepo) do(ctx context.Context, op string, fn func() error) error {
	var lastErr error

	for attempt := range r.config.MaxAttempts {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !shouldRetry(err) {
			return err
		}

		// Last attempt, don't sleep.
		if attempt == r.config.MaxAttempts-1 {
			break
		}

		wait := r.backoff(attempt)
		r.logger.Warn("store operation failed, retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", wait),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	return lastErr
}

// shouldRetry determines if an error is retryable.
func shouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	// An empty history is an answer, not a failure.
	if errors.Is(err, ErrNotFound) {
		return false
	}
	return errors.Is(err, ErrPersistence)
}

// backoff computes the wait duration for the given attempt.
func (r *retryRepo) backoff(attempt int) time.Duration {
	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	if wait > float64(r.config.MaxWait) {
		wait = float64(r.config.MaxWait)
	}

	// Add ±20% jitter.
	jitter := wait * 0.2 * (2*rand.Float64() - 1)
	wait += jitter

	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
