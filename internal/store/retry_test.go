package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func retryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 1 * time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Multiplier:  2.0,
	}
}

// flakyRepo fails the first n calls of every operation.
type flakyRepo struct {
	failures int
	err      error
	calls    int
	appended []AttemptRecord
}

func (f *flakyRepo) fail() error {
	f.calls++
	if f.calls <= f.failures {
		return f.err
	}
	return nil
}

func (f *flakyRepo) Append(_ context.Context, _ int64, rec AttemptRecord) error {
	if err := f.fail(); err != nil {
		return err
	}
	f.appended = append(f.appended, rec)
	return nil
}

func (f *flakyRepo) ReadAll(context.Context, int64) ([]AttemptRecord, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	return f.appended, nil
}

func (f *flakyRepo) ReadAllUsers(context.Context) ([]UserHistory, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	return nil, nil
}

func transient() error {
	return &PersistenceError{Op: "append", UserID: 1, Err: errors.New("disk busy")}
}

func TestRetry_TransientThenSuccess(t *testing.T) {
	inner := &flakyRepo{failures: 2, err: transient()}
	repo := WithRetry(inner, retryConfig(), nil)

	if err := repo.Append(context.Background(), 1, record("t", 1, 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", inner.calls)
	}
	if len(inner.appended) != 1 || inner.appended[0].ID == "" {
		t.Fatalf("appended = %+v", inner.appended)
	}
}

func TestRetry_AllAttemptsFail(t *testing.T) {
	inner := &flakyRepo{failures: 10, err: transient()}
	repo := WithRetry(inner, retryConfig(), nil)

	err := repo.Append(context.Background(), 1, record("t", 1, 1))
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if inner.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", inner.calls)
	}
}

func TestRetry_NotFoundIsNotRetried(t *testing.T) {
	inner := &flakyRepo{failures: 10, err: ErrNotFound}
	repo := WithRetry(inner, retryConfig(), nil)

	_, err := repo.ReadAll(context.Background(), 1)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("expected 1 call, got %d", inner.calls)
	}
}

func TestRetry_ContextCancelledDuringBackoff(t *testing.T) {
	inner := &flakyRepo{failures: 10, err: transient()}
	cfg := retryConfig()
	cfg.InitialWait = time.Hour
	cfg.MaxWait = time.Hour
	repo := WithRetry(inner, cfg, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := repo.ReadAllUsers(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestRetry_BackoffCapped(t *testing.T) {
	r := &retryRepo{config: RetryConfig{InitialWait: time.Second, MaxWait: 2 * time.Second, Multiplier: 10}}
	for attempt := range 4 {
		if w := r.backoff(attempt); w > 2400*time.Millisecond {
			t.Errorf("attempt %d wait %v exceeds cap plus jitter", attempt, w)
		}
	}
}
