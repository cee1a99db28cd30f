package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/proctor/internal/grading"
)

// ErrNotFound is returned by ReadAll when the user has no history.
var ErrNotFound = errors.New("history not found")

// ErrPersistence matches any *PersistenceError via errors.Is.
var ErrPersistence = errors.New("persistence failure")

// PersistenceError wraps a storage failure with the operation and user it
// concerned.
type PersistenceError struct {
	Op     string
	UserID int64
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s history for user %d: %v", e.Op, e.UserID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// AttemptRecord is one graded attempt as stored in a user's history.
type AttemptRecord struct {
	ID          string         `json:"id,omitempty"`
	TestID      string         `json:"test_id"`
	TestName    string         `json:"test_name"`
	Result      grading.Result `json:"result"`
	CompletedAt time.Time      `json:"completed_at"`
}

// UserHistory is a user's attempts in completion order.
type UserHistory struct {
	UserID   int64           `json:"user_id"`
	Attempts []AttemptRecord `json:"attempts"`
}

// HistoryRepo is the append-only store of graded attempts.
type HistoryRepo interface {
	// Append adds rec to the end of the user's history. The record is
	// durable when Append returns nil. Failures are *PersistenceError.
	Append(ctx context.Context, userID int64, rec AttemptRecord) error

	// ReadAll returns the user's attempts in the order they were appended,
	// or ErrNotFound if there are none. It never returns a partial history.
	ReadAll(ctx context.Context, userID int64) ([]AttemptRecord, error)

	// ReadAllUsers returns every user's history ordered by user ID.
	ReadAllUsers(ctx context.Context) ([]UserHistory, error)
}
