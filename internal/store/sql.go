package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/proctor/internal/grading"
)

const attemptsTable = "attempts"

var attemptColumns = []string{
	"id", "user_id", "test_id", "test_name",
	"correct_count", "total_questions", "percentage", "details", "completed_at",
}

// sqlRepo implements HistoryRepo with one row per attempt. Details are kept
// as a JSON column; only the fields the aggregate report sums over get
// their own columns.
type sqlRepo struct {
	drv     *entsql.Driver
	dialect string
	seq     *sequenceCounter
}

var _ HistoryRepo = (*sqlRepo)(nil)

func (r *sqlRepo) Append(ctx context.Context, userID int64, rec AttemptRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CompletedAt.IsZero() {
		rec.CompletedAt = time.Now().UTC()
	}

	details, err := json.Marshal(rec.Result.Details)
	if err != nil {
		return &PersistenceError{Op: "append", UserID: userID, Err: fmt.Errorf("marshal details: %w", err)}
	}

	seq, err := r.seq.Next(ctx)
	if err != nil {
		return &PersistenceError{Op: "append", UserID: userID, Err: err}
	}

	query, args := entsql.Dialect(r.dialect).
		Insert(attemptsTable).
		Columns(append([]string{"sequence"}, attemptColumns...)...).
		Values(
			seq, rec.ID, userID, rec.TestID, rec.TestName,
			rec.Result.CorrectCount, rec.Result.TotalQuestions, rec.Result.Percentage,
			string(details), rec.CompletedAt.UTC().UnixNano(),
		).
		OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing()).
		Query()

	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return &PersistenceError{Op: "append", UserID: userID, Err: fmt.Errorf("insert attempt: %w", err)}
	}
	return nil
}

func (r *sqlRepo) ReadAll(ctx context.Context, userID int64) ([]AttemptRecord, error) {
	b := entsql.Dialect(r.dialect)
	query, args := b.Select(attemptColumns...).
		From(b.Table(attemptsTable)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy("sequence").
		Query()

	histories, err := r.query(ctx, query, args)
	if err != nil {
		return nil, &PersistenceError{Op: "read", UserID: userID, Err: err}
	}
	if len(histories) == 0 {
		return nil, ErrNotFound
	}
	return histories[0].Attempts, nil
}

func (r *sqlRepo) ReadAllUsers(ctx context.Context) ([]UserHistory, error) {
	b := entsql.Dialect(r.dialect)
	query, args := b.Select(attemptColumns...).
		From(b.Table(attemptsTable)).
		OrderBy("user_id", "sequence").
		Query()

	histories, err := r.query(ctx, query, args)
	if err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	return histories, nil
}

// query runs a select over attemptColumns and groups consecutive rows by
// user. Rows must be ordered by user_id.
func (r *sqlRepo) query(ctx context.Context, query string, args []any) ([]UserHistory, error) {
	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []UserHistory
	for rows.Next() {
		var (
			rec         AttemptRecord
			userID      int64
			details     string
			completedAt int64
		)
		if err := rows.Scan(
			&rec.ID, &userID, &rec.TestID, &rec.TestName,
			&rec.Result.CorrectCount, &rec.Result.TotalQuestions, &rec.Result.Percentage,
			&details, &completedAt,
		); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		var ds []grading.Detail
		if err := json.Unmarshal([]byte(details), &ds); err != nil {
			return nil, fmt.Errorf("decode details of attempt %s: %w", rec.ID, err)
		}
		rec.Result.Details = ds
		rec.CompletedAt = time.Unix(0, completedAt).UTC()

		if n := len(out); n == 0 || out[n-1].UserID != userID {
			out = append(out, UserHistory{UserID: userID})
		}
		last := &out[len(out)-1]
		last.Attempts = append(last.Attempts, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return out, nil
}
