package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/proctor/internal/grading"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	s, err := Open(context.Background(), "sqlite", dsn)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func openTestFileRepo(t *testing.T) *FileRepo {
	t.Helper()
	r, err := NewFileRepo(filepath.Join(t.TempDir(), "stats"))
	if err != nil {
		t.Fatalf("open file repo: %v", err)
	}
	return r
}

func record(testID string, correct, total int) AttemptRecord {
	details := make([]grading.Detail, total)
	for i := range details {
		details[i] = grading.Detail{Number: i + 1, Submitted: "A", Expected: "A", Correct: i < correct}
	}
	return AttemptRecord{
		TestID:   testID,
		TestName: "Test " + testID,
		Result: grading.Result{
			CorrectCount:   correct,
			TotalQuestions: total,
			Percentage:     grading.RoundPercent(correct, total),
			Details:        details,
		},
		CompletedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

// repoContract exercises the HistoryRepo guarantees every backend shares.
func repoContract(t *testing.T, repo HistoryRepo) {
	ctx := context.Background()

	t.Run("empty history is not found", func(t *testing.T) {
		_, err := repo.ReadAll(ctx, 404)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("append preserves order and content", func(t *testing.T) {
		for i, id := range []string{"t1", "t2", "t3"} {
			if err := repo.Append(ctx, 7, record(id, i+1, 4)); err != nil {
				t.Fatalf("append %s: %v", id, err)
			}
		}
		got, err := repo.ReadAll(ctx, 7)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("len = %d, want 3", len(got))
		}
		for i, id := range []string{"t1", "t2", "t3"} {
			if got[i].TestID != id {
				t.Errorf("attempt %d test = %q, want %q", i, got[i].TestID, id)
			}
			if got[i].ID == "" {
				t.Errorf("attempt %d has no id", i)
			}
		}
		last := got[2]
		if last.Result.CorrectCount != 3 || last.Result.TotalQuestions != 4 || last.Result.Percentage != 75 {
			t.Errorf("result = %+v", last.Result)
		}
		if len(last.Result.Details) != 4 || !last.Result.Details[2].Correct || last.Result.Details[3].Correct {
			t.Errorf("details = %+v", last.Result.Details)
		}
		if !last.CompletedAt.Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)) {
			t.Errorf("completed at = %v", last.CompletedAt)
		}
	})

	t.Run("append with the same id is applied once", func(t *testing.T) {
		rec := record("dup", 1, 1)
		rec.ID = uuid.NewString()
		for range 2 {
			if err := repo.Append(ctx, 8, rec); err != nil {
				t.Fatalf("append: %v", err)
			}
		}
		got, err := repo.ReadAll(ctx, 8)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("len = %d, want 1", len(got))
		}
	})

	t.Run("all users ordered by id", func(t *testing.T) {
		if err := repo.Append(ctx, 3, record("t9", 0, 2)); err != nil {
			t.Fatalf("append: %v", err)
		}
		all, err := repo.ReadAllUsers(ctx)
		if err != nil {
			t.Fatalf("read all: %v", err)
		}
		var ids []int64
		for _, h := range all {
			ids = append(ids, h.UserID)
		}
		want := []int64{3, 7, 8}
		if fmt.Sprint(ids) != fmt.Sprint(want) {
			t.Fatalf("user ids = %v, want %v", ids, want)
		}
		if len(all[1].Attempts) != 3 {
			t.Errorf("user 7 attempts = %d, want 3", len(all[1].Attempts))
		}
	})
}

func TestSQLRepoContract(t *testing.T) {
	repoContract(t, openTestStore(t).HistoryRepo())
}

func TestFileRepoContract(t *testing.T) {
	repoContract(t, openTestFileRepo(t))
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so we skip journal_mode here.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
		{"busy_timeout", "5000"},
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestSequenceCounterMonotonic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	prev := int64(0)
	for range 5 {
		n, err := s.seq.Next(ctx)
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if n <= prev {
			t.Fatalf("sequence went from %d to %d", prev, n)
		}
		prev = n
	}
}

func TestOpenFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "proctor.db")
	s, err := Open(context.Background(), "sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	var mode string
	if err := s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}

	ctx := context.Background()
	if err := s.HistoryRepo().Append(ctx, 1, record("t", 1, 1)); err != nil {
		t.Fatalf("append: %v", err)
	}
	s.Close()

	reopened, err := Open(ctx, "sqlite", path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.HistoryRepo().ReadAll(ctx, 1)
	if err != nil || len(got) != 1 {
		t.Fatalf("after reopen: %v, %d attempts", err, len(got))
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), "mongo", ""); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
