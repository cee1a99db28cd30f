package stats

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/proctor/internal/grading"
	"github.com/abhisek/proctor/internal/store"
)

func attempt(testID string, pct float64) store.AttemptRecord {
	return store.AttemptRecord{TestID: testID, TestName: "Test " + testID, Result: grading.Result{Percentage: pct}}
}

func TestSummarize(t *testing.T) {
	h := []store.AttemptRecord{
		attempt("a", 10), attempt("b", 20), attempt("c", 30),
		attempt("d", 40), attempt("e", 50), attempt("f", 60),
	}
	s := Summarize(9, h)

	assert.Equal(t, int64(9), s.UserID)
	assert.Equal(t, 6, s.TotalTests)
	assert.InDelta(t, 35.0, s.AveragePercent, 1e-9)
	require.Len(t, s.Recent, RecentLimit)
	assert.Equal(t, "b", s.Recent[0].TestID)
	assert.Equal(t, "f", s.Recent[4].TestID)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(1, nil)
	assert.Zero(t, s.TotalTests)
	assert.Zero(t, s.AveragePercent)
	assert.Empty(t, s.Recent)
}

func TestForUser_NoHistoryIsZero(t *testing.T) {
	repo, err := store.NewFileRepo(filepath.Join(t.TempDir(), "stats"))
	require.NoError(t, err)

	s, h, err := ForUser(context.Background(), repo, 5)
	require.NoError(t, err)
	assert.Zero(t, s.TotalTests)
	assert.Nil(t, h)
}

func TestAggregated(t *testing.T) {
	agg := Aggregated([]store.UserHistory{
		{UserID: 2, Attempts: []store.AttemptRecord{attempt("x", 100), attempt("y", 50)}},
		{UserID: 1, Attempts: []store.AttemptRecord{attempt("x", 60)}},
		{UserID: 3},
	})

	assert.Equal(t, 2, agg.Users)
	assert.Equal(t, 3, agg.Attempts)
	assert.InDelta(t, 70.0, agg.AveragePercent, 1e-9)

	require.Len(t, agg.PerUser, 2)
	assert.Equal(t, UserBreakdown{UserID: 1, Attempts: 1, AveragePercent: 60}, agg.PerUser[0])
	assert.Equal(t, UserBreakdown{UserID: 2, Attempts: 2, AveragePercent: 75}, agg.PerUser[1])

	require.Len(t, agg.PerTest, 2)
	assert.Equal(t, "x", agg.PerTest[0].TestID)
	assert.Equal(t, 2, agg.PerTest[0].Attempts)
	assert.InDelta(t, 80.0, agg.PerTest[0].AveragePercent, 1e-9)
	assert.Equal(t, "y", agg.PerTest[1].TestID)
}

func TestForAll(t *testing.T) {
	repo, err := store.NewFileRepo(filepath.Join(t.TempDir(), "stats"))
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, repo.Append(ctx, 1, attempt("x", 40)))
	require.NoError(t, repo.Append(ctx, 2, attempt("x", 80)))

	agg, err := ForAll(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, 2, agg.Users)
	assert.InDelta(t, 60.0, agg.AveragePercent, 1e-9)
}
