// Package stats summarizes attempt histories. Only averages and counts are
// computed.
package stats

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/abhisek/proctor/internal/store"
)

// RecentLimit is how many attempts a user summary lists.
const RecentLimit = 5

// Recent is one line of a user's recent attempts.
type Recent struct {
	TestID     string  `json:"test_id"`
	TestName   string  `json:"test_name"`
	Percentage float64 `json:"percentage"`
}

// UserSummary is what a user sees when they ask for their stats.
type UserSummary struct {
	UserID         int64    `json:"user_id"`
	TotalTests     int      `json:"total_tests"`
	AveragePercent float64  `json:"average_percent"`
	Recent         []Recent `json:"recent"` // oldest first, at most RecentLimit
}

// Summarize builds a user summary from history. An empty history yields a
// zero summary.
func Summarize(userID int64, history []store.AttemptRecord) UserSummary {
	s := UserSummary{UserID: userID, TotalTests: len(history)}
	if len(history) == 0 {
		return s
	}
	var sum float64
	for _, a := range history {
		sum += a.Result.Percentage
	}
	s.AveragePercent = sum / float64(len(history))

	start := max(0, len(history)-RecentLimit)
	for _, a := range history[start:] {
		s.Recent = append(s.Recent, Recent{
			TestID:     a.TestID,
			TestName:   a.TestName,
			Percentage: a.Result.Percentage,
		})
	}
	return s
}

// ForUser reads the user's history and summarizes it. A user with no
// history gets a zero summary, not an error.
func ForUser(ctx context.Context, repo store.HistoryRepo, userID int64) (UserSummary, []store.AttemptRecord, error) {
	history, err := repo.ReadAll(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return Summarize(userID, nil), nil, nil
	}
	if err != nil {
		return UserSummary{}, nil, fmt.Errorf("read history: %w", err)
	}
	return Summarize(userID, history), history, nil
}

// TestBreakdown aggregates attempts at one test across users.
type TestBreakdown struct {
	TestID         string  `json:"test_id"`
	TestName       string  `json:"test_name"`
	Attempts       int     `json:"attempts"`
	AveragePercent float64 `json:"average_percent"`
}

// UserBreakdown aggregates one user's attempts.
type UserBreakdown struct {
	UserID         int64   `json:"user_id"`
	Attempts       int     `json:"attempts"`
	AveragePercent float64 `json:"average_percent"`
}

// Aggregate is the admin-wide report.
type Aggregate struct {
	Users          int             `json:"users"`
	Attempts       int             `json:"attempts"`
	AveragePercent float64         `json:"average_percent"`
	PerUser        []UserBreakdown `json:"per_user"`
	PerTest        []TestBreakdown `json:"per_test"`
}

// Aggregated reduces every user's history to counts and averages.
// PerUser is ordered by user ID, PerTest by test ID.
func Aggregated(histories []store.UserHistory) Aggregate {
	var (
		agg     Aggregate
		total   float64
		perTest = map[string]*TestBreakdown{}
		testSum = map[string]float64{}
	)
	for _, h := range histories {
		if len(h.Attempts) == 0 {
			continue
		}
		agg.Users++
		var userSum float64
		for _, a := range h.Attempts {
			userSum += a.Result.Percentage
			tb, ok := perTest[a.TestID]
			if !ok {
				tb = &TestBreakdown{TestID: a.TestID, TestName: a.TestName}
				perTest[a.TestID] = tb
			}
			tb.Attempts++
			testSum[a.TestID] += a.Result.Percentage
		}
		agg.Attempts += len(h.Attempts)
		total += userSum
		agg.PerUser = append(agg.PerUser, UserBreakdown{
			UserID:         h.UserID,
			Attempts:       len(h.Attempts),
			AveragePercent: userSum / float64(len(h.Attempts)),
		})
	}
	if agg.Attempts > 0 {
		agg.AveragePercent = total / float64(agg.Attempts)
	}
	sort.Slice(agg.PerUser, func(i, j int) bool { return agg.PerUser[i].UserID < agg.PerUser[j].UserID })

	for id, tb := range perTest {
		tb.AveragePercent = testSum[id] / float64(tb.Attempts)
		agg.PerTest = append(agg.PerTest, *tb)
	}
	sort.Slice(agg.PerTest, func(i, j int) bool { return agg.PerTest[i].TestID < agg.PerTest[j].TestID })
	return agg
}

// ForAll reads every history and aggregates it.
func ForAll(ctx context.Context, repo store.HistoryRepo) (Aggregate, error) {
	histories, err := repo.ReadAllUsers(ctx)
	if err != nil {
		return Aggregate{}, fmt.Errorf("read all histories: %w", err)
	}
	return Aggregated(histories), nil
}
