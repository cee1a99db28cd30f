package achievements

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/proctor/internal/bank"
	"github.com/abhisek/proctor/internal/exam"
	"github.com/abhisek/proctor/internal/session"
	"github.com/abhisek/proctor/internal/store"
)

func loadedScreen(t *testing.T, sheet string) *Screen {
	t.Helper()
	b, err := bank.New(&bank.Test{
		ID: "algebra", Name: "Algebra",
		Questions: make([]bank.Question, 2), AnswerKeys: []string{"A", "B"},
	})
	require.NoError(t, err)
	repo, err := store.NewFileRepo(filepath.Join(t.TempDir(), "stats"))
	require.NoError(t, err)
	mgr := session.NewManager(b, repo, session.Config{
		TimeLimit: time.Hour,
		Clock:     session.NewFakeClock(time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)),
	})
	t.Cleanup(mgr.Shutdown)
	svc := exam.NewService(b, mgr, repo, nil, nil)

	if sheet != "" {
		ctx := context.Background()
		_, err := svc.StartTest(ctx, 1, "algebra")
		require.NoError(t, err)
		_, err = svc.SubmitTextAnswers(ctx, 1, sheet)
		require.NoError(t, err)
	}

	s := New(svc, 1)
	s.Update(s.Init()())
	return s
}

func TestAchievementsNoneEarned(t *testing.T) {
	s := loadedScreen(t, "")
	assert.Contains(t, s.View(120, 30), "Earned: 0 of 5")
	assert.Contains(t, s.View(120, 30), "🔒")
}

func TestAchievementsFilters(t *testing.T) {
	s := loadedScreen(t, "A,B")
	assert.Contains(t, s.View(120, 30), "Earned: 3 of 5")

	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	assert.Equal(t, filterEarned, s.filter)
	assert.Len(t, s.filtered(), 3)

	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	assert.Equal(t, filterLocked, s.filter)
	for _, st := range s.filtered() {
		assert.False(t, st.Earned, st.ID)
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	assert.Equal(t, filterAll, s.filter, "wraps around")
}
