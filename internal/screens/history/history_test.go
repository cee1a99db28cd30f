package history

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/proctor/internal/bank"
	"github.com/abhisek/proctor/internal/exam"
	"github.com/abhisek/proctor/internal/router"
	"github.com/abhisek/proctor/internal/session"
	"github.com/abhisek/proctor/internal/store"
)

func newService(t *testing.T) *exam.Service {
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
	return exam.NewService(b, mgr, repo, nil, nil)
}

func take(t *testing.T, svc *exam.Service, sheet string) {
	t.Helper()
	ctx := context.Background()
	_, err := svc.StartTest(ctx, 1, "algebra")
	require.NoError(t, err)
	_, err = svc.SubmitTextAnswers(ctx, 1, sheet)
	require.NoError(t, err)
}

func TestHistoryEmpty(t *testing.T) {
	s := New(newService(t), 1)
	s.Update(s.Init()())
	assert.Contains(t, s.View(100, 30), "not completed any tests")
}

func TestHistoryListsNewestFirst(t *testing.T) {
	svc := newService(t)
	take(t, svc, "A,B")
	take(t, svc, "A,x")

	s := New(svc, 1)
	s.Update(s.Init()())
	require.Len(t, s.attempts, 2)
	assert.Equal(t, 50.0, s.attempts[0].Result.Percentage)

	view := s.View(100, 30)
	assert.Contains(t, view, "Tests taken: 2")
	assert.Contains(t, view, "Average score: 75.0%")
	assert.Less(t, strings.Index(view, "50%"), strings.Index(view, "100%"))
}

func TestHistoryExpandShowsMistakes(t *testing.T) {
	svc := newService(t)
	take(t, svc, "A,x")

	s := New(svc, 1)
	s.Update(s.Init()())
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Contains(t, s.View(100, 30), "yours x")

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	_, ok := cmd().(router.PopScreenMsg)
	assert.True(t, ok)
}
