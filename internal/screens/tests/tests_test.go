package tests

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/proctor/internal/bank"
	"github.com/abhisek/proctor/internal/exam"
	"github.com/abhisek/proctor/internal/router"
	sessionscreen "github.com/abhisek/proctor/internal/screens/session"
	"github.com/abhisek/proctor/internal/session"
	"github.com/abhisek/proctor/internal/store"
)

func newService(t *testing.T, tests ...*bank.Test) *exam.Service {
	t.Helper()
	b, err := bank.New(tests...)
	if err != nil {
		t.Fatal(err)
	}
	repo, err := store.NewFileRepo(filepath.Join(t.TempDir(), "stats"))
	if err != nil {
		t.Fatal(err)
	}
	mgr := session.NewManager(b, repo, session.Config{
		TimeLimit: time.Hour,
		Clock:     session.NewFakeClock(time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)),
	})
	t.Cleanup(mgr.Shutdown)
	return exam.NewService(b, mgr, repo, nil, nil)
}

func twoTests() []*bank.Test {
	return []*bank.Test{
		{ID: "algebra", Name: "Algebra", Questions: make([]bank.Question, 2), AnswerKeys: []string{"A", "B"}},
		{ID: "geometry", Name: "Geometry", Questions: make([]bank.Question, 3), AnswerKeys: []string{"A", "B", "C"}},
	}
}

func TestPickerStartsSelectedTest(t *testing.T) {
	p := New(newService(t, twoTests()...), 1)

	view := p.View(100, 30)
	if !strings.Contains(view, "Geometry (3 questions)") {
		t.Errorf("view missing test label:\n%s", view)
	}

	p.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd := p.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command on Enter")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", msg)
	}
	if _, ok := msg.Screen.(*sessionscreen.SessionScreen); !ok {
		t.Errorf("expected a session screen, got %T", msg.Screen)
	}
}

func TestPickerWarnsAboutRunningTest(t *testing.T) {
	svc := newService(t, twoTests()...)
	if _, err := svc.StartTest(context.Background(), 1, "algebra"); err != nil {
		t.Fatal(err)
	}
	view := New(svc, 1).View(100, 30)
	if !strings.Contains(view, "still running") {
		t.Error("expected a warning about the running test")
	}
}

func TestPickerEmptyBank(t *testing.T) {
	p := New(newService(t), 1)
	if !strings.Contains(p.View(100, 30), "no tests yet") {
		t.Error("expected empty bank message")
	}
	_, cmd := p.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd != nil {
		t.Error("enter on an empty list should do nothing")
	}
}

func TestPickerEscPops(t *testing.T) {
	p := New(newService(t, twoTests()...), 1)
	_, cmd := p.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}
