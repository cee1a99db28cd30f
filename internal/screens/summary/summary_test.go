package summary

import (
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/proctor/internal/achievements"
	"github.com/abhisek/proctor/internal/bank"
	"github.com/abhisek/proctor/internal/grading"
	"github.com/abhisek/proctor/internal/router"
	"github.com/abhisek/proctor/internal/session"
)

func testOutcome() *session.Outcome {
	test := &bank.Test{
		ID:         "algebra",
		Name:       "Algebra",
		Questions:  make([]bank.Question, 3),
		AnswerKeys: []string{"A", "B", "C"},
	}
	res, err := grading.Grade(test, []string{"A", "B", "D"})
	if err != nil {
		panic(err)
	}
	return &session.Outcome{
		UserID:       1,
		Test:         test,
		Result:       res,
		Achievements: []achievements.ID{achievements.FirstTest},
	}
}

func TestSummaryScreen_Title(t *testing.T) {
	s := New(testOutcome())
	if s.Title() != "Results" {
		t.Errorf("Title = %q, want %q", s.Title(), "Results")
	}
}

func TestSummaryScreen_Display(t *testing.T) {
	s := New(testOutcome())
	view := s.View(100, 30)
	for _, want := range []string{"Algebra", "Correct: 2/3", "66.67%", "First Step"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(view, "yours D") {
		t.Error("details should be hidden until toggled")
	}
}

func TestSummaryScreen_ToggleDetails(t *testing.T) {
	s := New(testOutcome())
	s.Update(tea.KeyPressMsg{Code: 'd', Text: "d"})
	view := s.View(100, 30)
	if !strings.Contains(view, "yours D") {
		t.Error("expected per-question details after pressing d")
	}
	if s.KeyHints()[0].Description != "Hide details" {
		t.Errorf("hint = %q", s.KeyHints()[0].Description)
	}
}

func TestSummaryScreen_PersistWarning(t *testing.T) {
	out := testOutcome()
	out.PersistErr = errors.New("disk full")
	view := New(out).View(100, 30)
	if !strings.Contains(view, "could not be saved") {
		t.Error("expected persistence warning")
	}
}

func TestSummaryScreen_Navigation(t *testing.T) {
	for _, key := range []tea.KeyPressMsg{{Code: tea.KeyEnter}, {Code: tea.KeyEscape}} {
		s := New(testOutcome())
		_, cmd := s.Update(key)
		if cmd == nil {
			t.Fatalf("expected a command on %s", key.String())
		}
		if _, ok := cmd().(router.PopScreenMsg); !ok {
			t.Errorf("expected PopScreenMsg on %s", key.String())
		}
	}
}
