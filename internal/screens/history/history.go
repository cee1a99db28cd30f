package history

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/proctor/internal/exam"
	"github.com/abhisek/proctor/internal/grading"
	"github.com/abhisek/proctor/internal/router"
	"github.com/abhisek/proctor/internal/screen"
	"github.com/abhisek/proctor/internal/stats"
	"github.com/abhisek/proctor/internal/store"
	"github.com/abhisek/proctor/internal/ui/layout"
	"github.com/abhisek/proctor/internal/ui/theme"
)

type historyLoadedMsg struct {
	Summary  stats.UserSummary
	Attempts []store.AttemptRecord // newest first
	Err      error
}

// HistoryScreen shows the user's statistics and past attempts.
type HistoryScreen struct {
	svc      *exam.Service
	userID   int64
	summary  stats.UserSummary
	attempts []store.AttemptRecord
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(svc *exam.Service, userID int64) *HistoryScreen {
	return &HistoryScreen{
		svc:      svc,
		userID:   userID,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	svc, userID := s.svc, s.userID
	return func() tea.Msg {
		sum, attempts, err := svc.RequestHistory(context.Background(), userID)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		attempts = slices.Clone(attempts)
		slices.Reverse(attempts)
		return historyLoadedMsg{Summary: sum, Attempts: attempts}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.summary = msg.Summary
			s.attempts = msg.Attempts
		}
		s.loaded = true
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.attempts)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render("\n\nStatistics are unavailable right now. Try again later.")
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.attempts) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  You have not completed any tests yet.")
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.Text).Bold(true).
		Render(fmt.Sprintf("Tests taken: %d     Average score: %.1f%%",
			s.summary.TotalTests, s.summary.AveragePercent)))
	b.WriteString("\n\n")

	for i, a := range s.attempts {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}
		line := fmt.Sprintf("%s%s  %-24s %d/%d  %s",
			prefix, a.CompletedAt.Format("Jan 02, 2006 15:04"), a.TestName,
			a.Result.CorrectCount, a.Result.TotalQuestions, exam.FormatPercent(a.Result.Percentage))

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			b.WriteString(renderMistakes(width, a.Result))
		}
	}
	return b.String()
}

// renderMistakes lists the wrongly answered questions of one attempt.
func renderMistakes(width int, r grading.Result) string {
	wrong := r.Incorrect()
	if len(wrong) == 0 {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.Success).Italic(true).Render("    Every answer correct")) + "\n"
	}
	var b strings.Builder
	for _, d := range wrong {
		line := fmt.Sprintf("    ✗ %2d: yours %-3s correct %s", d.Number, d.Submitted, d.Expected)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Incorrect.Render(line)))
		b.WriteString("\n")
	}
	return b.String()
}
