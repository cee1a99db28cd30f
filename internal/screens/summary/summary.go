package summary

import (
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/proctor/internal/achievements"
	"github.com/abhisek/proctor/internal/exam"
	"github.com/abhisek/proctor/internal/grading"
	"github.com/abhisek/proctor/internal/router"
	"github.com/abhisek/proctor/internal/screen"
	"github.com/abhisek/proctor/internal/session"
	"github.com/abhisek/proctor/internal/ui/layout"
	"github.com/abhisek/proctor/internal/ui/theme"
)

// SummaryScreen displays a graded attempt.
type SummaryScreen struct {
	outcome     *session.Outcome
	showDetails bool
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(outcome *session.Outcome) *SummaryScreen {
	return &SummaryScreen{outcome: outcome}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Results"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	label := "Details"
	if s.showDetails {
		label = "Hide details"
	}
	return []layout.KeyHint{
		{Key: "D", Description: label},
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Home"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		switch kmsg.String() {
		case "d", "D":
			s.showDetails = !s.showDetails
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	out := s.outcome
	if out == nil {
		return ""
	}
	r := out.Result
	center := func(style lipgloss.Style, text string) string {
		return style.Width(width).Align(lipgloss.Center).Render(text)
	}

	var b strings.Builder
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true),
		"RESULTS: "+out.Test.Name))
	b.WriteString("\n\n")

	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Text),
		fmt.Sprintf("Correct: %d/%d        Score: %s",
			r.CorrectCount, r.TotalQuestions, exam.FormatPercent(r.Percentage))))
	b.WriteString("\n\n")

	band := grading.BandFor(r.Percentage)
	b.WriteString(center(lipgloss.NewStyle().Foreground(bandColor(band)).Bold(true), band.Message()))
	b.WriteString("\n\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", min(width-8, 60)))

	if len(out.Achievements) > 0 {
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim), "New achievements"))
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
		b.WriteString("\n\n")
		for _, id := range out.Achievements {
			a, _ := achievements.Lookup(id)
			line := fmt.Sprintf("%s %s: %s", id.Icon(), a.Name, a.Description)
			b.WriteString(center(lipgloss.NewStyle().Foreground(RarityColor(a.Rarity)), line))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if s.showDetails {
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim), "Details"))
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
		b.WriteString("\n\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, renderDetails(r.Details)))
		b.WriteString("\n")
	}

	if out.HistoryErr != nil {
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Warning),
			"Your history could not be read, so some achievements were not checked."))
		b.WriteString("\n")
	}
	if out.PersistErr != nil {
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Warning),
			"Your result could not be saved to your history."))
		b.WriteString("\n")
	}
	return b.String()
}

func renderDetails(details []grading.Detail) string {
	lines := make([]string, 0, len(details))
	for _, d := range details {
		style, mark := theme.Correct, "✓"
		if !d.Correct {
			style, mark = theme.Incorrect, "✗"
		}
		lines = append(lines, style.Render(
			fmt.Sprintf("%s %2d: yours %-3s correct %s", mark, d.Number, d.Submitted, d.Expected)))
	}
	return strings.Join(lines, "\n")
}

func bandColor(b grading.Band) color.Color {
	switch b {
	case grading.BandExcellent:
		return theme.Success
	case grading.BandGood:
		return theme.Secondary
	case grading.BandSatisfactory:
		return theme.Warning
	default:
		return theme.Error
	}
}

// RarityColor returns the theme color for an achievement rarity.
func RarityColor(r achievements.Rarity) color.Color {
	switch r {
	case achievements.RarityCommon:
		return theme.Text
	case achievements.RarityRare:
		return theme.Secondary
	case achievements.RarityEpic:
		return theme.Primary
	case achievements.RarityLegendary:
		return theme.Accent
	default:
		return theme.Text
	}
}
