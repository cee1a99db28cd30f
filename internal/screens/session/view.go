package session

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/proctor/internal/exam"
	"github.com/abhisek/proctor/internal/ui/components"
	"github.com/abhisek/proctor/internal/ui/theme"
)

func centered(width int, style lipgloss.Style, text string) string {
	return style.Width(width).Align(lipgloss.Center).Render(text)
}

// renderQuestionView renders the running attempt.
func (s *SessionScreen) renderQuestionView(width int) string {
	v := s.view
	var b strings.Builder

	fraction := 0.0
	if s.limit > 0 {
		fraction = float64(v.Remaining) / float64(s.limit)
	}
	timer := theme.RemainingColor(fraction).Render("⏱ " + exam.FormatRemaining(v.Remaining))
	info := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).
		Render(fmt.Sprintf("  %s", s.test.Name))
	answered := lipgloss.NewStyle().Foreground(theme.TextDim).
		Render(fmt.Sprintf("%d/%d answered  ", v.AnsweredCount(), v.QuestionCount))

	line := info
	if pad := width - lipgloss.Width(info) - lipgloss.Width(answered) - lipgloss.Width(timer) - 4; pad > 0 {
		line += strings.Repeat(" ", pad) + answered + timer
	}
	b.WriteString(line)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	bar := components.NewProgressBar("Time", fraction, exam.FormatLimit(s.limit), min(width-8, 60))
	bar.Fill = lipgloss.NewStyle().Background(theme.RemainingColor(fraction).GetForeground())
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n\n")

	if note := s.bookletNote(); note != "" {
		b.WriteString(centered(width, lipgloss.NewStyle().Foreground(theme.TextDim), note))
		b.WriteString("\n\n")
	}

	if s.test.HasOptions() {
		header := fmt.Sprintf("Question %d/%d", s.current+1, s.test.QuestionCount())
		b.WriteString(centered(width, lipgloss.NewStyle().Foreground(theme.Accent).Bold(true), header))
		b.WriteString("\n\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.picker.View()))
		b.WriteString("\n")
		b.WriteString(centered(width, theme.Hint, "Select 1-9 or arrows + Enter. Press F to finish."))
	} else {
		prompt := fmt.Sprintf("Send %d answers separated by commas", s.test.QuestionCount())
		b.WriteString(centered(width, lipgloss.NewStyle().Foreground(theme.Text).Bold(true), prompt))
		b.WriteString("\n\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.input.View()))
	}

	if s.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(centered(width, lipgloss.NewStyle().Foreground(theme.Error), s.notice))
	}
	return b.String()
}

// renderQuitConfirm renders the leave confirmation dialog.
func renderQuitConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(centered(width, lipgloss.NewStyle().Foreground(theme.Text).Bold(true), "Leave this test?"))
	b.WriteString("\n")
	b.WriteString(centered(width, lipgloss.NewStyle().Foreground(theme.TextDim),
		"The timer keeps running. Resume from the home screen before time is up."))
	b.WriteString("\n\n")
	b.WriteString(centered(width, lipgloss.NewStyle().Foreground(theme.Success), "[Y] Yes, leave"))
	b.WriteString("\n")
	b.WriteString(centered(width, lipgloss.NewStyle().Foreground(theme.Primary), "[N] No, keep going"))
	return b.String()
}

func renderExpired(width int, testName string) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(centered(width, lipgloss.NewStyle().Foreground(theme.Error).Bold(true), "⏰ TIME IS UP!"))
	b.WriteString("\n\n")
	b.WriteString(centered(width, lipgloss.NewStyle().Foreground(theme.Text),
		fmt.Sprintf("The test '%s' is over. Your answers were not submitted in time.", testName)))
	b.WriteString("\n\n")
	b.WriteString(centered(width, theme.Hint, "Press any key to go back."))
	return b.String()
}

// renderLoading renders the loading state.
func renderLoading(width int) string {
	return centered(width, lipgloss.NewStyle().Foreground(theme.TextDim), "\n\n\n  Starting the timer...")
}

// renderError renders an error message.
func renderError(width int, errMsg string) string {
	return centered(width, lipgloss.NewStyle().Foreground(theme.Error),
		fmt.Sprintf("\n\n\n  Error: %s\n\n  Press any key to go back.", errMsg))
}
