package home

import (
	"fmt"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/proctor/internal/exam"
	"github.com/abhisek/proctor/internal/screens/welcome"
	sess "github.com/abhisek/proctor/internal/session"
	"github.com/abhisek/proctor/internal/ui/theme"
)

// renderTitle returns the title centered in cw. The block letters are used
// whenever the frame is wide enough, even if they overhang cw.
func renderTitle(frameWidth, cw int) string {
	return lipgloss.PlaceHorizontal(cw, lipgloss.Center, welcome.RenderTitle(frameWidth-4))
}

// renderStatsBar renders the dashboard stats in a bordered box matching content width.
func renderStatsBar(d dashboardMsg, loaded bool, limit time.Duration, cw int, compact bool) string {
	testsStyle := lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true)
	avgStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	earnedStyle := lipgloss.NewStyle().Foreground(theme.ArcadeCyan).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	var stats string
	switch {
	case !loaded:
		stats = dimStyle.Render("loading...")
	case d.Err != nil:
		stats = dimStyle.Render("statistics unavailable")
	case compact:
		stats = fmt.Sprintf("%s %s %s",
			testsStyle.Render(fmt.Sprintf("✎%d", d.TotalTests)),
			avgStyle.Render(fmt.Sprintf("∅%.1f%%", d.Average)),
			earnedStyle.Render(fmt.Sprintf("★%d", d.Earned)),
		)
	default:
		stats = fmt.Sprintf("%s  %s  %s",
			testsStyle.Render(fmt.Sprintf("✎ %d TESTS", d.TotalTests)),
			avgStyle.Render(fmt.Sprintf("∅ %.1f%%", d.Average)),
			earnedStyle.Render(fmt.Sprintf("★ %d EARNED", d.Earned)),
		)
	}
	stats += "\n" + dimStyle.Render("⏰ "+exam.FormatLimit(limit)+" per test")

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.ArcadeCyan).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

// renderRunning notes the session still on the clock.
func renderRunning(v sess.View, cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Warning).
		Width(cw).
		Align(lipgloss.Center).
		Render(fmt.Sprintf("⏱ %s in progress, %s left", v.TestName, exam.FormatRemaining(v.Remaining)))
}

// renderEmptyBank explains how to add tests.
func renderEmptyBank(cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Accent).
		Width(cw).
		Align(lipgloss.Center).
		Render("⚠ No tests yet. Put a JSON file in the tests directory\nand its PDF in the pdf directory.")
}
