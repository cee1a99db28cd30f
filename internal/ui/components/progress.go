package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/proctor/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar.
type ProgressBar struct {
	Label string
	Ratio float64 // 0..1
	Fill  lipgloss.Style
	Width int
	Tail  string // text after the bar, e.g. "3/10"
}

// NewProgressBar creates a bar in the secondary color.
func NewProgressBar(label string, ratio float64, tail string, width int) ProgressBar {
	return ProgressBar{
		Label: label,
		Ratio: ratio,
		Fill:  lipgloss.NewStyle().Background(theme.Secondary),
		Width: width,
		Tail:  tail,
	}
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string
	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	tail := ""
	if p.Tail != "" {
		tail = "  " + p.Tail
	}

	barWidth := p.Width - lipgloss.Width(result) - lipgloss.Width(tail)
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * p.Ratio)
	filled = max(0, min(filled, barWidth))

	result += p.Fill.Render(strings.Repeat(" ", filled))
	result += lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", barWidth-filled))
	if tail != "" {
		result += lipgloss.NewStyle().Foreground(theme.TextDim).Render(tail)
	}
	return result
}
