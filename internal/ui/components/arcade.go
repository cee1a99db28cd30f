package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/proctor/internal/ui/theme"
)

// ButtonWidth is the fixed width for menu buttons.
const ButtonWidth = 28

// ContentWidth returns the uniform inner width used for all arcade sections.
func ContentWidth(frameWidth int) int {
	// cabinet border (2) + inner padding (4)
	w := frameWidth - 6
	if w > 60 {
		w = 60
	}
	if w < 20 {
		w = 20
	}
	return w
}

// CabinetFrame wraps content in a double-border frame centered within the
// given dimensions.
func CabinetFrame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width - 2).
		Height(height - 2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// ArcadeCard wraps content in a rounded-border card at the given content width.
func ArcadeCard(content string, cw int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(1, 2).
		Render(content)
}

// ArcadeButton renders one menu button.
func ArcadeButton(label string, selected, disabled bool, width int) string {
	base := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)
	switch {
	case disabled:
		return base.Foreground(theme.TextDim).BorderForeground(theme.Border).Render(label)
	case selected:
		return base.Bold(true).
			Foreground(theme.BgDark).
			Background(theme.ArcadeYellow).
			BorderForeground(theme.ArcadeYellow).
			Render("▸ " + label)
	default:
		return base.Foreground(theme.Text).BorderForeground(theme.Border).Render(label)
	}
}

// ArcadeMenu stacks one button per label, centered in cw. Compact mode drops
// the borders for short terminals.
func ArcadeMenu(labels []string, selected int, disabled map[int]bool, cw int, compact bool) string {
	lines := make([]string, 0, len(labels))
	for i, label := range labels {
		if !compact {
			lines = append(lines, ArcadeButton(label, i == selected, disabled[i], ButtonWidth))
			continue
		}
		switch {
		case disabled[i]:
			lines = append(lines, lipgloss.NewStyle().Foreground(theme.TextDim).Render("   "+label))
		case i == selected:
			lines = append(lines, lipgloss.NewStyle().
				Foreground(theme.BgDark).
				Background(theme.ArcadeYellow).
				Bold(true).
				Render(" ▸ "+label+" "))
		default:
			lines = append(lines, lipgloss.NewStyle().Foreground(theme.Text).Render("   "+label))
		}
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(lines, "\n"))
}
