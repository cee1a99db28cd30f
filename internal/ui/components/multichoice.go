package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/proctor/internal/ui/theme"
)

// OptionPicker selects one option of a button-mode question. It never shows
// whether a choice is right; grading happens at submission.
type OptionPicker struct {
	Prompt   string
	Options  []string
	Selected int

	// Recorded is the option already on the answer sheet, or "".
	Recorded string

	// Picked is set when the user confirms a choice. Callers read
	// Options[Selected] and build a fresh picker for the next question.
	Picked bool
}

// NewOptionPicker creates a picker positioned on the recorded answer, if any.
func NewOptionPicker(prompt string, options []string, recorded string) OptionPicker {
	p := OptionPicker{Prompt: prompt, Options: options, Recorded: recorded}
	for i, o := range options {
		if o == recorded {
			p.Selected = i
			break
		}
	}
	return p
}

// Update handles arrow navigation, number hotkeys and enter.
func (p OptionPicker) Update(msg tea.Msg) (OptionPicker, tea.Cmd) {
	if p.Picked {
		return p, nil
	}
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return p, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		if p.Selected > 0 {
			p.Selected--
		}
	case "down", "j":
		if p.Selected < len(p.Options)-1 {
			p.Selected++
		}
	case "enter":
		p.Picked = true
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if idx := int(key[0] - '1'); idx < len(p.Options) {
				p.Selected = idx
				p.Picked = true
			}
		}
	}
	return p, nil
}

// Choice returns the highlighted option.
func (p OptionPicker) Choice() string {
	if p.Selected < 0 || p.Selected >= len(p.Options) {
		return ""
	}
	return p.Options[p.Selected]
}

// View renders the prompt and numbered options.
func (p OptionPicker) View() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(p.Prompt))
	b.WriteString("\n\n")

	for i, opt := range p.Options {
		prefix := "  "
		if i == p.Selected {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%d)  %s", prefix, i+1, opt)
		if opt == p.Recorded {
			line += "  ✓"
		}
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == p.Selected {
			style = theme.Selected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
