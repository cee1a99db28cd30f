package components

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/proctor/internal/ui/theme"
)

// AnswerSheetInput wraps bubbles/textinput for comma-separated answer
// sheets such as "A,B,C". Keys other than letters, digits, commas and
// spaces are ignored.
type AnswerSheetInput struct {
	Model    textinput.Model
	Expected int
}

// NewAnswerSheetInput creates a focused input expecting n answers.
func NewAnswerSheetInput(n int) AnswerSheetInput {
	ti := textinput.New()
	ti.Placeholder = "A,B,C,D,A,B,..."
	ti.Focus()
	// room for a two-character answer and separator per question
	ti.CharLimit = n*4 + 16

	return AnswerSheetInput{Model: ti, Expected: n}
}

// Init returns the initial command.
func (t AnswerSheetInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update handles messages.
func (t AnswerSheetInput) Update(msg tea.Msg) (AnswerSheetInput, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		if key := kmsg.String(); len(key) == 1 && !allowedSheetKey(key[0]) {
			return t, nil
		}
	}

	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

func allowedSheetKey(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == ',' || c == ' ':
		return true
	}
	return false
}

// Count returns how many comma-separated fields are typed so far.
func (t AnswerSheetInput) Count() int {
	v := strings.TrimSpace(t.Model.Value())
	if v == "" {
		return 0
	}
	return strings.Count(v, ",") + 1
}

// View renders the input with a running field count.
func (t AnswerSheetInput) View() string {
	count := t.Count()
	style := lipgloss.NewStyle().Foreground(theme.TextDim)
	if count == t.Expected {
		style = lipgloss.NewStyle().Foreground(theme.Success)
	} else if count > t.Expected {
		style = lipgloss.NewStyle().Foreground(theme.Error)
	}
	return t.Model.View() + "\n" + style.Render(fmt.Sprintf("%d/%d answers", count, t.Expected))
}

// Value returns the current input value.
func (t AnswerSheetInput) Value() string {
	return t.Model.Value()
}

// Reset clears the input.
func (t *AnswerSheetInput) Reset() {
	t.Model.SetValue("")
}
