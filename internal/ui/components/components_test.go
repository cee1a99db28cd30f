package components

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
)

func key(s string) tea.KeyPressMsg {
	switch s {
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

func TestMenuSkipsDisabledAndWraps(t *testing.T) {
	m := NewMenu([]MenuItem{
		{Label: "a", Disabled: true},
		{Label: "b"},
		{Label: "c", Disabled: true},
		{Label: "d"},
	})
	assert.Equal(t, 1, m.Selected)

	m, _ = m.Update(key("down"))
	assert.Equal(t, 3, m.Selected)

	m, _ = m.Update(key("down"))
	assert.Equal(t, 1, m.Selected, "wraps past the end")

	m, _ = m.Update(key("up"))
	assert.Equal(t, 3, m.Selected, "wraps past the start")
}

func TestMenuEnterRunsAction(t *testing.T) {
	ran := false
	m := NewMenu([]MenuItem{{Label: "go", Action: func() tea.Cmd { ran = true; return nil }}})
	m.Update(key("enter"))
	assert.True(t, ran)
}

func TestOptionPicker(t *testing.T) {
	p := NewOptionPicker("Q?", []string{"A", "B", "C"}, "B")
	assert.Equal(t, 1, p.Selected, "starts on the recorded answer")

	p, _ = p.Update(key("down"))
	assert.Equal(t, "C", p.Choice())
	assert.False(t, p.Picked)

	p, _ = p.Update(key("1"))
	assert.True(t, p.Picked)
	assert.Equal(t, "A", p.Choice())

	p, _ = p.Update(key("down"))
	assert.Equal(t, "A", p.Choice(), "picked pickers ignore input")
}

func TestOptionPickerIgnoresOutOfRangeHotkey(t *testing.T) {
	p := NewOptionPicker("Q?", []string{"A", "B"}, "")
	p, _ = p.Update(key("5"))
	assert.False(t, p.Picked)
}

func TestAnswerSheetCount(t *testing.T) {
	in := NewAnswerSheetInput(3)
	assert.Equal(t, 0, in.Count())

	in.Model.SetValue("A, B")
	assert.Equal(t, 2, in.Count())

	in.Model.SetValue("A,B,C")
	assert.Equal(t, 3, in.Count())
	assert.Contains(t, in.View(), "3/3 answers")
}

func TestAllowedSheetKey(t *testing.T) {
	for _, c := range []byte("aZ9, ") {
		assert.True(t, allowedSheetKey(c), string(c))
	}
	for _, c := range []byte(";-!") {
		assert.False(t, allowedSheetKey(c), string(c))
	}
}

func TestContentWidthBounds(t *testing.T) {
	assert.Equal(t, 20, ContentWidth(10))
	assert.Equal(t, 60, ContentWidth(200))
	assert.Equal(t, 44, ContentWidth(50))
}
