// Package tests is the test picker.
package tests

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/proctor/internal/bank"
	"github.com/abhisek/proctor/internal/exam"
	"github.com/abhisek/proctor/internal/router"
	"github.com/abhisek/proctor/internal/screen"
	sessionscreen "github.com/abhisek/proctor/internal/screens/session"
	sess "github.com/abhisek/proctor/internal/session"
	"github.com/abhisek/proctor/internal/ui/components"
	"github.com/abhisek/proctor/internal/ui/layout"
	"github.com/abhisek/proctor/internal/ui/theme"
)

// PickerScreen lists the bank and starts the chosen test.
type PickerScreen struct {
	svc     *exam.Service
	userID  int64
	tests   []bank.Summary
	menu    components.Menu
	running string // name of a test in progress, if any
}

var _ screen.Screen = (*PickerScreen)(nil)
var _ screen.KeyHintProvider = (*PickerScreen)(nil)

// New creates a picker over the service's tests.
func New(svc *exam.Service, userID int64) *PickerScreen {
	p := &PickerScreen{svc: svc, userID: userID, tests: svc.Tests()}
	items := make([]components.MenuItem, 0, len(p.tests))
	for _, t := range p.tests {
		id := t.ID
		items = append(items, components.MenuItem{
			Label: fmt.Sprintf("%s (%d questions)", t.Name, t.QuestionCount),
			Action: func() tea.Cmd {
				return func() tea.Msg {
					return router.ReplaceScreenMsg{Screen: sessionscreen.New(svc, userID, id)}
				}
			},
		})
	}
	p.menu = components.NewMenu(items)
	if v, err := svc.Status(userID); err == nil && v.State == sess.StateInProgress {
		p.running = v.TestName
	}
	return p
}

func (p *PickerScreen) Init() tea.Cmd { return nil }

func (p *PickerScreen) Title() string { return "Choose a test" }

func (p *PickerScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Start"},
		{Key: "Esc", Description: "Back"},
	}
}

func (p *PickerScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok && kmsg.String() == "esc" {
		return p, func() tea.Msg { return router.PopScreenMsg{} }
	}
	var cmd tea.Cmd
	p.menu, cmd = p.menu.Update(msg)
	return p, cmd
}

func (p *PickerScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	if len(p.tests) == 0 {
		return components.CabinetFrame(components.ArcadeCard(
			"There are no tests yet.\n\nTo add a test:\n1. Put a JSON file in the tests directory\n2. Put its PDF in the pdf directory", cw), width, height)
	}

	var sections []string
	sections = append(sections, lipgloss.NewStyle().
		Foreground(theme.Text).Bold(true).Width(cw).Align(lipgloss.Center).
		Render(fmt.Sprintf("You will have %s once you start.", exam.FormatLimit(p.svc.Sessions().TimeLimit()))))
	if p.running != "" {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.Warning).Width(cw).Align(lipgloss.Center).
			Render(fmt.Sprintf("Starting a test ends '%s', which is still running.", p.running)))
	}

	labels := p.menu.Labels()
	lines := make([]string, len(labels))
	for i, l := range labels {
		style := theme.Unselected
		prefix := "  "
		if i == p.menu.Selected {
			style = theme.Selected
			prefix = "▸ "
		}
		lines[i] = style.Render(prefix + l)
	}
	sections = append(sections, components.ArcadeCard(strings.Join(lines, "\n"), cw))

	return components.CabinetFrame(strings.Join(sections, "\n\n"), width, height)
}
