package app

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/proctor/internal/exam"
	"github.com/abhisek/proctor/internal/router"
	"github.com/abhisek/proctor/internal/screen"
	"github.com/abhisek/proctor/internal/screens/home"
	sessionscreen "github.com/abhisek/proctor/internal/screens/session"
	"github.com/abhisek/proctor/internal/screens/welcome"
	"github.com/abhisek/proctor/internal/session"
	"github.com/abhisek/proctor/internal/ui/layout"
)

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	svc    *exam.Service
	userID int64
	width  int
	height int
}

// newAppModel creates a new AppModel that opens on the welcome screen.
func newAppModel(svc *exam.Service, userID int64) AppModel {
	next := func() screen.Screen { return home.New(svc, userID) }
	return AppModel{
		router: router.New(welcome.New(next)),
		svc:    svc,
		userID: userID,
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case sessionscreen.ExpiredMsg:
		// Screens under the active one may hold stale session state too.
		return m, m.router.Broadcast(msg)
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// status is the right-hand header text: the running countdown, or the user.
func (m AppModel) status() string {
	if v, err := m.svc.Status(m.userID); err == nil && v.State == session.StateInProgress {
		return "⏱ " + exam.FormatRemaining(v.Remaining)
	}
	return fmt.Sprintf("user %d", m.userID)
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.status(), m.width)

	var footerHints []layout.KeyHint
	if p, ok := active.(screen.KeyHintProvider); ok {
		footerHints = append(p.KeyHints(), layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program for the local user. Expiry notices from
// the session timer are delivered into the program as messages.
func Run(svc *exam.Service, userID int64, logger *zap.Logger) error {
	p := tea.NewProgram(newAppModel(svc, userID))

	svc.Sessions().SetNotifier(session.NotifierFunc(func(_ context.Context, uid int64, testName string) error {
		if uid == userID {
			p.Send(sessionscreen.ExpiredMsg{UserID: uid, TestName: testName})
		}
		return nil
	}))

	if _, err := p.Run(); err != nil {
		logger.Error("terminal ui exited", zap.Error(err))
		return fmt.Errorf("run terminal ui: %w", err)
	}
	return nil
}
