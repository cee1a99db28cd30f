package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/proctor/internal/exam"
	"github.com/abhisek/proctor/internal/router"
	"github.com/abhisek/proctor/internal/screen"
	"github.com/abhisek/proctor/internal/screens/achievements"
	"github.com/abhisek/proctor/internal/screens/history"
	sessionscreen "github.com/abhisek/proctor/internal/screens/session"
	"github.com/abhisek/proctor/internal/screens/tests"
	sess "github.com/abhisek/proctor/internal/session"
	"github.com/abhisek/proctor/internal/ui/components"
)

// dashboardMsg carries the numbers shown above the menu.
type dashboardMsg struct {
	TotalTests int
	Average    float64
	Earned     int
	Running    *sess.View
	Err        error
}

// HomeScreen is the main menu.
type HomeScreen struct {
	svc    *exam.Service
	userID int64
	menu   components.Menu

	dash   dashboardMsg
	loaded bool
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.Refresher = (*HomeScreen)(nil)

// New creates a new HomeScreen for userID.
func New(svc *exam.Service, userID int64) *HomeScreen {
	h := &HomeScreen{svc: svc, userID: userID}
	h.menu = h.buildMenu()
	return h
}

func (h *HomeScreen) buildMenu() components.Menu {
	push := func(s func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			return func() tea.Msg { return router.PushScreenMsg{Screen: s()} }
		}
	}

	var items []components.MenuItem
	if h.dash.Running != nil {
		items = append(items, components.MenuItem{
			Label:  "RESUME TEST",
			Action: push(func() screen.Screen { return sessionscreen.Resume(h.svc, h.userID) }),
		})
	}
	items = append(items,
		components.MenuItem{
			Label:    "TAKE A TEST",
			Disabled: len(h.svc.Tests()) == 0,
			Action:   push(func() screen.Screen { return tests.New(h.svc, h.userID) }),
		},
		components.MenuItem{
			Label:  "MY HISTORY",
			Action: push(func() screen.Screen { return history.New(h.svc, h.userID) }),
		},
		components.MenuItem{
			Label:  "ACHIEVEMENTS",
			Action: push(func() screen.Screen { return achievements.New(h.svc, h.userID) }),
		},
		components.MenuItem{
			Label:  "EXIT",
			Action: func() tea.Cmd { return tea.Quit },
		},
	)
	return components.NewMenu(items)
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.load()
}

// Refresh reloads the dashboard when the user comes back from a sub-screen.
func (h *HomeScreen) Refresh() tea.Cmd {
	return h.load()
}

func (h *HomeScreen) load() tea.Cmd {
	svc, userID := h.svc, h.userID
	return func() tea.Msg {
		var msg dashboardMsg
		if v, err := svc.Status(userID); err == nil && v.State == sess.StateInProgress {
			msg.Running = &v
		}
		ctx := context.Background()
		sum, err := svc.RequestStats(ctx, userID)
		if err != nil {
			msg.Err = err
			return msg
		}
		msg.TotalTests = sum.TotalTests
		msg.Average = sum.AveragePercent
		list, err := svc.RequestAchievements(ctx, userID)
		if err != nil {
			msg.Err = err
			return msg
		}
		for _, a := range list {
			if a.Earned {
				msg.Earned++
			}
		}
		return msg
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardMsg:
		h.dash = msg
		h.loaded = true
		h.menu = h.buildMenu()
		return h, nil
	case sessionscreen.ExpiredMsg:
		if msg.UserID == h.userID {
			return h, h.load()
		}
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; add back header, footer and frame gaps
	termHeight := height + 8
	compact := termHeight < 30 || width < 100

	cw := components.ContentWidth(width)

	sections := []string{
		renderTitle(width, cw),
		renderStatsBar(h.dash, h.loaded, h.svc.Sessions().TimeLimit(), cw, compact),
	}
	if h.dash.Running != nil {
		sections = append(sections, renderRunning(*h.dash.Running, cw))
	}
	if len(h.svc.Tests()) == 0 {
		sections = append(sections, renderEmptyBank(cw))
	}
	sections = append(sections, h.menu.View(cw, compact && termHeight < 26))

	return components.CabinetFrame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
