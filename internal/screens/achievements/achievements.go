// Package achievements shows the achievement catalog with the user's
// progress.
package achievements

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/proctor/internal/achievements"
	"github.com/abhisek/proctor/internal/exam"
	"github.com/abhisek/proctor/internal/router"
	"github.com/abhisek/proctor/internal/screen"
	"github.com/abhisek/proctor/internal/screens/summary"
	"github.com/abhisek/proctor/internal/ui/layout"
	"github.com/abhisek/proctor/internal/ui/theme"
)

type filter int

const (
	filterAll filter = iota
	filterEarned
	filterLocked
	filterCount
)

func (f filter) String() string {
	switch f {
	case filterEarned:
		return "Earned"
	case filterLocked:
		return "Locked"
	default:
		return "All"
	}
}

type loadedMsg struct {
	List []achievements.Status
	Err  error
}

// Screen lists every achievement, earned or not.
type Screen struct {
	svc          *exam.Service
	userID       int64
	list         []achievements.Status
	filter       filter
	scrollOffset int
	loaded       bool
	errMsg       string
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

// New creates the achievements screen for userID.
func New(svc *exam.Service, userID int64) *Screen {
	return &Screen{svc: svc, userID: userID}
}

func (s *Screen) Init() tea.Cmd {
	svc, userID := s.svc, s.userID
	return func() tea.Msg {
		list, err := svc.RequestAchievements(context.Background(), userID)
		return loadedMsg{List: list, Err: err}
	}
}

func (s *Screen) Title() string {
	return "Achievements"
}

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Filter"},
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.list = msg.List
		}
		s.loaded = true
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "tab":
			s.filter = (s.filter + 1) % filterCount
			s.scrollOffset = 0
		case "shift+tab":
			s.filter = (s.filter - 1 + filterCount) % filterCount
			s.scrollOffset = 0
		case "up", "k":
			if s.scrollOffset > 0 {
				s.scrollOffset--
			}
		case "down", "j":
			if s.scrollOffset < len(s.filtered())-1 {
				s.scrollOffset++
			}
		}
	}
	return s, nil
}

func (s *Screen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render("\n\nStatistics are unavailable right now. Try again later.")
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading achievements...")
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.Text).
		Render(fmt.Sprintf("\nEarned: %d of %d\n", s.count(filterEarned), len(s.list))))
	b.WriteString("\n")

	var tabs []string
	for f := filterAll; f < filterCount; f++ {
		label := fmt.Sprintf("%s (%d)", f, s.count(f))
		style := lipgloss.NewStyle().Foreground(theme.TextDim)
		if f == s.filter {
			style = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
		}
		tabs = append(tabs, style.Render(label))
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.Join(tabs, "     ")))
	b.WriteString("\n\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", min(width-8, 60)))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n\n")

	items := s.filtered()
	if len(items) == 0 {
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("Nothing here yet"))
		return b.String()
	}

	maxVisible := max(height-10, 3)
	start := s.scrollOffset
	end := min(start+maxVisible, len(items))

	for _, st := range items[start:end] {
		mark := "🔒"
		style := lipgloss.NewStyle().Foreground(theme.TextDim)
		if st.Earned {
			mark = st.ID.Icon()
			style = lipgloss.NewStyle().Foreground(summary.RarityColor(st.Rarity))
		}
		line := fmt.Sprintf("%s %-14s %-10s %s", mark, st.Name, st.Rarity.DisplayName(), st.Description)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")
	}

	if end < len(items) {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render(fmt.Sprintf("... %d more", len(items)-end)))
	}
	return b.String()
}

func (s *Screen) filtered() []achievements.Status {
	if s.filter == filterAll {
		return s.list
	}
	var out []achievements.Status
	for _, st := range s.list {
		if st.Earned == (s.filter == filterEarned) {
			out = append(out, st)
		}
	}
	return out
}

func (s *Screen) count(f filter) int {
	if f == filterAll {
		return len(s.list)
	}
	n := 0
	for _, st := range s.list {
		if st.Earned == (f == filterEarned) {
			n++
		}
	}
	return n
}
