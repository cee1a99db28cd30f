package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/proctor/internal/router"
	"github.com/abhisek/proctor/internal/screen"
	"github.com/abhisek/proctor/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	handStart    = 500 * time.Millisecond  // the hand starts sweeping
	bannerStart  = 1500 * time.Millisecond // banner, tagline and hint appear
	totalDur     = 4500 * time.Millisecond
)

// stopwatchArt has a {hand} placeholder on the dial's center row.
const stopwatchArt = `      ╭───╮
      ╰─┬─╯
   ╭────┴────╮
  ╱     │     ╲
 │      {hand}    │
 │             │
  ╲           ╱
   ╰─────────╯`

// handFrames sweep clockwise, one per tick.
var handFrames = []string{"●──", "●╲ ", "●│ ", "●╱ "}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// WelcomeScreen is the splash shown at startup. Any key moves on to the
// screen built by next.
type WelcomeScreen struct {
	next    func() screen.Screen
	elapsed time.Duration
	frame   int
	done    bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

func New(next func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{next: next}
}

func (w *WelcomeScreen) Title() string { return "" }

func (w *WelcomeScreen) Init() tea.Cmd { return tick() }

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		w.elapsed = min(w.elapsed+tickInterval, totalDur)
		if w.elapsed >= handStart {
			w.frame++
		}
		return w, tick()
	case tea.KeyPressMsg:
		if w.done {
			return w, nil
		}
		w.done = true
		s := w.next()
		return w, func() tea.Msg { return router.ReplaceScreenMsg{Screen: s} }
	}
	return w, nil
}

func (w *WelcomeScreen) stopwatch() string {
	hand := handFrames[0]
	if w.elapsed >= handStart {
		hand = handFrames[w.frame%len(handFrames)]
	}
	art := strings.Replace(stopwatchArt, "{hand}", hand, 1)
	return lipgloss.NewStyle().Foreground(theme.Primary).Render(art)
}

func (w *WelcomeScreen) View(width, height int) string {
	parts := []string{w.stopwatch()}

	if w.elapsed >= bannerStart {
		parts = append(parts,
			"",
			RenderBanner(width, theme.Primary),
			"",
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render("Timed tests. Instant results."),
			"",
			lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render("press any key to continue"),
		)
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, parts...))
}
