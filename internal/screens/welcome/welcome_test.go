package welcome

import (
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/proctor/internal/router"
	"github.com/abhisek/proctor/internal/screen"
)

const tagline = "Timed tests. Instant results."

func advance(w *WelcomeScreen, ticks int) {
	for range ticks {
		w.Update(tickMsg(time.Now()))
	}
}

func TestStopwatchHand(t *testing.T) {
	// The hand rests on frame 0 until handStart, then moves one frame per tick.
	tests := []struct {
		ticks int
		frame int
	}{
		{0, 0},
		{4, 0},
		{5, 1},
		{6, 2},
		{7, 3},
		{8, 0},
		{9, 1},
	}
	for _, tt := range tests {
		w := New(nil)
		advance(w, tt.ticks)
		got := w.stopwatch()
		assert.Contains(t, got, handFrames[tt.frame], "after %d ticks", tt.ticks)
		for i, f := range handFrames {
			if i != tt.frame {
				assert.NotContains(t, got, f, "after %d ticks", tt.ticks)
			}
		}
	}
}

func TestHandKeepsSweepingPastTotalDuration(t *testing.T) {
	w := New(nil)
	advance(w, int(totalDur/tickInterval)+10)
	assert.Equal(t, totalDur, w.elapsed)

	before := w.stopwatch()
	advance(w, 1)
	assert.NotEqual(t, before, w.stopwatch())
}

func TestBannerAppearsWithTagline(t *testing.T) {
	w := New(nil)
	advance(w, int(bannerStart/tickInterval)-1)
	assert.NotContains(t, w.View(100, 40), tagline)

	advance(w, 1)
	view := w.View(100, 40)
	assert.Contains(t, view, tagline)
	assert.Contains(t, view, "press any key to continue")
}

func TestAnyKeyReplacesWithNextScreen(t *testing.T) {
	for _, ticks := range []int{0, 3, int(totalDur / tickInterval)} {
		built := 0
		var target *WelcomeScreen
		w := New(func() screen.Screen {
			built++
			target = New(nil)
			return target
		})
		advance(w, ticks)

		_, cmd := w.Update(tea.KeyPressMsg{Code: ' ', Text: " "})
		require.NotNil(t, cmd, "after %d ticks", ticks)
		msg, ok := cmd().(router.ReplaceScreenMsg)
		require.True(t, ok)
		assert.Same(t, target, msg.Screen)
		assert.Equal(t, 1, built)
		assert.True(t, w.done)

		_, cmd = w.Update(tea.KeyPressMsg{Code: 'q', Text: "q"})
		assert.Nil(t, cmd)
		assert.Equal(t, 1, built, "next is built once")
	}
}

func TestTicksNeverLeaveTheScreen(t *testing.T) {
	built := 0
	w := New(func() screen.Screen { built++; return nil })

	for range int(totalDur/tickInterval) + 5 {
		_, cmd := w.Update(tickMsg(time.Now()))
		require.NotNil(t, cmd, "ticking continues")
	}
	assert.Zero(t, built)
	assert.False(t, w.done)
	assert.Empty(t, w.Title())
}

func TestCompactBannerOnNarrowTerminal(t *testing.T) {
	assert.Contains(t, RenderTitle(40), bannerCompact)
	assert.NotContains(t, RenderTitle(120), bannerCompact)
}
