package components

import (
	tea "charm.land/bubbletea/v2"
)

// MenuItem represents a single item in a navigation menu.
type MenuItem struct {
	Label    string
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical navigation menu. Selection skips disabled items and
// wraps at both ends.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu creates a new menu with the first enabled item selected.
func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items, Selected: -1}
	for i, item := range items {
		if !item.Disabled {
			m.Selected = i
			break
		}
	}
	return m
}

// Update handles keyboard navigation.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok || m.Selected < 0 {
		return m, nil
	}

	switch kmsg.String() {
	case "up", "k":
		m.Selected = m.step(-1)
	case "down", "j", "tab":
		m.Selected = m.step(1)
	case "enter":
		item := m.Items[m.Selected]
		if item.Action != nil && !item.Disabled {
			return m, item.Action()
		}
	}
	return m, nil
}

func (m Menu) step(dir int) int {
	n := len(m.Items)
	for i := 1; i <= n; i++ {
		idx := ((m.Selected+dir*i)%n + n) % n
		if !m.Items[idx].Disabled {
			return idx
		}
	}
	return m.Selected
}

// Labels returns the item labels in order.
func (m Menu) Labels() []string {
	out := make([]string, len(m.Items))
	for i, item := range m.Items {
		out[i] = item.Label
	}
	return out
}

// DisabledSet returns the indexes of disabled items.
func (m Menu) DisabledSet() map[int]bool {
	out := make(map[int]bool)
	for i, item := range m.Items {
		if item.Disabled {
			out[i] = true
		}
	}
	return out
}

// View renders the menu as arcade buttons.
func (m Menu) View(cw int, compact bool) string {
	return ArcadeMenu(m.Labels(), m.Selected, m.DisabledSet(), cw, compact)
}
