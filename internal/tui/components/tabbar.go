package components

import (
	"strings"

	"github.com/theirongolddev/fitrack/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int // position of the shortcut letter in the name (-1 if not in name)
}

// Tabs defines all available tabs.
var Tabs = []Tab{
	{Name: "Overview", Key: 'o', KeyPos: 0},
	{Name: "Accounts", Key: 'a', KeyPos: 0},
	{Name: "Earnings", Key: 'e', KeyPos: 0},
	{Name: "Milestones", Key: 'm', KeyPos: 0},
}

// TabWidth is the rendered width of tab i when active is selected.
func TabWidth(i, active int) int {
	w := lipgloss.Width(Tabs[i].Name) + 2
	if i != active && Tabs[i].KeyPos < 0 {
		w += 3
	}
	return w
}

// RenderTabBar renders a single-row tab bar. Inactive tabs highlight
// their shortcut letter.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.SurfaceHover).
		Bold(true).
		Padding(0, 1)
	inactiveStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)
	keyStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface).
		Bold(true)
	padStyle := lipgloss.NewStyle().Background(t.Surface)
	sepStyle := lipgloss.NewStyle().Foreground(t.Border).Background(t.Surface)

	parts := make([]string, len(Tabs))
	for i, tab := range Tabs {
		if i == activeIdx {
			parts[i] = activeStyle.Render(tab.Name)
			continue
		}
		var b strings.Builder
		b.WriteString(padStyle.Render(" "))
		if tab.KeyPos >= 0 && tab.KeyPos < len(tab.Name) {
			b.WriteString(inactiveStyle.Render(tab.Name[:tab.KeyPos]))
			b.WriteString(keyStyle.Render(string(tab.Name[tab.KeyPos])))
			b.WriteString(inactiveStyle.Render(tab.Name[tab.KeyPos+1:]))
		} else {
			b.WriteString(inactiveStyle.Render(tab.Name))
			b.WriteString(sepStyle.Render("[") + keyStyle.Render(string(tab.Key)) + sepStyle.Render("]"))
		}
		b.WriteString(padStyle.Render(" "))
		parts[i] = b.String()
	}

	row := strings.Join(parts, sepStyle.Render("│"))
	return lipgloss.NewStyle().Background(t.Surface).Width(width).Render(row)
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}

// TabAtX maps a column in the tab bar to a tab index, or -1.
func TabAtX(x, active int) int {
	pos := 0
	for i := range Tabs {
		w := TabWidth(i, active)
		if x >= pos && x < pos+w {
			return i
		}
		pos += w + 1 // separator
	}
	return -1
}
