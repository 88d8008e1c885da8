// Package theme defines color themes for the fitrack dashboard.
package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme maps dashboard roles to colors.
type Theme struct {
	Name         string
	Background   lipgloss.Color
	Surface      lipgloss.Color // cards and bars
	SurfaceHover lipgloss.Color // selected row
	Border       lipgloss.Color
	BorderAccent lipgloss.Color // focused card, help overlay
	TextDim      lipgloss.Color
	TextMuted    lipgloss.Color
	TextPrimary  lipgloss.Color
	Accent       lipgloss.Color
	AccentBright lipgloss.Color
	Gain         lipgloss.Color // growth and reached milestones
	Loss         lipgloss.Color // shrinking balances, failed saves
	Warn         lipgloss.Color // read-only mode, pending saves
	Goal         lipgloss.Color // goal bar fill
}

// Active is the currently selected theme.
var Active = FlexokiDark

// FlexokiDark is the default, a warm paper-inspired dark theme.
var FlexokiDark = Theme{
	Name:         "flexoki-dark",
	Background:   lipgloss.Color("#100F0F"),
	Surface:      lipgloss.Color("#1C1B1A"),
	SurfaceHover: lipgloss.Color("#282726"),
	Border:       lipgloss.Color("#403E3C"),
	BorderAccent: lipgloss.Color("#3AA99F"),
	TextDim:      lipgloss.Color("#575653"),
	TextMuted:    lipgloss.Color("#878580"),
	TextPrimary:  lipgloss.Color("#FFFCF0"),
	Accent:       lipgloss.Color("#3AA99F"),
	AccentBright: lipgloss.Color("#5BC8BE"),
	Gain:         lipgloss.Color("#879A39"),
	Loss:         lipgloss.Color("#D14D41"),
	Warn:         lipgloss.Color("#DA702C"),
	Goal:         lipgloss.Color("#D0A215"),
}

// CatppuccinMocha is a soft pastel theme.
var CatppuccinMocha = Theme{
	Name:         "catppuccin-mocha",
	Background:   lipgloss.Color("#1E1E2E"),
	Surface:      lipgloss.Color("#313244"),
	SurfaceHover: lipgloss.Color("#45475A"),
	Border:       lipgloss.Color("#585B70"),
	BorderAccent: lipgloss.Color("#89B4FA"),
	TextDim:      lipgloss.Color("#6C7086"),
	TextMuted:    lipgloss.Color("#A6ADC8"),
	TextPrimary:  lipgloss.Color("#CDD6F4"),
	Accent:       lipgloss.Color("#89B4FA"),
	AccentBright: lipgloss.Color("#B4D0FB"),
	Gain:         lipgloss.Color("#A6E3A1"),
	Loss:         lipgloss.Color("#F38BA8"),
	Warn:         lipgloss.Color("#FAB387"),
	Goal:         lipgloss.Color("#F9E2AF"),
}

// Terminal uses ANSI 16 colors only.
var Terminal = Theme{
	Name:         "terminal",
	Background:   lipgloss.Color("0"),
	Surface:      lipgloss.Color("0"),
	SurfaceHover: lipgloss.Color("8"),
	Border:       lipgloss.Color("8"),
	BorderAccent: lipgloss.Color("6"),
	TextDim:      lipgloss.Color("8"),
	TextMuted:    lipgloss.Color("7"),
	TextPrimary:  lipgloss.Color("15"),
	Accent:       lipgloss.Color("6"),
	AccentBright: lipgloss.Color("14"),
	Gain:         lipgloss.Color("2"),
	Loss:         lipgloss.Color("1"),
	Warn:         lipgloss.Color("3"),
	Goal:         lipgloss.Color("11"),
}

// All available themes.
var All = []Theme{FlexokiDark, CatppuccinMocha, Terminal}

// ByName returns a theme by name, ignoring case. Unknown names get FlexokiDark.
func ByName(name string) Theme {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}

// Names lists theme names in display order.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}
