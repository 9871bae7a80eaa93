package styles

import (
	"image/color"
	"sync"

	"github.com/charmbracelet/lipgloss/v2"
)

// Theme holds the semantic colors the panels draw with.
type Theme struct {
	Name   string
	IsDark bool

	// Brand colors
	Primary   color.Color
	Secondary color.Color

	// Background colors
	BgBase   color.Color
	BgSubtle color.Color

	// Foreground colors
	FgBase  color.Color
	FgMuted color.Color

	// Border colors
	Border      color.Color
	BorderFocus color.Color

	// Semantic colors
	Success color.Color
	Error   color.Color
	Warning color.Color
	Info    color.Color
}

// Title returns the style for panel titles.
func (t *Theme) Title() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(t.Primary)
}

// Muted returns the style for secondary text.
func (t *Theme) Muted() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.FgMuted)
}

// ErrorText returns the style for error text.
func (t *Theme) ErrorText() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error)
}

func darkTheme() *Theme {
	return &Theme{
		Name:        "dark",
		IsDark:      true,
		Primary:     lipgloss.Color("205"),
		Secondary:   lipgloss.Color("99"),
		BgBase:      lipgloss.Color("235"),
		BgSubtle:    lipgloss.Color("237"),
		FgBase:      lipgloss.Color("252"),
		FgMuted:     lipgloss.Color("241"),
		Border:      lipgloss.Color("240"),
		BorderFocus: lipgloss.Color("205"),
		Success:     lipgloss.Color("42"),
		Error:       lipgloss.Color("196"),
		Warning:     lipgloss.Color("214"),
		Info:        lipgloss.Color("39"),
	}
}

func lightTheme() *Theme {
	return &Theme{
		Name:        "light",
		IsDark:      false,
		Primary:     lipgloss.Color("162"),
		Secondary:   lipgloss.Color("57"),
		BgBase:      lipgloss.Color("255"),
		BgSubtle:    lipgloss.Color("254"),
		FgBase:      lipgloss.Color("235"),
		FgMuted:     lipgloss.Color("245"),
		Border:      lipgloss.Color("250"),
		BorderFocus: lipgloss.Color("162"),
		Success:     lipgloss.Color("28"),
		Error:       lipgloss.Color("160"),
		Warning:     lipgloss.Color("130"),
		Info:        lipgloss.Color("26"),
	}
}

// Manager tracks the active theme.
type Manager struct {
	mu      sync.RWMutex
	current *Theme
}

// NewManager creates a manager with the named theme active.
func NewManager(name string) *Manager {
	m := &Manager{}
	m.SetTheme(name)
	return m
}

// SetTheme switches the active theme. Unknown names fall back to dark.
func (m *Manager) SetTheme(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch name {
	case "light":
		m.current = lightTheme()
	default:
		m.current = darkTheme()
	}
}

// Theme returns the active theme.
func (m *Manager) Theme() *Theme {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

var defaultManager = NewManager("dark")

// SetDefaultManager replaces the package-level theme manager.
func SetDefaultManager(m *Manager) {
	if m != nil {
		defaultManager = m
	}
}

// CurrentTheme returns the active theme of the default manager.
func CurrentTheme() *Theme {
	return defaultManager.Theme()
}
