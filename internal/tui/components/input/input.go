// Package input provides the single-line text input the panels share.
package input

import (
	"strings"

	"github.com/airdevs/console/internal/tui/components/core"
	"github.com/airdevs/console/internal/tui/styles"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
)

// Model is a basic single-line input that works reliably
type Model struct {
	value       string
	placeholder string
	cursorPos   int
	width       int
	height      int
	focused     bool
	enabled     bool
}

// Ensure Model implements required interfaces
var _ core.Component = (*Model)(nil)
var _ core.Sizeable = (*Model)(nil)
var _ core.Focusable = (*Model)(nil)

// New creates a new input component
func New(placeholder string) *Model {
	return &Model{
		value:       "",
		placeholder: placeholder,
		cursorPos:   0,
		focused:     true,
		enabled:     true,
	}
}

// Init initializes the input component
func (im *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the input component
func (im *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if !im.enabled || !im.focused {
		return im, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "backspace":
			if im.cursorPos > 0 {
				im.value = im.value[:im.cursorPos-1] + im.value[im.cursorPos:]
				im.cursorPos--
			}
		case "delete":
			if im.cursorPos < len(im.value) {
				im.value = im.value[:im.cursorPos] + im.value[im.cursorPos+1:]
			}
		case "left":
			if im.cursorPos > 0 {
				im.cursorPos--
			}
		case "right":
			if im.cursorPos < len(im.value) {
				im.cursorPos++
			}
		case "home", "ctrl+a":
			im.cursorPos = 0
		case "end", "ctrl+e":
			im.cursorPos = len(im.value)
		case "ctrl+k":
			// Kill to end of line
			im.value = im.value[:im.cursorPos]
		case "ctrl+u":
			// Kill to beginning of line
			im.value = im.value[im.cursorPos:]
			im.cursorPos = 0
		case "space":
			// Bubble Tea v2 reports space as "space", not " "
			im.value = im.value[:im.cursorPos] + " " + im.value[im.cursorPos:]
			im.cursorPos++
		case "enter", "tab", "esc", "ctrl+c", "ctrl+l":
			// Don't handle these - let parent handle them
			return im, nil
		default:
			// Regular character input
			if len(msg.String()) == 1 && msg.String()[0] >= 33 && msg.String()[0] < 127 {
				im.value = im.value[:im.cursorPos] + msg.String() + im.value[im.cursorPos:]
				im.cursorPos++
			}
		}
	}

	return im, nil
}

// SetSize sets the dimensions of the input component
func (im *Model) SetSize(width, height int) tea.Cmd {
	im.width = width
	im.height = height
	return nil
}

// View renders the input component
func (im *Model) View() string {
	theme := styles.CurrentTheme()

	inputStyle := lipgloss.NewStyle().
		Width(im.width - 2).
		Padding(0, 1)

	var display string
	if im.value == "" && im.placeholder != "" {
		display = inputStyle.Foreground(theme.FgMuted).Render(im.placeholder)
	} else if im.focused && im.enabled {
		// Show value with cursor
		before := im.value[:im.cursorPos]
		after := ""
		cursor := " "

		if im.cursorPos < len(im.value) {
			cursor = string(im.value[im.cursorPos])
			after = im.value[im.cursorPos+1:]
		}

		cursorStyle := lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(theme.BgBase)

		display = inputStyle.Render(before + cursorStyle.Render(cursor) + after)
	} else {
		display = inputStyle.Render(im.value)
	}

	return display
}

// Focus focuses the input component
func (im *Model) Focus() tea.Cmd {
	im.focused = true
	return nil
}

// Blur removes focus from the input component
func (im *Model) Blur() tea.Cmd {
	im.focused = false
	return nil
}

// Focused returns whether the input component is focused
func (im *Model) Focused() bool {
	return im.focused
}

// Value returns the current input value
func (im *Model) Value() string {
	return im.value
}

// SetValue sets the input value
func (im *Model) SetValue(value string) {
	im.value = value
	im.cursorPos = len(value)
}

// Reset clears the input
func (im *Model) Reset() {
	im.value = ""
	im.cursorPos = 0
}

// SetEnabled enables or disables the input
func (im *Model) SetEnabled(enabled bool) {
	im.enabled = enabled
}

// IsEmpty returns true if the input is empty
func (im *Model) IsEmpty() bool {
	return strings.TrimSpace(im.value) == ""
}

// SetPlaceholder sets the placeholder text
func (im *Model) SetPlaceholder(placeholder string) {
	im.placeholder = placeholder
}
