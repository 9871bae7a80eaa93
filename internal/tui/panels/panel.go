// Package panels implements the tool panels of the AirDevs console.
//
// Each panel wraps one backend capability: the LLM chat, the web
// crawler, the document tagger, the graph path finder, and the photo
// analyzer conversation. The root TUI model owns exactly one instance
// of each and routes messages to the active panel; background work runs
// as tea.Cmd goroutines that report back with panel-specific messages.
package panels

import (
	"time"

	"github.com/airdevs/console/internal/tui/events"
	"github.com/charmbracelet/bubbles/v2/spinner"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
)

// Panel is the interface every tool panel implements. Update mutates
// the panel in place; panels are always held by pointer.
type Panel interface {
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View() string
	SetSize(width, height int) tea.Cmd

	// Name is the tab label.
	Name() string
	// Hints describes the panel's key bindings for the status bar.
	Hints() string
}

// requestTimeout bounds every user-initiated backend call. The photo
// analyzer's scheduled dispatches manage their own contexts.
const requestTimeout = 120 * time.Second

var workingDots = spinner.Spinner{
	Frames: []string{
		"⠋ Working",
		"⠙ Working.",
		"⠹ Working..",
		"⠸ Working...",
		"⠼ Working....",
		"⠴ Working.....",
		"⠦ Working......",
		"⠧ Working.....",
		"⠇ Working....",
		"⠏ Working...",
		"⠏ Working..",
		"⠏ Working.",
	},
	FPS: time.Second / 10,
}

// Helper to create a styled spinner.
func newStyledSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = workingDots
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return s
}

// publishStatus pushes a message into the shared status slot. The slot
// shows the latest message only, so later errors overwrite earlier ones.
func publishStatus(broker *events.Broker, message, msgType string) {
	if broker == nil {
		return
	}
	broker.PublishAsync(events.Event{
		Type:    events.StatusMessageEvent,
		Payload: events.StatusMessagePayload{Message: message, Type: msgType},
	})
}
