package tui

import (
	"context"
	"time"

	"github.com/airdevs/console/internal/app"
	"github.com/airdevs/console/internal/tui/components/status"
	"github.com/airdevs/console/internal/tui/events"
	"github.com/airdevs/console/internal/tui/panels"
	"github.com/airdevs/console/internal/tui/styles"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
)

// Model is the root TUI model. It owns the tab bar, the five tool
// panels and the status bar, and pumps broker events into the Bubble
// Tea loop.
type Model struct {
	width  int
	height int

	panels []panels.Panel
	active int

	// photo is also in panels; kept separately because conversation
	// events go to it even when another tab is active.
	photo *panels.PhotoPanel

	statusBar *status.Component

	eventBroker *events.Broker
	eventSub    <-chan events.Event

	// App holds all business logic
	app *app.App
}

// New creates the root TUI model from an app instance and event broker
func New(appInstance *app.App, eventBroker *events.Broker) *Model {
	styles.SetDefaultManager(styles.NewManager(appInstance.Config.Theme))

	photo := panels.NewPhotoPanel(appInstance.Conversation, eventBroker)

	m := &Model{
		panels: []panels.Panel{
			photo,
			panels.NewChatPanel(appInstance.API, eventBroker, appInstance.Config.Model),
			panels.NewCrawlerPanel(appInstance.API, eventBroker),
			panels.NewTaggerPanel(appInstance.API, eventBroker),
			panels.NewGraphPanel(appInstance.API, eventBroker),
		},
		photo:       photo,
		statusBar:   status.New(),
		eventBroker: eventBroker,
		app:         appInstance,
	}

	// Subscribe to all events
	m.eventSub = eventBroker.Subscribe()

	return m
}

// Init initializes the TUI model and all components
func (m *Model) Init() tea.Cmd {
	var cmds []tea.Cmd

	for _, p := range m.panels {
		cmds = append(cmds, p.Init())
	}
	cmds = append(cmds, m.statusBar.Init())

	// Start event processing
	cmds = append(cmds, m.listenForEvents())

	// Ping the backend so a dead endpoint shows up immediately.
	cmds = append(cmds, m.checkBackend())

	return tea.Batch(cmds...)
}

// Update handles all TUI updates and routes to components
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// Handle events that come as messages
	if event, ok := msg.(events.Event); ok {
		cmds = append(cmds, m.handleEvent(event), m.listenForEvents())
		return m, tea.Batch(cmds...)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		cmds = append(cmds, m.layoutComponents()...)
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.setActive((m.active + 1) % len(m.panels))
			return m, nil
		case "shift+tab":
			m.setActive((m.active - 1 + len(m.panels)) % len(m.panels))
			return m, nil
		}
		// Keys go to the active panel only.
		cmds = append(cmds, m.panels[m.active].Update(msg))
		return m, tea.Batch(cmds...)
	}

	// Everything else (spinner ticks, panel results, status timers) is
	// broadcast; each message type is only meaningful to its owner.
	for _, p := range m.panels {
		cmds = append(cmds, p.Update(msg))
	}
	_, statusCmd := m.statusBar.Update(msg)
	cmds = append(cmds, statusCmd)

	return m, tea.Batch(cmds...)
}

// handleEvent routes a broker event to the interested components.
func (m *Model) handleEvent(event events.Event) tea.Cmd {
	var cmds []tea.Cmd

	switch event.Type {
	case events.StatusMessageEvent:
		if payload, ok := event.Payload.(events.StatusMessagePayload); ok {
			switch payload.Type {
			case "error":
				cmds = append(cmds, m.statusBar.ShowError(payload.Message))
			case "warning":
				cmds = append(cmds, m.statusBar.ShowWarning(payload.Message))
			case "success":
				cmds = append(cmds, m.statusBar.ShowSuccess(payload.Message))
			default:
				cmds = append(cmds, m.statusBar.ShowInfo(payload.Message))
			}
		}

	case events.ConversationTurnEvent, events.ConversationStateEvent:
		// The scheduler publishes these from its own goroutine; the photo
		// panel consumes them regardless of which tab is active.
		cmds = append(cmds, m.photo.Update(event))
	}

	return tea.Batch(cmds...)
}

// setActive switches tabs and refreshes the status bar hints.
func (m *Model) setActive(index int) {
	m.active = index
	m.updateStatusHints()
	m.eventBroker.PublishAsync(events.Event{
		Type:    events.PanelSwitchedEvent,
		Payload: events.PanelSwitchedPayload{Name: m.panels[index].Name()},
	})
}

func (m *Model) updateStatusHints() {
	p := m.panels[m.active]
	m.statusBar.SetLeftContent(p.Name() + " • " + p.Hints() + " • tab next panel • ctrl+c quit")
}

// layoutComponents resizes every component for the current window.
func (m *Model) layoutComponents() []tea.Cmd {
	var cmds []tea.Cmd

	// One row of tabs, one blank row, one status row.
	panelHeight := m.height - 3
	if panelHeight < 5 {
		panelHeight = 5
	}

	for _, p := range m.panels {
		cmds = append(cmds, p.SetSize(m.width, panelHeight))
	}
	cmds = append(cmds, m.statusBar.SetSize(m.width, 1))
	m.updateStatusHints()

	return cmds
}

// View renders the tab bar, the active panel and the status bar.
func (m *Model) View() tea.View {
	if m.width == 0 {
		return tea.NewView("Loading...")
	}

	return tea.NewView(lipgloss.JoinVertical(lipgloss.Left,
		m.renderTabs(),
		m.panels[m.active].View(),
		m.statusBar.View(),
	))
}

// renderTabs renders the tab bar with the active panel highlighted.
func (m *Model) renderTabs() string {
	theme := styles.CurrentTheme()

	activeStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.Primary).
		Padding(0, 1)
	inactiveStyle := lipgloss.NewStyle().
		Foreground(theme.FgMuted).
		Padding(0, 1)

	tabs := make([]string, 0, len(m.panels))
	for i, p := range m.panels {
		if i == m.active {
			tabs = append(tabs, activeStyle.Render("["+p.Name()+"]"))
		} else {
			tabs = append(tabs, inactiveStyle.Render(p.Name()))
		}
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Background(theme.BgSubtle).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
}

// listenForEvents listens for events from the event broker
func (m *Model) listenForEvents() tea.Cmd {
	return func() tea.Msg {
		event := <-m.eventSub
		return event
	}
}

// checkBackend pings the health endpoint once at startup.
func (m *Model) checkBackend() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := m.app.API.HealthCheck(ctx); err != nil {
			m.eventBroker.Publish(events.Event{
				Type:    events.StatusMessageEvent,
				Payload: events.StatusMessagePayload{Message: "backend unreachable: " + err.Error(), Type: "error"},
			})
			return nil
		}
		m.eventBroker.Publish(events.Event{
			Type:    events.StatusMessageEvent,
			Payload: events.StatusMessagePayload{Message: "connected to " + m.app.API.Endpoint(), Type: "success"},
		})
		return nil
	}
}
