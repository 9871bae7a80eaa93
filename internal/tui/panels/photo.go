package panels

import (
	"context"
	"fmt"
	"strings"

	"github.com/airdevs/console/internal/api"
	"github.com/airdevs/console/internal/conversation"
	"github.com/airdevs/console/internal/tui/components/input"
	"github.com/airdevs/console/internal/tui/events"
	"github.com/airdevs/console/internal/tui/styles"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
)

// sidebarWidth is the fixed width of the queue-state column.
const sidebarWidth = 32

// startDoneMsg signals that the start call finished. Errors already
// reached the status slot through the controller's OnError callback.
type startDoneMsg struct {
	err error
}

// clearDoneMsg signals that the cache clear finished.
type clearDoneMsg struct {
	err error
}

// PhotoPanel drives the photo-analyzer conversation. The actual
// sequencing lives in the conversation controller; this panel renders
// the turn log and queue state, and feeds user commands into the queue.
//
// Keys: enter queues the typed command token, ctrl+s starts a new
// conversation, ctrl+x clears the backend cache after an explicit y/n
// confirmation.
type PhotoPanel struct {
	ctrl   *conversation.Controller
	broker *events.Broker

	viewport viewport.Model
	input    *input.Model

	// Latest controller snapshot, updated from state events.
	state events.ConversationStatePayload

	confirmClear bool
	busy         bool
	width        int
	height       int
}

// NewPhotoPanel creates the photo analyzer panel.
func NewPhotoPanel(ctrl *conversation.Controller, broker *events.Broker) *PhotoPanel {
	return &PhotoPanel{
		ctrl:     ctrl,
		broker:   broker,
		viewport: viewport.New(),
		input:    input.New("Queue a command (REPAIR X, DARKEN Y, ANALYZE_ALL, ...)"),
	}
}

// Name implements Panel.
func (p *PhotoPanel) Name() string { return "Photos" }

// Hints implements Panel.
func (p *PhotoPanel) Hints() string {
	if p.confirmClear {
		return "y confirm • n cancel"
	}
	return "enter queue • ctrl+s start • ctrl+x clear cache"
}

// Init implements Panel.
func (p *PhotoPanel) Init() tea.Cmd {
	return nil
}

// SetSize implements Panel.
func (p *PhotoPanel) SetSize(width, height int) tea.Cmd {
	p.width = width
	p.height = height

	mainWidth := width - sidebarWidth - 1
	if mainWidth < 20 {
		mainWidth = 20
	}
	viewportHeight := height - 2
	if viewportHeight < 3 {
		viewportHeight = 3
	}

	p.viewport = viewport.New(
		viewport.WithWidth(mainWidth),
		viewport.WithHeight(viewportHeight),
	)
	p.viewport.MouseWheelEnabled = true
	p.viewport.SetContent(p.renderLog())
	p.viewport.GotoBottom()

	return p.input.SetSize(mainWidth, 1)
}

// Update implements Panel.
func (p *PhotoPanel) Update(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd

	var vpCmd tea.Cmd
	p.viewport, vpCmd = p.viewport.Update(msg)
	cmds = append(cmds, vpCmd)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd := p.handleKey(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case events.Event:
		switch msg.Type {
		case events.ConversationTurnEvent:
			p.viewport.SetContent(p.renderLog())
			p.viewport.GotoBottom()
		case events.ConversationStateEvent:
			if payload, ok := msg.Payload.(events.ConversationStatePayload); ok {
				p.state = payload
			}
		}

	case startDoneMsg:
		p.busy = false
		if msg.err == nil {
			publishStatus(p.broker, "conversation started", "success")
		}

	case clearDoneMsg:
		p.busy = false
		if msg.err == nil {
			publishStatus(p.broker, "cache cleared, session reset", "success")
		}
	}

	return tea.Batch(cmds...)
}

func (p *PhotoPanel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if p.confirmClear {
		switch msg.String() {
		case "y", "Y":
			p.confirmClear = false
			p.busy = true
			return p.clearCache()
		case "n", "N", "esc":
			p.confirmClear = false
		}
		return nil
	}

	switch msg.String() {
	case "enter":
		if !p.input.IsEmpty() {
			p.ctrl.Enqueue(p.input.Value())
			p.input.Reset()
		}
		return nil

	case "ctrl+s":
		if p.busy {
			return nil
		}
		p.busy = true
		return p.start()

	case "ctrl+x":
		p.confirmClear = true
		return nil

	default:
		_, cmd := p.input.Update(msg)
		return cmd
	}
}

func (p *PhotoPanel) start() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return startDoneMsg{err: p.ctrl.Start(ctx)}
	}
}

func (p *PhotoPanel) clearCache() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return clearDoneMsg{err: p.ctrl.ClearCache(ctx)}
	}
}

// renderLog renders the full turn log for the viewport.
func (p *PhotoPanel) renderLog() string {
	theme := styles.CurrentTheme()
	turns := p.ctrl.Turns()
	if len(turns) == 0 {
		return theme.Muted().Render("Press ctrl+s to start a conversation with the photo backend.\nSuggested actions queue up automatically and run every 2s;\ntype extra commands to queue them by hand.")
	}

	contentWidth := p.viewport.Width() - 2
	var b strings.Builder
	for i, turn := range turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(renderTurn(turn, theme, contentWidth))
	}
	return b.String()
}

// renderTurn renders one backend turn.
func renderTurn(turn api.Turn, theme *styles.Theme, width int) string {
	var b strings.Builder

	marker := theme.Title().Render("▸ ")
	if !turn.OK() {
		marker = theme.ErrorText().Render("▸ ")
	}
	b.WriteString(marker + wrapText(turn.Message, width))

	for _, img := range turn.ProcessedImages {
		b.WriteString("\n  " + theme.Title().Render(img.Filename))
		if img.Cached {
			b.WriteString(theme.Muted().Render(" (cached)"))
		}
		if img.Description != "" {
			b.WriteString("\n  " + wrapText(img.Description, width-2))
		}
	}

	if len(turn.CachedAnalyses) > 0 {
		b.WriteString("\n  " + theme.Muted().Render(fmt.Sprintf("%d cached analyses on file", len(turn.CachedAnalyses))))
	}

	if turn.LLMAnalysis != "" {
		b.WriteString("\n\n" + styles.RenderMarkdown(turn.LLMAnalysis, width))
	}

	if len(turn.SuggestedActions) > 0 {
		b.WriteString("\n  " + theme.Muted().Render("suggested: "+strings.Join(turn.SuggestedActions, ", ")))
	}

	return b.String()
}

// renderSidebar renders the queue-state column.
func (p *PhotoPanel) renderSidebar() string {
	theme := styles.CurrentTheme()

	var b strings.Builder
	b.WriteString(theme.Title().Render("Session") + "\n")
	switch {
	case p.state.Processing:
		b.WriteString("  running…\n")
	case p.state.Active:
		b.WriteString("  active\n")
	default:
		b.WriteString(theme.Muted().Render("  idle") + "\n")
	}
	b.WriteString(fmt.Sprintf("  descriptions %d/%d\n", p.state.Attempts, conversation.MaxDescriptionAttempts))

	b.WriteString("\n" + theme.Title().Render("Queue") + "\n")
	if len(p.state.Queue) == 0 {
		b.WriteString(theme.Muted().Render("  (empty)") + "\n")
	}
	for i, token := range p.state.Queue {
		prefix := "  "
		if i == 0 {
			prefix = "▶ "
		}
		b.WriteString(prefix + truncateToken(token, sidebarWidth-4) + "\n")
	}

	b.WriteString("\n" + theme.Title().Render("Executed") + "\n")
	if len(p.state.Executed) == 0 {
		b.WriteString(theme.Muted().Render("  (none)") + "\n")
	}
	for _, token := range p.state.Executed {
		b.WriteString(theme.Muted().Render("  ✓ "+truncateToken(token, sidebarWidth-6)) + "\n")
	}

	return lipgloss.NewStyle().
		Width(sidebarWidth).
		Height(p.height).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(theme.Border).
		PaddingLeft(1).
		Render(b.String())
}

// View implements Panel.
func (p *PhotoPanel) View() string {
	theme := styles.CurrentTheme()

	var bottom string
	if p.confirmClear {
		bottom = theme.ErrorText().Render("Clear the backend cache and reset the session? (y/n)")
	} else {
		bottom = p.input.View()
	}

	main := lipgloss.JoinVertical(lipgloss.Left,
		p.viewport.View(),
		"",
		bottom,
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, main, p.renderSidebar())
}

// truncateToken shortens a token so it fits on one sidebar line.
func truncateToken(token string, max int) string {
	if max < 4 {
		max = 4
	}
	if len(token) <= max {
		return token
	}
	return token[:max-1] + "…"
}
