package panels

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/airdevs/console/internal/api"
	"github.com/airdevs/console/internal/tui/events"
	"github.com/airdevs/console/internal/tui/styles"
	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
)

// pathDoneMsg carries the shortest-path result for an in-flight run.
type pathDoneMsg struct {
	result api.PathResult
	err    error
}

// GraphPanel asks the backend for the shortest connection path in its
// people graph and shows the hop-by-hop route plus the indexing
// summary of the run.
type GraphPanel struct {
	api    *api.Client
	broker *events.Broker

	viewport viewport.Model
	spinner  spinner.Model

	result  *api.PathResult
	waiting bool
	width   int
	height  int
}

// NewGraphPanel creates the graph path panel.
func NewGraphPanel(client *api.Client, broker *events.Broker) *GraphPanel {
	return &GraphPanel{
		api:      client,
		broker:   broker,
		viewport: viewport.New(),
		spinner:  newStyledSpinner(),
	}
}

// Name implements Panel.
func (p *GraphPanel) Name() string { return "Graph" }

// Hints implements Panel.
func (p *GraphPanel) Hints() string { return "r run" }

// Init implements Panel.
func (p *GraphPanel) Init() tea.Cmd {
	return nil
}

// SetSize implements Panel.
func (p *GraphPanel) SetSize(width, height int) tea.Cmd {
	p.width = width
	p.height = height

	viewportHeight := height - 2
	if viewportHeight < 3 {
		viewportHeight = 3
	}

	p.viewport = viewport.New(
		viewport.WithWidth(width),
		viewport.WithHeight(viewportHeight),
	)
	p.viewport.MouseWheelEnabled = true
	p.viewport.SetContent(p.renderResult())

	return nil
}

// Update implements Panel.
func (p *GraphPanel) Update(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd

	var vpCmd tea.Cmd
	p.viewport, vpCmd = p.viewport.Update(msg)
	cmds = append(cmds, vpCmd)

	if p.waiting {
		var spinCmd tea.Cmd
		p.spinner, spinCmd = p.spinner.Update(msg)
		cmds = append(cmds, spinCmd)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if (msg.String() == "r" || msg.String() == "enter") && !p.waiting {
			p.waiting = true
			cmds = append(cmds, p.run(), p.spinner.Tick)
		}

	case pathDoneMsg:
		p.waiting = false
		if msg.err != nil {
			publishStatus(p.broker, msg.err.Error(), "error")
		} else {
			p.result = &msg.result
			p.viewport.SetContent(p.renderResult())
			p.viewport.GotoTop()
			publishStatus(p.broker, "path search finished", "success")
		}
	}

	return tea.Batch(cmds...)
}

func (p *GraphPanel) run() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		result, err := p.api.FindPath(ctx)
		return pathDoneMsg{result: result, err: err}
	}
}

func (p *GraphPanel) renderResult() string {
	theme := styles.CurrentTheme()
	if p.result == nil {
		return theme.Muted().Render("Press r to index the people graph and find the shortest\nconnection path between its configured endpoints.")
	}

	var b strings.Builder
	b.WriteString(theme.Title().Render("Path") + "\n\n")
	b.WriteString(formatPath(p.result.Path))

	if len(p.result.Indexing) > 0 {
		b.WriteString("\n\n" + theme.Title().Render("Indexing") + "\n")
		b.WriteString(formatIndexing(p.result.Indexing, theme))
	}

	return b.String()
}

// formatPath joins the hops into a single route line.
func formatPath(path []string) string {
	if len(path) == 0 {
		return "no path found"
	}
	return strings.Join(path, " → ")
}

// formatIndexing renders the backend's indexing summary, keys sorted
// for a stable display.
func formatIndexing(indexing map[string]any, theme *styles.Theme) string {
	keys := make([]string, 0, len(indexing))
	for k := range indexing {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString("  " + theme.Muted().Render(k+": ") + fmt.Sprint(indexing[k]) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// View implements Panel.
func (p *GraphPanel) View() string {
	bottom := ""
	if p.waiting {
		bottom = p.spinner.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		p.viewport.View(),
		"",
		bottom,
	)
}
