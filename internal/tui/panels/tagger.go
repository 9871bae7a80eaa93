package panels

import (
	"context"
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

// tagDoneMsg carries the tagger result for an in-flight run.
type tagDoneMsg struct {
	result api.TagResult
	err    error
}

// TaggerPanel runs the backend's document tagger over its configured
// document set and shows the generated keywords per file.
type TaggerPanel struct {
	api    *api.Client
	broker *events.Broker

	viewport viewport.Model
	spinner  spinner.Model

	result  *api.TagResult
	waiting bool
	width   int
	height  int
}

// NewTaggerPanel creates the document tagger panel.
func NewTaggerPanel(client *api.Client, broker *events.Broker) *TaggerPanel {
	return &TaggerPanel{
		api:      client,
		broker:   broker,
		viewport: viewport.New(),
		spinner:  newStyledSpinner(),
	}
}

// Name implements Panel.
func (p *TaggerPanel) Name() string { return "Tagger" }

// Hints implements Panel.
func (p *TaggerPanel) Hints() string { return "r run" }

// Init implements Panel.
func (p *TaggerPanel) Init() tea.Cmd {
	return nil
}

// SetSize implements Panel.
func (p *TaggerPanel) SetSize(width, height int) tea.Cmd {
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
func (p *TaggerPanel) Update(msg tea.Msg) tea.Cmd {
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

	case tagDoneMsg:
		p.waiting = false
		if msg.err != nil {
			publishStatus(p.broker, msg.err.Error(), "error")
		} else {
			p.result = &msg.result
			p.viewport.SetContent(p.renderResult())
			p.viewport.GotoTop()
			publishStatus(p.broker, "tagging finished", "success")
		}
	}

	return tea.Batch(cmds...)
}

func (p *TaggerPanel) run() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		result, err := p.api.TagDocuments(ctx)
		return tagDoneMsg{result: result, err: err}
	}
}

func (p *TaggerPanel) renderResult() string {
	theme := styles.CurrentTheme()
	if p.result == nil {
		return theme.Muted().Render("Press r to tag the backend's document set. Each report gets\nkeywords drawn from its content and the referenced facts.")
	}
	return formatTags(p.result, theme)
}

// formatTags renders the filename → tags table, files sorted by name.
func formatTags(result *api.TagResult, theme *styles.Theme) string {
	if len(result.Files) == 0 {
		return theme.Muted().Render("tagger returned no files")
	}

	names := make([]string, 0, len(result.Files))
	for name := range result.Files {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(theme.Title().Render(name) + "\n")
		b.WriteString("  " + result.Files[name])
	}
	return b.String()
}

// View implements Panel.
func (p *TaggerPanel) View() string {
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
