package panels

import (
	"context"
	"strings"

	"github.com/airdevs/console/internal/api"
	"github.com/airdevs/console/internal/tui/components/input"
	"github.com/airdevs/console/internal/tui/events"
	"github.com/airdevs/console/internal/tui/styles"
	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
)

// crawlDoneMsg carries the crawl result for an in-flight request.
type crawlDoneMsg struct {
	result api.CrawlResult
	err    error
}

// CrawlerPanel fetches a page through the backend crawler and shows
// its text content plus the analyzed media it found.
type CrawlerPanel struct {
	api    *api.Client
	broker *events.Broker

	viewport viewport.Model
	input    *input.Model
	spinner  spinner.Model

	result  *api.CrawlResult
	waiting bool
	width   int
	height  int
}

// NewCrawlerPanel creates the web crawler panel.
func NewCrawlerPanel(client *api.Client, broker *events.Broker) *CrawlerPanel {
	return &CrawlerPanel{
		api:      client,
		broker:   broker,
		viewport: viewport.New(),
		input:    input.New("https://example.com"),
		spinner:  newStyledSpinner(),
	}
}

// Name implements Panel.
func (p *CrawlerPanel) Name() string { return "Crawler" }

// Hints implements Panel.
func (p *CrawlerPanel) Hints() string { return "enter crawl" }

// Init implements Panel.
func (p *CrawlerPanel) Init() tea.Cmd {
	return nil
}

// SetSize implements Panel.
func (p *CrawlerPanel) SetSize(width, height int) tea.Cmd {
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

	return p.input.SetSize(width, 1)
}

// Update implements Panel.
func (p *CrawlerPanel) Update(msg tea.Msg) tea.Cmd {
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
		if msg.String() == "enter" && !p.waiting && !p.input.IsEmpty() {
			url := strings.TrimSpace(p.input.Value())
			p.waiting = true
			cmds = append(cmds, p.crawl(url), p.spinner.Tick)
		} else {
			_, inputCmd := p.input.Update(msg)
			cmds = append(cmds, inputCmd)
		}

	case crawlDoneMsg:
		p.waiting = false
		if msg.err != nil {
			publishStatus(p.broker, msg.err.Error(), "error")
		} else {
			p.result = &msg.result
			p.viewport.SetContent(p.renderResult())
			p.viewport.GotoTop()
			publishStatus(p.broker, "crawl finished", "success")
		}
	}

	return tea.Batch(cmds...)
}

func (p *CrawlerPanel) crawl(url string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		result, err := p.api.Crawl(ctx, url)
		return crawlDoneMsg{result: result, err: err}
	}
}

func (p *CrawlerPanel) renderResult() string {
	theme := styles.CurrentTheme()
	if p.result == nil {
		return theme.Muted().Render("Enter a URL to crawl. The backend fetches the page, extracts its\ntext and runs every image and audio file through the LLM.")
	}

	var b strings.Builder
	b.WriteString(theme.Title().Render(p.result.URL) + "\n\n")
	b.WriteString(wrapText(p.result.Content, p.width-2))

	if len(p.result.Media) > 0 {
		b.WriteString("\n\n" + theme.Title().Render("Media") + "\n")
		for _, m := range p.result.Media {
			b.WriteString("\n• " + m.URL + "\n")
			b.WriteString("  " + theme.Muted().Render("["+m.Type+"] ") + m.Description + "\n")
		}
	}

	return b.String()
}

// View implements Panel.
func (p *CrawlerPanel) View() string {
	var bottom string
	if p.waiting {
		bottom = p.spinner.View()
	} else {
		bottom = p.input.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		p.viewport.View(),
		"",
		bottom,
	)
}

// wrapText hard-wraps prose to the given width for the viewport.
func wrapText(text string, width int) string {
	if width < 10 {
		width = 10
	}
	return lipgloss.NewStyle().Width(width).Render(text)
}
