package panels

import (
	"context"
	"fmt"
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

// chatEntry is one exchange line in the chat transcript.
type chatEntry struct {
	role    string // "you", "llm", "note"
	content string
}

// chatReplyMsg carries the backend's answer for an in-flight request.
type chatReplyMsg struct {
	content string
	err     error
}

// modelsListMsg carries the available-models listing.
type modelsListMsg struct {
	models []api.Model
	err    error
}

// ChatPanel talks to the backend's LLM endpoints. Plain input goes to
// the text endpoint; /image and /audio attach local files through the
// multipart endpoints.
type ChatPanel struct {
	api    *api.Client
	broker *events.Broker
	model  string

	viewport viewport.Model
	input    *input.Model
	spinner  spinner.Model

	entries []chatEntry
	waiting bool
	width   int
	height  int
}

// NewChatPanel creates the LLM chat panel. The model id comes from
// config; "auto" lets the backend pick.
func NewChatPanel(client *api.Client, broker *events.Broker, model string) *ChatPanel {
	return &ChatPanel{
		api:      client,
		broker:   broker,
		model:    model,
		viewport: viewport.New(),
		input:    input.New("Ask something, or /image <path>, /audio <path>, /models"),
		spinner:  newStyledSpinner(),
	}
}

// Name implements Panel.
func (p *ChatPanel) Name() string { return "Chat" }

// Hints implements Panel.
func (p *ChatPanel) Hints() string { return "enter send" }

// Init implements Panel.
func (p *ChatPanel) Init() tea.Cmd {
	return nil
}

// SetSize implements Panel.
func (p *ChatPanel) SetSize(width, height int) tea.Cmd {
	p.width = width
	p.height = height

	viewportHeight := height - 2 // input line + spacer
	if viewportHeight < 3 {
		viewportHeight = 3
	}

	p.viewport = viewport.New(
		viewport.WithWidth(width),
		viewport.WithHeight(viewportHeight),
	)
	p.viewport.MouseWheelEnabled = true
	p.viewport.SetContent(p.renderTranscript())
	p.viewport.GotoBottom()

	return p.input.SetSize(width, 1)
}

// Update implements Panel.
func (p *ChatPanel) Update(msg tea.Msg) tea.Cmd {
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
			cmd := p.submit(strings.TrimSpace(p.input.Value()))
			p.input.Reset()
			if cmd != nil {
				cmds = append(cmds, cmd, p.spinner.Tick)
			}
		} else {
			_, inputCmd := p.input.Update(msg)
			cmds = append(cmds, inputCmd)
		}

	case chatReplyMsg:
		p.waiting = false
		if msg.err != nil {
			publishStatus(p.broker, msg.err.Error(), "error")
		} else {
			p.append("llm", msg.content)
		}

	case modelsListMsg:
		p.waiting = false
		if msg.err != nil {
			publishStatus(p.broker, msg.err.Error(), "error")
		} else {
			p.append("note", formatModels(msg.models))
		}
	}

	return tea.Batch(cmds...)
}

// submit parses the input line and starts the matching backend call.
func (p *ChatPanel) submit(line string) tea.Cmd {
	switch {
	case strings.HasPrefix(line, "/image "):
		args := strings.TrimSpace(strings.TrimPrefix(line, "/image "))
		path, prompt, _ := strings.Cut(args, " ")
		if path == "" {
			publishStatus(p.broker, "usage: /image <path> [prompt]", "warning")
			return nil
		}
		p.append("you", line)
		p.waiting = true
		return p.sendImage(path, strings.TrimSpace(prompt))

	case strings.HasPrefix(line, "/audio "):
		path := strings.TrimSpace(strings.TrimPrefix(line, "/audio "))
		if path == "" {
			publishStatus(p.broker, "usage: /audio <path>", "warning")
			return nil
		}
		p.append("you", line)
		p.waiting = true
		return p.sendAudio(path)

	case line == "/models":
		p.waiting = true
		return p.listModels()

	case strings.HasPrefix(line, "/model "):
		p.model = strings.TrimSpace(strings.TrimPrefix(line, "/model "))
		p.append("note", "model set to "+p.model)
		return nil

	case strings.HasPrefix(line, "/"):
		publishStatus(p.broker, "unknown command: "+line, "warning")
		return nil

	default:
		p.append("you", line)
		p.waiting = true
		return p.sendText(line)
	}
}

func (p *ChatPanel) sendText(message string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		resp, err := p.api.TextChat(ctx, message, p.model)
		if err != nil {
			return chatReplyMsg{err: err}
		}
		return chatReplyMsg{content: resp.Response}
	}
}

func (p *ChatPanel) sendImage(path, prompt string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		resp, err := p.api.ImageChat(ctx, path, prompt)
		if err != nil {
			return chatReplyMsg{err: err}
		}
		return chatReplyMsg{content: resp.Response}
	}
}

func (p *ChatPanel) sendAudio(path string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		resp, err := p.api.AudioChat(ctx, path)
		if err != nil {
			return chatReplyMsg{err: err}
		}
		return chatReplyMsg{content: resp.Text}
	}
}

func (p *ChatPanel) listModels() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		models, err := p.api.AvailableModels(ctx)
		return modelsListMsg{models: models, err: err}
	}
}

func (p *ChatPanel) append(role, content string) {
	p.entries = append(p.entries, chatEntry{role: role, content: content})
	p.viewport.SetContent(p.renderTranscript())
	p.viewport.GotoBottom()
}

// renderTranscript renders the full conversation for the viewport.
func (p *ChatPanel) renderTranscript() string {
	theme := styles.CurrentTheme()
	if len(p.entries) == 0 {
		return theme.Muted().Render("Talk to the backend LLM. Plain text goes to the text endpoint;\n/image and /audio attach files.")
	}

	youStyle := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	noteStyle := theme.Muted()

	var b strings.Builder
	for i, entry := range p.entries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch entry.role {
		case "you":
			b.WriteString(youStyle.Render("you ▸ ") + entry.content)
		case "note":
			b.WriteString(noteStyle.Render(entry.content))
		default:
			b.WriteString(styles.RenderMarkdown(entry.content, p.width-2))
		}
	}
	return b.String()
}

// View implements Panel.
func (p *ChatPanel) View() string {
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

func formatModels(models []api.Model) string {
	if len(models) == 0 {
		return "no models reported by the backend"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%d models available:\n", len(models)))
	for _, m := range models {
		b.WriteString("  • " + m.ID)
		if m.Provider != "" {
			b.WriteString("  (" + m.Provider + ")")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
