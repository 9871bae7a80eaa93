package styles

import (
	"strings"

	"github.com/charmbracelet/glamour/v2"
)

// RenderMarkdown converts markdown to styled terminal output wrapped to
// the given width. Rendering failures fall back to the raw text so a
// bad reply never blanks the panel.
func RenderMarkdown(content string, width int) string {
	if width < 10 {
		width = 10
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dracula"),
		glamour.WithWordWrap(width),
		glamour.WithPreservedNewLines(),
		glamour.WithEmoji(),
	)
	if err != nil {
		return content
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content
	}

	return strings.Trim(rendered, "\n")
}
