package panels

import (
	"strings"
	"testing"

	"github.com/airdevs/console/internal/api"
	"github.com/airdevs/console/internal/tui/styles"
)

func TestFormatPath(t *testing.T) {
	tests := []struct {
		name string
		path []string
		want string
	}{
		{name: "empty", path: nil, want: "no path found"},
		{name: "single", path: []string{"Rafal"}, want: "Rafal"},
		{name: "route", path: []string{"Rafal", "Azazel", "Barbara"}, want: "Rafal → Azazel → Barbara"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatPath(tt.path); got != tt.want {
				t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestFormatIndexing_SortedKeys(t *testing.T) {
	theme := styles.CurrentTheme()
	got := formatIndexing(map[string]any{
		"users":       42,
		"connections": 120,
	}, theme)

	if strings.Index(got, "connections") > strings.Index(got, "users") {
		t.Errorf("keys not sorted:\n%s", got)
	}
}

func TestFormatTags_SortedFiles(t *testing.T) {
	theme := styles.CurrentTheme()
	result := &api.TagResult{Files: map[string]string{
		"2024-11-12_report-13.txt": "nauczyciel, JAN NOWAK",
		"2024-11-12_report-01.txt": "sektor C4, czujnik",
	}}

	got := formatTags(result, theme)
	if strings.Index(got, "report-01") > strings.Index(got, "report-13") {
		t.Errorf("files not sorted:\n%s", got)
	}
	if !strings.Contains(got, "sektor C4, czujnik") {
		t.Errorf("missing tags in output:\n%s", got)
	}
}

func TestFormatTags_Empty(t *testing.T) {
	got := formatTags(&api.TagResult{}, styles.CurrentTheme())
	if !strings.Contains(got, "no files") {
		t.Errorf("empty result output = %q", got)
	}
}

func TestFormatModels(t *testing.T) {
	got := formatModels([]api.Model{
		{ID: "gpt-4o-mini", Provider: "openai"},
		{ID: "local-llama"},
	})
	if !strings.Contains(got, "2 models") || !strings.Contains(got, "gpt-4o-mini") {
		t.Errorf("formatModels output = %q", got)
	}

	if got := formatModels(nil); !strings.Contains(got, "no models") {
		t.Errorf("empty listing output = %q", got)
	}
}

func TestTruncateToken(t *testing.T) {
	if got := truncateToken("REPAIR IMG_559.PNG", 10); len([]rune(got)) != 10 {
		t.Errorf("truncated length = %d, want 10", len([]rune(got)))
	}
	if got := truncateToken("SHORT", 10); got != "SHORT" {
		t.Errorf("short token changed: %q", got)
	}
}
