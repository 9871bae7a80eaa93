package api

import "fmt"

// Status values returned by every backend endpoint.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Turn is a single backend response in the photo-analyzer conversation.
// Turns are immutable once received; the conversation log appends them
// in arrival order.
type Turn struct {
	Status           string           `json:"status"`
	Message          string           `json:"message"`
	ProcessedImages  []ProcessedImage `json:"processed_images,omitempty"`
	CachedAnalyses   []CachedAnalysis `json:"cached_analyses,omitempty"`
	LLMAnalysis      string           `json:"llm_analysis,omitempty"`
	SuggestedActions []string         `json:"suggested_actions,omitempty"`
}

// OK reports whether the backend accepted the request.
func (t Turn) OK() bool {
	return t.Status == StatusSuccess
}

// ProcessedImage describes one image the backend downloaded and analyzed
// while handling a conversation turn.
type ProcessedImage struct {
	URL         string `json:"url"`
	Filename    string `json:"filename"`
	Description string `json:"description"`
	Cached      bool   `json:"cached,omitempty"`
}

// CachedAnalysis is a previously stored image analysis the backend
// includes with each turn so the client can show the full picture set.
type CachedAnalysis struct {
	Filename    string `json:"filename"`
	Description string `json:"description"`
	URL         string `json:"url"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// ChatResponse is the reply from the text and image LLM endpoints.
type ChatResponse struct {
	Status   string `json:"status"`
	Response string `json:"response"`
	Message  string `json:"message,omitempty"`
	Model    string `json:"model,omitempty"`
}

// Transcription is the reply from the audio LLM endpoint.
type Transcription struct {
	Status  string `json:"status"`
	Text    string `json:"text"`
	Message string `json:"message,omitempty"`
}

// MediaAnalysis describes one media file found while crawling a page.
type MediaAnalysis struct {
	URL         string `json:"url"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// CrawlResult is the reply from the web crawler endpoint.
type CrawlResult struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	URL     string          `json:"url,omitempty"`
	Content string          `json:"content,omitempty"`
	Media   []MediaAnalysis `json:"media,omitempty"`
}

// TagResult is the reply from the document tagger endpoint.
// Files maps a document filename to its comma-separated tags.
type TagResult struct {
	Status  string            `json:"status"`
	Message string            `json:"message,omitempty"`
	Files   map[string]string `json:"files,omitempty"`
}

// PathResult is the reply from the graph shortest-path endpoint.
// Indexing carries the backend's indexing summary verbatim; the client
// only cares whether the overall status is success.
type PathResult struct {
	Status   string         `json:"status"`
	Message  string         `json:"message,omitempty"`
	Indexing map[string]any `json:"indexing,omitempty"`
	Path     []string       `json:"path,omitempty"`
}

// Model is one entry from the available-models endpoint.
type Model struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Provider string `json:"provider,omitempty"`
}

// BackendError is a failure the backend reported in-band (status set to
// "error" with a message). Transport faults are returned as plain
// errors; both are treated the same by callers that mutate queue state.
type BackendError struct {
	Endpoint string
	Message  string
}

func (e *BackendError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend %s failed", e.Endpoint)
	}
	return fmt.Sprintf("backend %s: %s", e.Endpoint, e.Message)
}
