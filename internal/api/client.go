package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Client talks to the AirDevs tools backend. All real logic (model
// invocation, crawling, indexing, tagging) lives on the backend; this
// client only encodes requests and decodes responses.
//
// Used by: the conversation controller and every TUI panel.
type Client struct {
	client  *http.Client
	baseURL string
}

// NewClient creates a client for the given base URL.
// Pass an empty string to use the default local backend.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}
	return &Client{
		client:  &http.Client{},
		baseURL: baseURL,
	}
}

// SetEndpoint sets the base URL for the backend API.
func (c *Client) SetEndpoint(endpoint string) {
	if endpoint != "" {
		c.baseURL = endpoint
	}
}

// Endpoint returns the configured base URL.
func (c *Client) Endpoint() string {
	return c.baseURL
}

// HealthCheck checks if the backend is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	var result struct {
		Status string `json:"status"`
	}
	if err := c.getJSON(ctx, "/api/health/", &result); err != nil {
		return fmt.Errorf("backend not reachable: %w", err)
	}
	return nil
}

// AvailableModels returns the models the backend can route chat to.
func (c *Client) AvailableModels(ctx context.Context) ([]Model, error) {
	var result struct {
		Models []Model `json:"models"`
	}
	if err := c.getJSON(ctx, "/api/models/available", &result); err != nil {
		return nil, err
	}
	return result.Models, nil
}

// TextChat sends a chat message to the text LLM endpoint.
func (c *Client) TextChat(ctx context.Context, message, model string) (ChatResponse, error) {
	payload := map[string]any{"message": message}
	if model != "" {
		payload["model"] = model
	}

	var resp ChatResponse
	if err := c.postJSON(ctx, "/api/llm/text/", payload, &resp); err != nil {
		return ChatResponse{}, err
	}
	if resp.Status != StatusSuccess {
		return resp, &BackendError{Endpoint: "/api/llm/text/", Message: resp.Message}
	}
	return resp, nil
}

// ImageChat sends an image file plus a prompt to the image LLM endpoint.
func (c *Client) ImageChat(ctx context.Context, path, prompt string) (ChatResponse, error) {
	var resp ChatResponse
	fields := map[string]string{"prompt": prompt}
	if err := c.postFile(ctx, "/api/llm/image/", "image", path, fields, &resp); err != nil {
		return ChatResponse{}, err
	}
	if resp.Status != StatusSuccess {
		return resp, &BackendError{Endpoint: "/api/llm/image/", Message: resp.Message}
	}
	return resp, nil
}

// AudioChat sends an audio file for transcription and analysis.
func (c *Client) AudioChat(ctx context.Context, path string) (Transcription, error) {
	var resp Transcription
	if err := c.postFile(ctx, "/api/llm/audio/", "audio", path, nil, &resp); err != nil {
		return Transcription{}, err
	}
	if resp.Status != StatusSuccess {
		return resp, &BackendError{Endpoint: "/api/llm/audio/", Message: resp.Message}
	}
	return resp, nil
}

// Crawl asks the backend to crawl a page and describe its media.
func (c *Client) Crawl(ctx context.Context, url string) (CrawlResult, error) {
	var resp CrawlResult
	if err := c.postJSON(ctx, "/api/crawler/process/", map[string]any{"url": url}, &resp); err != nil {
		return CrawlResult{}, err
	}
	if resp.Status != StatusSuccess {
		return resp, &BackendError{Endpoint: "/api/crawler/process/", Message: resp.Message}
	}
	return resp, nil
}

// TagDocuments runs the backend's document tagging pass.
func (c *Client) TagDocuments(ctx context.Context) (TagResult, error) {
	var resp TagResult
	if err := c.postJSON(ctx, "/api/tagger/process/", map[string]any{}, &resp); err != nil {
		return TagResult{}, err
	}
	if resp.Status != StatusSuccess {
		return resp, &BackendError{Endpoint: "/api/tagger/process/", Message: resp.Message}
	}
	return resp, nil
}

// FindPath indexes the backend's graph data and returns the shortest path.
func (c *Client) FindPath(ctx context.Context) (PathResult, error) {
	var resp PathResult
	if err := c.postJSON(ctx, "/api/graph/path/", map[string]any{}, &resp); err != nil {
		return PathResult{}, err
	}
	if resp.Status != StatusSuccess {
		return resp, &BackendError{Endpoint: "/api/graph/path/", Message: resp.Message}
	}
	return resp, nil
}

// StartConversation begins a new photo-analyzer conversation.
func (c *Client) StartConversation(ctx context.Context) (Turn, error) {
	return c.conversationPost(ctx, "/api/conversation/start", map[string]any{})
}

// SendCommand submits an action token to the conversation.
func (c *Client) SendCommand(ctx context.Context, command string) (Turn, error) {
	return c.conversationPost(ctx, "/api/conversation/command", map[string]any{"command": command})
}

// SendDescription submits the final description text.
func (c *Client) SendDescription(ctx context.Context, description string) (Turn, error) {
	return c.conversationPost(ctx, "/api/conversation/description", map[string]any{"description": description})
}

// ClearCache wipes the backend's cached analyses and conversation history.
func (c *Client) ClearCache(ctx context.Context) error {
	var resp struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := c.postJSON(ctx, "/api/conversation/clear-cache", map[string]any{}, &resp); err != nil {
		return err
	}
	if resp.Status != StatusSuccess {
		return &BackendError{Endpoint: "/api/conversation/clear-cache", Message: resp.Message}
	}
	return nil
}

// conversationPost posts a payload and decodes a Turn. A turn with an
// error status is returned alongside a BackendError so callers can
// treat it the same as a transport fault.
func (c *Client) conversationPost(ctx context.Context, path string, payload map[string]any) (Turn, error) {
	var turn Turn
	if err := c.postJSON(ctx, path, payload, &turn); err != nil {
		return Turn{}, err
	}
	if !turn.OK() {
		return turn, &BackendError{Endpoint: path, Message: turn.Message}
	}
	return turn, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// postFile uploads a local file as multipart form data along with any
// extra text fields.
func (c *Client) postFile(ctx context.Context, path, field, filePath string, fields map[string]string, out any) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", filePath, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile(field, filepath.Base(filePath))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return err
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	// Request IDs let the backend correlate its logs with ours.
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("backend returned status %d but failed to read body: %w", resp.StatusCode, err)
		}
		return fmt.Errorf("backend error: %s", string(body))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
