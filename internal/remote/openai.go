// ABOUTME: OpenAI Assistants implementation of the remote Gateway interface
// ABOUTME: Speaks the v2 REST API over plain HTTP with bearer auth, one request per call

package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-3.5-turbo-1106"

	// Instructions baked into every provisioned assistant.
	assistantInstructions = "Chat with in a helpful, positive, polite, empathetic, interesting, entertaining, and engaging way."

	// System instruction for the code-completion endpoint.
	codeInstructions = "You are a code generator. Your responses should be exclusively in markdown code snippets, with code comments used for explanations."
)

// OpenAIClient implements Gateway against the OpenAI Assistants v2 API.
type OpenAIClient struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
	logger  *slog.Logger
}

// Option configures an OpenAIClient.
type Option func(*OpenAIClient)

// WithBaseURL overrides the API base URL. Used by tests and proxies.
func WithBaseURL(url string) Option {
	return func(c *OpenAIClient) {
		c.baseURL = url
	}
}

// WithModel overrides the model used for assistants and completions.
func WithModel(model string) Option {
	return func(c *OpenAIClient) {
		c.model = model
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *OpenAIClient) {
		c.http = hc
	}
}

// NewOpenAIClient creates a Gateway backed by the OpenAI API.
func NewOpenAIClient(apiKey string, opts ...Option) *OpenAIClient {
	c := &OpenAIClient{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		model:   defaultModel,
		http:    &http.Client{Timeout: 60 * time.Second},
		logger:  slog.Default().With("component", "openai"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// doJSON performs one request and decodes the JSON response into out.
// Non-2xx responses are surfaced as ErrUpstream with the status attached.
func (c *OpenAIClient) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("OpenAI-Beta", "assistants=v2")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain a little of the body for the log, never for the caller
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("remote call failed",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"body", string(snippet))
		return fmt.Errorf("%w: %s %s returned %d", ErrUpstream, method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// CreateAssistant provisions a new assistant and returns its handle.
func (c *OpenAIClient) CreateAssistant(ctx context.Context, name string) (string, error) {
	req := map[string]string{
		"name":         name,
		"instructions": assistantInstructions,
		"model":        c.model,
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/assistants", req, &resp); err != nil {
		return "", err
	}
	c.logger.Debug("assistant created", "assistant_id", resp.ID)
	return resp.ID, nil
}

// CreateThread provisions a new empty conversation thread.
func (c *OpenAIClient) CreateThread(ctx context.Context) (string, error) {
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/threads", map[string]string{}, &resp); err != nil {
		return "", err
	}
	c.logger.Debug("thread created", "thread_id", resp.ID)
	return resp.ID, nil
}

// AddMessage appends a turn to the thread.
func (c *OpenAIClient) AddMessage(ctx context.Context, threadID, role, content string) error {
	req := map[string]string{
		"role":    role,
		"content": content,
	}
	return c.doJSON(ctx, http.MethodPost, "/threads/"+threadID+"/messages", req, nil)
}

// CreateRun triggers the assistant against the thread's current state.
func (c *OpenAIClient) CreateRun(ctx context.Context, threadID, assistantID string) (*Run, error) {
	req := map[string]string{
		"assistant_id": assistantID,
	}
	var resp Run
	if err := c.doJSON(ctx, http.MethodPost, "/threads/"+threadID+"/runs", req, &resp); err != nil {
		return nil, err
	}
	c.logger.Debug("run created", "thread_id", threadID, "run_id", resp.ID, "status", resp.Status)
	return &resp, nil
}

// listMessagesResponse mirrors the wire shape of GET /threads/{id}/messages.
type listMessagesResponse struct {
	Data []struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text struct {
				Value string `json:"value"`
			} `json:"text"`
		} `json:"content"`
	} `json:"data"`
}

// ListMessages returns the thread transcript in ascending chronological order.
// The remote service is asked for ascending order directly; the response is
// emitted as received, oldest first.
func (c *OpenAIClient) ListMessages(ctx context.Context, threadID string) ([]Turn, error) {
	var resp listMessagesResponse
	if err := c.doJSON(ctx, http.MethodGet, "/threads/"+threadID+"/messages?order=asc", nil, &resp); err != nil {
		return nil, err
	}

	turns := make([]Turn, 0, len(resp.Data))
	for _, m := range resp.Data {
		content := ""
		for _, part := range m.Content {
			if part.Type == "text" {
				content = part.Text.Value
				break
			}
		}
		turns = append(turns, Turn{Role: m.Role, Content: content})
	}
	return turns, nil
}

// chatCompletionResponse mirrors the wire shape of POST /chat/completions.
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// complete runs one stateless chat completion with the given message list.
func (c *OpenAIClient) complete(ctx context.Context, messages []Turn) (string, error) {
	req := map[string]any{
		"model":    c.model,
		"messages": messages,
	}
	var resp chatCompletionResponse
	if err := c.doJSON(ctx, http.MethodPost, "/chat/completions", req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: completion returned no choices", ErrUpstream)
	}
	return resp.Choices[0].Message.Content, nil
}

// Complete performs a stateless single-turn completion.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, []Turn{
		{Role: RoleUser, Content: prompt},
	})
}

// CompleteCode performs a stateless completion constrained to commented code output.
func (c *OpenAIClient) CompleteCode(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, []Turn{
		{Role: RoleSystem, Content: codeInstructions},
		{Role: RoleUser, Content: prompt},
	})
}

// Ping checks reachability by listing models with the configured credential.
func (c *OpenAIClient) Ping(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/models", nil, nil)
}
