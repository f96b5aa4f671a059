// Package summarize asks an OpenAI-compatible chat completions endpoint for a short,
// reviewer-facing description of a change list.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"policytrack/internal/model"
)

// ErrDisabled is returned when no endpoint is configured.
var ErrDisabled = errors.New("summarize: no endpoint configured")

// Summarizer produces a plain-language summary of detected changes.
type Summarizer interface {
	Summarize(ctx context.Context, documentName string, changes []model.Change) (string, error)
}

// Fallback is the summary used whenever the summarizer is unavailable or fails.
func Fallback(n int) string {
	return fmt.Sprintf("%d changes detected in the document.", n)
}

// Client is an HTTP client for the chat completions API.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewClient creates a chat completions client. baseURL is the API root, for example
// "https://api.openai.com/v1".
func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

var _ Summarizer = (*Client)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

const systemPrompt = "You summarize changes between two versions of a policy document for a reviewer. " +
	"Answer with two or three plain sentences. Do not invent changes that are not listed."

// Summarize sends the change list and returns the model's reply.
func (c *Client) Summarize(ctx context.Context, documentName string, changes []model.Change) (string, error) {
	if c.baseURL == "" {
		return "", ErrDisabled
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: Prompt(documentName, changes)},
		},
		Temperature: 0.2,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}

	var out chatResponse
	if resp.StatusCode != http.StatusOK {
		if json.Unmarshal(body, &out) == nil && out.Error != nil && out.Error.Message != "" {
			return "", fmt.Errorf("API error (%d): %s", resp.StatusCode, out.Error.Message)
		}
		return "", fmt.Errorf("API returned status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	summary := strings.TrimSpace(out.Choices[0].Message.Content)
	if summary == "" {
		return "", fmt.Errorf("empty summary in response")
	}
	return summary, nil
}

// Prompt renders the change list sent to the model.
func Prompt(documentName string, changes []model.Change) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Document: %s\n", documentName)
	fmt.Fprintf(&b, "%d changes:\n", len(changes))
	for _, ch := range changes {
		text := ch.After
		if ch.Type == model.ChangeRemoved {
			text = ch.Before
		}
		fmt.Fprintf(&b, "- [%s] %s: %s\n", ch.Type, ch.Section, text)
	}
	return b.String()
}
