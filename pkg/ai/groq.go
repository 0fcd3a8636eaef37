package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/johnquangdev/meeting-enrichment/pkg/config"
)

// ErrEmptyResponse is returned when the model answered without content
var ErrEmptyResponse = errors.New("empty response from groq")

// GroqClient is a minimal client for the Groq chat completion API
type GroqClient struct {
	apiKey     string
	baseURL    string
	model      string
	maxElapsed time.Duration
	client     *http.Client
}

// NewGroqClient creates a Groq client using values from the provided config.
// Pass a nil config to fall back to environment variables.
func NewGroqClient(cfg *config.GroqConfig) *GroqClient {
	g := &GroqClient{
		baseURL:    "https://api.groq.com",
		model:      "llama-3.1-8b-instant",
		maxElapsed: 30 * time.Second,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
	if cfg != nil {
		g.apiKey = cfg.APIKey
		if cfg.BaseURL != "" {
			g.baseURL = strings.TrimRight(cfg.BaseURL, "/")
		}
		if cfg.Model != "" {
			g.model = cfg.Model
		}
		if cfg.Timeout > 0 {
			g.client.Timeout = cfg.Timeout
		}
		if cfg.MaxElapsed > 0 {
			g.maxElapsed = cfg.MaxElapsed
		}
	}
	if g.apiKey == "" {
		g.apiKey = os.Getenv("GROQ_API_KEY")
	}
	return g
}

// Message is one chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat asks the model for a JSON object
type ResponseFormat struct {
	Type string `json:"type"`
}

// ChatRequest is the shape for chat completion requests
type ChatRequest struct {
	Model          string          `json:"model,omitempty"`
	Messages       []Message       `json:"messages,omitempty"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ChatResponse is a minimal response shape
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

// ChatResult is the assistant content plus the tokens it cost
type ChatResult struct {
	Content string
	Usage   Usage
}

// statusError carries a non-2xx response status
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("groq returned status %d: %s", e.code, e.body)
}

// Chat sends a system + user prompt and returns the first choice. Transport
// errors, 429 and 5xx responses are retried with exponential backoff. The
// returned Usage covers every attempt that reached the model.
func (g *GroqClient) Chat(ctx context.Context, system, user string, jsonMode bool, maxTokens int) (*ChatResult, error) {
	reqBody := ChatRequest{
		Model: g.model,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.2,
		MaxTokens:   maxTokens,
	}
	if jsonMode {
		reqBody.ResponseFormat = &ResponseFormat{Type: "json_object"}
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	var result ChatResult
	call := func() error {
		cr, err := g.do(ctx, b)
		if err != nil {
			var se *statusError
			if errors.As(err, &se) && se.code != http.StatusTooManyRequests && se.code < 500 {
				return backoff.Permanent(err)
			}
			return err
		}
		result.Usage.Add(cr.Usage)
		result.Usage.Calls++
		if len(cr.Choices) == 0 {
			return backoff.Permanent(ErrEmptyResponse)
		}
		result.Content = strings.TrimSpace(cr.Choices[0].Message.Content)
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = g.maxElapsed

	if err := backoff.Retry(call, backoff.WithContext(bo, ctx)); err != nil {
		return &result, err
	}
	return &result, nil
}

func (g *GroqClient) do(ctx context.Context, body []byte) (*ChatResponse, error) {
	endpoint := g.baseURL + "/openai/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &statusError{code: resp.StatusCode, body: string(snippet)}
	}

	var cr ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to decode groq response: %w", err))
	}
	return &cr, nil
}
