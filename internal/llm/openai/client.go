package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"resume-builder/internal/llm"
	"resume-builder/internal/shared/telemetry"
)

const (
	DefaultBaseURL  = "https://api.openai.com/v1"
	DeepSeekBaseURL = "https://api.deepseek.com"

	completionsPath = "/chat/completions"
	maxErrorBody    = 512
)

// Client implements llm.Completer against any OpenAI-compatible chat
// completions endpoint (OpenAI, DeepSeek, self-hosted gateways).
type Client struct {
	name       string
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a client for baseURL. The request deadline comes from
// the caller's context; httpClient may be nil.
func NewClient(name, baseURL string, httpClient *http.Client) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		name:       name,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Name returns the provider label used in logs and run records.
func (c *Client) Name() string {
	return c.name
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float32      `json:"temperature,omitempty"`
	TopP        *float32      `json:"top_p,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
}

type errorResponse struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete sends one system + user exchange and returns the first choice.
func (c *Client) Complete(ctx context.Context, in llm.CompletionRequest) (llm.Completion, error) {
	reqBody := chatRequest{
		Model: in.Model,
		Messages: []chatMessage{
			{Role: "system", Content: in.System},
			{Role: "user", Content: in.User},
		},
		MaxTokens: in.MaxTokens,
	}
	if in.Temperature > 0 {
		temp := in.Temperature
		reqBody.Temperature = &temp
	}
	if in.TopP > 0 {
		topP := in.TopP
		reqBody.TopP = &topP
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return llm.Completion{}, fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completionsPath, bytes.NewReader(payload))
	if err != nil {
		return llm.Completion{}, llm.Wrap(llm.KindUpstream, "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+in.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return llm.Completion{}, llm.Wrap(llm.KindTimeout, c.name+" request timed out", err)
		}
		return llm.Completion{}, llm.Wrap(llm.KindUpstream, c.name+" request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(ctx, err) {
			return llm.Completion{}, llm.Wrap(llm.KindTimeout, c.name+" response timed out", err)
		}
		return llm.Completion{}, llm.Wrap(llm.KindUpstream, "read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		e := llm.NewError(llm.KindUpstream, upstreamMessage(resp.StatusCode, body))
		e.StatusCode = resp.StatusCode
		return llm.Completion{}, e
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return llm.Completion{}, formatError(c.name+" response is not valid JSON", body, err)
	}
	if len(parsed.Choices) == 0 {
		return llm.Completion{}, formatError(c.name+" response missing choices", body, nil)
	}
	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return llm.Completion{}, formatError(c.name+" response empty content", body, nil)
	}

	out := llm.Completion{Content: content, Model: parsed.Model}
	if parsed.Usage != nil {
		out.Usage = &llm.Usage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
			TotalTokens:      parsed.Usage.TotalTokens,
		}
	}
	logUsage(c.name, in.Model, out.Usage)
	return out, nil
}

// formatError keeps the unusable envelope for diagnosis.
func formatError(message string, body []byte, err error) *llm.Error {
	e := llm.Wrap(llm.KindUpstreamFormat, message, err)
	e.Raw = string(body)
	return e
}

func upstreamMessage(status int, body []byte) string {
	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody]
	}
	if text == "" {
		return fmt.Sprintf("API error: %d", status)
	}
	return fmt.Sprintf("API error: %d - %s", status, text)
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	return strings.Contains(err.Error(), "Client.Timeout")
}

func logUsage(provider, model string, usage *llm.Usage) {
	fields := map[string]any{
		"provider": provider,
		"model":    model,
	}
	if usage != nil {
		fields["prompt_tokens"] = usage.PromptTokens
		fields["completion_tokens"] = usage.CompletionTokens
		fields["total_tokens"] = usage.TotalTokens
	}
	telemetry.Info("llm.response", fields)
}

var _ llm.Completer = (*Client)(nil)
