package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"resume-builder/internal/llm"
	"resume-builder/internal/shared/telemetry"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Client implements llm.Completer with the Gemini API. A genai client is
// built per call because the credential is read at call time.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a Gemini provider. baseURL and httpClient are optional.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{baseURL: strings.TrimSpace(baseURL), httpClient: httpClient}
}

// Name returns the provider label.
func (c *Client) Name() string {
	return "gemini"
}

// Complete sends the system instruction and user prompt as one generation.
func (c *Client) Complete(ctx context.Context, in llm.CompletionRequest) (llm.Completion, error) {
	cfg := &genai.ClientConfig{
		APIKey:     in.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.httpClient,
	}
	if c.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: c.baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return llm.Completion{}, llm.Wrap(llm.KindConfiguration, "create gemini client", err)
	}

	model := in.Model
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(in.System, genai.RoleUser),
		MaxOutputTokens:   int32(in.MaxTokens),
	}
	if in.Temperature > 0 {
		temp := in.Temperature
		genCfg.Temperature = &temp
	}
	if in.TopP > 0 {
		topP := in.TopP
		genCfg.TopP = &topP
	}

	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(in.User), genCfg)
	if err != nil {
		return llm.Completion{}, classify(ctx, err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return llm.Completion{}, formatError("gemini response missing candidates", resp)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return llm.Completion{}, formatError("gemini response empty content", resp)
	}

	out := llm.Completion{Content: text, Model: model}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = &llm.Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	fields := map[string]any{"provider": "gemini", "model": model}
	if out.Usage != nil {
		fields["total_tokens"] = out.Usage.TotalTokens
	}
	telemetry.Info("llm.response", fields)
	return out, nil
}

// formatError keeps the unusable response, e.g. a prompt block reason, for
// diagnosis.
func formatError(message string, resp *genai.GenerateContentResponse) *llm.Error {
	e := llm.NewError(llm.KindUpstreamFormat, message)
	if resp != nil {
		if raw, err := json.Marshal(resp); err == nil {
			e.Raw = string(raw)
		}
	}
	return e
}

func classify(ctx context.Context, err error) *llm.Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return llm.Wrap(llm.KindTimeout, "gemini request timed out", err)
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		e := llm.Wrap(llm.KindUpstream, apiErr.Message, err)
		e.StatusCode = apiErr.Code
		return e
	}
	return llm.Wrap(llm.KindUpstream, "gemini request failed", err)
}

var _ llm.Completer = (*Client)(nil)
