package enhance

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"resume-builder/internal/llm"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/model"
)

const defaultTimeout = 60 * time.Second

// CredentialFunc returns the provider credential and whether it is set. It
// is called once per attempt so a rotated key takes effect immediately.
type CredentialFunc func() (string, bool)

// EnvCredential reads the named environment variable at call time.
func EnvCredential(name string) CredentialFunc {
	return func() (string, bool) {
		val := strings.TrimSpace(os.Getenv(name))
		return val, val != ""
	}
}

// Settings parameterises a Gateway.
type Settings struct {
	Provider      string
	Model         string
	CredentialEnv string
	Timeout       time.Duration
	Temperature   float32
	TopP          float32
	MaxTokens     int
	PromptVersion string
	SystemPrompt  string
}

// Result describes one attempt. PromptHash and Raw are set whenever the
// attempt got that far, including on failure.
type Result struct {
	Document   model.Document
	PromptHash string
	Raw        string
	Provider   string
	Model      string
}

// Gateway turns a document into an enhanced candidate through one model
// call. It has no side effects beyond the outbound request.
type Gateway struct {
	completer  llm.Completer
	credential CredentialFunc
	settings   Settings
}

// NewGateway constructs a Gateway.
func NewGateway(completer llm.Completer, credential CredentialFunc, settings Settings) *Gateway {
	if settings.Timeout <= 0 {
		settings.Timeout = defaultTimeout
	}
	if settings.Provider == "" && completer != nil {
		settings.Provider = completer.Name()
	}
	return &Gateway{completer: completer, credential: credential, settings: settings}
}

// Provider returns the configured provider label.
func (g *Gateway) Provider() string {
	return g.settings.Provider
}

// Model returns the configured model.
func (g *Gateway) Model() string {
	return g.settings.Model
}

// Enhance returns the enhanced document or a tagged *llm.Error.
func (g *Gateway) Enhance(ctx context.Context, doc model.Document) (model.Document, error) {
	res, err := g.Attempt(ctx, doc)
	if err != nil {
		return model.Document{}, err
	}
	return res.Document, nil
}

// Attempt runs one enhancement and reports what it saw along the way.
func (g *Gateway) Attempt(ctx context.Context, doc model.Document) (Result, error) {
	res := Result{Provider: g.settings.Provider, Model: g.settings.Model}

	apiKey, ok := "", false
	if g.credential != nil {
		apiKey, ok = g.credential()
	}
	if !ok {
		msg := fmt.Sprintf("%s API key not configured", providerLabel(g.settings.Provider))
		if g.settings.CredentialEnv != "" {
			msg += " (" + g.settings.CredentialEnv + ")"
		}
		return res, llm.NewError(llm.KindConfiguration, msg)
	}
	if g.completer == nil {
		return res, llm.NewError(llm.KindConfiguration, "no model provider configured")
	}

	prompt, err := BuildPrompt(doc, g.settings.PromptVersion, g.settings.SystemPrompt)
	if err != nil {
		return res, llm.Wrap(llm.KindConfiguration, "build prompt", err)
	}
	res.PromptHash = prompt.Hash()

	callCtx, cancel := context.WithTimeout(ctx, g.settings.Timeout)
	defer cancel()

	telemetry.Info("enhance.request", map[string]any{
		"provider":    g.settings.Provider,
		"model":       g.settings.Model,
		"prompt_hash": res.PromptHash,
		"experience":  len(doc.Experience),
		"education":   len(doc.Education),
		"activities":  len(doc.ExtraCurriculars),
		"skills":      len(doc.Skills),
	})

	completion, err := g.completer.Complete(callCtx, llm.CompletionRequest{
		APIKey:      apiKey,
		Model:       g.settings.Model,
		System:      prompt.System,
		User:        prompt.User,
		Temperature: g.settings.Temperature,
		TopP:        g.settings.TopP,
		MaxTokens:   g.settings.MaxTokens,
	})
	if err != nil {
		return res, normalizeCallError(callCtx, err)
	}
	res.Raw = completion.Content

	raw, err := ExtractJSON(completion.Content)
	if err != nil {
		return res, err
	}

	decoded, err := model.Decode(raw)
	if err != nil {
		e := llm.Wrap(llm.KindSchema, "model reply does not match the résumé schema", err)
		e.Raw = completion.Content
		return res, e
	}
	res.Document = decoded
	return res, nil
}

func normalizeCallError(ctx context.Context, err error) error {
	if _, ok := llm.AsError(err); ok {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return llm.Wrap(llm.KindTimeout, "model request timed out", err)
	}
	return llm.Wrap(llm.KindUpstream, "model request failed", err)
}

func providerLabel(provider string) string {
	switch strings.ToLower(provider) {
	case "deepseek":
		return "DeepSeek"
	case "openai":
		return "OpenAI"
	case "gemini":
		return "Gemini"
	case "":
		return "Provider"
	default:
		return provider
	}
}
