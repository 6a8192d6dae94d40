package enhance

import (
	"encoding/json"
	"fmt"
	"strings"

	"resume-builder/internal/llm"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/model"
)

// Prompt is the system instruction and user message for one attempt.
type Prompt struct {
	System string
	User   string
}

// Hash returns the digest stored on run records.
func (p Prompt) Hash() string {
	return llm.PromptHash(p.System, p.User)
}

// BuildPrompt renders the prompt for doc. A non-empty systemOverride replaces
// the built-in system instruction.
func BuildPrompt(doc model.Document, version, systemOverride string) (Prompt, error) {
	system, userTemplate, ok := llm.PromptTemplate(version)
	if !ok {
		telemetry.Warn("enhance.prompt_version_unknown", map[string]any{
			"version":  version,
			"fallback": llm.DefaultPromptVersion,
		})
	}
	if strings.TrimSpace(systemOverride) != "" {
		system = systemOverride
	}

	serialized, err := json.MarshalIndent(doc.Normalize(), "", "  ")
	if err != nil {
		return Prompt{}, fmt.Errorf("serialize document: %w", err)
	}
	replacer := strings.NewReplacer(
		"{{SCHEMA}}", strings.TrimSpace(model.Schema()),
		"{{DOCUMENT}}", string(serialized),
	)
	return Prompt{
		System: strings.TrimSpace(system),
		User:   strings.TrimSpace(replacer.Replace(userTemplate)),
	}, nil
}
