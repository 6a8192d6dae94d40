package llm

import (
	_ "embed"
	"strings"
)

// DefaultPromptVersion is used when no version is configured.
const DefaultPromptVersion = "v1"

var (
	//go:embed prompts/enhance_system_v1.txt
	enhanceSystemV1 string
	//go:embed prompts/enhance_user_v1.txt
	enhanceUserV1 string
)

// PromptTemplate returns the system instruction and user template for the
// version and whether the version was recognized. Unknown versions fall back
// to v1.
func PromptTemplate(version string) (system string, user string, ok bool) {
	switch strings.TrimSpace(version) {
	case "v1", "":
		return enhanceSystemV1, enhanceUserV1, true
	default:
		return enhanceSystemV1, enhanceUserV1, false
	}
}
