package enhance

import (
	"encoding/json"
	"strings"

	"resume-builder/internal/llm"
)

// ExtractJSON returns the JSON value carried by a model reply. The whole
// reply is parsed strictly first; only if that fails is the span from the
// first '{' to the last '}' tried. Anything else is a content parse error
// carrying the raw reply.
func ExtractJSON(reply string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(reply)
	if json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed), nil
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start < 0 || end <= start {
		e := llm.NewError(llm.KindContentParse, "no JSON object found in model reply")
		e.Raw = reply
		return nil, e
	}
	candidate := trimmed[start : end+1]
	if !json.Valid([]byte(candidate)) {
		e := llm.NewError(llm.KindContentParse, "model reply contains malformed JSON")
		e.Raw = reply
		return nil, e
	}
	return json.RawMessage(candidate), nil
}
