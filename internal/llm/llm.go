package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

// Kind tags a failure of an enhancement attempt.
type Kind string

const (
	KindConfiguration  Kind = "configuration_error"
	KindTimeout        Kind = "timeout_error"
	KindUpstream       Kind = "upstream_error"
	KindUpstreamFormat Kind = "upstream_format_error"
	KindContentParse   Kind = "content_parse_error"
	KindSchema         Kind = "schema_validation_error"
)

// Error is the tagged failure returned by providers and the gateway.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
	// Raw holds the unusable model reply for content parse and schema failures.
	Raw string
	Err error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Kind, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether a user-initiated retry may succeed. Nothing in
// this module retries on its own.
func (e *Error) Retryable() bool {
	return e.Kind == KindTimeout || e.Kind == KindUpstream
}

// NewError constructs an Error of the given kind.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an Error of the given kind around err.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// KindOf returns the kind of err, or the empty string when err is untagged.
func KindOf(err error) Kind {
	if e, ok := AsError(err); ok {
		return e.Kind
	}
	return ""
}

// CompletionRequest is a single system + user chat completion.
type CompletionRequest struct {
	APIKey      string
	Model       string
	System      string
	User        string
	Temperature float32
	TopP        float32
	MaxTokens   int
}

// Usage reports token accounting when the provider returns it.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Completion is the text content of the first choice.
type Completion struct {
	Content string
	Model   string
	Usage   *Usage
}

// Completer is implemented by every provider. Implementations return *Error
// tagged timeout, upstream or upstream_format.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
	Name() string
}

// PromptHash returns a stable digest of the prompt pair for run records.
func PromptHash(system, user string) string {
	sum := sha256.Sum256([]byte("system: " + system + "\n\nuser: " + user))
	return hex.EncodeToString(sum[:])
}
