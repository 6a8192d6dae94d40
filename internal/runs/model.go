package runs

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("run not found")

const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Run records one enhancement attempt. It carries metadata only; résumé
// content is never stored.
type Run struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"sessionId,omitempty"`
	RequestID    string    `json:"requestId,omitempty"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	Status       string    `json:"status"`
	ErrorKind    string    `json:"errorKind,omitempty"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	PromptHash   string    `json:"promptHash,omitempty"`
	DurationMs   int64     `json:"durationMs"`
	CreatedAt    time.Time `json:"createdAt"`
}
