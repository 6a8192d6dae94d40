// Package recorder turns run events read from the queue back into run
// ledger records. It lets stateless API instances publish events while a
// single consumer owns the database.
package recorder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"resume-builder/internal/queue"
	"resume-builder/internal/runs"
)

// MessageMeta captures details useful for logging and diagnostics.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

// ComputeMeta returns the body length and SHA-256 hash.
func ComputeMeta(body string) MessageMeta {
	if body == "" {
		return MessageMeta{}
	}
	sum := sha256.Sum256([]byte(body))
	return MessageMeta{BodyLen: len(body), BodySHA: hex.EncodeToString(sum[:])}
}

// ErrEmptyBody indicates an empty queue payload.
type ErrEmptyBody struct {
	Meta MessageMeta
}

func (e ErrEmptyBody) Error() string { return "empty message body" }

// ErrDecode indicates a payload that is not a supported run event.
type ErrDecode struct {
	Meta MessageMeta
	Err  error
}

func (e ErrDecode) Error() string {
	if e.Err == nil {
		return "decode message"
	}
	return "decode message: " + e.Err.Error()
}

// ErrMissingRunID indicates an event without a run id.
type ErrMissingRunID struct {
	Meta      MessageMeta
	RequestID string
}

func (e ErrMissingRunID) Error() string { return "missing run id" }

// ErrRecord indicates the ledger write failed after successful parsing.
type ErrRecord struct {
	RunID     string
	RequestID string
	Err       error
}

func (e ErrRecord) Error() string {
	if e.Err == nil {
		return "record run"
	}
	return "record run: " + e.Err.Error()
}

func (e ErrRecord) Unwrap() error { return e.Err }

// Unrecoverable reports whether redelivering the message cannot help.
func Unrecoverable(err error) bool {
	var (
		empty   ErrEmptyBody
		decode  ErrDecode
		missing ErrMissingRunID
	)
	return errors.As(err, &empty) || errors.As(err, &decode) || errors.As(err, &missing)
}

// ParseMessage validates and decodes the queue payload.
func ParseMessage(body string) (queue.Message, MessageMeta, error) {
	meta := ComputeMeta(body)
	if strings.TrimSpace(body) == "" {
		return queue.Message{}, meta, ErrEmptyBody{Meta: meta}
	}

	msg, err := queue.DecodeMessage([]byte(body))
	if err != nil {
		return queue.Message{}, meta, ErrDecode{Meta: meta, Err: err}
	}
	if strings.TrimSpace(msg.RunID) == "" {
		return msg, meta, ErrMissingRunID{Meta: meta, RequestID: msg.RequestID}
	}
	return msg, meta, nil
}

// ToRun maps an event onto a run record. A missing or malformed createdAt
// falls back to emittedAt.
func ToRun(msg queue.Message) runs.Run {
	created, err := time.Parse(time.RFC3339Nano, msg.CreatedAt)
	if err != nil {
		created, _ = time.Parse(time.RFC3339, msg.EmittedAt)
	}
	return runs.Run{
		ID:         msg.RunID,
		SessionID:  msg.SessionID,
		RequestID:  msg.RequestID,
		Provider:   msg.Provider,
		Model:      msg.Model,
		Status:     msg.Status,
		ErrorKind:  msg.ErrorKind,
		PromptHash: msg.PromptHash,
		DurationMs: msg.DurationMs,
		CreatedAt:  created.UTC(),
	}
}

// Recorder writes run events into a run ledger.
type Recorder struct {
	Runs runs.Repo
}

// New constructs a Recorder.
func New(repo runs.Repo) *Recorder {
	return &Recorder{Runs: repo}
}

// HandleMessage parses body and records the run it describes. Writes are
// idempotent on the run id.
func (r *Recorder) HandleMessage(ctx context.Context, body string) (queue.Message, error) {
	if r == nil || r.Runs == nil {
		return queue.Message{}, errors.New("run ledger not configured")
	}
	msg, _, err := ParseMessage(body)
	if err != nil {
		return msg, err
	}
	if err := r.Runs.Create(ctx, ToRun(msg)); err != nil {
		return msg, ErrRecord{RunID: msg.RunID, RequestID: msg.RequestID, Err: err}
	}
	return msg, nil
}
