package queue

import (
	"encoding/json"
	"fmt"
)

// MessageVersion is bumped whenever the event payload changes shape.
const MessageVersion = 1

// Message announces the outcome of one enhancement run to downstream
// consumers. It never carries résumé content.
type Message struct {
	RunID      string `json:"runId"`
	SessionID  string `json:"sessionId,omitempty"`
	RequestID  string `json:"requestId,omitempty"`
	Status     string `json:"status"`
	ErrorKind  string `json:"errorKind,omitempty"`
	Provider   string `json:"provider"`
	Model      string `json:"model"`
	PromptHash string `json:"promptHash,omitempty"`
	DurationMs int64  `json:"durationMs"`
	CreatedAt  string `json:"createdAt"`
	EmittedAt  string `json:"emittedAt"`
	Version    int    `json:"version"`
}

// RoutingKey groups events by outcome, e.g. "enhancement.failed".
func (m Message) RoutingKey() string {
	return fmt.Sprintf("enhancement.%s", m.Status)
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	if msg.Version != MessageVersion {
		return Message{}, fmt.Errorf("unsupported message version %d", msg.Version)
	}
	return msg, nil
}
