package respond

import (
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/telemetry"
)

// SuccessEnvelope is returned by enhancement endpoints on success.
type SuccessEnvelope struct {
	Success bool        `json:"success"`
	Content interface{} `json:"content"`
	Format  string      `json:"format"`
}

// FailureEnvelope is returned by enhancement endpoints on failure. Details
// carries the raw model reply when the reply was unusable.
type FailureEnvelope struct {
	Success        bool        `json:"success"`
	Error          string      `json:"error"`
	Code           string      `json:"code"`
	Retryable      bool        `json:"retryable"`
	Details        string      `json:"details,omitempty"`
	Violations     interface{} `json:"violations,omitempty"`
	UpstreamStatus int         `json:"upstreamStatus,omitempty"`
	Timestamp      string      `json:"timestamp"`
}

// FailureDetail holds the optional parts of a failure envelope.
type FailureDetail struct {
	Details        string
	Violations     interface{}
	UpstreamStatus int
}

// Success writes a 200 success envelope around content.
func Success(c *gin.Context, content interface{}) {
	OK(c, SuccessEnvelope{Success: true, Content: content, Format: "json"})
}

// Failure writes a failure envelope with the given status and aborts.
func Failure(c *gin.Context, status int, code, message string, retryable bool, detail FailureDetail) {
	telemetry.Error("http.failure", map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"retryable":  retryable,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
		"session_id": c.GetString("sessionId"),
	})
	c.AbortWithStatusJSON(status, FailureEnvelope{
		Error:          message,
		Code:           code,
		Retryable:      retryable,
		Details:        detail.Details,
		Violations:     detail.Violations,
		UpstreamStatus: detail.UpstreamStatus,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	})
}
