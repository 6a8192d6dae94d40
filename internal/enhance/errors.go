package enhance

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/llm"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/resume/model"
)

// StatusFor maps a failure kind onto an HTTP status.
func StatusFor(kind llm.Kind) int {
	switch kind {
	case llm.KindConfiguration:
		return http.StatusInternalServerError
	case llm.KindTimeout:
		return http.StatusGatewayTimeout
	case llm.KindUpstream, llm.KindUpstreamFormat, llm.KindContentParse, llm.KindSchema:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteFailure converts an enhancement error into the failure envelope.
func WriteFailure(c *gin.Context, err error) {
	e, ok := llm.AsError(err)
	if !ok {
		c.Set(middleware.ErrorKindKey, "internal_error")
		respond.Failure(c, http.StatusInternalServerError, "internal_error", "Failed to process resume", false, respond.FailureDetail{})
		return
	}
	c.Set(middleware.ErrorKindKey, string(e.Kind))

	detail := respond.FailureDetail{UpstreamStatus: e.StatusCode}
	var schemaErr *model.SchemaError
	if errors.As(err, &schemaErr) {
		detail.Violations = schemaErr.Errors
	}
	switch e.Kind {
	case llm.KindUpstreamFormat, llm.KindContentParse, llm.KindSchema:
		detail.Details = e.Raw
	}
	respond.Failure(c, StatusFor(e.Kind), string(e.Kind), e.Message, e.Retryable(), detail)
}
