package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"google.golang.org/genai"

	"resume-builder/internal/llm"
)

func TestClassifyAPIError(t *testing.T) {
	err := fmt.Errorf("generate: %w", genai.APIError{Code: 429, Message: "quota exceeded", Status: "RESOURCE_EXHAUSTED"})
	got := classify(context.Background(), err)
	if got.Kind != llm.KindUpstream {
		t.Fatalf("expected upstream_error, got %s", got.Kind)
	}
	if got.StatusCode != 429 || got.Message != "quota exceeded" {
		t.Fatalf("unexpected error %+v", got)
	}
}

func TestClassifyDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	<-ctx.Done()

	got := classify(ctx, errors.New("transport closed"))
	if got.Kind != llm.KindTimeout {
		t.Fatalf("expected timeout_error, got %s", got.Kind)
	}
	if !got.Retryable() {
		t.Fatalf("expected timeout to be retryable")
	}
}

func TestClassifyOtherFailure(t *testing.T) {
	got := classify(context.Background(), errors.New("connection refused"))
	if got.Kind != llm.KindUpstream || got.StatusCode != 0 {
		t.Fatalf("unexpected error %+v", got)
	}
}

func TestFormatErrorKeepsResponse(t *testing.T) {
	got := formatError("gemini response missing candidates", &genai.GenerateContentResponse{ModelVersion: "gemini-2.5-flash"})
	if got.Kind != llm.KindUpstreamFormat {
		t.Fatalf("expected upstream_format_error, got %s", got.Kind)
	}
	if !strings.Contains(got.Raw, "gemini-2.5-flash") {
		t.Fatalf("expected raw response, got %q", got.Raw)
	}

	if nilResp := formatError("gemini response missing candidates", nil); nilResp.Raw != "" {
		t.Fatalf("expected empty raw for nil response, got %q", nilResp.Raw)
	}
}
