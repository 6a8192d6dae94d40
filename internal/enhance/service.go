package enhance

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"resume-builder/internal/llm"
	"resume-builder/internal/queue"
	"resume-builder/internal/runs"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/storage/object"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/model"
)

const (
	diagnosticsNamespace = "diagnostics"
	sideEffectTimeout    = 5 * time.Second
	previewLimit         = 200
)

// Attempter is the pure enhancement step the service wraps.
type Attempter interface {
	Attempt(ctx context.Context, doc model.Document) (Result, error)
}

// Service runs enhancement attempts and records their outcome: a run record,
// metrics, a run event and, when Archive is set, the raw unusable reply.
// Side-effect failures are logged and never change the attempt's result.
type Service struct {
	Gateway Attempter
	Runs    runs.Repo
	Archive object.ObjectStore
	Events  queue.Client
	Now     func() time.Time
}

// Enhance satisfies editor.Enhancer.
func (s *Service) Enhance(ctx context.Context, doc model.Document) (model.Document, error) {
	now := s.now()
	metrics.IncEnhanceStarted()

	res, err := s.Gateway.Attempt(ctx, doc)
	elapsed := s.now().Sub(now)
	metrics.ObserveEnhanceDurationMs(float64(elapsed.Milliseconds()))

	run := runs.Run{
		ID:         uuid.NewString(),
		SessionID:  sessionIDFromContext(ctx),
		RequestID:  requestIDFromContext(ctx),
		Provider:   res.Provider,
		Model:      res.Model,
		Status:     runs.StatusSucceeded,
		PromptHash: res.PromptHash,
		DurationMs: elapsed.Milliseconds(),
		CreatedAt:  now.UTC(),
	}
	if sink := runIDSinkFromContext(ctx); sink != nil {
		*sink = run.ID
	}

	sideCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	fields := map[string]any{
		"run_id":      run.ID,
		"session_id":  run.SessionID,
		"request_id":  run.RequestID,
		"provider":    run.Provider,
		"model":       run.Model,
		"duration_ms": run.DurationMs,
	}
	if err != nil {
		kind := llm.KindOf(err)
		run.Status = runs.StatusFailed
		run.ErrorKind = string(kind)
		run.ErrorMessage = err.Error()
		metrics.IncEnhanceFailed(string(kind))
		fields["error_kind"] = string(kind)
		fields["error"] = err.Error()
		if e, ok := llm.AsError(err); ok && e.Raw != "" {
			fields["raw_preview"] = preview(e.Raw)
			s.archiveRaw(sideCtx, run, e.Raw)
		}
		telemetry.Error("enhance.failed", fields)
	} else {
		metrics.IncEnhanceSucceeded()
		telemetry.Info("enhance.succeeded", fields)
	}

	s.record(sideCtx, run)
	s.publish(sideCtx, run)

	if err != nil {
		return model.Document{}, err
	}
	return res.Document, nil
}

func (s *Service) record(ctx context.Context, run runs.Run) {
	if s.Runs == nil {
		return
	}
	if err := s.Runs.Create(ctx, run); err != nil {
		telemetry.Error("enhance.run_record_failed", map[string]any{"run_id": run.ID, "error": err.Error()})
	}
}

func (s *Service) publish(ctx context.Context, run runs.Run) {
	if s.Events == nil {
		return
	}
	msg := queue.Message{
		RunID:      run.ID,
		SessionID:  run.SessionID,
		RequestID:  run.RequestID,
		Status:     run.Status,
		ErrorKind:  run.ErrorKind,
		Provider:   run.Provider,
		Model:      run.Model,
		PromptHash: run.PromptHash,
		DurationMs: run.DurationMs,
		CreatedAt:  run.CreatedAt.Format(time.RFC3339Nano),
		EmittedAt:  s.now().UTC().Format(time.RFC3339),
		Version:    queue.MessageVersion,
	}
	if err := s.Events.Send(ctx, msg); err != nil {
		telemetry.Error("enhance.event_publish_failed", map[string]any{"run_id": run.ID, "error": err.Error()})
	}
}

func (s *Service) archiveRaw(ctx context.Context, run runs.Run, raw string) {
	if s.Archive == nil {
		return
	}
	key, size, err := s.Archive.Save(ctx, diagnosticsNamespace, run.ID+"_reply.txt", "text/plain; charset=utf-8", strings.NewReader(raw))
	if err != nil {
		telemetry.Error("enhance.archive_failed", map[string]any{"run_id": run.ID, "error": err.Error()})
		return
	}
	telemetry.Info("enhance.archived_reply", map[string]any{"run_id": run.ID, "storage_key": key, "size_bytes": size})
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// preview cuts raw to at most previewLimit bytes without splitting a rune.
func preview(raw string) string {
	if len(raw) <= previewLimit {
		return raw
	}
	cut := previewLimit
	for cut > 0 && !utf8.RuneStart(raw[cut]) {
		cut--
	}
	return raw[:cut]
}
