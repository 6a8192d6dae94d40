package recorder

import (
	"context"
	"errors"
	"testing"

	"resume-builder/internal/queue"
	"resume-builder/internal/runs"
)

func encode(t *testing.T, msg queue.Message) string {
	t.Helper()
	body, err := queue.EncodeMessage(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return string(body)
}

func TestHandleMessageRecordsRun(t *testing.T) {
	repo := runs.NewMemoryRepo()
	rec := New(repo)
	body := encode(t, queue.Message{
		RunID:      "run-1",
		RequestID:  "req-1",
		Status:     runs.StatusFailed,
		ErrorKind:  "timeout_error",
		Provider:   "deepseek",
		Model:      "deepseek-chat",
		DurationMs: 60000,
		CreatedAt:  "2026-02-01T10:00:00.5Z",
		EmittedAt:  "2026-02-01T10:01:00Z",
		Version:    queue.MessageVersion,
	})

	if _, err := rec.HandleMessage(context.Background(), body); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	// replay is harmless
	if _, err := rec.HandleMessage(context.Background(), body); err != nil {
		t.Fatalf("replay: %v", err)
	}

	run, err := repo.GetByID(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if run.Status != runs.StatusFailed || run.ErrorKind != "timeout_error" || run.DurationMs != 60000 {
		t.Fatalf("unexpected run %+v", run)
	}
	if run.CreatedAt.Second() != 0 || run.CreatedAt.Minute() != 0 || run.CreatedAt.Nanosecond() != 500000000 {
		t.Fatalf("expected createdAt to be kept, got %s", run.CreatedAt)
	}
	list, _ := repo.List(context.Background(), 10, 0)
	if len(list) != 1 {
		t.Fatalf("expected one run after replay, got %d", len(list))
	}
}

func TestParseMessageFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty", body: "  "},
		{name: "bad json", body: "{bad"},
		{name: "wrong version", body: `{"runId":"r","version":99}`},
		{name: "missing run id", body: `{"status":"succeeded","version":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseMessage(tt.body)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !Unrecoverable(err) {
				t.Fatalf("expected %T to be unrecoverable", err)
			}
		})
	}
}

type failingRepo struct{ runs.Repo }

func (failingRepo) Create(context.Context, runs.Run) error { return errors.New("db down") }

func TestHandleMessageLedgerFailureIsRecoverable(t *testing.T) {
	rec := New(failingRepo{})
	body := encode(t, queue.Message{RunID: "run-2", Status: runs.StatusSucceeded, Version: queue.MessageVersion})

	_, err := rec.HandleMessage(context.Background(), body)
	var recErr ErrRecord
	if !errors.As(err, &recErr) || recErr.RunID != "run-2" {
		t.Fatalf("expected ErrRecord, got %v", err)
	}
	if Unrecoverable(err) {
		t.Fatalf("ledger failures should be retried")
	}
}
