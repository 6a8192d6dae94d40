package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=amd64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-worker

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"resume-builder/internal/recorder"
	"resume-builder/internal/runs"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/storage/db"
	"resume-builder/internal/shared/telemetry"
)

var (
	initOnce sync.Once
	initErr  error
	rec      *recorder.Recorder
)

func initRecorder() {
	cfg := config.Load()
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		initErr = errors.New("DATABASE_URL is required")
		return
	}
	ctx := context.Background()
	sqlDB, err := db.GetSingleton(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultLambdaOptions()))
	if err != nil {
		initErr = err
		return
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		initErr = err
		return
	}
	rec = recorder.New(&runs.PGRepo{DB: sqlDB})
}

func handler(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	initOnce.Do(initRecorder)
	if initErr != nil {
		log.Printf("bootstrap error: %v", initErr)
		failures := make([]events.SQSBatchItemFailure, 0, len(event.Records))
		for _, record := range event.Records {
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
		}
		return events.SQSEventResponse{BatchItemFailures: failures}, initErr
	}
	return handleBatch(ctx, rec, event), nil
}

// handleBatch reports only recoverable failures so that malformed events are
// not redelivered.
func handleBatch(ctx context.Context, r *recorder.Recorder, event events.SQSEvent) events.SQSEventResponse {
	failures := make([]events.SQSBatchItemFailure, 0)
	for _, record := range event.Records {
		metrics.IncRunEventsReceived()
		msg, err := r.HandleMessage(ctx, record.Body)
		if err == nil {
			metrics.IncRunEventsRecorded()
			continue
		}
		fields := map[string]any{
			"run_id":         msg.RunID,
			"sqs_message_id": record.MessageId,
			"error":          err.Error(),
		}
		if recorder.Unrecoverable(err) {
			telemetry.Error("worker.event.dropped", fields)
			metrics.IncRunEventsDropped()
			continue
		}
		telemetry.Error("worker.event.failed", fields)
		metrics.IncRunEventsFailed()
		failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
	}
	return events.SQSEventResponse{BatchItemFailures: failures}
}

func main() {
	lambda.Start(handler)
}
