// Package pipeline provides the worker harness shared by the ingestion,
// parsing, and analysis stages (C5-C7): consume one topic, flip status to
// an in-progress sentinel before doing any work, run the stage, and on any
// error call UpdateError and swallow it so the message is acked rather
// than poison-looped (spec §4.4 step v).
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/brillob/dtce/internal/logger"
	"github.com/brillob/dtce/internal/types/interfaces"
	"github.com/brillob/dtce/internal/wiring"
)

// Stage processes one decoded message body. It is responsible for issuing
// its own "in progress" status update and any next-stage publish; it
// returns an error only when the job should be marked Failed.
type Stage func(ctx context.Context, jobID string, body []byte) error

// JobIDOf extracts the JobId field from a message body. Every pipeline
// message type (JobRequest, AnalysisJob) carries a top-level "jobId" field.
func JobIDOf(body []byte) (string, error) {
	var probe struct {
		JobId string `json:"jobId"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return "", fmt.Errorf("pipeline: decode jobId: %w", err)
	}
	if probe.JobId == "" {
		return "", fmt.Errorf("pipeline: message missing jobId")
	}
	return probe.JobId, nil
}

// Run wires a Stage into a MessageBus consumer on topic. Any error
// returned by stage is logged and converted into a status-store
// UpdateError call. A message whose jobId cannot be decoded is only
// logged, since there is no job to record the error against. The handler
// itself always returns nil so the bus acks the message.
func Run(ctx context.Context, bus interfaces.MessageBus, statusStore interfaces.JobStatusStore, topic string, stage Stage) (func(), error) {
	return bus.StartConsume(ctx, topic, func(handlerCtx context.Context, body []byte) error {
		jobID, err := JobIDOf(body)
		if err != nil {
			logger.Errorf(handlerCtx, "pipeline: topic %q: %v", topic, err)
			return nil
		}
		handlerCtx = logger.WithJobID(handlerCtx, jobID)

		handlerCtx, span := wiring.Tracer.Start(handlerCtx, "pipeline.stage."+topic)
		span.SetAttributes(attribute.String("job_id", jobID), attribute.String("topic", topic))

		if err := stage(handlerCtx, jobID, body); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.Errorf(handlerCtx, "pipeline: topic %q stage failed: %v", topic, err)
			if updErr := statusStore.UpdateError(handlerCtx, jobID, boundedError(err)); updErr != nil {
				logger.Errorf(handlerCtx, "pipeline: failed to record UpdateError for job %s: %v", jobID, updErr)
			}
		}
		span.End()
		return nil
	})
}

const maxErrorMessageLen = 500

// boundedError truncates an error's message so a runaway stack trace or
// library error never blows out the status store's message column.
func boundedError(err error) string {
	msg := err.Error()
	if len(msg) > maxErrorMessageLen {
		return msg[:maxErrorMessageLen] + "..."
	}
	return msg
}
