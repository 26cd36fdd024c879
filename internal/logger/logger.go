// Package logger provides context-aware structured logging built on
// logrus. Every call site threads a context.Context so a job id attached
// by a worker's consume loop (via WithJobID) is surfaced as a field on
// every subsequent log line for that job. The gateway attaches none.
package logger

import (
	"context"

	"github.com/sirupsen/logrus"
)

type ctxKey int

const jobIDKey ctxKey = iota

var std = logrus.New()

func init() {
	std.SetFormatter(&logrus.JSONFormatter{})
}

// WithJobID returns a context carrying jobID for subsequent log calls.
func WithJobID(ctx context.Context, jobID string) context.Context {
	return context.WithValue(ctx, jobIDKey, jobID)
}

func entry(ctx context.Context) *logrus.Entry {
	e := logrus.NewEntry(std)
	if jobID, ok := ctx.Value(jobIDKey).(string); ok && jobID != "" {
		e = e.WithField("job_id", jobID)
	}
	return e
}

// Infof logs at info level with job-id context.
func Infof(ctx context.Context, format string, args ...interface{}) {
	entry(ctx).Infof(format, args...)
}

// Warnf logs at warn level with job-id context.
func Warnf(ctx context.Context, format string, args ...interface{}) {
	entry(ctx).Warnf(format, args...)
}

// Errorf logs at error level with job-id context.
func Errorf(ctx context.Context, format string, args ...interface{}) {
	entry(ctx).Errorf(format, args...)
}

// Debugf logs at debug level with job-id context.
func Debugf(ctx context.Context, format string, args ...interface{}) {
	entry(ctx).Debugf(format, args...)
}

// SetLevel adjusts the global logging level (used at process start from config).
func SetLevel(level logrus.Level) {
	std.SetLevel(level)
}
