// Package interfaces collects the backend-neutral contracts for the three
// infrastructure abstractions (object store, job status store, message
// bus) plus the document-handler capability set, mirroring the teacher's
// FileService interface style.
package interfaces

import (
	"context"
	"io"
	"time"

	"github.com/brillob/dtce/internal/types"
)

// ObjectStore is the C1 content-addressed blob store contract. Keys are
// slash-separated path-like strings; implementations must reject keys that
// would escape their configured root.
type ObjectStore interface {
	// Upload writes all bytes from r under key with the given content type.
	Upload(ctx context.Context, key string, r io.Reader, contentType string) error
	// Download returns a restartable reader positioned at byte 0, or a
	// NotFound error if key is absent.
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	// PresignedURL returns a time-bounded read URL valid for ttl, or a
	// NotFound error if key is absent.
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	// Delete removes key. Absent keys are not an error.
	Delete(ctx context.Context, key string) error
}

// JobStatusStore is the C2 per-job status record contract.
type JobStatusStore interface {
	// Create inserts a new Pending record. Idempotent on JobId: a repeat
	// call for an existing id is a no-op for Status but refreshes UpdatedAt.
	Create(ctx context.Context, jobId string) (*types.JobStatusRecord, error)
	// UpdateStatus sets Status and StatusMessage.
	UpdateStatus(ctx context.Context, jobId string, status types.JobStatus, message string) error
	// UpdateCompletion marks the job Complete and records both result keys.
	UpdateCompletion(ctx context.Context, jobId, templateKey, contextKey string) error
	// UpdateError marks the job Failed with errorMessage.
	UpdateError(ctx context.Context, jobId, errorMessage string) error
	// Get returns the current record, or (nil, nil) if jobId is unknown.
	Get(ctx context.Context, jobId string) (*types.JobStatusRecord, error)
}

// MessageHandler processes one message body and returns an error to signal
// the message should be redelivered (at-least-once semantics).
type MessageHandler func(ctx context.Context, body []byte) error

// MessageBus is the C3 named-topic durable queue contract. At most one
// handler goroutine runs per topic per consumer instance.
type MessageBus interface {
	// Publish enqueues message (JSON-marshalled by the caller) on topic.
	Publish(ctx context.Context, topic string, message []byte) error
	// StartConsume begins processing topic with handler until the returned
	// cancel function is invoked or StopAll is called.
	StartConsume(ctx context.Context, topic string, handler MessageHandler) (cancel func(), err error)
	// StopAll stops every active consumer started via StartConsume.
	StopAll()
}

// DocumentHandler is the capability set a DocumentType dispatch table
// resolves to (spec §9, "dynamic dispatch -> closed tagged union").
// Implementations are stateless apart from per-call buffers.
type DocumentHandler interface {
	Parse(ctx context.Context, jobReq types.JobRequest, store ObjectStore) (*types.ParseResult, error)
}
