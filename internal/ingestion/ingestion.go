// Package ingestion implements the C5 ingestion worker: validate the
// submitted JobRequest and forward it to the parsing topic.
package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/brillob/dtce/internal/apierrors"
	"github.com/brillob/dtce/internal/logger"
	"github.com/brillob/dtce/internal/types"
	"github.com/brillob/dtce/internal/types/interfaces"
)

// Worker runs the C5 stage.
type Worker struct {
	Store       interfaces.ObjectStore
	StatusStore interfaces.JobStatusStore
	Bus         interfaces.MessageBus
}

// Handle implements pipeline.Stage for the job-requests topic.
func (w *Worker) Handle(ctx context.Context, jobID string, body []byte) error {
	var req types.JobRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return fmt.Errorf("ingestion: decode JobRequest: %w", err)
	}

	if err := w.StatusStore.UpdateStatus(ctx, jobID, types.JobStatusProcessing, "Document ingestion in progress"); err != nil {
		return fmt.Errorf("ingestion: update status: %w", err)
	}

	if req.FilePath != "" {
		r, err := w.Store.Download(ctx, req.FilePath)
		if err != nil {
			if kind, ok := apierrors.KindOf(err); ok && kind == apierrors.KindNotFound {
				return fmt.Errorf("Document file not found")
			}
			return fmt.Errorf("ingestion: verify document exists: %w", err)
		}
		r.Close()
	} else if req.DocumentUrl != "" {
		if err := validateAbsoluteHTTPURL(req.DocumentUrl); err != nil {
			return fmt.Errorf("ingestion: %w", err)
		}
	} else {
		return fmt.Errorf("ingestion: job request has neither FilePath nor DocumentUrl")
	}

	logger.Infof(ctx, "ingestion: job %s validated, document type %s", jobID, req.DocumentType)

	if err := w.StatusStore.UpdateStatus(ctx, jobID, types.JobStatusParsingInProgress, "Document validated, sent to parsing"); err != nil {
		return fmt.Errorf("ingestion: update status: %w", err)
	}

	if err := w.Bus.Publish(ctx, types.TopicParsingJobs, body); err != nil {
		return fmt.Errorf("ingestion: publish to parsing-jobs: %w", err)
	}
	return nil
}

// validateAbsoluteHTTPURL requires an absolute http/https URL.
func validateAbsoluteHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid document URL: %w", err)
	}
	if !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("document URL must be an absolute http/https URL")
	}
	return nil
}
