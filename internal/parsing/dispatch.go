// Package parsing implements the C6 parsing worker: it dispatches each
// JobRequest to its format-specific DocumentHandler, then publishes the
// resulting ParseResult onward to analysis (spec §4.4.2).
package parsing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/brillob/dtce/internal/apierrors"
	"github.com/brillob/dtce/internal/logger"
	"github.com/brillob/dtce/internal/parsing/docx"
	"github.com/brillob/dtce/internal/parsing/googledoc"
	"github.com/brillob/dtce/internal/parsing/pdf"
	"github.com/brillob/dtce/internal/types"
	"github.com/brillob/dtce/internal/types/interfaces"
)

// handlers is the closed tagged-union dispatch table of spec §9.
var handlers = map[types.DocumentType]interfaces.DocumentHandler{
	types.DocumentTypeDocx:      docx.Handler{},
	types.DocumentTypePdf:       pdf.Handler{},
	types.DocumentTypeGoogleDoc: googledoc.Handler{},
}

// Worker runs the C6 stage.
type Worker struct {
	Store       interfaces.ObjectStore
	StatusStore interfaces.JobStatusStore
	Bus         interfaces.MessageBus
}

const parseResultContentType = "application/json"

// Handle implements pipeline.Stage for the parsing-jobs topic.
func (w *Worker) Handle(ctx context.Context, jobID string, body []byte) error {
	var req types.JobRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return fmt.Errorf("parsing: decode JobRequest: %w", err)
	}

	if err := w.StatusStore.UpdateStatus(ctx, jobID, types.JobStatusParsingInProgress, "Parsing document structure..."); err != nil {
		return fmt.Errorf("parsing: update status: %w", err)
	}

	handler, ok := handlers[req.DocumentType]
	if !ok {
		return apierrors.NewValidation("no document handler registered for type %q", req.DocumentType)
	}

	result, err := handler.Parse(ctx, req, w.Store)
	if err != nil {
		return fmt.Errorf("parsing: %w", err)
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("parsing: marshal ParseResult: %w", err)
	}

	resultKey := "parsed/" + jobID + "/parse-result.json"
	if err := w.Store.Upload(ctx, resultKey, bytes.NewReader(payload), parseResultContentType); err != nil {
		return fmt.Errorf("parsing: store parse-result.json: %w", err)
	}

	logger.Infof(ctx, "parsing: job %s produced %d content sections", jobID, len(result.ContentSections))

	if err := w.StatusStore.UpdateStatus(ctx, jobID, types.JobStatusAnalysisInProgress, "Document parsed, sent to analysis"); err != nil {
		return fmt.Errorf("parsing: update status: %w", err)
	}

	analysisJob := types.AnalysisJob{JobId: jobID, ParseResultKey: resultKey, DocumentType: req.DocumentType}
	analysisPayload, err := json.Marshal(analysisJob)
	if err != nil {
		return fmt.Errorf("parsing: marshal AnalysisJob: %w", err)
	}
	if err := w.Bus.Publish(ctx, types.TopicAnalysisJobs, analysisPayload); err != nil {
		return fmt.Errorf("parsing: publish to analysis-jobs: %w", err)
	}
	return nil
}
