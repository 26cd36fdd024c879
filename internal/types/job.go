// Package types holds the shared data model and pipeline contracts used by
// every stage of the document pipeline: the job model (C4), the
// ParseResult/TemplateJson/ContextJson artifacts, and the queue topic names.
package types

import "time"

// DocumentType identifies the source format of a submitted document.
type DocumentType string

const (
	DocumentTypeDocx      DocumentType = "Docx"
	DocumentTypePdf       DocumentType = "Pdf"
	DocumentTypeGoogleDoc DocumentType = "GoogleDoc"
)

// JobStatus is the pipeline's state machine sentinel (see spec §4.2 for the
// transition DAG). Transitions are enforced by the worker layer, not by
// JobStatusStore itself.
type JobStatus string

const (
	JobStatusPending            JobStatus = "Pending"
	JobStatusProcessing         JobStatus = "Processing"
	JobStatusParsingInProgress  JobStatus = "ParsingInProgress"
	JobStatusAnalysisInProgress JobStatus = "AnalysisInProgress"
	JobStatusComplete           JobStatus = "Complete"
	JobStatusFailed             JobStatus = "Failed"
)

// statusRank gives the linear progression order from Pending to Complete.
// Failed is handled outside this ranking.
var statusRank = map[JobStatus]int{
	JobStatusPending:            0,
	JobStatusProcessing:         1,
	JobStatusParsingInProgress:  2,
	JobStatusAnalysisInProgress: 3,
	JobStatusComplete:           4,
}

// IsTerminal reports whether no further transitions are legal from s.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusComplete || s == JobStatusFailed
}

// CanTransition reports whether moving from s to next is an edge of the
// state DAG in spec §4.2: the linear chain plus Failed reachable from any
// non-terminal state. It does not allow moving backward or re-entering a
// terminal state (callers issuing idempotent retries should check
// IsTerminal first and skip the transition instead of calling this).
func (s JobStatus) CanTransition(next JobStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if next == JobStatusFailed {
		return true
	}
	nextRank, ok := statusRank[next]
	if !ok {
		return false
	}
	curRank, ok := statusRank[s]
	if !ok {
		return false
	}
	return nextRank == curRank+1
}

// Queue topic names (spec §4.3).
const (
	TopicJobRequests = "job-requests"
	TopicParsingJobs = "parsing-jobs"
	TopicAnalysisJobs = "analysis-jobs"
)

// JobRequest is the identity of a submission. Exactly one of FilePath or
// DocumentUrl is populated.
type JobRequest struct {
	JobId       string       `json:"jobId"`
	DocumentType DocumentType `json:"documentType"`
	FilePath    string       `json:"filePath,omitempty"`
	DocumentUrl string       `json:"documentUrl,omitempty"`
	FileName    string       `json:"fileName,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// JobStatusRecord is the per-job mutable row owned by the job status store.
type JobStatusRecord struct {
	JobId           string     `json:"jobId"`
	Status          JobStatus  `json:"status"`
	StatusMessage   string     `json:"statusMessage"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	ErrorMessage    string     `json:"errorMessage,omitempty"`
	TemplateJsonKey string     `json:"templateJsonKey,omitempty"`
	ContextJsonKey  string     `json:"contextJsonKey,omitempty"`
}

// AnalysisJob is the hand-off message from the parser to the analyzer.
type AnalysisJob struct {
	JobId         string       `json:"jobId"`
	ParseResultKey string       `json:"parseResultKey"`
	DocumentType  DocumentType `json:"documentType"`
}
