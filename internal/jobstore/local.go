// Package jobstore implements the C2 job status store contract with two
// backends: one JSON file per job on the local filesystem (guarded by an
// in-process mutex, written via temp-file + rename to avoid torn reads),
// and a gorm/postgres wide-row table for the cloud deployment.
package jobstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/brillob/dtce/internal/config"
	"github.com/brillob/dtce/internal/types"
)

// LocalStore is the one-JSON-file-per-job implementation (spec §4.2).
type LocalStore struct {
	root string
	mu   sync.Mutex
}

// NewLocalStore roots the store at opts.RootPath/jobs.
func NewLocalStore(opts config.FileSystemStorageOptions) (*LocalStore, error) {
	jobsDir := filepath.Join(opts.RootPath, "jobs")
	if err := os.MkdirAll(jobsDir, 0o755); err != nil {
		return nil, fmt.Errorf("jobstore: create root: %w", err)
	}
	return &LocalStore{root: jobsDir}, nil
}

func (s *LocalStore) path(jobID string) string {
	return filepath.Join(s.root, jobID+".json")
}

func (s *LocalStore) read(jobID string) (*types.JobStatusRecord, error) {
	data, err := os.ReadFile(s.path(jobID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("jobstore: read: %w", err)
	}
	var rec types.JobStatusRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("jobstore: unmarshal: %w", err)
	}
	return &rec, nil
}

// write performs a full-file replacement under temp-name + rename.
func (s *LocalStore) write(rec *types.JobStatusRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("jobstore: marshal: %w", err)
	}
	p := s.path(rec.JobId)
	tmp := p + ".tmp-" + fmt.Sprint(time.Now().UnixNano())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("jobstore: write temp: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("jobstore: rename: %w", err)
	}
	return nil
}

// Create inserts a new Pending record, or refreshes UpdatedAt on an existing one.
func (s *LocalStore) Create(ctx context.Context, jobID string) (*types.JobStatusRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.read(jobID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if existing != nil {
		existing.UpdatedAt = now
		if err := s.write(existing); err != nil {
			return nil, err
		}
		return existing, nil
	}
	rec := &types.JobStatusRecord{
		JobId:     jobID,
		Status:    types.JobStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.write(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// UpdateStatus sets Status and StatusMessage.
func (s *LocalStore) UpdateStatus(ctx context.Context, jobID string, status types.JobStatus, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.read(jobID)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("jobstore: job %q not found", jobID)
	}
	rec.Status = status
	rec.StatusMessage = message
	rec.UpdatedAt = time.Now().UTC()
	return s.write(rec)
}

// UpdateCompletion marks the job Complete with both result keys.
func (s *LocalStore) UpdateCompletion(ctx context.Context, jobID, templateKey, contextKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.read(jobID)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("jobstore: job %q not found", jobID)
	}
	now := time.Now().UTC()
	rec.Status = types.JobStatusComplete
	rec.StatusMessage = "Processing complete"
	rec.TemplateJsonKey = templateKey
	rec.ContextJsonKey = contextKey
	rec.CompletedAt = &now
	rec.UpdatedAt = now
	return s.write(rec)
}

// UpdateError marks the job Failed (terminal).
func (s *LocalStore) UpdateError(ctx context.Context, jobID, errorMessage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.read(jobID)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("jobstore: job %q not found", jobID)
	}
	rec.Status = types.JobStatusFailed
	rec.ErrorMessage = errorMessage
	rec.UpdatedAt = time.Now().UTC()
	return s.write(rec)
}

// Get returns the current record, or (nil, nil) if jobID is unknown.
func (s *LocalStore) Get(ctx context.Context, jobID string) (*types.JobStatusRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(jobID)
}
