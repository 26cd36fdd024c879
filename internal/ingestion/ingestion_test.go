package ingestion

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brillob/dtce/internal/apierrors"
	"github.com/brillob/dtce/internal/types"
)

type fakeStore struct {
	files map[string]bool
}

func (f *fakeStore) Upload(ctx context.Context, key string, r io.Reader, contentType string) error {
	f.files[key] = true
	return nil
}

func (f *fakeStore) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	if !f.files[key] {
		return nil, apierrors.NewNotFound("object %q not found", key)
	}
	return io.NopCloser(strings.NewReader("bytes")), nil
}

func (f *fakeStore) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "http://example/" + key, nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error { return nil }

type fakeStatusStore struct {
	statuses []types.JobStatus
}

func (s *fakeStatusStore) Create(ctx context.Context, jobId string) (*types.JobStatusRecord, error) {
	return &types.JobStatusRecord{JobId: jobId, Status: types.JobStatusPending}, nil
}
func (s *fakeStatusStore) UpdateStatus(ctx context.Context, jobId string, status types.JobStatus, message string) error {
	s.statuses = append(s.statuses, status)
	return nil
}
func (s *fakeStatusStore) UpdateCompletion(ctx context.Context, jobId, templateKey, contextKey string) error {
	return nil
}
func (s *fakeStatusStore) UpdateError(ctx context.Context, jobId, errorMessage string) error {
	s.statuses = append(s.statuses, types.JobStatusFailed)
	return nil
}
func (s *fakeStatusStore) Get(ctx context.Context, jobId string) (*types.JobStatusRecord, error) {
	return nil, nil
}

type fakeBus struct {
	published map[string][][]byte
}

func (b *fakeBus) Publish(ctx context.Context, topic string, message []byte) error {
	b.published[topic] = append(b.published[topic], message)
	return nil
}
func (b *fakeBus) StartConsume(ctx context.Context, topic string, handler func(context.Context, []byte) error) (func(), error) {
	return func() {}, nil
}
func (b *fakeBus) StopAll() {}

func TestIngestionHandle_MissingFile(t *testing.T) {
	store := &fakeStore{files: map[string]bool{}}
	statusStore := &fakeStatusStore{}
	bus := &fakeBus{published: map[string][][]byte{}}
	w := &Worker{Store: store, StatusStore: statusStore, Bus: bus}

	req := types.JobRequest{JobId: "job-1", DocumentType: types.DocumentTypeDocx, FilePath: "documents/job-1/missing.docx"}
	body, _ := json.Marshal(req)

	err := w.Handle(context.Background(), "job-1", body)
	require.Error(t, err)
	assert.Contains(t, strings.ToLower(err.Error()), "not found")
	assert.Empty(t, bus.published[types.TopicParsingJobs])
}

func TestIngestionHandle_ValidFile(t *testing.T) {
	store := &fakeStore{files: map[string]bool{"documents/job-1/a.docx": true}}
	statusStore := &fakeStatusStore{}
	bus := &fakeBus{published: map[string][][]byte{}}
	w := &Worker{Store: store, StatusStore: statusStore, Bus: bus}

	req := types.JobRequest{JobId: "job-1", DocumentType: types.DocumentTypeDocx, FilePath: "documents/job-1/a.docx"}
	body, _ := json.Marshal(req)

	err := w.Handle(context.Background(), "job-1", body)
	require.NoError(t, err)
	require.Len(t, bus.published[types.TopicParsingJobs], 1)
	assert.Equal(t, []types.JobStatus{types.JobStatusProcessing, types.JobStatusParsingInProgress}, statusStore.statuses)
}

func TestIngestionHandle_ValidURL(t *testing.T) {
	store := &fakeStore{files: map[string]bool{}}
	statusStore := &fakeStatusStore{}
	bus := &fakeBus{published: map[string][][]byte{}}
	w := &Worker{Store: store, StatusStore: statusStore, Bus: bus}

	req := types.JobRequest{JobId: "job-2", DocumentType: types.DocumentTypeGoogleDoc, DocumentUrl: "https://docs.google.com/document/d/abc/edit"}
	body, _ := json.Marshal(req)

	err := w.Handle(context.Background(), "job-2", body)
	require.NoError(t, err)
	require.Len(t, bus.published[types.TopicParsingJobs], 1)
}

func TestIngestionHandle_InvalidURL(t *testing.T) {
	store := &fakeStore{files: map[string]bool{}}
	statusStore := &fakeStatusStore{}
	bus := &fakeBus{published: map[string][][]byte{}}
	w := &Worker{Store: store, StatusStore: statusStore, Bus: bus}

	req := types.JobRequest{JobId: "job-3", DocumentType: types.DocumentTypeGoogleDoc, DocumentUrl: "ftp://example.com/doc"}
	body, _ := json.Marshal(req)

	err := w.Handle(context.Background(), "job-3", body)
	require.Error(t, err)
}
