package gateway

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brillob/dtce/internal/apierrors"
	"github.com/brillob/dtce/internal/config"
	"github.com/brillob/dtce/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestValidateDocumentURL(t *testing.T) {
	dt, err := validateDocumentURL("https://example.com/report.pdf")
	require.NoError(t, err)
	assert.Equal(t, types.DocumentTypePdf, dt)

	dt, err = validateDocumentURL("https://docs.google.com/document/d/abc/edit")
	require.NoError(t, err)
	assert.Equal(t, types.DocumentTypeGoogleDoc, dt)

	_, err = validateDocumentURL("ftp://example.com/file.docx")
	assert.Error(t, err)

	_, err = validateDocumentURL("https://example.com/file.txt")
	assert.Error(t, err)

	_, err = validateDocumentURL("not a url")
	assert.Error(t, err)
}

func TestContentTypeForKey(t *testing.T) {
	assert.Equal(t, "application/json", contentTypeForKey("results/job-1/context.json"))
	assert.Equal(t, "application/pdf", contentTypeForKey("documents/job-1/a.pdf"))
	assert.Equal(t, "image/png", contentTypeForKey("assets/job-1/logo.png"))
	assert.Equal(t, "application/octet-stream", contentTypeForKey("documents/job-1/unknown.bin"))
}

func TestDocumentKey(t *testing.T) {
	assert.Equal(t, "documents/job-1/report.docx", documentKey("job-1", "report.docx"))
}

type fakeStore struct {
	files map[string][]byte
}

func (f *fakeStore) Upload(ctx context.Context, key string, r io.Reader, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.files[key] = data
	return nil
}
func (f *fakeStore) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := f.files[key]
	if !ok {
		return nil, apierrors.NewNotFound("object %q not found", key)
	}
	return io.NopCloser(strings.NewReader(string(data))), nil
}
func (f *fakeStore) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if _, ok := f.files[key]; !ok {
		return "", apierrors.NewNotFound("object %q not found", key)
	}
	return "https://example.test/" + key, nil
}
func (f *fakeStore) Delete(ctx context.Context, key string) error {
	delete(f.files, key)
	return nil
}

type fakeStatusStore struct {
	records map[string]*types.JobStatusRecord
}

func (s *fakeStatusStore) Create(ctx context.Context, jobId string) (*types.JobStatusRecord, error) {
	rec := &types.JobStatusRecord{JobId: jobId, Status: types.JobStatusPending}
	s.records[jobId] = rec
	return rec, nil
}
func (s *fakeStatusStore) UpdateStatus(ctx context.Context, jobId string, status types.JobStatus, message string) error {
	if rec, ok := s.records[jobId]; ok {
		rec.Status = status
		rec.StatusMessage = message
	}
	return nil
}
func (s *fakeStatusStore) UpdateCompletion(ctx context.Context, jobId, templateKey, contextKey string) error {
	if rec, ok := s.records[jobId]; ok {
		rec.Status = types.JobStatusComplete
		rec.TemplateJsonKey = templateKey
		rec.ContextJsonKey = contextKey
	}
	return nil
}
func (s *fakeStatusStore) UpdateError(ctx context.Context, jobId, errorMessage string) error {
	if rec, ok := s.records[jobId]; ok {
		rec.Status = types.JobStatusFailed
		rec.ErrorMessage = errorMessage
	}
	return nil
}
func (s *fakeStatusStore) Get(ctx context.Context, jobId string) (*types.JobStatusRecord, error) {
	return s.records[jobId], nil
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

func newTestRouter(mode config.Mode, apiKey string) (*gin.Engine, *fakeStore, *fakeStatusStore, *fakeBus) {
	cfg := &config.Config{
		Mode:    mode,
		Gateway: config.GatewayOptions{BaseURL: "http://gateway.test", APIKey: apiKey, MaxUploadSize: 1024 * 1024},
	}
	store := &fakeStore{files: map[string][]byte{}}
	statusStore := &fakeStatusStore{records: map[string]*types.JobStatusRecord{}}
	bus := &fakeBus{published: map[string][][]byte{}}
	r := NewRouter(cfg, store, statusStore, bus)
	return r, store, statusStore, bus
}

func TestHealthz(t *testing.T) {
	r, _, _, _ := newTestRouter(config.ModeDev, "")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReadyz_AllBackendsHealthy(t *testing.T) {
	r, _, _, _ := newTestRouter(config.ModeDev, "")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSubmitJob_WithDocumentURL(t *testing.T) {
	r, _, statusStore, bus := newTestRouter(config.ModeDev, "")

	form := strings.NewReader("documentUrl=https%3A%2F%2Fexample.com%2Freport.pdf")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs/submit", form)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Len(t, bus.published[types.TopicJobRequests], 1)
	assert.Len(t, statusStore.records, 1)
}

func TestSubmitJob_MissingFileAndURL(t *testing.T) {
	r, _, _, _ := newTestRouter(config.ModeDev, "")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs/submit", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetStatus_UnknownJob(t *testing.T) {
	r, _, _, _ := newTestRouter(config.ModeDev, "")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/nope/status", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetResults_JobNotYetComplete(t *testing.T) {
	r, _, statusStore, _ := newTestRouter(config.ModeDev, "")
	statusStore.records["job-1"] = &types.JobStatusRecord{JobId: "job-1", Status: types.JobStatusProcessing}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/job-1/results", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestGetFile_NotFound(t *testing.T) {
	r, _, _, _ := newTestRouter(config.ModeDev, "")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/files/missing.json", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetFile_Found(t *testing.T) {
	r, store, _, _ := newTestRouter(config.ModeDev, "")
	store.files["results/job-1/context.json"] = []byte(`{"ok":true}`)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/files/results/job-1/context.json", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, `{"ok":true}`, w.Body.String())
}

func TestAPIKeyAuth_DevModeSkipsCheck(t *testing.T) {
	r, _, _, _ := newTestRouter(config.ModeDev, "s3cr3t")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/nope/status", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code) // reached the handler, not 401
}

func TestAPIKeyAuth_ProdModeRejectsMissingKey(t *testing.T) {
	r, _, _, _ := newTestRouter(config.ModeProd, "s3cr3t")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/nope/status", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPIKeyAuth_ProdModeAcceptsValidToken(t *testing.T) {
	r, _, _, _ := newTestRouter(config.ModeProd, "s3cr3t")

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "client-1"})
	signed, err := token.SignedString([]byte("s3cr3t"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/nope/status", nil)
	req.Header.Set("X-API-Key", signed)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPIKeyAuth_ProdModeRejectsWrongSecret(t *testing.T) {
	r, _, _, _ := newTestRouter(config.ModeProd, "s3cr3t")

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "client-1"})
	signed, err := token.SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/nope/status", nil)
	req.Header.Set("X-API-Key", signed)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
