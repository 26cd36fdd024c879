// Package gateway implements the C9 gateway adapter (spec §4.9, §6): a
// thin gin controller that validates submissions, persists the uploaded
// bytes, creates the job status record, and publishes to job-requests.
// It owns no pipeline logic of its own — every stage downstream of
// job-requests is a worker in internal/ingestion, internal/parsing, and
// internal/analysis.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brillob/dtce/internal/apierrors"
	"github.com/brillob/dtce/internal/config"
	"github.com/brillob/dtce/internal/logger"
	"github.com/brillob/dtce/internal/types"
	"github.com/brillob/dtce/internal/types/interfaces"
)

// allowedExtensions is the spec §6 submission constraint.
var allowedExtensions = map[string]types.DocumentType{
	".docx": types.DocumentTypeDocx,
	".pdf":  types.DocumentTypePdf,
}

const maxUploadDefault = 50 * 1024 * 1024

// Handler wires the gateway's REST surface to the three backend-neutral
// abstractions (spec §9's "bound once at process start").
type Handler struct {
	Store       interfaces.ObjectStore
	StatusStore interfaces.JobStatusStore
	Bus         interfaces.MessageBus
	Config      *config.Config
}

// submitResponse is the 202 body of POST /api/v1/jobs/submit.
type submitResponse struct {
	JobId     string `json:"jobId"`
	StatusUrl string `json:"statusUrl"`
}

// SubmitJob handles multipart document or documentUrl submission.
//
// @Summary      Submit a document for processing
// @Description  Accepts a multipart file upload or a documentUrl, and enqueues it for parsing and analysis
// @Tags         jobs
// @Accept       multipart/form-data
// @Produce      json
// @Param        document     formData  file    false "Document file (.docx or .pdf)"
// @Param        documentUrl  formData  string  false "Absolute http/https URL to the document"
// @Success      202  {object}  submitResponse
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/jobs/submit [post]
func (h *Handler) SubmitJob(c *gin.Context) {
	ctx := c.Request.Context()
	documentUrl := strings.TrimSpace(c.PostForm("documentUrl"))
	fileHeader, fileErr := c.FormFile("document")

	if fileErr != nil && documentUrl == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request must include a document file or a documentUrl"})
		return
	}

	jobId := uuid.NewString()
	req := types.JobRequest{JobId: jobId, CreatedAt: time.Now()}

	if fileErr == nil {
		docType, fileName, err := h.storeUpload(ctx, jobId, fileHeader)
		if err != nil {
			statusFromError(c, err)
			return
		}
		req.DocumentType = docType
		req.FileName = fileName
		req.FilePath = documentKey(jobId, fileName)
	} else {
		docType, err := validateDocumentURL(documentUrl)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		req.DocumentType = docType
		req.DocumentUrl = documentUrl
	}

	if _, err := h.StatusStore.Create(ctx, jobId); err != nil {
		logger.Errorf(ctx, "gateway: create job status: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create job"})
		return
	}

	body, err := json.Marshal(req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode job request"})
		return
	}
	if err := h.Bus.Publish(ctx, types.TopicJobRequests, body); err != nil {
		logger.Errorf(ctx, "gateway: publish job-requests: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue job"})
		return
	}

	c.JSON(http.StatusAccepted, submitResponse{
		JobId:     jobId,
		StatusUrl: fmt.Sprintf("%s/api/v1/jobs/%s/status", h.Config.Gateway.BaseURL, jobId),
	})
}

// storeUpload validates extension and size, then uploads to
// documents/{jobId}/{fileName}.
func (h *Handler) storeUpload(ctx context.Context, jobId string, fh *multipart.FileHeader) (types.DocumentType, string, error) {
	maxSize := h.Config.Gateway.MaxUploadSize
	if maxSize <= 0 {
		maxSize = maxUploadDefault
	}
	if fh.Size <= 0 {
		return "", "", apierrors.NewValidation("document file is empty")
	}
	if fh.Size > maxSize {
		return "", "", apierrors.NewValidation("document file exceeds %d bytes", maxSize)
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	docType, ok := allowedExtensions[ext]
	if !ok {
		return "", "", apierrors.NewValidation("unsupported file extension %q", ext)
	}

	f, err := fh.Open()
	if err != nil {
		return "", "", fmt.Errorf("gateway: open upload: %w", err)
	}
	defer f.Close()

	contentType := "application/octet-stream"
	if ext == ".pdf" {
		contentType = "application/pdf"
	}
	key := documentKey(jobId, fh.Filename)
	if err := h.Store.Upload(ctx, key, io.LimitReader(f, maxSize+1), contentType); err != nil {
		return "", "", fmt.Errorf("gateway: upload document: %w", err)
	}
	return docType, fh.Filename, nil
}

func documentKey(jobId, fileName string) string {
	return fmt.Sprintf("documents/%s/%s", jobId, fileName)
}

// validateDocumentURL enforces the URL-scheme constraint and infers a
// DocumentType: docs.google.com hosts resolve to GoogleDoc, otherwise the
// path extension must be one of the supported types.
func validateDocumentURL(raw string) (types.DocumentType, error) {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("documentUrl must be an absolute http or https URL")
	}
	if strings.Contains(strings.ToLower(u.Hostname()), "docs.google.com") {
		return types.DocumentTypeGoogleDoc, nil
	}
	ext := strings.ToLower(filepath.Ext(u.Path))
	if docType, ok := allowedExtensions[ext]; ok {
		return docType, nil
	}
	return "", fmt.Errorf("cannot determine document type from documentUrl %q", raw)
}

// GetStatus handles GET /api/v1/jobs/{jobId}/status.
//
// @Summary      Get job status
// @Tags         jobs
// @Produce      json
// @Param        jobId  path  string  true "Job id"
// @Success      200  {object}  types.JobStatusRecord
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/jobs/{jobId}/status [get]
func (h *Handler) GetStatus(c *gin.Context) {
	jobId := c.Param("jobId")
	record, err := h.StatusStore.Get(c.Request.Context(), jobId)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load job status"})
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown job"})
		return
	}
	c.JSON(http.StatusOK, record)
}

// resultsResponse is the 200 body of GET /api/v1/jobs/{jobId}/results.
type resultsResponse struct {
	JobId          string           `json:"jobId"`
	TemplateJsonUrl string          `json:"templateJsonUrl,omitempty"`
	ContextJsonUrl  string          `json:"contextJsonUrl,omitempty"`
	TemplateJson    *types.TemplateJson `json:"templateJson,omitempty"`
	ContextJson     *types.ContextJson  `json:"contextJson,omitempty"`
}

// GetResults handles GET /api/v1/jobs/{jobId}/results.
//
// @Summary      Get job results
// @Tags         jobs
// @Produce      json
// @Param        jobId           path   string  true  "Job id"
// @Param        includeContent  query  bool    false "Inline the JSON bodies instead of URLs"
// @Success      200  {object}  resultsResponse
// @Success      202  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/jobs/{jobId}/results [get]
func (h *Handler) GetResults(c *gin.Context) {
	ctx := c.Request.Context()
	jobId := c.Param("jobId")
	record, err := h.StatusStore.Get(ctx, jobId)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load job status"})
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown job"})
		return
	}
	if record.Status != types.JobStatusComplete {
		c.JSON(http.StatusAccepted, gin.H{"message": "job is not complete", "status": record.Status})
		return
	}

	resp := resultsResponse{JobId: jobId}
	resp.TemplateJsonUrl = h.fileURL(record.TemplateJsonKey)
	resp.ContextJsonUrl = h.fileURL(record.ContextJsonKey)

	if includeContent, _ := strconv.ParseBool(c.Query("includeContent")); includeContent {
		var tmpl types.TemplateJson
		if err := h.downloadJSON(ctx, record.TemplateJsonKey, &tmpl); err == nil {
			resp.TemplateJson = &tmpl
		}
		var ctxJson types.ContextJson
		if err := h.downloadJSON(ctx, record.ContextJsonKey, &ctxJson); err == nil {
			resp.ContextJson = &ctxJson
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) fileURL(key string) string {
	if key == "" {
		return ""
	}
	return fmt.Sprintf("%s/api/v1/jobs/files/%s", h.Config.Gateway.BaseURL, url.PathEscape(key))
}

func (h *Handler) downloadJSON(ctx context.Context, key string, out interface{}) error {
	if key == "" {
		return fmt.Errorf("gateway: empty key")
	}
	r, err := h.Store.Download(ctx, key)
	if err != nil {
		return err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// GetFile handles GET /api/v1/jobs/files/{*fileKey}.
//
// @Summary      Download a stored object
// @Tags         jobs
// @Produce      application/octet-stream
// @Param        fileKey   path  string  true "Object store key"
// @Param        download  query bool    false "Force Content-Disposition: attachment"
// @Success      200  {file}  binary
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/jobs/files/{fileKey} [get]
func (h *Handler) GetFile(c *gin.Context) {
	ctx := c.Request.Context()
	key := strings.TrimPrefix(c.Param("fileKey"), "/")
	if decoded, err := url.PathUnescape(key); err == nil {
		key = decoded
	}

	r, err := h.Store.Download(ctx, key)
	if err != nil {
		if kind, ok := apierrors.KindOf(err); ok && kind == apierrors.KindNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file"})
		return
	}
	defer r.Close()

	disposition := "inline"
	if download, _ := strconv.ParseBool(c.Query("download")); download {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", fmt.Sprintf(`%s; filename="%s"`, disposition, filepath.Base(key)))
	c.Writer.Header().Set("Content-Type", contentTypeForKey(key))
	if _, err := io.Copy(c.Writer, r); err != nil {
		logger.Warnf(ctx, "gateway: stream file %s: %v", key, err)
	}
}

func contentTypeForKey(key string) string {
	switch strings.ToLower(filepath.Ext(key)) {
	case ".json":
		return "application/json"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}

func statusFromError(c *gin.Context, err error) {
	if kind, ok := apierrors.KindOf(err); ok && kind == apierrors.KindValidation {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
