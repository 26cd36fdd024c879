package pdf

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brillob/dtce/internal/apierrors"
	"github.com/brillob/dtce/internal/types"
)

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, wordCount(""))
	assert.Equal(t, 0, wordCount("   "))
	assert.Equal(t, 4, wordCount("the quick brown fox"))
}

type fakeStore struct{ files map[string][]byte }

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
	return "http://example/" + key, nil
}
func (f *fakeStore) Delete(ctx context.Context, key string) error { return nil }

func TestParse_MalformedPDFBytes(t *testing.T) {
	store := &fakeStore{files: map[string][]byte{"documents/job-1/a.pdf": []byte("not a pdf")}}
	req := types.JobRequest{JobId: "job-1", DocumentType: types.DocumentTypePdf, FilePath: "documents/job-1/a.pdf"}

	_, err := (Handler{}).Parse(context.Background(), req, store)
	require.Error(t, err)
}

func TestParse_MissingSource(t *testing.T) {
	store := &fakeStore{files: map[string][]byte{}}
	req := types.JobRequest{JobId: "job-1", DocumentType: types.DocumentTypePdf}

	_, err := (Handler{}).Parse(context.Background(), req, store)
	require.Error(t, err)
}
