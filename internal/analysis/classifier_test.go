package analysis

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brillob/dtce/internal/apierrors"
	"github.com/brillob/dtce/internal/types"
)

func TestClassify_SmallTransparentImageIsLogo(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.NRGBA{R: 10, G: 10, B: 10, A: 0})
		}
	}
	assert.Equal(t, types.AssetTypeLogo, classify(img))
}

func TestClassify_LargeDiversePhotoIsImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 400, 400))
	for y := 0; y < 400; y++ {
		for x := 0; x < 400; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x % 256), G: uint8(y % 256), B: uint8((x + y) % 256), A: 255})
		}
	}
	assert.Equal(t, types.AssetTypeImage, classify(img))
}

func TestClassify_ZeroSizedImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 0, 0))
	assert.Equal(t, types.AssetTypeImage, classify(img))
}

type fakeObjectStore struct {
	files map[string][]byte
}

func (f *fakeObjectStore) Upload(ctx context.Context, key string, r io.Reader, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.files[key] = data
	return nil
}

func (f *fakeObjectStore) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := f.files[key]
	if !ok {
		return nil, apierrors.NewNotFound("object %q not found", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeObjectStore) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if _, ok := f.files[key]; !ok {
		return "", apierrors.NewNotFound("object %q not found", key)
	}
	return "https://example.test/" + key, nil
}

func (f *fakeObjectStore) Delete(ctx context.Context, key string) error {
	delete(f.files, key)
	return nil
}

func TestClassifyLogo_RefreshesURL(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.NRGBA{A: 0})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	store := &fakeObjectStore{files: map[string][]byte{"assets/job-1/logo.png": buf.Bytes()}}

	assetType, url, err := classifyLogo(context.Background(), store, "assets/job-1/logo.png")
	require.NoError(t, err)
	assert.Equal(t, types.AssetTypeLogo, assetType)
	assert.Equal(t, "https://example.test/assets/job-1/logo.png", url)
}

func TestClassifyLogo_UndecodableImageLeavesTypeUnchanged(t *testing.T) {
	store := &fakeObjectStore{files: map[string][]byte{"assets/job-1/bad.bin": []byte("not an image")}}

	assetType, url, err := classifyLogo(context.Background(), store, "assets/job-1/bad.bin")
	require.NoError(t, err)
	assert.Equal(t, types.AssetTypeImage, assetType)
	assert.Empty(t, url)
}

func TestClassifyLogo_MissingKey(t *testing.T) {
	store := &fakeObjectStore{files: map[string][]byte{}}
	_, _, err := classifyLogo(context.Background(), store, "assets/job-1/missing.png")
	require.Error(t, err)
}
