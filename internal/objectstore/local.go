package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brillob/dtce/internal/apierrors"
	"github.com/brillob/dtce/internal/config"
)

// LocalStore is the filesystem-rooted C1 implementation. Pre-signed URLs
// are synthesised as gateway file-serving routes (spec §4.1(b)).
type LocalStore struct {
	root        string
	gatewayBase string
}

// NewLocalStore roots the store at opts.RootPath; gatewayBase is prefixed
// to synthesised pre-signed URLs (e.g. "http://localhost:8080").
func NewLocalStore(opts config.FileSystemStorageOptions, gatewayBase string) (*LocalStore, error) {
	if err := os.MkdirAll(opts.RootPath, 0o755); err != nil {
		return nil, fmt.Errorf("objectstore: create root: %w", err)
	}
	return &LocalStore{root: opts.RootPath, gatewayBase: strings.TrimRight(gatewayBase, "/")}, nil
}

func (s *LocalStore) path(key string) (string, error) {
	clean, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// Upload writes all bytes from r to the file at key, creating parent
// directories as needed. contentType is accepted for interface parity but
// unused by the filesystem backend (it has no native metadata store).
func (s *LocalStore) Upload(ctx context.Context, key string, r io.Reader, contentType string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("objectstore: mkdir: %w", err)
	}
	tmp := p + ".tmp-" + fmt.Sprint(time.Now().UnixNano())
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("objectstore: create temp: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("objectstore: write: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("objectstore: close: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("objectstore: rename: %w", err)
	}
	return nil
}

// Download returns a restartable reader for key, or apierrors.NotFound if absent.
func (s *LocalStore) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apierrors.NewNotFound("object %q not found", key)
		}
		return nil, fmt.Errorf("objectstore: open: %w", err)
	}
	return f, nil
}

// PresignedURL returns a gateway file-serving route for key. ttl is
// accepted for interface parity but not enforced by the local backend
// (spec §9 open question: the local URL carries no enforced TTL).
func (s *LocalStore) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	p, err := s.path(key)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(p); err != nil {
		if os.IsNotExist(err) {
			return "", apierrors.NewNotFound("object %q not found", key)
		}
		return "", fmt.Errorf("objectstore: stat: %w", err)
	}
	clean, _ := sanitizeKey(key)
	encoded := encodeKeySegments(clean)
	return fmt.Sprintf("%s/api/v1/jobs/files/%s", s.gatewayBase, encoded), nil
}

// Delete removes key; absent keys are not an error.
func (s *LocalStore) Delete(ctx context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("objectstore: delete: %w", err)
	}
	return nil
}

// encodeKeySegments URL-encodes each path segment individually, preserving
// the slashes between them (spec §4.1(b)).
func encodeKeySegments(key string) string {
	segs := strings.Split(key, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return strings.Join(segs, "/")
}

// DecodeKeySegments reverses encodeKeySegments for the gateway's file route.
func DecodeKeySegments(encoded string) (string, error) {
	segs := strings.Split(encoded, "/")
	for i, seg := range segs {
		decoded, err := url.PathUnescape(seg)
		if err != nil {
			return "", fmt.Errorf("objectstore: decode key segment: %w", err)
		}
		segs[i] = decoded
	}
	return strings.Join(segs, "/"), nil
}
