package objectstore

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/brillob/dtce/internal/apierrors"
	"github.com/brillob/dtce/internal/config"
)

// MinioStore is the cloud C1 implementation, backed by any S3-compatible
// service reachable through minio-go (spec §4.1(a): "cloud blob service
// with native pre-signed URL generation").
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore connects to opts.Endpoint and ensures opts.BucketName exists.
func NewMinioStore(ctx context.Context, opts config.MinioOptions) (*MinioStore, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKeyID, opts.SecretAccessKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, apierrors.NewBackendUnavailable(err, "connect to minio endpoint %q", opts.Endpoint)
	}
	exists, err := client.BucketExists(ctx, opts.BucketName)
	if err != nil {
		return nil, apierrors.NewBackendUnavailable(err, "check bucket %q", opts.BucketName)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, apierrors.NewBackendUnavailable(err, "create bucket %q", opts.BucketName)
		}
	}
	return &MinioStore{client: client, bucket: opts.BucketName}, nil
}

// Upload writes all bytes from r to key.
func (s *MinioStore) Upload(ctx context.Context, key string, r io.Reader, contentType string) error {
	clean, err := sanitizeKey(key)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, s.bucket, clean, r, -1, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return apierrors.NewBackendUnavailable(err, "upload %q", key)
	}
	return nil
}

// Download returns a restartable reader for key, or apierrors.NotFound if absent.
func (s *MinioStore) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	clean, err := sanitizeKey(key)
	if err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, clean, minio.GetObjectOptions{})
	if err != nil {
		return nil, apierrors.NewBackendUnavailable(err, "download %q", key)
	}
	if _, err := obj.Stat(); err != nil {
		var errResp minio.ErrorResponse
		if errors.As(err, &errResp) && errResp.Code == "NoSuchKey" {
			obj.Close()
			return nil, apierrors.NewNotFound("object %q not found", key)
		}
		obj.Close()
		return nil, apierrors.NewBackendUnavailable(err, "stat %q", key)
	}
	return obj, nil
}

// PresignedURL returns a time-bounded read URL for key.
func (s *MinioStore) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	clean, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	if _, err := s.client.StatObject(ctx, s.bucket, clean, minio.StatObjectOptions{}); err != nil {
		var errResp minio.ErrorResponse
		if errors.As(err, &errResp) && (errResp.Code == "NoSuchKey" || errResp.Code == "NotFound") {
			return "", apierrors.NewNotFound("object %q not found", key)
		}
		return "", apierrors.NewBackendUnavailable(err, "stat %q", key)
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, clean, ttl, nil)
	if err != nil {
		return "", apierrors.NewBackendUnavailable(err, "presign %q", key)
	}
	return u.String(), nil
}

// Delete removes key; absent keys are not an error.
func (s *MinioStore) Delete(ctx context.Context, key string) error {
	clean, err := sanitizeKey(key)
	if err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, clean, minio.RemoveObjectOptions{}); err != nil {
		return apierrors.NewBackendUnavailable(err, "delete %q", key)
	}
	return nil
}
