// Package objectstore implements the C1 content-addressed blob store
// contract with two conformant backends: a local filesystem store and a
// minio (S3-compatible) cloud store.
package objectstore

import (
	"fmt"
	"path"
	"strings"
)

// sanitizeKey validates a slash-separated object key, rejecting anything
// that could escape a configured root (spec §4.1: "no .. components; path
// segments sanitised").
func sanitizeKey(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("objectstore: empty key")
	}
	clean := path.Clean("/" + key)
	clean = strings.TrimPrefix(clean, "/")
	for _, seg := range strings.Split(clean, "/") {
		if seg == ".." || seg == "." || seg == "" {
			return "", fmt.Errorf("objectstore: invalid key %q", key)
		}
	}
	return clean, nil
}
