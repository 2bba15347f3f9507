package blob

import (
	"context"
	"strings"
)

// BlobStore holds raw uploads (audio chunks, recordings, documents) keyed
// by object path. Put returns a stable URI for the stored object.
type BlobStore interface {
	Put(ctx context.Context, path string, data []byte, contentType string) (uri string, err error)
	Get(ctx context.Context, path string) ([]byte, error)

	// DeleteByPrefix removes every object under the prefix. Used to drop
	// all backed-up chunks of one appointment at once.
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// ObjectPath converts a gs://bucket/path URI back to the object path the
// store was given. Anything without the gs:// scheme is returned unchanged.
func ObjectPath(uri string) string {
	rest, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return uri
	}
	if _, path, found := strings.Cut(rest, "/"); found {
		return path
	}
	return rest
}
