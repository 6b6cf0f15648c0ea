package storage

import (
	"context"
	"io"
)

// ObjectStore defines the minimal blob operations the upload pipeline and
// query results handling need.
type ObjectStore interface {
	// Put writes body to bucket/key, overwriting any existing object.
	Put(ctx context.Context, bucket, key string, body io.Reader) error
	// Get returns a reader for bucket/key and the object size if known.
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, int64, error)
}
