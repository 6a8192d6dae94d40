package object

import (
	"context"
	"io"
)

// ObjectStore saves and retrieves binary objects such as archived model
// replies.
type ObjectStore interface {
	// Save writes r under namespace with a random prefix on fileName and
	// returns the storage key.
	Save(ctx context.Context, namespace string, fileName string, contentType string, r io.Reader) (storageKey string, sizeBytes int64, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
}
