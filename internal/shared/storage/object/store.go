package object

import (
	"context"
	"io"
	"path"

	"slidesage-backend/internal/shared/util"
)

// ObjectStore saves and retrieves blobs by key.
type ObjectStore interface {
	Put(ctx context.Context, key string, contentType string, r io.Reader) (sizeBytes int64, err error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// ExtractedTextKey is the archive key of a document's normalized text.
// Owners are namespaced by a hash so raw user ids never appear in keys.
func ExtractedTextKey(userID, documentID string) string {
	return path.Join(util.HashUserKey(userID), documentID+".extracted.txt")
}
