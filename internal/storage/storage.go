// Package storage holds version content in S3-compatible object storage.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"
)

// ErrObjectNotFound is returned by Get when the key does not exist.
var ErrObjectNotFound = errors.New("storage: object not found")

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known, or -1 to let the backend chunk.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is a streaming object store for version content.
type Storage interface {
	// Put uploads an object under the given key.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
	// List returns the objects whose key starts with prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}

// VersionKey is the object key of a version's content. The original extension is kept
// so extractors and downloads can sniff the format.
func VersionKey(documentID, versionID, filename string) string {
	return path.Join("documents", documentID, versionID+strings.ToLower(path.Ext(filename)))
}

// StagingPrefix is the key prefix of staged uploads.
const StagingPrefix = "staging/"

// StagingKey is the object key of an upload awaiting a create or upload decision.
func StagingKey(stagingID, filename string) string {
	return StagingPrefix + stagingID + strings.ToLower(path.Ext(filename))
}

// StagingIDFromKey reverses StagingKey.
func StagingIDFromKey(key string) string {
	base := path.Base(key)
	return strings.TrimSuffix(base, path.Ext(base))
}
