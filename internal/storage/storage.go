// Package storage publishes benchmark reports to an object store.
package storage

import (
	"context"
	"errors"
	"path"
	"strings"
)

// Common errors for storage operations.
var (
	ErrObjectNotFound = errors.New("object not found")
	ErrUploadFailed   = errors.New("upload failed")
	ErrDownloadFailed = errors.New("download failed")
	ErrDeleteFailed   = errors.New("delete failed")
)

// ObjectStorage is a flat key/object store for report files.
// Implementations: S3 and the local filesystem.
type ObjectStorage interface {
	// Upload copies the file at localPath to objectPath.
	Upload(ctx context.Context, localPath, objectPath string) error

	// Download copies objectPath to localPath.
	// Returns ErrObjectNotFound when the object is absent.
	Download(ctx context.Context, objectPath, localPath string) error

	// Delete removes an object. Deleting an absent object is not an error.
	Delete(ctx context.Context, objectPath string) error

	// Exists reports whether objectPath is present.
	Exists(ctx context.Context, objectPath string) (bool, error)

	// ListObjects returns the object paths under prefix in lexical order.
	ListObjects(ctx context.Context, prefix string) ([]string, error)
}

// contentType maps report file extensions to MIME types.
func contentType(objectPath string) string {
	name := strings.TrimSuffix(objectPath, ".sz")
	switch path.Ext(name) {
	case ".json":
		return "application/json"
	case ".csv":
		return "text/csv"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// contentEncoding is set for snappy-framed report files.
func contentEncoding(objectPath string) string {
	if strings.HasSuffix(objectPath, ".sz") {
		return "x-snappy-framed"
	}
	return ""
}
