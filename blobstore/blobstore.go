// Package blobstore persists uploaded image bytes and hands back an opaque reference.
//
// Writes are not transactional with the relational store. A crash between a
// successful Save and the database commit leaves an orphaned object behind.
package blobstore

import (
	"context"
	"fmt"
	"mime"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Category groups objects by the slot they were uploaded for.
type Category string

const (
	CategoryPoster  Category = "books/poster"
	CategoryHover   Category = "books/hover"
	CategoryGallery Category = "books/gallery"
)

// Store saves blobs under a category and deletes them by reference. filename
// is informational; keys are derived from the category and content type.
type Store interface {
	Save(ctx context.Context, category Category, filename, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, ref string) error
}

// Backend names accepted by Open.
const (
	BackendFS  = "fs"
	BackendS3  = "s3"
	BackendGCS = "gcs"
)

type Config struct {
	Backend       string
	Root          string // filesystem root for BackendFS
	PublicBaseURL string // prefix of returned references; defaults per backend
	S3Bucket      string
	S3Region      string
	GCSBucket     string
}

// Open builds the Store selected by cfg.Backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendFS:
		return NewFSStore(cfg.Root, cfg.PublicBaseURL)
	case BackendS3:
		return NewS3StoreFromConfig(ctx, cfg.S3Bucket, cfg.S3Region, cfg.PublicBaseURL)
	case BackendGCS:
		return NewGCSStore(ctx, cfg.GCSBucket, cfg.PublicBaseURL)
	default:
		return nil, fmt.Errorf("unsupported blob backend %q", cfg.Backend)
	}
}

// originalFilenameKey is the object metadata key the client filename is kept under.
const originalFilenameKey = "original-filename"

var extByType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// objectKey returns a collision-free key for an upload in category. The
// extension comes from contentType alone.
func objectKey(category Category, contentType string) string {
	ext := extByType[contentType]
	if ext == "" {
		if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
			ext = exts[0]
		}
	}
	return path.Join(string(category), uuid.NewString()+ext)
}

// joinURL joins a base URL or path prefix with an object key.
func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}

// keyFromRef strips base from ref. ok is false when ref was not produced under base.
func keyFromRef(base, ref string) (string, bool) {
	prefix := strings.TrimRight(base, "/") + "/"
	if !strings.HasPrefix(ref, prefix) {
		return "", false
	}
	return strings.TrimPrefix(ref, prefix), true
}
