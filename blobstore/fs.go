package blobstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultFSURLPrefix is the reference prefix of filesystem blobs when no public base URL is set.
const DefaultFSURLPrefix = "/uploads"

// FSStore writes blobs below a root directory.
type FSStore struct {
	root      string
	urlPrefix string
}

// NewFSStore creates the root directory if needed.
func NewFSStore(root, urlPrefix string) (*FSStore, error) {
	if root == "" {
		return nil, fmt.Errorf("upload root cannot be empty")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload root: %w", err)
	}
	if urlPrefix == "" {
		urlPrefix = DefaultFSURLPrefix
	}
	return &FSStore{root: root, urlPrefix: urlPrefix}, nil
}

// Root is the directory blobs are written under.
func (s *FSStore) Root() string {
	return s.root
}

// URLPrefix is the prefix every reference returned by Save starts with.
func (s *FSStore) URLPrefix() string {
	return s.urlPrefix
}

// Save ignores filename; the file is named after its content type only.
func (s *FSStore) Save(ctx context.Context, category Category, _, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := objectKey(category, contentType)
	full := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return "", fmt.Errorf("failed to create %s directory: %w", category, err)
	}
	if err := os.WriteFile(full, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	return joinURL(s.urlPrefix, key), nil
}

func (s *FSStore) Delete(ctx context.Context, ref string) error {
	key, ok := keyFromRef(s.urlPrefix, ref)
	if !ok || strings.Contains(key, "..") {
		return fmt.Errorf("reference %q does not belong to this store", ref)
	}
	if err := os.Remove(filepath.Join(s.root, filepath.FromSlash(key))); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image file: %w", err)
	}
	return nil
}
