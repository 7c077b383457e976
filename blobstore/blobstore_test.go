package blobstore

import (
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		wantExt     string
	}{
		{"jpeg", "image/jpeg", ".jpg"},
		{"png", "image/png", ".png"},
		{"unknown type", "application/x-unknown-thing", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := objectKey(CategoryPoster, tt.contentType)
			assert.True(t, strings.HasPrefix(key, "books/poster/"), key)
			assert.Equal(t, tt.wantExt, filepath.Ext(key))
		})
	}

	assert.NotEqual(t, objectKey(CategoryGallery, "image/png"), objectKey(CategoryGallery, "image/png"))
}

func TestStores_IgnoreClientExtension(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFSStore(t.TempDir(), "")
	require.NoError(t, err)
	client := &fakeS3{objects: map[string][]byte{}, metadata: map[string]map[string]string{}}
	s3Store, err := NewS3Store(client, "covers", "eu-west-1", "")
	require.NoError(t, err)

	for name, store := range map[string]Store{"fs": fs, "s3": s3Store} {
		t.Run(name, func(t *testing.T) {
			ref, err := store.Save(ctx, CategoryGallery, "evil.html", "image/png", []byte("<script>alert(1)</script>"))
			require.NoError(t, err)
			assert.Equal(t, ".png", path.Ext(ref), ref)
		})
	}

	for _, meta := range client.metadata {
		assert.Equal(t, "evil.html", meta[originalFilenameKey])
	}
}

func TestKeyFromRef(t *testing.T) {
	key, ok := keyFromRef("https://cdn.example.com/", "https://cdn.example.com/books/hover/x.png")
	assert.True(t, ok)
	assert.Equal(t, "books/hover/x.png", key)

	_, ok = keyFromRef("https://cdn.example.com", "https://other.example.com/books/hover/x.png")
	assert.False(t, ok)
}

func TestFSStore(t *testing.T) {
	root := t.TempDir()
	store, err := NewFSStore(root, "")
	require.NoError(t, err)
	ctx := context.Background()

	ref, err := store.Save(ctx, CategoryGallery, "page.jpg", "image/jpeg", []byte("jpeg-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "/uploads/books/gallery/"), ref)

	full := filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(ref, "/uploads/")))
	data, err := os.ReadFile(full)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), data)

	require.NoError(t, store.Delete(ctx, ref))
	_, err = os.Stat(full)
	assert.True(t, os.IsNotExist(err))

	// Deleting twice is not an error.
	assert.NoError(t, store.Delete(ctx, ref))

	assert.Error(t, store.Delete(ctx, "/uploads/../etc/passwd"))
	assert.Error(t, store.Delete(ctx, "https://elsewhere/books/gallery/x.jpg"))
}

func TestFSStore_CanceledContext(t *testing.T) {
	store, err := NewFSStore(t.TempDir(), "/static")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.Save(ctx, CategoryPoster, "a.png", "image/png", []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

type fakeS3 struct {
	mu       sync.Mutex
	objects  map[string][]byte
	metadata map[string]map[string]string
	putErr   error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	buf := make([]byte, aws.ToInt64(in.ContentLength))
	_, _ = in.Body.Read(buf)
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.objects[key] = buf
	if f.metadata != nil {
		f.metadata[key] = in.Metadata
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store(t *testing.T) {
	client := &fakeS3{objects: map[string][]byte{}}
	store, err := NewS3Store(client, "covers", "eu-west-1", "")
	require.NoError(t, err)
	ctx := context.Background()

	ref, err := store.Save(ctx, CategoryHover, "h.png", "image/png", []byte("png"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "https://covers.s3.eu-west-1.amazonaws.com/books/hover/"), ref)
	assert.Len(t, client.objects, 1)

	require.NoError(t, store.Delete(ctx, ref))
	assert.Empty(t, client.objects)

	assert.Error(t, store.Delete(ctx, "/uploads/books/hover/h.png"))

	client.putErr = errors.New("slow down")
	_, err = store.Save(ctx, CategoryHover, "h.png", "image/png", []byte("png"))
	assert.ErrorContains(t, err, "slow down")

	_, err = NewS3Store(client, "", "eu-west-1", "")
	assert.Error(t, err)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Config{Backend: "ftp"})
	assert.Error(t, err)

	store, err := Open(context.Background(), Config{Root: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FSStore{}, store)
}
