package services

import (
	"context"
	"testing"

	"github.com/rpupo63/pustok-backend/blobstore"
	"github.com/rpupo63/pustok-backend/errs"
	"github.com/rpupo63/pustok-backend/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImagePolicy_Check(t *testing.T) {
	p := DefaultImagePolicy

	tests := []struct {
		name    string
		img     ImageUpload
		wantErr func(error) bool
	}{
		{"gif", ImageUpload{ContentType: "image/gif", Size: 1}, errs.IsInvalidImageFormat},
		{"oversized gif reports format", ImageUpload{ContentType: "image/gif", Size: 10 << 20}, errs.IsInvalidImageFormat},
		{"3MB png", ImageUpload{ContentType: "image/png", Size: 3 << 20}, errs.IsImageTooLarge},
		{"declared size understated", ImageUpload{ContentType: "image/png", Size: 1, Data: make([]byte, MaxImageBytes+1)}, errs.IsImageTooLarge},
		{"1MB jpeg", ImageUpload{ContentType: "image/jpeg", Size: 1 << 20}, nil},
		{"exactly at limit", ImageUpload{ContentType: "image/png", Size: MaxImageBytes}, nil},
		{"content type parameters", ImageUpload{ContentType: "image/JPEG; charset=binary", Size: 10}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.Check(models.RolePoster, tt.img)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, tt.wantErr(err))

			var apiErr *errs.ApiErr
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, "poster", apiErr.Field)
		})
	}
}

func TestImageIntake_StoreUsesSlotCategories(t *testing.T) {
	blobs := newMemStore()
	intake := NewImageIntake(blobs, DefaultImagePolicy, 3, zerolog.Nop())

	plan, err := intake.Plan(BookInput{
		Poster:  jpeg(10),
		Hover:   jpeg(10),
		Gallery: []ImageUpload{png(10), png(20), png(30), png(40)},
	})
	require.NoError(t, err)

	stored, err := intake.Store(context.Background(), plan)
	require.NoError(t, err)

	assert.Contains(t, stored.poster, string(blobstore.CategoryPoster))
	assert.Contains(t, stored.hover, string(blobstore.CategoryHover))
	require.Len(t, stored.gallery, 4)
	for _, ref := range stored.gallery {
		assert.Contains(t, ref, string(blobstore.CategoryGallery))
	}
	assert.Len(t, stored.refs(), 6)
	assert.Equal(t, 6, blobs.len())
}

func TestImageIntake_EmptyPlanWritesNothing(t *testing.T) {
	blobs := newMemStore()
	intake := NewImageIntake(blobs, DefaultImagePolicy, 0, zerolog.Nop())

	plan, err := intake.Plan(BookInput{})
	require.NoError(t, err)
	stored, err := intake.Store(context.Background(), plan)
	require.NoError(t, err)
	assert.Empty(t, stored.refs())
	assert.Equal(t, 0, blobs.len())
}

func TestImageIntake_FailedSaveDiscardsEarlierWrites(t *testing.T) {
	blobs := newMemStore()
	blobs.failOn = blobstore.CategoryHover
	intake := NewImageIntake(blobs, DefaultImagePolicy, 1, zerolog.Nop())

	plan, err := intake.Plan(BookInput{Poster: jpeg(10), Hover: jpeg(10)})
	require.NoError(t, err)

	_, err = intake.Store(context.Background(), plan)
	require.Error(t, err)
	assert.True(t, errs.IsStoreError(err))
	assert.Equal(t, 0, blobs.len())
	assert.Len(t, blobs.deleted, 1)
}
