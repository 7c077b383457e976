package services

import (
	"context"
	"mime"
	"slices"
	"strings"

	"github.com/rpupo63/pustok-backend/blobstore"
	"github.com/rpupo63/pustok-backend/errs"
	"github.com/rpupo63/pustok-backend/models"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// MaxImageBytes is the per-image size ceiling shared by every slot.
const MaxImageBytes int64 = 2097152

// ImagePolicy decides which uploads are acceptable.
type ImagePolicy struct {
	AllowedTypes []string
	MaxBytes     int64
}

var DefaultImagePolicy = ImagePolicy{
	AllowedTypes: []string{"image/jpeg", "image/png"},
	MaxBytes:     MaxImageBytes,
}

// Check validates the declared content type first and the size second.
func (p ImagePolicy) Check(slot models.ImageRole, img ImageUpload) error {
	contentType := normalizeContentType(img.ContentType)
	if !slices.Contains(p.AllowedTypes, contentType) {
		return errs.NewInvalidImageFormatError(string(slot), img.ContentType, p.AllowedTypes)
	}
	size := img.Size
	if n := int64(len(img.Data)); n > size {
		size = n
	}
	if size > p.MaxBytes {
		return errs.NewImageTooLargeError(string(slot), size, p.MaxBytes)
	}
	return nil
}

func normalizeContentType(ct string) string {
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(ct))
	}
	return mediaType
}

var slotCategory = map[models.ImageRole]blobstore.Category{
	models.RolePoster:  blobstore.CategoryPoster,
	models.RoleHover:   blobstore.CategoryHover,
	models.RoleGallery: blobstore.CategoryGallery,
}

// intakePlan holds uploads that passed validation and have not been written anywhere yet.
type intakePlan struct {
	poster  *ImageUpload
	hover   *ImageUpload
	gallery []ImageUpload
}

func (p intakePlan) empty() bool {
	return p.poster == nil && p.hover == nil && len(p.gallery) == 0
}

// storedImages holds the blob references produced for a plan.
type storedImages struct {
	poster  string
	hover   string
	gallery []string
}

func (s storedImages) refs() []string {
	var refs []string
	if s.poster != "" {
		refs = append(refs, s.poster)
	}
	if s.hover != "" {
		refs = append(refs, s.hover)
	}
	return append(refs, s.gallery...)
}

// ImageIntake validates image candidates and hands accepted bytes to the blob store.
type ImageIntake struct {
	blobs       blobstore.Store
	policy      ImagePolicy
	concurrency int
	logger      zerolog.Logger
}

func NewImageIntake(blobs blobstore.Store, policy ImagePolicy, concurrency int, logger zerolog.Logger) *ImageIntake {
	if concurrency < 1 {
		concurrency = 1
	}
	return &ImageIntake{
		blobs:       blobs,
		policy:      policy,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Plan validates every candidate of in. Nothing is written.
func (in *ImageIntake) Plan(input BookInput) (intakePlan, error) {
	var plan intakePlan
	if input.Poster != nil {
		if err := in.policy.Check(models.RolePoster, *input.Poster); err != nil {
			return intakePlan{}, err
		}
		plan.poster = input.Poster
	}
	if input.Hover != nil {
		if err := in.policy.Check(models.RoleHover, *input.Hover); err != nil {
			return intakePlan{}, err
		}
		plan.hover = input.Hover
	}
	for _, img := range input.Gallery {
		if err := in.policy.Check(models.RoleGallery, img); err != nil {
			return intakePlan{}, err
		}
	}
	plan.gallery = input.Gallery
	return plan, nil
}

// Store writes the planned images. Gallery images are written concurrently.
// On failure every blob already written for this plan is removed again.
func (in *ImageIntake) Store(ctx context.Context, plan intakePlan) (storedImages, error) {
	var out storedImages
	if plan.empty() {
		return out, nil
	}

	var err error
	if plan.poster != nil {
		if out.poster, err = in.save(ctx, models.RolePoster, *plan.poster); err != nil {
			return storedImages{}, err
		}
	}
	if plan.hover != nil {
		if out.hover, err = in.save(ctx, models.RoleHover, *plan.hover); err != nil {
			in.Discard(ctx, out.refs())
			return storedImages{}, err
		}
	}

	gallery := make([]string, len(plan.gallery))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.concurrency)
	for i, img := range plan.gallery {
		g.Go(func() error {
			ref, err := in.save(gctx, models.RoleGallery, img)
			if err != nil {
				return err
			}
			gallery[i] = ref
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		written := out.refs()
		for _, ref := range gallery {
			if ref != "" {
				written = append(written, ref)
			}
		}
		in.Discard(ctx, written)
		return storedImages{}, err
	}
	out.gallery = gallery
	return out, nil
}

func (in *ImageIntake) save(ctx context.Context, slot models.ImageRole, img ImageUpload) (string, error) {
	category := slotCategory[slot]
	ref, err := in.blobs.Save(ctx, category, img.Filename, normalizeContentType(img.ContentType), img.Data)
	if err != nil {
		return "", errs.NewBlobStoreError(string(slot), err)
	}
	in.logger.Debug().
		Str("slot", string(slot)).
		Str("ref", ref).
		Int("bytes", len(img.Data)).
		Msg("stored image")
	return ref, nil
}

// Discard deletes blobs best-effort. Anything that cannot be removed is logged
// as an orphan.
func (in *ImageIntake) Discard(ctx context.Context, refs []string) {
	ctx = context.WithoutCancel(ctx)
	for _, ref := range refs {
		if err := in.blobs.Delete(ctx, ref); err != nil {
			in.logger.Error().Err(err).Str("ref", ref).Msg("orphaned image blob")
		}
	}
}
