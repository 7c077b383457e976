package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/pustok-backend/blobstore"
	"github.com/rpupo63/pustok-backend/database"
	"github.com/rpupo63/pustok-backend/errs"
	"github.com/rpupo63/pustok-backend/models"
	"github.com/rpupo63/pustok-backend/validation"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Stage is a step of a create or update call.
type Stage int

const (
	StageValidating Stage = iota
	StageReconcilingTags
	StageProcessingImages
	StageCommitting
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageValidating:
		return "validating"
	case StageReconcilingTags:
		return "reconciling_tags"
	case StageProcessingImages:
		return "processing_images"
	case StageCommitting:
		return "committing"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// BookService owns the book aggregate. Every mutation runs inside one
// transaction and every check completes before the first write.
type BookService struct {
	db        database.Database
	images    *ImageIntake
	validator *validation.Validator
	logger    zerolog.Logger

	policy      ImagePolicy
	concurrency int
}

type BookServiceOption func(*BookService)

func WithImagePolicy(p ImagePolicy) BookServiceOption {
	return func(s *BookService) { s.policy = p }
}

// WithUploadConcurrency bounds how many gallery images are written at once.
func WithUploadConcurrency(n int) BookServiceOption {
	return func(s *BookService) { s.concurrency = n }
}

func WithLogger(l zerolog.Logger) BookServiceOption {
	return func(s *BookService) { s.logger = l }
}

func NewBookService(db database.Database, blobs blobstore.Store, opts ...BookServiceOption) *BookService {
	s := &BookService{
		db:          db,
		validator:   validation.New(),
		logger:      log.Logger,
		policy:      DefaultImagePolicy,
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "book_service").Logger()
	s.images = NewImageIntake(blobs, s.policy, s.concurrency, s.logger)
	return s
}

// run tracks the stage of one call for logging.
type run struct {
	logger zerolog.Logger
	stage  Stage
}

func (s *BookService) newRun(op string, id uuid.UUID) *run {
	l := s.logger.With().Str("op", op).Logger()
	if id != uuid.Nil {
		l = l.With().Str("book_id", id.String()).Logger()
	}
	return &run{logger: l, stage: StageValidating}
}

func (r *run) enter(stage Stage) {
	r.stage = stage
	r.logger.Debug().Stringer("stage", stage).Msg("stage")
}

func (r *run) fail(err error) error {
	ev := r.logger.Warn()
	if errs.IsStoreError(err) {
		ev = r.logger.Error()
	}
	ev.Err(err).Stringer("stage", r.stage).Msg("book operation failed")
	r.stage = StageFailed
	return err
}

// Create persists a new book with its tag and image rows and returns the stored aggregate.
func (s *BookService) Create(ctx context.Context, in BookInput) (*models.Book, error) {
	r := s.newRun("create", uuid.Nil)
	r.enter(StageValidating)
	if err := s.validator.Validate(in.Fields); err != nil {
		return nil, r.fail(err)
	}

	var (
		bookID  uuid.UUID
		written []string
	)
	err := s.db.Transaction(ctx, "create book", func(tx database.Database) error {
		if err := NewReferenceValidator(tx).Validate(ctx, in.Fields.GenreID, in.Fields.AuthorID, in.TagIDs); err != nil {
			return err
		}
		plan, err := s.images.Plan(in)
		if err != nil {
			return err
		}

		r.enter(StageReconcilingTags)
		delta := ReconcileTags(nil, in.TagIDs)

		r.enter(StageProcessingImages)
		stored, err := s.images.Store(ctx, plan)
		if err != nil {
			return err
		}
		written = stored.refs()

		r.enter(StageCommitting)
		book := &models.Book{}
		applyFields(book, in.Fields)
		if err := tx.BookRepo().Add(ctx, book); err != nil {
			return errs.NewDatabaseError("create", "book", err)
		}
		if err := addTags(ctx, tx, book.ID, delta.Add); err != nil {
			return err
		}
		if err := addImages(ctx, tx, book.ID, stored); err != nil {
			return err
		}
		bookID = book.ID
		return nil
	})
	if err != nil {
		s.images.Discard(ctx, written)
		return nil, r.fail(err)
	}

	r.enter(StageDone)
	r.logger.Info().Str("book_id", bookID.String()).Int("tags", len(in.TagIDs)).Int("images", len(written)).Msg("book created")
	return s.GetByID(ctx, bookID)
}

// Update overwrites the scalar fields of book id, reconciles its tags and
// gallery against in, and replaces poster and hover when new ones are supplied.
func (s *BookService) Update(ctx context.Context, id uuid.UUID, in BookInput) (*models.Book, error) {
	r := s.newRun("update", id)
	r.enter(StageValidating)
	if err := s.validator.Validate(in.Fields); err != nil {
		return nil, r.fail(err)
	}

	var written, replaced []string
	err := s.db.Transaction(ctx, "update book", func(tx database.Database) error {
		book, err := tx.BookRepo().FindActive(ctx, id)
		if err != nil {
			return errs.NewDatabaseError("load", "book", err)
		}
		if book == nil {
			return errs.NewAggregateNotFoundError(id)
		}
		fieldsChanged := FieldsOf(book) != in.Fields
		applyFields(book, in.Fields)

		if err := NewReferenceValidator(tx).Validate(ctx, book.GenreID, book.AuthorID, in.TagIDs); err != nil {
			return err
		}
		plan, err := s.images.Plan(in)
		if err != nil {
			return err
		}

		r.enter(StageReconcilingTags)
		delta := ReconcileTags(book.Tags, in.TagIDs)
		dropped := ReconcileGallery(book.Gallery, in.RetainImageIDs)
		r.logger.Debug().
			Bool("fields_changed", fieldsChanged).
			Bool("tags_changed", !delta.Empty()).
			Interface("previous_tag_ids", book.TagIDs()).
			Interface("previous_gallery_ids", book.GalleryIDs()).
			Int("gallery_dropped", len(dropped)).
			Msg("reconciled children")

		r.enter(StageProcessingImages)
		stored, err := s.images.Store(ctx, plan)
		if err != nil {
			return err
		}
		written = stored.refs()

		r.enter(StageCommitting)
		if err := tx.BookRepo().Update(ctx, book); err != nil {
			return errs.NewDatabaseError("update", "book", err)
		}
		for _, bt := range delta.Remove {
			if err := tx.BookTagRepo().Delete(ctx, bt.ID); err != nil {
				return errs.NewDatabaseError("delete", "book tag", err)
			}
		}
		if err := addTags(ctx, tx, book.ID, delta.Add); err != nil {
			return err
		}
		for _, img := range dropped {
			if err := tx.BookImageRepo().Delete(ctx, img.ID); err != nil {
				return errs.NewDatabaseError("delete", "book image", err)
			}
			replaced = append(replaced, img.ImageURL)
		}
		// The old row must go before the new one is inserted or the
		// one-poster-per-book index rejects the insert.
		if stored.poster != "" && book.Poster != nil {
			if err := tx.BookImageRepo().Delete(ctx, book.Poster.ID); err != nil {
				return errs.NewDatabaseError("delete", "poster image", err)
			}
			replaced = append(replaced, book.Poster.ImageURL)
		}
		if stored.hover != "" && book.Hover != nil {
			if err := tx.BookImageRepo().Delete(ctx, book.Hover.ID); err != nil {
				return errs.NewDatabaseError("delete", "hover image", err)
			}
			replaced = append(replaced, book.Hover.ImageURL)
		}
		return addImages(ctx, tx, book.ID, stored)
	})
	if err != nil {
		s.images.Discard(ctx, written)
		return nil, r.fail(err)
	}

	s.images.Discard(ctx, replaced)
	r.enter(StageDone)
	r.logger.Info().Int("images_added", len(written)).Int("images_removed", len(replaced)).Msg("book updated")
	return s.GetByID(ctx, id)
}

// SoftDelete flags the book as deleted. Child rows are left in place.
func (s *BookService) SoftDelete(ctx context.Context, id uuid.UUID) error {
	ok, err := s.db.BookRepo().MarkDeleted(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("book_id", id.String()).Msg("soft delete failed")
		return errs.NewDatabaseError("delete", "book", err)
	}
	if !ok {
		return errs.NewAggregateNotFoundError(id)
	}
	s.logger.Info().Str("book_id", id.String()).Msg("book deleted")
	return nil
}

func (s *BookService) GetByID(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	book, err := s.db.BookRepo().FindActive(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("load", "book", err)
	}
	if book == nil {
		return nil, errs.NewAggregateNotFoundError(id)
	}
	return book, nil
}

// GetAll returns every live book. An empty catalog yields an empty slice.
func (s *BookService) GetAll(ctx context.Context) ([]*models.Book, error) {
	books, err := s.db.BookRepo().FindAllActive(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "books", err)
	}
	return books, nil
}

func addTags(ctx context.Context, tx database.Database, bookID uuid.UUID, tagIDs []uuid.UUID) error {
	for _, tagID := range tagIDs {
		bt := &models.BookTag{BookID: bookID, TagID: tagID}
		if err := tx.BookTagRepo().Add(ctx, bt); err != nil {
			return errs.NewDatabaseError("create", "book tag", err)
		}
	}
	return nil
}

func addImages(ctx context.Context, tx database.Database, bookID uuid.UUID, stored storedImages) error {
	add := func(ref string, role models.ImageRole) error {
		img := models.NewBookImage(bookID, ref, role)
		if err := tx.BookImageRepo().Add(ctx, &img); err != nil {
			return errs.NewDatabaseError("create", string(role)+" image", err)
		}
		return nil
	}
	if stored.poster != "" {
		if err := add(stored.poster, models.RolePoster); err != nil {
			return err
		}
	}
	if stored.hover != "" {
		if err := add(stored.hover, models.RoleHover); err != nil {
			return err
		}
	}
	for _, ref := range stored.gallery {
		if err := add(ref, models.RoleGallery); err != nil {
			return err
		}
	}
	return nil
}
