package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/pustok-backend/database"
	"github.com/rpupo63/pustok-backend/errs"
)

// ReferenceValidator confirms that the genre, author and tags a book points at exist.
// It only reads.
type ReferenceValidator struct {
	db database.Database
}

func NewReferenceValidator(db database.Database) ReferenceValidator {
	return ReferenceValidator{db: db}
}

// Validate checks genre, then author, then each tag in order and stops at the first miss.
func (v ReferenceValidator) Validate(ctx context.Context, genreID, authorID uuid.UUID, tagIDs []uuid.UUID) error {
	ok, err := v.db.GenreRepo().Exists(ctx, genreID)
	if err != nil {
		return errs.NewDatabaseError("check", "genre", err)
	}
	if !ok {
		return errs.NewReferenceNotFoundError("genreId")
	}

	ok, err = v.db.AuthorRepo().Exists(ctx, authorID)
	if err != nil {
		return errs.NewDatabaseError("check", "author", err)
	}
	if !ok {
		return errs.NewReferenceNotFoundError("authorId")
	}

	for _, tagID := range tagIDs {
		ok, err = v.db.TagRepo().Exists(ctx, tagID)
		if err != nil {
			return errs.NewDatabaseError("check", "tag", err)
		}
		if !ok {
			return errs.NewReferenceNotFoundError("tagId")
		}
	}
	return nil
}
