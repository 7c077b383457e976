package database

import (
	"context"
	"errors"

	"github.com/rpupo63/pustok-backend/errs"
	"gorm.io/gorm"
)

type Database struct {
	db            *gorm.DB
	bookRepo      *BookRepo
	bookTagRepo   *BookTagRepo
	bookImageRepo *BookImageRepo
	authorRepo    *AuthorRepo
	genreRepo     *GenreRepo
	tagRepo       *TagRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:            db,
		bookRepo:      NewBookRepo(db),
		bookTagRepo:   NewBookTagRepo(db),
		bookImageRepo: NewBookImageRepo(db),
		authorRepo:    NewAuthorRepo(db),
		genreRepo:     NewGenreRepo(db),
		tagRepo:       NewTagRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) BookRepo() *BookRepo {
	return d.bookRepo
}

func (d Database) BookTagRepo() *BookTagRepo {
	return d.bookTagRepo
}

func (d Database) BookImageRepo() *BookImageRepo {
	return d.bookImageRepo
}

func (d Database) AuthorRepo() *AuthorRepo {
	return d.authorRepo
}

func (d Database) GenreRepo() *GenreRepo {
	return d.genreRepo
}

func (d Database) TagRepo() *TagRepo {
	return d.tagRepo
}

// Transaction runs fn against a Database whose repositories all share one
// transaction. The transaction commits when fn returns nil and rolls back
// otherwise, including on panic. Errors already classified by errs pass
// through unchanged; anything else (a failed commit) becomes a transaction failure.
func (d Database) Transaction(ctx context.Context, operation string, fn func(tx Database) error) error {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
	if err == nil {
		return nil
	}
	var apiErr *errs.ApiErr
	if errors.As(err, &apiErr) {
		return err
	}
	return errs.NewTransactionFailedError(operation, err)
}

// Ping checks that the underlying connection is usable.
func (d Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
