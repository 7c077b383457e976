package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rpupo63/pustok-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookRepo struct {
	db *gorm.DB
}

func NewBookRepo(db *gorm.DB) *BookRepo {
	return &BookRepo{db}
}

// withChildren preloads every association of the aggregate.
func withChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Genre").
		Preload("Author").
		Preload("Tags.Tag").
		Preload("Poster", "is_poster = ?", true).
		Preload("Hover", "is_poster = ?", false).
		Preload("Gallery", "is_poster IS NULL")
}

// FindAllActive returns every book that is not soft-deleted, with children populated.
func (r *BookRepo) FindAllActive(ctx context.Context) ([]*models.Book, error) {
	books := []*models.Book{}
	err := withChildren(r.db.WithContext(ctx)).
		Where("is_deleted = ?", false).
		Order("created_at").
		Find(&books).Error
	return books, err
}

// FindActive returns a non-deleted book by id with children populated.
// It returns (nil, nil) when no such book exists.
func (r *BookRepo) FindActive(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	var book models.Book
	err := withChildren(r.db.WithContext(ctx)).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// Add inserts the book row only. Child rows are written through their own repos.
func (r *BookRepo) Add(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(book).Error
}

// Update writes every column of the book row without touching associations.
func (r *BookRepo) Update(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(book).Error
}

// MarkDeleted flags a live book as deleted. It reports whether a row changed.
func (r *BookRepo) MarkDeleted(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update("is_deleted", true)
	return res.RowsAffected > 0, res.Error
}
