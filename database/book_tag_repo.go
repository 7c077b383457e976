package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/pustok-backend/models"
	"gorm.io/gorm"
)

type BookTagRepo struct {
	db *gorm.DB
}

func NewBookTagRepo(db *gorm.DB) *BookTagRepo {
	return &BookTagRepo{db}
}

// FindByBook returns the tag associations of a book
func (r *BookTagRepo) FindByBook(ctx context.Context, bookID uuid.UUID) ([]models.BookTag, error) {
	var bookTags []models.BookTag
	err := r.db.WithContext(ctx).Where("book_id = ?", bookID).Find(&bookTags).Error
	return bookTags, err
}

// Add inserts a new book tag into the database
func (r *BookTagRepo) Add(ctx context.Context, bookTag *models.BookTag) error {
	return r.db.WithContext(ctx).Omit("Tag").Create(bookTag).Error
}

// Delete removes a book tag from the database by id
func (r *BookTagRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.BookTag{}, "id = ?", id).Error
}
