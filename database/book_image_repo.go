package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/pustok-backend/models"
	"gorm.io/gorm"
)

type BookImageRepo struct {
	db *gorm.DB
}

func NewBookImageRepo(db *gorm.DB) *BookImageRepo {
	return &BookImageRepo{db}
}

// FindByBook returns every image row of a book, whatever its role
func (r *BookImageRepo) FindByBook(ctx context.Context, bookID uuid.UUID) ([]models.BookImage, error) {
	var images []models.BookImage
	err := r.db.WithContext(ctx).Where("book_id = ?", bookID).Find(&images).Error
	return images, err
}

// Add inserts a new book image into the database
func (r *BookImageRepo) Add(ctx context.Context, image *models.BookImage) error {
	return r.db.WithContext(ctx).Create(image).Error
}

// Delete removes a book image from the database by id
func (r *BookImageRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.BookImage{}, "id = ?", id).Error
}
