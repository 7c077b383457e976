package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/pustok-backend/models"
	"gorm.io/gorm"
)

func exists(ctx context.Context, db *gorm.DB, model any, id uuid.UUID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(model).Where("id = ?", id).Limit(1).Count(&count).Error
	return count > 0, err
}

type AuthorRepo struct {
	db *gorm.DB
}

func NewAuthorRepo(db *gorm.DB) *AuthorRepo {
	return &AuthorRepo{db}
}

// FindAll returns all authors ordered by name
func (r *AuthorRepo) FindAll(ctx context.Context) ([]*models.Author, error) {
	authors := []*models.Author{}
	err := r.db.WithContext(ctx).Order("name").Find(&authors).Error
	return authors, err
}

func (r *AuthorRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists(ctx, r.db, &models.Author{}, id)
}

func (r *AuthorRepo) Add(ctx context.Context, author *models.Author) error {
	return r.db.WithContext(ctx).Create(author).Error
}

type GenreRepo struct {
	db *gorm.DB
}

func NewGenreRepo(db *gorm.DB) *GenreRepo {
	return &GenreRepo{db}
}

// FindAll returns all genres ordered by name
func (r *GenreRepo) FindAll(ctx context.Context) ([]*models.Genre, error) {
	genres := []*models.Genre{}
	err := r.db.WithContext(ctx).Order("name").Find(&genres).Error
	return genres, err
}

func (r *GenreRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists(ctx, r.db, &models.Genre{}, id)
}

func (r *GenreRepo) Add(ctx context.Context, genre *models.Genre) error {
	return r.db.WithContext(ctx).Create(genre).Error
}

type TagRepo struct {
	db *gorm.DB
}

func NewTagRepo(db *gorm.DB) *TagRepo {
	return &TagRepo{db}
}

// FindAll returns all tags ordered by name
func (r *TagRepo) FindAll(ctx context.Context) ([]*models.Tag, error) {
	tags := []*models.Tag{}
	err := r.db.WithContext(ctx).Order("name").Find(&tags).Error
	return tags, err
}

func (r *TagRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists(ctx, r.db, &models.Tag{}, id)
}

func (r *TagRepo) Add(ctx context.Context, tag *models.Tag) error {
	return r.db.WithContext(ctx).Create(tag).Error
}
