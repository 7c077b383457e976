package services

import (
	"context"
	"strings"

	"github.com/rpupo63/pustok-backend/database"
	"github.com/rpupo63/pustok-backend/errs"
	"github.com/rpupo63/pustok-backend/models"
)

// CatalogService manages the reference data books point at.
type CatalogService struct {
	db database.Database
}

func NewCatalogService(db database.Database) *CatalogService {
	return &CatalogService{db: db}
}

func cleanName(kind, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errs.NewInvalidFieldError("name", kind+" name is required")
	}
	if len(name) > 255 {
		return "", errs.NewInvalidFieldError("name", "must not exceed 255 characters")
	}
	return name, nil
}

func (s *CatalogService) ListAuthors(ctx context.Context) ([]*models.Author, error) {
	authors, err := s.db.AuthorRepo().FindAll(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "authors", err)
	}
	return authors, nil
}

func (s *CatalogService) CreateAuthor(ctx context.Context, name string) (*models.Author, error) {
	name, err := cleanName("author", name)
	if err != nil {
		return nil, err
	}
	author := &models.Author{Name: name}
	if err := s.db.AuthorRepo().Add(ctx, author); err != nil {
		return nil, errs.NewDatabaseError("create", "author", err)
	}
	return author, nil
}

func (s *CatalogService) ListGenres(ctx context.Context) ([]*models.Genre, error) {
	genres, err := s.db.GenreRepo().FindAll(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "genres", err)
	}
	return genres, nil
}

func (s *CatalogService) CreateGenre(ctx context.Context, name string) (*models.Genre, error) {
	name, err := cleanName("genre", name)
	if err != nil {
		return nil, err
	}
	genre := &models.Genre{Name: name}
	if err := s.db.GenreRepo().Add(ctx, genre); err != nil {
		return nil, errs.NewDatabaseError("create", "genre", err)
	}
	return genre, nil
}

func (s *CatalogService) ListTags(ctx context.Context) ([]*models.Tag, error) {
	tags, err := s.db.TagRepo().FindAll(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "tags", err)
	}
	return tags, nil
}

// CreateTag adds a tag. Tag names are unique; a duplicate is reported as a conflict.
func (s *CatalogService) CreateTag(ctx context.Context, name string) (*models.Tag, error) {
	name, err := cleanName("tag", name)
	if err != nil {
		return nil, err
	}
	tag := &models.Tag{Name: name}
	if err := s.db.TagRepo().Add(ctx, tag); err != nil {
		return nil, errs.NewDatabaseError("create", "tag", err)
	}
	return tag, nil
}
