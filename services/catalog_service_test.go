package services

import (
	"context"
	"testing"

	"github.com/rpupo63/pustok-backend/database"
	"github.com/rpupo63/pustok-backend/database/dbtest"
	"github.com/rpupo63/pustok-backend/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewCatalogService(database.New(db))
	ctx := context.Background()

	author, err := svc.CreateAuthor(ctx, "  Ursula K. Le Guin ")
	require.NoError(t, err)
	assert.Equal(t, "Ursula K. Le Guin", author.Name)

	_, err = svc.CreateGenre(ctx, "Fantasy")
	require.NoError(t, err)
	_, err = svc.CreateGenre(ctx, "Drama")
	require.NoError(t, err)

	genres, err := svc.ListGenres(ctx)
	require.NoError(t, err)
	require.Len(t, genres, 2)
	assert.Equal(t, "Drama", genres[0].Name)

	_, err = svc.CreateTag(ctx, "classic")
	require.NoError(t, err)
	_, err = svc.CreateTag(ctx, "classic")
	require.Error(t, err)
	assert.True(t, errs.IsUniqueConstraintViolationError(err))

	_, err = svc.CreateAuthor(ctx, "   ")
	assert.True(t, errs.IsInvalidFieldError(err))

	authors, err := svc.ListAuthors(ctx)
	require.NoError(t, err)
	assert.Len(t, authors, 1)

	tags, err := svc.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}
