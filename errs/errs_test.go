package errs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestNewDatabaseError(t *testing.T) {
	tests := []struct {
		name       string
		cause      error
		wantStatus int
		wantIs     error
	}{
		{"pg unique", &pgconn.PgError{Code: "23505"}, http.StatusConflict, ErrUniqueConstraintViolation},
		{"gorm duplicated key", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), http.StatusConflict, ErrUniqueConstraintViolation},
		{"pg foreign key", &pgconn.PgError{Code: "23503"}, http.StatusBadRequest, ErrForeignKeyConstraint},
		{"gorm foreign key", gorm.ErrForeignKeyViolated, http.StatusBadRequest, ErrForeignKeyConstraint},
		{"serialization", &pgconn.PgError{Code: "40001"}, http.StatusConflict, ErrTransactionFailed},
		{"connection", &pgconn.PgError{Code: "08006"}, http.StatusServiceUnavailable, ErrDatabaseConnection},
		{"deadline", context.DeadlineExceeded, http.StatusServiceUnavailable, ErrDatabaseConnection},
		{"anything else", errors.New("syntax error"), http.StatusInternalServerError, ErrDatabaseQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDatabaseError("create", "book", tt.cause)
			assert.Equal(t, tt.wantStatus, err.StatusCode)
			assert.ErrorIs(t, err, tt.wantIs)
			assert.True(t, IsStoreError(err))
			assert.False(t, IsUserCorrectable(err))
		})
	}
}

func TestNewDatabaseError_PassesApiErrThrough(t *testing.T) {
	orig := NewReferenceNotFoundError("genreId")
	assert.Same(t, orig, NewDatabaseError("check", "genre", orig))
}

func TestCatalogErrors(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name       string
		err        *ApiErr
		is         func(error) bool
		wantStatus int
		wantField  string
	}{
		{"reference", NewReferenceNotFoundError("tagId"), IsReferenceNotFound, http.StatusBadRequest, "tagId"},
		{"aggregate", NewAggregateNotFoundError(id), IsAggregateNotFound, http.StatusNotFound, ""},
		{"format", NewInvalidImageFormatError("poster", "image/gif", []string{"image/png"}), IsInvalidImageFormat, http.StatusUnsupportedMediaType, "poster"},
		{"size", NewImageTooLargeError("gallery", 3<<20, 2<<20), IsImageTooLarge, http.StatusRequestEntityTooLarge, "gallery"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.is(tt.err))
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
			assert.Equal(t, tt.wantField, tt.err.Field)
			assert.True(t, IsUserCorrectable(tt.err))
			assert.False(t, IsStoreError(tt.err))
		})
	}

	assert.Contains(t, NewAggregateNotFoundError(id).Error(), id.String())
}

func TestApiErr_GetFullError(t *testing.T) {
	inner := NewBlobStoreError("poster", errors.New("bucket gone"))
	outer := NewTransactionFailedError("create book", inner)

	full := outer.GetFullError()
	assert.Contains(t, full, "Transaction failed during create book")
	assert.Contains(t, full, "Failed to store poster image")
	assert.Contains(t, full, "bucket gone")
	assert.True(t, IsTransactionFailedError(outer))
}

func TestWrappedSentinels(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFoundError("tag")))
	assert.True(t, IsBadRequest(NewBadRequestError("bad id")))
	assert.True(t, IsConflict(NewConflictError("dup")))
	assert.True(t, IsInvalidFieldError(NewInvalidFieldError("name", "is required")))
	assert.True(t, IsMalformedPayloadError(NewMalformedPayloadError("JSON", nil)))
}
