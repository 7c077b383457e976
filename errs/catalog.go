package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Catalog errors. Everything except ErrStoreFailure is caller-correctable.
var (
	ErrReferenceNotFound  = errors.New("referenced resource not found")
	ErrAggregateNotFound  = errors.New("book not found")
	ErrInvalidImageFormat = errors.New("invalid image format")
	ErrImageTooLarge      = errors.New("image too large")
)

// NewReferenceNotFoundError reports a foreign key (genreId, authorId, tagId) that does not resolve.
func NewReferenceNotFoundError(field string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrReferenceNotFound,
		Details:    fmt.Sprintf("No record matches %s", field),
		Field:      field,
	}
}

func NewAggregateNotFoundError(id fmt.Stringer) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusNotFound,
		err:        ErrAggregateNotFound,
		Details:    fmt.Sprintf("Book %s does not exist or was deleted", id),
	}
}

func NewInvalidImageFormatError(field, contentType string, allowed []string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnsupportedMediaType,
		err:        ErrInvalidImageFormat,
		Details:    fmt.Sprintf("Content type %q is not allowed. Allowed types: %v", contentType, allowed),
		Field:      field,
	}
}

func NewImageTooLargeError(field string, size, limit int64) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusRequestEntityTooLarge,
		err:        ErrImageTooLarge,
		Details:    fmt.Sprintf("Image is %d bytes, limit is %d bytes", size, limit),
		Field:      field,
	}
}

func IsReferenceNotFound(err error) bool {
	return errors.Is(err, ErrReferenceNotFound)
}

func IsAggregateNotFound(err error) bool {
	return errors.Is(err, ErrAggregateNotFound)
}

func IsInvalidImageFormat(err error) bool {
	return errors.Is(err, ErrInvalidImageFormat)
}

func IsImageTooLarge(err error) bool {
	return errors.Is(err, ErrImageTooLarge)
}

// IsUserCorrectable reports whether the caller can fix err by changing the request.
func IsUserCorrectable(err error) bool {
	return IsReferenceNotFound(err) ||
		IsAggregateNotFound(err) ||
		IsInvalidImageFormat(err) ||
		IsImageTooLarge(err) ||
		IsInvalidFieldError(err)
}
