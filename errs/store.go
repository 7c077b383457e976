package errs

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrStoreFailure is the root of every infrastructure failure (database or blob store).
// It is never caller-correctable and is rendered as a generic failure.
var ErrStoreFailure = errors.New("store failure")

// Database & Storage Specific Errors. All of them wrap ErrStoreFailure.
var (
	ErrDatabaseQuery             = fmt.Errorf("database query failed: %w", ErrStoreFailure)
	ErrDatabaseConnection        = fmt.Errorf("database connection failed: %w", ErrStoreFailure)
	ErrTransactionFailed         = fmt.Errorf("transaction failed: %w", ErrStoreFailure)
	ErrUniqueConstraintViolation = fmt.Errorf("unique constraint violation: %w", ErrStoreFailure)
	ErrForeignKeyConstraint      = fmt.Errorf("foreign key constraint violation: %w", ErrStoreFailure)
	ErrBlobStore                 = fmt.Errorf("blob store write failed: %w", ErrStoreFailure)
)

// Postgres SQLSTATE codes we classify.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgSerialization       = "40001"
	pgConnectionClass     = "08"
)

// NewDatabaseError classifies a database error and attaches the operation that failed.
func NewDatabaseError(operation, entity string, cause error) *ApiErr {
	details := fmt.Sprintf("Failed to %s %s", operation, entity)

	var apiErr *ApiErr
	if errors.As(cause, &apiErr) {
		return apiErr
	}

	var pgErr *pgconn.PgError
	switch {
	case errors.As(cause, &pgErr) && pgErr.Code == pgUniqueViolation,
		errors.Is(cause, gorm.ErrDuplicatedKey):
		return &ApiErr{
			StatusCode: http.StatusConflict,
			err:        ErrUniqueConstraintViolation,
			Details:    fmt.Sprintf("%s already exists", entity),
			Cause:      cause,
		}
	case errors.As(cause, &pgErr) && pgErr.Code == pgForeignKeyViolation,
		errors.Is(cause, gorm.ErrForeignKeyViolated):
		return &ApiErr{
			StatusCode: http.StatusBadRequest,
			err:        ErrForeignKeyConstraint,
			Details:    "The referenced resource does not exist or cannot be linked",
			Cause:      cause,
		}
	case errors.As(cause, &pgErr) && pgErr.Code == pgSerialization:
		return &ApiErr{
			StatusCode: http.StatusConflict,
			err:        ErrTransactionFailed,
			Details:    details,
			Cause:      cause,
		}
	case errors.As(cause, &pgErr) && len(pgErr.Code) >= 2 && pgErr.Code[:2] == pgConnectionClass,
		pgconn.Timeout(cause),
		errors.Is(cause, context.DeadlineExceeded):
		return &ApiErr{
			StatusCode: http.StatusServiceUnavailable,
			err:        ErrDatabaseConnection,
			Details:    "Unable to reach the database",
			Cause:      cause,
		}
	}

	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrDatabaseQuery,
		Details:    details,
		Cause:      cause,
	}
}

func NewTransactionFailedError(operation string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrTransactionFailed,
		Details:    fmt.Sprintf("Transaction failed during %s", operation),
		Cause:      cause,
		Field:      "transaction",
	}
}

func NewBlobStoreError(category string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrBlobStore,
		Details:    fmt.Sprintf("Failed to store %s image", category),
		Cause:      cause,
	}
}

// IsStoreError reports whether err is an infrastructure failure.
func IsStoreError(err error) bool {
	return errors.Is(err, ErrStoreFailure)
}

func IsUniqueConstraintViolationError(err error) bool {
	return errors.Is(err, ErrUniqueConstraintViolation)
}

func IsForeignKeyConstraintError(err error) bool {
	return errors.Is(err, ErrForeignKeyConstraint)
}

func IsTransactionFailedError(err error) bool {
	return errors.Is(err, ErrTransactionFailed)
}
