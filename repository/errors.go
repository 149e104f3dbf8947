package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/faceattend/attendbackend/apperrors"
)

// storageError maps driver failures onto the exported error kinds. Deadline
// expiry means the persistence layer could not complete the operation within
// its bound.
func storageError(op string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %w", op, apperrors.ErrStorageUnavailable)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
