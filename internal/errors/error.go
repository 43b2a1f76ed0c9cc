// Package errors provides custom error types for product-related operations.
package errors

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

// NotFoundError reports that no product exists with ID.
// It matches ErrProductNotFound.
type NotFoundError struct {
	ID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrProductNotFound
}

// InvalidArgumentError reports the input field that failed validation and the rule it broke.
// It matches ErrInvalidArgument.
type InvalidArgumentError struct {
	Field string
	Rule  string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %q: failed on rule %s", e.Field, e.Rule)
}

func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// StorageError wraps a failure of the underlying database driver.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError wraps err, returning nil for a nil err.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
