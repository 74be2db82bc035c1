package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for handlers to map to HTTP status.
var (
	ErrNotFound        = errors.New("not found")
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrProjectNotFound = fmt.Errorf("project %w", ErrNotFound)
	ErrInvalidRequest  = errors.New("invalid request data")
	ErrStorage         = errors.New("storage error")
)

// StorageError wraps a fault raised by the backing store during Op.
type StorageError struct {
	Op  string
	Err error
}

// Storage wraps err as a StorageError for op. A nil err stays nil.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorage, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is reports a match against ErrStorage so callers need not know the concrete type.
func (e *StorageError) Is(target error) bool { return target == ErrStorage }
