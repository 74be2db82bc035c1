package errors

import (
	"context"
	"errors"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	if !errors.Is(ErrUserNotFound, ErrNotFound) {
		t.Error("ErrUserNotFound should wrap ErrNotFound")
	}
	if !errors.Is(ErrProjectNotFound, ErrNotFound) {
		t.Error("ErrProjectNotFound should wrap ErrNotFound")
	}
	if errors.Is(ErrInvalidRequest, ErrNotFound) {
		t.Error("ErrInvalidRequest must not match ErrNotFound")
	}
	if ErrUserNotFound.Error() != "user not found" {
		t.Errorf("ErrUserNotFound message = %q", ErrUserNotFound.Error())
	}
}

func TestStorageError(t *testing.T) {
	if Storage("find user", nil) != nil {
		t.Fatal("Storage(nil) should be nil")
	}
	err := Storage("find user", context.DeadlineExceeded)
	if !errors.Is(err, ErrStorage) {
		t.Error("storage error should match ErrStorage")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("storage error should unwrap to the driver error")
	}
	var se *StorageError
	if !errors.As(err, &se) || se.Op != "find user" {
		t.Errorf("errors.As = %v, op %q", se, se.Op)
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("storage error must not match ErrNotFound")
	}
}
