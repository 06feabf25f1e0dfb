package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "generic error", err: errors.New("some error"), expected: false},
		{name: "ErrNotFound", err: ErrNotFound, expected: true},
		{name: "wrapped ErrNotFound", err: fmt.Errorf("failed to do something: %w", ErrNotFound), expected: true},
		{name: "ErrPetNotFound", err: ErrPetNotFound, expected: true},
		{name: "wrapped ErrSessionNotFound", err: fmt.Errorf("load: %w", ErrSessionNotFound), expected: true},
		{name: "ErrTokenNotFound", err: ErrTokenNotFound, expected: true},
		{name: "duplicate is not not-found", err: ErrActiveSessionExists, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, IsNotFoundError(tt.err))
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "generic error", err: errors.New("some error"), expected: false},
		{name: "ErrDuplicate", err: ErrDuplicate, expected: true},
		{name: "wrapped ErrDuplicate", err: fmt.Errorf("failed to create: %w", ErrDuplicate), expected: true},
		{name: "ErrActiveSessionExists", err: ErrActiveSessionExists, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, IsDuplicateError(tt.err))
		})
	}
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	originalErr := errors.New("database connection failed")
	storeErr := NewStoreError("pet", "update", "database error", originalErr)

	assert.Equal(t, "update operation on pet failed: database error: database connection failed", storeErr.Error())
	assert.ErrorIs(t, storeErr, originalErr)
	assert.Equal(t, originalErr, storeErr.Unwrap())

	bare := NewStoreError("pet", "update", "no rows", nil)
	assert.Equal(t, "update operation on pet failed: no rows", bare.Error())
}
