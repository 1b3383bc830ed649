package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeOf(t *testing.T) {
	assert.Equal(t, ErrorTypeNotFound, TypeOf(NewNotFoundError("missing")))
	assert.Equal(t, ErrorTypeValidation, TypeOf(NewValidationError("bad input")))
	assert.Equal(t, ErrorTypeNoSlot, TypeOf(NewNoSlotError("full")))
	assert.Equal(t, ErrorTypeStore, TypeOf(NewStoreError("down", nil)))
	assert.Equal(t, ErrorTypeInternal, TypeOf(stderrors.New("plain")))
}

func TestTypeOfWrappedError(t *testing.T) {
	wrapped := fmt.Errorf("fetching doctor: %w", NewNotFoundError("doctor not found"))
	assert.Equal(t, ErrorTypeNotFound, TypeOf(wrapped))
	assert.True(t, IsNotFound(wrapped))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "NOT_FOUND: doctor not found", NewNotFoundError("doctor not found").Error())

	cause := stderrors.New("connection refused")
	storeErr := NewStoreError("query failed", cause)
	assert.Equal(t, "STORE: query failed: connection refused", storeErr.Error())
	assert.ErrorIs(t, storeErr, cause)
}
