package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name: "error without cause",
			appError: &AppError{
				Type:    ErrTypeValidation,
				Message: "customer id must be an integer",
			},
			wantMessage: "[VALIDATION] customer id must be an integer",
		},
		{
			name: "error with cause",
			appError: &AppError{
				Type:    ErrTypeStorage,
				Message: "failed to read sales source",
				Cause:   fmt.Errorf("permission denied"),
			},
			wantMessage: "[STORAGE] failed to read sales source: permission denied",
		},
		{
			name: "error with empty message",
			appError: &AppError{
				Type: ErrTypeParsing,
			},
			wantMessage: "[PARSING] ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := fs.ErrNotExist
	err := NewNotFoundError("sales source sales.csv", cause)

	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Equal(t, cause, err.Unwrap())
	assert.Nil(t, NewAppValidationError("bad").Unwrap())
}

func TestAppError_WithContext(t *testing.T) {
	err := &AppError{Type: ErrTypeParsing, Message: "bad header"}

	got := err.WithContext("path", "sales.csv").WithContext("line", 1)

	require.Same(t, err, got)
	assert.Equal(t, "sales.csv", err.Context["path"])
	assert.Equal(t, 1, err.Context["line"])
}

func TestConstructors(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
		wantMsg  string
		wantErr  error
	}{
		{"not found", NewNotFoundError("input", nil), ErrTypeNotFound, "input not found", nil},
		{"parsing", NewParsingError("malformed row", cause), ErrTypeParsing, "malformed row", cause},
		{"storage", NewStorageError("read failed", cause), ErrTypeStorage, "read failed", cause},
		{"validation", NewAppValidationError("invalid"), ErrTypeValidation, "invalid", nil},
		{"config", NewConfigError("bad config", cause), ErrTypeConfig, "bad config", cause},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantMsg, tt.err.Message)
			assert.Equal(t, tt.wantErr, tt.err.Cause)
			assert.NotNil(t, tt.err.Context)
		})
	}
}

func TestIsType(t *testing.T) {
	wrapped := fmt.Errorf("load: %w", NewNotFoundError("sales.csv", fs.ErrNotExist))

	assert.True(t, IsNotFound(wrapped))
	assert.True(t, IsType(wrapped, ErrTypeNotFound))
	assert.False(t, IsType(wrapped, ErrTypeParsing))
	assert.False(t, IsNotFound(errors.New("plain")))
	assert.False(t, IsNotFound(nil))

	errType, ok := TypeOf(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrTypeNotFound, errType)
}

func TestMessage(t *testing.T) {
	appErr := NewAppValidationError(`invalid customer id "abc": must be an integer`)

	assert.Equal(t, `invalid customer id "abc": must be an integer`, Message(appErr))
	assert.Equal(t, "input not found", Message(fmt.Errorf("run: %w", NewNotFoundError("input", nil))))
	assert.Equal(t, "plain", Message(errors.New("plain")))
	assert.Empty(t, Message(nil))
}
