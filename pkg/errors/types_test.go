package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIs_FindsWrappedAppError(t *testing.T) {
	base := NotFound("recording", "abc")
	wrapped := fmt.Errorf("loading: %w", base)

	assert.True(t, Is(wrapped, ErrCodeNotFound))
	assert.False(t, Is(wrapped, ErrCodeConflict))
	assert.Equal(t, ErrCodeNotFound, GetCode(wrapped))
	assert.Equal(t, http.StatusNotFound, GetHTTPCode(wrapped))
}

func TestGetCode_PlainError(t *testing.T) {
	err := stderrors.New("boom")
	assert.Equal(t, ErrCodeInternal, GetCode(err))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPCode(err))
	assert.False(t, Is(err, ErrCodeNotFound))
}

func TestDefaultHTTPCodes(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeConflict, http.StatusConflict},
		{ErrCodeInvalidMime, http.StatusBadRequest},
		{ErrCodeTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeToolUnavailable, http.StatusServiceUnavailable},
		{ErrCodeSegmentationFailed, http.StatusInternalServerError},
		{ErrCodePersistFailed, http.StatusInternalServerError},
		{ErrCodeExternalService, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.code, "x").GetHTTPCode())
		})
	}
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrapf(cause, ErrCodePersistFailed, "writing note for %s", "abc").WithDetail("recording_id", "abc")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "PERSIST_FAILED")
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, "abc", err.Details["recording_id"])
}
