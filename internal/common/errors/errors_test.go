package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	std := NewMissingUserIDError()
	assert.Same(t, std, Normalize(std))
	assert.Same(t, std, Normalize(fmt.Errorf("wrapped: %w", std)))

	plain := stderrors.New("boom")
	normalized := Normalize(plain)
	assert.Equal(t, ErrCodeInternal, normalized.Code)
	assert.False(t, normalized.Retryable)
	assert.ErrorIs(t, normalized, plain)
}

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name      string
		err       *StandardError
		wantCode  string
		wantRetry int
	}{
		{"missing user", NewMissingUserIDError(), "INPUT_VALIDATION_FAILED", 0},
		{"bad payload", NewInvalidActionPayloadError(stderrors.New("x")), "INPUT_VALIDATION_FAILED", 0},
		{"parse failure", NewIntentParsingFailedError(stderrors.New("x")), "INTENT_PARSING_FAILED", 3},
		{"internal", NewInternalError(stderrors.New("x")), "INTERNAL_ERROR", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.wantCode, bpmn.Code)
			assert.Equal(t, tt.wantRetry, bpmn.Retries)
			assert.Equal(t, string(tt.err.Code), bpmn.ErrorVariables["originalErrorCode"])
		})
	}
}

func TestConvertToBPMNError_CarriesMetadata(t *testing.T) {
	err := NewIntentParsingFailedError(stderrors.New("x")).WithMetadata("userId", "user-1")

	vars := ConvertToBPMNError(err).ToErrorVariables()

	require.NotNil(t, vars)
	assert.Equal(t, "INTENT_PARSING_FAILED", vars["errorCode"])
	assert.Equal(t, "user-1", vars["userId"])
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "AI", GetErrorCategory(ErrCodeIntentParsingFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeMissingUserID))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}
