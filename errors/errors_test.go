package errors

import (
	"fmt"
	"net/http"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestAppErrorMessage(t *testing.T) {
	err := InvalidInput("Test.Op", nil, "test message")
	assert.Equal(t, "test message", err.Error())

	cause := fmt.Errorf("cause error")
	err = Upstream("Test.Op", cause, "test message")
	assert.Equal(t, "test message: cause error", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestConstructorCodes(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		code int
		kind Kind
	}{
		{"invalid input", InvalidInput("op", nil, "m"), http.StatusBadRequest, KindInvalidInput},
		{"transcript unavailable", TranscriptUnavailable("op", nil, "m"), http.StatusBadRequest, KindTranscriptUnavailable},
		{"missing context", MissingContext("op", nil, "m"), http.StatusBadRequest, KindMissingContext},
		{"not found", NotFound("op", nil, "m"), http.StatusNotFound, KindNotFound},
		{"upstream", Upstream("op", nil, "m"), http.StatusInternalServerError, KindUpstream},
		{"internal", Internal("op", nil, "m"), http.StatusInternalServerError, KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.kind, tt.err.Kind)
		})
	}
}

func TestKindOfWrapped(t *testing.T) {
	base := MissingContext("op", nil, "No video transcript available. Please load a video first.")
	wrapped := pkgerrors.Wrap(base, "chat")

	assert.True(t, IsMissingContext(wrapped))
	assert.Equal(t, http.StatusBadRequest, CodeOf(wrapped))

	plain := fmt.Errorf("standard error")
	assert.Equal(t, KindInternal, KindOf(plain))
	assert.Equal(t, http.StatusInternalServerError, CodeOf(plain))
	assert.False(t, IsUpstream(nil))
}
