package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind classifies an AppError independently of its HTTP status.
type Kind string

const (
	KindInvalidInput          Kind = "invalid_input"
	KindTranscriptUnavailable Kind = "transcript_unavailable"
	KindMissingContext        Kind = "missing_context"
	KindNotFound              Kind = "not_found"
	KindUpstream              Kind = "upstream"
	KindInternal              Kind = "internal"
)

type AppError struct {
	Code    int    `json:"status"`
	Kind    Kind   `json:"-"`
	Message string `json:"error"`
	Op      string `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newError(kind Kind, code int, op string, err error, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

func InvalidInput(op string, err error, message string) *AppError {
	return newError(KindInvalidInput, http.StatusBadRequest, op, err, message)
}

func TranscriptUnavailable(op string, err error, message string) *AppError {
	return newError(KindTranscriptUnavailable, http.StatusBadRequest, op, err, message)
}

func MissingContext(op string, err error, message string) *AppError {
	return newError(KindMissingContext, http.StatusBadRequest, op, err, message)
}

func NotFound(op string, err error, message string) *AppError {
	return newError(KindNotFound, http.StatusNotFound, op, err, message)
}

func Upstream(op string, err error, message string) *AppError {
	return newError(KindUpstream, http.StatusInternalServerError, op, err, message)
}

func Internal(op string, err error, message string) *AppError {
	return newError(KindInternal, http.StatusInternalServerError, op, err, message)
}

// As returns the outermost AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf reports the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

// CodeOf reports the HTTP status for err.
func CodeOf(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

func IsInvalidInput(err error) bool {
	return err != nil && KindOf(err) == KindInvalidInput
}

func IsMissingContext(err error) bool {
	return err != nil && KindOf(err) == KindMissingContext
}

func IsTranscriptUnavailable(err error) bool {
	return err != nil && KindOf(err) == KindTranscriptUnavailable
}

func IsUpstream(err error) bool {
	return err != nil && KindOf(err) == KindUpstream
}

func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == KindNotFound
}
