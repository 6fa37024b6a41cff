package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType identifies which pipeline stage an error came from
type ErrorType string

const (
	ErrorTypePlatform      ErrorType = "platform"
	ErrorTypeDownload      ErrorType = "download"
	ErrorTypeTranscription ErrorType = "transcription"
	ErrorTypeSummarization ErrorType = "summarization"
	ErrorTypeDelivery      ErrorType = "delivery"
	ErrorTypeCheckpoint    ErrorType = "checkpoint"
	ErrorTypeUnknown       ErrorType = "unknown"
)

// Error represents a stage failure with type information
type Error struct {
	Type ErrorType
	Op   string
	// Code is the upstream HTTP status, 0 when not known
	Code int
	Err  error
}

func (e *Error) Error() string {
	cause := "unknown cause"
	if e.Err != nil {
		cause = e.Err.Error()
	}
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s: %s", e.Type, e.Code, e.Op, cause)
	}
	return fmt.Sprintf("%s error: %s: %s", e.Type, e.Op, cause)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// New wraps err as a typed stage error
func New(errorType ErrorType, op string, err error) *Error {
	return &Error{Type: errorType, Op: op, Err: err}
}

// WithCode wraps err as a typed stage error carrying an upstream status code
func WithCode(errorType ErrorType, op string, code int, err error) *Error {
	return &Error{Type: errorType, Op: op, Code: code, Err: err}
}

// TypeOf returns the type of the first typed error in err's chain
func TypeOf(err error) ErrorType {
	if err == nil {
		return ""
	}
	var typed *Error
	if stderrors.As(err, &typed) {
		return typed.Type
	}
	return ErrorTypeUnknown
}

// Is reports whether err's chain carries a typed error of the given type
func Is(err error, errorType ErrorType) bool {
	return err != nil && TypeOf(err) == errorType
}
