package errors

import (
	stderrors "errors"

	"github.com/sashabaranov/go-openai"
)

// FromOpenAI wraps an OpenAI client failure, keeping the HTTP status when
// the client reports one
func FromOpenAI(errorType ErrorType, op string, err error) *Error {
	var apiErr *openai.APIError
	if stderrors.As(err, &apiErr) {
		return WithCode(errorType, op, apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if stderrors.As(err, &reqErr) {
		return WithCode(errorType, op, reqErr.HTTPStatusCode, err)
	}
	return New(errorType, op, err)
}
