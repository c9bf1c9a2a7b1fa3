package generation

import (
	"errors"
	"fmt"
)

// Error code constants. The client maps every failure to one of these.
const (
	ErrCodeTransport = "transport_error"
	ErrCodeNoBody    = "no_body"
	ErrCodeProtocol  = "protocol_error"
	ErrCodeCanceled  = "canceled"
	ErrCodeEncoding  = "encoding_error"
)

// Error is a typed failure from the generation service.
// Use the IsXxx helpers below to classify errors without inspecting fields.
type Error struct {
	Code       string // One of the ErrCode* constants.
	Message    string // Human-readable description.
	StatusCode int    // HTTP status for protocol errors, 0 otherwise.
	Status     string // HTTP status text for protocol errors.
	Body       string // Best-effort response body for protocol errors.
	Err        error  // Underlying error (may be nil).
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a typed generation error.
func NewError(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// NewStatusError creates a protocol error for a non-2xx response.
// The message embeds the status code and whatever body text was recovered.
func NewStatusError(statusCode int, status, body string) *Error {
	return &Error{
		Code:       ErrCodeProtocol,
		Message:    fmt.Sprintf("HTTP error! status: %d - %s", statusCode, body),
		StatusCode: statusCode,
		Status:     status,
		Body:       body,
	}
}

// IsTransportError reports whether the request could not be sent or the
// response could not be read. A missing body counts as a transport failure.
func IsTransportError(err error) bool {
	return hasCode(err, ErrCodeTransport) || hasCode(err, ErrCodeNoBody)
}

// IsNoBodyError reports whether the response carried no readable body.
func IsNoBodyError(err error) bool {
	return hasCode(err, ErrCodeNoBody)
}

// IsProtocolError reports whether the service answered with a non-2xx status.
func IsProtocolError(err error) bool {
	return hasCode(err, ErrCodeProtocol)
}

// IsCanceled reports whether the call was aborted by its context.
func IsCanceled(err error) bool {
	return hasCode(err, ErrCodeCanceled)
}

// StatusCode returns the HTTP status carried by a protocol error, or 0.
func StatusCode(err error) int {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.StatusCode
	}
	return 0
}

func hasCode(err error, code string) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.Code == code
}
