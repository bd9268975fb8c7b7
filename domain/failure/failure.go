// Package failure defines the single error shape used across the upload
// pipeline. Errors are classified once, where they cross a network or
// process boundary, and carried as-is from there on.
package failure

import (
	"errors"
	"fmt"
)

// Code identifies a class of failure.
type Code string

const (
	// CodeAdmission indicates a file was rejected by type or size.
	CodeAdmission Code = "ADMISSION_REJECTED"

	// CodeCompression indicates image re-encoding failed. Always recovered.
	CodeCompression Code = "COMPRESSION_FAILED"

	// CodeConfiguration indicates a required setting (such as the destination
	// folder) is missing.
	CodeConfiguration Code = "INVALID_CONFIGURATION"

	// CodeNetwork indicates the request never produced a response.
	CodeNetwork Code = "NETWORK_ERROR"

	// CodeTimeout indicates the request was aborted after its deadline.
	CodeTimeout Code = "TIMEOUT"

	// CodeServerResponse indicates a non-2xx status or an explicit failure body.
	CodeServerResponse Code = "SERVER_RESPONSE"

	// CodeUnexpectedResponse indicates a 2xx response whose body could not be understood.
	CodeUnexpectedResponse Code = "UNEXPECTED_RESPONSE"

	// CodeCredential indicates the service account is missing, malformed or was
	// rejected by the token endpoint.
	CodeCredential Code = "CREDENTIAL_ERROR"

	// CodeStorage indicates the storage API rejected a write or read.
	CodeStorage Code = "STORAGE_ERROR"

	// CodeUnauthorized indicates the caller did not present a valid api key.
	CodeUnauthorized Code = "UNAUTHORIZED"

	// CodeInvalidInput indicates a malformed request.
	CodeInvalidInput Code = "INVALID_INPUT"
)

// Error is a classified failure. Status carries the HTTP status observed at
// the boundary, zero when no response was received.
type Error struct {
	Code      Code
	Message   string
	Retriable bool
	Status    int
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a failure. Network and timeout failures are retriable.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message, Retriable: retriableByDefault(code)}
}

// Wrap creates a failure around an underlying error.
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err, Retriable: retriableByDefault(code)}
}

// WithStatus returns a copy of e carrying the given HTTP status.
func (e *Error) WithStatus(status int) *Error {
	c := *e
	c.Status = status
	if status == 429 || status >= 500 {
		c.Retriable = c.Code != CodeCredential
	}
	return &c
}

// From extracts a classified failure from err. Unclassified errors are
// reported as network failures.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe
	}
	return Wrap(CodeNetwork, "request failed", err)
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Code == code
}

func retriableByDefault(code Code) bool {
	switch code {
	case CodeNetwork, CodeTimeout:
		return true
	}
	return false
}
