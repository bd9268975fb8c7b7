package credential

import (
	"errors"
	"strings"
)

var (
	// ErrMissingCredential is returned when no service account is configured
	ErrMissingCredential = errors.New("service account credential is not configured")

	// ErrMalformedKey is returned when the private key cannot be decoded
	ErrMalformedKey = errors.New("service account private key is malformed")

	// ErrTokenRejected is returned when the token endpoint refuses the assertion
	ErrTokenRejected = errors.New("token endpoint rejected the assertion")
)

// MissingFieldsError lists missing credential fields
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing " + strings.Join(e.Fields, ", ")
}

func (e *MissingFieldsError) Unwrap() error {
	return ErrMissingCredential
}
