package credential

import (
	"context"
	"strings"
	"time"
)

// ServiceCredential is the server-held service-account identity.
// It is read per request and must never be logged.
type ServiceCredential struct {
	ClientEmail string
	PrivateKey  string // PEM-wrapped RSA key, PKCS8 or PKCS1
	TokenURL    string // empty means the default token endpoint
}

// Validate reports which required fields are missing
func (c ServiceCredential) Validate() error {
	var missing []string
	if strings.TrimSpace(c.ClientEmail) == "" {
		missing = append(missing, "client email")
	}
	if strings.TrimSpace(c.PrivateKey) == "" {
		missing = append(missing, "private key")
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	return nil
}

// Source provides the service credential. Implementations read from
// process-wide secret storage on every call.
type Source interface {
	Load() (ServiceCredential, error)
}

// AccessToken is a bearer token scoped to one OAuth scope string
type AccessToken struct {
	Value  string
	Type   string
	Expiry time.Time
	Scope  string
}

// Valid reports whether the token can still be used at now
func (t AccessToken) Valid(now time.Time) bool {
	return t.Value != "" && (t.Expiry.IsZero() || now.Before(t.Expiry))
}

// AuthorizationHeader returns the value for the Authorization header
func (t AccessToken) AuthorizationHeader() string {
	typ := t.Type
	if typ == "" || strings.EqualFold(typ, "bearer") {
		typ = "Bearer"
	}
	return typ + " " + t.Value
}

// TokenProvider mints access tokens for a scope
type TokenProvider interface {
	Token(ctx context.Context, scope string) (AccessToken, error)
}
