package googleauth

import (
	"fmt"
	"os"
	"strings"

	"invite-media/domain/credential"

	"github.com/caarlos0/env/v10"
	"golang.org/x/oauth2/google"
)

// envCredential mirrors the secrets a deployment provides
type envCredential struct {
	ClientEmail     string `env:"GOOGLE_SERVICE_ACCOUNT_EMAIL"`
	PrivateKey      string `env:"GOOGLE_PRIVATE_KEY"`
	CredentialsFile string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
}

// EnvSource reads the service account from the environment on every Load.
// GOOGLE_SERVICE_ACCOUNT_EMAIL / GOOGLE_PRIVATE_KEY take precedence over a
// credentials file named by GOOGLE_APPLICATION_CREDENTIALS.
type EnvSource struct{}

// Load implements credential.Source
func (EnvSource) Load() (credential.ServiceCredential, error) {
	var ec envCredential
	if err := env.Parse(&ec); err != nil {
		return credential.ServiceCredential{}, fmt.Errorf("read credential environment: %w", err)
	}

	if ec.ClientEmail == "" && ec.PrivateKey == "" && ec.CredentialsFile != "" {
		return FileSource(ec.CredentialsFile).Load()
	}

	return credential.ServiceCredential{
		ClientEmail: strings.TrimSpace(ec.ClientEmail),
		PrivateKey:  NormalizePrivateKey(ec.PrivateKey),
	}, nil
}

// FileSource reads a service-account JSON key file on every Load
type FileSource string

// Load implements credential.Source
func (f FileSource) Load() (credential.ServiceCredential, error) {
	b, err := os.ReadFile(string(f))
	if err != nil {
		return credential.ServiceCredential{}, fmt.Errorf("unable to read credentials file: %w", err)
	}
	return ParseJSON(b)
}

// StaticSource always returns the same credential
type StaticSource credential.ServiceCredential

// Load implements credential.Source
func (s StaticSource) Load() (credential.ServiceCredential, error) {
	return credential.ServiceCredential(s), nil
}

// ParseJSON extracts the service account from a JSON key file
func ParseJSON(b []byte) (credential.ServiceCredential, error) {
	cfg, err := google.JWTConfigFromJSON(b)
	if err != nil {
		return credential.ServiceCredential{}, fmt.Errorf("unable to parse credentials: %w", err)
	}
	return credential.ServiceCredential{
		ClientEmail: cfg.Email,
		PrivateKey:  string(cfg.PrivateKey),
		TokenURL:    cfg.TokenURL,
	}, nil
}

// NormalizePrivateKey undoes the escaping applied when a PEM key is stored
// in a single-line secret.
func NormalizePrivateKey(key string) string {
	key = strings.TrimSpace(key)
	key = strings.Trim(key, `"`)
	return strings.ReplaceAll(key, `\n`, "\n")
}
