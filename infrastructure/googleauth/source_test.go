package googleauth

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvSource(t *testing.T) {
	_, pemKey := testServiceKey(t)
	escaped := strings.ReplaceAll(pemKey, "\n", `\n`)

	t.Setenv("GOOGLE_SERVICE_ACCOUNT_EMAIL", " svc@event.iam.gserviceaccount.com ")
	t.Setenv("GOOGLE_PRIVATE_KEY", `"`+escaped+`"`)
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	cred, err := EnvSource{}.Load()
	require.NoError(t, err)
	assert.Equal(t, "svc@event.iam.gserviceaccount.com", cred.ClientEmail)
	assert.Equal(t, strings.TrimSpace(pemKey), cred.PrivateKey)
	assert.NoError(t, cred.Validate())
}

func TestEnvSource_Missing(t *testing.T) {
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_EMAIL", "")
	t.Setenv("GOOGLE_PRIVATE_KEY", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	cred, err := EnvSource{}.Load()
	require.NoError(t, err)
	assert.Error(t, cred.Validate())
}

func TestFileSource(t *testing.T) {
	_, pemKey := testServiceKey(t)
	key := map[string]string{
		"type":           "service_account",
		"client_email":   "svc@event.iam.gserviceaccount.com",
		"private_key":    pemKey,
		"private_key_id": "abc123",
		"token_uri":      "https://oauth2.example.test/token",
	}
	b, err := json.Marshal(key)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "sa.json")
	require.NoError(t, os.WriteFile(path, b, 0600))

	t.Setenv("GOOGLE_SERVICE_ACCOUNT_EMAIL", "")
	t.Setenv("GOOGLE_PRIVATE_KEY", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", path)

	cred, err := EnvSource{}.Load()
	require.NoError(t, err)
	assert.Equal(t, "svc@event.iam.gserviceaccount.com", cred.ClientEmail)
	assert.Equal(t, pemKey, cred.PrivateKey)
	assert.Equal(t, "https://oauth2.example.test/token", cred.TokenURL)
}

func TestFileSource_Missing(t *testing.T) {
	_, err := FileSource(filepath.Join(t.TempDir(), "nope.json")).Load()
	assert.ErrorContains(t, err, "unable to read credentials file")
}
