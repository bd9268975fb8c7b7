package credential

import (
	"errors"
	"testing"
	"time"
)

func TestServiceCredential_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cred    ServiceCredential
		wantErr string
	}{
		{name: "complete", cred: ServiceCredential{ClientEmail: "svc@x.iam.gserviceaccount.com", PrivateKey: "pem"}},
		{name: "missing email", cred: ServiceCredential{PrivateKey: "pem"}, wantErr: "missing client email"},
		{name: "missing both", cred: ServiceCredential{ClientEmail: "  "}, wantErr: "missing client email, private key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cred.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Fatalf("expected %q, got %v", tt.wantErr, err)
			}
			if !errors.Is(err, ErrMissingCredential) {
				t.Error("expected ErrMissingCredential in chain")
			}
		})
	}
}

func TestAccessToken(t *testing.T) {
	now := time.Date(2026, 6, 20, 12, 0, 0, 0, time.UTC)
	tok := AccessToken{Value: "ya29", Type: "bearer", Expiry: now.Add(time.Hour)}

	if !tok.Valid(now) {
		t.Error("expected valid token")
	}
	if tok.Valid(now.Add(2 * time.Hour)) {
		t.Error("expected expired token")
	}
	if (AccessToken{}).Valid(now) {
		t.Error("empty token is never valid")
	}
	if got := tok.AuthorizationHeader(); got != "Bearer ya29" {
		t.Errorf("unexpected header %q", got)
	}
}
