package googleauth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"invite-media/domain/credential"
	"invite-media/domain/failure"
)

// GrantTypeJWTBearer is the OAuth grant for service-account assertions
const GrantTypeJWTBearer = "urn:ietf:params:oauth:grant-type:jwt-bearer"

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type tokenErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// TokenError is a token-endpoint rejection with the raw response attached
type TokenError struct {
	Status      int
	Body        string
	Code        string
	Description string
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("token endpoint returned HTTP %d: %s", e.Status, e.Body)
}

func (e *TokenError) Unwrap() error {
	return credential.ErrTokenRejected
}

// exchange trades a signed assertion for an access token. The body is kept
// as text so a rejection can carry it verbatim.
func (b *Broker) exchange(ctx context.Context, tokenURL, assertion, scope string) (credential.AccessToken, error) {
	resp, err := b.httpClient.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type": GrantTypeJWTBearer,
			"assertion":  assertion,
		}).
		Post(tokenURL)
	if err != nil {
		return credential.AccessToken{}, failure.Wrap(failure.CodeNetwork, "token exchange request failed", err)
	}

	body := resp.Body()
	if !resp.IsSuccess() {
		te := &TokenError{Status: resp.StatusCode(), Body: string(body)}
		var parsed tokenErrorResponse
		if json.Unmarshal(body, &parsed) == nil {
			te.Code = parsed.Error
			te.Description = parsed.ErrorDescription
		}
		msg := "token endpoint rejected the service account"
		if te.Code != "" {
			msg += " (" + te.Code + ")"
		}
		return credential.AccessToken{}, (&failure.Error{Code: failure.CodeCredential, Message: msg, Err: te}).WithStatus(resp.StatusCode())
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil || tr.AccessToken == "" {
		return credential.AccessToken{}, failure.Wrap(failure.CodeCredential, "token endpoint returned no access token", err)
	}

	tok := credential.AccessToken{
		Value: tr.AccessToken,
		Type:  tr.TokenType,
		Scope: scope,
	}
	if tr.ExpiresIn > 0 {
		tok.Expiry = b.now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	return tok, nil
}
