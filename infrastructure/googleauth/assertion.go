package googleauth

import (
	"time"

	"invite-media/domain/credential"
	"invite-media/domain/failure"

	"github.com/golang-jwt/jwt/v5"
)

// AssertionLifetime is how long a signed assertion is valid
const AssertionLifetime = time.Hour

// SignAssertion builds the RS256 service-account assertion for scope,
// addressed to the token endpoint aud.
func SignAssertion(cred credential.ServiceCredential, scope, aud string, now time.Time) (string, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(cred.PrivateKey))
	if err != nil {
		return "", failure.Wrap(failure.CodeCredential, "service account private key could not be decoded", credential.ErrMalformedKey)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":   cred.ClientEmail,
		"scope": scope,
		"aud":   aud,
		"iat":   now.Unix(),
		"exp":   now.Add(AssertionLifetime).Unix(),
	})

	signed, err := token.SignedString(key)
	if err != nil {
		return "", failure.Wrap(failure.CodeCredential, "unable to sign service account assertion", err)
	}
	return signed, nil
}
