package googleauth

import (
	"context"
	"net/http"
	"sync"
	"time"

	"invite-media/domain/credential"
	"invite-media/domain/failure"
	"invite-media/infrastructure/metrics"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// DefaultExchangeTimeout bounds the token-exchange request
const DefaultExchangeTimeout = 30 * time.Second

// Broker mints access tokens for a service account. It signs one assertion
// per token and exchanges it at the token endpoint. Without a cache every
// call mints a fresh token.
type Broker struct {
	source      credential.Source
	httpClient  *resty.Client
	tokenURL    string
	now         func() time.Time
	log         zerolog.Logger
	cacheMargin time.Duration
	cached      bool

	mu      sync.Mutex
	sources map[string]oauth2.TokenSource
}

// BrokerOption is a functional option for configuring Broker
type BrokerOption func(*Broker)

// WithHTTPClient sets the client used for the token exchange
func WithHTTPClient(c *http.Client) BrokerOption {
	return func(b *Broker) {
		b.httpClient = resty.NewWithClient(c)
	}
}

// WithTokenURL overrides the token endpoint
func WithTokenURL(u string) BrokerOption {
	return func(b *Broker) {
		b.tokenURL = u
	}
}

// WithClock sets the time source used for assertion timestamps
func WithClock(now func() time.Time) BrokerOption {
	return func(b *Broker) {
		b.now = now
	}
}

// WithLogger sets the broker logger
func WithLogger(log zerolog.Logger) BrokerOption {
	return func(b *Broker) {
		b.log = log
	}
}

// WithTokenCache reuses tokens per scope until margin before their expiry
func WithTokenCache(margin time.Duration) BrokerOption {
	return func(b *Broker) {
		b.cached = true
		b.cacheMargin = margin
	}
}

// NewBroker creates a broker reading the credential from source
func NewBroker(source credential.Source, opts ...BrokerOption) *Broker {
	b := &Broker{
		source:     source,
		httpClient: resty.New().SetTimeout(DefaultExchangeTimeout),
		now:        time.Now,
		log:        zerolog.Nop(),
		sources:    make(map[string]oauth2.TokenSource),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.log = b.log.With().Str("component", "credential-broker").Logger()
	return b
}

// Token implements credential.TokenProvider
func (b *Broker) Token(ctx context.Context, scope string) (credential.AccessToken, error) {
	if !b.cached {
		return b.mint(ctx, scope)
	}

	type result struct {
		tok *oauth2.Token
		err error
	}
	done := make(chan result, 1)
	go func() {
		tok, err := b.cachedSource(scope).Token()
		done <- result{tok: tok, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return credential.AccessToken{}, r.err
		}
		return fromOAuth2(r.tok, scope), nil
	case <-ctx.Done():
		return credential.AccessToken{}, failure.Wrap(failure.CodeTimeout, "access token request cancelled", ctx.Err())
	}
}

// TokenSource adapts the broker for Google API clients
func (b *Broker) TokenSource(ctx context.Context, scope string) oauth2.TokenSource {
	if b.cached {
		return b.cachedSource(scope)
	}
	return &scopedSource{broker: b, ctx: ctx, scope: scope}
}

func (b *Broker) cachedSource(scope string) oauth2.TokenSource {
	b.mu.Lock()
	defer b.mu.Unlock()
	ts, ok := b.sources[scope]
	if !ok {
		// A cached exchange is shared by every caller of the scope, so it runs
		// detached from any one request and is bounded by DefaultExchangeTimeout.
		// Token stops waiting for it when the caller's context ends.
		ts = oauth2.ReuseTokenSourceWithExpiry(nil, &scopedSource{broker: b, ctx: context.Background(), scope: scope}, b.cacheMargin)
		b.sources[scope] = ts
	}
	return ts
}

// mint reads the credential, signs an assertion and exchanges it
func (b *Broker) mint(ctx context.Context, scope string) (credential.AccessToken, error) {
	cred, err := b.source.Load()
	if err != nil {
		metrics.RecordTokenExchange("credential_missing")
		return credential.AccessToken{}, failure.Wrap(failure.CodeCredential, "service account credential could not be read", err)
	}

	b.log.Debug().
		Bool("has_client_email", cred.ClientEmail != "").
		Bool("has_private_key", cred.PrivateKey != "").
		Str("scope", scope).
		Msg("minting access token")

	if err := cred.Validate(); err != nil {
		metrics.RecordTokenExchange("credential_missing")
		return credential.AccessToken{}, failure.Wrap(failure.CodeCredential, "service account credential is incomplete", err)
	}

	tokenURL := b.tokenURL
	if tokenURL == "" {
		tokenURL = cred.TokenURL
	}
	if tokenURL == "" {
		tokenURL = google.JWTTokenURL
	}

	assertion, err := SignAssertion(cred, scope, tokenURL, b.now())
	if err != nil {
		metrics.RecordTokenExchange("signing_failed")
		b.log.Error().Msg("service account assertion could not be signed")
		return credential.AccessToken{}, err
	}

	tok, err := b.exchange(ctx, tokenURL, assertion, scope)
	if err != nil {
		metrics.RecordTokenExchange("rejected")
		b.log.Error().Str("code", string(failure.From(err).Code)).Int("status", failure.From(err).Status).Msg("token exchange failed")
		return credential.AccessToken{}, err
	}

	metrics.RecordTokenExchange("success")
	b.log.Debug().Str("scope", scope).Time("expiry", tok.Expiry).Msg("access token minted")
	return tok, nil
}

// scopedSource is an oauth2.TokenSource minting tokens for one scope
type scopedSource struct {
	broker *Broker
	ctx    context.Context
	scope  string
}

func (s *scopedSource) Token() (*oauth2.Token, error) {
	tok, err := s.broker.mint(s.ctx, s.scope)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken: tok.Value,
		TokenType:   tok.Type,
		Expiry:      tok.Expiry,
	}, nil
}

func fromOAuth2(tok *oauth2.Token, scope string) credential.AccessToken {
	return credential.AccessToken{
		Value:  tok.AccessToken,
		Type:   tok.Type(),
		Expiry: tok.Expiry,
		Scope:  scope,
	}
}

var (
	_ credential.TokenProvider = (*Broker)(nil)
	_ oauth2.TokenSource       = (*scopedSource)(nil)
)
