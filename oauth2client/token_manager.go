package oauth2client

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// Logger is an interface for optional logging in TokenManager.
// Implementations can log token exchange and refresh events if desired.
type Logger interface {
	Printf(format string, args ...any)
}

// Credentials identifies the OAuth2 client application.
type Credentials struct {
	ClientID     string
	ClientSecret string

	// RedirectURI is optional; it must match the URI registered with the vendor
	// when exchanging authorization codes.
	RedirectURI string
}

// TokenManager owns the client credentials and the current access token, and
// performs authorization-code exchanges and refreshes through a TokenFetcher.
//
// Individual methods are safe for concurrent use, but check-then-act sequences
// such as IsExpired followed by Refresh are not atomic. Callers sharing a
// TokenManager across goroutines must serialize refreshes themselves.
type TokenManager struct {
	mu       sync.RWMutex
	creds    Credentials
	token    *Token
	endpoint Endpoint
	scopes   []string

	fetcher    TokenFetcher
	httpClient *http.Client

	now    func() time.Time
	logger Logger // optional logger
}

// Option is a functional option for configuring TokenManager.
type Option func(*TokenManager)

// WithEndpoint overrides the vendor OAuth2 endpoints.
func WithEndpoint(endpoint Endpoint) Option {
	return func(tm *TokenManager) {
		tm.endpoint = endpoint
	}
}

// WithScopes sets the scopes requested in the authorization URL and token calls.
func WithScopes(scopes ...string) Option {
	return func(tm *TokenManager) {
		tm.scopes = append([]string(nil), scopes...)
	}
}

// WithTokenFetcher injects the OAuth2 collaborator. Without it an OAuth2Service
// is built on first use from the manager's credentials and endpoint.
func WithTokenFetcher(fetcher TokenFetcher) Option {
	return func(tm *TokenManager) {
		tm.fetcher = fetcher
	}
}

// WithHTTPClient sets the HTTP client used by the default OAuth2Service.
func WithHTTPClient(client *http.Client) Option {
	return func(tm *TokenManager) {
		tm.httpClient = client
	}
}

// WithClock replaces time.Now for created stamps and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(tm *TokenManager) {
		if now != nil {
			tm.now = now
		}
	}
}

// WithLogger sets a custom logger for token events.
// If not set, no logging will occur.
func WithLogger(logger Logger) Option {
	return func(tm *TokenManager) {
		tm.logger = logger
	}
}

// WithLoggingEnabled enables logging using the default Go log package.
// This is a convenience option that sets the logger to log.Default().
func WithLoggingEnabled() Option {
	return func(tm *TokenManager) {
		tm.logger = log.Default()
	}
}

// NewTokenManager creates a token manager for the given client credentials.
// The manager starts unauthenticated; use ExchangeAuthCode or SetAccessToken.
func NewTokenManager(creds Credentials, opts ...Option) *TokenManager {
	tm := &TokenManager{
		creds:    creds,
		endpoint: DefaultEndpoint(),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(tm)
	}

	return tm
}

// SetCredentials stores the client configuration. Calling it again with the
// same values has no further effect.
func (tm *TokenManager) SetCredentials(clientID, clientSecret, redirectURI string) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	creds := Credentials{ClientID: clientID, ClientSecret: clientSecret, RedirectURI: redirectURI}
	if creds == tm.creds {
		return
	}
	tm.creds = creds
}

// Credentials returns the configured client credentials.
func (tm *TokenManager) Credentials() Credentials {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.creds
}

// SetAccessToken resolves input and replaces the stored token.
// It returns ErrInvalidToken when input is nil, empty, or has no access_token.
func (tm *TokenManager) SetAccessToken(input TokenInput) error {
	if input == nil {
		return ErrInvalidToken
	}
	if t, ok := input.(*Token); ok && t == nil {
		return ErrInvalidToken
	}

	token, err := input.resolveToken()
	if err != nil {
		return err
	}
	if !token.Valid() {
		return ErrInvalidToken
	}

	tm.mu.Lock()
	tm.token = token
	tm.mu.Unlock()

	if tm.logger != nil {
		if exp := token.ExpiresAt(); !exp.IsZero() {
			tm.logger.Printf("oauth2: stored access token (expires: %s)", exp.Format(time.RFC3339))
		} else {
			tm.logger.Printf("oauth2: stored access token (no expiry metadata)")
		}
	}
	return nil
}

// AccessToken returns a copy of the stored token, or nil if none is stored.
func (tm *TokenManager) AccessToken() *Token {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.token.clone()
}

// RefreshToken returns the stored refresh token, if any.
func (tm *TokenManager) RefreshToken() string {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	if tm.token == nil {
		return ""
	}
	return tm.token.RefreshToken
}

// IsExpired reports whether the stored token is missing or expires within
// ExpiryMargin. Missing created/expires_in values count as zero, so a token
// without expiry metadata is always expired.
func (tm *TokenManager) IsExpired() bool {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	if tm.token == nil {
		return true
	}

	margin := int64(ExpiryMargin / time.Second)
	return tm.token.Created+(tm.token.ExpiresIn-margin) < tm.now().Unix()
}

// AuthCodeURL returns the vendor authorization URL the user must visit to
// obtain an authorization code.
func (tm *TokenManager) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	cfg := &oauth2.Config{
		ClientID:    tm.creds.ClientID,
		RedirectURL: tm.creds.RedirectURI,
		Scopes:      tm.scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   tm.endpoint.AuthURL,
			TokenURL:  tm.endpoint.TokenURL,
			AuthStyle: tm.endpoint.AuthStyle,
		},
	}
	return cfg.AuthCodeURL(state, opts...)
}

// ExchangeAuthCode trades an authorization code for a token and stores it.
//
// An empty code fails with ErrInvalidArgument before any network call.
// Errors from the TokenFetcher are returned unchanged. The raw payload is
// returned even when it lacks an access token; in that case nothing is
// stored and ErrInvalidToken is returned alongside it.
func (tm *TokenManager) ExchangeAuthCode(ctx context.Context, code string) (*Token, error) {
	if code == "" {
		return nil, ErrInvalidArgument
	}

	fetcher, req := tm.prepare(GrantAuthorizationCode)
	req.Code = code

	token, err := fetcher.FetchAuthToken(ctx, req)
	if err != nil {
		return nil, err
	}
	if !token.Valid() {
		return token, ErrInvalidToken
	}

	token.Created = tm.now().Unix()
	if err := tm.SetAccessToken(token); err != nil {
		return token, err
	}

	return token, nil
}

// Refresh obtains a new access token with refreshToken, or with the stored
// refresh token when refreshToken is empty.
//
// The used refresh token is kept when the response does not reissue one.
// Errors from the TokenFetcher are returned unchanged.
func (tm *TokenManager) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	if refreshToken == "" {
		refreshToken = tm.RefreshToken()
		if refreshToken == "" {
			return nil, ErrMissingRefreshToken
		}
	}

	fetcher, req := tm.prepare(GrantRefreshToken)
	req.RefreshToken = refreshToken

	token, err := fetcher.FetchAuthToken(ctx, req)
	if err != nil {
		return nil, err
	}
	if !token.Valid() {
		return nil, ErrInvalidResponse
	}

	token.Created = tm.now().Unix()
	if token.RefreshToken == "" {
		token.RefreshToken = refreshToken
	}
	if err := tm.SetAccessToken(token); err != nil {
		return nil, err
	}

	if tm.logger != nil {
		tm.logger.Printf("oauth2: refreshed access token")
	}

	return token, nil
}

// prepare snapshots the configuration and returns the fetcher to use,
// building the default OAuth2Service on first use.
func (tm *TokenManager) prepare(grant GrantType) (TokenFetcher, TokenRequest) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if tm.fetcher == nil {
		tm.fetcher = NewOAuth2Service(tm.endpoint, tm.httpClient)
	}

	return tm.fetcher, TokenRequest{
		GrantType:    grant,
		ClientID:     tm.creds.ClientID,
		ClientSecret: tm.creds.ClientSecret,
		RedirectURI:  tm.creds.RedirectURI,
		Scopes:       append([]string(nil), tm.scopes...),
	}
}
