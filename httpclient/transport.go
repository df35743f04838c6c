package httpclient

import (
	"fmt"
	"net/http"

	"github.com/AmmannChristian/go-restx/oauth2client"
)

// OAuth2Transport is an http.RoundTripper that adds the stored OAuth2
// Bearer token and a JSON Accept header to outgoing HTTP requests.
//
// It wraps an existing transport (typically http.DefaultTransport). It never
// refreshes the token; expiry handling is left to the caller.
type OAuth2Transport struct {
	// Base is the underlying HTTP transport. If nil, http.DefaultTransport is used.
	Base http.RoundTripper

	// TokenManager provides the access token.
	TokenManager *oauth2client.TokenManager
}

// RoundTrip implements http.RoundTripper interface.
// It sets "Authorization: Bearer <token>" and, unless already present,
// "Accept: application/json" on a clone of the request before delegating
// to the base transport.
func (t *OAuth2Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.TokenManager == nil {
		return nil, fmt.Errorf("httpclient: TokenManager is nil")
	}

	token, err := t.TokenManager.BearerToken()
	if err != nil {
		return nil, fmt.Errorf("httpclient: failed to get token: %w", err)
	}

	// Clone the request to avoid modifying the original
	reqClone := req.Clone(req.Context())

	reqClone.Header.Set("Authorization", "Bearer "+token)
	if reqClone.Header.Get("Accept") == "" {
		reqClone.Header.Set("Accept", "application/json")
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	return base.RoundTrip(reqClone)
}

// NewOAuth2Transport creates a new OAuth2Transport with the given token manager.
// The base transport defaults to http.DefaultTransport if not specified.
func NewOAuth2Transport(tm *oauth2client.TokenManager, base http.RoundTripper) *OAuth2Transport {
	if base == nil {
		base = http.DefaultTransport
	}

	return &OAuth2Transport{
		Base:         base,
		TokenManager: tm,
	}
}
