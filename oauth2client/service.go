package oauth2client

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Default vendor OAuth2 endpoints.
const (
	DefaultAuthURL         = "https://api.example.com/oauth/authorize"
	DefaultTokenURL        = "https://api.example.com/oauth/access_token"
	DefaultRefreshTokenURL = "https://api.example.com/oauth/refresh_token"
)

// GrantType selects the OAuth2 grant sent to the token endpoint.
type GrantType string

const (
	GrantAuthorizationCode GrantType = "authorization_code"
	GrantRefreshToken      GrantType = "refresh_token"
)

// TokenRequest carries everything a TokenFetcher needs for one token call.
type TokenRequest struct {
	GrantType    GrantType
	Code         string
	RefreshToken string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string
}

// TokenFetcher talks to the OAuth2 token endpoint on behalf of TokenManager.
//
// Implementations must return transport and server errors unchanged;
// TokenManager hands them to the caller as-is.
type TokenFetcher interface {
	FetchAuthToken(ctx context.Context, req TokenRequest) (*Token, error)
}

// Endpoint describes the vendor's OAuth2 URLs.
type Endpoint struct {
	AuthURL string

	// TokenURL receives authorization-code exchanges.
	TokenURL string

	// RefreshTokenURL receives refresh-token grants. Falls back to TokenURL.
	RefreshTokenURL string

	AuthStyle oauth2.AuthStyle
}

// DefaultEndpoint returns the vendor endpoints under the default API host.
func DefaultEndpoint() Endpoint {
	return Endpoint{
		AuthURL:         DefaultAuthURL,
		TokenURL:        DefaultTokenURL,
		RefreshTokenURL: DefaultRefreshTokenURL,
	}
}

// OAuth2Service is the default TokenFetcher, backed by golang.org/x/oauth2.
type OAuth2Service struct {
	endpoint   Endpoint
	httpClient *http.Client
}

// NewOAuth2Service creates a service for the given endpoint. A nil httpClient
// leaves client selection to golang.org/x/oauth2 (the oauth2.HTTPClient
// context value, then http.DefaultClient).
func NewOAuth2Service(endpoint Endpoint, httpClient *http.Client) *OAuth2Service {
	return &OAuth2Service{
		endpoint:   endpoint,
		httpClient: httpClient,
	}
}

// FetchAuthToken performs an authorization-code exchange or a refresh,
// depending on req.GrantType. A refresh response without an access token
// yields ErrInvalidResponse; other errors are returned unchanged.
func (s *OAuth2Service) FetchAuthToken(ctx context.Context, req TokenRequest) (*Token, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	}

	var (
		tok *oauth2.Token
		err error
	)
	switch req.GrantType {
	case GrantAuthorizationCode:
		cfg := s.config(req, s.endpoint.TokenURL)
		tok, err = cfg.Exchange(ctx, req.Code)
	case GrantRefreshToken:
		tokenURL := s.endpoint.RefreshTokenURL
		if tokenURL == "" {
			tokenURL = s.endpoint.TokenURL
		}
		cfg := s.config(req, tokenURL)
		tok, err = cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: req.RefreshToken}).Token()
		if isMissingAccessToken(err) {
			return nil, ErrInvalidResponse
		}
	default:
		return nil, fmt.Errorf("oauth2: unsupported grant type %q", req.GrantType)
	}
	if err != nil {
		return nil, err
	}

	return fromOAuth2Token(tok), nil
}

// errMissingAccessToken is the text x/oauth2 uses when a 2xx token response
// has no access_token. It is not exported as a sentinel.
const errMissingAccessToken = "oauth2: server response missing access_token"

func isMissingAccessToken(err error) bool {
	if err == nil {
		return false
	}
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return false
	}
	return err.Error() == errMissingAccessToken
}

func (s *OAuth2Service) config(req TokenRequest, tokenURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     req.ClientID,
		ClientSecret: req.ClientSecret,
		RedirectURL:  req.RedirectURI,
		Scopes:       req.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   s.endpoint.AuthURL,
			TokenURL:  tokenURL,
			AuthStyle: s.endpoint.AuthStyle,
		},
	}
}

// fromOAuth2Token maps the library token onto the wire-shaped Token.
// Created is left for the caller to stamp.
func fromOAuth2Token(tok *oauth2.Token) *Token {
	if tok == nil {
		return nil
	}

	token := &Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		ExpiresIn:    tok.ExpiresIn,
	}
	if token.ExpiresIn == 0 && !tok.Expiry.IsZero() {
		token.ExpiresIn = int64(math.Round(time.Until(tok.Expiry).Seconds()))
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		token.Scope = scope
	}
	if idToken, ok := tok.Extra("id_token").(string); ok {
		token.IDToken = strings.TrimSpace(idToken)
	}
	return token
}
