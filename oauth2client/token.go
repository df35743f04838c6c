package oauth2client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// ExpiryMargin is subtracted from a token's lifetime when checking expiry.
// It accounts for clock skew and in-flight request latency.
const ExpiryMargin = 30 * time.Second

// Token is an OAuth2 token payload as returned by the token endpoint,
// extended with the local receipt timestamp.
type Token struct {
	// AccessToken is the bearer credential sent with API calls. Required.
	AccessToken string `json:"access_token"`

	// RefreshToken obtains a new access token without user interaction.
	RefreshToken string `json:"refresh_token,omitempty"`

	// TokenType is typically "Bearer".
	TokenType string `json:"token_type,omitempty"`

	// Scope is the granted scope list, space-separated.
	Scope string `json:"scope,omitempty"`

	// IDToken is the OIDC ID token, if the provider issued one.
	IDToken string `json:"id_token,omitempty"`

	// Created is the unix time (seconds) at which the token was received.
	Created int64 `json:"created,omitempty"`

	// ExpiresIn is the token lifetime in seconds, counted from Created.
	ExpiresIn int64 `json:"expires_in,omitempty"`
}

// Valid reports whether the token carries a non-empty access token.
func (t *Token) Valid() bool {
	return t != nil && t.AccessToken != ""
}

// ExpiresAt returns Created + ExpiresIn, or the zero time if either is unknown.
func (t *Token) ExpiresAt() time.Time {
	if t == nil || t.Created == 0 || t.ExpiresIn == 0 {
		return time.Time{}
	}
	return time.Unix(t.Created+t.ExpiresIn, 0)
}

// Scopes splits Scope into individual scope values.
func (t *Token) Scopes() []string {
	if t == nil || t.Scope == "" {
		return nil
	}
	return strings.Fields(t.Scope)
}

// OAuth2Token converts the token to the golang.org/x/oauth2 representation.
func (t *Token) OAuth2Token() *oauth2.Token {
	if t == nil {
		return nil
	}

	token := &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
		Expiry:       t.ExpiresAt(),
		ExpiresIn:    t.ExpiresIn,
	}
	if t.IDToken != "" {
		token = token.WithExtra(map[string]any{"id_token": t.IDToken})
	}
	return token
}

// IDTokenClaims holds the identity claims carried by an OIDC ID token.
type IDTokenClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// IDTokenClaims decodes the ID token claims without verifying the signature.
// The result is meant for display and account selection, not authorization.
func (t *Token) IDTokenClaims() (*IDTokenClaims, error) {
	if t == nil || t.IDToken == "" {
		return nil, ErrNoIDToken
	}

	claims := &IDTokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(t.IDToken, claims); err != nil {
		return nil, fmt.Errorf("oauth2: parse id_token: %w", err)
	}
	return claims, nil
}

func (t *Token) clone() *Token {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// TokenInput is either a RawToken or a *Token.
// SetAccessToken resolves it into the stored token.
type TokenInput interface {
	resolveToken() (*Token, error)
}

// RawToken is a bare access token string or a JSON-serialized token.
type RawToken string

func (r RawToken) resolveToken() (*Token, error) {
	return ParseToken(string(r))
}

func (t *Token) resolveToken() (*Token, error) {
	return t.clone(), nil
}

// ParseToken interprets s as a JSON token object. If s is not a JSON object,
// the whole string is taken as the bare access token.
//
// Numeric fields may be JSON numbers of any form or numeric strings. A JSON
// object whose fields cannot be converted fails with ErrInvalidToken.
func ParseToken(s string) (*Token, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil, ErrInvalidToken
	}

	if strings.HasPrefix(trimmed, "{") && json.Valid([]byte(trimmed)) {
		return parseTokenObject([]byte(trimmed))
	}

	return &Token{AccessToken: trimmed}, nil
}

func parseTokenObject(data []byte) (*Token, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	token := &Token{}
	for key, dst := range map[string]*string{
		"access_token":  &token.AccessToken,
		"refresh_token": &token.RefreshToken,
		"token_type":    &token.TokenType,
		"scope":         &token.Scope,
		"id_token":      &token.IDToken,
	} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		v, err := stringField(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidToken, key, err)
		}
		*dst = v
	}

	for key, dst := range map[string]*int64{
		"created":    &token.Created,
		"expires_in": &token.ExpiresIn,
	} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		v, err := intField(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidToken, key, err)
		}
		*dst = v
	}

	return token, nil
}

func decodeField(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// stringField accepts strings, numbers and null.
func stringField(raw json.RawMessage) (string, error) {
	v, err := decodeField(raw)
	if err != nil {
		return "", err
	}
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	default:
		return "", fmt.Errorf("unexpected %T", v)
	}
}

// intField accepts integer or float numbers, numeric strings and null.
// Fractions are truncated.
func intField(raw json.RawMessage) (int64, error) {
	v, err := decodeField(raw)
	if err != nil {
		return 0, err
	}

	var text string
	switch x := v.(type) {
	case nil:
		return 0, nil
	case json.Number:
		text = x.String()
	case string:
		text = strings.TrimSpace(x)
		if text == "" {
			return 0, nil
		}
	default:
		return 0, fmt.Errorf("unexpected %T", v)
	}

	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("not a number: %q", text)
	}
	return int64(f), nil
}
