package config

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmmannChristian/go-restx/internal/testutil"
	"github.com/AmmannChristian/go-restx/oauth2client"
	"github.com/AmmannChristian/go-restx/restclient"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	s, err := Load()
	require.NoError(t, err)

	assert.Empty(t, s.ClientID)
	assert.Empty(t, s.Scopes)
	assert.Equal(t, restclient.DefaultBaseURL, s.BaseURL)
	assert.Equal(t, restclient.DefaultVersion, s.Version)
	assert.False(t, s.DecodeAssociative)
	assert.Equal(t, oauth2client.DefaultAuthURL, s.AuthURL)
	assert.Equal(t, oauth2client.DefaultTokenURL, s.TokenURL)
	assert.Equal(t, oauth2client.DefaultRefreshTokenURL, s.RefreshTokenURL)
	assert.Equal(t, 30*time.Second, s.Timeout)
}

func TestLoadYAMLFile(t *testing.T) {
	path := writeFile(t, "restx.yaml", `
client_id: file-client
client_secret: file-secret
redirect_uri: https://app.example.com/callback
scopes:
  - openid
  - offline_access
version: "3.0"
decode_associative: true
timeout: 45s
`)

	s, err := Load(WithConfigFile(path))
	require.NoError(t, err)

	assert.Equal(t, "file-client", s.ClientID)
	assert.Equal(t, "file-secret", s.ClientSecret)
	assert.Equal(t, "https://app.example.com/callback", s.RedirectURI)
	assert.Equal(t, []string{"openid", "offline_access"}, s.Scopes)
	assert.Equal(t, "3.0", s.Version)
	assert.True(t, s.DecodeAssociative)
	assert.Equal(t, 45*time.Second, s.Timeout)
	// Untouched keys keep their defaults.
	assert.Equal(t, restclient.DefaultBaseURL, s.BaseURL)
}

func TestLoadJSONFile(t *testing.T) {
	path := writeFile(t, "restx.json", `{"client_id":"json-client","base_url":"https://sandbox.example.com"}`)

	s, err := Load(WithConfigFile(path))
	require.NoError(t, err)

	assert.Equal(t, "json-client", s.ClientID)
	assert.Equal(t, "https://sandbox.example.com", s.BaseURL)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(WithConfigFile(filepath.Join(t.TempDir(), "missing.yaml")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read")
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("RESTX_CLIENT_ID", "env-client")
	t.Setenv("RESTX_CLIENT_SECRET", "env-secret")
	t.Setenv("RESTX_SCOPES", "openid,profile")
	t.Setenv("RESTX_DECODE_ASSOCIATIVE", "true")
	t.Setenv("RESTX_TIMEOUT", "5s")

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "env-client", s.ClientID)
	assert.Equal(t, "env-secret", s.ClientSecret)
	assert.Equal(t, []string{"openid", "profile"}, s.Scopes)
	assert.True(t, s.DecodeAssociative)
	assert.Equal(t, 5*time.Second, s.Timeout)
}

func TestLoadPrecedence(t *testing.T) {
	path := writeFile(t, "restx.yaml", `
client_id: file-client
client_secret: file-secret
version: "2.1"
`)
	t.Setenv("RESTX_CLIENT_ID", "env-client")

	s, err := Load(
		WithConfigFile(path),
		WithOverrides(map[string]any{"version": "3.0"}),
	)
	require.NoError(t, err)

	assert.Equal(t, "env-client", s.ClientID, "env wins over file")
	assert.Equal(t, "file-secret", s.ClientSecret, "file wins over defaults")
	assert.Equal(t, "3.0", s.Version, "overrides win over file")

	s, err = Load(WithOverrides(map[string]any{"client_id": "override-client"}))
	require.NoError(t, err)
	assert.Equal(t, "override-client", s.ClientID, "overrides win over env")
}

func TestWithOverridesMerges(t *testing.T) {
	s, err := Load(
		WithOverrides(map[string]any{"client_id": "a", "client_secret": "b"}),
		WithOverrides(map[string]any{"client_id": "c"}),
	)
	require.NoError(t, err)

	assert.Equal(t, "c", s.ClientID)
	assert.Equal(t, "b", s.ClientSecret)
}

func TestValidate(t *testing.T) {
	valid := func() *Settings {
		s, err := Load(WithOverrides(map[string]any{"client_id": "id", "client_secret": "secret"}))
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{name: "valid", mutate: func(*Settings) {}},
		{name: "missing client id", mutate: func(s *Settings) { s.ClientID = "" }, wantErr: "client_id is required"},
		{name: "missing client secret", mutate: func(s *Settings) { s.ClientSecret = "" }, wantErr: "client_secret is required"},
		{name: "missing base url", mutate: func(s *Settings) { s.BaseURL = "" }, wantErr: "base_url is required"},
		{name: "bad base url scheme", mutate: func(s *Settings) { s.BaseURL = "ftp://api.example.com" }, wantErr: "base_url: unsupported scheme"},
		{name: "base url without host", mutate: func(s *Settings) { s.BaseURL = "https://" }, wantErr: "base_url: missing host"},
		{name: "missing token url", mutate: func(s *Settings) { s.TokenURL = "" }, wantErr: "token_url is required"},
		{name: "empty refresh url is allowed", mutate: func(s *Settings) { s.RefreshTokenURL = "" }},
		{name: "negative timeout", mutate: func(s *Settings) { s.Timeout = -time.Second }, wantErr: "timeout must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(s)

			err := s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConverters(t *testing.T) {
	s := &Settings{
		ClientID:          "id",
		ClientSecret:      "secret",
		RedirectURI:       "https://app.example.com/callback",
		Scopes:            []string{"openid"},
		BaseURL:           "https://sandbox.example.com",
		Version:           "3.0",
		DecodeAssociative: true,
		TokenURL:          "https://auth.example.com/token",
	}

	assert.Equal(t, oauth2client.Credentials{
		ClientID:     "id",
		ClientSecret: "secret",
		RedirectURI:  "https://app.example.com/callback",
	}, s.Credentials())

	endpoint := s.Endpoint()
	assert.Equal(t, oauth2client.DefaultAuthURL, endpoint.AuthURL)
	assert.Equal(t, "https://auth.example.com/token", endpoint.TokenURL)
	assert.Equal(t, oauth2client.DefaultRefreshTokenURL, endpoint.RefreshTokenURL)

	assert.Equal(t, restclient.Config{
		BaseURL:    "https://sandbox.example.com",
		Version:    "3.0",
		DecodeMode: restclient.DecodeAssociative,
	}, s.ClientConfig())
}

func TestNewTokenManager(t *testing.T) {
	s := &Settings{
		ClientID:    "id",
		RedirectURI: "https://app.example.com/callback",
		Scopes:      []string{"openid"},
		AuthURL:     "https://auth.example.com/authorize",
	}

	tm := s.NewTokenManager()
	assert.Equal(t, "id", tm.Credentials().ClientID)

	authURL := tm.AuthCodeURL("state-1")
	assert.Contains(t, authURL, "https://auth.example.com/authorize?")
	assert.Contains(t, authURL, "scope=openid")
	assert.Contains(t, authURL, "state=state-1")
}

func TestNewRESTClient(t *testing.T) {
	server := testutil.NewLocalHTTPServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token-from-config" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "/3.0/users/me", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1,"email":"user@example.com"}`))
	}))

	s, err := Load(WithOverrides(map[string]any{
		"client_id":          "id",
		"client_secret":      "secret",
		"base_url":           server.URL,
		"version":            "3.0",
		"decode_associative": true,
		"timeout":            "2s",
	}))
	require.NoError(t, err)
	require.NoError(t, s.Validate())

	tm := s.NewTokenManager()
	require.NoError(t, tm.SetAccessToken(oauth2client.RawToken("token-from-config")))

	api, err := s.NewRESTClient(tm)
	require.NoError(t, err)
	assert.Equal(t, restclient.DecodeAssociative, api.DecodeMode())

	resp, err := api.Get(context.Background(), "users/me", nil)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", resp.Map()["email"])
}
