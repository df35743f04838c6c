package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/AmmannChristian/go-restx/httpclient"
	"github.com/AmmannChristian/go-restx/oauth2client"
	"github.com/AmmannChristian/go-restx/restclient"
)

// EnvPrefix prefixes every environment variable read by Load, e.g.
// RESTX_CLIENT_ID.
const EnvPrefix = "RESTX"

// Settings is the merged client configuration.
type Settings struct {
	ClientID     string   `json:"client_id" mapstructure:"client_id"`
	ClientSecret string   `json:"client_secret" mapstructure:"client_secret"`
	RedirectURI  string   `json:"redirect_uri" mapstructure:"redirect_uri"`
	Scopes       []string `json:"scopes" mapstructure:"scopes"`

	BaseURL           string `json:"base_url" mapstructure:"base_url"`
	Version           string `json:"version" mapstructure:"version"`
	DecodeAssociative bool   `json:"decode_associative" mapstructure:"decode_associative"`

	AuthURL         string `json:"auth_url" mapstructure:"auth_url"`
	TokenURL        string `json:"token_url" mapstructure:"token_url"`
	RefreshTokenURL string `json:"refresh_token_url" mapstructure:"refresh_token_url"`

	// Timeout bounds each API request.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

// Defaults returns the values used for keys that no source sets.
func Defaults() map[string]any {
	return map[string]any{
		"client_id":          "",
		"client_secret":      "",
		"redirect_uri":       "",
		"scopes":             []string{},
		"base_url":           restclient.DefaultBaseURL,
		"version":            restclient.DefaultVersion,
		"decode_associative": false,
		"auth_url":           oauth2client.DefaultAuthURL,
		"token_url":          oauth2client.DefaultTokenURL,
		"refresh_token_url":  oauth2client.DefaultRefreshTokenURL,
		"timeout":            httpclient.DefaultTimeout,
	}
}

type loadOptions struct {
	configFile string
	overrides  map[string]any
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

// WithConfigFile reads a YAML, JSON or TOML file. The format follows the
// file extension.
func WithConfigFile(path string) LoadOption {
	return func(o *loadOptions) {
		o.configFile = path
	}
}

// WithOverrides sets values that win over every other source. Keys use the
// mapstructure names of Settings.
func WithOverrides(overrides map[string]any) LoadOption {
	return func(o *loadOptions) {
		if o.overrides == nil {
			o.overrides = make(map[string]any, len(overrides))
		}
		for k, v := range overrides {
			o.overrides[k] = v
		}
	}
}

// Load merges defaults, the optional config file, RESTX_* environment
// variables and overrides, in increasing precedence.
func Load(opts ...LoadOption) (*Settings, error) {
	o := &loadOptions{}
	for _, opt := range opts {
		opt(o)
	}

	v := viper.New()
	// Every key needs a default so AutomaticEnv values reach Unmarshal.
	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if o.configFile != "" {
		v.SetConfigFile(o.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", o.configFile, err)
		}
	}

	for key, value := range o.overrides {
		v.Set(key, value)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("config: decode settings: %w", err)
	}

	return &s, nil
}

// Validate reports missing credentials and malformed URLs.
func (s *Settings) Validate() error {
	var errs []error

	if s.ClientID == "" {
		errs = append(errs, errors.New("client_id is required"))
	}
	if s.ClientSecret == "" {
		errs = append(errs, errors.New("client_secret is required"))
	}

	for _, field := range []struct {
		name  string
		value string
	}{
		{"base_url", s.BaseURL},
		{"auth_url", s.AuthURL},
		{"token_url", s.TokenURL},
		{"refresh_token_url", s.RefreshTokenURL},
	} {
		if field.value == "" {
			if field.name == "base_url" || field.name == "token_url" {
				errs = append(errs, fmt.Errorf("%s is required", field.name))
			}
			continue
		}
		if err := checkURL(field.value); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field.name, err))
		}
	}

	if s.Timeout < 0 {
		errs = append(errs, errors.New("timeout must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: invalid settings: %w", errors.Join(errs...))
	}
	return nil
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

// Credentials returns the OAuth2 client credentials.
func (s *Settings) Credentials() oauth2client.Credentials {
	return oauth2client.Credentials{
		ClientID:     s.ClientID,
		ClientSecret: s.ClientSecret,
		RedirectURI:  s.RedirectURI,
	}
}

// Endpoint returns the OAuth2 endpoint URLs.
func (s *Settings) Endpoint() oauth2client.Endpoint {
	endpoint := oauth2client.DefaultEndpoint()
	if s.AuthURL != "" {
		endpoint.AuthURL = s.AuthURL
	}
	if s.TokenURL != "" {
		endpoint.TokenURL = s.TokenURL
	}
	if s.RefreshTokenURL != "" {
		endpoint.RefreshTokenURL = s.RefreshTokenURL
	}
	return endpoint
}

// ClientConfig returns the REST client configuration.
func (s *Settings) ClientConfig() restclient.Config {
	mode := restclient.DecodeStructured
	if s.DecodeAssociative {
		mode = restclient.DecodeAssociative
	}
	return restclient.Config{
		BaseURL:    s.BaseURL,
		Version:    s.Version,
		DecodeMode: mode,
	}
}

// NewTokenManager creates a TokenManager for these settings. opts are applied
// after the endpoint and scopes, so they can override both.
func (s *Settings) NewTokenManager(opts ...oauth2client.Option) *oauth2client.TokenManager {
	base := []oauth2client.Option{
		oauth2client.WithEndpoint(s.Endpoint()),
		oauth2client.WithScopes(s.Scopes...),
	}
	return oauth2client.NewTokenManager(s.Credentials(), append(base, opts...)...)
}

// NewRESTClient creates a REST client that authenticates with tm and applies
// the configured timeout.
func (s *Settings) NewRESTClient(tm *oauth2client.TokenManager, opts ...restclient.Option) (*restclient.Client, error) {
	timeout := s.Timeout
	if timeout == 0 {
		timeout = httpclient.DefaultTimeout
	}

	httpClient, err := httpclient.NewBuilder().
		WithTokenManager(tm).
		WithTimeout(timeout).
		Build()
	if err != nil {
		return nil, fmt.Errorf("config: build http client: %w", err)
	}

	base := []restclient.Option{restclient.WithHTTPClient(httpClient)}
	return restclient.New(s.ClientConfig(), tm, append(base, opts...)...), nil
}
