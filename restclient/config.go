package restclient

import "strings"

const (
	// DefaultBaseURL is the API host used when Config.BaseURL is empty.
	DefaultBaseURL = "https://api.example.com"

	// DefaultVersion is the API version segment used when none is given.
	DefaultVersion = "2.0"
)

// DecodeMode selects how response bodies are exposed in Response.Value.
type DecodeMode int

const (
	// DecodeStructured keeps the body as json.RawMessage. Use Response.Decode
	// to unmarshal it into a typed value.
	DecodeStructured DecodeMode = iota

	// DecodeAssociative decodes the body into map[string]any or []any with
	// numbers as json.Number.
	DecodeAssociative
)

// String returns the mode name.
func (m DecodeMode) String() string {
	switch m {
	case DecodeStructured:
		return "structured"
	case DecodeAssociative:
		return "associative"
	default:
		return "unknown"
	}
}

// Config holds the API location and decode behaviour of a Client.
type Config struct {
	BaseURL    string
	Version    string
	DecodeMode DecodeMode
}

// DefaultConfig returns the configuration used for zero fields.
func DefaultConfig() Config {
	return Config{
		BaseURL:    DefaultBaseURL,
		Version:    DefaultVersion,
		DecodeMode: DecodeStructured,
	}
}

// merged fills empty fields from DefaultConfig.
func (c Config) merged() Config {
	defaults := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = defaults.BaseURL
	}
	if c.Version == "" {
		c.Version = defaults.Version
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return c
}
