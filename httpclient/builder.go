package httpclient

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/AmmannChristian/go-restx/oauth2client"
)

// DefaultTimeout bounds each request made by clients from this package.
const DefaultTimeout = 30 * time.Second

// Builder provides a fluent interface for constructing HTTP clients
// for the vendor API with optional Bearer token injection and TLS/mTLS support.
type Builder struct {
	tokenManager *oauth2client.TokenManager

	// TLS configuration
	tlsEnabled    bool
	tlsCAFile     string
	tlsCertFile   string
	tlsKeyFile    string
	tlsSkipVerify bool

	timeout         time.Duration
	baseTransport   http.RoundTripper
	followRedirects bool
	userAgent       string
}

// NewBuilder creates a new HTTP client builder.
func NewBuilder() *Builder {
	return &Builder{
		timeout:         DefaultTimeout,
		followRedirects: true,
	}
}

// WithTokenManager sets the token manager whose stored access token is sent
// with every request.
func (b *Builder) WithTokenManager(tm *oauth2client.TokenManager) *Builder {
	b.tokenManager = tm
	return b
}

// WithOAuth2 creates a new TokenManager for the given credentials and uses it
// for Bearer token injection. The manager is available via TokenManager.
func (b *Builder) WithOAuth2(creds oauth2client.Credentials, opts ...oauth2client.Option) *Builder {
	b.tokenManager = oauth2client.NewTokenManager(creds, opts...)
	return b
}

// TokenManager returns the configured token manager, or nil.
func (b *Builder) TokenManager() *oauth2client.TokenManager {
	return b.tokenManager
}

// WithTLS enables TLS with a custom CA and/or client certificate.
//
// Parameters:
//   - caFile: CA certificate for server verification (optional, system roots if empty)
//   - certFile: client certificate for mTLS (optional, must be paired with keyFile)
//   - keyFile: client private key for mTLS (optional, must be paired with certFile)
func (b *Builder) WithTLS(caFile, certFile, keyFile string) *Builder {
	b.tlsEnabled = true
	b.tlsCAFile = caFile
	b.tlsCertFile = certFile
	b.tlsKeyFile = keyFile
	return b
}

// WithInsecureSkipVerify disables TLS certificate verification.
// Only for tests against self-signed sandboxes.
func (b *Builder) WithInsecureSkipVerify() *Builder {
	b.tlsSkipVerify = true
	return b
}

// WithTimeout sets the request timeout. Default is DefaultTimeout.
func (b *Builder) WithTimeout(timeout time.Duration) *Builder {
	b.timeout = timeout
	return b
}

// WithBaseTransport sets a custom base transport. TLS options are ignored
// unless the transport is an *http.Transport.
func (b *Builder) WithBaseTransport(transport http.RoundTripper) *Builder {
	b.baseTransport = transport
	return b
}

// WithoutRedirects disables automatic redirect following.
func (b *Builder) WithoutRedirects() *Builder {
	b.followRedirects = false
	return b
}

// WithUserAgent sets the User-Agent header on requests that do not carry one.
func (b *Builder) WithUserAgent(userAgent string) *Builder {
	b.userAgent = userAgent
	return b
}

// Build constructs the HTTP client with the configured options.
func (b *Builder) Build() (*http.Client, error) {
	transport := b.baseTransport
	if transport == nil {
		transport = http.DefaultTransport
	}

	// Only a real *http.Transport can carry TLS settings; stubs pass through.
	if base, ok := transport.(*http.Transport); ok {
		tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
		if b.tlsEnabled || b.tlsSkipVerify {
			var err error
			tlsConfig, err = b.buildTLSConfig()
			if err != nil {
				return nil, fmt.Errorf("httpclient: TLS config failed: %w", err)
			}
		}
		cloned := base.Clone()
		cloned.TLSClientConfig = tlsConfig
		transport = cloned
	}

	if b.userAgent != "" {
		transport = &userAgentTransport{base: transport, userAgent: b.userAgent}
	}

	if b.tokenManager != nil {
		transport = NewOAuth2Transport(b.tokenManager, transport)
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   b.timeout,
	}

	if !b.followRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	return client, nil
}

// buildTLSConfig constructs the TLS configuration for the HTTP client.
func (b *Builder) buildTLSConfig() (*tls.Config, error) {
	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: b.tlsSkipVerify, // #nosec G402
	}

	if b.tlsCAFile != "" {
		caCert, err := os.ReadFile(b.tlsCAFile)
		if err != nil {
			return nil, fmt.Errorf("read CA file: %w", err)
		}

		certPool := x509.NewCertPool()
		if !certPool.AppendCertsFromPEM(caCert) {
			return nil, errors.New("failed to parse CA certificate")
		}
		tlsConfig.RootCAs = certPool
	}

	switch {
	case b.tlsCertFile != "" && b.tlsKeyFile != "":
		cert, err := tls.LoadX509KeyPair(b.tlsCertFile, b.tlsKeyFile)
		if err != nil {
			return nil, fmt.Errorf("load client certificate: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	case b.tlsCertFile != "" || b.tlsKeyFile != "":
		return nil, errors.New("both TLS cert and key files must be provided for mTLS")
	}

	return tlsConfig, nil
}

type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.base.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(clone)
}

// NewHTTPClient is a convenience function that creates a simple HTTP client
// sending the token manager's access token. For more options, use Builder.
//
// Example:
//
//	tm := oauth2client.NewTokenManager(creds)
//	_ = tm.SetAccessToken(oauth2client.RawToken(saved))
//	client := httpclient.NewHTTPClient(tm)
//	resp, err := client.Get("https://api.example.com/2.0/contact")
func NewHTTPClient(tm *oauth2client.TokenManager) *http.Client {
	return &http.Client{
		Transport: NewOAuth2Transport(tm, nil),
		Timeout:   DefaultTimeout,
	}
}
