package httpclient

import (
	"crypto/tls"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/AmmannChristian/go-restx/internal/testutil"
	"github.com/AmmannChristian/go-restx/oauth2client"
)

func TestNewBuilder(t *testing.T) {
	builder := NewBuilder()

	if builder == nil {
		t.Fatal("builder should not be nil")
	}

	if builder.timeout != DefaultTimeout {
		t.Errorf("expected default timeout %v, got %v", DefaultTimeout, builder.timeout)
	}

	if !builder.followRedirects {
		t.Error("redirects should be enabled by default")
	}
}

func TestBuilder_WithTokenManager(t *testing.T) {
	tm := newAuthenticatedManager(t, "access")

	builder := NewBuilder().WithTokenManager(tm)

	if builder.TokenManager() != tm {
		t.Error("TokenManager not set correctly")
	}
}

func TestBuilder_WithOAuth2(t *testing.T) {
	builder := NewBuilder().
		WithOAuth2(oauth2client.Credentials{ClientID: "client-id", ClientSecret: "secret"})

	tm := builder.TokenManager()
	if tm == nil {
		t.Fatal("TokenManager should not be nil")
	}
	if tm.Credentials().ClientID != "client-id" {
		t.Errorf("unexpected client id: %s", tm.Credentials().ClientID)
	}
}

func TestBuilder_Options(t *testing.T) {
	builder := NewBuilder().
		WithTLS("/path/to/ca.crt", "/path/to/cert.crt", "/path/to/key.pem").
		WithInsecureSkipVerify().
		WithTimeout(45 * time.Second).
		WithoutRedirects().
		WithUserAgent("go-restx/test")

	if !builder.tlsEnabled || !builder.tlsSkipVerify {
		t.Error("TLS flags not set")
	}
	if builder.tlsCAFile != "/path/to/ca.crt" || builder.tlsCertFile != "/path/to/cert.crt" || builder.tlsKeyFile != "/path/to/key.pem" {
		t.Errorf("unexpected TLS files: %s %s %s", builder.tlsCAFile, builder.tlsCertFile, builder.tlsKeyFile)
	}
	if builder.timeout != 45*time.Second {
		t.Errorf("unexpected timeout: %v", builder.timeout)
	}
	if builder.followRedirects {
		t.Error("redirects should be disabled")
	}
	if builder.userAgent != "go-restx/test" {
		t.Errorf("unexpected user agent: %s", builder.userAgent)
	}
}

func TestBuilder_Build_Simple(t *testing.T) {
	client, err := NewBuilder().Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if client.Timeout != DefaultTimeout {
		t.Errorf("expected timeout %v, got %v", DefaultTimeout, client.Timeout)
	}

	transport, ok := client.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("expected *http.Transport, got %T", client.Transport)
	}
	if transport.TLSClientConfig == nil || transport.TLSClientConfig.MinVersion != tls.VersionTLS12 {
		t.Error("expected TLS 1.2 minimum by default")
	}
}

func TestBuilder_Build_WithTokenManager(t *testing.T) {
	tm := newAuthenticatedManager(t, "access")

	client, err := NewBuilder().WithTokenManager(tm).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	oauth2Transport, ok := client.Transport.(*OAuth2Transport)
	if !ok {
		t.Fatalf("transport should be OAuth2Transport, got %T", client.Transport)
	}
	if oauth2Transport.TokenManager != tm {
		t.Error("OAuth2Transport should use the configured manager")
	}
}

func TestBuilder_Build_WithoutRedirects(t *testing.T) {
	client, err := NewBuilder().WithoutRedirects().Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if client.CheckRedirect == nil {
		t.Fatal("CheckRedirect should be set")
	}

	if err := client.CheckRedirect(nil, nil); err != http.ErrUseLastResponse {
		t.Errorf("expected ErrUseLastResponse, got %v", err)
	}
}

func TestBuilder_Build_WithStubBaseTransport(t *testing.T) {
	stub := testutil.RoundTripFunc(func(req *http.Request) (*http.Response, error) {
		return okResponse(req, "stub"), nil
	})

	tm := newAuthenticatedManager(t, "access")
	client, err := NewBuilder().WithBaseTransport(stub).WithTokenManager(tm).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	oauth2Transport, ok := client.Transport.(*OAuth2Transport)
	if !ok {
		t.Fatalf("transport should be OAuth2Transport, got %T", client.Transport)
	}
	if _, ok := oauth2Transport.Base.(testutil.RoundTripFunc); !ok {
		t.Errorf("stub transport should be wrapped as-is, got %T", oauth2Transport.Base)
	}
}

func TestBuilder_Build_UserAgent(t *testing.T) {
	var seen []string
	stub := testutil.RoundTripFunc(func(req *http.Request) (*http.Response, error) {
		seen = append(seen, req.Header.Get("User-Agent"))
		return okResponse(req, ""), nil
	})

	client, err := NewBuilder().WithBaseTransport(stub).WithUserAgent("go-restx/1.0").Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	resp, err := client.Get("https://api.example.com")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	req, _ := http.NewRequest(http.MethodGet, "https://api.example.com", nil)
	req.Header.Set("User-Agent", "caller/2.0")
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if len(seen) != 2 || seen[0] != "go-restx/1.0" || seen[1] != "caller/2.0" {
		t.Errorf("unexpected user agents: %v", seen)
	}
}

func TestBuilder_BuildTLSConfig(t *testing.T) {
	tmpDir := t.TempDir()
	caFile := filepath.Join(tmpDir, "ca.crt")
	testutil.WriteTestCACert(t, caFile)

	invalidCA := filepath.Join(tmpDir, "invalid.crt")
	if err := os.WriteFile(invalidCA, []byte("invalid cert content"), 0o600); err != nil {
		t.Fatalf("failed to write CA file: %v", err)
	}

	tests := []struct {
		name     string
		caFile   string
		certFile string
		keyFile  string
		skip     bool
		wantErr  string
	}{
		{name: "defaults"},
		{name: "insecure skip verify", skip: true},
		{name: "custom CA", caFile: caFile},
		{name: "missing CA file", caFile: "/nonexistent/ca.crt", wantErr: "read CA file"},
		{name: "invalid CA content", caFile: invalidCA, wantErr: "failed to parse CA certificate"},
		{name: "cert without key", certFile: "/path/to/cert.crt", wantErr: "both TLS cert and key"},
		{name: "key without cert", keyFile: "/path/to/key.pem", wantErr: "both TLS cert and key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			builder := NewBuilder().WithTLS(tt.caFile, tt.certFile, tt.keyFile)
			builder.tlsSkipVerify = tt.skip

			tlsConfig, err := builder.buildTLSConfig()
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("buildTLSConfig failed: %v", err)
			}

			if tlsConfig.MinVersion != tls.VersionTLS12 {
				t.Errorf("expected TLS 1.2, got %d", tlsConfig.MinVersion)
			}
			if tlsConfig.InsecureSkipVerify != tt.skip {
				t.Errorf("InsecureSkipVerify = %v, want %v", tlsConfig.InsecureSkipVerify, tt.skip)
			}
			if tt.caFile != "" && tlsConfig.RootCAs == nil {
				t.Error("RootCAs should be configured from CA file")
			}
		})
	}
}

func TestBuilder_Build_WithMutualTLS_LoadsCertificates(t *testing.T) {
	tmpDir := t.TempDir()
	caFile := filepath.Join(tmpDir, "ca.crt")
	certFile := filepath.Join(tmpDir, "client.crt")
	keyFile := filepath.Join(tmpDir, "client.key")

	testutil.WriteTestCACert(t, caFile)
	testutil.WriteTestCertAndKey(t, certFile, keyFile)

	client, err := NewBuilder().WithTLS(caFile, certFile, keyFile).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	transport, ok := client.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("expected *http.Transport, got %T", client.Transport)
	}

	if len(transport.TLSClientConfig.Certificates) == 0 {
		t.Fatal("expected client certificates to be loaded")
	}
	if transport.TLSClientConfig.RootCAs == nil {
		t.Error("RootCAs should be configured from CA file")
	}
}

func TestBuilder_Build_WithMutualTLS_InvalidCert(t *testing.T) {
	tmpDir := t.TempDir()
	certFile := filepath.Join(tmpDir, "client.crt")
	keyFile := filepath.Join(tmpDir, "client.key")

	if err := os.WriteFile(certFile, []byte("bad cert"), 0o600); err != nil {
		t.Fatalf("failed to write cert file: %v", err)
	}
	if err := os.WriteFile(keyFile, []byte("bad key"), 0o600); err != nil {
		t.Fatalf("failed to write key file: %v", err)
	}

	_, err := NewBuilder().WithTLS("", certFile, keyFile).Build()
	if err == nil {
		t.Fatal("expected error for invalid cert/key")
	}

	if !strings.Contains(err.Error(), "load client certificate") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBuilder_Build_Integration(t *testing.T) {
	server := testutil.NewLocalHTTPServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access" {
			http.Error(w, "missing auth", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))

	client, err := NewBuilder().
		WithTokenManager(newAuthenticatedManager(t, "access")).
		WithTimeout(10 * time.Second).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	resp, err := client.Get(server.URL + "/2.0/contact")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
}

func BenchmarkBuilder_Build(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := NewBuilder().Build(); err != nil {
			b.Fatalf("Build failed: %v", err)
		}
	}
}
