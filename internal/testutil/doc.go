// Package testutil provides test helpers for go-restx packages.
//
// It includes utilities to spin up IPv4-only local HTTP servers (avoiding IPv6 in sandboxes),
// mock OAuth2 token endpoints without real sockets, sign throwaway ID tokens, and generate
// self-signed certificates for TLS/mTLS tests.
//
// # Utilities
//
//   - NewLocalHTTPServer: start httptest server bound to 127.0.0.1
//   - MockOAuth2Server, StaticJSONResponse, JSONResponse: stub token endpoints and capture requests and form bodies
//   - RoundTripFunc: inline http.RoundTripper implementations
//   - SignIDToken: HS256 ID tokens for unverified claim decoding
//   - WriteTestCACert / WriteTestCertAndKey: generate temporary CA and leaf certificates for tests
//
// These helpers are designed for tests and may mutate http.DefaultClient/Transport; they restore previous values via tb.Cleanup.
package testutil
