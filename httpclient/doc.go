// Package httpclient builds the HTTP transport used to call the vendor REST API.
//
// OAuth2Transport wraps any RoundTripper and adds the access token stored in an
// oauth2client.TokenManager as a Bearer token, together with "Accept: application/json".
// It does not refresh tokens: check TokenManager.IsExpired and call Refresh yourself.
//
// # Features
//
//   - Fluent builder for http.Client with optional Bearer token injection
//   - TLS 1.2+ by default, with custom CA/mTLS and optional InsecureSkipVerify
//   - Custom timeouts, base transport override, User-Agent, and redirect disabling
//   - Reusable OAuth2Transport for manual composition
//
// # Quick Start
//
//	client, err := httpclient.NewBuilder().
//	    WithTokenManager(tm).
//	    WithTLS("/path/to/ca.crt", "", "").
//	    WithTimeout(60 * time.Second).
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	resp, err := client.Get("https://api.example.com/2.0/contact")
//
// # Manual Transport Wrapping
//
//	transport := httpclient.NewOAuth2Transport(tm, nil)
//	client := &http.Client{Transport: transport}
package httpclient
