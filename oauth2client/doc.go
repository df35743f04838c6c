// Package oauth2client manages the OAuth2 token lifecycle for the vendor REST API.
//
// A TokenManager holds the client credentials and a single access token. It exchanges
// authorization codes for tokens, refreshes them, and reports expiry with a 30 second
// safety margin. Token endpoint calls go through a TokenFetcher; the default
// OAuth2Service is built on golang.org/x/oauth2.
//
// # Features
//
//   - Authorization-code exchange and refresh-token grant
//   - Tokens accepted as bare strings, serialized JSON, or structured values
//   - Refresh tokens kept when the provider does not reissue them
//   - Pluggable TokenFetcher, clock, and HTTP client
//   - gRPC unary and stream client interceptors that inject the stored Bearer token
//   - Optional logging (WithLogger, WithLoggingEnabled)
//
// # Quick Start
//
//	tm := oauth2client.NewTokenManager(oauth2client.Credentials{
//	    ClientID:     "client-id",
//	    ClientSecret: "client-secret",
//	    RedirectURI:  "https://app.example.com/callback",
//	})
//
//	// Send the user to tm.AuthCodeURL(state), then:
//	if _, err := tm.ExchangeAuthCode(ctx, code); err != nil {
//	    log.Fatal(err)
//	}
//
//	if tm.IsExpired() {
//	    if _, err := tm.Refresh(ctx, ""); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// # Notes
//
//   - Errors returned by the TokenFetcher (network and token endpoint failures) are passed
//     through unchanged and never retried.
//   - Nothing is persisted. Store tm.AccessToken() yourself and restore it with SetAccessToken.
//   - Individual calls are safe for concurrent use; IsExpired followed by Refresh is not atomic.
package oauth2client
