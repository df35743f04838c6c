package oauth2client

import "errors"

var (
	// ErrInvalidToken is returned when a token is empty or has no access_token.
	ErrInvalidToken = errors.New("oauth2: invalid token format")

	// ErrInvalidArgument is returned for empty authorization codes.
	ErrInvalidArgument = errors.New("oauth2: invalid code")

	// ErrMissingRefreshToken is returned by Refresh when no refresh token was
	// passed and none is stored.
	ErrMissingRefreshToken = errors.New("oauth2: refresh token must be passed or set as part of the access token")

	// ErrInvalidResponse is returned when a refresh response has no access token.
	ErrInvalidResponse = errors.New("oauth2: illegal access token received when token was refreshed")

	// ErrNoAccessToken is returned when a bearer token is required but none is stored.
	ErrNoAccessToken = errors.New("oauth2: no access token stored")

	// ErrNoIDToken is returned when the token carries no OIDC ID token.
	ErrNoIDToken = errors.New("oauth2: token has no id_token")
)
