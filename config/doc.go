// Package config merges client settings from defaults, an optional config
// file, RESTX_* environment variables and explicit overrides.
//
//	settings, err := config.Load(config.WithConfigFile("restx.yaml"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := settings.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
//	tm := settings.NewTokenManager(oauth2client.WithLoggingEnabled())
//	api, err := settings.NewRESTClient(tm)
//
// List values such as scopes are comma separated in environment variables:
// RESTX_SCOPES=openid,profile.
package config
