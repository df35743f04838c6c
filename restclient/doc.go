// Package restclient wraps the vendor REST API verbs.
//
// Each call targets {BaseURL}/{version}/{path}. GET and DELETE send params as
// a query string, POST and PUT send them as a JSON body. Responses are decoded
// according to the client's DecodeMode:
//
//	tm := oauth2client.NewTokenManager(creds)
//	_ = tm.SetAccessToken(oauth2client.RawToken(saved))
//
//	api := restclient.New(restclient.Config{}, tm)
//	resp, err := api.Get(ctx, "contact", map[string]any{"limit": 10})
//	if err != nil {
//	    return err
//	}
//	var contacts []Contact
//	err = resp.Decode(&contacts)
//
// Bodies that are not JSON and are served with a non-JSON Content-Type
// (e.g. application/pdf) come back raw in Response.Body with a nil Value.
// A malformed JSON body returns the Response together with the decode error.
//
// Status codes of 400 and above are returned as *APIError. Transport errors,
// including oauth2client.ErrNoAccessToken, are returned as they come from the
// HTTP client. Expired tokens are not refreshed here; check
// TokenManager.IsExpired and call Refresh before issuing requests.
package restclient
