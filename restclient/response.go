package restclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"unicode/utf8"
)

// Response is a decoded API response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte

	// Value is json.RawMessage in DecodeStructured mode and map[string]any or
	// []any in DecodeAssociative mode. It is nil for an empty body and for
	// non-JSON content such as application/pdf; read Body instead.
	Value any
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v any) error {
	if r == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return fmt.Errorf("restclient: decode response: empty body")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("restclient: decode response: %w", err)
	}
	return nil
}

// Map returns Value as an object, or nil if the body is not a JSON object in
// DecodeAssociative mode.
func (r *Response) Map() map[string]any {
	if r == nil {
		return nil
	}
	m, _ := r.Value.(map[string]any)
	return m
}

// maxErrorBody caps how much of the response body APIError.Error includes.
const maxErrorBody = 256

// APIError is returned for responses with status 400 and above.
type APIError struct {
	StatusCode int
	Method     string
	URL        string
	Body       []byte
}

func (e *APIError) Error() string {
	msg := bytes.TrimSpace(e.Body)
	if len(msg) > maxErrorBody {
		cut := maxErrorBody
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = append(msg[:cut:cut], "..."...)
	}
	if len(msg) == 0 {
		return fmt.Sprintf("restclient: %s %s: status %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("restclient: %s %s: status %d: %s", e.Method, e.URL, e.StatusCode, msg)
}

func decodeBody(body []byte, mode DecodeMode) (any, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}

	switch mode {
	case DecodeAssociative:
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("restclient: decode response: %w", err)
		}
		if _, err := dec.Token(); err != io.EOF {
			return nil, fmt.Errorf("restclient: decode response: unexpected data after top-level value")
		}
		return v, nil
	default:
		var raw json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("restclient: decode response: %w", err)
		}
		return raw, nil
	}
}
