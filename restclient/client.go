package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/AmmannChristian/go-restx/httpclient"
	"github.com/AmmannChristian/go-restx/oauth2client"
)

// Logger is the minimal logging interface used by Client.
type Logger interface {
	Printf(format string, args ...any)
}

// Client issues authenticated JSON requests against {BaseURL}/{version}/{path}.
// The bearer token comes from the TokenManager; Client never refreshes it.
type Client struct {
	baseURL string
	version string

	mu         sync.RWMutex
	decodeMode DecodeMode

	tokenManager *oauth2client.TokenManager
	httpClient   *http.Client
	logger       Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client. It must add the Authorization header
// itself, e.g. one built by httpclient.Builder.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithLogger sets a logger for request lines.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithLoggingEnabled logs request lines with log.Default().
func WithLoggingEnabled() Option {
	return func(c *Client) {
		c.logger = log.Default()
	}
}

// New creates a Client. Empty Config fields take DefaultConfig values.
// Without WithHTTPClient, requests go through httpclient.NewHTTPClient(tm).
func New(cfg Config, tm *oauth2client.TokenManager, opts ...Option) *Client {
	cfg = cfg.merged()

	c := &Client{
		baseURL:      cfg.BaseURL,
		version:      cfg.Version,
		decodeMode:   cfg.DecodeMode,
		tokenManager: tm,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = httpclient.NewHTTPClient(tm)
	}

	return c
}

// TokenManager returns the manager whose token authenticates requests.
func (c *Client) TokenManager() *oauth2client.TokenManager {
	return c.tokenManager
}

// SetDecodeMode switches how subsequent responses are decoded.
func (c *Client) SetDecodeMode(mode DecodeMode) *Client {
	c.mu.Lock()
	c.decodeMode = mode
	c.mu.Unlock()
	return c
}

// DecodeMode returns the current decode mode.
func (c *Client) DecodeMode() DecodeMode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.decodeMode
}

// CallOption adjusts a single request.
type CallOption func(*callOptions)

type callOptions struct {
	version string
	header  http.Header
}

// WithVersion overrides the API version segment for one call.
func WithVersion(version string) CallOption {
	return func(o *callOptions) {
		o.version = version
	}
}

// WithHeader adds a request header for one call.
func WithHeader(key, value string) CallOption {
	return func(o *callOptions) {
		o.header.Add(key, value)
	}
}

// Get sends params as a query string.
func (c *Client) Get(ctx context.Context, path string, params map[string]any, opts ...CallOption) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, params, false, opts)
}

// Post sends params as a JSON body. A nil map is sent as {}.
func (c *Client) Post(ctx context.Context, path string, params map[string]any, opts ...CallOption) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, params, true, opts)
}

// PostWithoutPayload sends a POST with an empty body.
func (c *Client) PostWithoutPayload(ctx context.Context, path string, opts ...CallOption) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, nil, false, opts)
}

// Put sends params as a JSON body. A nil map is sent as {}.
func (c *Client) Put(ctx context.Context, path string, params map[string]any, opts ...CallOption) (*Response, error) {
	return c.do(ctx, http.MethodPut, path, params, true, opts)
}

// Delete sends params as a query string.
func (c *Client) Delete(ctx context.Context, path string, params map[string]any, opts ...CallOption) (*Response, error) {
	return c.do(ctx, http.MethodDelete, path, params, false, opts)
}

// URL returns the absolute URL for path in the given version.
func (c *Client) URL(path, version string) string {
	if version == "" {
		version = c.version
	}
	return c.baseURL + "/" + strings.Trim(version, "/") + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) do(ctx context.Context, method, path string, params map[string]any, jsonBody bool, opts []CallOption) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	co := callOptions{header: make(http.Header)}
	for _, opt := range opts {
		opt(&co)
	}

	target := c.URL(path, co.version)

	var body io.Reader
	if jsonBody {
		if params == nil {
			params = map[string]any{}
		}
		payload, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("restclient: encode params: %w", err)
		}
		body = bytes.NewReader(payload)
	} else if len(params) > 0 {
		target += "?" + encodeQuery(params)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("restclient: create request: %w", err)
	}
	for key, values := range co.header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if jsonBody {
		req.Header.Set("Content-Type", "application/json")
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("restclient: read response: %w", err)
	}

	if c.logger != nil {
		c.logger.Printf("restclient: %s %s -> %d", method, target, httpResp.StatusCode)
	}

	if httpResp.StatusCode >= http.StatusBadRequest {
		return nil, &APIError{
			StatusCode: httpResp.StatusCode,
			Method:     method,
			URL:        target,
			Body:       raw,
		}
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       raw,
	}
	value, err := decodeBody(raw, c.DecodeMode())
	if err != nil {
		// Non-JSON payloads such as PDFs are returned raw. For JSON content
		// the response comes back with the error so the body stays readable.
		if !isJSONContent(httpResp.Header.Get("Content-Type")) {
			return resp, nil
		}
		return resp, err
	}
	resp.Value = value

	return resp, nil
}

// isJSONContent reports whether contentType declares JSON. A missing or
// unparsable Content-Type counts as JSON.
func isJSONContent(contentType string) bool {
	if strings.TrimSpace(contentType) == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return true
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// encodeQuery flattens params into a query string: slices repeat the key,
// booleans become 1 or 0, other values use their fmt representation.
func encodeQuery(params map[string]any) string {
	values := url.Values{}
	for k, param := range params {
		switch v := param.(type) {
		case nil:
			values.Add(k, "")
		case []string:
			for _, item := range v {
				values.Add(k, item)
			}
		case []any:
			for _, item := range v {
				values.Add(k, fmt.Sprint(item))
			}
		case bool:
			if v {
				values.Add(k, "1")
			} else {
				values.Add(k, "0")
			}
		default:
			values.Add(k, fmt.Sprint(v))
		}
	}
	return values.Encode()
}
