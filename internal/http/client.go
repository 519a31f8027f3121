// Package http is the transport used by the kitsu client: a thin wrapper
// around go-retryablehttp that sends exactly one attempt per request.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/mklemme/kitsu/internal/constants"
)

// Logger receives request and response traces when debug is enabled.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Request is a single HTTP exchange. URL may be absolute or relative to the
// client's base URL.
type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// StatusError is returned together with the Response when the server answers
// with a non-2xx status.
type StatusError struct {
	StatusCode int
	Status     string
	Body       []byte
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return "unexpected HTTP status " + e.Status
}

// Client sends requests to a JSON:API server.
type Client struct {
	baseURL    string
	httpClient *retryablehttp.Client
	logger     Logger
	debug      bool
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for debug traces.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response traces.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithTimeout sets the overall timeout of a single request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.Timeout = timeout
	}
}

// WithCompression toggles transparent gzip negotiation.
func WithCompression(enabled bool) Option {
	return func(c *Client) {
		if transport, ok := c.httpClient.HTTPClient.Transport.(*http.Transport); ok {
			transport.DisableCompression = !enabled
		}
	}
}

// WithHTTPClient replaces the underlying *http.Client, e.g. to install a
// custom RoundTripper.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient.HTTPClient = httpClient
		}
	}
}

// NewClient creates a transport rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil
	retryClient.RetryMax = 0
	retryClient.CheckRetry = neverRetry
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout

	client := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: retryClient,
		userAgent:  constants.DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// neverRetry reports every outcome as final. Failed round trips surface to
// the caller immediately.
func neverRetry(_ context.Context, _ *http.Response, _ error) (bool, error) {
	return false, nil
}

// Do sends req and reads the whole response. A non-2xx status returns both
// the Response and a *StatusError.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	var body interface{}
	if len(req.Body) > 0 {
		body = req.Body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, c.resolve(req.URL), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	for key, values := range req.Headers {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	if httpReq.Header.Get("User-Agent") == "" && c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	c.trace("HTTP Request", map[string]interface{}{
		"method": req.Method,
		"url":    httpReq.URL.String(),
	})

	start := time.Now()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if httpResp != nil && httpResp.Body != nil {
			_ = httpResp.Body.Close()
		}

		return nil, fmt.Errorf("sending request: %w", err)
	}

	defer func() {
		_ = httpResp.Body.Close()
	}()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	c.trace("HTTP Response", map[string]interface{}{
		"method":      req.Method,
		"url":         httpReq.URL.String(),
		"status_code": httpResp.StatusCode,
		"duration":    time.Since(start).String(),
		"bytes":       len(respBody),
	})

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return resp, &StatusError{
			StatusCode: httpResp.StatusCode,
			Status:     httpResp.Status,
			Body:       respBody,
		}
	}

	return resp, nil
}

// IsStatusError reports whether err carries an HTTP status failure.
func IsStatusError(err error) bool {
	statusErr := &StatusError{}

	return errors.As(err, &statusErr)
}

func (c *Client) resolve(target string) string {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") || c.baseURL == "" {
		return target
	}

	return c.baseURL + "/" + strings.TrimPrefix(target, "/")
}

func (c *Client) trace(msg string, fields map[string]interface{}) {
	if !c.debug || c.logger == nil {
		return
	}

	c.logger.Debug(msg, fields)
}
