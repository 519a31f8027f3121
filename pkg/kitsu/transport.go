package kitsu

import (
	"context"
	"net/http"

	kitsuhttp "github.com/mklemme/kitsu/internal/http"
)

// Request is the outgoing request handed to interceptors and the Transport.
type Request struct {
	Method   string
	URL      string
	Header   http.Header
	Body     []byte
	Metadata map[string]interface{}
}

// Response is a completed round trip, whatever its status.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport sends a Request. It returns a Response for every completed round
// trip regardless of status, and an error only when no response was
// obtained.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, req *Request) (*Response, error)

// Do calls f.
func (f TransportFunc) Do(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

type httpTransport struct {
	client *kitsuhttp.Client
}

// NewHTTPTransport returns the default Transport built on the internal HTTP
// client. Relative URLs are resolved against baseURL.
func NewHTTPTransport(baseURL string, config *Config) Transport {
	return &httpTransport{
		client: kitsuhttp.NewClient(baseURL, createHTTPClientOptions(config)...),
	}
}

func createHTTPClientOptions(config *Config) []kitsuhttp.Option {
	var httpOpts []kitsuhttp.Option

	if config == nil {
		return httpOpts
	}

	if config.Logger != nil {
		httpOpts = append(httpOpts, kitsuhttp.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, kitsuhttp.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, kitsuhttp.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, kitsuhttp.WithTimeout(config.HTTPTimeout))
	}

	if config.DisableCompression {
		httpOpts = append(httpOpts, kitsuhttp.WithCompression(false))
	}

	return httpOpts
}

func (t *httpTransport) Do(ctx context.Context, req *Request) (*Response, error) {
	resp, err := t.client.Do(ctx, &kitsuhttp.Request{
		Method:  req.Method,
		URL:     req.URL,
		Headers: req.Header,
		Body:    req.Body,
	})
	if err != nil && (resp == nil || !kitsuhttp.IsStatusError(err)) {
		return nil, err
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Headers,
		Body:       resp.Body,
	}, nil
}
