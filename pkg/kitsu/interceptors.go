package kitsu

import (
	"context"
	"fmt"
	"net/http"
)

// RequestInterceptor is called before a request is sent.
type RequestInterceptor func(ctx context.Context, req *Request) error

// ResponseInterceptor is called after a response is received, before its
// status is checked.
type ResponseInterceptor func(ctx context.Context, req *Request, resp *Response) error

// InterceptorChain manages a chain of interceptors.
type InterceptorChain struct {
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
}

// NewInterceptorChain creates a new interceptor chain.
func NewInterceptorChain() *InterceptorChain {
	return &InterceptorChain{
		requestInterceptors:  make([]RequestInterceptor, 0),
		responseInterceptors: make([]ResponseInterceptor, 0),
	}
}

// AddRequestInterceptor adds a request interceptor to the chain.
func (c *InterceptorChain) AddRequestInterceptor(interceptor RequestInterceptor) {
	c.requestInterceptors = append(c.requestInterceptors, interceptor)
}

// AddResponseInterceptor adds a response interceptor to the chain.
func (c *InterceptorChain) AddResponseInterceptor(interceptor ResponseInterceptor) {
	c.responseInterceptors = append(c.responseInterceptors, interceptor)
}

// ExecuteRequestInterceptors runs all request interceptors.
func (c *InterceptorChain) ExecuteRequestInterceptors(ctx context.Context, req *Request) error {
	for _, interceptor := range c.requestInterceptors {
		err := interceptor(ctx, req)
		if err != nil {
			return fmt.Errorf("request interceptor failed: %w", err)
		}
	}

	return nil
}

// ExecuteResponseInterceptors runs all response interceptors.
func (c *InterceptorChain) ExecuteResponseInterceptors(ctx context.Context, req *Request, resp *Response) error {
	for _, interceptor := range c.responseInterceptors {
		err := interceptor(ctx, req, resp)
		if err != nil {
			return fmt.Errorf("response interceptor failed: %w", err)
		}
	}

	return nil
}

// extend returns a new chain running c's interceptors after before's and
// ahead of after's. Neither input is modified.
func (c *InterceptorChain) extend(before, after *InterceptorChain) *InterceptorChain {
	out := NewInterceptorChain()

	for _, chain := range []*InterceptorChain{before, c, after} {
		if chain == nil {
			continue
		}

		out.requestInterceptors = append(out.requestInterceptors, chain.requestInterceptors...)
		out.responseInterceptors = append(out.responseInterceptors, chain.responseInterceptors...)
	}

	return out
}

// LoggingInterceptor logs requests.
func LoggingInterceptor(logger Logger) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		logger.Debug("API Request", map[string]interface{}{
			"method": req.Method,
			"url":    req.URL,
			"bytes":  len(req.Body),
		})

		return nil
	}
}

// LoggingResponseInterceptor logs responses. Non-2xx responses are logged at
// error level.
func LoggingResponseInterceptor(logger Logger) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		fields := map[string]interface{}{
			"method":      req.Method,
			"url":         req.URL,
			"status_code": resp.StatusCode,
		}

		if successful(resp.StatusCode) {
			logger.Debug("API Response", fields)
		} else {
			logger.Error("API Response Error", fields)
		}

		return nil
	}
}

// StaticToken returns a token provider that always yields token.
func StaticToken(token string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) {
		return token, nil
	}
}

// AuthenticationInterceptor adds a bearer Authorization header.
func AuthenticationInterceptor(tokenProvider func(context.Context) (string, error)) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		token, err := tokenProvider(ctx)
		if err != nil {
			return fmt.Errorf("failed to get authentication token: %w", err)
		}

		if req.Header == nil {
			req.Header = make(http.Header)
		}

		req.Header.Set("Authorization", "Bearer "+token)

		return nil
	}
}

// HeaderInterceptor adds custom headers to requests.
func HeaderInterceptor(headers map[string]string) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		if req.Header == nil {
			req.Header = make(http.Header)
		}

		for key, value := range headers {
			req.Header.Set(key, value)
		}

		return nil
	}
}
