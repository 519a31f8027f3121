package http_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	kitsuhttp "github.com/mklemme/kitsu/internal/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockLogger for testing.
type MockLogger struct {
	mu   sync.Mutex
	logs []map[string]interface{}
}

func (l *MockLogger) record(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logs = append(l.logs, map[string]interface{}{"level": level, "msg": msg, "fields": fields})
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) { l.record("debug", msg, fields) }
func (l *MockLogger) Info(msg string, fields map[string]interface{})  { l.record("info", msg, fields) }
func (l *MockLogger) Warn(msg string, fields map[string]interface{})  { l.record("warn", msg, fields) }
func (l *MockLogger) Error(msg string, fields map[string]interface{}) { l.record("error", msg, fields) }

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Do(t *testing.T) {
	t.Parallel()
	t.Run("successful request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/anime", request.URL.Path)
			assert.Equal(t, "page[limit]=2", request.URL.RawQuery)
			assert.Equal(t, http.MethodGet, request.Method)
			assert.Equal(t, "application/vnd.api+json", request.Header.Get("Accept"))
			assert.Equal(t, "kitsu-go", request.Header.Get("User-Agent"))

			writer.Header().Set("Content-Type", "application/vnd.api+json")
			_, _ = writer.Write([]byte(`{"data":[]}`))
		}))
		defer server.Close()

		client := kitsuhttp.NewClient(server.URL)

		resp, err := client.Do(context.Background(), &kitsuhttp.Request{
			Method:  http.MethodGet,
			URL:     "anime?page[limit]=2",
			Headers: http.Header{"Accept": []string{"application/vnd.api+json"}},
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"data":[]}`, string(resp.Body))
		assert.Equal(t, "application/vnd.api+json", resp.Headers.Get("Content-Type"))
	})

	t.Run("request with body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, http.MethodPost, request.Method)

			body, err := io.ReadAll(request.Body)
			assert.NoError(t, err)
			assert.JSONEq(t, `{"data":{"type":"posts"}}`, string(body))

			writer.WriteHeader(http.StatusCreated)
			_, _ = writer.Write([]byte(`{"data":{"id":"1","type":"posts"}}`))
		}))
		defer server.Close()

		client := kitsuhttp.NewClient(server.URL)

		resp, err := client.Do(context.Background(), &kitsuhttp.Request{
			Method: http.MethodPost,
			URL:    "/posts",
			Body:   []byte(`{"data":{"type":"posts"}}`),
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("absolute URL bypasses base URL", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/elsewhere", request.URL.Path)
			writer.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		client := kitsuhttp.NewClient("https://kitsu.invalid/api/edge")

		resp, err := client.Do(context.Background(), &kitsuhttp.Request{
			Method: http.MethodDelete,
			URL:    server.URL + "/elsewhere",
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Empty(t, resp.Body)
	})

	t.Run("error response", func(t *testing.T) {
		t.Parallel()

		var calls int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			atomic.AddInt32(&calls, 1)
			writer.WriteHeader(http.StatusNotFound)
			_, _ = writer.Write([]byte(`{"errors":[{"title":"Record not found","status":"404"}]}`))
		}))
		defer server.Close()

		client := kitsuhttp.NewClient(server.URL)

		resp, err := client.Do(context.Background(), &kitsuhttp.Request{
			Method: http.MethodGet,
			URL:    "/anime/0",
		})
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.True(t, kitsuhttp.IsStatusError(err))

		var statusErr *kitsuhttp.StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
		assert.Contains(t, string(statusErr.Body), "Record not found")
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("server errors are not retried", func(t *testing.T) {
		t.Parallel()

		var calls int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			atomic.AddInt32(&calls, 1)
			writer.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := kitsuhttp.NewClient(server.URL)

		resp, err := client.Do(context.Background(), &kitsuhttp.Request{Method: http.MethodGet, URL: "/anime"})
		require.Error(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("connection failure", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		url := server.URL
		server.Close()

		client := kitsuhttp.NewClient(url)

		resp, err := client.Do(context.Background(), &kitsuhttp.Request{Method: http.MethodGet, URL: "/anime"})
		require.Error(t, err)
		assert.Nil(t, resp)
		assert.False(t, kitsuhttp.IsStatusError(err))
	})

	t.Run("context cancellation", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			time.Sleep(100 * time.Millisecond)
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := kitsuhttp.NewClient(server.URL)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err := client.Do(ctx, &kitsuhttp.Request{Method: http.MethodGet, URL: "/anime"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})
}

func TestClient_WithOptions(t *testing.T) {
	t.Parallel()
	t.Run("with logger and debug", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			_, _ = writer.Write([]byte(`{"data":null}`))
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := kitsuhttp.NewClient(server.URL, kitsuhttp.WithLogger(logger), kitsuhttp.WithDebug(true))

		_, err := client.Do(context.Background(), &kitsuhttp.Request{Method: http.MethodGet, URL: "/users"})
		require.NoError(t, err)

		require.Len(t, logger.logs, 2)
		assert.Equal(t, "HTTP Request", logger.logs[0]["msg"])
		assert.Equal(t, "HTTP Response", logger.logs[1]["msg"])
	})

	t.Run("logger without debug stays quiet", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			_, _ = writer.Write([]byte(`{}`))
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := kitsuhttp.NewClient(server.URL, kitsuhttp.WithLogger(logger))

		_, err := client.Do(context.Background(), &kitsuhttp.Request{Method: http.MethodGet, URL: "/users"})
		require.NoError(t, err)
		assert.Empty(t, logger.logs)
	})

	t.Run("with user agent", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "my-app/1.0", request.Header.Get("User-Agent"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := kitsuhttp.NewClient(server.URL, kitsuhttp.WithUserAgent("my-app/1.0"))

		_, err := client.Do(context.Background(), &kitsuhttp.Request{Method: http.MethodGet, URL: "/"})
		require.NoError(t, err)
	})

	t.Run("with timeout", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			time.Sleep(200 * time.Millisecond)
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := kitsuhttp.NewClient(server.URL, kitsuhttp.WithTimeout(20*time.Millisecond))

		_, err := client.Do(context.Background(), &kitsuhttp.Request{Method: http.MethodGet, URL: "/"})
		require.Error(t, err)
	})

	t.Run("with http client", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "yes", request.Header.Get("X-Round-Tripper"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		httpClient := &http.Client{Transport: headerTripper{next: http.DefaultTransport}}
		client := kitsuhttp.NewClient(server.URL, kitsuhttp.WithHTTPClient(httpClient))

		_, err := client.Do(context.Background(), &kitsuhttp.Request{Method: http.MethodGet, URL: "/"})
		require.NoError(t, err)
	})
}

type headerTripper struct {
	next http.RoundTripper
}

func (h headerTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("X-Round-Tripper", "yes")

	return h.next.RoundTrip(req)
}
