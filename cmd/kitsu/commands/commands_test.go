package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/mklemme/kitsu/internal/constants"
	"github.com/mklemme/kitsu/pkg/jsonapi"
	"github.com/mklemme/kitsu/pkg/kitsu"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

type capturedRequest struct {
	method string
	uri    string
	header http.Header
	body   string
}

// apiServer answers every request with body and records what it received.
type apiServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []capturedRequest
}

func newAPIServer(t *testing.T, status int, body string) *apiServer {
	t.Helper()

	s := &apiServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)

		s.mu.Lock()
		s.requests = append(s.requests, capturedRequest{
			method: r.Method,
			uri:    r.URL.RequestURI(),
			header: r.Header.Clone(),
			body:   string(data),
		})
		s.mu.Unlock()

		w.Header().Set("Content-Type", jsonapi.MediaType)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(s.Close)

	return s
}

func (s *apiServer) captured() []capturedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]capturedRequest(nil), s.requests...)
}

// useViper resets the global configuration and points the client at baseURL.
func useViper(t *testing.T, baseURL string) {
	t.Helper()

	viper.Reset()
	viper.Set(KeyBaseURL, baseURL)
	viper.Set(KeyOutput, constants.FormatJSON)
	t.Cleanup(viper.Reset)
}

func execute(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))

	err := cmd.Execute()

	return out.String(), err
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestGetCommand(t *testing.T) {
	server := newAPIServer(t, http.StatusOK, `{"data":[{"id":"1","type":"anime","attributes":{"canonicalTitle":"Cowboy Bebop"}}]}`)
	useViper(t, server.URL)
	viper.Set(KeyToken, "secret")

	out, err := execute(t, NewGetCommand(), "", "libraryEntries", "anime/1/episodes",
		"-p", "filter[text]=bebop", "--jq", ".data[0].canonicalTitle")
	require.NoError(t, err)
	assert.Equal(t, "\"Cowboy Bebop\"\n\"Cowboy Bebop\"\n", out)

	requests := server.captured()
	require.Len(t, requests, 2)

	uris := []string{requests[0].uri, requests[1].uri}
	assert.ElementsMatch(t, []string{
		"/library-entries?filter%5Btext%5D=bebop",
		"/anime/1/episodes?filter%5Btext%5D=bebop",
	}, uris)

	for _, req := range requests {
		assert.Equal(t, http.MethodGet, req.method)
		assert.Equal(t, "Bearer secret", req.header.Get("Authorization"))
		assert.Equal(t, jsonapi.MediaType, req.header.Get("Accept"))
		assert.Equal(t, constants.DefaultUserAgent+"-cli", req.header.Get("User-Agent"))
	}
}

func TestGetCommand_Failure(t *testing.T) {
	server := newAPIServer(t, http.StatusNotFound, `{"errors":[{"title":"Record not found","status":"404"}]}`)
	useViper(t, server.URL)

	_, err := execute(t, NewGetCommand(), "", "anime/999999")
	require.Error(t, err)
	assert.True(t, kitsu.IsNotFound(err))
	assert.Contains(t, err.Error(), "Record not found")
}

func TestCreateCommand(t *testing.T) {
	server := newAPIServer(t, http.StatusCreated, `{"data":{"id":"9","type":"libraryEntries","attributes":{"status":"current"}}}`)
	useViper(t, server.URL)

	out, err := execute(t, NewCreateCommand(), `{"status":"current","anime":{"id":"1"}}`, "libraryEntries", "-f", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "9"`)

	requests := server.captured()
	require.Len(t, requests, 1)
	assert.Equal(t, http.MethodPost, requests[0].method)
	assert.Equal(t, "/library-entries", requests[0].uri)
	assert.JSONEq(t, `{"data":{
		"type":"libraryEntries",
		"attributes":{"status":"current"},
		"relationships":{"anime":{"data":{"id":"1","type":"anime"}}}
	}}`, requests[0].body)
}

func TestUpdateCommand(t *testing.T) {
	server := newAPIServer(t, http.StatusOK, `{"data":{"id":"42","type":"libraryEntries","attributes":{"progress":7}}}`)
	useViper(t, server.URL)

	_, err := execute(t, NewUpdateCommand(), "", "libraryEntries", "--id", "42", "-d", `{"progress":7}`)
	require.NoError(t, err)

	requests := server.captured()
	require.Len(t, requests, 1)
	assert.Equal(t, http.MethodPatch, requests[0].method)
	assert.Equal(t, "/library-entries/42", requests[0].uri)
	assert.JSONEq(t, `{"data":{"id":"42","type":"libraryEntries","attributes":{"progress":7}}}`, requests[0].body)
}

func TestDeleteCommand(t *testing.T) {
	t.Run("single id", func(t *testing.T) {
		server := newAPIServer(t, http.StatusNoContent, "")
		useViper(t, server.URL)

		out, err := execute(t, NewDeleteCommand(), "", "libraryEntries", "42")
		require.NoError(t, err)
		assert.Equal(t, "Deleted libraryEntries 42\n", out)

		requests := server.captured()
		require.Len(t, requests, 1)
		assert.Equal(t, http.MethodDelete, requests[0].method)
		assert.Equal(t, "/library-entries/42", requests[0].uri)
		assert.JSONEq(t, `{"data":{"id":"42","type":"libraryEntries"}}`, requests[0].body)
	})

	t.Run("bulk", func(t *testing.T) {
		server := newAPIServer(t, http.StatusOK, `{"meta":{"deleted":2}}`)
		useViper(t, server.URL)

		out, err := execute(t, NewDeleteCommand(), "", "libraryEntries", "1", "2")
		require.NoError(t, err)
		assert.JSONEq(t, `{"meta":{"deleted":2}}`, out)

		requests := server.captured()
		require.Len(t, requests, 1)
		assert.Equal(t, "/library-entries", requests[0].uri)
		assert.JSONEq(t, `{"data":[{"id":"1","type":"libraryEntries"},{"id":"2","type":"libraryEntries"}]}`, requests[0].body)
	})
}

func TestSelfCommand(t *testing.T) {
	server := newAPIServer(t, http.StatusOK, `{"data":[{"id":"42","type":"users","attributes":{"name":"Spike"}}]}`)
	useViper(t, server.URL)

	out, err := execute(t, NewSelfCommand(), "", "-p", "fields[users]=name")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"42","type":"users","name":"Spike"}`, out)

	requests := server.captured()
	require.Len(t, requests, 1)
	assert.Equal(t, "/users?fields%5Busers%5D=name&filter%5Bself%5D=true", requests[0].uri)
}

func TestRequestCommand(t *testing.T) {
	server := newAPIServer(t, http.StatusCreated, `{"data":{"id":"5","type":"postLikes"}}`)
	useViper(t, server.URL)

	_, err := execute(t, NewRequestCommand(), "", "posts/1/likes", "-X", "post", "--type", "postLikes",
		"-d", `{"user":{"id":"42"}}`)
	require.NoError(t, err)

	requests := server.captured()
	require.Len(t, requests, 1)
	assert.Equal(t, http.MethodPost, requests[0].method)
	assert.Equal(t, "/posts/1/likes", requests[0].uri)
	assert.JSONEq(t, `{"data":{"type":"postLikes","relationships":{"user":{"data":{"id":"42","type":"users"}}}}}`,
		requests[0].body)
}

func TestRequestCommand_GetNeedsNoBody(t *testing.T) {
	server := newAPIServer(t, http.StatusOK, `{"data":[]}`)
	useViper(t, server.URL)

	_, err := execute(t, NewRequestCommand(), "", "trending/anime")
	require.NoError(t, err)

	requests := server.captured()
	require.Len(t, requests, 1)
	assert.Equal(t, "/trending/anime", requests[0].uri)
	assert.Empty(t, requests[0].body)
}

func TestVersionCommand(t *testing.T) {
	useViper(t, "")

	out, err := execute(t, NewVersionCommand("1.2.3", "abc123", "2026-01-01"), "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"1.2.3","commit":"abc123","built":"2026-01-01"}`, out)

	viper.Set(KeyOutput, constants.FormatTable)

	out, err = execute(t, NewVersionCommand("1.2.3", "abc123", "2026-01-01"), "")
	require.NoError(t, err)
	assert.Contains(t, out, "abc123")
}

func TestOutputFormat(t *testing.T) {
	useViper(t, "")

	viper.Set(KeyOutput, "")

	format, err := outputFormat(&bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, constants.FormatJSON, format)

	viper.Set(KeyOutput, "YAML")

	format, err = outputFormat(&bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, constants.FormatYAML, format)

	viper.Set(KeyOutput, "xml")

	_, err = outputFormat(&bytes.Buffer{})
	require.ErrorIs(t, err, constants.ErrUnknownOutput)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClientConfig(t *testing.T) {
	useViper(t, "https://example.test/api")
	viper.Set(KeyResourceCase, "snake")
	viper.Set(KeyPluralize, false)
	viper.Set(KeyHeader, []string{"X-Trace: 1"})

	config, err := clientConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://example.test/api", config.BaseURL)
	assert.Equal(t, "snake", string(config.ResourceCase))
	assert.True(t, config.DisablePluralize)
	assert.False(t, config.DisableCamelCaseTypes)
	assert.Equal(t, map[string]string{"X-Trace": "1"}, config.Headers)
	assert.Nil(t, config.Logger)

	viper.Set(KeyVerbose, true)

	config, err = clientConfig()
	require.NoError(t, err)
	assert.True(t, config.Debug)
	assert.NotNil(t, config.Logger)

	viper.Set(KeyResourceCase, "title")

	_, err = clientConfig()
	require.Error(t, err)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestSetConfigValue(t *testing.T) {
	useViper(t, "")

	path := filepath.Join(t.TempDir(), "nested", "config.yml")

	require.NoError(t, setConfigValue(path, KeyBaseURL, "https://staging.kitsu.test/api/edge"))
	require.NoError(t, setConfigValue(path, KeyPluralize, "false"))
	require.NoError(t, setConfigValue(path, KeyTimeout, "45s"))
	require.NoError(t, setConfigValue(path, KeyResourceCase, "SNAKE"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "base-url: https://staging.kitsu.test/api/edge")
	assert.Contains(t, content, "pluralize: false")
	assert.Contains(t, content, "timeout: 45s")
	assert.Contains(t, content, "resource-case: snake")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(constants.ConfigFilePerm), info.Mode().Perm())

	assert.False(t, viper.GetBool(KeyPluralize))

	err = setConfigValue(path, "colour", "blue")
	require.ErrorIs(t, err, constants.ErrUnknownConfigKey)

	err = setConfigValue(path, KeyPluralize, "sometimes")
	require.ErrorIs(t, err, constants.ErrInvalidBoolValue)

	err = setConfigValue(path, KeyOutput, "xml")
	require.ErrorIs(t, err, constants.ErrUnknownOutput)

	err = setConfigValue(path, KeyTimeout, "soon")
	require.Error(t, err)
}

func TestConfigCommands(t *testing.T) {
	useViper(t, "https://kitsu.test/api/edge")

	path := filepath.Join(t.TempDir(), "config.yml")
	viper.SetConfigFile(path)
	viper.Set(KeyToken, "abcdefgh")

	out, err := execute(t, NewConfigCommand(), "", "set", KeyLogFormat, "json")
	require.NoError(t, err)
	assert.Equal(t, "Set log-format in "+path+"\n", out)

	out, err = execute(t, NewConfigCommand(), "", "show")
	require.NoError(t, err)

	var shown map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, "abcd****", shown[KeyToken])
	assert.Equal(t, "json", shown[KeyLogFormat])
	assert.Equal(t, "https://kitsu.test/api/edge", shown[KeyBaseURL])
}

func TestMaskToken(t *testing.T) {
	t.Parallel()

	assert.Empty(t, maskToken(""))
	assert.Equal(t, "***", maskToken("abc"))
	assert.Equal(t, "abcd**", maskToken("abcdef"))
}

func TestSlogLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := NewSlogLogger(slog.New(NewHandler(&buf, "json", true)))
	logger.Debug("API Request", map[string]interface{}{"url": "https://kitsu.test", "method": "GET"})
	logger.Info("ready", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "DEBUG", first["level"])
	assert.Equal(t, "API Request", first["msg"])
	assert.Equal(t, "GET", first["method"])
	assert.Equal(t, "https://kitsu.test", first["url"])
}

func TestNewHandler_Quiet(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := NewSlogLogger(slog.New(NewHandler(&buf, "text", false)))
	logger.Debug("hidden", nil)
	logger.Info("hidden", nil)
	logger.Warn("shown", map[string]interface{}{"status": 429})
	logger.Error("shown too", nil)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "level=WARN msg=shown status=429")
	assert.Contains(t, out, "level=ERROR")
}

func TestFormatError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Error: boom", FormatError(errBoom))

	err := &kitsu.Error{
		Op:         kitsu.OpPost,
		Kind:       kitsu.KindResponse,
		StatusCode: http.StatusUnprocessableEntity,
		Errors: []jsonapi.ErrorObject{
			{Title: "Invalid attribute", Detail: "status - is not included in the list"},
			{Detail: "progress - must be positive"},
		},
	}

	formatted := FormatError(err)
	assert.True(t, strings.HasPrefix(formatted, "Error: "+err.Error()))
	assert.Contains(t, formatted, "\n  - Invalid attribute: status - is not included in the list")
	assert.Contains(t, formatted, "\n  - progress - must be positive")
}
