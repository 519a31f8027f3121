//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/mklemme/kitsu/internal/constants"
	"github.com/mklemme/kitsu/pkg/kitsu"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	BaseURL    string
	Token      string
	KitsuPath  string
	Verbose    bool
	AllowWrite bool
}

// LoadTestConfig loads configuration from environment variables.
func LoadTestConfig() *TestConfig {
	baseURL := os.Getenv("KITSU_INTEGRATION_BASE_URL")
	if baseURL == "" {
		baseURL = constants.DefaultBaseURL
	}

	return &TestConfig{
		BaseURL:    baseURL,
		Token:      os.Getenv("KITSU_INTEGRATION_TOKEN"),
		KitsuPath:  getKitsuPath(),
		Verbose:    os.Getenv("KITSU_INTEGRATION_VERBOSE") == "true",
		AllowWrite: os.Getenv("KITSU_INTEGRATION_WRITE") == "true",
	}
}

// getKitsuPath determines the path to the kitsu binary.
func getKitsuPath() string {
	if path := os.Getenv("KITSU_BINARY_PATH"); path != "" {
		return path
	}

	for _, candidate := range []string{"../../kitsu", "./kitsu", "../kitsu"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "kitsu"
}

// SkipIfOffline skips the test unless KITSU_INTEGRATION is set.
func (config *TestConfig) SkipIfOffline(t *testing.T) {
	t.Helper()

	if os.Getenv("KITSU_INTEGRATION") == "" {
		t.Skip("KITSU_INTEGRATION not set, skipping integration test")
	}
}

// SkipIfNoToken skips tests that need an authenticated user.
func (config *TestConfig) SkipIfNoToken(t *testing.T) {
	t.Helper()
	config.SkipIfOffline(t)

	if config.Token == "" {
		t.Skip("KITSU_INTEGRATION_TOKEN not set, skipping authenticated test")
	}
}

// SkipIfNoBinary skips CLI tests when the kitsu binary cannot be found.
func (config *TestConfig) SkipIfNoBinary(t *testing.T) {
	t.Helper()
	config.SkipIfOffline(t)

	if _, err := exec.LookPath(config.KitsuPath); err != nil {
		t.Skipf("kitsu binary not found at %s, skipping CLI test", config.KitsuPath)
	}
}

// NewClient returns a library client for the configured API.
func (config *TestConfig) NewClient(t *testing.T) *kitsu.Client {
	t.Helper()

	client, err := kitsu.New(&kitsu.Config{
		BaseURL:     config.BaseURL,
		AccessToken: config.Token,
		HTTPTimeout: constants.DefaultHTTPTimeout,
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	return client
}

// CommandRunner runs the kitsu binary against the configured API.
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
}

// NewCommandRunner creates a new command runner.
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	return &CommandRunner{config: config, t: t}
}

// Run executes a kitsu command with JSON output and returns its output.
func (runner *CommandRunner) Run(args ...string) (string, string, error) {
	return runner.RunWithInput("", args...)
}

// RunWithInput executes a kitsu command with stdin input.
func (runner *CommandRunner) RunWithInput(input string, args ...string) (string, string, error) {
	full := append([]string{"--base-url", runner.config.BaseURL, "--output", constants.FormatJSON}, args...)
	if runner.config.Token != "" {
		full = append(full, "--token", runner.config.Token)
	}

	cmd := exec.Command(runner.config.KitsuPath, full...) //nolint:gosec // test binary path
	cmd.Env = append(os.Environ(), "HOME="+runner.t.TempDir())

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	cmd.Stdin = strings.NewReader(input)

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.KitsuPath, strings.Join(args, " "))
	}

	err := cmd.Run()
	stdout, stderr := stdoutBuf.String(), stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// DecodeJSON fails the test unless output is a JSON document.
func DecodeJSON(t *testing.T, output string) any {
	t.Helper()

	var decoded any

	err := json.Unmarshal([]byte(strings.TrimSpace(output)), &decoded)
	if err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, output)
	}

	return decoded
}
