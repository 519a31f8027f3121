package constants

import "time"

// API defaults.
const (
	// DefaultBaseURL is the Kitsu API endpoint used when none is configured.
	DefaultBaseURL = "https://kitsu.io/api/edge"

	// DefaultUserAgent is sent when the caller does not set one.
	DefaultUserAgent = "kitsu-go"
)

// HTTP timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second
)

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// Concurrency limits.
const (
	// DefaultConcurrencyLimit limits concurrent CLI fetches.
	DefaultConcurrencyLimit = 3
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)
