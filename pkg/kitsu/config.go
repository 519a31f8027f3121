package kitsu

import (
	"time"

	"github.com/mklemme/kitsu/pkg/naming"
)

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a Client. The zero
// value talks to the public Kitsu API with kebab-case URLs, camelCase
// pluralised types and no authentication.
//
// # Naming
//
// Three transforms are applied to model names:
//   - ResourceCase converts the last path segment for URLs.
//   - TypeCase converts the resource type written into request bodies.
//   - Pluralize pluralises both after casing.
//
// Each can be disabled with a flag or replaced outright with a *Func field;
// a *Func field always wins.
//
// # Headers
//
// Headers are sent with every request. Accept and Content-Type are always
// set to application/vnd.api+json on top of them; per-call headers passed
// to a method are applied last and may override anything.
type Config struct {
	// BaseURL: API root without a trailing slash. Defaults to
	// https://kitsu.io/api/edge.
	BaseURL string
	// Headers: default headers for every request.
	Headers map[string]string
	// AccessToken: if set, sent as a Bearer Authorization header.
	AccessToken string

	// ResourceCase: URL segment casing, kebab (default), snake or none.
	ResourceCase naming.Case
	// DisableCamelCaseTypes: write resource types as given instead of camelCase.
	DisableCamelCaseTypes bool
	// DisablePluralize: leave URL segments and resource types singular.
	DisablePluralize bool
	// TypeCaseFunc overrides the type transform.
	TypeCaseFunc naming.Transform
	// ResourceCaseFunc overrides the URL segment transform.
	ResourceCaseFunc naming.Transform
	// PluralizeFunc overrides the pluraliser.
	PluralizeFunc naming.Transform

	// Transport: replaces the default HTTP transport. When set, HTTPTimeout,
	// DisableCompression and UserAgent are ignored.
	Transport Transport
	// HTTPTimeout: overall timeout of one request. Defaults to 30s.
	HTTPTimeout time.Duration
	// DisableCompression: do not negotiate gzip responses.
	DisableCompression bool
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
	// Interceptors: extra request and response hooks, run after the
	// authentication interceptor and before the logging interceptors.
	Interceptors *InterceptorChain

	// Debug: enables request/response logging when a Logger is provided.
	// The default transport logs "HTTP Request"/"HTTP Response"; a custom
	// Transport is logged by the interceptors as "API Request"/"API Response".
	Debug bool
	// Logger: optional structured logger.
	Logger Logger
}
