package kitsu

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/mklemme/kitsu/internal/constants"
	"github.com/mklemme/kitsu/pkg/jsonapi"
	"github.com/mklemme/kitsu/pkg/naming"
)

// Operation names recorded in Error.Op.
const (
	OpGet     = "get"
	OpPatch   = "patch"
	OpPost    = "post"
	OpDelete  = "delete"
	OpSelf    = "self"
	OpRequest = "request"
)

// Headers are extra headers for a single call.
type Headers map[string]string

// RequestConfig describes a raw request sent with Client.Request.
type RequestConfig struct {
	// URL is the path relative to the base URL, or an absolute URL.
	URL string
	// Type is the resource type the body is serialised under.
	Type string
	// Body is ignored for GET and DELETE.
	Body any
	// Method defaults to GET and is case-insensitive.
	Method string
	// Params are appended as a query string.
	Params jsonapi.Params
}

// Client orchestrates JSON:API requests. It is immutable after New and safe
// for concurrent use.
type Client struct {
	baseURL      string
	headers      http.Header
	typeCase     naming.Transform
	resourceCase naming.Transform
	pluralize    naming.Transform
	transport    Transport
	interceptors *InterceptorChain
}

// New creates a Client. A nil config selects every default.
func New(config *Config) (*Client, error) {
	if config == nil {
		config = &Config{}
	}

	baseURL := strings.TrimSuffix(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = constants.DefaultBaseURL
	}

	resourceCase := config.ResourceCaseFunc
	if resourceCase == nil {
		transform, err := config.ResourceCase.Transform()
		if err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}

		resourceCase = transform
	}

	typeCase := config.TypeCaseFunc
	if typeCase == nil {
		typeCase = naming.Camel
		if config.DisableCamelCaseTypes {
			typeCase = naming.Identity
		}
	}

	pluralize := config.PluralizeFunc
	if pluralize == nil {
		pluralize = naming.Plural
		if config.DisablePluralize {
			pluralize = naming.Identity
		}
	}

	transport := config.Transport
	if transport == nil {
		transport = NewHTTPTransport(baseURL, config)
	}

	return &Client{
		baseURL:      baseURL,
		headers:      defaultHeaders(config.Headers),
		typeCase:     typeCase,
		resourceCase: resourceCase,
		pluralize:    pluralize,
		transport:    transport,
		interceptors: buildInterceptors(config),
	}, nil
}

func defaultHeaders(configured map[string]string) http.Header {
	headers := make(http.Header, len(configured)+2)
	for key, value := range configured {
		headers.Set(key, value)
	}

	headers.Set("Accept", jsonapi.MediaType)
	headers.Set("Content-Type", jsonapi.MediaType)

	return headers
}

func buildInterceptors(config *Config) *InterceptorChain {
	before := NewInterceptorChain()
	if config.AccessToken != "" {
		before.AddRequestInterceptor(AuthenticationInterceptor(StaticToken(config.AccessToken)))
	}

	// The default HTTP transport traces round trips itself; only a custom
	// transport gets the logging interceptors, so each request is logged once.
	after := NewInterceptorChain()
	if config.Transport != nil && config.Debug && config.Logger != nil {
		after.AddRequestInterceptor(LoggingInterceptor(config.Logger))
		after.AddResponseInterceptor(LoggingResponseInterceptor(config.Logger))
	}

	return config.Interceptors.extend(before, after)
}

// BaseURL returns the API root requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Headers returns a copy of the default headers.
func (c *Client) Headers() http.Header {
	return c.headers.Clone()
}

// Get fetches a collection, a resource or a relationship of a resource.
// model is "collection", "collection/id" or "collection/id/relationship".
// Only the collection segment is cased and pluralised; the id is sent
// verbatim and the relationship is cased but never pluralised.
func (c *Client) Get(ctx context.Context, model string, params jsonapi.Params, headers Headers) (*jsonapi.Response, error) {
	if model == "" {
		return nil, ErrModelRequired
	}

	resp, req, err := c.send(ctx, OpGet, http.MethodGet, c.getPath(model)+jsonapi.Query(params), nil, headers)
	if err != nil {
		return nil, err
	}

	return c.deserialise(OpGet, req, resp)
}

// Fetch is an alias for Get.
func (c *Client) Fetch(ctx context.Context, model string, params jsonapi.Params, headers Headers) (*jsonapi.Response, error) {
	return c.Get(ctx, model, params, headers)
}

// Patch updates the resource identified by body's id. A slice body is sent
// as a bulk update to the collection; every element then needs an id.
func (c *Client) Patch(ctx context.Context, model string, body any, headers Headers) (*jsonapi.Response, error) {
	return c.write(ctx, OpPatch, http.MethodPatch, model, body, headers)
}

// Update is an alias for Patch.
func (c *Client) Update(ctx context.Context, model string, body any, headers Headers) (*jsonapi.Response, error) {
	return c.Patch(ctx, model, body, headers)
}

// Post creates a resource, or several when body is a slice.
func (c *Client) Post(ctx context.Context, model string, body any, headers Headers) (*jsonapi.Response, error) {
	return c.write(ctx, OpPost, http.MethodPost, model, body, headers)
}

// Create is an alias for Post.
func (c *Client) Create(ctx context.Context, model string, body any, headers Headers) (*jsonapi.Response, error) {
	return c.Post(ctx, model, body, headers)
}

func (c *Client) write(ctx context.Context, op, method, model string, body any, headers Headers) (*jsonapi.Response, error) {
	if model == "" {
		return nil, ErrModelRequired
	}

	resourceType, path := jsonapi.SplitModel(model, c.splitOptions())

	doc, err := jsonapi.Serialise(resourceType, body, method, c.serialiseOptions())
	if err != nil {
		return nil, c.fail(op, nil, nil, err)
	}

	if resource, ok := doc.Data.(*jsonapi.Resource); ok && method == http.MethodPatch {
		path += "/" + resource.ID
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, c.fail(op, nil, nil, err)
	}

	resp, req, err := c.send(ctx, op, method, path, payload, headers)
	if err != nil {
		return nil, err
	}

	return c.deserialise(op, req, resp)
}

// Delete removes one resource, or several when id is a slice or array. The
// response body is returned undecoded.
func (c *Client) Delete(ctx context.Context, model string, id any, headers Headers) (json.RawMessage, error) {
	if model == "" {
		return nil, ErrModelRequired
	}

	resourceType, path := jsonapi.SplitModel(model, c.splitOptions())

	var body any

	if ids, bulk := sequence(id); bulk {
		objects := make([]any, 0, len(ids))
		for _, each := range ids {
			objects = append(objects, map[string]any{"id": each})
		}

		body = objects
	} else {
		body = map[string]any{"id": id}
		path += "/" + jsonapi.FormatID(id)
	}

	doc, err := jsonapi.Serialise(resourceType, body, http.MethodDelete, c.serialiseOptions())
	if err != nil {
		return nil, c.fail(OpDelete, nil, nil, err)
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, c.fail(OpDelete, nil, nil, err)
	}

	resp, _, err := c.send(ctx, OpDelete, http.MethodDelete, path, payload, headers)
	if err != nil {
		return nil, err
	}

	return json.RawMessage(resp.Body), nil
}

// Remove is an alias for Delete.
func (c *Client) Remove(ctx context.Context, model string, id any, headers Headers) (json.RawMessage, error) {
	return c.Delete(ctx, model, id, headers)
}

// Self returns the user the request is authenticated as, by fetching users
// with filter[self]=true and taking the first result. A server that ignores
// filter[self] yields an arbitrary user. Filters in params are merged with
// the self filter.
func (c *Client) Self(ctx context.Context, params jsonapi.Params, headers Headers) (jsonapi.Entity, error) {
	resp, err := c.Get(ctx, "users", selfParams(params), headers)
	if err != nil {
		return nil, err
	}

	users := resp.Many()
	if len(users) == 0 {
		return nil, ErrNoResults
	}

	return users[0], nil
}

func selfParams(params jsonapi.Params) jsonapi.Params {
	merged := make(jsonapi.Params, len(params)+1)
	for key, value := range params {
		merged[key] = value
	}

	filter := map[string]any{}

	existing := reflect.ValueOf(params["filter"])
	if existing.Kind() == reflect.Map && existing.Type().Key().Kind() == reflect.String {
		iter := existing.MapRange()
		for iter.Next() {
			filter[iter.Key().String()] = iter.Value().Interface()
		}
	}

	filter["self"] = true
	merged["filter"] = filter

	return merged
}

// Request sends a request to an explicit URL without resolving a model. The
// body is serialised under config.Type for every method except GET and
// DELETE. The response is always deserialised.
func (c *Client) Request(ctx context.Context, config RequestConfig, headers Headers) (*jsonapi.Response, error) {
	method := strings.ToUpper(config.Method)
	if method == "" {
		method = http.MethodGet
	}

	var payload []byte

	if method != http.MethodGet && method != http.MethodDelete {
		doc, err := jsonapi.Serialise(config.Type, config.Body, method, c.serialiseOptions())
		if err != nil {
			return nil, c.fail(OpRequest, nil, nil, err)
		}

		payload, err = json.Marshal(doc)
		if err != nil {
			return nil, c.fail(OpRequest, nil, nil, err)
		}
	}

	resp, req, err := c.send(ctx, OpRequest, method, config.URL+jsonapi.Query(config.Params), payload, headers)
	if err != nil {
		return nil, err
	}

	return c.deserialise(OpRequest, req, resp)
}

// send runs the interceptors and the transport. Any failure is returned
// normalized; a nil error means a 2xx response.
func (c *Client) send(ctx context.Context, op, method, path string, body []byte, headers Headers) (*Response, *Request, error) {
	req := &Request{
		Method: method,
		URL:    c.resolve(path),
		Header: mergeHeaders(c.headers, headers),
		Body:   body,
	}

	err := c.interceptors.ExecuteRequestInterceptors(ctx, req)
	if err != nil {
		return nil, req, c.fail(op, req, nil, err)
	}

	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		return nil, req, c.fail(op, req, nil, err)
	}

	err = c.interceptors.ExecuteResponseInterceptors(ctx, req, resp)
	if err != nil {
		return nil, req, c.fail(op, req, nil, err)
	}

	if !successful(resp.StatusCode) {
		return nil, req, c.fail(op, req, resp, nil)
	}

	return resp, req, nil
}

func (c *Client) deserialise(op string, req *Request, resp *Response) (*jsonapi.Response, error) {
	out, err := jsonapi.Deserialise(resp.Body)
	if err != nil {
		return nil, c.fail(op, req, resp, err)
	}

	return out, nil
}

// fail is the single normalization point of every method.
func (c *Client) fail(op string, req *Request, resp *Response, err error) error {
	if callerInput(err) {
		return err
	}

	if normalized := Normalize(op, req, resp, err); normalized != nil {
		return normalized
	}

	return nil
}

// mergeHeaders returns defaults overlaid with perCall. Neither argument is
// modified.
func mergeHeaders(defaults http.Header, perCall Headers) http.Header {
	merged := defaults.Clone()
	if merged == nil {
		merged = make(http.Header, len(perCall))
	}

	for key, value := range perCall {
		merged.Set(key, value)
	}

	return merged
}

func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}

	return c.baseURL + "/" + strings.TrimPrefix(path, "/")
}

func (c *Client) getPath(model string) string {
	segments := strings.Split(model, "/")

	path := c.pluralize(c.resourceCase(segments[0]))

	if len(segments) > 1 && segments[1] != "" {
		path += "/" + segments[1]
	}

	if len(segments) > 2 && segments[2] != "" {
		path += "/" + c.resourceCase(segments[2])
	}

	return path
}

func (c *Client) splitOptions() jsonapi.SplitOptions {
	return jsonapi.SplitOptions{ResourceCase: c.resourceCase, Pluralize: c.pluralize}
}

func (c *Client) serialiseOptions() jsonapi.SerialiseOptions {
	return jsonapi.SerialiseOptions{TypeCase: c.typeCase, Pluralize: c.pluralize}
}

// sequence reports whether id is a slice or array and returns its elements.
// A byte slice is treated as a single id.
func sequence(id any) ([]any, bool) {
	if _, ok := id.([]byte); ok {
		return nil, false
	}

	value := reflect.ValueOf(id)
	if value.Kind() != reflect.Slice && value.Kind() != reflect.Array {
		return nil, false
	}

	out := make([]any, value.Len())
	for i := range out {
		out[i] = value.Index(i).Interface()
	}

	return out, true
}
