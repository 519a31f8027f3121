package jsonapi

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MediaType is the JSON:API content type.
const MediaType = "application/vnd.api+json"

// Params holds nested query parameters (page, filter, fields, sort, include).
type Params map[string]any

// Entity is a flattened resource: id, type, attributes and relationships all
// live at the top level.
type Entity map[string]any

// ID returns the entity id, or "" when missing.
func (e Entity) ID() string {
	if e == nil {
		return ""
	}

	return FormatID(e["id"])
}

// FormatID renders an id for a URL segment or a document. Floats are written
// without an exponent, so 12345678 decoded from JSON stays "12345678". nil
// yields "".
func FormatID(id any) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}

// Type returns the entity type, or "" when missing.
func (e Entity) Type() string {
	typ, _ := e["type"].(string)

	return typ
}

// Identifier is a resource identifier object.
type Identifier struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Relationship is a relationship object in a request document. Data holds an
// *Identifier, a []Identifier or nil for an explicit empty to-one.
type Relationship struct {
	Data  any            `json:"data"`
	Links map[string]any `json:"links,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
}

// Resource is a resource object in a request document.
type Resource struct {
	ID            string                   `json:"id,omitempty"`
	Type          string                   `json:"type"`
	Attributes    map[string]any           `json:"attributes,omitempty"`
	Relationships map[string]*Relationship `json:"relationships,omitempty"`
}

// Document is a request document. Data holds a *Resource or a []*Resource.
type Document struct {
	Data any            `json:"data"`
	Meta map[string]any `json:"meta,omitempty"`
}

// Bulk reports whether the document carries more than one resource.
func (d *Document) Bulk() bool {
	_, ok := d.Data.([]*Resource)

	return ok
}

// Response is a deserialised response document. Data holds an Entity, a
// []Entity, or nil.
type Response struct {
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
	Links   map[string]any `json:"links,omitempty"`
	JSONAPI map[string]any `json:"jsonapi,omitempty"`
}

// One returns the single entity held by the response. For a collection it
// returns the first element; it returns nil when there is no data.
func (r *Response) One() Entity {
	if r == nil {
		return nil
	}

	switch data := r.Data.(type) {
	case Entity:
		return data
	case []Entity:
		if len(data) > 0 {
			return data[0]
		}
	}

	return nil
}

// Many returns the entities held by the response. A single resource is
// returned as a one-element slice.
func (r *Response) Many() []Entity {
	if r == nil {
		return nil
	}

	switch data := r.Data.(type) {
	case Entity:
		return []Entity{data}
	case []Entity:
		return data
	}

	return nil
}

// ErrorSource locates the cause of an error object.
type ErrorSource struct {
	Pointer   string `json:"pointer,omitempty"   yaml:"pointer,omitempty"`
	Parameter string `json:"parameter,omitempty" yaml:"parameter,omitempty"`
	Header    string `json:"header,omitempty"    yaml:"header,omitempty"`
}

// ErrorObject is a member of a JSON:API "errors" array.
type ErrorObject struct {
	ID     string         `json:"id,omitempty"     yaml:"id,omitempty"`
	Status string         `json:"status,omitempty" yaml:"status,omitempty"`
	Code   string         `json:"code,omitempty"   yaml:"code,omitempty"`
	Title  string         `json:"title,omitempty"  yaml:"title,omitempty"`
	Detail string         `json:"detail,omitempty" yaml:"detail,omitempty"`
	Source *ErrorSource   `json:"source,omitempty" yaml:"source,omitempty"`
	Meta   map[string]any `json:"meta,omitempty"   yaml:"meta,omitempty"`
}

// Error implements the error interface.
func (e *ErrorObject) Error() string {
	switch {
	case e.Title != "" && e.Detail != "" && e.Title != e.Detail:
		return e.Title + ": " + e.Detail
	case e.Detail != "":
		return e.Detail
	case e.Title != "":
		return e.Title
	case e.Code != "":
		return "error code " + e.Code
	default:
		return "unknown error"
	}
}

// UnmarshalJSON accepts status and code as either strings or numbers; not
// every server follows the string-only rule.
func (e *ErrorObject) UnmarshalJSON(data []byte) error {
	type alias ErrorObject

	var raw struct {
		alias
		Status json.RawMessage `json:"status,omitempty"`
		Code   json.RawMessage `json:"code,omitempty"`
	}

	err := json.Unmarshal(data, &raw)
	if err != nil {
		return fmt.Errorf("decoding error object: %w", err)
	}

	*e = ErrorObject(raw.alias)
	e.Status = scalarString(raw.Status)
	e.Code = scalarString(raw.Code)

	return nil
}

func scalarString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}

	return strings.TrimSpace(string(raw))
}
