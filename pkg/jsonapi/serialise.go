package jsonapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mklemme/kitsu/pkg/naming"
)

// Static errors for err113 compliance.
var (
	ErrObjectBodyRequired = errors.New("requires a JSON object body")
	ErrIDRequired         = errors.New("requires an ID")
)

// SerialiseOptions configures how resource types are written.
type SerialiseOptions struct {
	// TypeCase converts the model name before pluralisation, e.g. naming.Camel.
	TypeCase naming.Transform
	// Pluralize pluralises the type, e.g. naming.Plural.
	Pluralize naming.Transform
}

func (o SerialiseOptions) typeFor(name string) string {
	return naming.Or(o.Pluralize, naming.Identity)(naming.Or(o.TypeCase, naming.Identity)(name))
}

// Serialise builds the request document for body under resourceType.
//
// body may be a map, an Entity, a struct (encoded through encoding/json
// first) or a slice of those; a slice produces a bulk document. Every method
// other than POST requires each resource to carry an id.
//
// Values that are objects with an "id", objects wrapping a "data" member, or
// non-empty slices of objects with an "id" become relationships. The "type"
// key of a body is ignored: the document type always comes from
// resourceType.
func Serialise(resourceType string, body any, method string, opts SerialiseOptions) (*Document, error) {
	method = strings.ToUpper(method)
	typ := opts.typeFor(resourceType)

	value, err := plain(body)
	if err != nil {
		return nil, err
	}

	switch node := value.(type) {
	case map[string]any:
		resource, err := serialiseObject(node, typ, method, opts)
		if err != nil {
			return nil, err
		}

		return &Document{Data: resource}, nil
	case []any:
		resources := make([]*Resource, 0, len(node))

		for i, element := range node {
			object, ok := asObject(element)
			if !ok {
				return nil, fmt.Errorf("%s %w (element %d of %s)", method, ErrObjectBodyRequired, i, typ)
			}

			resource, err := serialiseObject(object, typ, method, opts)
			if err != nil {
				return nil, err
			}

			resources = append(resources, resource)
		}

		return &Document{Data: resources}, nil
	default:
		return nil, fmt.Errorf("%s %w", method, ErrObjectBodyRequired)
	}
}

func serialiseObject(node map[string]any, typ, method string, opts SerialiseOptions) (*Resource, error) {
	if len(node) == 0 {
		return nil, fmt.Errorf("%s %w", method, ErrObjectBodyRequired)
	}

	resource := &Resource{Type: typ}

	if id, ok := idOf(node); ok {
		resource.ID = id
	} else if method != "POST" {
		return nil, fmt.Errorf("%s %w for the %s type", method, ErrIDRequired, typ)
	}

	for key, value := range node {
		if key == "id" || key == "type" {
			continue
		}

		if relationship, ok := relationshipOf(key, value, opts); ok {
			if resource.Relationships == nil {
				resource.Relationships = make(map[string]*Relationship)
			}

			resource.Relationships[key] = relationship

			continue
		}

		if resource.Attributes == nil {
			resource.Attributes = make(map[string]any)
		}

		resource.Attributes[key] = value
	}

	return resource, nil
}

func relationshipOf(key string, value any, opts SerialiseOptions) (*Relationship, bool) {
	if object, ok := asObject(value); ok {
		value = object
	}

	switch v := value.(type) {
	case map[string]any:
		if data, ok := v["data"]; ok {
			return explicitRelationship(key, data, opts)
		}

		identifier, ok := identifierOf(key, v, opts)
		if !ok {
			return nil, false
		}

		return &Relationship{Data: identifier}, true
	case []any:
		identifiers, ok := identifiersOf(key, v, opts)
		if !ok {
			return nil, false
		}

		return &Relationship{Data: identifiers}, true
	default:
		return nil, false
	}
}

func explicitRelationship(key string, data any, opts SerialiseOptions) (*Relationship, bool) {
	if object, ok := asObject(data); ok {
		data = object
	}

	switch d := data.(type) {
	case nil:
		return &Relationship{Data: nil}, true
	case map[string]any:
		identifier, ok := identifierOf(key, d, opts)
		if !ok {
			return nil, false
		}

		return &Relationship{Data: identifier}, true
	case []any:
		if len(d) == 0 {
			return &Relationship{Data: []Identifier{}}, true
		}

		identifiers, ok := identifiersOf(key, d, opts)
		if !ok {
			return nil, false
		}

		return &Relationship{Data: identifiers}, true
	default:
		return nil, false
	}
}

func identifiersOf(key string, values []any, opts SerialiseOptions) ([]Identifier, bool) {
	if len(values) == 0 {
		return nil, false
	}

	identifiers := make([]Identifier, 0, len(values))

	for _, element := range values {
		object, ok := asObject(element)
		if !ok {
			return nil, false
		}

		identifier, ok := identifierOf(key, object, opts)
		if !ok {
			return nil, false
		}

		identifiers = append(identifiers, *identifier)
	}

	return identifiers, true
}

func identifierOf(key string, node map[string]any, opts SerialiseOptions) (*Identifier, bool) {
	id, ok := idOf(node)
	if !ok {
		return nil, false
	}

	typ, _ := node["type"].(string)
	if typ == "" {
		typ = opts.typeFor(key)
	}

	return &Identifier{ID: id, Type: typ}, true
}

func idOf(node map[string]any) (string, bool) {
	s := FormatID(node["id"])
	if s == "" {
		return "", false
	}

	return s, true
}

func asObject(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case Entity:
		return map[string]any(v), true
	default:
		return nil, false
	}
}

// plain reduces body to maps, slices and scalars.
func plain(body any) (any, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return b, nil
	case Entity:
		return map[string]any(b), nil
	case []any:
		return b, nil
	case []map[string]any:
		out := make([]any, len(b))
		for i := range b {
			out[i] = b[i]
		}

		return out, nil
	case []Entity:
		out := make([]any, len(b))
		for i := range b {
			out[i] = map[string]any(b[i])
		}

		return out, nil
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding body: %w", err)
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var value any

	err = decoder.Decode(&value)
	if err != nil {
		return nil, fmt.Errorf("decoding body: %w", err)
	}

	return value, nil
}
