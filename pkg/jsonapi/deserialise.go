package jsonapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Static errors for err113 compliance.
var (
	ErrMalformedDocument = errors.New("malformed JSON:API document")
)

type wireRelationship struct {
	Data  json.RawMessage `json:"data"`
	Links map[string]any  `json:"links"`
	Meta  map[string]any  `json:"meta"`
}

type wireResource struct {
	ID            string                      `json:"id"`
	Type          string                      `json:"type"`
	Attributes    map[string]any              `json:"attributes"`
	Relationships map[string]wireRelationship `json:"relationships"`
	Links         map[string]any              `json:"links"`
	Meta          map[string]any              `json:"meta"`
}

type wireDocument struct {
	Data     json.RawMessage `json:"data"`
	Included []wireResource  `json:"included"`
	Meta     map[string]any  `json:"meta"`
	Links    map[string]any  `json:"links"`
	JSONAPI  map[string]any  `json:"jsonapi"`
	Errors   []ErrorObject   `json:"errors"`
}

// Deserialise flattens a JSON:API response document.
//
// Each resource becomes an Entity with "id", "type", every attribute, and one
// key per relationship holding {"data": ..., "links": ..., "meta": ...}.
// Relationship identifiers that match an included resource are replaced by
// that resource, itself flattened; a resource that is already being expanded
// further up the chain stays an identifier so the result never contains a
// cycle. An empty body yields an empty Response.
func Deserialise(data []byte) (*Response, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return &Response{}, nil
	}

	var doc wireDocument

	err := json.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}

	l := newLinker(doc.Included)

	response := &Response{
		Meta:    doc.Meta,
		Links:   doc.Links,
		JSONAPI: doc.JSONAPI,
	}

	primary := bytes.TrimSpace(doc.Data)

	switch {
	case len(primary) == 0 || bytes.Equal(primary, []byte("null")):
	case primary[0] == '[':
		var resources []wireResource

		err := json.Unmarshal(primary, &resources)
		if err != nil {
			return nil, fmt.Errorf("%w: data: %w", ErrMalformedDocument, err)
		}

		entities := make([]Entity, 0, len(resources))
		for _, resource := range resources {
			entities = append(entities, l.entity(resource, map[string]bool{}))
		}

		response.Data = entities
	case primary[0] == '{':
		var resource wireResource

		err := json.Unmarshal(primary, &resource)
		if err != nil {
			return nil, fmt.Errorf("%w: data: %w", ErrMalformedDocument, err)
		}

		response.Data = l.entity(resource, map[string]bool{})
	default:
		return nil, fmt.Errorf("%w: data must be an object, an array or null", ErrMalformedDocument)
	}

	return response, nil
}

// ParseErrors returns the "errors" array of a JSON:API error document.
func ParseErrors(data []byte) ([]ErrorObject, error) {
	var doc struct {
		Errors []ErrorObject `json:"errors"`
	}

	err := json.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}

	return doc.Errors, nil
}

type linker struct {
	included map[string]wireResource
}

func newLinker(included []wireResource) *linker {
	l := &linker{included: make(map[string]wireResource, len(included))}
	for _, resource := range included {
		l.included[key(resource.Type, resource.ID)] = resource
	}

	return l
}

func key(typ, id string) string {
	return typ + "\x00" + id
}

func (l *linker) entity(resource wireResource, expanding map[string]bool) Entity {
	self := key(resource.Type, resource.ID)
	expanding[self] = true

	defer delete(expanding, self)

	entity := Entity{
		"id":   resource.ID,
		"type": resource.Type,
	}

	for name, value := range resource.Attributes {
		entity[name] = value
	}

	for name, relationship := range resource.Relationships {
		entity[name] = l.relationship(relationship, expanding)
	}

	if _, taken := entity["links"]; !taken && len(resource.Links) > 0 {
		entity["links"] = resource.Links
	}

	if _, taken := entity["meta"]; !taken && len(resource.Meta) > 0 {
		entity["meta"] = resource.Meta
	}

	return entity
}

func (l *linker) relationship(relationship wireRelationship, expanding map[string]bool) map[string]any {
	out := make(map[string]any, 3)

	data := bytes.TrimSpace(relationship.Data)

	switch {
	case len(data) == 0:
	case bytes.Equal(data, []byte("null")):
		out["data"] = nil
	case data[0] == '[':
		var identifiers []Identifier
		if json.Unmarshal(data, &identifiers) == nil {
			linked := make([]any, 0, len(identifiers))
			for _, identifier := range identifiers {
				linked = append(linked, l.link(identifier, expanding))
			}

			out["data"] = linked
		}
	default:
		var identifier Identifier
		if json.Unmarshal(data, &identifier) == nil {
			out["data"] = l.link(identifier, expanding)
		}
	}

	if len(relationship.Links) > 0 {
		out["links"] = relationship.Links
	}

	if len(relationship.Meta) > 0 {
		out["meta"] = relationship.Meta
	}

	return out
}

func (l *linker) link(identifier Identifier, expanding map[string]bool) map[string]any {
	k := key(identifier.Type, identifier.ID)

	resource, ok := l.included[k]
	if !ok || expanding[k] {
		return map[string]any{"id": identifier.ID, "type": identifier.Type}
	}

	return map[string]any(l.entity(resource, expanding))
}
