// Package jsonapi converts between plain Go values and JSON:API documents.
//
// # Model identifiers
//
// SplitModel turns a terse model identifier such as "posts/1/comments" into
// the resource type written to request bodies and the URL path the request
// is sent to. Only the last segment is transformed:
//
//	jsonapi.SplitModel("libraryEntries", jsonapi.SplitOptions{ResourceCase: naming.Kebab})
//	// "libraryEntries", "library-entries"
//
// # Documents
//
// Serialise builds the request document for POST, PATCH and DELETE bodies.
// Nested objects that carry an "id" become relationships, everything else is
// an attribute. A slice body produces a bulk document.
//
// Deserialise flattens a response document: every resource becomes an Entity
// holding id, type, its attributes and its relationships, with included
// resources linked in place of their identifiers.
//
// # Queries
//
// Query encodes nested parameters using the bracket notation JSON:API servers
// expect for filter, page and fields:
//
//	jsonapi.Query(jsonapi.Params{"filter": map[string]any{"self": true}})
//	// "?filter%5Bself%5D=true"
package jsonapi
