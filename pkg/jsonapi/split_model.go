package jsonapi

import (
	"strings"

	"github.com/mklemme/kitsu/pkg/naming"
)

// SplitOptions configures SplitModel. Nil transforms leave the segment as is.
type SplitOptions struct {
	// ResourceCase converts the segment for the URL, e.g. naming.Kebab.
	ResourceCase naming.Transform
	// Pluralize pluralises the cased segment, e.g. naming.Plural.
	Pluralize naming.Transform
}

// SplitModel returns the resource type and the resource path for a model
// identifier of the form collection, collection/id or
// collection/id/relationship.
//
// The resource type is the last segment exactly as written. The path is the
// identifier with only its last segment replaced by
// Pluralize(ResourceCase(segment)); case conversion runs first because
// pluralisation rules are defined on the cased form.
//
// An identifier ending in "/" has an empty last segment and produces a
// degenerate path; rejecting it is left to the caller.
func SplitModel(model string, opts SplitOptions) (string, string) {
	resourceCase := naming.Or(opts.ResourceCase, naming.Identity)
	pluralize := naming.Or(opts.Pluralize, naming.Identity)

	segments := strings.Split(model, "/")
	last := len(segments) - 1
	resourceType := segments[last]
	segments[last] = pluralize(resourceCase(resourceType))

	return resourceType, strings.Join(segments, "/")
}
