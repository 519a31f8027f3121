// Package naming provides the string transforms used to map JSON:API model
// names onto URL segments and resource types.
//
// Every transform is a plain Transform value so that callers can swap any of
// them independently: a server that wants snake_case URLs but singular types
// only needs a different pair of functions, not a different client.
package naming

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gertd/go-pluralize"
	"github.com/iancoleman/strcase"
)

// Transform converts one naming convention into another.
type Transform func(string) string

// Case selects the casing applied to URL segments.
type Case string

const (
	// CaseKebab converts libraryEntries to library-entries.
	CaseKebab Case = "kebab"
	// CaseSnake converts libraryEntries to library_entries.
	CaseSnake Case = "snake"
	// CaseNone leaves libraryEntries untouched.
	CaseNone Case = "none"
)

// Static errors for err113 compliance.
var (
	ErrUnknownCase = errors.New("unknown resource case")
)

var (
	pluralizer     *pluralize.Client
	pluralizerOnce sync.Once
)

func client() *pluralize.Client {
	pluralizerOnce.Do(func() {
		pluralizer = pluralize.NewClient()
	})

	return pluralizer
}

// Identity returns s unchanged.
func Identity(s string) string {
	return s
}

// Camel converts kebab-case or snake_case to camelCase.
func Camel(s string) string {
	return strcase.ToLowerCamel(s)
}

// Kebab converts camelCase to kebab-case. Digits form their own word, so
// anime2Entries becomes anime-2-entries.
func Kebab(s string) string {
	return strcase.ToKebab(s)
}

// Snake converts camelCase to snake_case.
func Snake(s string) string {
	return strcase.ToSnake(s)
}

// Plural returns the English plural of s. Words that are already plural are
// returned as they are.
func Plural(s string) string {
	if s == "" {
		return s
	}

	return client().Plural(s)
}

// Singular returns the English singular of s.
func Singular(s string) string {
	if s == "" {
		return s
	}

	return client().Singular(s)
}

// Or returns t, or fallback when t is nil.
func Or(t Transform, fallback Transform) Transform {
	if t != nil {
		return t
	}

	return fallback
}

// ParseCase parses a case name. The empty string selects CaseKebab.
func ParseCase(name string) (Case, error) {
	switch Case(strings.ToLower(strings.TrimSpace(name))) {
	case "", CaseKebab:
		return CaseKebab, nil
	case CaseSnake:
		return CaseSnake, nil
	case CaseNone:
		return CaseNone, nil
	default:
		return "", fmt.Errorf("%w: %q (expected kebab, snake or none)", ErrUnknownCase, name)
	}
}

// Transform returns the transform implementing c.
func (c Case) Transform() (Transform, error) {
	parsed, err := ParseCase(string(c))
	if err != nil {
		return nil, err
	}

	switch parsed {
	case CaseSnake:
		return Snake, nil
	case CaseNone:
		return Identity, nil
	default:
		return Kebab, nil
	}
}
