package jsonapi

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// uriComponent mirrors encodeURIComponent, which leaves !'()* and spaces as
// %20 where url.QueryEscape would not.
var uriComponent = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// Query serialises params into a query string with a leading "?", or returns
// "" when there is nothing to send.
//
// Nested maps use bracket keys (filter[self]=true, page[limit]=20), slices
// are joined with commas (include=author,comments) and nil values are
// skipped. Keys are emitted in sorted order so the result is stable.
func Query(params Params) string {
	pairs := appendQuery(nil, "", reflect.ValueOf(map[string]any(params)))
	if len(pairs) == 0 {
		return ""
	}

	return "?" + strings.Join(pairs, "&")
}

func appendQuery(pairs []string, key string, value reflect.Value) []string {
	for value.Kind() == reflect.Interface || value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return pairs
		}

		value = value.Elem()
	}

	switch value.Kind() {
	case reflect.Map:
		keys := make([]string, 0, value.Len())
		index := make(map[string]reflect.Value, value.Len())

		for _, k := range value.MapKeys() {
			name := fmt.Sprint(k.Interface())
			keys = append(keys, name)
			index[name] = value.MapIndex(k)
		}

		sort.Strings(keys)

		for _, name := range keys {
			nested := name
			if key != "" {
				nested = key + "[" + name + "]"
			}

			pairs = appendQuery(pairs, nested, index[name])
		}

		return pairs
	case reflect.Slice, reflect.Array:
		if key == "" {
			return pairs
		}

		parts := make([]string, 0, value.Len())
		for i := 0; i < value.Len(); i++ {
			if s, ok := scalar(value.Index(i)); ok {
				parts = append(parts, s)
			}
		}

		return append(pairs, encodeComponent(key)+"="+encodeComponent(strings.Join(parts, ",")))
	default:
		if key == "" {
			return pairs
		}

		s, ok := scalar(value)
		if !ok {
			return pairs
		}

		return append(pairs, encodeComponent(key)+"="+encodeComponent(s))
	}
}

func scalar(value reflect.Value) (string, bool) {
	for value.Kind() == reflect.Interface || value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return "", false
		}

		value = value.Elem()
	}

	switch value.Kind() {
	case reflect.String:
		return value.String(), true
	case reflect.Bool:
		return strconv.FormatBool(value.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(value.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(value.Uint(), 10), true
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(value.Float(), 'f', -1, 64), true
	default:
		return "", false
	}
}

func encodeComponent(s string) string {
	return uriComponent.Replace(url.QueryEscape(s))
}
