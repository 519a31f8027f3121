package commands

import (
	"fmt"
	"strings"

	"github.com/mklemme/kitsu/internal/constants"
	"github.com/mklemme/kitsu/pkg/jsonapi"
	"github.com/mklemme/kitsu/pkg/kitsu"
)

// parseParams turns key=value pairs into nested query parameters. Bracketed
// keys nest: filter[text]=bebop becomes {"filter": {"text": "bebop"}}.
// Repeating a key joins the values with commas.
func parseParams(pairs []string) (jsonapi.Params, error) {
	params := jsonapi.Params{}

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidParam, pair)
		}

		path, err := splitParamKey(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", err, pair)
		}

		err = setParam(params, path, value)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", err, pair)
		}
	}

	return params, nil
}

// splitParamKey splits page[limit] into [page limit].
func splitParamKey(key string) ([]string, error) {
	head, rest, nested := strings.Cut(key, "[")
	if head == "" {
		return nil, constants.ErrInvalidParam
	}

	path := []string{head}
	if !nested {
		return path, nil
	}

	for rest != "" {
		name, after, ok := strings.Cut(rest, "]")
		if !ok || name == "" {
			return nil, constants.ErrInvalidParam
		}

		path = append(path, name)

		if after == "" {
			break
		}

		if !strings.HasPrefix(after, "[") {
			return nil, constants.ErrInvalidParam
		}

		rest = after[1:]
	}

	return path, nil
}

func setParam(params map[string]any, path []string, value string) error {
	node := params

	for _, name := range path[:len(path)-1] {
		child, exists := node[name]
		if !exists {
			next := map[string]any{}
			node[name] = next
			node = next

			continue
		}

		next, ok := child.(map[string]any)
		if !ok {
			return constants.ErrParamConflict
		}

		node = next
	}

	last := path[len(path)-1]

	switch existing := node[last].(type) {
	case nil:
		node[last] = value
	case string:
		node[last] = existing + "," + value
	default:
		return constants.ErrParamConflict
	}

	return nil
}

// parseHeaders accepts "Name: value" and "Name=value".
func parseHeaders(lines []string) (kitsu.Headers, error) {
	headers := kitsu.Headers{}

	for _, line := range lines {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			name, value, ok = strings.Cut(line, "=")
		}

		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidHeader, line)
		}

		headers[name] = strings.TrimSpace(value)
	}

	return headers, nil
}
