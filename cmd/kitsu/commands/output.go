package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/itchyny/gojq"
	"github.com/mklemme/kitsu/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

const defaultJSONIndent = 2

// titleKeys are tried in order to pick a descriptive table column.
var titleKeys = []string{"canonicalTitle", "name", "title", "slug", "content"}

// outputFlags holds the --jq and --columns flags of a command.
type outputFlags struct {
	jq      string
	columns []string
}

func (f *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.jq, "jq", "", "jq expression applied to the response")
	cmd.Flags().StringSliceVar(&f.columns, "columns", nil, "table columns (default id, type and a title attribute)")
}

// outputFormat returns the configured format, defaulting to table on a
// terminal and json otherwise.
func outputFormat(w io.Writer) (string, error) {
	format := strings.ToLower(viper.GetString(KeyOutput))

	switch format {
	case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
		return format, nil
	case "":
		if isTerminal(w) {
			return constants.FormatTable, nil
		}

		return constants.FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q (expected table, json or yaml)", constants.ErrUnknownOutput, format)
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)

	return ok && term.IsTerminal(int(file.Fd()))
}

// render writes value to w in format after applying the optional jq filter.
func render(w io.Writer, value any, format string, flags outputFlags) error {
	plain, err := toPlain(value)
	if err != nil {
		return err
	}

	if flags.jq != "" {
		plain, err = applyFilter(plain, flags.jq)
		if err != nil {
			return err
		}
	}

	switch format {
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(defaultJSONIndent)

		err := encoder.Encode(plain)
		if err != nil {
			return fmt.Errorf("encoding data to YAML: %w", err)
		}

		return nil
	case constants.FormatTable:
		if rendered, err := renderTable(w, plain, flags.columns); rendered || err != nil {
			return err
		}

		return renderJSON(w, plain)
	default:
		return renderJSON(w, plain)
	}
}

func renderJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", strings.Repeat(" ", defaultJSONIndent))

	err := encoder.Encode(value)
	if err != nil {
		return fmt.Errorf("encoding data to JSON: %w", err)
	}

	return nil
}

// toPlain reduces value to the maps, slices, strings, float64s and bools
// gojq and the encoders understand.
func toPlain(value any) (any, error) {
	if raw, ok := value.(json.RawMessage); ok {
		if len(strings.TrimSpace(string(raw))) == 0 {
			return nil, nil
		}

		var out any
		if json.Unmarshal(raw, &out) != nil {
			return string(raw), nil
		}

		return out, nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encoding data to JSON: %w", err)
	}

	var out any

	err = json.Unmarshal(data, &out)
	if err != nil {
		return nil, fmt.Errorf("decoding data: %w", err)
	}

	return out, nil
}

// applyFilter runs a jq expression. A single result is returned as is,
// several are returned as an array.
func applyFilter(data any, expression string) (any, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}

	iter := query.Run(data)

	var results []any

	for {
		v, ok := iter.Next()
		if !ok {
			break
		}

		if err, ok := v.(error); ok {
			return nil, fmt.Errorf("jq: %w", err)
		}

		results = append(results, v)
	}

	switch len(results) {
	case 0:
		return nil, constants.ErrEmptyFilterResult
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}

// renderTable prints resources as a table. It reports false when value does
// not look like a resource or a list of resources.
func renderTable(w io.Writer, value any, columns []string) (bool, error) {
	if document, ok := value.(map[string]any); ok {
		if data, ok := document["data"]; ok {
			value = data
		}
	}

	switch v := value.(type) {
	case map[string]any:
		if _, ok := v["id"]; !ok {
			return false, nil
		}

		return true, renderProperties(w, v)
	case []any:
		rows := make([]map[string]any, 0, len(v))

		for _, element := range v {
			row, ok := element.(map[string]any)
			if !ok {
				return false, nil
			}

			rows = append(rows, row)
		}

		return true, renderRows(w, rows, columns)
	default:
		return false, nil
	}
}

func renderProperties(w io.Writer, entity map[string]any) error {
	table := tablewriter.NewWriter(w)
	table.Header("Property", "Value")

	keys := make([]string, 0, len(entity))
	for key := range entity {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		err := table.Append([]string{key, cell(entity[key])})
		if err != nil {
			return fmt.Errorf("failed to append %s to table: %w", key, err)
		}
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func renderRows(w io.Writer, rows []map[string]any, columns []string) error {
	if len(columns) == 0 {
		columns = defaultColumns(rows)
	}

	table := tablewriter.NewWriter(w)
	table.Header(columns)

	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, column := range columns {
			cells[i] = cell(row[column])
		}

		err := table.Append(cells)
		if err != nil {
			return fmt.Errorf("failed to append row to table: %w", err)
		}
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func defaultColumns(rows []map[string]any) []string {
	columns := []string{"id", "type"}

	for _, key := range titleKeys {
		for _, row := range rows {
			if _, ok := row[key]; ok {
				return append(columns, key)
			}
		}
	}

	return columns
}

// cell renders scalars as text and anything nested as compact JSON.
// Relationship objects collapse to their identifiers.
func cell(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]any:
		if data, ok := v["data"]; ok {
			return identifiers(data)
		}
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}

	return string(data)
}

func identifiers(data any) string {
	switch d := data.(type) {
	case map[string]any:
		return fmt.Sprintf("%v:%v", d["type"], d["id"])
	case []any:
		parts := make([]string, 0, len(d))
		for _, element := range d {
			parts = append(parts, identifiers(element))
		}

		return strings.Join(parts, ",")
	default:
		return ""
	}
}
