// Package output renders query results as json, yaml or a table
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v2"
)

// Supported formats
const (
	JSON  = "json"
	YAML  = "yaml"
	Table = "table"
)

// ErrUnknownFormat is returned for a format Render does not support
var ErrUnknownFormat = errors.New("unknown output format")

// Render writes v to w in the given format. An empty format means json.
func Render(w io.Writer, format string, v any) error {
	switch format {
	case "", JSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case YAML:
		generic, err := toGeneric(v)
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(generic)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	case Table:
		return renderTable(w, v)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// toGeneric round trips v through JSON so every format uses the same field names
func toGeneric(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return generic, nil
}

// renderTable prints one row per record. Only scalar fields become columns.
func renderTable(w io.Writer, v any) error {
	generic, err := toGeneric(v)
	if err != nil {
		return err
	}

	var rows []map[string]any
	switch g := generic.(type) {
	case []any:
		for _, item := range g {
			if m, ok := item.(map[string]any); ok {
				rows = append(rows, m)
			} else {
				rows = append(rows, map[string]any{"value": item})
			}
		}
	case map[string]any:
		rows = append(rows, g)
	case nil:
	default:
		rows = append(rows, map[string]any{"value": g})
	}

	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No results")
		return err
	}

	columns := scalarColumns(rows)
	table := tablewriter.NewWriter(w)
	table.SetHeader(columns)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = cell(row[col])
		}
		table.Append(cells)
	}
	table.Render()
	return nil
}

func scalarColumns(rows []map[string]any) []string {
	seen := map[string]bool{}
	for _, row := range rows {
		for k, val := range row {
			switch val.(type) {
			case map[string]any, []any:
				continue
			}
			seen[k] = true
		}
	}
	columns := make([]string, 0, len(seen))
	for k := range seen {
		columns = append(columns, k)
	}
	sort.Strings(columns)
	return columns
}

func cell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case map[string]any, []any:
		return ""
	}
	return fmt.Sprint(v)
}
