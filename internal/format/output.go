package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"
)

// Tabular values render as a table in text output.
type Tabular interface {
	Table() (headers []string, rows [][]string)
}

// Write writes output in the requested format.
//
// Supported formats:
// - json (default)
// - text
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch format {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "text":
		return WriteText(w, v)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteJSON writes strict JSON output for CLI commands.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	hintStyle   = lipgloss.NewStyle().Faint(true)
)

// WriteText renders for people: tables for Tabular data, YAML for anything else.
func WriteText(w io.Writer, v any) error {
	data, hints := unwrap(v)
	var b strings.Builder
	if t, ok := data.(Tabular); ok {
		headers, rows := t.Table()
		tbl := table.New().
			Border(lipgloss.NormalBorder()).
			Headers(headers...).
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			})
		b.WriteString(tbl.Render())
		b.WriteByte('\n')
	} else if data != nil {
		out, err := yaml.Marshal(data)
		if err != nil {
			return err
		}
		b.Write(out)
	}
	for _, h := range hints {
		b.WriteString(hintStyle.Render("→ "+h) + "\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// unwrap splits a {"data", "meta", "_hints"} envelope. Meta is only shown in JSON.
func unwrap(v any) (any, []string) {
	env, ok := v.(map[string]any)
	if !ok {
		return v, nil
	}
	data, ok := env["data"]
	if !ok {
		return v, nil
	}
	hints, _ := env["_hints"].([]string)
	return data, hints
}
