package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

type rows [][2]string

func (r rows) Table() ([]string, [][]string) {
	out := make([][]string, 0, len(r))
	for _, x := range r {
		out = append(out, []string{x[0], x[1]})
	}
	return []string{"Action", "Hotkey"}, out
}

func TestWrite_JSONEnvelope(t *testing.T) {
	var buf bytes.Buffer
	v := map[string]any{"data": map[string]any{"n": 1}, "_hints": []string{"phichain info"}}
	if err := Write(&buf, v, "json", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if got["data"].(map[string]any)["n"] != float64(1) {
		t.Fatalf("unexpected data: %v", got)
	}
	if strings.Count(buf.String(), "\n") != 1 {
		t.Fatalf("compact JSON should be a single line: %q", buf.String())
	}
}

func TestWrite_TextTableAndHints(t *testing.T) {
	var buf bytes.Buffer
	v := map[string]any{
		"data":   rows{{"phichain.undo", "ctrl+z"}, {"phichain.redo", "ctrl+shift+z"}},
		"_hints": []string{"phichain keys --format json"},
	}
	if err := Write(&buf, v, "text", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Action", "phichain.undo", "ctrl+shift+z", "phichain keys --format json"} {
		if !strings.Contains(out, want) {
			t.Fatalf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestWrite_TextFallsBackToYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, map[string]any{"data": map[string]any{"lines": 2}}, "text", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "lines: 2" {
		t.Fatalf("got %q", buf.String())
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, 1, "edn", false); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
