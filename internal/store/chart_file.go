package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"phichain/internal/model"
)

// DecodeChart parses chart.json, upgrading older formats first, and validates the result.
func DecodeChart(data []byte) (model.Chart, error) {
	tree, err := parseTree(data)
	if err != nil {
		return model.Chart{}, err
	}
	migrated, err := Migrate(tree)
	if err != nil {
		return model.Chart{}, err
	}
	return decodeTree(migrated)
}

// MigrateChartBytes upgrades chart.json to CurrentFormat without interpreting it beyond
// the migration pipeline. It reports the format the input was in.
func MigrateChartBytes(data []byte) (model.Chart, uint32, error) {
	tree, err := parseTree(data)
	if err != nil {
		return model.Chart{}, 0, err
	}
	from, err := treeFormat(tree)
	if err != nil {
		return model.Chart{}, 0, ChartParseError{Err: err}
	}
	migrated, err := Migrate(tree)
	if err != nil {
		return model.Chart{}, from, err
	}
	c, err := decodeTree(migrated)
	return c, from, err
}

func parseTree(data []byte) (map[string]any, error) {
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, ChartParseError{Err: err}
	}
	if tree == nil {
		return nil, ChartParseError{Err: errors.New("chart must be a JSON object")}
	}
	return tree, nil
}

func decodeTree(tree map[string]any) (model.Chart, error) {
	c, err := decodeUnchecked(tree)
	if err != nil {
		return model.Chart{}, err
	}
	if issues := ValidateChart(c); len(issues) > 0 {
		msgs := make([]string, 0, len(issues))
		for _, is := range issues {
			msgs = append(msgs, is.Path+": "+is.Message)
		}
		return model.Chart{}, ChartParseError{Err: errors.New(strings.Join(msgs, "; "))}
	}
	return c, nil
}

// decodeUnchecked maps a migrated tree onto model.Chart without checking invariants.
func decodeUnchecked(tree map[string]any) (model.Chart, error) {
	b, err := json.Marshal(tree)
	if err != nil {
		return model.Chart{}, ChartParseError{Err: err}
	}
	var c model.Chart
	if err := json.NewDecoder(bytes.NewReader(b)).Decode(&c); err != nil {
		return model.Chart{}, ChartParseError{Err: err}
	}
	normalizeChart(&c)
	return c, nil
}

// EncodeChart serializes c at CurrentFormat.
func EncodeChart(c model.Chart) ([]byte, error) {
	c.Format = CurrentFormat
	normalizeChart(&c)
	return json.Marshal(c)
}

// normalizeChart replaces nil slices with empty ones so encoding never writes null.
func normalizeChart(c *model.Chart) {
	if c.Lines == nil {
		c.Lines = []model.LineTree{}
	}
	for i := range c.Lines {
		normalizeTree(&c.Lines[i])
	}
}

func normalizeTree(t *model.LineTree) {
	if t.Notes == nil {
		t.Notes = []model.Note{}
	}
	if t.Events == nil {
		t.Events = []model.LineEvent{}
	}
	if t.Children == nil {
		t.Children = []model.LineTree{}
	}
	for i := range t.Children {
		normalizeTree(&t.Children[i])
	}
}

// NewChart is the chart written into freshly created projects: one line, default tempo.
func NewChart() model.Chart {
	return model.Chart{
		Format:  CurrentFormat,
		BpmList: model.DefaultBpmList(),
		Lines: []model.LineTree{{
			Line:     model.DefaultLine(),
			Notes:    []model.Note{},
			Events:   []model.LineEvent{},
			Children: []model.LineTree{},
		}},
	}
}
