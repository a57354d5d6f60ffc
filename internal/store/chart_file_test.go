package store

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"phichain/internal/model"
)

const formatZeroChart = `{
  "offset": 0.5,
  "bpm_list": [{"beat": [0, 0, 1], "bpm": 150}],
  "lines": [{
    "line": {"x": 0, "y": 0, "rotation": 0, "opacity": 255, "speed": 10},
    "notes": [
      {"kind": "Tap", "beat": [1, 0, 1], "x": 12.5},
      {"kind": {"Hold": {"hold_beat": [0, 1, 2]}}, "beat": [2, 0, 1], "x": -40}
    ],
    "events": [
      {"kind": "x", "start_beat": [0, 0, 1], "end_beat": [1, 0, 1], "start": 0, "end": 10, "easing": "Linear"}
    ]
  }]
}`

func TestDecodeChart_MigratesFormatZero(t *testing.T) {
	c, err := DecodeChart([]byte(formatZeroChart))
	if err != nil {
		t.Fatalf("DecodeChart: %v", err)
	}
	if c.Offset.Offset != 0.5 {
		t.Fatalf("offset = %v", c.Offset.Offset)
	}
	if len(c.Lines) != 1 || len(c.Lines[0].Notes) != 2 || len(c.Lines[0].Events) != 1 {
		t.Fatalf("unexpected shape %+v", c)
	}
	n := c.Lines[0].Notes[0]
	if n.Speed != 1 || !n.Above || n.X != 12.5 {
		t.Fatalf("note defaults not applied: %+v", n)
	}
	hold := c.Lines[0].Notes[1]
	if !hold.IsHold() || !hold.EndBeat().Equal(model.NewBeat(2, 1, 2)) {
		t.Fatalf("hold = %+v", hold)
	}
	ev := c.Lines[0].Events[0]
	if ev.StartValue != 0 || ev.EndValue != 10 {
		t.Fatalf("event values not renamed: %+v", ev)
	}

	out, err := EncodeChart(c)
	if err != nil {
		t.Fatalf("EncodeChart: %v", err)
	}
	var written map[string]any
	if err := json.Unmarshal(out, &written); err != nil {
		t.Fatalf("unmarshal written: %v", err)
	}
	if written["format"] != float64(CurrentFormat) {
		t.Fatalf("written format = %v", written["format"])
	}
	if issues := ValidateChart(c); len(issues) != 0 {
		t.Fatalf("migrated chart has issues: %+v", issues)
	}
}

func TestEncodeDecode_RoundTripIsBitExact(t *testing.T) {
	c, err := DecodeChart([]byte(formatZeroChart))
	if err != nil {
		t.Fatalf("DecodeChart: %v", err)
	}
	first, err := EncodeChart(c)
	if err != nil {
		t.Fatalf("EncodeChart: %v", err)
	}
	back, err := DecodeChart(first)
	if err != nil {
		t.Fatalf("DecodeChart(encoded): %v", err)
	}
	if !reflect.DeepEqual(back, withFormat(c)) {
		t.Fatalf("round trip changed the chart:\n%+v\n%+v", back, c)
	}
	second, err := EncodeChart(back)
	if err != nil {
		t.Fatalf("EncodeChart: %v", err)
	}
	if string(first) != string(second) {
		t.Fatalf("encoding not stable:\n%s\n%s", first, second)
	}
}

func withFormat(c model.Chart) model.Chart {
	c.Format = CurrentFormat
	return c
}

func TestMigrate_CurrentChartIsUnchanged(t *testing.T) {
	b, err := EncodeChart(NewChart())
	if err != nil {
		t.Fatalf("EncodeChart: %v", err)
	}
	var tree, want map[string]any
	if err := json.Unmarshal(b, &tree); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := json.Unmarshal(b, &want); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got, err := Migrate(tree)
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("current chart changed by migration:\n%v\n%v", got, want)
	}
}

func TestMigrate_FutureFormat(t *testing.T) {
	_, err := DecodeChart([]byte(`{"format": 99, "offset": {"offset": 0}, "bpm_list": [], "lines": []}`))
	var future FutureFormatError
	if !errors.As(err, &future) {
		t.Fatalf("expected FutureFormatError, got %v", err)
	}
	if future.Format != 99 || future.Current != CurrentFormat {
		t.Fatalf("unexpected %+v", future)
	}
}

func TestMigrate_FailingMigratorReportsVersions(t *testing.T) {
	_, err := DecodeChart([]byte(`{"format": 1, "offset": {"offset": 0}, "bpm_list": [{"beat":[0,0,1],"bpm":120}], "lines": [{"line": {}, "notes": [], "events": [42]}]}`))
	var migErr MigrationError
	if !errors.As(err, &migErr) {
		t.Fatalf("expected MigrationError, got %v", err)
	}
	if migErr.From != 1 || migErr.To != 2 {
		t.Fatalf("unexpected versions %+v", migErr)
	}
}

func TestNewPipeline_RejectsGaps(t *testing.T) {
	noop := func(tree map[string]any) (map[string]any, error) { return tree, nil }
	if _, err := NewPipeline(2, Migrator{From: 0, Apply: noop}, Migrator{From: 2, Apply: noop}); err == nil {
		t.Fatalf("expected gap error")
	}
	if _, err := NewPipeline(2, Migrator{From: 1, Apply: noop}, Migrator{From: 0, Apply: noop}); err != nil {
		t.Fatalf("unsorted but complete pipeline should be accepted: %v", err)
	}
	if got := len(Migrations()); uint32(got) != CurrentFormat {
		t.Fatalf("expected %d migrators, got %d", CurrentFormat, got)
	}
}

func TestDecodeChart_SchemaErrors(t *testing.T) {
	cases := map[string]string{
		"malformed":    `{"format": 3,`,
		"zero hold":    `{"format": 3, "offset": {"offset": 0}, "bpm_list": [{"beat":[0,0,1],"bpm":120}], "lines": [{"line": {}, "notes": [{"kind": {"Hold": {"hold_beat": [0,0,1]}}, "beat": [1,0,1], "x": 0, "above": true, "speed": 1}], "events": [], "children": []}]}`,
		"bad beat":     `{"format": 3, "offset": {"offset": 0}, "bpm_list": [{"beat":[0,0,0],"bpm":120}], "lines": []}`,
		"reversed evt": `{"format": 3, "offset": {"offset": 0}, "bpm_list": [{"beat":[0,0,1],"bpm":120}], "lines": [{"line": {}, "notes": [], "events": [{"kind": "y", "start_beat": [2,0,1], "end_beat": [1,0,1], "start_value": 0, "end_value": 1, "easing": "Linear"}], "children": []}]}`,
	}
	for name, in := range cases {
		_, err := DecodeChart([]byte(in))
		var parseErr ChartParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("%s: expected ChartParseError, got %v", name, err)
		}
	}
}

func TestEncodeChart_NeverWritesNull(t *testing.T) {
	b, err := EncodeChart(model.Chart{BpmList: model.DefaultBpmList(), Lines: []model.LineTree{{Line: model.DefaultLine()}}})
	if err != nil {
		t.Fatalf("EncodeChart: %v", err)
	}
	if strings.Contains(string(b), "null") {
		t.Fatalf("unexpected null in %s", b)
	}
}
