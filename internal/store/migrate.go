package store

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// CurrentFormat is the chart.json format this build writes.
const CurrentFormat uint32 = 3

// Migrator upgrades a raw chart tree from format From to From+1. Migrators are pure and
// append-only: a released migrator is never rewritten.
type Migrator struct {
	From  uint32
	Delta string
	Apply func(tree map[string]any) (map[string]any, error)
}

// Pipeline composes migrators into an upgrade to a target format.
type Pipeline struct {
	target    uint32
	migrators []Migrator
}

// NewPipeline sorts migrators by From and requires exactly one for each step
// 0..target-1.
func NewPipeline(target uint32, migrators ...Migrator) (*Pipeline, error) {
	ms := append([]Migrator(nil), migrators...)
	sort.Slice(ms, func(i, j int) bool { return ms[i].From < ms[j].From })
	if uint32(len(ms)) != target {
		return nil, fmt.Errorf("migration pipeline: %d migrators for target format %d", len(ms), target)
	}
	for i, m := range ms {
		if m.From != uint32(i) {
			return nil, fmt.Errorf("migration pipeline: gap or duplicate at format %d (found migrator from %d)", i, m.From)
		}
		if m.Apply == nil {
			return nil, fmt.Errorf("migration pipeline: migrator from %d has no Apply", m.From)
		}
	}
	return &Pipeline{target: target, migrators: ms}, nil
}

func (p *Pipeline) Target() uint32 { return p.target }

// Steps lists the migrators in application order.
func (p *Pipeline) Steps() []Migrator {
	return append([]Migrator(nil), p.migrators...)
}

// Run upgrades tree to the target format. A tree already at the target is returned as is.
func (p *Pipeline) Run(tree map[string]any) (map[string]any, error) {
	from, err := treeFormat(tree)
	if err != nil {
		return nil, ChartParseError{Err: err}
	}
	if from > p.target {
		return nil, FutureFormatError{Format: from, Current: p.target}
	}
	for _, m := range p.migrators[from:] {
		out, err := m.Apply(tree)
		if err != nil {
			return nil, MigrationError{From: m.From, To: m.From + 1, Err: err}
		}
		if out == nil {
			return nil, MigrationError{From: m.From, To: m.From + 1, Err: errors.New("migrator returned no chart")}
		}
		out["format"] = float64(m.From + 1)
		tree = out
	}
	return tree, nil
}

// treeFormat reads "format"; charts from before the field existed are format 0.
func treeFormat(tree map[string]any) (uint32, error) {
	raw, ok := tree["format"]
	if !ok || raw == nil {
		return 0, nil
	}
	f, ok := raw.(float64)
	if !ok || f < 0 || f != math.Trunc(f) || f > math.MaxUint32 {
		return 0, fmt.Errorf("format must be a non-negative integer, got %v", raw)
	}
	return uint32(f), nil
}

var chartMigrations = mustPipeline(CurrentFormat,
	Migrator{From: 0, Delta: "offset becomes {\"offset\": seconds}; missing bpm_list gets one 120 BPM point", Apply: migrateOffsetObject},
	Migrator{From: 1, Delta: "event start/end renamed to start_value/end_value", Apply: migrateEventValueNames},
	Migrator{From: 2, Delta: "notes gain speed and above defaults; line trees gain children", Apply: migrateNoteDefaults},
)

func mustPipeline(target uint32, ms ...Migrator) *Pipeline {
	p, err := NewPipeline(target, ms...)
	if err != nil {
		panic(err)
	}
	return p
}

// Migrate upgrades a raw chart tree to CurrentFormat.
func Migrate(tree map[string]any) (map[string]any, error) {
	return chartMigrations.Run(tree)
}

// Migrations lists the registered chart migrators.
func Migrations() []Migrator { return chartMigrations.Steps() }

func migrateOffsetObject(tree map[string]any) (map[string]any, error) {
	switch v := tree["offset"].(type) {
	case nil:
		tree["offset"] = map[string]any{"offset": 0.0}
	case float64:
		tree["offset"] = map[string]any{"offset": v}
	case map[string]any:
	default:
		return nil, fmt.Errorf("offset: unexpected %T", v)
	}
	if _, ok := tree["bpm_list"]; !ok {
		tree["bpm_list"] = []any{map[string]any{"beat": []any{0.0, 0.0, 1.0}, "bpm": 120.0}}
	}
	if _, ok := tree["lines"]; !ok {
		tree["lines"] = []any{}
	}
	return tree, nil
}

func migrateEventValueNames(tree map[string]any) (map[string]any, error) {
	err := eachLineTree(tree, func(line map[string]any) error {
		events, _ := line["events"].([]any)
		for i, raw := range events {
			ev, ok := raw.(map[string]any)
			if !ok {
				return fmt.Errorf("events[%d]: expected object, got %T", i, raw)
			}
			for old, next := range map[string]string{"start": "start_value", "end": "end_value"} {
				if v, ok := ev[old]; ok {
					if _, exists := ev[next]; !exists {
						ev[next] = v
					}
					delete(ev, old)
				}
			}
		}
		return nil
	})
	return tree, err
}

func migrateNoteDefaults(tree map[string]any) (map[string]any, error) {
	err := eachLineTree(tree, func(line map[string]any) error {
		if _, ok := line["children"]; !ok {
			line["children"] = []any{}
		}
		notes, _ := line["notes"].([]any)
		for i, raw := range notes {
			n, ok := raw.(map[string]any)
			if !ok {
				return fmt.Errorf("notes[%d]: expected object, got %T", i, raw)
			}
			if _, ok := n["speed"]; !ok {
				n["speed"] = 1.0
			}
			if _, ok := n["above"]; !ok {
				n["above"] = true
			}
		}
		return nil
	})
	return tree, err
}

// eachLineTree visits every line tree, children included.
func eachLineTree(tree map[string]any, fn func(map[string]any) error) error {
	var walk func(path string, list any) error
	walk = func(path string, list any) error {
		if list == nil {
			return nil
		}
		items, ok := list.([]any)
		if !ok {
			return fmt.Errorf("%s: expected array, got %T", path, list)
		}
		for i, raw := range items {
			p := fmt.Sprintf("%s[%d]", path, i)
			line, ok := raw.(map[string]any)
			if !ok {
				return fmt.Errorf("%s: expected object, got %T", p, raw)
			}
			if err := fn(line); err != nil {
				return fmt.Errorf("%s.%w", p, err)
			}
			if err := walk(p+".children", line["children"]); err != nil {
				return err
			}
		}
		return nil
	}
	return walk("lines", tree["lines"])
}
