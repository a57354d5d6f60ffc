package chart

import (
	"fmt"

	"phichain/internal/model"
)

// Load builds a world from a serialized chart. Ids are assigned depth-first in file
// order (line, its notes, its events, then its children), so Export reproduces the
// input order.
func Load(c model.Chart) (*World, error) {
	w := New()
	w.Offset = c.Offset.Offset
	if c.BpmList.Len() > 0 {
		w.BpmList = c.BpmList
	}
	for i, tree := range c.Lines {
		if err := w.loadTree(tree, 0); err != nil {
			return nil, fmt.Errorf("lines[%d]: %w", i, err)
		}
	}
	return w, nil
}

func (w *World) loadTree(tree model.LineTree, parent EntityID) error {
	id, err := w.SpawnLine(0, tree.Line)
	if err != nil {
		return err
	}
	if parent != 0 {
		if _, err := w.SetParent(id, parent); err != nil {
			return err
		}
	}
	for i, n := range tree.Notes {
		if _, err := w.InsertNote(0, id, n); err != nil {
			return fmt.Errorf("notes[%d]: %w", i, err)
		}
	}
	for i, e := range tree.Events {
		if _, err := w.InsertEvent(0, id, e); err != nil {
			return fmt.Errorf("events[%d]: %w", i, err)
		}
	}
	for i, child := range tree.Children {
		if err := w.loadTree(child, id); err != nil {
			return fmt.Errorf("children[%d]: %w", i, err)
		}
	}
	return nil
}

// Export serializes the world. Pending previews are left out. Format is left for the
// codec to stamp.
func (w *World) Export() model.Chart {
	c := model.Chart{
		Offset:  model.Offset{Offset: w.Offset},
		BpmList: w.BpmList,
		Lines:   []model.LineTree{},
	}
	for _, id := range w.roots {
		c.Lines = append(c.Lines, w.exportTree(id))
	}
	return c
}

func (w *World) exportTree(id EntityID) model.LineTree {
	rec := w.lines[id]
	t := model.LineTree{
		Line:     rec.line,
		Notes:    []model.Note{},
		Events:   []model.LineEvent{},
		Children: []model.LineTree{},
	}
	for _, n := range rec.notes {
		if w.HasTag(n, Pending) {
			continue
		}
		t.Notes = append(t.Notes, w.notes[n].note)
	}
	for _, e := range rec.events {
		if w.HasTag(e, Pending) {
			continue
		}
		t.Events = append(t.Events, w.events[e].event)
	}
	for _, c := range rec.children {
		t.Children = append(t.Children, w.exportTree(c))
	}
	return t
}
