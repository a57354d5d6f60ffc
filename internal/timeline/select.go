package timeline

import (
	"phichain/internal/chart"
	"phichain/internal/model"
)

// SelectNotes returns the notes of the column's line whose rendered box intersects r.
// Pending previews are skipped.
func (t *Timeline) SelectNotes(w *chart.World, c Column, r Rect) []chart.EntityID {
	var out []chart.EntityID
	for _, id := range w.NotesOf(c.Line) {
		if w.HasTag(id, chart.Pending) {
			continue
		}
		n, err := w.Note(id)
		if err != nil {
			continue
		}
		if t.NoteRect(c, n).Intersects(r) {
			out = append(out, id)
		}
	}
	return out
}

// SelectEvents returns the events of the column's line whose rendered box intersects r.
func (t *Timeline) SelectEvents(w *chart.World, c Column, r Rect) []chart.EntityID {
	var out []chart.EntityID
	for _, id := range w.EventsOf(c.Line) {
		if w.HasTag(id, chart.Pending) {
			continue
		}
		e, err := w.Event(id)
		if err != nil {
			continue
		}
		if t.EventRect(c, e).Intersects(r) {
			out = append(out, id)
		}
	}
	return out
}

// Select dispatches on the column kind.
func (t *Timeline) Select(w *chart.World, c Column, r Rect) []chart.EntityID {
	if c.Kind == EventColumn {
		return t.SelectEvents(w, c, r)
	}
	return t.SelectNotes(w, c, r)
}

// HitNote returns the topmost note under a point, preferring later ids.
func (t *Timeline) HitNote(w *chart.World, c Column, x, y float32) (chart.EntityID, bool) {
	ids := w.NotesOf(c.Line)
	for i := len(ids) - 1; i >= 0; i-- {
		if w.HasTag(ids[i], chart.Pending) {
			continue
		}
		n, err := w.Note(ids[i])
		if err != nil {
			continue
		}
		if t.NoteRect(c, n).Contains(x, y) {
			return ids[i], true
		}
	}
	return 0, false
}

// ColumnAt returns the column under px.
func ColumnAt(cols []Column, px float32) (Column, bool) {
	for _, c := range cols {
		if px >= c.MinX && px <= c.MaxX {
			return c, true
		}
	}
	return Column{}, false
}

// PasteTarget resolves where a paste at a viewport point lands: the line of the column
// under the cursor, else the selected line, at the attached beat under the cursor.
// It reports false when the cursor is outside the viewport or no line is available.
func (t *Timeline) PasteTarget(cols []Column, selected chart.EntityID, x, y float32) (chart.EntityID, model.Beat, bool) {
	if !t.Contains(x, y) {
		return 0, model.Beat{}, false
	}
	line := selected
	if c, ok := ColumnAt(cols, x); ok && c.Line.Valid() {
		line = c.Line
	}
	if !line.Valid() {
		return 0, model.Beat{}, false
	}
	return line, t.Attach(t.YToBeat(y)), true
}
