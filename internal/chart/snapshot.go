package chart

import "phichain/internal/model"

type NoteEntry struct {
	ID   EntityID
	Note model.Note
}

type EventEntry struct {
	ID    EntityID
	Event model.LineEvent
}

// LineSnapshot is a structural copy of a line subtree, ids included.
type LineSnapshot struct {
	ID       EntityID
	Line     model.Line
	Parent   EntityID
	Notes    []NoteEntry
	Events   []EventEntry
	Children []LineSnapshot
}

func (s LineSnapshot) walk(fn func(LineSnapshot)) {
	fn(s)
	for _, c := range s.Children {
		c.walk(fn)
	}
}

// SnapshotLine captures a live line with its notes, events and descendants.
func (w *World) SnapshotLine(id EntityID) (LineSnapshot, error) {
	rec, err := w.liveLine(id)
	if err != nil {
		return LineSnapshot{}, err
	}
	return w.snapshot(id, rec), nil
}

func (w *World) snapshot(id EntityID, rec *lineRecord) LineSnapshot {
	s := LineSnapshot{ID: id, Line: rec.line, Parent: rec.parent}
	for _, n := range rec.notes {
		s.Notes = append(s.Notes, NoteEntry{ID: n, Note: w.notes[n].note})
	}
	for _, e := range rec.events {
		s.Events = append(s.Events, EventEntry{ID: e, Event: w.events[e].event})
	}
	for _, c := range rec.children {
		s.Children = append(s.Children, w.snapshot(c, w.lines[c]))
	}
	return s
}

// StripLine snapshots a line subtree and then empties it. The root id survives as a
// shell so references to it (the selected line, captured commands) stay valid; the
// descendants are despawned. RestoreLine reverses it.
func (w *World) StripLine(id EntityID) (LineSnapshot, error) {
	rec, err := w.liveLine(id)
	if err != nil {
		return LineSnapshot{}, err
	}
	snap := w.snapshot(id, rec)

	for _, c := range rec.children {
		w.despawnTree(c)
	}
	for _, n := range rec.notes {
		delete(w.notes, n)
		delete(w.tags, n)
		w.emit(Removed, KindNote, n)
	}
	for _, e := range rec.events {
		delete(w.events, e)
		delete(w.tags, e)
		w.emit(Removed, KindEvent, e)
	}
	w.detach(id, rec)
	delete(w.tags, id)
	*rec = lineRecord{shell: true}
	w.emit(Removed, KindLine, id)
	return snap, nil
}

// RestoreLine rebuilds a subtree from a snapshot under its recorded ids. The root may be
// a shell or an unused id; every other id must be free and the parent must exist.
func (w *World) RestoreLine(snap LineSnapshot) error {
	if snap.Parent != 0 {
		if _, err := w.liveLine(snap.Parent); err != nil {
			return err
		}
	}
	var conflict EntityID
	snap.walk(func(s LineSnapshot) {
		if conflict != 0 {
			return
		}
		if s.ID == snap.ID {
			if rec, ok := w.lines[s.ID]; ok && !rec.shell {
				conflict = s.ID
			} else if !ok && w.inUse(s.ID) {
				conflict = s.ID
			}
		} else if w.inUse(s.ID) {
			conflict = s.ID
		}
		for _, n := range s.Notes {
			if w.inUse(n.ID) {
				conflict = n.ID
			}
		}
		for _, e := range s.Events {
			if w.inUse(e.ID) {
				conflict = e.ID
			}
		}
	})
	if conflict != 0 {
		return InvariantError{Reason: "cannot restore line " + snap.ID.String() + ": id " + conflict.String() + " is in use"}
	}
	w.restore(snap, snap.Parent)
	return nil
}

func (w *World) restore(s LineSnapshot, parent EntityID) {
	rec := &lineRecord{line: s.Line, parent: parent}
	w.lines[s.ID] = rec
	w.bump(s.ID)
	w.attach(s.ID, rec)
	w.emit(Added, KindLine, s.ID)
	for _, n := range s.Notes {
		w.notes[n.ID] = &noteRecord{note: n.Note, line: s.ID}
		rec.notes = insertID(rec.notes, n.ID)
		w.bump(n.ID)
		w.emit(Added, KindNote, n.ID)
	}
	for _, e := range s.Events {
		w.events[e.ID] = &eventRecord{event: e.Event, line: s.ID}
		rec.events = insertID(rec.events, e.ID)
		w.bump(e.ID)
		w.emit(Added, KindEvent, e.ID)
	}
	for _, c := range s.Children {
		w.restore(c, s.ID)
	}
}

func (w *World) bump(id EntityID) {
	if id > w.nextID {
		w.nextID = id
	}
}
