package chart

import "slices"

// Tag marks an entity for the editor. Tags are never serialized.
type Tag uint8

const (
	// Selected entities take part in bulk operations (copy, cut, delete).
	Selected Tag = 1 << iota
	// Pending entities are uncommitted previews.
	Pending
)

func (w *World) HasTag(id EntityID, tag Tag) bool {
	return w.tags[id]&tag != 0
}

// AddTag tags an entity. Pending entities never carry Selected: tagging one Pending
// drops its selection, and selecting a Pending entity does nothing.
func (w *World) AddTag(id EntityID, tag Tag) {
	if !w.inUse(id) {
		return
	}
	cur := w.tags[id]
	next := cur | tag
	if next&Pending != 0 {
		next &^= Selected
	}
	if next == cur {
		return
	}
	w.tags[id] = next
	w.emitTagged(id)
}

func (w *World) RemoveTag(id EntityID, tag Tag) {
	cur, ok := w.tags[id]
	if !ok || cur&tag == 0 {
		return
	}
	cur &^= tag
	if cur == 0 {
		delete(w.tags, id)
	} else {
		w.tags[id] = cur
	}
	w.emitTagged(id)
}

// Tagged returns every entity carrying tag, in id order.
func (w *World) Tagged(tag Tag) []EntityID {
	var out []EntityID
	for id, t := range w.tags {
		if t&tag != 0 {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

// ClearTag removes tag from every entity.
func (w *World) ClearTag(tag Tag) {
	for _, id := range w.Tagged(tag) {
		w.RemoveTag(id, tag)
	}
}

func (w *World) countTagged(tag Tag, kind EntityKind) int {
	n := 0
	for id, t := range w.tags {
		if t&tag == 0 {
			continue
		}
		if k, ok := w.KindOf(id); ok && k == kind {
			n++
		}
	}
	return n
}

func (w *World) emitTagged(id EntityID) {
	if kind, ok := w.KindOf(id); ok {
		w.emit(Mutated, kind, id)
	}
}
