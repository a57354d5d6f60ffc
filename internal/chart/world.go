package chart

import (
	"slices"

	"phichain/internal/model"
)

type EntityKind int

const (
	KindLine EntityKind = iota
	KindNote
	KindEvent
)

func (k EntityKind) String() string {
	switch k {
	case KindLine:
		return "line"
	case KindNote:
		return "note"
	case KindEvent:
		return "event"
	default:
		return "entity"
	}
}

type ChangeKind int

const (
	Added ChangeKind = iota
	Removed
	Mutated
)

// Change is delivered to observers after every primitive mutation.
type Change struct {
	Kind   ChangeKind
	Entity EntityKind
	ID     EntityID
}

type Observer func(Change)

type lineRecord struct {
	line     model.Line
	parent   EntityID
	children []EntityID
	notes    []EntityID
	events   []EntityID
	// shell is a stripped line: the id stays allocated but the line has no components.
	shell bool
}

type noteRecord struct {
	note model.Note
	line EntityID
}

type eventRecord struct {
	event model.LineEvent
	line  EntityID
}

// World is the in-memory chart: an arena of lines, notes and events keyed by EntityID.
//
// The mutation methods are primitives for the edit package. They validate their input and
// leave the world untouched when they return an error.
type World struct {
	Offset  float32
	BpmList model.BpmList

	nextID EntityID
	lines  map[EntityID]*lineRecord
	notes  map[EntityID]*noteRecord
	events map[EntityID]*eventRecord
	roots  []EntityID

	tags         map[EntityID]Tag
	selectedLine EntityID

	observers map[int]Observer
	nextObs   int
}

func New() *World {
	return &World{
		BpmList:   model.DefaultBpmList(),
		lines:     map[EntityID]*lineRecord{},
		notes:     map[EntityID]*noteRecord{},
		events:    map[EntityID]*eventRecord{},
		tags:      map[EntityID]Tag{},
		observers: map[int]Observer{},
	}
}

// Subscribe registers fn for every change. The returned func unsubscribes.
func (w *World) Subscribe(fn Observer) func() {
	id := w.nextObs
	w.nextObs++
	w.observers[id] = fn
	return func() { delete(w.observers, id) }
}

func (w *World) emit(kind ChangeKind, entity EntityKind, id EntityID) {
	if len(w.observers) == 0 {
		return
	}
	keys := make([]int, 0, len(w.observers))
	for k := range w.observers {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	c := Change{Kind: kind, Entity: entity, ID: id}
	for _, k := range keys {
		w.observers[k](c)
	}
}

// NewID reserves a fresh id.
func (w *World) NewID() EntityID {
	w.nextID++
	return w.nextID
}

func (w *World) claim(id EntityID) (EntityID, error) {
	if id == 0 {
		return w.NewID(), nil
	}
	if w.inUse(id) {
		return 0, InvariantError{Reason: "id " + id.String() + " is already in use"}
	}
	if id > w.nextID {
		w.nextID = id
	}
	return id, nil
}

func (w *World) inUse(id EntityID) bool {
	if _, ok := w.lines[id]; ok {
		return true
	}
	if _, ok := w.notes[id]; ok {
		return true
	}
	_, ok := w.events[id]
	return ok
}

func (w *World) liveLine(id EntityID) (*lineRecord, error) {
	rec, ok := w.lines[id]
	if !ok || rec.shell {
		return nil, lineNotFound(id)
	}
	return rec, nil
}

// Queries

func (w *World) HasLine(id EntityID) bool {
	_, err := w.liveLine(id)
	return err == nil
}

// IsShell reports whether id is a stripped line kept alive for undo.
func (w *World) IsShell(id EntityID) bool {
	rec, ok := w.lines[id]
	return ok && rec.shell
}

func (w *World) Line(id EntityID) (model.Line, error) {
	rec, err := w.liveLine(id)
	if err != nil {
		return model.Line{}, err
	}
	return rec.line, nil
}

// Parent returns the parent of a line, or 0 for roots.
func (w *World) Parent(id EntityID) (EntityID, error) {
	rec, err := w.liveLine(id)
	if err != nil {
		return 0, err
	}
	return rec.parent, nil
}

func (w *World) Roots() []EntityID {
	return slices.Clone(w.roots)
}

func (w *World) ChildrenOf(id EntityID) []EntityID {
	rec, err := w.liveLine(id)
	if err != nil {
		return nil
	}
	return slices.Clone(rec.children)
}

// Lines walks the forest depth-first, parents before children.
func (w *World) Lines() []EntityID {
	var out []EntityID
	var walk func(ids []EntityID)
	walk = func(ids []EntityID) {
		for _, id := range ids {
			out = append(out, id)
			walk(w.lines[id].children)
		}
	}
	walk(w.roots)
	return out
}

// NotesOf enumerates the notes of a line in creation order. Shells and unknown lines
// have no notes.
func (w *World) NotesOf(line EntityID) []EntityID {
	rec, err := w.liveLine(line)
	if err != nil {
		return nil
	}
	return slices.Clone(rec.notes)
}

func (w *World) EventsOf(line EntityID) []EntityID {
	rec, err := w.liveLine(line)
	if err != nil {
		return nil
	}
	return slices.Clone(rec.events)
}

func (w *World) Note(id EntityID) (model.Note, error) {
	rec, ok := w.notes[id]
	if !ok {
		return model.Note{}, noteNotFound(id)
	}
	return rec.note, nil
}

// NotePtr exposes a note for live drag previews. Only the float shadow of its beats should
// be touched through it; real edits go through commands.
func (w *World) NotePtr(id EntityID) (*model.Note, error) {
	rec, ok := w.notes[id]
	if !ok {
		return nil, noteNotFound(id)
	}
	return &rec.note, nil
}

func (w *World) NoteLine(id EntityID) (EntityID, error) {
	rec, ok := w.notes[id]
	if !ok {
		return 0, noteNotFound(id)
	}
	return rec.line, nil
}

func (w *World) Event(id EntityID) (model.LineEvent, error) {
	rec, ok := w.events[id]
	if !ok {
		return model.LineEvent{}, eventNotFound(id)
	}
	return rec.event, nil
}

func (w *World) EventLine(id EntityID) (EntityID, error) {
	rec, ok := w.events[id]
	if !ok {
		return 0, eventNotFound(id)
	}
	return rec.line, nil
}

// KindOf reports what an id refers to.
func (w *World) KindOf(id EntityID) (EntityKind, bool) {
	if _, ok := w.notes[id]; ok {
		return KindNote, true
	}
	if _, ok := w.events[id]; ok {
		return KindEvent, true
	}
	if w.HasLine(id) {
		return KindLine, true
	}
	return 0, false
}

// NoteCount and EventCount leave Pending previews out.
func (w *World) NoteCount() int  { return len(w.notes) - w.countTagged(Pending, KindNote) }
func (w *World) EventCount() int { return len(w.events) - w.countTagged(Pending, KindEvent) }

func (w *World) LineCount() int {
	n := 0
	for _, rec := range w.lines {
		if !rec.shell {
			n++
		}
	}
	return n
}

// Line primitives

// SpawnLine creates a root line. id 0 allocates a fresh id.
func (w *World) SpawnLine(id EntityID, line model.Line) (EntityID, error) {
	id, err := w.claim(id)
	if err != nil {
		return 0, err
	}
	w.lines[id] = &lineRecord{line: line}
	w.roots = insertID(w.roots, id)
	w.emit(Added, KindLine, id)
	return id, nil
}

// DespawnLine removes a line with everything attached to it. The ids are released
// from the arena but never handed out again.
func (w *World) DespawnLine(id EntityID) error {
	rec, ok := w.lines[id]
	if !ok {
		return lineNotFound(id)
	}
	if !rec.shell {
		w.detach(id, rec)
	}
	w.despawnTree(id)
	return nil
}

func (w *World) despawnTree(id EntityID) {
	rec := w.lines[id]
	for _, child := range rec.children {
		w.despawnTree(child)
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
	delete(w.lines, id)
	delete(w.tags, id)
	w.emit(Removed, KindLine, id)
}

func (w *World) detach(id EntityID, rec *lineRecord) {
	if rec.parent == 0 {
		w.roots = removeID(w.roots, id)
		return
	}
	if p, ok := w.lines[rec.parent]; ok {
		p.children = removeID(p.children, id)
	}
}

func (w *World) attach(id EntityID, rec *lineRecord) {
	if rec.parent == 0 {
		w.roots = insertID(w.roots, id)
		return
	}
	p := w.lines[rec.parent]
	p.children = insertID(p.children, id)
}

// SetLine replaces the base transform of a line.
func (w *World) SetLine(id EntityID, line model.Line) error {
	rec, err := w.liveLine(id)
	if err != nil {
		return err
	}
	rec.line = line
	w.emit(Mutated, KindLine, id)
	return nil
}

// IsDescendant reports whether candidate is id itself or lies below it.
func (w *World) IsDescendant(candidate, id EntityID) bool {
	for cur := candidate; cur != 0; {
		if cur == id {
			return true
		}
		rec, ok := w.lines[cur]
		if !ok {
			return false
		}
		cur = rec.parent
	}
	return false
}

// SetParent moves a line under parent, or to the root level when parent is 0. It returns
// the previous parent.
func (w *World) SetParent(id, parent EntityID) (EntityID, error) {
	rec, err := w.liveLine(id)
	if err != nil {
		return 0, err
	}
	if parent != 0 {
		if _, err := w.liveLine(parent); err != nil {
			return 0, err
		}
		if w.IsDescendant(parent, id) {
			return 0, InvariantError{Reason: "line " + parent.String() + " is line " + id.String() + " or one of its descendants"}
		}
	}
	prev := rec.parent
	if prev == parent {
		return prev, nil
	}
	w.detach(id, rec)
	rec.parent = parent
	w.attach(id, rec)
	w.emit(Mutated, KindLine, id)
	return prev, nil
}

// Note primitives

// InsertNote attaches a note to a line. id 0 allocates a fresh id.
func (w *World) InsertNote(id, line EntityID, note model.Note) (EntityID, error) {
	rec, err := w.liveLine(line)
	if err != nil {
		return 0, err
	}
	note = note.Exact()
	if err := note.Validate(); err != nil {
		return 0, InvariantError{Reason: err.Error()}
	}
	id, err = w.claim(id)
	if err != nil {
		return 0, err
	}
	w.notes[id] = &noteRecord{note: note, line: line}
	rec.notes = insertID(rec.notes, id)
	w.emit(Added, KindNote, id)
	return id, nil
}

// DeleteNote removes a note and returns it with its owning line.
func (w *World) DeleteNote(id EntityID) (model.Note, EntityID, error) {
	rec, ok := w.notes[id]
	if !ok {
		return model.Note{}, 0, noteNotFound(id)
	}
	if l, ok := w.lines[rec.line]; ok {
		l.notes = removeID(l.notes, id)
	}
	delete(w.notes, id)
	delete(w.tags, id)
	w.emit(Removed, KindNote, id)
	return rec.note, rec.line, nil
}

func (w *World) SetNote(id EntityID, note model.Note) error {
	rec, ok := w.notes[id]
	if !ok {
		return noteNotFound(id)
	}
	note = note.Exact()
	if err := note.Validate(); err != nil {
		return InvariantError{Reason: err.Error()}
	}
	rec.note = note
	w.emit(Mutated, KindNote, id)
	return nil
}

// Event primitives

func (w *World) InsertEvent(id, line EntityID, event model.LineEvent) (EntityID, error) {
	rec, err := w.liveLine(line)
	if err != nil {
		return 0, err
	}
	event = event.Exact()
	if err := event.Validate(); err != nil {
		return 0, InvariantError{Reason: err.Error()}
	}
	id, err = w.claim(id)
	if err != nil {
		return 0, err
	}
	w.events[id] = &eventRecord{event: event, line: line}
	rec.events = insertID(rec.events, id)
	w.emit(Added, KindEvent, id)
	return id, nil
}

func (w *World) DeleteEvent(id EntityID) (model.LineEvent, EntityID, error) {
	rec, ok := w.events[id]
	if !ok {
		return model.LineEvent{}, 0, eventNotFound(id)
	}
	if l, ok := w.lines[rec.line]; ok {
		l.events = removeID(l.events, id)
	}
	delete(w.events, id)
	delete(w.tags, id)
	w.emit(Removed, KindEvent, id)
	return rec.event, rec.line, nil
}

func (w *World) SetEvent(id EntityID, event model.LineEvent) error {
	rec, ok := w.events[id]
	if !ok {
		return eventNotFound(id)
	}
	event = event.Exact()
	if err := event.Validate(); err != nil {
		return InvariantError{Reason: err.Error()}
	}
	rec.event = event
	w.emit(Mutated, KindEvent, id)
	return nil
}

// SelectedLine is the line that receives pastes and new notes when no timeline column
// says otherwise. It may point at a shell while a RemoveLine is on the undo stack.
func (w *World) SelectedLine() EntityID { return w.selectedLine }

func (w *World) SetSelectedLine(id EntityID) { w.selectedLine = id }
