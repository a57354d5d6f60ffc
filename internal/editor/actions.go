package editor

import (
	"errors"
	"log"
	"slices"

	"phichain/internal/action"
	"phichain/internal/chart"
	"phichain/internal/edit"
	"phichain/internal/model"
	"phichain/internal/timeline"
)

// Scroll and cursor steps used by the movement actions.
const (
	scrollPixels = 30
	cursorPixels = 20
)

type builtin struct {
	id      string
	title   string
	hotkey  string
	context action.Context
	run     func(e *Editor) error
}

var builtins = []builtin{
	{"phichain.project.save", "Save project", "ctrl+s", action.Global, (*Editor).Save},
	{"phichain.project.unload", "Unload project", "ctrl+w", action.Global, func(e *Editor) error { e.Unload(); return nil }},
	{"phichain.undo", "Undo", "ctrl+z", action.Global, ignoreEmpty((*Editor).Undo, edit.ErrNothingToUndo)},
	{"phichain.redo", "Redo", "ctrl+shift+z", action.Global, ignoreEmpty((*Editor).Redo, edit.ErrNothingToRedo)},
	{"phichain.copy", "Copy selection", "ctrl+c", action.Timeline, (*Editor).CopySelected},
	{"phichain.cut", "Cut selection", "ctrl+x", action.Timeline, (*Editor).CutSelected},
	{"phichain.paste", "Paste at cursor", "ctrl+v", action.Timeline, (*Editor).PasteAtCursor},
	{"phichain.delete_selected", "Delete selection", "delete", action.Timeline, (*Editor).DeleteSelected},
	{"phichain.select_all", "Select all in line", "ctrl+a", action.Timeline, (*Editor).SelectAll},
	{"phichain.clear_selection", "Clear selection", "escape", action.Timeline, func(e *Editor) error { e.CancelPlacement(); e.ClearSelection(); return nil }},
	{"phichain.create_line", "Create line", "ctrl+n", action.Global, (*Editor).CreateLine},
	{"phichain.remove_line", "Remove selected line", "ctrl+shift+d", action.Global, (*Editor).RemoveSelectedLine},
	{"phichain.line.next", "Select next line", "tab", action.Global, func(e *Editor) error { e.cycleLine(1); return nil }},
	{"phichain.line.previous", "Select previous line", "shift+tab", action.Global, func(e *Editor) error { e.cycleLine(-1); return nil }},
	{"phichain.place.tap", "Place tap note", "q", action.Timeline, placeNote(model.NoteTap)},
	{"phichain.place.drag", "Place drag note", "w", action.Timeline, placeNote(model.NoteDrag)},
	{"phichain.place.hold", "Place hold note", "e", action.Timeline, placeNote(model.NoteHold)},
	{"phichain.place.flick", "Place flick note", "r", action.Timeline, placeNote(model.NoteFlick)},
	{"phichain.place.event", "Place event", "t", action.Timeline, (*Editor).PlaceEventAtCursor},
	{"phichain.timeline.scroll_up", "Scroll later", "up", action.Timeline, scroll(scrollPixels)},
	{"phichain.timeline.scroll_down", "Scroll earlier", "down", action.Timeline, scroll(-scrollPixels)},
	{"phichain.timeline.cursor_left", "Cursor left", "left", action.Timeline, moveCursor(-cursorPixels, 0)},
	{"phichain.timeline.cursor_right", "Cursor right", "right", action.Timeline, moveCursor(cursorPixels, 0)},
	{"phichain.timeline.cursor_up", "Cursor up", "shift+up", action.Timeline, moveCursor(0, -cursorPixels)},
	{"phichain.timeline.cursor_down", "Cursor down", "shift+down", action.Timeline, moveCursor(0, cursorPixels)},
	{"phichain.play_pause", "Play / pause", "space", action.Global, func(e *Editor) error { e.TogglePlay(); return nil }},
	{"phichain.debug", "Toggle debug info", "f3", action.Global, func(e *Editor) error { e.Debug = !e.Debug; return nil }},
}

func registerBuiltins(e *Editor) {
	for _, b := range builtins {
		run := b.run
		e.Actions.RegisterWithHotkey(b.id, b.title, func() error { return run(e) }, action.Binding{
			Hotkey:  action.MustHotkey(b.hotkey),
			Context: b.context,
		})
	}
}

func ignoreEmpty(fn func(*Editor) error, empty error) func(*Editor) error {
	return func(e *Editor) error {
		if err := fn(e); err != nil && !errors.Is(err, empty) {
			return err
		}
		return nil
	}
}

func placeNote(kind model.NoteKind) func(*Editor) error {
	return func(e *Editor) error { return e.PlaceNoteAtCursor(kind) }
}

func scroll(px float32) func(*Editor) error {
	return func(e *Editor) error {
		t := e.Timeline.YToTime(e.Timeline.TimeToY(e.Timeline.Current) - px)
		e.audio.Seek(max(0, t+float64(e.World.Offset)))
		e.syncTime()
		return nil
	}
}

func moveCursor(dx, dy float32) func(*Editor) error {
	return func(e *Editor) error {
		e.CursorX = min(max(0, e.CursorX+dx), e.Timeline.Width)
		e.CursorY = min(max(0, e.CursorY+dy), e.Timeline.Height)
		return nil
	}
}

func (e *Editor) TogglePlay() {
	if e.audio.Playing() {
		e.audio.Pause()
	} else {
		e.audio.Play()
	}
}

// Selection

func (e *Editor) Selected() []chart.EntityID { return e.World.Tagged(chart.Selected) }

func (e *Editor) ClearSelection() { e.World.ClearTag(chart.Selected) }

// SelectAll selects every note and event of the selected line.
func (e *Editor) SelectAll() error {
	line := e.World.SelectedLine()
	if !e.World.HasLine(line) {
		return nil
	}
	e.ClearSelection()
	for _, id := range e.World.NotesOf(line) {
		e.World.AddTag(id, chart.Selected)
	}
	for _, id := range e.World.EventsOf(line) {
		e.World.AddTag(id, chart.Selected)
	}
	return nil
}

// SelectRegion replaces the selection with the entities under r in the column at r's
// left edge.
func (e *Editor) SelectRegion(r timeline.Rect) []chart.EntityID {
	e.ClearSelection()
	c, ok := e.columnAt(r.MinX)
	if !ok {
		return nil
	}
	ids := e.Timeline.Select(e.World, c, r)
	for _, id := range ids {
		e.World.AddTag(id, chart.Selected)
	}
	return ids
}

func (e *Editor) CopySelected() error {
	return e.Clipboard.Copy(e.World, e.Selected())
}

func (e *Editor) CutSelected() error {
	cmd, err := e.Clipboard.Cut(e.World, e.Selected())
	if err != nil {
		return err
	}
	if cmd.Empty() {
		return nil
	}
	return e.Do(cmd)
}

// PasteAtCursor pastes the clipboard at the cursor. Outside the viewport it does nothing.
func (e *Editor) PasteAtCursor() error {
	selected := e.World.SelectedLine()
	if !e.World.HasLine(selected) {
		selected = 0
	}
	line, beat, ok := e.Timeline.PasteTarget(e.Columns(), selected, e.CursorX, e.CursorY)
	if !ok {
		return nil
	}
	cmd := e.Clipboard.PasteAt(line, beat)
	if cmd.Empty() {
		return nil
	}
	return e.Do(cmd)
}

// DeleteSelected removes the selected notes and events as one command.
func (e *Editor) DeleteSelected() error {
	cmd := edit.NewRemoveEntities(e.World, e.Selected())
	if cmd.Empty() {
		return nil
	}
	return e.Do(cmd)
}

// Lines

func (e *Editor) CreateLine() error {
	cmd := edit.NewCreateLine()
	if err := e.Do(cmd); err != nil {
		return err
	}
	e.World.SetSelectedLine(cmd.Line)
	return nil
}

func (e *Editor) RemoveSelectedLine() error {
	line := e.World.SelectedLine()
	if !e.World.HasLine(line) {
		return nil
	}
	return e.Do(edit.NewRemoveLine(line))
}

func (e *Editor) cycleLine(step int) {
	lines := e.World.Lines()
	if len(lines) == 0 {
		return
	}
	i := slices.Index(lines, e.World.SelectedLine())
	i = ((i+step)%len(lines) + len(lines)) % len(lines)
	e.World.SetSelectedLine(lines[i])
}

// Placement

func (e *Editor) PlaceNoteAtCursor(kind model.NoteKind) error {
	if kind == model.NoteHold && e.placing.Valid() {
		return e.commitPlacement()
	}
	c, ok := e.columnAt(e.CursorX)
	if !ok || c.Kind != timeline.NoteColumn || !e.Timeline.Contains(e.CursorX, e.CursorY) {
		return nil
	}
	note := e.Timeline.PlaceNote(c, kind, e.CursorX, e.CursorY)
	if kind == model.NoteHold {
		return e.beginPlacement(c.Line, note)
	}
	return e.Do(edit.NewCreateNote(c.Line, note))
}

// Holds are placed in two steps. The first press spawns a Pending preview whose end
// follows the cursor on every Tick; the second press replaces it with a committed note.

func (e *Editor) beginPlacement(line chart.EntityID, note model.Note) error {
	id, err := e.World.InsertNote(0, line, note)
	if err != nil {
		return err
	}
	e.World.AddTag(id, chart.Pending)
	e.placing = id
	return nil
}

// Placing returns the Pending hold preview, if any.
func (e *Editor) Placing() (chart.EntityID, bool) {
	return e.placing, e.placing.Valid()
}

func (e *Editor) followPlacement() {
	if !e.placing.Valid() {
		return
	}
	n, err := e.World.Note(e.placing)
	if err != nil {
		e.placing = 0
		return
	}
	end := e.Timeline.Attach(e.Timeline.YToBeat(e.CursorY))
	if minEnd := n.Beat.Add(e.Timeline.Step()); end.Less(minEnd) {
		end = minEnd
	}
	if end.Equal(n.EndBeat()) {
		return
	}
	n.SetEndBeat(end)
	if err := e.World.SetNote(e.placing, n); err != nil {
		log.Printf("hold preview %d: %v", e.placing, err)
	}
}

func (e *Editor) commitPlacement() error {
	e.followPlacement()
	id := e.placing
	e.placing = 0
	note, line, err := e.World.DeleteNote(id)
	if err != nil {
		return err
	}
	return e.Do(edit.NewCreateNote(line, note))
}

// CancelPlacement drops the Pending hold preview without recording anything.
func (e *Editor) CancelPlacement() {
	id := e.placing
	e.placing = 0
	if id.Valid() {
		if _, _, err := e.World.DeleteNote(id); err != nil {
			log.Printf("drop hold preview %d: %v", id, err)
		}
	}
}

func (e *Editor) PlaceEventAtCursor() error {
	c, ok := e.columnAt(e.CursorX)
	if !ok || c.Kind != timeline.EventColumn || !e.Timeline.Contains(e.CursorX, e.CursorY) {
		return nil
	}
	ev := e.Timeline.PlaceEvent(c, e.CursorX, e.CursorY)
	line, err := e.World.Line(c.Line)
	if err != nil {
		return err
	}
	ev.StartValue = line.Property(ev.Kind)
	ev.EndValue = ev.StartValue
	return e.Do(edit.NewCreateEvent(c.Line, ev))
}

// Hold resizing

// BeginDrag starts a hold resize if (x, y) is on a grab zone of a hold in the note column.
func (e *Editor) BeginDrag(x, y float32) bool {
	c, ok := e.columnAt(x)
	if !ok || c.Kind != timeline.NoteColumn {
		return false
	}
	id, ok := e.Timeline.HitNote(e.World, c, x, y)
	if !ok {
		return false
	}
	n, err := e.World.Note(id)
	if err != nil || !n.IsHold() {
		return false
	}
	zone := timeline.HoldZoneAt(e.Timeline.NoteRect(c, n), y)
	if zone == timeline.ZoneNone {
		return false
	}
	d, err := timeline.BeginHoldDrag(e.World, id, zone)
	if err != nil {
		return false
	}
	e.drag = d
	return true
}

func (e *Editor) Dragging() bool { return e.drag != nil }

func (e *Editor) DragBy(dy float32) error {
	if e.drag == nil {
		return nil
	}
	return e.drag.Drag(&e.Timeline, e.World, dy)
}

// EndDrag attaches the dragged endpoint and records at most one EditNote.
func (e *Editor) EndDrag() error {
	d := e.drag
	e.drag = nil
	if d == nil {
		return nil
	}
	cmd, err := d.Stop(&e.Timeline, e.World)
	if err != nil || cmd == nil {
		return err
	}
	return e.Do(cmd)
}
