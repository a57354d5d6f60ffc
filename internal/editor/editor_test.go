package editor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"phichain/internal/action"
	"phichain/internal/chart"
	"phichain/internal/model"
	"phichain/internal/store"
	"phichain/internal/timeline"
)

func newProject(t *testing.T) string {
	t.Helper()
	src := t.TempDir()
	music := filepath.Join(src, "song.ogg")
	art := filepath.Join(src, "cover.png")
	for _, p := range []string{music, art} {
		if err := os.WriteFile(p, []byte("asset"), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
	root := filepath.Join(t.TempDir(), "project")
	if _, err := store.CreateProject(root, music, art, model.ProjectMeta{Name: "Test Song"}); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	return root
}

func newEditor(t *testing.T, settings store.Settings) (*Editor, *Toasts) {
	t.Helper()
	t.Setenv("PHICHAIN_CONFIG_DIR", t.TempDir())
	toasts := &Toasts{}
	e := New(Options{Settings: settings, Notifier: toasts})
	e.Resize(800, 900)
	return e, toasts
}

func loaded(t *testing.T) (*Editor, *Toasts, string) {
	t.Helper()
	e, toasts := newEditor(t, store.DefaultSettings())
	root := newProject(t)
	if err := e.LoadProject(context.Background(), root); err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	return e, toasts, root
}

func press(t *testing.T, e *Editor, chord string) {
	t.Helper()
	h := action.MustHotkey(chord)
	e.Input.Tap(h.Key, h.Mods)
	if err := e.Tick(); err != nil {
		t.Fatalf("Tick(%s): %v", chord, err)
	}
}

func TestEditor_PlaceUndoRedoSave(t *testing.T) {
	e, toasts, root := loaded(t)
	if e.IsDirty() {
		t.Fatalf("fresh project should be clean")
	}
	line := e.World.SelectedLine()
	if !line.Valid() {
		t.Fatalf("first line should be selected after load")
	}

	e.CursorX, e.CursorY = 100, 510
	press(t, e, "q")
	notes := e.World.NotesOf(line)
	if len(notes) != 1 {
		t.Fatalf("notes = %d", len(notes))
	}
	n, _ := e.World.Note(notes[0])
	if n.Kind != model.NoteTap || !n.Beat.Equal(model.BeatFromInt(2)) {
		t.Fatalf("placed %+v", n)
	}
	if !e.IsDirty() || e.Status().Title() != "Test Song*" {
		t.Fatalf("expected dirty, title %q", e.Status().Title())
	}

	press(t, e, "ctrl+z")
	if e.World.NoteCount() != 0 {
		t.Fatalf("undo left %d notes", e.World.NoteCount())
	}
	press(t, e, "ctrl+shift+z")
	if e.World.NoteCount() != 1 {
		t.Fatalf("redo should restore the note")
	}

	press(t, e, "ctrl+s")
	if e.IsDirty() {
		t.Fatalf("save should clear dirty")
	}
	if last, _ := toasts.Last(); last.Error || last.Message != "Project saved" {
		t.Fatalf("last toast = %+v", last)
	}
	p, err := store.LoadProject(root)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := len(p.Chart.Lines[0].Notes); got != 1 {
		t.Fatalf("saved notes = %d", got)
	}
}

func TestEditor_CutPasteShiftsToCursor(t *testing.T) {
	e, _, _ := loaded(t)
	line := e.World.SelectedLine()
	e.CursorX = 100
	for _, y := range []float32{660, 510} { // beats 1 and 2
		e.CursorY = y
		if err := e.PlaceNoteAtCursor(model.NoteTap); err != nil {
			t.Fatalf("place: %v", err)
		}
	}
	press(t, e, "ctrl+a")
	if got := e.Status().SelectedNotes; got != 2 {
		t.Fatalf("selected = %d", got)
	}
	press(t, e, "ctrl+x")
	if e.World.NoteCount() != 0 {
		t.Fatalf("cut should remove notes")
	}

	e.CursorY = 210 // beat 4
	press(t, e, "ctrl+v")
	var beats []string
	for _, id := range e.World.NotesOf(line) {
		n, _ := e.World.Note(id)
		beats = append(beats, n.Beat.String())
	}
	if len(beats) != 2 || beats[0] != "4" || beats[1] != "5" {
		t.Fatalf("pasted beats = %v", beats)
	}

	e.CursorX = 5000
	press(t, e, "ctrl+v")
	if e.World.NoteCount() != 2 {
		t.Fatalf("paste outside the viewport must do nothing")
	}
}

func TestEditor_DeleteSelectedIsOneCommand(t *testing.T) {
	e, _, _ := loaded(t)
	e.CursorX = 100
	for _, y := range []float32{660, 510, 360} {
		e.CursorY = y
		if err := e.PlaceNoteAtCursor(model.NoteDrag); err != nil {
			t.Fatalf("place: %v", err)
		}
	}
	e.CursorX, e.CursorY = 700, 510
	if err := e.PlaceEventAtCursor(); err != nil {
		t.Fatalf("place event: %v", err)
	}
	if err := e.SelectAll(); err != nil {
		t.Fatalf("SelectAll: %v", err)
	}
	press(t, e, "delete")
	if e.World.NoteCount() != 0 || e.World.EventCount() != 0 {
		t.Fatalf("delete left %d notes, %d events", e.World.NoteCount(), e.World.EventCount())
	}
	press(t, e, "ctrl+z")
	if e.World.NoteCount() != 3 || e.World.EventCount() != 1 {
		t.Fatalf("one undo should restore everything")
	}
}

func TestEditor_HoldDrag(t *testing.T) {
	e, _, _ := loaded(t)
	line := e.World.SelectedLine()
	id, err := e.World.InsertNote(0, line, model.NewHold(model.BeatFromInt(1), model.BeatFromInt(2), 0))
	if err != nil {
		t.Fatalf("InsertNote: %v", err)
	}
	x := e.Columns()[0].CanvasToX(0)
	if !e.BeginDrag(x, 658) {
		t.Fatalf("expected drag to start on the bottom zone")
	}
	if err := e.DragBy(-75); err != nil {
		t.Fatalf("DragBy: %v", err)
	}
	if err := e.EndDrag(); err != nil {
		t.Fatalf("EndDrag: %v", err)
	}
	n, _ := e.World.Note(id)
	if !n.Beat.Equal(model.NewBeat(1, 1, 2)) || !n.HoldBeat.Equal(model.NewBeat(1, 1, 2)) {
		t.Fatalf("after drag: %s + %s", n.Beat, n.HoldBeat)
	}
	if done, _ := e.History.Len(); done != 1 {
		t.Fatalf("history = %d, want one EditNote", done)
	}
	if e.BeginDrag(x, 500) {
		t.Fatalf("middle of a hold is not a grab zone")
	}
}

func TestEditor_TempoEditsMarkDirty(t *testing.T) {
	e, _, _ := loaded(t)
	if err := e.InsertBpm(model.BeatFromInt(4), 180); err != nil {
		t.Fatalf("InsertBpm: %v", err)
	}
	if !e.IsDirty() {
		t.Fatalf("tempo edit should mark dirty")
	}
	if e.History.CanUndo() {
		t.Fatalf("tempo edits are not in the history")
	}
	var inv chart.InvariantError
	if err := e.RemoveBpm(model.BeatFromInt(0)); err == nil {
		t.Fatalf("removing the first tempo point must fail")
	} else if !errors.As(err, &inv) {
		t.Fatalf("expected InvariantError, got %v", err)
	}
	if err := e.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if e.IsDirty() {
		t.Fatalf("save should clear tempo dirtiness")
	}
}

func TestEditor_LoadFailureKeepsChart(t *testing.T) {
	e, toasts, _ := loaded(t)
	line := e.World.SelectedLine()
	e.CursorX, e.CursorY = 100, 510
	press(t, e, "q")
	before := e.World

	if err := e.LoadProject(context.Background(), filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatalf("expected error")
	}
	if e.World != before || len(e.World.NotesOf(line)) != 1 {
		t.Fatalf("failed load replaced the chart")
	}
	if last, ok := toasts.Last(); !ok || !last.Error {
		t.Fatalf("expected an error toast, got %+v", last)
	}
}

func TestEditor_RecentAndUnload(t *testing.T) {
	e, _ := newEditor(t, store.DefaultSettings())
	ctx := context.Background()
	recent, err := store.OpenRecentAt(ctx, filepath.Join(t.TempDir(), "recent.sqlite"))
	if err != nil {
		t.Fatalf("OpenRecentAt: %v", err)
	}
	defer recent.Close()
	e.recent = recent

	root := newProject(t)
	if err := e.LoadProject(ctx, root); err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	list, err := recent.List(ctx)
	if err != nil || len(list) != 1 || list[0].Name != "Test Song" {
		t.Fatalf("recent = %+v, %v", list, err)
	}

	var changes int
	unsub := e.Subscribe(func(chart.Change) { changes++ })
	defer unsub()
	press(t, e, "ctrl+n")
	if changes == 0 {
		t.Fatalf("subscriber saw no changes")
	}

	press(t, e, "ctrl+w")
	if e.Loaded() || e.World.LineCount() != 0 || e.IsDirty() {
		t.Fatalf("unload should reset the editor")
	}
	if err := e.Save(); err != ErrNoProject {
		t.Fatalf("save without project: %v", err)
	}

	if err := e.LoadProject(ctx, root); err != nil {
		t.Fatalf("reload: %v", err)
	}
	changes = 0
	press(t, e, "ctrl+n")
	if changes == 0 {
		t.Fatalf("subscription should survive a reload")
	}
}

func TestEditor_HotkeyOverrides(t *testing.T) {
	settings := store.DefaultSettings()
	settings.Hotkeys = map[string]string{"phichain.place.tap": "timeline:a", "phichain.debug": ""}
	e, _ := newEditor(t, settings)
	if err := e.LoadProject(context.Background(), newProject(t)); err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	e.CursorX, e.CursorY = 100, 510
	press(t, e, "q")
	if e.World.NoteCount() != 0 {
		t.Fatalf("old chord should no longer place notes")
	}
	press(t, e, "a")
	if e.World.NoteCount() != 1 {
		t.Fatalf("overridden chord should place a note")
	}
	press(t, e, "f3")
	if e.Debug {
		t.Fatalf("unbound debug action ran")
	}
}

func TestEditor_FocusGatesTimelineActions(t *testing.T) {
	e, _, _ := loaded(t)
	e.CursorX, e.CursorY = 100, 510
	e.Focus = action.Game
	press(t, e, "q")
	if e.World.NoteCount() != 0 {
		t.Fatalf("timeline action ran with game focus")
	}
	press(t, e, "space")
	if !e.Audio().Playing() {
		t.Fatalf("global action should run with game focus")
	}
}

func TestEditor_PlaybackMovesTimeline(t *testing.T) {
	e, _, _ := loaded(t)
	clock := e.Audio().(*SilentClock)
	press(t, e, "space")
	clock.Advance(1_500_000_000)
	if err := e.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if e.Timeline.Current != 1.5 || e.Status().Beat != "3" {
		t.Fatalf("current = %v, beat = %s", e.Timeline.Current, e.Status().Beat)
	}
	e.SetOffset(0.5)
	if e.ChartTime() != 1.0 || !e.IsDirty() {
		t.Fatalf("offset: chart time = %v", e.ChartTime())
	}

	e.SeekBeat(model.BeatFromInt(8))
	if !e.Timeline.Attach(e.CurrentBeat()).Equal(model.BeatFromInt(8)) || e.CurrentBeat().Value() != 8 {
		t.Fatalf("seek beat = %v", e.CurrentBeat().Value())
	}
}

func TestEditor_SelectRegion(t *testing.T) {
	e, _, _ := loaded(t)
	e.CursorX = 100
	for _, y := range []float32{660, 210} {
		e.CursorY = y
		if err := e.PlaceNoteAtCursor(model.NoteTap); err != nil {
			t.Fatalf("place: %v", err)
		}
	}
	got := e.SelectRegion(timeline.NewRect(0, 600, 400, 700))
	if len(got) != 1 || e.Status().SelectedNotes != 1 {
		t.Fatalf("region selected %v", got)
	}
	press(t, e, "escape")
	if len(e.Selected()) != 0 {
		t.Fatalf("escape should clear the selection")
	}
}

func TestEditor_HoldPlacementPreview(t *testing.T) {
	e, _, _ := loaded(t)
	line := e.World.SelectedLine()
	e.CursorX, e.CursorY = 100, 510 // beat 2
	press(t, e, "e")

	id, ok := e.Placing()
	if !ok || !e.World.HasTag(id, chart.Pending) {
		t.Fatalf("first press should spawn a pending preview")
	}
	if e.World.NoteCount() != 0 || e.IsDirty() {
		t.Fatalf("preview must not count as an edit")
	}

	e.CursorY = 210 // beat 4
	if err := e.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	n, _ := e.World.Note(id)
	if !n.EndBeat().Equal(model.BeatFromInt(4)) {
		t.Fatalf("preview end = %s, want 4", n.EndBeat())
	}
	if got := len(e.World.Export().Lines[0].Notes); got != 0 {
		t.Fatalf("preview was exported: %d notes", got)
	}
	press(t, e, "ctrl+a")
	if len(e.Selected()) != 0 {
		t.Fatalf("preview was selected")
	}

	e.CursorY = 800 // below the start
	if err := e.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	n, _ = e.World.Note(id)
	if !n.HoldBeat.Equal(e.Timeline.Step()) {
		t.Fatalf("preview should keep one grid step; hold = %s", n.HoldBeat)
	}

	e.CursorY = 210
	press(t, e, "e")
	if _, ok := e.Placing(); ok {
		t.Fatalf("second press should commit")
	}
	notes := e.World.NotesOf(line)
	if len(notes) != 1 || e.World.HasTag(notes[0], chart.Pending) {
		t.Fatalf("committed notes = %v", notes)
	}
	n, _ = e.World.Note(notes[0])
	if !n.Beat.Equal(model.BeatFromInt(2)) || !n.HoldBeat.Equal(model.BeatFromInt(2)) {
		t.Fatalf("committed %s + %s", n.Beat, n.HoldBeat)
	}
	if done, _ := e.History.Len(); done != 1 {
		t.Fatalf("history = %d, want one CreateNote", done)
	}
	press(t, e, "ctrl+z")
	if len(e.World.NotesOf(line)) != 0 {
		t.Fatalf("undo should remove the hold")
	}
}

func TestEditor_HoldPlacementCancels(t *testing.T) {
	e, _, _ := loaded(t)
	line := e.World.SelectedLine()
	e.CursorX, e.CursorY = 100, 510
	press(t, e, "e")
	press(t, e, "escape")
	if _, ok := e.Placing(); ok || len(e.World.NotesOf(line)) != 0 {
		t.Fatalf("escape should drop the preview")
	}

	press(t, e, "e")
	press(t, e, "q")
	if _, ok := e.Placing(); ok {
		t.Fatalf("another edit should drop the preview")
	}
	notes := e.World.NotesOf(line)
	if len(notes) != 1 {
		t.Fatalf("notes = %v", notes)
	}
	if n, _ := e.World.Note(notes[0]); n.Kind != model.NoteTap {
		t.Fatalf("remaining note = %+v", n)
	}
	if done, _ := e.History.Len(); done != 1 {
		t.Fatalf("history = %d", done)
	}
}

func TestEditor_RemovedLineTakesNoEdits(t *testing.T) {
	e, toasts, _ := loaded(t)
	e.CursorX, e.CursorY = 100, 510
	press(t, e, "q")
	press(t, e, "ctrl+a")
	press(t, e, "ctrl+c")
	press(t, e, "ctrl+shift+d")
	if e.World.LineCount() != 0 {
		t.Fatalf("line was not removed")
	}
	if cols := e.Columns(); len(cols) != 0 {
		t.Fatalf("removed line still has columns: %v", cols)
	}

	for _, chord := range []string{"ctrl+v", "q", "e", "t"} {
		press(t, e, chord)
	}
	if e.World.NoteCount() != 0 || e.World.EventCount() != 0 {
		t.Fatalf("edits landed on a removed line: %d notes, %d events", e.World.NoteCount(), e.World.EventCount())
	}
	if done, _ := e.History.Len(); done != 2 {
		t.Fatalf("history = %d, want place and remove only", done)
	}
	for _, it := range toasts.Items() {
		if it.Error {
			t.Fatalf("unexpected error toast %q", it.Message)
		}
	}

	press(t, e, "ctrl+z")
	if len(e.Columns()) != 2 || e.World.NoteCount() != 1 {
		t.Fatalf("undo should bring the line and its note back")
	}
}
