package edit

import (
	"errors"
	"reflect"
	"testing"

	"phichain/internal/chart"
	"phichain/internal/model"
)

func newWorldWithLine(t *testing.T) (*chart.World, chart.EntityID) {
	t.Helper()
	w := chart.New()
	id, err := w.SpawnLine(0, model.DefaultLine())
	if err != nil {
		t.Fatalf("SpawnLine: %v", err)
	}
	return w, id
}

func tap(beat int64) model.Note {
	return model.NewNote(model.NoteTap, model.BeatFromInt(beat), 0)
}

func TestHistory_CreateUndoRedoNote(t *testing.T) {
	w, l := newWorldWithLine(t)
	h := NewHistory(0)

	cmd := NewCreateNote(l, model.NewNote(model.NoteTap, model.NewBeat(1, 0, 1), 0))
	if err := h.Do(w, cmd); err != nil {
		t.Fatalf("Do: %v", err)
	}
	notes := w.NotesOf(l)
	if len(notes) != 1 {
		t.Fatalf("expected one note, got %d", len(notes))
	}
	before, _ := w.Note(notes[0])
	if !before.Beat.Equal(model.BeatFromInt(1)) {
		t.Fatalf("note beat = %s", before.Beat)
	}

	if err := h.Undo(w); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if len(w.NotesOf(l)) != 0 {
		t.Fatalf("expected zero notes after undo")
	}

	if err := h.Redo(w); err != nil {
		t.Fatalf("Redo: %v", err)
	}
	after := w.NotesOf(l)
	if !reflect.DeepEqual(after, notes) {
		t.Fatalf("redo should restore id %v, got %v", notes, after)
	}
	got, _ := w.Note(after[0])
	if !got.Equal(before) {
		t.Fatalf("redo changed the note: %+v vs %+v", got, before)
	}
}

func TestHistory_RemoveLineKeepsIdentity(t *testing.T) {
	w, parent := newWorldWithLine(t)
	h := NewHistory(0)

	create := NewCreateLine()
	if err := h.Do(w, create); err != nil {
		t.Fatalf("Do: %v", err)
	}
	l := create.Line
	if err := h.Do(w, NewMoveLineAsChild(l, parent)); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if err := h.Do(w, NewSequence(
		NewCreateNote(l, tap(1)),
		NewCreateNote(l, model.NewHold(model.BeatFromInt(2), model.BeatFromInt(1), 50)),
		NewCreateEvent(l, model.LineEvent{Kind: model.EventY, StartBeat: model.BeatFromInt(0), EndBeat: model.BeatFromInt(4), EndValue: 100, Easing: model.Linear()}),
	)); err != nil {
		t.Fatalf("Do: %v", err)
	}
	w.SetSelectedLine(l)
	before := w.Export()
	notes := w.NotesOf(l)

	if err := h.Do(w, NewRemoveLine(l)); err != nil {
		t.Fatalf("RemoveLine: %v", err)
	}
	if w.SelectedLine() != l {
		t.Fatalf("selected line = %d, want %d", w.SelectedLine(), l)
	}
	if len(w.NotesOf(l)) != 0 || len(w.EventsOf(l)) != 0 {
		t.Fatalf("removed line should be empty")
	}

	if err := h.Undo(w); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if w.SelectedLine() != l {
		t.Fatalf("selected line = %d after undo", w.SelectedLine())
	}
	if p, _ := w.Parent(l); p != parent {
		t.Fatalf("parent = %d, want %d", p, parent)
	}
	if !reflect.DeepEqual(w.NotesOf(l), notes) || len(w.EventsOf(l)) != 1 {
		t.Fatalf("notes/events not restored")
	}
	if !reflect.DeepEqual(w.Export(), before) {
		t.Fatalf("undo did not restore the chart")
	}
}

func TestHistory_SaveMarker(t *testing.T) {
	w, l := newWorldWithLine(t)
	h := NewHistory(0)
	if h.IsDirty() {
		t.Fatalf("new history should be clean")
	}
	if err := h.Do(w, NewCreateNote(l, tap(1))); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if !h.IsDirty() {
		t.Fatalf("expected dirty after do")
	}
	h.MarkSaved()
	if h.IsDirty() {
		t.Fatalf("expected clean after save")
	}
	if err := h.Undo(w); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if !h.IsDirty() {
		t.Fatalf("expected dirty after undo")
	}
	if err := h.Redo(w); err != nil {
		t.Fatalf("Redo: %v", err)
	}
	if h.IsDirty() {
		t.Fatalf("expected clean after redo")
	}
}

func TestHistory_SaveMarkerUnreachableAfterBranch(t *testing.T) {
	w, l := newWorldWithLine(t)
	h := NewHistory(0)
	for i := int64(1); i <= 2; i++ {
		if err := h.Do(w, NewCreateNote(l, tap(i))); err != nil {
			t.Fatalf("Do: %v", err)
		}
	}
	h.MarkSaved()
	if err := h.Undo(w); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if err := h.Do(w, NewCreateNote(l, tap(5))); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if err := h.Undo(w); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if !h.IsDirty() {
		t.Fatalf("saved state was discarded with the redo list; must stay dirty")
	}
}

func TestHistory_LimitEvictsOldest(t *testing.T) {
	w, l := newWorldWithLine(t)
	h := NewHistory(2)
	h.MarkSaved()
	for i := int64(1); i <= 3; i++ {
		if err := h.Do(w, NewCreateNote(l, tap(i))); err != nil {
			t.Fatalf("Do: %v", err)
		}
	}
	if done, _ := h.Len(); done != 2 {
		t.Fatalf("done = %d, want 2", done)
	}
	for h.CanUndo() {
		if err := h.Undo(w); err != nil {
			t.Fatalf("Undo: %v", err)
		}
	}
	if len(w.NotesOf(l)) != 1 {
		t.Fatalf("evicted command must stay applied, notes = %d", len(w.NotesOf(l)))
	}
	if !h.IsDirty() {
		t.Fatalf("state before the evicted command is unreachable; must be dirty")
	}
	if err := h.Undo(w); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("expected ErrNothingToUndo, got %v", err)
	}

	h.MarkSaved()
	if h.IsDirty() {
		t.Fatalf("marking the bottom state saved should be clean")
	}
}

func TestHistory_FailedDoLeavesStackUntouched(t *testing.T) {
	w, l := newWorldWithLine(t)
	h := NewHistory(0)
	if err := h.Do(w, NewCreateNote(l, tap(1))); err != nil {
		t.Fatalf("Do: %v", err)
	}
	bad := NewCreateNote(l, model.NewHold(model.BeatFromInt(1), model.BeatFromInt(0), 0))
	var inv chart.InvariantError
	if err := h.Do(w, bad); !errors.As(err, &inv) {
		t.Fatalf("expected InvariantError, got %v", err)
	}
	if done, redo := h.Len(); done != 1 || redo != 0 {
		t.Fatalf("stack changed: done=%d redo=%d", done, redo)
	}
	if len(w.NotesOf(l)) != 1 {
		t.Fatalf("world changed")
	}
}

func TestHistory_UndoNotFoundKeepsStacksConsistent(t *testing.T) {
	w, l := newWorldWithLine(t)
	h := NewHistory(0)
	cmd := NewCreateNote(l, tap(1))
	if err := h.Do(w, cmd); err != nil {
		t.Fatalf("Do: %v", err)
	}
	// Remove the note behind the stack's back.
	if _, _, err := w.DeleteNote(cmd.ID); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	var nf chart.NotFoundError
	if err := h.Undo(w); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if done, redo := h.Len(); done != 1 || redo != 0 {
		t.Fatalf("failed undo must leave the command on the done list: done=%d redo=%d", done, redo)
	}
}

func TestMoveLineAsChild_RejectsCycle(t *testing.T) {
	w, a := newWorldWithLine(t)
	h := NewHistory(0)
	create := NewCreateLine()
	if err := h.Do(w, create); err != nil {
		t.Fatalf("Do: %v", err)
	}
	b := create.Line
	if err := h.Do(w, NewMoveLineAsChild(b, a)); err != nil {
		t.Fatalf("Do: %v", err)
	}
	var inv chart.InvariantError
	if err := h.Do(w, NewMoveLineAsChild(a, b)); !errors.As(err, &inv) {
		t.Fatalf("expected InvariantError, got %v", err)
	}
	if err := h.Do(w, NewMoveLineAsChild(a, a)); !errors.As(err, &inv) {
		t.Fatalf("expected InvariantError for self-parent, got %v", err)
	}
	if err := h.Undo(w); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if p, _ := w.Parent(b); p != 0 {
		t.Fatalf("undo should detach b, parent = %d", p)
	}
}
