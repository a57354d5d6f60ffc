package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"phichain/internal/action"
	"phichain/internal/editor"
	"phichain/internal/model"
	"phichain/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

func TestChordFromKey(t *testing.T) {
	tests := []struct {
		msg  tea.KeyMsg
		want action.Hotkey
	}{
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}, action.Hotkey{Key: "q"}},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'Z'}}, action.Hotkey{Key: "z", Mods: action.Shift}},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}, Alt: true}, action.Hotkey{Key: "x", Mods: action.Alt}},
		{tea.KeyMsg{Type: tea.KeyCtrlS}, action.MustHotkey("ctrl+s")},
		{tea.KeyMsg{Type: tea.KeyShiftTab}, action.MustHotkey("shift+tab")},
		{tea.KeyMsg{Type: tea.KeyEsc}, action.Hotkey{Key: "escape"}},
		{tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, action.Hotkey{Key: "space"}},
		{tea.KeyMsg{Type: tea.KeyDelete}, action.Hotkey{Key: "delete"}},
		{tea.KeyMsg{Type: tea.KeyF3}, action.Hotkey{Key: "f3"}},
	}
	for _, tt := range tests {
		got, ok := chordFromKey(tt.msg)
		if !ok || got != tt.want {
			t.Fatalf("chordFromKey(%q) = %+v, %v; want %+v", tt.msg.String(), got, ok, tt.want)
		}
	}
}

func newLoadedModel(t *testing.T) (appModel, *editor.Editor) {
	t.Helper()
	t.Setenv("PHICHAIN_CONFIG_DIR", t.TempDir())
	src := t.TempDir()
	music := filepath.Join(src, "a.mp3")
	art := filepath.Join(src, "b.jpg")
	for _, p := range []string{music, art} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	root := filepath.Join(t.TempDir(), "p")
	if _, err := store.CreateProject(root, music, art, model.ProjectMeta{Name: "Demo"}); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	toasts := &editor.Toasts{}
	ed := editor.New(editor.Options{Settings: store.DefaultSettings(), Notifier: toasts})
	if err := ed.LoadProject(context.Background(), root); err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	m := newModel(ed, toasts)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 33})
	return next.(appModel), ed
}

func TestModel_KeysDriveEditorAndQuitConfirms(t *testing.T) {
	m, ed := newLoadedModel(t)
	ed.CursorX, ed.CursorY = 100, 510

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	m = next.(appModel)
	if ed.World.NoteCount() != 1 {
		t.Fatalf("q should place a tap note")
	}
	if view := m.View(); !strings.Contains(view, "Demo*") {
		t.Fatalf("view should show the dirty title:\n%s", view)
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlQ})
	m = next.(appModel)
	if cmd != nil || !m.confirmQuit {
		t.Fatalf("first ctrl+q with unsaved changes must ask for confirmation")
	}
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlQ})
	if cmd == nil {
		t.Fatalf("second ctrl+q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestModel_MouseRegionSelect(t *testing.T) {
	m, ed := newLoadedModel(t)
	ed.CursorX, ed.CursorY = 100, 660
	if err := ed.PlaceNoteAtCursor(model.NoteTap); err != nil {
		t.Fatalf("place: %v", err)
	}

	next, _ := m.Update(tea.MouseMsg{X: 0, Y: 20, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = next.(appModel)
	next, _ = m.Update(tea.MouseMsg{X: 40, Y: 24, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m = next.(appModel)
	_, _ = m.Update(tea.MouseMsg{X: 40, Y: 24, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	if got := ed.Status().SelectedNotes; got != 1 {
		t.Fatalf("selected notes = %d", got)
	}
}
