package edit

import (
	"errors"

	"phichain/internal/chart"
)

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// History is the undo/redo stack.
//
// The save marker remembers which command was on top of the done list when the chart was
// last saved. Comparing command identity rather than a depth keeps the marker honest when
// the redo list is discarded or the oldest entries are evicted: a state that can no longer
// be reached never compares equal again.
type History struct {
	done  []*Command
	redo  []*Command
	limit int

	// base is the newest evicted command: the state below done[0].
	base  *Command
	saved *Command
}

// NewHistory returns an empty, clean stack. limit <= 0 means unbounded.
func NewHistory(limit int) *History {
	if limit < 0 {
		limit = 0
	}
	return &History{limit: limit}
}

// Do applies c and pushes it. A failing command leaves the world and both lists untouched.
func (h *History) Do(w *chart.World, c *Command) error {
	if c.Empty() {
		return nil
	}
	if err := c.Apply(w); err != nil {
		return err
	}
	h.done = append(h.done, c)
	h.redo = nil
	if h.limit > 0 && len(h.done) > h.limit {
		n := len(h.done) - h.limit
		h.base = h.done[n-1]
		h.done = append([]*Command(nil), h.done[n:]...)
	}
	return nil
}

// Undo reverts the newest command. If the command cannot be undone it stays on the
// done list and the error is returned.
func (h *History) Undo(w *chart.World) error {
	if len(h.done) == 0 {
		return ErrNothingToUndo
	}
	c := h.done[len(h.done)-1]
	if err := c.Undo(w); err != nil {
		return err
	}
	h.done = h.done[:len(h.done)-1]
	h.redo = append(h.redo, c)
	return nil
}

func (h *History) Redo(w *chart.World) error {
	if len(h.redo) == 0 {
		return ErrNothingToRedo
	}
	c := h.redo[len(h.redo)-1]
	if err := c.Apply(w); err != nil {
		return err
	}
	h.redo = h.redo[:len(h.redo)-1]
	h.done = append(h.done, c)
	return nil
}

func (h *History) top() *Command {
	if len(h.done) == 0 {
		return h.base
	}
	return h.done[len(h.done)-1]
}

// MarkSaved records the current state as the one on disk.
func (h *History) MarkSaved() { h.saved = h.top() }

// IsDirty reports whether the current state differs from the last saved one.
func (h *History) IsDirty() bool { return h.top() != h.saved }

func (h *History) CanUndo() bool { return len(h.done) > 0 }

func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Peek returns the newest done command, or nil.
func (h *History) Peek() *Command {
	if len(h.done) == 0 {
		return nil
	}
	return h.done[len(h.done)-1]
}

func (h *History) Len() (done, redo int) { return len(h.done), len(h.redo) }

// Clear empties both lists and marks the result clean, as after loading a project.
func (h *History) Clear() {
	h.done, h.redo = nil, nil
	h.base, h.saved = nil, nil
}
