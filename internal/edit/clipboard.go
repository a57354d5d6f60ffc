package edit

import (
	"encoding/json"

	"phichain/internal/chart"
	"phichain/internal/model"

	"github.com/atotto/clipboard"
)

// Mirror is an external clipboard the editor clipboard copies itself to.
type Mirror interface {
	WriteAll(text string) error
	ReadAll() (string, error)
}

// SystemClipboard is the OS clipboard.
type SystemClipboard struct{}

func (SystemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

func (SystemClipboard) ReadAll() (string, error) { return clipboard.ReadAll() }

// clipboardPayload is what goes to the mirror. The marker keeps unrelated clipboard text
// from being pasted as notes.
type clipboardPayload struct {
	Phichain int               `json:"phichain_clipboard"`
	Notes    []model.Note      `json:"notes"`
	Events   []model.LineEvent `json:"events"`
}

// Clipboard holds copied notes and events by value, without their owning line.
type Clipboard struct {
	Notes  []model.Note
	Events []model.LineEvent

	mirror Mirror
}

// SetMirror enables copying to m; nil disables it.
func (c *Clipboard) SetMirror(m Mirror) { c.mirror = m }

func (c *Clipboard) Empty() bool { return len(c.Notes) == 0 && len(c.Events) == 0 }

// Copy replaces the buffer with the notes and events among selection. Other ids are
// ignored.
func (c *Clipboard) Copy(w *chart.World, selection []chart.EntityID) error {
	c.Notes, c.Events = nil, nil
	for _, id := range selection {
		if n, err := w.Note(id); err == nil {
			c.Notes = append(c.Notes, n)
			continue
		}
		if e, err := w.Event(id); err == nil {
			c.Events = append(c.Events, e)
		}
	}
	if c.mirror == nil {
		return nil
	}
	b, err := json.Marshal(clipboardPayload{Phichain: 1, Notes: c.Notes, Events: c.Events})
	if err != nil {
		return err
	}
	return c.mirror.WriteAll(string(b))
}

// Cut copies selection and returns the sequence removing it. The caller submits it.
func (c *Clipboard) Cut(w *chart.World, selection []chart.EntityID) (*Command, error) {
	if err := c.Copy(w, selection); err != nil {
		return nil, err
	}
	return NewRemoveEntities(w, selection), nil
}

// PasteAt returns the sequence creating the buffered notes and events on line, shifted so
// the earliest of them lands on beat. beat should already be attached to the grid.
func (c *Clipboard) PasteAt(line chart.EntityID, beat model.Beat) *Command {
	c.refreshFromMirror()
	if c.Empty() {
		return NewSequence()
	}
	minBeat, first := model.Beat{}, true
	for _, n := range c.Notes {
		if first || n.Beat.Less(minBeat) {
			minBeat, first = n.Beat, false
		}
	}
	for _, e := range c.Events {
		if first || e.StartBeat.Less(minBeat) {
			minBeat, first = e.StartBeat, false
		}
	}
	delta := beat.Exact().Sub(minBeat)

	cmds := make([]*Command, 0, len(c.Notes)+len(c.Events))
	for _, n := range c.Notes {
		n.Beat = n.Beat.Add(delta)
		cmds = append(cmds, NewCreateNote(line, n))
	}
	for _, e := range c.Events {
		cmds = append(cmds, NewCreateEvent(line, e.Shift(delta)))
	}
	return NewSequence(cmds...)
}

// refreshFromMirror adopts the mirror's content when it holds a copy from an editor.
func (c *Clipboard) refreshFromMirror() {
	if c.mirror == nil {
		return
	}
	text, err := c.mirror.ReadAll()
	if err != nil || text == "" {
		return
	}
	var p clipboardPayload
	if err := json.Unmarshal([]byte(text), &p); err != nil || p.Phichain != 1 {
		return
	}
	c.Notes, c.Events = p.Notes, p.Events
}
