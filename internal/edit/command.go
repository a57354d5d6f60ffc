package edit

import (
	"errors"
	"fmt"
	"strings"

	"phichain/internal/chart"
	"phichain/internal/model"
)

type CommandKind int

const (
	CreateLine CommandKind = iota
	RemoveLine
	MoveLineAsChild
	CreateNote
	RemoveNote
	CreateEvent
	RemoveEvent
	EditNote
	EditEvent
	Sequence
)

var commandKindNames = map[CommandKind]string{
	CreateLine:      "CreateLine",
	RemoveLine:      "RemoveLine",
	MoveLineAsChild: "MoveLineAsChild",
	CreateNote:      "CreateNote",
	RemoveNote:      "RemoveNote",
	CreateEvent:     "CreateEvent",
	RemoveEvent:     "RemoveEvent",
	EditNote:        "EditNote",
	EditEvent:       "EditEvent",
	Sequence:        "Sequence",
}

func (k CommandKind) String() string {
	if s, ok := commandKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("CommandKind(%d)", int(k))
}

// Command is a reversible chart edit. Which fields matter depends on Kind; use the
// constructors. A command captures what it needs for Undo the first time it is applied
// and reuses captured ids when it is applied again, so redo restores the same entities.
type Command struct {
	Kind CommandKind

	// Line is the subject line (line commands) or the owning line (note/event commands).
	Line chart.EntityID
	// Parent is the new parent for MoveLineAsChild; 0 detaches.
	Parent chart.EntityID
	// ID is the note or event. Create commands fill it in on first apply.
	ID chart.EntityID

	Note     model.Note
	FromNote model.Note
	ToNote   model.Note

	Event     model.LineEvent
	FromEvent model.LineEvent
	ToEvent   model.LineEvent

	Children []*Command

	snapshot   *chart.LineSnapshot
	prevParent chart.EntityID
}

func NewCreateLine() *Command { return &Command{Kind: CreateLine} }

func NewRemoveLine(line chart.EntityID) *Command {
	return &Command{Kind: RemoveLine, Line: line}
}

// NewMoveLineAsChild moves line under parent, or to the root level when parent is 0.
func NewMoveLineAsChild(line, parent chart.EntityID) *Command {
	return &Command{Kind: MoveLineAsChild, Line: line, Parent: parent}
}

func NewCreateNote(line chart.EntityID, note model.Note) *Command {
	return &Command{Kind: CreateNote, Line: line, Note: note}
}

func NewRemoveNote(id chart.EntityID) *Command {
	return &Command{Kind: RemoveNote, ID: id}
}

func NewCreateEvent(line chart.EntityID, event model.LineEvent) *Command {
	return &Command{Kind: CreateEvent, Line: line, Event: event}
}

func NewRemoveEvent(id chart.EntityID) *Command {
	return &Command{Kind: RemoveEvent, ID: id}
}

func NewEditNote(id chart.EntityID, from, to model.Note) *Command {
	return &Command{Kind: EditNote, ID: id, FromNote: from, ToNote: to}
}

func NewEditEvent(id chart.EntityID, from, to model.LineEvent) *Command {
	return &Command{Kind: EditEvent, ID: id, FromEvent: from, ToEvent: to}
}

// NewSequence groups commands into one undo step.
func NewSequence(cmds ...*Command) *Command {
	return &Command{Kind: Sequence, Children: cmds}
}

// NewRemoveEntities builds one sequence removing the notes and events among ids. Lines
// and unknown ids are skipped.
func NewRemoveEntities(w *chart.World, ids []chart.EntityID) *Command {
	var cmds []*Command
	for _, id := range ids {
		kind, ok := w.KindOf(id)
		if !ok {
			continue
		}
		switch kind {
		case chart.KindNote:
			cmds = append(cmds, NewRemoveNote(id))
		case chart.KindEvent:
			cmds = append(cmds, NewRemoveEvent(id))
		}
	}
	return NewSequence(cmds...)
}

// Apply performs the edit. On error the world is left as it was.
func (c *Command) Apply(w *chart.World) error {
	switch c.Kind {
	case CreateLine:
		id, err := w.SpawnLine(c.Line, model.DefaultLine())
		if err != nil {
			return err
		}
		c.Line = id
		return nil
	case RemoveLine:
		snap, err := w.StripLine(c.Line)
		if err != nil {
			return err
		}
		c.snapshot = &snap
		return nil
	case MoveLineAsChild:
		prev, err := w.SetParent(c.Line, c.Parent)
		if err != nil {
			return err
		}
		c.prevParent = prev
		return nil
	case CreateNote:
		id, err := w.InsertNote(c.ID, c.Line, c.Note)
		if err != nil {
			return err
		}
		c.ID = id
		return nil
	case RemoveNote:
		note, line, err := w.DeleteNote(c.ID)
		if err != nil {
			return err
		}
		c.Note, c.Line = note, line
		return nil
	case CreateEvent:
		id, err := w.InsertEvent(c.ID, c.Line, c.Event)
		if err != nil {
			return err
		}
		c.ID = id
		return nil
	case RemoveEvent:
		event, line, err := w.DeleteEvent(c.ID)
		if err != nil {
			return err
		}
		c.Event, c.Line = event, line
		return nil
	case EditNote:
		return w.SetNote(c.ID, c.ToNote)
	case EditEvent:
		return w.SetEvent(c.ID, c.ToEvent)
	case Sequence:
		for i, child := range c.Children {
			if err := child.Apply(w); err != nil {
				return errors.Join(fmt.Errorf("%s[%d]: %w", c.Kind, i, err), rollback(w, c.Children[:i], (*Command).Undo))
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown command kind %d", int(c.Kind))
	}
}

// Undo reverses Apply. On error the world is left as it was.
func (c *Command) Undo(w *chart.World) error {
	switch c.Kind {
	case CreateLine:
		return w.DespawnLine(c.Line)
	case RemoveLine:
		if c.snapshot == nil {
			return errors.New("RemoveLine: undo before apply")
		}
		return w.RestoreLine(*c.snapshot)
	case MoveLineAsChild:
		_, err := w.SetParent(c.Line, c.prevParent)
		return err
	case CreateNote:
		_, _, err := w.DeleteNote(c.ID)
		return err
	case RemoveNote:
		_, err := w.InsertNote(c.ID, c.Line, c.Note)
		return err
	case CreateEvent:
		_, _, err := w.DeleteEvent(c.ID)
		return err
	case RemoveEvent:
		_, err := w.InsertEvent(c.ID, c.Line, c.Event)
		return err
	case EditNote:
		return w.SetNote(c.ID, c.FromNote)
	case EditEvent:
		return w.SetEvent(c.ID, c.FromEvent)
	case Sequence:
		for i := len(c.Children) - 1; i >= 0; i-- {
			if err := c.Children[i].Undo(w); err != nil {
				return errors.Join(fmt.Errorf("%s[%d]: %w", c.Kind, i, err), rollback(w, reversed(c.Children[i+1:]), (*Command).Apply))
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown command kind %d", int(c.Kind))
	}
}

// rollback runs fn over done, last first.
func rollback(w *chart.World, done []*Command, fn func(*Command, *chart.World) error) error {
	var errs []error
	for i := len(done) - 1; i >= 0; i-- {
		if err := fn(done[i], w); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("rollback incomplete: %w", errors.Join(errs...))
	}
	return nil
}

func reversed(cmds []*Command) []*Command {
	out := make([]*Command, len(cmds))
	for i, c := range cmds {
		out[len(cmds)-1-i] = c
	}
	return out
}

// Empty reports a sequence with nothing in it.
func (c *Command) Empty() bool {
	return c == nil || (c.Kind == Sequence && len(c.Children) == 0)
}

func (c *Command) String() string {
	switch c.Kind {
	case CreateLine, RemoveLine:
		return fmt.Sprintf("%s(line %s)", c.Kind, c.Line)
	case MoveLineAsChild:
		return fmt.Sprintf("%s(line %s -> %s)", c.Kind, c.Line, c.Parent)
	case CreateNote, CreateEvent:
		return fmt.Sprintf("%s(line %s, id %s)", c.Kind, c.Line, c.ID)
	case Sequence:
		parts := make([]string, len(c.Children))
		for i, child := range c.Children {
			parts[i] = child.String()
		}
		return fmt.Sprintf("%s[%s]", c.Kind, strings.Join(parts, ", "))
	default:
		return fmt.Sprintf("%s(%s)", c.Kind, c.ID)
	}
}
