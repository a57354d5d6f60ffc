package timeline

import (
	"slices"

	"phichain/internal/chart"
	"phichain/internal/model"
)

type ColumnKind int

const (
	NoteColumn ColumnKind = iota
	EventColumn
)

// Column is a horizontal slice of the timeline bound to one line.
type Column struct {
	Kind ColumnKind
	Line chart.EntityID
	MinX float32
	MaxX float32
}

func (c Column) Width() float32 { return c.MaxX - c.MinX }

// CanvasToX maps a canvas x (centered on 0, CanvasWidth wide) into the column.
func (c Column) CanvasToX(x float32) float32 {
	return c.MinX + (x/model.CanvasWidth+0.5)*c.Width()
}

func (c Column) XToCanvas(px float32) float32 {
	w := c.Width()
	if w == 0 {
		return 0
	}
	return ((px-c.MinX)/w - 0.5) * model.CanvasWidth
}

// Note sprites are 989x100 at a reference column width of 8000.
const (
	noteSpriteWidth  = 989
	noteSpriteHeight = 100
	referenceWidth   = 8000
)

func (c Column) noteScale() float32 { return c.Width() / referenceWidth }

// NoteRect is the rendered box of a note. Holds stretch from start beat (bottom) to end
// beat (top); the float shadows are honored so a drag preview is visible.
func (t *Timeline) NoteRect(c Column, n model.Note) Rect {
	scale := c.noteScale()
	w := noteSpriteWidth * scale
	x := c.CanvasToX(n.X)
	y := t.BeatToY(n.Beat)
	if n.IsHold() {
		top := t.BeatToY(n.Beat.Add(n.HoldBeat))
		return NewRect(x-w/2, top, x+w/2, y)
	}
	h := noteSpriteHeight * scale
	return NewRect(x-w/2, y-h/2, x+w/2, y+h/2)
}

// EventLanes is the number of lanes in an event column, one per event kind.
var EventLanes = len(model.LineEventKinds)

// EventRect is the rendered box of an event: its kind's lane, spanning start to end.
func (t *Timeline) EventRect(c Column, e model.LineEvent) Rect {
	lane := slices.Index(model.LineEventKinds, e.Kind)
	if lane < 0 {
		lane = 0
	}
	laneW := c.Width() / float32(EventLanes)
	x0 := c.MinX + float32(lane)*laneW
	return NewRect(x0, t.BeatToY(e.EndBeat), x0+laneW, t.BeatToY(e.StartBeat))
}

// PlaceNote builds a note of kind at a viewport point, attached to the grid. Holds get a
// length of one grid step.
func (t *Timeline) PlaceNote(c Column, kind model.NoteKind, px, py float32) model.Note {
	beat := t.Attach(t.YToBeat(py))
	x := c.XToCanvas(px)
	if kind == model.NoteHold {
		return model.NewHold(beat, t.Step(), x)
	}
	return model.NewNote(kind, beat, x)
}

// PlaceEvent builds a one-step event in the lane under px.
func (t *Timeline) PlaceEvent(c Column, px, py float32) model.LineEvent {
	lane := int((px - c.MinX) / (c.Width() / float32(EventLanes)))
	lane = max(0, min(lane, EventLanes-1))
	start := t.Attach(t.YToBeat(py))
	return model.LineEvent{
		Kind:      model.LineEventKinds[lane],
		StartBeat: start,
		EndBeat:   start.Add(t.Step()),
		Easing:    model.Linear(),
	}
}
