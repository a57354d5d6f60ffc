package timeline

import (
	"fmt"

	"phichain/internal/chart"
	"phichain/internal/edit"
	"phichain/internal/model"
)

// DragZoneSize is the height in pixels of the grab zones at each end of a hold.
const DragZoneSize = 5

type HoldZone int

const (
	ZoneNone HoldZone = iota
	// ZoneStart is the bottom edge; dragging it moves the start and keeps the end.
	ZoneStart
	// ZoneEnd is the top edge; dragging it changes the length.
	ZoneEnd
)

// HoldZoneAt reports which grab zone of a hold rect contains y.
func HoldZoneAt(r Rect, y float32) HoldZone {
	switch {
	case y <= r.MaxY && y >= r.MaxY-DragZoneSize:
		return ZoneStart
	case y >= r.MinY && y <= r.MinY+DragZoneSize:
		return ZoneEnd
	}
	return ZoneNone
}

// HoldDrag is a hold resize in progress. Deltas move the note's float shadows in place;
// nothing reaches the history until Stop.
type HoldDrag struct {
	ID   chart.EntityID
	Zone HoldZone
	from model.Note
}

// BeginHoldDrag snapshots the hold under id.
func BeginHoldDrag(w *chart.World, id chart.EntityID, zone HoldZone) (*HoldDrag, error) {
	if zone == ZoneNone {
		return nil, fmt.Errorf("hold drag on note %s: no zone", id)
	}
	n, err := w.Note(id)
	if err != nil {
		return nil, err
	}
	if !n.IsHold() {
		return nil, fmt.Errorf("hold drag on note %s: note is a %s", id, n.Kind)
	}
	return &HoldDrag{ID: id, Zone: zone, from: n.Exact()}, nil
}

// Drag applies a vertical pixel delta to the live note.
func (d *HoldDrag) Drag(t *Timeline, w *chart.World, dy float32) error {
	n, err := w.NotePtr(d.ID)
	if err != nil {
		return err
	}
	switch d.Zone {
	case ZoneStart:
		db := t.BeatDelta(n.Beat, dy)
		*n.Beat.FloatMut() += db
		*n.HoldBeat.FloatMut() -= db
	case ZoneEnd:
		db := t.BeatDelta(n.EndBeat(), dy)
		*n.HoldBeat.FloatMut() += db
	}
	return nil
}

// Stop attaches the dragged endpoint to the grid and returns the EditNote to submit, or
// nil when the note ends where it started. The world is put back to the pre-drag note so
// the returned command applies cleanly.
func (d *HoldDrag) Stop(t *Timeline, w *chart.World) (*edit.Command, error) {
	n, err := w.NotePtr(d.ID)
	if err != nil {
		return nil, err
	}
	live := *n
	*n = d.from

	to := d.from
	step := t.Step()
	switch d.Zone {
	case ZoneStart:
		end := d.from.EndBeat()
		start := t.Attach(live.Beat)
		if latest := end.Sub(step); latest.Less(start) {
			start = latest
		}
		to.Beat = start
		to.HoldBeat = end.Sub(start)
	case ZoneEnd:
		end := t.Attach(live.EndBeat())
		if earliest := d.from.Beat.Add(step); end.Less(earliest) {
			end = earliest
		}
		to.SetEndBeat(end)
	}
	if to.Equal(d.from) {
		return nil, nil
	}
	return edit.NewEditNote(d.ID, d.from, to), nil
}

// Cancel drops the preview.
func (d *HoldDrag) Cancel(w *chart.World) error {
	n, err := w.NotePtr(d.ID)
	if err != nil {
		return err
	}
	*n = d.from
	return nil
}
