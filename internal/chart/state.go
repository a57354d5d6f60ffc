package chart

import "phichain/internal/model"

// LineStateAt evaluates the transform of a line at beat. For each property the value
// comes from the active event (the latest-starting one when several overlap), else from
// the end value of the last finished event, else from the base line.
func (w *World) LineStateAt(id EntityID, beat model.Beat) (model.Line, error) {
	rec, err := w.liveLine(id)
	if err != nil {
		return model.Line{}, err
	}
	state := rec.line
	for _, kind := range model.LineEventKinds {
		var (
			active, finished     *model.LineEvent
			activeAt, finishedAt model.Beat
		)
		for _, eid := range rec.events {
			ev := w.events[eid].event
			if ev.Kind != kind {
				continue
			}
			if !beat.Less(ev.StartBeat) && !ev.EndBeat.Less(beat) {
				if active == nil || !ev.StartBeat.Less(activeAt) {
					e := ev
					active, activeAt = &e, ev.StartBeat
				}
				continue
			}
			if ev.EndBeat.Less(beat) {
				if finished == nil || !ev.EndBeat.Less(finishedAt) {
					e := ev
					finished, finishedAt = &e, ev.EndBeat
				}
			}
		}
		switch {
		case active != nil:
			v, _ := active.Evaluate(beat)
			state.SetProperty(kind, v)
		case finished != nil:
			state.SetProperty(kind, finished.EndValue)
		}
	}
	return state, nil
}
