package editor

import (
	"phichain/internal/chart"
)

// Status is the summary shown in the status bar.
type Status struct {
	Project        string  `json:"project"`
	Lines          int     `json:"lines"`
	Notes          int     `json:"notes"`
	Events         int     `json:"events"`
	SelectedNotes  int     `json:"selectedNotes"`
	SelectedEvents int     `json:"selectedEvents"`
	Dirty          bool    `json:"dirty"`
	Playing        bool    `json:"playing"`
	Time           float64 `json:"time"`
	Beat           string  `json:"beat"`
	Bpm            float32 `json:"bpm"`
}

func (e *Editor) Status() Status {
	s := Status{
		Lines:   e.World.LineCount(),
		Notes:   e.World.NoteCount(),
		Events:  e.World.EventCount(),
		Dirty:   e.IsDirty(),
		Playing: e.audio.Playing(),
		Time:    e.ChartTime(),
	}
	if e.project != nil {
		s.Project = displayName(e.project)
	}
	beat := e.CurrentBeat()
	s.Beat = e.Timeline.Attach(beat).String()
	s.Bpm = e.World.BpmList.BpmAt(beat)
	for _, id := range e.Selected() {
		switch kind, _ := e.World.KindOf(id); kind {
		case chart.KindNote:
			s.SelectedNotes++
		case chart.KindEvent:
			s.SelectedEvents++
		}
	}
	return s
}

// Title is the window title: project name with a trailing * when dirty.
func (s Status) Title() string {
	name := s.Project
	if name == "" {
		name = "phichain"
	}
	if s.Dirty {
		name += "*"
	}
	return name
}
