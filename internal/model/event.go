package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

type LineEventKind int

const (
	EventX LineEventKind = iota
	EventY
	EventRotation
	EventOpacity
	EventSpeed
)

// LineEventKinds in lane order.
var LineEventKinds = []LineEventKind{EventX, EventY, EventRotation, EventOpacity, EventSpeed}

var lineEventKindNames = map[LineEventKind]string{
	EventX:        "x",
	EventY:        "y",
	EventRotation: "rotation",
	EventOpacity:  "opacity",
	EventSpeed:    "speed",
}

func (k LineEventKind) String() string {
	if s, ok := lineEventKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("LineEventKind(%d)", int(k))
}

func ParseLineEventKind(s string) (LineEventKind, error) {
	for k, name := range lineEventKindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown line event kind %q", s)
}

func (k LineEventKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *LineEventKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseLineEventKind(s)
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// LineEvent animates one property of a line over [StartBeat, EndBeat].
type LineEvent struct {
	Kind       LineEventKind `json:"kind"`
	StartBeat  Beat          `json:"start_beat"`
	EndBeat    Beat          `json:"end_beat"`
	StartValue float32       `json:"start_value"`
	EndValue   float32       `json:"end_value"`
	Easing     Easing        `json:"easing"`
}

func (e LineEvent) Validate() error {
	if _, ok := lineEventKindNames[e.Kind]; !ok {
		return fmt.Errorf("unknown line event kind %d", int(e.Kind))
	}
	if e.EndBeat.Less(e.StartBeat) {
		return errors.New("end_beat must not precede start_beat")
	}
	return nil
}

func (e LineEvent) Exact() LineEvent {
	e.StartBeat = e.StartBeat.Exact()
	e.EndBeat = e.EndBeat.Exact()
	return e
}

func (e LineEvent) Equal(o LineEvent) bool {
	return e.Kind == o.Kind &&
		e.StartBeat.Equal(o.StartBeat) &&
		e.EndBeat.Equal(o.EndBeat) &&
		e.StartValue == o.StartValue &&
		e.EndValue == o.EndValue &&
		e.Easing == o.Easing
}

// Shift moves both endpoints by delta.
func (e LineEvent) Shift(delta Beat) LineEvent {
	e.StartBeat = e.StartBeat.Add(delta)
	e.EndBeat = e.EndBeat.Add(delta)
	return e
}

// Evaluate returns the event value at beat, or false when the beat is outside the event.
func (e LineEvent) Evaluate(beat Beat) (float32, bool) {
	if beat.Less(e.StartBeat) || e.EndBeat.Less(beat) {
		return 0, false
	}
	span := e.EndBeat.Value() - e.StartBeat.Value()
	if span <= 0 {
		return e.EndValue, true
	}
	progress := float32((beat.Value() - e.StartBeat.Value()) / span)
	eased := e.Easing.Ease(progress)
	return e.StartValue + (e.EndValue-e.StartValue)*eased, true
}
