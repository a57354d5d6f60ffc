package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// CanvasWidth and CanvasHeight define the unit of Note.X and line positions.
const (
	CanvasWidth  = 1350.0
	CanvasHeight = 900.0
)

type NoteKind int

const (
	NoteTap NoteKind = iota
	NoteDrag
	NoteHold
	NoteFlick
)

func (k NoteKind) String() string {
	switch k {
	case NoteTap:
		return "Tap"
	case NoteDrag:
		return "Drag"
	case NoteHold:
		return "Hold"
	case NoteFlick:
		return "Flick"
	default:
		return fmt.Sprintf("NoteKind(%d)", int(k))
	}
}

// Note is a hit object. HoldBeat is only meaningful for NoteHold.
type Note struct {
	Kind     NoteKind
	HoldBeat Beat
	Beat     Beat
	X        float32
	Above    bool
	Speed    float32
}

func NewNote(kind NoteKind, beat Beat, x float32) Note {
	return Note{Kind: kind, Beat: beat, X: x, Above: true, Speed: 1}
}

func NewHold(beat, holdBeat Beat, x float32) Note {
	n := NewNote(NoteHold, beat, x)
	n.HoldBeat = holdBeat
	return n
}

func (n Note) IsHold() bool { return n.Kind == NoteHold }

// EndBeat is Beat + HoldBeat for holds and Beat otherwise.
func (n Note) EndBeat() Beat {
	if n.Kind == NoteHold {
		return n.Beat.Add(n.HoldBeat)
	}
	return n.Beat
}

// SetEndBeat keeps Beat and adjusts HoldBeat.
func (n *Note) SetEndBeat(end Beat) {
	if n.Kind != NoteHold {
		return
	}
	n.HoldBeat = end.Sub(n.Beat)
}

// Exact drops the float shadows of both beats.
func (n Note) Exact() Note {
	n.Beat = n.Beat.Exact()
	n.HoldBeat = n.HoldBeat.Exact()
	return n
}

// Equal compares exact beats (shadows excluded) and the remaining fields.
func (n Note) Equal(o Note) bool {
	if n.Kind != o.Kind || !n.Beat.Equal(o.Beat) || n.X != o.X || n.Above != o.Above || n.Speed != o.Speed {
		return false
	}
	if n.Kind == NoteHold && !n.HoldBeat.Equal(o.HoldBeat) {
		return false
	}
	return true
}

// Validate checks the hold invariant.
func (n Note) Validate() error {
	if n.Kind < NoteTap || n.Kind > NoteFlick {
		return fmt.Errorf("unknown note kind %d", int(n.Kind))
	}
	if n.Kind == NoteHold && !n.HoldBeat.IsPositive() {
		return errors.New("hold_beat must be positive")
	}
	return nil
}

type wireHold struct {
	HoldBeat Beat `json:"hold_beat"`
}

type wireNote struct {
	Kind  json.RawMessage `json:"kind"`
	Above bool            `json:"above"`
	Beat  Beat            `json:"beat"`
	X     float32         `json:"x"`
	Speed float32         `json:"speed"`
}

// MarshalJSON writes kind as "Tap" | "Drag" | "Flick" | {"Hold": {"hold_beat": beat}}.
func (n Note) MarshalJSON() ([]byte, error) {
	var kind any = n.Kind.String()
	if n.Kind == NoteHold {
		kind = map[string]wireHold{"Hold": {HoldBeat: n.HoldBeat}}
	}
	rawKind, err := json.Marshal(kind)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireNote{Kind: rawKind, Above: n.Above, Beat: n.Beat, X: n.X, Speed: n.Speed})
}

func (n *Note) UnmarshalJSON(data []byte) error {
	var w wireNote
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	out := Note{Beat: w.Beat, X: w.X, Above: w.Above, Speed: w.Speed}

	var name string
	if err := json.Unmarshal(w.Kind, &name); err == nil {
		switch name {
		case "Tap":
			out.Kind = NoteTap
		case "Drag":
			out.Kind = NoteDrag
		case "Flick":
			out.Kind = NoteFlick
		default:
			return fmt.Errorf("note: unknown kind %q", name)
		}
		*n = out
		return nil
	}

	var hold map[string]wireHold
	if err := json.Unmarshal(w.Kind, &hold); err != nil {
		return fmt.Errorf("note: kind: %w", err)
	}
	h, ok := hold["Hold"]
	if !ok {
		return errors.New("note: kind must be Tap, Drag, Flick or {\"Hold\": {...}}")
	}
	out.Kind = NoteHold
	out.HoldBeat = h.HoldBeat
	*n = out
	return nil
}
