package model

import (
	"encoding/json"
	"fmt"
	"sort"
)

// DefaultBPM is used for the single segment of a new chart.
const DefaultBPM = 120

type BpmPoint struct {
	Beat Beat    `json:"beat"`
	Bpm  float32 `json:"bpm"`
}

// BpmList is the tempo map: strictly increasing beats, first point at beat 0.
// Within segment i one beat lasts 60/bpm_i seconds.
type BpmList struct {
	points []BpmPoint
	// times[i] is the time (seconds, offset excluded) at which points[i] starts.
	times []float64
}

// BpmListError reports a tempo map that would break its ordering invariant.
type BpmListError struct {
	Reason string
}

func (e BpmListError) Error() string { return "bpm list: " + e.Reason }

func NewBpmList(points ...BpmPoint) (BpmList, error) {
	var l BpmList
	if len(points) == 0 {
		points = []BpmPoint{{Beat: BeatFromInt(0), Bpm: DefaultBPM}}
	}
	l.points = make([]BpmPoint, len(points))
	for i, p := range points {
		l.points[i] = BpmPoint{Beat: p.Beat.Exact(), Bpm: p.Bpm}
	}
	if err := l.validate(); err != nil {
		return BpmList{}, err
	}
	l.compute()
	return l, nil
}

// DefaultBpmList is a single 120 BPM segment.
func DefaultBpmList() BpmList {
	l, _ := NewBpmList()
	return l
}

func (l *BpmList) validate() error {
	if len(l.points) == 0 {
		return BpmListError{Reason: "empty"}
	}
	if !l.points[0].Beat.IsZero() {
		return BpmListError{Reason: fmt.Sprintf("first point must be at beat 0, got %s", l.points[0].Beat)}
	}
	for i, p := range l.points {
		if p.Bpm <= 0 {
			return BpmListError{Reason: fmt.Sprintf("bpm must be positive at beat %s", p.Beat)}
		}
		if i > 0 && !l.points[i-1].Beat.Less(p.Beat) {
			return BpmListError{Reason: fmt.Sprintf("beats must be strictly increasing at %s", p.Beat)}
		}
	}
	return nil
}

func (l *BpmList) compute() {
	l.times = make([]float64, len(l.points))
	t := 0.0
	for i := range l.points {
		if i > 0 {
			prev := l.points[i-1]
			t += l.points[i].Beat.Sub(prev.Beat).Value() * 60 / float64(prev.Bpm)
		}
		l.times[i] = t
	}
}

func (l *BpmList) ensure() {
	if len(l.points) == 0 {
		*l = DefaultBpmList()
	}
	if len(l.times) != len(l.points) {
		l.compute()
	}
}

// Points returns a copy of the tempo points.
func (l BpmList) Points() []BpmPoint {
	out := make([]BpmPoint, len(l.points))
	copy(out, l.points)
	return out
}

func (l BpmList) Len() int { return len(l.points) }

// segment returns the index of the segment containing beat. A beat on a boundary belongs
// to the segment that starts there. A shadowed beat is placed by its full value, since the
// shadow may carry it past a tempo point.
func (l *BpmList) segment(beat Beat) int {
	var i int
	if beat.HasShadow() {
		v := beat.Value()
		i = sort.Search(len(l.points), func(i int) bool {
			return v < l.points[i].Beat.Value()
		})
	} else {
		i = sort.Search(len(l.points), func(i int) bool {
			return beat.Less(l.points[i].Beat)
		})
	}
	if i == 0 {
		return 0
	}
	return i - 1
}

// TimeAt converts a beat to seconds from the start of the music (chart offset excluded).
func (l *BpmList) TimeAt(beat Beat) float64 {
	l.ensure()
	i := l.segment(beat)
	p := l.points[i]
	return l.times[i] + (beat.Value()-p.Beat.Value())*60/float64(p.Bpm)
}

// BeatAt converts seconds back to a beat. The result is the exact boundary beat of the
// segment plus a float shadow for the remainder.
func (l *BpmList) BeatAt(seconds float64) Beat {
	l.ensure()
	i := sort.Search(len(l.times), func(i int) bool { return seconds < l.times[i] })
	if i > 0 {
		i--
	}
	p := l.points[i]
	b := p.Beat
	if rest := seconds - l.times[i]; rest != 0 {
		*b.FloatMut() = rest * float64(p.Bpm) / 60
	}
	return b
}

// BpmAt is the tempo in effect at beat.
func (l *BpmList) BpmAt(beat Beat) float32 {
	l.ensure()
	return l.points[l.segment(beat)].Bpm
}

func (l *BpmList) index(beat Beat) int {
	for i, p := range l.points {
		if p.Beat.Equal(beat) {
			return i
		}
	}
	return -1
}

// Insert adds a new tempo point. The beat must not already carry one.
func (l *BpmList) Insert(beat Beat, bpm float32) error {
	l.ensure()
	if l.index(beat) >= 0 {
		return BpmListError{Reason: fmt.Sprintf("beat %s already has a bpm point", beat)}
	}
	if beat.Less(Beat{}) {
		return BpmListError{Reason: "beat must not be negative"}
	}
	next := append(l.Points(), BpmPoint{Beat: beat.Exact(), Bpm: bpm})
	sort.SliceStable(next, func(i, j int) bool { return next[i].Beat.Less(next[j].Beat) })
	return l.replace(next)
}

// Remove deletes the tempo point at beat. The first point cannot be removed.
func (l *BpmList) Remove(beat Beat) error {
	l.ensure()
	i := l.index(beat)
	if i < 0 {
		return BpmListError{Reason: fmt.Sprintf("no bpm point at beat %s", beat)}
	}
	if i == 0 {
		return BpmListError{Reason: "the first bpm point cannot be removed"}
	}
	next := l.Points()
	next = append(next[:i], next[i+1:]...)
	return l.replace(next)
}

// Edit changes the tempo of an existing point.
func (l *BpmList) Edit(beat Beat, bpm float32) error {
	l.ensure()
	i := l.index(beat)
	if i < 0 {
		return BpmListError{Reason: fmt.Sprintf("no bpm point at beat %s", beat)}
	}
	next := l.Points()
	next[i].Bpm = bpm
	return l.replace(next)
}

func (l *BpmList) replace(points []BpmPoint) error {
	cand := BpmList{points: points}
	if err := cand.validate(); err != nil {
		return err
	}
	cand.compute()
	*l = cand
	return nil
}

func (l BpmList) MarshalJSON() ([]byte, error) {
	if len(l.points) == 0 {
		l = DefaultBpmList()
	}
	return json.Marshal(l.points)
}

func (l *BpmList) UnmarshalJSON(data []byte) error {
	var points []BpmPoint
	if err := json.Unmarshal(data, &points); err != nil {
		return err
	}
	if len(points) == 0 {
		return BpmListError{Reason: "empty"}
	}
	next, err := NewBpmList(points...)
	if err != nil {
		return err
	}
	*l = next
	return nil
}
