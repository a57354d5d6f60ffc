package model

import (
	"encoding/json"
	"math"
	"testing"
)

func TestEasing_Endpoints(t *testing.T) {
	for _, e := range Easings() {
		if got := e.Ease(0); math.Abs(float64(got)) > 1e-5 {
			t.Fatalf("%s: Ease(0) = %v", e, got)
		}
		if got := e.Ease(1); math.Abs(float64(got)-1) > 1e-5 {
			t.Fatalf("%s: Ease(1) = %v", e, got)
		}
	}
}

func TestEasing_KnownValues(t *testing.T) {
	cases := []struct {
		e    Easing
		x    float32
		want float32
	}{
		{Linear(), 0.25, 0.25},
		{Easing{Kind: EasingInQuad}, 0.5, 0.25},
		{Easing{Kind: EasingOutQuad}, 0.5, 0.75},
		{Easing{Kind: EasingInOutCubic}, 0.5, 0.5},
		{CustomEasing(0, 0, 1, 1), 0.3, 0.3},
	}
	for _, c := range cases {
		if got := c.e.Ease(c.x); math.Abs(float64(got-c.want)) > 1e-4 {
			t.Fatalf("%s.Ease(%v) = %v, want %v", c.e, c.x, got, c.want)
		}
	}
}

func TestEasing_JSON(t *testing.T) {
	b, err := json.Marshal(Easing{Kind: EasingOutBounce})
	if err != nil || string(b) != `"EaseOutBounce"` {
		t.Fatalf("got %s, %v", b, err)
	}
	b, err = json.Marshal(CustomEasing(0.25, 0.1, 0.25, 1))
	if err != nil || string(b) != `{"Custom":[0.25,0.1,0.25,1]}` {
		t.Fatalf("got %s, %v", b, err)
	}
	var e Easing
	if err := json.Unmarshal(b, &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e != CustomEasing(0.25, 0.1, 0.25, 1) {
		t.Fatalf("got %+v", e)
	}
	if err := json.Unmarshal([]byte(`"Wobble"`), &e); err == nil {
		t.Fatalf("expected error for unknown curve")
	}
}

func TestLineEvent_Evaluate(t *testing.T) {
	ev := LineEvent{
		Kind:       EventX,
		StartBeat:  BeatFromInt(2),
		EndBeat:    BeatFromInt(4),
		StartValue: 0,
		EndValue:   100,
		Easing:     Linear(),
	}
	if v, ok := ev.Evaluate(BeatFromInt(3)); !ok || v != 50 {
		t.Fatalf("Evaluate(3) = %v, %v", v, ok)
	}
	if _, ok := ev.Evaluate(BeatFromInt(1)); ok {
		t.Fatalf("event should be inactive before start")
	}
	if _, ok := ev.Evaluate(BeatFromInt(5)); ok {
		t.Fatalf("event should be inactive after end")
	}
}

func TestNote_JSONShapes(t *testing.T) {
	tap := NewNote(NoteTap, BeatFromInt(1), 0)
	b, err := json.Marshal(tap)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"kind":"Tap","above":true,"beat":[1,0,1],"x":0,"speed":1}`
	if string(b) != want {
		t.Fatalf("got %s\nwant %s", b, want)
	}

	hold := NewHold(BeatFromInt(1), BeatFromInt(2), 10)
	b, err = json.Marshal(hold)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Note
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(hold) || !back.EndBeat().Equal(BeatFromInt(3)) {
		t.Fatalf("hold round trip: %+v", back)
	}
	if err := json.Unmarshal([]byte(`{"kind":"Slide","beat":[0,0,1]}`), &back); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestNote_Validate(t *testing.T) {
	if err := NewHold(BeatFromInt(1), BeatFromInt(0), 0).Validate(); err == nil {
		t.Fatalf("zero-length hold must be rejected")
	}
	if err := NewNote(NoteFlick, BeatFromInt(1), 0).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
