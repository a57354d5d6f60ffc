package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
)

// Beat is an exact musical position: whole + num/den, with 0 <= num < den.
//
// A beat may also carry a float shadow. The shadow is a transient offset used while a
// value is dragged around in the timeline; Value includes it, Equal and the serializer
// ignore it. Attach the beat to a grid before building a command from it.
type Beat struct {
	whole  int64
	num    int64
	den    int64
	shadow float64
}

// NewBeat builds a normalized beat. den <= 0 is treated as 1.
func NewBeat(whole, num, den int64) Beat {
	if den <= 0 {
		den = 1
	}
	r := new(big.Rat).SetFrac64(whole*den+num, den)
	return beatFromRat(r)
}

// BeatFromInt returns the whole beat n.
func BeatFromInt(n int64) Beat {
	return Beat{whole: n, num: 0, den: 1}
}

// BeatFromFloat snaps v to the nearest multiple of 1/density.
func BeatFromFloat(v float64, density uint32) Beat {
	if density == 0 {
		density = 1
	}
	steps := math.Round(v * float64(density))
	return NewBeat(0, int64(steps), int64(density))
}

func beatFromRat(r *big.Rat) Beat {
	num := r.Num().Int64()
	den := r.Denom().Int64()
	whole := num / den
	rem := num % den
	if rem < 0 {
		whole--
		rem += den
	}
	return Beat{whole: whole, num: rem, den: den}
}

func (b Beat) norm() Beat {
	if b.den == 0 {
		b.den = 1
	}
	return b
}

func (b Beat) rat() *big.Rat {
	b = b.norm()
	return new(big.Rat).SetFrac64(b.whole*b.den+b.num, b.den)
}

func (b Beat) Whole() int64 { return b.whole }

func (b Beat) Num() int64 { return b.num }

func (b Beat) Den() int64 { return b.norm().den }

// Value is the beat as a float, float shadow included.
func (b Beat) Value() float64 {
	b = b.norm()
	return float64(b.whole) + float64(b.num)/float64(b.den) + b.shadow
}

// Exact drops the float shadow.
func (b Beat) Exact() Beat {
	b.shadow = 0
	return b.norm()
}

// FloatMut exposes the float shadow for live dragging.
func (b *Beat) FloatMut() *float64 {
	return &b.shadow
}

func (b Beat) HasShadow() bool { return b.shadow != 0 }

func (b Beat) Add(o Beat) Beat {
	out := beatFromRat(new(big.Rat).Add(b.rat(), o.rat()))
	out.shadow = b.shadow + o.shadow
	return out
}

func (b Beat) Sub(o Beat) Beat {
	out := beatFromRat(new(big.Rat).Sub(b.rat(), o.rat()))
	out.shadow = b.shadow - o.shadow
	return out
}

// Cmp compares the exact rational parts.
func (b Beat) Cmp(o Beat) int {
	return b.rat().Cmp(o.rat())
}

func (b Beat) Less(o Beat) bool { return b.Cmp(o) < 0 }

func (b Beat) Equal(o Beat) bool { return b.Cmp(o) == 0 }

func (b Beat) IsZero() bool { return b.Cmp(Beat{}) == 0 }

func (b Beat) IsPositive() bool { return b.Cmp(Beat{}) > 0 }

func MinBeat(a, b Beat) Beat {
	if b.Less(a) {
		return b
	}
	return a
}

func (b Beat) String() string {
	b = b.norm()
	if b.num == 0 {
		return fmt.Sprintf("%d", b.whole)
	}
	return fmt.Sprintf("%d+%d/%d", b.whole, b.num, b.den)
}

// MarshalJSON writes [whole, num, den].
func (b Beat) MarshalJSON() ([]byte, error) {
	b = b.norm()
	return json.Marshal([3]int64{b.whole, b.num, b.den})
}

func (b *Beat) UnmarshalJSON(data []byte) error {
	var raw []int64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("beat: %w", err)
	}
	if len(raw) != 3 {
		return fmt.Errorf("beat: expected [whole, num, den], got %d elements", len(raw))
	}
	if raw[2] <= 0 {
		return errors.New("beat: denominator must be positive")
	}
	if raw[1] < 0 {
		return errors.New("beat: numerator must not be negative")
	}
	*b = NewBeat(raw[0], raw[1], raw[2])
	return nil
}
