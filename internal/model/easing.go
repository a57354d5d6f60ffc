package model

import (
	"encoding/json"
	"fmt"
	"math"
)

type EasingKind int

const (
	EasingLinear EasingKind = iota
	EasingInSine
	EasingOutSine
	EasingInOutSine
	EasingInQuad
	EasingOutQuad
	EasingInOutQuad
	EasingInCubic
	EasingOutCubic
	EasingInOutCubic
	EasingInQuart
	EasingOutQuart
	EasingInOutQuart
	EasingInQuint
	EasingOutQuint
	EasingInOutQuint
	EasingInExpo
	EasingOutExpo
	EasingInOutExpo
	EasingInCirc
	EasingOutCirc
	EasingInOutCirc
	EasingInBack
	EasingOutBack
	EasingInOutBack
	EasingInElastic
	EasingOutElastic
	EasingInOutElastic
	EasingInBounce
	EasingOutBounce
	EasingInOutBounce
	EasingCustom
)

var easingNames = [...]string{
	"Linear",
	"EaseInSine", "EaseOutSine", "EaseInOutSine",
	"EaseInQuad", "EaseOutQuad", "EaseInOutQuad",
	"EaseInCubic", "EaseOutCubic", "EaseInOutCubic",
	"EaseInQuart", "EaseOutQuart", "EaseInOutQuart",
	"EaseInQuint", "EaseOutQuint", "EaseInOutQuint",
	"EaseInExpo", "EaseOutExpo", "EaseInOutExpo",
	"EaseInCirc", "EaseOutCirc", "EaseInOutCirc",
	"EaseInBack", "EaseOutBack", "EaseInOutBack",
	"EaseInElastic", "EaseOutElastic", "EaseInOutElastic",
	"EaseInBounce", "EaseOutBounce", "EaseInOutBounce",
	"Custom",
}

func (k EasingKind) String() string {
	if k < 0 || int(k) >= len(easingNames) {
		return fmt.Sprintf("EasingKind(%d)", int(k))
	}
	return easingNames[k]
}

// Easing maps progress in [0,1] to eased progress. Custom uses the cubic-bezier control
// points (X1,Y1) and (X2,Y2), like CSS.
type Easing struct {
	Kind           EasingKind
	X1, Y1, X2, Y2 float32
}

func Linear() Easing { return Easing{Kind: EasingLinear} }

func CustomEasing(x1, y1, x2, y2 float32) Easing {
	return Easing{Kind: EasingCustom, X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Easings lists every named curve followed by a default Custom curve.
func Easings() []Easing {
	out := make([]Easing, 0, len(easingNames))
	for k := EasingLinear; k < EasingCustom; k++ {
		out = append(out, Easing{Kind: k})
	}
	return append(out, CustomEasing(0.5, 0, 0.5, 1))
}

func (e Easing) String() string {
	if e.Kind == EasingCustom {
		return fmt.Sprintf("Custom(%g, %g, %g, %g)", e.X1, e.Y1, e.X2, e.Y2)
	}
	return e.Kind.String()
}

func (e Easing) Ease(x float32) float32 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	t := float64(x)
	const (
		c1 = 1.70158
		c2 = c1 * 1.525
		c3 = c1 + 1
		c4 = 2 * math.Pi / 3
		c5 = 2 * math.Pi / 4.5
	)
	var y float64
	switch e.Kind {
	case EasingInSine:
		y = 1 - math.Cos(t*math.Pi/2)
	case EasingOutSine:
		y = math.Sin(t * math.Pi / 2)
	case EasingInOutSine:
		y = -(math.Cos(math.Pi*t) - 1) / 2
	case EasingInQuad:
		y = t * t
	case EasingOutQuad:
		y = 1 - (1-t)*(1-t)
	case EasingInOutQuad:
		y = inOut(t, 2)
	case EasingInCubic:
		y = t * t * t
	case EasingOutCubic:
		y = 1 - math.Pow(1-t, 3)
	case EasingInOutCubic:
		y = inOut(t, 3)
	case EasingInQuart:
		y = math.Pow(t, 4)
	case EasingOutQuart:
		y = 1 - math.Pow(1-t, 4)
	case EasingInOutQuart:
		y = inOut(t, 4)
	case EasingInQuint:
		y = math.Pow(t, 5)
	case EasingOutQuint:
		y = 1 - math.Pow(1-t, 5)
	case EasingInOutQuint:
		y = inOut(t, 5)
	case EasingInExpo:
		y = math.Pow(2, 10*t-10)
	case EasingOutExpo:
		y = 1 - math.Pow(2, -10*t)
	case EasingInOutExpo:
		if t < 0.5 {
			y = math.Pow(2, 20*t-10) / 2
		} else {
			y = (2 - math.Pow(2, -20*t+10)) / 2
		}
	case EasingInCirc:
		y = 1 - math.Sqrt(1-t*t)
	case EasingOutCirc:
		y = math.Sqrt(1 - (t-1)*(t-1))
	case EasingInOutCirc:
		if t < 0.5 {
			y = (1 - math.Sqrt(1-4*t*t)) / 2
		} else {
			y = (math.Sqrt(1-math.Pow(-2*t+2, 2)) + 1) / 2
		}
	case EasingInBack:
		y = c3*t*t*t - c1*t*t
	case EasingOutBack:
		y = 1 + c3*math.Pow(t-1, 3) + c1*math.Pow(t-1, 2)
	case EasingInOutBack:
		if t < 0.5 {
			y = (math.Pow(2*t, 2) * ((c2+1)*2*t - c2)) / 2
		} else {
			y = (math.Pow(2*t-2, 2)*((c2+1)*(t*2-2)+c2) + 2) / 2
		}
	case EasingInElastic:
		y = -math.Pow(2, 10*t-10) * math.Sin((t*10-10.75)*c4)
	case EasingOutElastic:
		y = math.Pow(2, -10*t)*math.Sin((t*10-0.75)*c4) + 1
	case EasingInOutElastic:
		if t < 0.5 {
			y = -(math.Pow(2, 20*t-10) * math.Sin((20*t-11.125)*c5)) / 2
		} else {
			y = (math.Pow(2, -20*t+10)*math.Sin((20*t-11.125)*c5))/2 + 1
		}
	case EasingInBounce:
		y = 1 - outBounce(1-t)
	case EasingOutBounce:
		y = outBounce(t)
	case EasingInOutBounce:
		if t < 0.5 {
			y = (1 - outBounce(1-2*t)) / 2
		} else {
			y = (1 + outBounce(2*t-1)) / 2
		}
	case EasingCustom:
		y = cubicBezier(t, float64(e.X1), float64(e.Y1), float64(e.X2), float64(e.Y2))
	default:
		y = t
	}
	return float32(y)
}

func inOut(t float64, p float64) float64 {
	if t < 0.5 {
		return math.Pow(2, p-1) * math.Pow(t, p)
	}
	return 1 - math.Pow(-2*t+2, p)/2
}

func outBounce(t float64) float64 {
	const n1, d1 = 7.5625, 2.75
	switch {
	case t < 1/d1:
		return n1 * t * t
	case t < 2/d1:
		t -= 1.5 / d1
		return n1*t*t + 0.75
	case t < 2.5/d1:
		t -= 2.25 / d1
		return n1*t*t + 0.9375
	default:
		t -= 2.625 / d1
		return n1*t*t + 0.984375
	}
}

// cubicBezier solves x(s) = t for s with Newton steps, falling back to bisection, and
// returns y(s).
func cubicBezier(t, x1, y1, x2, y2 float64) float64 {
	bez := func(s, p1, p2 float64) float64 {
		u := 1 - s
		return 3*u*u*s*p1 + 3*u*s*s*p2 + s*s*s
	}
	deriv := func(s, p1, p2 float64) float64 {
		u := 1 - s
		return 3*u*u*p1 + 6*u*s*(p2-p1) + 3*s*s*(1-p2)
	}

	s := t
	for i := 0; i < 8; i++ {
		dx := bez(s, x1, x2) - t
		if math.Abs(dx) < 1e-7 {
			return bez(s, y1, y2)
		}
		d := deriv(s, x1, x2)
		if math.Abs(d) < 1e-6 {
			break
		}
		s -= dx / d
	}

	lo, hi := 0.0, 1.0
	s = t
	for i := 0; i < 64; i++ {
		x := bez(s, x1, x2)
		if math.Abs(x-t) < 1e-7 {
			break
		}
		if x < t {
			lo = s
		} else {
			hi = s
		}
		s = (lo + hi) / 2
	}
	return bez(s, y1, y2)
}

// MarshalJSON writes named curves as a string and Custom as {"Custom": [x1,y1,x2,y2]}.
func (e Easing) MarshalJSON() ([]byte, error) {
	if e.Kind == EasingCustom {
		return json.Marshal(map[string][4]float32{"Custom": {e.X1, e.Y1, e.X2, e.Y2}})
	}
	return json.Marshal(e.Kind.String())
}

func (e *Easing) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		for k := EasingLinear; k < EasingCustom; k++ {
			if easingNames[k] == name {
				*e = Easing{Kind: k}
				return nil
			}
		}
		return fmt.Errorf("easing: unknown curve %q", name)
	}
	var custom map[string][4]float32
	if err := json.Unmarshal(data, &custom); err != nil {
		return fmt.Errorf("easing: %w", err)
	}
	pts, ok := custom["Custom"]
	if !ok || len(custom) != 1 {
		return fmt.Errorf("easing: expected a curve name or {\"Custom\": [...]}")
	}
	*e = CustomEasing(pts[0], pts[1], pts[2], pts[3])
	return nil
}
