// Package timeline maps chart time onto a vertical strip of pixels and implements the
// pointer interactions of the timeline: hold resizing, region selection and paste targeting.
package timeline

import (
	"phichain/internal/model"
)

// PixelsPerSecond is the vertical scale at zoom 1.
const PixelsPerSecond = 300.0

// Viewport is the visible strip. Y grows downward; later times sit higher on screen.
type Viewport struct {
	Width, Height float32
	// IndicatorPosition is the fraction of Height, from the top, where Current is drawn.
	IndicatorPosition float32
	Zoom              float32
	// Current is the chart time under the indicator, in seconds.
	Current float64
}

func (v Viewport) scale() float64 {
	z := float64(v.Zoom)
	if z <= 0 {
		z = 1
	}
	return PixelsPerSecond * z
}

func (v Viewport) indicatorY() float64 {
	return float64(v.Height) * float64(v.IndicatorPosition)
}

func (v Viewport) TimeToY(seconds float64) float32 {
	return float32(v.indicatorY() - (seconds-v.Current)*v.scale())
}

func (v Viewport) YToTime(y float32) float64 {
	return v.Current + (v.indicatorY()-float64(y))/v.scale()
}

// Contains reports whether a viewport point lies inside the strip.
func (v Viewport) Contains(x, y float32) bool {
	return x >= 0 && y >= 0 && x <= v.Width && y <= v.Height
}

// Timeline combines a viewport with the tempo map and the quantization grid.
type Timeline struct {
	Viewport
	Bpm *model.BpmList
	// Density is the number of grid steps per beat.
	Density uint32
}

func (t *Timeline) density() uint32 {
	if t.Density == 0 {
		return 1
	}
	return t.Density
}

// Step is one grid step, 1/Density beats.
func (t *Timeline) Step() model.Beat {
	return model.NewBeat(0, 1, int64(t.density()))
}

func (t *Timeline) BeatToY(b model.Beat) float32 {
	return t.TimeToY(t.Bpm.TimeAt(b))
}

// YToBeat returns the beat under y, carrying the unquantized remainder as a float shadow.
func (t *Timeline) YToBeat(y float32) model.Beat {
	return t.Bpm.BeatAt(t.YToTime(y))
}

// Attach snaps a beat, float shadow included, to the nearest grid point.
func (t *Timeline) Attach(b model.Beat) model.Beat {
	return model.BeatFromFloat(b.Value(), t.density())
}

// BeatDelta converts a vertical pixel movement at beat b into a beat offset. Moving up
// (negative dy) moves later in time.
func (t *Timeline) BeatDelta(b model.Beat, dy float32) float64 {
	seconds := t.Bpm.TimeAt(b) - float64(dy)/t.scale()
	return t.Bpm.BeatAt(seconds).Value() - b.Value()
}

// Rect is an axis-aligned box in viewport pixels.
type Rect struct {
	MinX, MinY, MaxX, MaxY float32
}

// NewRect builds a rect from two corners in any order.
func NewRect(x0, y0, x1, y1 float32) Rect {
	r := Rect{MinX: x0, MinY: y0, MaxX: x1, MaxY: y1}
	if r.MinX > r.MaxX {
		r.MinX, r.MaxX = r.MaxX, r.MinX
	}
	if r.MinY > r.MaxY {
		r.MinY, r.MaxY = r.MaxY, r.MinY
	}
	return r
}

func (r Rect) Intersects(o Rect) bool {
	return r.MinX <= o.MaxX && o.MinX <= r.MaxX && r.MinY <= o.MaxY && o.MinY <= r.MaxY
}

func (r Rect) Contains(x, y float32) bool {
	return x >= r.MinX && x <= r.MaxX && y >= r.MinY && y <= r.MaxY
}
