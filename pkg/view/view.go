// Package view maps between the year domain and screen pixels.
//
// A [View] holds the zoom (pixels per year) and pan (pixel offset) of one
// viewer along with its logical size and device pixel ratio:
//
//	x = (v - origin) * zoom + pan
//	v = origin + (x - pan) / zoom
//
// Every zoom change is anchor preserving: the domain value under the anchor
// pixel stays under it. Requested zoom levels outside [MinZoom, MaxZoom] are
// clamped before the pan is recomputed, never rejected.
//
// A View is not safe for concurrent use; callers serialize input and render
// passes per viewer.
package view

import "math"

// Config bounds the domain and zoom behavior of a view.
type Config struct {
	DomainMin     float64 `json:"domain_min"`
	DomainMax     float64 `json:"domain_max"`
	InitialCenter float64 `json:"initial_center"`
	MinZoom       float64 `json:"min_zoom"`
	MaxZoom       float64 `json:"max_zoom"`
	ZoomStep      float64 `json:"zoom_step"`
	WheelIn       float64 `json:"wheel_in"`
	WheelOut      float64 `json:"wheel_out"`
}

// Defaults for [DefaultConfig].
const (
	DefaultDomainMin     = -5000
	DefaultDomainMax     = 2100
	DefaultInitialCenter = -4000
	DefaultMinZoom       = 0.2
	DefaultMaxZoom       = 500
	DefaultZoomStep      = 1.3
	DefaultWheelIn       = 1.1
	DefaultWheelOut      = 0.9
)

// DefaultConfig returns the stock domain of 5000 BCE to 2100 with zoom
// limited to [0.2, 500] pixels per year. At that limit the finest reachable
// level of detail is years; raise MaxZoom to reach months, days and hours.
func DefaultConfig() Config {
	return Config{
		DomainMin:     DefaultDomainMin,
		DomainMax:     DefaultDomainMax,
		InitialCenter: DefaultInitialCenter,
		MinZoom:       DefaultMinZoom,
		MaxZoom:       DefaultMaxZoom,
		ZoomStep:      DefaultZoomStep,
		WheelIn:       DefaultWheelIn,
		WheelOut:      DefaultWheelOut,
	}
}

// View is the mutable zoom/pan state of one viewer.
type View struct {
	Config

	Zoom   float64 `json:"zoom"`
	Pan    float64 `json:"pan"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	DPR    float64 `json:"dpr"`
}

// New returns a view of the given logical size, reset to its initial zoom
// and centered on cfg.InitialCenter.
func New(cfg Config, width, height, dpr float64) *View {
	v := &View{Config: cfg}
	v.Resize(width, height, dpr)
	v.Reset()
	return v
}

// Origin is the domain value that maps to the pan offset.
func (v *View) Origin() float64 { return v.DomainMin }

// ToScreen maps a domain value to a logical x coordinate.
func (v *View) ToScreen(d float64) float64 {
	return (d-v.DomainMin)*v.Zoom + v.Pan
}

// ToDomain maps a logical x coordinate to a domain value.
func (v *View) ToDomain(x float64) float64 {
	return v.DomainMin + (x-v.Pan)/v.Zoom
}

// Clamp limits z to [MinZoom, MaxZoom].
func (v *View) Clamp(z float64) float64 {
	return math.Max(v.MinZoom, math.Min(v.MaxZoom, z))
}

// ZoomTo sets the zoom to z, clamped, keeping the domain value under anchor
// fixed on screen.
func (v *View) ZoomTo(z, anchor float64) {
	d := v.ToDomain(anchor)
	v.Zoom = v.Clamp(z)
	v.Pan = anchor - (d-v.DomainMin)*v.Zoom
}

// ZoomIn multiplies the zoom by ZoomStep around anchor.
func (v *View) ZoomIn(anchor float64) { v.ZoomTo(v.Zoom*v.ZoomStep, anchor) }

// ZoomOut divides the zoom by ZoomStep around anchor.
func (v *View) ZoomOut(anchor float64) { v.ZoomTo(v.Zoom/v.ZoomStep, anchor) }

// Wheel applies one wheel notch at anchor: negative deltaY zooms in.
func (v *View) Wheel(deltaY, anchor float64) {
	f := v.WheelOut
	if deltaY < 0 {
		f = v.WheelIn
	}
	v.ZoomTo(v.Zoom*f, anchor)
}

// PanBy shifts the view by dx logical pixels.
func (v *View) PanBy(dx float64) { v.Pan += dx }

// Reset fits the whole domain into the width (within zoom limits) and
// centers InitialCenter.
func (v *View) Reset() {
	span := v.DomainMax - v.DomainMin
	z := v.MinZoom
	if span > 0 && v.Width > 0 {
		z = v.Width / span
	}
	v.Zoom = v.Clamp(z)
	v.Pan = v.Width/2 - (v.InitialCenter-v.DomainMin)*v.Zoom
}

// Resize updates the logical size and device pixel ratio. A ratio below 1 is
// treated as 1. The pan is untouched, so the left edge stays put.
func (v *View) Resize(width, height, dpr float64) {
	v.Width = math.Max(1, width)
	v.Height = math.Max(1, height)
	v.DPR = math.Max(1, dpr)
}

// BackingSize returns the device pixel size of the drawing surface.
func (v *View) BackingSize() (int, int) {
	return max(1, int(math.Floor(v.Width*v.DPR))), max(1, int(math.Floor(v.Height*v.DPR)))
}

// Center returns the domain value at the horizontal midpoint.
func (v *View) Center() float64 { return v.ToDomain(v.Width / 2) }

// CenterOn pans so d sits at the horizontal midpoint.
func (v *View) CenterOn(d float64) {
	v.Pan = v.Width/2 - (d-v.DomainMin)*v.Zoom
}

// Visible returns the domain range covered by [-margin, Width+margin].
func (v *View) Visible(margin float64) (lo, hi float64) {
	return v.ToDomain(-margin), v.ToDomain(v.Width + margin)
}
