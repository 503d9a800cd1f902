// Package render turns view state and a dataset into a frame: an ordered
// display list of draw commands plus the hit rectangles of everything
// clickable.
//
// # Overview
//
// [Build] is a pure function. Given the same [State], [Data] and options it
// produces the same [Frame], so frames can be cached, serialized, diffed in
// tests and replayed onto any drawing backend:
//
//	f := render.Build(render.State{View: v, Filter: filter}, data, render.WithLegend())
//	render.Replay(f, surface)
//	if hit, ok := f.HitTest(x, y); ok {
//	    // hit.Event indexes data.Events
//	}
//
// # Frame Layout
//
// A frame is drawn back to front:
//
//  1. device-pixel scale, clear and white background
//  2. minor ticks, with faint full-height grid lines at month level and finer
//  3. major ticks and their pill labels, with collision avoidance
//  4. the center line and the year under it
//  5. events in packed row lanes, clipped to the event area
//  6. the legend strip, when enabled
//
// An empty dataset or a load error yields a placeholder message with the
// axis still drawn and no hit rectangles.
//
// # Hit Testing
//
// Hits are recorded in draw order. [Frame.HitTest] scans them in reverse so
// the topmost item wins, using inclusive bounds. Because hits belong to the
// frame they were built with, a click is always tested against what was on
// screen.
//
// # Surfaces
//
// A [Surface] executes commands. Implementations live in the sink
// subpackage (SVG, PNG, terminal) together with the JSON display list.
// [ToPDF] converts SVG output with the external rsvg-convert tool.
package render
