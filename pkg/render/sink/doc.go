// Package sink provides output formats for timeline frames.
//
// # Overview
//
// A "sink" replays a [render.Frame] onto a concrete backend:
//
//   - SVG: vector output, also used by the HTTP viewer
//   - PNG: raster output at device-pixel size (fogleman/gg)
//   - PDF: print output (SVG converted by rsvg-convert)
//   - JSON: the display list and hit rectangles
//   - Term: a character-cell raster for terminal viewers
//
// Every backend implements [render.Surface], so the frame builder never
// depends on any of them.
//
// # SVG Output
//
//	svg := sink.RenderSVG(frame,
//	    sink.WithEmbeddedFont(),
//	    sink.WithHitRegions(),
//	)
//
// [WithHitRegions] adds transparent rectangles carrying data-kind and
// data-event attributes so pages can show a pointer cursor over clickable
// items. [WithEmbeddedFont] inlines the label font so text measures the same
// in every browser.
//
// # PNG and PDF Output
//
// [RenderPNG] rasterizes at the frame's backing size; [WithScale] multiplies
// it further. [RenderPDF] needs librsvg:
//   - macOS: brew install librsvg
//   - Linux: apt install librsvg2-bin
//
// # Terminal Output
//
// [NewTermSurface] maps logical pixels onto a grid of cells. Lines become box
// drawing characters, points become dots and bars become blocks; colors are
// applied with lipgloss when the grid is printed.
package sink
