// Package pkg provides the core libraries for Chronoline timeline rendering.
//
// # Overview
//
// Chronoline turns a CSV of dated events into a zoomable, pannable timeline.
// The same frame builder drives every output: static SVG, PNG, PDF and JSON
// files, the browser viewer and the terminal viewer.
//
// # Architecture
//
// The typical data flow:
//
//	CSV file or URL
//	       ↓
//	  [source] package (fetch, parse, normalize, pack)
//	       ↓
//	  [view] + [legend] state (zoom, pan, group filter)
//	       ↓
//	  [render] package (display list + hit rectangles)
//	       ↓
//	  [render/sink] (SVG, PNG, PDF, JSON, terminal cells)
//
// # Quick Start
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	defer runner.Close()
//
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Input:   "timeline-data.csv",
//	    Formats: []string{pipeline.FormatSVG, pipeline.FormatPNG},
//	})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("timeline.svg", res.Artifacts[pipeline.FormatSVG], 0o644)
//
// # Main Packages
//
// ## Domain
//
// [calendar] - Proleptic Gregorian day counts, fractional years from an
// origin, and the BCE/CE label formats.
//
// [timeline] - CSV records to events with column aliases, dropped-row
// reasons and the point/bar distinction.
//
// [layout] - First-fit row packing of event spans.
//
// [view] - Zoom and pan state with anchor-preserving zoom and the pointer
// input controller.
//
// [lod] - Level-of-detail cascade, tick enumeration and label collision
// avoidance.
//
// [legend] - Group visibility filter and its All/None/group chips.
//
// [palette] - Deterministic group colors.
//
// [details] - The event details panel as HTML or terminal text.
//
// ## Rendering
//
// [render] - Pure frame builder and hit testing.
//
// [render/sink] - Drawing backends that replay a frame.
//
// [fonts] - The bundled font and text measurement.
//
// ## Infrastructure
//
// [source] - File and HTTP sources, the loader with generations and file
// watching.
//
// [pipeline] - Load, build and render orchestration shared by the CLI, the
// HTTP viewer and the terminal viewer.
//
// [cache] - File, Redis and null caches for fetched CSVs and rendered
// artifacts.
//
// [session] - Per-browser view state with sliding expiry.
//
// [config] - TOML/YAML configuration with environment overrides.
//
// [errors] - Coded errors mapped to HTTP statuses and user messages.
//
// [observability] - Pipeline, cache and HTTP hooks.
//
// [calendar]: https://pkg.go.dev/github.com/matzehuels/chronoline/pkg/calendar
// [timeline]: https://pkg.go.dev/github.com/matzehuels/chronoline/pkg/timeline
// [layout]: https://pkg.go.dev/github.com/matzehuels/chronoline/pkg/layout
// [view]: https://pkg.go.dev/github.com/matzehuels/chronoline/pkg/view
// [lod]: https://pkg.go.dev/github.com/matzehuels/chronoline/pkg/lod
// [legend]: https://pkg.go.dev/github.com/matzehuels/chronoline/pkg/legend
// [palette]: https://pkg.go.dev/github.com/matzehuels/chronoline/pkg/palette
// [details]: https://pkg.go.dev/github.com/matzehuels/chronoline/pkg/details
// [render]: https://pkg.go.dev/github.com/matzehuels/chronoline/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/chronoline/pkg/render/sink
// [fonts]: https://pkg.go.dev/github.com/matzehuels/chronoline/pkg/fonts
// [source]: https://pkg.go.dev/github.com/matzehuels/chronoline/pkg/source
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/chronoline/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/chronoline/pkg/cache
// [session]: https://pkg.go.dev/github.com/matzehuels/chronoline/pkg/session
// [config]: https://pkg.go.dev/github.com/matzehuels/chronoline/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/chronoline/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/chronoline/pkg/observability
package pkg
