// Package pipeline provides the load → frame → render pipeline for Chronoline.
//
// The CLI, the HTTP viewer and the terminal viewer all go through this
// package so that a given CSV, viewport and group selection produce the same
// frame everywhere.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: fetch the CSV (file or URL), normalize events, pack rows
//  2. Frame: build a view and legend filter from the options and lay out
//     one frame of draw commands and hit regions
//  3. Render: replay the frame into the requested formats (SVG, PNG, PDF, JSON)
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Input:   "history.csv",
//	    Formats: []string{"svg", "png"},
//	    Width:   1600,
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages with an existing dataset:
//
//	frame := pipeline.BuildFrame(ds, opts)
//	artifacts, err := runner.Render(ctx, frame, ds.Hash, opts)
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/chronoline/pkg/cache"
	errs "github.com/matzehuels/chronoline/pkg/errors"
	"github.com/matzehuels/chronoline/pkg/render"
	"github.com/matzehuels/chronoline/pkg/source"
	"github.com/matzehuels/chronoline/pkg/view"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultWidth is the default frame width in logical pixels.
	DefaultWidth = 1200.0

	// DefaultHeight is the default frame height in logical pixels.
	DefaultHeight = 400.0

	// DefaultDPR is the default device pixel ratio.
	DefaultDPR = 1.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// ContentTypes maps each format to its MIME type.
var ContentTypes = map[string]string{
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
	FormatPDF:  "application/pdf",
	FormatJSON: "application/json",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	Input   string `json:"input"`
	Refresh bool   `json:"refresh,omitempty"`

	// Frame options
	Width  float64  `json:"width,omitempty"`
	Height float64  `json:"height,omitempty"`
	DPR    float64  `json:"dpr,omitempty"`
	Zoom   float64  `json:"zoom,omitempty"`   // pixels per year; 0 fits the domain
	Center *float64 `json:"center,omitempty"` // year at the horizontal midpoint
	Groups []string `json:"groups,omitempty"` // visible groups; empty shows all

	ShowLegend   bool `json:"legend,omitempty"`
	NoMinorTicks bool `json:"no_minor_ticks,omitempty"`

	// Render options
	Formats    []string `json:"formats,omitempty"`
	FontFamily string   `json:"font_family,omitempty"`
	EmbedFont  bool     `json:"embed_font,omitempty"`
	HitRegions bool     `json:"hit_regions,omitempty"`

	// View bounds the domain and zoom. The zero value uses view.DefaultConfig.
	View view.Config `json:"-"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Dataset is the loaded timeline. When loading failed, Dataset.Err is
	// set and Frame shows the error instead of events.
	Dataset *source.Dataset

	// Frame is the laid out frame the artifacts were rendered from.
	Frame render.Frame

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	EventCount   int
	DroppedCount int
	RowCount     int
	HitCount     int
	LoadTime     time.Duration
	FrameTime    time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := errs.ValidateSourceRef(o.Input); err != nil {
		return err
	}
	if err := o.ValidateForFrame(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetFrameDefaults fills in the viewport and view bounds.
func (o *Options) SetFrameDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.DPR == 0 {
		o.DPR = DefaultDPR
	}
	if o.View == (view.Config{}) {
		o.View = view.DefaultConfig()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForFrame sets frame defaults and checks the viewport, zoom and
// group names.
func (o *Options) ValidateForFrame() error {
	o.SetFrameDefaults()
	if err := errs.ValidateViewport(o.Width, o.Height, o.DPR); err != nil {
		return err
	}
	if o.Zoom < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "zoom cannot be negative, got %v", o.Zoom)
	}
	for _, g := range o.Groups {
		if err := errs.ValidateGroupName(g); err != nil {
			return err
		}
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender sets render defaults and checks the formats.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// String summarizes the options for log lines.
func (o *Options) String() string {
	return fmt.Sprintf("%s %vx%v@%v %v", o.Input, o.Width, o.Height, o.DPR, o.Formats)
}

// ArtifactKeyOpts returns cache key options for rendering f in format.
func (o *Options) ArtifactKeyOpts(format string, f render.Frame) cache.ArtifactKeyOpts {
	var groups []string
	if len(o.Groups) > 0 {
		groups = slices.Clone(o.Groups)
		slices.Sort(groups)
		groups = slices.Compact(groups)
	}
	return cache.ArtifactKeyOpts{
		Format:       format,
		Width:        f.Width,
		Height:       f.Height,
		DPR:          f.DPR,
		Zoom:         f.Zoom,
		Center:       f.Center,
		Groups:       groups,
		Legend:       o.ShowLegend,
		DomainMin:    o.View.DomainMin,
		DomainMax:    o.View.DomainMax,
		MinZoom:      o.View.MinZoom,
		MaxZoom:      o.View.MaxZoom,
		NoMinorTicks: o.NoMinorTicks,
		FontFamily:   o.FontFamily,
		EmbedFont:    o.EmbedFont,
		HitRegions:   o.HitRegions,
	}
}
