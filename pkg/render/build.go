package render

import (
	"math"

	"github.com/matzehuels/chronoline/pkg/calendar"
	"github.com/matzehuels/chronoline/pkg/fonts"
	"github.com/matzehuels/chronoline/pkg/layout"
	"github.com/matzehuels/chronoline/pkg/legend"
	"github.com/matzehuels/chronoline/pkg/lod"
	"github.com/matzehuels/chronoline/pkg/palette"
	"github.com/matzehuels/chronoline/pkg/timeline"
	"github.com/matzehuels/chronoline/pkg/view"
)

// Geometry in logical pixels.
const (
	MajorTickLen = 40
	PillY        = 16
	PillHeight   = 20
	PillMaxWidth = 160
	PillPadding  = 10
	PillRadius   = 6
	LabelGap     = 10
	LabelSize    = 14
	CenterSize   = 12

	EventTop    = 64
	RowHeight   = 28
	EventMargin = 50
	PointRadius = 5
	PointHit    = 12
	BarHeight   = 16
	BarRadius   = 8
	BarMinWidth = 4
	TitleSize   = 14

	LegendHeight = 28
	ChipHeight   = 20
	ChipSize     = 12

	majorMargin = 120
	minorMargin = 80
)

const (
	colorBackground = "#ffffff"
	colorMajor      = "#00000033"
	colorMinor      = "#00000015"
	colorMinorFaint = "#00000010"
	colorGrid       = "#00000008"
	colorPill       = "#ffffffee"
	colorOutline    = "#00000022"
	colorLabel      = "#000000"
	colorCenter     = "#00000066"
	colorTitle      = "#111111"
	colorMuted      = "#00000088"
	colorLegendBG   = "#fafafa"
	colorChipOff    = "#f0f0f0"
	colorChipOffTxt = "#999999"
)

// State is the per-viewer input to Build.
type State struct {
	View view.View
	// Filter hides groups; nil shows everything.
	Filter *legend.Filter
}

// Data is the dataset input to Build.
type Data struct {
	Events  []timeline.Event
	Packing layout.Packing
	// Err is the load error, if any. It is shown instead of events.
	Err error
	// Generation identifies the dataset Events came from. It is copied to
	// the frame so hit indexes can be checked against a later dataset.
	Generation uint64
}

// Frame is the result of one Build call.
type Frame struct {
	Width    float64   `json:"width"`
	Height   float64   `json:"height"`
	DPR      float64   `json:"dpr"`
	Zoom     float64   `json:"zoom"`
	Center   float64   `json:"center"`
	Level    lod.Level `json:"-"`
	Commands []Command `json:"commands"`
	Hits     []Hit     `json:"hits"`

	// Generation is the dataset generation Hits index into.
	Generation uint64 `json:"generation"`
}

// BackingSize returns the device pixel size of the frame.
func (f Frame) BackingSize() (int, int) {
	dpr := math.Max(1, f.DPR)
	return max(1, int(math.Floor(f.Width*dpr))), max(1, int(math.Floor(f.Height*dpr)))
}

// Option configures Build.
type Option func(*builder)

// WithMeasurer sets the text measurer used for pill and chip widths.
func WithMeasurer(m fonts.Measurer) Option { return func(b *builder) { b.measurer = m } }

// WithLegend draws the legend strip along the bottom edge.
func WithLegend() Option { return func(b *builder) { b.legend = true } }

// WithMinorTicks toggles minor ticks; they are on by default.
func WithMinorTicks(on bool) Option { return func(b *builder) { b.minors = on } }

type builder struct {
	measurer fonts.Measurer
	legend   bool
	minors   bool

	cmds []Command
	hits []Hit
}

// Build lays out one frame.
func Build(st State, data Data, opts ...Option) Frame {
	b := &builder{measurer: fonts.Default, minors: true}
	for _, opt := range opts {
		opt(b)
	}

	v := &st.View
	w, h := v.Width, v.Height
	scale := lod.Choose(v.Zoom)

	b.emit(Command{Op: OpScale, Scale: math.Max(1, v.DPR)})
	b.emit(Command{Op: OpClear, W: w, H: h})
	b.emit(Command{Op: OpRect, W: w, H: h, Fill: colorBackground})

	if b.minors {
		b.minorTicks(v, scale, h)
	}
	b.majorTicks(v, scale)

	placeholder := ""
	switch {
	case data.Err != nil:
		placeholder = "Failed to load data: " + data.Err.Error()
	case len(data.Events) == 0:
		placeholder = "No data"
	}

	legendH := 0.0
	if b.legend && st.Filter != nil && placeholder == "" {
		legendH = LegendHeight
	}
	b.centerLine(v, h-legendH)

	area := Rect{X: 0, Y: EventTop - 8, W: w, H: math.Max(0, h-legendH-(EventTop-8))}
	if placeholder != "" {
		tw := b.measurer.MeasureText(placeholder, TitleSize)
		b.text(w/2-tw/2, area.Y+area.H/2, placeholder, TitleSize, colorMuted, BaselineMiddle)
	} else {
		b.emit(Command{Op: OpClip, X: area.X, Y: area.Y, W: area.W, H: area.H})
		b.events(v, st.Filter, data, area)
		b.emit(Command{Op: OpUnclip})
		if legendH > 0 {
			b.legendStrip(st.Filter, w, h)
		}
	}

	return Frame{
		Width:    w,
		Height:   h,
		DPR:      math.Max(1, v.DPR),
		Zoom:     v.Zoom,
		Center:   v.Center(),
		Level:    scale.Level,
		Commands: b.cmds,
		Hits:     b.hits,

		Generation: data.Generation,
	}
}

// =============================================================================
// Axis
// =============================================================================

func (b *builder) minorTicks(v *view.View, s lod.Scale, h float64) {
	lo, hi := tickRange(v, minorMargin)
	stroke := colorMinor
	if s.Minor.Faint {
		stroke = colorMinorFaint
	}
	for _, t := range lod.Ticks(s.Minor.Step, 0, lo, hi) {
		x := v.ToScreen(t)
		if x <= -minorMargin || x >= v.Width+minorMargin {
			continue
		}
		b.line(x, 0, x, s.Minor.Len, stroke)
		if s.Minor.Faint {
			b.line(x, 0, x, h, colorGrid)
		}
	}
}

func (b *builder) majorTicks(v *view.View, s lod.Scale) {
	lo, hi := tickRange(v, majorMargin)
	var labels []lod.Label
	for _, t := range lod.Ticks(s.Major, v.DomainMin, lo, hi) {
		x := v.ToScreen(t)
		if x <= -majorMargin || x >= v.Width+majorMargin {
			continue
		}
		b.line(x, 0, x, MajorTickLen, colorMajor)
		text := s.Format(t)
		width := math.Min(PillMaxWidth, b.measurer.MeasureText(text, LabelSize)+PillPadding)
		labels = append(labels, lod.Label{Value: t, X: x, Text: text, Width: width})
	}

	lod.Place(labels, LabelGap)
	for _, l := range labels {
		if !l.Drawn {
			continue
		}
		b.emit(Command{Op: OpRoundRect, X: l.Left(), Y: PillY, W: l.Width, H: PillHeight, R: PillRadius, Fill: colorPill, Stroke: colorOutline})
		b.text(l.Left()+PillPadding/2, PillY+PillHeight/2, l.Text, LabelSize, colorLabel, BaselineMiddle)
	}
}

// tickRange limits tick enumeration to the domain and the visible margin.
func tickRange(v *view.View, margin float64) (lo, hi float64) {
	lo, hi = v.Visible(margin)
	return math.Max(lo, v.DomainMin), math.Min(hi, v.DomainMax)
}

func (b *builder) centerLine(v *view.View, bottom float64) {
	cx := v.Width / 2
	b.line(cx, 0, cx, v.Height, colorMajor)
	label := calendar.FormatYear(int(math.Round(v.Center())))
	b.text(cx+6, bottom-6, label, CenterSize, colorCenter, BaselineBottom)
}

// =============================================================================
// Events
// =============================================================================

func (b *builder) events(v *view.View, filter *legend.Filter, data Data, area Rect) {
	left, right := float64(-EventMargin), v.Width+EventMargin
	bottom := area.Y + area.H

	for i, ev := range data.Events {
		if !filter.Visible(ev.Key()) {
			continue
		}
		row := max(0, data.Packing.Row(i))
		laneY := EventTop + float64(row)*RowHeight
		if laneY > bottom {
			continue
		}

		if ev.Kind() == timeline.KindPoint {
			x := v.ToScreen(ev.Start)
			if x <= left || x >= right {
				continue
			}
			cy := laneY + BarHeight/2
			b.emit(Command{Op: OpCircle, X: x, Y: cy, R: PointRadius, Fill: palette.Color(ev.Key())})
			if ev.Title != "" {
				b.text(x+8, cy, ev.Title, TitleSize, colorTitle, BaselineMiddle)
			}
			b.hit(Hit{Kind: HitPoint, Event: i, Rect: Rect{X: x - PointHit/2, Y: cy - PointHit/2, W: PointHit, H: PointHit}})
			continue
		}

		xl, xr := v.ToScreen(ev.Start), v.ToScreen(ev.End)
		if xr <= left || xl >= right {
			continue
		}
		bw := math.Max(BarMinWidth, xr-xl)
		dl, dr := math.Max(xl, left), math.Min(xl+bw, right)
		b.emit(Command{Op: OpRoundRect, X: dl, Y: laneY, W: dr - dl, H: BarHeight, R: BarRadius, Fill: palette.BarColor(ev.Key()), Stroke: colorOutline})
		if ev.Title != "" {
			b.text(xr+8, laneY+BarHeight/2, ev.Title, TitleSize, colorTitle, BaselineMiddle)
		}
		b.hit(Hit{Kind: HitBar, Event: i, Rect: Rect{X: dl, Y: laneY, W: dr - dl, H: BarHeight}})
	}
}

// =============================================================================
// Legend
// =============================================================================

func (b *builder) legendStrip(filter *legend.Filter, w, h float64) {
	top := h - LegendHeight
	b.emit(Command{Op: OpRect, Y: top, W: w, H: LegendHeight, Fill: colorLegendBG})
	b.line(0, top, w, top, colorMajor)

	x := 8.0
	y := top + (LegendHeight-ChipHeight)/2
	for _, c := range filter.Chips() {
		cw := b.measurer.MeasureText(c.Label, ChipSize) + 30
		if x+cw > w-8 {
			break
		}
		fill, ink := colorBackground, colorTitle
		if !c.Active {
			fill, ink = colorChipOff, colorChipOffTxt
		}
		b.emit(Command{Op: OpRoundRect, X: x, Y: y, W: cw, H: ChipHeight, R: ChipHeight / 2, Fill: fill, Stroke: colorOutline})
		b.emit(Command{Op: OpCircle, X: x + 12, Y: y + ChipHeight/2, R: 5, Fill: c.Color})
		b.text(x+22, y+ChipHeight/2, c.Label, ChipSize, ink, BaselineMiddle)

		chip := c
		b.hit(Hit{Kind: HitChip, Event: -1, Chip: &chip, Rect: Rect{X: x, Y: y, W: cw, H: ChipHeight}})
		x += cw + 6
	}
}

// =============================================================================
// Helpers
// =============================================================================

func (b *builder) emit(c Command) { b.cmds = append(b.cmds, c) }

func (b *builder) hit(h Hit) { b.hits = append(b.hits, h) }

func (b *builder) line(x1, y1, x2, y2 float64, stroke string) {
	b.emit(Command{Op: OpLine, X: x1, Y: y1, X2: x2, Y2: y2, Stroke: stroke})
}

func (b *builder) text(x, y float64, s string, size float64, fill string, baseline Baseline) {
	b.emit(Command{Op: OpText, X: x, Y: y, Text: s, Size: size, Fill: fill, Baseline: baseline})
}
