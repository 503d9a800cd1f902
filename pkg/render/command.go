package render

import "github.com/matzehuels/chronoline/pkg/fonts"

// Op identifies a draw command.
type Op string

const (
	OpScale      Op = "scale"
	OpClear      Op = "clear"
	OpRect       Op = "rect"
	OpStrokeRect Op = "stroke_rect"
	OpRoundRect  Op = "round_rect"
	OpCircle     Op = "circle"
	OpLine       Op = "line"
	OpText       Op = "text"
	OpClip       Op = "clip"
	OpUnclip     Op = "unclip"
)

// Baseline is the vertical text anchor.
type Baseline string

const (
	BaselineTop    Baseline = "top"
	BaselineMiddle Baseline = "middle"
	BaselineBottom Baseline = "bottom"
)

// Command is a single draw instruction in logical pixels. Which fields are
// meaningful depends on Op:
//
//	scale        Scale
//	clear        W, H
//	rect         X, Y, W, H, Fill
//	stroke_rect  X, Y, W, H, Stroke
//	round_rect   X, Y, W, H, R, Fill, Stroke
//	circle       X, Y (center), R, Fill
//	line         X, Y, X2, Y2, Stroke
//	text         X, Y, Text, Size, Fill, Baseline
//	clip         X, Y, W, H
type Command struct {
	Op       Op       `json:"op"`
	X        float64  `json:"x,omitempty"`
	Y        float64  `json:"y,omitempty"`
	W        float64  `json:"w,omitempty"`
	H        float64  `json:"h,omitempty"`
	X2       float64  `json:"x2,omitempty"`
	Y2       float64  `json:"y2,omitempty"`
	R        float64  `json:"r,omitempty"`
	Scale    float64  `json:"scale,omitempty"`
	Fill     string   `json:"fill,omitempty"`
	Stroke   string   `json:"stroke,omitempty"`
	Text     string   `json:"text,omitempty"`
	Size     float64  `json:"size,omitempty"`
	Baseline Baseline `json:"baseline,omitempty"`
}

// Surface is a drawing backend. Colors are CSS hex strings, optionally
// with alpha (#rrggbbaa).
type Surface interface {
	fonts.Measurer

	Scale(s float64)
	Clear(w, h float64)
	FillRect(x, y, w, h float64, fill string)
	StrokeRect(x, y, w, h float64, stroke string)
	RoundRect(x, y, w, h, r float64, fill, stroke string)
	Circle(cx, cy, r float64, fill string)
	Line(x1, y1, x2, y2 float64, stroke string)
	Text(x, y float64, text string, size float64, fill string, baseline Baseline)
	Clip(x, y, w, h float64)
	Unclip()
}

// Replay executes every command of f on s in order.
func Replay(f Frame, s Surface) {
	for _, c := range f.Commands {
		Apply(c, s)
	}
}

// Apply executes a single command on s.
func Apply(c Command, s Surface) {
	switch c.Op {
	case OpScale:
		s.Scale(c.Scale)
	case OpClear:
		s.Clear(c.W, c.H)
	case OpRect:
		s.FillRect(c.X, c.Y, c.W, c.H, c.Fill)
	case OpStrokeRect:
		s.StrokeRect(c.X, c.Y, c.W, c.H, c.Stroke)
	case OpRoundRect:
		s.RoundRect(c.X, c.Y, c.W, c.H, c.R, c.Fill, c.Stroke)
	case OpCircle:
		s.Circle(c.X, c.Y, c.R, c.Fill)
	case OpLine:
		s.Line(c.X, c.Y, c.X2, c.Y2, c.Stroke)
	case OpText:
		s.Text(c.X, c.Y, c.Text, c.Size, c.Fill, c.Baseline)
	case OpClip:
		s.Clip(c.X, c.Y, c.W, c.H)
	case OpUnclip:
		s.Unclip()
	}
}
