package sink

import (
	"bytes"
	"image"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/matzehuels/chronoline/pkg/fonts"
	"github.com/matzehuels/chronoline/pkg/palette"
	"github.com/matzehuels/chronoline/pkg/render"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale float64
}

// WithScale multiplies the backing size (default 1, i.e. the frame's DPR).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// RenderPNG rasterizes f at its backing size times the scale option.
func RenderPNG(f render.Frame, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 1}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 {
		r.scale = 1
	}

	s := NewPNGSurface(f, r.scale)
	render.Replay(f, s)

	var buf bytes.Buffer
	if err := s.dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PNGSurface draws onto an in-memory image with gg.
type PNGSurface struct {
	dc    *gg.Context
	extra float64
	faces map[float64]font.Face
}

// NewPNGSurface returns a surface sized for f. The Scale command of the
// frame sets the device pixel ratio; extra multiplies it.
func NewPNGSurface(f render.Frame, extra float64) *PNGSurface {
	bw, bh := f.BackingSize()
	w := max(1, int(float64(bw)*extra))
	h := max(1, int(float64(bh)*extra))
	return &PNGSurface{
		dc:    gg.NewContext(w, h),
		extra: extra,
		faces: make(map[float64]font.Face),
	}
}

// Image returns the rendered image.
func (s *PNGSurface) Image() image.Image { return s.dc.Image() }

func (s *PNGSurface) MeasureText(text string, size float64) float64 {
	return fonts.Measure(text, size)
}

func (s *PNGSurface) Scale(f float64) {
	s.dc.Identity()
	s.dc.Scale(f*s.extra, f*s.extra)
}

func (s *PNGSurface) Clear(w, h float64) {
	s.dc.SetRGBA(0, 0, 0, 0)
	s.dc.Clear()
}

func (s *PNGSurface) FillRect(x, y, w, h float64, fill string) {
	s.dc.DrawRectangle(x, y, w, h)
	s.fill(fill)
}

func (s *PNGSurface) StrokeRect(x, y, w, h float64, stroke string) {
	s.dc.DrawRectangle(x, y, w, h)
	s.stroke(stroke)
}

func (s *PNGSurface) RoundRect(x, y, w, h, r float64, fill, stroke string) {
	s.dc.DrawRoundedRectangle(x, y, w, h, r)
	if fill != "" {
		s.dc.SetColor(palette.NRGBA(fill))
		s.dc.FillPreserve()
	}
	s.stroke(stroke)
}

func (s *PNGSurface) Circle(cx, cy, r float64, fill string) {
	s.dc.DrawCircle(cx, cy, r)
	s.fill(fill)
}

func (s *PNGSurface) Line(x1, y1, x2, y2 float64, stroke string) {
	s.dc.DrawLine(x1, y1, x2, y2)
	s.stroke(stroke)
}

func (s *PNGSurface) Text(x, y float64, text string, size float64, fill string, baseline render.Baseline) {
	if face := s.face(size); face != nil {
		s.dc.SetFontFace(face)
	}
	ay := 1.0
	switch baseline {
	case render.BaselineMiddle:
		ay = 0.5
	case render.BaselineBottom:
		ay = 0
	}
	s.dc.SetColor(palette.NRGBA(fill))
	s.dc.DrawStringAnchored(text, x, y, 0, ay)
}

func (s *PNGSurface) Clip(x, y, w, h float64) {
	s.dc.DrawRectangle(x, y, w, h)
	s.dc.Clip()
}

func (s *PNGSurface) Unclip() { s.dc.ResetClip() }

func (s *PNGSurface) fill(c string) {
	if c == "" {
		s.dc.ClearPath()
		return
	}
	s.dc.SetColor(palette.NRGBA(c))
	s.dc.Fill()
}

func (s *PNGSurface) stroke(c string) {
	if c == "" {
		s.dc.ClearPath()
		return
	}
	s.dc.SetColor(palette.NRGBA(c))
	s.dc.SetLineWidth(1)
	s.dc.Stroke()
}

// face returns a face owned by this surface; gg keeps a reference to it.
func (s *PNGSurface) face(size float64) font.Face {
	if f, ok := s.faces[size]; ok {
		return f
	}
	f, err := fonts.NewFace(size)
	if err != nil {
		return nil
	}
	s.faces[size] = f
	return f
}
