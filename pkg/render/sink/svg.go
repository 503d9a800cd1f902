package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"

	"github.com/matzehuels/chronoline/pkg/fonts"
	"github.com/matzehuels/chronoline/pkg/palette"
	"github.com/matzehuels/chronoline/pkg/render"
)

const hitRegionCSS = `
    .hit { fill: transparent; cursor: pointer; }`

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	embedFont  bool
	hitRegions bool
	fontFamily string
}

// WithEmbeddedFont inlines the label font as a data URL.
func WithEmbeddedFont() SVGOption { return func(r *svgRenderer) { r.embedFont = true } }

// WithHitRegions adds transparent, tagged rectangles for every hit.
func WithHitRegions() SVGOption { return func(r *svgRenderer) { r.hitRegions = true } }

// WithFontFamily overrides the CSS font-family of all text.
func WithFontFamily(f string) SVGOption { return func(r *svgRenderer) { r.fontFamily = f } }

// RenderSVG renders f as a standalone SVG document in logical pixels.
func RenderSVG(f render.Frame, opts ...SVGOption) []byte {
	r := svgRenderer{fontFamily: fonts.FallbackFontFamily}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%s" height="%s">`+"\n",
		num(f.Width), num(f.Height), num(f.Width), num(f.Height))

	if r.embedFont || r.hitRegions {
		buf.WriteString("  <style>")
		if r.embedFont {
			fmt.Fprintf(&buf, "\n    @font-face { font-family: '%s'; src: url(data:font/ttf;base64,%s); }",
				fonts.FontFamily, fonts.RegularBase64())
		}
		if r.hitRegions {
			buf.WriteString(hitRegionCSS)
		}
		buf.WriteString("\n  </style>\n")
	}

	s := NewSVGSurface(&buf, r.fontFamily)
	render.Replay(f, s)
	s.Flush()

	if r.hitRegions {
		renderHitRegions(&buf, f.Hits)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderHitRegions(buf *bytes.Buffer, hits []render.Hit) {
	for _, h := range hits {
		fmt.Fprintf(buf, `  <rect class="hit" x="%s" y="%s" width="%s" height="%s" data-kind="%s" data-event="%d"`,
			num(h.Rect.X), num(h.Rect.Y), num(h.Rect.W), num(h.Rect.H), h.Kind, h.Event)
		if h.Chip != nil {
			fmt.Fprintf(buf, ` data-chip="%s" data-admin="%t"`, escapeXML(h.Chip.Label), h.Chip.Admin)
		}
		buf.WriteString("/>\n")
	}
}

// SVGSurface writes SVG elements for each surface call.
type SVGSurface struct {
	buf        *bytes.Buffer
	fontFamily string
	clips      int
	open       int
}

// NewSVGSurface returns a surface writing SVG elements to buf.
func NewSVGSurface(buf *bytes.Buffer, fontFamily string) *SVGSurface {
	return &SVGSurface{buf: buf, fontFamily: fontFamily}
}

// MeasureText uses the embedded font metrics.
func (s *SVGSurface) MeasureText(text string, size float64) float64 {
	return fonts.Measure(text, size)
}

// Scale is a no-op: SVG output is resolution independent.
func (s *SVGSurface) Scale(float64) {}

// Clear is a no-op: the document starts empty.
func (s *SVGSurface) Clear(w, h float64) {}

func (s *SVGSurface) FillRect(x, y, w, h float64, fill string) {
	fmt.Fprintf(s.buf, `  <rect x="%s" y="%s" width="%s" height="%s"%s/>`+"\n",
		num(x), num(y), num(w), num(h), paint("fill", fill))
}

func (s *SVGSurface) StrokeRect(x, y, w, h float64, stroke string) {
	fmt.Fprintf(s.buf, `  <rect x="%s" y="%s" width="%s" height="%s" fill="none"%s/>`+"\n",
		num(x), num(y), num(w), num(h), paint("stroke", stroke))
}

func (s *SVGSurface) RoundRect(x, y, w, h, r float64, fill, stroke string) {
	fmt.Fprintf(s.buf, `  <rect x="%s" y="%s" width="%s" height="%s" rx="%s"%s%s/>`+"\n",
		num(x), num(y), num(w), num(h), num(r), paint("fill", fill), paint("stroke", stroke))
}

func (s *SVGSurface) Circle(cx, cy, r float64, fill string) {
	fmt.Fprintf(s.buf, `  <circle cx="%s" cy="%s" r="%s"%s/>`+"\n", num(cx), num(cy), num(r), paint("fill", fill))
}

func (s *SVGSurface) Line(x1, y1, x2, y2 float64, stroke string) {
	fmt.Fprintf(s.buf, `  <line x1="%s" y1="%s" x2="%s" y2="%s"%s/>`+"\n",
		num(x1), num(y1), num(x2), num(y2), paint("stroke", stroke))
}

func (s *SVGSurface) Text(x, y float64, text string, size float64, fill string, baseline render.Baseline) {
	fmt.Fprintf(s.buf, `  <text x="%s" y="%s" font-family="%s" font-size="%s" dominant-baseline="%s"%s>%s</text>`+"\n",
		num(x), num(y), escapeXML(s.fontFamily), num(size), svgBaseline(baseline), paint("fill", fill), escapeXML(text))
}

func (s *SVGSurface) Clip(x, y, w, h float64) {
	s.clips++
	id := "clip" + strconv.Itoa(s.clips)
	fmt.Fprintf(s.buf, `  <clipPath id="%s"><rect x="%s" y="%s" width="%s" height="%s"/></clipPath>`+"\n",
		id, num(x), num(y), num(w), num(h))
	fmt.Fprintf(s.buf, `  <g clip-path="url(#%s)">`+"\n", id)
	s.open++
}

func (s *SVGSurface) Unclip() {
	if s.open == 0 {
		return
	}
	s.buf.WriteString("  </g>\n")
	s.open--
}

// Flush closes any clip groups left open.
func (s *SVGSurface) Flush() {
	for s.open > 0 {
		s.Unclip()
	}
}

func svgBaseline(b render.Baseline) string {
	switch b {
	case render.BaselineMiddle:
		return "middle"
	case render.BaselineBottom:
		return "text-after-edge"
	default:
		return "text-before-edge"
	}
}

// paint renders a fill or stroke attribute, splitting alpha into an
// opacity attribute for renderers without #rrggbbaa support.
func paint(attr, color string) string {
	if color == "" {
		if attr == "fill" {
			return ` fill="none"`
		}
		return ""
	}
	c, err := palette.Parse(color)
	if err != nil {
		return fmt.Sprintf(` %s="%s"`, attr, escapeXML(color))
	}
	out := fmt.Sprintf(` %s="#%02x%02x%02x"`, attr, c.R, c.G, c.B)
	if c.A != 0xff {
		out += fmt.Sprintf(` %s-opacity="%s"`, attr, num(float64(c.A)/255))
	}
	return out
}

// num formats a coordinate with at most two decimals.
func num(v float64) string {
	v = math.Round(v*100) / 100
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
