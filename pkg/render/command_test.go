package render

import (
	"fmt"
	"strings"
	"testing"
)

// recorder logs surface calls as strings.
type recorder struct {
	calls []string
}

func (r *recorder) MeasureText(s string, size float64) float64 {
	return float64(len(s)) * size / 2
}

func (r *recorder) Scale(s float64)    { r.add("scale %g", s) }
func (r *recorder) Clear(w, h float64) { r.add("clear %gx%g", w, h) }
func (r *recorder) Unclip()            { r.add("unclip") }

func (r *recorder) FillRect(x, y, w, h float64, fill string) {
	r.add("rect %g,%g %gx%g %s", x, y, w, h, fill)
}

func (r *recorder) StrokeRect(x, y, w, h float64, stroke string) {
	r.add("stroke_rect %g,%g %gx%g %s", x, y, w, h, stroke)
}

func (r *recorder) RoundRect(x, y, w, h, rad float64, fill, stroke string) {
	r.add("round_rect %g,%g %gx%g r%g %s %s", x, y, w, h, rad, fill, stroke)
}

func (r *recorder) Circle(cx, cy, rad float64, fill string) {
	r.add("circle %g,%g r%g %s", cx, cy, rad, fill)
}

func (r *recorder) Line(x1, y1, x2, y2 float64, stroke string) {
	r.add("line %g,%g %g,%g %s", x1, y1, x2, y2, stroke)
}

func (r *recorder) Text(x, y float64, s string, size float64, fill string, b Baseline) {
	r.add("text %g,%g %q %g %s %s", x, y, s, size, fill, b)
}

func (r *recorder) Clip(x, y, w, h float64) {
	r.add("clip %g,%g %gx%g", x, y, w, h)
}

func (r *recorder) add(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func TestReplay(t *testing.T) {
	f := Frame{Commands: []Command{
		{Op: OpScale, Scale: 2},
		{Op: OpClear, W: 10, H: 5},
		{Op: OpRect, W: 10, H: 5, Fill: "#fff"},
		{Op: OpStrokeRect, X: 1, Y: 1, W: 2, H: 2, Stroke: "#000"},
		{Op: OpClip, W: 10, H: 5},
		{Op: OpRoundRect, X: 1, Y: 2, W: 3, H: 4, R: 1, Fill: "#abc", Stroke: "#def"},
		{Op: OpCircle, X: 5, Y: 5, R: 2, Fill: "#123"},
		{Op: OpLine, X: 0, Y: 0, X2: 0, Y2: 5, Stroke: "#456"},
		{Op: OpText, X: 1, Y: 2, Text: "hi", Size: 12, Fill: "#111", Baseline: BaselineMiddle},
		{Op: OpUnclip},
	}}

	var r recorder
	Replay(f, &r)

	want := []string{
		"scale 2",
		"clear 10x5",
		"rect 0,0 10x5 #fff",
		"stroke_rect 1,1 2x2 #000",
		"clip 0,0 10x5",
		"round_rect 1,2 3x4 r1 #abc #def",
		"circle 5,5 r2 #123",
		"line 0,0 0,5 #456",
		`text 1,2 "hi" 12 #111 middle`,
		"unclip",
	}
	if got := strings.Join(r.calls, "\n"); got != strings.Join(want, "\n") {
		t.Errorf("Replay calls:\n%s\nwant:\n%s", got, strings.Join(want, "\n"))
	}
}

func TestSurfaceAsMeasurer(t *testing.T) {
	var r recorder
	f := Build(State{View: testView()}, Data{}, WithMeasurer(&r))
	for _, c := range f.Commands {
		if c.Op == OpRoundRect && c.Y == PillY {
			want := min(float64(PillMaxWidth), r.MeasureText(labelAt(f, c), LabelSize)+PillPadding)
			if c.W != want {
				t.Errorf("pill width = %v, want %v", c.W, want)
			}
		}
	}
}

// labelAt returns the text drawn inside pill c.
func labelAt(f Frame, pill Command) string {
	for _, c := range f.Commands {
		if c.Op == OpText && c.X == pill.X+PillPadding/2 && c.Y == PillY+PillHeight/2 {
			return c.Text
		}
	}
	return ""
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 10, W: 5, H: 5}
	tests := []struct {
		x, y float64
		want bool
	}{
		{10, 10, true},
		{15, 15, true},
		{12, 12, true},
		{9.99, 12, false},
		{12, 15.01, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.x, tt.y); got != tt.want {
			t.Errorf("Contains(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}
