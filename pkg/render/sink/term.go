package sink

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"

	"github.com/matzehuels/chronoline/pkg/palette"
	"github.com/matzehuels/chronoline/pkg/render"
)

// Colors with less alpha than this are not drawn on the cell grid.
const termMinAlpha = 0x0c

type cell struct {
	r  rune
	fg string
	bg string
	// cont marks the second column of a wide rune.
	cont bool
}

type cellRect struct {
	c0, r0, c1, r1 int
}

// TermSurface rasterizes frames onto a grid of terminal cells.
type TermSurface struct {
	cols, rows int
	cw, ch     float64
	grid       [][]cell
	clip       *cellRect
	paper      colorful.Color
}

// NewTermSurface returns a cols×rows grid covering a logical area of
// width×height pixels.
func NewTermSurface(cols, rows int, width, height float64) *TermSurface {
	cols, rows = max(1, cols), max(1, rows)
	s := &TermSurface{
		cols:  cols,
		rows:  rows,
		cw:    math.Max(1, width) / float64(cols),
		ch:    math.Max(1, height) / float64(rows),
		paper: colorful.Color{R: 1, G: 1, B: 1},
	}
	s.reset()
	return s
}

// CellSize returns the logical size of one cell.
func (s *TermSurface) CellSize() (w, h float64) { return s.cw, s.ch }

// CellCenter returns the logical coordinate at the center of a cell.
func (s *TermSurface) CellCenter(col, row int) (x, y float64) {
	return (float64(col) + 0.5) * s.cw, (float64(row) + 0.5) * s.ch
}

// MeasureText returns the display width of text in logical pixels.
func (s *TermSurface) MeasureText(text string, _ float64) float64 {
	return float64(runewidth.StringWidth(text)) * s.cw
}

func (s *TermSurface) Scale(float64) {}

func (s *TermSurface) Clear(w, h float64) { s.reset() }

func (s *TermSurface) FillRect(x, y, w, h float64, fill string) {
	bg, ok := s.color(fill)
	if !ok {
		return
	}
	s.each(s.area(x, y, w, h), func(c *cell) { c.bg = bg })
}

func (s *TermSurface) StrokeRect(x, y, w, h float64, stroke string) {
	fg, ok := s.color(stroke)
	if !ok {
		return
	}
	a := s.area(x, y, w, h)
	for col := a.c0; col < a.c1; col++ {
		s.put(col, a.r0, '─', fg)
		s.put(col, a.r1-1, '─', fg)
	}
	for row := a.r0; row < a.r1; row++ {
		s.put(a.c0, row, '│', fg)
		s.put(a.c1-1, row, '│', fg)
	}
}

// RoundRect fills the cells the rectangle covers; radius and stroke are
// below cell resolution.
func (s *TermSurface) RoundRect(x, y, w, h, r float64, fill, stroke string) {
	s.FillRect(x, y, w, h, fill)
}

func (s *TermSurface) Circle(cx, cy, r float64, fill string) {
	fg, ok := s.color(fill)
	if !ok {
		return
	}
	s.put(s.col(cx), s.row(cy), '●', fg)
}

func (s *TermSurface) Line(x1, y1, x2, y2 float64, stroke string) {
	fg, ok := s.color(stroke)
	if !ok {
		return
	}
	switch {
	case x1 == x2:
		col := s.col(x1)
		r0, r1 := s.row(math.Min(y1, y2)), s.row(math.Max(y1, y2)-0.01)
		for row := r0; row <= r1; row++ {
			s.put(col, row, '│', fg)
		}
	case y1 == y2:
		row := s.row(y1)
		c0, c1 := s.col(math.Min(x1, x2)), s.col(math.Max(x1, x2)-0.01)
		for col := c0; col <= c1; col++ {
			s.put(col, row, '─', fg)
		}
	}
}

func (s *TermSurface) Text(x, y float64, text string, size float64, fill string, baseline render.Baseline) {
	fg, ok := s.color(fill)
	if !ok {
		return
	}
	row := s.row(y)
	if baseline == render.BaselineBottom {
		row = s.row(y - s.ch/2)
	}
	col := s.col(x)
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		s.put(col, row, r, fg)
		if w == 2 && s.visible(col+1, row) {
			s.grid[row][col+1].cont = true
		}
		col += w
	}
}

func (s *TermSurface) Clip(x, y, w, h float64) {
	a := s.area(x, y, w, h)
	s.clip = &a
}

func (s *TermSurface) Unclip() { s.clip = nil }

// String renders the grid with ANSI colors, one line per row.
func (s *TermSurface) String() string {
	var b strings.Builder
	for row := range s.grid {
		if row > 0 {
			b.WriteByte('\n')
		}
		var run strings.Builder
		var fg, bg string
		flush := func() {
			if run.Len() == 0 {
				return
			}
			st := lipgloss.NewStyle().Background(lipgloss.Color(bg))
			if fg != "" {
				st = st.Foreground(lipgloss.Color(fg))
			}
			b.WriteString(st.Render(run.String()))
			run.Reset()
		}
		for _, c := range s.grid[row] {
			if c.cont {
				continue
			}
			if c.fg != fg || c.bg != bg {
				flush()
				fg, bg = c.fg, c.bg
			}
			run.WriteRune(c.r)
		}
		flush()
	}
	return b.String()
}

// Plain renders the grid without colors.
func (s *TermSurface) Plain() string {
	lines := make([]string, len(s.grid))
	for row, cells := range s.grid {
		var b strings.Builder
		for _, c := range cells {
			if !c.cont {
				b.WriteRune(c.r)
			}
		}
		lines[row] = b.String()
	}
	return strings.Join(lines, "\n")
}

func (s *TermSurface) reset() {
	paper := s.paper.Hex()
	s.grid = make([][]cell, s.rows)
	for row := range s.grid {
		s.grid[row] = make([]cell, s.cols)
		for col := range s.grid[row] {
			s.grid[row][col] = cell{r: ' ', bg: paper}
		}
	}
	s.clip = nil
}

// color blends c over the paper color.
func (s *TermSurface) color(c string) (string, bool) {
	if c == "" {
		return "", false
	}
	n := palette.NRGBA(c)
	if n.A < termMinAlpha {
		return "", false
	}
	col := colorful.Color{R: float64(n.R) / 255, G: float64(n.G) / 255, B: float64(n.B) / 255}
	return s.paper.BlendRgb(col, float64(n.A)/255).Clamped().Hex(), true
}

func (s *TermSurface) col(x float64) int { return int(math.Floor(x / s.cw)) }
func (s *TermSurface) row(y float64) int { return int(math.Floor(y / s.ch)) }

// area returns the cells whose centers lie inside the rectangle, at least
// one cell when the rectangle is on screen.
func (s *TermSurface) area(x, y, w, h float64) cellRect {
	a := cellRect{
		c0: int(math.Round(x / s.cw)),
		r0: int(math.Round(y / s.ch)),
		c1: int(math.Round((x + w) / s.cw)),
		r1: int(math.Round((y + h) / s.ch)),
	}
	if a.c1 <= a.c0 {
		a.c0, a.c1 = s.col(x), s.col(x)+1
	}
	if a.r1 <= a.r0 {
		a.r0, a.r1 = s.row(y), s.row(y)+1
	}
	return a
}

func (s *TermSurface) each(a cellRect, fn func(*cell)) {
	for row := a.r0; row < a.r1; row++ {
		for col := a.c0; col < a.c1; col++ {
			if s.visible(col, row) {
				fn(&s.grid[row][col])
			}
		}
	}
}

func (s *TermSurface) put(col, row int, r rune, fg string) {
	if !s.visible(col, row) {
		return
	}
	c := &s.grid[row][col]
	c.r, c.fg, c.cont = r, fg, false
}

func (s *TermSurface) visible(col, row int) bool {
	if col < 0 || row < 0 || col >= s.cols || row >= s.rows {
		return false
	}
	if s.clip != nil {
		return col >= s.clip.c0 && col < s.clip.c1 && row >= s.clip.r0 && row < s.clip.r1
	}
	return true
}
