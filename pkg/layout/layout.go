// Package layout assigns timeline events to rows so that no two events in
// the same row overlap in time.
//
// Packing is greedy first-fit: spans are placed in input order into the
// lowest row whose existing spans they do not intersect, opening a new row
// when none fits. The result is deterministic for a given input order but
// not guaranteed to use the minimum number of rows.
package layout

// Span is a closed interval of fractional years. Points have Start == End.
type Span struct {
	Start, End float64
}

// Width returns the length of the span in years.
func (s Span) Width() float64 { return s.End - s.Start }

// Overlaps reports whether s and o share at least one point. Touching
// endpoints count as overlap.
func (s Span) Overlaps(o Span) bool {
	return !(s.End < o.Start || s.Start > o.End)
}

// Packing is the row assignment produced by Pack.
type Packing struct {
	// Rows lists span indices per row, in the order they were placed.
	Rows [][]int
	// RowOf maps a span index to its row.
	RowOf []int
}

// NumRows returns the number of rows used.
func (p Packing) NumRows() int { return len(p.Rows) }

// Row returns the row of span i, or -1 when i is out of range.
func (p Packing) Row(i int) int {
	if i < 0 || i >= len(p.RowOf) {
		return -1
	}
	return p.RowOf[i]
}

// Pack assigns each span to the first row where it overlaps nothing already
// placed.
func Pack(spans []Span) Packing {
	p := Packing{RowOf: make([]int, len(spans))}
	for i, s := range spans {
		row := firstFit(p.Rows, spans, s)
		if row == len(p.Rows) {
			p.Rows = append(p.Rows, nil)
		}
		p.Rows[row] = append(p.Rows[row], i)
		p.RowOf[i] = row
	}
	return p
}

func firstFit(rows [][]int, spans []Span, s Span) int {
	for r, members := range rows {
		fits := true
		for _, j := range members {
			if s.Overlaps(spans[j]) {
				fits = false
				break
			}
		}
		if fits {
			return r
		}
	}
	return len(rows)
}
