package render

import "github.com/matzehuels/chronoline/pkg/legend"

// Rect is an axis-aligned rectangle in logical pixels.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Contains reports whether (x, y) lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// HitKind identifies what a hit rectangle belongs to.
type HitKind string

const (
	HitPoint HitKind = "point"
	HitBar   HitKind = "bar"
	HitChip  HitKind = "chip"
)

// Hit is a clickable region recorded while building a frame.
type Hit struct {
	Kind HitKind `json:"kind"`
	// Event indexes Data.Events for point and bar hits, -1 otherwise.
	Event int          `json:"event"`
	Chip  *legend.Chip `json:"chip,omitempty"`
	Rect  Rect         `json:"rect"`
}

// HitTest returns the topmost hit containing (x, y).
func (f Frame) HitTest(x, y float64) (Hit, bool) {
	for i := len(f.Hits) - 1; i >= 0; i-- {
		if f.Hits[i].Rect.Contains(x, y) {
			return f.Hits[i], true
		}
	}
	return Hit{}, false
}
