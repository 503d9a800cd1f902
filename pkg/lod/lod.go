// Package lod selects tick spacing and label formats for the current zoom.
//
// Seven levels of detail cover hours to millennia. [Choose] walks the
// cascade from the finest level and returns the first whose threshold the
// zoom (pixels per year) reaches; the millennium level is the fallback.
//
//	zoom ≥ 8000  hour
//	zoom ≥ 1200  day
//	zoom ≥ 600   month
//	zoom ≥ 200   year
//	zoom ≥ 60    decade
//	zoom ≥ 18    century
//	otherwise    millennium
//
// The stock view caps zoom at 500, so the month, day and hour levels are
// only reached when the zoom limit is raised in configuration.
//
// [Ticks] enumerates tick positions as integer multiples of a step from a
// fixed anchor, so positions do not drift when iterating across thousands
// of years at sub-day resolution. [Place] applies left-to-right label
// collision avoidance: a label that would overlap the previously drawn one
// is skipped while its tick stays.
package lod

import (
	"math"

	"github.com/matzehuels/chronoline/pkg/calendar"
)

// Level is a tick granularity tier.
type Level int

const (
	Millennium Level = iota
	Century
	Decade
	Year
	Month
	Day
	Hour
)

var levelNames = [...]string{"millennium", "century", "decade", "year", "month", "day", "hour"}

func (l Level) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return "unknown"
	}
	return levelNames[l]
}

// Minor describes the secondary ticks between major ones.
type Minor struct {
	Step float64
	// Len is the tick length in pixels from the top edge.
	Len float64
	// Faint minors also draw a light full-height grid line.
	Faint bool
}

// Scale is the tick configuration for one level.
type Scale struct {
	Level     Level
	Threshold float64
	Major     float64
	Minor     Minor
	Format    func(v float64) string
}

const (
	hourStep  = 1 / (calendar.AverageYearDays * 24)
	dayStep   = 1 / calendar.AverageYearDays
	monthStep = 1.0 / 12
)

func formatYear(v float64) string { return calendar.FormatYear(int(math.Round(v))) }

// cascade is ordered finest first.
var cascade = []Scale{
	{Hour, 8000, hourStep, Minor{hourStep / 6, 10, true}, calendar.FormatHour},
	{Day, 1200, dayStep, Minor{dayStep / 12, 12, true}, calendar.FormatDay},
	{Month, 600, monthStep, Minor{monthStep / 4, 14, true}, calendar.FormatMonthYear},
	{Year, 200, 1, Minor{0.25, 14, false}, formatYear},
	{Decade, 60, 10, Minor{1, 12, false}, formatYear},
	{Century, 18, 100, Minor{10, 10, false}, formatYear},
	{Millennium, 0, 1000, Minor{100, 8, false}, formatYear},
}

// Choose returns the scale for zoom in pixels per year.
func Choose(zoom float64) Scale {
	for _, s := range cascade {
		if zoom >= s.Threshold {
			return s
		}
	}
	return cascade[len(cascade)-1]
}

// Levels returns every scale, finest first.
func Levels() []Scale {
	out := make([]Scale, len(cascade))
	copy(out, cascade)
	return out
}

// MaxTicks bounds the number of ticks Ticks returns.
const MaxTicks = 50000

// Ticks returns anchor + k*step for every integer k with the result in
// [lo, hi). At most MaxTicks values are returned.
func Ticks(step, anchor, lo, hi float64) []float64 {
	if step <= 0 || hi <= lo || math.IsNaN(lo) || math.IsNaN(hi) {
		return nil
	}
	k0 := math.Ceil((lo - anchor) / step)
	var out []float64
	for k := k0; len(out) < MaxTicks; k++ {
		v := anchor + k*step
		if v >= hi {
			break
		}
		if v < lo {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Label is a candidate tick label with its pill geometry.
type Label struct {
	Value float64
	X     float64
	Text  string
	Width float64
	Drawn bool
}

// Left returns the left edge of the label box centered on X.
func (l Label) Left() float64 { return l.X - l.Width/2 }

// Right returns the right edge of the label box centered on X.
func (l Label) Right() float64 { return l.X + l.Width/2 }

// Place marks which labels are drawn. Labels must be in increasing X order.
// A label is drawn only when its left edge lies beyond the right edge of
// the last drawn label plus gap.
func Place(labels []Label, gap float64) {
	lastRight := math.Inf(-1)
	for i := range labels {
		labels[i].Drawn = labels[i].Left() > lastRight+gap
		if labels[i].Drawn {
			lastRight = labels[i].Right()
		}
	}
}
