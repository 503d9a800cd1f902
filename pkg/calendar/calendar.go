package calendar

import (
	"regexp"
	"strconv"
)

// AverageYearDays is the mean length of a Gregorian year in days.
const AverageYearDays = 365.2425

// DefaultEpoch is the epoch year used when none is configured.
const DefaultEpoch = -5000

// Calendar maps dates to year-fractions relative to January 1 of Epoch.
type Calendar struct {
	Epoch int

	epochJDN int
}

// New returns a Calendar anchored at January 1 of epoch.
func New(epoch int) Calendar {
	return Calendar{Epoch: epoch, epochJDN: JulianDayNumber(epoch, 1, 1)}
}

// YearFraction converts a date and an optional "HH:MM[:SS]" time of day into
// a year-fraction. Month is clamped to [1,12] and day to [1,31].
func (c Calendar) YearFraction(year, month, day int, timeOfDay string) float64 {
	if c.epochJDN == 0 {
		c.epochJDN = JulianDayNumber(c.Epoch, 1, 1)
	}
	m := clamp(month, 1, 12)
	d := clamp(day, 1, 31)
	jd := float64(JulianDayNumber(year, m, d)) + TimeFraction(timeOfDay)
	return float64(c.Epoch) + (jd-float64(c.epochJDN))/AverageYearDays
}

// JulianDayNumber returns the Julian Day Number at the start of the given
// proleptic Gregorian date. Years use astronomical numbering.
func JulianDayNumber(year, month, day int) int {
	a := floorDiv(14-month, 12)
	y := year + 4800 - a
	m := month + 12*a - 3
	return day + floorDiv(153*m+2, 5) + 365*y +
		floorDiv(y, 4) - floorDiv(y, 100) + floorDiv(y, 400) - 32045
}

var timeOfDayRE = regexp.MustCompile(`(\d{1,2}):(\d{2})(?::(\d{2}))?`)

// TimeFraction parses the first "H:MM" or "HH:MM:SS" found in s and returns
// it as a fraction of a day. Fields are clamped to their valid ranges; input
// without a match yields 0.
func TimeFraction(s string) float64 {
	m := timeOfDayRE.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	h, _ := strconv.Atoi(m[1])
	mi, _ := strconv.Atoi(m[2])
	se := 0
	if m[3] != "" {
		se, _ = strconv.Atoi(m[3])
	}
	h = clamp(h, 0, 23)
	mi = clamp(mi, 0, 59)
	se = clamp(se, 0, 59)
	return float64(h)/24 + float64(mi)/1440 + float64(se)/86400
}

// floorDiv divides rounding toward negative infinity, which the JDN formula
// needs for BCE years.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
