package calendar

import (
	"fmt"
	"math"
)

// Months holds the fixed English month abbreviations used in labels.
var Months = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// FormatYear renders an astronomical year, e.g. "480 BCE" or "1990".
func FormatYear(y int) string {
	if y < 0 {
		return fmt.Sprintf("%d BCE", -y)
	}
	return fmt.Sprintf("%d", y)
}

// FormatMonthYear renders the month containing v, e.g. "Sep 480 BCE".
func FormatMonthYear(v float64) string {
	year, month, _ := split(v)
	if year < 0 {
		return fmt.Sprintf("%s %d BCE", Months[month], -year)
	}
	return fmt.Sprintf("%s %d", Months[month], year)
}

// FormatDay renders the day containing v, e.g. "480 BCE · Sep 20".
// Months are treated as twelfths of an average year, so day numbers near a
// month boundary can be off by one.
func FormatDay(v float64) string {
	year, month, dayPos := split(v)
	day := int(math.Floor(dayPos))
	return fmt.Sprintf("%s · %s %d", FormatYear(year), Months[month], day+1)
}

// FormatHour renders the hour containing v, e.g. "480 BCE · Sep 20, 07:00".
func FormatHour(v float64) string {
	year, month, dayPos := split(v)
	day := math.Floor(dayPos)
	hour := int(math.Floor((dayPos - day) * 24))
	return fmt.Sprintf("%s · %s %d, %02d:00", FormatYear(year), Months[month], int(day)+1, hour)
}

// split breaks v into its year, month index and the fractional day offset
// within that month.
func split(v float64) (year, month int, dayPos float64) {
	y := math.Floor(v)
	frac := v - y
	idx := int(math.Floor(frac * 12))
	dayFrac := frac - float64(idx)/12
	return int(y), clamp(idx, 0, 11), dayFrac * AverageYearDays
}
