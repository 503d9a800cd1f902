// Package calendar converts proleptic Gregorian dates into a continuous
// year-fraction coordinate and formats such coordinates for tick labels.
//
// # Coordinates
//
// A year-fraction is a float64 whose integer part is the astronomical year
// (year 0 is 1 BCE, year -1 is 2 BCE). Dates are mapped through the Julian
// Day Number of the date and divided by the average Gregorian year length
// ([AverageYearDays]), measured from January 1 of a fixed epoch year:
//
//	cal := calendar.New(-5000)
//	v := cal.YearFraction(-480, 9, 20, "")   // ≈ -479.28
//
// The mapping is monotonic and continuous, which is what the view transform
// needs. It is not calendar accurate below one year: month and day positions
// drift by up to a day because the average year length is used.
//
// # Tolerant Input
//
// Out-of-range months and days are clamped rather than rejected, and a
// malformed time of day is treated as midnight. A month or day of 0 means
// "absent" and clamps to 1.
//
// # Labels
//
// [FormatYear], [FormatMonthYear], [FormatDay] and [FormatHour] render a
// year-fraction at increasing resolution. Negative years carry a "BCE"
// suffix; positive years are printed bare.
package calendar
