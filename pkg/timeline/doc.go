// Package timeline defines the event model and normalizes tabular records
// into events.
//
// # Columns
//
// Records are matched against a single case-insensitive column schema. Where
// several aliases exist, the first non-empty one wins:
//
//	title         Headline, Title (falls back to the text)
//	text          Text, Body, Description
//	group         Group
//	type          Type
//	start         Year | Start Year, Month | Start Month, Day | Start Day, Time | Start Time
//	end           End Year, End Month, End Day, End Time
//	display date  Display Date
//	media         Media, Media Credit, Media Caption
//
// # Tolerant Input
//
// Year fields are parsed leniently: leading whitespace and a sign are
// accepted and parsing stops at the first non-digit, so "1066 AD" reads as
// 1066. A record whose start year does not parse is dropped. A malformed
// month, day or time is treated as absent. An end year that does not parse
// turns the event into a point. Ranges given backwards are swapped so that
// Start never exceeds End.
//
// # Keys
//
// An event's key is its group, or its type when the group is empty. Colors,
// the legend and visibility filtering all use the key.
package timeline
