package timeline

import (
	"strings"

	"github.com/matzehuels/chronoline/pkg/calendar"
)

// Column aliases, first non-empty wins.
var (
	colTitle   = []string{"Headline", "Title"}
	colText    = []string{"Text", "Body", "Description"}
	colYear    = []string{"Year", "Start Year"}
	colMonth   = []string{"Month", "Start Month"}
	colDay     = []string{"Day", "Start Day"}
	colTime    = []string{"Time", "Start Time"}
	colEndYear = []string{"End Year"}
	colEndMon  = []string{"End Month"}
	colEndDay  = []string{"End Day"}
	colEndTime = []string{"End Time"}
)

// Dropped describes a record that could not be turned into an event.
type Dropped struct {
	Line   int
	Reason string
}

// FromRecords normalizes records into events. Records without a parsable
// start year are skipped and reported in dropped; the remaining events are
// indexed in input order.
func FromRecords(records []Record, cal calendar.Calendar) (events []Event, dropped []Dropped) {
	for _, r := range records {
		ev, ok := fromRecord(r, cal)
		if !ok {
			dropped = append(dropped, Dropped{Line: r.Line, Reason: "start year missing or not an integer"})
			continue
		}
		ev.Index = len(events)
		events = append(events, ev)
	}
	return events, dropped
}

func fromRecord(r Record, cal calendar.Calendar) (Event, bool) {
	year, ok := ParseInt(r.Get(colYear...))
	if !ok {
		return Event{}, false
	}

	ev := Event{
		Text:         r.Get(colText...),
		Group:        r.Get("Group"),
		Type:         r.Get("Type"),
		DisplayDate:  r.Get("Display Date"),
		Media:        r.Get("Media"),
		MediaCredit:  r.Get("Media Credit"),
		MediaCaption: r.Get("Media Caption"),
		Year:         year,
	}
	ev.Title = r.Get(colTitle...)
	if ev.Title == "" {
		ev.Title = ev.Text
	}

	month, _ := ParseInt(r.Get(colMonth...))
	day, _ := ParseInt(r.Get(colDay...))
	ev.Start = cal.YearFraction(year, month, day, r.Get(colTime...))

	if endYear, ok := ParseInt(r.Get(colEndYear...)); ok {
		em, _ := ParseInt(r.Get(colEndMon...))
		ed, _ := ParseInt(r.Get(colEndDay...))
		ev.End = cal.YearFraction(endYear, em, ed, r.Get(colEndTime...))
		ev.HasEnd = true
		if ev.End < ev.Start {
			ev.Start, ev.End = ev.End, ev.Start
		}
	} else {
		ev.End = ev.Start
	}
	return ev, true
}

// ParseInt reads a leading base-10 integer from s the way lenient form
// parsers do: surrounding space is ignored, an optional sign is accepted and
// parsing stops at the first non-digit. It fails when no digit is found or
// the value does not fit in 32 bits.
func ParseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n, digits := 0, 0
	for ; digits < len(s); digits++ {
		c := s[digits]
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
		if n > 1<<31 {
			return 0, false
		}
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}
