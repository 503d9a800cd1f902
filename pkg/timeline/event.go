package timeline

import (
	"sort"

	"github.com/matzehuels/chronoline/pkg/layout"
)

// Kind distinguishes instantaneous events from ranges.
type Kind string

const (
	KindPoint    Kind = "point"
	KindInterval Kind = "interval"
)

// Event is a normalized timeline entry. Start and End are year-fractions
// with Start <= End.
type Event struct {
	Index        int     `json:"index"`
	Title        string  `json:"title"`
	Text         string  `json:"text,omitempty"`
	Group        string  `json:"group,omitempty"`
	Type         string  `json:"type,omitempty"`
	DisplayDate  string  `json:"display_date,omitempty"`
	Media        string  `json:"media,omitempty"`
	MediaCredit  string  `json:"media_credit,omitempty"`
	MediaCaption string  `json:"media_caption,omitempty"`
	Year         int     `json:"year"`
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
	HasEnd       bool    `json:"has_end"`
}

// Kind reports whether e is drawn as a point or a bar.
func (e Event) Kind() Kind {
	if !e.HasEnd || e.End == e.Start {
		return KindPoint
	}
	return KindInterval
}

// Key returns the group, or the type when no group is set.
func (e Event) Key() string {
	if e.Group != "" {
		return e.Group
	}
	return e.Type
}

// Span returns the time extent of e.
func (e Event) Span() layout.Span {
	if e.Kind() == KindPoint {
		return layout.Span{Start: e.Start, End: e.Start}
	}
	return layout.Span{Start: e.Start, End: e.End}
}

// Spans returns the extent of every event in order.
func Spans(events []Event) []layout.Span {
	out := make([]layout.Span, len(events))
	for i, e := range events {
		out[i] = e.Span()
	}
	return out
}

// Pack assigns events to rows. It is rebuilt for every dataset and ignores
// legend filtering, so rows stay stable while groups are toggled.
func Pack(events []Event) layout.Packing {
	return layout.Pack(Spans(events))
}

// Groups returns the sorted distinct non-empty keys of events.
func Groups(events []Event) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, e := range events {
		k := e.Key()
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
