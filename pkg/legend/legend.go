// Package legend tracks which event groups are shown and describes the
// legend chips used to change that.
//
// A [Filter] is in one of three modes. In [ModeAll] every group is visible
// and in [ModeNone] nothing is. Toggling a single group switches to
// [ModeCustom], where only the groups in the active set are visible. The
// active set is kept in sync with All and None so that switching to custom
// mode starts from what was on screen.
//
// Filters are not safe for concurrent use; callers serialize access per
// viewer.
package legend

import (
	"sort"

	"github.com/matzehuels/chronoline/pkg/palette"
)

// Mode is the filter state.
type Mode string

const (
	ModeAll    Mode = "all"
	ModeNone   Mode = "none"
	ModeCustom Mode = "custom"
)

// Admin chip labels and swatch colors.
const (
	LabelAll  = "All"
	LabelNone = "None"
	ColorAll  = "#2c7"
	ColorNone = "#c33"
)

// Filter decides group visibility.
type Filter struct {
	mode   Mode
	groups []string
	active map[string]bool
}

// NewFilter returns a filter over groups in ModeAll with every group active.
func NewFilter(groups []string) *Filter {
	f := &Filter{}
	f.Reset(groups)
	return f
}

// Reset replaces the known groups and returns to ModeAll. It is called after
// every dataset load.
func (f *Filter) Reset(groups []string) {
	f.groups = append([]string(nil), groups...)
	sort.Strings(f.groups)
	f.ShowAll()
}

// Mode returns the current mode.
func (f *Filter) Mode() Mode { return f.mode }

// Groups returns the known groups in sorted order.
func (f *Filter) Groups() []string { return append([]string(nil), f.groups...) }

// ShowAll makes every group visible.
func (f *Filter) ShowAll() {
	f.mode = ModeAll
	f.active = make(map[string]bool, len(f.groups))
	for _, g := range f.groups {
		f.active[g] = true
	}
}

// ShowNone hides every group.
func (f *Filter) ShowNone() {
	f.mode = ModeNone
	f.active = make(map[string]bool)
}

// Toggle flips group in the active set and switches to ModeCustom.
func (f *Filter) Toggle(group string) {
	f.mode = ModeCustom
	if f.active == nil {
		f.active = make(map[string]bool)
	}
	if f.active[group] {
		delete(f.active, group)
	} else {
		f.active[group] = true
	}
}

// Active reports whether group is in the active set.
func (f *Filter) Active(group string) bool { return f.active[group] }

// Visible reports whether events with the given key are drawn. Events
// without a key are visible in ModeAll only.
func (f *Filter) Visible(key string) bool {
	if f == nil {
		return true
	}
	switch f.mode {
	case ModeAll:
		return true
	case ModeNone:
		return false
	}
	return f.active[key]
}

// Clone returns an independent copy of f.
func (f *Filter) Clone() *Filter {
	c := &Filter{mode: f.mode, groups: f.Groups(), active: make(map[string]bool, len(f.active))}
	for g, on := range f.active {
		c.active[g] = on
	}
	return c
}

// Chip is one legend entry.
type Chip struct {
	Label  string `json:"label"`
	Color  string `json:"color"`
	Active bool   `json:"active"`
	Admin  bool   `json:"admin,omitempty"`
}

// Chips returns the All and None chips followed by one chip per group.
func (f *Filter) Chips() []Chip {
	chips := []Chip{
		{Label: LabelAll, Color: ColorAll, Active: f.mode == ModeAll, Admin: true},
		{Label: LabelNone, Color: ColorNone, Active: f.mode == ModeNone, Admin: true},
	}
	for _, g := range f.groups {
		chips = append(chips, Chip{
			Label:  g,
			Color:  palette.Color(g),
			Active: f.Visible(g),
		})
	}
	return chips
}

// Apply performs the action of clicking c.
func (f *Filter) Apply(c Chip) {
	if !c.Admin {
		f.Toggle(c.Label)
		return
	}
	switch c.Label {
	case LabelAll:
		f.ShowAll()
	case LabelNone:
		f.ShowNone()
	}
}
