package legend

import (
	"fmt"
	"testing"
)

func TestNewFilterShowsAll(t *testing.T) {
	f := NewFilter([]string{"war", "art"})
	if f.Mode() != ModeAll {
		t.Errorf("Mode() = %v, want all", f.Mode())
	}
	for _, g := range []string{"war", "art", "", "unknown"} {
		if !f.Visible(g) {
			t.Errorf("Visible(%q) = false in all mode", g)
		}
	}
	if !f.Active("war") || !f.Active("art") {
		t.Error("groups should start active")
	}
}

func TestFilterModes(t *testing.T) {
	tests := []struct {
		name    string
		actions func(f *Filter)
		mode    Mode
		visible map[string]bool
	}{
		{
			name:    "none",
			actions: func(f *Filter) { f.ShowNone() },
			mode:    ModeNone,
			visible: map[string]bool{"a": false, "b": false, "": false},
		},
		{
			name:    "toggle from all hides one",
			actions: func(f *Filter) { f.Toggle("a") },
			mode:    ModeCustom,
			visible: map[string]bool{"a": false, "b": true, "c": true, "": false},
		},
		{
			name:    "toggle from none shows one",
			actions: func(f *Filter) { f.ShowNone(); f.Toggle("b") },
			mode:    ModeCustom,
			visible: map[string]bool{"a": false, "b": true, "c": false},
		},
		{
			name:    "double toggle restores",
			actions: func(f *Filter) { f.Toggle("c"); f.Toggle("c") },
			mode:    ModeCustom,
			visible: map[string]bool{"a": true, "b": true, "c": true},
		},
		{
			name:    "all after custom",
			actions: func(f *Filter) { f.Toggle("a"); f.ShowAll() },
			mode:    ModeAll,
			visible: map[string]bool{"a": true, "b": true, "c": true, "": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFilter([]string{"a", "b", "c"})
			tt.actions(f)
			if f.Mode() != tt.mode {
				t.Errorf("Mode() = %v, want %v", f.Mode(), tt.mode)
			}
			for g, want := range tt.visible {
				if got := f.Visible(g); got != want {
					t.Errorf("Visible(%q) = %v, want %v", g, got, want)
				}
			}
		})
	}
}

func TestNilFilterVisible(t *testing.T) {
	var f *Filter
	if !f.Visible("x") {
		t.Error("nil filter should show everything")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	f := NewFilter([]string{"a", "b"})
	c := f.Clone()
	c.Toggle("a")
	if !f.Visible("a") || f.Mode() != ModeAll {
		t.Error("clone mutation leaked into original")
	}
	if c.Visible("a") {
		t.Error("clone toggle had no effect")
	}
}

func TestChipsAndApply(t *testing.T) {
	f := NewFilter([]string{"war", "art"})
	chips := f.Chips()
	if len(chips) != 4 {
		t.Fatalf("len(chips) = %d, want 4", len(chips))
	}
	if chips[0].Label != LabelAll || chips[0].Color != ColorAll || !chips[0].Admin || !chips[0].Active {
		t.Errorf("chips[0] = %+v", chips[0])
	}
	if chips[1].Label != LabelNone || chips[1].Color != ColorNone || chips[1].Active {
		t.Errorf("chips[1] = %+v", chips[1])
	}
	if chips[2].Label != "art" || chips[3].Label != "war" {
		t.Errorf("group chips not sorted: %q, %q", chips[2].Label, chips[3].Label)
	}

	f.Apply(chips[1])
	if f.Mode() != ModeNone {
		t.Errorf("after None chip Mode() = %v", f.Mode())
	}
	f.Apply(chips[3])
	if f.Mode() != ModeCustom || !f.Visible("war") || f.Visible("art") {
		t.Errorf("after war chip: mode=%v war=%v art=%v", f.Mode(), f.Visible("war"), f.Visible("art"))
	}
	f.Apply(chips[0])
	if f.Mode() != ModeAll {
		t.Errorf("after All chip Mode() = %v", f.Mode())
	}
}

func TestResetReturnsToAll(t *testing.T) {
	f := NewFilter([]string{"a"})
	f.ShowNone()
	f.Reset([]string{"z", "y"})
	if f.Mode() != ModeAll || !f.Active("y") || f.Active("a") {
		t.Errorf("after Reset: mode=%v groups=%v", f.Mode(), f.Groups())
	}
}

func ExampleFilter_Toggle() {
	f := NewFilter([]string{"art", "war"})
	f.Toggle("war")
	fmt.Println(f.Mode(), f.Visible("art"), f.Visible("war"))
	// Output: custom true false
}
