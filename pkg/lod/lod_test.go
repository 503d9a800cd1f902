package lod

import (
	"fmt"
	"math"
	"testing"
)

func TestChoose(t *testing.T) {
	tests := []struct {
		zoom  float64
		want  Level
		major float64
	}{
		{0.2, Millennium, 1000},
		{17.99, Millennium, 1000},
		{18, Century, 100},
		{59, Century, 100},
		{60, Decade, 10},
		{199, Decade, 10},
		{200, Year, 1},
		{599, Year, 1},
		{600, Month, 1.0 / 12},
		{1200, Day, dayStep},
		{7999, Day, dayStep},
		{8000, Hour, hourStep},
		{1e6, Hour, hourStep},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.zoom), func(t *testing.T) {
			s := Choose(tt.zoom)
			if s.Level != tt.want {
				t.Errorf("Choose(%v).Level = %v, want %v", tt.zoom, s.Level, tt.want)
			}
			if s.Major != tt.major {
				t.Errorf("Choose(%v).Major = %v, want %v", tt.zoom, s.Major, tt.major)
			}
		})
	}
}

func TestCascadeOrder(t *testing.T) {
	levels := Levels()
	for i := 1; i < len(levels); i++ {
		if levels[i].Threshold >= levels[i-1].Threshold {
			t.Errorf("threshold of %v (%v) not below %v (%v)",
				levels[i].Level, levels[i].Threshold, levels[i-1].Level, levels[i-1].Threshold)
		}
		if levels[i].Major <= levels[i-1].Major {
			t.Errorf("major step of %v not coarser than %v", levels[i].Level, levels[i-1].Level)
		}
		if levels[i].Minor.Step >= levels[i].Major {
			t.Errorf("%v: minor step %v not finer than major %v", levels[i].Level, levels[i].Minor.Step, levels[i].Major)
		}
	}
}

func TestFaintMinors(t *testing.T) {
	for _, s := range Levels() {
		wantFaint := s.Level >= Month
		if s.Minor.Faint != wantFaint {
			t.Errorf("%v: Faint = %v, want %v", s.Level, s.Minor.Faint, wantFaint)
		}
	}
}

func TestFormats(t *testing.T) {
	tests := []struct {
		zoom float64
		v    float64
		want string
	}{
		{1, -3000, "3000 BCE"},
		{300, 1989.9, "1990"},
		{700, 1990.5, "Jul 1990"},
		{2000, 1990.5, "1990 · Jul 1"},
		{9000, 1990.5, "1990 · Jul 1, 00:00"},
	}
	for _, tt := range tests {
		if got := Choose(tt.zoom).Format(tt.v); got != tt.want {
			t.Errorf("Choose(%v).Format(%v) = %q, want %q", tt.zoom, tt.v, got, tt.want)
		}
	}
}

func TestTicks(t *testing.T) {
	got := Ticks(1000, -5000, -4200, 100)
	want := []float64{-4000, -3000, -2000, -1000, 0}
	if len(got) != len(want) {
		t.Fatalf("Ticks = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Ticks[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	// hi is exclusive, lo inclusive.
	got = Ticks(10, -5000, -100, -50)
	if len(got) != 5 || got[0] != -100 || got[4] != -60 {
		t.Errorf("Ticks(10, -100..-50) = %v", got)
	}
}

func TestTicksNoDrift(t *testing.T) {
	step := Choose(9000).Minor.Step
	ticks := Ticks(step, -5000, 1999.99, 2000.01)
	if len(ticks) == 0 {
		t.Fatal("no ticks")
	}
	for i := 1; i < len(ticks); i++ {
		d := ticks[i] - ticks[i-1]
		if math.Abs(d-step) > 1e-9 {
			t.Fatalf("tick spacing %v at %d, want %v", d, i, step)
		}
	}
}

func TestTicksDegenerate(t *testing.T) {
	if got := Ticks(0, 0, 0, 10); got != nil {
		t.Errorf("zero step: %v", got)
	}
	if got := Ticks(1, 0, 10, 0); got != nil {
		t.Errorf("empty range: %v", got)
	}
	if got := Ticks(1e-9, 0, 0, 1); len(got) != MaxTicks {
		t.Errorf("len = %d, want cap %d", len(got), MaxTicks)
	}
}

func TestPlace(t *testing.T) {
	labels := []Label{
		{X: 100, Width: 60},
		{X: 150, Width: 60},
		{X: 200, Width: 60},
		{X: 269, Width: 60},
		{X: 271, Width: 40},
	}
	Place(labels, 10)

	// The last label clears the third even though the fourth was skipped.
	want := []bool{true, false, true, false, true}
	for i, l := range labels {
		if l.Drawn != want[i] {
			t.Errorf("label %d (x=%v): Drawn = %v, want %v", i, l.X, l.Drawn, want[i])
		}
	}
}

func TestPlaceFirstAlwaysDrawn(t *testing.T) {
	labels := []Label{{X: -1e9, Width: 160}}
	Place(labels, 10)
	if !labels[0].Drawn {
		t.Error("first label should always be drawn")
	}
}

func ExampleChoose() {
	s := Choose(75)
	fmt.Println(s.Level, s.Major, s.Format(-1200))
	// Output: decade 10 1200 BCE
}
