package fonts

import (
	"encoding/base64"
	"sync"
	"testing"
)

func TestMeasure(t *testing.T) {
	if got := Measure("", 12); got != 0 {
		t.Errorf("Measure(empty) = %v", got)
	}
	if got := Measure("abc", 0); got != 0 {
		t.Errorf("Measure(size 0) = %v", got)
	}

	short := Measure("480 BCE", 12)
	long := Measure("480 BCE · Sep 20, 07:00", 12)
	if short <= 0 || long <= short {
		t.Errorf("widths: short=%v long=%v", short, long)
	}

	big := Measure("480 BCE", 24)
	if big < short*1.8 || big > short*2.2 {
		t.Errorf("width should scale with size: 12px=%v 24px=%v", short, big)
	}
}

func TestFaceCached(t *testing.T) {
	a, err := Face(14)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Face(14)
	if a != b {
		t.Error("Face(14) not cached")
	}
}

func TestMeasureConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				Measure("Marathon", 14)
			}
		}()
	}
	wg.Wait()
}

func TestDefaultMeasurer(t *testing.T) {
	if got, want := Default.MeasureText("Hi", 12), Measure("Hi", 12); got != want {
		t.Errorf("Default.MeasureText = %v, want %v", got, want)
	}
}

func TestRegularBase64(t *testing.T) {
	data, err := base64.StdEncoding.DecodeString(RegularBase64())
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != len(RegularTTF()) {
		t.Errorf("decoded %d bytes, want %d", len(data), len(RegularTTF()))
	}
}
