package details

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/matzehuels/chronoline/pkg/timeline"
)

func TestFromEvent(t *testing.T) {
	tests := []struct {
		name     string
		ev       timeline.Event
		wantDate string
		wantMeta string
	}{
		{
			name:     "display date wins",
			ev:       timeline.Event{Year: -490, DisplayDate: "Sept 490 BC", Type: "battle", Group: "Greek"},
			wantDate: "Sept 490 BC",
			wantMeta: "Sept 490 BC • battle • Greek",
		},
		{
			name:     "year fallback",
			ev:       timeline.Event{Year: -490, Group: "Greek"},
			wantDate: "490 BCE",
			wantMeta: "490 BCE • Greek",
		},
		{
			name:     "no type or group",
			ev:       timeline.Event{Year: 1990},
			wantDate: "1990",
			wantMeta: "1990",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := FromEvent(tt.ev)
			if d.Date != tt.wantDate {
				t.Errorf("Date = %q, want %q", d.Date, tt.wantDate)
			}
			if got := d.Meta(); got != tt.wantMeta {
				t.Errorf("Meta() = %q, want %q", got, tt.wantMeta)
			}
		})
	}
}

func TestRenderHTMLEscapes(t *testing.T) {
	d := Details{
		Title:   "<script>alert(1)</script>",
		Date:    "1990",
		Body:    `<img src=x onerror="boom">`,
		Caption: "a & b",
		Media:   "javascript:alert(1)",
	}
	var buf bytes.Buffer
	if err := RenderHTML(&buf, d); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, bad := range []string{"<script>", "<img", `href="javascript`} {
		if strings.Contains(out, bad) {
			t.Errorf("output contains %q:\n%s", bad, out)
		}
	}
	if !strings.Contains(out, "&lt;script&gt;") || !strings.Contains(out, "a &amp; b") {
		t.Errorf("expected escaped text:\n%s", out)
	}
}

func TestRenderHTMLMediaLink(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderHTML(&buf, Details{Title: "x", Media: "https://example.org/a.jpg"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `<a href="https://example.org/a.jpg"`) {
		t.Errorf("media link missing:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "<em>") {
		t.Error("empty caption rendered")
	}
}

func TestRenderText(t *testing.T) {
	d := Details{Title: "Marathon", Date: "490 BCE", Group: "Greek", Body: "Athenians defeat the Persians."}
	out := ansi.Strip(RenderText(d, 40))

	for _, want := range []string{"Marathon", "490 BCE • Greek", "Athenians"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	for _, line := range strings.Split(out, "\n") {
		if w := ansi.StringWidth(line); w > 40 {
			t.Errorf("line wider than 40 (%d): %q", w, line)
		}
	}
}

func ExampleDetails_Meta() {
	fmt.Println(Details{Date: "480 BCE", Type: "battle", Group: "Greek"}.Meta())
	// Output: 480 BCE • battle • Greek
}
