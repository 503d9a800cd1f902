package cli

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	errs "github.com/matzehuels/chronoline/pkg/errors"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{"svg"}},
		{"png", []string{"png"}},
		{"svg, PNG ,pdf", []string{"svg", "png", "pdf"}},
		{",json,", []string{"json"}},
	}
	for _, tt := range tests {
		if got := parseFormats(tt.input); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "data/events.csv", "data/events"},
		{"", "events", "events"},
		{"out.svg", "events.csv", "out"},
		{"out/frame.PNG", "events.csv", "out/frame"},
		{"out/frame", "events.csv", "out/frame"},
		{"out.v2", "events.csv", "out.v2"},
		{"", "https://example.com/data/history.csv?x=1", "history"},
		{"", "https://example.com/", "timeline"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		output, base, format string
		count                int
		want                 string
	}{
		{"", "events", "svg", 1, "events.svg"},
		{"frame.svg", "frame", "svg", 1, "frame.svg"},
		{"frame.svg", "frame", "png", 2, "frame.png"},
		{"frame", "frame", "pdf", 1, "frame.pdf"},
	}
	for _, tt := range tests {
		if got := outputPath(tt.output, tt.base, tt.format, tt.count); got != tt.want {
			t.Errorf("outputPath(%q, %q, %q, %d) = %q, want %q", tt.output, tt.base, tt.format, tt.count, got, tt.want)
		}
	}
}

func TestRenderOptionsOverrideConfig(t *testing.T) {
	c := New(os.Stderr, LogInfo)
	c.Config.Render.Width = 640
	c.Config.Render.Height = 300

	cmd := c.renderCommand()
	for flag, value := range map[string]string{"height": "200", "center": "-490", "legend": "true"} {
		if err := cmd.Flags().Set(flag, value); err != nil {
			t.Fatal(err)
		}
	}
	opts, err := c.renderOptions(cmd, "t.csv", renderFlags{
		height: 200, center: -490, legend: true,
		formats: "svg,json", groups: []string{"War"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if opts.Width != 640 {
		t.Errorf("Width = %v, want config value 640", opts.Width)
	}
	if opts.Height != 200 {
		t.Errorf("Height = %v, want flag value 200", opts.Height)
	}
	if opts.Center == nil || *opts.Center != -490 {
		t.Errorf("Center = %v", opts.Center)
	}
	if opts.Zoom != 0 {
		t.Errorf("Zoom = %v, unset flag should keep 0", opts.Zoom)
	}
	if !opts.ShowLegend || !reflect.DeepEqual(opts.Formats, []string{"svg", "json"}) || !reflect.DeepEqual(opts.Groups, []string{"War"}) {
		t.Errorf("opts = %s", opts.String())
	}
}

func TestRenderCommand(t *testing.T) {
	dir := testEnv(t)
	input := writeCSV(t, dir)
	base := filepath.Join(dir, "out", "tl")

	out, err := runCLI(t, "render", input, "-f", "svg,json", "-o", base, "--legend")
	if err != nil {
		t.Fatal(err)
	}

	svg, err := os.ReadFile(base + ".svg")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(svg), "<svg") {
		t.Error("svg output should start with <svg")
	}
	js, err := os.ReadFile(base + ".json")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(js), `"hits"`) {
		t.Error("json output missing hits")
	}

	for _, want := range []string{"tl.svg", "tl.json", "3 events", "Skipped 1 rows", "line 4"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	// The second run is served from the artifact cache.
	out, err = runCLI(t, "render", input, "-f", "svg,json", "-o", base, "--legend")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "cached") {
		t.Errorf("second render not cached:\n%s", out)
	}
}

func TestRenderCommandSingleFile(t *testing.T) {
	dir := testEnv(t)
	input := writeCSV(t, dir)
	target := filepath.Join(dir, "frame.svg")

	if _, err := runCLI(t, "render", input, "-o", target, "--zoom", "2", "--center", "1900", "--no-cache"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(target); err != nil {
		t.Errorf("expected %s: %v", target, err)
	}
}

func TestRenderCommandErrors(t *testing.T) {
	dir := testEnv(t)
	input := writeCSV(t, dir)

	_, err := runCLI(t, "render", input, "-f", "gif")
	if !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("gif: err = %v, want INVALID_FORMAT", err)
	}
	if _, err := runCLI(t, "render", filepath.Join(dir, "missing.csv")); err == nil {
		t.Error("missing input should fail")
	}
	if _, err := runCLI(t, "render"); err == nil {
		t.Error("render without input should fail")
	}
}
