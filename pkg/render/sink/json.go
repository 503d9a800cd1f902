package sink

import (
	"encoding/json"
	"math"

	"github.com/matzehuels/chronoline/pkg/calendar"
	"github.com/matzehuels/chronoline/pkg/render"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	indent bool
	noCmds bool
}

// WithJSONIndent pretty-prints the output.
func WithJSONIndent() JSONOption { return func(r *jsonRenderer) { r.indent = true } }

// WithJSONHitsOnly omits the command list, leaving frame metadata and hits.
func WithJSONHitsOnly() JSONOption { return func(r *jsonRenderer) { r.noCmds = true } }

type jsonOutput struct {
	Width         float64          `json:"width"`
	Height        float64          `json:"height"`
	DPR           float64          `json:"dpr"`
	BackingWidth  int              `json:"backing_width"`
	BackingHeight int              `json:"backing_height"`
	Zoom          float64          `json:"zoom"`
	Center        float64          `json:"center"`
	CenterLabel   string           `json:"center_label"`
	Level         string           `json:"level"`
	Commands      []render.Command `json:"commands,omitempty"`
	Hits          []render.Hit     `json:"hits"`
}

// RenderJSON exports the frame as a display list. Clients can replay the
// commands on a canvas and hit-test locally with the same rectangles the
// server uses.
func RenderJSON(f render.Frame, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	bw, bh := f.BackingSize()
	out := jsonOutput{
		Width:         f.Width,
		Height:        f.Height,
		DPR:           f.DPR,
		BackingWidth:  bw,
		BackingHeight: bh,
		Zoom:          f.Zoom,
		Center:        f.Center,
		CenterLabel:   calendar.FormatYear(int(math.Round(f.Center))),
		Level:         f.Level.String(),
		Hits:          f.Hits,
	}
	if !r.noCmds {
		out.Commands = f.Commands
	}
	if out.Hits == nil {
		out.Hits = []render.Hit{}
	}

	if r.indent {
		return json.MarshalIndent(out, "", "  ")
	}
	return json.Marshal(out)
}
