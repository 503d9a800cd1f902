package pipeline

import (
	"github.com/matzehuels/chronoline/pkg/legend"
	"github.com/matzehuels/chronoline/pkg/render"
	"github.com/matzehuels/chronoline/pkg/source"
	"github.com/matzehuels/chronoline/pkg/view"
)

// NewView returns a view sized from opts. A positive Zoom replaces the
// fitted zoom and a non-nil Center pans to that year.
func NewView(opts Options) *view.View {
	opts.SetFrameDefaults()
	v := view.New(opts.View, opts.Width, opts.Height, opts.DPR)
	if opts.Zoom > 0 {
		v.ZoomTo(opts.Zoom, v.Width/2)
	}
	if opts.Center != nil {
		v.CenterOn(*opts.Center)
	}
	return v
}

// NewFilter returns a legend filter over groups. With no selection every
// group is shown; otherwise only the selected groups are.
func NewFilter(groups, selected []string) *legend.Filter {
	f := legend.NewFilter(groups)
	if len(selected) == 0 {
		return f
	}
	f.ShowNone()
	for _, g := range selected {
		if !f.Active(g) {
			f.Toggle(g)
		}
	}
	return f
}

// BuildOptions translates opts into frame builder options.
func BuildOptions(opts Options) []render.Option {
	out := []render.Option{render.WithMinorTicks(!opts.NoMinorTicks)}
	if opts.ShowLegend {
		out = append(out, render.WithLegend())
	}
	return out
}

// BuildFrame lays out one frame of ds as described by opts.
func BuildFrame(ds *source.Dataset, opts Options) render.Frame {
	v := NewView(opts)
	var groups []string
	if ds != nil {
		groups = ds.Groups
	}
	st := render.State{View: *v, Filter: NewFilter(groups, opts.Groups)}
	return render.Build(st, Data(ds), BuildOptions(opts)...)
}

// Data adapts a dataset to the frame builder input.
func Data(ds *source.Dataset) render.Data {
	if ds == nil {
		return render.Data{}
	}
	return render.Data{Events: ds.Events, Packing: ds.Packing, Err: ds.Err, Generation: ds.Generation}
}
