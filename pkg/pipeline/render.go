package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/chronoline/pkg/render"
	"github.com/matzehuels/chronoline/pkg/render/sink"
)

// RenderFrame generates output artifacts in the requested formats.
func RenderFrame(ctx context.Context, f render.Frame, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := RenderFormat(ctx, f, format, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// RenderFormat renders f in a single format.
func RenderFormat(ctx context.Context, f render.Frame, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatSVG:
		return sink.RenderSVG(f, svgOptions(opts)...), nil
	case FormatPNG:
		return sink.RenderPNG(f)
	case FormatPDF:
		return sink.RenderPDF(ctx, f, sink.WithPDFSVGOptions(svgOptions(opts)...))
	case FormatJSON:
		return sink.RenderJSON(f, sink.WithJSONIndent())
	default:
		return nil, ValidateFormat(format)
	}
}

func svgOptions(opts Options) []sink.SVGOption {
	var out []sink.SVGOption
	if opts.FontFamily != "" {
		out = append(out, sink.WithFontFamily(opts.FontFamily))
	}
	if opts.EmbedFont {
		out = append(out, sink.WithEmbeddedFont())
	}
	if opts.HitRegions {
		out = append(out, sink.WithHitRegions())
	}
	return out
}
