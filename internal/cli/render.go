package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/chronoline/pkg/pipeline"
	"github.com/matzehuels/chronoline/pkg/source"
	"github.com/matzehuels/chronoline/pkg/timeline"
)

// maxDroppedShown caps the skipped-row lines printed after a render.
const maxDroppedShown = 5

// renderFlags holds the render command's flags. Unset flags fall back to
// the config file.
type renderFlags struct {
	output     string
	formats    string
	width      float64
	height     float64
	dpr        float64
	zoom       float64
	center     float64
	groups     []string
	legend     bool
	minorTicks bool
	fontFamily string
	embedFont  bool
	hitRegions bool
	refresh    bool
	noCache    bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render <csv|url>",
		Short: "Render a timeline to SVG, PNG, PDF or JSON",
		Long: `Render one frame of a timeline.

The frame shows the whole domain unless --zoom (pixels per year) or
--center (year, negative for BCE) are given. --groups restricts the frame to
the named groups.`,
		Example: `  chronoline render events.csv
  chronoline render events.csv -f svg,png --width 1600 --zoom 2 --center 1900
  chronoline render https://example.com/timeline.csv -o out/timeline.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.renderOptions(cmd, args[0], flags)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), opts, flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.output, "output", "o", "", "output file (single format) or base path (multiple)")
	f.StringVarP(&flags.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	f.Float64Var(&flags.width, "width", pipeline.DefaultWidth, "frame width in pixels")
	f.Float64Var(&flags.height, "height", pipeline.DefaultHeight, "frame height in pixels")
	f.Float64Var(&flags.dpr, "dpr", pipeline.DefaultDPR, "device pixel ratio for PNG output")
	f.Float64Var(&flags.zoom, "zoom", 0, "zoom in pixels per year (default fits the domain)")
	f.Float64Var(&flags.center, "center", 0, "year at the horizontal center")
	f.StringSliceVar(&flags.groups, "groups", nil, "only show these groups (comma-separated)")
	f.BoolVar(&flags.legend, "legend", false, "draw the legend strip")
	f.BoolVar(&flags.minorTicks, "minor-ticks", true, "draw minor ticks")
	f.StringVar(&flags.fontFamily, "font-family", "", "CSS font-family for SVG text")
	f.BoolVar(&flags.embedFont, "embed-font", false, "embed the bundled font in SVG output")
	f.BoolVar(&flags.hitRegions, "hit-regions", false, "include clickable hit regions in SVG output")
	f.BoolVar(&flags.refresh, "refresh", false, "refetch remote CSVs instead of using the cache")
	f.BoolVar(&flags.noCache, "no-cache", false, "disable caching")

	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)

	return cmd
}

// completeFormats completes the last entry of a comma-separated format list.
func completeFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	prefix := ""
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		prefix = toComplete[:i+1]
	}
	var out []string
	for _, f := range []string{pipeline.FormatSVG, pipeline.FormatPNG, pipeline.FormatPDF, pipeline.FormatJSON} {
		out = append(out, prefix+f)
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

// renderOptions merges config defaults with the flags the user set.
func (c *CLI) renderOptions(cmd *cobra.Command, input string, flags renderFlags) (pipeline.Options, error) {
	opts := c.frameOptions(input)
	set := cmd.Flags().Changed

	if set("width") {
		opts.Width = flags.width
	}
	if set("height") {
		opts.Height = flags.height
	}
	if set("dpr") {
		opts.DPR = flags.dpr
	}
	if set("zoom") {
		opts.Zoom = flags.zoom
	}
	if set("center") {
		center := flags.center
		opts.Center = &center
	}
	if set("legend") {
		opts.ShowLegend = flags.legend
	}
	if set("minor-ticks") {
		opts.NoMinorTicks = !flags.minorTicks
	}
	if set("font-family") {
		opts.FontFamily = flags.fontFamily
	}
	if set("embed-font") {
		opts.EmbedFont = flags.embedFont
	}
	opts.Groups = flags.groups
	opts.HitRegions = flags.hitRegions
	opts.Refresh = flags.refresh
	opts.Formats = parseFormats(flags.formats)

	if err := opts.ValidateAndSetDefaults(); err != nil {
		return opts, err
	}
	return opts, nil
}

// runRender loads the input, renders every requested format and writes the
// files next to the input (or to --output).
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, flags renderFlags) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering "+opts.Input)
	spinner.Start()
	sw := startStopwatch(logger)
	result, err := runner.Execute(ctx, opts)
	spinner.Stop()
	if err != nil {
		return err
	}
	if ds := result.Dataset; ds.Err != nil {
		return fmt.Errorf("load %s: %w", opts.Input, ds.Err)
	}
	logger.Debug("frame built", "level", result.Frame.Level, "zoom", result.Frame.Zoom, "hits", result.Stats.HitCount)

	base := basePath(flags.output, opts.Input)
	for _, format := range opts.Formats {
		p := outputPath(flags.output, base, format, len(opts.Formats))
		data := result.Artifacts[format]
		if err := writeOutput(p, data); err != nil {
			return err
		}
		printFile(p, len(data))
	}
	printStats(result.Stats, result.CacheInfo.RenderHit)
	printDropped(result.Dataset.Dropped)
	sw.done("Rendered", "source", opts.Input, "formats", opts.Formats)
	return nil
}

// printDropped reports skipped CSV rows.
func printDropped(dropped []timeline.Dropped) {
	if len(dropped) == 0 {
		return
	}
	printWarning("Skipped %d rows", len(dropped))
	for i, d := range dropped {
		if i == maxDroppedShown {
			printDetail("… and %d more (see `chronoline inspect --dropped`)", len(dropped)-i)
			break
		}
		printDetail("line %d: %s", d.Line, d.Reason)
	}
}

// parseFormats parses a comma-separated format list. Empty means svg.
func parseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return []string{pipeline.FormatSVG}
	}
	return out
}

// basePath derives the output path without extension. Without --output it
// is the input's name in the current directory for URLs, or next to the
// input for files. A known format extension on output is stripped.
func basePath(output, input string) string {
	if output != "" {
		ext := filepath.Ext(output)
		if pipeline.ValidFormats[strings.TrimPrefix(strings.ToLower(ext), ".")] {
			return strings.TrimSuffix(output, ext)
		}
		return output
	}
	if source.IsURL(input) {
		name := "timeline"
		if u, err := url.Parse(input); err == nil {
			if b := path.Base(u.Path); b != "." && b != "/" {
				name = b
			}
		}
		return strings.TrimSuffix(name, path.Ext(name))
	}
	return strings.TrimSuffix(input, filepath.Ext(input))
}

// outputPath returns the file for one format. A single format written to an
// explicit --output keeps that exact name.
func outputPath(output, base, format string, count int) string {
	if output != "" && count == 1 && filepath.Ext(output) != "" {
		return output
	}
	return base + "." + format
}

func writeOutput(p string, data []byte) error {
	if dir := filepath.Dir(p); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}
	return nil
}
