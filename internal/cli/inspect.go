package cli

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/matzehuels/chronoline/pkg/details"
	"github.com/matzehuels/chronoline/pkg/palette"
	"github.com/matzehuels/chronoline/pkg/source"
)

const inspectTitleWidth = 40

type inspectFlags struct {
	limit   int
	groups  []string
	dropped bool
	refresh bool
	noCache bool
}

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var flags inspectFlags

	cmd := &cobra.Command{
		Use:   "inspect <csv|url>",
		Short: "List the events of a timeline with their row and color",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := c.loadDataset(cmd.Context(), args[0], flags.refresh, flags.noCache)
			if err != nil {
				return err
			}
			printInspect(ds, flags)
			return nil
		},
	}

	cmd.Flags().IntVarP(&flags.limit, "limit", "n", 0, "show at most n events (0 for all)")
	cmd.Flags().StringSliceVar(&flags.groups, "groups", nil, "only list these groups")
	cmd.Flags().BoolVar(&flags.dropped, "dropped", false, "list every skipped row")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "refetch remote CSVs instead of using the cache")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")

	return cmd
}

// loadDataset loads input through a runner so remote CSVs use the cache.
func (c *CLI) loadDataset(ctx context.Context, input string, refresh, noCache bool) (*source.Dataset, error) {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return nil, err
	}
	defer runner.Close()

	opts := c.frameOptions(input)
	opts.Refresh = refresh
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	loader, err := runner.NewLoader(opts)
	if err != nil {
		return nil, err
	}

	spinner := newSpinnerWithContext(ctx, "Loading "+input)
	spinner.Start()
	sw := startStopwatch(loggerFromContext(ctx))
	ds := loader.Load(ctx)
	spinner.Stop()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ds.Err != nil {
		return nil, fmt.Errorf("load %s: %w", input, ds.Err)
	}
	sw.done("Loaded", "source", input, "events", len(ds.Events))
	return ds, nil
}

func printInspect(ds *source.Dataset, flags inspectFlags) {
	printKeyValue("Source", ds.Source)
	printKeyValue("Loaded", humanize.Time(ds.LoadedAt))
	if len(ds.Hash) >= 12 {
		printKeyValue("Hash", ds.Hash[:12])
	}
	printKeyValue("Events", humanize.Comma(int64(len(ds.Events))))
	printKeyValue("Rows", strconv.Itoa(ds.Packing.NumRows()))
	printKeyValue("Groups", strings.Join(ds.Groups, ", "))
	printKeyValue("Skipped", strconv.Itoa(len(ds.Dropped)))
	fmt.Fprintln(stdout)

	if rows := eventRows(ds, flags); len(rows) > 0 {
		fmt.Fprintln(stdout, eventTable(rows).Render())
	} else {
		printInfo("No events match")
	}

	if flags.dropped {
		for _, d := range ds.Dropped {
			printDetail("line %d: %s", d.Line, d.Reason)
		}
	} else if len(ds.Dropped) > 0 {
		printDetail("%d rows skipped; use --dropped to list them", len(ds.Dropped))
	}
}

// eventRows returns one table row per event: index, date, title, kind, row,
// key and color.
func eventRows(ds *source.Dataset, flags inspectFlags) [][]string {
	var rows [][]string
	for i, ev := range ds.Events {
		if len(flags.groups) > 0 && !slices.Contains(flags.groups, ev.Key()) {
			continue
		}
		if flags.limit > 0 && len(rows) == flags.limit {
			break
		}
		d := details.FromEvent(ev)
		rows = append(rows, []string{
			strconv.Itoa(i),
			d.Date,
			runewidth.Truncate(ev.Title, inspectTitleWidth, "…"),
			string(ev.Kind()),
			strconv.Itoa(ds.Packing.Row(i)),
			ev.Key(),
			palette.Color(ev.Key()),
		})
	}
	return rows
}

func eventTable(rows [][]string) *table.Table {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	const colColor = 6

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Date", "Title", "Kind", "Row", "Group", "Color").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 { // header
				return headerStyle
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			switch col {
			case 0, 4:
				return base.Foreground(colorDim)
			case colColor:
				if row >= 0 && row < len(rows) {
					return base.Foreground(lipgloss.Color(rows[row][colColor]))
				}
			}
			return base
		})
}
