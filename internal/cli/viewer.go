package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"

	"github.com/matzehuels/chronoline/pkg/calendar"
	"github.com/matzehuels/chronoline/pkg/details"
	"github.com/matzehuels/chronoline/pkg/legend"
	"github.com/matzehuels/chronoline/pkg/observability"
	"github.com/matzehuels/chronoline/pkg/pipeline"
	"github.com/matzehuels/chronoline/pkg/render"
	"github.com/matzehuels/chronoline/pkg/render/sink"
	"github.com/matzehuels/chronoline/pkg/source"
	"github.com/matzehuels/chronoline/pkg/view"
)

// One terminal cell covers cellWidth×cellHeight logical pixels.
const (
	cellWidth   = 8.0
	cellHeight  = 16.0
	headerLines = 1
	minAreaRows = 4
)

// =============================================================================
// Command
// =============================================================================

type viewFlags struct {
	noWatch bool
	refresh bool
	noCache bool
}

// viewCommand creates the terminal viewer command.
func (c *CLI) viewCommand() *cobra.Command {
	var flags viewFlags

	cmd := &cobra.Command{
		Use:   "view <csv|url>",
		Short: "Browse a timeline in the terminal",
		Long: `Browse a timeline in the terminal.

Pan with ←/→ or by dragging, zoom with +/- or the mouse wheel, click an
event for its details. l moves the legend focus, space toggles the focused
group, a and n show all or no groups. Local files are reloaded on change.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runViewer(cmd.Context(), args[0], flags)
		},
	}

	cmd.Flags().BoolVar(&flags.noWatch, "no-watch", false, "do not reload local files when they change")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "refetch remote CSVs instead of using the cache")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runViewer(ctx context.Context, input string, flags viewFlags) error {
	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	opts := c.frameOptions(input)
	opts.ShowLegend = true
	opts.Refresh = flags.refresh
	// Nothing may write to the terminal while the viewer owns it.
	opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	loader, err := runner.NewLoader(opts)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, "Loading "+input)
	spinner.Start()
	ds := loader.Load(ctx)
	spinner.Stop()
	if err := ctx.Err(); err != nil {
		return err
	}
	observability.Reset()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newViewerModel(ctx, ds, opts)
	m.loader = loader
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	if !flags.noWatch {
		go func() {
			err := loader.Watch(ctx, c.Config.Server.Debounce.Std(), func(ds *source.Dataset) {
				p.Send(datasetMsg{ds: ds})
			})
			if err != nil {
				p.Send(statusMsg("watching disabled: " + err.Error()))
			}
		}()
	}

	_, err = p.Run()
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// =============================================================================
// Keys
// =============================================================================

type viewerKeyMap struct {
	PanLeft  key.Binding
	PanRight key.Binding
	ZoomIn   key.Binding
	ZoomOut  key.Binding
	Reset    key.Binding
	Legend   key.Binding
	Toggle   key.Binding
	All      key.Binding
	None     key.Binding
	Reload   key.Binding
	Close    key.Binding
	Help     key.Binding
	Quit     key.Binding
}

var viewerKeys = viewerKeyMap{
	PanLeft:  key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "earlier")),
	PanRight: key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "later")),
	ZoomIn:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
	ZoomOut:  key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
	Reset:    key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "reset")),
	Legend:   key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "legend focus")),
	Toggle:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle group")),
	All:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all groups")),
	None:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "no groups")),
	Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Close:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close details")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k viewerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PanLeft, k.PanRight, k.ZoomIn, k.ZoomOut, k.Legend, k.Help, k.Quit}
}

func (k viewerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PanLeft, k.PanRight, k.ZoomIn, k.ZoomOut, k.Reset},
		{k.Legend, k.Toggle, k.All, k.None},
		{k.Reload, k.Close, k.Help, k.Quit},
	}
}

// =============================================================================
// Model
// =============================================================================

// datasetMsg delivers a reloaded dataset.
type datasetMsg struct{ ds *source.Dataset }

// statusMsg replaces the status line.
type statusMsg string

var (
	viewerTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	viewerStatusStyle = lipgloss.NewStyle().Foreground(colorGray)
	viewerFocusStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
)

// viewerModel is the bubbletea model of the terminal viewer. The view,
// filter and controller are pointers, so copies made by Update share them.
type viewerModel struct {
	ctx    context.Context
	loader *source.Loader
	opts   pipeline.Options

	ds     *source.Dataset
	view   *view.View
	filter *legend.Filter
	ctrl   *view.Controller

	frame  render.Frame
	canvas string

	cols, rows int
	ready      bool

	// focus indexes filter.Chips(); -1 when the legend is not focused.
	focus   int
	details string
	status  string

	pressed            bool
	pressCol, pressRow int

	help help.Model
}

func newViewerModel(ctx context.Context, ds *source.Dataset, opts pipeline.Options) viewerModel {
	opts.SetFrameDefaults()
	h := help.New()
	return viewerModel{
		ctx:    ctx,
		opts:   opts,
		ds:     ds,
		view:   pipeline.NewView(opts),
		filter: pipeline.NewFilter(ds.Groups, opts.Groups),
		ctrl:   &view.Controller{},
		focus:  -1,
		status: loadStatus(ds),
		help:   h,
	}
}

func (m viewerModel) Init() tea.Cmd {
	return nil
}

func (m viewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.layout()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.ready {
			m.handleMouse(msg)
		}

	case datasetMsg:
		m.replace(msg.ds)

	case statusMsg:
		m.status = string(msg)
	}
	return m, nil
}

func (m viewerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := viewerKeys
	v := m.view
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit
	case key.Matches(msg, k.PanLeft):
		v.PanBy(v.Width / 10)
	case key.Matches(msg, k.PanRight):
		v.PanBy(-v.Width / 10)
	case key.Matches(msg, k.ZoomIn):
		v.ZoomIn(v.Width / 2)
	case key.Matches(msg, k.ZoomOut):
		v.ZoomOut(v.Width / 2)
	case key.Matches(msg, k.Reset):
		v.Reset()
	case key.Matches(msg, k.Legend):
		m.focus++
		if m.focus >= len(m.filter.Chips()) {
			m.focus = -1
		}
	case key.Matches(msg, k.Toggle):
		chips := m.filter.Chips()
		if m.focus < 0 || m.focus >= len(chips) {
			return m, nil
		}
		m.filter.Apply(chips[m.focus])
	case key.Matches(msg, k.All):
		m.filter.ShowAll()
	case key.Matches(msg, k.None):
		m.filter.ShowNone()
	case key.Matches(msg, k.Reload):
		if m.loader == nil {
			return m, nil
		}
		m.status = "reloading…"
		loader, ctx := m.loader, m.ctx
		return m, func() tea.Msg { return datasetMsg{ds: loader.Load(ctx)} }
	case key.Matches(msg, k.Close):
		m.focus = -1
		m.setDetails("")
		return m, nil
	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
		return m, nil
	default:
		return m, nil
	}
	m.redraw()
	return m, nil
}

// handleMouse maps cell events to view inputs. A press and release on the
// same cell is a click.
func (m *viewerModel) handleMouse(msg tea.MouseMsg) {
	row := msg.Y - headerLines
	if row < 0 || row >= m.areaRows() {
		if m.ctrl.Dragging() {
			m.ctrl.Handle(m.view, view.Input{Kind: view.MouseLeave})
		}
		m.pressed = false
		return
	}
	x, y := cellToLogical(msg.X, row)

	var eff view.Effect
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		eff = m.ctrl.Handle(m.view, view.Input{Kind: view.WheelInput, X: x, Y: y, DeltaY: -1})
	case msg.Button == tea.MouseButtonWheelDown:
		eff = m.ctrl.Handle(m.view, view.Input{Kind: view.WheelInput, X: x, Y: y, DeltaY: 1})
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.pressed, m.pressCol, m.pressRow = true, msg.X, row
		eff = m.ctrl.Handle(m.view, view.Input{Kind: view.MouseDown, X: x, Y: y})
	case msg.Action == tea.MouseActionMotion:
		eff = m.ctrl.Handle(m.view, view.Input{Kind: view.MouseMove, X: x, Y: y})
	case msg.Action == tea.MouseActionRelease:
		m.ctrl.Handle(m.view, view.Input{Kind: view.MouseUp, X: x, Y: y})
		if m.pressed && msg.X == m.pressCol && row == m.pressRow {
			eff = m.ctrl.Handle(m.view, view.Input{Kind: view.Click, X: x, Y: y})
		}
		m.pressed = false
	}

	switch {
	case eff.HitTest:
		m.click(eff.X, eff.Y)
	case eff.Redraw:
		m.redraw()
	}
}

// click hit-tests the current frame: chips act on the legend, events open
// the details panel and empty space closes it.
func (m *viewerModel) click(x, y float64) {
	hit, ok := m.frame.HitTest(x, y)
	switch {
	case m.ds == nil || m.frame.Generation != m.ds.Generation:
		// The canvas predates the dataset; its hit indexes do not apply.
		m.redraw()
	case !ok:
		m.setDetails("")
	case hit.Kind == render.HitChip && hit.Chip != nil:
		m.filter.Apply(*hit.Chip)
		m.redraw()
	case hit.Event >= 0 && hit.Event < len(m.ds.Events):
		m.setDetails(details.RenderText(details.FromEvent(m.ds.Events[hit.Event]), m.cols))
	}
}

// replace installs a reloaded dataset. Older generations are ignored.
func (m *viewerModel) replace(ds *source.Dataset) {
	if ds == nil || (m.ds != nil && ds.Generation < m.ds.Generation) {
		return
	}
	m.ds = ds
	m.filter.Reset(ds.Groups)
	m.focus = -1
	m.status = loadStatus(ds)
	m.setDetails("")
	m.redraw()
}

func (m *viewerModel) setDetails(s string) {
	if s == m.details {
		return
	}
	m.details = s
	m.layout()
}

// areaRows is the number of terminal rows left for the timeline.
func (m *viewerModel) areaRows() int {
	used := headerLines + lipgloss.Height(m.help.View(viewerKeys))
	if m.details != "" {
		used += lipgloss.Height(m.details)
	}
	return max(minAreaRows, m.rows-used)
}

// layout sizes the view to the terminal. The first layout also applies the
// initial zoom and center, since both depend on the width.
func (m *viewerModel) layout() {
	if m.cols <= 0 || m.rows <= 0 {
		return
	}
	w, h := float64(m.cols)*cellWidth, float64(m.areaRows())*cellHeight
	if !m.ready {
		opts := m.opts
		opts.Width, opts.Height = w, h
		m.view = pipeline.NewView(opts)
		m.ready = true
	} else {
		m.ctrl.Handle(m.view, view.Input{Kind: view.ResizeView, Width: w, Height: h, DPR: 1})
	}
	m.redraw()
}

func (m *viewerModel) redraw() {
	if !m.ready {
		return
	}
	surface := sink.NewTermSurface(m.cols, m.areaRows(), m.view.Width, m.view.Height)
	opts := append(pipeline.BuildOptions(m.opts), render.WithMeasurer(surface))
	m.frame = render.Build(render.State{View: *m.view, Filter: m.filter}, pipeline.Data(m.ds), opts...)
	render.Replay(m.frame, surface)
	m.canvas = surface.String()
}

func (m viewerModel) View() string {
	if !m.ready {
		return "loading…"
	}
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(m.canvas)
	b.WriteString("\n")
	if m.details != "" {
		b.WriteString(m.details)
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(viewerKeys))
	return b.String()
}

// header shows the source, the centered year, the zoom and either the
// focused legend chip or the status.
func (m viewerModel) header() string {
	parts := []string{
		viewerTitleStyle.Render(m.ds.Source),
		viewerStatusStyle.Render(fmt.Sprintf("%s · %.3g px/yr · %s",
			calendar.FormatYear(int(m.view.Center())), m.view.Zoom, m.frame.Level)),
	}
	chips := m.filter.Chips()
	if m.focus >= 0 && m.focus < len(chips) {
		c := chips[m.focus]
		state := "off"
		if c.Active {
			state = "on"
		}
		parts = append(parts, viewerFocusStyle.Render(fmt.Sprintf("[%s: %s]", c.Label, state)))
	} else if m.status != "" {
		parts = append(parts, viewerStatusStyle.Render(m.status))
	}
	return ansi.Truncate(strings.Join(parts, "  "), m.cols, "…")
}

func cellToLogical(col, row int) (x, y float64) {
	return (float64(col) + 0.5) * cellWidth, (float64(row) + 0.5) * cellHeight
}

func loadStatus(ds *source.Dataset) string {
	switch {
	case ds == nil:
		return ""
	case ds.Err != nil:
		return "load failed: " + ds.Err.Error()
	case len(ds.Dropped) > 0:
		return fmt.Sprintf("%d events, %d rows skipped · %s", len(ds.Events), len(ds.Dropped), ds.LoadedAt.Format(time.TimeOnly))
	default:
		return fmt.Sprintf("%d events · %s", len(ds.Events), ds.LoadedAt.Format(time.TimeOnly))
	}
}
