package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/matzehuels/chronoline/pkg/pipeline"
)

// stdout receives all user-facing output; tests swap it.
var stdout io.Writer = os.Stdout

// =============================================================================
// Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

// =============================================================================
// Status lines
// =============================================================================

// mark is the leading glyph of a status line.
type mark struct {
	glyph string
	icon  lipgloss.Style
	text  *lipgloss.Style
}

var (
	markSuccess = mark{"✓", lipgloss.NewStyle().Foreground(colorGreen), nil}
	markError   = mark{"✗", lipgloss.NewStyle().Foreground(colorRed), nil}
	markWarning = mark{"!", lipgloss.NewStyle().Foreground(colorYellow), &StyleWarning}
	markInfo    = mark{"›", lipgloss.NewStyle().Foreground(colorGray), nil}
)

func (m mark) println(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if m.text != nil {
		msg = m.text.Render(msg)
	}
	fmt.Fprintln(stdout, m.icon.Render(m.glyph)+" "+msg)
}

func printSuccess(format string, args ...any) { markSuccess.println(format, args...) }
func printError(format string, args ...any)   { markError.println(format, args...) }
func printWarning(format string, args ...any) { markWarning.println(format, args...) }
func printInfo(format string, args ...any)    { markInfo.println(format, args...) }

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// printFile prints a written output file with its size.
func printFile(path string, size int) {
	fmt.Fprintf(stdout, "  %s %s %s\n",
		StyleDim.Render("→"), StyleValue.Render(path), StyleDim.Render(humanize.Bytes(uint64(size))))
}

// printStats prints a render's counts and total time on one dimmed line,
// ending with whether the artifacts came from the cache.
func printStats(s pipeline.Stats, cached bool) {
	parts := []string{
		humanize.Comma(int64(s.EventCount)) + " events",
		fmt.Sprintf("%d rows", s.RowCount),
	}
	if s.DroppedCount > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", s.DroppedCount))
	}
	parts = append(parts, (s.LoadTime + s.FrameTime + s.RenderTime).Round(time.Millisecond).String())

	origin := lipgloss.NewStyle().Foreground(colorGray).Render("fresh")
	if cached {
		origin = lipgloss.NewStyle().Foreground(colorGreen).Render("cached")
	}

	sep := StyleDim.Render(" · ")
	for i, p := range parts {
		parts[i] = StyleDim.Render(p)
	}
	fmt.Fprintln(stdout, "  "+strings.Join(append(parts, origin), sep))
}
