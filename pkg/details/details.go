// Package details renders the panel shown for a clicked event.
package details

import (
	"html/template"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/chronoline/pkg/calendar"
	"github.com/matzehuels/chronoline/pkg/timeline"
)

// Details is the display form of one event.
type Details struct {
	Title   string `json:"title"`
	Date    string `json:"date"`
	Type    string `json:"type,omitempty"`
	Group   string `json:"group,omitempty"`
	Media   string `json:"media,omitempty"`
	Caption string `json:"caption,omitempty"`
	Body    string `json:"body,omitempty"`
	Credit  string `json:"credit,omitempty"`
}

// FromEvent builds details for ev. The date is the display date when set,
// otherwise the start year.
func FromEvent(ev timeline.Event) Details {
	date := ev.DisplayDate
	if date == "" {
		date = calendar.FormatYear(ev.Year)
	}
	return Details{
		Title:   ev.Title,
		Date:    date,
		Type:    ev.Type,
		Group:   ev.Group,
		Media:   ev.Media,
		Caption: ev.MediaCaption,
		Body:    ev.Text,
		Credit:  ev.MediaCredit,
	}
}

// Meta joins the date, type and group with bullets, skipping empty parts.
func (d Details) Meta() string {
	parts := []string{d.Date}
	for _, p := range []string{d.Type, d.Group} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " • ")
}

// MediaLink returns Media when it is an http(s) URL.
func (d Details) MediaLink() string {
	m := strings.ToLower(d.Media)
	if strings.HasPrefix(m, "http://") || strings.HasPrefix(m, "https://") {
		return d.Media
	}
	return ""
}

var panelTmpl = template.Must(template.New("details").Parse(`<div class="details">
  <h3>{{.Title}}</h3>
  <div class="meta">{{.Meta}}</div>
{{- with .MediaLink}}
  <div class="media"><a href="{{.}}" target="_blank" rel="noopener">{{.}}</a></div>
{{- else}}{{with .Media}}
  <div class="media">{{.}}</div>
{{- end}}{{end}}
{{- with .Caption}}
  <p><em>{{.}}</em></p>
{{- end}}
{{- with .Body}}
  <p>{{.}}</p>
{{- end}}
{{- with .Credit}}
  <p class="meta">{{.}}</p>
{{- end}}
</div>
`))

// RenderHTML writes the panel as an HTML fragment. All fields, including
// the body, are escaped.
func RenderHTML(w io.Writer, d Details) error {
	return panelTmpl.Execute(w, d)
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	metaStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	captionStyle = lipgloss.NewStyle().Italic(true)
	panelStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// RenderText renders the panel for a terminal of the given width.
func RenderText(d Details, width int) string {
	inner := max(10, width-4)
	wrap := lipgloss.NewStyle().Width(inner)

	lines := []string{
		titleStyle.Render(wrap.Render(d.Title)),
		metaStyle.Render(d.Meta()),
	}
	if d.Media != "" {
		lines = append(lines, metaStyle.Render(wrap.Render(d.Media)))
	}
	if d.Caption != "" {
		lines = append(lines, captionStyle.Render(wrap.Render(d.Caption)))
	}
	if d.Body != "" {
		lines = append(lines, "", wrap.Render(d.Body))
	}
	if d.Credit != "" {
		lines = append(lines, "", metaStyle.Render(wrap.Render(d.Credit)))
	}
	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
