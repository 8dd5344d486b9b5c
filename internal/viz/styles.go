package viz

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Row is one line of a key/value panel.
type Row struct {
	Key   string
	Value string
}

// Report styles panels with one theme.
type Report struct {
	Theme Theme

	title lipgloss.Style
	label lipgloss.Style
	value lipgloss.Style
	muted lipgloss.Style
	panel lipgloss.Style
}

func NewReport(t Theme) *Report {
	return &Report{
		Theme: t,
		title: lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		label: lipgloss.NewStyle().Foreground(t.Muted),
		value: lipgloss.NewStyle().Bold(true).Foreground(t.Text),
		muted: lipgloss.NewStyle().Foreground(t.Muted).Italic(true),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),
	}
}

// Panel boxes body under a title.
func (r *Report) Panel(title, body string) string {
	return r.panel.Render(r.title.Render(title) + "\n" + body)
}

// Table aligns rows into two columns.
func (r *Report) Table(rows []Row) string {
	width := 0
	for _, row := range rows {
		width = max(width, lipgloss.Width(row.Key))
	}
	lines := make([]string, len(rows))
	for i, row := range rows {
		key := row.Key + strings.Repeat(" ", width-lipgloss.Width(row.Key))
		lines[i] = r.label.Render(key) + "  " + r.value.Render(row.Value)
	}
	return strings.Join(lines, "\n")
}

// Metrics renders a metric map in name order.
func (r *Report) Metrics(m map[string]float64) string {
	return r.Table(MetricRows(m))
}

func MetricRows(m map[string]float64) []Row {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]Row, len(names))
	for i, name := range names {
		rows[i] = Row{Key: name, Value: FormatValue(m[name])}
	}
	return rows
}

// FormatValue prints a metric compactly; NaN reads as a dash.
func FormatValue(v float64) string {
	switch {
	case math.IsNaN(v):
		return "-"
	case v != 0 && (math.Abs(v) >= 1e6 || math.Abs(v) < 1e-3):
		return fmt.Sprintf("%.3e", v)
	default:
		return fmt.Sprintf("%.4f", v)
	}
}

func (r *Report) Note(s string) string {
	return r.muted.Render(s)
}

// Status colors a one-line verdict.
func (r *Report) Status(ok bool, s string) string {
	c := r.Theme.Success
	if !ok {
		c = r.Theme.Error
	}
	return lipgloss.NewStyle().Bold(true).Foreground(c).Render(s)
}

// Side places blocks next to each other, top aligned.
func Side(blocks ...string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, blocks...)
}

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline compresses values into at most width characters.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width < 1 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	n := min(width, len(values))
	var b strings.Builder
	for i := 0; i < n; i++ {
		v := values[i*len(values)/n]
		idx := int((v - lo) / span * float64(len(sparkChars)-1))
		b.WriteRune(sparkChars[idx])
	}
	return b.String()
}

// Bar renders a fraction in [0, 1] as a filled bar.
func (r *Report) Bar(frac float64, width int) string {
	frac = math.Max(0, math.Min(1, frac))
	filled := int(math.Round(frac * float64(width)))
	c := r.Theme.Success
	switch {
	case frac < 0.4:
		c = r.Theme.Error
	case frac < 0.8:
		c = r.Theme.Warning
	}
	return lipgloss.NewStyle().Foreground(c).Render(strings.Repeat("█", filled)) +
		r.label.Render(strings.Repeat("░", width-filled))
}
