// Package output renders core data for the terminal: log lines, search
// results, and histogram bars. Pure presentation; the core never calls in.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/crimson-sun/spyglass/internal/histogram"
	"github.com/crimson-sun/spyglass/internal/model"
)

var (
	styleLineNo   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Faint(true)
	styleInfo     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleWarn     = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	styleError    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleFile     = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Faint(true)
	styleNode     = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))
	styleAdvisory = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Italic(true)
)

// Renderer writes core data to an output stream.
type Renderer struct {
	w     io.Writer
	color bool
}

// NewRenderer creates a Renderer. With color false, all styling is skipped
// so output pipes cleanly.
func NewRenderer(w io.Writer, color bool) *Renderer {
	return &Renderer{w: w, color: color}
}

// Line prints one log line with its 1-based line number.
func (r *Renderer) Line(line model.LogLine) {
	no := fmt.Sprintf("%8d", line.Index+1)
	if r.color {
		no = styleLineNo.Render(no)
	}
	fmt.Fprintf(r.w, "%s  %s\n", no, line.Content)
}

// Lines prints a line range.
func (r *Renderer) Lines(lines []model.LogLine) {
	for _, l := range lines {
		r.Line(l)
	}
}

// Result prints one search result as file:line, node tag, and content,
// colored by derived severity.
func (r *Renderer) Result(res model.SearchResult) {
	loc := fmt.Sprintf("%s:%d", res.File, res.LineNumber)
	node := res.NodeName
	if node == "" {
		node = res.NodeID
	}

	content := res.Content
	if r.color {
		loc = styleFile.Render(loc)
		if node != "" {
			node = styleNode.Render(node)
		}
		content = severityStyle(model.DeriveSeverity(res)).Render(content)
	}

	if node != "" {
		fmt.Fprintf(r.w, "%s %s %s\n", loc, node, content)
		return
	}
	fmt.Fprintf(r.w, "%s %s\n", loc, content)
}

// Results prints a result collection followed by its totals line. When the
// retained list was truncated, the totals line says so explicitly.
func (r *Renderer) Results(results []model.SearchResult, total int, truncated bool) {
	for _, res := range results {
		r.Result(res)
	}
	if truncated {
		note := fmt.Sprintf("showing %d of %d results (truncated)", len(results), total)
		if r.color {
			note = styleAdvisory.Render(note)
		}
		fmt.Fprintln(r.w, note)
		return
	}
	fmt.Fprintf(r.w, "%d results\n", total)
}

// Advisory prints a user-visible advisory string.
func (r *Renderer) Advisory(msg string) {
	if msg == "" {
		return
	}
	if r.color {
		msg = styleAdvisory.Render(msg)
	}
	fmt.Fprintln(r.w, msg)
}

const barWidth = 40

// Histogram prints one row per bucket: time, a proportional bar, and the
// counts. Bars color by the dominant severity in the bucket.
func (r *Renderer) Histogram(buckets []histogram.Bucket) {
	if len(buckets) == 0 {
		fmt.Fprintln(r.w, "no datable results")
		return
	}

	maxTotal := 0
	for _, b := range buckets {
		if b.Total > maxTotal {
			maxTotal = b.Total
		}
	}

	for _, b := range buckets {
		width := 0
		if maxTotal > 0 {
			width = b.Total * barWidth / maxTotal
		}
		bar := strings.Repeat("█", width)
		if r.color {
			bar = bucketStyle(b).Render(bar)
		}
		fmt.Fprintf(r.w, "%s  %-*s %d\n", b.Start.Format("15:04:05"), barWidth, bar, b.Total)
	}
}

func severityStyle(sev model.Severity) lipgloss.Style {
	switch sev {
	case model.SeverityError:
		return styleError
	case model.SeverityWarning:
		return styleWarn
	default:
		return styleInfo
	}
}

func bucketStyle(b histogram.Bucket) lipgloss.Style {
	switch {
	case b.ErrorCount > 0:
		return styleError
	case b.WarningCount > 0:
		return styleWarn
	default:
		return styleInfo
	}
}
