// Package report renders a correlation matrix view as a markdown document, with an
// optional HTML rendering for sharing.
package report

import (
	"fmt"
	"strings"

	"healthcorr/domain/correlation"
	"healthcorr/internal/dataset"
	"healthcorr/internal/profiling"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

const (
	defaultTitle = "Health Survey Correlation Report"
	absentCell   = "—"
)

// Report is everything the document shows
type Report struct {
	Title    string
	Source   string
	Mode     correlation.OrderMode
	Stats    dataset.BuildStats
	Matrix   correlation.Matrix
	Profiles []profiling.VariableProfile
	TopK     int
}

func (r *Report) title() string {
	if r.Title == "" {
		return defaultTitle
	}
	return r.Title
}

// Markdown renders the report
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# %s\n\n", r.title()))

	if r.Source != "" {
		b.WriteString(fmt.Sprintf("- Source: `%s`\n", r.Source))
	}
	b.WriteString(fmt.Sprintf("- Rows: %d read, %d retained, %d dropped\n", r.Stats.RawRows, r.Stats.Retained, r.Stats.Dropped))
	b.WriteString(fmt.Sprintf("- Variables: %d\n", r.Matrix.Size()))
	if r.Mode != "" {
		b.WriteString(fmt.Sprintf("- Ordering: %s\n", r.Mode))
	}
	fp := r.Matrix.Fingerprint()
	b.WriteString(fmt.Sprintf("- Fingerprint: `%s`\n", fp.Short()))

	r.writeOrdering(&b)
	r.writeMatrix(&b)
	r.writeTopPairs(&b)
	r.writeProfiles(&b)
	return b.String()
}

func (r *Report) label(i int) string {
	n := r.Matrix.Size()
	if len(r.Matrix.Cells) == n*n {
		if l := r.Matrix.At(i, i).RowLabel; l != "" {
			return l
		}
	}
	return string(r.Matrix.Order[i])
}

func (r *Report) writeOrdering(b *strings.Builder) {
	b.WriteString("\n## Ordering\n\n")
	for i, key := range r.Matrix.Order {
		b.WriteString(fmt.Sprintf("%d. %s (`%s`)\n", i+1, r.label(i), key))
	}
}

func (r *Report) writeMatrix(b *strings.Builder) {
	n := r.Matrix.Size()
	if n == 0 {
		return
	}
	b.WriteString("\n## Correlation matrix\n\n|  |")
	for _, key := range r.Matrix.Order {
		b.WriteString(fmt.Sprintf(" %s |", key))
	}
	b.WriteString("\n|---|")
	for i := 0; i < n; i++ {
		b.WriteString("---:|")
	}
	b.WriteString("\n")

	for i := 0; i < n; i++ {
		b.WriteString(fmt.Sprintf("| **%s** |", r.Matrix.Order[i]))
		for j := 0; j < n; j++ {
			b.WriteString(" " + formatCoefficient(r.Matrix.At(i, j)) + " |")
		}
		b.WriteString("\n")
	}
}

func formatCoefficient(c correlation.Cell) string {
	v, ok := c.Value()
	if !ok {
		return absentCell
	}
	return fmt.Sprintf("%.2f", v)
}

func (r *Report) writeTopPairs(b *strings.Builder) {
	k := r.TopK
	if k == 0 {
		k = 10
	}
	pairs := r.Matrix.TopPairs(k)
	if len(pairs) == 0 {
		return
	}
	b.WriteString("\n## Strongest pairs\n\n")
	for _, p := range pairs {
		v, _ := p.Value()
		line := fmt.Sprintf("- %s ~ %s: r=%.3f (n=%d", p.RowLabel, p.ColLabel, v, p.Pairs)
		if p.PValue != nil {
			line += fmt.Sprintf(", p=%.3g", *p.PValue)
		}
		b.WriteString(line + ")\n")
	}
}

func (r *Report) writeProfiles(b *strings.Builder) {
	if len(r.Profiles) == 0 {
		return
	}
	b.WriteString("\n## Variable profiles\n\n")
	b.WriteString("| Variable | Valid | Missing | Mean | SD | Median | Min | Max |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|---:|---:|\n")
	for _, p := range r.Profiles {
		if p.Valid == 0 {
			b.WriteString(fmt.Sprintf("| %s | 0 | %.1f%% | %s | %s | %s | %s | %s |\n",
				p.Label, p.MissingRate*100, absentCell, absentCell, absentCell, absentCell, absentCell))
			continue
		}
		s := p.Summary
		b.WriteString(fmt.Sprintf("| %s | %d | %.1f%% | %.2f | %.2f | %.2f | %.2f | %.2f |\n",
			p.Label, p.Valid, p.MissingRate*100, s.Mean, s.StdDev, s.Median, s.Min, s.Max))
	}
}

// HTML renders the markdown as a complete HTML page
func (r *Report) HTML() []byte {
	return ToHTML(r.Markdown(), r.title())
}

// ToHTML converts markdown to a standalone HTML page
func ToHTML(md, title string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: title,
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.ToHTML([]byte(md), p, renderer)
}
