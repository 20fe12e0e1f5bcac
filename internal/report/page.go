package report

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
)

const defaultChartWidth = "100%"

// Renderable is the interface chart components implement.
type Renderable interface {
	Render(w io.Writer) error
}

// Section is one chart section within a report page.
type Section struct {
	Title    string
	Subtitle string
	Chart    Renderable
}

// Page is a standalone HTML report page.
type Page struct {
	Title    string
	Subtitle string
	Sections []Section
}

// NewPage creates a report page with the given title.
func NewPage(title, subtitle string) *Page {
	return &Page{Title: title, Subtitle: subtitle}
}

// Add appends sections to the page.
func (p *Page) Add(sections ...Section) {
	p.Sections = append(p.Sections, sections...)
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { margin: 0; font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; background: #1c1917; color: #fafaf9; }
header { padding: 24px 32px 8px; }
header h1 { margin: 0; font-size: 22px; }
header p { margin: 4px 0 0; color: #a8a29e; font-size: 14px; }
section { padding: 16px 32px; }
section h2 { margin: 0 0 2px; font-size: 17px; }
section p.subtitle { margin: 0 0 12px; color: #a8a29e; font-size: 13px; }
.chart { background: #292524; border-radius: 8px; padding: 8px; }
</style>
</head>
<body>
<header>
<h1>{{.Title}}</h1>
{{if .Subtitle}}<p>{{.Subtitle}}</p>{{end}}
</header>
{{range .Sections}}
<section>
<h2>{{.Title}}</h2>
{{if .Subtitle}}<p class="subtitle">{{.Subtitle}}</p>{{end}}
<div class="chart">{{.Chart}}</div>
</section>
{{end}}
</body>
</html>
`))

type pageData struct {
	Title    string
	Subtitle string
	Sections []sectionData
}

type sectionData struct {
	Title    string
	Subtitle string
	Chart    template.HTML
}

// Render writes the page as standalone HTML.
func (p *Page) Render(w io.Writer) error {
	data := pageData{
		Title:    p.Title,
		Subtitle: p.Subtitle,
		Sections: make([]sectionData, 0, len(p.Sections)),
	}

	for _, section := range p.Sections {
		var buf bytes.Buffer

		if section.Chart != nil {
			renderErr := section.Chart.Render(&buf)
			if renderErr != nil {
				return fmt.Errorf("render section %q: %w", section.Title, renderErr)
			}
		}

		data.Sections = append(data.Sections, sectionData{
			Title:    section.Title,
			Subtitle: section.Subtitle,
			Chart:    template.HTML(buf.String()),
		})
	}

	execErr := pageTemplate.Execute(w, data)
	if execErr != nil {
		return fmt.Errorf("render page: %w", execErr)
	}

	return nil
}

// RenderHTML writes the full treemap report page for the chart data:
// one section per available size metric.
func RenderHTML(w io.Writer, items []*ChartItem, title string) error {
	page := NewPage(title, "Treemap of what occupies how many bytes in each bundle")

	page.Add(Section{
		Title:    "Declared Size",
		Subtitle: "Byte counts reported by the build tool's stats output.",
		Chart:    TreeMapChart(items, MetricStat, defaultChartWidth),
	})

	if HasMetric(items, MetricParsed) {
		page.Add(Section{
			Title:    "Parsed Size",
			Subtitle: "Actual byte length of the minified source attributed to each node.",
			Chart:    TreeMapChart(items, MetricParsed, defaultChartWidth),
		})
	}

	if HasMetric(items, MetricGzip) {
		page.Add(Section{
			Title:    "Compressed Size",
			Subtitle: "Compressed byte counts of each node's source.",
			Chart:    TreeMapChart(items, MetricGzip, defaultChartWidth),
		})
	}

	return page.Render(w)
}
