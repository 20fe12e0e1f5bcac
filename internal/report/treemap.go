package report

import (
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	treeMapHeight    = "620px"
	treeMapLeafDepth = 2
	borderWidth1     = 1
	borderWidth2     = 2
)

// Metric selects which of the three sizes a treemap visualizes.
type Metric string

const (
	// MetricStat is the build tool's declared size.
	MetricStat Metric = "stat"

	// MetricParsed is the real minified source size.
	MetricParsed Metric = "parsed"

	// MetricGzip is the compressed size.
	MetricGzip Metric = "gzip"
)

// value extracts the metric from a chart item, reporting absence.
func (m Metric) value(item *ChartItem) (int64, bool) {
	switch m {
	case MetricParsed:
		if item.ParsedSize == nil {
			return 0, false
		}

		return *item.ParsedSize, true
	case MetricGzip:
		if item.GzipSize == nil {
			return 0, false
		}

		return *item.GzipSize, true
	default:
		return item.StatSize, true
	}
}

// HasMetric reports whether any asset record carries the metric.
func HasMetric(items []*ChartItem, metric Metric) bool {
	for _, item := range items {
		if _, ok := metric.value(item); ok {
			return true
		}
	}

	return false
}

// TreeMapChart builds a treemap of the chart data for one size metric.
// Every asset becomes a top-level rectangle; nested groups mirror the
// composition tree. Nodes lacking the metric are omitted.
func TreeMapChart(items []*ChartItem, metric Metric, width string) *charts.TreeMap {
	tm := charts.NewTreeMap()
	tm.SetGlobalOptions(
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithInitializationOpts(opts.Initialization{Width: width, Height: treeMapHeight}),
	)

	tm.AddSeries("Bundle", treeMapNodes(items, metric), charts.WithTreeMapOpts(opts.TreeMapChart{
		Animation:  opts.Bool(true),
		Roam:       opts.Bool(true),
		LeafDepth:  treeMapLeafDepth,
		Label:      &opts.Label{Show: opts.Bool(true), Formatter: "{b}"},
		UpperLabel: &opts.UpperLabel{Show: opts.Bool(true)},
		Levels: &[]opts.TreeMapLevel{
			{
				ItemStyle:  &opts.ItemStyle{BorderColor: "#555", BorderWidth: borderWidth2, GapWidth: borderWidth2},
				UpperLabel: &opts.UpperLabel{Show: opts.Bool(true)},
			},
			{
				ItemStyle:       &opts.ItemStyle{BorderColor: "#999", BorderWidth: borderWidth1, GapWidth: borderWidth1},
				ColorSaturation: []float32{0.3, 0.6},
			},
		},
		Left: "2%", Right: "2%", Top: "10", Bottom: "2%",
	}))

	return tm
}

func treeMapNodes(items []*ChartItem, metric Metric) []opts.TreeMapNode {
	nodes := make([]opts.TreeMapNode, 0, len(items))

	for _, item := range items {
		value, ok := metric.value(item)
		if !ok {
			continue
		}

		nodes = append(nodes, opts.TreeMapNode{
			Name:     item.Label,
			Value:    int(value),
			Children: treeMapNodes(item.Groups, metric),
		})
	}

	return nodes
}
