package report

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

const absentCell = "-"

// WriteSummary prints a per-asset size table for terminal consumption.
func WriteSummary(w io.Writer, items []*ChartItem) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false

	tbl.AppendHeader(table.Row{"Asset", "Modules", "Declared", "Parsed", "Compressed"})

	var totalStat int64

	for _, item := range items {
		totalStat += item.StatSize

		tbl.AppendRow(table.Row{
			item.Label,
			countModules(item.Groups),
			humanize.IBytes(uint64(item.StatSize)), //nolint:gosec // sizes are non-negative
			sizeCell(item.ParsedSize),
			sizeCell(item.GzipSize),
		})
	}

	tbl.AppendFooter(table.Row{
		fmt.Sprintf("%d assets", len(items)),
		"",
		humanize.IBytes(uint64(totalStat)), //nolint:gosec // sizes are non-negative
		"", "",
	})

	tbl.Render()
}

// WriteEmptyNotice reports that nothing matched the filters.
func WriteEmptyNotice(w io.Writer) {
	color.New(color.FgYellow).Fprintln(w, "No bundle assets to analyze.")
}

func sizeCell(size *int64) string {
	if size == nil {
		return absentCell
	}

	return humanize.IBytes(uint64(*size)) //nolint:gosec // sizes are non-negative
}

func countModules(groups []*ChartItem) int {
	count := 0

	for _, group := range groups {
		if len(group.Groups) == 0 {
			count++

			continue
		}

		count += countModules(group.Groups)

		// A concatenated module is itself a module on top of its members.
		if group.ID != "" {
			count++
		}
	}

	return count
}
