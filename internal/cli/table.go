package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"kdrama-dashboard/internal/aggregate"
	"kdrama-dashboard/internal/dataset"
)

// newTable returns a rounded table that renders into out. Columns listed in
// numeric are right-aligned; headers keep their casing.
func newTable(out io.Writer, title string, header table.Row, numeric ...int) table.Writer {
	style := table.StyleRounded
	style.Format.Header = text.FormatDefault

	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.SetStyle(style)
	if title != "" {
		tw.SetTitle(title)
	}
	tw.AppendHeader(header)

	configs := make([]table.ColumnConfig, 0, len(numeric))
	for _, column := range numeric {
		configs = append(configs, table.ColumnConfig{
			Number:      column,
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)
	return tw
}

func WriteYearCounts(out io.Writer, counts []aggregate.YearCount) {
	tw := newTable(out, "Series per year", table.Row{"Year", "Series"}, 2)
	total := 0
	for _, item := range counts {
		tw.AppendRow(table.Row{item.Year, item.Count})
		total += item.Count
	}
	tw.Render()
	fmt.Fprintf(out, "%d series across %d years\n", total, len(counts))
}

// WriteTagCounts ranks genres or title words; heading names the tag column.
func WriteTagCounts(out io.Writer, heading string, tags []aggregate.TagCount) {
	tw := newTable(out, "", table.Row{"#", heading, "Count"}, 1, 3)
	for i, item := range tags {
		tw.AppendRow(table.Row{i + 1, item.Tag, item.Count})
	}
	tw.Render()
}

func WriteRecords(out io.Writer, records []dataset.Record) {
	if len(records) == 0 {
		fmt.Fprintln(out, "No series found.")
		return
	}

	tw := newTable(out, "", table.Row{"Title", "Year", "Genre", "Episodes"}, 2, 4)
	for _, record := range records {
		var year, episodes any = "-", "-"
		if record.HasYear {
			year = record.Year
		}
		if record.HasEpisodes {
			episodes = record.Episodes
		}
		tw.AppendRow(table.Row{record.Title, year, strings.Join(record.Genres, ", "), episodes})
	}
	tw.Render()
}
