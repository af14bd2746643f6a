package main

import (
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"pagecompare/internal/report"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// colorEnabled reports whether w is a terminal that should receive ANSI
// colours. NO_COLOR disables colour regardless.
func colorEnabled(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// stepTable renders edit script rows, colouring the similarity column when
// color is set.
func stepTable(rows []report.Row, color bool) string {
	headers := []string{"#", "Step", "Page A", "Page B", "Similarity"}
	body := make([][]string, 0, len(rows))
	for _, row := range rows {
		sim := row.SimilarityText()
		if color {
			sim = similarityColors(row).Sprint(sim)
		}
		body = append(body, []string{
			strconv.Itoa(row.Number),
			row.Kind,
			row.PageA,
			row.PageB,
			sim,
		})
	}
	return renderTable(headers, body, []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight})
}

func similarityColors(row report.Row) text.Colors {
	sim, ok := row.Similarity()
	switch {
	case !ok:
		return text.Colors{text.FgHiBlack}
	case sim >= 95:
		return text.Colors{text.FgGreen}
	case sim >= 70:
		return text.Colors{text.FgYellow}
	default:
		return text.Colors{text.FgRed}
	}
}
