package main

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"manga-progress/internal/indexer"
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
	for i := range headers {
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

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func renderScanReport(report *indexer.Report) string {
	rows := [][]string{
		{"Series", strconv.Itoa(report.Series)},
		{"Volumes", strconv.Itoa(report.Volumes)},
		{"New volumes", strconv.Itoa(report.Added)},
		{"Removed volumes", strconv.Itoa(report.Pruned)},
		{"Script inserted", strconv.Itoa(report.Patched)},
		{"Script already present", strconv.Itoa(report.AlreadyPresent)},
		{"No </body>", strconv.Itoa(report.NoBody)},
		{"Failures", strconv.Itoa(len(report.Failures))},
	}
	return renderTable([]string{"Scan", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
}
