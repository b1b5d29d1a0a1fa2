package main

import (
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"

	"EnergyDigest/internal/digest"
	"EnergyDigest/internal/domain"
	"EnergyDigest/internal/infrastructure/feeds"
)

const maxTitleWidth = 72

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
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func renderDigestTable(d domain.Digest, colorize bool) string {
	if d.Total() == 0 {
		return "No articles would be included in the digest."
	}
	var rows [][]string
	for _, s := range d.Sections {
		topic := digest.Icon(s) + " " + s.Topic
		if colorize {
			topic = text.Colors{text.Bold, text.FgCyan}.Sprint(topic)
		}
		for i, a := range s.Articles {
			rows = append(rows, []string{
				strconv.Itoa(i + 1),
				topic,
				runewidth.Truncate(a.Title, maxTitleWidth, "..."),
				a.Source,
			})
		}
	}
	return renderTable([]string{"#", "Topic", "Title", "Source"}, rows, []columnAlignment{alignRight})
}

func renderHealthTable(h feeds.Health, colorize bool) string {
	rows := make([][]string, 0, len(h.Results))
	for _, r := range h.Results {
		status, detail := "ok", ""
		if !r.OK() {
			status, detail = "FAILED", r.Err.Error()
		}
		if colorize {
			if r.OK() {
				status = text.FgGreen.Sprint(status)
			} else {
				status = text.FgRed.Sprint(status)
			}
		}
		rows = append(rows, []string{
			r.Name,
			status,
			strconv.Itoa(r.Articles),
			runewidth.Truncate(detail, maxTitleWidth, "..."),
		})
	}
	return renderTable([]string{"Feed", "Status", "Articles", "Error"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight})
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
