package main

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/aluiziolira/go-scrape-amazon/models"
)

func printSummary(out io.Writer, rs *models.ResultSet, duration time.Duration) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetTitle("Scrape complete")
	t.AppendRows([]table.Row{
		{"Kind", rs.Kind},
		{"Records", rs.Len()},
		{"Pages fetched", rs.Pages},
		{"Stopped", rs.StopReason},
		{"Duration", duration.Round(time.Millisecond)},
	})
	output := rs.Path
	if output == "" {
		output = "(not saved)"
	}
	t.AppendRow(table.Row{"Output file", output})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func printRecords(out io.Writer, rs *models.ResultSet) {
	t := table.NewWriter()
	t.SetOutputMirror(out)

	switch rs.Kind {
	case models.KindProducts:
		t.AppendHeader(table.Row{"#", "ASIN", "Title", "Price", "Rating", "Reviews", "Score", "Sponsored"})
		for i, p := range rs.Products() {
			t.AppendRow(table.Row{i + 1, p.ASIN, p.Title, p.Price, p.Rating, p.Reviews, fmt.Sprintf("%.2f", p.Score), p.Sponsored})
		}
		t.SetColumnConfigs([]table.ColumnConfig{
			{Name: "Title", WidthMax: 60},
			{Name: "Score", Align: text.AlignRight},
		})
	case models.KindReviews:
		t.AppendHeader(table.Row{"#", "ID", "Name", "Rating", "Title", "Review"})
		for i, r := range rs.Reviews() {
			t.AppendRow(table.Row{i + 1, r.ID, r.Name, r.Rating, r.Title, r.Body})
		}
		t.SetColumnConfigs([]table.ColumnConfig{
			{Name: "Title", WidthMax: 40},
			{Name: "Review", WidthMax: 80},
		})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}
