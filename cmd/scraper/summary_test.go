package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/aluiziolira/go-scrape-amazon/models"
)

func TestPrintSummary(t *testing.T) {
	rs := &models.ResultSet{
		Kind:       models.KindProducts,
		Records:    []models.Record{&models.Product{ASIN: "B1", Score: 12.5}},
		Pages:      2,
		StopReason: "count_reached",
	}

	var buf bytes.Buffer
	printSummary(&buf, rs, 1500*time.Millisecond)

	out := buf.String()
	for _, want := range []string{"Scrape complete", "products", "count_reached", "(not saved)", "1.5s"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestPrintRecordsReviews(t *testing.T) {
	rs := &models.ResultSet{
		Kind: models.KindReviews,
		Records: []models.Record{
			&models.Review{ID: "R1", Name: "Jane", Rating: 5, Title: "Great", Body: "Works well"},
		},
	}

	var buf bytes.Buffer
	printRecords(&buf, rs)

	out := buf.String()
	for _, want := range []string{"R1", "Jane", "Works well"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
}
