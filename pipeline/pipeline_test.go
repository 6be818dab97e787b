package pipeline

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/aluiziolira/go-scrape-amazon/config"
	"github.com/aluiziolira/go-scrape-amazon/models"
)

func scores(records []models.Record) []float64 {
	out := make([]float64, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.Rank())
	}
	return out
}

func testFinalizer(t *testing.T, format string) *Finalizer {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.OutputDir = t.TempDir()
	cfg.OutputFormat = format
	f := NewFinalizer(cfg)
	f.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return f
}

func TestFinalizeSortsProductsByScore(t *testing.T) {
	records := []models.Record{
		&models.Product{ASIN: "A", Score: 3.2},
		&models.Product{ASIN: "B", Score: 9.8},
		&models.Product{ASIN: "C", Score: 5.0},
	}
	f := testFinalizer(t, "csv")

	if _, err := f.Finalize(models.ScrapeRequest{Kind: models.KindProducts, Sort: true}, records); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if diff := cmp.Diff([]float64{9.8, 5.0, 3.2}, scores(records)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestFinalizeWithoutSortKeepsInsertionOrder(t *testing.T) {
	records := []models.Record{
		&models.Product{ASIN: "A", Score: 3.2},
		&models.Product{ASIN: "B", Score: 9.8},
		&models.Product{ASIN: "C", Score: 5.0},
	}
	f := testFinalizer(t, "csv")

	path, err := f.Finalize(models.ScrapeRequest{Kind: models.KindProducts}, records)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if path != "" {
		t.Fatalf("nothing should be persisted, got %s", path)
	}
	if diff := cmp.Diff([]float64{3.2, 9.8, 5.0}, scores(records)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSortRecordsReviewsStable(t *testing.T) {
	records := []models.Record{
		&models.Review{ID: "R1", Rating: 3},
		&models.Review{ID: "R2", Rating: 5},
		&models.Review{ID: "R3", Rating: 3},
		&models.Review{ID: "R4", Rating: 5},
	}
	SortRecords(records)

	got := make([]string, 0, len(records))
	for _, rec := range records {
		got = append(got, rec.Key())
	}
	if diff := cmp.Diff([]string{"R2", "R4", "R1", "R3"}, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestFinalizeProductsCSVRoundTrip(t *testing.T) {
	records := []models.Record{
		&models.Product{
			ASIN:           "B07XQXZXJC",
			Title:          "Wireless Controller, Carbon Black",
			Price:          "$49.99",
			BeforeDiscount: "$59.99",
			Discounted:     true,
			URL:            "https://www.amazon.com/dp/B07XQXZXJC",
			Rating:         4.7,
			Reviews:        1234,
			Score:          5799.8,
		},
		&models.Product{
			ASIN:      "B08FC5L3RG",
			Title:     `Console "Digital" Edition`,
			Price:     "$399.00",
			URL:       "https://www.amazon.com/dp/B08FC5L3RG",
			Sponsored: true,
		},
	}
	f := testFinalizer(t, "csv")

	path, err := f.Finalize(models.ScrapeRequest{Kind: models.KindProducts, Persist: true}, records)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if want := filepath.Join(f.dir, "1700000000000_products.csv"); path != want {
		t.Fatalf("path = %s, want %s", path, want)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}

	want := [][]string{
		{"title", "price", "rating", "reviews", "score", "url", "sponsored", "discounted", "before_discount", "asin"},
		{"Wireless Controller, Carbon Black", "$49.99", "4.7", "1234", "5799.80", "https://www.amazon.com/dp/B07XQXZXJC", "false", "true", "$59.99", "B07XQXZXJC"},
		{`Console "Digital" Edition`, "$399.00", "0", "0", "0.00", "https://www.amazon.com/dp/B08FC5L3RG", "true", "false", "", "B08FC5L3RG"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("csv mismatch (-want +got):\n%s", diff)
	}

	decoded := make([]models.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rating, _ := strconv.ParseFloat(row[2], 64)
		reviews, _ := strconv.Atoi(row[3])
		score, _ := strconv.ParseFloat(row[4], 64)
		sponsored, _ := strconv.ParseBool(row[6])
		discounted, _ := strconv.ParseBool(row[7])
		decoded = append(decoded, &models.Product{
			Title: row[0], Price: row[1], Rating: rating, Reviews: reviews, Score: score,
			URL: row[5], Sponsored: sponsored, Discounted: discounted, BeforeDiscount: row[8], ASIN: row[9],
		})
	}
	if diff := cmp.Diff(records, decoded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFinalizeReviewsFilenameCarriesASIN(t *testing.T) {
	f := testFinalizer(t, "json")
	req := models.ScrapeRequest{Kind: models.KindReviews, ASIN: "B01GW3H3U8", Persist: true}

	path, err := f.Finalize(req, []models.Record{&models.Review{ID: "R1", Rating: 5, Body: "ok"}})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if want := filepath.Join(f.dir, "1700000000000_B01GW3H3U8_reviews.jsonl"); path != want {
		t.Fatalf("path = %s, want %s", path, want)
	}
}

func TestFinalizeEmptyResultStillWritesHeader(t *testing.T) {
	f := testFinalizer(t, "csv")
	path, err := f.Finalize(models.ScrapeRequest{Kind: models.KindReviews, ASIN: "B01GW3H3U8", Persist: true}, nil)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "id,review_data,name,rating,title,review\n" {
		t.Fatalf("unexpected contents %q", data)
	}
}

func TestNewWriterUnsupportedFormat(t *testing.T) {
	if _, err := NewWriter("xml", filepath.Join(t.TempDir(), "out.xml"), ProductSchema()); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestSchemaRejectsWrongRecord(t *testing.T) {
	if _, err := ProductSchema().Row(&models.Review{ID: "R1"}); err == nil {
		t.Fatalf("expected product schema to reject a review")
	}
	if _, err := ReviewSchema().Row(&models.Product{ASIN: "B1"}); err == nil {
		t.Fatalf("expected review schema to reject a product")
	}
	if _, err := SchemaFor("offers"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}
