// Package pipeline orders and persists finished result sets.
package pipeline

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aluiziolira/go-scrape-amazon/config"
	"github.com/aluiziolira/go-scrape-amazon/models"
)

// Finalizer applies the requested ordering and writes the output file.
type Finalizer struct {
	dir    string
	format string
	now    func() time.Time
}

// NewFinalizer writes into cfg.OutputDir using cfg.OutputFormat.
func NewFinalizer(cfg *config.Config) *Finalizer {
	return &Finalizer{
		dir:    cfg.OutputDir,
		format: cfg.OutputFormat,
		now:    time.Now,
	}
}

// Finalize sorts records in place when req.Sort is set and persists them when
// req.Persist is set. It returns the written path, if any.
func (f *Finalizer) Finalize(req models.ScrapeRequest, records []models.Record) (string, error) {
	if req.Sort {
		SortRecords(records)
	}
	if !req.Persist {
		return "", nil
	}

	schema, err := SchemaFor(req.Kind)
	if err != nil {
		return "", err
	}
	path := f.Filename(req)
	writer, err := NewWriter(f.format, path, schema)
	if err != nil {
		return "", err
	}

	if err := writer.Write(records); err != nil {
		writer.Close()
		return "", fmt.Errorf("write results: %w", err)
	}
	if len(records) > 0 {
		if err := writer.Validate(); err != nil {
			writer.Close()
			return "", fmt.Errorf("validate output: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close output: %w", err)
	}

	slog.Info("results saved", slog.String("path", path), slog.Int("records", len(records)))
	return path, nil
}

// Filename returns a timestamped output path, e.g. 1700000000000_products.csv
// or 1700000000000_B01GW3H3U8_reviews.csv.
func (f *Finalizer) Filename(req models.ScrapeRequest) string {
	parts := []string{strconv.FormatInt(f.now().UnixMilli(), 10)}
	if req.Kind == models.KindReviews {
		parts = append(parts, req.ASIN)
	}
	parts = append(parts, string(req.Kind))
	return filepath.Join(f.dir, strings.Join(parts, "_")+extension(f.format))
}

// SortRecords orders records by rank, highest first; ties keep their order.
func SortRecords(records []models.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Rank() > records[j].Rank()
	})
}

// NewWriter opens an OutputWriter for format at path.
func NewWriter(format, path string, schema Schema) (OutputWriter, error) {
	switch format {
	case "csv":
		return NewCSVWriter(path, schema)
	case "json":
		return NewJSONWriter(path)
	case "dual":
		jsonPath := strings.TrimSuffix(path, ".csv") + ".jsonl"
		return NewDualWriter(path, jsonPath, schema)
	case "sqlite":
		return NewSQLiteWriter(path, schema)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func extension(format string) string {
	switch format {
	case "json":
		return ".jsonl"
	case "sqlite":
		return ".db"
	default:
		return ".csv"
	}
}
