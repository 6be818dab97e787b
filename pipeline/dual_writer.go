package pipeline

import (
	"errors"
	"fmt"

	"github.com/aluiziolira/go-scrape-amazon/models"
)

// DualWriter writes the same records as CSV and as JSON lines.
type DualWriter struct {
	csvWriter  *CSVWriter
	jsonWriter *JSONWriter
}

// NewDualWriter opens both outputs; the CSV side uses schema.
func NewDualWriter(csvFilename, jsonFilename string, schema Schema) (*DualWriter, error) {
	csvWriter, err := NewCSVWriter(csvFilename, schema)
	if err != nil {
		return nil, fmt.Errorf("create csv writer: %w", err)
	}

	jsonWriter, err := NewJSONWriter(jsonFilename)
	if err != nil {
		csvWriter.Close()
		return nil, fmt.Errorf("create json writer: %w", err)
	}

	return &DualWriter{
		csvWriter:  csvWriter,
		jsonWriter: jsonWriter,
	}, nil
}

func (dw *DualWriter) Write(records []models.Record) error {
	if err := dw.csvWriter.Write(records); err != nil {
		return fmt.Errorf("csv write: %w", err)
	}
	if err := dw.jsonWriter.Write(records); err != nil {
		return fmt.Errorf("json write: %w", err)
	}
	return nil
}

func (dw *DualWriter) Close() error {
	return errors.Join(dw.csvWriter.Close(), dw.jsonWriter.Close())
}

func (dw *DualWriter) Validate() error {
	return errors.Join(dw.csvWriter.Validate(), dw.jsonWriter.Validate())
}
