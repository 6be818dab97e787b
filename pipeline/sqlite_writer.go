package pipeline

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/aluiziolira/go-scrape-amazon/models"
)

// SQLiteWriter stores records in a table named after the record kind, one
// TEXT column per schema column.
type SQLiteWriter struct {
	db     *sql.DB
	schema Schema
	table  string
	mu     sync.Mutex
}

// NewSQLiteWriter opens (or creates) the database at filename.
func NewSQLiteWriter(filename string, schema Schema) (*SQLiteWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", filename)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	table := quoteIdent(string(schema.Kind))
	columns := make([]string, len(schema.Columns))
	for i, col := range schema.Columns {
		columns[i] = quoteIdent(col) + " TEXT"
	}
	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, strings.Join(columns, ", "))
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table %s: %w", table, err)
	}

	return &SQLiteWriter{db: db, schema: schema, table: table}, nil
}

// Write inserts records in a single transaction.
func (sw *SQLiteWriter) Write(records []models.Record) error {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	tx, err := sw.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	columns := make([]string, len(sw.schema.Columns))
	placeholders := make([]string, len(sw.schema.Columns))
	for i, col := range sw.schema.Columns {
		columns[i] = quoteIdent(col)
		placeholders[i] = "?"
	}
	stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", sw.table, strings.Join(columns, ", "), strings.Join(placeholders, ", ")))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		row, err := sw.schema.Row(rec)
		if err != nil {
			return err
		}
		args := make([]any, len(row))
		for i, v := range row {
			args[i] = v
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("insert %s: %w", rec.Key(), err)
		}
	}
	return tx.Commit()
}

// Validate checks that the table is readable.
func (sw *SQLiteWriter) Validate() error {
	var n int
	if err := sw.db.QueryRow("SELECT COUNT(*) FROM " + sw.table).Scan(&n); err != nil {
		return fmt.Errorf("count rows: %w", err)
	}
	return nil
}

func (sw *SQLiteWriter) Close() error {
	return sw.db.Close()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
