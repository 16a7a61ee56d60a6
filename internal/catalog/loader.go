package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// LoadError reports a catalog file that could not be read or parsed
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load catalog %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

var requiredColumns = []string{
	"isbn13",
	"title",
	"authors",
	"description",
	"thumbnail",
	"simple_categories",
	"joy",
	"surprise",
	"anger",
	"fear",
	"sadness",
}

// parquetKinds is the physical type each required column must have in a Parquet file
var parquetKinds = map[string]parquet.Kind{
	"isbn13":            parquet.Int64,
	"title":             parquet.ByteArray,
	"authors":           parquet.ByteArray,
	"description":       parquet.ByteArray,
	"thumbnail":         parquet.ByteArray,
	"simple_categories": parquet.ByteArray,
	"joy":               parquet.Double,
	"surprise":          parquet.Double,
	"anger":             parquet.Double,
	"fear":              parquet.Double,
	"sadness":           parquet.Double,
}

// Load reads the book table from a CSV or Parquet file
func Load(path string) (*Catalog, error) {
	var (
		books []Book
		err   error
	)

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv":
		books, err = loadCSV(path)
	case ".parquet":
		books, err = loadParquet(path)
	default:
		err = fmt.Errorf("unsupported file format: %s (supported: .csv, .parquet)", ext)
	}
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	c, err := New(books)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	slog.Info("Catalog loaded", "path", path, "books", c.Len(), "categories", len(c.categories))
	return c, nil
}

func loadCSV(path string) ([]Book, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}

	var books []Book
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV at line %d: %w", line, err)
		}

		book, err := parseRecord(record, columns)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		books = append(books, book)
	}

	slog.Debug("Finished reading CSV file", "path", path, "rows", len(books))
	return books, nil
}

func parseRecord(record []string, columns map[string]int) (Book, error) {
	field := func(name string) string {
		return record[columns[name]]
	}

	id, err := strconv.ParseInt(strings.TrimSpace(field("isbn13")), 10, 64)
	if err != nil {
		return Book{}, fmt.Errorf("invalid isbn13 %q: %w", field("isbn13"), err)
	}

	book := Book{
		ISBN13:      id,
		Title:       field("title"),
		Authors:     field("authors"),
		Description: field("description"),
		Thumbnail:   strings.TrimSpace(field("thumbnail")),
		Category:    field("simple_categories"),
	}

	scores := []struct {
		column string
		dst    *float64
	}{
		{"joy", &book.Joy},
		{"surprise", &book.Surprise},
		{"anger", &book.Anger},
		{"fear", &book.Fear},
		{"sadness", &book.Sadness},
	}
	for _, s := range scores {
		v, err := strconv.ParseFloat(strings.TrimSpace(field(s.column)), 64)
		if err != nil {
			return Book{}, fmt.Errorf("invalid %s score %q: %w", s.column, field(s.column), err)
		}
		*s.dst = v
	}

	return book, nil
}

func loadParquet(path string) ([]Book, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	if err := checkParquetSchema(pf.Schema()); err != nil {
		return nil, err
	}

	reader := parquet.NewGenericReader[Book](pf)
	defer reader.Close()

	books := make([]Book, 0, pf.NumRows())
	rows := make([]Book, 128)
	for {
		n, err := reader.Read(rows)
		books = append(books, rows[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	return books, nil
}

// checkParquetSchema rejects files the generic reader would otherwise
// fill with zero values
func checkParquetSchema(schema *parquet.Schema) error {
	for _, name := range requiredColumns {
		leaf, ok := schema.Lookup(name)
		if !ok {
			return fmt.Errorf("missing required column %q", name)
		}
		if kind := leaf.Node.Type().Kind(); kind != parquetKinds[name] {
			return fmt.Errorf("column %q has type %s, expected %s", name, kind, parquetKinds[name])
		}
	}
	return nil
}
