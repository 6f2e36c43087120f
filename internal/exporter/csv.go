package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"wastelookup/internal/collection"
)

// ContentType is the media type of a listing.
const ContentType = "text/csv; charset=utf-8"

var bom = []byte{0xEF, 0xBB, 0xBF}

// DefaultHeaders name the listing columns.
var DefaultHeaders = []string{"date", "kg"}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger.With(slog.String("component", "csv_exporter"))}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
	// Comma is the field delimiter; zero means ','.
	Comma rune
	// DecimalComma writes 3,5 instead of 3.5.
	DecimalComma bool
}

// DefaultWriteOptions returns comma separated output with a BOM.
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{Headers: DefaultHeaders, BOMPrefix: true}
}

// WriteListing writes one line per record of res to out.
func (w *CSVWriter) WriteListing(out io.Writer, res *collection.Result, opts WriteOptions) error {
	if res == nil {
		return fmt.Errorf("write listing: nil result")
	}
	if opts.Comma == 0 {
		opts.Comma = ','
	}
	if opts.DecimalComma && opts.Comma == ',' {
		return fmt.Errorf("write listing: decimal comma needs a delimiter other than ','")
	}

	if opts.BOMPrefix {
		if _, err := out.Write(bom); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	writer.Comma = opts.Comma

	if len(opts.Headers) > 0 {
		if err := writer.Write(opts.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range ListingRecords(res, opts.DecimalComma) {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	w.logger.Debug("listing written",
		slog.String("chip", res.ChipID),
		slog.Int("record_count", len(res.Records)))
	return nil
}

// WriteFile writes the listing to path, creating parent directories.
func (w *CSVWriter) WriteFile(path string, res *collection.Result, opts WriteOptions) error {
	w.logger.Info("Writing CSV file",
		slog.String("file_path", path),
		slog.Int("record_count", len(res.Records)))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := w.WriteListing(file, res, opts); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// ListingRecords renders the records of res as CSV rows.
func ListingRecords(res *collection.Result, decimalComma bool) [][]string {
	rows := make([][]string, 0, len(res.Records))
	for _, rec := range res.Records {
		rows = append(rows, []string{
			rec.Date.Format(collection.DateLayout),
			FormatMass(rec.MassKg, decimalComma),
		})
	}
	return rows
}

// FormatMass prints a mass with the shortest exact representation. Nil
// yields an empty string.
func FormatMass(kg *float64, decimalComma bool) string {
	if kg == nil {
		return ""
	}
	s := strconv.FormatFloat(*kg, 'f', -1, 64)
	if decimalComma {
		s = strings.Replace(s, ".", ",", 1)
	}
	return s
}

// Filename suggests a download name such as
// "zvoz-000111222-2024-01-01-2024-03-31.csv".
func Filename(res *collection.Result) string {
	chip := res.ChipID
	if chip == "" {
		chip = "unknown"
	}
	return fmt.Sprintf("zvoz-%s-%s-%s.csv", chip,
		res.From.Format(collection.DateLayout), res.To.Format(collection.DateLayout))
}
