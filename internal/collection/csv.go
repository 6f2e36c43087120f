package collection

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVSource reads a delimited text export. A zero Delimiter is detected
// from the header line among ';', ',' and tab.
type CSVSource struct {
	Path      string
	Delimiter rune
}

// Name identifies the source in logs.
func (s *CSVSource) Name() string {
	return filepath.Base(s.Path)
}

// Read parses the whole file.
func (s *CSVSource) Read(ctx context.Context) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	table, err := ReadCSV(bytes.NewReader(data), s.Delimiter)
	if err != nil {
		return nil, err
	}
	table.Name = s.Name()
	return table, nil
}

// ReadCSV parses delimited text from r.
func ReadCSV(r io.Reader, delimiter rune) (*Table, error) {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(bom, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	if delimiter == 0 {
		delimiter = detectDelimiter(br)
	}

	reader := csv.NewReader(br)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}

	headerIdx := -1
	for i, rec := range records {
		if !isBlankRow(rec) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, ErrEmptySource
	}

	table := &Table{
		Header:    records[headerIdx],
		HeaderRow: headerIdx + 1,
		Rows:      make([][]any, 0, len(records)-headerIdx-1),
	}
	for _, rec := range records[headerIdx+1:] {
		table.Rows = append(table.Rows, toCells(rec))
	}
	return table, nil
}

// detectDelimiter counts candidate separators in the first line.
func detectDelimiter(br *bufio.Reader) rune {
	line, _ := br.Peek(4096)
	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}

	best, bestCount := ',', 0
	for _, c := range []rune{';', ',', '\t'} {
		if n := bytes.Count(line, []byte(string(c))); n > bestCount {
			best, bestCount = c, n
		}
	}
	return best
}
