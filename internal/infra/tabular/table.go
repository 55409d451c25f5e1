package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// Table is an uploaded CSV held in memory for one request: a header row plus
// data rows. Rows may be ragged; missing cells read as "".
type Table struct {
	Headers []string
	Rows    [][]string
}

// ErrEmptyTable is returned when the CSV has no header row.
var ErrEmptyTable = errors.New("csv has no header row")

// Read parses CSV data into a Table. The first record is the header.
func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyTable
	}

	return &Table{Headers: records[0], Rows: records[1:]}, nil
}

// ColumnIndex returns the position of a named column, or an error when the
// header does not contain it.
func (t *Table) ColumnIndex(name string) (int, error) {
	for i, h := range t.Headers {
		if h == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("column %q not found in csv header", name)
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int { return len(t.Rows) }

// Cell returns the value at (row, col), coerced to "" when the row is ragged.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	if col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// Preview returns headers plus up to n leading rows for display.
func (t *Table) Preview(n int) [][]string {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return t.Rows[:n]
}
